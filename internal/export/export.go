// Package export renders scan results into downloadable documents.
//
// An Artifact is one of a closed set of variants: Raster, PDFImage,
// PDFText, Word and PlainText. Render turns any of them into bytes, a MIME
// type and a suggested filename. Nothing is written to disk; callers
// decide where the document goes.
package export

import (
	"fmt"
	"strings"

	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// BaseName is the filename stem of every rendered document.
const BaseName = "documento"

// Artifact is a document to render. The set of variants is closed.
type Artifact interface {
	artifact()
}

// Raster is the page as an image file.
type Raster struct {
	Page *imaging.Frame
	// Format is "png" (default) or "jpeg".
	Format string
}

// PDFImage is the page embedded as a full-page image in a PDF.
type PDFImage struct {
	Page *imaging.Frame
}

// PDFText is recognized text laid out on PDF pages.
type PDFText struct {
	Text string
}

// Word is recognized text as a single-paragraph Word document.
type Word struct {
	Text string
}

// PlainText is recognized text as a UTF-8 text file.
type PlainText struct {
	Text string
}

func (Raster) artifact()    {}
func (PDFImage) artifact()  {}
func (PDFText) artifact()   {}
func (Word) artifact()      {}
func (PlainText) artifact() {}

// Document is a rendered artifact.
type Document struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
	Filename string `json:"filename"`
}

// MIME types of the non-image documents.
const (
	MimePDF   = "application/pdf"
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePlain = "text/plain; charset=utf-8"
)

// Render produces the bytes of an artifact.
func Render(a Artifact) (*Document, error) {
	switch v := a.(type) {
	case Raster:
		return renderRaster(v)
	case PDFImage:
		if v.Page == nil {
			return nil, apperrors.NewValidationError("no page to export", nil)
		}
		data, err := imagePDF(v.Page)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to build PDF", err)
		}
		return &Document{Data: data, MimeType: MimePDF, Filename: BaseName + ".pdf"}, nil
	case PDFText:
		data, err := textPDF(v.Text)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to build PDF", err)
		}
		return &Document{Data: data, MimeType: MimePDF, Filename: BaseName + ".pdf"}, nil
	case Word:
		data, err := wordDocument(v.Text)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to build DOCX", err)
		}
		return &Document{Data: data, MimeType: MimeDOCX, Filename: BaseName + ".docx"}, nil
	case PlainText:
		return &Document{Data: []byte(v.Text), MimeType: MimePlain, Filename: BaseName + ".txt"}, nil
	case nil:
		return nil, apperrors.NewValidationError("no artifact to export", nil)
	default:
		return nil, apperrors.NewInternalError(fmt.Sprintf("unsupported artifact %T", a), nil)
	}
}

func renderRaster(r Raster) (*Document, error) {
	if r.Page == nil {
		return nil, apperrors.NewValidationError("no page to export", nil)
	}
	_, mime, err := imaging.ParseFormat(r.Format)
	if err != nil {
		return nil, apperrors.NewValidationError("unsupported image format", err)
	}
	data, err := imaging.Encode(r.Page, r.Format)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode image", err)
	}

	ext := ".png"
	if mime == "image/jpeg" {
		ext = ".jpg"
	}
	return &Document{Data: data, MimeType: mime, Filename: BaseName + ext}, nil
}

// Formats accepted by New.
const (
	FormatPNG     = "png"
	FormatJPEG    = "jpeg"
	FormatPDF     = "pdf"
	FormatPDFText = "pdf_text"
	FormatDOCX    = "docx"
	FormatText    = "txt"
)

// New builds the artifact named by format from a page and its text.
// Image formats need a page, text formats need text (which may be empty).
func New(format string, page *imaging.Frame, text string) (Artifact, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatPNG, "":
		return Raster{Page: page, Format: FormatPNG}, nil
	case FormatJPEG, "jpg":
		return Raster{Page: page, Format: FormatJPEG}, nil
	case FormatPDF, "pdf_image":
		return PDFImage{Page: page}, nil
	case FormatPDFText:
		return PDFText{Text: text}, nil
	case FormatDOCX, "word":
		return Word{Text: text}, nil
	case FormatText, "text":
		return PlainText{Text: text}, nil
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown export format: %s", format), nil)
	}
}
