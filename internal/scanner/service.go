package scanner

import (
	"context"
	"errors"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logger"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
)

// blankPageConfidence is the minimum text-region confidence for a page to
// be sent to OCR when blank pages are skipped.
const blankPageConfidence = 0.05

// ScanRequest selects the optional steps of a scan.
type ScanRequest struct {
	// OCR runs text recognition on the enhanced page.
	OCR bool

	// Language is the OCR language. Empty uses the service default.
	Language string

	// ExpectedText, when set, is compared with the recognized text.
	ExpectedText string
}

// Scan is a pipeline result plus the optional recognition outcome.
type Scan struct {
	*Result

	// Text is the recognized text. Empty when OCR was not requested,
	// skipped, or failed.
	Text string `json:"text,omitempty"`

	// Language is the OCR language that was used.
	Language string `json:"language,omitempty"`

	// OCRSkipped reports that the page looked blank and OCR did not run.
	OCRSkipped bool `json:"ocr_skipped,omitempty"`

	// Accuracy compares Text with the request's ExpectedText.
	Accuracy *ocr.Accuracy `json:"accuracy,omitempty"`
}

// Service combines the scanning pipeline with the OCR collaborator.
type Service struct {
	pipeline   *Pipeline
	recognizer ocr.Recognizer
	language   string

	// SkipBlankPages skips OCR on pages without text-like regions.
	SkipBlankPages bool
}

// NewService returns a Service. recognizer may be nil, in which case OCR
// requests fail with a recognition error.
func NewService(pipeline *Pipeline, recognizer ocr.Recognizer, language string) *Service {
	if recognizer == nil {
		recognizer = ocr.Unavailable
	}
	return &Service{
		pipeline:   pipeline,
		recognizer: recognizer,
		language:   ocr.LanguageOrDefault(language),
	}
}

// Pipeline returns the underlying pipeline.
func (s *Service) Pipeline() *Pipeline {
	return s.pipeline
}

// Recognizer returns the OCR collaborator. Without an engine it is
// ocr.Unavailable.
func (s *Service) Recognizer() ocr.Recognizer {
	return s.recognizer
}

// Language returns the default OCR language.
func (s *Service) Language() string {
	return s.language
}

// Scan runs the pipeline on frame and, if requested, OCR on the page.
//
// A recognition failure returns the Scan together with the error: the page
// is still valid and callers may deliver it without text.
func (s *Service) Scan(ctx context.Context, frame *imaging.Frame, req ScanRequest) (*Scan, error) {
	result, err := s.pipeline.Run(ctx, frame)
	if err != nil {
		return nil, err
	}

	scan := &Scan{Result: result}
	if !req.OCR {
		return scan, nil
	}

	scan.Language = s.languageFor(req.Language)
	if s.SkipBlankPages && IsBlankPage(result.Rectified) {
		logger.WithField("language", scan.Language).Info("page looks blank, skipping OCR")
		scan.OCRSkipped = true
		return scan, nil
	}

	text, err := s.Recognize(ctx, result.Page, scan.Language)
	if err != nil {
		return scan, err
	}
	scan.Text = text

	if req.ExpectedText != "" {
		acc := ocr.Score(req.ExpectedText, text)
		scan.Accuracy = &acc
	}
	return scan, nil
}

// Recognize runs OCR on a page.
func (s *Service) Recognize(ctx context.Context, page *imaging.Frame, lang string) (string, error) {
	if err := checkFrame(page); err != nil {
		return "", err
	}

	lang = s.languageFor(lang)
	text, err := s.recognizer.Recognize(ctx, page.Image(), lang)
	if err != nil {
		logger.WithError(err).WithField("language", lang).Error("OCR failed")
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return "", err
		}
		return "", apperrors.NewRecognitionError("text recognition failed", err)
	}

	logger.WithFields(logrus.Fields{
		"language": lang,
		"chars":    len(text),
	}).Debug("OCR complete")
	return text, nil
}

func (s *Service) languageFor(lang string) string {
	if lang != "" {
		return lang
	}
	return s.language
}

// IsBlankPage reports whether a page has no region that looks like printed
// text. A 5% margin is ignored: it holds background left over from
// detection rather than page content.
func IsBlankPage(page *imaging.Frame) bool {
	mx, my := page.Width/20, page.Height/20
	inner := image.Rect(mx, my, page.Width-mx, page.Height-my)
	if inner.Empty() {
		inner = page.Bounds()
	}
	content := imaging.CropResize(page, inner, inner.Dx(), inner.Dy())
	return detection.DetectTextRegions(content, blankPageConfidence).Count == 0
}
