package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// Text page layout in PDF points on A4 paper. Courier advances 0.6 em per
// glyph, so a line of charsPerLine runes fits between the margins.
const (
	textPageWidth  = 595
	textPageHeight = 842
	textMargin     = 56
	textFont       = "Courier"
	textFontSize   = 10
	lineHeight     = 12

	charsPerLine = (textPageWidth - 2*textMargin) * 10 / (6 * textFontSize)
	linesPerPage = (textPageHeight - 2*textMargin) / lineHeight
)

var disableConfigDir sync.Once

// pdfConfig returns a pdfcpu configuration that never touches the user's
// config directory.
func pdfConfig() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	return model.NewDefaultConfiguration()
}

// imagesToPDF writes one page per image, each page sized to its image.
func imagesToPDF(pages []image.Image) ([]byte, error) {
	readers := make([]io.Reader, 0, len(pages))
	for i, img := range pages {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}
		readers = append(readers, &buf)
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Full

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, readers, imp, pdfConfig()); err != nil {
		return nil, fmt.Errorf("failed to import images: %w", err)
	}
	return out.Bytes(), nil
}

func imagePDF(page *imaging.Frame) ([]byte, error) {
	return imagesToPDF([]image.Image{page.Image()})
}

// The JSON page description accepted by api.Create.
type (
	pdfLayout struct {
		Paper  string             `json:"paper"`
		Origin string             `json:"origin"`
		Pages  map[string]pdfPage `json:"pages"`
	}

	pdfPage struct {
		Content pdfContent `json:"content"`
	}

	pdfContent struct {
		Text []pdfText `json:"text,omitempty"`
	}

	pdfText struct {
		Value string     `json:"value"`
		Pos   [2]float64 `json:"pos"`
		Font  pdfFont    `json:"font"`
	}

	pdfFont struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	}
)

// textLayout places wrapped lines top to bottom on as many A4 pages as
// they need. Blank lines keep their space but produce no text. An empty
// text still produces one blank page.
func textLayout(text string) pdfLayout {
	lines := wrapText(text, charsPerLine)

	layout := pdfLayout{Paper: "A4", Origin: "LowerLeft", Pages: map[string]pdfPage{}}
	for start, n := 0, 1; ; start, n = start+linesPerPage, n+1 {
		end := start + linesPerPage
		if end > len(lines) {
			end = len(lines)
		}

		var page pdfPage
		for i, line := range lines[start:end] {
			if line == "" {
				continue
			}
			page.Content.Text = append(page.Content.Text, pdfText{
				Value: line,
				Pos:   [2]float64{textMargin, float64(textPageHeight - textMargin - (i+1)*lineHeight)},
				Font:  pdfFont{Name: textFont, Size: textFontSize},
			})
		}
		layout.Pages[strconv.Itoa(n)] = page

		if end == len(lines) {
			break
		}
	}
	return layout
}

// textPDF writes text as real PDF text on A4 pages in a fixed-width font.
func textPDF(text string) ([]byte, error) {
	desc, err := json.Marshal(textLayout(text))
	if err != nil {
		return nil, fmt.Errorf("failed to describe text pages: %w", err)
	}

	var out bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(desc), &out, pdfConfig()); err != nil {
		return nil, fmt.Errorf("failed to create text PDF: %w", err)
	}
	return out.Bytes(), nil
}

// wrapText splits text into lines of at most width runes, breaking at
// spaces where possible. Existing line breaks are kept and tabs become
// four spaces.
func wrapText(text string, width int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")

	var out []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimRight(para, " ")
		if para == "" {
			out = append(out, "")
			continue
		}

		var line strings.Builder
		n := 0
		for _, word := range strings.Fields(para) {
			wl := utf8.RuneCountInString(word)
			for wl > width {
				if n > 0 {
					out = append(out, line.String())
					line.Reset()
					n = 0
				}
				r := []rune(word)
				out = append(out, string(r[:width]))
				word = string(r[width:])
				wl -= width
			}
			if n > 0 && n+1+wl > width {
				out = append(out, line.String())
				line.Reset()
				n = 0
			}
			if n > 0 {
				line.WriteByte(' ')
				n++
			}
			line.WriteString(word)
			n += wl
		}
		if n > 0 {
			out = append(out, line.String())
		}
	}

	// Drop trailing blank lines so an empty text is a single empty page.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
