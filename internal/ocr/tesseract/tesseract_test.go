package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	point := fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  point,
	}
	d.DrawString(text)
}

// createImageWithText renders text and scales it up by drawing each pixel
// as a scale x scale block, which Tesseract reads far more reliably.
func createImageWithText(text string, scale int) *image.RGBA {
	width := len(text)*7 + 40
	height := 40

	small := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)

	img := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := small.At(x, y)
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.Set(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return img
}

// skipIfUnavailable skips when Tesseract or the language data is missing.
func skipIfUnavailable(t *testing.T, err error) {
	t.Helper()
	if apperrors.IsType(err, apperrors.ErrorTypeRecognition) {
		t.Skipf("Tesseract not available: %v", err)
	}
}

func TestRecognizer_Extract(t *testing.T) {
	r := New("")
	result, err := r.Extract(context.Background(), createImageWithText("HELLO WORLD", 3), "eng")
	if err != nil {
		skipIfUnavailable(t, err)
		t.Fatalf("Extract failed: %v", err)
	}

	t.Logf("Extracted text: %q", result.FullText)
	t.Logf("Number of regions: %d", len(result.Regions))

	if result.Language != "eng" {
		t.Errorf("Language: got %q, want eng", result.Language)
	}
	for _, region := range result.Regions {
		if region.Confidence < 0 || region.Confidence > 1 {
			t.Errorf("region %q confidence out of range: %v", region.Text, region.Confidence)
		}
	}
}

func TestRecognizer_Recognize(t *testing.T) {
	r := New("")
	text, err := r.Recognize(context.Background(), createImageWithText("INVOICE 2024", 4), "eng")
	if err != nil {
		skipIfUnavailable(t, err)
		t.Fatalf("Recognize failed: %v", err)
	}
	t.Logf("Recognized: %q", strings.TrimSpace(text))
}

func TestRecognizer_InvalidLanguage(t *testing.T) {
	r := New("")
	_, err := r.Recognize(context.Background(), createImageWithText("TEST", 2), "not_a_language")
	if err == nil {
		t.Fatal("Recognize should fail for an unknown language")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeRecognition) {
		t.Errorf("error type: got %v, want recognition_failed", apperrors.TypeOf(err))
	}
}

func TestRecognizer_BadTessdataPrefix(t *testing.T) {
	r := New("/nonexistent/tessdata/")
	_, err := r.Recognize(context.Background(), createImageWithText("TEST", 2), "eng")
	if !apperrors.IsType(err, apperrors.ErrorTypeRecognition) {
		t.Errorf("got %v, want a recognition_failed error", err)
	}
}

func TestRecognizer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("").Recognize(ctx, createImageWithText("TEST", 2), "eng")
	if !apperrors.IsType(err, apperrors.ErrorTypeCancelled) {
		t.Errorf("got %v, want a cancelled error", err)
	}
}

func TestRecognizer_ExtractRegion(t *testing.T) {
	img := createImageWithText("LEFT RIGHT", 3)
	region := image.Rect(img.Bounds().Dx()/2, 0, img.Bounds().Dx(), img.Bounds().Dy())

	result, err := New("").ExtractRegion(context.Background(), img, region, "eng")
	if err != nil {
		skipIfUnavailable(t, err)
		t.Fatalf("ExtractRegion failed: %v", err)
	}

	for _, word := range result.Regions {
		if word.Bounds.X1 < region.Min.X {
			t.Errorf("word %q bounds %+v not offset into the region", word.Text, word.Bounds)
		}
	}
	t.Logf("Region text: %q", strings.TrimSpace(result.FullText))
}

func TestRecognizer_ExtractRegion_OutsideImage(t *testing.T) {
	img := createImageWithText("X", 1)
	_, err := New("").ExtractRegion(context.Background(), img, image.Rect(5000, 5000, 5100, 5100), "eng")
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("got %v, want a validation error", err)
	}
}
