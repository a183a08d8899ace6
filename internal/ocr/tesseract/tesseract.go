// Package tesseract implements the OCR recognizer with Tesseract via
// gosseract.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-por
//   - macOS: brew install tesseract tesseract-lang
//
// Language data is looked up in Tesseract's default location unless a
// tessdata prefix is configured.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	dimaging "github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
)

// Recognizer runs Tesseract on in-memory images.
//
// Each call uses its own gosseract client, so a Recognizer is safe for
// concurrent use.
type Recognizer struct {
	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string
}

// New returns a Recognizer. An empty prefix uses Tesseract's default
// tessdata location.
func New(tessdataPrefix string) *Recognizer {
	return &Recognizer{TessdataPrefix: tessdataPrefix}
}

// Recognize returns the text found in img.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, lang string) (string, error) {
	result, err := r.Extract(ctx, img, lang)
	if err != nil {
		return "", err
	}
	return result.FullText, nil
}

// Extract performs OCR on an image and returns the full text along with
// word bounding boxes.
//
// The image is handed to Tesseract as PNG bytes; no temporary file is
// written. If word-level bounding box extraction fails (which can happen
// with some Tesseract configurations), the full text is still returned with
// an empty Regions slice.
//
// Tesseract cannot be interrupted. When ctx is cancelled first, Extract
// returns immediately with a cancelled error and the recognition finishes
// in the background.
func (r *Recognizer) Extract(ctx context.Context, img image.Image, lang string) (*ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewCancelledError("recognition cancelled", err)
	}
	lang = ocr.LanguageOrDefault(lang)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperrors.NewRecognitionError("failed to encode image for OCR", err)
	}

	type outcome struct {
		result *ocr.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := r.run(buf.Bytes(), lang)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return nil, apperrors.NewCancelledError("recognition cancelled", ctx.Err())
	case o := <-done:
		if o.err != nil {
			return nil, apperrors.NewRecognitionError(fmt.Sprintf("tesseract (%s) failed", lang), o.err)
		}
		return o.result, nil
	}
}

// ExtractRegion performs OCR on a rectangular region of an image.
//
// The returned bounding boxes are adjusted to the original image
// coordinates. For example, if the region starts at (100, 50) and a word is
// detected at (10, 20) within the cropped region, the returned bounds will
// be (110, 70).
func (r *Recognizer) ExtractRegion(ctx context.Context, img image.Image, region image.Rectangle, lang string) (*ocr.Result, error) {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("region %v is outside the image", region), nil)
	}

	result, err := r.Extract(ctx, dimaging.Crop(img, region), lang)
	if err != nil {
		return nil, err
	}

	for i := range result.Regions {
		result.Regions[i].Bounds.X1 += region.Min.X
		result.Regions[i].Bounds.Y1 += region.Min.Y
		result.Regions[i].Bounds.X2 += region.Min.X
		result.Regions[i].Bounds.Y2 += region.Min.Y
	}
	return result, nil
}

func (r *Recognizer) run(data []byte, lang string) (*ocr.Result, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if r.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	result := &ocr.Result{FullText: text, Language: lang, Regions: []ocr.TextRegion{}}

	// Get bounding boxes for words
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return result, nil
	}
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		result.Regions = append(result.Regions, ocr.TextRegion{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: ocr.Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	return result, nil
}
