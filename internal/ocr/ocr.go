package ocr

import (
	"context"
	"image"

	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
)

// DefaultLanguage is the Tesseract language used when none is given.
const DefaultLanguage = "por"

// Recognizer extracts text from an image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, lang string) (string, error)
}

// Extractor is implemented by recognizers that can also report word
// bounding boxes and confidences.
type Extractor interface {
	Extract(ctx context.Context, img image.Image, lang string) (*Result, error)
	ExtractRegion(ctx context.Context, img image.Image, region image.Rectangle, lang string) (*Result, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img image.Image, lang string) (string, error)

// Recognize calls f(ctx, img, lang).
func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image, lang string) (string, error) {
	return f(ctx, img, lang)
}

// Unavailable stands in for a missing engine: every call fails with a
// recognition error.
var Unavailable Recognizer = RecognizerFunc(func(ctx context.Context, img image.Image, lang string) (string, error) {
	return "", apperrors.NewRecognitionError("no OCR engine configured", nil)
})

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this text in the image.
	Bounds Bounds `json:"bounds"`
}

// Result contains the complete results of text extraction from an image.
type Result struct {
	// FullText is all recognized text with original spacing/newlines.
	FullText string `json:"full_text"`

	// Language is the Tesseract language code that was used.
	Language string `json:"language"`

	// Regions contains individual words with their bounding boxes and
	// confidence scores. May be empty if bounding box extraction fails.
	Regions []TextRegion `json:"regions"`
}

// LanguageOrDefault returns lang, or DefaultLanguage when lang is empty.
func LanguageOrDefault(lang string) string {
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}
