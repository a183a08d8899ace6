package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	dimaging "github.com/disintegration/imaging"
)

// EncodedImage contains a frame encoded for transport.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// ParseFormat maps a format name ("png", "jpeg", "jpg") to an encoder format
// and its MIME type.
func ParseFormat(name string) (dimaging.Format, string, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "png":
		return dimaging.PNG, "image/png", nil
	case "jpg", "jpeg":
		return dimaging.JPEG, "image/jpeg", nil
	default:
		return 0, "", fmt.Errorf("unsupported image format: %s", name)
	}
}

// Encode writes a frame as PNG or JPEG.
func Encode(f *Frame, format string) ([]byte, error) {
	fmtID, _, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dimaging.Encode(&buf, f.Image(), fmtID, dimaging.JPEGQuality(92)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 encodes a frame and wraps it with its size and MIME type.
func EncodeBase64(f *Frame, format string) (*EncodedImage, error) {
	_, mime, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	data, err := Encode(f, format)
	if err != nil {
		return nil, err
	}
	return &EncodedImage{
		Width:       f.Width,
		Height:      f.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    mime,
	}, nil
}
