package scanner

import (
	"context"
	"fmt"

	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// FrameSource supplies one frame per capture. A camera, an upload and a
// file on disk are all frame sources.
//
// Capture failures are reported as acquisition errors and the pipeline is
// not invoked.
type FrameSource interface {
	Capture(ctx context.Context) (*imaging.Frame, error)
}

// FrameSourceFunc adapts a function to the FrameSource interface.
type FrameSourceFunc func(ctx context.Context) (*imaging.Frame, error)

// Capture calls f(ctx).
func (f FrameSourceFunc) Capture(ctx context.Context) (*imaging.Frame, error) {
	return f(ctx)
}

// FileSource reads a frame from an image file through an ImageCache.
type FileSource struct {
	Path  string
	Cache *imaging.ImageCache
}

// NewFileSource returns a source for path. A nil cache disables caching.
func NewFileSource(path string, cache *imaging.ImageCache) *FileSource {
	return &FileSource{Path: path, Cache: cache}
}

// Capture loads the file, applying EXIF orientation.
func (s *FileSource) Capture(ctx context.Context) (*imaging.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewCancelledError("capture cancelled", err)
	}
	if s.Path == "" {
		return nil, apperrors.NewAcquisitionError("no image path given", nil)
	}

	cache := s.Cache
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	f, err := cache.LoadFrame(s.Path)
	if err != nil {
		return nil, apperrors.NewAcquisitionError(fmt.Sprintf("cannot read %s", s.Path), err)
	}
	return f, nil
}

// BytesSource decodes a frame from encoded image bytes, e.g. an upload.
type BytesSource struct {
	Data []byte
}

// Capture decodes the bytes.
func (s BytesSource) Capture(ctx context.Context) (*imaging.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewCancelledError("capture cancelled", err)
	}
	if len(s.Data) == 0 {
		return nil, apperrors.NewAcquisitionError("no image data", nil)
	}
	f, err := imaging.Decode(s.Data)
	if err != nil {
		return nil, apperrors.NewAcquisitionError("cannot decode image", err)
	}
	return f, nil
}
