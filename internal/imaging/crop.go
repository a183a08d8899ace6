package imaging

import (
	"image"

	dimaging "github.com/disintegration/imaging"
)

// CropResize extracts a rectangular region of a frame and resamples it to
// width x height.
//
// The region is intersected with the frame first. An empty intersection
// falls back to the whole frame, so the result always has the requested
// size. Used when a perspective transform cannot be solved.
func CropResize(f *Frame, region image.Rectangle, width, height int) *Frame {
	region = region.Intersect(f.Bounds())
	if region.Empty() {
		region = f.Bounds()
	}

	img := f.Image()
	cropped := dimaging.Crop(img, region)
	resized := dimaging.Resize(cropped, width, height, dimaging.Lanczos)
	return matchChannels(FromImage(resized), f.Channels)
}

// Scale maps coordinates in a resampled frame back to the frame it was
// derived from: original = resampled * factor, per axis.
type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Fit downscales a frame so that neither side exceeds maxDim, preserving
// the aspect ratio.
//
// It returns the scaled frame and the per-axis factors mapping its
// coordinates back to the original. Each side is rounded separately when
// resampling, so the two factors can differ slightly. When the frame
// already fits, or maxDim <= 0, the input is returned with factors of 1.
func Fit(f *Frame, maxDim int) (*Frame, Scale) {
	if maxDim <= 0 || (f.Width <= maxDim && f.Height <= maxDim) {
		return f, Scale{X: 1, Y: 1}
	}

	fitted := dimaging.Fit(f.Image(), maxDim, maxDim, dimaging.Box)
	out := matchChannels(FromImage(fitted), f.Channels)
	return out, Scale{
		X: float64(f.Width) / float64(out.Width),
		Y: float64(f.Height) / float64(out.Height),
	}
}

// Resize resamples a frame to exactly width x height.
func Resize(f *Frame, width, height int) *Frame {
	if f.Width == width && f.Height == height {
		return f.Clone()
	}
	resized := dimaging.Resize(f.Image(), width, height, dimaging.Lanczos)
	return matchChannels(FromImage(resized), f.Channels)
}

// matchChannels converts a decoded RGBA frame back to the channel layout
// of the frame it was derived from.
func matchChannels(f *Frame, channels int) *Frame {
	if channels == 1 && f.Channels != 1 {
		return Grayscale(f)
	}
	return f
}
