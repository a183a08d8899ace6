package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
)

// Frame is a fixed-size grid of pixel samples.
//
// Pix holds Width*Height*Channels samples in row-major order with channels
// interleaved. Sample values are in the 0-255 range.
type Frame struct {
	Width    int
	Height   int
	Channels int
	Pix      []float64
}

// NewFrame allocates a zeroed frame. Non-positive sizes are raised to 1 so
// that every frame has at least one pixel.
func NewFrame(width, height, channels int) *Frame {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if channels < 1 {
		channels = 1
	}
	return &Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float64, width*height*channels),
	}
}

// At returns the sample of channel c at (x, y). No bounds checking.
func (f *Frame) At(x, y, c int) float64 {
	return f.Pix[(y*f.Width+x)*f.Channels+c]
}

// Set stores the sample of channel c at (x, y). No bounds checking.
func (f *Frame) Set(x, y, c int, v float64) {
	f.Pix[(y*f.Width+x)*f.Channels+c] = v
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{Width: f.Width, Height: f.Height, Channels: f.Channels}
	out.Pix = make([]float64, len(f.Pix))
	copy(out.Pix, f.Pix)
	return out
}

// Bounds returns the frame rectangle anchored at the origin.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// FromImage converts any image into a Frame.
//
// Gray images become single-channel frames; everything else becomes a
// four-channel RGBA frame. The result is always anchored at (0,0) even if
// the source bounds are not.
func FromImage(img image.Image) *Frame {
	if g, ok := img.(*image.Gray); ok {
		b := g.Bounds()
		f := NewFrame(b.Dx(), b.Dy(), 1)
		for y := 0; y < b.Dy(); y++ {
			row := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
			for x, v := range row {
				f.Pix[y*f.Width+x] = float64(v)
			}
		}
		return f
	}

	// NRGBA (what the resampling helpers return) is copied as-is so that
	// translucent pixels are not premultiplied.
	if n, ok := img.(*image.NRGBA); ok {
		b := n.Bounds()
		f := NewFrame(b.Dx(), b.Dy(), 4)
		for y := 0; y < b.Dy(); y++ {
			src := n.Pix[y*n.Stride : y*n.Stride+b.Dx()*4]
			dst := f.Pix[y*f.Width*4 : (y+1)*f.Width*4]
			for i, v := range src {
				dst[i] = float64(v)
			}
		}
		return f
	}

	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	f := NewFrame(b.Dx(), b.Dy(), 4)
	for y := 0; y < b.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+b.Dx()*4]
		dst := f.Pix[y*f.Width*4 : (y+1)*f.Width*4]
		for i, v := range src {
			dst[i] = float64(v)
		}
	}
	return f
}

// Image converts the frame back to a standard image.
//
// One-channel frames become *image.Gray, three- and four-channel frames
// become *image.NRGBA (three-channel frames are made opaque). Samples are
// rounded and clamped to 0-255.
func (f *Frame) Image() image.Image {
	rect := f.Bounds()
	if f.Channels == 1 {
		g := image.NewGray(rect)
		for i, v := range f.Pix {
			g.Pix[i] = toByte(v)
		}
		return g
	}

	out := image.NewNRGBA(rect)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			out.SetNRGBA(x, y, f.ColorAt(x, y))
		}
	}
	return out
}

// ColorAt returns the pixel at (x, y) as a color.NRGBA.
func (f *Frame) ColorAt(x, y int) color.NRGBA {
	i := (y*f.Width + x) * f.Channels
	switch f.Channels {
	case 1, 2:
		v := toByte(f.Pix[i])
		return color.NRGBA{R: v, G: v, B: v, A: 255}
	case 3:
		return color.NRGBA{R: toByte(f.Pix[i]), G: toByte(f.Pix[i+1]), B: toByte(f.Pix[i+2]), A: 255}
	default:
		return color.NRGBA{R: toByte(f.Pix[i]), G: toByte(f.Pix[i+1]), B: toByte(f.Pix[i+2]), A: toByte(f.Pix[i+3])}
	}
}

// toByte rounds and clamps a sample to the 0-255 range.
func toByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// ClampSample constrains a sample to the valid 0-255 intensity range.
func ClampSample(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
