package rectify

import (
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// Target is the size of the rectified output.
type Target struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultTarget is the default rectified page size.
var DefaultTarget = Target{Width: 800, Height: 1000}

// Corners returns the destination corners (0,0), (W,0), (W,H), (0,H).
func (t Target) Corners() [4]detection.Point {
	return detection.FullFrameQuad(t.Width, t.Height)
}

// Validate rejects non-positive target sizes.
func (t Target) Validate() error {
	if t.Width < 1 || t.Height < 1 {
		return apperrors.NewValidationError(fmt.Sprintf("invalid target size %dx%d", t.Width, t.Height), nil)
	}
	return nil
}

// Warp rectifies the region of f bounded by corners (top-left, top-right,
// bottom-right, bottom-left) into a target-sized frame.
//
// Each destination pixel centre (x+0.5, y+0.5) is mapped into the source
// and sampled bilinearly; samples outside the frame clamp to the nearest
// edge pixel. The output has the same channel count as f and is exactly
// target.Width x target.Height.
func Warp(f *imaging.Frame, corners detection.Quad, target Target) (*imaging.Frame, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	forward, err := Solve(corners, target.Corners())
	if err != nil {
		return nil, err
	}
	inverse, err := forward.Inverse()
	if err != nil {
		return nil, err
	}
	m := inverse.Matrix()

	out := imaging.NewFrame(target.Width, target.Height, f.Channels)
	ch := f.Channels
	parallel.Line(target.Height, func(start, end int) {
		sample := make([]float64, ch)
		for y := start; y < end; y++ {
			dy := float64(y) + 0.5
			for x := 0; x < target.Width; x++ {
				dx := float64(x) + 0.5
				w := m[6]*dx + m[7]*dy + m[8]
				sx := (m[0]*dx+m[1]*dy+m[2])/w - 0.5
				sy := (m[3]*dx+m[4]*dy+m[5])/w - 0.5

				bilinear(f, sx, sy, sample)
				copy(out.Pix[(y*target.Width+x)*ch:], sample)
			}
		}
	})
	return out, nil
}

// bilinear samples f at a fractional position with edge clamping, writing
// one value per channel into dst.
func bilinear(f *imaging.Frame, x, y float64, dst []float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		x, y = 0, 0
	}
	maxX := float64(f.Width - 1)
	maxY := float64(f.Height - 1)
	x = math.Max(0, math.Min(maxX, x))
	y = math.Max(0, math.Min(maxY, y))

	x0 := int(x)
	y0 := int(y)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > f.Width-1 {
		x1 = f.Width - 1
	}
	if y1 > f.Height-1 {
		y1 = f.Height - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	ch := f.Channels
	i00 := (y0*f.Width + x0) * ch
	i10 := (y0*f.Width + x1) * ch
	i01 := (y1*f.Width + x0) * ch
	i11 := (y1*f.Width + x1) * ch
	for c := 0; c < ch; c++ {
		top := f.Pix[i00+c]*(1-fx) + f.Pix[i10+c]*fx
		bottom := f.Pix[i01+c]*(1-fx) + f.Pix[i11+c]*fx
		dst[c] = top*(1-fy) + bottom*fy
	}
}
