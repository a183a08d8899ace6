package rectify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
)

// collinearTolerance is the relative cross product below which three
// corners are treated as collinear.
const collinearTolerance = 1e-9

// Homography is a 3x3 projective transform with h33 normalized to 1.
type Homography struct {
	m *mat.Dense
}

// Solve computes the homography mapping each src corner onto the matching
// dst corner.
//
// The eight unknowns are solved as a dense 8x8 linear system. Degenerate
// corner sets (coincident points, three collinear points on either side)
// and singular systems return a degenerate geometry error.
func Solve(src, dst [4]detection.Point) (*Homography, error) {
	if err := CheckCorners(src); err != nil {
		return nil, err
	}
	if err := CheckCorners(dst); err != nil {
		return nil, err
	}

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y

		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return nil, apperrors.NewDegenerateGeometryError("homography system is singular", err)
	}

	data := make([]float64, 9)
	for i := 0; i < 8; i++ {
		data[i] = h.AtVec(i)
		if math.IsNaN(data[i]) || math.IsInf(data[i], 0) {
			return nil, apperrors.NewDegenerateGeometryError("homography has non-finite coefficients", nil)
		}
	}
	data[8] = 1

	return &Homography{m: mat.NewDense(3, 3, data)}, nil
}

// Apply maps a point through the homography.
func (h *Homography) Apply(p detection.Point) detection.Point {
	m := h.m
	w := m.At(2, 0)*p.X + m.At(2, 1)*p.Y + m.At(2, 2)
	return detection.Point{
		X: (m.At(0, 0)*p.X + m.At(0, 1)*p.Y + m.At(0, 2)) / w,
		Y: (m.At(1, 0)*p.X + m.At(1, 1)*p.Y + m.At(1, 2)) / w,
	}
}

// Inverse returns the transform mapping dst back onto src.
func (h *Homography) Inverse() (*Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(h.m); err != nil {
		return nil, apperrors.NewDegenerateGeometryError("homography is not invertible", err)
	}

	s := inv.At(2, 2)
	if s == 0 || math.IsNaN(s) {
		return nil, apperrors.NewDegenerateGeometryError("homography is not invertible", nil)
	}
	inv.Scale(1/s, &inv)
	return &Homography{m: &inv}, nil
}

// Matrix returns the coefficients in row-major order.
func (h *Homography) Matrix() [9]float64 {
	var out [9]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = h.m.At(r, c)
		}
	}
	return out
}

// CheckCorners rejects corner sets with no projective transform: two
// coincident corners, or any three corners on one line.
func CheckCorners(pts [4]detection.Point) error {
	for i := 0; i < 4; i++ {
		if math.IsNaN(pts[i].X) || math.IsNaN(pts[i].Y) || math.IsInf(pts[i].X, 0) || math.IsInf(pts[i].Y, 0) {
			return apperrors.NewDegenerateGeometryError(fmt.Sprintf("corner %d is not finite", i), nil)
		}
		for j := i + 1; j < 4; j++ {
			if pts[i] == pts[j] {
				return apperrors.NewDegenerateGeometryError(
					fmt.Sprintf("corners %d and %d coincide at (%.1f, %.1f)", i, j, pts[i].X, pts[i].Y), nil)
			}
		}
	}

	triples := [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
	for _, t := range triples {
		a, b, c := pts[t[0]], pts[t[1]], pts[t[2]]
		abx, aby := b.X-a.X, b.Y-a.Y
		acx, acy := c.X-a.X, c.Y-a.Y
		cross := abx*acy - aby*acx
		scale := math.Hypot(abx, aby) * math.Hypot(acx, acy)
		if math.Abs(cross) <= collinearTolerance*scale {
			return apperrors.NewDegenerateGeometryError(
				fmt.Sprintf("corners %d, %d and %d are collinear", t[0], t[1], t[2]), nil)
		}
	}
	return nil
}
