package detection

import (
	"math"
	"testing"

	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// rectOutline returns the traced boundary of a filled axis-aligned
// rectangle of pixels, clockwise from the top-left pixel.
func rectOutline(x1, y1, x2, y2 int) []Point {
	var pts []Point
	for x := x1; x <= x2; x++ {
		pts = append(pts, Point{float64(x), float64(y1)})
	}
	for y := y1 + 1; y <= y2; y++ {
		pts = append(pts, Point{float64(x2), float64(y)})
	}
	for x := x2 - 1; x >= x1; x-- {
		pts = append(pts, Point{float64(x), float64(y2)})
	}
	for y := y2 - 1; y > y1; y-- {
		pts = append(pts, Point{float64(x1), float64(y)})
	}
	return pts
}

func assertQuadNear(t *testing.T, got, want Quad, tol float64) {
	t.Helper()
	for i := range want {
		if math.Abs(got[i].X-want[i].X) > tol || math.Abs(got[i].Y-want[i].Y) > tol {
			t.Errorf("corner %d: got (%.3f, %.3f), want (%.3f, %.3f)", i, got[i].X, got[i].Y, want[i].X, want[i].Y)
		}
	}
}

func TestRefineCorners(t *testing.T) {
	outline := rectOutline(10, 10, 90, 70)
	// Simplification can keep vertices a pixel or two off the true corners.
	skewed := Quad{{12, 10}, {90, 11}, {89, 70}, {10, 69}}

	tests := []struct {
		name  string
		inset float64
		want  Quad
	}{
		{"no inset", 0, Quad{{10.5, 10.5}, {90.5, 10.5}, {90.5, 70.5}, {10.5, 70.5}}},
		{"one pixel", 1, Quad{{11.5, 11.5}, {89.5, 11.5}, {89.5, 69.5}, {11.5, 69.5}}},
		{"default", DefaultEdgeInset, Quad{{13, 13}, {88, 13}, {88, 68}, {13, 68}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RefineCorners(outline, skewed, tt.inset)
			if !ok {
				t.Fatal("expected refinement to succeed")
			}
			assertQuadNear(t, got, tt.want, 1e-6)
		})
	}
}

func TestRefineCorners_Rotated(t *testing.T) {
	// Sides of a page tilted by a 1:4 slope, sampled every quarter pixel.
	corners := Quad{{40, 20}, {120, 40}, {100, 120}, {20, 100}}
	var outline []Point
	for i := range corners {
		a, b := corners[i], corners[(i+1)%4]
		for s := 0.0; s < 1; s += 0.005 {
			// Undo the pixel-centre shift applied by RefineCorners.
			outline = append(outline, Point{a.X + s*(b.X-a.X) - 0.5, a.Y + s*(b.Y-a.Y) - 0.5})
		}
	}
	simplified := corners
	for i := range simplified {
		simplified[i].X -= 0.5
		simplified[i].Y -= 0.5
	}
	simplified[1].X += 2

	got, ok := RefineCorners(outline, simplified, 0)
	if !ok {
		t.Fatal("expected refinement to succeed")
	}
	assertQuadNear(t, got, corners, 1e-6)
}

func TestRefineCorners_FallsBack(t *testing.T) {
	q := Quad{{10, 10}, {90, 10}, {90, 70}, {10, 70}}
	centred := Quad{{10.5, 10.5}, {90.5, 10.5}, {90.5, 70.5}, {10.5, 70.5}}

	tests := []struct {
		name    string
		outline []Point
	}{
		{"no outline", nil},
		{"short outline", []Point{{10, 10}, {90, 10}, {90, 70}, {10, 70}}},
		// Only the top and bottom rows: the left and right sides have no points.
		{"missing sides", append(rectOutline(10, 10, 90, 10), rectOutline(10, 70, 90, 70)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RefineCorners(tt.outline, q, DefaultEdgeInset)
			if ok {
				t.Error("expected refinement to fail")
			}
			if got != centred {
				t.Errorf("got %v, want the simplified corners at pixel centres %v", got, centred)
			}
		})
	}
}

func TestRefineCorners_FromFindContours(t *testing.T) {
	// A filled 60x40 block: the dilated trace runs one pixel outside it.
	f := imaging.NewFrame(100, 80, 1)
	for y := 20; y < 60; y++ {
		for x := 20; x < 80; x++ {
			f.Set(x, y, 0, 255)
		}
	}
	contours := FindContours(f, ContourOptions{})
	sel := SelectQuadrilateral(contours, 100, 80, 0)
	if !sel.Found {
		t.Fatal("expected the block to be selected")
	}
	if len(sel.Outline) == 0 {
		t.Fatal("selection should carry the traced outline")
	}

	got, ok := RefineCorners(sel.Outline, sel.Corners, 1)
	if !ok {
		t.Fatal("expected refinement to succeed")
	}
	// The outline centres sit at 19.5 and 80.5; one pixel in is the block edge.
	assertQuadNear(t, got, Quad{{20.5, 20.5}, {79.5, 20.5}, {79.5, 59.5}, {20.5, 59.5}}, 1e-6)
}
