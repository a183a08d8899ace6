package detection

import (
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// DefaultMinContourPixels is the smallest edge component kept as a contour.
const DefaultMinContourPixels = 10

// Contour is a simplified closed outline of one edge component.
type Contour struct {
	// Points is the simplified polygon, in tracing order.
	Points []Point `json:"points"`

	// Bounds is the bounding box of the traced outline.
	Bounds Bounds `json:"bounds"`

	// Pixels is the number of (dilated) edge pixels in the component.
	Pixels int `json:"pixels"`

	// Perimeter is the length of the traced outline before simplification.
	Perimeter float64 `json:"perimeter"`

	// Outline is the traced boundary before simplification, in pixel
	// coordinates.
	Outline []Point `json:"-"`
}

// ContourOptions controls contour extraction.
type ContourOptions struct {
	// MinPixels discards components smaller than this. Zero uses
	// DefaultMinContourPixels.
	MinPixels int

	// EpsilonFraction is the simplification tolerance relative to the
	// outline perimeter. Zero uses DefaultEpsilonFraction.
	EpsilonFraction float64

	// NoDilate skips the 3x3 dilation applied before labeling.
	NoDilate bool

	// KeepNested keeps components that lie inside another outline.
	KeepNested bool
}

func (o ContourOptions) withDefaults() ContourOptions {
	if o.MinPixels <= 0 {
		o.MinPixels = DefaultMinContourPixels
	}
	if o.EpsilonFraction <= 0 {
		o.EpsilonFraction = DefaultEpsilonFraction
	}
	return o
}

// component is one labeled group of edge pixels.
type component struct {
	label   int32
	start   int // first pixel in raster order: topmost, then leftmost
	pixels  int
	outline []Point
	bounds  Bounds
}

// FindContours extracts simplified outer outlines from a binary edge frame.
//
// Any non-zero sample in the first channel counts as an edge. The input is
// not modified. Returned contours are in raster order of their topmost,
// leftmost pixel.
func FindContours(edges *imaging.Frame, opts ContourOptions) []Contour {
	opts = opts.withDefaults()
	w, h := edges.Width, edges.Height

	mask := make([]bool, w*h)
	for i := range mask {
		mask[i] = edges.Pix[i*edges.Channels] > 0
	}
	if !opts.NoDilate {
		mask = dilate(mask, w, h)
	}

	labels, comps := labelComponents(mask, w, h, opts.MinPixels)

	for i := range comps {
		comps[i].outline = traceBoundary(labels, w, h, comps[i].start, comps[i].label)
		comps[i].bounds = outlineBounds(comps[i].outline)
	}

	if !opts.KeepNested {
		comps = dropNested(comps, w)
	}

	contours := make([]Contour, 0, len(comps))
	for _, c := range comps {
		perimeter := Perimeter(c.outline, true)
		contours = append(contours, Contour{
			Points:    ApproxPolygon(c.outline, opts.EpsilonFraction*perimeter),
			Bounds:    c.bounds,
			Pixels:    c.pixels,
			Perimeter: perimeter,
			Outline:   c.outline,
		})
	}
	return contours
}

// dilate applies a 3x3 binary dilation with the frame border treated as
// background.
func dilate(mask []bool, w, h int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					out[ny*w+nx] = true
				}
			}
		}
	}
	return out
}

// labelComponents groups 8-connected edge pixels.
//
// Uses a stack-based flood fill (not recursive) to avoid stack overflow on
// long edges. Components smaller than minPixels are labeled -1 and not
// returned.
func labelComponents(mask []bool, w, h, minPixels int) ([]int32, []component) {
	labels := make([]int32, len(mask))
	comps := make([]component, 0)
	next := int32(1)

	stack := make([]int, 0, 64)
	members := make([]int, 0, 64)
	for start, on := range mask {
		if !on || labels[start] != 0 {
			continue
		}

		label := next
		next++
		members = members[:0]
		stack = append(stack[:0], start)
		labels[start] = label

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, i)
			x, y := i%w, i/w

			// 8-connected neighbors
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if (dx == 0 && dy == 0) || nx < 0 || nx >= w {
						continue
					}
					n := ny*w + nx
					if mask[n] && labels[n] == 0 {
						labels[n] = label
						stack = append(stack, n)
					}
				}
			}
		}

		if len(members) < minPixels {
			for _, i := range members {
				labels[i] = -1
			}
			continue
		}
		comps = append(comps, component{label: label, start: start, pixels: len(members)})
	}
	return labels, comps
}

// mooreDirs lists the 8 neighbours clockwise on screen, starting west.
var mooreDirs = [8][2]int{
	{-1, 0},  // W
	{-1, -1}, // NW
	{0, -1},  // N
	{1, -1},  // NE
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
}

// dirIndex maps a neighbour offset (dx+1, dy+1) to its index in mooreDirs.
var dirIndex = [3][3]int{
	{1, 0, 7},  // dx = -1: NW, W, SW
	{2, -1, 6}, // dx = 0: N, -, S
	{3, 4, 5},  // dx = +1: NE, E, SE
}

// traceBoundary walks the outer boundary of a component with
// Moore-neighbour tracing.
//
// start must be the component's first pixel in raster order, so its west
// neighbour is guaranteed to be background. The walk stops when a
// (pixel, backtrack direction) state repeats, which also terminates on
// single pixels and one-pixel-wide spurs.
func traceBoundary(labels []int32, w, h, start int, label int32) []Point {
	inside := func(x, y int) bool {
		return x >= 0 && x < w && y >= 0 && y < h && labels[y*w+x] == label
	}

	cx, cy := start%w, start/w
	back := 0 // west of the start pixel is background
	outline := []Point{{X: float64(cx), Y: float64(cy)}}
	seen := map[int]struct{}{start*8 + back: {}}

	for {
		moved := false
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			nx, ny := cx+mooreDirs[d][0], cy+mooreDirs[d][1]
			if !inside(nx, ny) {
				continue
			}

			// The last background cell checked becomes the new backtrack.
			pd := (d + 7) % 8
			px, py := cx+mooreDirs[pd][0], cy+mooreDirs[pd][1]
			back = dirIndex[px-nx+1][py-ny+1]
			cx, cy = nx, ny
			moved = true
			break
		}
		if !moved {
			break // isolated pixel
		}

		state := (cy*w+cx)*8 + back
		if _, ok := seen[state]; ok {
			break
		}
		seen[state] = struct{}{}
		outline = append(outline, Point{X: float64(cx), Y: float64(cy)})
	}

	// The walk ends on the start pixel; do not repeat it.
	if n := len(outline); n > 1 && outline[n-1] == outline[0] {
		outline = outline[:n-1]
	}
	return outline
}

func outlineBounds(pts []Point) Bounds {
	b := Bounds{X1: int(pts[0].X), Y1: int(pts[0].Y), X2: int(pts[0].X), Y2: int(pts[0].Y)}
	for _, p := range pts[1:] {
		b.X1 = minInt(b.X1, int(p.X))
		b.Y1 = minInt(b.Y1, int(p.Y))
		b.X2 = maxInt(b.X2, int(p.X))
		b.Y2 = maxInt(b.Y2, int(p.Y))
	}
	return b
}

// dropNested removes components whose start pixel lies inside another
// component's traced outline.
func dropNested(comps []component, w int) []component {
	kept := make([]component, 0, len(comps))
	for i, c := range comps {
		p := Point{X: float64(c.start % w), Y: float64(c.start / w)}
		nested := false
		for j, other := range comps {
			if i == j || len(other.outline) < 3 {
				continue
			}
			b := other.bounds
			if p.X < float64(b.X1) || p.X > float64(b.X2) || p.Y < float64(b.Y1) || p.Y > float64(b.Y2) {
				continue
			}
			if pointInPolygon(p, other.outline) {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, c)
		}
	}
	return kept
}
