package detection

import (
	"math"
	"sort"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive for iteration, inclusive for bounds)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Point represents a 2D coordinate. Traced outlines hold whole pixel
// positions; corners scaled back from a downscaled frame may be fractional.
type Point struct {
	X float64 `json:"x"` // Horizontal position (0 = leftmost)
	Y float64 `json:"y"` // Vertical position (0 = topmost)
}

// Quad is a quadrilateral in canonical order: top-left, top-right,
// bottom-right, bottom-left.
type Quad [4]Point

// FullFrameQuad returns the quadrilateral covering a whole frame.
func FullFrameQuad(width, height int) Quad {
	w, h := float64(width), float64(height)
	return Quad{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

// Scale multiplies every corner's X by sx and Y by sy.
func (q Quad) Scale(sx, sy float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = Point{X: p.X * sx, Y: p.Y * sy}
	}
	return out
}

// Area returns the quadrilateral's shoelace area.
func (q Quad) Area() float64 {
	return PolygonArea(q[:])
}

// Bounds returns the smallest integer box containing the quadrilateral.
func (q Quad) Bounds() Bounds {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range q {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Bounds{
		X1: int(math.Floor(minX)),
		Y1: int(math.Floor(minY)),
		X2: int(math.Ceil(maxX)),
		Y2: int(math.Ceil(maxY)),
	}
}

// PolygonArea returns the absolute shoelace area of a closed polygon.
// Fewer than three vertices have zero area.
func PolygonArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// Perimeter returns the length of a polyline, closing it back to the first
// vertex when closed is true.
func Perimeter(pts []Point, closed bool) float64 {
	if len(pts) < 2 {
		return 0
	}
	var length float64
	for i := 1; i < len(pts); i++ {
		length += distance(pts[i-1], pts[i])
	}
	if closed {
		length += distance(pts[len(pts)-1], pts[0])
	}
	return length
}

// OrderCorners puts four corners in canonical order.
//
// Corners are sorted by angle around their centroid, which in image
// coordinates (Y down) yields clockwise order on screen. The sequence is
// then rotated so the corner nearest the bounding box's top-left comes
// first, giving top-left, top-right, bottom-right, bottom-left. When two
// corners are equally near, the one reached first clockwise wins.
func OrderCorners(pts [4]Point) Quad {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= 4
	cy /= 4

	sorted := pts
	sort.SliceStable(sorted[:], func(i, j int) bool {
		return math.Atan2(sorted[i].Y-cy, sorted[i].X-cx) < math.Atan2(sorted[j].Y-cy, sorted[j].X-cx)
	})

	minX, minY := math.Inf(1), math.Inf(1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
	}
	origin := Point{X: minX, Y: minY}

	first := 0
	best := math.Inf(1)
	for i, p := range sorted {
		if d := distance(p, origin); d < best {
			best = d
			first = i
		}
	}

	var q Quad
	for i := range q {
		q[i] = sorted[(first+i)%4]
	}
	return q
}

// pointInPolygon reports whether p lies inside poly using even-odd ray
// casting along +X.
func pointInPolygon(p Point, poly []Point) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// segmentDistance returns the distance from p to the segment a-b.
func segmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return distance(p, Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
