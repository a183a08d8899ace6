package detection

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultEdgeInset is how far, in detection pixels, refined page edges are
// moved toward the page centre. The traced outline runs along the outside
// of the dilated edge band, so it lies one to two pixels beyond the paper.
const DefaultEdgeInset = 2.5

// minSidePoints is the fewest outline points a side needs for a line fit.
const minSidePoints = 3

// line is the set of points p with n.p = d, n a unit normal.
type line struct {
	nx, ny, d float64
}

// RefineCorners replaces the simplified corners of a page outline with the
// intersections of lines fitted to each side of the traced boundary.
//
// outline and q are in pixel coordinates as produced by FindContours; the
// result is in continuous frame coordinates, where pixel i covers [i, i+1).
// Each fitted side is moved inset pixels toward the centre of q. Points
// near the corners are left out of the fits, so rounded or clipped corners
// do not bend the sides.
//
// When a side has too few points, two sides are nearly parallel, or a
// refined corner lands far from its simplified position, the simplified
// corners are returned (moved to pixel centres) with ok set to false.
func RefineCorners(outline []Point, q Quad, inset float64) (Quad, bool) {
	var centred Quad
	for i, p := range q {
		centred[i] = Point{X: p.X + 0.5, Y: p.Y + 0.5}
	}
	if len(outline) < 4*minSidePoints {
		return centred, false
	}

	var xs, ys [4][]float64
	lengths := [4]float64{}
	for i := range centred {
		a, b := centred[i], centred[(i+1)%4]
		lengths[i] = math.Hypot(b.X-a.X, b.Y-a.Y)
		if lengths[i] == 0 {
			return centred, false
		}
	}

	for _, raw := range outline {
		p := Point{X: raw.X + 0.5, Y: raw.Y + 0.5}
		side, along, dist := nearestSide(p, centred, lengths)
		if side < 0 {
			continue
		}
		l := lengths[side]
		trim := math.Min(math.Max(4, 0.1*l), 0.25*l)
		if along < trim || along > l-trim || dist > math.Max(3, 0.03*l) {
			continue
		}
		xs[side] = append(xs[side], p.X)
		ys[side] = append(ys[side], p.Y)
	}

	var cx, cy float64
	for _, p := range centred {
		cx += p.X / 4
		cy += p.Y / 4
	}

	var sides [4]line
	for i := range sides {
		if len(xs[i]) < minSidePoints {
			return centred, false
		}
		ln := fitLine(xs[i], ys[i])
		if ln.nx*cx+ln.ny*cy < ln.d {
			ln = line{nx: -ln.nx, ny: -ln.ny, d: -ln.d}
		}
		ln.d += inset
		sides[i] = ln
	}

	minSide := math.Min(math.Min(lengths[0], lengths[1]), math.Min(lengths[2], lengths[3]))
	maxMove := 2*inset + math.Max(4, 0.05*minSide)

	var refined Quad
	for i := range refined {
		p, ok := intersect(sides[(i+3)%4], sides[i])
		if !ok || math.Hypot(p.X-centred[i].X, p.Y-centred[i].Y) > maxMove {
			return centred, false
		}
		refined[i] = p
	}
	return refined, true
}

// nearestSide returns the side of q closest to p among those p projects
// onto, the distance along that side from its first corner, and the
// distance from the side. side is -1 when p projects onto no side.
func nearestSide(p Point, q Quad, lengths [4]float64) (side int, along, dist float64) {
	side = -1
	for i := range q {
		a, b := q[i], q[(i+1)%4]
		dx, dy := (b.X-a.X)/lengths[i], (b.Y-a.Y)/lengths[i]
		t := (p.X-a.X)*dx + (p.Y-a.Y)*dy
		if t < 0 || t > lengths[i] {
			continue
		}
		d := math.Abs((p.X-a.X)*dy - (p.Y-a.Y)*dx)
		if side < 0 || d < dist {
			side, along, dist = i, t, d
		}
	}
	return side, along, dist
}

// fitLine fits a total least squares line through the points.
func fitLine(xs, ys []float64) line {
	mx, my := stat.Mean(xs, nil), stat.Mean(ys, nil)
	sxx := stat.Variance(xs, nil)
	syy := stat.Variance(ys, nil)
	sxy := stat.Covariance(xs, ys, nil)

	theta := 0.5 * math.Atan2(2*sxy, sxx-syy)
	nx, ny := -math.Sin(theta), math.Cos(theta)
	return line{nx: nx, ny: ny, d: nx*mx + ny*my}
}

func intersect(a, b line) (Point, bool) {
	det := a.nx*b.ny - a.ny*b.nx
	if math.Abs(det) < 0.1 {
		return Point{}, false
	}
	return Point{
		X: (a.d*b.ny - b.d*a.ny) / det,
		Y: (a.nx*b.d - b.nx*a.d) / det,
	}, true
}
