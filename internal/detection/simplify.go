package detection

// DefaultEpsilonFraction is the Douglas-Peucker tolerance as a fraction of
// the outline perimeter.
const DefaultEpsilonFraction = 0.02

// ApproxPolygon simplifies a closed outline with the Douglas-Peucker
// algorithm.
//
// The outline is split at the vertex farthest from the first vertex and
// each half is simplified as an open polyline. Vertices that remain within
// epsilon of the line through their neighbours are then pruned, so the
// arbitrary starting vertex does not survive as a spurious corner.
func ApproxPolygon(pts []Point, epsilon float64) []Point {
	n := len(pts)
	if n < 3 {
		out := make([]Point, n)
		copy(out, pts)
		return out
	}

	split := 0
	far := -1.0
	for i := 1; i < n; i++ {
		if d := distance(pts[0], pts[i]); d > far {
			far = d
			split = i
		}
	}
	if far == 0 {
		return []Point{pts[0]}
	}

	first := douglasPeucker(pts[:split+1], epsilon)

	tail := make([]Point, 0, n-split+1)
	tail = append(tail, pts[split:]...)
	tail = append(tail, pts[0])
	second := douglasPeucker(tail, epsilon)

	poly := make([]Point, 0, len(first)+len(second))
	poly = append(poly, first[:len(first)-1]...)
	poly = append(poly, second[:len(second)-1]...)

	return pruneCollinear(poly, epsilon)
}

// douglasPeucker simplifies an open polyline, always keeping both ends.
func douglasPeucker(pts []Point, epsilon float64) []Point {
	if len(pts) < 3 {
		out := make([]Point, len(pts))
		copy(out, pts)
		return out
	}

	keep := make([]bool, len(pts))
	keep[0] = true
	keep[len(pts)-1] = true

	// Iterative to avoid deep recursion on long outlines
	type span struct{ lo, hi int }
	stack := []span{{0, len(pts) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := -1
		maxDist := epsilon
		for i := s.lo + 1; i < s.hi; i++ {
			if d := segmentDistance(pts[i], pts[s.lo], pts[s.hi]); d > maxDist {
				maxDist = d
				idx = i
			}
		}
		if idx < 0 {
			continue
		}
		keep[idx] = true
		stack = append(stack, span{s.lo, idx}, span{idx, s.hi})
	}

	out := make([]Point, 0)
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

// pruneCollinear drops vertices of a closed polygon that lie within epsilon
// of the segment joining their neighbours, repeating until stable.
func pruneCollinear(poly []Point, epsilon float64) []Point {
	for len(poly) > 3 {
		removed := false
		for i := 0; i < len(poly) && len(poly) > 3; i++ {
			prev := poly[(i+len(poly)-1)%len(poly)]
			next := poly[(i+1)%len(poly)]
			if segmentDistance(poly[i], prev, next) <= epsilon {
				poly = append(poly[:i], poly[i+1:]...)
				removed = true
				i--
			}
		}
		if !removed {
			break
		}
	}
	return poly
}
