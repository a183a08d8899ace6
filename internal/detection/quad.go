package detection

// Candidate is a four-vertex contour eligible to be the page outline.
type Candidate struct {
	Corners Quad    `json:"corners"`
	Area    float64 `json:"area"`
	Outline []Point `json:"-"`
}

// Selection is the outcome of quadrilateral selection.
type Selection struct {
	// Corners is the chosen page outline in canonical order. When Found is
	// false it covers the whole frame.
	Corners Quad `json:"corners"`

	// Found reports whether a contour was selected (false means fallback).
	Found bool `json:"found"`

	// Area is the shoelace area of Corners.
	Area float64 `json:"area"`

	// Candidates is the number of four-vertex contours considered.
	Candidates int `json:"candidates"`

	// Outline is the traced boundary of the chosen contour, for
	// RefineCorners. Empty on fallback.
	Outline []Point `json:"-"`
}

// Candidates returns every contour with exactly four vertices and positive
// area, corners in canonical order, in input order.
func Candidates(contours []Contour) []Candidate {
	out := make([]Candidate, 0)
	for _, c := range contours {
		if len(c.Points) != 4 {
			continue
		}
		area := PolygonArea(c.Points)
		if area <= 0 {
			continue
		}
		out = append(out, Candidate{
			Corners: OrderCorners([4]Point{c.Points[0], c.Points[1], c.Points[2], c.Points[3]}),
			Area:    area,
			Outline: c.Outline,
		})
	}
	return out
}

// SelectQuadrilateral picks the page outline among the contours of a
// width x height frame.
//
// The four-vertex candidate with the largest area wins; on equal areas the
// first one seen is kept. Candidates whose area does not exceed
// minAreaFraction of the frame area are ignored. When nothing qualifies the
// full-frame quadrilateral (0,0),(W,0),(W,H),(0,H) is returned with Found
// set to false.
func SelectQuadrilateral(contours []Contour, width, height int, minAreaFraction float64) Selection {
	candidates := Candidates(contours)
	minArea := minAreaFraction * float64(width) * float64(height)

	best := -1
	bestArea := 0.0
	for i, c := range candidates {
		if c.Area <= minArea {
			continue
		}
		if best < 0 || c.Area > bestArea {
			best = i
			bestArea = c.Area
		}
	}

	if best < 0 {
		full := FullFrameQuad(width, height)
		return Selection{
			Corners:    full,
			Found:      false,
			Area:       full.Area(),
			Candidates: len(candidates),
		}
	}

	return Selection{
		Corners:    candidates[best].Corners,
		Found:      true,
		Area:       bestArea,
		Candidates: len(candidates),
		Outline:    candidates[best].Outline,
	}
}
