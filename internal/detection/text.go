package detection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/docscan-mcp/internal/enhance"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// inkThresholdC is the adaptive threshold offset separating ink from paper.
// It is larger than the enhancement default so paper grain stays paper.
const inkThresholdC = 10.0

// Text line limits, in pixels of the analysed page.
const (
	minLineHeight = 3
	minLineInk    = 2 // ink pixels for a row to count as part of a line
)

// TextRegion is a block of consecutive text lines.
type TextRegion struct {
	Bounds     Bounds  `json:"bounds"`
	Confidence float64 `json:"confidence"`
	Area       int     `json:"area"`
	Lines      int     `json:"lines"`
}

// TextRegionsResult contains detected text regions
type TextRegionsResult struct {
	Regions []TextRegion `json:"regions"`
	Count   int          `json:"count"`
}

// textLine is a horizontal band of rows holding ink.
type textLine struct {
	bounds Bounds
	score  float64
}

// DetectTextRegions finds blocks of printed lines on a rectified page.
//
// The page is binarized with an adaptive threshold (a page that is already
// black on white passes through unchanged). Runs of rows holding ink form
// candidate lines. A line scores well when its ink is broken into glyphs
// and words rather than a solid rule, and when it is neither sparse nor
// filled. Nearby lines are grouped into regions, and regions whose line
// spacing is regular score higher. It is used to tell a blank page from one
// worth sending to OCR, not to segment the page.
//
// Regions below minConfidence are dropped. The rest are sorted by
// confidence, then top to bottom.
func DetectTextRegions(page *imaging.Frame, minConfidence float64) *TextRegionsResult {
	ink := enhance.AdaptiveThreshold(page, enhance.DefaultBlockSize, inkThresholdC)
	w, h := ink.Width, ink.Height
	isInk := func(x, y int) bool { return ink.Pix[y*w+x] == 0 }

	rowInk := make([]int, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if isInk(x, y) {
				rowInk[y]++
			}
		}
	}

	minRow := maxInt(minLineInk, w/100)
	maxHeight := maxInt(2*minLineHeight, h/8)

	lines := make([]textLine, 0)
	for y := 0; y < h; {
		if rowInk[y] < minRow {
			y++
			continue
		}
		top := y
		for y < h && rowInk[y] >= minRow {
			y++
		}
		if y-top < minLineHeight || y-top > maxHeight {
			continue
		}
		lines = append(lines, measureLine(isInk, w, top, y))
	}

	regions := make([]TextRegion, 0)
	for _, group := range groupLines(lines) {
		r := regionFromLines(group)
		if r.Confidence >= minConfidence && r.Confidence > 0 {
			regions = append(regions, r)
		}
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Confidence > regions[j].Confidence
	})

	return &TextRegionsResult{
		Regions: regions,
		Count:   len(regions),
	}
}

// measureLine scores the band of rows [top, bottom).
func measureLine(isInk func(x, y int) bool, w, top, bottom int) textLine {
	x1, x2 := w, -1
	inked := make([]bool, w)
	pixels := 0
	for y := top; y < bottom; y++ {
		for x := 0; x < w; x++ {
			if isInk(x, y) {
				inked[x] = true
				pixels++
				x1 = minInt(x1, x)
				x2 = maxInt(x2, x)
			}
		}
	}

	span := x2 - x1 + 1
	columns := 0
	for x := x1; x <= x2; x++ {
		if inked[x] {
			columns++
		}
	}
	coverage := float64(columns) / float64(span)
	fill := float64(pixels) / float64(span*(bottom-top))

	return textLine{
		bounds: Bounds{X1: x1, Y1: top, X2: x2 + 1, Y2: bottom},
		score:  coverageScore(coverage) * fillScore(fill),
	}
}

// coverageScore rates the fraction of a line's columns holding ink. Text is
// broken by letter and word gaps; a rule or a solid bar is not.
func coverageScore(c float64) float64 {
	switch {
	case c < 0.25:
		return c / 0.25
	case c > 0.9:
		return math.Max(0, (1-c)/0.1)
	default:
		return 1
	}
}

// fillScore rates the share of a line's bounding box that is ink.
func fillScore(f float64) float64 {
	switch {
	case f < 0.1:
		return f / 0.1
	case f > 0.6:
		return math.Max(0, (1-f)/0.4)
	default:
		return 1
	}
}

// groupLines splits top-to-bottom lines into blocks. A line joins the
// block above when the gap is at most twice the taller line's height and
// the two overlap horizontally.
func groupLines(lines []textLine) [][]textLine {
	groups := make([][]textLine, 0)
	for _, l := range lines {
		if n := len(groups); n > 0 {
			prev := groups[n-1][len(groups[n-1])-1]
			gap := l.bounds.Y1 - prev.bounds.Y2
			tall := maxInt(l.bounds.Y2-l.bounds.Y1, prev.bounds.Y2-prev.bounds.Y1)
			if gap <= 2*tall && l.bounds.X1 < prev.bounds.X2 && l.bounds.X2 > prev.bounds.X1 {
				groups[n-1] = append(groups[n-1], l)
				continue
			}
		}
		groups = append(groups, []textLine{l})
	}
	return groups
}

func regionFromLines(lines []textLine) TextRegion {
	b := lines[0].bounds
	scores := make([]float64, len(lines))
	for i, l := range lines {
		b = mergeBounds(b, l.bounds)
		scores[i] = l.score
	}

	confidence := stat.Mean(scores, nil) * (0.6 + 0.4*lineRegularity(lines))
	return TextRegion{
		Bounds:     b,
		Confidence: math.Round(confidence*1000) / 1000,
		Area:       (b.X2 - b.X1) * (b.Y2 - b.Y1),
		Lines:      len(lines),
	}
}

// lineRegularity is 1 for evenly spaced lines and falls toward 0 as the
// line pitch varies. Fewer than three lines give no pitch to compare and
// score 0.5.
func lineRegularity(lines []textLine) float64 {
	if len(lines) < 3 {
		return 0.5
	}
	pitches := make([]float64, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		pitches[i-1] = float64(lines[i].bounds.Y1 - lines[i-1].bounds.Y1)
	}
	mean, std := stat.MeanStdDev(pitches, nil)
	if mean <= 0 {
		return 0
	}
	return math.Max(0, 1-std/mean)
}

// mergeBounds combines two bounds into their union
func mergeBounds(a, b Bounds) Bounds {
	return Bounds{
		X1: minInt(a.X1, b.X1),
		Y1: minInt(a.Y1, b.Y1),
		X2: maxInt(a.X2, b.X2),
		Y2: maxInt(a.Y2, b.Y2),
	}
}
