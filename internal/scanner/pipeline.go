package scanner

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/enhance"
	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logger"
	"github.com/ironsheep/docscan-mcp/internal/rectify"
)

// Status reports how the page outline was obtained.
type Status string

const (
	// StatusDocumentDetected means a quadrilateral was found in the frame.
	StatusDocumentDetected Status = "document_detected"
	// StatusFallbackUsed means no quadrilateral qualified and the whole
	// frame was rectified instead.
	StatusFallbackUsed Status = "fallback_used"
)

// Detection is the outcome of the detection stages.
type Detection struct {
	// Corners is the page outline in source-frame coordinates, in
	// canonical order.
	Corners detection.Quad `json:"corners"`

	Status Status `json:"status"`

	// Candidates is the number of four-vertex contours considered.
	Candidates int `json:"candidates"`

	// Contours is the number of outer contours extracted.
	Contours int `json:"contours"`

	// Refined reports that the corners come from line fits to the traced
	// page boundary rather than the simplified polygon.
	Refined bool `json:"refined"`

	// Scale maps detection-frame coordinates to source coordinates.
	Scale imaging.Scale `json:"scale"`

	// Edges is the binary edge map of the detection frame.
	Edges *imaging.Frame `json:"-"`
}

// Timings records the duration of each stage group.
type Timings struct {
	Detect  time.Duration `json:"detect"`
	Rectify time.Duration `json:"rectify"`
	Enhance time.Duration `json:"enhance"`
	Total   time.Duration `json:"total"`
}

// Milliseconds returns the timings keyed by stage, in whole milliseconds.
func (t Timings) Milliseconds() map[string]int64 {
	return map[string]int64{
		"detect":  t.Detect.Milliseconds(),
		"rectify": t.Rectify.Milliseconds(),
		"enhance": t.Enhance.Milliseconds(),
		"total":   t.Total.Milliseconds(),
	}
}

// Result is the outcome of a pipeline run.
type Result struct {
	// Page is the enhanced, target-sized page.
	Page *imaging.Frame `json:"-"`

	// Rectified is the page before enhancement.
	Rectified *imaging.Frame `json:"-"`

	Status  Status         `json:"status"`
	Corners detection.Quad `json:"corners"`

	// CropFallback reports that the corners could not be rectified and the
	// page was cropped from their bounding box instead.
	CropFallback bool `json:"crop_fallback"`

	// Tone describes the paper color of the rectified page.
	Tone imaging.ToneResult `json:"tone"`

	Timings Timings `json:"timings"`
}

// Pipeline runs the scanning stages with a fixed set of options.
type Pipeline struct {
	opts Options
}

// NewPipeline validates opts and returns a Pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if err := opts.Target.Validate(); err != nil {
		return nil, err
	}
	if _, err := enhance.ParseMode(string(opts.Mode)); err != nil {
		return nil, apperrors.NewValidationError("invalid enhance mode", err)
	}
	if opts.Mode == "" {
		opts.Mode = enhance.ModeSharpen
	}
	if opts.EdgeInset < 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("edge inset must not be negative: %v", opts.EdgeInset), nil)
	}
	return &Pipeline{opts: opts}, nil
}

// Options returns the options the pipeline was built with.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Detect runs the detection stages and returns the page outline in source
// coordinates. It never fails for lack of a document: with no qualifying
// quadrilateral the full-frame outline is returned with StatusFallbackUsed.
func (p *Pipeline) Detect(ctx context.Context, src *imaging.Frame) (*Detection, error) {
	if err := checkFrame(src); err != nil {
		return nil, err
	}

	small, scale := imaging.Fit(src, p.opts.MaxDetectDim)

	gray := imaging.Grayscale(small)
	blurred := imaging.GaussianBlur(gray, p.opts.BlurKernel, 0)
	if err := stageDone(ctx, "blur"); err != nil {
		return nil, err
	}

	edges := imaging.Canny(blurred, p.opts.CannyLow, p.opts.CannyHigh)
	if err := stageDone(ctx, "edge detection"); err != nil {
		return nil, err
	}

	contours := detection.FindContours(edges, detection.ContourOptions{MinPixels: p.opts.MinContourPixels})
	if err := stageDone(ctx, "contour extraction"); err != nil {
		return nil, err
	}

	sel := detection.SelectQuadrilateral(contours, small.Width, small.Height, p.opts.MinAreaFraction)

	det := &Detection{
		Status:     StatusFallbackUsed,
		Corners:    detection.FullFrameQuad(src.Width, src.Height),
		Candidates: sel.Candidates,
		Contours:   len(contours),
		Scale:      scale,
		Edges:      edges,
	}
	if sel.Found {
		det.Status = StatusDocumentDetected
		corners, refined := detection.RefineCorners(sel.Outline, sel.Corners, p.opts.EdgeInset)
		det.Corners = corners.Scale(scale.X, scale.Y)
		det.Refined = refined
	}
	return det, nil
}

// Run scans one frame. The input frame is not modified.
//
// Only cancellation and invalid input are errors. A frame without a
// document is rectified as a whole and reported with StatusFallbackUsed;
// corners that cannot be rectified are handled by cropping their bounding
// box.
func (p *Pipeline) Run(ctx context.Context, src *imaging.Frame) (*Result, error) {
	start := time.Now()

	det, err := p.Detect(ctx, src)
	if err != nil {
		return nil, err
	}
	detected := time.Now()

	rectified, cropFallback, err := p.Rectify(ctx, src, det.Corners)
	if err != nil {
		return nil, err
	}
	rectifiedAt := time.Now()

	tone := imaging.MeasureTone(rectified)

	page, err := p.Enhance(rectified)
	if err != nil {
		return nil, apperrors.NewInternalError("enhancement failed", err)
	}
	done := time.Now()

	result := &Result{
		Page:         page,
		Rectified:    rectified,
		Status:       det.Status,
		Corners:      det.Corners,
		CropFallback: cropFallback,
		Tone:         tone,
		Timings: Timings{
			Detect:  detected.Sub(start),
			Rectify: rectifiedAt.Sub(detected),
			Enhance: done.Sub(rectifiedAt),
			Total:   done.Sub(start),
		},
	}

	logger.WithFields(logrus.Fields{
		"width":         src.Width,
		"height":        src.Height,
		"status":        result.Status,
		"corners":       fmt.Sprintf("%v", result.Corners),
		"crop_fallback": cropFallback,
		"candidates":    det.Candidates,
		"detect_ms":     result.Timings.Detect.Milliseconds(),
		"rectify_ms":    result.Timings.Rectify.Milliseconds(),
		"enhance_ms":    result.Timings.Enhance.Milliseconds(),
	}).Info("scan complete")

	return result, nil
}

// Rectify warps the corners of src to the target size. When the corners
// are degenerate it crops and resizes their bounding box instead and
// reports true.
func (p *Pipeline) Rectify(ctx context.Context, src *imaging.Frame, corners detection.Quad) (*imaging.Frame, bool, error) {
	if err := checkFrame(src); err != nil {
		return nil, false, err
	}

	target := p.opts.Target
	page, err := rectify.Warp(src, corners, target)
	if err == nil {
		return page, false, stageDone(ctx, "rectification")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeDegenerateGeometry) {
		return nil, false, err
	}

	b := corners.Bounds()
	logger.WithError(err).WithField("bounds", fmt.Sprintf("%+v", b)).
		Warn("degenerate page outline, cropping bounding box")

	page = imaging.CropResize(src, image.Rect(b.X1, b.Y1, b.X2, b.Y2), target.Width, target.Height)
	return page, true, stageDone(ctx, "rectification")
}

// Enhance applies the pipeline's enhancement mode to a page.
func (p *Pipeline) Enhance(page *imaging.Frame) (*imaging.Frame, error) {
	if err := checkFrame(page); err != nil {
		return nil, err
	}
	return enhance.Apply(page, p.opts.Mode)
}

func checkFrame(f *imaging.Frame) error {
	if f == nil || f.Width < 1 || f.Height < 1 {
		return apperrors.NewValidationError("empty frame", nil)
	}
	if len(f.Pix) != f.Width*f.Height*f.Channels {
		return apperrors.NewValidationError(
			fmt.Sprintf("frame buffer has %d samples, want %d", len(f.Pix), f.Width*f.Height*f.Channels), nil)
	}
	return nil
}

func stageDone(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewCancelledError(fmt.Sprintf("scan cancelled after %s", stage), err)
	}
	return nil
}
