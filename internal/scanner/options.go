package scanner

import (
	"github.com/ironsheep/docscan-mcp/internal/config"
	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/enhance"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
	"github.com/ironsheep/docscan-mcp/internal/rectify"
)

// Options configures a Pipeline.
type Options struct {
	// Target is the size of the rectified page.
	Target rectify.Target

	// BlurKernel is the Gaussian kernel size applied before edge detection.
	BlurKernel int

	// Canny hysteresis thresholds, in gradient units of a 0-255 image.
	CannyLow  float64
	CannyHigh float64

	// MaxDetectDim bounds the longer side of the frame used for detection.
	// Zero detects on the full-resolution frame.
	MaxDetectDim int

	// MinAreaFraction ignores quadrilaterals smaller than this fraction of
	// the detection frame.
	MinAreaFraction float64

	// MinContourPixels discards edge components smaller than this.
	MinContourPixels int

	// EdgeInset moves the refined page edges this many detection pixels
	// toward the page centre.
	EdgeInset float64

	// Mode is the enhancement applied to the rectified page.
	Mode enhance.Mode
}

// DefaultOptions returns the default pipeline options.
func DefaultOptions() Options {
	return Options{
		Target:           rectify.DefaultTarget,
		BlurKernel:       5,
		CannyLow:         imaging.DefaultCannyLow,
		CannyHigh:        imaging.DefaultCannyHigh,
		MaxDetectDim:     1000,
		MinAreaFraction:  0,
		MinContourPixels: detection.DefaultMinContourPixels,
		EdgeInset:        detection.DefaultEdgeInset,
		Mode:             enhance.ModeSharpen,
	}
}

// OptionsFromConfig builds pipeline options from loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	mode, err := enhance.ParseMode(cfg.EnhanceMode)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Target:           rectify.Target{Width: cfg.TargetWidth, Height: cfg.TargetHeight},
		BlurKernel:       cfg.BlurKernel,
		CannyLow:         cfg.CannyLow,
		CannyHigh:        cfg.CannyHigh,
		MaxDetectDim:     cfg.MaxDetectDim,
		MinAreaFraction:  cfg.MinAreaFraction,
		MinContourPixels: cfg.MinContourPixels,
		EdgeInset:        detection.DefaultEdgeInset,
		Mode:             mode,
	}, nil
}

// NewServiceFromConfig builds the pipeline and service described by cfg.
func NewServiceFromConfig(cfg *config.Config, recognizer ocr.Recognizer) (*Service, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	pipeline, err := NewPipeline(opts)
	if err != nil {
		return nil, err
	}
	service := NewService(pipeline, recognizer, cfg.OCRLanguage)
	service.SkipBlankPages = cfg.SkipBlankPages
	return service, nil
}
