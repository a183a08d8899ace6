// Package enhance improves a rectified page for reading and OCR.
package enhance

import (
	"fmt"
	"strings"

	"github.com/anthonynsimon/bild/parallel"
	dimaging "github.com/disintegration/imaging"

	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// Mode selects the enhancement applied to a rectified page.
type Mode string

const (
	// ModeSharpen applies an unsharp mask and keeps color.
	ModeSharpen Mode = "sharpen"
	// ModeThreshold binarizes with a Gaussian adaptive threshold.
	ModeThreshold Mode = "threshold"
	// ModeBoth sharpens, then binarizes.
	ModeBoth Mode = "both"
	// ModeNone returns the page unchanged.
	ModeNone Mode = "none"
)

// Defaults for the enhancement stages.
const (
	DefaultSharpenSigma  = 3.0
	DefaultSharpenAmount = 0.5
	DefaultBlockSize     = 11
	DefaultThresholdC    = 2.0
)

// ParseMode converts a mode name. The empty string selects ModeSharpen.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSharpen:
		return ModeSharpen, nil
	case ModeThreshold, "adaptive", "adaptive_threshold":
		return ModeThreshold, nil
	case ModeBoth:
		return ModeBoth, nil
	case ModeNone:
		return ModeNone, nil
	default:
		return "", fmt.Errorf("unknown enhance mode: %s", s)
	}
}

// Apply runs the enhancement selected by mode. The output always has the
// same dimensions as the input; threshold modes return a single channel.
func Apply(f *imaging.Frame, mode Mode) (*imaging.Frame, error) {
	switch mode {
	case ModeSharpen:
		return Sharpen(f, DefaultSharpenSigma, DefaultSharpenAmount), nil
	case ModeThreshold:
		return AdaptiveThreshold(f, DefaultBlockSize, DefaultThresholdC), nil
	case ModeBoth:
		sharp := Sharpen(f, DefaultSharpenSigma, DefaultSharpenAmount)
		return AdaptiveThreshold(sharp, DefaultBlockSize, DefaultThresholdC), nil
	case ModeNone:
		return f.Clone(), nil
	default:
		return nil, fmt.Errorf("unknown enhance mode: %s", mode)
	}
}

// Sharpen applies an unsharp mask:
//
//	out = (1 + amount)*orig - amount*blur(orig, sigma)
//
// clamped to 0-255 per channel. The alpha channel of four-channel frames
// is copied through.
func Sharpen(f *imaging.Frame, sigma, amount float64) *imaging.Frame {
	blurred := imaging.FromImage(dimaging.Blur(f.Image(), sigma))
	if f.Channels == 1 {
		blurred = imaging.Grayscale(blurred)
	}

	out := imaging.NewFrame(f.Width, f.Height, f.Channels)
	n := f.Width * f.Height
	for i := 0; i < n; i++ {
		for c := 0; c < f.Channels; c++ {
			idx := i*f.Channels + c
			if c == 3 {
				out.Pix[idx] = f.Pix[idx]
				continue
			}
			b := blurred.Pix[i*blurred.Channels+minInt(c, blurred.Channels-1)]
			out.Pix[idx] = imaging.ClampSample((1+amount)*f.Pix[idx] - amount*b)
		}
	}
	return out
}

// AdaptiveThreshold binarizes a frame against its local Gaussian-weighted
// mean.
//
// Color frames are reduced to luminance first. Each pixel becomes 255 when
// its value exceeds the weighted mean of its blockSize x blockSize
// neighbourhood minus c, and 0 otherwise. The Gaussian sigma is derived
// from the block size (2.0 for the default block of 11).
func AdaptiveThreshold(f *imaging.Frame, blockSize int, c float64) *imaging.Frame {
	gray := imaging.Grayscale(f)
	mean := imaging.GaussianBlur(gray, blockSize, 0)

	out := imaging.NewFrame(gray.Width, gray.Height, 1)
	w := gray.Width
	parallel.Line(gray.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				if gray.Pix[i] > mean.Pix[i]-c {
					out.Pix[i] = 255
				}
			}
		}
	})
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
