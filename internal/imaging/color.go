package imaging

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ToneResult summarizes the overall tone of a rectified page.
//
// WhiteDistance is the CIE L*a*b* distance between the mean color and pure
// white: 0 for a perfectly white page, growing as the paper yellows or the
// lighting dims. Luminance statistics are computed on BT.601 luma.
type ToneResult struct {
	Hex             string   `json:"hex"`
	RGB             RGBColor `json:"rgb"`
	HSL             HSLColor `json:"hsl"`
	WhiteDistance   float64  `json:"white_distance"`
	LuminanceMean   float64  `json:"luminance_mean"`
	LuminanceStdDev float64  `json:"luminance_stddev"`
}

// maxToneSamples bounds the number of pixels visited by MeasureTone.
const maxToneSamples = 1 << 18

// MeasureTone computes the mean color and luminance spread of a frame.
//
// Large frames are sampled on a regular stride. A frame with a single
// sample reports a standard deviation of 0.
func MeasureTone(f *Frame) ToneResult {
	n := f.Width * f.Height
	step := 1
	if n > maxToneSamples {
		step = n / maxToneSamples
	}

	var sumR, sumG, sumB float64
	luma := make([]float64, 0, n/step+1)
	for i := 0; i < n; i += step {
		p := f.Pix[i*f.Channels:]
		r, g, b := p[0], p[0], p[0]
		if f.Channels >= 3 {
			g, b = p[1], p[2]
		}
		sumR += r
		sumG += g
		sumB += b
		luma = append(luma, lumaR*r+lumaG*g+lumaB*b)
	}

	count := float64(len(luma))
	mean := color.NRGBA{
		R: toByte(sumR / count),
		G: toByte(sumG / count),
		B: toByte(sumB / count),
		A: 255,
	}
	c, _ := colorful.MakeColor(mean)
	white := colorful.Color{R: 1, G: 1, B: 1}

	h, s, l := c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}

	result := ToneResult{
		Hex:           c.Hex(),
		RGB:           RGBColor{R: mean.R, G: mean.G, B: mean.B},
		HSL:           HSLColor{H: int(math.Round(h)) % 360, S: int(math.Round(s * 100)), L: int(math.Round(l * 100))},
		WhiteDistance: c.DistanceLab(white),
		LuminanceMean: stat.Mean(luma, nil),
	}
	if len(luma) > 1 {
		result.LuminanceStdDev = stat.StdDev(luma, nil)
	}
	return result
}
