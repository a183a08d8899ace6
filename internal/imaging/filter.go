package imaging

import "math"

// BT.601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Grayscale reduces a frame to a single luminance channel.
//
// Color frames are weighted with ITU-R BT.601 coefficients
// (0.299*R + 0.587*G + 0.114*B). Alpha is ignored. Single-channel frames
// are copied unchanged.
func Grayscale(f *Frame) *Frame {
	if f.Channels == 1 {
		return f.Clone()
	}

	out := NewFrame(f.Width, f.Height, 1)
	n := f.Width * f.Height
	for i := 0; i < n; i++ {
		p := f.Pix[i*f.Channels:]
		if f.Channels < 3 {
			out.Pix[i] = p[0]
			continue
		}
		out.Pix[i] = lumaR*p[0] + lumaG*p[1] + lumaB*p[2]
	}
	return out
}

// KernelSigma returns the Gaussian sigma derived from a kernel size, using
// the usual 0.3*((k-1)*0.5 - 1) + 0.8 rule.
func KernelSigma(ksize int) float64 {
	return 0.3*(float64(ksize-1)*0.5-1) + 0.8
}

// NormalizeKernelSize forces a kernel size to be odd and at least 1.
func NormalizeKernelSize(ksize int) int {
	if ksize < 1 {
		return 1
	}
	if ksize%2 == 0 {
		return ksize + 1
	}
	return ksize
}

// GaussianKernel builds a normalized 1-D Gaussian kernel of the given size.
// A non-positive sigma is derived from the size with KernelSigma.
func GaussianKernel(ksize int, sigma float64) []float64 {
	ksize = NormalizeKernelSize(ksize)
	if sigma <= 0 {
		sigma = KernelSigma(ksize)
	}

	kernel := make([]float64, ksize)
	half := ksize / 2
	var sum float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianBlur smooths every channel of a frame with a separable Gaussian.
//
// Even kernel sizes are rounded up to the next odd size, sizes below 1
// become 1 (identity). A non-positive sigma is derived from the kernel
// size. Borders use replicated edge pixels, so frames down to 1x1 are
// handled.
func GaussianBlur(f *Frame, ksize int, sigma float64) *Frame {
	ksize = NormalizeKernelSize(ksize)
	if ksize == 1 {
		return f.Clone()
	}
	return convolveSeparable(f, GaussianKernel(ksize, sigma))
}

// convolveSeparable applies the same 1-D kernel horizontally then
// vertically, replicating border pixels.
func convolveSeparable(f *Frame, kernel []float64) *Frame {
	w, h, ch := f.Width, f.Height, f.Channels
	half := len(kernel) / 2

	// Horizontal pass
	tmp := NewFrame(w, h, ch)
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			for c := 0; c < ch; c++ {
				var sum float64
				for k, kv := range kernel {
					px := clamp(x+k-half, 0, w-1)
					sum += f.Pix[(row+px)*ch+c] * kv
				}
				tmp.Pix[(row+x)*ch+c] = sum
			}
		}
	}

	// Vertical pass
	out := NewFrame(w, h, ch)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < ch; c++ {
				var sum float64
				for k, kv := range kernel {
					py := clamp(y+k-half, 0, h-1)
					sum += tmp.Pix[(py*w+x)*ch+c] * kv
				}
				out.Pix[(y*w+x)*ch+c] = sum
			}
		}
	}
	return out
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
