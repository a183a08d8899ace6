package imaging

import (
	"image"
	"math"
)

// Default Canny hysteresis thresholds, in Sobel magnitude units over 0-255
// intensities.
const (
	DefaultCannyLow  = 75
	DefaultCannyHigh = 200
)

// Canny performs Canny edge detection on a frame.
//
// Color frames are reduced to luminance first. The caller is expected to
// have smoothed the frame already (see GaussianBlur); Canny itself does not
// blur. The result is a single-channel frame of the same size whose samples
// are exactly 0 or 255.
//
// If low > high the thresholds are swapped rather than rejected.
//
// # Algorithm
//
//  1. Gradient computation: Sobel operators for X and Y gradients
//     magnitude = sqrt(Gx² + Gy²)
//     direction = atan2(Gy, Gx)
//
//  2. Non-maximum suppression: thin edges to 1-pixel width by keeping only
//     local maxima along the gradient direction (4 direction bins)
//
//  3. Hysteresis: pixels with magnitude >= high seed the edge map. Pixels
//     with magnitude > low are added only when 8-connected, directly or
//     through other such pixels, to a seed. Everything else is discarded.
//
// Magnitudes are computed on 0-255 samples, so a hard black/white step
// produces values around 1000 and the default thresholds (75/200) keep
// strong paper borders while dropping texture.
func Canny(f *Frame, low, high float64) *Frame {
	if low > high {
		low, high = high, low
	}

	gray := f
	if f.Channels != 1 {
		gray = Grayscale(f)
	}
	w, h := gray.Width, gray.Height
	src := gray.Pix

	// Sobel gradients with replicated borders
	magnitude := make([]float64, w*h)
	direction := make([]float64, w*h)
	for y := 0; y < h; y++ {
		ym := clamp(y-1, 0, h-1) * w
		yc := y * w
		yp := clamp(y+1, 0, h-1) * w
		for x := 0; x < w; x++ {
			xm := clamp(x-1, 0, w-1)
			xp := clamp(x+1, 0, w-1)

			gx := (src[ym+xp] + 2*src[yc+xp] + src[yp+xp]) -
				(src[ym+xm] + 2*src[yc+xm] + src[yp+xm])
			gy := (src[yp+xm] + 2*src[yp+x] + src[yp+xp]) -
				(src[ym+xm] + 2*src[ym+x] + src[ym+xp])

			magnitude[yc+x] = math.Sqrt(gx*gx + gy*gy)
			direction[yc+x] = math.Atan2(gy, gx)
		}
	}

	suppressed := nonMaxSuppress(magnitude, direction, w, h)

	out := NewFrame(w, h, 1)
	hysteresis(suppressed, out.Pix, w, h, low, high)
	return out
}

// nonMaxSuppress keeps a magnitude only where it is a local maximum along
// the gradient direction. Border pixels are always suppressed.
//
// Angles are folded into [0, π) and binned into horizontal, diagonal,
// vertical and anti-diagonal neighbours. Image Y grows downward, so an
// angle near π/4 points down-right. Ties are broken with a strict
// comparison on one side so a two-pixel plateau thins to one pixel.
func nonMaxSuppress(magnitude, direction []float64, w, h int) []float64 {
	suppressed := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			mag := magnitude[i]
			if mag == 0 {
				continue
			}

			angle := direction[i]
			if angle < 0 {
				angle += math.Pi
			}

			var n1, n2 float64
			switch {
			case angle < math.Pi/8 || angle >= 7*math.Pi/8:
				n1 = magnitude[i-1]
				n2 = magnitude[i+1]
			case angle < 3*math.Pi/8:
				n1 = magnitude[i-w-1]
				n2 = magnitude[i+w+1]
			case angle < 5*math.Pi/8:
				n1 = magnitude[i-w]
				n2 = magnitude[i+w]
			default:
				n1 = magnitude[i-w+1]
				n2 = magnitude[i+w-1]
			}

			if mag > n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}
	return suppressed
}

// hysteresis floods from strong pixels through weak ones, writing 255 into
// dst for every accepted pixel.
func hysteresis(mag, dst []float64, w, h int, low, high float64) {
	queue := make([]int, 0, 256)
	for i, v := range mag {
		if v > 0 && v >= high {
			dst[i] = 255
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%w, i/w

		for dy := -1; dy <= 1; dy++ {
			ny := y + dy
			if ny < 0 || ny >= h {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				nx := x + dx
				if (dx == 0 && dy == 0) || nx < 0 || nx >= w {
					continue
				}
				n := ny*w + nx
				if dst[n] == 0 && mag[n] > 0 && mag[n] > low {
					dst[n] = 255
					queue = append(queue, n)
				}
			}
		}
	}
}

// EdgeDetect runs the detection front end (grayscale, Gaussian blur, Canny)
// on an image and returns the edge map encoded as base64 PNG.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - blurKernel: Gaussian kernel size; the sigma is derived from it.
//   - thresholdLow, thresholdHigh: Canny hysteresis thresholds.
//
// The result is a grayscale image where white pixels (255) represent
// detected edges and black pixels (0) represent non-edges.
func EdgeDetect(img image.Image, blurKernel int, thresholdLow, thresholdHigh float64) (*EncodedImage, error) {
	frame := FromImage(img)
	blurred := GaussianBlur(Grayscale(frame), blurKernel, 0)
	edges := Canny(blurred, thresholdLow, thresholdHigh)
	return EncodeBase64(edges, "png")
}
