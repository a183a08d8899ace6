package imaging

import (
	"image/color"
	"testing"
)

func TestGrayscale(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want float64
	}{
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"red", color.RGBA{255, 0, 0, 255}, 0.299 * 255},
		{"green", color.RGBA{0, 255, 0, 255}, 0.587 * 255},
		{"blue", color.RGBA{0, 0, 255, 255}, 0.114 * 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gray := Grayscale(FromImage(createInMemoryImage(3, 3, tt.c)))
			if gray.Channels != 1 {
				t.Fatalf("channels: got %d, want 1", gray.Channels)
			}
			if got := gray.At(1, 1, 0); absFloat(got-tt.want) > 1e-9 {
				t.Errorf("luma: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGrayscale_SingleChannelCopy(t *testing.T) {
	frame := NewFrame(2, 2, 1)
	frame.Pix[3] = 42

	gray := Grayscale(frame)
	gray.Pix[3] = 7

	if frame.Pix[3] != 42 {
		t.Error("Grayscale must not alias its input")
	}
}

func TestKernelSigma(t *testing.T) {
	tests := []struct {
		ksize int
		want  float64
	}{
		{3, 0.8},
		{5, 1.1},
		{7, 1.4},
	}
	for _, tt := range tests {
		if got := KernelSigma(tt.ksize); absFloat(got-tt.want) > 1e-9 {
			t.Errorf("KernelSigma(%d): got %v, want %v", tt.ksize, got, tt.want)
		}
	}
}

func TestNormalizeKernelSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{5, 5},
		{4, 5},
		{0, 1},
		{-3, 1},
		{1, 1},
	}
	for _, tt := range tests {
		if got := NormalizeKernelSize(tt.in); got != tt.want {
			t.Errorf("NormalizeKernelSize(%d): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestGaussianKernel(t *testing.T) {
	kernel := GaussianKernel(5, 0)
	if len(kernel) != 5 {
		t.Fatalf("length: got %d, want 5", len(kernel))
	}

	var sum float64
	for _, v := range kernel {
		sum += v
	}
	if absFloat(sum-1) > 1e-12 {
		t.Errorf("kernel sum: got %v, want 1", sum)
	}
	if kernel[0] != kernel[4] || kernel[1] != kernel[3] {
		t.Error("kernel is not symmetric")
	}
	if kernel[2] <= kernel[1] {
		t.Error("kernel center should be the peak")
	}
}

func TestGaussianBlur_Uniform(t *testing.T) {
	frame := FromImage(createInMemoryImage(10, 10, color.RGBA{128, 128, 128, 255}))
	blurred := GaussianBlur(frame, 5, 0)

	// Replicated borders keep a uniform image uniform everywhere
	for i, v := range blurred.Pix {
		want := frame.Pix[i]
		if absFloat(v-want) > 1e-9 {
			t.Fatalf("index %d: got %v, want %v", i, v, want)
		}
	}
}

func TestGaussianBlur_WithSpot(t *testing.T) {
	frame := NewFrame(11, 11, 1)
	frame.Set(5, 5, 0, 255)

	blurred := GaussianBlur(frame, 5, 0)

	if blurred.At(5, 5, 0) >= 255 {
		t.Error("bright spot should be reduced after blur")
	}
	for _, p := range [][2]int{{4, 5}, {6, 5}, {5, 4}, {5, 6}} {
		if blurred.At(p[0], p[1], 0) == 0 {
			t.Errorf("neighbor %v should receive some brightness", p)
		}
	}
	if blurred.At(0, 0, 0) != 0 {
		t.Error("pixels outside the kernel footprint should stay dark")
	}
	if frame.At(5, 5, 0) != 255 {
		t.Error("GaussianBlur must not modify its input")
	}
}

func TestGaussianBlur_EvenKernelRoundsUp(t *testing.T) {
	frame := FromImage(createEdgeTestImage(20, 20))

	even := GaussianBlur(frame, 4, 0)
	odd := GaussianBlur(frame, 5, 0)

	for i := range even.Pix {
		if even.Pix[i] != odd.Pix[i] {
			t.Fatalf("index %d: kernel 4 differs from kernel 5", i)
		}
	}
}

func TestGaussianBlur_IdentityKernel(t *testing.T) {
	frame := FromImage(createEdgeTestImage(8, 8))
	for _, k := range []int{0, 1, -2} {
		out := GaussianBlur(frame, k, 0)
		for i := range out.Pix {
			if out.Pix[i] != frame.Pix[i] {
				t.Fatalf("kernel %d: index %d changed", k, i)
			}
		}
	}
}

func TestGaussianBlur_SinglePixel(t *testing.T) {
	frame := NewFrame(1, 1, 1)
	frame.Pix[0] = 99

	out := GaussianBlur(frame, 5, 0)
	if absFloat(out.Pix[0]-99) > 1e-9 {
		t.Errorf("1x1 blur: got %v, want 99", out.Pix[0])
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},   // within range
		{-1, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tt := range tests {
		got := clamp(tt.val, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("clamp(%d, %d, %d): got %d, want %d",
				tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}
