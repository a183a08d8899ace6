package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestMeasureTone_White(t *testing.T) {
	frame := FromImage(createInMemoryImage(20, 20, color.White))
	tone := MeasureTone(frame)

	if tone.Hex != "#ffffff" {
		t.Errorf("Hex: got %s, want #ffffff", tone.Hex)
	}
	if tone.WhiteDistance > 1e-6 {
		t.Errorf("WhiteDistance: got %v, want 0", tone.WhiteDistance)
	}
	if absFloat(tone.LuminanceMean-255) > 1e-6 {
		t.Errorf("LuminanceMean: got %v, want 255", tone.LuminanceMean)
	}
	if tone.LuminanceStdDev > 1e-6 {
		t.Errorf("LuminanceStdDev: got %v, want 0", tone.LuminanceStdDev)
	}
	if tone.HSL.L != 100 {
		t.Errorf("HSL lightness: got %d, want 100", tone.HSL.L)
	}
}

func TestMeasureTone_YellowedPaper(t *testing.T) {
	white := MeasureTone(FromImage(createInMemoryImage(10, 10, color.White)))
	yellow := MeasureTone(FromImage(createInMemoryImage(10, 10, color.RGBA{240, 225, 180, 255})))

	if yellow.WhiteDistance <= white.WhiteDistance {
		t.Errorf("yellowed paper should be further from white: %v <= %v",
			yellow.WhiteDistance, white.WhiteDistance)
	}
	if yellow.RGB != (RGBColor{R: 240, G: 225, B: 180}) {
		t.Errorf("RGB: got %+v", yellow.RGB)
	}
	if yellow.HSL.H < 30 || yellow.HSL.H > 60 {
		t.Errorf("hue: got %d, want a yellow hue", yellow.HSL.H)
	}
}

func TestMeasureTone_Spread(t *testing.T) {
	frame := NewFrame(10, 10, 1)
	for y := 0; y < 10; y++ {
		for x := 5; x < 10; x++ {
			frame.Set(x, y, 0, 255)
		}
	}

	tone := MeasureTone(frame)
	if absFloat(tone.LuminanceMean-127.5) > 1e-9 {
		t.Errorf("LuminanceMean: got %v, want 127.5", tone.LuminanceMean)
	}
	if tone.LuminanceStdDev < 127 || tone.LuminanceStdDev > 129 {
		t.Errorf("LuminanceStdDev: got %v, want ~128", tone.LuminanceStdDev)
	}
}

func TestMeasureTone_SinglePixel(t *testing.T) {
	frame := NewFrame(1, 1, 1)
	frame.Pix[0] = 10

	tone := MeasureTone(frame)
	if tone.LuminanceStdDev != 0 {
		t.Errorf("LuminanceStdDev: got %v, want 0", tone.LuminanceStdDev)
	}
}
