package features

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/image-patches-mcp/internal/imaging"
)

// solidBuffer creates a patch buffer filled with one color
func solidBuffer(t *testing.T, width, height int, c color.NRGBA) *imaging.PixelBuffer {
	t.Helper()
	buf, err := imaging.NewPixelBuffer(width, height, imaging.FormatNRGBA)
	if err != nil {
		t.Fatalf("NewPixelBuffer failed: %v", err)
	}
	for i := 0; i < len(buf.Pix); i += imaging.BytesPerPixel {
		buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return buf
}

// splitBuffer creates a patch with a black left half and a white right half
func splitBuffer(t *testing.T, width, height int) *imaging.PixelBuffer {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	buf, err := imaging.Normalize(img, imaging.FormatNRGBA)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return buf
}
