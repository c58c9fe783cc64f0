package patch

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/image-patches-mcp/internal/imaging"
)

// coordColor encodes a pixel position into an opaque color
func coordColor(x, y int) color.NRGBA {
	return color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255}
}

// createCoordImage creates an image whose pixels encode their own position
func createCoordImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, coordColor(x, y))
		}
	}
	return img
}

// bottomUpSource stores the rows of a coordinate image bottom row first
func bottomUpSource(width, height int) *imaging.RawSource {
	img := createCoordImage(width, height)
	pix := make([]byte, len(img.Pix))
	for y := 0; y < height; y++ {
		copy(pix[(height-1-y)*img.Stride:(height-y)*img.Stride], img.Pix[y*img.Stride:(y+1)*img.Stride])
	}
	return &imaging.RawSource{
		Pix:    pix,
		Width:  width,
		Height: height,
		Stride: img.Stride,
		Format: imaging.FormatNRGBA,
		Native: imaging.OriginBottomLeft,
	}
}

// identity returns the cropped buffer itself as the payload
var identity = ConverterFunc[*imaging.PixelBuffer](func(buf *imaging.PixelBuffer) (*imaging.PixelBuffer, error) {
	return buf, nil
})

// pixBytes returns a copy of the buffer's pixels as the payload
var pixBytes = ConverterFunc[[]byte](func(buf *imaging.PixelBuffer) ([]byte, error) {
	return append([]byte(nil), buf.Pix...), nil
})

// assertCoordPatch checks that every pixel of patch came from rect in a
// coordinate image.
func assertCoordPatch(t *testing.T, patch *imaging.PixelBuffer, rect image.Rectangle) {
	t.Helper()
	if patch.Width != rect.Dx() || patch.Height != rect.Dy() {
		t.Fatalf("patch size: got %dx%d, want %dx%d", patch.Width, patch.Height, rect.Dx(), rect.Dy())
	}
	for y := 0; y < patch.Height; y++ {
		for x := 0; x < patch.Width; x++ {
			want := coordColor(rect.Min.X+x, rect.Min.Y+y)
			if got := patch.NRGBAAt(x, y); got != want {
				t.Fatalf("patch %v pixel (%d,%d): got %v, want %v", rect, x, y, got, want)
			}
		}
	}
}
