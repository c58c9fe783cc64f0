package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestPatchOverlay(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{128, 128, 128, 255})
	rects := []image.Rectangle{
		image.Rect(0, 0, 20, 20),
		image.Rect(40, 40, 60, 60),
	}

	result, err := PatchOverlay(img, image.Rect(0, 0, 100, 100), rects, false, "#FF0000")
	if err != nil {
		t.Fatalf("PatchOverlay failed: %v", err)
	}

	if result.Width != 100 || result.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}

	if result.PatchCount != 2 {
		t.Errorf("PatchCount: got %d, want 2", result.PatchCount)
	}

	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	// Verify base64 can be decoded
	_, err = base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Errorf("failed to decode base64: %v", err)
	}
}

func TestPatchOverlay_Outlines(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{0, 0, 0, 255})
	rects := []image.Rectangle{image.Rect(40, 40, 60, 60)}

	result, err := PatchOverlay(img, image.Rectangle{}, rects, false, "#FF0000FF")
	if err != nil {
		t.Fatalf("PatchOverlay failed: %v", err)
	}

	decoded, _ := base64.StdEncoding.DecodeString(result.ImageBase64)
	overlay, _ := png.Decode(strings.NewReader(string(decoded)))

	// Left and right edges of the patch are red
	for _, pt := range []image.Point{{40, 50}, {59, 50}, {50, 40}, {50, 59}} {
		r, g, b, _ := overlay.At(pt.X, pt.Y).RGBA()
		r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)
		if r8 != 255 || g8 != 0 || b8 != 0 {
			t.Errorf("outline color at %v: got (%d,%d,%d), want (255,0,0)", pt, r8, g8, b8)
		}
	}

	// Interior stays black
	r, g, b, _ := overlay.At(50, 50).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("interior at (50,50): got (%d,%d,%d), want (0,0,0)", r>>8, g>>8, b>>8)
	}
}

func TestPatchOverlay_Region(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{0, 0, 0, 255})

	result, err := PatchOverlay(img, image.Rect(10, 10, 90, 90), nil, false, "")
	if err != nil {
		t.Fatalf("PatchOverlay failed: %v", err)
	}

	decoded, _ := base64.StdEncoding.DecodeString(result.ImageBase64)
	overlay, _ := png.Decode(strings.NewReader(string(decoded)))

	r, g, b, _ := overlay.At(10, 50).RGBA()
	if uint8(r>>8) != 255 || uint8(g>>8) != 255 || b != 0 {
		t.Errorf("region outline at (10,50): got (%d,%d,%d), want (255,255,0)", r>>8, g>>8, b>>8)
	}
}

func TestPatchOverlay_WithIndex(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{128, 128, 128, 255})
	rects := []image.Rectangle{image.Rect(0, 0, 50, 50), image.Rect(50, 50, 100, 100)}

	result, err := PatchOverlay(img, image.Rectangle{}, rects, true, "#FF0000")
	if err != nil {
		t.Fatalf("PatchOverlay failed: %v", err)
	}

	if result.ImageBase64 == "" {
		t.Fatal("ImageBase64 is empty")
	}

	decoded, _ := base64.StdEncoding.DecodeString(result.ImageBase64)
	overlay, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode overlay: %v", err)
	}

	// Index 1 is labelled inside the second rect
	if ink := inkBounds(overlay, image.Rect(52, 52, 70, 70)); ink.Empty() {
		t.Error("second patch should carry an index label")
	}
}

func TestPatchOverlay_ClipsOutsideRects(t *testing.T) {
	img := createInMemoryImage(50, 50, color.RGBA{128, 128, 128, 255})
	rects := []image.Rectangle{image.Rect(40, 40, 80, 80), image.Rect(100, 100, 120, 120)}

	// Should not panic for rectangles partly or fully outside the image
	if _, err := PatchOverlay(img, image.Rectangle{}, rects, true, "invalid"); err != nil {
		t.Fatalf("PatchOverlay failed: %v", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		wantR   uint8
		wantG   uint8
		wantB   uint8
		wantA   uint8
		wantErr bool
	}{
		{"#FF0000", 255, 0, 0, 255, false},
		{"#00FF00", 0, 255, 0, 255, false},
		{"#0000FF", 0, 0, 255, 255, false},
		{"#FFFFFF", 255, 255, 255, 255, false},
		{"#000000", 0, 0, 0, 255, false},
		{"FF0000", 255, 0, 0, 255, false},      // without #
		{"#FF000080", 255, 0, 0, 128, false},   // with alpha
		{"FF000080", 255, 0, 0, 128, false},    // without # with alpha
		{"", 0, 0, 0, 0, true},                 // empty
		{"#FFF", 0, 0, 0, 0, true},             // invalid length
		{"#GGGGGG", 0, 0, 0, 0, true},          // invalid hex
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			c, err := parseHexColor(tt.hex)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if c.R != tt.wantR || c.G != tt.wantG || c.B != tt.wantB || c.A != tt.wantA {
				t.Errorf("got (%d,%d,%d,%d), want (%d,%d,%d,%d)",
					c.R, c.G, c.B, c.A, tt.wantR, tt.wantG, tt.wantB, tt.wantA)
			}
		})
	}
}

// inkBounds returns the bounding box of the pixels inside r whose red
// channel is brighter than 200.
func inkBounds(img image.Image, r image.Rectangle) image.Rectangle {
	var ink image.Rectangle
	b := r.Intersect(img.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			red, _, _, _ := img.At(x, y).RGBA()
			if red > 200<<8 {
				ink = ink.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return ink
}

func TestDrawLabel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}
	drawLabel(img, 10, 10, "42", fg, bg)

	// Two 7x13 glyph cells starting at (10,10)
	ink := inkBounds(img, img.Bounds())
	if ink.Empty() {
		t.Fatal("label should have white pixels (text)")
	}
	if !ink.In(image.Rect(10, 10, 24, 23)) {
		t.Errorf("text drawn at %v, want inside (10,10)-(24,23)", ink)
	}

	// Background box is translucent black, one pixel around the text
	if got := img.RGBAAt(9, 9); got.A != 180 {
		t.Errorf("background alpha: got %d, want 180", got.A)
	}
	if got := img.RGBAAt(30, 30); got != (color.RGBA{}) {
		t.Errorf("pixel outside the label changed: %v", got)
	}
}

func TestDrawLabel_BoundsCheck(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))

	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}

	// These should not panic even if label extends past bounds
	drawLabel(img, 15, 15, "100", fg, bg)
	drawLabel(img, 0, 0, "0", fg, bg)
	drawLabel(img, -5, -5, "12", fg, bg)
	drawLabel(img, 30, 30, "7", fg, bg)
}

func TestDrawLabel_EmptyString(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))

	drawLabel(img, 10, 10, "", color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 180})

	if got := img.RGBAAt(9, 9); got != (color.RGBA{}) {
		t.Errorf("empty label should draw nothing, got %v", got)
	}
}
