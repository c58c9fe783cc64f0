package imaging

import (
	"errors"
	"image"
	"testing"
)

// bottomUpSource stores the rows of a coordinate image bottom row first.
func bottomUpSource(width, height int) *RawSource {
	img := createCoordImage(width, height)
	pix := make([]byte, len(img.Pix))
	for y := 0; y < height; y++ {
		copy(pix[(height-1-y)*img.Stride:(height-y)*img.Stride], img.Pix[y*img.Stride:(y+1)*img.Stride])
	}
	return &RawSource{
		Pix:    pix,
		Width:  width,
		Height: height,
		Stride: img.Stride,
		Format: FormatNRGBA,
		Native: OriginBottomLeft,
	}
}

func TestSurface_TopLeft(t *testing.T) {
	surface, err := NewSurface(FromImage(createCoordImage(40, 30)), FormatNRGBA)
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	defer surface.Close()

	if surface.Bounds() != image.Rect(0, 0, 40, 30) {
		t.Errorf("Bounds: got %v", surface.Bounds())
	}

	rect := image.Rect(5, 7, 15, 12)
	patch, err := surface.Crop(rect)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	assertCoordPatch(t, patch, rect)
}

func TestSurface_BottomLeft(t *testing.T) {
	surface, err := NewSurface(bottomUpSource(40, 30), FormatNRGBA)
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	defer surface.Close()

	if surface.Origin() != OriginBottomLeft {
		t.Errorf("Origin: got %v, want bottom-left", surface.Origin())
	}

	// Rects are top-left; the patch must come out upright
	rects := []image.Rectangle{
		image.Rect(5, 7, 15, 12),
		image.Rect(0, 0, 40, 1),
		image.Rect(0, 29, 40, 30),
		image.Rect(0, 0, 40, 30),
	}
	for _, rect := range rects {
		t.Run(rect.String(), func(t *testing.T) {
			patch, err := surface.Crop(rect)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			assertCoordPatch(t, patch, rect)
		})
	}
}

func TestSurface_SubImageBounds(t *testing.T) {
	img := createCoordImage(60, 60).SubImage(image.Rect(20, 10, 50, 40))

	surface, err := NewSurface(FromImage(img), FormatRGBA)
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	defer surface.Close()

	if surface.Bounds() != image.Rect(20, 10, 50, 40) {
		t.Errorf("Bounds: got %v, want (20,10)-(50,40)", surface.Bounds())
	}

	rect := image.Rect(25, 15, 35, 20)
	patch, err := surface.Crop(rect)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	assertCoordPatch(t, patch, rect)

	if _, err := surface.Crop(image.Rect(0, 0, 10, 10)); !errors.Is(err, ErrCropOutOfBounds) {
		t.Errorf("crop outside sub-image: got %v, want ErrCropOutOfBounds", err)
	}
}

func TestSurface_CropOutOfBounds(t *testing.T) {
	surface, err := NewSurface(bottomUpSource(20, 20), FormatNRGBA)
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	defer surface.Close()

	_, err = surface.Crop(image.Rect(15, 15, 25, 25))
	if !errors.Is(err, ErrCropOutOfBounds) {
		t.Errorf("got %v, want ErrCropOutOfBounds", err)
	}
}

func TestSurface_Closed(t *testing.T) {
	surface, err := NewSurface(FromImage(createCoordImage(20, 20)), FormatNRGBA)
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	patch, err := surface.Crop(image.Rect(0, 0, 5, 5))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	surface.Close()

	if _, err := surface.Crop(image.Rect(0, 0, 5, 5)); !errors.Is(err, ErrLockFailed) {
		t.Errorf("Crop after Close: got %v, want ErrLockFailed", err)
	}
	assertCoordPatch(t, patch, image.Rect(0, 0, 5, 5))
}

func TestNewSurface_NoPixels(t *testing.T) {
	tests := []struct {
		name string
		src  Source
	}{
		{"nil source", nil},
		{"nil image", FromImage(nil)},
		{"short raw data", &RawSource{Pix: make([]byte, 8), Width: 4, Height: 4, Stride: 16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSurface(tt.src, FormatNRGBA)
			if !errors.Is(err, ErrImageDecodeFailed) {
				t.Errorf("got %v, want ErrImageDecodeFailed", err)
			}
		})
	}
}

func TestParseOrigin(t *testing.T) {
	tests := []struct {
		in      string
		want    Origin
		wantErr bool
	}{
		{"", OriginTopLeft, false},
		{"top-left", OriginTopLeft, false},
		{"bottom-left", OriginBottomLeft, false},
		{"center", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseOrigin(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOrigin(%q): err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOrigin(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

// assertCoordPatch checks that patch holds the coordinate-image pixels of rect.
func assertCoordPatch(t *testing.T, patch *PixelBuffer, rect image.Rectangle) {
	t.Helper()
	if patch.Width != rect.Dx() || patch.Height != rect.Dy() {
		t.Fatalf("dimensions: got %dx%d, want %dx%d", patch.Width, patch.Height, rect.Dx(), rect.Dy())
	}
	for dy := 0; dy < rect.Dy(); dy++ {
		for dx := 0; dx < rect.Dx(); dx++ {
			want := coordColor(rect.Min.X+dx, rect.Min.Y+dy)
			if got := patch.NRGBAAt(dx, dy); got != want {
				t.Fatalf("pixel (%d,%d): got %v, want %v", dx, dy, got, want)
			}
		}
	}
}
