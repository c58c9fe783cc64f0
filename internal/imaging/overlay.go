package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OverlayResult contains the image with patch outlines drawn over it.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	PatchCount  int    `json:"patch_count"`
}

// PatchOverlay draws the outline of every patch rectangle, and of the mask
// region when it is non-empty, over a copy of img.
//
// Rectangles are in image coordinates. Patches are outlined in the color
// given by patchColorHex ("#RRGGBB" or "#RRGGBBAA"); an unparsable color
// falls back to semi-transparent red. The region is outlined in yellow.
// With showIndex set, each patch is labelled with its position in rects.
func PatchOverlay(img image.Image, region image.Rectangle, rects []image.Rectangle, showIndex bool, patchColorHex string) (*OverlayResult, error) {
	bounds := img.Bounds()

	patchColor, err := parseHexColor(patchColorHex)
	if err != nil {
		patchColor = color.RGBA{255, 0, 0, 128} // Default: semi-transparent red
	}

	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	if !region.Empty() {
		drawOutline(result, region, color.RGBA{255, 255, 0, 255})
	}

	for _, r := range rects {
		drawOutline(result, r, patchColor)
	}

	if showIndex {
		labelColor := color.RGBA{255, 255, 255, 255}
		bgColor := color.RGBA{0, 0, 0, 180}

		for i, r := range rects {
			drawLabel(result, r.Min.X+2, r.Min.Y+2, strconv.Itoa(i), labelColor, bgColor)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, result, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &OverlayResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		PatchCount:  len(rects),
	}, nil
}

// drawOutline draws the one-pixel border of r, clipped to img.
func drawOutline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel writes text with its top-left corner at (x, y) over a
// translucent background box, using the 7x13 basic font. Drawing is clipped
// to img.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	if text == "" {
		return
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: basicfont.Face7x13,
	}
	m := d.Face.Metrics()
	w := d.MeasureString(text).Ceil()
	h := (m.Ascent + m.Descent).Ceil()

	box := image.Rect(x-1, y-1, x+w+1, y+h).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d.Dot = fixed.P(x, y+m.Ascent.Ceil())
	d.DrawString(text)
}
