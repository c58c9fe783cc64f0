package features

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-patches-mcp/internal/imaging"
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

// LabColor represents a color in CIE L*a*b* space (D65 white point).
type LabColor struct {
	L float64 `json:"l"` // Lightness: 0 (black) to 1 (white)
	A float64 `json:"a"` // Green (-) to red (+)
	B float64 `json:"b"` // Blue (-) to yellow (+)
}

// ColorFrequency represents a color and its occurrence frequency in a patch.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#RRGGBB" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
}

// ColorStats summarizes the colors of one patch.
type ColorStats struct {
	// Hex is the mean color as "#RRGGBB".
	Hex string `json:"hex"`

	// RGB is the per-channel mean of the sRGB components.
	RGB RGBColor `json:"rgb"`

	// HSL is the mean color in HSL space.
	HSL HSLColor `json:"hsl"`

	// Lab is the mean color in CIE L*a*b* space.
	Lab LabColor `json:"lab"`

	// Dominant lists the most frequent quantized colors, most common first.
	Dominant []ColorFrequency `json:"dominant"`
}

// ColorSummary computes ColorStats for each patch.
//
// Count is the maximum number of dominant colors to report; zero or
// negative selects 5.
//
// # Color Quantization
//
// To group similar colors, RGB values are quantized by dividing each
// component by 16 and rounding down, so colors within 16 units of each other
// (per component) fall in the same bucket. Buckets with equal frequency are
// ordered by hex value so the result is deterministic.
type ColorSummary struct {
	Count int
}

// Convert summarizes buf.
func (s ColorSummary) Convert(buf *imaging.PixelBuffer) (*ColorStats, error) {
	count := s.Count
	if count <= 0 {
		count = 5
	}

	total := buf.Width * buf.Height
	if total == 0 {
		return nil, fmt.Errorf("empty patch")
	}

	var sumR, sumG, sumB int
	buckets := make(map[RGBColor]int)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			p := buf.NRGBAAt(x, y)
			sumR += int(p.R)
			sumG += int(p.G)
			sumB += int(p.B)
			buckets[RGBColor{R: p.R / 16 * 16, G: p.G / 16 * 16, B: p.B / 16 * 16}]++
		}
	}

	mean := RGBColor{
		R: uint8(sumR / total),
		G: uint8(sumG / total),
		B: uint8(sumB / total),
	}
	c := toColorful(mean)
	h, sat, l := c.Hsl()
	labL, labA, labB := c.Lab()

	dominant := make([]ColorFrequency, 0, len(buckets))
	for rgb, n := range buckets {
		dominant = append(dominant, ColorFrequency{
			Hex:        hexOf(rgb),
			Percentage: float64(n) / float64(total) * 100,
			RGB:        rgb,
		})
	}
	slices.SortFunc(dominant, func(a, b ColorFrequency) int {
		if a.Percentage != b.Percentage {
			return cmp.Compare(b.Percentage, a.Percentage)
		}
		return strings.Compare(a.Hex, b.Hex)
	})
	if len(dominant) > count {
		dominant = dominant[:count]
	}

	return &ColorStats{
		Hex: hexOf(mean),
		RGB: mean,
		HSL: HSLColor{
			H: int(h),
			S: int(sat * 100),
			L: int(l * 100),
		},
		Lab:      LabColor{L: labL, A: labA, B: labB},
		Dominant: dominant,
	}, nil
}

func toColorful(c RGBColor) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func hexOf(c RGBColor) string {
	return strings.ToUpper(toColorful(c).Hex())
}
