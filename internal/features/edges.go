package features

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	dimaging "github.com/disintegration/imaging"

	"github.com/ironsheep/image-patches-mcp/internal/imaging"
)

// EdgeMap contains the edge pixels of a patch.
type EdgeMap struct {
	// Width of the edge map in pixels (same as the patch).
	Width int `json:"width"`

	// Height of the edge map in pixels (same as the patch).
	Height int `json:"height"`

	// Density is the fraction of pixels marked as edges (0.0 to 1.0).
	Density float64 `json:"density"`

	// ImageBase64 is the edge image encoded as base64 PNG, edges in white.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// Edges performs Canny-style edge detection on each patch.
//
// Low and High are the hysteresis thresholds (0-255). Gradient magnitudes
// below Low are discarded, those above High are always kept, and those in
// between are kept when next to a strong edge. Zero values select 50 and
// 150.
//
// # Algorithm
//
//  1. Grayscale conversion
//  2. Gaussian blur (sigma 1.4) to reduce noise
//  3. Sobel gradients for X and Y
//  4. Non-maximum suppression along the gradient direction
//  5. Double threshold with single-step hysteresis
type Edges struct {
	Low  int
	High int
}

// Convert computes the edge map of buf.
func (e Edges) Convert(buf *imaging.PixelBuffer) (*EdgeMap, error) {
	low, high := e.Low, e.High
	if low == 0 && high == 0 {
		low, high = 50, 150
	}
	if low > high {
		return nil, fmt.Errorf("low threshold %d above high threshold %d", low, high)
	}

	width, height := buf.Width, buf.Height
	edges := detectEdges(buf.Image(), float64(low)/255.0, float64(high)/255.0)

	marked := 0
	for _, v := range edges.Pix {
		if v != 0 {
			marked++
		}
	}

	var out bytes.Buffer
	if err := dimaging.Encode(&out, edges, dimaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	return &EdgeMap{
		Width:       width,
		Height:      height,
		Density:     float64(marked) / float64(width*height),
		ImageBase64: base64.StdEncoding.EncodeToString(out.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// detectEdges returns a binary edge image with the bounds of src moved to
// the origin. Thresholds are in [0,1].
func detectEdges(src image.Image, lowThresh, highThresh float64) *image.Gray {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	blurred := blur.Gaussian(effect.Grayscale(src), 1.4)
	bb := blurred.Bounds()

	gray := make([][]float64, height)
	for y := 0; y < height; y++ {
		gray[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			// grayscale input: any channel carries the luminance
			gray[y][x] = float64(blurred.RGBAAt(bb.Min.X+x, bb.Min.Y+y).R) / 255.0
		}
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)

		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					gx += gray[py][px] * sobelX[ky+1][kx+1]
					gy += gray[py][px] * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	// Double threshold and edge tracking by hysteresis
	result := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y][x]
			if val >= highThresh {
				result.SetGray(x, y, color.Gray{255})
			} else if val >= lowThresh && hasStrongNeighbor(suppressed, x, y, highThresh) {
				result.SetGray(x, y, color.Gray{255})
			}
		}
	}
	return result
}

func hasStrongNeighbor(suppressed [][]float64, x, y int, highThresh float64) bool {
	height := len(suppressed)
	width := len(suppressed[0])
	for ky := -1; ky <= 1; ky++ {
		for kx := -1; kx <= 1; kx++ {
			py := clamp(y+ky, 0, height-1)
			px := clamp(x+kx, 0, width-1)
			if suppressed[py][px] >= highThresh {
				return true
			}
		}
	}
	return false
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
