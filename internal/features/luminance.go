package features

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/image-patches-mcp/internal/imaging"
)

// Luminance converts patches to a Height x Width matrix of luma values in
// [0,1], using ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B).
type Luminance struct{}

// Convert builds the luma matrix for buf.
func (Luminance) Convert(buf *imaging.PixelBuffer) (*mat.Dense, error) {
	data := make([]float64, buf.Width*buf.Height)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			data[y*buf.Width+x] = luma(buf, x, y)
		}
	}
	return mat.NewDense(buf.Height, buf.Width, data), nil
}

func luma(buf *imaging.PixelBuffer, x, y int) float64 {
	p := buf.NRGBAAt(x, y)
	return (0.299*float64(p.R) + 0.587*float64(p.G) + 0.114*float64(p.B)) / 255.0
}
