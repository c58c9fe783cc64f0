package features

import (
	"fmt"

	"github.com/ironsheep/image-patches-mcp/internal/imaging"
)

// ImageNet channel statistics, the usual normalization for vision encoders.
var (
	ImageNetMean = [3]float32{0.485, 0.456, 0.406}
	ImageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

// Tensor packs patches into a channel-major (C, H, W) float32 slice with
// channels R, G, B. Each value is (v/255 - Mean[c]) / Std[c]. Alpha is
// dropped.
type Tensor struct {
	Mean [3]float32
	Std  [3]float32
}

// NewImageNetTensor returns a Tensor using ImageNet statistics.
func NewImageNetTensor() Tensor {
	return Tensor{Mean: ImageNetMean, Std: ImageNetStd}
}

// Convert packs buf. The result has length 3*Width*Height.
func (t Tensor) Convert(buf *imaging.PixelBuffer) ([]float32, error) {
	for c, s := range t.Std {
		if s == 0 {
			return nil, fmt.Errorf("zero standard deviation for channel %d", c)
		}
	}

	plane := buf.Width * buf.Height
	out := make([]float32, 3*plane)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			p := buf.NRGBAAt(x, y)
			i := y*buf.Width + x
			out[i] = (float32(p.R)/255 - t.Mean[0]) / t.Std[0]
			out[plane+i] = (float32(p.G)/255 - t.Mean[1]) / t.Std[1]
			out[2*plane+i] = (float32(p.B)/255 - t.Mean[2]) / t.Std[2]
		}
	}
	return out, nil
}
