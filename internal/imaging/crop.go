package imaging

import (
	"fmt"
	"image"
)

// Crop copies the pixels inside r into a new, tightly strided buffer.
//
// Coordinates are buffer coordinates: (0,0) is the first pixel of row 0.
// The region must be non-empty and lie fully inside the buffer, otherwise
// ErrCropOutOfBounds is returned. The result has the same pixel format,
// Stride = r.Dx()*BytesPerPixel, and owns its memory, so it stays valid
// after the source buffer is released.
//
// The source is read-locked only while the rows are copied.
func (b *PixelBuffer) Crop(r image.Rectangle) (*PixelBuffer, error) {
	if r.Empty() || !r.In(b.Bounds()) {
		return nil, fmt.Errorf("%w: region (%d,%d)-(%d,%d) outside buffer %dx%d",
			ErrCropOutOfBounds, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, b.Width, b.Height)
	}

	dst, err := NewPixelBuffer(r.Dx(), r.Dy(), b.Format)
	if err != nil {
		return nil, err
	}

	if err := b.RLock(); err != nil {
		return nil, err
	}
	defer b.RUnlock()

	rowBytes := r.Dx() * BytesPerPixel
	offset := r.Min.Y*b.Stride + r.Min.X*BytesPerPixel
	for y := 0; y < dst.Height; y++ {
		src := b.Pix[offset : offset+rowBytes : offset+rowBytes]
		copy(dst.Pix[y*dst.Stride:], src)
		offset += b.Stride
	}

	return dst, nil
}
