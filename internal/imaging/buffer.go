package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"
)

// Errors reported by buffer construction and cropping. Callers should test
// for them with errors.Is; the returned errors carry the offending geometry.
var (
	// ErrImageDecodeFailed is returned when a source has no backing pixel data.
	ErrImageDecodeFailed = errors.New("image has no pixel data")

	// ErrBufferAllocationFailed is returned when a destination buffer cannot
	// be allocated (non-positive or overflowing dimensions).
	ErrBufferAllocationFailed = errors.New("pixel buffer allocation failed")

	// ErrLockFailed is returned when a buffer cannot be locked for reading,
	// which happens once it has been released.
	ErrLockFailed = errors.New("pixel buffer lock failed")

	// ErrCropOutOfBounds is returned when a crop rectangle is empty or
	// extends past the buffer.
	ErrCropOutOfBounds = errors.New("crop rectangle out of bounds")
)

// BytesPerPixel is the packed pixel size of every PixelBuffer.
const BytesPerPixel = 4

// maxBufferBytes caps a single allocation.
const maxBufferBytes = 1 << 30

// PixelFormat identifies the packed 4-byte layout of a PixelBuffer.
type PixelFormat int

const (
	// FormatNRGBA stores non-premultiplied R, G, B, A bytes.
	FormatNRGBA PixelFormat = iota
	// FormatRGBA stores alpha-premultiplied R, G, B, A bytes.
	FormatRGBA
)

func (f PixelFormat) String() string {
	switch f {
	case FormatNRGBA:
		return "nrgba"
	case FormatRGBA:
		return "rgba"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// ParsePixelFormat parses "nrgba" or "rgba". The empty string selects
// FormatNRGBA.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch s {
	case "", "nrgba":
		return FormatNRGBA, nil
	case "rgba":
		return FormatRGBA, nil
	default:
		return 0, fmt.Errorf("unknown pixel format: %s", s)
	}
}

// PixelBuffer is a block of packed 4-byte pixels addressed by row stride.
//
// Row y starts at Pix[y*Stride] and holds Width*BytesPerPixel valid bytes;
// any bytes between the end of the valid data and the next row are padding
// and are never read.
//
// Reads of Pix that may race with Release must be bracketed by RLock and
// RUnlock. Buffers produced by Crop own their memory and share nothing with
// the buffer they were cut from.
type PixelBuffer struct {
	Pix    []byte
	Stride int
	Width  int
	Height int
	Format PixelFormat

	mu       sync.RWMutex
	released bool
}

// NewPixelBuffer allocates a zeroed, tightly strided buffer.
func NewPixelBuffer(width, height int, format PixelFormat) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrBufferAllocationFailed, width, height)
	}
	size := int64(width) * int64(height) * BytesPerPixel
	if size > maxBufferBytes {
		return nil, fmt.Errorf("%w: %dx%d needs %d bytes", ErrBufferAllocationFailed, width, height, size)
	}
	return &PixelBuffer{
		Pix:    make([]byte, size),
		Stride: width * BytesPerPixel,
		Width:  width,
		Height: height,
		Format: format,
	}, nil
}

// WrapPixels builds a buffer over existing memory without copying. The
// caller keeps pix alive and unmodified for the lifetime of the buffer.
func WrapPixels(pix []byte, width, height, stride int, format PixelFormat) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrImageDecodeFailed, width, height)
	}
	if stride < width*BytesPerPixel {
		return nil, fmt.Errorf("%w: stride %d shorter than row of %d pixels", ErrImageDecodeFailed, stride, width)
	}
	if need := (height-1)*stride + width*BytesPerPixel; len(pix) < need {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrImageDecodeFailed, len(pix), need)
	}
	return &PixelBuffer{
		Pix:    pix,
		Stride: stride,
		Width:  width,
		Height: height,
		Format: format,
	}, nil
}

// Normalize renders img into a packed 4-byte buffer in the requested format.
//
// The buffer's (0,0) pixel is img.Bounds().Min. The result never aliases
// img, so later changes to img do not show through.
func Normalize(img image.Image, format PixelFormat) (*PixelBuffer, error) {
	if img == nil {
		return nil, ErrImageDecodeFailed
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrImageDecodeFailed, b)
	}

	switch format {
	case FormatNRGBA:
		n := imaging.Clone(img)
		return &PixelBuffer{Pix: n.Pix, Stride: n.Stride, Width: b.Dx(), Height: b.Dy(), Format: format}, nil
	case FormatRGBA:
		r := clone.AsRGBA(img)
		return &PixelBuffer{Pix: r.Pix, Stride: r.Stride, Width: b.Dx(), Height: b.Dy(), Format: format}, nil
	default:
		return nil, fmt.Errorf("unknown pixel format: %v", format)
	}
}

// Bounds returns the buffer extent with its origin at (0,0).
func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// RLock acquires read access to the pixel memory. It fails with
// ErrLockFailed once the buffer has been released.
func (b *PixelBuffer) RLock() error {
	b.mu.RLock()
	if b.released {
		b.mu.RUnlock()
		return ErrLockFailed
	}
	return nil
}

// RUnlock releases read access acquired by RLock.
func (b *PixelBuffer) RUnlock() {
	b.mu.RUnlock()
}

// Release drops the pixel memory. It waits for in-flight readers.
func (b *PixelBuffer) Release() {
	b.mu.Lock()
	b.released = true
	b.Pix = nil
	b.mu.Unlock()
}

// NRGBAAt returns the non-premultiplied color at (x, y).
func (b *PixelBuffer) NRGBAAt(x, y int) color.NRGBA {
	i := y*b.Stride + x*BytesPerPixel
	p := b.Pix[i : i+BytesPerPixel : i+BytesPerPixel]
	if b.Format == FormatNRGBA {
		return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	}
	return color.NRGBAModel.Convert(color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}).(color.NRGBA)
}

// Image returns a standard library view of the buffer. The view shares Pix
// with the buffer and is valid only as long as the buffer is.
func (b *PixelBuffer) Image() image.Image {
	r := image.Rect(0, 0, b.Width, b.Height)
	if b.Format == FormatRGBA {
		return &image.RGBA{Pix: b.Pix, Stride: b.Stride, Rect: r}
	}
	return &image.NRGBA{Pix: b.Pix, Stride: b.Stride, Rect: r}
}

// flipRows reverses the row order in place. The buffer must be tightly
// strided and unshared.
func (b *PixelBuffer) flipRows() {
	row := b.Width * BytesPerPixel
	tmp := make([]byte, row)
	for top, bot := 0, b.Height-1; top < bot; top, bot = top+1, bot-1 {
		t := b.Pix[top*b.Stride : top*b.Stride+row]
		u := b.Pix[bot*b.Stride : bot*b.Stride+row]
		copy(tmp, t)
		copy(t, u)
		copy(u, tmp)
	}
}
