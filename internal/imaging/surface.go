package imaging

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/math/f64"
)

// Origin is the row-order convention of a decoding backend.
type Origin int

const (
	// OriginTopLeft stores the topmost image row first (Go's image package).
	OriginTopLeft Origin = iota
	// OriginBottomLeft stores the bottommost image row first, as OpenGL
	// readbacks and bottom-up BMP data do.
	OriginBottomLeft
)

func (o Origin) String() string {
	switch o {
	case OriginTopLeft:
		return "top-left"
	case OriginBottomLeft:
		return "bottom-left"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// ParseOrigin parses "top-left" or "bottom-left". The empty string selects
// OriginTopLeft.
func ParseOrigin(s string) (Origin, error) {
	switch s {
	case "", "top-left":
		return OriginTopLeft, nil
	case "bottom-left":
		return OriginBottomLeft, nil
	default:
		return 0, fmt.Errorf("unknown origin convention: %s", s)
	}
}

// Source is a decoded image as delivered by a decoding backend.
type Source interface {
	// Image returns the decoded pixels in the backend's native row order,
	// or nil if the source has no pixel data.
	Image() image.Image

	// Origin reports the backend's row-order convention.
	Origin() Origin
}

type imageSource struct {
	img image.Image
}

// FromImage wraps a Go image, which is always top-left.
func FromImage(img image.Image) Source {
	return imageSource{img: img}
}

func (s imageSource) Image() image.Image { return s.img }
func (s imageSource) Origin() Origin     { return OriginTopLeft }

// RawSource is packed 4-byte pixel memory produced outside Go's image
// package, with rows stored in Origin order.
type RawSource struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
	Format PixelFormat
	Native Origin
}

// Image returns a view over the raw memory, rows in native order. It
// returns nil when the memory does not describe a valid buffer.
func (s *RawSource) Image() image.Image {
	buf, err := WrapPixels(s.Pix, s.Width, s.Height, s.Stride, s.Format)
	if err != nil {
		return nil
	}
	return buf.Image()
}

// Origin reports the native row order of Pix.
func (s *RawSource) Origin() Origin { return s.Native }

// Surface is a normalized pixel buffer addressed in top-left coordinates.
//
// It is built once per extraction. The mapping from top-left image space
// to the backend's native row order is a single affine transform applied
// in Crop; nothing upstream of Surface deals with the native convention.
type Surface struct {
	buf      *PixelBuffer
	bounds   image.Rectangle
	origin   Origin
	toNative f64.Aff3
}

// NewSurface decodes src and normalizes it into format.
func NewSurface(src Source, format PixelFormat) (*Surface, error) {
	if src == nil {
		return nil, ErrImageDecodeFailed
	}
	img := src.Image()
	if img == nil {
		return nil, ErrImageDecodeFailed
	}
	buf, err := Normalize(img, format)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	s := &Surface{
		buf:    buf,
		bounds: bounds,
		origin: src.Origin(),
	}

	// image space -> buffer space: translate by -Min, then flip rows for
	// bottom-left backends.
	tx, ty := float64(-bounds.Min.X), float64(-bounds.Min.Y)
	switch s.origin {
	case OriginTopLeft:
		s.toNative = f64.Aff3{1, 0, tx, 0, 1, ty}
	case OriginBottomLeft:
		s.toNative = f64.Aff3{1, 0, tx, 0, -1, float64(buf.Height) - ty}
	default:
		buf.Release()
		return nil, fmt.Errorf("unknown origin convention: %v", s.origin)
	}
	return s, nil
}

// Bounds returns the image-space extent of the surface.
func (s *Surface) Bounds() image.Rectangle {
	return s.bounds
}

// Origin reports the native convention of the underlying backend.
func (s *Surface) Origin() Origin {
	return s.origin
}

// Format returns the pixel format patches are produced in.
func (s *Surface) Format() PixelFormat {
	return s.buf.Format
}

// Crop extracts the image-space rectangle r as an upright, independently
// owned buffer (row 0 is the top of r).
func (s *Surface) Crop(r image.Rectangle) (*PixelBuffer, error) {
	if r.Empty() || !r.In(s.bounds) {
		return nil, fmt.Errorf("%w: region (%d,%d)-(%d,%d) outside image %v",
			ErrCropOutOfBounds, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, s.bounds)
	}
	native := s.nativeRect(r)
	out, err := s.buf.Crop(native)
	if err != nil {
		return nil, err
	}
	if s.toNative[4] < 0 {
		out.flipRows()
	}
	return out, nil
}

// Close releases the normalized buffer. Patches already cropped remain
// valid.
func (s *Surface) Close() {
	s.buf.Release()
}

func (s *Surface) nativeRect(r image.Rectangle) image.Rectangle {
	p := s.apply(r.Min)
	q := s.apply(r.Max)
	return image.Rectangle{Min: p, Max: q}.Canon()
}

func (s *Surface) apply(p image.Point) image.Point {
	m := s.toNative
	x := m[0]*float64(p.X) + m[1]*float64(p.Y) + m[2]
	y := m[3]*float64(p.X) + m[4]*float64(p.Y) + m[5]
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}
