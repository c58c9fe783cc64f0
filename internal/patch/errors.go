package patch

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/image-patches-mcp/internal/imaging"
)

var (
	// ErrInvalidPatchSize is returned when the patch size is not positive or
	// does not fit inside the sampling region.
	ErrInvalidPatchSize = errors.New("invalid patch size")

	// ErrDegenerateGrid is returned for a grid without cells.
	ErrDegenerateGrid = errors.New("degenerate grid")

	// ErrInvalidCount is returned for a patch count the method cannot honor.
	ErrInvalidCount = errors.New("invalid patch count")

	// ErrInvalidShrinkFactor is returned for a mask shrink factor outside (0, 1].
	ErrInvalidShrinkFactor = errors.New("mask shrink factor must be in (0, 1]")

	// ErrInvalidMaskRegion is returned for a mask region that is empty or
	// not contained in the image.
	ErrInvalidMaskRegion = errors.New("invalid mask region")

	// ErrUnknownMethod is returned for an unrecognized sampling method.
	ErrUnknownMethod = errors.New("unknown sampling method")
)

// Pixel-level failures, re-exported so callers can match every failure of
// an extraction against this package.
var (
	ErrImageDecodeFailed      = imaging.ErrImageDecodeFailed
	ErrBufferAllocationFailed = imaging.ErrBufferAllocationFailed
	ErrLockFailed             = imaging.ErrLockFailed
	ErrCropOutOfBounds        = imaging.ErrCropOutOfBounds
)

// PatchError describes a single patch that was skipped.
type PatchError struct {
	// Index is the position of the patch in the planned origin sequence.
	Index int

	// Rect is the image-space rectangle of the patch.
	Rect image.Rectangle

	// Err is the crop or conversion failure.
	Err error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("patch %d at (%d,%d)-(%d,%d): %v",
		e.Index, e.Rect.Min.X, e.Rect.Min.Y, e.Rect.Max.X, e.Rect.Max.Y, e.Err)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}
