// Package imaging provides the pixel-level layer for patch extraction.
//
// This package decodes source images, normalizes them into packed 4-byte
// pixel buffers, and cuts rectangular regions out of those buffers. It also
// draws debug overlays that show where patches were taken from.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with (0,0) at the
// top-left corner, X increasing rightward and Y increasing downward:
//   - Rectangles follow image.Rectangle: Min is inclusive, Max is exclusive
//   - PixelBuffer coordinates start at (0,0) for the buffer's first pixel
//   - Surface coordinates are image coordinates (image.Bounds() of the source)
//
// Decoding backends that store rows bottom-up (OriginBottomLeft) are
// reconciled inside Surface.Crop by one affine transform. Callers never see
// the native convention.
//
// # Memory Ownership
//
// PixelBuffer.Crop and Surface.Crop always deep-copy the selected rows into
// freshly allocated, tightly strided memory. A cropped buffer shares nothing
// with its source and remains valid after the source is released. Reads of
// a source buffer are bracketed by RLock/RUnlock for the duration of a
// single crop.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. A Surface may be cropped
// from multiple goroutines at once; Close waits for in-flight crops.
//
// # Error Handling
//
// Functions return errors wrapping the sentinel values ErrImageDecodeFailed,
// ErrBufferAllocationFailed, ErrLockFailed and ErrCropOutOfBounds, plus
// plain errors for file I/O and encoding failures.
package imaging
