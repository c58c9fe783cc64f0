// Package features converts cropped patches into payloads for downstream
// feature-extraction models.
//
// Every converter in this package has a method
//
//	Convert(buf *imaging.PixelBuffer) (P, error)
//
// for its payload type P, which makes it usable as a patch.Converter[P].
// Converters only read the buffer they are given and keep no reference to
// it, so a single converter value may be shared by concurrent extraction
// workers.
//
// # Payloads
//
//   - PNG: base64-encoded PNG of the patch pixels
//   - Tensor: channel-major float32 tensor normalized by mean and standard
//     deviation, as consumed by vision encoders
//   - Luminance: gonum matrix of BT.601 luma values in [0,1]
//   - ColorSummary: mean color in several color spaces plus dominant colors
//   - Edges: Canny-style edge map and edge density
//
// No converter resizes or resamples the patch.
package features
