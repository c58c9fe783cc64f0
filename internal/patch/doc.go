// Package patch selects and extracts fixed-size patches from an image.
//
// Patch placement comes in three flavors:
//   - Uniform: SolveGrid picks a columns x rows grid whose cell count
//     approximates the requested count, and UniformOrigins spreads that grid
//     evenly over the mask region.
//   - Random: RandomOrigins draws independent, uniformly distributed origins
//     (with replacement) from the valid placement range.
//   - Explicit: the caller supplies the origins.
//
// An Extractor turns a placement into patches. It normalizes the source
// image once, crops every patch rectangle into its own buffer, and hands the
// buffer to a caller-supplied Converter that produces the payload. Patches
// that fail to crop or convert are skipped and reported in
// Result.Failures; the rest of the batch is still returned.
//
// # Coordinates
//
// Sampling works in image coordinates: origin at the top-left, X to the
// right, Y down, rectangles as image.Rectangle. A patch at origin p covers
// image.Rectangle{Min: p, Max: p.Add(size)}. Backends with another native
// convention are reconciled by imaging.Surface at crop time.
//
// # Example
//
//	ex := patch.New[*features.Encoded](features.PNG{}, patch.WithWorkers(4))
//	res, err := ex.ExtractSampled(ctx, imaging.FromImage(img),
//	    image.Pt(32, 32), 50, patch.Uniform, image.Rectangle{})
//	if err != nil {
//	    return err
//	}
//	for i, p := range res.Patches {
//	    fmt.Println(res.Rects[i], p.Width, p.Height)
//	}
package patch
