package patch

import (
	"fmt"
	"image"
	"math"
)

// MaskRegion returns the sub-rectangle of bounds that remains after
// shrinking it by the given factor around its center.
//
// The region's width and height are floor(factor * extent); the leftover
// is split evenly on both sides, with the odd pixel going to the right and
// bottom. A factor of 1 returns bounds unchanged.
func MaskRegion(bounds image.Rectangle, factor float64) (image.Rectangle, error) {
	if math.IsNaN(factor) || factor <= 0 || factor > 1 {
		return image.Rectangle{}, fmt.Errorf("%w: got %v", ErrInvalidShrinkFactor, factor)
	}
	if bounds.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: empty image bounds", ErrInvalidMaskRegion)
	}

	w := int(math.Floor(float64(bounds.Dx()) * factor))
	h := int(math.Floor(float64(bounds.Dy()) * factor))
	if w < 1 || h < 1 {
		return image.Rectangle{}, fmt.Errorf("%w: factor %v leaves %dx%d of %dx%d",
			ErrInvalidMaskRegion, factor, w, h, bounds.Dx(), bounds.Dy())
	}

	origin := bounds.Min.Add(image.Pt((bounds.Dx()-w)/2, (bounds.Dy()-h)/2))
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}, nil
}

// resolveMask returns the sampling region for an image: the zero rectangle
// selects the whole image, anything else must be a non-empty rectangle
// inside bounds.
func resolveMask(bounds, mask image.Rectangle) (image.Rectangle, error) {
	if mask == (image.Rectangle{}) {
		return bounds, nil
	}
	if mask.Empty() || !mask.In(bounds) {
		return image.Rectangle{}, fmt.Errorf("%w: %v not inside image %v", ErrInvalidMaskRegion, mask, bounds)
	}
	return mask, nil
}

// checkFit verifies that a patch of the given size fits inside region.
func checkFit(region image.Rectangle, size image.Point) error {
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidPatchSize, size.X, size.Y)
	}
	if size.X > region.Dx() || size.Y > region.Dy() {
		return fmt.Errorf("%w: %dx%d patch larger than %dx%d region",
			ErrInvalidPatchSize, size.X, size.Y, region.Dx(), region.Dy())
	}
	return nil
}
