package patch

import (
	"fmt"
	"image"
	"math/rand/v2"
)

// RandomOrigins draws n patch origins independently and uniformly from the
// placements that keep the patch inside region: x in
// [region.Min.X, region.Max.X-size.X] and y in
// [region.Min.Y, region.Max.Y-size.Y], both inclusive. Draws are with
// replacement, so origins may repeat.
//
// A nil rng draws from a freshly seeded generator.
func RandomOrigins(rng *rand.Rand, region image.Rectangle, size image.Point, n int) ([]image.Point, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if err := checkFit(region, size); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	spanX := region.Dx() - size.X + 1
	spanY := region.Dy() - size.Y + 1

	origins := make([]image.Point, n)
	for i := range origins {
		origins[i] = image.Pt(region.Min.X+rng.IntN(spanX), region.Min.Y+rng.IntN(spanY))
	}
	return origins, nil
}
