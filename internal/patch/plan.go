package patch

import (
	"fmt"
	"image"
	"math/rand/v2"
)

// Plan is a resolved patch placement: where every patch goes, before any
// pixels are touched.
type Plan struct {
	// Size is the patch size shared by every patch.
	Size image.Point `json:"size"`

	// Region is the sampling region the origins were drawn from.
	Region image.Rectangle `json:"region"`

	// Grid is the grid used for uniform placement; zero otherwise.
	Grid Grid `json:"grid"`

	// Origins are the patch top-left corners in image coordinates.
	Origins []image.Point `json:"origins"`
}

// Rects returns the patch rectangles in origin order.
func (p *Plan) Rects() []image.Rectangle {
	rects := make([]image.Rectangle, len(p.Origins))
	for i, o := range p.Origins {
		rects[i] = image.Rectangle{Min: o, Max: o.Add(p.Size)}
	}
	return rects
}

// PlanGrid places a caller-chosen grid uniformly over mask. The zero mask
// selects the whole image.
func PlanGrid(bounds image.Rectangle, size image.Point, g Grid, mask image.Rectangle) (*Plan, error) {
	region, err := resolveMask(bounds, mask)
	if err != nil {
		return nil, err
	}
	origins, err := UniformOrigins(region, size, g)
	if err != nil {
		return nil, err
	}
	return &Plan{Size: size, Region: region, Grid: g, Origins: origins}, nil
}

// PlanSampled places count patches over mask with the given method. For
// Uniform the count is approximated by SolveGrid; for Random exactly count
// origins are drawn from rng.
func PlanSampled(rng *rand.Rand, bounds image.Rectangle, size image.Point, count int, method Method, mask image.Rectangle) (*Plan, error) {
	region, err := resolveMask(bounds, mask)
	if err != nil {
		return nil, err
	}
	if err := checkFit(region, size); err != nil {
		return nil, err
	}

	switch method {
	case Uniform:
		g, err := SolveGrid(region, size, count)
		if err != nil {
			return nil, err
		}
		origins, err := UniformOrigins(region, size, g)
		if err != nil {
			return nil, err
		}
		return &Plan{Size: size, Region: region, Grid: g, Origins: origins}, nil
	case Random:
		origins, err := RandomOrigins(rng, region, size, count)
		if err != nil {
			return nil, err
		}
		return &Plan{Size: size, Region: region, Origins: origins}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, method)
	}
}

// PlanShrunk is PlanSampled over the centered region left after shrinking
// bounds by factor.
func PlanShrunk(rng *rand.Rand, bounds image.Rectangle, size image.Point, count int, method Method, factor float64) (*Plan, error) {
	region, err := MaskRegion(bounds, factor)
	if err != nil {
		return nil, err
	}
	return PlanSampled(rng, bounds, size, count, method, region)
}

// PlanAt wraps caller-supplied origins. The patch size must fit the image;
// the origins themselves are not checked against bounds, so patches that
// fall outside the image fail individually at crop time.
func PlanAt(bounds image.Rectangle, size image.Point, origins []image.Point) (*Plan, error) {
	if err := checkFit(bounds, size); err != nil {
		return nil, err
	}
	return &Plan{
		Size:    size,
		Region:  bounds,
		Origins: append([]image.Point(nil), origins...),
	}, nil
}
