package patch

import (
	"fmt"
	"image"
)

// UniformOrigins spreads the origins of a g.Columns x g.Rows grid of
// patches evenly over region, in row-major order.
//
// Along an axis with n > 1 cells the leftover space is divided into n-1
// gaps of floor((extent - n*size) / (n-1)) pixels, which is negative when the
// patches must overlap. Along an axis with a single cell the patch is
// aligned to region.Min.
//
// Rows are filled greedily: the next origin moves right by one step as long
// as the patch there still ends inside the region, otherwise it wraps to the
// start of the next row. The result always has g.Cells() origins and every
// patch lies within region. When the step along x is zero the row never
// wraps, so every origin is region.Min.
func UniformOrigins(region image.Rectangle, size image.Point, g Grid) ([]image.Point, error) {
	if err := checkFit(region, size); err != nil {
		return nil, err
	}
	if g.Columns < 1 || g.Rows < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDegenerateGrid, g.Columns, g.Rows)
	}

	step := image.Pt(
		axisStep(region.Dx(), size.X, g.Columns),
		axisStep(region.Dy(), size.Y, g.Rows),
	)

	n := g.Cells()
	origins := make([]image.Point, 0, n)
	p := region.Min
	for len(origins) < n {
		origins = append(origins, p)
		if g.Columns > 1 && p.X+step.X+size.X <= region.Max.X {
			p.X += step.X
		} else {
			p.X = region.Min.X
			p.Y += step.Y
		}
	}
	return origins, nil
}

// axisStep returns the distance between consecutive origins along one axis.
func axisStep(extent, size, cells int) int {
	if cells == 1 {
		return size
	}
	return size + floorDiv(extent-cells*size, cells-1)
}

// floorDiv divides rounding toward negative infinity. b must be positive.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
