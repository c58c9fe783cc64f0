package patch

import (
	"fmt"
	"image"
)

// Grid is a columns x rows patch layout.
type Grid struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// Cells returns the number of patches in the grid.
func (g Grid) Cells() int {
	return g.Columns * g.Rows
}

// SolveGrid chooses grid dimensions for about n patches of the given size
// in region.
//
// It starts from the largest non-overlapping grid, floor(region/size) on each
// axis, and walks one unit per step toward n: rows and columns alternate,
// rows first. The walk stops at the first grid that reaches or crosses n
// (cells <= n when shrinking, cells >= n when growing), so the result
// approximates n from the far side of the starting grid rather than
// matching it exactly.
//
// A dimension is never shrunk below 1; when the dimension whose turn it is
// is already 1, the other one shrinks instead.
func SolveGrid(region image.Rectangle, size image.Point, n int) (Grid, error) {
	if err := checkFit(region, size); err != nil {
		return Grid{}, err
	}
	if n < 1 {
		return Grid{}, fmt.Errorf("%w: grid needs at least one patch, got %d", ErrInvalidCount, n)
	}

	cols := region.Dx() / size.X
	rows := region.Dy() / size.Y

	rowsTurn := true
	if cols*rows > n {
		for cols*rows > n {
			if (rowsTurn && rows > 1) || cols == 1 {
				rows--
			} else {
				cols--
			}
			rowsTurn = !rowsTurn
		}
	} else {
		for cols*rows < n {
			if rowsTurn {
				rows++
			} else {
				cols++
			}
			rowsTurn = !rowsTurn
		}
	}

	return Grid{Columns: cols, Rows: rows}, nil
}
