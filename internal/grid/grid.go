// Package grid provides the shared coordinate space and cost-grid
// validation used by the pathfinding and map generation kernels.
package grid

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidGrid = errors.New("grid: invalid cost grid")
	ErrOutOfBounds = errors.New("grid: coordinate outside grid bounds")
)

// Point is a cell coordinate. X grows east, Y grows south.
type Point struct {
	X, Y int
}

// String returns the point as "(x,y)" for log and error messages.
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// CostGrid is a rectangular grid of traversal costs, indexed [y][x].
// A cost of 0 marks an impassable cell; positive values are the cost
// of stepping onto that cell. Costs are never negative.
type CostGrid struct {
	Width, Height int
	cells         [][]int
}

// NewCostGrid validates the supplied rows and wraps them in a CostGrid.
// The rows are not copied; the caller must not mutate them while a
// search is running.
func NewCostGrid(cells [][]int) (*CostGrid, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, fmt.Errorf("%w: grid must be a non-empty 2D integer array", ErrInvalidGrid)
	}

	width := len(cells[0])
	for y, row := range cells {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidGrid, y, len(row), width)
		}
		for x, cost := range row {
			if cost < 0 {
				return nil, fmt.Errorf("%w: negative cost %d at (%d,%d)", ErrInvalidGrid, cost, x, y)
			}
		}
	}

	return &CostGrid{
		Width:  width,
		Height: len(cells),
		cells:  cells,
	}, nil
}

// Contains reports whether p lies within [0,width) x [0,height).
func (g *CostGrid) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// CheckBounds returns ErrOutOfBounds naming the coordinate if p lies
// outside the grid.
func (g *CostGrid) CheckBounds(p Point) error {
	if !g.Contains(p) {
		return fmt.Errorf("%w: %v not in %dx%d grid", ErrOutOfBounds, p, g.Width, g.Height)
	}
	return nil
}

// Cost returns the traversal cost of the cell at p. The caller must
// ensure p is in bounds.
func (g *CostGrid) Cost(p Point) int {
	return g.cells[p.Y][p.X]
}

// Walkable reports whether the cell at p can be entered.
func (g *CostGrid) Walkable(p Point) bool {
	return g.cells[p.Y][p.X] > 0
}
