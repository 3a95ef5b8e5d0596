package grid

import (
	"errors"
	"testing"
)

func TestNewCostGrid(t *testing.T) {
	g, err := NewCostGrid([][]int{
		{1, 2, 3},
		{4, 0, 6},
	})
	if err != nil {
		t.Fatalf("NewCostGrid() failed: %v", err)
	}
	if g.Width != 3 || g.Height != 2 {
		t.Errorf("size = %dx%d, want 3x2", g.Width, g.Height)
	}
	if got := g.Cost(Point{X: 2, Y: 1}); got != 6 {
		t.Errorf("Cost((2,1)) = %d, want 6", got)
	}
	if g.Walkable(Point{X: 1, Y: 1}) {
		t.Error("cell (1,1) has cost 0, should not be walkable")
	}
}

func TestNewCostGridRejectsEmpty(t *testing.T) {
	if _, err := NewCostGrid(nil); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("NewCostGrid(nil) error = %v, want ErrInvalidGrid", err)
	}
	if _, err := NewCostGrid([][]int{{}}); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("NewCostGrid(empty row) error = %v, want ErrInvalidGrid", err)
	}
}

func TestNewCostGridRejectsRaggedRows(t *testing.T) {
	_, err := NewCostGrid([][]int{
		{1, 1, 1},
		{1, 1},
	})
	if !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("error = %v, want ErrInvalidGrid", err)
	}
}

func TestNewCostGridRejectsNegativeCost(t *testing.T) {
	_, err := NewCostGrid([][]int{
		{1, 1},
		{1, -3},
	})
	if !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("error = %v, want ErrInvalidGrid", err)
	}
}

func TestCheckBounds(t *testing.T) {
	g, err := NewCostGrid([][]int{{1, 1}, {1, 1}})
	if err != nil {
		t.Fatalf("NewCostGrid() failed: %v", err)
	}

	inside := []Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for _, p := range inside {
		if err := g.CheckBounds(p); err != nil {
			t.Errorf("CheckBounds(%v) = %v, want nil", p, err)
		}
	}

	outside := []Point{{-1, 0}, {0, -1}, {2, 0}, {0, 2}, {5, 5}}
	for _, p := range outside {
		if err := g.CheckBounds(p); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("CheckBounds(%v) = %v, want ErrOutOfBounds", p, err)
		}
	}
}
