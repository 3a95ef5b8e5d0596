package wfc

import (
	"errors"
	"testing"
)

// testTable builds a table from adjacency rules or fails the test.
func testTable(t *testing.T, numPatterns int, rules AdjacencyRules) *PropagationTable {
	t.Helper()
	table, err := NewPropagationTable(numPatterns, rules)
	if err != nil {
		t.Fatalf("NewPropagationTable() failed: %v", err)
	}
	return table
}

// fullWave returns w*h unconstrained cell masks for numPatterns.
func fullWave(width, height, numPatterns int) []uint8 {
	cells := make([]uint8, width*height)
	for i := range cells {
		cells[i] = uint8(1<<numPatterns) - 1
	}
	return cells
}

// assertAdjacency verifies every 4-connected pair of the output
// satisfies the relation encoded in the table.
func assertAdjacency(t *testing.T, table *PropagationTable, cells []uint8, width, height int) {
	t.Helper()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := cells[y*width+x]
			if x+1 < width {
				q := cells[y*width+x+1]
				if table[East][1<<p]&(1<<q) == 0 {
					t.Errorf("adjacency violated: %d at (%d,%d) east of %d", p, x, y, q)
				}
			}
			if y+1 < height {
				q := cells[(y+1)*width+x]
				if table[South][1<<p]&(1<<q) == 0 {
					t.Errorf("adjacency violated: %d at (%d,%d) south of %d", p, x, y, q)
				}
			}
		}
	}
}

func TestSolveFullyCollapsesGrid(t *testing.T) {
	table := testTable(t, 3, AdjacencyRules{0: {0, 1}, 1: {0, 1, 2}, 2: {1, 2}})
	weights := []float64{3, 2, 1}

	cells, err := Solve(12, 12, 3, table, weights, fullWave(12, 12, 3), 999)
	if err != nil {
		t.Fatalf("Solve() failed: %v", err)
	}
	if len(cells) != 144 {
		t.Fatalf("output has %d cells, want 144", len(cells))
	}
	for i, p := range cells {
		if p > 2 {
			t.Errorf("cell %d holds pattern %d, want < 3", i, p)
		}
	}
	assertAdjacency(t, table, cells, 12, 12)
}

func TestSolveDeterministic(t *testing.T) {
	table := testTable(t, 3, AdjacencyRules{0: {0, 1}, 1: {0, 1, 2}, 2: {1, 2}})
	weights := []float64{3, 2, 1}

	first, err := Solve(10, 10, 3, table, weights, fullWave(10, 10, 3), 42)
	if err != nil {
		t.Fatalf("Solve() failed: %v", err)
	}
	for run := 0; run < 5; run++ {
		again, err := Solve(10, 10, 3, table, weights, fullWave(10, 10, 3), 42)
		if err != nil {
			t.Fatalf("Solve() failed on run %d: %v", run, err)
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("run %d: cell %d = %d, want %d", run, i, again[i], first[i])
			}
		}
	}
}

func TestSolveDifferentSeedsDiverge(t *testing.T) {
	table := testTable(t, 3, AdjacencyRules{0: {0, 1, 2}, 1: {0, 1, 2}, 2: {0, 1, 2}})
	weights := []float64{1, 1, 1}

	a, err := Solve(8, 8, 3, table, weights, fullWave(8, 8, 3), 1)
	if err != nil {
		t.Fatalf("Solve() failed: %v", err)
	}
	b, err := Solve(8, 8, 3, table, weights, fullWave(8, 8, 3), 2)
	if err != nil {
		t.Fatalf("Solve() failed: %v", err)
	}

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("seeds 1 and 2 produced identical grids; expected divergence")
	}
}

func TestSolveContradictionOnEmptyTable(t *testing.T) {
	// No pattern permits any neighbor in any direction.
	var table PropagationTable

	for _, seed := range []int64{0, 1, 7, 999} {
		_, err := Solve(2, 1, 2, &table, []float64{1, 1}, fullWave(2, 1, 2), seed)
		if !errors.Is(err, ErrContradiction) {
			t.Errorf("seed %d: error = %v, want ErrContradiction", seed, err)
		}

		var cerr *ContradictionError
		if !errors.As(err, &cerr) {
			t.Fatalf("seed %d: error %v does not carry a coordinate", seed, err)
		}
		if cerr.X < 0 || cerr.X > 1 || cerr.Y != 0 {
			t.Errorf("seed %d: contradiction at (%d,%d), outside the 2x1 grid", seed, cerr.X, cerr.Y)
		}
	}
}

func TestSolveContradictionDeterministic(t *testing.T) {
	var table PropagationTable

	_, first := Solve(4, 4, 2, &table, []float64{1, 1}, fullWave(4, 4, 2), 5)
	var firstErr *ContradictionError
	if !errors.As(first, &firstErr) {
		t.Fatalf("expected contradiction, got %v", first)
	}

	for run := 0; run < 5; run++ {
		_, err := Solve(4, 4, 2, &table, []float64{1, 1}, fullWave(4, 4, 2), 5)
		var cerr *ContradictionError
		if !errors.As(err, &cerr) {
			t.Fatalf("run %d: expected contradiction, got %v", run, err)
		}
		if cerr.X != firstErr.X || cerr.Y != firstErr.Y {
			t.Errorf("run %d: failure at (%d,%d), want (%d,%d)",
				run, cerr.X, cerr.Y, firstErr.X, firstErr.Y)
		}
	}
}

func TestSolvePreCollapsedCellsAreFixed(t *testing.T) {
	table := testTable(t, 3, AdjacencyRules{0: {0, 1, 2}, 1: {0, 1, 2}, 2: {0, 1, 2}})
	weights := []float64{1, 1, 1}

	initial := fullWave(5, 5, 3)
	initial[0] = 1 << 2  // (0,0) pinned to pattern 2
	initial[12] = 1 << 0 // (2,2) pinned to pattern 0

	cells, err := Solve(5, 5, 3, table, weights, initial, 7)
	if err != nil {
		t.Fatalf("Solve() failed: %v", err)
	}
	if cells[0] != 2 {
		t.Errorf("pinned cell (0,0) = %d, want 2", cells[0])
	}
	if cells[12] != 0 {
		t.Errorf("pinned cell (2,2) = %d, want 0", cells[12])
	}
}

func TestSolvePinnedCellsConstrainNeighbors(t *testing.T) {
	// 0 pairs only with 0, 1 only with 1. Pinning opposite ends of a
	// 3x1 row squeezes the middle cell to nothing.
	table := testTable(t, 2, AdjacencyRules{0: {0}, 1: {1}})

	initial := fullWave(3, 1, 2)
	initial[0] = 1 << 0
	initial[2] = 1 << 1

	_, err := Solve(3, 1, 2, table, []float64{1, 1}, initial, 3)
	if !errors.Is(err, ErrContradiction) {
		t.Fatalf("error = %v, want ErrContradiction", err)
	}
	var cerr *ContradictionError
	if !errors.As(err, &cerr) {
		t.Fatalf("error %v does not carry a coordinate", err)
	}
	if cerr.X != 1 || cerr.Y != 0 {
		t.Errorf("contradiction at (%d,%d), want (1,0)", cerr.X, cerr.Y)
	}
}

func TestSolveFullyPreCollapsedDecodesDirectly(t *testing.T) {
	// Even with an empty table: no observation work remains.
	var table PropagationTable

	initial := []uint8{1 << 1, 1 << 0, 1 << 1, 1 << 0}
	cells, err := Solve(2, 2, 2, &table, []float64{1, 1}, initial, 0)
	if err != nil {
		t.Fatalf("Solve() failed: %v", err)
	}
	want := []uint8{1, 0, 1, 0}
	for i := range want {
		if cells[i] != want[i] {
			t.Errorf("cell %d = %d, want %d", i, cells[i], want[i])
		}
	}
}

func TestSolveSinglePattern(t *testing.T) {
	table := testTable(t, 1, AdjacencyRules{0: {0}})

	cells, err := Solve(6, 4, 1, table, []float64{1}, fullWave(6, 4, 1), 11)
	if err != nil {
		t.Fatalf("Solve() failed: %v", err)
	}
	for i, p := range cells {
		if p != 0 {
			t.Errorf("cell %d = %d, want 0", i, p)
		}
	}
}

func TestSolveSingleCell(t *testing.T) {
	table := testTable(t, 4, AdjacencyRules{})

	cells, err := Solve(1, 1, 4, table, []float64{1, 2, 3, 4}, fullWave(1, 1, 4), 21)
	if err != nil {
		t.Fatalf("Solve() failed: %v", err)
	}
	if len(cells) != 1 || cells[0] > 3 {
		t.Errorf("cells = %v, want a single pattern below 4", cells)
	}
}

func TestSolveZeroWeightPatternAvoided(t *testing.T) {
	table := testTable(t, 2, AdjacencyRules{0: {0, 1}, 1: {0, 1}})

	// Pattern 1 has zero weight; with pattern 0 available everywhere
	// the draw must never pick 1.
	cells, err := Solve(6, 6, 2, table, []float64{5, 0}, fullWave(6, 6, 2), 13)
	if err != nil {
		t.Fatalf("Solve() failed: %v", err)
	}
	for i, p := range cells {
		if p != 0 {
			t.Errorf("cell %d = %d, zero-weight pattern chosen over positive one", i, p)
		}
	}
}

func TestSolveValidation(t *testing.T) {
	table := testTable(t, 2, AdjacencyRules{0: {0, 1}, 1: {1}})

	t.Run("wave bit outside pattern range", func(t *testing.T) {
		wave := fullWave(2, 2, 2)
		wave[3] = 0b0100
		_, err := Solve(2, 2, 2, table, []float64{1, 1}, wave, 0)
		if !errors.Is(err, ErrInvalidWave) {
			t.Errorf("error = %v, want ErrInvalidWave", err)
		}
	})

	t.Run("wave length mismatch", func(t *testing.T) {
		_, err := Solve(2, 2, 2, table, []float64{1, 1}, make([]uint8, 3), 0)
		if !errors.Is(err, ErrInvalidSize) {
			t.Errorf("error = %v, want ErrInvalidSize", err)
		}
	})

	t.Run("zero patterns", func(t *testing.T) {
		_, err := Solve(2, 2, 0, table, nil, make([]uint8, 4), 0)
		if !errors.Is(err, ErrInvalidPatterns) {
			t.Errorf("error = %v, want ErrInvalidPatterns", err)
		}
	})

	t.Run("too many patterns", func(t *testing.T) {
		_, err := Solve(2, 2, 9, table, make([]float64, 9), make([]uint8, 4), 0)
		if !errors.Is(err, ErrInvalidPatterns) {
			t.Errorf("error = %v, want ErrInvalidPatterns", err)
		}
	})

	t.Run("weight count mismatch", func(t *testing.T) {
		_, err := Solve(2, 2, 2, table, []float64{1}, fullWave(2, 2, 2), 0)
		if !errors.Is(err, ErrInvalidWeights) {
			t.Errorf("error = %v, want ErrInvalidWeights", err)
		}
	})

	t.Run("negative weight", func(t *testing.T) {
		_, err := Solve(2, 2, 2, table, []float64{1, -1}, fullWave(2, 2, 2), 0)
		if !errors.Is(err, ErrInvalidWeights) {
			t.Errorf("error = %v, want ErrInvalidWeights", err)
		}
	})

	t.Run("initially empty cell", func(t *testing.T) {
		wave := fullWave(2, 2, 2)
		wave[1] = 0
		_, err := Solve(2, 2, 2, table, []float64{1, 1}, wave, 0)
		if !errors.Is(err, ErrContradiction) {
			t.Errorf("error = %v, want ErrContradiction", err)
		}
	})
}
