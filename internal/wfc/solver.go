// Package wfc implements a Wave Function Collapse constraint solver
// over an 8-bit candidate bitmask per cell. Adjacency constraints are
// precomputed into a direction-by-source-mask lookup table, so a
// propagation step is a single AND. The solver never backtracks: a
// contradiction ends the solve and the caller retries with another
// seed (see Generator).
package wfc

import (
	"fmt"
	"math"
	"math/bits"
	"math/rand"
)

// Solver collapses a Wave into a concrete pattern per cell. All
// randomness (entropy tie-breaks and weighted pattern draws) comes
// from a single math/rand stream seeded at construction
// (rand.New(rand.NewSource(seed))), consumed in a fixed order, so
// identical inputs and seed always reproduce the same output,
// including the same failure point on unsolvable inputs.
type Solver struct {
	wave    *Wave
	table   *PropagationTable
	weights []float64
	rng     *rand.Rand

	// Precomputed w*log(w) per pattern for entropy scoring.
	wLogW []float64

	queue   []int
	inQueue []bool
	ties    []int
}

// NewSolver validates the inputs and prepares a solve over the given
// wave. The wave is owned by the solver from here on; weights must
// hold one non-negative value per pattern.
func NewSolver(wave *Wave, table *PropagationTable, weights []float64, seed int64) (*Solver, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil propagation table", ErrInvalidWeights)
	}
	if len(weights) != wave.NumPatterns {
		return nil, fmt.Errorf("%w: got %d weights for %d patterns",
			ErrInvalidWeights, len(weights), wave.NumPatterns)
	}
	for p, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("%w: weight %v for pattern %d", ErrInvalidWeights, w, p)
		}
	}

	wLogW := make([]float64, len(weights))
	for p, w := range weights {
		if w > 0 {
			wLogW[p] = w * math.Log(w)
		}
	}

	return &Solver{
		wave:    wave,
		table:   table,
		weights: weights,
		rng:     rand.New(rand.NewSource(seed)),
		wLogW:   wLogW,
		inQueue: make([]bool, len(wave.cells)),
	}, nil
}

// Solve runs observe/propagate cycles until every cell is collapsed or
// a contradiction is hit. On success it returns one pattern index per
// cell, row-major. A *ContradictionError identifies the first cell
// whose candidate mask became empty; it is unrecoverable within this
// call.
func (s *Solver) Solve() ([]uint8, error) {
	// Fully pre-collapsed input: nothing to observe, decode as-is.
	if s.wave.Collapsed() {
		return s.wave.Decode(), nil
	}

	// Pre-constrained cells (collapsed or partial) are fixed points;
	// push their constraints outward before the first observation.
	full := fullMask(s.wave.NumPatterns)
	for i, mask := range s.wave.cells {
		if mask == 0 {
			return nil, &ContradictionError{X: i % s.wave.Width, Y: i / s.wave.Width}
		}
		if mask != full {
			s.enqueue(i)
		}
	}
	if err := s.propagate(); err != nil {
		return nil, err
	}

	for {
		cell := s.lowestEntropyCell()
		if cell < 0 {
			return s.wave.Decode(), nil
		}
		s.collapse(cell)
		s.enqueue(cell)
		if err := s.propagate(); err != nil {
			return nil, err
		}
	}
}

// lowestEntropyCell returns the uncollapsed cell with minimum weighted
// entropy, breaking ties among minimal cells through the seeded RNG so
// no grid position is systematically favored. Returns -1 when every
// cell is collapsed.
func (s *Solver) lowestEntropyCell() int {
	s.ties = s.ties[:0]
	best := math.Inf(1)

	for i, mask := range s.wave.cells {
		if bits.OnesCount8(mask) <= 1 {
			continue
		}
		e := s.entropy(mask)
		switch {
		case e < best:
			best = e
			s.ties = append(s.ties[:0], i)
		case e == best:
			s.ties = append(s.ties, i)
		}
	}

	if len(s.ties) == 0 {
		return -1
	}
	return s.ties[s.rng.Intn(len(s.ties))]
}

// entropy computes the weighted Shannon entropy of a candidate mask:
// log(sum(w)) - sum(w*log(w))/sum(w) over the allowed patterns. Cells
// whose allowed patterns all carry zero weight score 0, the most
// constrained value, so they collapse first (uniformly at random).
func (s *Solver) entropy(mask uint8) float64 {
	var sumW, sumWLogW float64
	for m := mask; m != 0; m &= m - 1 {
		p := bits.TrailingZeros8(m)
		sumW += s.weights[p]
		sumWLogW += s.wLogW[p]
	}
	if sumW <= 0 {
		return 0
	}
	return math.Log(sumW) - sumWLogW/sumW
}

// collapse fixes the cell to a single pattern drawn from the weights
// of its remaining candidates. Once set, the bit never changes again.
func (s *Solver) collapse(cell int) {
	mask := s.wave.cells[cell]

	var sumW float64
	for m := mask; m != 0; m &= m - 1 {
		sumW += s.weights[bits.TrailingZeros8(m)]
	}

	var chosen int
	if sumW > 0 {
		r := s.rng.Float64() * sumW
		for m := mask; m != 0; m &= m - 1 {
			p := bits.TrailingZeros8(m)
			chosen = p
			r -= s.weights[p]
			if r <= 0 {
				break
			}
		}
	} else {
		// Every remaining candidate has zero weight: uniform draw.
		n := s.rng.Intn(bits.OnesCount8(mask))
		m := mask
		for ; n > 0; n-- {
			m &= m - 1
		}
		chosen = bits.TrailingZeros8(m)
	}

	s.wave.cells[cell] = 1 << chosen
}

// propagate drains the work queue, narrowing each queued cell's four
// neighbors through the propagation table. Every change re-enqueues
// the touched neighbor, so its own neighbors get re-checked; masks
// only ever lose bits, which bounds the total work by
// width*height*numPatterns shrink steps.
func (s *Solver) propagate() error {
	width := s.wave.Width
	for len(s.queue) > 0 {
		cell := s.queue[0]
		s.queue = s.queue[1:]
		s.inQueue[cell] = false

		mask := s.wave.cells[cell]
		cx, cy := cell%width, cell/width

		for _, dir := range AllDirections() {
			dx, dy := dir.Delta()
			nx, ny := cx+dx, cy+dy
			if nx < 0 || nx >= width || ny < 0 || ny >= s.wave.Height {
				continue
			}

			neighbor := ny*width + nx
			old := s.wave.cells[neighbor]
			updated := old & s.table[dir][mask]
			if updated == old {
				continue
			}
			if updated == 0 {
				return &ContradictionError{X: nx, Y: ny}
			}
			s.wave.cells[neighbor] = updated
			s.enqueue(neighbor)
		}
	}
	return nil
}

func (s *Solver) enqueue(cell int) {
	if s.inQueue[cell] {
		return
	}
	s.inQueue[cell] = true
	s.queue = append(s.queue, cell)
}

// Solve is the single-call form of the solver: it builds a wave from
// the raw cell masks, validates every input, and runs the collapse.
func Solve(width, height, numPatterns int, table *PropagationTable, weights []float64, initialWave []uint8, seed int64) ([]uint8, error) {
	wave, err := NewWaveFrom(width, height, numPatterns, initialWave)
	if err != nil {
		return nil, err
	}
	solver, err := NewSolver(wave, table, weights, seed)
	if err != nil {
		return nil, err
	}
	return solver.Solve()
}
