package wfc

import (
	"errors"
	"fmt"
	"math/bits"
)

// MaxPatterns is the hard ceiling on distinct patterns. One bit per
// pattern in an 8-bit cell mask; a validated precondition, never an
// implicit truncation.
const MaxPatterns = 8

var (
	ErrInvalidSize     = errors.New("wfc: invalid grid size")
	ErrInvalidPatterns = errors.New("wfc: pattern count must be between 1 and 8")
	ErrInvalidWave     = errors.New("wfc: wave bit set for pattern outside declared range")
	ErrInvalidWeights  = errors.New("wfc: invalid pattern weights")
	ErrContradiction   = errors.New("wfc: contradiction - no candidate patterns remain")
)

// ContradictionError reports the cell whose candidate mask became
// empty during propagation. It is terminal for the solve call; the
// caller must retry with a different seed or relax the constraints.
type ContradictionError struct {
	X, Y int
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("wfc: contradiction at (%d,%d) - no candidate patterns remain", e.X, e.Y)
}

// Is lets errors.Is match a ContradictionError against ErrContradiction.
func (e *ContradictionError) Is(target error) bool {
	return target == ErrContradiction
}

// Wave holds one candidate bitmask per cell, indexed row-major. Bit i
// set means pattern i is still possible for that cell. A cell with
// exactly one bit set is collapsed; zero bits is a contradiction.
type Wave struct {
	Width, Height int
	NumPatterns   int
	cells         []uint8
}

// NewWave returns a wave with every cell unconstrained (all pattern
// bits set).
func NewWave(width, height, numPatterns int) (*Wave, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if numPatterns < 1 || numPatterns > MaxPatterns {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPatterns, numPatterns)
	}

	full := fullMask(numPatterns)
	cells := make([]uint8, width*height)
	for i := range cells {
		cells[i] = full
	}
	return &Wave{Width: width, Height: height, NumPatterns: numPatterns, cells: cells}, nil
}

// NewWaveFrom validates the supplied cell masks and wraps them in a
// Wave. Cells may be pre-collapsed (single bit) or partially
// constrained; any bit at or above numPatterns is a validation error.
// The masks are copied.
func NewWaveFrom(width, height, numPatterns int, cells []uint8) (*Wave, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if numPatterns < 1 || numPatterns > MaxPatterns {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPatterns, numPatterns)
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("%w: wave has %d cells, want %d", ErrInvalidSize, len(cells), width*height)
	}

	full := fullMask(numPatterns)
	for i, mask := range cells {
		if mask&^full != 0 {
			return nil, fmt.Errorf("%w: mask %#02x at (%d,%d), patterns=%d",
				ErrInvalidWave, mask, i%width, i/width, numPatterns)
		}
	}

	copied := make([]uint8, len(cells))
	copy(copied, cells)
	return &Wave{Width: width, Height: height, NumPatterns: numPatterns, cells: copied}, nil
}

// Mask returns the candidate mask of the cell at index i.
func (w *Wave) Mask(i int) uint8 {
	return w.cells[i]
}

// Collapsed reports whether every cell holds exactly one candidate.
func (w *Wave) Collapsed() bool {
	for _, mask := range w.cells {
		if bits.OnesCount8(mask) != 1 {
			return false
		}
	}
	return true
}

// Decode converts a fully collapsed wave into pattern indices. It must
// only be called once Collapsed reports true.
func (w *Wave) Decode() []uint8 {
	out := make([]uint8, len(w.cells))
	for i, mask := range w.cells {
		out[i] = uint8(bits.TrailingZeros8(mask))
	}
	return out
}

func fullMask(numPatterns int) uint8 {
	return uint8(1<<numPatterns) - 1
}
