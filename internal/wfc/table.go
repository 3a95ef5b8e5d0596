package wfc

import (
	"fmt"
	"math/bits"
)

// PropagationTable maps a direction and an 8-bit source mask to the
// mask of patterns still permitted in the neighboring cell. It is
// built once from adjacency rules and immutable during solving.
// Direction indexes follow the canonical North, East, South, West
// ordering of the Direction constants.
type PropagationTable [4][256]uint8

// AdjacencyRules lists, per pattern index, the pattern indices allowed
// in any of the four cardinal directions next to it. Rules are treated
// as symmetric: if 0 allows 1, a table built from them also lets 1 sit
// next to 0.
type AdjacencyRules map[int][]int

// NewPropagationTable expands adjacency rules into the full
// direction-by-source-mask lookup table. A source mask's entry is the
// union of the allowed-neighbor masks of its set bits, so propagation
// through the table can only ever narrow a neighbor's candidates.
func NewPropagationTable(numPatterns int, rules AdjacencyRules) (*PropagationTable, error) {
	if numPatterns < 1 || numPatterns > MaxPatterns {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPatterns, numPatterns)
	}

	// Per-pattern allowed-neighbor masks, symmetric closure applied.
	var allowed [MaxPatterns]uint8
	for pattern, neighbors := range rules {
		if pattern < 0 || pattern >= numPatterns {
			return nil, fmt.Errorf("%w: adjacency rule for pattern %d, patterns=%d",
				ErrInvalidPatterns, pattern, numPatterns)
		}
		for _, n := range neighbors {
			if n < 0 || n >= numPatterns {
				return nil, fmt.Errorf("%w: pattern %d allows neighbor %d, patterns=%d",
					ErrInvalidPatterns, pattern, n, numPatterns)
			}
			allowed[pattern] |= 1 << n
			allowed[n] |= 1 << pattern
		}
	}

	table := &PropagationTable{}
	full := fullMask(numPatterns)
	for mask := 0; mask < 256; mask++ {
		var union uint8
		if uint8(mask)&^full == 0 {
			m := uint8(mask)
			for m != 0 {
				p := bits.TrailingZeros8(m)
				union |= allowed[p]
				m &= m - 1
			}
		}
		for _, dir := range AllDirections() {
			table[dir][mask] = union
		}
	}
	return table, nil
}
