// Package pathfind implements deterministic A* shortest-path search
// over a weighted, 8-directionally connected cost grid.
package pathfind

import (
	"container/heap"
	"fmt"

	"github.com/lawnchairsociety/gridkit/internal/grid"
)

// Cell membership states during a search.
const (
	stateUnseen uint8 = iota
	stateOpen
	stateClosed
)

// neighborOffsets is the fixed enumeration order for the 8 moves.
// Cardinals first in the canonical North, East, South, West order,
// then the diagonals. Expansion determinism depends on this order
// staying fixed.
var neighborOffsets = [8]grid.Point{
	{X: 0, Y: -1},  // north
	{X: 1, Y: 0},   // east
	{X: 0, Y: 1},   // south
	{X: -1, Y: 0},  // west
	{X: 1, Y: -1},  // northeast
	{X: 1, Y: 1},   // southeast
	{X: -1, Y: 1},  // southwest
	{X: -1, Y: -1}, // northwest
}

// FindPath runs A* from start to goal over the cost grid and returns
// the path as the ordered cells from the tile after start through goal
// inclusive. It returns an empty path when no path exists, when start
// equals goal, or when either endpoint is impassable. Out-of-bounds
// endpoints and a nil grid are validation errors; an unreachable goal
// is not.
func FindPath(costs *grid.CostGrid, start, goal grid.Point) ([]grid.Point, error) {
	if costs == nil {
		return nil, fmt.Errorf("%w: nil cost grid", grid.ErrInvalidGrid)
	}
	if err := costs.CheckBounds(start); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	if err := costs.CheckBounds(goal); err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}

	if start == goal || !costs.Walkable(start) || !costs.Walkable(goal) {
		return nil, nil
	}

	width := costs.Width
	cellCount := width * costs.Height

	// Per-cell search state, indexed y*width+x.
	states := make([]uint8, cellCount)
	nodes := make([]*searchNode, cellCount)

	open := make(openQueue, 0, 64)
	heap.Init(&open)

	var seq uint64
	startIdx := start.Y*width + start.X
	goalIdx := goal.Y*width + goal.X

	startNode := &searchNode{
		pos:    startIdx,
		g:      0,
		f:      heuristic(start, goal),
		seq:    seq,
		parent: -1,
	}
	nodes[startIdx] = startNode
	states[startIdx] = stateOpen
	heap.Push(&open, startNode)

	for open.Len() > 0 {
		current := heap.Pop(&open).(*searchNode)
		states[current.pos] = stateClosed

		if current.pos == goalIdx {
			return reconstruct(nodes, width, startIdx, goalIdx), nil
		}

		cx, cy := current.pos%width, current.pos/width
		for _, off := range neighborOffsets {
			next := grid.Point{X: cx + off.X, Y: cy + off.Y}
			if !costs.Contains(next) || !costs.Walkable(next) {
				continue
			}

			nextIdx := next.Y*width + next.X
			if states[nextIdx] == stateClosed {
				continue
			}

			// Step cost comes from the destination cell; diagonal
			// moves carry no extra discount or penalty.
			tentative := current.g + costs.Cost(next)

			if states[nextIdx] == stateUnseen {
				seq++
				node := &searchNode{
					pos:    nextIdx,
					g:      tentative,
					f:      tentative + heuristic(next, goal),
					seq:    seq,
					parent: current.pos,
				}
				nodes[nextIdx] = node
				states[nextIdx] = stateOpen
				heap.Push(&open, node)
				continue
			}

			// Already open: re-key only on a strictly better g.
			node := nodes[nextIdx]
			if tentative < node.g {
				seq++
				node.g = tentative
				node.f = tentative + heuristic(next, goal)
				node.seq = seq
				node.parent = current.pos
				heap.Fix(&open, node.index)
			}
		}
	}

	// Open set exhausted: the goal is unreachable. A normal outcome.
	return nil, nil
}

// heuristic is the Chebyshev (diagonal) distance. With undiscounted
// diagonal moves and a minimum step cost of 1 it never overestimates,
// so returned paths are optimal.
func heuristic(a, b grid.Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// reconstruct walks parent links from goal back to start and reverses
// the result. The start cell itself is excluded.
func reconstruct(nodes []*searchNode, width, startIdx, goalIdx int) []grid.Point {
	var path []grid.Point
	for idx := goalIdx; idx != startIdx; idx = nodes[idx].parent {
		path = append(path, grid.Point{X: idx % width, Y: idx / width})
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
