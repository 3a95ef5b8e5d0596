package pathfind

// searchNode is an open-set entry for a single cell.
type searchNode struct {
	pos    int // cell index (y*width + x)
	g      int // accumulated cost from start
	f      int // g + heuristic
	seq    uint64
	parent int // cell index of the predecessor, -1 for start
	index  int // heap index, maintained by the queue
}

// openQueue is a min-heap over f. Ties are broken by insertion
// sequence so that expansion order is stable for symmetric costs.
type openQueue []*searchNode

func (q openQueue) Len() int { return len(q) }

func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *openQueue) Push(x any) {
	node := x.(*searchNode)
	node.index = len(*q)
	*q = append(*q, node)
}

func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return node
}
