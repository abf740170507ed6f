package jps

import "container/heap"

type openItem struct {
	node *JumpPoint
	key  float64
	seq  uint64
}

// openQueue is a min-heap on key; among equal keys the latest push wins.
type openQueue []openItem

func (q openQueue) Len() int { return len(q) }
func (q openQueue) Less(i, j int) bool {
	if q[i].key != q[j].key {
		return q[i].key < q[j].key
	}
	return q[i].seq > q[j].seq
}
func (q openQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *openQueue) Push(x any) {
	*q = append(*q, x.(openItem))
}

func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// openList orders jump points awaiting expansion. A node may be queued more
// than once when a later jump lowers its cost.
type openList struct {
	queue    openQueue
	ordering Ordering
	seq      uint64
}

func (l *openList) push(n *JumpPoint) {
	key := n.Heuristic
	if l.ordering == OrderCostPlusHeuristic {
		key += n.Cost
	}
	l.seq++
	heap.Push(&l.queue, openItem{node: n, key: key, seq: l.seq})
}

func (l *openList) pop() *JumpPoint {
	return heap.Pop(&l.queue).(openItem).node
}

func (l *openList) len() int { return len(l.queue) }

func (l *openList) reset(o Ordering) {
	l.queue = l.queue[:0]
	l.ordering = o
	l.seq = 0
}
