package jps

import "github.com/voxelpath/pathd/internal/core/vec"

// Graph owns the jump points of one search.
type Graph struct {
	nodes map[vec.Vec3]*JumpPoint
}

func NewGraph() *Graph {
	return &Graph{nodes: make(map[vec.Vec3]*JumpPoint)}
}

// Get returns the jump point at pos, creating it on first use.
func (g *Graph) Get(pos vec.Vec3) *JumpPoint {
	if n, ok := g.nodes[pos]; ok {
		return n
	}
	n := newJumpPoint(pos)
	g.nodes[pos] = n
	return n
}

// Lookup returns the jump point at pos without creating it.
func (g *Graph) Lookup(pos vec.Vec3) (*JumpPoint, bool) {
	n, ok := g.nodes[pos]
	return n, ok
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

func (g *Graph) Reset() {
	clear(g.nodes)
}
