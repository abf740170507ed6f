package voxel

import (
	"sync"

	"github.com/voxelpath/pathd/internal/core/vec"
)

// Grid is a sparse block store. Cells never set read as Ground. Reads may run
// concurrently with each other; writes must not overlap running searches.
type Grid struct {
	mu     sync.RWMutex
	blocks map[vec.Vec3]Block
}

func NewGrid() *Grid {
	return &Grid{blocks: make(map[vec.Vec3]Block)}
}

func (g *Grid) Set(p vec.Vec3, b Block) {
	g.mu.Lock()
	g.blocks[p] = b
	g.mu.Unlock()
}

// Fill sets every cell of the inclusive box spanned by a and b.
func (g *Grid) Fill(a, b vec.Vec3, blk Block) {
	g.mu.Lock()
	defer g.mu.Unlock()
	vec.Box(a, b, func(p vec.Vec3) bool {
		g.blocks[p] = blk
		return true
	})
}

func (g *Grid) BlockAt(p vec.Vec3) Block {
	g.mu.RLock()
	b, ok := g.blocks[p]
	g.mu.RUnlock()
	if !ok {
		return Ground
	}
	return b
}

func (g *Grid) IsPenetrable(p vec.Vec3) bool {
	return g.BlockAt(p).Penetrable
}

func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.blocks)
}

// Bounds returns the box enclosing every explicitly set cell.
func (g *Grid) Bounds() (lo, hi vec.Vec3, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for p := range g.blocks {
		if !ok {
			lo, hi, ok = p, p, true
			continue
		}
		lo, hi = vec.Min(lo, p), vec.Max(hi, p)
	}
	return lo, hi, ok
}

// Each calls fn for every explicitly set cell in unspecified order.
func (g *Grid) Each(fn func(vec.Vec3, Block)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for p, b := range g.blocks {
		fn(p, b)
	}
}
