// Package voxel stores the block world the movement oracles query.
package voxel

// Block is a voxel type. Only the physical properties the pathfinder needs are
// kept.
type Block struct {
	Name       string
	Penetrable bool
	Liquid     bool
}

var (
	Air    = Block{Name: "air", Penetrable: true}
	Ground = Block{Name: "ground"}
	Water  = Block{Name: "water", Penetrable: true, Liquid: true}
)

// palette is the on-disk block id table; ids are stable across versions.
var palette = []Block{Ground, Air, Water}

func blockID(b Block) (uint8, bool) {
	for i, p := range palette {
		if p == b {
			return uint8(i), true
		}
	}
	return 0, false
}

// BlockByName returns the built-in block called name.
func BlockByName(name string) (Block, bool) {
	for _, p := range palette {
		if p.Name == name {
			return p, true
		}
	}
	return Block{}, false
}
