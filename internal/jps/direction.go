package jps

import (
	"slices"
	"sort"
	"sync"

	"github.com/voxelpath/pathd/internal/core/vec"
)

// Direction is one of the 26 unit moves of the 3D Moore neighbourhood.
type Direction uint8

// Declaration order is the expansion order of a search and must not change.
const (
	North Direction = iota
	South
	East
	West
	UpNorth
	UpSouth
	UpEast
	UpWest
	DownNorth
	DownSouth
	DownEast
	DownWest
	NorthWest
	NorthEast
	SouthEast
	SouthWest
	UpNorthWest
	UpNorthEast
	UpSouthEast
	UpSouthWest
	DownNorthWest
	DownNorthEast
	DownSouthEast
	DownSouthWest
	Up
	Down

	DirectionCount = 26
)

var directionNames = [DirectionCount]string{
	"NORTH", "SOUTH", "EAST", "WEST",
	"UP_NORTH", "UP_SOUTH", "UP_EAST", "UP_WEST",
	"DOWN_NORTH", "DOWN_SOUTH", "DOWN_EAST", "DOWN_WEST",
	"NORTH_WEST", "NORTH_EAST", "SOUTH_EAST", "SOUTH_WEST",
	"UP_NORTH_WEST", "UP_NORTH_EAST", "UP_SOUTH_EAST", "UP_SOUTH_WEST",
	"DOWN_NORTH_WEST", "DOWN_NORTH_EAST", "DOWN_SOUTH_EAST", "DOWN_SOUTH_WEST",
	"UP", "DOWN",
}

// East is +X, Up is +Y, North is +Z.
var directionVectors = [DirectionCount]vec.Vec3{
	{0, 0, 1}, {0, 0, -1}, {1, 0, 0}, {-1, 0, 0},
	{0, 1, 1}, {0, 1, -1}, {1, 1, 0}, {-1, 1, 0},
	{0, -1, 1}, {0, -1, -1}, {1, -1, 0}, {-1, -1, 0},
	{-1, 0, 1}, {1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, -1, -1}, {-1, -1, -1},
	{0, 1, 0}, {0, -1, 0},
}

// geometry is everything the search derives from a direction. Built once per
// process and never written afterwards, so searches share it without locking.
type geometry struct {
	components      []vec.Vec3
	componentDirs   []Direction
	keyNodes        []vec.Vec3
	potentialForced []vec.Vec3
	// forcedCandidates is every neighbour of the current cell except the parent
	// and the natural neighbours, in declaration order. It is
	// potentialForced without the natural neighbours, plus the key nodes and
	// the other cells adjacent to the parent, which become forced when the
	// oracle forbids cutting the corner around cur. forcedNeighbours tests
	// these; potentialForced only backs PotentialForcedNeighbors.
	forcedCandidates []vec.Vec3
}

var (
	geometryOnce  sync.Once
	geometryTable [DirectionCount]geometry
	vectorToDir   map[vec.Vec3]Direction
)

func geom(d Direction) *geometry {
	geometryOnce.Do(bakeGeometry)
	return &geometryTable[d]
}

func bakeGeometry() {
	vectorToDir = make(map[vec.Vec3]Direction, DirectionCount)
	for i, v := range directionVectors {
		vectorToDir[v] = Direction(i)
	}
	for i := range geometryTable {
		d := Direction(i)
		g := &geometryTable[i]
		g.components = componentPermutations(d.Vector())
		for _, c := range g.components {
			g.componentDirs = append(g.componentDirs, vectorToDir[c])
		}

		parentDelta := d.Vector().Neg()
		adjacent := vectorsAdjacentTo(parentDelta)
		for _, v := range adjacent {
			if v != parentDelta {
				g.keyNodes = append(g.keyNodes, v)
			}
		}
		for _, v := range directionVectors {
			if !slices.Contains(adjacent, v) {
				g.potentialForced = append(g.potentialForced, v)
			}
			if v != parentDelta && !slices.Contains(g.components, v) {
				g.forcedCandidates = append(g.forcedCandidates, v)
			}
		}
	}
}

// componentPermutations zeroes every subset of the non-zero axes of v and keeps
// the distinct non-zero results, shortest (Manhattan) first.
func componentPermutations(v vec.Vec3) []vec.Vec3 {
	masks := [...]vec.Vec3{
		{1, 0, 0}, {0, 1, 0}, {1, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	}
	out := make([]vec.Vec3, 0, len(masks))
	for _, m := range masks {
		c := vec.Vec3{X: v.X * m.X, Y: v.Y * m.Y, Z: v.Z * m.Z}
		if c == vec.Zero || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Manhattan() < out[j].Manhattan()
	})
	return out
}

// vectorsAdjacentTo returns the direction vectors within one step of p.
func vectorsAdjacentTo(p vec.Vec3) []vec.Vec3 {
	var out []vec.Vec3
	for _, v := range directionVectors {
		if p.Sub(v).Chebyshev() <= 1 {
			out = append(out, v)
		}
	}
	return out
}

// Directions returns all 26 directions in declaration order.
func Directions() []Direction {
	out := make([]Direction, DirectionCount)
	for i := range out {
		out[i] = Direction(i)
	}
	return out
}

// DirectionOf maps a unit offset back to its direction.
func DirectionOf(v vec.Vec3) (Direction, bool) {
	geometryOnce.Do(bakeGeometry)
	d, ok := vectorToDir[v]
	return d, ok
}

func (d Direction) Vector() vec.Vec3 {
	return directionVectors[d]
}

func (d Direction) String() string {
	if int(d) >= DirectionCount {
		return "INVALID"
	}
	return directionNames[d]
}

// ComponentPermutations returns the straight and diagonal sub-moves of d,
// ordered by ascending Manhattan length. d itself is always last.
func (d Direction) ComponentPermutations() []vec.Vec3 {
	return slices.Clone(geom(d).components)
}

// KeyNodes returns the offsets (relative to the cell entered by d) that are
// adjacent to the cell d came from, excluding that cell.
func (d Direction) KeyNodes() []vec.Vec3 {
	return slices.Clone(geom(d).keyNodes)
}

// PotentialForcedNeighbors returns the offsets not adjacent to the cell d came from.
func (d Direction) PotentialForcedNeighbors() []vec.Vec3 {
	return slices.Clone(geom(d).potentialForced)
}
