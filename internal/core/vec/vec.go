// Package vec holds the integer grid coordinate shared by the world, the movement
// oracles and the search.
package vec

import (
	"fmt"
	"math"
)

// Vec3 is a voxel coordinate. X is east/west, Y is up/down, Z is north/south.
type Vec3 struct {
	X, Y, Z int
}

var Zero = Vec3{}

func New(x, y, z int) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Down returns the cell directly below v.
func (v Vec3) Down() Vec3 {
	return Vec3{v.X, v.Y - 1, v.Z}
}

func (v Vec3) LengthSq() int {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vec3) Length() float64 {
	return math.Sqrt(float64(v.LengthSq()))
}

func (v Vec3) DistSq(o Vec3) int {
	return v.Sub(o).LengthSq()
}

// Dist is the Euclidean distance between two cells.
func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Length()
}

func (v Vec3) Manhattan() int {
	return abs(v.X) + abs(v.Y) + abs(v.Z)
}

// Chebyshev is the largest absolute component; 1 for any of the 26 neighbours.
func (v Vec3) Chebyshev() int {
	return max(abs(v.X), abs(v.Y), abs(v.Z))
}

// Adjacent reports whether o is one of the 26 neighbours of v.
func (v Vec3) Adjacent(o Vec3) bool {
	return v.Sub(o).Chebyshev() == 1
}

// Min and Max return the component-wise bounds of two cells.
func Min(a, b Vec3) Vec3 {
	return Vec3{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)}
}

func Max(a, b Vec3) Vec3 {
	return Vec3{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)}
}

// Box calls fn for every cell of the inclusive box spanned by a and b, stopping
// early when fn returns false. Box reports whether the walk completed.
func Box(a, b Vec3, fn func(Vec3) bool) bool {
	lo, hi := Min(a, b), Max(a, b)
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				if !fn(Vec3{x, y, z}) {
					return false
				}
			}
		}
	}
	return true
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
