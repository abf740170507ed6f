package jps

import "github.com/voxelpath/pathd/internal/core/vec"

// Penetrability reports whether a ray may pass through a cell.
type Penetrability interface {
	IsPenetrable(p vec.Vec3) bool
}

// LineOfSight walks a digital line between two cells and fails as soon as the
// line crosses a cell that is not penetrable or squeezes between two blocked
// cells along an axis it never moves on.
type LineOfSight struct {
	Blocks Penetrability
}

// InSight reports whether the segment from p0 to p1 is unobstructed. The walk
// is driven along the axis of largest travel; on a tie the later axis (x, y, z
// order) drives.
func (l LineOfSight) InSight(p0, p1 vec.Vec3) bool {
	pos := [3]int{p0.X, p0.Y, p0.Z}
	target := [3]int{p1.X, p1.Y, p1.Z}

	var delta, step [3]int
	for i := range pos {
		d := target[i] - pos[i]
		step[i] = 1
		if d < 0 {
			step[i] = -1
			d = -d
		}
		delta[i] = d
	}

	drive := 0
	for i := 1; i < 3; i++ {
		if delta[i] >= delta[drive] {
			drive = i
		}
	}
	var others [2]int
	for i, n := 0, 0; i < 3; i++ {
		if i != drive {
			others[n] = i
			n++
		}
	}

	var acc [3]int
	for pos[drive] != target[drive] {
		for _, i := range others {
			acc[i] += delta[i]
		}
		for _, i := range others {
			if acc[i] > delta[drive] {
				if l.blocked(pos, step) {
					return false
				}
				pos[i] += step[i]
				acc[i] -= delta[drive]
			}
			if acc[i] != 0 && l.blocked(pos, step) {
				return false
			}
			if delta[i] == 0 {
				s := step
				s[i] = 1
				below := pos
				below[i]--
				if l.blocked(pos, s) && l.blocked(below, s) {
					return false
				}
			}
		}
		pos[drive] += step[drive]
	}
	return true
}

// blocked tests the cell the line enters from corner c when moving with signs s.
func (l LineOfSight) blocked(c, s [3]int) bool {
	var cell [3]int
	for i := range c {
		cell[i] = c[i]
		if s[i] != 1 {
			cell[i]--
		}
	}
	return !l.Blocks.IsPenetrable(vec.Vec3{X: cell[0], Y: cell[1], Z: cell[2]})
}
