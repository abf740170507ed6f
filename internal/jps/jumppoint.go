package jps

import "github.com/voxelpath/pathd/internal/core/vec"

// SuccessorState records what a jump in one direction from a node produced.
type SuccessorState uint8

const (
	Unattempted SuccessorState = iota
	Failed
	Resolved
)

// Successor is the outcome of jumping from a node in one direction.
type Successor struct {
	State SuccessorState
	Node  *JumpPoint
}

// JumpPoint is a node of the search graph. Identity is the position; the graph
// hands out exactly one JumpPoint per visited cell.
type JumpPoint struct {
	Pos       vec.Vec3
	Parent    *JumpPoint
	ParentDir Direction
	HasDir    bool
	Cost      float64
	Heuristic float64

	successors [DirectionCount]Successor
	root       bool
}

func newJumpPoint(pos vec.Vec3) *JumpPoint {
	return &JumpPoint{Pos: pos}
}

// Successor returns the recorded jump outcome for d.
func (jp *JumpPoint) Successor(d Direction) Successor {
	return jp.successors[d]
}

// recordSuccessor stores the result of jumping from jp in direction d and
// relinks the target when jp offers it a strictly cheaper route. It reports
// whether the target's cost improved. The root never receives a parent.
func (jp *JumpPoint) recordSuccessor(d Direction, target *JumpPoint) bool {
	if target == nil {
		jp.successors[d] = Successor{State: Failed}
		return false
	}
	jp.successors[d] = Successor{State: Resolved, Node: target}
	if target.root {
		return false
	}
	cost := jp.Cost + jp.Pos.Dist(target.Pos)
	if target.Parent != nil && target.Cost <= cost {
		return false
	}
	target.Parent = jp
	target.ParentDir = d
	target.HasDir = true
	target.Cost = cost
	return true
}

// path walks parent links back to the root.
func (jp *JumpPoint) path() []vec.Vec3 {
	var out []vec.Vec3
	for n := jp; n != nil; n = n.Parent {
		out = append(out, n.Pos)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
