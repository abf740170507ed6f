package jps

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelpath/pathd/internal/core/vec"
)

// openSpace lets every unit move through.
type openSpace struct{}

func (openSpace) IsReachable(a, b vec.Vec3) (bool, error)  { return a.Adjacent(b), nil }
func (openSpace) IsWalkable(vec.Vec3) (bool, error)        { return true, nil }
func (openSpace) InSight(vec.Vec3, vec.Vec3) (bool, error) { return false, nil }

// countingOracle wraps another oracle and counts reachability queries.
type countingOracle struct {
	Oracle
	calls int
	err   error
}

func (c *countingOracle) IsReachable(a, b vec.Vec3) (bool, error) {
	c.calls++
	if c.err != nil {
		return false, c.err
	}
	return c.Oracle.IsReachable(a, b)
}

func TestNoForcedNeighboursInOpenSpace(t *testing.T) {
	s := NewSearcher(nil)
	s.reset(context.Background(), NewConfig(vec.Zero, vec.New(9, 9, 9), openSpace{}))

	for _, d := range Directions() {
		parent := d.Vector().Neg()
		assert.Empty(t, s.forcedNeighbours(parent, vec.Zero), d.String())
	}
}

func TestForcedNeighbourBehindWall(t *testing.T) {
	// Moving east past the end of a wall on the south side: the cell diagonal
	// behind the wall is only reachable through the current cell.
	wall := map[vec.Vec3]bool{
		vec.New(-1, 0, -1): true,
	}
	o := blockedOracle{blocked: wall}
	s := NewSearcher(nil)
	s.reset(context.Background(), NewConfig(vec.Zero, vec.New(9, 0, 0), o))

	forced := s.forcedNeighbours(vec.New(-1, 0, 0), vec.Zero)
	assert.Contains(t, forced, vec.New(0, 0, -1))
	assert.NotContains(t, forced, vec.New(1, 0, 0))
}

// blockedOracle flies through every cell except the blocked ones.
type blockedOracle struct {
	blocked map[vec.Vec3]bool
}

func (o blockedOracle) IsReachable(a, b vec.Vec3) (bool, error) {
	if !a.Adjacent(b) {
		return false, nil
	}
	return vec.Box(a, b, func(p vec.Vec3) bool { return !o.blocked[p] }), nil
}

func (o blockedOracle) IsWalkable(p vec.Vec3) (bool, error)    { return !o.blocked[p], nil }
func (blockedOracle) InSight(vec.Vec3, vec.Vec3) (bool, error) { return false, nil }

func TestReachabilityCache(t *testing.T) {
	o := &countingOracle{Oracle: openSpace{}}
	c := NewReachabilityCache(o, 0, nil)

	a, b := vec.Zero, vec.New(1, 1, 0)
	assert.True(t, c.IsReachable(a, b))
	assert.True(t, c.IsReachable(a, b))
	assert.Equal(t, 1, o.calls)
	assert.Equal(t, 1, c.Queries())

	assert.True(t, c.IsReachable(b, a), "ordered pairs are distinct keys")
	assert.Equal(t, 2, o.calls)

	assert.False(t, c.IsReachable(a, vec.New(2, 0, 0)))
	assert.False(t, c.IsReachable(a, a))
	assert.Equal(t, 2, o.calls, "non-neighbours never reach the oracle")

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Queries())
}

func TestReachabilityCacheEvicts(t *testing.T) {
	o := &countingOracle{Oracle: openSpace{}}
	c := NewReachabilityCache(o, 1, nil)

	a, b, d := vec.Zero, vec.New(1, 0, 0), vec.New(0, 1, 0)
	c.IsReachable(a, b)
	c.IsReachable(a, d)
	c.IsReachable(a, b)
	assert.Equal(t, 3, o.calls)
	assert.Equal(t, 1, c.Len())
}

func TestReachabilityCacheFault(t *testing.T) {
	o := &countingOracle{Oracle: openSpace{}, err: errors.New("chunk not loaded")}
	c := NewReachabilityCache(o, 10, nil)

	assert.False(t, c.IsReachable(vec.Zero, vec.New(0, 0, 1)))
	assert.False(t, c.IsReachable(vec.Zero, vec.New(0, 0, 1)))
	assert.Equal(t, 1, c.Faults())
	assert.Equal(t, 1, o.calls)
}

func TestRecordSuccessor(t *testing.T) {
	g := NewGraph()
	root := g.Get(vec.Zero)
	root.root = true
	far := g.Get(vec.New(0, 0, 4))
	mid := g.Get(vec.New(0, 0, 1))
	mid.Cost = 1

	assert.True(t, root.recordSuccessor(North, far))
	assert.Same(t, root, far.Parent)
	assert.Equal(t, North, far.ParentDir)
	assert.InDelta(t, 4, far.Cost, 1e-9)
	assert.Equal(t, Resolved, root.Successor(North).State)

	// Same cost is not an improvement.
	mid.Cost = 1
	mid.Parent = root
	assert.False(t, mid.recordSuccessor(North, far))
	assert.Same(t, root, far.Parent)

	mid.Cost = 0.5
	assert.True(t, mid.recordSuccessor(North, far))
	assert.Same(t, mid, far.Parent)
	assert.InDelta(t, 3.5, far.Cost, 1e-9)

	assert.False(t, far.recordSuccessor(South, root), "root never gets a parent")
	assert.Nil(t, root.Parent)

	assert.False(t, root.recordSuccessor(Up, nil))
	assert.Equal(t, Failed, root.Successor(Up).State)
	assert.Equal(t, Unattempted, root.Successor(Down).State)

	assert.Equal(t, []vec.Vec3{vec.Zero, vec.New(0, 0, 1), vec.New(0, 0, 4)}, far.path())
}

func TestIdentifySuccessorsSkipsStartAndCheaperNeighbours(t *testing.T) {
	s := NewSearcher(nil)
	s.reset(context.Background(), NewConfig(vec.Zero, vec.New(9, 9, 9), openSpace{}, WithMaxDepth(1)))

	cur := s.graph.Get(vec.New(0, 0, 1))
	cur.Parent, cur.ParentDir, cur.HasDir, cur.Cost = s.start, North, true, 1

	cheaper := s.graph.Get(cur.Pos.Add(East.Vector()))
	cheaper.Parent, cheaper.Cost = s.start, 0.5

	succ := s.identifySuccessors(cur)
	assert.Empty(t, succ, "one step jumps end at the depth limit")

	assert.Equal(t, Unattempted, cur.Successor(South).State, "start is never jumped to")
	assert.Equal(t, Unattempted, cur.Successor(East).State, "neighbour already has a cheaper route")
	assert.Equal(t, Failed, cur.Successor(West).State)
	assert.Same(t, s.start, cheaper.Parent)

	_, ok := s.graph.Lookup(cur.Pos.Add(West.Vector()))
	assert.False(t, ok, "failed jumps leave no node behind")
}

func TestOpenListOrdering(t *testing.T) {
	var l openList
	l.reset(OrderHeuristic)

	a := &JumpPoint{Pos: vec.New(1, 0, 0), Heuristic: 2}
	b := &JumpPoint{Pos: vec.New(2, 0, 0), Heuristic: 1, Cost: 10}
	c := &JumpPoint{Pos: vec.New(3, 0, 0), Heuristic: 2}
	l.push(a)
	l.push(b)
	l.push(c)

	assert.Same(t, b, l.pop())
	assert.Same(t, c, l.pop(), "ties pop the latest push")
	assert.Same(t, a, l.pop())
	assert.Equal(t, 0, l.len())

	l.reset(OrderCostPlusHeuristic)
	l.push(a)
	l.push(b)
	assert.Same(t, a, l.pop())
}

func TestCompositeOracle(t *testing.T) {
	fault := errors.New("boom")
	failing := &countingOracle{Oracle: openSpace{}, err: fault}
	wall := blockedOracle{blocked: map[vec.Vec3]bool{vec.New(1, 0, 0): true}}

	c := Composite{failing, wall}
	ok, err := c.IsReachable(vec.Zero, vec.New(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsReachable(vec.Zero, vec.New(1, 0, 0))
	assert.ErrorIs(t, err, fault)
	assert.False(t, ok)

	ok, err = Composite{wall}.IsWalkable(vec.New(1, 0, 0))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.IsWalkable(vec.New(1, 0, 0))
	require.NoError(t, err)
	assert.True(t, ok, "the first oracle accepts")

	ok, err = Composite{openSpace{}}.InSight(vec.Zero, vec.New(1, 0, 0))
	require.NoError(t, err)
	assert.False(t, ok)
}
