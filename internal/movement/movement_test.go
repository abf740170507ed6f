package movement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelpath/pathd/internal/core/vec"
	"github.com/voxelpath/pathd/internal/jps"
	"github.com/voxelpath/pathd/internal/voxel"
)

func grid(t *testing.T, rows ...string) *voxel.Grid {
	t.Helper()
	g, err := voxel.ParseLayers(vec.Zero, rows)
	require.NoError(t, err)
	return g
}

func reachable(t *testing.T, o jps.Oracle, a, b vec.Vec3) bool {
	t.Helper()
	ok, err := o.IsReachable(a, b)
	require.NoError(t, err)
	return ok
}

func walkable(t *testing.T, o jps.Oracle, p vec.Vec3) bool {
	t.Helper()
	ok, err := o.IsWalkable(p)
	require.NoError(t, err)
	return ok
}

func TestFootprint(t *testing.T) {
	assert.Equal(t, []vec.Vec3{vec.Zero}, Footprint{}.Occupied())
	assert.Equal(t, []vec.Vec3{vec.New(0, -1, 0)}, Footprint{}.Supporting())

	f := Footprint{Horizontal: 0.5, Vertical: 1}
	assert.Len(t, f.Occupied(), 18)
	assert.Len(t, f.Supporting(), 9)
}

func TestWalkingFlatFloor(t *testing.T) {
	g := grid(t, "XXX", "XXX", "XXX")
	w := NewWalking(g, Footprint{})

	assert.True(t, walkable(t, w, vec.New(1, 0, 1)))
	assert.False(t, walkable(t, w, vec.New(1, 1, 1)), "solid")
	assert.True(t, reachable(t, w, vec.New(0, 0, 0), vec.New(1, 0, 1)))
	assert.False(t, reachable(t, w, vec.New(0, 0, 0), vec.New(2, 0, 0)), "not adjacent")
	assert.False(t, reachable(t, w, vec.New(0, 0, 0), vec.New(0, 0, -1)), "into the ground")
}

func TestWalkingNoCornerCutting(t *testing.T) {
	g := grid(t, "X X", "XXX")
	w := NewWalking(g, Footprint{})

	assert.False(t, reachable(t, w, vec.New(0, 0, 0), vec.New(1, 0, 1)))
	assert.True(t, reachable(t, w, vec.New(0, 0, 0), vec.New(0, 0, 1)))
}

func TestWalkingStepUp(t *testing.T) {
	// (1,0,0) is a one block ledge with air above it.
	g := grid(t, "X |XX")
	from, to := vec.New(0, 0, 0), vec.New(1, 1, 0)

	assert.True(t, reachable(t, NewWalking(g, Footprint{}), from, to))
	assert.True(t, reachable(t, NewWalking(g, Footprint{}), to, from))
	assert.False(t, reachable(t, NewLeaping(g, Footprint{}), from, to))
}

func TestWalkingWideFootprint(t *testing.T) {
	g := grid(t, "XXXX", "XXXX", "XXXX")
	g.Set(vec.New(3, 0, 2), voxel.Ground)
	w := NewWalking(g, Footprint{Horizontal: 1})

	assert.True(t, walkable(t, w, vec.New(1, 0, 1)))
	assert.False(t, walkable(t, w, vec.New(2, 0, 1)), "pillar inside the footprint")
	assert.False(t, reachable(t, w, vec.New(1, 0, 1), vec.New(2, 0, 1)))
}

func TestFlying(t *testing.T) {
	g := grid(t, "XXX|XXX", "XXX| XX")
	f := NewFlying(g, Footprint{})

	assert.True(t, walkable(t, f, vec.New(1, 1, 0)))
	assert.True(t, reachable(t, f, vec.New(1, 1, 0), vec.New(2, 0, 1)))
	assert.False(t, reachable(t, f, vec.New(1, 0, 0), vec.New(0, 1, 1)), "box holds (0,1,1)")
	assert.False(t, walkable(t, f, vec.New(0, 1, 1)))
}

func TestSwimming(t *testing.T) {
	g := grid(t, "~~X", "~~X")
	s := NewSwimming(g, Footprint{})

	assert.True(t, walkable(t, s, vec.New(0, 0, 0)))
	assert.False(t, walkable(t, s, vec.New(2, 0, 0)))
	assert.True(t, reachable(t, s, vec.New(0, 0, 0), vec.New(1, 0, 1)))
	assert.False(t, reachable(t, s, vec.New(1, 0, 0), vec.New(2, 0, 0)))
}

func TestFree(t *testing.T) {
	var f Free
	assert.True(t, reachable(t, f, vec.New(0, 0, 0), vec.New(1, 1, 1)))
	assert.False(t, reachable(t, f, vec.New(0, 0, 0), vec.New(2, 0, 0)))
	assert.True(t, walkable(t, f, vec.New(5, -5, 5)))
	ok, err := f.InSight(vec.Zero, vec.New(10, 10, 10))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInSightUsesWorld(t *testing.T) {
	g := grid(t, "XXX", "X X", "XXX")
	w := NewWalking(g, Footprint{})

	ok, err := w.InSight(vec.New(0, 0, 0), vec.New(2, 0, 2))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = w.InSight(vec.New(0, 0, 0), vec.New(2, 0, 0))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewAndCompose(t *testing.T) {
	g := grid(t, "~XX")

	for _, m := range Modes {
		o, err := New(m, g, Footprint{})
		require.NoError(t, err, m)
		assert.NotNil(t, o)
	}
	_, err := New("teleport", g, Footprint{})
	assert.Error(t, err)

	o, err := Compose([]string{"Walking"}, g, Footprint{})
	require.NoError(t, err)
	assert.IsType(t, &Walking{}, o)

	o, err = Compose([]string{"walking", "swimming"}, g, Footprint{})
	require.NoError(t, err)
	require.IsType(t, jps.Composite{}, o)
	assert.True(t, walkable(t, o, vec.New(0, 0, 0)), "water")
	assert.True(t, walkable(t, o, vec.New(1, 0, 0)), "floor")
	assert.True(t, reachable(t, o, vec.New(1, 0, 0), vec.New(0, 0, 0)))
	assert.False(t, reachable(t, o, vec.New(1, 0, 0), vec.New(1, 1, 0)))

	_, err = Compose(nil, g, Footprint{})
	assert.Error(t, err)
}
