// Package movement implements jps.Oracle for the built-in ways an agent moves
// through a voxel world.
package movement

import (
	"fmt"
	"math"
	"strings"

	"github.com/voxelpath/pathd/internal/core/vec"
	"github.com/voxelpath/pathd/internal/jps"
	"github.com/voxelpath/pathd/internal/voxel"
)

// World is the block lookup the oracles need.
type World interface {
	BlockAt(p vec.Vec3) voxel.Block
}

// Footprint pads the agent beyond its own cell. Horizontal padding widens it on
// X and Z in both directions; vertical padding extends it upwards.
type Footprint struct {
	Horizontal float64
	Vertical   float64
}

// Occupied lists the cell offsets covered by an agent standing at the origin.
func (f Footprint) Occupied() []vec.Vec3 {
	h := int(math.Ceil(f.Horizontal))
	v := int(math.Ceil(f.Vertical))
	var out []vec.Vec3
	vec.Box(vec.New(-h, 0, -h), vec.New(h, v, h), func(p vec.Vec3) bool {
		out = append(out, p)
		return true
	})
	return out
}

// Supporting lists the offsets directly under the occupied region's floor.
func (f Footprint) Supporting() []vec.Vec3 {
	h := int(math.Ceil(f.Horizontal))
	var out []vec.Vec3
	vec.Box(vec.New(-h, -1, -h), vec.New(h, -1, h), func(p vec.Vec3) bool {
		out = append(out, p)
		return true
	})
	return out
}

// base carries the state every oracle shares.
type base struct {
	world      World
	occupied   []vec.Vec3
	supporting []vec.Vec3
}

func newBase(w World, f Footprint) base {
	return base{world: w, occupied: f.Occupied(), supporting: f.Supporting()}
}

func (b base) IsPenetrable(p vec.Vec3) bool {
	return b.world.BlockAt(p).Penetrable
}

func (b base) InSight(from, to vec.Vec3) (bool, error) {
	return jps.LineOfSight{Blocks: b}.InSight(from, to), nil
}

// swept reports whether ok holds for every cell the footprint passes through
// when moving from a to b, skipping cells for which skip returns true.
func (b base) swept(from, to vec.Vec3, ok, skip func(vec.Vec3) bool) bool {
	for _, o := range b.occupied {
		pass := vec.Box(from.Add(o), to.Add(o), func(p vec.Vec3) bool {
			return (skip != nil && skip(p)) || ok(p)
		})
		if !pass {
			return false
		}
	}
	return true
}

func (b base) supported(p vec.Vec3) bool {
	for _, s := range b.supporting {
		if !b.IsPenetrable(p.Add(s)) {
			return true
		}
	}
	return false
}

func (b base) fits(p vec.Vec3) bool {
	for _, o := range b.occupied {
		if !b.IsPenetrable(p.Add(o)) {
			return false
		}
	}
	return true
}

// Walking moves along solid ground. It may step up or down one block along
// the floor, the cells under either end being exempt from the clearance test.
type Walking struct{ base }

func NewWalking(w World, f Footprint) *Walking {
	return &Walking{newBase(w, f)}
}

func (m *Walking) IsWalkable(p vec.Vec3) (bool, error) {
	return m.fits(p) && m.supported(p), nil
}

func (m *Walking) IsReachable(from, to vec.Vec3) (bool, error) {
	if from.Sub(to).Chebyshev() > 1 {
		return false, nil
	}
	underFrom, underTo := from.Down(), to.Down()
	underfoot := func(p vec.Vec3) bool {
		return p == underFrom || p == underTo
	}
	if !m.swept(from, to, m.IsPenetrable, underfoot) {
		return false, nil
	}
	return m.IsWalkable(to)
}

// Leaping is Walking without the floor exemption: every swept cell must be
// clear, so climbs need headroom over the ledge.
type Leaping struct{ Walking }

func NewLeaping(w World, f Footprint) *Leaping {
	return &Leaping{Walking{newBase(w, f)}}
}

func (m *Leaping) IsReachable(from, to vec.Vec3) (bool, error) {
	if from.Sub(to).Chebyshev() > 1 {
		return false, nil
	}
	if !m.swept(from, to, m.IsPenetrable, nil) {
		return false, nil
	}
	return m.IsWalkable(to)
}

// Flying moves through any penetrable space.
type Flying struct{ base }

func NewFlying(w World, f Footprint) *Flying {
	return &Flying{newBase(w, f)}
}

func (m *Flying) IsWalkable(p vec.Vec3) (bool, error) {
	return m.fits(p), nil
}

func (m *Flying) IsReachable(from, to vec.Vec3) (bool, error) {
	if from.Sub(to).Chebyshev() > 1 {
		return false, nil
	}
	return m.swept(from, to, m.IsPenetrable, nil), nil
}

// Swimming stays inside liquid.
type Swimming struct{ base }

func NewSwimming(w World, f Footprint) *Swimming {
	return &Swimming{newBase(w, f)}
}

func (m *Swimming) liquid(p vec.Vec3) bool {
	return m.world.BlockAt(p).Liquid
}

func (m *Swimming) IsWalkable(p vec.Vec3) (bool, error) {
	for _, o := range m.occupied {
		if !m.liquid(p.Add(o)) {
			return false, nil
		}
	}
	return true, nil
}

func (m *Swimming) IsReachable(from, to vec.Vec3) (bool, error) {
	if from.Sub(to).Chebyshev() > 1 {
		return false, nil
	}
	return m.swept(from, to, m.liquid, nil), nil
}

// Free ignores the world entirely.
type Free struct{}

func (Free) IsReachable(from, to vec.Vec3) (bool, error) {
	return from.Sub(to).Chebyshev() <= 1, nil
}

func (Free) IsWalkable(vec.Vec3) (bool, error) { return true, nil }

func (Free) InSight(vec.Vec3, vec.Vec3) (bool, error) { return true, nil }

// Modes lists the names New accepts.
var Modes = []string{"walking", "leaping", "flying", "swimming", "free"}

// New builds the oracle for a named movement mode.
func New(mode string, w World, f Footprint) (jps.Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "walking":
		return NewWalking(w, f), nil
	case "leaping":
		return NewLeaping(w, f), nil
	case "flying":
		return NewFlying(w, f), nil
	case "swimming":
		return NewSwimming(w, f), nil
	case "free":
		return Free{}, nil
	}
	return nil, fmt.Errorf("unknown movement mode %q", mode)
}

// Compose builds one oracle per mode. A single mode is returned as is; several
// are combined with jps.Composite.
func Compose(modes []string, w World, f Footprint) (jps.Oracle, error) {
	if len(modes) == 0 {
		return nil, fmt.Errorf("no movement modes")
	}
	oracles := make(jps.Composite, 0, len(modes))
	for _, m := range modes {
		o, err := New(m, w, f)
		if err != nil {
			return nil, err
		}
		oracles = append(oracles, o)
	}
	if len(oracles) == 1 {
		return oracles[0], nil
	}
	return oracles, nil
}
