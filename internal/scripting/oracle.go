package scripting

import (
	"fmt"

	"github.com/voxelpath/pathd/internal/core/vec"
	"github.com/voxelpath/pathd/internal/jps"
	"github.com/voxelpath/pathd/internal/movement"
)

const (
	fnReachable = "is_reachable"
	fnWalkable  = "is_walkable"
	fnInSight   = "in_sight"
)

// Oracle answers movement questions by calling into the scripts. Scripts must
// define is_reachable(from, to) and is_walkable(p); in_sight(a, b) is optional
// and falls back to a line of sight walk over the engine's world.
type Oracle struct {
	e      *Engine
	sight  bool
	blocks jps.LineOfSight
}

// Oracle returns the scripted movement oracle.
func (e *Engine) Oracle() (*Oracle, error) {
	for _, name := range []string{fnReachable, fnWalkable} {
		if !e.HasFunc(name) {
			return nil, fmt.Errorf("movement script missing %s", name)
		}
	}
	return &Oracle{
		e:      e,
		sight:  e.HasFunc(fnInSight),
		blocks: jps.LineOfSight{Blocks: penetrability{e.world}},
	}, nil
}

func (o *Oracle) IsReachable(from, to vec.Vec3) (bool, error) {
	return o.e.callBool(fnReachable, from, to)
}

func (o *Oracle) IsWalkable(p vec.Vec3) (bool, error) {
	return o.e.callBool(fnWalkable, p)
}

func (o *Oracle) InSight(a, b vec.Vec3) (bool, error) {
	if !o.sight {
		return o.blocks.InSight(a, b), nil
	}
	return o.e.callBool(fnInSight, a, b)
}

type penetrability struct {
	w movement.World
}

func (p penetrability) IsPenetrable(v vec.Vec3) bool {
	return p.w.BlockAt(v).Penetrable
}
