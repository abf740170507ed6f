package pathfinder

import (
	"fmt"

	"github.com/voxelpath/pathd/internal/config"
	"github.com/voxelpath/pathd/internal/core/vec"
	"github.com/voxelpath/pathd/internal/jps"
)

// SearchConfig builds the search for one request from the [pathfinder]
// defaults. extra options are applied last and override the defaults.
func SearchConfig(pc config.PathfinderConfig, start, goal vec.Vec3, oracle jps.Oracle, extra ...jps.Option) (jps.Config, error) {
	expansion, ok := jps.ParseExpansion(pc.Expansion)
	if !ok {
		return jps.Config{}, fmt.Errorf("unknown expansion %q", pc.Expansion)
	}
	ordering, ok := jps.ParseOrdering(pc.Ordering)
	if !ok {
		return jps.Config{}, fmt.Errorf("unknown ordering %q", pc.Ordering)
	}

	opts := []jps.Option{
		jps.WithMaxTime(pc.MaxTime),
		jps.WithGoalDistance(pc.GoalDistance),
		jps.WithLineOfSight(pc.LineOfSight),
		jps.WithExpansion(expansion),
		jps.WithOrdering(ordering),
		jps.WithCacheSize(pc.CacheSize),
	}
	if pc.DepthFactor > 0 {
		opts = append(opts, jps.WithMaxDepth(int(start.Dist(goal)*pc.DepthFactor)))
	}
	opts = append(opts, extra...)
	return jps.NewConfig(start, goal, oracle, opts...), nil
}
