package main

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/voxelpath/pathd/internal/config"
	"github.com/voxelpath/pathd/internal/data"
	"github.com/voxelpath/pathd/internal/jps"
	"github.com/voxelpath/pathd/internal/movement"
	"github.com/voxelpath/pathd/internal/scripting"
)

// oracleSet builds movement oracles on demand, one per map and mode list.
// With scripting enabled every map gets its own Lua engine.
type oracleSet struct {
	maps      *data.MapTable
	world     config.WorldConfig
	scripting config.ScriptingConfig
	log       *zap.Logger

	oracles map[string]jps.Oracle
	engines []*scripting.Engine
}

func newOracleSet(maps *data.MapTable, world config.WorldConfig, sc config.ScriptingConfig, log *zap.Logger) *oracleSet {
	return &oracleSet{
		maps:      maps,
		world:     world,
		scripting: sc,
		log:       log,
		oracles:   make(map[string]jps.Oracle),
	}
}

func (s *oracleSet) get(mapName string, modes []string) (jps.Oracle, error) {
	entry := s.maps.Get(mapName)
	if entry == nil {
		return nil, fmt.Errorf("unknown map %q", mapName)
	}
	if len(modes) == 0 {
		modes = s.world.Modes
	}
	key := mapName + "/" + strings.Join(modes, "+")
	if s.scripting.Enabled {
		key = mapName + "/lua"
	}
	if o, ok := s.oracles[key]; ok {
		return o, nil
	}

	var o jps.Oracle
	if s.scripting.Enabled {
		engine, err := scripting.NewEngine(s.scripting.Dir, entry.Grid, s.log)
		if err != nil {
			return nil, fmt.Errorf("lua engine for %s: %w", mapName, err)
		}
		s.engines = append(s.engines, engine)
		so, err := engine.Oracle()
		if err != nil {
			return nil, err
		}
		o = so
	} else {
		fp := movement.Footprint{
			Horizontal: s.world.Footprint.Horizontal,
			Vertical:   s.world.Footprint.Vertical,
		}
		mo, err := movement.Compose(modes, entry.Grid, fp)
		if err != nil {
			return nil, fmt.Errorf("map %s: %w", mapName, err)
		}
		o = mo
	}
	s.oracles[key] = o
	return o, nil
}

func (s *oracleSet) Close() {
	for _, e := range s.engines {
		e.Close()
	}
}
