package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Service    ServiceConfig    `toml:"service"`
	Pathfinder PathfinderConfig `toml:"pathfinder"`
	Workers    WorkersConfig    `toml:"workers"`
	World      WorldConfig      `toml:"world"`
	Scripting  ScriptingConfig  `toml:"scripting"`
	Database   DatabaseConfig   `toml:"database"`
	Logging    LoggingConfig    `toml:"logging"`
}

type ServiceConfig struct {
	Name      string        `toml:"name"`
	TickRate  time.Duration `toml:"tick_rate"`
	StartTime int64         // set at boot, not from config
}

// PathfinderConfig holds the defaults applied to every search request.
type PathfinderConfig struct {
	MaxTime      time.Duration `toml:"max_time"`      // 0 fails every search immediately
	GoalDistance float64       `toml:"goal_distance"` // arrival radius around the goal
	LineOfSight  bool          `toml:"line_of_sight"`
	Expansion    string        `toml:"expansion"`    // "all" or "pruned"
	Ordering     string        `toml:"ordering"`     // "heuristic" or "cost+heuristic"
	CacheSize    int           `toml:"cache_size"`   // reachability cache entries per search
	DepthFactor  float64       `toml:"depth_factor"` // max jump depth = factor × start-goal distance
}

type WorkersConfig struct {
	Count     int `toml:"count"`
	QueueSize int `toml:"queue_size"`
}

type WorldConfig struct {
	MapList   string          `toml:"map_list"`
	Map       string          `toml:"map"`
	Modes     []string        `toml:"modes"`
	Footprint FootprintConfig `toml:"footprint"`
	Requests  string          `toml:"requests"`
}

type FootprintConfig struct {
	Horizontal float64 `toml:"horizontal"`
	Vertical   float64 `toml:"vertical"`
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// DatabaseConfig configures the optional metric store. An empty DSN disables it.
type DatabaseConfig struct {
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Service.StartTime = time.Now().Unix()
	return cfg, nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	if c.Service.TickRate <= 0 {
		return fmt.Errorf("service.tick_rate must be positive")
	}
	p := c.Pathfinder
	if p.MaxTime < 0 {
		return fmt.Errorf("pathfinder.max_time must not be negative")
	}
	if p.GoalDistance < 0 {
		return fmt.Errorf("pathfinder.goal_distance must not be negative")
	}
	if !slices.Contains([]string{"all", "pruned"}, p.Expansion) {
		return fmt.Errorf("pathfinder.expansion %q: want all or pruned", p.Expansion)
	}
	if !slices.Contains([]string{"heuristic", "cost+heuristic"}, p.Ordering) {
		return fmt.Errorf("pathfinder.ordering %q: want heuristic or cost+heuristic", p.Ordering)
	}
	if p.DepthFactor <= 0 {
		return fmt.Errorf("pathfinder.depth_factor must be positive")
	}
	if c.Workers.Count < 1 {
		return fmt.Errorf("workers.count must be at least 1")
	}
	if c.Workers.QueueSize < 1 {
		return fmt.Errorf("workers.queue_size must be at least 1")
	}
	if !c.Scripting.Enabled && len(c.World.Modes) == 0 {
		return fmt.Errorf("world.modes is empty and scripting is disabled")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "pathd",
			TickRate: 50 * time.Millisecond,
		},
		Pathfinder: PathfinderConfig{
			MaxTime:     3 * time.Second,
			Expansion:   "all",
			Ordering:    "heuristic",
			CacheSize:   100000,
			DepthFactor: 2,
		},
		Workers: WorkersConfig{
			Count:     4,
			QueueSize: 256,
		},
		World: WorldConfig{
			MapList:  "data/yaml/map_list.yaml",
			Modes:    []string{"walking"},
			Requests: "data/yaml/requests.yaml",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
