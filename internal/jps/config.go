package jps

import (
	"time"

	"github.com/voxelpath/pathd/internal/core/vec"
)

// DefaultMaxTime bounds a search started through Run.
const DefaultMaxTime = 3 * time.Second

// Expansion selects which neighbours of a popped node are jumped from.
type Expansion uint8

const (
	// ExpandAll jumps in every direction the oracle allows.
	ExpandAll Expansion = iota
	// ExpandPruned jumps along the natural and forced neighbours only.
	ExpandPruned
)

func (e Expansion) String() string {
	if e == ExpandPruned {
		return "pruned"
	}
	return "all"
}

// Ordering selects the open-list priority.
type Ordering uint8

const (
	// OrderHeuristic pops the node closest to the goal.
	OrderHeuristic Ordering = iota
	// OrderCostPlusHeuristic pops the node with the lowest cost plus heuristic.
	OrderCostPlusHeuristic
)

func (o Ordering) String() string {
	if o == OrderCostPlusHeuristic {
		return "cost+heuristic"
	}
	return "heuristic"
}

// Config describes one search. Build it with NewConfig; it is not modified
// afterwards and may be shared between goroutines.
type Config struct {
	Start  vec.Vec3
	Goal   vec.Vec3
	Oracle Oracle

	MaxDepth       int
	MaxTime        time.Duration
	GoalDistance   float64
	UseLineOfSight bool
	Expansion      Expansion
	Ordering       Ordering
	CacheSize      int
}

type Option func(*Config)

// NewConfig returns a Config for a search from start to goal. Without options
// the jump depth is twice the straight-line distance, rounded down.
func NewConfig(start, goal vec.Vec3, oracle Oracle, opts ...Option) Config {
	cfg := Config{
		Start:     start,
		Goal:      goal,
		Oracle:    oracle,
		MaxDepth:  int(start.Dist(goal) * 2),
		MaxTime:   DefaultMaxTime,
		Expansion: ExpandAll,
		Ordering:  OrderHeuristic,
		CacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func WithMaxDepth(depth int) Option {
	return func(c *Config) { c.MaxDepth = depth }
}

// WithMaxTime bounds the wall-clock time of Run. Zero fails immediately.
func WithMaxTime(d time.Duration) Option {
	return func(c *Config) { c.MaxTime = d }
}

// WithGoalDistance accepts any cell within radius of the goal as arrival.
func WithGoalDistance(radius float64) Option {
	return func(c *Config) { c.GoalDistance = radius }
}

func WithLineOfSight(enabled bool) Option {
	return func(c *Config) { c.UseLineOfSight = enabled }
}

func WithExpansion(e Expansion) Option {
	return func(c *Config) { c.Expansion = e }
}

func WithOrdering(o Ordering) Option {
	return func(c *Config) { c.Ordering = o }
}

func WithCacheSize(n int) Option {
	return func(c *Config) { c.CacheSize = n }
}

// ParseExpansion maps a configuration keyword to an Expansion.
func ParseExpansion(s string) (Expansion, bool) {
	switch s {
	case "", "all":
		return ExpandAll, true
	case "pruned":
		return ExpandPruned, true
	}
	return ExpandAll, false
}

// ParseOrdering maps a configuration keyword to an Ordering.
func ParseOrdering(s string) (Ordering, bool) {
	switch s {
	case "", "heuristic":
		return OrderHeuristic, true
	case "cost+heuristic", "astar":
		return OrderCostPlusHeuristic, true
	}
	return OrderHeuristic, false
}
