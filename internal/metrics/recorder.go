// Package metrics records per-path and per-service pathfinding measurements in
// bounded rings and summarises them as histograms.
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/voxelpath/pathd/internal/jps"
)

const (
	PathCapacity    = 1000
	ServiceCapacity = 50
	SeriesCapacity  = 1000
)

// PathMetric describes one finished search.
type PathMetric struct {
	Time          time.Duration
	Cost          float64
	Size          int
	MaxDepth      int
	NodesExplored int
	Queries       int
	Success       bool
	Cancelled     bool
}

// FromStats converts search statistics into a PathMetric.
func FromStats(s jps.Stats) PathMetric {
	return PathMetric{
		Time:          s.Elapsed,
		Cost:          s.Cost,
		Size:          s.PathLength,
		MaxDepth:      s.MaxDepthReached,
		NodesExplored: s.Expansions,
		Queries:       s.ReachabilityQueries,
		Success:       s.Found,
		Cancelled:     s.Cancelled,
	}
}

func (m PathMetric) String() string {
	return fmt.Sprintf("success: %t time: %s cost: %.2f size: %d", m.Success, m.Time, m.Cost, m.Size)
}

// ServiceMetric is a snapshot of the pathfinder's queue.
type ServiceMetric struct {
	At                time.Time
	Pending           int
	Running           int
	RecentlyCompleted int
}

// Recorder keeps the most recent path and service metrics. Safe for
// concurrent use.
type Recorder struct {
	mu      sync.Mutex
	paths   *Ring[PathMetric]
	service *Ring[ServiceMetric]
}

func NewRecorder() *Recorder {
	return &Recorder{
		paths:   NewRing[PathMetric](PathCapacity),
		service: NewRing[ServiceMetric](ServiceCapacity),
	}
}

func (r *Recorder) RecordPath(m PathMetric) {
	r.mu.Lock()
	r.paths.Push(m)
	r.mu.Unlock()
}

func (r *Recorder) RecordService(m ServiceMetric) {
	r.mu.Lock()
	r.service.Push(m)
	r.mu.Unlock()
}

func (r *Recorder) PathMetrics() []PathMetric {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paths.Values()
}

func (r *Recorder) ServiceMetrics() []ServiceMetric {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.service.Values()
}

// Totals counts the recorded paths by outcome.
func (r *Recorder) Totals() (total, success, fail int) {
	for _, m := range r.PathMetrics() {
		total++
		if m.Success {
			success++
		} else {
			fail++
		}
	}
	return total, success, fail
}

// Summary renders the outcome counts followed by histograms of success time,
// failure time, path size and path cost.
func (r *Recorder) Summary() string {
	all := r.PathMetrics()
	var okTime, failTime, size, cost []float64
	for _, m := range all {
		ms := float64(m.Time) / float64(time.Millisecond)
		if m.Success {
			okTime = append(okTime, ms)
		} else {
			failTime = append(failTime, ms)
		}
		size = append(size, float64(m.Size))
		cost = append(cost, m.Cost)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "total: %d\nsuccess: %d\nfail: %d\n", len(all), len(okTime), len(failTime))
	for _, sec := range []struct {
		title  string
		values []float64
	}{
		{"success time (ms)", okTime},
		{"fail time (ms)", failTime},
		{"size", size},
		{"cost", cost},
	} {
		var h Histogram
		h.Build(sec.values)
		sb.WriteString(sec.title + "\n")
		sb.WriteString(h.String())
	}
	return sb.String()
}

// TimeSeries is a bounded series of samples. Safe for concurrent use.
type TimeSeries struct {
	mu     sync.Mutex
	values *Ring[float64]
}

func NewTimeSeries() *TimeSeries {
	return &TimeSeries{values: NewRing[float64](SeriesCapacity)}
}

func (s *TimeSeries) Add(v float64) {
	s.mu.Lock()
	s.values.Push(v)
	s.mu.Unlock()
}

func (s *TimeSeries) Values() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Values()
}
