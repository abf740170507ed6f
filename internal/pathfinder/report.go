package pathfinder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voxelpath/pathd/internal/core/event"
	coresys "github.com/voxelpath/pathd/internal/core/system"
	"github.com/voxelpath/pathd/internal/metrics"
	"github.com/voxelpath/pathd/internal/persist"
)

// ReportSystem samples the service into the recorder every interval ticks.
// Phase 2 (Report).
type ReportSystem struct {
	svc       *System
	recorder  *metrics.Recorder
	tickCount int
	interval  int
}

func NewReportSystem(svc *System, recorder *metrics.Recorder, intervalTicks int) *ReportSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &ReportSystem{svc: svc, recorder: recorder, interval: intervalTicks}
}

func (s *ReportSystem) Phase() coresys.Phase { return coresys.PhaseReport }

func (s *ReportSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.recorder.RecordService(s.svc.Snapshot())
}

// MetricSink stores finished searches. *persist.MetricRepo implements it.
type MetricSink interface {
	InsertBatch(ctx context.Context, records []persist.PathRecord) error
}

// FlushSystem collects PathReady events and writes them to a MetricSink in
// batches every interval ticks. Phase 3 (Persist).
type FlushSystem struct {
	sink      MetricSink
	log       *zap.Logger
	batch     []persist.PathRecord
	tickCount int
	interval  int
}

func NewFlushSystem(bus *event.Bus, sink MetricSink, intervalTicks int, log *zap.Logger) *FlushSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &FlushSystem{sink: sink, log: log, interval: intervalTicks}
	event.Subscribe(bus, func(e event.PathReady) {
		s.batch = append(s.batch, persist.PathRecord{
			RequestID: e.ID,
			Requester: e.Requester,
			Map:       e.Map,
			Start:     e.Start,
			Goal:      e.Goal,
			Metric:    metrics.FromStats(e.Stats),
		})
	})
	return s
}

func (s *FlushSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *FlushSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush writes the collected records immediately. A failed batch is logged
// and dropped.
func (s *FlushSystem) Flush() {
	if len(s.batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.sink.InsertBatch(ctx, s.batch); err != nil {
		s.log.Error("尋路指標寫入失敗", zap.Int("records", len(s.batch)), zap.Error(err))
	} else {
		s.log.Debug("尋路指標已寫入", zap.Int("records", len(s.batch)))
	}
	s.batch = nil
}

// Buffered returns the number of records waiting for the next flush.
func (s *FlushSystem) Buffered() int {
	return len(s.batch)
}
