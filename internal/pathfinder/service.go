// Package pathfinder runs path searches on a worker pool and hands the results
// back to their requesters on the loop goroutine.
package pathfinder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voxelpath/pathd/internal/core/event"
	coresys "github.com/voxelpath/pathd/internal/core/system"
	"github.com/voxelpath/pathd/internal/jps"
	"github.com/voxelpath/pathd/internal/metrics"
)

var ErrStarted = errors.New("pathfinder: already started")

// Request asks for one path. Callback runs on the loop goroutine during Update.
type Request struct {
	Requester uint64
	Map       string
	Config    jps.Config
	Callback  func(Response)
}

// Response is the outcome of a Request. Err wraps jps.ErrCancelled when the
// search ran out of time.
type Response struct {
	ID        int
	Requester uint64
	Result    jps.Result
	Err       error
}

type Options struct {
	Workers   int
	QueueSize int
}

type job struct {
	id  int
	req Request
}

type outcome struct {
	job job
	res jps.Result
	err error
}

// System queues path requests, runs them on a pool of workers and delivers
// finished searches in PhaseDeliver. A requester has at most one request in
// flight.
type System struct {
	log      *zap.Logger
	bus      *event.Bus
	recorder *metrics.Recorder
	workers  int

	jobs    chan job
	results chan outcome

	mu       sync.Mutex
	pending  map[uint64]struct{}
	admitted []job
	nextID   int

	running   atomic.Int32
	completed int

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewSystem creates a stopped System. bus and recorder may be nil.
func NewSystem(opts Options, bus *event.Bus, recorder *metrics.Recorder, log *zap.Logger) *System {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &System{
		log:      log,
		bus:      bus,
		recorder: recorder,
		workers:  opts.Workers,
		jobs:     make(chan job, opts.QueueSize),
		results:  make(chan outcome, opts.QueueSize+opts.Workers),
		pending:  make(map[uint64]struct{}),
	}
}

func (s *System) Phase() coresys.Phase { return coresys.PhaseDeliver }

// RequestPath queues req. It returns the request id, or -1 and false when the
// requester already has a request in flight or the queue is full.
func (s *System) RequestPath(req Request) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.pending[req.Requester]; busy {
		return -1, false
	}
	j := job{id: s.nextID, req: req}
	select {
	case s.jobs <- j:
	default:
		s.log.Warn("尋路佇列已滿", zap.Uint64("requester", req.Requester))
		return -1, false
	}
	s.nextID++
	s.pending[req.Requester] = struct{}{}
	s.admitted = append(s.admitted, j)
	return j.id, true
}

// Start launches the workers. They stop when ctx ends or Shutdown is called.
func (s *System) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.group != nil {
		return ErrStarted
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		s.group.Go(func() error { return s.work(ctx) })
	}
	s.log.Info("尋路工作者已啟動", zap.Int("workers", s.workers))
	return nil
}

// Shutdown cancels running searches and waits for the workers to exit.
// Requests that were not delivered are dropped and their requesters freed.
func (s *System) Shutdown() error {
	s.mu.Lock()
	cancel, group := s.cancel, s.group
	s.mu.Unlock()
	if group == nil {
		return nil
	}
	cancel()
	err := group.Wait()

	s.mu.Lock()
	dropped := len(s.pending)
	clear(s.pending)
	s.admitted = nil
	s.mu.Unlock()
drain:
	for {
		select {
		case <-s.jobs:
		case <-s.results:
		default:
			break drain
		}
	}
	if dropped > 0 {
		s.log.Info("尋路請求已捨棄", zap.Int("requests", dropped))
	}

	if err != nil {
		return fmt.Errorf("pathfinder workers: %w", err)
	}
	return nil
}

func (s *System) work(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-s.jobs:
			s.running.Add(1)
			res, err := jps.Run(ctx, j.req.Config, s.log)
			s.running.Add(-1)
			select {
			case s.results <- outcome{job: j, res: res, err: err}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Update announces newly admitted requests and delivers every finished
// search. Called from the loop goroutine only.
func (s *System) Update(_ time.Duration) {
	s.mu.Lock()
	admitted := s.admitted
	s.admitted = nil
	s.mu.Unlock()

	if s.bus != nil {
		for _, j := range admitted {
			event.Emit(s.bus, event.PathRequested{
				ID:        j.id,
				Requester: j.req.Requester,
				Map:       j.req.Map,
				Start:     j.req.Config.Start,
				Goal:      j.req.Config.Goal,
			})
		}
	}

	for {
		select {
		case o := <-s.results:
			s.deliver(o)
		default:
			return
		}
	}
}

func (s *System) deliver(o outcome) {
	req := o.job.req
	s.mu.Lock()
	delete(s.pending, req.Requester)
	s.completed++
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.RecordPath(metrics.FromStats(o.res.Stats))
	}
	if o.err != nil {
		s.log.Debug("尋路未完成",
			zap.Int("id", o.job.id),
			zap.Uint64("requester", req.Requester),
			zap.Error(o.err))
	}
	if s.bus != nil {
		event.Emit(s.bus, event.PathReady{
			ID:        o.job.id,
			Requester: req.Requester,
			Map:       req.Map,
			Start:     req.Config.Start,
			Goal:      req.Config.Goal,
			Path:      o.res.Path,
			Found:     o.res.Found,
			Stats:     o.res.Stats,
			Err:       o.err,
		})
	}
	if req.Callback != nil {
		req.Callback(Response{
			ID:        o.job.id,
			Requester: req.Requester,
			Result:    o.res,
			Err:       o.err,
		})
	}
}

// Pending returns the number of requests not yet delivered.
func (s *System) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Snapshot samples the queue and resets the completion counter.
func (s *System) Snapshot() metrics.ServiceMetric {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := metrics.ServiceMetric{
		At:                time.Now(),
		Pending:           len(s.pending),
		Running:           int(s.running.Load()),
		RecentlyCompleted: s.completed,
	}
	s.completed = 0
	return m
}
