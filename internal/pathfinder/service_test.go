package pathfinder

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelpath/pathd/internal/config"
	"github.com/voxelpath/pathd/internal/core/event"
	coresys "github.com/voxelpath/pathd/internal/core/system"
	"github.com/voxelpath/pathd/internal/core/vec"
	"github.com/voxelpath/pathd/internal/jps"
	"github.com/voxelpath/pathd/internal/metrics"
	"github.com/voxelpath/pathd/internal/movement"
	"github.com/voxelpath/pathd/internal/persist"
	"github.com/voxelpath/pathd/internal/voxel"
)

func staircase() *voxel.Grid {
	g := voxel.NewGrid()
	for x := 0; x < 7; x++ {
		for y := min(x, 3); y < 7; y++ {
			g.Set(vec.New(x, y, 0), voxel.Air)
		}
	}
	return g
}

func defaultPathfinder() config.PathfinderConfig {
	return config.PathfinderConfig{
		MaxTime:     5 * time.Second,
		Expansion:   "all",
		Ordering:    "heuristic",
		CacheSize:   1000,
		DepthFactor: 2,
	}
}

type memorySink struct {
	mu      sync.Mutex
	records []persist.PathRecord
	err     error
}

func (m *memorySink) InsertBatch(_ context.Context, records []persist.PathRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, records...)
	return nil
}

// slowFree accepts every step but takes a millisecond to answer.
type slowFree struct{ movement.Free }

func (o slowFree) IsReachable(from, to vec.Vec3) (bool, error) {
	time.Sleep(time.Millisecond)
	return o.Free.IsReachable(from, to)
}

func tickUntil(t *testing.T, r *coresys.Runner, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !done() {
		require.True(t, time.Now().Before(deadline), "timed out waiting for delivery")
		r.Tick(time.Millisecond)
		time.Sleep(time.Millisecond)
	}
}

func TestRequestPathRefusesBusyRequester(t *testing.T) {
	svc := NewSystem(Options{Workers: 1, QueueSize: 2}, nil, nil, nil)
	cfg := jps.NewConfig(vec.Zero, vec.New(1, 0, 0), movement.Free{})

	id, ok := svc.RequestPath(Request{Requester: 7, Config: cfg})
	require.True(t, ok)
	assert.Equal(t, 0, id)

	id, ok = svc.RequestPath(Request{Requester: 7, Config: cfg})
	assert.False(t, ok)
	assert.Equal(t, -1, id)

	id, ok = svc.RequestPath(Request{Requester: 8, Config: cfg})
	require.True(t, ok)
	assert.Equal(t, 1, id)

	id, ok = svc.RequestPath(Request{Requester: 9, Config: cfg})
	assert.False(t, ok, "queue is full")
	assert.Equal(t, -1, id)
	assert.Equal(t, 2, svc.Pending())
}

func TestDeliveryThroughRunner(t *testing.T) {
	world := staircase()
	oracle := movement.NewWalking(world, movement.Footprint{})
	pc := defaultPathfinder()

	bus := event.NewBus()
	rec := metrics.NewRecorder()
	sink := &memorySink{}
	svc := NewSystem(Options{Workers: 2, QueueSize: 8}, bus, rec, nil)

	runner := coresys.NewRunner()
	runner.Register(NewFlushSystem(bus, sink, 1, nil))
	runner.Register(NewReportSystem(svc, rec, 1))
	runner.Register(svc)
	runner.Register(event.NewDispatchSystem(bus))

	var requested []int
	event.Subscribe(bus, func(e event.PathRequested) { requested = append(requested, e.ID) })

	responses := make(map[uint64]Response)
	collect := func(r Response) { responses[r.Requester] = r }

	stairs, err := SearchConfig(pc, vec.Zero, vec.New(6, 3, 0), oracle)
	require.NoError(t, err)
	buried, err := SearchConfig(pc, vec.Zero, vec.New(6, 0, 0), oracle)
	require.NoError(t, err)

	_, ok := svc.RequestPath(Request{Requester: 1, Map: "stairs", Config: stairs, Callback: collect})
	require.True(t, ok)
	_, ok = svc.RequestPath(Request{Requester: 2, Map: "stairs", Config: buried, Callback: collect})
	require.True(t, ok)

	require.NoError(t, svc.Start(context.Background()))
	defer svc.Shutdown()
	assert.ErrorIs(t, svc.Start(context.Background()), ErrStarted)

	tickUntil(t, runner, func() bool { return len(responses) == 2 })
	runner.Tick(time.Millisecond)

	found := responses[1]
	require.NoError(t, found.Err)
	require.True(t, found.Result.Found)
	assert.Equal(t, []vec.Vec3{vec.Zero, vec.New(3, 3, 0), vec.New(6, 3, 0)}, found.Result.Path)
	assert.InDelta(t, 3*math.Sqrt2+3, found.Result.Cost, 1e-9)

	missing := responses[2]
	assert.NoError(t, missing.Err)
	assert.False(t, missing.Result.Found)
	assert.Empty(t, missing.Result.Path)

	assert.ElementsMatch(t, []int{0, 1}, requested)
	assert.Zero(t, svc.Pending())

	total, success, fail := rec.Totals()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, success)
	assert.Equal(t, 1, fail)
	assert.NotEmpty(t, rec.ServiceMetrics())

	sink.mu.Lock()
	require.Len(t, sink.records, 2)
	for _, r := range sink.records {
		assert.Equal(t, "stairs", r.Map)
		assert.Equal(t, r.Requester == 1, r.Metric.Success)
	}
	sink.mu.Unlock()

	_, ok = svc.RequestPath(Request{Requester: 1, Config: stairs, Callback: collect})
	assert.True(t, ok, "requester is free again after delivery")
}

func TestShutdownCancelsRunningSearch(t *testing.T) {
	svc := NewSystem(Options{Workers: 1, QueueSize: 2}, nil, nil, nil)
	cfg := jps.NewConfig(vec.Zero, vec.New(500, 500, 500), slowFree{},
		jps.WithMaxTime(time.Minute),
		jps.WithExpansion(jps.ExpandAll))

	_, ok := svc.RequestPath(Request{Requester: 1, Config: cfg})
	require.True(t, ok)
	require.NoError(t, svc.Start(context.Background()))

	require.Eventually(t, func() bool { return svc.Snapshot().Running == 1 }, 5*time.Second, time.Millisecond)
	_, ok = svc.RequestPath(Request{Requester: 2, Config: cfg})
	require.True(t, ok, "queued behind the running search")
	require.Equal(t, 2, svc.Pending())

	done := make(chan error, 1)
	go func() { done <- svc.Shutdown() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not stop the worker")
	}

	assert.Zero(t, svc.Pending(), "undelivered requests are dropped")
	for _, requester := range []uint64{1, 2} {
		_, ok := svc.RequestPath(Request{Requester: requester, Config: cfg})
		assert.True(t, ok, "requester %d is free after shutdown", requester)
	}
}

func TestSnapshotResetsCompleted(t *testing.T) {
	svc := NewSystem(Options{Workers: 1, QueueSize: 4}, nil, nil, nil)
	var got []Response
	cfg := jps.NewConfig(vec.Zero, vec.Zero, movement.Free{})
	_, ok := svc.RequestPath(Request{Requester: 1, Config: cfg, Callback: func(r Response) { got = append(got, r) }})
	require.True(t, ok)
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Shutdown()

	deadline := time.Now().Add(5 * time.Second)
	for len(got) == 0 {
		require.True(t, time.Now().Before(deadline))
		svc.Update(time.Millisecond)
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, []vec.Vec3{vec.Zero, vec.Zero}, got[0].Result.Path)

	m := svc.Snapshot()
	assert.Equal(t, 1, m.RecentlyCompleted)
	assert.Zero(t, m.Pending)
	assert.Zero(t, svc.Snapshot().RecentlyCompleted)
}

func TestFlushDropsFailedBatch(t *testing.T) {
	bus := event.NewBus()
	sink := &memorySink{err: errors.New("db down")}
	flush := NewFlushSystem(bus, sink, 3, nil)

	event.Emit(bus, event.PathReady{ID: 1, Requester: 1})
	bus.SwapBuffers()
	bus.DispatchAll()
	require.Equal(t, 1, flush.Buffered())

	flush.Update(time.Millisecond)
	flush.Update(time.Millisecond)
	assert.Equal(t, 1, flush.Buffered(), "waits for the interval")
	flush.Update(time.Millisecond)
	assert.Zero(t, flush.Buffered())
	assert.Empty(t, sink.records)
}

func TestSearchConfig(t *testing.T) {
	pc := defaultPathfinder()
	pc.Expansion = "pruned"
	pc.Ordering = "cost+heuristic"
	pc.DepthFactor = 3
	pc.GoalDistance = 1.5
	pc.LineOfSight = true

	cfg, err := SearchConfig(pc, vec.Zero, vec.New(3, 4, 0), movement.Free{})
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.MaxDepth)
	assert.Equal(t, jps.ExpandPruned, cfg.Expansion)
	assert.Equal(t, jps.OrderCostPlusHeuristic, cfg.Ordering)
	assert.Equal(t, 5*time.Second, cfg.MaxTime)
	assert.Equal(t, 1000, cfg.CacheSize)
	assert.InDelta(t, 1.5, cfg.GoalDistance, 1e-9)
	assert.True(t, cfg.UseLineOfSight)

	cfg, err = SearchConfig(pc, vec.Zero, vec.New(3, 4, 0), movement.Free{}, jps.WithMaxDepth(4))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxDepth)

	pc.Expansion = "some"
	_, err = SearchConfig(pc, vec.Zero, vec.New(1, 0, 0), movement.Free{})
	assert.ErrorContains(t, err, "expansion")
}
