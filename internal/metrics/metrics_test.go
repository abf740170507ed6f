package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelpath/pathd/internal/jps"
)

func TestRingDropsOldest(t *testing.T) {
	r := NewRing[int](3)
	_, ok := r.Last()
	assert.False(t, ok)

	for i := 1; i <= 5; i++ {
		r.Push(i)
	}
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{3, 4, 5}, r.Values())
	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, 5, last)
}

func TestHistogramBuild(t *testing.T) {
	var h Histogram
	bars := h.Analyze([]float64{0, 1, 1, 9}, 10)
	require.Len(t, bars, 10)

	assert.InDelta(t, 0, bars[0].Lower, 1e-9)
	assert.InDelta(t, 1, bars[1].Lower, 1e-9)
	assert.Equal(t, 1, bars[0].Count)
	assert.Equal(t, 2, bars[1].Count)
	assert.Equal(t, 1, bars[9].Count)

	total := 0
	for _, b := range bars {
		total += b.Count
	}
	assert.Equal(t, 4, total)
}

func TestHistogramDegenerate(t *testing.T) {
	var h Histogram
	bars := h.Analyze([]float64{5, 5, 5}, 4)
	assert.Equal(t, 3, bars[0].Count)

	bars = h.Analyze(nil, 10)
	assert.InDelta(t, 1000.0/9, bars[1].Lower, 1e-9)
	for _, b := range bars {
		assert.Zero(t, b.Count)
	}
}

func TestHistogramString(t *testing.T) {
	var h Histogram
	h.Build([]float64{0, 9})
	lines := strings.Split(strings.TrimRight(h.String(), "\n"), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "    1.0 (   1) |####################", lines[0])
	assert.Equal(t, "    2.0 (   0) |", lines[1])
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.RecordPath(FromStats(jps.Stats{Found: true, Elapsed: 2 * time.Millisecond, PathLength: 3, Cost: 7.5}))
	r.RecordPath(FromStats(jps.Stats{Found: false, Elapsed: time.Millisecond, Cancelled: true}))

	total, ok, fail := r.Totals()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, fail)

	sum := r.Summary()
	assert.True(t, strings.HasPrefix(sum, "total: 2\nsuccess: 1\nfail: 1\n"))
	for _, title := range []string{"success time (ms)", "fail time (ms)", "size", "cost"} {
		assert.Contains(t, sum, title)
	}

	metrics := r.PathMetrics()
	require.Len(t, metrics, 2)
	assert.True(t, metrics[1].Cancelled)
	assert.Equal(t, "success: true time: 2ms cost: 7.50 size: 3", metrics[0].String())
}

func TestRecorderBounds(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < PathCapacity+10; i++ {
		r.RecordPath(PathMetric{Size: i})
	}
	for i := 0; i < ServiceCapacity+1; i++ {
		r.RecordService(ServiceMetric{Pending: i})
	}

	paths := r.PathMetrics()
	assert.Len(t, paths, PathCapacity)
	assert.Equal(t, 10, paths[0].Size)

	svc := r.ServiceMetrics()
	assert.Len(t, svc, ServiceCapacity)
	assert.Equal(t, 1, svc[0].Pending)
}

func TestTimeSeriesConcurrent(t *testing.T) {
	s := NewTimeSeries()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				s.Add(float64(j))
			}
		}()
	}
	wg.Wait()
	assert.Len(t, s.Values(), SeriesCapacity)
}
