package metrics

import (
	"fmt"
	"math"
	"strings"
)

const defaultBuckets = 10

// Histogram spreads values over equal-width buckets. The last bucket starts at
// the maximum value, so the maximum always lands in a bucket of its own width.
type Histogram struct {
	Buckets int

	data       []int
	min, max   float64
	bucketSize float64
	bucketMax  int
}

// Bucket is one histogram bar; Lower is its inclusive lower bound.
type Bucket struct {
	Lower float64
	Count int
}

// Build fills the histogram from values. An empty input spans 0..1000.
func (h *Histogram) Build(values []float64) {
	if h.Buckets < 2 {
		h.Buckets = defaultBuckets
	}
	h.data = make([]int, h.Buckets)
	h.bucketMax = 0
	if len(values) == 0 {
		h.min, h.max = 0, 1000
	} else {
		h.min, h.max = values[0], values[0]
		for _, v := range values[1:] {
			h.min = math.Min(h.min, v)
			h.max = math.Max(h.max, v)
		}
	}
	h.bucketSize = (h.max - h.min) / float64(h.Buckets-1)

	for _, v := range values {
		b := 0
		if h.bucketSize > 0 {
			b = int(math.Floor((v - h.min) / h.bucketSize))
		}
		b = min(max(b, 0), h.Buckets-1)
		h.data[b]++
		h.bucketMax = max(h.bucketMax, h.data[b])
	}
}

// Analyze builds the histogram with the given bucket count and returns the bars.
func (h *Histogram) Analyze(values []float64, buckets int) []Bucket {
	h.Buckets = buckets
	h.Build(values)
	out := make([]Bucket, len(h.data))
	for i, c := range h.data {
		out[i] = Bucket{Lower: h.min + h.bucketSize*float64(i), Count: c}
	}
	return out
}

// String renders one line per bucket, labelled with its upper bound and
// scaled to 20 columns.
func (h *Histogram) String() string {
	var sb strings.Builder
	scale := 0.0
	if h.bucketMax > 0 {
		scale = 20.0 / float64(h.bucketMax)
	}
	for i, c := range h.data {
		fmt.Fprintf(&sb, "% 7.1f (% 4d) |", h.min+h.bucketSize*float64(i+1), c)
		sb.WriteString(strings.Repeat("#", int(math.Ceil(float64(c)*scale))))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return sb.String()
}
