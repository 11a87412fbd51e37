package view

import (
	"math"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const fetchLatencyMetric = "healthlog_dashboard_fetch_latency_seconds"

// LatencySnapshot is the dashboard's own view of how fast its data arrived,
// estimated from the fetch-latency histogram.
type LatencySnapshot struct {
	SampleCount uint64  `json:"sample_count"`
	P90Seconds  float64 `json:"p90_seconds"`
	P95Seconds  float64 `json:"p95_seconds"`
}

// SnapshotFetchLatency gathers the fetch-latency histogram and estimates its
// p90/p95 across all resources. Returns nil when no samples exist yet or the
// gatherer fails; the summary block simply omits the figures then.
func SnapshotFetchLatency(g prometheus.Gatherer) *LatencySnapshot {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	families, err := g.Gather()
	if err != nil {
		return nil
	}

	var mf *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == fetchLatencyMetric {
			mf = f
			break
		}
	}
	if mf == nil {
		return nil
	}

	// Merge the per-resource histograms into one bucket set.
	merged := make(map[float64]uint64)
	var count uint64
	for _, m := range mf.GetMetric() {
		h := m.GetHistogram()
		if h == nil {
			continue
		}
		count += h.GetSampleCount()
		for _, b := range h.GetBucket() {
			merged[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if count == 0 {
		return nil
	}

	bounds := make([]float64, 0, len(merged))
	for ub := range merged {
		bounds = append(bounds, ub)
	}
	sort.Float64s(bounds)

	return &LatencySnapshot{
		SampleCount: count,
		P90Seconds:  quantileFromBuckets(bounds, merged, count, 0.90),
		P95Seconds:  quantileFromBuckets(bounds, merged, count, 0.95),
	}
}

// quantileFromBuckets returns the upper bound of the first bucket whose
// cumulative count covers the quantile. Coarse but monotone, which is all a
// summary badge needs.
func quantileFromBuckets(bounds []float64, cumulative map[float64]uint64, count uint64, q float64) float64 {
	rank := uint64(math.Ceil(q * float64(count)))
	for _, ub := range bounds {
		if cumulative[ub] >= rank {
			return ub
		}
	}
	if len(bounds) > 0 {
		return bounds[len(bounds)-1]
	}
	return 0
}
