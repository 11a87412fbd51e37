package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for the dashboard
// fetch-group-bind-render pipeline.
type PipelineMetrics struct {
	fetchTotal     *prometheus.CounterVec
	fetchLatency   *prometheus.HistogramVec
	renderTotal    *prometheus.CounterVec
	skippedRecords *prometheus.CounterVec
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthlog",
			Subsystem: "dashboard",
			Name:      "fetch_total",
			Help:      "Total health-data API fetches by resource and outcome",
		}, []string{"resource", "status"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "healthlog",
			Subsystem: "dashboard",
			Name:      "fetch_latency_seconds",
			Help:      "Latency of health-data API fetches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		renderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthlog",
			Subsystem: "dashboard",
			Name:      "render_total",
			Help:      "Total view renders by view and outcome",
		}, []string{"view", "status"}),
		skippedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthlog",
			Subsystem: "dashboard",
			Name:      "skipped_records_total",
			Help:      "Records dropped during grouping for missing or unparsable dates",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fetchTotal, m.fetchLatency, m.renderTotal, m.skippedRecords)
	return m
}

func (m *PipelineMetrics) ObserveFetch(resource, status string, seconds float64) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(resource, status).Inc()
	m.fetchLatency.WithLabelValues(resource).Observe(seconds)
}

func (m *PipelineMetrics) ObserveRender(view, status string) {
	if m == nil {
		return
	}
	m.renderTotal.WithLabelValues(view, status).Inc()
}

func (m *PipelineMetrics) ObserveSkipped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedRecords.WithLabelValues(reason).Add(float64(n))
}
