package group

import (
	"sort"
	"time"

	"github.com/swasthya/healthlog-platform/internal/health"
	"github.com/swasthya/healthlog-platform/internal/observability/metrics"
	"github.com/swasthya/healthlog-platform/internal/risk"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// DateGroup is one day's worth of records. Date is the ISO day.
type DateGroup[T any] struct {
	Date    string `json:"date"`
	Records []T    `json:"records"`
}

// ByDateResult carries the ordered groups plus the count of records dropped
// for missing or unparsable dates. Skipped records are never silent: the
// count travels with the result and the grouper logs it.
type ByDateResult[T any] struct {
	Groups  []DateGroup[T] `json:"groups"`
	Skipped int            `json:"skipped"`
}

// CategoryGroup is one category bucket.
type CategoryGroup[T any] struct {
	Category string `json:"category"`
	Records  []T    `json:"records"`
}

// Grouper partitions flat records for display.
type Grouper struct {
	logger  *logging.Logger
	metrics *metrics.PipelineMetrics
}

// New creates a grouper. metrics may be nil.
func New(m *metrics.PipelineMetrics, logger *logging.Logger) *Grouper {
	if logger == nil {
		logger = logging.Default()
	}
	return &Grouper{logger: logger, metrics: m}
}

// ByDate partitions records into day buckets sorted strictly descending by
// date. Within a bucket the input order is preserved (stable partition).
// dateOf reports the record's timestamp; ok=false marks the record skipped.
func ByDate[T any](g *Grouper, records []T, dateOf func(T) (time.Time, bool)) ByDateResult[T] {
	index := make(map[string]int)
	var groups []DateGroup[T]
	skipped := 0

	for _, rec := range records {
		ts, ok := dateOf(rec)
		if !ok || ts.IsZero() {
			skipped++
			continue
		}
		day := ts.UTC().Format(time.DateOnly)
		i, seen := index[day]
		if !seen {
			i = len(groups)
			index[day] = i
			groups = append(groups, DateGroup[T]{Date: day})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Date > groups[j].Date })

	if skipped > 0 {
		g.logger.Warn("records skipped during date grouping", "skipped", skipped)
		g.metrics.ObserveSkipped("undated", skipped)
	}
	return ByDateResult[T]{Groups: groups, Skipped: skipped}
}

// ByCategory buckets records by categoryOf, preserving first-seen category
// order and input order within each bucket.
func ByCategory[T any](g *Grouper, records []T, categoryOf func(T) string) []CategoryGroup[T] {
	index := make(map[string]int)
	var groups []CategoryGroup[T]

	for _, rec := range records {
		category := categoryOf(rec)
		i, seen := index[category]
		if !seen {
			i = len(groups)
			index[category] = i
			groups = append(groups, CategoryGroup[T]{Category: category})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}

// SymptomDate extracts the recorded time of a symptom record.
func SymptomDate(s health.SymptomRecord) (time.Time, bool) {
	return s.RecordedAt, !s.RecordedAt.IsZero()
}

// MetricDate extracts the recorded time of a metric sample.
func MetricDate(m health.MetricSample) (time.Time, bool) {
	return m.RecordedAt, !m.RecordedAt.IsZero()
}

// AssessmentDate extracts the assessment time.
func AssessmentDate(a risk.Assessment) (time.Time, bool) {
	return a.AssessmentDate, !a.AssessmentDate.IsZero()
}
