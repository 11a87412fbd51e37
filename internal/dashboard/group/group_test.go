package group

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swasthya/healthlog-platform/internal/health"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

func day(d, hour int) time.Time {
	return time.Date(2025, 3, d, hour, 0, 0, 0, time.UTC)
}

func TestByDateDescendingAndStable(t *testing.T) {
	g := New(nil, logging.New("error"))
	records := []health.SymptomRecord{
		{ID: "a", RecordedAt: day(2, 9)},
		{ID: "b", RecordedAt: day(3, 8)},
		{ID: "c", RecordedAt: day(2, 7)}, // same day as "a", later in input
		{ID: "d", RecordedAt: day(1, 12)},
	}

	result := ByDate(g, records, SymptomDate)
	require.Len(t, result.Groups, 3)
	assert.Zero(t, result.Skipped)

	// Strictly descending by date.
	assert.Equal(t, "2025-03-03", result.Groups[0].Date)
	assert.Equal(t, "2025-03-02", result.Groups[1].Date)
	assert.Equal(t, "2025-03-01", result.Groups[2].Date)

	// Same-date records keep their input order, even across times of day.
	march2 := result.Groups[1].Records
	require.Len(t, march2, 2)
	assert.Equal(t, "a", march2[0].ID)
	assert.Equal(t, "c", march2[1].ID)
}

func TestByDateCountsSkipped(t *testing.T) {
	g := New(nil, logging.New("error"))
	records := []health.SymptomRecord{
		{ID: "a", RecordedAt: day(2, 9)},
		{ID: "b"}, // zero date
		{ID: "c"},
	}

	result := ByDate(g, records, SymptomDate)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, 2, result.Skipped, "undated records are counted, not silently dropped")
}

func TestByDateEmpty(t *testing.T) {
	g := New(nil, logging.New("error"))
	result := ByDate(g, nil, SymptomDate)
	assert.Empty(t, result.Groups)
	assert.Zero(t, result.Skipped)
}

func TestByCategoryFirstSeenOrder(t *testing.T) {
	g := New(nil, logging.New("error"))
	records := []health.MetricSample{
		{ID: "m1", MetricType: "heart_rate"},
		{ID: "m2", MetricType: "steps"},
		{ID: "m3", MetricType: "heart_rate"},
		{ID: "m4", MetricType: "weight"},
	}

	groups := ByCategory(g, records, func(m health.MetricSample) string { return m.MetricType })
	require.Len(t, groups, 3)
	assert.Equal(t, "heart_rate", groups[0].Category)
	assert.Equal(t, "steps", groups[1].Category)
	assert.Equal(t, "weight", groups[2].Category)
	assert.Len(t, groups[0].Records, 2)
}
