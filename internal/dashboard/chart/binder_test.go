package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestBindSortsAscending(t *testing.T) {
	b := NewBinder()
	points := []Point{
		{T: at(2), Value: 80},
		{T: at(1), Value: 72},
	}

	s, ok := b.Bind("Heart Rate", points, 0)
	require.True(t, ok)
	require.Len(t, s.Points, 2)
	assert.Equal(t, 72.0, s.Points[0].Value)
	assert.Equal(t, 80.0, s.Points[1].Value)

	// Reversed input binds to the identical series.
	reversed, ok := b.Bind("Heart Rate", []Point{points[1], points[0]}, 0)
	require.True(t, ok)
	assert.Equal(t, s, reversed)
}

func TestBindExcludesAllNonpositive(t *testing.T) {
	b := NewBinder()

	_, ok := b.Bind("placeholder", []Point{{T: at(1), Value: 0}, {T: at(2), Value: -1}}, 0)
	assert.False(t, ok, "a series with no positive point is excluded")

	_, ok = b.Bind("empty", nil, 0)
	assert.False(t, ok)

	// One positive point keeps the whole series, zeros included.
	s, ok := b.Bind("mixed", []Point{{T: at(1), Value: 0}, {T: at(2), Value: 5}, {T: at(3), Value: -2}}, 0)
	require.True(t, ok)
	assert.Len(t, s.Points, 3)
}

func TestColorAssignment(t *testing.T) {
	b := NewBinder()
	points := []Point{{T: at(1), Value: 1}}

	// Semantic color wins regardless of position.
	s, ok := b.Bind("heart_rate", points, 3)
	require.True(t, ok)
	assert.Equal(t, "#e74a3b", s.Color)

	// Unknown names fall back to the positional palette.
	first, _ := b.Bind("custom_metric", points, 0)
	wrapped, _ := b.Bind("custom_metric", points, len(defaultPalette))
	assert.Equal(t, first.Color, wrapped.Color, "palette wraps modulo its size")

	second, _ := b.Bind("custom_metric", points, 1)
	assert.NotEqual(t, first.Color, second.Color)
}

func TestBindAllKeepsInputPositions(t *testing.T) {
	b := NewBinder()
	out := b.BindAll([]NamedSeries{
		{Name: "a", Points: []Point{{T: at(1), Value: 0}}}, // excluded
		{Name: "b", Points: []Point{{T: at(1), Value: 1}}},
	})
	require.Len(t, out, 1)
	// "b" keeps palette position 1 even though "a" was dropped.
	assert.Equal(t, defaultPalette[1], out[0].Color)
}

func TestSeverityBands(t *testing.T) {
	tests := []struct {
		severity int
		band     string
		value    int
	}{
		{1, BandMild, 1}, {3, BandMild, 1},
		{4, BandModerate, 2}, {7, BandModerate, 2},
		{8, BandSevere, 3}, {10, BandSevere, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.band, SeverityBand(tt.severity), "severity %d", tt.severity)
		assert.Equal(t, tt.value, SeverityBandValue(tt.severity), "severity %d", tt.severity)
	}
}

func TestRegistrySingleOwner(t *testing.T) {
	r := NewRegistry()
	s := Series{Label: "Heart Rate"}

	first := r.Bind("panel-1", s)
	assert.False(t, first.Released())

	// Rebinding releases the prior handle.
	second := r.Bind("panel-1", s)
	assert.True(t, first.Released())
	assert.False(t, second.Released())
	assert.Equal(t, 1, r.Len())

	second.Release()
	assert.True(t, second.Released())
	assert.Equal(t, 0, r.Len())

	// Double release is harmless.
	second.Release()

	// A stale handle's release never evicts the current owner.
	third := r.Bind("panel-1", s)
	first.Release()
	got, ok := r.Get("panel-1")
	require.True(t, ok)
	assert.Same(t, third, got)
}
