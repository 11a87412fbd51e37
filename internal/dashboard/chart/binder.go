package chart

import (
	"sort"
	"time"
)

// Point is one chart coordinate.
type Point struct {
	T     time.Time `json:"t"`
	Value float64   `json:"value"`
}

// Series is a bound, chart-ready dataset. Points are ascending by time.
type Series struct {
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// NamedSeries is the binder input: a label plus unordered raw points.
type NamedSeries struct {
	Name   string
	Points []Point
}

// defaultPalette cycles by series position.
var defaultPalette = []string{
	"#4e73df", "#1cc88a", "#36b9cc", "#f6c23e", "#e74a3b", "#858796",
}

// semanticColors pin well-known metrics to fixed colors. Semantic assignment
// wins over the positional palette.
var semanticColors = map[string]string{
	"heart_rate":               "#e74a3b",
	"blood_pressure_systolic":  "#4e73df",
	"blood_pressure_diastolic": "#36b9cc",
	"blood_glucose":            "#f6c23e",
	"steps":                    "#1cc88a",
	"weight":                   "#858796",
	"sleep_hours":              "#6f42c1",
}

// Binder maps raw numeric series into chart-ready ones.
type Binder struct {
	palette  []string
	semantic map[string]string
}

// NewBinder creates a binder with the default palette and semantic map.
func NewBinder() *Binder {
	return &Binder{palette: defaultPalette, semantic: semanticColors}
}

// Bind sorts the points ascending by time and assigns a color. position is
// the series' index among its siblings and selects the palette color when no
// semantic color exists for the name. Returns ok=false when the series has
// no point greater than zero; such all-zero/placeholder series are excluded
// from the bound output entirely. A series with any positive point is kept
// in full, including its zero and negative points.
func (b *Binder) Bind(name string, points []Point, position int) (Series, bool) {
	hasPositive := false
	for _, p := range points {
		if p.Value > 0 {
			hasPositive = true
			break
		}
	}
	if !hasPositive {
		return Series{}, false
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].T.Before(sorted[j].T) })

	return Series{
		Label:  name,
		Color:  b.colorFor(name, position),
		Points: sorted,
	}, true
}

// BindAll binds every input series, dropping excluded ones. Palette position
// is the input index, so removing a sibling never recolors the rest.
func (b *Binder) BindAll(inputs []NamedSeries) []Series {
	var out []Series
	for i, in := range inputs {
		if s, ok := b.Bind(in.Name, in.Points, i); ok {
			out = append(out, s)
		}
	}
	return out
}

func (b *Binder) colorFor(name string, position int) string {
	if c, ok := b.semantic[name]; ok {
		return c
	}
	if position < 0 {
		position = 0
	}
	return b.palette[position%len(b.palette)]
}

// Severity bands for chart-axis views. Storage uses the 1-10 scale; chart
// axes use the 3-point band. The two never appear in the same chart.
const (
	BandMild     = "Mild"
	BandModerate = "Moderate"
	BandSevere   = "Severe"
)

// SeverityBand converts a canonical 1-10 severity to its 3-point band:
// 1-3 Mild, 4-7 Moderate, 8-10 Severe.
func SeverityBand(severity int) string {
	switch {
	case severity <= 3:
		return BandMild
	case severity <= 7:
		return BandModerate
	default:
		return BandSevere
	}
}

// SeverityBandValue is the numeric chart-axis value of the band (1..3).
func SeverityBandValue(severity int) int {
	switch {
	case severity <= 3:
		return 1
	case severity <= 7:
		return 2
	default:
		return 3
	}
}
