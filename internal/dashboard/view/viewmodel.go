package view

import (
	"github.com/swasthya/healthlog-platform/internal/dashboard/chart"
	"github.com/swasthya/healthlog-platform/internal/devices"
	"github.com/swasthya/healthlog-platform/internal/family"
	"github.com/swasthya/healthlog-platform/internal/health"
	"github.com/swasthya/healthlog-platform/internal/risk"
)

// symptomDateCap bounds the grouped symptom list to the most recent distinct
// dates.
const symptomDateCap = 7

// Risk display classes. Unknown levels fall back to secondary, never an
// error.
const (
	ClassDark      = "dark"
	ClassDanger    = "danger"
	ClassWarning   = "warning"
	ClassSuccess   = "success"
	ClassSecondary = "secondary"
)

// DisplayClassFor maps a risk level to its display class.
func DisplayClassFor(level string) string {
	switch level {
	case risk.LevelCritical:
		return ClassDark
	case risk.LevelHigh:
		return ClassDanger
	case risk.LevelModerate:
		return ClassWarning
	case risk.LevelLow:
		return ClassSuccess
	default:
		return ClassSecondary
	}
}

// ViewModel is the chart-ready composition of one dashboard render.
type ViewModel struct {
	Summary     *SummaryBlock   `json:"summary,omitempty"`
	Charts      []ChartBlock    `json:"charts"`
	Symptoms    []SymptomGroup  `json:"symptoms"`
	Risks       []RiskItem      `json:"risks"`
	Family      []FamilyCard    `json:"family,omitempty"`
	Devices     []DeviceItem    `json:"devices,omitempty"`
	ErrorPanels []ErrorPanel    `json:"error_panels,omitempty"`
}

// SummaryBlock is the headline numbers plus the fetch-latency snapshot.
type SummaryBlock struct {
	health.Summary
	FetchLatency *LatencySnapshot `json:"fetch_latency,omitempty"`
}

// ChartBlock pairs a panel id with its bound series.
type ChartBlock struct {
	PanelID string       `json:"panel_id"`
	Series  chart.Series `json:"series"`
}

// SymptomGroup is one date bucket of the capped symptom list.
type SymptomGroup struct {
	Date    string        `json:"date"`
	Records []SymptomItem `json:"records"`
}

// SymptomItem decorates a record with its 3-point severity band for list
// badges.
type SymptomItem struct {
	health.SymptomRecord
	SeverityBand string `json:"severity_band"`
}

// RiskItem decorates an assessment with its display class.
type RiskItem struct {
	risk.Assessment
	DisplayClass string `json:"display_class"`
}

// FamilyCard is the redacted member card. RecentSymptoms is stripped here
// for anything short of full access, whatever the payload contained.
type FamilyCard struct {
	family.Member
}

// DeviceItem is one wearable row.
type DeviceItem struct {
	devices.WearableDevice
}

// ErrorPanel replaces the content of a failed sub-fetch. The rest of the
// view renders normally.
type ErrorPanel struct {
	Resource string `json:"resource"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}
