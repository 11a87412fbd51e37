package view

import "github.com/swasthya/healthlog-platform/pkg/logging"

// Binding is one element slot a feature needs in its host view.
type Binding struct {
	Name     string
	Required bool
}

// Schema declares a feature's element bindings up front, replacing ad-hoc
// per-call existence checks.
type Schema struct {
	Feature  string
	Bindings []Binding
}

// Capability is the result of resolving a schema against what the host view
// actually provides. A feature with missing required bindings is disabled;
// it never takes the rest of the page down.
type Capability struct {
	Feature string
	Enabled bool
	Present map[string]bool
	Missing []string
}

// Resolve checks the schema against the available slots.
func (s Schema) Resolve(available map[string]bool, logger *logging.Logger) Capability {
	cap := Capability{
		Feature: s.Feature,
		Enabled: true,
		Present: make(map[string]bool, len(s.Bindings)),
	}
	for _, b := range s.Bindings {
		ok := available[b.Name]
		cap.Present[b.Name] = ok
		if !ok && b.Required {
			cap.Enabled = false
			cap.Missing = append(cap.Missing, b.Name)
		}
	}
	if !cap.Enabled && logger != nil {
		logger.Warn("view feature disabled, required bindings missing",
			"feature", s.Feature, "missing", cap.Missing)
	}
	return cap
}

// Has reports whether an optional binding resolved.
func (c Capability) Has(name string) bool {
	return c.Present[name]
}

// Feature schemas for the dashboard page.
var (
	SchemaSummary = Schema{Feature: "summary", Bindings: []Binding{
		{Name: "summary_panel", Required: true},
		{Name: "latency_badge"},
	}}
	SchemaMetricCharts = Schema{Feature: "metric_charts", Bindings: []Binding{
		{Name: "chart_grid", Required: true},
	}}
	SchemaSymptomList = Schema{Feature: "symptom_list", Bindings: []Binding{
		{Name: "symptom_list", Required: true},
		{Name: "symptom_form"},
	}}
	SchemaRiskList = Schema{Feature: "risk_list", Bindings: []Binding{
		{Name: "risk_panel", Required: true},
		{Name: "predict_button"},
	}}
	SchemaFamilyCards = Schema{Feature: "family_cards", Bindings: []Binding{
		{Name: "family_grid", Required: true},
	}}
	SchemaDeviceList = Schema{Feature: "device_list", Bindings: []Binding{
		{Name: "device_list", Required: true},
		{Name: "connect_form"},
	}}
)
