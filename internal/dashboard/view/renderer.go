package view

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/swasthya/healthlog-platform/internal/dashboard/chart"
	"github.com/swasthya/healthlog-platform/internal/dashboard/fetch"
	"github.com/swasthya/healthlog-platform/internal/dashboard/group"
	"github.com/swasthya/healthlog-platform/internal/devices"
	"github.com/swasthya/healthlog-platform/internal/family"
	"github.com/swasthya/healthlog-platform/internal/health"
	"github.com/swasthya/healthlog-platform/internal/observability/metrics"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// DataSource is the slice of the fetch client the renderer needs.
type DataSource interface {
	FetchDashboard(ctx context.Context, p fetch.Params) (*health.DashboardPayload, error)
	FetchDevices(ctx context.Context, userID string) ([]devices.WearableDevice, error)
	FetchFamilyDashboard(ctx context.Context, userID string) (*family.DashboardPayload, error)
}

// Renderer runs the fetch-group-bind-render cycle and assembles the
// ViewModel. Renders are idempotent for identical input; a re-entrant
// refresh simply overwrites the previous result (last write wins).
type Renderer struct {
	source   DataSource
	grouper  *group.Grouper
	binder   *chart.Binder
	registry *chart.Registry
	metrics  *metrics.PipelineMetrics
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

// NewRenderer creates a renderer. gatherer may be nil to use the default;
// metrics may be nil.
func NewRenderer(source DataSource, m *metrics.PipelineMetrics, gatherer prometheus.Gatherer, logger *logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Renderer{
		source:   source,
		grouper:  group.New(m, logger),
		binder:   chart.NewBinder(),
		registry: chart.NewRegistry(),
		metrics:  m,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Registry exposes the panel registry, mainly for tests and diagnostics.
func (r *Renderer) Registry() *chart.Registry {
	return r.registry
}

// subResult is one sub-fetch's outcome. Results arrive on a channel in
// whatever order the fetches finish; assembly does not care.
type subResult struct {
	resource  string
	dashboard *health.DashboardPayload
	devices   []devices.WearableDevice
	family    *family.DashboardPayload
	err       error
}

// Render fetches the user's data and produces the ViewModel. Sub-fetches
// run independently; a failed one becomes an error panel while the rest of
// the view renders normally.
func (r *Renderer) Render(ctx context.Context, userID string, p fetch.Params) *ViewModel {
	p.UserID = userID
	results := make(chan subResult, 3)

	go func() {
		payload, err := r.source.FetchDashboard(ctx, p)
		results <- subResult{resource: "health_dashboard", dashboard: payload, err: err}
	}()
	go func() {
		list, err := r.source.FetchDevices(ctx, userID)
		results <- subResult{resource: "wearable_devices", devices: list, err: err}
	}()
	go func() {
		payload, err := r.source.FetchFamilyDashboard(ctx, userID)
		results <- subResult{resource: "family_dashboard", family: payload, err: err}
	}()

	vm := &ViewModel{
		Charts:   []ChartBlock{},
		Symptoms: []SymptomGroup{},
		Risks:    []RiskItem{},
	}
	for i := 0; i < 3; i++ {
		res := <-results
		if res.err != nil {
			vm.ErrorPanels = append(vm.ErrorPanels, errorPanel(res.resource, res.err))
			r.logger.Warn("dashboard sub-fetch failed", "resource", res.resource, "error", res.err)
			continue
		}
		switch res.resource {
		case "health_dashboard":
			r.renderHealth(vm, res.dashboard)
		case "wearable_devices":
			for _, d := range res.devices {
				vm.Devices = append(vm.Devices, DeviceItem{WearableDevice: d})
			}
		case "family_dashboard":
			vm.Family = renderFamily(res.family)
		}
	}

	status := "ok"
	if len(vm.ErrorPanels) > 0 {
		status = "partial"
	}
	r.metrics.ObserveRender("dashboard", status)
	return vm
}

func (r *Renderer) renderHealth(vm *ViewModel, payload *health.DashboardPayload) {
	summary := &SummaryBlock{Summary: payload.HealthSummary}
	if snap := SnapshotFetchLatency(r.gatherer); snap != nil {
		summary.FetchLatency = snap
	}
	vm.Summary = summary

	vm.Charts = r.bindMetricCharts(payload.Metrics)
	if block, ok := r.bindSeverityChart(payload.Symptoms); ok {
		vm.Charts = append(vm.Charts, block)
	}
	vm.Symptoms = groupSymptoms(r.grouper, payload.Symptoms)

	for _, a := range payload.RiskAssessments {
		vm.Risks = append(vm.Risks, RiskItem{Assessment: a, DisplayClass: DisplayClassFor(a.RiskLevel)})
	}
}

// bindMetricCharts buckets samples by metric type (first-seen order), binds
// each bucket and installs the handle in the panel registry. The registry
// releases any handle from the previous render of the same panel.
func (r *Renderer) bindMetricCharts(samples []health.MetricSample) []ChartBlock {
	buckets := group.ByCategory(r.grouper, samples, func(m health.MetricSample) string { return m.MetricType })

	inputs := make([]chart.NamedSeries, 0, len(buckets))
	for _, b := range buckets {
		points := make([]chart.Point, 0, len(b.Records))
		for _, m := range b.Records {
			points = append(points, chart.Point{T: m.RecordedAt, Value: m.Value})
		}
		inputs = append(inputs, chart.NamedSeries{Name: b.Category, Points: points})
	}

	blocks := make([]ChartBlock, 0, len(inputs))
	for i, in := range inputs {
		s, ok := r.binder.Bind(in.Name, in.Points, i)
		if !ok {
			continue
		}
		panelID := "metric:" + in.Name
		r.registry.Bind(panelID, s)
		blocks = append(blocks, ChartBlock{PanelID: panelID, Series: s})
	}
	return blocks
}

// bindSeverityChart plots symptom severity on the 3-point band axis. The
// canonical 1-10 values never reach this chart.
func (r *Renderer) bindSeverityChart(records []health.SymptomRecord) (ChartBlock, bool) {
	points := make([]chart.Point, 0, len(records))
	for _, rec := range records {
		if rec.RecordedAt.IsZero() {
			continue
		}
		points = append(points, chart.Point{
			T:     rec.RecordedAt,
			Value: float64(chart.SeverityBandValue(rec.Severity)),
		})
	}
	s, ok := r.binder.Bind("symptom_severity", points, 0)
	if !ok {
		return ChartBlock{}, false
	}
	panelID := "symptoms:severity"
	r.registry.Bind(panelID, s)
	return ChartBlock{PanelID: panelID, Series: s}, true
}

// groupSymptoms produces the date-grouped list capped to the most recent
// distinct dates, each record badged with its severity band.
func groupSymptoms(g *group.Grouper, records []health.SymptomRecord) []SymptomGroup {
	grouped := group.ByDate(g, records, group.SymptomDate)

	out := make([]SymptomGroup, 0, symptomDateCap)
	for _, bucket := range grouped.Groups {
		if len(out) == symptomDateCap {
			break
		}
		sg := SymptomGroup{Date: bucket.Date}
		for _, rec := range bucket.Records {
			sg.Records = append(sg.Records, SymptomItem{
				SymptomRecord: rec,
				SeverityBand:  chart.SeverityBand(rec.Severity),
			})
		}
		out = append(out, sg)
	}
	return out
}

// renderFamily builds the member cards. recent_symptoms is stripped here for
// anything short of full access even if the payload carried them; the server
// gates too, this is the second lock on the same door.
func renderFamily(payload *family.DashboardPayload) []FamilyCard {
	if payload == nil {
		return nil
	}
	cards := make([]FamilyCard, 0, len(payload.FamilyMembers))
	for _, m := range payload.FamilyMembers {
		if m.AccessLevel != family.AccessFull && m.HealthSummary != nil {
			redacted := *m.HealthSummary
			redacted.RecentSymptoms = nil
			m.HealthSummary = &redacted
		}
		cards = append(cards, FamilyCard{Member: m})
	}
	return cards
}

func errorPanel(resource string, err error) ErrorPanel {
	kind := fetch.KindTransport
	var fe *fetch.FetchError
	if errors.As(err, &fe) {
		kind = fe.Kind
	}
	return ErrorPanel{
		Resource: resource,
		Kind:     kind,
		Message:  "could not load " + resource + " data",
	}
}
