package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swasthya/healthlog-platform/internal/dashboard/fetch"
	"github.com/swasthya/healthlog-platform/internal/devices"
	"github.com/swasthya/healthlog-platform/internal/family"
	"github.com/swasthya/healthlog-platform/internal/health"
	"github.com/swasthya/healthlog-platform/internal/risk"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

type stubSource struct {
	dashboard    *health.DashboardPayload
	dashboardErr error
	devices      []devices.WearableDevice
	devicesErr   error
	family       *family.DashboardPayload
	familyErr    error
	delay        time.Duration
}

func (s *stubSource) FetchDashboard(ctx context.Context, p fetch.Params) (*health.DashboardPayload, error) {
	time.Sleep(s.delay)
	return s.dashboard, s.dashboardErr
}

func (s *stubSource) FetchDevices(ctx context.Context, userID string) ([]devices.WearableDevice, error) {
	return s.devices, s.devicesErr
}

func (s *stubSource) FetchFamilyDashboard(ctx context.Context, userID string) (*family.DashboardPayload, error) {
	return s.family, s.familyErr
}

func at(d int) time.Time {
	return time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC)
}

func emptyDashboard() *health.DashboardPayload {
	return &health.DashboardPayload{
		Metrics:         []health.MetricSample{},
		Symptoms:        []health.SymptomRecord{},
		RiskAssessments: []risk.Assessment{},
	}
}

func newTestRenderer(source DataSource) *Renderer {
	return NewRenderer(source, nil, nil, logging.New("error"))
}

func TestRenderBindsMetricCharts(t *testing.T) {
	source := &stubSource{
		dashboard: &health.DashboardPayload{
			Metrics: []health.MetricSample{
				{MetricType: "heart_rate", Value: 72, RecordedAt: at(1)},
				{MetricType: "heart_rate", Value: 80, RecordedAt: at(2)},
			},
		},
		family: &family.DashboardPayload{},
	}
	r := newTestRenderer(source)

	vm := r.Render(context.Background(), "user-1", fetch.Params{})
	require.Len(t, vm.Charts, 1)

	series := vm.Charts[0].Series
	assert.Equal(t, "heart_rate", series.Label)
	require.Len(t, series.Points, 2)
	assert.Equal(t, 72.0, series.Points[0].Value)
	assert.Equal(t, 80.0, series.Points[1].Value)

	// Reversed input yields the identical bound series.
	source.dashboard.Metrics[0], source.dashboard.Metrics[1] = source.dashboard.Metrics[1], source.dashboard.Metrics[0]
	again := r.Render(context.Background(), "user-1", fetch.Params{})
	require.Len(t, again.Charts, 1)
	assert.Equal(t, series.Points, again.Charts[0].Series.Points)
}

func TestRenderReleasesPriorPanelHandles(t *testing.T) {
	source := &stubSource{
		dashboard: &health.DashboardPayload{
			Metrics: []health.MetricSample{{MetricType: "steps", Value: 4000, RecordedAt: at(1)}},
		},
		family: &family.DashboardPayload{},
	}
	r := newTestRenderer(source)

	r.Render(context.Background(), "user-1", fetch.Params{})
	first, ok := r.Registry().Get("metric:steps")
	require.True(t, ok)

	r.Render(context.Background(), "user-1", fetch.Params{})
	assert.True(t, first.Released(), "rebinding a panel releases the prior handle")
	assert.Equal(t, 1, r.Registry().Len())
}

func TestRenderSymptomListCappedToSevenDates(t *testing.T) {
	var records []health.SymptomRecord
	for d := 1; d <= 10; d++ {
		records = append(records, health.SymptomRecord{
			ID: string(rune('a' + d)), SymptomName: "Headache", Severity: 5, RecordedAt: at(d),
		})
	}
	source := &stubSource{
		dashboard: &health.DashboardPayload{Symptoms: records},
		family:    &family.DashboardPayload{},
	}

	vm := newTestRenderer(source).Render(context.Background(), "user-1", fetch.Params{})
	require.Len(t, vm.Symptoms, 7, "capped to the 7 most recent distinct dates")
	assert.Equal(t, "2024-01-10", vm.Symptoms[0].Date)
	assert.Equal(t, "2024-01-04", vm.Symptoms[6].Date)
	assert.Equal(t, "Moderate", vm.Symptoms[0].Records[0].SeverityBand)
}

func TestRenderRiskDisplayClasses(t *testing.T) {
	source := &stubSource{
		dashboard: &health.DashboardPayload{
			RiskAssessments: []risk.Assessment{
				{RiskLevel: "critical"},
				{RiskLevel: "high"},
				{RiskLevel: "moderate"},
				{RiskLevel: "low"},
				{RiskLevel: "experimental"},
			},
		},
		family: &family.DashboardPayload{},
	}

	vm := newTestRenderer(source).Render(context.Background(), "user-1", fetch.Params{})
	require.Len(t, vm.Risks, 5)
	want := []string{ClassDark, ClassDanger, ClassWarning, ClassSuccess, ClassSecondary}
	for i, cls := range want {
		assert.Equal(t, cls, vm.Risks[i].DisplayClass)
	}
}

func TestRenderRedactsFamilySymptoms(t *testing.T) {
	leaked := []health.SymptomRecord{{ID: "s1", SymptomName: "Headache", Severity: 4}}
	source := &stubSource{
		dashboard: emptyDashboard(),
		family: &family.DashboardPayload{
			FamilyMembers: []family.Member{
				{RelativeID: "rel-full", AccessLevel: family.AccessFull,
					HealthSummary: &family.HealthSummary{RecentSymptoms: leaked}},
				{RelativeID: "rel-limited", AccessLevel: family.AccessLimited,
					HealthSummary: &family.HealthSummary{BMI: 22.5, RecentSymptoms: leaked}},
			},
		},
	}

	vm := newTestRenderer(source).Render(context.Background(), "user-1", fetch.Params{})
	require.Len(t, vm.Family, 2)

	assert.NotEmpty(t, vm.Family[0].HealthSummary.RecentSymptoms)
	// Even when the payload leaks symptoms, the renderer strips them.
	assert.Empty(t, vm.Family[1].HealthSummary.RecentSymptoms)
	assert.Equal(t, 22.5, vm.Family[1].HealthSummary.BMI, "redaction keeps the rest of the summary")
}

func TestRenderPartialFailureProducesErrorPanel(t *testing.T) {
	source := &stubSource{
		dashboard: emptyDashboard(),
		familyErr: &fetch.FetchError{Resource: "family_dashboard", Kind: fetch.KindTransport},
		devices:   []devices.WearableDevice{{ID: "d1", DeviceType: "smartwatch", IsActive: true}},
	}

	vm := newTestRenderer(source).Render(context.Background(), "user-1", fetch.Params{})
	require.Len(t, vm.ErrorPanels, 1)
	assert.Equal(t, "family_dashboard", vm.ErrorPanels[0].Resource)
	assert.Equal(t, fetch.KindTransport, vm.ErrorPanels[0].Kind)

	// The rest of the view still renders.
	assert.NotNil(t, vm.Summary)
	assert.Len(t, vm.Devices, 1)
}

func TestRenderToleratesSlowSubFetch(t *testing.T) {
	source := &stubSource{
		dashboard: emptyDashboard(),
		family:    &family.DashboardPayload{},
		devices:   []devices.WearableDevice{{ID: "d1"}},
		delay:     50 * time.Millisecond, // dashboard arrives last
	}

	vm := newTestRenderer(source).Render(context.Background(), "user-1", fetch.Params{})
	assert.NotNil(t, vm.Summary, "out-of-order sub-fetch completion must not lose data")
	assert.Len(t, vm.Devices, 1)
}
