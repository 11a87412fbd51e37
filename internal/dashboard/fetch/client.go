package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/swasthya/healthlog-platform/internal/devices"
	"github.com/swasthya/healthlog-platform/internal/family"
	"github.com/swasthya/healthlog-platform/internal/health"
	"github.com/swasthya/healthlog-platform/internal/observability/metrics"
	"github.com/swasthya/healthlog-platform/internal/risk"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// Params narrows a read. Nil dates are omitted from the query entirely;
// present dates go out as ISO dates.
type Params struct {
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
}

// query renders the date filters. An empty Params produces no query string.
func (p Params) query() string {
	q := url.Values{}
	if p.StartDate != nil {
		q.Set("start_date", p.StartDate.Format(time.DateOnly))
	}
	if p.EndDate != nil {
		q.Set("end_date", p.EndDate.Format(time.DateOnly))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Client issues parameterized requests against the health-data API. Reads
// are idempotent; mutations are not. Every failure is a *FetchError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.PipelineMetrics
	tracer     trace.Tracer
}

// NewClient creates a fetcher. metrics may be nil (observations become
// no-ops).
func NewClient(baseURL string, timeout time.Duration, m *metrics.PipelineMetrics, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    m,
		tracer:     otel.Tracer("dashboard/fetch"),
	}
}

type authTokenKey struct{}

// ContextWithAuth stashes an Authorization header value to forward on every
// request made under this context. The dashboard aggregator reads from the
// same API its callers authenticate against, so their token travels with the
// sub-fetches.
func ContextWithAuth(ctx context.Context, header string) context.Context {
	if header == "" {
		return ctx
	}
	return context.WithValue(ctx, authTokenKey{}, header)
}

func authFromContext(ctx context.Context) (string, bool) {
	header, ok := ctx.Value(authTokenKey{}).(string)
	return header, ok && header != ""
}

// do runs one request and decodes the body into out. resource labels the
// span, metrics and error; path is relative to the base URL.
func (c *Client) do(ctx context.Context, resource, method, path string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, "fetch."+resource, trace.WithAttributes(
		attribute.String("fetch.resource", resource),
		attribute.String("http.method", method),
	))
	defer span.End()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			span.SetStatus(codes.Error, "encode")
			return parseErr(resource, fmt.Errorf("encode request: %w", err))
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		span.SetStatus(codes.Error, "build")
		return transportErr(resource, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if header, ok := authFromContext(ctx); ok {
		req.Header.Set("Authorization", header)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		c.metrics.ObserveFetch(resource, "transport_error", elapsed)
		span.SetStatus(codes.Error, "transport")
		c.logger.Warn("fetch failed", "resource", resource, "error", err)
		return transportErr(resource, err)
	}
	defer func() { _ = resp.Body.Close() }()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.ObserveFetch(resource, "http_error", elapsed)
		span.SetStatus(codes.Error, "status")
		return transportErr(resource, fmt.Errorf("status %d", resp.StatusCode))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.metrics.ObserveFetch(resource, "parse_error", elapsed)
			span.SetStatus(codes.Error, "parse")
			return parseErr(resource, err)
		}
	}

	c.metrics.ObserveFetch(resource, "ok", elapsed)
	return nil
}

// FetchDashboard retrieves the health-dashboard payload.
func (c *Client) FetchDashboard(ctx context.Context, p Params) (*health.DashboardPayload, error) {
	var out health.DashboardPayload
	path := "/api/users/" + url.PathEscape(p.UserID) + "/health-dashboard" + p.query()
	if err := c.do(ctx, "health_dashboard", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchTimeline retrieves the chart-ready symptom timeline.
func (c *Client) FetchTimeline(ctx context.Context, p Params) (*health.Timeline, error) {
	var out health.Timeline
	path := "/api/users/" + url.PathEscape(p.UserID) + "/timeline" + p.query()
	if err := c.do(ctx, "timeline", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchSymptoms retrieves raw symptom records.
func (c *Client) FetchSymptoms(ctx context.Context, p Params) ([]health.SymptomRecord, error) {
	var out []health.SymptomRecord
	path := "/api/users/" + url.PathEscape(p.UserID) + "/symptoms" + p.query()
	if err := c.do(ctx, "symptoms", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchRiskAssessments retrieves the assessment history.
func (c *Client) FetchRiskAssessments(ctx context.Context, userID string) ([]risk.Assessment, error) {
	var out []risk.Assessment
	path := "/api/users/" + url.PathEscape(userID) + "/risk-assessments"
	if err := c.do(ctx, "risk_assessments", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchDevices retrieves the wearable-device list.
func (c *Client) FetchDevices(ctx context.Context, userID string) ([]devices.WearableDevice, error) {
	var out []devices.WearableDevice
	path := "/api/users/" + url.PathEscape(userID) + "/wearable-devices"
	if err := c.do(ctx, "wearable_devices", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchFamilyDashboard retrieves family members and hereditary history.
func (c *Client) FetchFamilyDashboard(ctx context.Context, userID string) (*family.DashboardPayload, error) {
	var out family.DashboardPayload
	path := "/api/users/" + url.PathEscape(userID) + "/family-dashboard"
	if err := c.do(ctx, "family_dashboard", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitMetrics posts a metric batch. Not idempotent.
func (c *Client) SubmitMetrics(ctx context.Context, userID string, batch []health.AddMetricRequest) ([]health.MetricSample, error) {
	var out []health.MetricSample
	path := "/api/users/" + url.PathEscape(userID) + "/health-metrics"
	if err := c.do(ctx, "health_metrics", http.MethodPost, path, batch, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSymptom posts one symptom record. Not idempotent.
func (c *Client) CreateSymptom(ctx context.Context, userID string, req *health.CreateSymptomRequest) (*health.SymptomRecord, error) {
	var out health.SymptomRecord
	path := "/api/users/" + url.PathEscape(userID) + "/symptoms"
	if err := c.do(ctx, "symptoms", http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSymptom removes one symptom record. Deletion is terminal.
func (c *Client) DeleteSymptom(ctx context.Context, userID, recordID string) error {
	path := "/api/users/" + url.PathEscape(userID) + "/symptoms/" + url.PathEscape(recordID)
	return c.do(ctx, "symptoms", http.MethodDelete, path, nil, nil)
}

// PredictRisks requests a fresh scoring round.
func (c *Client) PredictRisks(ctx context.Context, userID string, req *risk.PredictRequest) ([]risk.Assessment, error) {
	var out []risk.Assessment
	path := "/api/users/" + url.PathEscape(userID) + "/predict-health-risks"
	if err := c.do(ctx, "predict_health_risks", http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConnectDevice registers a wearable.
func (c *Client) ConnectDevice(ctx context.Context, userID string, req *devices.ConnectRequest) (*devices.WearableDevice, error) {
	var out devices.WearableDevice
	path := "/api/users/" + url.PathEscape(userID) + "/wearable-devices"
	if err := c.do(ctx, "wearable_devices", http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DisconnectDevice deactivates a wearable.
func (c *Client) DisconnectDevice(ctx context.Context, userID, deviceID string) error {
	path := "/api/users/" + url.PathEscape(userID) + "/wearable-devices/" + url.PathEscape(deviceID)
	return c.do(ctx, "wearable_devices", http.MethodDelete, path, nil, nil)
}
