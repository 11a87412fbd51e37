package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/swasthya/healthlog-platform/internal/auth"
	"github.com/swasthya/healthlog-platform/internal/health"
	"github.com/swasthya/healthlog-platform/internal/risk"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

const testJWTSecret = "router-test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	healthRepo := health.NewInMemoryRepository()
	riskRepo := risk.NewInMemoryRepository()

	cfg := &Config{
		Logger:        logger,
		HealthHandler: health.NewHandler(healthRepo, riskRepo, logger),
		RiskHandler:   risk.NewHandler(riskRepo, risk.NewStubScorer(), logger),
		AuthJWTSecret: testJWTSecret,
	}

	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterSymptomCatalogIsPublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/symptoms", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterUserRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	for _, route := range []string{
		"/api/users/u1/health-dashboard",
		"/api/users/u1/risk-assessments",
		"/api/users/u1/timeline",
		"/api/user/health",
	} {
		req := httptest.NewRequest(http.MethodGet, route, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401 without a token, got %d", route, rr.Code)
		}
	}
}

func TestRouterRejectsForeignUserID(t *testing.T) {
	router := newTestRouter(t)

	issuer := auth.NewTokenIssuer(testJWTSecret, time.Hour)
	token, _, err := issuer.Issue("u1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/u2/health-dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a mismatched user id, got %d", rr.Code)
	}
}

func TestRouterAuthedDashboardRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	issuer := auth.NewTokenIssuer(testJWTSecret, time.Hour)
	token, _, err := issuer.Issue("u1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	body := `{"metric_type":"heart_rate","value":72,"unit":"bpm"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/u1/health-metrics", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating a metric, got %d: %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/users/u1/health-dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching the dashboard, got %d", rr.Code)
	}

	var payload health.DashboardPayload
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode dashboard: %v", err)
	}
	if len(payload.Metrics) != 1 {
		t.Errorf("expected the recorded metric in the dashboard, got %d metrics", len(payload.Metrics))
	}
}

// Handlers wired as nil must leave their routes unregistered, not panic.
func TestRouterToleratesNilHandlers(t *testing.T) {
	router := New(&Config{Logger: logging.Default(), AuthJWTSecret: testJWTSecret})

	req := httptest.NewRequest(http.MethodPost, "/api/nearby-hospitals", strings.NewReader("{}"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound && rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 404/405 for an unconfigured route, got %d", rr.Code)
	}
}
