package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/swasthya/healthlog-platform/internal/http/middleware"
	"github.com/swasthya/healthlog-platform/internal/risk"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// RiskReader supplies the risk-assessment slice of the dashboard payload.
type RiskReader interface {
	ListByUser(ctx context.Context, userID string) ([]risk.Assessment, error)
}

// Handler handles HTTP requests for health metrics, symptoms and profiles.
type Handler struct {
	repo   Repository
	risks  RiskReader
	logger *logging.Logger
}

// NewHandler creates a new health handler. risks may be nil; the dashboard
// payload then carries an empty assessment list.
func NewHandler(repo Repository, risks RiskReader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, risks: risks, logger: logger}
}

// DashboardPayload is the response of GET /api/users/{id}/health-dashboard.
type DashboardPayload struct {
	HealthSummary   Summary           `json:"health_summary"`
	Metrics         []MetricSample    `json:"metrics"`
	Symptoms        []SymptomRecord   `json:"symptoms"`
	RiskAssessments []risk.Assessment `json:"risk_assessments"`
}

// GetDashboard handles GET /api/users/{id}/health-dashboard.
// Query params: start_date, end_date (ISO dates, both optional).
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics, err := h.repo.ListMetrics(r.Context(), userID, window)
	if err != nil {
		h.logger.Error("failed to list metrics", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	symptoms, err := h.repo.ListSymptoms(r.Context(), userID, window)
	if err != nil {
		h.logger.Error("failed to list symptoms", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var assessments []risk.Assessment
	if h.risks != nil {
		if assessments, err = h.risks.ListByUser(r.Context(), userID); err != nil {
			// The dashboard degrades rather than failing wholesale.
			h.logger.Warn("failed to list risk assessments", "error", err, "user_id", userID)
			assessments = nil
		}
	}

	payload := DashboardPayload{
		HealthSummary:   h.buildSummary(r.Context(), userID, metrics, symptoms),
		Metrics:         orEmptyMetrics(metrics),
		Symptoms:        orEmptySymptoms(symptoms),
		RiskAssessments: assessments,
	}
	if payload.RiskAssessments == nil {
		payload.RiskAssessments = []risk.Assessment{}
	}

	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) buildSummary(ctx context.Context, userID string, metrics []MetricSample, symptoms []SymptomRecord) Summary {
	summary := Summary{
		MetricCount:  len(metrics),
		SymptomCount: len(symptoms),
	}
	var last time.Time
	for _, m := range metrics {
		if m.RecordedAt.After(last) {
			last = m.RecordedAt
		}
	}
	for _, s := range symptoms {
		if s.RecordedAt.After(last) {
			last = s.RecordedAt
		}
	}
	if !last.IsZero() {
		summary.LastRecordedAt = &last
	}

	if profile, err := h.repo.GetProfile(ctx, userID); err == nil {
		summary.BMI = profile.BMI()
		summary.BMICategory = profile.BMICategory()
	} else if !errors.Is(err, ErrProfileNotFound) {
		h.logger.Warn("failed to load profile for summary", "error", err, "user_id", userID)
	}
	return summary
}

// AddMetrics handles POST /api/users/{id}/health-metrics. The body is either
// a single metric object or a JSON array (batch device sync).
func (h *Handler) AddMetrics(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var reqs []AddMetricRequest
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &reqs); err != nil {
			writeError(w, http.StatusBadRequest, "invalid metric batch")
			return
		}
	} else {
		var single AddMetricRequest
		if err := json.Unmarshal(raw, &single); err != nil {
			writeError(w, http.StatusBadRequest, "invalid metric object")
			return
		}
		reqs = []AddMetricRequest{single}
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "empty metric batch")
		return
	}

	created, err := h.repo.AddMetrics(r.Context(), userID, reqs)
	if err != nil {
		if isValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to add metrics", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("metrics recorded", "user_id", userID, "count", len(created))
	writeJSON(w, http.StatusCreated, created)
}

// ListSymptoms handles GET /api/users/{id}/symptoms.
func (h *Handler) ListSymptoms(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.repo.ListSymptoms(r.Context(), userID, window)
	if err != nil {
		h.logger.Error("failed to list symptoms", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, orEmptySymptoms(records))
}

// CreateSymptom handles POST /api/users/{id}/symptoms.
func (h *Handler) CreateSymptom(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req CreateSymptomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.repo.CreateSymptom(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error("failed to create symptom", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("symptom recorded", "user_id", userID, "symptom", record.SymptomName, "severity", record.Severity)
	writeJSON(w, http.StatusCreated, record)
}

// DeleteSymptom handles DELETE /api/users/{id}/symptoms/{recordID}.
// Deletion is terminal and immediate.
func (h *Handler) DeleteSymptom(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	recordID := chi.URLParam(r, "recordID")

	if err := h.repo.DeleteSymptom(r.Context(), userID, recordID); err != nil {
		if errors.Is(err, ErrSymptomNotFound) {
			writeError(w, http.StatusNotFound, "symptom record not found")
			return
		}
		h.logger.Error("failed to delete symptom", "error", err, "user_id", userID, "record_id", recordID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("symptom deleted", "user_id", userID, "record_id", recordID)
	w.WriteHeader(http.StatusNoContent)
}

// ListCatalog handles GET /api/symptoms.
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.repo.ListCatalog(r.Context())
	if err != nil {
		h.logger.Error("failed to list symptom catalog", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// GetTimeline handles GET /api/users/{id}/timeline.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.repo.ListSymptoms(r.Context(), userID, window)
	if err != nil {
		h.logger.Error("failed to list symptoms for timeline", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	catalog, err := h.repo.ListCatalog(r.Context())
	if err != nil {
		h.logger.Warn("failed to load catalog for timeline", "error", err)
	}

	timeline := BuildTimeline(records, catalog)
	if timeline.Labels == nil {
		timeline.Labels = []string{}
	}
	if timeline.Datasets == nil {
		timeline.Datasets = []TimelineDataset{}
	}
	writeJSON(w, http.StatusOK, timeline)
}

// UserHealthPayload is the response of GET /api/user/health (the simplified
// surface that reads the user id from the session token).
type UserHealthPayload struct {
	Name       string          `json:"name"`
	HealthData *Profile        `json:"health_data"`
	Symptoms   []SymptomRecord `json:"symptoms"`
	Metrics    []MetricSample  `json:"metrics"`
}

// GetUserHealth handles GET /api/user/health.
func (h *Handler) GetUserHealth(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	profile, err := h.repo.GetProfile(r.Context(), userID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		h.logger.Error("failed to load profile", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	symptoms, err := h.repo.ListSymptoms(r.Context(), userID, TimeWindow{})
	if err != nil {
		h.logger.Error("failed to list symptoms", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	metrics, err := h.repo.ListMetrics(r.Context(), userID, TimeWindow{})
	if err != nil {
		h.logger.Error("failed to list metrics", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	payload := UserHealthPayload{
		HealthData: profile,
		Symptoms:   orEmptySymptoms(symptoms),
		Metrics:    orEmptyMetrics(metrics),
	}
	if profile != nil {
		payload.Name = profile.Name
	}
	writeJSON(w, http.StatusOK, payload)
}

// UpdateUserHealth handles POST /api/user/health.
func (h *Handler) UpdateUserHealth(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.repo.UpsertProfile(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error("failed to update profile", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// simpleSymptomRequest is the body of POST /api/user/symptom. This surface
// uses the 3-point severity scale; values are converted to the canonical
// 1-10 scale at band midpoints before storage.
type simpleSymptomRequest struct {
	Symptom  string `json:"symptom"`
	Severity int    `json:"severity"`
	Notes    string `json:"notes,omitempty"`
	Datetime string `json:"datetime,omitempty"`
}

// CreateSimpleSymptom handles POST /api/user/symptom.
func (h *Handler) CreateSimpleSymptom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req simpleSymptomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Severity < 1 || req.Severity > 3 {
		writeError(w, http.StatusBadRequest, "severity must be 1 (mild), 2 (moderate) or 3 (severe)")
		return
	}

	var recordedAt time.Time
	if req.Datetime != "" {
		parsed, err := time.Parse(time.RFC3339, req.Datetime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "datetime must be RFC3339")
			return
		}
		recordedAt = parsed
	}

	create := CreateSymptomRequest{
		SymptomName: req.Symptom,
		Severity:    canonicalSeverity(req.Severity),
		Notes:       req.Notes,
		RecordedAt:  recordedAt,
	}
	if err := create.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.repo.CreateSymptom(r.Context(), userID, &create)
	if err != nil {
		h.logger.Error("failed to create symptom", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// canonicalSeverity maps the 3-point scale onto band midpoints of the
// canonical 1-10 scale: mild=2, moderate=5, severe=9.
func canonicalSeverity(threePoint int) int {
	switch threePoint {
	case 1:
		return 2
	case 2:
		return 5
	default:
		return 9
	}
}

// parseWindow reads optional start_date/end_date ISO date params.
func parseWindow(r *http.Request) (TimeWindow, error) {
	var window TimeWindow
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("start_date")); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return window, errors.New("start_date must be an ISO date (YYYY-MM-DD)")
		}
		window.Start = &t
	}
	if raw := strings.TrimSpace(q.Get("end_date")); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return window, errors.New("end_date must be an ISO date (YYYY-MM-DD)")
		}
		window.End = &t
	}
	if err := window.Validate(); err != nil {
		return window, err
	}
	return window, nil
}

func isValidation(err error) bool {
	return errors.Is(err, ErrMissingMetricType) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrInvalidSeverity) ||
		errors.Is(err, ErrMissingSymptom) ||
		errors.Is(err, ErrInvalidDateRange)
}

func orEmptyMetrics(in []MetricSample) []MetricSample {
	if in == nil {
		return []MetricSample{}
	}
	return in
}

func orEmptySymptoms(in []SymptomRecord) []SymptomRecord {
	if in == nil {
		return []SymptomRecord{}
	}
	return in
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
