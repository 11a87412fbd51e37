package family

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/swasthya/healthlog-platform/internal/health"
	"github.com/swasthya/healthlog-platform/internal/risk"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// recentSymptomDays bounds the recent_symptoms window for full-access cards.
const recentSymptomDays = 30

// HealthReader supplies the relative's profile and symptoms for summaries.
type HealthReader interface {
	GetProfile(ctx context.Context, userID string) (*health.Profile, error)
	ListSymptoms(ctx context.Context, userID string, window health.TimeWindow) ([]health.SymptomRecord, error)
}

// RiskReader supplies the relative's assessment history.
type RiskReader interface {
	ListByUser(ctx context.Context, userID string) ([]risk.Assessment, error)
}

// Handler handles HTTP requests for family relations.
type Handler struct {
	repo   Repository
	heal   HealthReader
	risks  RiskReader
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates a new family handler. healthReader and riskReader may be
// nil; summaries then carry only what the remaining readers provide.
func NewHandler(repo Repository, healthReader HealthReader, riskReader RiskReader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		heal:   healthReader,
		risks:  riskReader,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetDashboard handles GET /api/users/{id}/family-dashboard. Each member card
// carries a health summary assembled at read time and gated by access level.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	members, err := h.repo.ListMembers(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list family members", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	history, err := h.repo.ListHistory(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list family history", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	for i := range members {
		members[i].HealthSummary = h.buildSummary(r.Context(), &members[i])
	}

	buckets := make(map[string][]HistoryEntry)
	for _, e := range history {
		buckets[e.Relationship] = append(buckets[e.Relationship], e)
	}

	payload := DashboardPayload{
		FamilyMembers:       members,
		FamilyHealthHistory: buckets,
	}
	if payload.FamilyMembers == nil {
		payload.FamilyMembers = []Member{}
	}
	writeJSON(w, http.StatusOK, payload)
}

// buildSummary assembles the gated summary. recent_symptoms is populated for
// full access only; the gate lives here so a storage bug can never leak a
// limited relative's symptoms.
func (h *Handler) buildSummary(ctx context.Context, m *Member) *HealthSummary {
	if m.AccessLevel == AccessNone || m.AccessLevel == "" {
		return nil
	}

	summary := &HealthSummary{}
	if h.heal != nil {
		if profile, err := h.heal.GetProfile(ctx, m.RelativeID); err == nil {
			summary.BMI = profile.BMI()
			summary.BMICategory = profile.BMICategory()
		} else if !errors.Is(err, health.ErrProfileNotFound) {
			h.logger.Warn("failed to load relative profile", "error", err, "relative_id", m.RelativeID)
		}
	}
	if h.risks != nil {
		if assessments, err := h.risks.ListByUser(ctx, m.RelativeID); err == nil && len(assessments) > 0 {
			latest := assessments[0]
			summary.LatestRiskAssessment = &latest
		} else if err != nil {
			h.logger.Warn("failed to load relative assessments", "error", err, "relative_id", m.RelativeID)
		}
	}

	if m.AccessLevel == AccessFull && h.heal != nil {
		start := h.now().AddDate(0, 0, -recentSymptomDays)
		window := health.TimeWindow{Start: &start}
		if symptoms, err := h.heal.ListSymptoms(ctx, m.RelativeID, window); err == nil {
			summary.RecentSymptoms = symptoms
		} else {
			h.logger.Warn("failed to load relative symptoms", "error", err, "relative_id", m.RelativeID)
		}
	}
	return summary
}

// AddMember handles POST /api/users/{id}/family-members.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.repo.AddMember(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateRelation):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrMissingRelativeID),
			errors.Is(err, ErrMissingRelationship),
			errors.Is(err, ErrInvalidAccessLevel):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to add family member", "error", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("family member added", "user_id", userID, "relative_id", member.RelativeID, "access_level", member.AccessLevel)
	writeJSON(w, http.StatusCreated, member)
}

// AddHistory handles POST /api/users/{id}/family-history.
func (h *Handler) AddHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req AddHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.repo.AddHistory(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrMissingCondition) || errors.Is(err, ErrMissingRelationship) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to add family history", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
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
