package risk

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// Handler handles HTTP requests for risk assessments.
type Handler struct {
	repo   Repository
	scorer Scorer
	logger *logging.Logger
}

// NewHandler creates a new risk handler.
func NewHandler(repo Repository, scorer Scorer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, scorer: scorer, logger: logger}
}

// ListAssessments handles GET /api/users/{id}/risk-assessments.
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		http.Error(w, `{"error":"user id required"}`, http.StatusBadRequest)
		return
	}

	assessments, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list risk assessments", "error", err, "user_id", userID)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	if assessments == nil {
		assessments = []Assessment{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(assessments)
}

// Predict handles POST /api/users/{id}/predict-health-risks. The scoring
// model is external; this endpoint persists whatever it returns and echoes
// the created assessments.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		http.Error(w, `{"error":"user id required"}`, http.StatusBadRequest)
		return
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	assessments, err := h.scorer.Score(r.Context(), userID, req.AdditionalFactors)
	if err != nil {
		h.logger.Error("risk scoring failed", "error", err, "user_id", userID)
		http.Error(w, `{"error":"scoring service unavailable"}`, http.StatusBadGateway)
		return
	}

	if err := h.repo.Save(r.Context(), assessments); err != nil {
		h.logger.Error("failed to save risk assessments", "error", err, "user_id", userID)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("risk assessments created", "user_id", userID, "count", len(assessments))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(assessments)
}
