package hospitals

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// Handler handles the nearby-hospital lookup.
type Handler struct {
	repo   *Repository
	limit  int
	logger *logging.Logger
}

// NewHandler creates a new hospitals handler.
func NewHandler(repo *Repository, limit int, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, limit: limit, logger: logger}
}

type nearbyRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Nearby handles POST /api/nearby-hospitals.
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	var req nearbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := h.repo.Nearby(r.Context(), req.Latitude, req.Longitude, h.limit)
	if err != nil {
		if errors.Is(err, ErrInvalidCoordinates) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("hospital lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if results == nil {
		results = []Hospital{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(results)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
