package devices

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// Handler handles HTTP requests for wearable devices.
type Handler struct {
	repo   Repository
	syncer *Syncer
	logger *logging.Logger
}

// NewHandler creates a new devices handler.
func NewHandler(repo Repository, syncer *Syncer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, syncer: syncer, logger: logger}
}

// List handles GET /api/users/{id}/wearable-devices.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	devices, err := h.repo.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list devices", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if devices == nil {
		devices = []WearableDevice{}
	}
	writeJSON(w, http.StatusOK, devices)
}

// Connect handles POST /api/users/{id}/wearable-devices.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	device, err := h.repo.Connect(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrMissingDeviceType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to connect device", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("device connected", "user_id", userID, "device_type", device.DeviceType, "device_id", device.DeviceID)
	writeJSON(w, http.StatusCreated, device)
}

// Disconnect handles DELETE /api/users/{id}/wearable-devices/{deviceID}.
// The row is deactivated, not removed.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	deviceID := chi.URLParam(r, "deviceID")

	if err := h.repo.Disconnect(r.Context(), userID, deviceID); err != nil {
		switch {
		case errors.Is(err, ErrDeviceNotFound):
			writeError(w, http.StatusNotFound, "device not found")
		case errors.Is(err, ErrDeviceInactive):
			writeError(w, http.StatusConflict, "device already disconnected")
		default:
			h.logger.Error("failed to disconnect device", "error", err, "user_id", userID, "device_id", deviceID)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("device disconnected", "user_id", userID, "device_id", deviceID)
	w.WriteHeader(http.StatusNoContent)
}

// Sync handles POST /api/users/{id}/wearable-devices/{deviceID}/sync.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	deviceID := chi.URLParam(r, "deviceID")

	created, err := h.syncer.Sync(r.Context(), userID, deviceID)
	if err != nil {
		switch {
		case errors.Is(err, ErrDeviceNotFound):
			writeError(w, http.StatusNotFound, "device not found")
		case errors.Is(err, ErrDeviceInactive):
			writeError(w, http.StatusConflict, "device is disconnected")
		default:
			h.logger.Error("device sync failed", "error", err, "user_id", userID, "device_id", deviceID)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("device synced", "user_id", userID, "device_id", deviceID, "samples", len(created))
	writeJSON(w, http.StatusCreated, created)
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
