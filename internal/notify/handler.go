package notify

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/websocket"

	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// Handler exposes the recent-notification list and the live stream.
type Handler struct {
	service *Service
	hub     *Hub
	logger  *logging.Logger
}

// NewHandler creates a new notifications handler.
func NewHandler(service *Service, hub *Hub, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, hub: hub, logger: logger}
}

// List handles GET /api/users/{id}/notifications.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	notifications, err := h.service.Recent(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list notifications", "error", err, "user_id", userID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
		return
	}
	if notifications == nil {
		notifications = []Notification{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(notifications)
}

// Stream handles GET /api/users/{id}/notifications/ws: pushes each new
// notification as one JSON frame until the client disconnects.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	websocket.Handler(func(ws *websocket.Conn) {
		defer func() { _ = ws.Close() }()

		ch := h.hub.Subscribe(userID)
		defer h.hub.Unsubscribe(userID, ch)
		h.logger.Info("notification stream opened", "user_id", userID)

		done := r.Context().Done()
		for {
			select {
			case n, ok := <-ch:
				if !ok {
					return
				}
				if err := websocket.JSON.Send(ws, n); err != nil {
					h.logger.Info("notification stream closed", "user_id", userID, "error", err)
					return
				}
			case <-done:
				return
			}
		}
	}).ServeHTTP(w, r)
}
