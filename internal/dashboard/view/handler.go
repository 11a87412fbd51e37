package view

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/swasthya/healthlog-platform/internal/dashboard/fetch"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// Handler serves the composed dashboard view.
type Handler struct {
	renderer *Renderer
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *logging.Logger
}

// NewHandler creates the view handler. cache may be nil or cacheTTL zero to
// disable payload caching.
func NewHandler(renderer *Renderer, cache *redis.Client, cacheTTL time.Duration, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{renderer: renderer, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// GetDashboardView handles GET /api/users/{id}/dashboard-view: runs the full
// fetch-group-bind-render cycle and returns the ViewModel. Partial failures
// surface as error panels inside the payload, not as an HTTP error.
func (h *Handler) GetDashboardView(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	params, err := parseParams(r)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	key := cacheKey(userID, params)
	if cached, ok := h.readCache(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		_, _ = w.Write(cached)
		return
	}

	ctx := fetch.ContextWithAuth(r.Context(), r.Header.Get("Authorization"))
	vm := h.renderer.Render(ctx, userID, params)

	payload, err := json.Marshal(vm)
	if err != nil {
		h.logger.Error("failed to encode view model", "error", err, "user_id", userID)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	// Only fully successful renders are worth caching.
	if len(vm.ErrorPanels) == 0 {
		h.writeCache(r.Context(), key, payload)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

func parseParams(r *http.Request) (fetch.Params, error) {
	var p fetch.Params
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("start_date")); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return p, errors.New("start_date must be an ISO date (YYYY-MM-DD)")
		}
		p.StartDate = &t
	}
	if raw := strings.TrimSpace(q.Get("end_date")); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return p, errors.New("end_date must be an ISO date (YYYY-MM-DD)")
		}
		p.EndDate = &t
	}
	if p.StartDate != nil && p.EndDate != nil && p.StartDate.After(*p.EndDate) {
		return p, errors.New("start_date must not be after end_date")
	}
	return p, nil
}

func cacheKey(userID string, p fetch.Params) string {
	var b strings.Builder
	b.WriteString("dashboard_view:")
	b.WriteString(userID)
	if p.StartDate != nil {
		b.WriteString(":s=" + p.StartDate.Format(time.DateOnly))
	}
	if p.EndDate != nil {
		b.WriteString(":e=" + p.EndDate.Format(time.DateOnly))
	}
	return b.String()
}

func (h *Handler) readCache(ctx context.Context, key string) ([]byte, bool) {
	if h.cache == nil || h.cacheTTL <= 0 {
		return nil, false
	}
	raw, err := h.cache.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		h.logger.Warn("view cache read failed", "error", err)
		return nil, false
	}
	return raw, true
}

func (h *Handler) writeCache(ctx context.Context, key string, payload []byte) {
	if h.cache == nil || h.cacheTTL <= 0 {
		return
	}
	if err := h.cache.Set(ctx, key, payload, h.cacheTTL).Err(); err != nil {
		h.logger.Warn("view cache write failed", "error", err)
	}
}
