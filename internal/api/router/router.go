package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/swasthya/healthlog-platform/internal/auth"
	"github.com/swasthya/healthlog-platform/internal/dashboard/view"
	"github.com/swasthya/healthlog-platform/internal/devices"
	"github.com/swasthya/healthlog-platform/internal/family"
	"github.com/swasthya/healthlog-platform/internal/health"
	"github.com/swasthya/healthlog-platform/internal/hospitals"
	httpmiddleware "github.com/swasthya/healthlog-platform/internal/http/middleware"
	"github.com/swasthya/healthlog-platform/internal/notify"
	"github.com/swasthya/healthlog-platform/internal/risk"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger           *logging.Logger
	AuthHandler      *auth.Handler
	HealthHandler    *health.Handler
	RiskHandler      *risk.Handler
	DevicesHandler   *devices.Handler
	FamilyHandler    *family.Handler
	HospitalsHandler *hospitals.Handler
	NotifyHandler    *notify.Handler
	ViewHandler      *view.Handler

	// Signing secret for the session JWTs issued after OTP verification.
	// Empty disables the authenticated route group entirely.
	AuthJWTSecret string

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (registration, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AuthHandler != nil {
			public.Post("/api/register", cfg.AuthHandler.Register)
			public.Post("/api/verify", cfg.AuthHandler.Verify)
			public.Post("/api/login", cfg.AuthHandler.Login)
		}
		// The symptom catalog has no per-user data.
		if cfg.HealthHandler != nil {
			public.Get("/api/symptoms", cfg.HealthHandler.ListCatalog)
		}
		if cfg.HospitalsHandler != nil {
			public.Post("/api/nearby-hospitals", cfg.HospitalsHandler.Nearby)
		}
	})

	// User-scoped routes (protected by session JWT; {id} must match the token subject)
	if cfg.AuthJWTSecret != "" {
		r.Route("/api/users/{id}", func(user chi.Router) {
			user.Use(httpmiddleware.UserJWT(cfg.AuthJWTSecret))
			user.Use(httpmiddleware.RequireSelf)

			if cfg.HealthHandler != nil {
				user.Get("/health-dashboard", cfg.HealthHandler.GetDashboard)
				user.Post("/health-metrics", cfg.HealthHandler.AddMetrics)
				user.Get("/timeline", cfg.HealthHandler.GetTimeline)
				user.Route("/symptoms", func(s chi.Router) {
					s.Get("/", cfg.HealthHandler.ListSymptoms)
					s.Post("/", cfg.HealthHandler.CreateSymptom)
					s.Delete("/{recordID}", cfg.HealthHandler.DeleteSymptom)
				})
			}
			if cfg.RiskHandler != nil {
				user.Get("/risk-assessments", cfg.RiskHandler.ListAssessments)
				user.Post("/predict-health-risks", cfg.RiskHandler.Predict)
			}
			if cfg.DevicesHandler != nil {
				user.Route("/wearable-devices", func(d chi.Router) {
					d.Get("/", cfg.DevicesHandler.List)
					d.Post("/", cfg.DevicesHandler.Connect)
					d.Delete("/{deviceID}", cfg.DevicesHandler.Disconnect)
					d.Post("/{deviceID}/sync", cfg.DevicesHandler.Sync)
				})
			}
			if cfg.FamilyHandler != nil {
				user.Get("/family-dashboard", cfg.FamilyHandler.GetDashboard)
				user.Post("/family-members", cfg.FamilyHandler.AddMember)
				user.Post("/family-history", cfg.FamilyHandler.AddHistory)
			}
			if cfg.ViewHandler != nil {
				user.Get("/dashboard-view", cfg.ViewHandler.GetDashboardView)
			}
			if cfg.NotifyHandler != nil {
				user.Get("/notifications", cfg.NotifyHandler.List)
				user.Get("/notifications/ws", cfg.NotifyHandler.Stream)
			}
		})

		// Simplified surface: the authenticated user is implied by the token,
		// not the path.
		if cfg.HealthHandler != nil {
			r.Group(func(simple chi.Router) {
				simple.Use(httpmiddleware.UserJWT(cfg.AuthJWTSecret))
				simple.Get("/api/user/health", cfg.HealthHandler.GetUserHealth)
				simple.Post("/api/user/health", cfg.HealthHandler.UpdateUserHealth)
				simple.Post("/api/user/symptom", cfg.HealthHandler.CreateSimpleSymptom)
			})
		}
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
