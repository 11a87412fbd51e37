package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/swasthya/healthlog-platform/internal/api/router"
	"github.com/swasthya/healthlog-platform/internal/auth"
	appconfig "github.com/swasthya/healthlog-platform/internal/config"
	"github.com/swasthya/healthlog-platform/internal/dashboard/fetch"
	"github.com/swasthya/healthlog-platform/internal/dashboard/view"
	"github.com/swasthya/healthlog-platform/internal/devices"
	"github.com/swasthya/healthlog-platform/internal/family"
	"github.com/swasthya/healthlog-platform/internal/health"
	"github.com/swasthya/healthlog-platform/internal/hospitals"
	"github.com/swasthya/healthlog-platform/internal/notify"
	"github.com/swasthya/healthlog-platform/internal/observability/metrics"
	"github.com/swasthya/healthlog-platform/internal/risk"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting healthlog-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Repositories: postgres when DATABASE_URL is set, in-memory otherwise
	// (development and tests).
	var (
		healthRepo health.Repository
		riskRepo   risk.Repository
		deviceRepo devices.Repository
		familyRepo family.Repository
		authRepo   auth.Repository
	)
	var hospitalsHandler *hospitals.Handler
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		healthRepo = health.NewPostgresRepository(pool)
		riskRepo = risk.NewPostgresRepository(pool)
		deviceRepo = devices.NewPostgresRepository(pool)
		familyRepo = family.NewPostgresRepository(pool)
		authRepo = auth.NewPostgresRepository(pool)

		// The hospital directory is read-heavy reference data served
		// through database/sql.
		sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open hospital database", "error", err)
			os.Exit(1)
		}
		defer func() { _ = sqlDB.Close() }()
		hospitalsHandler = hospitals.NewHandler(hospitals.NewRepository(sqlDB), 0, logger)
	} else {
		logger.Warn("DATABASE_URL not set; using in-memory repositories")
		healthRepo = health.NewInMemoryRepository()
		riskRepo = risk.NewInMemoryRepository()
		deviceRepo = devices.NewInMemoryRepository()
		familyRepo = family.NewInMemoryRepository()
		authRepo = auth.NewInMemoryRepository()
	}

	// Redis backs OTP storage, notification history and the dashboard-view
	// cache.
	redisOpts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to ping redis", "error", err, "addr", cfg.RedisAddr)
		os.Exit(1)
	}

	// Metrics registry shared by the pipeline and the /metrics endpoint.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	// Notifications
	hub := notify.NewHub()
	notifyStore := notify.NewRedisStore(redisClient, cfg.NotificationLimit, cfg.NotificationTTL)
	notifyService := notify.NewService(notifyStore, hub, logger)

	// Risk scoring: external service when configured, deterministic stub
	// otherwise.
	var scorer risk.Scorer
	if cfg.RiskScorerURL != "" {
		scorer = risk.NewHTTPScorer(cfg.RiskScorerURL, cfg.RiskScorerTimeout, logger)
	} else {
		logger.Warn("RISK_SCORER_URL not set; using built-in heuristic scorer")
		scorer = risk.NewStubScorer()
	}

	// Auth
	if cfg.AuthJWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET not set; authenticated routes are disabled")
	}
	tokenIssuer := auth.NewTokenIssuer(cfg.AuthJWTSecret, cfg.AuthTokenTTL)
	otpStore := auth.NewRedisOTPStore(redisClient)
	devMode := cfg.Env != "production"

	// Dashboard pipeline: the aggregator reads from the health-data API
	// over HTTP. By default that is this server itself.
	fetchBase := cfg.HealthAPIBaseURL
	if fetchBase == "" {
		fetchBase = cfg.PublicBaseURL
	}
	if fetchBase == "" {
		fetchBase = "http://127.0.0.1:" + cfg.Port
	}
	fetchClient := fetch.NewClient(fetchBase, cfg.FetchTimeout, pipelineMetrics, logger)
	renderer := view.NewRenderer(fetchClient, pipelineMetrics, registry, logger)

	var viewCache *redis.Client
	if cfg.DashboardCacheTTL > 0 {
		viewCache = redisClient
	}

	// Initialize handlers
	authHandler := auth.NewHandler(authRepo, otpStore, tokenIssuer, cfg.OTPTTL, devMode, logger)
	healthHandler := health.NewHandler(healthRepo, riskRepo, logger)
	riskHandler := risk.NewHandler(riskRepo, scorer, logger)
	devicesHandler := devices.NewHandler(deviceRepo, devices.NewSyncer(deviceRepo, healthRepo), logger)
	familyHandler := family.NewHandler(familyRepo, healthRepo, riskRepo, logger)
	notifyHandler := notify.NewHandler(notifyService, hub, logger)
	viewHandler := view.NewHandler(renderer, viewCache, cfg.DashboardCacheTTL, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		AuthHandler:        authHandler,
		HealthHandler:      healthHandler,
		RiskHandler:        riskHandler,
		DevicesHandler:     devicesHandler,
		FamilyHandler:      familyHandler,
		HospitalsHandler:   hospitalsHandler,
		NotifyHandler:      notifyHandler,
		ViewHandler:        viewHandler,
		AuthJWTSecret:      cfg.AuthJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	// No global write timeout: the notification websocket holds its
	// connection open indefinitely.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
