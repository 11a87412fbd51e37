package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.OTPTTL != 5*time.Minute {
		t.Errorf("OTPTTL = %v, want 5m", cfg.OTPTTL)
	}
	if cfg.NotificationLimit != 50 {
		t.Errorf("NotificationLimit = %d, want 50", cfg.NotificationLimit)
	}
	if cfg.DashboardCacheTTL != 0 {
		t.Errorf("DashboardCacheTTL = %v, want 0 (disabled)", cfg.DashboardCacheTTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("NOTIFICATION_LIMIT", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %v, want 3s", cfg.FetchTimeout)
	}
	if !cfg.RedisTLS {
		t.Error("RedisTLS should be true")
	}
	if cfg.NotificationLimit != 10 {
		t.Errorf("NotificationLimit = %d, want 10", cfg.NotificationLimit)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "not-a-duration")
	t.Setenv("NOTIFICATION_LIMIT", "many")

	cfg := Load()

	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want default 10s", cfg.FetchTimeout)
	}
	if cfg.NotificationLimit != 50 {
		t.Errorf("NotificationLimit = %d, want default 50", cfg.NotificationLimit)
	}
}
