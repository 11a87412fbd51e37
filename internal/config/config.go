package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	LogFormat     string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Signing secret for session JWTs issued after OTP verification.
	AuthJWTSecret string
	AuthTokenTTL  time.Duration
	OTPTTL        time.Duration

	// Base URL of the health-data API consumed by the dashboard pipeline.
	// Defaults to this server's own address so the aggregator is
	// self-hosting out of the box.
	HealthAPIBaseURL string
	FetchTimeout     time.Duration

	// External risk-scoring service. When empty the built-in heuristic
	// scorer stub is used.
	RiskScorerURL     string
	RiskScorerTimeout time.Duration

	// TTL for cached dashboard payloads in redis. Zero disables caching.
	DashboardCacheTTL time.Duration

	// How many notifications are retained per user.
	NotificationLimit int
	NotificationTTL   time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		AuthTokenTTL:  getEnvAsDuration("AUTH_TOKEN_TTL", 24*time.Hour),
		OTPTTL:        getEnvAsDuration("OTP_TTL", 5*time.Minute),

		HealthAPIBaseURL: getEnv("HEALTH_API_BASE_URL", ""),
		FetchTimeout:     getEnvAsDuration("FETCH_TIMEOUT", 10*time.Second),

		RiskScorerURL:     getEnv("RISK_SCORER_URL", ""),
		RiskScorerTimeout: getEnvAsDuration("RISK_SCORER_TIMEOUT", 15*time.Second),

		DashboardCacheTTL: getEnvAsDuration("DASHBOARD_CACHE_TTL", 0),

		NotificationLimit: getEnvAsInt("NOTIFICATION_LIMIT", 50),
		NotificationTTL:   getEnvAsDuration("NOTIFICATION_TTL", 24*time.Hour),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
