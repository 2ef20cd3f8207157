// Package config loads and validates application configuration from
// environment variables. Shared by cmd/api and cmd/reminderctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the reminder backend.
type Config struct {
	// Port is the TCP port the relay API listens on. Defaults to "8080".
	Port string

	// StorageBackend selects the store adapters: "memory" or "postgres".
	// Defaults to "memory".
	StorageBackend string

	// DatabaseURL is the Postgres connection string. Required when
	// StorageBackend is "postgres".
	DatabaseURL string

	// FCMServerKey authenticates against the push gateway. Required when
	// StorageBackend is "postgres": the in-memory gateway reports every send
	// as delivered, and against durable stores that would ledger reminders
	// that never reached a device. With the memory backend an empty key
	// selects the in-memory gateway for local development.
	FCMServerKey string

	// FCMSendURL overrides the gateway endpoint (used in tests/staging).
	FCMSendURL string

	// FCMRateLimitPerMin bounds outbound gateway sends. Defaults to 600.
	FCMRateLimitPerMin int

	// SweepInterval is how often the reminder sweep runs. Defaults to 1m.
	SweepInterval time.Duration

	// SweepConcurrency bounds concurrent recipient pipelines per sweep.
	// Defaults to 8.
	SweepConcurrency int

	// LogLevel controls the minimum log level: debug, info, warn, error.
	// Defaults to "info".
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	CORSOrigins []string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		StorageBackend:     getEnv("STORAGE_BACKEND", "memory"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FCMServerKey:       os.Getenv("FCM_SERVER_KEY"),
		FCMSendURL:         os.Getenv("FCM_SEND_URL"),
		FCMRateLimitPerMin: getEnvInt("FCM_RATE_LIMIT_PER_MIN", 600),
		SweepInterval:      getEnvDuration("SWEEP_INTERVAL", time.Minute),
		SweepConcurrency:   getEnvInt("SWEEP_CONCURRENCY", 8),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "*")),
	}

	switch cfg.StorageBackend {
	case "memory", "postgres":
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_BACKEND %q: must be memory or postgres", cfg.StorageBackend)
	}

	var missing []string
	if cfg.StorageBackend == "postgres" {
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if cfg.FCMServerKey == "" {
			missing = append(missing, "FCM_SERVER_KEY")
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if cfg.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	if cfg.SweepConcurrency < 1 {
		return Config{}, fmt.Errorf("SWEEP_CONCURRENCY must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
