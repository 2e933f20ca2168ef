package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	MigrationsPath string

	// Toasts
	ToastDuration  time.Duration
	ToastRateLimit int // enqueues per second per variant over HTTP

	// Printable-rendering surface. An empty URL disables dispatch.
	PrintWebhookURL string
	PrintTimeout    time.Duration
	PrintRateLimit  int
	DispatchWorkers int
	DispatchBuffer  int
	DispatchBackoff []time.Duration

	// Alerting
	AlertThreshold int
	AlertInterval  time.Duration
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL:    dbURL,
		DBMaxConns:     int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:     int32(getInt("DB_MIN_CONNS", 2)),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),

		ToastDuration:  getDuration("TOAST_DURATION", 3*time.Second),
		ToastRateLimit: getInt("TOAST_RATE_LIMIT", 20),

		PrintWebhookURL: getEnv("PRINT_WEBHOOK_URL", ""),
		PrintTimeout:    getDuration("PRINT_TIMEOUT", 10*time.Second),
		PrintRateLimit:  getInt("PRINT_RATE_LIMIT", 5),
		DispatchWorkers: getInt("DISPATCH_WORKERS", 2),
		DispatchBuffer:  getInt("DISPATCH_BUFFER", 100),
		DispatchBackoff: []time.Duration{
			getDuration("DISPATCH_BACKOFF_1", time.Second),
			getDuration("DISPATCH_BACKOFF_2", 5*time.Second),
			getDuration("DISPATCH_BACKOFF_3", 30*time.Second),
		},

		AlertThreshold: getInt("ALERT_THRESHOLD", 151),
		AlertInterval:  getDuration("ALERT_INTERVAL", time.Minute),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
