package config_test

import (
	"testing"
	"time"

	"github.com/ricirt/aqi-bulletin/internal/config"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected an error without DATABASE_URL")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/aqi")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ToastDuration != 3*time.Second {
		t.Fatalf("expected 3s toast duration, got %s", cfg.ToastDuration)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected port 8080, got %s", cfg.HTTPPort)
	}
	if len(cfg.DispatchBackoff) != 3 {
		t.Fatalf("expected 3 backoff steps, got %d", len(cfg.DispatchBackoff))
	}
	if cfg.PrintWebhookURL != "" {
		t.Fatalf("expected dispatch disabled by default, got %q", cfg.PrintWebhookURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/aqi")
	t.Setenv("TOAST_DURATION", "5s")
	t.Setenv("ALERT_THRESHOLD", "201")
	t.Setenv("DISPATCH_WORKERS", "not-a-number")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ToastDuration != 5*time.Second {
		t.Fatalf("expected 5s, got %s", cfg.ToastDuration)
	}
	if cfg.AlertThreshold != 201 {
		t.Fatalf("expected 201, got %d", cfg.AlertThreshold)
	}
	if cfg.DispatchWorkers != 2 {
		t.Fatalf("expected invalid value to fall back to 2, got %d", cfg.DispatchWorkers)
	}
}
