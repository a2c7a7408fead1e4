package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultIsValid verifies the built-in configuration passes validation
func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}
}

// TestLoadFileOverlay verifies TOML values override defaults and untouched keys keep their defaults
func TestLoadFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hungerium.toml")
	body := `
[sim]
tick_rate = 30

[sim.boss]
unlock_level = 5

[server]
port = 8080
shutdown_timeout = "2s"

[logging]
format = "json"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Sim.TickRate != 30 {
		t.Errorf("Expected tick rate 30, got %d", cfg.Sim.TickRate)
	}
	if cfg.Sim.Boss.UnlockLevel != 5 {
		t.Errorf("Expected unlock level 5, got %d", cfg.Sim.Boss.UnlockLevel)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("Expected shutdown timeout 2s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected json format, got %s", cfg.Logging.Format)
	}
	if cfg.Sim.CollisionTolerance != 0.64 {
		t.Errorf("Expected default tolerance 0.64 to survive overlay, got %v", cfg.Sim.CollisionTolerance)
	}
}

// TestLoadMissingFile verifies read errors carry the path
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !strings.Contains(err.Error(), "nope.toml") {
		t.Errorf("Expected error to mention path, got %v", err)
	}
}

// TestEnvOverrides verifies environment variables take precedence over file and defaults
func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SIM_MOBILE_PROFILE", "true")
	t.Setenv("DATABASE_URL", "postgres://x@y/z")
	t.Setenv("MAX_SESSIONS", "7")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999, got %d", cfg.Server.Port)
	}
	if !cfg.Sim.Spawn.MobileProfile {
		t.Error("Expected mobile profile enabled")
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.DSN != "postgres://x@y/z" {
		t.Errorf("Expected postgres storage from DATABASE_URL, got %s %s", cfg.Storage.Driver, cfg.Storage.DSN)
	}
	if cfg.Session.MaxSessions != 7 {
		t.Errorf("Expected 7 max sessions, got %d", cfg.Session.MaxSessions)
	}
}

// TestValidate covers the rejection rules
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"zero width", func(c *AppConfig) { c.Sim.Width = 0 }},
		{"zero tick rate", func(c *AppConfig) { c.Sim.TickRate = 0 }},
		{"tolerance above one", func(c *AppConfig) { c.Sim.CollisionTolerance = 1.5 }},
		{"phase threshold one", func(c *AppConfig) { c.Sim.Boss.Phase2Threshold = 1 }},
		{"stalled boss entry", func(c *AppConfig) { c.Sim.Boss.EntrySpeedScale = 0 }},
		{"inverted standoff band", func(c *AppConfig) { c.Sim.Boss.StandoffMin = 300 }},
		{"unknown driver", func(c *AppConfig) { c.Storage.Driver = "redis" }},
		{"empty frame", func(c *AppConfig) { c.Render.Height = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
