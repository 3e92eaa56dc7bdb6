package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("default port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "http://localhost:8081" {
		t.Errorf("default backend url = %s", cfg.Backend.BaseURL)
	}
	if cfg.Drafts.TTL != 30*time.Minute {
		t.Errorf("default draft ttl = %s, want 30m", cfg.Drafts.TTL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default log level = %s, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ALMACEN_PORT", "9090")
	t.Setenv("ALMACEN_BACKEND_URL", "https://almacen.example.org")
	t.Setenv("ALMACEN_DRAFT_TTL", "10m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %s, want 9090", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "https://almacen.example.org" {
		t.Errorf("backend url = %s", cfg.Backend.BaseURL)
	}
	if cfg.Drafts.TTL != 10*time.Minute {
		t.Errorf("draft ttl = %s, want 10m", cfg.Drafts.TTL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Server.Port = "" }, true},
		{"relative backend url", func(c *Config) { c.Backend.BaseURL = "localhost:8081" }, true},
		{"zero draft ttl", func(c *Config) { c.Drafts.TTL = 0 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
