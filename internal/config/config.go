package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application, loaded from
// environment variables.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Drafts   DraftsConfig
	LogLevel string `envconfig:"ALMACEN_LOG_LEVEL" default:"info"`
}

type ServerConfig struct {
	Host            string `envconfig:"ALMACEN_HOST" default:"0.0.0.0"`
	Port            string `envconfig:"ALMACEN_PORT" default:"8080"`
	ReadTimeout     int    `envconfig:"ALMACEN_READ_TIMEOUT" default:"15"`
	WriteTimeout    int    `envconfig:"ALMACEN_WRITE_TIMEOUT" default:"15"`
	ShutdownTimeout int    `envconfig:"ALMACEN_SHUTDOWN_TIMEOUT" default:"30"`
}

// BackendConfig points at the warehouse backend that owns inventory and
// order state.
type BackendConfig struct {
	BaseURL        string `envconfig:"ALMACEN_BACKEND_URL" default:"http://localhost:8081"`
	RequestTimeout int    `envconfig:"ALMACEN_BACKEND_TIMEOUT" default:"30"`
}

type DraftsConfig struct {
	TTL           time.Duration `envconfig:"ALMACEN_DRAFT_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"ALMACEN_DRAFT_SWEEP_INTERVAL" default:"5m"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("ALMACEN_PORT is required")
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("ALMACEN_BACKEND_URL must be an absolute URL, got %q", c.Backend.BaseURL)
	}

	if c.Drafts.TTL <= 0 {
		return fmt.Errorf("ALMACEN_DRAFT_TTL must be positive")
	}
	if c.Drafts.SweepInterval <= 0 {
		return fmt.Errorf("ALMACEN_DRAFT_SWEEP_INTERVAL must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}
