// Package config reads the engine's settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cacsx/intel-engine/internal/graph"
	"github.com/cacsx/intel-engine/pkg/models"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig
	Storage   StorageConfig
	Graph     graph.Options
	Detection DetectionConfig
	Simulator SimulatorConfig
	Webhook   WebhookConfig
}

// HTTPConfig governs the API server.
type HTTPConfig struct {
	Port           int
	AuthToken      string
	AllowedOrigins []string
	RateLimitRPM   int
	RateLimitBurst int
}

// StorageConfig locates the persistent stores. An empty DatabaseURL runs
// without PostgreSQL; an empty StatePath keeps counters in memory.
type StorageConfig struct {
	DatabaseURL  string
	StatePath    string
	SeedDatabase bool
}

// DetectionConfig tunes the layering detector.
type DetectionConfig struct {
	LayeringThreshold time.Duration
	ScanWorkers       int
}

// SimulatorConfig drives the simulated feed. Seed 0 means time based.
type SimulatorConfig struct {
	Interval time.Duration
	Seed     int64
}

// WebhookConfig optionally forwards alerts to one HTTP endpoint.
type WebhookConfig struct {
	URL         string
	Token       string
	MinSeverity models.Severity
}

const (
	defaultPort              = 5339
	defaultStatePath         = "cacs-state.db"
	defaultRateLimitRPM      = 30
	defaultRateLimitBurst    = 10
	defaultLayeringThreshold = 60 * time.Second
	defaultScanWorkers       = 4
	defaultSimulatorInterval = 3 * time.Second
	defaultGraphMaxSessions  = 10
	defaultHighRiskThreshold = 75
)

// Load reads configuration from environment variables, applying defaults.
// Malformed values are errors rather than silently replaced.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			AuthToken:      os.Getenv("API_AUTH_TOKEN"),
			AllowedOrigins: splitCSV(os.Getenv("ALLOWED_ORIGINS")),
		},
		Storage: StorageConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			StatePath:   valueOrDefault("STATE_DB_PATH", defaultStatePath),
		},
		Graph: graph.Options{
			URI:      os.Getenv("GRAPH_URI"),
			Database: os.Getenv("GRAPH_DATABASE"),
			Username: os.Getenv("GRAPH_USERNAME"),
			Password: os.Getenv("GRAPH_PASSWORD"),
		},
		Webhook: WebhookConfig{
			URL:   os.Getenv("ALERT_WEBHOOK_URL"),
			Token: os.Getenv("ALERT_WEBHOOK_TOKEN"),
		},
	}
	// STATE_DB_PATH="" explicitly selects the in-memory store.
	if v, ok := os.LookupEnv("STATE_DB_PATH"); ok && v == "" {
		cfg.Storage.StatePath = ""
	}

	var err error
	if cfg.HTTP.Port, err = parsePort("PORT", defaultPort); err != nil {
		return Config{}, err
	}
	if cfg.HTTP.RateLimitRPM, err = parsePositiveInt("RATE_LIMIT_PER_MIN", defaultRateLimitRPM); err != nil {
		return Config{}, err
	}
	if cfg.HTTP.RateLimitBurst, err = parsePositiveInt("RATE_LIMIT_BURST", defaultRateLimitBurst); err != nil {
		return Config{}, err
	}
	if cfg.Storage.SeedDatabase, err = parseBool("SEED_DATABASE", true); err != nil {
		return Config{}, err
	}
	if cfg.Graph.MaxConnections, err = parsePositiveInt("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions); err != nil {
		return Config{}, err
	}
	if cfg.Detection.LayeringThreshold, err = parseDuration("LAYERING_THRESHOLD", defaultLayeringThreshold); err != nil {
		return Config{}, err
	}
	if cfg.Detection.LayeringThreshold < 0 {
		return Config{}, fmt.Errorf("invalid LAYERING_THRESHOLD: %s is negative", cfg.Detection.LayeringThreshold)
	}
	if cfg.Detection.ScanWorkers, err = parsePositiveInt("SCAN_WORKERS", defaultScanWorkers); err != nil {
		return Config{}, err
	}
	if cfg.Simulator.Interval, err = parseDuration("SIMULATOR_INTERVAL", defaultSimulatorInterval); err != nil {
		return Config{}, err
	}
	if cfg.Simulator.Interval < time.Second {
		return Config{}, fmt.Errorf("invalid SIMULATOR_INTERVAL: %s is below 1s", cfg.Simulator.Interval)
	}
	if v := os.Getenv("SIMULATOR_SEED"); v != "" {
		if cfg.Simulator.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return Config{}, fmt.Errorf("invalid SIMULATOR_SEED value %q: %w", v, err)
		}
	}

	cfg.Webhook.MinSeverity = models.SeverityHigh
	if v := os.Getenv("ALERT_WEBHOOK_MIN_SEVERITY"); v != "" {
		if cfg.Webhook.MinSeverity, err = models.ParseSeverity(v); err != nil {
			return Config{}, fmt.Errorf("invalid ALERT_WEBHOOK_MIN_SEVERITY: %w", err)
		}
	}

	return cfg, nil
}

// DefaultSettings is the operator settings record used until one is saved.
func (c Config) DefaultSettings() models.Settings {
	return models.Settings{
		HighRiskThreshold:   defaultHighRiskThreshold,
		LayeringThresholdMs: c.Detection.LayeringThreshold.Milliseconds(),
		LayeringEnabled:     true,
		ScanIntervalSec:     int(c.Simulator.Interval / time.Second),
		MaxConcurrent:       c.Detection.ScanWorkers,
		Alerts: models.AlertToggles{
			HighRisk:      true,
			PII:           true,
			RapidActivity: true,
		},
	}
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	val, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return val, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %d: must be positive", key, val)
	}
	return val, nil
}

// parseDuration accepts Go durations ("90s") and bare integers as
// milliseconds.
func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		if ms > models.MaxLayeringThresholdMs || ms < -models.MaxLayeringThresholdMs {
			return 0, fmt.Errorf("invalid %s value %q: out of range", key, v)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	port, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port %d is out of range", port)
	}
	return port, nil
}
