package config

import (
	"testing"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5339, cfg.HTTP.Port)
	assert.Equal(t, "cacs-state.db", cfg.Storage.StatePath)
	assert.True(t, cfg.Storage.SeedDatabase)
	assert.Equal(t, 60*time.Second, cfg.Detection.LayeringThreshold)
	assert.Equal(t, 4, cfg.Detection.ScanWorkers)
	assert.Equal(t, 3*time.Second, cfg.Simulator.Interval)
	assert.Equal(t, models.SeverityHigh, cfg.Webhook.MinSeverity)
	assert.Empty(t, cfg.HTTP.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("LAYERING_THRESHOLD", "90s")
	t.Setenv("SCAN_WORKERS", "8")
	t.Setenv("SIMULATOR_INTERVAL", "5000")
	t.Setenv("SIMULATOR_SEED", "42")
	t.Setenv("ALERT_WEBHOOK_MIN_SEVERITY", "Critical")
	t.Setenv("SEED_DATABASE", "false")
	t.Setenv("STATE_DB_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.HTTP.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.Detection.LayeringThreshold)
	assert.Equal(t, 8, cfg.Detection.ScanWorkers)
	assert.Equal(t, 5*time.Second, cfg.Simulator.Interval)
	assert.Equal(t, int64(42), cfg.Simulator.Seed)
	assert.Equal(t, models.SeverityCritical, cfg.Webhook.MinSeverity)
	assert.False(t, cfg.Storage.SeedDatabase)
	assert.Empty(t, cfg.Storage.StatePath)
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "http"},
		{"PORT", "70000"},
		{"RATE_LIMIT_PER_MIN", "0"},
		{"LAYERING_THRESHOLD", "soon"},
		{"LAYERING_THRESHOLD", "-5s"},
		{"LAYERING_THRESHOLD", "10000000000000"},
		{"SCAN_WORKERS", "-1"},
		{"SIMULATOR_INTERVAL", "10ms"},
		{"SIMULATOR_SEED", "x"},
		{"SEED_DATABASE", "maybe"},
		{"ALERT_WEBHOOK_MIN_SEVERITY", "urgent"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDefaultSettings(t *testing.T) {
	t.Setenv("LAYERING_THRESHOLD", "45s")
	cfg, err := Load()
	require.NoError(t, err)

	s := cfg.DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, int64(45000), s.LayeringThresholdMs)
	assert.True(t, s.LayeringEnabled)
	assert.Equal(t, 3, s.ScanIntervalSec)
	assert.Equal(t, 4, s.MaxConcurrent)
	assert.Equal(t, 75, s.HighRiskThreshold)
	assert.True(t, s.Alerts.HighRisk)
	assert.False(t, s.Alerts.Email)
}
