package models

import (
	"fmt"
	"math"
	"time"
)

// MaxLayeringThresholdMs is the widest layering window a time.Duration can hold.
const MaxLayeringThresholdMs = math.MaxInt64 / int64(time.Millisecond)

// AlertToggles switches alert kinds on and off.
type AlertToggles struct {
	HighRisk      bool `json:"highRisk" mapstructure:"highRisk"`
	PII           bool `json:"pii" mapstructure:"pii"`
	RapidActivity bool `json:"rapidActivity" mapstructure:"rapidActivity"`
	Email         bool `json:"email" mapstructure:"email"`
}

// Allows reports whether alerts of type t are switched on. Kinds without a
// toggle are always allowed.
func (a AlertToggles) Allows(t AlertType) bool {
	switch t {
	case AlertHighRisk:
		return a.HighRisk
	case AlertSuspiciousPII:
		return a.PII
	case AlertRapidActivity:
		return a.RapidActivity
	}
	return true
}

// Settings are the operator-tunable knobs exposed on the settings page.
type Settings struct {
	HighRiskThreshold   int          `json:"highRiskThreshold" mapstructure:"highRiskThreshold"`
	LayeringThresholdMs int64        `json:"layeringThresholdMs" mapstructure:"layeringThresholdMs"`
	LayeringEnabled     bool         `json:"layeringEnabled" mapstructure:"layeringEnabled"`
	ScanIntervalSec     int          `json:"scanIntervalSec" mapstructure:"scanIntervalSec"`
	MaxConcurrent       int          `json:"maxConcurrent" mapstructure:"maxConcurrent"`
	Alerts              AlertToggles `json:"alerts" mapstructure:"alerts"`
}

// Validate rejects settings the engine cannot run with.
func (s Settings) Validate() error {
	if s.HighRiskThreshold < 0 || s.HighRiskThreshold > 100 {
		return fmt.Errorf("highRiskThreshold must be within 0-100, got %d", s.HighRiskThreshold)
	}
	if s.LayeringThresholdMs < 0 {
		return fmt.Errorf("layeringThresholdMs must not be negative, got %d", s.LayeringThresholdMs)
	}
	if s.LayeringThresholdMs > MaxLayeringThresholdMs {
		return fmt.Errorf("layeringThresholdMs must be at most %d, got %d", MaxLayeringThresholdMs, s.LayeringThresholdMs)
	}
	if s.ScanIntervalSec < 1 {
		return fmt.Errorf("scanIntervalSec must be at least 1, got %d", s.ScanIntervalSec)
	}
	if s.MaxConcurrent < 1 {
		return fmt.Errorf("maxConcurrent must be at least 1, got %d", s.MaxConcurrent)
	}
	return nil
}
