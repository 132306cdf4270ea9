package heuristics

import (
	"fmt"
	"testing"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestProfileActivity_Empty(t *testing.T) {
	p := ProfileActivity(nil)
	assert.Equal(t, 0, p.Transfers)
	assert.Equal(t, "unknown", p.EntityType)
	assert.Equal(t, "unknown", p.InferredTimezone)
	assert.False(t, p.RapidActivity)
}

func TestProfileActivity_Burst(t *testing.T) {
	start := time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC) // Monday
	var txs []models.Transaction
	for i := 0; i < 25; i++ {
		txs = append(txs, models.Transaction{
			ID:        fmt.Sprintf("b%d", i),
			Direction: models.DirectionIncoming,
			Amount:    "1",
			Timestamp: start.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		})
	}
	txs = append(txs, models.Transaction{ID: "junk", Timestamp: "yesterday"})

	p := ProfileActivity(txs)
	assert.Equal(t, 25, p.Transfers)
	assert.Equal(t, 25, p.MaxPerHour)
	assert.True(t, p.RapidActivity)
	assert.Equal(t, 18, p.PeakHourUTC)
	assert.Equal(t, "UTC+5", p.InferredTimezone)
	assert.Equal(t, 1.0, p.WeekdayRatio)
	assert.Equal(t, 1.0, p.Regularity)
	assert.Equal(t, "bot", p.EntityType)
}

func TestProfileActivity_Sparse(t *testing.T) {
	start := time.Date(2025, 1, 4, 9, 0, 0, 0, time.UTC) // Saturday
	gaps := []time.Duration{0, 30 * time.Hour, 31 * time.Hour, 100 * time.Hour, 101 * time.Hour}
	var txs []models.Transaction
	for i, g := range gaps {
		txs = append(txs, models.Transaction{ID: fmt.Sprint(i), Timestamp: fmt.Sprint(start.Add(g).UnixMilli())})
	}

	p := ProfileActivity(txs)
	assert.Equal(t, 2, p.MaxPerHour)
	assert.False(t, p.RapidActivity)
	assert.Less(t, p.Regularity, 0.6)
	assert.Equal(t, "human", p.EntityType)
}

func TestInferTimezoneFromPeak(t *testing.T) {
	tests := map[int]string{13: "UTC+0", 18: "UTC+5", 2: "UTC-11", 0: "UTC+11", 23: "UTC+10"}
	for hour, want := range tests {
		assert.Equal(t, want, inferTimezoneFromPeak(hour), "hour %d", hour)
	}
}

func TestMaxInWindow_Inclusive(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, maxInWindow([]time.Time{t0, t0.Add(time.Hour)}, time.Hour))
	assert.Equal(t, 1, maxInWindow([]time.Time{t0, t0.Add(time.Hour + time.Millisecond)}, time.Hour))
	assert.Equal(t, 0, maxInWindow(nil, time.Hour))
}

func TestWithActivity(t *testing.T) {
	base := AssessWallet(models.Wallet{ID: "4", RiskScore: 86, Category: models.CategoryMixer}, nil, nil)
	assert.Equal(t, models.RiskHigh, base.RiskLevel)

	calm := WithActivity(base, ActivityProfile{MaxPerHour: 3})
	assert.Equal(t, 86, calm.EffectiveScore)
	assert.NotNil(t, calm.Activity)

	rapid := WithActivity(base, ActivityProfile{MaxPerHour: 30, RapidActivity: true})
	assert.Equal(t, 91, rapid.EffectiveScore)
	assert.Equal(t, models.RiskCritical, rapid.RiskLevel)
	assert.Equal(t, "escalate", rapid.RecommendedAction)
	assert.Contains(t, rapid.Signals, "rapid_activity")
}

func TestSeverityForRole(t *testing.T) {
	assert.Equal(t, models.SeverityCritical, SeverityForRole("sanctioned"))
	assert.Equal(t, models.SeverityHigh, SeverityForRole("suspect"))
	assert.Equal(t, models.SeverityMedium, SeverityForRole("service"))
	assert.Equal(t, models.SeverityLow, SeverityForRole("bystander"))
}
