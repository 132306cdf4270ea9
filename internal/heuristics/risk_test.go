package heuristics

import (
	"testing"

	"github.com/cacsx/intel-engine/pkg/models"
)

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		score int
		want  models.RiskLevel
	}{
		{100, models.RiskCritical},
		{90, models.RiskCritical},
		{89, models.RiskHigh},
		{75, models.RiskHigh},
		{74, models.RiskMedium},
		{50, models.RiskMedium},
		{49, models.RiskLow},
		{25, models.RiskLow},
		{24, models.RiskSafe},
		{0, models.RiskSafe},
	}
	for _, tt := range tests {
		if got := ClassifyRisk(tt.score); got != tt.want {
			t.Errorf("ClassifyRisk(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestAssessWallet(t *testing.T) {
	wallet := models.Wallet{
		ID:        "1",
		Address:   "0xabc",
		RiskScore: 72,
		Category:  models.CategoryPhishing,
		Sources:   []string{"Twitter", "Telegram", "Reddit"},
		PII:       []models.PII{{Kind: "email", Value: "x@example.com"}},
	}

	t.Run("Sourced score only", func(t *testing.T) {
		a := AssessWallet(wallet, nil, nil)
		if a.EffectiveScore != 72 || a.RiskLevel != models.RiskMedium {
			t.Errorf("Expected 72/medium, got %d/%s", a.EffectiveScore, a.RiskLevel)
		}
		if a.RecommendedAction != "review" {
			t.Errorf("Expected review, got %s", a.RecommendedAction)
		}
		want := []string{"category:phishing", "pii_exposed", "multi_source_osint"}
		if len(a.Signals) != len(want) {
			t.Fatalf("Signals = %v, want %v", a.Signals, want)
		}
		for i := range want {
			if a.Signals[i] != want[i] {
				t.Errorf("Signals[%d] = %s, want %s", i, a.Signals[i], want[i])
			}
		}
	})

	t.Run("Layering raises the band", func(t *testing.T) {
		matches := MatchSet{"a": {"b"}, "b": {"a"}}
		a := AssessWallet(wallet, matches, nil)
		if a.EffectiveScore != 82 || a.RiskLevel != models.RiskHigh {
			t.Errorf("Expected 82/high, got %d/%s", a.EffectiveScore, a.RiskLevel)
		}
		if a.LayeringPairs != 1 {
			t.Errorf("Expected 1 layering pair, got %d", a.LayeringPairs)
		}
	})

	t.Run("Watchlist hits clamp at 100", func(t *testing.T) {
		hits := []WatchlistHit{
			{Category: models.CategoryRansomware, Label: "lockbit"},
			{Category: models.CategoryScam, Label: "pig butchering"},
		}
		a := AssessWallet(wallet, nil, hits)
		if a.EffectiveScore != 100 || a.RecommendedAction != "escalate" {
			t.Errorf("Expected 100/escalate, got %d/%s", a.EffectiveScore, a.RecommendedAction)
		}
		if !a.IsWatchlistHit {
			t.Error("Expected watchlist hit flag")
		}
		if a.RiskScore != 72 {
			t.Errorf("Sourced score must be preserved, got %d", a.RiskScore)
		}
	})
}

func TestSeverityForRisk(t *testing.T) {
	tests := map[models.RiskLevel]models.Severity{
		models.RiskCritical: models.SeverityCritical,
		models.RiskHigh:     models.SeverityHigh,
		models.RiskMedium:   models.SeverityMedium,
		models.RiskLow:      models.SeverityLow,
		models.RiskSafe:     models.SeverityLow,
	}
	for level, want := range tests {
		if got := SeverityForRisk(level); got != want {
			t.Errorf("SeverityForRisk(%s) = %s, want %s", level, got, want)
		}
	}
}
