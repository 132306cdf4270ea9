package heuristics

import (
	"github.com/cacsx/intel-engine/pkg/models"
)

// Wallet Risk Assessment
//
// Wallet risk scores arrive from the intelligence source already computed
// (0-100). This file bands them and folds in the signals the engine itself
// observes (layering pairs, watchlist hits, exposed PII) to produce the verdict
// analysts see on the wallet page.
//
// Risk bands:
//   safe     (0-24)
//   low      (25-49)
//   medium   (50-74)
//   high     (75-89)
//   critical (90-100)

// ThreatAssessment is the engine's verdict on a wallet
type ThreatAssessment struct {
	WalletID          string           `json:"walletId"`
	Address           string           `json:"address"`
	RiskScore         int              `json:"riskScore"`      // As reported by the source
	EffectiveScore    int              `json:"effectiveScore"` // After engine signals, 0-100
	RiskLevel         models.RiskLevel `json:"riskLevel"`      // Band of EffectiveScore
	Signals           []string         `json:"signals"`
	RecommendedAction string           `json:"recommendedAction"` // none/log/review/alert/escalate
	IsWatchlistHit    bool             `json:"isWatchlistHit"`
	LayeringPairs     int              `json:"layeringPairs"`
	Activity          *ActivityProfile `json:"activity,omitempty"`
}

// AssessWallet combines the sourced score with engine observations.
func AssessWallet(w models.Wallet, layering MatchSet, hits []WatchlistHit) ThreatAssessment {
	assessment := ThreatAssessment{
		WalletID:  w.ID,
		Address:   w.Address,
		RiskScore: w.RiskScore,
	}

	score := clampScore(w.RiskScore)
	signals := []string{"category:" + string(w.Category)}

	// ─── Layering ────────────────────────────────────────────────────
	if pairs := layering.PairCount(); pairs > 0 {
		assessment.LayeringPairs = pairs
		score += 10
		signals = append(signals, "layering_pattern")
	}

	// ─── Watchlist hits ──────────────────────────────────────────────
	if len(hits) > 0 {
		assessment.IsWatchlistHit = true
		for _, hit := range hits {
			switch hit.Category {
			case models.CategoryRansomware, models.CategoryScam:
				score += 20
			case models.CategoryPhishing, models.CategoryMixer:
				score += 15
			case models.CategoryUnknown:
				score += 5
			case models.CategoryClean:
			}
			signals = append(signals, "watchlist:"+string(hit.Category)+":"+hit.Label)
		}
	}

	// ─── OSINT footprint ─────────────────────────────────────────────
	if len(w.PII) > 0 {
		signals = append(signals, "pii_exposed")
	}
	if len(w.Sources) >= 3 {
		signals = append(signals, "multi_source_osint")
	}

	assessment.EffectiveScore = clampScore(score)
	assessment.RiskLevel = ClassifyRisk(assessment.EffectiveScore)
	assessment.RecommendedAction = recommendAction(assessment.RiskLevel)
	assessment.Signals = signals
	return assessment
}

// WithActivity folds a wallet's activity profile into its assessment. Rapid
// activity adds five points.
func WithActivity(a ThreatAssessment, p ActivityProfile) ThreatAssessment {
	a.Activity = &p
	if p.RapidActivity {
		a.Signals = append(a.Signals, "rapid_activity")
		a.EffectiveScore = clampScore(a.EffectiveScore + 5)
		a.RiskLevel = ClassifyRisk(a.EffectiveScore)
		a.RecommendedAction = recommendAction(a.RiskLevel)
	}
	return a
}

// ClassifyRisk maps a 0-100 score to its band
func ClassifyRisk(score int) models.RiskLevel {
	switch {
	case score >= 90:
		return models.RiskCritical
	case score >= 75:
		return models.RiskHigh
	case score >= 50:
		return models.RiskMedium
	case score >= 25:
		return models.RiskLow
	default:
		return models.RiskSafe
	}
}

// SeverityForRisk picks the alert severity for a risk band. Safe wallets
// alert at low severity.
func SeverityForRisk(level models.RiskLevel) models.Severity {
	switch level {
	case models.RiskCritical:
		return models.SeverityCritical
	case models.RiskHigh:
		return models.SeverityHigh
	case models.RiskMedium:
		return models.SeverityMedium
	case models.RiskLow, models.RiskSafe:
		return models.SeverityLow
	}
	return models.SeverityLow
}

func recommendAction(level models.RiskLevel) string {
	switch level {
	case models.RiskCritical:
		return "escalate"
	case models.RiskHigh:
		return "alert"
	case models.RiskMedium:
		return "review"
	case models.RiskLow:
		return "log"
	case models.RiskSafe:
		return "none"
	}
	return "none"
}

func clampScore(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
