package heuristics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
	"golang.org/x/sync/errgroup"
)

// LayeringReport is what the wallet page needs from one detector run.
type LayeringReport struct {
	WalletID     string      `json:"walletId"`
	Scanned      bool        `json:"scanned"` // false when the wallet was below the scan policy
	Matches      MatchSet    `json:"matches"`
	Pairs        []MatchPair `json:"pairs"`
	PatternCount int         `json:"patternCount"`
	ThresholdMs  int64       `json:"thresholdMs"`
}

// NewLayeringReport summarises a MatchSet for presentation.
func NewLayeringReport(walletID string, scanned bool, matches MatchSet, opts LayeringOptions) LayeringReport {
	if matches == nil {
		matches = MatchSet{}
	}
	return LayeringReport{
		WalletID:     walletID,
		Scanned:      scanned,
		Matches:      matches,
		Pairs:        matches.Pairs(),
		PatternCount: matches.PairCount(),
		ThresholdMs:  opts.Threshold.Milliseconds(),
	}
}

// ShouldScanForLayering is the cost-control policy: the quadratic scan only
// runs for wallets already rated critical.
func ShouldScanForLayering(riskScore int) bool {
	return ClassifyRisk(riskScore) == models.RiskCritical
}

// WalletHistory is one wallet's transactions, the unit of a batch scan.
type WalletHistory struct {
	WalletID     string
	Transactions []models.Transaction
}

// ScanWallets runs the detector over many wallets in parallel, at most
// `workers` at a time. Runs share nothing; results are keyed by wallet ID.
// A cancelled context aborts the batch with ctx.Err().
func ScanWallets(ctx context.Context, histories []WalletHistory, opts LayeringOptions, workers int) (map[string]LayeringReport, error) {
	if workers <= 0 {
		workers = 4
	}

	reports := make([]LayeringReport, len(histories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, h := range histories {
		g.Go(func() error {
			matches, err := DetectLayeringContext(gctx, h.Transactions, opts)
			if err != nil {
				return fmt.Errorf("layering scan of wallet %s: %w", h.WalletID, err)
			}
			reports[i] = NewLayeringReport(h.WalletID, opts.Enabled, matches, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]LayeringReport, len(reports))
	for _, r := range reports {
		out[r.WalletID] = r
	}
	return out, nil
}

// LayeringOptionsFromSettings reads the detector knobs from operator settings.
func LayeringOptionsFromSettings(s models.Settings) LayeringOptions {
	return LayeringOptions{
		Threshold: ThresholdFromMillis(s.LayeringThresholdMs),
		Enabled:   s.LayeringEnabled,
	}
}

// ThresholdFromMillis converts a window in milliseconds, saturating at the
// largest Duration instead of wrapping negative.
func ThresholdFromMillis(ms int64) time.Duration {
	if ms > models.MaxLayeringThresholdMs {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}
