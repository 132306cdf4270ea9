package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/internal/store"
	"github.com/cacsx/intel-engine/pkg/models"
)

// layeringEvery is how many ticks pass between layering sweeps. The first
// tick of a run always sweeps.
const layeringEvery = 10

// Broadcaster fans a payload out to live dashboard clients.
type Broadcaster interface {
	Broadcast(data []byte)
}

// StreamEvent is one message on the live dashboard stream.
type StreamEvent struct {
	Event     string                     `json:"event"` // stats/alert/layering
	Timestamp time.Time                  `json:"timestamp"`
	Stats     *models.Stats              `json:"stats,omitempty"`
	LastScan  *time.Time                 `json:"lastScan,omitempty"`
	Alert     *models.Alert              `json:"alert,omitempty"`
	Layering  *heuristics.LayeringReport `json:"layering,omitempty"`
}

// Encode renders the event for the wire.
func (e StreamEvent) Encode() []byte {
	b, err := json.Marshal(e)
	if err != nil {
		log.Printf("[Simulator] Failed to encode %s event: %v", e.Event, err)
		return nil
	}
	return b
}

// AlertEvent wraps an alert for the stream.
func AlertEvent(a models.Alert) StreamEvent {
	return StreamEvent{Event: "alert", Timestamp: a.Timestamp, Alert: &a}
}

// Simulator drives the dashboard while the scanner is switched on: every
// tick it advances the headline counters, records the scan time, now and
// then raises an alert, and periodically sweeps critical wallets for
// layering.
type Simulator struct {
	source DataSource
	state  *store.StateStore
	alerts *heuristics.AlertManager
	hub    Broadcaster

	mu    sync.Mutex
	rng   *rand.Rand
	ticks int
}

// NewSimulator wires a simulator. hub may be nil.
func NewSimulator(source DataSource, state *store.StateStore, alerts *heuristics.AlertManager, hub Broadcaster, seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		source: source,
		state:  state,
		alerts: alerts,
		hub:    hub,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Run ticks until ctx is cancelled. Ticks are skipped while scanning is off;
// a changed interval setting takes effect on the next tick.
func (s *Simulator) Run(ctx context.Context) {
	interval := s.interval()
	log.Printf("[Simulator] Starting (interval %s)", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Simulator] Stopping")
			return
		case <-ticker.C:
			if !s.state.IsScanning() {
				s.mu.Lock()
				s.ticks = 0
				s.mu.Unlock()
				continue
			}
			if err := s.Tick(ctx); err != nil {
				log.Printf("[Simulator] Tick failed: %v", err)
			}
			if next := s.interval(); next != interval {
				interval = next
				ticker.Reset(interval)
				log.Printf("[Simulator] Interval changed to %s", interval)
			}
		}
	}
}

// Tick performs one simulation step regardless of the scanning toggle.
func (s *Simulator) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var alertRaised bool
	stats, err := s.state.UpdateStats(func(st *models.Stats) {
		st.TotalWallets += s.rng.Intn(5) + 1
		if s.rng.Float64() > 0.7 {
			st.HighRiskCount++
		}
		if s.rng.Float64() > 0.8 {
			st.AlertsToday++
			alertRaised = true
		}
		st.PIIExtracted += s.rng.Intn(3)
	})
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}

	now := time.Now().UTC()
	if err := s.state.SaveLastScan(now); err != nil {
		return fmt.Errorf("save last scan: %w", err)
	}
	s.broadcast(StreamEvent{Event: "stats", Timestamp: now, Stats: &stats, LastScan: &now})

	settings := s.state.Settings()
	if alertRaised {
		if err := s.raiseRandomAlert(ctx, settings); err != nil {
			return err
		}
	}

	if s.ticks%layeringEvery == 0 {
		if err := s.sweepLayering(ctx, settings); err != nil {
			return err
		}
	}
	s.ticks++
	return nil
}

func (s *Simulator) raiseRandomAlert(ctx context.Context, settings models.Settings) error {
	wallets, err := s.source.ListWallets(ctx)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}
	if len(wallets) == 0 {
		return nil
	}
	w := wallets[s.rng.Intn(len(wallets))]
	level := heuristics.SeverityForRisk(heuristics.ClassifyRisk(w.RiskScore))

	var alert models.Alert
	switch s.rng.Intn(4) {
	case 0:
		alert = models.Alert{Type: models.AlertHighRisk, Severity: level,
			Message: fmt.Sprintf("Wallet flagged with risk score %d - Identified %s pattern", w.RiskScore, w.Category)}
	case 1:
		if len(w.PII) == 0 {
			return nil
		}
		alert = models.Alert{Type: models.AlertSuspiciousPII, Severity: models.SeverityHigh,
			Message: fmt.Sprintf("PII extracted: %s linked to wallet operator", w.PII[s.rng.Intn(len(w.PII))].Kind)}
	case 2:
		alert = models.Alert{Type: models.AlertRapidActivity, Severity: models.SeverityMedium,
			Message: fmt.Sprintf("%d transactions detected in last hour - Unusual velocity", s.rng.Intn(60)+20)}
	default:
		alert = models.Alert{Type: models.AlertNewWallet, Severity: level,
			Message: fmt.Sprintf("New %s-associated wallet added to watchlist", w.Category)}
	}
	if !settings.Alerts.Allows(alert.Type) {
		return nil
	}
	alert.WalletAddress = w.Address
	s.alerts.EmitAlert(alert)
	return nil
}

// sweepLayering scans every critical wallet and alerts on new findings.
func (s *Simulator) sweepLayering(ctx context.Context, settings models.Settings) error {
	opts := heuristics.LayeringOptionsFromSettings(settings)
	if !opts.Enabled {
		return nil
	}

	wallets, err := s.source.ListWallets(ctx)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}
	byID := make(map[string]models.Wallet)
	var histories []heuristics.WalletHistory
	for _, w := range wallets {
		if !heuristics.ShouldScanForLayering(w.RiskScore) {
			continue
		}
		txs, err := s.source.ListTransactions(ctx, w.ID)
		if err != nil {
			return fmt.Errorf("list transactions of %s: %w", w.ID, err)
		}
		byID[w.ID] = w
		histories = append(histories, heuristics.WalletHistory{WalletID: w.ID, Transactions: txs})
	}

	reports, err := heuristics.ScanWallets(ctx, histories, opts, settings.MaxConcurrent)
	if err != nil {
		return err
	}
	for id, report := range reports {
		if _, raised := s.alerts.EmitLayeringAlert(byID[id], report); raised {
			r := report
			s.broadcast(StreamEvent{Event: "layering", Timestamp: time.Now().UTC(), Layering: &r})
		}
	}
	log.Printf("[Simulator] Layering sweep over %d critical wallets", len(histories))
	return nil
}

func (s *Simulator) interval() time.Duration {
	sec := s.state.Settings().ScanIntervalSec
	if sec < 1 {
		sec = 1
	}
	return time.Duration(sec) * time.Second
}

func (s *Simulator) broadcast(e StreamEvent) {
	if s.hub == nil {
		return
	}
	if payload := e.Encode(); payload != nil {
		s.hub.Broadcast(payload)
	}
}
