package feed

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/internal/store"
	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHub struct {
	mu     sync.Mutex
	events []StreamEvent
}

func (h *recordingHub) Broadcast(data []byte) {
	var e StreamEvent
	if err := json.Unmarshal(data, &e); err != nil {
		panic(err)
	}
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
}

func (h *recordingHub) count(event string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

func simSettings() models.Settings {
	return models.Settings{
		HighRiskThreshold:   75,
		LayeringThresholdMs: 60000,
		LayeringEnabled:     true,
		ScanIntervalSec:     1,
		MaxConcurrent:       2,
		Alerts:              models.AlertToggles{HighRisk: true, PII: true, RapidActivity: true},
	}
}

func newTestSimulator(t *testing.T) (*Simulator, *store.StateStore, *heuristics.AlertManager, *recordingHub) {
	t.Helper()
	state := store.NewStateStore(store.NewMemoryKV(), simSettings())
	hub := &recordingHub{}
	alerts := heuristics.NewAlertManager(func(a models.Alert) { hub.Broadcast(AlertEvent(a).Encode()) }, 100)
	return NewSimulator(NewMockSource(5), state, alerts, hub, 99), state, alerts, hub
}

func TestSimulator_TickAdvancesState(t *testing.T) {
	sim, state, _, hub := newTestSimulator(t)
	before := state.Stats()

	require.NoError(t, sim.Tick(context.Background()))

	after := state.Stats()
	assert.Greater(t, after.TotalWallets, before.TotalWallets)
	assert.GreaterOrEqual(t, after.HighRiskCount, before.HighRiskCount)
	assert.GreaterOrEqual(t, after.PIIExtracted, before.PIIExtracted)
	require.NotNil(t, state.LastScan())
	assert.Equal(t, 1, hub.count("stats"))
}

func TestSimulator_FirstTickSweepsLayering(t *testing.T) {
	sim, _, alerts, hub := newTestSimulator(t)
	require.NoError(t, sim.Tick(context.Background()))

	layering := alerts.GetAlerts(heuristics.AlertFilter{Type: models.AlertLayeringPattern})
	// wallets 1 and 3 are the critical fixtures
	assert.Len(t, layering, 2)
	assert.Equal(t, 2, hub.count("layering"))

	// later ticks within the same run do not re-alert
	for i := 0; i < layeringEvery; i++ {
		require.NoError(t, sim.Tick(context.Background()))
	}
	assert.Len(t, alerts.GetAlerts(heuristics.AlertFilter{Type: models.AlertLayeringPattern}), 2)
}

func TestSimulator_LayeringDisabled(t *testing.T) {
	sim, state, alerts, _ := newTestSimulator(t)
	settings := simSettings()
	settings.LayeringEnabled = false
	require.NoError(t, state.SaveSettings(settings))

	require.NoError(t, sim.Tick(context.Background()))
	assert.Empty(t, alerts.GetAlerts(heuristics.AlertFilter{Type: models.AlertLayeringPattern}))
}

func TestSimulator_RunStopsOnCancel(t *testing.T) {
	sim, state, _, _ := newTestSimulator(t)
	require.NoError(t, state.SetScanning(false))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sim.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
