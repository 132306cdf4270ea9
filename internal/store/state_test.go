package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() models.Settings {
	return models.Settings{
		HighRiskThreshold:   75,
		LayeringThresholdMs: 60000,
		LayeringEnabled:     true,
		ScanIntervalSec:     3,
		MaxConcurrent:       4,
		Alerts:              models.AlertToggles{HighRisk: true, PII: true, RapidActivity: true},
	}
}

func TestStateStore_Defaults(t *testing.T) {
	s := NewStateStore(NewMemoryKV(), testSettings())

	assert.Equal(t, models.DefaultStats, s.Stats())
	assert.Nil(t, s.LastScan())
	assert.False(t, s.IsScanning())
	assert.Equal(t, testSettings(), s.Settings())
}

func TestStateStore_CorruptValuesFallBack(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(keyStats, []byte("{not json")))
	require.NoError(t, kv.Set(keyLastScan, []byte("last tuesday")))
	require.NoError(t, kv.Set(keyIsScanning, []byte("yes")))
	require.NoError(t, kv.Set(keySettings, []byte(`{"scanIntervalSec":0}`)))

	s := NewStateStore(kv, testSettings())
	assert.Equal(t, models.DefaultStats, s.Stats())
	assert.Nil(t, s.LastScan())
	assert.False(t, s.IsScanning())
	assert.Equal(t, testSettings(), s.Settings())
}

func TestStateStore_RoundTrip(t *testing.T) {
	s := NewStateStore(NewMemoryKV(), testSettings())

	stats, err := s.UpdateStats(func(st *models.Stats) {
		st.TotalWallets += 3
		st.AlertsToday++
	})
	require.NoError(t, err)
	assert.Equal(t, 1250, stats.TotalWallets)
	assert.Equal(t, stats, s.Stats())

	when := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, s.SaveLastScan(when))
	require.NoError(t, s.SetScanning(true))

	state := s.ScanState()
	assert.True(t, state.IsScanning)
	require.NotNil(t, state.LastScan)
	assert.True(t, state.LastScan.Equal(when))

	updated := testSettings()
	updated.HighRiskThreshold = 80
	require.NoError(t, s.SaveSettings(updated))
	assert.Equal(t, 80, s.Settings().HighRiskThreshold)

	updated.MaxConcurrent = 0
	assert.Error(t, s.SaveSettings(updated))
}

func TestBoltKV_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	kv, err := OpenBolt(path)
	require.NoError(t, err)
	s := NewStateStore(kv, testSettings())
	require.NoError(t, s.SetScanning(true))
	require.NoError(t, s.SaveStats(models.Stats{TotalWallets: 7}))
	require.NoError(t, kv.Close())

	kv, err = OpenBolt(path)
	require.NoError(t, err)
	defer kv.Close()
	s = NewStateStore(kv, testSettings())
	assert.True(t, s.IsScanning())
	assert.Equal(t, 7, s.Stats().TotalWallets)

	_, ok, err := kv.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
