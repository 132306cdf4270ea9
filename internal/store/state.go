package store

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
)

const (
	keyStats      = "cacs_stats"
	keyLastScan   = "cacs_last_scan_date"
	keyIsScanning = "cacs_is_scanning"
	keySettings   = "cacs_settings"
)

// StateStore reads and writes dashboard state. Missing or unreadable
// values fall back to defaults so a corrupt entry never blocks startup.
type StateStore struct {
	kv              KV
	defaultSettings models.Settings

	// serializes read-modify-write of the counters
	mu sync.Mutex
}

func NewStateStore(kv KV, defaultSettings models.Settings) *StateStore {
	return &StateStore{kv: kv, defaultSettings: defaultSettings}
}

// Stats returns the stored counters or models.DefaultStats.
func (s *StateStore) Stats() models.Stats {
	return readJSON(s, keyStats, models.DefaultStats)
}

func (s *StateStore) SaveStats(stats models.Stats) error {
	return s.writeJSON(keyStats, stats)
}

// UpdateStats applies fn to the current counters and stores the result.
func (s *StateStore) UpdateStats(fn func(*models.Stats)) (models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.Stats()
	fn(&stats)
	if err := s.SaveStats(stats); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

// LastScan returns when the scanner last ran, or nil if it never has.
func (s *StateStore) LastScan() *time.Time {
	raw, ok := s.get(keyLastScan)
	if !ok {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		log.Printf("[State] Ignoring unreadable %s: %v", keyLastScan, err)
		return nil
	}
	return &t
}

func (s *StateStore) SaveLastScan(t time.Time) error {
	return s.set(keyLastScan, []byte(t.UTC().Format(time.RFC3339Nano)))
}

// IsScanning reports the stored scanner toggle. Anything but "true" is off.
func (s *StateStore) IsScanning() bool {
	raw, ok := s.get(keyIsScanning)
	return ok && string(raw) == "true"
}

func (s *StateStore) SetScanning(on bool) error {
	return s.set(keyIsScanning, []byte(strconv.FormatBool(on)))
}

// ScanState bundles the scanner toggle and last run time.
func (s *StateStore) ScanState() models.ScanState {
	return models.ScanState{IsScanning: s.IsScanning(), LastScan: s.LastScan()}
}

// Settings returns stored settings, or the defaults when none are stored or
// the stored value no longer validates.
func (s *StateStore) Settings() models.Settings {
	settings := readJSON(s, keySettings, s.defaultSettings)
	if err := settings.Validate(); err != nil {
		log.Printf("[State] Stored settings invalid, using defaults: %v", err)
		return s.defaultSettings
	}
	return settings
}

func (s *StateStore) SaveSettings(settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.writeJSON(keySettings, settings)
}

// readJSON decodes key over a copy of fallback. Fields absent from the
// stored value keep their fallback.
func readJSON[T any](s *StateStore, key string, fallback T) T {
	raw, ok := s.get(key)
	if !ok {
		return fallback
	}
	v := fallback
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("[State] Ignoring unreadable %s: %v", key, err)
		return fallback
	}
	return v
}

func (s *StateStore) writeJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.set(key, b)
}

func (s *StateStore) get(key string) ([]byte, bool) {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		log.Printf("[State] Read %s failed: %v", key, err)
		return nil, false
	}
	return raw, ok
}

func (s *StateStore) set(key string, value []byte) error {
	if err := s.kv.Set(key, value); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
