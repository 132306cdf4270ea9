package heuristics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertManager_EmitFillsDefaultsAndBroadcasts(t *testing.T) {
	var broadcast []models.Alert
	am := NewAlertManager(func(a models.Alert) { broadcast = append(broadcast, a) }, 10)

	got := am.EmitAlert(models.Alert{Type: models.AlertHighRisk, Severity: models.SeverityHigh, Message: "m"})
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	require.Len(t, broadcast, 1)
	assert.Equal(t, got.ID, broadcast[0].ID)
}

func TestAlertManager_HistoryIsBoundedNewestFirst(t *testing.T) {
	am := NewAlertManager(nil, 3)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		am.EmitAlert(models.Alert{ID: string(rune('a' + i)), Timestamp: base.Add(time.Duration(i) * time.Minute), Severity: models.SeverityLow})
	}

	recent := am.GetRecentAlerts(0)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"e", "d", "c"}, []string{recent[0].ID, recent[1].ID, recent[2].ID})
	assert.Len(t, am.GetRecentAlerts(2), 2)
	assert.Equal(t, 2, am.CountSince(base.Add(3*time.Minute)))
}

func TestAlertManager_SeedSortsBeforeLiveAlerts(t *testing.T) {
	am := NewAlertManager(nil, 10)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	am.Seed([]models.Alert{
		{ID: "late", Timestamp: base.Add(time.Hour)},
		{ID: "early", Timestamp: base},
	})
	am.EmitAlert(models.Alert{ID: "live", Severity: models.SeverityLow})

	recent := am.GetRecentAlerts(0)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"live", "late", "early"}, []string{recent[0].ID, recent[1].ID, recent[2].ID})
}

func TestAlertManager_GetAlertsFilters(t *testing.T) {
	am := NewAlertManager(nil, 10)
	am.EmitAlert(models.Alert{ID: "1", Type: models.AlertHighRisk, Severity: models.SeverityCritical})
	am.EmitAlert(models.Alert{ID: "2", Type: models.AlertNewWallet, Severity: models.SeverityLow})
	am.EmitAlert(models.Alert{ID: "3", Type: models.AlertHighRisk, Severity: models.SeverityMedium})

	tests := []struct {
		name   string
		filter AlertFilter
		want   []string
	}{
		{"No filter", AlertFilter{}, []string{"3", "2", "1"}},
		{"Min severity", AlertFilter{MinSeverity: models.SeverityMedium}, []string{"3", "1"}},
		{"By type", AlertFilter{Type: models.AlertNewWallet}, []string{"2"}},
		{"Limit", AlertFilter{Limit: 1}, []string{"3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, a := range am.GetAlerts(tt.filter) {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestAlertManager_LayeringAlertDedupes(t *testing.T) {
	am := NewAlertManager(nil, 10)
	w := models.Wallet{ID: "1", Address: "0xabc", RiskScore: 95}
	report := NewLayeringReport("1", true, MatchSet{"a": {"b"}, "b": {"a"}}, DefaultLayeringOptions())

	alert, ok := am.EmitLayeringAlert(w, report)
	require.True(t, ok)
	assert.Equal(t, models.AlertLayeringPattern, alert.Type)
	assert.Equal(t, models.SeverityCritical, alert.Severity)
	assert.Contains(t, alert.Message, "within 60s")

	_, ok = am.EmitLayeringAlert(w, report)
	assert.False(t, ok, "same finding must not alert twice")

	_, ok = am.EmitLayeringAlert(w, NewLayeringReport("1", true, MatchSet{}, DefaultLayeringOptions()))
	assert.False(t, ok, "empty report must not alert")
}

func TestAlertManager_WebhookRespectsMinSeverity(t *testing.T) {
	received := make(chan models.Alert, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Token"))
		var a models.Alert
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&a))
		received <- a
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	am := NewAlertManager(nil, 10)
	am.RegisterWebhook("soc", srv.URL, models.SeverityHigh, map[string]string{"X-Token": "secret"})
	am.EmitAlert(models.Alert{ID: "quiet", Type: models.AlertNewWallet, Severity: models.SeverityLow})
	am.EmitAlert(models.Alert{ID: "loud", Type: models.AlertHighRisk, Severity: models.SeverityCritical})

	select {
	case a := <-received:
		assert.Equal(t, "loud", a.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not called")
	}
	select {
	case a := <-received:
		t.Fatalf("unexpected webhook delivery of %s", a.ID)
	case <-time.After(100 * time.Millisecond):
	}
}
