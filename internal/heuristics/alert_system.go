package heuristics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/google/uuid"
)

// Alert & Webhook System
//
// Alerts are:
//   1. Kept in a bounded in-memory history (newest last)
//   2. Broadcast through a callback (the WebSocket hub in production)
//   3. Pushed to registered webhooks whose minimum severity they meet
//
// Webhook delivery is fire-and-forget; a slow receiver never blocks Emit.

// WebhookEndpoint is a registered webhook receiver
type WebhookEndpoint struct {
	Name        string            `json:"name"`
	URL         string            `json:"url"`
	Enabled     bool              `json:"enabled"`
	Headers     map[string]string `json:"headers,omitempty"`
	MinSeverity models.Severity   `json:"minSeverity"`
}

// AlertManager handles alert emission and webhook delivery
type AlertManager struct {
	mu            sync.RWMutex
	webhooks      []WebhookEndpoint
	recentAlerts  []models.Alert
	maxHistory    int
	httpClient    *http.Client
	alertCallback func(models.Alert)

	// last pattern count alerted per wallet, so reloading a wallet page does
	// not re-alert the same finding
	layeringSeen map[string]int
}

// NewAlertManager creates an alert system keeping at most maxHistory alerts.
func NewAlertManager(broadcastFn func(models.Alert), maxHistory int) *AlertManager {
	if maxHistory <= 0 {
		maxHistory = 1000
	}
	return &AlertManager{
		webhooks:      make([]WebhookEndpoint, 0),
		recentAlerts:  make([]models.Alert, 0),
		maxHistory:    maxHistory,
		httpClient:    &http.Client{Timeout: 5 * time.Second},
		alertCallback: broadcastFn,
		layeringSeen:  make(map[string]int),
	}
}

// RegisterWebhook adds a webhook endpoint
func (am *AlertManager) RegisterWebhook(name, url string, minSeverity models.Severity, headers map[string]string) {
	am.mu.Lock()
	defer am.mu.Unlock()

	am.webhooks = append(am.webhooks, WebhookEndpoint{
		Name:        name,
		URL:         url,
		Enabled:     true,
		Headers:     headers,
		MinSeverity: minSeverity,
	})

	log.Printf("[AlertManager] Registered webhook: %s → %s (min: %s)", name, url, minSeverity)
}

// Seed loads historical alerts without broadcasting or webhook delivery.
// They are stored oldest first whatever order they arrive in.
func (am *AlertManager) Seed(alerts []models.Alert) {
	sorted := append([]models.Alert(nil), alerts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	am.mu.Lock()
	defer am.mu.Unlock()
	am.recentAlerts = append(sorted, am.recentAlerts...)
	am.trimLocked()
}

// EmitAlert stores and distributes an alert, filling in ID and timestamp
// when missing. The stored alert is returned.
func (am *AlertManager) EmitAlert(alert models.Alert) models.Alert {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now().UTC()
	}
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}

	am.mu.Lock()
	am.recentAlerts = append(am.recentAlerts, alert)
	am.trimLocked()
	webhooks := make([]WebhookEndpoint, len(am.webhooks))
	copy(webhooks, am.webhooks)
	am.mu.Unlock()

	if am.alertCallback != nil {
		am.alertCallback(alert)
	}

	for _, wh := range webhooks {
		if !wh.Enabled || !alert.Severity.AtLeast(wh.MinSeverity) {
			continue
		}
		go am.sendWebhook(wh, alert)
	}

	log.Printf("[Alert] [%s] %s: %s (wallet: %s)", alert.Severity, alert.Type, alert.Message, alert.WalletAddress)
	return alert
}

// EmitLayeringAlert raises a layering-pattern alert for a wallet when the
// report found pairs and the count differs from the last one alerted.
func (am *AlertManager) EmitLayeringAlert(w models.Wallet, report LayeringReport) (models.Alert, bool) {
	if report.PatternCount == 0 {
		return models.Alert{}, false
	}

	am.mu.Lock()
	if am.layeringSeen[w.ID] == report.PatternCount {
		am.mu.Unlock()
		return models.Alert{}, false
	}
	am.layeringSeen[w.ID] = report.PatternCount
	am.mu.Unlock()

	alert := models.Alert{
		Type: models.AlertLayeringPattern,
		Message: fmt.Sprintf("%d layering pattern(s) detected: equal-value incoming and outgoing transfers within %ds",
			report.PatternCount, report.ThresholdMs/1000),
		WalletAddress: w.Address,
		Severity:      SeverityForRisk(ClassifyRisk(w.RiskScore)),
	}
	return am.EmitAlert(alert), true
}

// GetRecentAlerts returns up to limit alerts, newest first. limit <= 0 means all.
func (am *AlertManager) GetRecentAlerts(limit int) []models.Alert {
	am.mu.RLock()
	defer am.mu.RUnlock()

	if limit <= 0 || limit > len(am.recentAlerts) {
		limit = len(am.recentAlerts)
	}

	start := len(am.recentAlerts) - limit
	result := make([]models.Alert, limit)
	for i := 0; i < limit; i++ {
		result[i] = am.recentAlerts[start+limit-1-i]
	}
	return result
}

// AlertFilter narrows GetAlerts. Zero values match everything.
type AlertFilter struct {
	MinSeverity models.Severity
	Type        models.AlertType
	Limit       int
}

// GetAlerts returns alerts matching f, newest first.
func (am *AlertManager) GetAlerts(f AlertFilter) []models.Alert {
	all := am.GetRecentAlerts(0)
	filtered := make([]models.Alert, 0, len(all))
	for _, a := range all {
		if f.MinSeverity != "" && !a.Severity.AtLeast(f.MinSeverity) {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		filtered = append(filtered, a)
		if f.Limit > 0 && len(filtered) == f.Limit {
			break
		}
	}
	return filtered
}

// CountSince returns how many stored alerts are at or after t.
func (am *AlertManager) CountSince(t time.Time) int {
	am.mu.RLock()
	defer am.mu.RUnlock()
	n := 0
	for _, a := range am.recentAlerts {
		if !a.Timestamp.Before(t) {
			n++
		}
	}
	return n
}

func (am *AlertManager) trimLocked() {
	if len(am.recentAlerts) > am.maxHistory {
		am.recentAlerts = am.recentAlerts[len(am.recentAlerts)-am.maxHistory:]
	}
}

// sendWebhook delivers an alert to a webhook endpoint
func (am *AlertManager) sendWebhook(wh WebhookEndpoint, alert models.Alert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		log.Printf("[Webhook] Failed to marshal alert: %v", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewBuffer(payload))
	if err != nil {
		log.Printf("[Webhook] Failed to create request for %s: %v", wh.Name, err)
		return
	}

	req.Header.Set("Content-Type", "application/json")
	for key, val := range wh.Headers {
		req.Header.Set(key, val)
	}

	resp, err := am.httpClient.Do(req)
	if err != nil {
		log.Printf("[Webhook] Failed to send to %s: %v", wh.Name, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("[Webhook] %s returned status %d", wh.Name, resp.StatusCode)
	}
}
