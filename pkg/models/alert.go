package models

import "time"

// Alert is a dashboard notification about a wallet.
type Alert struct {
	ID            string    `json:"id"`
	Type          AlertType `json:"type"`
	Message       string    `json:"message"`
	WalletAddress string    `json:"walletAddress"`
	Timestamp     time.Time `json:"timestamp"`
	Severity      Severity  `json:"severity"`
}
