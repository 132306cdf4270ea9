package models

import "time"

// PII is a piece of personal information attributed to a wallet operator.
type PII struct {
	Kind  string `json:"kind"` // name/email/phone/username/telegram/twitter
	Value string `json:"value"`
}

// WalletMetadata holds the behavioural summary shown on the wallet page.
type WalletMetadata struct {
	Patterns            []string `json:"patterns"`
	TotalValue          string   `json:"totalValue"` // display string, e.g. "$2.4M"
	AssociatedAddresses int      `json:"associatedAddresses"`
}

// Wallet is a profiled blockchain address.
type Wallet struct {
	ID           string         `json:"id"`
	Address      string         `json:"address"`
	Chain        Chain          `json:"chain"`
	RiskScore    int            `json:"riskScore"` // 0-100
	Category     Category       `json:"category"`
	TxCount      int            `json:"txCount"`
	LastTx       time.Time      `json:"lastTx"`
	FirstSeen    time.Time      `json:"firstSeen"`
	LastSeen     time.Time      `json:"lastSeen"`
	OSINTSnippet string         `json:"osintSnippet"`
	Sources      []string       `json:"sources"`
	PII          []PII          `json:"pii"`
	Metadata     WalletMetadata `json:"metadata"`
}
