package models

import "time"

// CaseFile groups wallets and evidence under one investigation.
type CaseFile struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      CaseStatus `json:"status"`
	Priority    Severity   `json:"priority"`
	Wallets     []string   `json:"wallets"` // wallet IDs
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Assignee    string     `json:"assignee"`
	Notes       string     `json:"notes"`
	Evidence    []string   `json:"evidence"`
}
