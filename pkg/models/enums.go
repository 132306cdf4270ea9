package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned when a string does not name a member of one of
// the closed kinds below.
var ErrUnknownValue = errors.New("unknown value")

// Direction is the side of a wallet a transaction sits on.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	switch d {
	case DirectionIncoming, DirectionOutgoing:
		return true
	}
	return false
}

// ParseDirection accepts "incoming"/"outgoing" and the short forms "in"/"out".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incoming", "in":
		return DirectionIncoming, nil
	case "outgoing", "out":
		return DirectionOutgoing, nil
	}
	return "", unknown("direction", s)
}

func (d *Direction) UnmarshalJSON(data []byte) error { return unmarshalEnum(data, d, ParseDirection) }

// Chain is a monitored blockchain.
type Chain string

const (
	ChainETH Chain = "ETH"
	ChainBTC Chain = "BTC"
	ChainTRX Chain = "TRX"
	ChainSOL Chain = "SOL"
)

// AllChains lists every monitored chain in display order.
var AllChains = []Chain{ChainETH, ChainBTC, ChainTRX, ChainSOL}

func (c Chain) Valid() bool {
	switch c {
	case ChainETH, ChainBTC, ChainTRX, ChainSOL:
		return true
	}
	return false
}

func ParseChain(s string) (Chain, error) {
	c := Chain(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", unknown("chain", s)
	}
	return c, nil
}

func (c *Chain) UnmarshalJSON(data []byte) error { return unmarshalEnum(data, c, ParseChain) }

// Category is the intelligence classification of a wallet.
type Category string

const (
	CategoryScam       Category = "scam"
	CategoryPhishing   Category = "phishing"
	CategoryMixer      Category = "mixer"
	CategoryRansomware Category = "ransomware"
	CategoryClean      Category = "clean"
	CategoryUnknown    Category = "unknown"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryScam, CategoryPhishing, CategoryMixer, CategoryRansomware, CategoryClean, CategoryUnknown:
		return true
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", unknown("category", s)
	}
	return c, nil
}

func (c *Category) UnmarshalJSON(data []byte) error { return unmarshalEnum(data, c, ParseCategory) }

// Severity ranks alerts and cases.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Rank orders severities from low (0) to critical (3). Unknown values rank -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// AtLeast reports whether s is as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return s.Valid() && s.Rank() >= min.Rank()
}

func ParseSeverity(s string) (Severity, error) {
	v := Severity(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", unknown("severity", s)
	}
	return v, nil
}

func (s *Severity) UnmarshalJSON(data []byte) error { return unmarshalEnum(data, s, ParseSeverity) }

// AlertType classifies an alert.
type AlertType string

const (
	AlertHighRisk        AlertType = "high-risk"
	AlertSuspiciousPII   AlertType = "suspicious-pii"
	AlertRapidActivity   AlertType = "rapid-activity"
	AlertNewWallet       AlertType = "new-wallet"
	AlertLayeringPattern AlertType = "layering-pattern"
)

func (t AlertType) Valid() bool {
	switch t {
	case AlertHighRisk, AlertSuspiciousPII, AlertRapidActivity, AlertNewWallet, AlertLayeringPattern:
		return true
	}
	return false
}

func ParseAlertType(s string) (AlertType, error) {
	t := AlertType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", unknown("alert type", s)
	}
	return t, nil
}

func (t *AlertType) UnmarshalJSON(data []byte) error { return unmarshalEnum(data, t, ParseAlertType) }

// TxStatus is the confirmation state of a transaction.
type TxStatus string

const (
	TxConfirmed TxStatus = "confirmed"
	TxPending   TxStatus = "pending"
)

func (s TxStatus) Valid() bool {
	switch s {
	case TxConfirmed, TxPending:
		return true
	}
	return false
}

func ParseTxStatus(s string) (TxStatus, error) {
	v := TxStatus(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", unknown("transaction status", s)
	}
	return v, nil
}

func (s *TxStatus) UnmarshalJSON(data []byte) error { return unmarshalEnum(data, s, ParseTxStatus) }

// CaseStatus is the lifecycle state of a case file.
type CaseStatus string

const (
	CaseOpen          CaseStatus = "open"
	CaseInvestigating CaseStatus = "investigating"
	CaseClosed        CaseStatus = "closed"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseOpen, CaseInvestigating, CaseClosed:
		return true
	}
	return false
}

func ParseCaseStatus(s string) (CaseStatus, error) {
	v := CaseStatus(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", unknown("case status", s)
	}
	return v, nil
}

func (s *CaseStatus) UnmarshalJSON(data []byte) error { return unmarshalEnum(data, s, ParseCaseStatus) }

// RiskLevel is the banded form of a 0-100 risk score.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskSafe, RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

func ParseRiskLevel(s string) (RiskLevel, error) {
	v := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", unknown("risk level", s)
	}
	return v, nil
}

func (r *RiskLevel) UnmarshalJSON(data []byte) error { return unmarshalEnum(data, r, ParseRiskLevel) }

func unknown(kind, raw string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownValue, kind, raw)
}

func unmarshalEnum[T ~string](data []byte, dst *T, parse func(string) (T, error)) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := parse(raw)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
