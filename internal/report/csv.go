// Package report renders wallet intelligence for export.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
)

// WalletHeader is the column row of every wallet export.
var WalletHeader = []string{
	"Address", "Chain", "Risk Score", "Category", "Total Value",
	"TX Count", "First Seen", "Last Seen", "Sources", "PII Count",
}

// WriteWalletsCSV writes one row per wallet after the header. Fields that
// contain commas or quotes are quoted.
func WriteWalletsCSV(w io.Writer, wallets []models.Wallet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(WalletHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, wallet := range wallets {
		if err := cw.Write(walletRow(wallet)); err != nil {
			return fmt.Errorf("write wallet %s: %w", wallet.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func walletRow(w models.Wallet) []string {
	return []string{
		w.Address,
		string(w.Chain),
		strconv.Itoa(w.RiskScore),
		string(w.Category),
		w.Metadata.TotalValue,
		strconv.Itoa(w.TxCount),
		formatTime(w.FirstSeen),
		formatTime(w.LastSeen),
		strings.Join(w.Sources, "; "),
		strconv.Itoa(len(w.PII)),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename names an export, e.g. "case-lockbit-ransomware-2025-12-06.csv".
func Filename(prefix string, now time.Time) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(prefix), "-"), "-")
	if slug == "" {
		slug = "report"
	}
	return slug + "-" + now.UTC().Format(time.DateOnly) + ".csv"
}
