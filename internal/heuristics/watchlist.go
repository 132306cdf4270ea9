package heuristics

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
)

// Wallet Watchlist
//
// Concurrent-safe set of addresses under monitoring. Transaction histories
// are checked against it; any counterparty on the list produces a hit that
// feeds the wallet assessment and the alert stream.
//
// Lookups take a read lock so checks run concurrently; Add/Remove are
// serialized. EVM addresses are compared case-insensitively.

// WatchedAddress holds metadata for a monitored address
type WatchedAddress struct {
	Address    string          `json:"address"`
	Category   models.Category `json:"category"`
	Label      string          `json:"label"`
	CaseID     string          `json:"caseId,omitempty"`
	AddedAt    time.Time       `json:"addedAt"`
	AlertLevel models.Severity `json:"alertLevel"`
}

// WatchlistHit is a watched address found in a transaction
type WatchlistHit struct {
	Address    string           `json:"address"`
	Category   models.Category  `json:"category"`
	Label      string           `json:"label"`
	CaseID     string           `json:"caseId,omitempty"`
	TxID       string           `json:"txId"`
	Direction  models.Direction `json:"direction"`
	Amount     string           `json:"amount"`
	AlertLevel models.Severity  `json:"alertLevel"`
}

// WalletWatchlist is the monitored address set
type WalletWatchlist struct {
	mu        sync.RWMutex
	addresses map[string]WatchedAddress
}

func NewWalletWatchlist() *WalletWatchlist {
	return &WalletWatchlist{
		addresses: make(map[string]WatchedAddress),
	}
}

// Add registers (or replaces) an address
func (w *WalletWatchlist) Add(addr string, category models.Category, label, caseID string, level models.Severity) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.addresses[watchKey(addr)] = WatchedAddress{
		Address:    addr,
		Category:   category,
		Label:      label,
		CaseID:     caseID,
		AddedAt:    time.Now(),
		AlertLevel: level,
	}
}

// Remove stops monitoring an address. It reports whether it was present.
func (w *WalletWatchlist) Remove(addr string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := watchKey(addr)
	_, ok := w.addresses[key]
	delete(w.addresses, key)
	return ok
}

func (w *WalletWatchlist) Contains(addr string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.addresses[watchKey(addr)]
	return ok
}

func (w *WalletWatchlist) Get(addr string) (WatchedAddress, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	entry, ok := w.addresses[watchKey(addr)]
	return entry, ok
}

// CheckTransactions scans a wallet history for watched counterparties.
func (w *WalletWatchlist) CheckTransactions(txs []models.Transaction) []WatchlistHit {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var hits []WatchlistHit
	for _, tx := range txs {
		cp := tx.Counterparty()
		if cp == "" {
			continue
		}
		entry, ok := w.addresses[watchKey(cp)]
		if !ok {
			continue
		}
		hits = append(hits, WatchlistHit{
			Address:    entry.Address,
			Category:   entry.Category,
			Label:      entry.Label,
			CaseID:     entry.CaseID,
			TxID:       tx.ID,
			Direction:  tx.Direction,
			Amount:     tx.Amount,
			AlertLevel: entry.AlertLevel,
		})
	}
	return hits
}

// LoadFromCase watches every wallet attached to a case. resolve maps a
// wallet ID to the wallet; unknown IDs are skipped. Returns how many were added.
func (w *WalletWatchlist) LoadFromCase(c models.CaseFile, resolve func(id string) (models.Wallet, bool)) int {
	added := 0
	for _, id := range c.Wallets {
		wallet, ok := resolve(id)
		if !ok {
			continue
		}
		w.Add(wallet.Address, wallet.Category, "Case: "+c.Name, c.ID, c.Priority)
		added++
	}
	return added
}

func (w *WalletWatchlist) Size() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.addresses)
}

// ListAll returns all watched addresses ordered by address
func (w *WalletWatchlist) ListAll() []WatchedAddress {
	w.mu.RLock()
	defer w.mu.RUnlock()

	list := make([]WatchedAddress, 0, len(w.addresses))
	for _, entry := range w.addresses {
		list = append(list, entry)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Address < list[j].Address })
	return list
}

func watchKey(addr string) string {
	addr = strings.TrimSpace(addr)
	if strings.HasPrefix(addr, "0x") || strings.HasPrefix(addr, "0X") {
		return strings.ToLower(addr)
	}
	return addr
}
