package feed

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// layeringPairsPerWallet is how many synchronized offsetting transfers are
// planted in each critical wallet's generated history.
const layeringPairsPerWallet = 2

// MockSource serves the demo fixtures with generated transaction histories.
// Generation is driven by a seed, so two sources built with the same seed
// return identical data.
type MockSource struct {
	wallets []models.Wallet
	byID    map[string]int
	txs     map[string][]models.Transaction
	alerts  []models.Alert
	cases   []models.CaseFile
}

// NewMockSource builds the fixture set. seed drives every generated value.
func NewMockSource(seed int64) *MockSource {
	rng := rand.New(rand.NewSource(seed))
	fixtures := fixtureWallets()

	m := &MockSource{
		wallets: make([]models.Wallet, 0, len(fixtures)),
		byID:    make(map[string]int, len(fixtures)),
		txs:     make(map[string][]models.Transaction, len(fixtures)),
		alerts:  fixtureAlerts(),
		cases:   fixtureCases(),
	}
	for i, f := range fixtures {
		m.wallets = append(m.wallets, f.wallet)
		m.byID[f.wallet.ID] = i
		m.txs[f.wallet.ID] = generateHistory(rng, f.wallet, f.history)
	}
	return m
}

func (m *MockSource) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	out := make([]models.Wallet, len(m.wallets))
	copy(out, m.wallets)
	return out, nil
}

func (m *MockSource) GetWallet(ctx context.Context, id string) (models.Wallet, error) {
	i, ok := m.byID[id]
	if !ok {
		return models.Wallet{}, fmt.Errorf("wallet %s: %w", id, ErrNotFound)
	}
	return m.wallets[i], nil
}

func (m *MockSource) ListTransactions(ctx context.Context, walletID string) ([]models.Transaction, error) {
	txs, ok := m.txs[walletID]
	if !ok {
		return nil, fmt.Errorf("wallet %s: %w", walletID, ErrNotFound)
	}
	out := make([]models.Transaction, len(txs))
	copy(out, txs)
	return out, nil
}

func (m *MockSource) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	out := make([]models.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out, nil
}

// Cases returns the demo case files.
func (m *MockSource) Cases() []models.CaseFile {
	out := make([]models.CaseFile, len(m.cases))
	copy(out, m.cases)
	return out
}

// generateHistory fabricates count transfers ending at the wallet's last
// activity, newest first. Critical wallets additionally get offsetting
// pairs so the layering detector has something to find.
func generateHistory(rng *rand.Rand, w models.Wallet, count int) []models.Transaction {
	txs := make([]models.Transaction, 0, count+2*layeringPairsPerWallet)
	anchor := w.LastTx
	if anchor.IsZero() {
		anchor = time.Now().UTC()
	}

	for i := 0; i < count; i++ {
		dir := models.DirectionOutgoing
		if rng.Float64() > 0.5 {
			dir = models.DirectionIncoming
		}
		back := time.Duration(float64(i) * rng.Float64() * float64(24*time.Hour))
		amount := decimal.NewFromFloat(rng.Float64() * 10).StringFixed(4)
		txs = append(txs, newTransfer(rng, w, fmt.Sprintf("tx-%s-%d", w.ID, i), dir, amount, anchor.Add(-back)))
	}

	if heuristics.ShouldScanForLayering(w.RiskScore) {
		for k := 0; k < layeringPairsPerWallet; k++ {
			at := anchor.Add(-time.Duration(rng.Intn(72)+1) * time.Hour)
			gap := time.Duration(rng.Intn(41)+5) * time.Second
			amount := decimal.NewFromFloat(rng.Float64()*50 + 1).StringFixed(4)
			txs = append(txs,
				newTransfer(rng, w, fmt.Sprintf("tx-%s-L%d-in", w.ID, k), models.DirectionIncoming, amount, at),
				newTransfer(rng, w, fmt.Sprintf("tx-%s-L%d-out", w.ID, k), models.DirectionOutgoing, amount, at.Add(gap)),
			)
		}
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Timestamp > txs[j].Timestamp })
	return txs
}

func newTransfer(rng *rand.Rand, w models.Wallet, id string, dir models.Direction, amount string, at time.Time) models.Transaction {
	tx := models.Transaction{
		ID:          id,
		Hash:        txHash(rng, w.Chain),
		Direction:   dir,
		Amount:      amount,
		Currency:    currencyFor(rng, w.Chain),
		Timestamp:   at.UTC().Format("2006-01-02T15:04:05.000Z"),
		Status:      models.TxConfirmed,
		Fee:         decimal.NewFromFloat(rng.Float64() * 0.01).StringFixed(6),
		BlockNumber: 18000000 + int64(rng.Intn(100000)),
	}
	if dir == models.DirectionIncoming {
		tx.From, tx.To = randomAddress(rng, w.Chain), w.Address
	} else {
		tx.From, tx.To = w.Address, randomAddress(rng, w.Chain)
	}
	return tx
}

func currencyFor(rng *rand.Rand, c models.Chain) string {
	if rng.Intn(3) == 0 {
		return "USDT"
	}
	return string(c)
}

// txHash renders a hash in the chain's native notation.
func txHash(rng *rand.Rand, c models.Chain) string {
	a, _ := uuid.NewRandomFromReader(rng)
	b, _ := uuid.NewRandomFromReader(rng)
	raw := append(a[:], b[:]...)
	switch c {
	case models.ChainETH:
		return "0x" + hex.EncodeToString(raw)
	case models.ChainSOL:
		return base58.Encode(append(raw, raw...))
	}
	return hex.EncodeToString(raw)
}

// randomAddress produces a well-formed counterparty address for c.
func randomAddress(rng *rand.Rand, c models.Chain) string {
	buf := make([]byte, 32)
	rng.Read(buf)
	switch c {
	case models.ChainBTC:
		addr, err := btcutil.NewAddressWitnessPubKeyHash(buf[:20], &chaincfg.MainNetParams)
		if err == nil {
			return addr.EncodeAddress()
		}
	case models.ChainTRX:
		return base58.CheckEncode(buf[:20], 0x41)
	case models.ChainSOL:
		return base58.Encode(buf)
	}
	return "0x" + hex.EncodeToString(buf[:20])
}
