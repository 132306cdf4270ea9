package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cacsx/intel-engine/internal/chain"
	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSource_Fixtures(t *testing.T) {
	src := NewMockSource(1)
	ctx := context.Background()

	wallets, err := src.ListWallets(ctx)
	require.NoError(t, err)
	assert.Len(t, wallets, 8)

	alerts, err := src.ListAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts, 5)
	assert.Len(t, src.Cases(), 4)

	w, err := src.GetWallet(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh", w.Address)

	_, err = src.GetWallet(ctx, "99")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = src.ListTransactions(ctx, "99")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMockSource_IsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewMockSource(7).ListTransactions(ctx, "1")
	require.NoError(t, err)
	b, err := NewMockSource(7).ListTransactions(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMockSource_HistoriesAreWellFormed(t *testing.T) {
	src := NewMockSource(3)
	ctx := context.Background()
	wallets, _ := src.ListWallets(ctx)

	for _, w := range wallets {
		txs, err := src.ListTransactions(ctx, w.ID)
		require.NoError(t, err)
		require.NotEmpty(t, txs)

		for i, tx := range txs {
			assert.True(t, tx.Direction.Valid(), "wallet %s tx %s", w.ID, tx.ID)
			owner := tx.From
			if tx.Direction == models.DirectionIncoming {
				owner = tx.To
			}
			assert.Equal(t, w.Address, owner)
			assert.NoError(t, chain.ValidateAddress(w.Chain, tx.Counterparty()), "wallet %s tx %s", w.ID, tx.ID)
			if i > 0 {
				assert.GreaterOrEqual(t, txs[i-1].Timestamp, tx.Timestamp, "history must be newest first")
			}
			_, ok := heuristics.ParseInstant(tx.Timestamp)
			assert.True(t, ok)
		}
	}
}

func TestMockSource_CriticalWalletsCarryLayering(t *testing.T) {
	src := NewMockSource(11)
	ctx := context.Background()
	wallets, _ := src.ListWallets(ctx)

	for _, w := range wallets {
		txs, _ := src.ListTransactions(ctx, w.ID)
		matches := heuristics.DetectLayering(txs, heuristics.DefaultLayeringOptions())
		if !heuristics.ShouldScanForLayering(w.RiskScore) {
			continue
		}
		for k := 0; k < layeringPairsPerWallet; k++ {
			in := fmt.Sprintf("tx-%s-L%d-in", w.ID, k)
			out := fmt.Sprintf("tx-%s-L%d-out", w.ID, k)
			assert.Contains(t, matches.Partners(in), out, "wallet %s pair %d", w.ID, k)
		}
	}
}
