package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/cacsx/intel-engine/internal/feed"
	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a disposable database named by TEST_DATABASE_URL.
func openTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.NoError(t, s.InitSchema(ctx))
	_, err = s.pool.Exec(ctx, `TRUNCATE wallets, wallet_transactions, alerts, case_files`)
	require.NoError(t, err)
	return s
}

func TestPostgresStore_SeedAndRead(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	src := feed.NewMockSource(1)

	require.NoError(t, s.SeedFrom(ctx, src, src.Cases()))
	// second seed is a no-op
	require.NoError(t, s.SeedFrom(ctx, src, src.Cases()))

	wallets, err := s.ListWallets(ctx)
	require.NoError(t, err)
	assert.Len(t, wallets, 8)
	assert.Equal(t, "3", wallets[0].ID, "riskiest first")

	w, err := s.GetWallet(ctx, "1")
	require.NoError(t, err)
	want, _ := src.GetWallet(ctx, "1")
	assert.Equal(t, want.PII, w.PII)
	assert.Equal(t, want.Metadata, w.Metadata)
	assert.True(t, want.LastTx.Equal(w.LastTx))

	_, err = s.GetWallet(ctx, "missing")
	assert.True(t, errors.Is(err, feed.ErrNotFound))

	txs, err := s.ListTransactions(ctx, "1")
	require.NoError(t, err)
	srcTxs, _ := src.ListTransactions(ctx, "1")
	assert.Len(t, txs, len(srcTxs))

	// the stored history still carries the planted layering pairs
	matches := heuristics.DetectLayering(txs, heuristics.DefaultLayeringOptions())
	assert.GreaterOrEqual(t, matches.PairCount(), 2)

	alerts, err := s.ListAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts, 5)

	cases, err := s.ListCases(ctx)
	require.NoError(t, err)
	assert.Len(t, cases, 4)
}

func TestPostgresStore_CaseUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	c := models.CaseFile{ID: "c1", Name: "n", Status: models.CaseOpen, Priority: models.SeverityLow, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.SaveCase(ctx, c))

	c.Status = models.CaseClosed
	c.Evidence = []string{"report.pdf"}
	require.NoError(t, s.SaveCase(ctx, c))

	cases, err := s.ListCases(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, models.CaseClosed, cases[0].Status)
	assert.Equal(t, []string{"report.pdf"}, cases[0].Evidence)
	assert.Empty(t, cases[0].Wallets)
}
