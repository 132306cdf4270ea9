// Package feed supplies wallet intelligence to the engine: the DataSource
// contract, an in-process MockSource with the demo fixtures, and the
// Simulator that drives the live dashboard while scanning is on.
package feed

import (
	"context"
	"errors"

	"github.com/cacsx/intel-engine/pkg/models"
)

// ErrNotFound is returned when a wallet ID is unknown to the source.
var ErrNotFound = errors.New("not found")

// DataSource is where wallets, their histories and historical alerts come
// from. MockSource and the PostgreSQL store both satisfy it.
//
//go:generate mockgen -destination=mocks/mock_source.go -package=mock_feed . DataSource
type DataSource interface {
	ListWallets(ctx context.Context) ([]models.Wallet, error)
	GetWallet(ctx context.Context, id string) (models.Wallet, error)
	ListTransactions(ctx context.Context, walletID string) ([]models.Transaction, error)
	ListAlerts(ctx context.Context) ([]models.Alert, error)
}
