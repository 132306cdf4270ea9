package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cacsx/intel-engine/internal/feed"
	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL is compiled into the binary so schema init works from any
// working directory.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable intelligence store. It serves wallets and
// alerts as a feed.DataSource and persists case files.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var (
	_ feed.DataSource      = (*PostgresStore)(nil)
	_ heuristics.CaseStore = (*PostgresStore)(nil)
)

// Connect initializes the connection pool to PostgreSQL using pgx
func Connect(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	log.Println("[DB] Connected to PostgreSQL")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema executes the embedded schema.sql DDL statements.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema migrations: %w", err)
	}
	log.Println("[DB] Schema initialized")
	return nil
}

const walletColumns = `id, address, chain, risk_score, category, tx_count,
	last_tx, first_seen, last_seen, osint_snippet, sources, pii, metadata`

func scanWallet(row pgx.Row) (models.Wallet, error) {
	var (
		w                         models.Wallet
		chain, category           string
		lastTx, firstSeen, lastSn *time.Time
		pii, metadata             []byte
	)
	err := row.Scan(&w.ID, &w.Address, &chain, &w.RiskScore, &category, &w.TxCount,
		&lastTx, &firstSeen, &lastSn, &w.OSINTSnippet, &w.Sources, &pii, &metadata)
	if err != nil {
		return models.Wallet{}, err
	}
	w.Chain = models.Chain(chain)
	w.Category = models.Category(category)
	if lastTx != nil {
		w.LastTx = *lastTx
	}
	if firstSeen != nil {
		w.FirstSeen = *firstSeen
	}
	if lastSn != nil {
		w.LastSeen = *lastSn
	}
	if err := json.Unmarshal(pii, &w.PII); err != nil {
		return models.Wallet{}, fmt.Errorf("decode pii of wallet %s: %w", w.ID, err)
	}
	if err := json.Unmarshal(metadata, &w.Metadata); err != nil {
		return models.Wallet{}, fmt.Errorf("decode metadata of wallet %s: %w", w.ID, err)
	}
	return w, nil
}

// ListWallets returns every wallet, riskiest first.
func (s *PostgresStore) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+walletColumns+` FROM wallets ORDER BY risk_score DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()

	wallets := make([]models.Wallet, 0)
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (s *PostgresStore) GetWallet(ctx context.Context, id string) (models.Wallet, error) {
	w, err := scanWallet(s.pool.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Wallet{}, fmt.Errorf("wallet %s: %w", id, feed.ErrNotFound)
	}
	if err != nil {
		return models.Wallet{}, fmt.Errorf("query wallet %s: %w", id, err)
	}
	return w, nil
}

// SaveWallet upserts a wallet profile.
func (s *PostgresStore) SaveWallet(ctx context.Context, w models.Wallet) error {
	pii, err := json.Marshal(w.PII)
	if err != nil {
		return err
	}
	metadata, err := json.Marshal(w.Metadata)
	if err != nil {
		return err
	}
	sources := w.Sources
	if sources == nil {
		sources = []string{}
	}

	sql := `
		INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			address = EXCLUDED.address,
			chain = EXCLUDED.chain,
			risk_score = EXCLUDED.risk_score,
			category = EXCLUDED.category,
			tx_count = EXCLUDED.tx_count,
			last_tx = EXCLUDED.last_tx,
			first_seen = EXCLUDED.first_seen,
			last_seen = EXCLUDED.last_seen,
			osint_snippet = EXCLUDED.osint_snippet,
			sources = EXCLUDED.sources,
			pii = EXCLUDED.pii,
			metadata = EXCLUDED.metadata,
			updated_at = NOW();
	`
	_, err = s.pool.Exec(ctx, sql, w.ID, w.Address, string(w.Chain), w.RiskScore, string(w.Category), w.TxCount,
		nullTime(w.LastTx), nullTime(w.FirstSeen), nullTime(w.LastSeen), w.OSINTSnippet, sources, pii, metadata)
	if err != nil {
		return fmt.Errorf("save wallet %s: %w", w.ID, err)
	}
	return nil
}

// ListTransactions returns a wallet's history, newest first. Rows whose
// timestamp could not be read sort last.
func (s *PostgresStore) ListTransactions(ctx context.Context, walletID string) ([]models.Transaction, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE id = $1)`, walletID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check wallet %s: %w", walletID, err)
	}
	if !exists {
		return nil, fmt.Errorf("wallet %s: %w", walletID, feed.ErrNotFound)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, hash, direction, amount, currency, from_address, to_address,
			raw_timestamp, status, fee, block_number
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY occurred_at DESC NULLS LAST, id
	`, walletID)
	if err != nil {
		return nil, fmt.Errorf("query transactions of %s: %w", walletID, err)
	}
	defer rows.Close()

	txs := make([]models.Transaction, 0)
	for rows.Next() {
		var (
			tx                models.Transaction
			direction, status string
		)
		if err := rows.Scan(&tx.ID, &tx.Hash, &direction, &tx.Amount, &tx.Currency, &tx.From, &tx.To,
			&tx.Timestamp, &status, &tx.Fee, &tx.BlockNumber); err != nil {
			return nil, err
		}
		// stored as reported; the detector skips anything it cannot read
		tx.Direction = models.Direction(direction)
		tx.Status = models.TxStatus(status)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// SaveTransactions upserts a wallet's history in one batch.
func (s *PostgresStore) SaveTransactions(ctx context.Context, walletID string, txs []models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	sql := `
		INSERT INTO wallet_transactions
			(wallet_id, id, hash, direction, amount, currency, from_address, to_address,
			 raw_timestamp, occurred_at, status, fee, block_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (wallet_id, id) DO UPDATE SET
			hash = EXCLUDED.hash,
			direction = EXCLUDED.direction,
			amount = EXCLUDED.amount,
			raw_timestamp = EXCLUDED.raw_timestamp,
			occurred_at = EXCLUDED.occurred_at,
			status = EXCLUDED.status;
	`
	batch := &pgx.Batch{}
	for _, tx := range txs {
		var occurred *time.Time
		if at, ok := heuristics.ParseInstant(tx.Timestamp); ok {
			occurred = &at
		}
		batch.Queue(sql, walletID, tx.ID, tx.Hash, string(tx.Direction), tx.Amount, tx.Currency, tx.From, tx.To,
			tx.Timestamp, occurred, string(tx.Status), tx.Fee, tx.BlockNumber)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save transactions of %s: %w", walletID, err)
	}
	return nil
}

// ListAlerts returns stored alerts, newest first.
func (s *PostgresStore) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, type, message, wallet_address, severity, created_at
		FROM alerts ORDER BY created_at DESC LIMIT 1000
	`)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]models.Alert, 0)
	for rows.Next() {
		var (
			a             models.Alert
			typ, severity string
		)
		if err := rows.Scan(&a.ID, &typ, &a.Message, &a.WalletAddress, &severity, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Type = models.AlertType(typ)
		a.Severity = models.Severity(severity)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// SaveAlert stores an alert. Re-saving the same ID is a no-op.
func (s *PostgresStore) SaveAlert(ctx context.Context, a models.Alert) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO alerts (id, type, message, wallet_address, severity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING;
	`, a.ID, string(a.Type), a.Message, a.WalletAddress, string(a.Severity), a.Timestamp)
	if err != nil {
		return fmt.Errorf("save alert %s: %w", a.ID, err)
	}
	return nil
}

// SaveCase upserts a case file.
func (s *PostgresStore) SaveCase(ctx context.Context, c models.CaseFile) error {
	sql := `
		INSERT INTO case_files
			(id, name, description, status, priority, wallets, assignee, notes, evidence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			wallets = EXCLUDED.wallets,
			assignee = EXCLUDED.assignee,
			notes = EXCLUDED.notes,
			evidence = EXCLUDED.evidence,
			updated_at = EXCLUDED.updated_at;
	`
	_, err := s.pool.Exec(ctx, sql, c.ID, c.Name, c.Description, string(c.Status), string(c.Priority),
		nonNil(c.Wallets), c.Assignee, c.Notes, nonNil(c.Evidence), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save case %s: %w", c.ID, err)
	}
	return nil
}

func (s *PostgresStore) ListCases(ctx context.Context) ([]models.CaseFile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, status, priority, wallets, assignee, notes, evidence, created_at, updated_at
		FROM case_files ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	cases := make([]models.CaseFile, 0)
	for rows.Next() {
		var (
			c                models.CaseFile
			status, priority string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &status, &priority, &c.Wallets,
			&c.Assignee, &c.Notes, &c.Evidence, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Status = models.CaseStatus(status)
		c.Priority = models.Severity(priority)
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// SeedFrom copies wallets, histories, alerts and cases into an empty store.
// A store that already holds wallets is left untouched.
func (s *PostgresStore) SeedFrom(ctx context.Context, src feed.DataSource, cases []models.CaseFile) error {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM wallets`).Scan(&n); err != nil {
		return fmt.Errorf("count wallets: %w", err)
	}
	if n > 0 {
		log.Printf("[DB] Store already holds %d wallets, skipping seed", n)
		return nil
	}

	wallets, err := src.ListWallets(ctx)
	if err != nil {
		return err
	}
	for _, w := range wallets {
		if err := s.SaveWallet(ctx, w); err != nil {
			return err
		}
		txs, err := src.ListTransactions(ctx, w.ID)
		if err != nil {
			return err
		}
		if err := s.SaveTransactions(ctx, w.ID, txs); err != nil {
			return err
		}
	}

	alerts, err := src.ListAlerts(ctx)
	if err != nil {
		return err
	}
	for _, a := range alerts {
		if err := s.SaveAlert(ctx, a); err != nil {
			return err
		}
	}
	for _, c := range cases {
		if err := s.SaveCase(ctx, c); err != nil {
			return err
		}
	}

	log.Printf("[DB] Seeded %d wallets, %d alerts, %d cases", len(wallets), len(alerts), len(cases))
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
