package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository. It only ever inserts.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Insert appends entries within the caller's transaction.
func (r *LedgerRepo) Insert(ctx context.Context, tx pgx.Tx, entries ...domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries
		(id, transaction_id, entry_type, account_type, amount, currency, description, metadata, is_reconciled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, e := range entries {
		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal ledger metadata: %w", err)
		}
		if string(metadata) == "null" {
			metadata = []byte("{}")
		}
		if _, err := tx.Exec(ctx, query,
			e.ID, e.TransactionID, e.EntryType, e.Account, e.Amount, e.Currency,
			e.Description, metadata, e.IsReconciled, e.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
	}
	return nil
}

// ListByTransaction returns the entries posted for a transaction in insertion order.
func (r *LedgerRepo) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.LedgerEntry, error) {
	query := `SELECT id, transaction_id, entry_type, account_type, amount, currency,
		description, metadata, is_reconciled, created_at
		FROM ledger_entries WHERE transaction_id = $1
		ORDER BY created_at ASC, entry_type DESC`

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var (
			e        domain.LedgerEntry
			desc     *string
			metadata []byte
		)
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.EntryType, &e.Account, &e.Amount, &e.Currency,
			&desc, &metadata, &e.IsReconciled, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if desc != nil {
			e.Description = *desc
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal ledger metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AccountBalance sums debits and credits posted to an account.
func (r *LedgerRepo) AccountBalance(ctx context.Context, account domain.LedgerAccount, currency domain.Currency) (*domain.AccountBalance, error) {
	query := `SELECT
		COALESCE(SUM(amount) FILTER (WHERE entry_type = 'debit'), 0),
		COALESCE(SUM(amount) FILTER (WHERE entry_type = 'credit'), 0)
		FROM ledger_entries WHERE account_type = $1 AND currency = $2`

	b := &domain.AccountBalance{Account: account, Currency: currency}
	if err := r.pool.QueryRow(ctx, query, account, currency).Scan(&b.Debits, &b.Credits); err != nil {
		return nil, fmt.Errorf("ledger account balance: %w", err)
	}
	b.Balance = b.Credits.Sub(b.Debits)
	return b, nil
}
