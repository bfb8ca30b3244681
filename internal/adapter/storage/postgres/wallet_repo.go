package postgres

import (
	"context"
	"errors"
	"fmt"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const walletColumns = `id, merchant_id, balance_usd, balance_cdf,
	total_received_usd, total_received_cdf, total_withdrawn_usd, total_withdrawn_cdf,
	is_frozen, frozen_reason, frozen_at, last_transaction_at, created_at, updated_at`

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a wallet. A merchant already holding a wallet is left untouched
// and false is returned.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) (bool, error) {
	query := `INSERT INTO wallets (id, merchant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (merchant_id) DO NOTHING`

	tag, err := tx.Exec(ctx, query, w.ID, w.MerchantID, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("insert wallet: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByMerchantID fetches a wallet by merchant ID (non-locking read).
func (r *WalletRepo) GetByMerchantID(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE merchant_id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, merchantID), "get wallet by merchant id")
}

// GetByMerchantIDForUpdate fetches a wallet with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByMerchantIDForUpdate(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE merchant_id = $1 FOR UPDATE`
	return scanWallet(tx.QueryRow(ctx, query, merchantID), "get wallet for update")
}

// Update writes balances, totals and freeze state.
func (r *WalletRepo) Update(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `UPDATE wallets SET
		balance_usd = $1, balance_cdf = $2,
		total_received_usd = $3, total_received_cdf = $4,
		total_withdrawn_usd = $5, total_withdrawn_cdf = $6,
		is_frozen = $7, frozen_reason = $8, frozen_at = $9,
		last_transaction_at = $10, updated_at = $11
		WHERE id = $12`

	tag, err := tx.Exec(ctx, query,
		w.BalanceUSD, w.BalanceCDF,
		w.TotalReceivedUSD, w.TotalReceivedCDF,
		w.TotalWithdrawnUSD, w.TotalWithdrawnCDF,
		w.IsFrozen, w.FrozenReason, w.FrozenAt,
		w.LastTransactionAt, w.UpdatedAt, w.ID,
	)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update wallet: wallet %s not found", w.ID)
	}
	return nil
}

// ListAboveThreshold returns merchants whose balance in currency exceeds threshold.
func (r *WalletRepo) ListAboveThreshold(ctx context.Context, currency domain.Currency, threshold decimal.Decimal) ([]uuid.UUID, error) {
	column := "balance_usd"
	if currency == domain.CurrencyCDF {
		column = "balance_cdf"
	}
	query := `SELECT merchant_id FROM wallets
		WHERE ` + column + ` > $1 AND is_frozen = FALSE
		ORDER BY merchant_id`

	rows, err := r.pool.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("list wallets above threshold: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanWallet(row pgx.Row, op string) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.MerchantID, &w.BalanceUSD, &w.BalanceCDF,
		&w.TotalReceivedUSD, &w.TotalReceivedCDF, &w.TotalWithdrawnUSD, &w.TotalWithdrawnCDF,
		&w.IsFrozen, &w.FrozenReason, &w.FrozenAt, &w.LastTransactionAt,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}
