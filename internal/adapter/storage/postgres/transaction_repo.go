package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, merchant_id, wallet_id, transaction_ref, external_ref, order_id,
	type, status, currency, amount_gross, amount_commission, amount_net,
	payment_method, customer_phone_enc,
	beneficiary_bank, beneficiary_number_enc, beneficiary_name_enc, beneficiary_iban_enc, beneficiary_swift,
	bank_account_id, withdrawal_batch_id, conversion, error_code, error_message, metadata,
	expires_at, completed_at, created_at, updated_at`

// TransactionRepo implements ports.TransactionRepository. Customer phone
// numbers and beneficiary account details are encrypted at rest.
type TransactionRepo struct {
	pool   Pool
	cipher ports.EncryptionService
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool, cipher ports.EncryptionService) *TransactionRepo {
	return &TransactionRepo{pool: pool, cipher: cipher}
}

// Create inserts a new transaction within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	enc, err := r.encode(t)
	if err != nil {
		return err
	}

	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)`

	_, err = tx.Exec(ctx, query,
		t.ID, t.MerchantID, t.WalletID, t.Ref, t.ExternalRef, t.OrderID,
		t.Type, t.Status, t.Currency, t.AmountGross, t.AmountFee, t.AmountNet,
		t.PaymentMethod, enc.phone,
		enc.bank, enc.number, enc.name, enc.iban, enc.swift,
		t.BankAccountID, t.BatchID, enc.conversion, t.ErrorCode, t.ErrorMessage, enc.metadata,
		t.ExpiresAt, t.CompletedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Update persists the mutable lifecycle fields of a transaction.
func (r *TransactionRepo) Update(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	metadata, err := json.Marshal(t.Metadata)
	if err != nil {
		return fmt.Errorf("marshal transaction metadata: %w", err)
	}

	query := `UPDATE transactions SET
		status = $1, external_ref = $2, withdrawal_batch_id = $3,
		error_code = $4, error_message = $5, metadata = $6,
		completed_at = $7, updated_at = $8
		WHERE id = $9`

	tag, err := tx.Exec(ctx, query,
		t.Status, t.ExternalRef, t.BatchID,
		t.ErrorCode, t.ErrorMessage, metadata,
		t.CompletedAt, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", t.Ref)
	}
	return nil
}

// GetByRef fetches a transaction by its public reference.
func (r *TransactionRepo) GetByRef(ctx context.Context, ref string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_ref = $1`
	return r.scanTransaction(r.pool.QueryRow(ctx, query, ref))
}

// GetByRefForUpdate fetches and row-locks a transaction by reference.
func (r *TransactionRepo) GetByRefForUpdate(ctx context.Context, tx pgx.Tx, ref string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_ref = $1 FOR UPDATE`
	return r.scanTransaction(tx.QueryRow(ctx, query, ref))
}

// GetByOrderIDForUpdate row-locks a collection by the merchant's order id.
func (r *TransactionRepo) GetByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, orderID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE merchant_id = $1 AND order_id = $2 AND type = 'collection'
		FOR UPDATE`
	return r.scanTransaction(tx.QueryRow(ctx, query, merchantID, orderID))
}

// ListPendingWithdrawals returns pending withdrawals oldest first.
func (r *TransactionRepo) ListPendingWithdrawals(ctx context.Context, currency *domain.Currency, limit int) ([]domain.Transaction, error) {
	query, args := pendingWithdrawalsQuery(currency, limit, "")
	return r.queryTransactions(ctx, r.pool, query, args...)
}

// LockPendingWithdrawals claims pending withdrawals for a batch. Rows held by
// a concurrent batch run are skipped.
func (r *TransactionRepo) LockPendingWithdrawals(ctx context.Context, tx pgx.Tx, currency *domain.Currency, limit int) ([]domain.Transaction, error) {
	query, args := pendingWithdrawalsQuery(currency, limit, " FOR UPDATE SKIP LOCKED")
	return r.queryTransactions(ctx, tx, query, args...)
}

func pendingWithdrawalsQuery(currency *domain.Currency, limit int, lock string) (string, []any) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE type = 'withdrawal' AND status = 'pending'`
	args := []any{}
	if currency != nil {
		args = append(args, *currency)
		query += fmt.Sprintf(" AND currency = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d", len(args)) + lock
	return query, args
}

// LockExpiredCollections locks pending collections whose deadline has passed.
func (r *TransactionRepo) LockExpiredCollections(ctx context.Context, tx pgx.Tx, now time.Time, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE type = 'collection' AND status = 'pending' AND expires_at <= $1
		ORDER BY expires_at ASC LIMIT $2
		FOR UPDATE SKIP LOCKED`
	return r.queryTransactions(ctx, tx, query, now, limit)
}

// List fetches transactions with filtering and pagination.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("merchant_id = $%d", argIdx))
	args = append(args, params.MerchantID)
	argIdx++

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.Currency != nil {
		conditions = append(conditions, fmt.Sprintf("currency = $%d", argIdx))
		args = append(args, *params.Currency)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	txns, err := r.queryTransactions(ctx, r.pool, dataQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// GetStats aggregates a merchant's transactions by currency, type and status.
func (r *TransactionRepo) GetStats(ctx context.Context, merchantID uuid.UUID, since *time.Time) ([]ports.TransactionStat, error) {
	args := []any{merchantID}
	condition := "merchant_id = $1"
	if since != nil {
		condition += " AND created_at >= $2"
		args = append(args, *since)
	}

	query := fmt.Sprintf(`SELECT currency, type, status, COUNT(*),
		COALESCE(SUM(amount_gross), 0), COALESCE(SUM(amount_commission), 0), COALESCE(SUM(amount_net), 0)
		FROM transactions WHERE %s
		GROUP BY currency, type, status
		ORDER BY currency, type, status`, condition)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get transaction stats: %w", err)
	}
	defer rows.Close()

	var stats []ports.TransactionStat
	for rows.Next() {
		var s ports.TransactionStat
		if err := rows.Scan(&s.Currency, &s.Type, &s.Status, &s.Count, &s.Gross, &s.Fee, &s.Net); err != nil {
			return nil, fmt.Errorf("scan transaction stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction stats: %w", err)
	}
	return stats, nil
}

type encodedTransaction struct {
	phone, bank, number, name, iban, swift *string
	conversion, metadata                   []byte
}

func (r *TransactionRepo) encode(t *domain.Transaction) (*encodedTransaction, error) {
	enc := &encodedTransaction{}
	var err error

	if t.CustomerPhone != nil {
		if enc.phone, err = r.seal(*t.CustomerPhone); err != nil {
			return nil, err
		}
	}
	if b := t.Beneficiary; b != nil {
		enc.bank = &b.BankName
		enc.swift = b.SwiftCode
		if enc.number, err = r.seal(b.AccountNumber); err != nil {
			return nil, err
		}
		if enc.name, err = r.seal(b.AccountName); err != nil {
			return nil, err
		}
		if b.IBAN != nil {
			if enc.iban, err = r.seal(*b.IBAN); err != nil {
				return nil, err
			}
		}
	}
	if t.Conversion != nil {
		if enc.conversion, err = json.Marshal(t.Conversion); err != nil {
			return nil, fmt.Errorf("marshal conversion: %w", err)
		}
	}
	if enc.metadata, err = json.Marshal(t.Metadata); err != nil {
		return nil, fmt.Errorf("marshal transaction metadata: %w", err)
	}
	return enc, nil
}

func (r *TransactionRepo) seal(plain string) (*string, error) {
	s, err := r.cipher.Encrypt(plain)
	if err != nil {
		return nil, fmt.Errorf("encrypt transaction field: %w", err)
	}
	return &s, nil
}

func (r *TransactionRepo) open(sealed *string) (*string, error) {
	if sealed == nil {
		return nil, nil
	}
	s, err := r.cipher.Decrypt(*sealed)
	if err != nil {
		return nil, fmt.Errorf("decrypt transaction field: %w", err)
	}
	return &s, nil
}

func (r *TransactionRepo) queryTransactions(ctx context.Context, q querier, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var (
		phone, bank, number, name, iban, swift *string
		conversion, metadata                   []byte
	)
	err := row.Scan(
		&t.ID, &t.MerchantID, &t.WalletID, &t.Ref, &t.ExternalRef, &t.OrderID,
		&t.Type, &t.Status, &t.Currency, &t.AmountGross, &t.AmountFee, &t.AmountNet,
		&t.PaymentMethod, &phone,
		&bank, &number, &name, &iban, &swift,
		&t.BankAccountID, &t.BatchID, &conversion, &t.ErrorCode, &t.ErrorMessage, &metadata,
		&t.ExpiresAt, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	if t.CustomerPhone, err = r.open(phone); err != nil {
		return nil, err
	}
	if bank != nil {
		b := &domain.Beneficiary{BankName: *bank, SwiftCode: swift}
		if v, err := r.open(number); err != nil {
			return nil, err
		} else if v != nil {
			b.AccountNumber = *v
		}
		if v, err := r.open(name); err != nil {
			return nil, err
		} else if v != nil {
			b.AccountName = *v
		}
		if b.IBAN, err = r.open(iban); err != nil {
			return nil, err
		}
		t.Beneficiary = b
	}
	if len(conversion) > 0 {
		t.Conversion = &domain.ConversionDetail{}
		if err := json.Unmarshal(conversion, t.Conversion); err != nil {
			return nil, fmt.Errorf("unmarshal conversion: %w", err)
		}
	}
	t.Metadata = map[string]any{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal transaction metadata: %w", err)
		}
	}
	return t, nil
}
