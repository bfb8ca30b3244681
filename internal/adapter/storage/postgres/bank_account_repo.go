package postgres

import (
	"context"
	"errors"
	"fmt"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const bankAccountColumns = `id, merchant_id, bank_name, account_number_enc, account_name_enc, iban_enc,
	swift_code, currency, is_verified, is_default, tracked_balance,
	verified_at, last_sweep_at, last_funding_at, created_at, updated_at`

// BankAccountRepo implements ports.BankAccountRepository. Account number,
// holder name and IBAN are stored encrypted.
type BankAccountRepo struct {
	pool   Pool
	cipher ports.EncryptionService
}

// NewBankAccountRepo creates a new BankAccountRepo.
func NewBankAccountRepo(pool Pool, cipher ports.EncryptionService) *BankAccountRepo {
	return &BankAccountRepo{pool: pool, cipher: cipher}
}

// Create inserts a new bank account.
func (r *BankAccountRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.BankAccount) error {
	number, name, iban, err := r.sealAccount(a)
	if err != nil {
		return err
	}

	query := `INSERT INTO merchant_bank_accounts (` + bankAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = tx.Exec(ctx, query,
		a.ID, a.MerchantID, a.BankName, number, name, iban,
		a.SwiftCode, a.Currency, a.IsVerified, a.IsDefault, a.TrackedBalance,
		a.VerifiedAt, a.LastSweepAt, a.LastFundingAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bank account: %w", err)
	}
	return nil
}

// GetByID fetches a bank account (non-locking read).
func (r *BankAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM merchant_bank_accounts WHERE id = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches and row-locks a bank account.
func (r *BankAccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM merchant_bank_accounts WHERE id = $1 FOR UPDATE`
	return r.scanAccount(tx.QueryRow(ctx, query, id))
}

// ListByMerchant returns a merchant's accounts, defaults first.
func (r *BankAccountRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM merchant_bank_accounts
		WHERE merchant_id = $1
		ORDER BY is_default DESC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.BankAccount
	for rows.Next() {
		a, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// GetDefault returns the verified default account for a currency, or nil.
func (r *BankAccountRepo) GetDefault(ctx context.Context, merchantID uuid.UUID, currency domain.Currency) (*domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM merchant_bank_accounts
		WHERE merchant_id = $1 AND currency = $2 AND is_default AND is_verified`
	return r.scanAccount(r.pool.QueryRow(ctx, query, merchantID, currency))
}

// Update persists verification, default flag, tracked balance and timestamps.
func (r *BankAccountRepo) Update(ctx context.Context, tx pgx.Tx, a *domain.BankAccount) error {
	query := `UPDATE merchant_bank_accounts SET
		is_verified = $1, is_default = $2, tracked_balance = $3,
		verified_at = $4, last_sweep_at = $5, last_funding_at = $6, updated_at = $7
		WHERE id = $8`

	tag, err := tx.Exec(ctx, query,
		a.IsVerified, a.IsDefault, a.TrackedBalance,
		a.VerifiedAt, a.LastSweepAt, a.LastFundingAt, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update bank account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bank account not found: %s", a.ID)
	}
	return nil
}

// ClearDefault unsets the default flag on every account of a merchant in one currency.
func (r *BankAccountRepo) ClearDefault(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, currency domain.Currency) error {
	query := `UPDATE merchant_bank_accounts SET is_default = FALSE, updated_at = NOW()
		WHERE merchant_id = $1 AND currency = $2 AND is_default`

	if _, err := tx.Exec(ctx, query, merchantID, currency); err != nil {
		return fmt.Errorf("clear default bank account: %w", err)
	}
	return nil
}

func (r *BankAccountRepo) sealAccount(a *domain.BankAccount) (number, name string, iban *string, err error) {
	if number, err = r.cipher.Encrypt(a.AccountNumber); err != nil {
		return "", "", nil, fmt.Errorf("encrypt account number: %w", err)
	}
	if name, err = r.cipher.Encrypt(a.AccountName); err != nil {
		return "", "", nil, fmt.Errorf("encrypt account name: %w", err)
	}
	if a.IBAN != nil {
		sealed, err := r.cipher.Encrypt(*a.IBAN)
		if err != nil {
			return "", "", nil, fmt.Errorf("encrypt iban: %w", err)
		}
		iban = &sealed
	}
	return number, name, iban, nil
}

func (r *BankAccountRepo) scanAccount(row pgx.Row) (*domain.BankAccount, error) {
	a := &domain.BankAccount{}
	var number, name string
	var iban *string
	err := row.Scan(
		&a.ID, &a.MerchantID, &a.BankName, &number, &name, &iban,
		&a.SwiftCode, &a.Currency, &a.IsVerified, &a.IsDefault, &a.TrackedBalance,
		&a.VerifiedAt, &a.LastSweepAt, &a.LastFundingAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan bank account: %w", err)
	}

	if a.AccountNumber, err = r.cipher.Decrypt(number); err != nil {
		return nil, fmt.Errorf("decrypt account number: %w", err)
	}
	if a.AccountName, err = r.cipher.Decrypt(name); err != nil {
		return nil, fmt.Errorf("decrypt account name: %w", err)
	}
	if iban != nil {
		plain, err := r.cipher.Decrypt(*iban)
		if err != nil {
			return nil, fmt.Errorf("decrypt iban: %w", err)
		}
		a.IBAN = &plain
	}
	return a, nil
}
