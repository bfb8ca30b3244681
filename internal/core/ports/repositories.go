package ports

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

import (
	"context"
	"time"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MerchantRepository reads the merchant directory owned by onboarding.
type MerchantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	// Create inserts the wallet unless the merchant already has one; it reports whether a row was created.
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) (bool, error)
	GetByMerchantID(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error)
	GetByMerchantIDForUpdate(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID) (*domain.Wallet, error)
	Update(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	// ListAboveThreshold returns merchants whose balance in currency is strictly above threshold.
	ListAboveThreshold(ctx context.Context, currency domain.Currency, threshold decimal.Decimal) ([]uuid.UUID, error)
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	Update(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByRef(ctx context.Context, ref string) (*domain.Transaction, error)
	GetByRefForUpdate(ctx context.Context, tx pgx.Tx, ref string) (*domain.Transaction, error)
	GetByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, orderID string) (*domain.Transaction, error)
	// ListPendingWithdrawals returns pending withdrawals oldest first.
	ListPendingWithdrawals(ctx context.Context, currency *domain.Currency, limit int) ([]domain.Transaction, error)
	// LockPendingWithdrawals is ListPendingWithdrawals with FOR UPDATE SKIP LOCKED.
	LockPendingWithdrawals(ctx context.Context, tx pgx.Tx, currency *domain.Currency, limit int) ([]domain.Transaction, error)
	// LockExpiredCollections locks pending collections whose deadline is at or before now.
	LockExpiredCollections(ctx context.Context, tx pgx.Tx, now time.Time, limit int) ([]domain.Transaction, error)
	// Reporting queries
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, merchantID uuid.UUID, since *time.Time) ([]TransactionStat, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	MerchantID uuid.UUID
	Status     *domain.TransactionStatus
	Type       *domain.TransactionType
	Currency   *domain.Currency
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// TransactionStat is one (currency, type, status) aggregation bucket.
type TransactionStat struct {
	Currency domain.Currency          `json:"currency"`
	Type     domain.TransactionType   `json:"type"`
	Status   domain.TransactionStatus `json:"status"`
	Count    int64                    `json:"count"`
	Gross    decimal.Decimal          `json:"amount_gross"`
	Fee      decimal.Decimal          `json:"amount_commission"`
	Net      decimal.Decimal          `json:"amount_net"`
}

// LedgerRepository is append-only: there is no update or delete.
type LedgerRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, entries ...domain.LedgerEntry) error
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.LedgerEntry, error)
	AccountBalance(ctx context.Context, account domain.LedgerAccount, currency domain.Currency) (*domain.AccountBalance, error)
}

// BankAccountRepository defines persistence for merchant settlement accounts.
type BankAccountRepository interface {
	Create(ctx context.Context, tx pgx.Tx, account *domain.BankAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.BankAccount, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.BankAccount, error)
	// GetDefault returns the verified default account for a currency, or nil.
	GetDefault(ctx context.Context, merchantID uuid.UUID, currency domain.Currency) (*domain.BankAccount, error)
	Update(ctx context.Context, tx pgx.Tx, account *domain.BankAccount) error
	ClearDefault(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, currency domain.Currency) error
}

// AuditRepository persists audit trail rows.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// OutboxRepository stores events written alongside state changes.
type OutboxRepository interface {
	Create(ctx context.Context, tx pgx.Tx, event *domain.OutboxEvent) error
	// FetchDue returns pending events whose next attempt is due, oldest first.
	FetchDue(ctx context.Context, now time.Time, limit int) ([]domain.OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkRetry(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	// WithinTx runs fn in a transaction, committing on nil and rolling back
	// otherwise. Serialization failures and deadlocks are retried.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}
