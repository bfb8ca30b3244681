package ports

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

import (
	"context"
	"time"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// --- Service Ports (Business Logic) ---

// WalletService owns wallet balances. Credit and Debit run inside the
// caller's transaction and never write ledger entries.
type WalletService interface {
	OpenWallet(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error)
	Credit(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, amount decimal.Decimal, currency domain.Currency) (*domain.Wallet, error)
	Debit(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, amount decimal.Decimal, currency domain.Currency) (*domain.Wallet, error)
	Freeze(ctx context.Context, merchantID uuid.UUID, reason string) (*domain.Wallet, error)
	Unfreeze(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error)
	GetBalance(ctx context.Context, merchantID uuid.UUID) (*BalanceView, error)
}

// BalanceView is the merchant-facing balance summary.
type BalanceView struct {
	USD               CurrencyBalance `json:"usd"`
	CDF               CurrencyBalance `json:"cdf"`
	IsFrozen          bool            `json:"is_frozen"`
	FrozenReason      *string         `json:"frozen_reason,omitempty"`
	LastTransactionAt *time.Time      `json:"last_transaction_at,omitempty"`
}

type CurrencyBalance struct {
	Available      decimal.Decimal `json:"available"`
	TotalReceived  decimal.Decimal `json:"total_received"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
}

// LedgerService records balanced postings and answers balance queries.
type LedgerService interface {
	RecordDoubleEntry(ctx context.Context, tx pgx.Tx, entry domain.DoubleEntry) error
	AccountBalance(ctx context.Context, account domain.LedgerAccount, currency domain.Currency) (*domain.AccountBalance, error)
	EntriesForTransaction(ctx context.Context, ref string) ([]domain.LedgerEntry, error)
}

// ExchangeRateService serves cached, spread-adjusted USD/CDF rates.
type ExchangeRateService interface {
	Rates() domain.RateTable
	Quote(from, to domain.Currency) (decimal.Decimal, error)
	Convert(amount decimal.Decimal, from, to domain.Currency) (*domain.Quote, error)
	Refresh(ctx context.Context) error
}

// ConversionService moves value between the two wallet currencies.
type ConversionService interface {
	LockRate(ctx context.Context, merchantID uuid.UUID, from, to domain.Currency) (*domain.RateLock, error)
	ExecuteLocked(ctx context.Context, merchantID uuid.UUID, lockID string) (*ConversionResult, error)
	Convert(ctx context.Context, merchantID uuid.UUID, amount decimal.Decimal, from, to domain.Currency) (*ConversionResult, error)
}

type ConversionResult struct {
	Transaction   *domain.Transaction `json:"transaction"`
	From          domain.Currency     `json:"from_currency"`
	To            domain.Currency     `json:"to_currency"`
	FromAmount    decimal.Decimal     `json:"from_amount"`
	ToAmount      decimal.Decimal     `json:"to_amount"`
	Rate          decimal.Decimal     `json:"rate"`
	SpreadRevenue decimal.Decimal     `json:"spread_revenue"`
	Balance       *BalanceView        `json:"balance"`
}

// SegregationService keeps wallet balances inside per-currency thresholds
// by moving value to and from the merchant's bank accounts.
type SegregationService interface {
	SweepToBank(ctx context.Context, req TransferRequest) (*TransferResult, error)
	FundFromBank(ctx context.Context, req TransferRequest) (*TransferResult, error)
	ApproveFunding(ctx context.Context, ref string, adminID string) (*TransferResult, error)
	RejectFunding(ctx context.Context, ref string, adminID string, reason string) (*TransferResult, error)
	AutoSweep(ctx context.Context, merchantID uuid.UUID) (*AutoSweepResult, error)
	MerchantsRequiringSweep(ctx context.Context) ([]uuid.UUID, error)
	Status(ctx context.Context, merchantID uuid.UUID) (*SegregationStatus, error)
}

// TransferRequest moves Amount between a wallet and one of the merchant's bank accounts.
type TransferRequest struct {
	MerchantID    uuid.UUID
	Amount        decimal.Decimal
	Currency      domain.Currency
	BankAccountID uuid.UUID
	Note          string
}

type TransferResult struct {
	Transaction      *domain.Transaction `json:"transaction"`
	BankName         string              `json:"bank_name"`
	MaskedAccount    string              `json:"account_number"`
	NewWalletBalance decimal.Decimal     `json:"new_wallet_balance"`
}

type AutoSweepResult struct {
	MerchantID uuid.UUID        `json:"merchant_id"`
	Sweeps     []TransferResult `json:"sweeps"`
	Skipped    []string         `json:"skipped,omitempty"`
	Failed     []string         `json:"failed,omitempty"`
}

type SegregationStatus struct {
	MerchantID   uuid.UUID                               `json:"merchant_id"`
	Currencies   map[domain.Currency]CurrencySegregation `json:"segregation"`
	BankAccounts []BankAccountView                       `json:"bank_accounts"`
}

type CurrencySegregation struct {
	WalletBalance     decimal.Decimal `json:"wallet_balance"`
	BankBalance       decimal.Decimal `json:"bank_balance"`
	TotalBalance      decimal.Decimal `json:"total_balance"`
	MaxWalletBalance  decimal.Decimal `json:"wallet_max_limit"`
	AvailableCapacity decimal.Decimal `json:"wallet_available_capacity"`
	AutoSweepAt       decimal.Decimal `json:"auto_sweep_threshold"`
	MinOperational    decimal.Decimal `json:"min_operational_balance"`
	UsagePercent      decimal.Decimal `json:"wallet_usage_percent"`
	RequiresSweep     bool            `json:"requires_sweep"`
	CanAcceptFunding  bool            `json:"can_accept_funding"`
}

// BankAccountService manages merchant settlement accounts.
type BankAccountService interface {
	Register(ctx context.Context, req BankAccountRequest) (*BankAccountView, error)
	Verify(ctx context.Context, accountID uuid.UUID, adminID string) (*BankAccountView, error)
	SetDefault(ctx context.Context, merchantID, accountID uuid.UUID) (*BankAccountView, error)
	List(ctx context.Context, merchantID uuid.UUID) ([]BankAccountView, error)
}

type BankAccountRequest struct {
	MerchantID    uuid.UUID
	BankName      string
	AccountNumber string
	AccountName   string
	IBAN          *string
	SwiftCode     *string
	Currency      domain.Currency
}

// BankAccountView never exposes the full account number.
type BankAccountView struct {
	ID            uuid.UUID       `json:"id"`
	BankName      string          `json:"bank_name"`
	AccountName   string          `json:"account_name"`
	AccountNumber string          `json:"account_number"`
	HasIBAN       bool            `json:"has_iban"`
	SwiftCode     *string         `json:"swift_code,omitempty"`
	Currency      domain.Currency `json:"currency"`
	IsVerified    bool            `json:"is_verified"`
	IsDefault     bool            `json:"is_default"`
	Balance       decimal.Decimal `json:"tracked_balance"`
}

// WithdrawalService runs the bank payout lifecycle.
type WithdrawalService interface {
	Initiate(ctx context.Context, req WithdrawalRequest) (*TransferResult, error)
	Pending(ctx context.Context, currency *domain.Currency, limit int) ([]domain.Transaction, error)
	GenerateBatch(ctx context.Context, currency *domain.Currency, format BatchFormat) (*BatchResult, error)
	Complete(ctx context.Context, ref string, adminID string) (*WithdrawalOutcome, error)
	Reject(ctx context.Context, ref string, adminID string, reason string) (*WithdrawalOutcome, error)
}

type WithdrawalRequest struct {
	MerchantID    uuid.UUID
	Amount        decimal.Decimal
	Currency      domain.Currency
	BankAccountID uuid.UUID
	Description   string
}

// BatchFormat selects the bank file layout.
type BatchFormat string

const (
	BatchFormatAuto  BatchFormat = "auto"
	BatchFormatCSV   BatchFormat = "csv"
	BatchFormatSEPA  BatchFormat = "sepa"
	BatchFormatSWIFT BatchFormat = "swift"
)

type BatchResult struct {
	BatchID string      `json:"batch_id"`
	Count   int         `json:"count"`
	Files   []BatchFile `json:"files"`
	Items   []BatchItem `json:"transactions"`
}

type BatchFile struct {
	Name     string          `json:"file_name"`
	Format   BatchFormat     `json:"format"`
	Location string          `json:"location"`
	Currency domain.Currency `json:"currency"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total_amount"`
}

type BatchItem struct {
	Ref         string          `json:"transaction_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    domain.Currency `json:"currency"`
	Beneficiary string          `json:"beneficiary"`
	Account     string          `json:"account"`
	Format      BatchFormat     `json:"format"`
}

// WithdrawalOutcome reports AlreadyProcessed when a terminal call was a no-op.
type WithdrawalOutcome struct {
	Transaction      *domain.Transaction `json:"transaction"`
	AlreadyProcessed bool                `json:"already_processed"`
}

// SettlementService handles operator collections and their asynchronous results.
type SettlementService interface {
	InitiateCollection(ctx context.Context, req CollectionRequest) (*domain.Transaction, error)
	HandlePaymentResult(ctx context.Context, result PaymentResult) (*SettlementOutcome, error)
	ExpireStale(ctx context.Context, now time.Time, limit int) (int, error)
}

type CollectionRequest struct {
	MerchantID    uuid.UUID
	Amount        decimal.Decimal
	Currency      domain.Currency
	Method        domain.PaymentMethod
	OrderID       string
	CustomerPhone string
}

// PaymentResult is the normalized signal delivered by a payment gateway adapter.
type PaymentResult struct {
	TransactionRef string
	MerchantID     uuid.UUID
	OrderID        string
	Operator       domain.PaymentMethod
	ExternalRef    string
	Success        bool
	Amount         decimal.Decimal
	Currency       domain.Currency
	FailureReason  string
}

// SettlementOutcome reports Applied=false when the result was a replay.
type SettlementOutcome struct {
	Transaction *domain.Transaction `json:"transaction"`
	Applied     bool                `json:"applied"`
}

// ReportingService answers merchant history queries.
type ReportingService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	Statistics(ctx context.Context, merchantID uuid.UUID, period string) (*StatisticsReport, error)
}

type StatisticsReport struct {
	Period  string                            `json:"period"`
	Since   *time.Time                        `json:"since,omitempty"`
	Buckets []TransactionStat                 `json:"buckets"`
	Summary map[domain.Currency]CurrencyStats `json:"summary"`
}

type CurrencyStats struct {
	Collected      decimal.Decimal `json:"collected_net"`
	Commission     decimal.Decimal `json:"commission"`
	Withdrawn      decimal.Decimal `json:"withdrawn"`
	PendingPayouts decimal.Decimal `json:"pending_withdrawals"`
	SuccessCount   int64           `json:"success_count"`
	FailedCount    int64           `json:"failed_count"`
	PendingCount   int64           `json:"pending_count"`
}

// AuditService records administrative actions.
type AuditService interface {
	Log(ctx context.Context, entry AuditEntry)
}

type AuditEntry struct {
	ActorID      string
	MerchantID   *uuid.UUID
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	Details      map[string]interface{}
	IPAddress    string
}
