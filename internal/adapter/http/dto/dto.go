package dto

import (
	"time"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/shopspring/decimal"
)

// --- Merchant requests ---

// BankAccountRequest registers a settlement bank account.
type BankAccountRequest struct {
	BankName      string  `json:"bank_name" binding:"required,max=100"`
	AccountNumber string  `json:"account_number" binding:"required,max=50" sanitize:"bankcode"`
	AccountName   string  `json:"account_name" binding:"required,max=150"`
	IBAN          *string `json:"iban,omitempty" binding:"omitempty,iban" sanitize:"bankcode"`
	SwiftCode     *string `json:"swift_code,omitempty" binding:"omitempty,bic" sanitize:"bankcode"`
	Currency      string  `json:"currency" binding:"required,currency" sanitize:"-"`
}

// RateLockRequest asks for a rate lock over the whole source balance.
type RateLockRequest struct {
	From string `json:"from_currency" binding:"required,currency"`
	To   string `json:"to_currency" binding:"required,currency,nefield=From"`
}

// ConvertRequest is the one-step conversion at the live rate.
type ConvertRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"money"`
	From   string          `json:"from_currency" binding:"required,currency"`
	To     string          `json:"to_currency" binding:"required,currency,nefield=From"`
}

// TransferRequest moves funds between the wallet and a bank account.
type TransferRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"money"`
	Currency      string          `json:"currency" binding:"required,currency"`
	BankAccountID string          `json:"bank_account_id" binding:"required,uuid"`
	Note          string          `json:"note" binding:"max=255"`
}

// WithdrawalRequest asks for a payout to a verified bank account.
type WithdrawalRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"money"`
	Currency      string          `json:"currency" binding:"required,currency"`
	BankAccountID string          `json:"bank_account_id" binding:"required,uuid"`
	Description   string          `json:"description" binding:"max=255"`
}

// CollectionRequest starts a mobile money or bank collection.
type CollectionRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"money"`
	Currency      string          `json:"currency" binding:"required,currency"`
	Method        string          `json:"payment_method" binding:"required,operator"`
	OrderID       string          `json:"order_id" binding:"required,max=100,safe_id"`
	CustomerPhone string          `json:"customer_phone" binding:"required,max=32"`
}

// --- Admin requests ---

// FreezeRequest freezes a wallet.
type FreezeRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// RejectRequest rejects a funding request or a withdrawal.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// BatchRequest generates a withdrawal batch. An empty currency covers both.
type BatchRequest struct {
	Currency *string `json:"currency,omitempty" binding:"omitempty,currency"`
	Format   string  `json:"format" binding:"omitempty,oneof=auto csv sepa swift"`
}

// AutoSweepRequest sweeps one merchant, or every merchant above a trigger when empty.
type AutoSweepRequest struct {
	MerchantID *string `json:"merchant_id,omitempty" binding:"omitempty,uuid"`
}

// --- Gateway callbacks ---

// PaymentCallback is the normalized operator result. Either the
// transaction ref or the (merchant, order) pair identifies the collection.
type PaymentCallback struct {
	TransactionRef string          `json:"transaction_ref" binding:"required_without=OrderID,max=64"`
	MerchantID     string          `json:"merchant_id" binding:"required_with=OrderID"`
	OrderID        string          `json:"order_id" binding:"max=100"`
	ExternalRef    string          `json:"external_ref" binding:"max=100"`
	Status         string          `json:"status" binding:"required,oneof=success failed"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency" binding:"omitempty,currency"`
	FailureReason  string          `json:"failure_reason" binding:"max=255"`
}

// --- Responses ---

// RateLockResponse adds the remaining lifetime to a lock.
type RateLockResponse struct {
	LockID        string          `json:"lock_id"`
	From          domain.Currency `json:"from_currency"`
	To            domain.Currency `json:"to_currency"`
	FromAmount    decimal.Decimal `json:"from_amount"`
	ToAmount      decimal.Decimal `json:"to_amount"`
	Rate          decimal.Decimal `json:"rate"`
	SpreadPercent decimal.Decimal `json:"spread_percent"`
	LockedAt      time.Time       `json:"locked_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
	ExpiresIn     int             `json:"expires_in"` // seconds
}

// NewRateLockResponse builds the response for a lock as seen at now.
func NewRateLockResponse(l *domain.RateLock, now time.Time) RateLockResponse {
	return RateLockResponse{
		LockID:        l.ID,
		From:          l.From,
		To:            l.To,
		FromAmount:    l.FromAmount,
		ToAmount:      l.ToAmount,
		Rate:          l.Rate,
		SpreadPercent: l.SpreadPercent,
		LockedAt:      l.LockedAt,
		ExpiresAt:     l.ExpiresAt,
		ExpiresIn:     int(l.Remaining(now).Seconds()),
	}
}

// PendingWithdrawalsResponse lists withdrawals awaiting a batch.
type PendingWithdrawalsResponse struct {
	Count        int                  `json:"count"`
	TotalAmounts map[string]string    `json:"total_amounts"`
	Items        []domain.Transaction `json:"withdrawals"`
}

// AutoSweepAllResponse summarizes a sweep over every eligible merchant.
type AutoSweepAllResponse struct {
	Merchants int      `json:"merchants"`
	Swept     int      `json:"sweeps"`
	Failures  []string `json:"failures,omitempty"`
}

// ExpiredCollectionsResponse reports how many collections were expired.
type ExpiredCollectionsResponse struct {
	Expired int `json:"expired"`
}
