package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccount is a merchant's external settlement account. Sensitive fields
// are held in clear here and encrypted by the storage adapter.
type BankAccount struct {
	ID             uuid.UUID       `json:"id"`
	MerchantID     uuid.UUID       `json:"merchant_id"`
	BankName       string          `json:"bank_name"`
	AccountNumber  string          `json:"-"`
	AccountName    string          `json:"account_name"`
	IBAN           *string         `json:"-"`
	SwiftCode      *string         `json:"swift_code,omitempty"`
	Currency       Currency        `json:"currency"`
	IsVerified     bool            `json:"is_verified"`
	IsDefault      bool            `json:"is_default"`
	TrackedBalance decimal.Decimal `json:"tracked_balance"`
	VerifiedAt     *time.Time      `json:"verified_at,omitempty"`
	LastSweepAt    *time.Time      `json:"last_sweep_at,omitempty"`
	LastFundingAt  *time.Time      `json:"last_funding_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Beneficiary snapshots the account as a transfer destination.
func (b *BankAccount) Beneficiary() *Beneficiary {
	return &Beneficiary{
		BankName:      b.BankName,
		AccountNumber: b.AccountNumber,
		AccountName:   b.AccountName,
		IBAN:          b.IBAN,
		SwiftCode:     b.SwiftCode,
	}
}

func (b *BankAccount) MaskedAccountNumber() string {
	return MaskAccountNumber(b.AccountNumber)
}

// MaskAccountNumber hides all but the last four characters.
func MaskAccountNumber(n string) string {
	if len(n) < 4 {
		return "****"
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}
