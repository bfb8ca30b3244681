package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeCollection   TransactionType = "collection"
	TransactionTypeWithdrawal   TransactionType = "withdrawal"
	TransactionTypeConversion   TransactionType = "conversion"
	TransactionTypeSweepToBank  TransactionType = "sweep_to_bank"
	TransactionTypeFundFromBank TransactionType = "fund_from_bank"

	// Recorded by back-office tooling; the engine itself never creates them,
	// but they are stored and reported like any other type.
	TransactionTypeCommission TransactionType = "commission"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeCollection, TransactionTypeWithdrawal, TransactionTypeConversion,
		TransactionTypeSweepToBank, TransactionTypeFundFromBank,
		TransactionTypeCommission, TransactionTypeRefund, TransactionTypeAdjustment:
		return true
	}
	return false
}

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusSuccess    TransactionStatus = "success"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusExpired    TransactionStatus = "expired"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

// allowedTransitions encodes the monotonic lifecycle. A status never moves
// back to pending and terminal statuses never change.
var allowedTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPending: {
		TransactionStatusProcessing, TransactionStatusSuccess, TransactionStatusFailed,
		TransactionStatusExpired, TransactionStatusCancelled,
	},
	TransactionStatusProcessing: {TransactionStatusSuccess, TransactionStatusFailed},
}

// PaymentMethod identifies the operator (or bank rail) that moved the money.
type PaymentMethod string

const (
	PaymentMethodMpesa        PaymentMethod = "mpesa"
	PaymentMethodOrangeMoney  PaymentMethod = "orange_money"
	PaymentMethodAirtelMoney  PaymentMethod = "airtel_money"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodManual       PaymentMethod = "manual"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodMpesa, PaymentMethodOrangeMoney, PaymentMethodAirtelMoney,
		PaymentMethodBankTransfer, PaymentMethodManual:
		return true
	}
	return false
}

// Transaction is the business record of a money movement. Ledger entries
// reference it; status changes are the only mutation after creation.
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	MerchantID    uuid.UUID         `json:"merchant_id"`
	WalletID      uuid.UUID         `json:"wallet_id"`
	Ref           string            `json:"transaction_ref"`
	ExternalRef   *string           `json:"external_ref,omitempty"`
	OrderID       *string           `json:"order_id,omitempty"`
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	Currency      Currency          `json:"currency"`
	AmountGross   decimal.Decimal   `json:"amount_gross"`
	AmountFee     decimal.Decimal   `json:"amount_commission"`
	AmountNet     decimal.Decimal   `json:"amount_net"`
	PaymentMethod *PaymentMethod    `json:"payment_method,omitempty"`
	CustomerPhone *string           `json:"-"`
	Beneficiary   *Beneficiary      `json:"beneficiary,omitempty"`
	BankAccountID *uuid.UUID        `json:"bank_account_id,omitempty"`
	BatchID       *string           `json:"withdrawal_batch_id,omitempty"`
	Conversion    *ConversionDetail `json:"conversion,omitempty"`
	ErrorCode     *string           `json:"error_code,omitempty"`
	ErrorMessage  *string           `json:"error_message,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
	ExpiresAt     *time.Time        `json:"expires_at,omitempty"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Beneficiary is the bank destination snapshot copied onto withdrawals and
// segregation transfers at creation time.
type Beneficiary struct {
	BankName      string  `json:"bank_name"`
	AccountNumber string  `json:"-"`
	AccountName   string  `json:"account_name"`
	IBAN          *string `json:"-"`
	SwiftCode     *string `json:"swift_code,omitempty"`
}

// MaskedAccountNumber returns the account number with all but the last four characters hidden.
func (b *Beneficiary) MaskedAccountNumber() string {
	return MaskAccountNumber(b.AccountNumber)
}

// ConversionDetail records the two legs of a currency conversion.
type ConversionDetail struct {
	FromCurrency Currency        `json:"from_currency"`
	ToCurrency   Currency        `json:"to_currency"`
	FromAmount   decimal.Decimal `json:"from_amount"`
	ToAmount     decimal.Decimal `json:"to_amount"`
	Rate         decimal.Decimal `json:"rate"`
	LockID       *string         `json:"lock_id,omitempty"`
}

// NewTransaction builds a pending transaction with a fresh reference.
// The fee is subtracted from gross to produce net.
func NewTransaction(merchantID, walletID uuid.UUID, typ TransactionType, c Currency, gross, fee decimal.Decimal) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:          uuid.New(),
		MerchantID:  merchantID,
		WalletID:    walletID,
		Ref:         NewTransactionRef(),
		Type:        typ,
		Status:      TransactionStatusPending,
		Currency:    c,
		AmountGross: gross,
		AmountFee:   fee,
		AmountNet:   gross.Sub(fee),
		Metadata:    map[string]any{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	switch t.Status {
	case TransactionStatusSuccess, TransactionStatusFailed, TransactionStatusExpired, TransactionStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (t *Transaction) CanTransitionTo(next TransactionStatus) bool {
	for _, s := range allowedTransitions[t.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// Transition moves the transaction to next, stamping completed_at once terminal.
func (t *Transaction) Transition(next TransactionStatus, at time.Time) error {
	if !t.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	t.Status = next
	t.UpdatedAt = at
	if t.IsTerminal() {
		t.CompletedAt = &at
	}
	return nil
}

// Fail transitions to failed and records why.
func (t *Transaction) Fail(code, message string, at time.Time) error {
	if err := t.Transition(TransactionStatusFailed, at); err != nil {
		return err
	}
	t.ErrorCode = &code
	t.ErrorMessage = &message
	return nil
}

// IsExpired reports whether a pending collection has passed its deadline.
func (t *Transaction) IsExpired(now time.Time) bool {
	return t.Status == TransactionStatusPending && t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// SetMeta stores a metadata key, allocating the map on first use.
func (t *Transaction) SetMeta(key string, value any) {
	if t.Metadata == nil {
		t.Metadata = map[string]any{}
	}
	t.Metadata[key] = value
}
