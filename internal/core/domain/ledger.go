package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the side of a ledger posting.
type EntryType string

const (
	EntryDebit  EntryType = "debit"
	EntryCredit EntryType = "credit"
)

// LedgerAccount is a member of the closed chart of accounts.
type LedgerAccount string

const (
	AccountLiabilityPendingWithdrawal LedgerAccount = "liability_pending_withdrawal"
	AccountExpenseBankFees            LedgerAccount = "expense_bank_fees"
	AccountAdjustment                 LedgerAccount = "adjustment"
)

// escrowOperators are the rails that hold customer funds before settlement.
var escrowOperators = map[PaymentMethod]string{
	PaymentMethodMpesa:        "mpesa",
	PaymentMethodOrangeMoney:  "orange",
	PaymentMethodAirtelMoney:  "airtel",
	PaymentMethodBankTransfer: "bank",
}

var chartOfAccounts = buildChart()

func buildChart() map[LedgerAccount]struct{} {
	chart := map[LedgerAccount]struct{}{
		AccountLiabilityPendingWithdrawal: {},
		AccountExpenseBankFees:            {},
		AccountAdjustment:                 {},
	}
	for _, c := range SupportedCurrencies {
		chart[MerchantWalletAccount(c)] = struct{}{}
		chart[MerchantBankAccount(c)] = struct{}{}
		chart[CommissionRevenueAccount(c)] = struct{}{}
		chart[SpreadRevenueAccount(c)] = struct{}{}
		for _, op := range escrowOperators {
			chart[LedgerAccount(fmt.Sprintf("escrow_%s_%s", op, c.Lower()))] = struct{}{}
		}
	}
	return chart
}

// Valid reports whether the account belongs to the chart of accounts.
func (a LedgerAccount) Valid() bool {
	_, ok := chartOfAccounts[a]
	return ok
}

func MerchantWalletAccount(c Currency) LedgerAccount {
	return LedgerAccount("merchant_wallet_" + c.Lower())
}

func MerchantBankAccount(c Currency) LedgerAccount {
	return LedgerAccount("merchant_bank_" + c.Lower())
}

func CommissionRevenueAccount(c Currency) LedgerAccount {
	return LedgerAccount("revenue_commission_" + c.Lower())
}

func SpreadRevenueAccount(c Currency) LedgerAccount {
	return LedgerAccount("revenue_spread_" + c.Lower())
}

// EscrowAccount returns the escrow account for an operator. Manual postings
// have no operator escrow and settle through the bank escrow.
func EscrowAccount(m PaymentMethod, c Currency) LedgerAccount {
	op, ok := escrowOperators[m]
	if !ok {
		op = "bank"
	}
	return LedgerAccount(fmt.Sprintf("escrow_%s_%s", op, c.Lower()))
}

// LedgerEntry is one side of a double-entry posting. Entries are append-only.
type LedgerEntry struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	EntryType     EntryType       `json:"entry_type"`
	Account       LedgerAccount   `json:"account_type"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      Currency        `json:"currency"`
	Description   string          `json:"description"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
	IsReconciled  bool            `json:"is_reconciled"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DoubleEntry describes a balanced posting: Amount leaves Debit and enters Credit.
type DoubleEntry struct {
	TransactionID uuid.UUID
	Debit         LedgerAccount
	Credit        LedgerAccount
	Amount        decimal.Decimal
	Currency      Currency
	Description   string
	Metadata      map[string]any
}

// Validate checks the posting against the chart of accounts.
func (d DoubleEntry) Validate() error {
	if err := ValidateAmount(d.Amount); err != nil {
		return err
	}
	if !d.Currency.Valid() {
		return ErrUnsupportedCurrency
	}
	if !d.Debit.Valid() || !d.Credit.Valid() {
		return ErrInvalidLedgerAccount
	}
	if d.Debit == d.Credit {
		return ErrSameLedgerAccount
	}
	return nil
}

// Entries expands the posting into its debit and credit rows.
func (d DoubleEntry) Entries() (LedgerEntry, LedgerEntry) {
	now := time.Now().UTC()
	base := LedgerEntry{
		TransactionID: d.TransactionID,
		Amount:        d.Amount,
		Currency:      d.Currency,
		Description:   d.Description,
		Metadata:      d.Metadata,
		CreatedAt:     now,
	}
	debit, credit := base, base
	debit.ID, debit.EntryType, debit.Account = uuid.New(), EntryDebit, d.Debit
	credit.ID, credit.EntryType, credit.Account = uuid.New(), EntryCredit, d.Credit
	return debit, credit
}

// AccountBalance is SUM(credit) - SUM(debit) for one account and currency.
type AccountBalance struct {
	Account  LedgerAccount   `json:"account_type"`
	Currency Currency        `json:"currency"`
	Debits   decimal.Decimal `json:"total_debits"`
	Credits  decimal.Decimal `json:"total_credits"`
	Balance  decimal.Decimal `json:"balance"`
}
