package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds a merchant's USD and CDF balances in a single row.
// Balances are the merchant's available funds; the running totals only grow.
type Wallet struct {
	ID                uuid.UUID       `json:"id"`
	MerchantID        uuid.UUID       `json:"merchant_id"`
	BalanceUSD        decimal.Decimal `json:"balance_usd"`
	BalanceCDF        decimal.Decimal `json:"balance_cdf"`
	TotalReceivedUSD  decimal.Decimal `json:"total_received_usd"`
	TotalReceivedCDF  decimal.Decimal `json:"total_received_cdf"`
	TotalWithdrawnUSD decimal.Decimal `json:"total_withdrawn_usd"`
	TotalWithdrawnCDF decimal.Decimal `json:"total_withdrawn_cdf"`
	IsFrozen          bool            `json:"is_frozen"`
	FrozenReason      *string         `json:"frozen_reason,omitempty"`
	FrozenAt          *time.Time      `json:"frozen_at,omitempty"`
	LastTransactionAt *time.Time      `json:"last_transaction_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewWallet returns an empty, unfrozen wallet for a merchant.
func NewWallet(merchantID uuid.UUID) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:         uuid.New(),
		MerchantID: merchantID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Balance returns the available balance in one currency.
func (w *Wallet) Balance(c Currency) decimal.Decimal {
	if c == CurrencyCDF {
		return w.BalanceCDF
	}
	return w.BalanceUSD
}

// Credit adds funds. A frozen wallet accepts no movement in either direction.
func (w *Wallet) Credit(amount decimal.Decimal, c Currency) error {
	if err := w.checkMovement(amount, c); err != nil {
		return err
	}
	switch c {
	case CurrencyUSD:
		w.BalanceUSD = w.BalanceUSD.Add(amount)
		w.TotalReceivedUSD = w.TotalReceivedUSD.Add(amount)
	case CurrencyCDF:
		w.BalanceCDF = w.BalanceCDF.Add(amount)
		w.TotalReceivedCDF = w.TotalReceivedCDF.Add(amount)
	}
	w.touch()
	return nil
}

// Debit removes funds, refusing to let the balance go negative.
func (w *Wallet) Debit(amount decimal.Decimal, c Currency) error {
	if err := w.checkMovement(amount, c); err != nil {
		return err
	}
	if w.Balance(c).LessThan(amount) {
		return ErrInsufficientBalance
	}
	switch c {
	case CurrencyUSD:
		w.BalanceUSD = w.BalanceUSD.Sub(amount)
		w.TotalWithdrawnUSD = w.TotalWithdrawnUSD.Add(amount)
	case CurrencyCDF:
		w.BalanceCDF = w.BalanceCDF.Sub(amount)
		w.TotalWithdrawnCDF = w.TotalWithdrawnCDF.Add(amount)
	}
	w.touch()
	return nil
}

// Freeze blocks all credits and debits until Unfreeze.
func (w *Wallet) Freeze(reason string) {
	now := time.Now().UTC()
	w.IsFrozen = true
	w.FrozenReason = &reason
	w.FrozenAt = &now
	w.UpdatedAt = now
}

func (w *Wallet) Unfreeze() error {
	if !w.IsFrozen {
		return ErrWalletNotFrozen
	}
	w.IsFrozen = false
	w.FrozenReason = nil
	w.FrozenAt = nil
	w.UpdatedAt = time.Now().UTC()
	return nil
}

func (w *Wallet) checkMovement(amount decimal.Decimal, c Currency) error {
	if !c.Valid() {
		return ErrUnsupportedCurrency
	}
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if w.IsFrozen {
		return ErrWalletFrozen
	}
	return nil
}

func (w *Wallet) touch() {
	now := time.Now().UTC()
	w.LastTransactionAt = &now
	w.UpdatedAt = now
}
