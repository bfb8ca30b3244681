package domain

import "errors"

// Domain rule violations. Services translate these into apperror codes.
var (
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrAmountPrecision      = errors.New("amount must have at most 2 decimal places")
	ErrUnsupportedCurrency  = errors.New("unsupported currency")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrWalletFrozen         = errors.New("wallet is frozen")
	ErrWalletNotFrozen      = errors.New("wallet is not frozen")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidLedgerAccount = errors.New("invalid ledger account")
	ErrSameLedgerAccount    = errors.New("debit and credit accounts must differ")
)
