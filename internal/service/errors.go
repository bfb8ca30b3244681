package service

import (
	"errors"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/shopspring/decimal"
)

// asAppError passes AppErrors through and maps domain rule violations onto
// their stable codes. Anything else is an internal error.
func asAppError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return apperror.Validation("amount must be greater than zero")
	case errors.Is(err, domain.ErrAmountPrecision):
		return apperror.Validation("amount must have at most 2 decimal places")
	case errors.Is(err, domain.ErrUnsupportedCurrency):
		return apperror.Validation("currency must be USD or CDF")
	case errors.Is(err, domain.ErrInvalidLedgerAccount), errors.Is(err, domain.ErrSameLedgerAccount):
		return apperror.Validation(err.Error())
	case errors.Is(err, domain.ErrWalletFrozen):
		return apperror.ErrFrozenWallet("")
	case errors.Is(err, domain.ErrWalletNotFrozen):
		return apperror.Validation("wallet is not frozen")
	}
	return apperror.InternalError(err)
}

// walletError is asAppError with the wallet at hand, so frozen and
// insufficient-balance errors carry the reason and currency.
func walletError(err error, w *domain.Wallet, c domain.Currency) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return apperror.ErrInsufficientBalance(string(c))
	case errors.Is(err, domain.ErrWalletFrozen):
		return frozenError(w)
	}
	return asAppError(err)
}

func frozenError(w *domain.Wallet) error {
	reason := ""
	if w != nil && w.FrozenReason != nil {
		reason = *w.FrozenReason
	}
	return apperror.ErrFrozenWallet(reason)
}

func validAmount(amount decimal.Decimal) error {
	return asAppError(domain.ValidateAmount(amount))
}

func validCurrency(c domain.Currency) error {
	if !c.Valid() {
		return apperror.Validation("currency must be USD or CDF")
	}
	return nil
}
