package service

import (
	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/shopspring/decimal"
)

// Thresholds are the per-currency wallet limits.
type Thresholds struct {
	Ceiling       decimal.Decimal // maximum wallet balance
	SweepTrigger  decimal.Decimal // auto-sweep runs above this
	Floor         decimal.Decimal // minimum operational balance
	MinWithdrawal decimal.Decimal
}

type Limits map[domain.Currency]Thresholds

func (l Limits) For(c domain.Currency) (Thresholds, error) {
	t, ok := l[c]
	if !ok {
		return Thresholds{}, apperror.Validation("currency must be USD or CDF")
	}
	return t, nil
}
