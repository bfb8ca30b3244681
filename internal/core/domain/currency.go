package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code supported by the wallet.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyCDF Currency = "CDF"
)

// SupportedCurrencies lists every currency a wallet holds, in display order.
var SupportedCurrencies = []Currency{CurrencyUSD, CurrencyCDF}

// ParseCurrency normalizes a currency code and rejects unsupported ones.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrUnsupportedCurrency
	}
	return c, nil
}

func (c Currency) Valid() bool {
	return c == CurrencyUSD || c == CurrencyCDF
}

// Lower returns the lowercase code used in ledger account names.
func (c Currency) Lower() string {
	return strings.ToLower(string(c))
}

func (c Currency) String() string {
	return string(c)
}

// MoneyScale is the number of decimal places every stored amount carries.
const MoneyScale = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds an amount to two decimal places (half away from zero).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// ValidateAmount accepts strictly positive amounts with at most MoneyScale
// decimal places. Trailing zeros ("1.500") are fine.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	if !d.Equal(d.Truncate(MoneyScale)) {
		return ErrAmountPrecision
	}
	return nil
}

// Percent returns amount * pct / 100 rounded to two decimal places.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(pct).Div(hundred))
}
