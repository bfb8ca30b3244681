package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateSource tells where the current base rate came from.
type RateSource string

const (
	RateSourceLive     RateSource = "live"
	RateSourceCached   RateSource = "cached"
	RateSourceFallback RateSource = "fallback"
)

// RateTable is a point-in-time view of the spread-adjusted rates.
type RateTable struct {
	Base          decimal.Decimal `json:"base_usd_cdf"`
	USDToCDF      decimal.Decimal `json:"usd_cdf"`
	CDFToUSD      decimal.Decimal `json:"cdf_usd"`
	SpreadPercent decimal.Decimal `json:"spread_percent"`
	Source        RateSource      `json:"source"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RateSnapshot is the last successfully fetched base rate, persisted so a
// restart can serve a real rate before the first refresh completes.
type RateSnapshot struct {
	Base      decimal.Decimal `json:"base"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Quote is a rate applied to a concrete amount.
type Quote struct {
	From          Currency        `json:"from_currency"`
	To            Currency        `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	SpreadPercent decimal.Decimal `json:"spread_percent"`
	FromAmount    decimal.Decimal `json:"from_amount"`
	ToAmount      decimal.Decimal `json:"to_amount"`
}

// RateLock freezes a spread-adjusted rate for a short window. It lives only
// in process memory.
type RateLock struct {
	ID            string          `json:"lock_id"`
	MerchantID    uuid.UUID       `json:"merchant_id"`
	From          Currency        `json:"from_currency"`
	To            Currency        `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	SpreadPercent decimal.Decimal `json:"spread_percent"`
	FromAmount    decimal.Decimal `json:"from_amount"`
	ToAmount      decimal.Decimal `json:"to_amount"`
	LockedAt      time.Time       `json:"locked_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

// IsExpired is true once now reaches the expiry instant.
func (l *RateLock) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// Remaining returns the time left before expiry, floored at zero.
func (l *RateLock) Remaining(now time.Time) time.Duration {
	d := l.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
