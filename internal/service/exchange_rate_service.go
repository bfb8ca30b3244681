package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// FXSettings configures the rate cache.
type FXSettings struct {
	SpreadPercent decimal.Decimal
	FallbackRate  decimal.Decimal // CDF per USD
}

// ExchangeRateServiceImpl caches the USD->CDF base rate and derives the
// spread-adjusted rates from it. Once a base rate is known it is never
// dropped: a failed refresh keeps serving the last value.
type ExchangeRateServiceImpl struct {
	source    ports.RateSource
	snapshots ports.RateSnapshotStore
	spread    decimal.Decimal
	now       func() time.Time
	log       zerolog.Logger

	mu        sync.RWMutex
	base      decimal.Decimal
	origin    domain.RateSource
	updatedAt time.Time
}

// NewExchangeRateService starts on the fallback rate. Call Warm to reload
// the last persisted rate and fetch a live one.
func NewExchangeRateService(source ports.RateSource, snapshots ports.RateSnapshotStore, settings FXSettings, log zerolog.Logger) *ExchangeRateServiceImpl {
	return &ExchangeRateServiceImpl{
		source:    source,
		snapshots: snapshots,
		spread:    settings.SpreadPercent,
		now:       time.Now,
		log:       log,
		base:      settings.FallbackRate,
		origin:    domain.RateSourceFallback,
		updatedAt: time.Now().UTC(),
	}
}

// Warm restores the persisted rate, then tries a live refresh. Neither
// failure is fatal.
func (s *ExchangeRateServiceImpl) Warm(ctx context.Context) {
	if s.snapshots != nil {
		snap, err := s.snapshots.Load(ctx)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("could not load last exchange rate")
		case snap != nil:
			s.mu.Lock()
			s.base, s.origin, s.updatedAt = snap.Base, domain.RateSourceCached, snap.FetchedAt
			s.mu.Unlock()
			s.log.Info().Str("base", snap.Base.String()).Time("fetched_at", snap.FetchedAt).Msg("restored last exchange rate")
		}
	}
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn().Err(err).Msg("initial exchange rate refresh failed")
	}
}

// Refresh fetches the market rate. On failure the cached value stays in
// place and the error is returned.
func (s *ExchangeRateServiceImpl) Refresh(ctx context.Context) error {
	base, err := s.source.FetchUSDCDF(ctx)
	if err == nil && !base.IsPositive() {
		err = fmt.Errorf("non-positive rate %s", base)
	}
	if err != nil {
		s.mu.Lock()
		if s.origin == domain.RateSourceLive {
			s.origin = domain.RateSourceCached
		}
		origin := s.origin
		s.mu.Unlock()

		rateRefreshes.WithLabelValues(string(origin)).Inc()
		s.log.Warn().Err(err).Str("serving", string(origin)).Msg("exchange rate refresh failed")
		return apperror.ErrExternalSettlement("exchange rate feed unavailable", err)
	}

	now := s.now().UTC()
	s.mu.Lock()
	s.base, s.origin, s.updatedAt = base, domain.RateSourceLive, now
	s.mu.Unlock()
	rateRefreshes.WithLabelValues(string(domain.RateSourceLive)).Inc()

	if s.snapshots != nil {
		if err := s.snapshots.Save(ctx, domain.RateSnapshot{Base: base, FetchedAt: now}); err != nil {
			s.log.Warn().Err(err).Msg("could not persist exchange rate")
		}
	}
	s.log.Info().Str("base", base.String()).Msg("exchange rate refreshed")
	return nil
}

// Rates returns the current spread-adjusted table.
func (s *ExchangeRateServiceImpl) Rates() domain.RateTable {
	s.mu.RLock()
	base, origin, updated := s.base, s.origin, s.updatedAt
	s.mu.RUnlock()

	return domain.RateTable{
		Base:          base,
		USDToCDF:      sellUSD(base, s.spread),
		CDFToUSD:      buyUSD(base, s.spread),
		SpreadPercent: s.spread,
		Source:        origin,
		UpdatedAt:     updated,
	}
}

// Quote returns the rate applied when converting from -> to.
func (s *ExchangeRateServiceImpl) Quote(from, to domain.Currency) (decimal.Decimal, error) {
	if err := validCurrency(from); err != nil {
		return decimal.Zero, err
	}
	if err := validCurrency(to); err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	s.mu.RLock()
	base := s.base
	s.mu.RUnlock()

	if from == domain.CurrencyUSD {
		return sellUSD(base, s.spread), nil
	}
	return buyUSD(base, s.spread), nil
}

// Convert prices amount at the live rate.
func (s *ExchangeRateServiceImpl) Convert(amount decimal.Decimal, from, to domain.Currency) (*domain.Quote, error) {
	if !amount.IsPositive() {
		return nil, apperror.Validation("amount must be greater than zero")
	}
	rate, err := s.Quote(from, to)
	if err != nil {
		return nil, err
	}
	spread := s.spread
	if from == to {
		spread = decimal.Zero
	}
	return &domain.Quote{
		From:          from,
		To:            to,
		Rate:          rate,
		SpreadPercent: spread,
		FromAmount:    amount,
		ToAmount:      domain.RoundMoney(amount.Mul(rate)),
	}, nil
}

func spreadFactor(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(decimal.NewFromInt(100))
}

// sellUSD is base x (1 + s).
func sellUSD(base, spreadPct decimal.Decimal) decimal.Decimal {
	return base.Mul(decimal.NewFromInt(1).Add(spreadFactor(spreadPct)))
}

// buyUSD is (1 / base) x (1 - s).
func buyUSD(base, spreadPct decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Div(base).Mul(decimal.NewFromInt(1).Sub(spreadFactor(spreadPct)))
}
