package worker

import (
	"context"
	"fmt"
	"time"

	"merchant-wallet-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

// AutoSweepAll sweeps every merchant whose wallet is above a sweep trigger.
// A failure for one merchant is logged and does not stop the others.
func AutoSweepAll(seg ports.SegregationService, log zerolog.Logger) Func {
	return func(ctx context.Context) error {
		merchants, err := seg.MerchantsRequiringSweep(ctx)
		if err != nil {
			return fmt.Errorf("listing merchants requiring sweep: %w", err)
		}

		failures := 0
		for _, id := range merchants {
			result, err := seg.AutoSweep(ctx, id)
			if err != nil {
				failures++
				log.Error().Err(err).Str("merchant_id", id.String()).Msg("auto-sweep failed")
				continue
			}
			if len(result.Failed) > 0 {
				failures++
			}
			log.Info().
				Str("merchant_id", id.String()).
				Int("swept", len(result.Sweeps)).
				Int("skipped", len(result.Skipped)).
				Int("failed", len(result.Failed)).
				Msg("auto-sweep done")
		}
		if failures > 0 {
			return fmt.Errorf("auto-sweep failed for %d of %d merchants", failures, len(merchants))
		}
		return nil
	}
}

// DailyBatch generates the day's withdrawal batch for all currencies.
func DailyBatch(withdrawals ports.WithdrawalService, log zerolog.Logger) Func {
	return func(ctx context.Context) error {
		batch, err := withdrawals.GenerateBatch(ctx, nil, ports.BatchFormatAuto)
		if err != nil {
			return fmt.Errorf("generating daily batch: %w", err)
		}
		if batch.Count == 0 {
			log.Info().Msg("daily batch: no pending withdrawals")
			return nil
		}
		log.Info().Str("batch_id", batch.BatchID).Int("count", batch.Count).Int("files", len(batch.Files)).Msg("daily batch generated")
		return nil
	}
}

// ExpireCollections flips pending collections past their deadline to expired.
func ExpireCollections(settlement ports.SettlementService, limit int, now func() time.Time) Func {
	return func(ctx context.Context) error {
		_, err := settlement.ExpireStale(ctx, now(), limit)
		return err
	}
}

// RefreshRates reloads the base exchange rate. A fallback to the cached or
// hardcoded rate is not an iteration failure.
func RefreshRates(rates ports.ExchangeRateService, log zerolog.Logger) Func {
	return func(ctx context.Context) error {
		if err := rates.Refresh(ctx); err != nil {
			log.Warn().Err(err).Str("source", string(rates.Rates().Source)).Msg("rate refresh fell back")
		}
		return nil
	}
}

// SweepLocks drops expired rate locks.
func SweepLocks(sweep func() int) Func {
	return func(context.Context) error {
		sweep()
		return nil
	}
}
