package service

import (
	"context"
	"fmt"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ConversionServiceImpl implements ports.ConversionService.
type ConversionServiceImpl struct {
	walletRepo ports.WalletRepository
	wallets    ports.WalletService
	ledger     ports.LedgerService
	rates      ports.ExchangeRateService
	locks      *RateLockManager
	transactor ports.DBTransactor
	rec        recorder
	log        zerolog.Logger
}

func NewConversionService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	outboxRepo ports.OutboxRepository,
	wallets ports.WalletService,
	ledger ports.LedgerService,
	rates ports.ExchangeRateService,
	locks *RateLockManager,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *ConversionServiceImpl {
	return &ConversionServiceImpl{
		walletRepo: walletRepo,
		wallets:    wallets,
		ledger:     ledger,
		rates:      rates,
		locks:      locks,
		transactor: transactor,
		rec:        recorder{txRepo: txRepo, outboxRepo: outboxRepo},
		log:        log,
	}
}

// LockRate quotes the merchant's whole source balance and holds the rate.
func (s *ConversionServiceImpl) LockRate(ctx context.Context, merchantID uuid.UUID, from, to domain.Currency) (*domain.RateLock, error) {
	if err := checkPair(from, to); err != nil {
		return nil, err
	}
	wallet, err := s.walletRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if wallet.IsFrozen {
		return nil, frozenError(wallet)
	}

	rate, err := s.rates.Quote(from, to)
	if err != nil {
		return nil, err
	}
	balance := wallet.Balance(from)
	lock := s.locks.Lock(domain.RateLock{
		MerchantID:    merchantID,
		From:          from,
		To:            to,
		Rate:          rate,
		SpreadPercent: s.rates.Rates().SpreadPercent,
		FromAmount:    balance,
		ToAmount:      domain.RoundMoney(balance.Mul(rate)),
	})

	s.log.Info().
		Str("lock_id", lock.ID).
		Str("merchant_id", merchantID.String()).
		Str("pair", string(from)+"/"+string(to)).
		Str("rate", rate.String()).
		Msg("rate locked")
	return lock, nil
}

// ExecuteLocked converts the entire current source balance at the locked
// rate. The lock is consumed only if the conversion commits.
func (s *ConversionServiceImpl) ExecuteLocked(ctx context.Context, merchantID uuid.UUID, lockID string) (*ports.ConversionResult, error) {
	lock := s.locks.Claim(lockID)
	if lock == nil {
		return nil, apperror.ErrLockExpiredOrNotFound()
	}
	if lock.MerchantID != merchantID {
		s.locks.Restore(lock)
		return nil, apperror.ErrLockExpiredOrNotFound()
	}

	var result *ports.ConversionResult
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		wallet, err := s.walletRepo.GetByMerchantIDForUpdate(ctx, tx, merchantID)
		if err != nil {
			return apperror.ErrDatabaseError(err)
		}
		if wallet == nil {
			return apperror.ErrNotFound("wallet")
		}
		if wallet.IsFrozen {
			return frozenError(wallet)
		}

		fromAmount := wallet.Balance(lock.From)
		if !fromAmount.IsPositive() {
			return apperror.ErrInsufficientBalance(string(lock.From))
		}
		toAmount := domain.RoundMoney(fromAmount.Mul(lock.Rate))
		if !toAmount.IsPositive() {
			return apperror.Validation("conversion amount too small")
		}

		lockID := lock.ID
		result, err = s.post(ctx, tx, conversion{
			merchantID: merchantID,
			from:       lock.From,
			to:         lock.To,
			fromAmount: fromAmount,
			toAmount:   toAmount,
			rate:       lock.Rate,
			spread:     lock.SpreadPercent,
			lockID:     &lockID,
		})
		return err
	})
	if err != nil {
		s.locks.Restore(lock)
		return nil, asAppError(err)
	}

	conversionsTotal.WithLabelValues(string(lock.From), string(lock.To), "locked").Inc()
	return result, nil
}

// Convert is the one-step path at the live rate.
func (s *ConversionServiceImpl) Convert(ctx context.Context, merchantID uuid.UUID, amount decimal.Decimal, from, to domain.Currency) (*ports.ConversionResult, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}
	if err := checkPair(from, to); err != nil {
		return nil, err
	}
	quote, err := s.rates.Convert(amount, from, to)
	if err != nil {
		return nil, err
	}
	if !quote.ToAmount.IsPositive() {
		return nil, apperror.Validation("conversion amount too small")
	}

	var result *ports.ConversionResult
	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		result, err = s.post(ctx, tx, conversion{
			merchantID: merchantID,
			from:       from,
			to:         to,
			fromAmount: amount,
			toAmount:   quote.ToAmount,
			rate:       quote.Rate,
			spread:     quote.SpreadPercent,
		})
		return err
	})
	if err != nil {
		return nil, asAppError(err)
	}

	conversionsTotal.WithLabelValues(string(from), string(to), "live").Inc()
	return result, nil
}

type conversion struct {
	merchantID uuid.UUID
	from, to   domain.Currency
	fromAmount decimal.Decimal
	toAmount   decimal.Decimal
	rate       decimal.Decimal
	spread     decimal.Decimal
	lockID     *string
}

// post moves the money and writes the records of one conversion. A locked
// conversion also books the spread as revenue in the destination currency.
func (s *ConversionServiceImpl) post(ctx context.Context, tx pgx.Tx, c conversion) (*ports.ConversionResult, error) {
	start := time.Now()
	defer func() { operationDuration.WithLabelValues("conversion").Observe(time.Since(start).Seconds()) }()

	if _, err := s.wallets.Debit(ctx, tx, c.merchantID, c.fromAmount, c.from); err != nil {
		return nil, err
	}
	wallet, err := s.wallets.Credit(ctx, tx, c.merchantID, c.toAmount, c.to)
	if err != nil {
		return nil, err
	}

	txn := domain.NewTransaction(c.merchantID, wallet.ID, domain.TransactionTypeConversion, c.from, c.fromAmount, decimal.Zero)
	txn.Conversion = &domain.ConversionDetail{
		FromCurrency: c.from,
		ToCurrency:   c.to,
		FromAmount:   c.fromAmount,
		ToAmount:     c.toAmount,
		Rate:         c.rate,
		LockID:       c.lockID,
	}
	txn.SetMeta("spread_percent", c.spread.String())
	if err := txn.Transition(domain.TransactionStatusSuccess, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.rec.create(ctx, tx, txn, domain.EventConversionExecuted); err != nil {
		return nil, err
	}

	err = s.ledger.RecordDoubleEntry(ctx, tx, domain.DoubleEntry{
		TransactionID: txn.ID,
		Debit:         domain.MerchantWalletAccount(c.from),
		Credit:        domain.MerchantWalletAccount(c.to),
		Amount:        c.toAmount,
		Currency:      c.to,
		Description:   fmt.Sprintf("Currency conversion %s to %s - %s", c.from, c.to, txn.Ref),
		Metadata: map[string]any{
			"from_amount": c.fromAmount.String(),
			"to_amount":   c.toAmount.String(),
			"rate":        c.rate.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	spreadRevenue := decimal.Zero
	if c.lockID != nil {
		spreadRevenue = domain.Percent(c.toAmount, c.spread)
		if spreadRevenue.IsPositive() {
			err = s.ledger.RecordDoubleEntry(ctx, tx, domain.DoubleEntry{
				TransactionID: txn.ID,
				Debit:         domain.MerchantWalletAccount(c.to),
				Credit:        domain.SpreadRevenueAccount(c.to),
				Amount:        spreadRevenue,
				Currency:      c.to,
				Description:   "Conversion spread revenue - " + txn.Ref,
				Metadata:      map[string]any{"spread_percent": c.spread.String()},
			})
			if err != nil {
				return nil, err
			}
		}
	}

	s.log.Info().
		Str("transaction_ref", txn.Ref).
		Str("from", c.fromAmount.String()+" "+string(c.from)).
		Str("to", c.toAmount.String()+" "+string(c.to)).
		Str("rate", c.rate.String()).
		Msg("conversion executed")

	return &ports.ConversionResult{
		Transaction:   txn,
		From:          c.from,
		To:            c.to,
		FromAmount:    c.fromAmount,
		ToAmount:      c.toAmount,
		Rate:          c.rate,
		SpreadRevenue: spreadRevenue,
		Balance:       balanceView(wallet),
	}, nil
}

func checkPair(from, to domain.Currency) error {
	if err := validCurrency(from); err != nil {
		return err
	}
	if err := validCurrency(to); err != nil {
		return err
	}
	if from == to {
		return apperror.Validation("source and destination currency must differ")
	}
	return nil
}
