package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const settlementCacheTTL = 24 * time.Hour

// CollectionSettings holds the commission and payment window for collections.
type CollectionSettings struct {
	CommissionPercent decimal.Decimal
	Timeout           time.Duration
}

// SettlementServiceImpl implements ports.SettlementService.
type SettlementServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	wallets    ports.WalletService
	ledger     ports.LedgerService
	gateway    ports.PaymentGateway
	cache      ports.SettlementCache
	transactor ports.DBTransactor
	settings   CollectionSettings
	rec        recorder
	log        zerolog.Logger
}

func NewSettlementService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	outboxRepo ports.OutboxRepository,
	wallets ports.WalletService,
	ledger ports.LedgerService,
	gateway ports.PaymentGateway,
	cache ports.SettlementCache,
	transactor ports.DBTransactor,
	settings CollectionSettings,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		wallets:    wallets,
		ledger:     ledger,
		gateway:    gateway,
		cache:      cache,
		transactor: transactor,
		settings:   settings,
		rec:        recorder{txRepo: txRepo, outboxRepo: outboxRepo},
		log:        log,
	}
}

// InitiateCollection opens a pending collection and asks the operator to
// charge the customer. The gateway is called after commit.
func (s *SettlementServiceImpl) InitiateCollection(ctx context.Context, req ports.CollectionRequest) (*domain.Transaction, error) {
	if err := validAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := validCurrency(req.Currency); err != nil {
		return nil, err
	}
	switch req.Method {
	case domain.PaymentMethodMpesa, domain.PaymentMethodOrangeMoney, domain.PaymentMethodAirtelMoney, domain.PaymentMethodBankTransfer:
	default:
		return nil, apperror.Validation("payment method must be mpesa, orange_money, airtel_money or bank_transfer")
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	if req.OrderID == "" {
		return nil, apperror.Validation("order id is required")
	}

	var txn *domain.Transaction
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		wallet, err := s.walletRepo.GetByMerchantIDForUpdate(ctx, tx, req.MerchantID)
		if err != nil {
			return apperror.ErrDatabaseError(err)
		}
		if wallet == nil {
			return apperror.ErrNotFound("wallet")
		}
		if wallet.IsFrozen {
			return frozenError(wallet)
		}

		existing, err := s.txRepo.GetByOrderIDForUpdate(ctx, tx, req.MerchantID, req.OrderID)
		if err != nil {
			return apperror.ErrDatabaseError(err)
		}
		if existing != nil {
			return apperror.Validation(fmt.Sprintf("order %s already has collection %s", req.OrderID, existing.Ref))
		}

		fee := domain.Percent(req.Amount, s.settings.CommissionPercent)
		txn = domain.NewTransaction(req.MerchantID, wallet.ID, domain.TransactionTypeCollection, req.Currency, req.Amount, fee)
		expires := txn.CreatedAt.Add(s.settings.Timeout)
		method := req.Method
		orderID := req.OrderID
		txn.ExpiresAt = &expires
		txn.PaymentMethod = &method
		txn.OrderID = &orderID
		if req.CustomerPhone != "" {
			phone := req.CustomerPhone
			txn.CustomerPhone = &phone
		}
		return s.rec.create(ctx, tx, txn, domain.EventCollectionInitiated)
	})
	if err != nil {
		return nil, asAppError(err)
	}

	ack, gwErr := s.gateway.RequestCollection(ctx, ports.GatewayCollection{
		TransactionRef: txn.Ref,
		Operator:       req.Method,
		Amount:         req.Amount,
		Currency:       req.Currency,
		CustomerPhone:  req.CustomerPhone,
		ExpiresAt:      *txn.ExpiresAt,
	})
	if gwErr != nil {
		s.log.Error().Err(gwErr).Str("transaction_ref", txn.Ref).Str("operator", string(req.Method)).Msg("gateway rejected collection")
		if err := s.failCollection(context.WithoutCancel(ctx), txn.Ref, gwErr); err != nil {
			s.log.Error().Err(err).Str("transaction_ref", txn.Ref).Msg("marking collection failed")
		}
		return nil, apperror.ErrExternalSettlement("payment operator rejected the collection request", gwErr)
	}

	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		locked, err := s.txRepo.GetByRefForUpdate(ctx, tx, txn.Ref)
		if err != nil {
			return apperror.ErrDatabaseError(err)
		}
		if locked == nil || locked.IsTerminal() {
			txn = locked
			return nil
		}
		external := ack.ExternalRef
		locked.ExternalRef = &external
		if err := s.txRepo.Update(ctx, tx, locked); err != nil {
			return apperror.ErrDatabaseError(err)
		}
		txn = locked
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	s.log.Info().
		Str("transaction_ref", txn.Ref).
		Str("merchant_id", req.MerchantID.String()).
		Str("operator", string(req.Method)).
		Str("amount", req.Amount.String()).
		Str("currency", string(req.Currency)).
		Msg("collection initiated")
	return txn, nil
}

func (s *SettlementServiceImpl) failCollection(ctx context.Context, ref string, cause error) error {
	return s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		txn, err := s.txRepo.GetByRefForUpdate(ctx, tx, ref)
		if err != nil {
			return err
		}
		if txn == nil || txn.IsTerminal() {
			return nil
		}
		if err := txn.Fail("GATEWAY_ERROR", cause.Error(), time.Now().UTC()); err != nil {
			return err
		}
		return s.rec.update(ctx, tx, txn, domain.EventCollectionFailed)
	})
}

// HandlePaymentResult applies an operator result exactly once. The cache is
// a fast path for replays; the row lock and terminal check decide.
func (s *SettlementServiceImpl) HandlePaymentResult(ctx context.Context, result ports.PaymentResult) (*ports.SettlementOutcome, error) {
	if result.TransactionRef == "" && result.OrderID == "" {
		return nil, apperror.Validation("transaction ref or order id is required")
	}

	if result.TransactionRef != "" {
		if cached := s.cached(ctx, result.TransactionRef); cached != nil {
			settlementOutcomes.WithLabelValues(string(result.Operator), "replay").Inc()
			return &ports.SettlementOutcome{Transaction: cached}, nil
		}
	}

	start := time.Now()
	var outcome *ports.SettlementOutcome
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		txn, err := s.lockCollection(ctx, tx, result)
		if err != nil {
			return err
		}
		if txn.IsTerminal() {
			outcome = &ports.SettlementOutcome{Transaction: txn}
			return nil
		}
		if result.Operator != "" && txn.PaymentMethod != nil && *txn.PaymentMethod != result.Operator {
			return apperror.Validation(fmt.Sprintf("collection %s was not routed through %s", txn.Ref, result.Operator))
		}

		now := time.Now().UTC()
		if result.ExternalRef != "" {
			external := result.ExternalRef
			txn.ExternalRef = &external
		}

		if !result.Success {
			reason := result.FailureReason
			if reason == "" {
				reason = "payment declined by operator"
			}
			if err := txn.Fail("PAYMENT_FAILED", reason, now); err != nil {
				return err
			}
			if err := s.rec.update(ctx, tx, txn, domain.EventCollectionFailed); err != nil {
				return err
			}
			outcome = &ports.SettlementOutcome{Transaction: txn, Applied: true}
			return nil
		}

		if result.Currency != "" && result.Currency != txn.Currency {
			return apperror.ErrCurrencyMismatch(fmt.Sprintf("collection %s is in %s, operator reported %s", txn.Ref, txn.Currency, result.Currency))
		}
		if !result.Amount.IsZero() && !result.Amount.Equal(txn.AmountGross) {
			return apperror.ErrExternalSettlement(fmt.Sprintf("operator reported %s for collection %s of %s",
				result.Amount.String(), txn.Ref, txn.AmountGross.String()), nil)
		}

		if _, err := s.wallets.Credit(ctx, tx, txn.MerchantID, txn.AmountNet, txn.Currency); err != nil {
			return err
		}
		if err := txn.Transition(domain.TransactionStatusSuccess, now); err != nil {
			return err
		}
		if err := s.rec.update(ctx, tx, txn, domain.EventCollectionSettled); err != nil {
			return err
		}
		if err := s.postSettlement(ctx, tx, txn); err != nil {
			return err
		}
		outcome = &ports.SettlementOutcome{Transaction: txn, Applied: true}
		return nil
	})
	operationDuration.WithLabelValues("settlement").Observe(time.Since(start).Seconds())
	if err != nil {
		settlementOutcomes.WithLabelValues(string(result.Operator), "error").Inc()
		return nil, asAppError(err)
	}

	s.remember(ctx, outcome.Transaction)

	label := "replay"
	if outcome.Applied {
		label = string(outcome.Transaction.Status)
	}
	settlementOutcomes.WithLabelValues(string(result.Operator), label).Inc()
	s.log.Info().
		Str("transaction_ref", outcome.Transaction.Ref).
		Str("status", string(outcome.Transaction.Status)).
		Bool("applied", outcome.Applied).
		Msg("payment result handled")
	return outcome, nil
}

func (s *SettlementServiceImpl) lockCollection(ctx context.Context, tx pgx.Tx, result ports.PaymentResult) (*domain.Transaction, error) {
	var (
		txn *domain.Transaction
		err error
		key = result.TransactionRef
	)
	if key != "" {
		txn, err = s.txRepo.GetByRefForUpdate(ctx, tx, key)
	} else {
		key = result.OrderID
		txn, err = s.txRepo.GetByOrderIDForUpdate(ctx, tx, result.MerchantID, result.OrderID)
	}
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if txn == nil || txn.Type != domain.TransactionTypeCollection {
		return nil, apperror.ErrNotFoundOrAlreadyProcessed(key)
	}
	return txn, nil
}

func (s *SettlementServiceImpl) postSettlement(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	method := domain.PaymentMethodManual
	if txn.PaymentMethod != nil {
		method = *txn.PaymentMethod
	}
	escrow := domain.EscrowAccount(method, txn.Currency)
	meta := map[string]any{"payment_method": string(method)}

	err := s.ledger.RecordDoubleEntry(ctx, tx, domain.DoubleEntry{
		TransactionID: txn.ID,
		Debit:         escrow,
		Credit:        domain.MerchantWalletAccount(txn.Currency),
		Amount:        txn.AmountNet,
		Currency:      txn.Currency,
		Description:   "Payment received - " + txn.Ref,
		Metadata:      meta,
	})
	if err != nil {
		return err
	}
	if !txn.AmountFee.IsPositive() {
		return nil
	}
	return s.ledger.RecordDoubleEntry(ctx, tx, domain.DoubleEntry{
		TransactionID: txn.ID,
		Debit:         escrow,
		Credit:        domain.CommissionRevenueAccount(txn.Currency),
		Amount:        txn.AmountFee,
		Currency:      txn.Currency,
		Description:   "Commission - " + txn.Ref,
		Metadata:      meta,
	})
}

func (s *SettlementServiceImpl) cached(ctx context.Context, ref string) *domain.Transaction {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, ref)
	if err != nil {
		s.log.Warn().Err(err).Str("transaction_ref", ref).Msg("settlement cache read failed, falling through to db")
		return nil
	}
	if raw == nil {
		return nil
	}
	var txn domain.Transaction
	if err := json.Unmarshal(raw, &txn); err != nil {
		s.log.Warn().Err(err).Str("transaction_ref", ref).Msg("discarding corrupt settlement cache entry")
		return nil
	}
	return &txn
}

func (s *SettlementServiceImpl) remember(ctx context.Context, txn *domain.Transaction) {
	if s.cache == nil || !txn.IsTerminal() {
		return
	}
	raw, err := json.Marshal(txn)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, txn.Ref, raw, settlementCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("transaction_ref", txn.Ref).Msg("settlement cache write failed")
	}
}

// ExpireStale closes pending collections whose payment window has passed.
func (s *SettlementServiceImpl) ExpireStale(ctx context.Context, now time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = defaultPendingLimit
	}
	count := 0
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		txns, err := s.txRepo.LockExpiredCollections(ctx, tx, now, limit)
		if err != nil {
			return apperror.ErrDatabaseError(err)
		}
		for i := range txns {
			txn := &txns[i]
			if err := txn.Transition(domain.TransactionStatusExpired, now.UTC()); err != nil {
				return err
			}
			if err := s.rec.update(ctx, tx, txn, domain.EventCollectionExpired); err != nil {
				return err
			}
		}
		count = len(txns)
		return nil
	})
	if err != nil {
		return 0, asAppError(err)
	}
	if count > 0 {
		s.log.Info().Int("count", count).Msg("expired stale collections")
	}
	return count, nil
}
