package service

import (
	"context"
	"encoding/json"
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

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	merchantRepo ports.MerchantRepository
	walletRepo   ports.WalletRepository
	outboxRepo   ports.OutboxRepository
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	merchantRepo ports.MerchantRepository,
	walletRepo ports.WalletRepository,
	outboxRepo ports.OutboxRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		merchantRepo: merchantRepo,
		walletRepo:   walletRepo,
		outboxRepo:   outboxRepo,
		transactor:   transactor,
		log:          log,
	}
}

// OpenWallet creates the merchant's wallet if it does not exist yet.
func (s *WalletServiceImpl) OpenWallet(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	if !merchant.CanMoveFunds() {
		return nil, apperror.ErrMerchantSuspended()
	}

	wallet := domain.NewWallet(merchantID)
	var created bool
	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		created, err = s.walletRepo.Create(ctx, tx, wallet)
		return err
	})
	if err != nil {
		return nil, asAppError(err)
	}
	if created {
		s.log.Info().Str("merchant_id", merchantID.String()).Msg("wallet opened")
		return wallet, nil
	}

	existing, err := s.walletRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return existing, nil
}

// Credit adds funds inside the caller's transaction.
func (s *WalletServiceImpl) Credit(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, amount decimal.Decimal, currency domain.Currency) (*domain.Wallet, error) {
	return s.move(ctx, tx, "credit", merchantID, amount, currency, (*domain.Wallet).Credit)
}

// Debit removes funds inside the caller's transaction.
func (s *WalletServiceImpl) Debit(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, amount decimal.Decimal, currency domain.Currency) (*domain.Wallet, error) {
	return s.move(ctx, tx, "debit", merchantID, amount, currency, (*domain.Wallet).Debit)
}

func (s *WalletServiceImpl) move(
	ctx context.Context,
	tx pgx.Tx,
	direction string,
	merchantID uuid.UUID,
	amount decimal.Decimal,
	currency domain.Currency,
	apply func(w *domain.Wallet, amount decimal.Decimal, c domain.Currency) error,
) (wallet *domain.Wallet, err error) {
	defer func() {
		walletMovements.WithLabelValues(direction, string(currency), resultLabel(err)).Inc()
	}()

	wallet, err = s.walletRepo.GetByMerchantIDForUpdate(ctx, tx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	if err = apply(wallet, amount, currency); err != nil {
		return nil, walletError(err, wallet, currency)
	}
	if err = s.walletRepo.Update(ctx, tx, wallet); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update wallet: %w", err))
	}
	return wallet, nil
}

// Freeze blocks every movement on the wallet until Unfreeze.
func (s *WalletServiceImpl) Freeze(ctx context.Context, merchantID uuid.UUID, reason string) (*domain.Wallet, error) {
	if reason == "" {
		return nil, apperror.Validation("freeze reason is required")
	}
	return s.setFrozen(ctx, merchantID, domain.EventWalletFrozen, func(w *domain.Wallet) error {
		w.Freeze(reason)
		return nil
	})
}

func (s *WalletServiceImpl) Unfreeze(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error) {
	return s.setFrozen(ctx, merchantID, domain.EventWalletUnfrozen, (*domain.Wallet).Unfreeze)
}

func (s *WalletServiceImpl) setFrozen(ctx context.Context, merchantID uuid.UUID, eventType string, apply func(w *domain.Wallet) error) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		w, err := s.walletRepo.GetByMerchantIDForUpdate(ctx, tx, merchantID)
		if err != nil {
			return apperror.ErrDatabaseError(err)
		}
		if w == nil {
			return apperror.ErrNotFound("wallet")
		}
		if err := apply(w); err != nil {
			return err
		}
		if err := s.walletRepo.Update(ctx, tx, w); err != nil {
			return apperror.ErrDatabaseError(err)
		}
		evt, err := newWalletEvent(eventType, w)
		if err != nil {
			return err
		}
		if err := s.outboxRepo.Create(ctx, tx, evt); err != nil {
			return apperror.ErrDatabaseError(err)
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	s.log.Info().
		Str("merchant_id", merchantID.String()).
		Bool("frozen", wallet.IsFrozen).
		Msg("wallet freeze state changed")
	return wallet, nil
}

// GetBalance returns the merchant-facing balance summary.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, merchantID uuid.UUID) (*ports.BalanceView, error) {
	w, err := s.walletRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if w == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	return balanceView(w), nil
}

func balanceView(w *domain.Wallet) *ports.BalanceView {
	return &ports.BalanceView{
		USD: ports.CurrencyBalance{
			Available:      w.BalanceUSD,
			TotalReceived:  w.TotalReceivedUSD,
			TotalWithdrawn: w.TotalWithdrawnUSD,
		},
		CDF: ports.CurrencyBalance{
			Available:      w.BalanceCDF,
			TotalReceived:  w.TotalReceivedCDF,
			TotalWithdrawn: w.TotalWithdrawnCDF,
		},
		IsFrozen:          w.IsFrozen,
		FrozenReason:      w.FrozenReason,
		LastTransactionAt: w.LastTransactionAt,
	}
}

type walletEvent struct {
	EventType  string    `json:"event_type"`
	MerchantID uuid.UUID `json:"merchant_id"`
	WalletID   uuid.UUID `json:"wallet_id"`
	Frozen     bool      `json:"is_frozen"`
	Reason     *string   `json:"frozen_reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newWalletEvent(eventType string, w *domain.Wallet) (*domain.OutboxEvent, error) {
	now := time.Now().UTC()
	payload, err := json.Marshal(walletEvent{
		EventType:  eventType,
		MerchantID: w.MerchantID,
		WalletID:   w.ID,
		Frozen:     w.IsFrozen,
		Reason:     w.FrozenReason,
		OccurredAt: now,
	})
	if err != nil {
		return nil, err
	}
	return &domain.OutboxEvent{
		ID:            domain.NewEventID(),
		AggregateID:   w.ID,
		EventType:     eventType,
		Key:           w.MerchantID.String(),
		Payload:       payload,
		Status:        domain.OutboxStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
