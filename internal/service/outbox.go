package service

import (
	"context"
	"fmt"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

// recorder writes a transaction row together with the outbox event that
// announces it. Both writes join the caller's database transaction.
type recorder struct {
	txRepo     ports.TransactionRepository
	outboxRepo ports.OutboxRepository
}

func (r recorder) create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction, eventType string) error {
	if err := r.txRepo.Create(ctx, tx, txn); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("create transaction: %w", err))
	}
	return r.emit(ctx, tx, txn, eventType)
}

func (r recorder) update(ctx context.Context, tx pgx.Tx, txn *domain.Transaction, eventType string) error {
	if err := r.txRepo.Update(ctx, tx, txn); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("update transaction: %w", err))
	}
	return r.emit(ctx, tx, txn, eventType)
}

func (r recorder) emit(ctx context.Context, tx pgx.Tx, txn *domain.Transaction, eventType string) error {
	evt, err := domain.NewTransactionEvent(eventType, txn)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("build %s event: %w", eventType, err))
	}
	if err := r.outboxRepo.Create(ctx, tx, evt); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("enqueue %s event: %w", eventType, err))
	}
	return nil
}
