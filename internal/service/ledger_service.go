package service

import (
	"context"
	"fmt"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService. Entries are only ever
// appended; corrections are new postings in the opposite direction.
type LedgerServiceImpl struct {
	ledgerRepo ports.LedgerRepository
	txRepo     ports.TransactionRepository
	log        zerolog.Logger
}

func NewLedgerService(ledgerRepo ports.LedgerRepository, txRepo ports.TransactionRepository, log zerolog.Logger) *LedgerServiceImpl {
	return &LedgerServiceImpl{ledgerRepo: ledgerRepo, txRepo: txRepo, log: log}
}

// RecordDoubleEntry writes the debit and credit rows of one posting in the
// caller's transaction.
func (s *LedgerServiceImpl) RecordDoubleEntry(ctx context.Context, tx pgx.Tx, entry domain.DoubleEntry) error {
	if err := entry.Validate(); err != nil {
		return asAppError(fmt.Errorf("posting %s -> %s: %w", entry.Debit, entry.Credit, err))
	}
	debit, credit := entry.Entries()
	if err := s.ledgerRepo.Insert(ctx, tx, debit, credit); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("insert ledger entries: %w", err))
	}

	s.log.Debug().
		Str("transaction_id", entry.TransactionID.String()).
		Str("debit", string(entry.Debit)).
		Str("credit", string(entry.Credit)).
		Str("amount", entry.Amount.String()).
		Str("currency", string(entry.Currency)).
		Msg("ledger posting recorded")
	return nil
}

// AccountBalance returns SUM(credit) - SUM(debit) for an account.
func (s *LedgerServiceImpl) AccountBalance(ctx context.Context, account domain.LedgerAccount, currency domain.Currency) (*domain.AccountBalance, error) {
	if !account.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown ledger account %q", account))
	}
	if err := validCurrency(currency); err != nil {
		return nil, err
	}
	bal, err := s.ledgerRepo.AccountBalance(ctx, account, currency)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return bal, nil
}

// EntriesForTransaction lists the postings recorded for a transaction ref.
func (s *LedgerServiceImpl) EntriesForTransaction(ctx context.Context, ref string) ([]domain.LedgerEntry, error) {
	txn, err := s.txRepo.GetByRef(ctx, ref)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	entries, err := s.ledgerRepo.ListByTransaction(ctx, txn.ID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return entries, nil
}
