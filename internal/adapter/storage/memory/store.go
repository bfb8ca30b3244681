// Package memory is a process-local implementation of the storage ports.
// Transactions are serialized by a single lock and rolled back by restoring
// a snapshot, which gives the same isolation the PostgreSQL row locks give
// for the engine's access patterns.
package memory

import (
	"context"
	"errors"
	"maps"
	"sync"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errTxDone = errors.New("memory: transaction already closed")

// Store holds every table in memory.
type Store struct {
	txSem chan struct{}

	mu           sync.RWMutex
	merchants    map[uuid.UUID]domain.Merchant
	wallets      map[uuid.UUID]domain.Wallet // keyed by merchant id
	transactions map[uuid.UUID]domain.Transaction
	refs         map[string]uuid.UUID
	ledger       []domain.LedgerEntry
	bankAccounts map[uuid.UUID]domain.BankAccount
	audit        []domain.AuditLog
	outbox       map[string]domain.OutboxEvent
	outboxOrder  []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		txSem:        make(chan struct{}, 1),
		merchants:    make(map[uuid.UUID]domain.Merchant),
		wallets:      make(map[uuid.UUID]domain.Wallet),
		transactions: make(map[uuid.UUID]domain.Transaction),
		refs:         make(map[string]uuid.UUID),
		bankAccounts: make(map[uuid.UUID]domain.BankAccount),
		outbox:       make(map[string]domain.OutboxEvent),
	}
}

// SeedMerchant registers a merchant, standing in for the onboarding service.
func (s *Store) SeedMerchant(m domain.Merchant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merchants[m.ID] = m
}

// AuditLogs returns a copy of the audit trail.
func (s *Store) AuditLogs() []domain.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AuditLog(nil), s.audit...)
}

// LedgerEntries returns a copy of every posted entry.
func (s *Store) LedgerEntries() []domain.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.LedgerEntry(nil), s.ledger...)
}

type snapshot struct {
	wallets      map[uuid.UUID]domain.Wallet
	transactions map[uuid.UUID]domain.Transaction
	refs         map[string]uuid.UUID
	ledgerLen    int
	bankAccounts map[uuid.UUID]domain.BankAccount
	outboxLen    int
}

func (s *Store) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &snapshot{
		wallets:      maps.Clone(s.wallets),
		transactions: maps.Clone(s.transactions),
		refs:         maps.Clone(s.refs),
		ledgerLen:    len(s.ledger),
		bankAccounts: maps.Clone(s.bankAccounts),
		outboxLen:    len(s.outboxOrder),
	}
}

// restore rolls back to snap. Outbox rows are only ever inserted inside a
// transaction and marked by the relay outside one, so rollback drops the rows
// the transaction enqueued and leaves relay progress alone.
func (s *Store) restore(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets = snap.wallets
	s.transactions = snap.transactions
	s.refs = snap.refs
	s.ledger = s.ledger[:snap.ledgerLen:snap.ledgerLen]
	s.bankAccounts = snap.bankAccounts
	for _, id := range s.outboxOrder[snap.outboxLen:] {
		delete(s.outbox, id)
	}
	s.outboxOrder = s.outboxOrder[:snap.outboxLen:snap.outboxLen]
}

// Begin starts a transaction, waiting for any running one to finish.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	select {
	case s.txSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &memTx{store: s, snap: s.snapshot()}, nil
}

// WithinTx runs fn in a transaction, committing on nil and rolling back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// memTx satisfies pgx.Tx so the memory repositories share the ports used by
// the PostgreSQL adapter. Only Commit and Rollback carry meaning.
type memTx struct {
	store *Store
	snap  *snapshot
	done  bool
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.done = true
	<-t.store.txSem
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.done = true
	t.store.restore(t.snap)
	<-t.store.txSem
	return nil
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }
