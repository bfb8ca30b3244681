package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var errDuplicateOrder = errors.New("memory: duplicate order id for merchant")

// --- Merchants ---

type MerchantRepo struct{ s *Store }

func NewMerchantRepo(s *Store) *MerchantRepo { return &MerchantRepo{s: s} }

func (r *MerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.merchants[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// --- Wallets ---

type WalletRepo struct{ s *Store }

func NewWalletRepo(s *Store) *WalletRepo { return &WalletRepo{s: s} }

func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.wallets[w.MerchantID]; ok {
		return false, nil
	}
	r.s.wallets[w.MerchantID] = *w
	return true, nil
}

func (r *WalletRepo) GetByMerchantID(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.wallets[merchantID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WalletRepo) GetByMerchantIDForUpdate(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID) (*domain.Wallet, error) {
	return r.GetByMerchantID(ctx, merchantID)
}

func (r *WalletRepo) Update(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.wallets[w.MerchantID]; !ok {
		return fmt.Errorf("update wallet: wallet %s not found", w.ID)
	}
	if w.BalanceUSD.IsNegative() || w.BalanceCDF.IsNegative() {
		return fmt.Errorf("update wallet: balance check violated")
	}
	r.s.wallets[w.MerchantID] = *w
	return nil
}

func (r *WalletRepo) ListAboveThreshold(ctx context.Context, currency domain.Currency, threshold decimal.Decimal) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ids []uuid.UUID
	for id, w := range r.s.wallets {
		if !w.IsFrozen && w.Balance(currency).GreaterThan(threshold) {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return cmp.Compare(a.String(), b.String()) })
	return ids, nil
}

// --- Transactions ---

type TransactionRepo struct{ s *Store }

func NewTransactionRepo(s *Store) *TransactionRepo { return &TransactionRepo{s: s} }

func cloneTransaction(t domain.Transaction) *domain.Transaction {
	t.Metadata = maps.Clone(t.Metadata)
	if t.Metadata == nil {
		t.Metadata = map[string]any{}
	}
	return &t
}

func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.refs[t.Ref]; ok {
		return fmt.Errorf("insert transaction: duplicate ref %s", t.Ref)
	}
	if t.Type == domain.TransactionTypeCollection && t.OrderID != nil {
		for _, existing := range r.s.transactions {
			if existing.MerchantID == t.MerchantID && existing.Type == domain.TransactionTypeCollection &&
				existing.OrderID != nil && *existing.OrderID == *t.OrderID {
				return fmt.Errorf("insert transaction: %w", errDuplicateOrder)
			}
		}
	}
	r.s.transactions[t.ID] = *cloneTransaction(*t)
	r.s.refs[t.Ref] = t.ID
	return nil
}

func (r *TransactionRepo) Update(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.transactions[t.ID]; !ok {
		return fmt.Errorf("transaction not found: %s", t.Ref)
	}
	r.s.transactions[t.ID] = *cloneTransaction(*t)
	return nil
}

func (r *TransactionRepo) GetByRef(ctx context.Context, ref string) (*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.refs[ref]
	if !ok {
		return nil, nil
	}
	return cloneTransaction(r.s.transactions[id]), nil
}

func (r *TransactionRepo) GetByRefForUpdate(ctx context.Context, tx pgx.Tx, ref string) (*domain.Transaction, error) {
	return r.GetByRef(ctx, ref)
}

func (r *TransactionRepo) GetByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, orderID string) (*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.transactions {
		if t.MerchantID == merchantID && t.Type == domain.TransactionTypeCollection &&
			t.OrderID != nil && *t.OrderID == orderID {
			return cloneTransaction(t), nil
		}
	}
	return nil, nil
}

func (r *TransactionRepo) ListPendingWithdrawals(ctx context.Context, currency *domain.Currency, limit int) ([]domain.Transaction, error) {
	return r.filter(func(t domain.Transaction) bool {
		return t.Type == domain.TransactionTypeWithdrawal && t.Status == domain.TransactionStatusPending &&
			(currency == nil || t.Currency == *currency)
	}, byCreatedAsc, limit), nil
}

func (r *TransactionRepo) LockPendingWithdrawals(ctx context.Context, tx pgx.Tx, currency *domain.Currency, limit int) ([]domain.Transaction, error) {
	return r.ListPendingWithdrawals(ctx, currency, limit)
}

func (r *TransactionRepo) LockExpiredCollections(ctx context.Context, tx pgx.Tx, now time.Time, limit int) ([]domain.Transaction, error) {
	return r.filter(func(t domain.Transaction) bool {
		return t.Type == domain.TransactionTypeCollection && t.IsExpired(now)
	}, func(a, b domain.Transaction) int { return a.ExpiresAt.Compare(*b.ExpiresAt) }, limit), nil
}

func (r *TransactionRepo) List(ctx context.Context, p ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	all := r.filter(func(t domain.Transaction) bool {
		return t.MerchantID == p.MerchantID &&
			(p.Status == nil || t.Status == *p.Status) &&
			(p.Type == nil || t.Type == *p.Type) &&
			(p.Currency == nil || t.Currency == *p.Currency) &&
			(p.From == nil || !t.CreatedAt.Before(*p.From)) &&
			(p.To == nil || !t.CreatedAt.After(*p.To))
	}, func(a, b domain.Transaction) int { return byCreatedAsc(b, a) }, 0)

	total := int64(len(all))
	start := (p.Page - 1) * p.PageSize
	if start >= len(all) || start < 0 {
		return nil, total, nil
	}
	end := min(start+p.PageSize, len(all))
	return all[start:end], total, nil
}

func (r *TransactionRepo) GetStats(ctx context.Context, merchantID uuid.UUID, since *time.Time) ([]ports.TransactionStat, error) {
	type key struct {
		c  domain.Currency
		ty domain.TransactionType
		st domain.TransactionStatus
	}
	buckets := map[key]*ports.TransactionStat{}
	for _, t := range r.filter(func(t domain.Transaction) bool {
		return t.MerchantID == merchantID && (since == nil || !t.CreatedAt.Before(*since))
	}, byCreatedAsc, 0) {
		k := key{t.Currency, t.Type, t.Status}
		b, ok := buckets[k]
		if !ok {
			b = &ports.TransactionStat{Currency: t.Currency, Type: t.Type, Status: t.Status}
			buckets[k] = b
		}
		b.Count++
		b.Gross = b.Gross.Add(t.AmountGross)
		b.Fee = b.Fee.Add(t.AmountFee)
		b.Net = b.Net.Add(t.AmountNet)
	}

	stats := make([]ports.TransactionStat, 0, len(buckets))
	for _, b := range buckets {
		stats = append(stats, *b)
	}
	slices.SortFunc(stats, func(a, b ports.TransactionStat) int {
		return cmp.Or(cmp.Compare(a.Currency, b.Currency), cmp.Compare(a.Type, b.Type), cmp.Compare(a.Status, b.Status))
	})
	return stats, nil
}

func byCreatedAsc(a, b domain.Transaction) int {
	return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.Ref, b.Ref))
}

func (r *TransactionRepo) filter(keep func(domain.Transaction) bool, order func(a, b domain.Transaction) int, limit int) []domain.Transaction {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Transaction
	for _, t := range r.s.transactions {
		if keep(t) {
			out = append(out, *cloneTransaction(t))
		}
	}
	slices.SortFunc(out, order)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// --- Ledger ---

type LedgerRepo struct{ s *Store }

func NewLedgerRepo(s *Store) *LedgerRepo { return &LedgerRepo{s: s} }

func (r *LedgerRepo) Insert(ctx context.Context, tx pgx.Tx, entries ...domain.LedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range entries {
		if !e.Amount.IsPositive() {
			return fmt.Errorf("insert ledger entry: amount must be positive")
		}
		if _, ok := r.s.transactions[e.TransactionID]; !ok {
			return fmt.Errorf("insert ledger entry: unknown transaction %s", e.TransactionID)
		}
	}
	r.s.ledger = append(r.s.ledger, entries...)
	return nil
}

func (r *LedgerRepo) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.LedgerEntry
	for _, e := range r.s.ledger {
		if e.TransactionID == transactionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *LedgerRepo) AccountBalance(ctx context.Context, account domain.LedgerAccount, currency domain.Currency) (*domain.AccountBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b := &domain.AccountBalance{Account: account, Currency: currency}
	for _, e := range r.s.ledger {
		if e.Account != account || e.Currency != currency {
			continue
		}
		if e.EntryType == domain.EntryDebit {
			b.Debits = b.Debits.Add(e.Amount)
		} else {
			b.Credits = b.Credits.Add(e.Amount)
		}
	}
	b.Balance = b.Credits.Sub(b.Debits)
	return b, nil
}

// --- Bank accounts ---

type BankAccountRepo struct{ s *Store }

func NewBankAccountRepo(s *Store) *BankAccountRepo { return &BankAccountRepo{s: s} }

func (r *BankAccountRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.BankAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bankAccounts[a.ID] = *a
	return nil
}

func (r *BankAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.bankAccounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *BankAccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.BankAccount, error) {
	return r.GetByID(ctx, id)
}

func (r *BankAccountRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.BankAccount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.BankAccount
	for _, a := range r.s.bankAccounts {
		if a.MerchantID == merchantID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b domain.BankAccount) int {
		if a.IsDefault != b.IsDefault {
			if a.IsDefault {
				return -1
			}
			return 1
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (r *BankAccountRepo) GetDefault(ctx context.Context, merchantID uuid.UUID, currency domain.Currency) (*domain.BankAccount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.bankAccounts {
		if a.MerchantID == merchantID && a.Currency == currency && a.IsDefault && a.IsVerified {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *BankAccountRepo) Update(ctx context.Context, tx pgx.Tx, a *domain.BankAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bankAccounts[a.ID]; !ok {
		return fmt.Errorf("bank account not found: %s", a.ID)
	}
	if a.TrackedBalance.IsNegative() {
		return fmt.Errorf("update bank account: tracked balance check violated")
	}
	r.s.bankAccounts[a.ID] = *a
	return nil
}

func (r *BankAccountRepo) ClearDefault(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, currency domain.Currency) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, a := range r.s.bankAccounts {
		if a.MerchantID == merchantID && a.Currency == currency && a.IsDefault {
			a.IsDefault = false
			a.UpdatedAt = time.Now().UTC()
			r.s.bankAccounts[id] = a
		}
	}
	return nil
}

// --- Audit ---

type AuditRepo struct{ s *Store }

func NewAuditRepo(s *Store) *AuditRepo { return &AuditRepo{s: s} }

func (r *AuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, *log)
	return nil
}

// --- Outbox ---

type OutboxRepo struct{ s *Store }

func NewOutboxRepo(s *Store) *OutboxRepo { return &OutboxRepo{s: s} }

func (r *OutboxRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outbox[e.ID] = *e
	r.s.outboxOrder = append(r.s.outboxOrder, e.ID)
	return nil
}

func (r *OutboxRepo) FetchDue(ctx context.Context, now time.Time, limit int) ([]domain.OutboxEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.OutboxEvent
	for _, id := range r.s.outboxOrder {
		e := r.s.outbox[id]
		if e.Status == domain.OutboxStatusPending && !e.NextAttemptAt.After(now) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *OutboxRepo) MarkSent(ctx context.Context, id string) error {
	return r.mutate(id, func(e *domain.OutboxEvent) {
		e.Status = domain.OutboxStatusSent
		e.Attempts++
		e.LastError = nil
	})
}

func (r *OutboxRepo) MarkRetry(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error {
	return r.mutate(id, func(e *domain.OutboxEvent) {
		e.Attempts = attempts
		e.NextAttemptAt = next
		e.LastError = &lastErr
	})
}

func (r *OutboxRepo) MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error {
	return r.mutate(id, func(e *domain.OutboxEvent) {
		e.Status = domain.OutboxStatusFailed
		e.Attempts = attempts
		e.LastError = &lastErr
	})
}

func (r *OutboxRepo) mutate(id string, fn func(e *domain.OutboxEvent)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.outbox[id]
	if !ok {
		return fmt.Errorf("outbox event not found: %s", id)
	}
	fn(&e)
	e.UpdatedAt = time.Now().UTC()
	r.s.outbox[id] = e
	return nil
}

// Events returns every outbox event in insertion order.
func (r *OutboxRepo) Events() []domain.OutboxEvent {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.OutboxEvent, 0, len(r.s.outboxOrder))
	for _, id := range r.s.outboxOrder {
		out = append(out, r.s.outbox[id])
	}
	return out
}
