package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestStore_RollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	wallets := NewWalletRepo(s)
	txns := NewTransactionRepo(s)
	ledger := NewLedgerRepo(s)
	outbox := NewOutboxRepo(s)

	w := domain.NewWallet(uuid.New())
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := wallets.Create(ctx, tx, w)
		return err
	}))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		w.BalanceUSD = dec("100")
		require.NoError(t, wallets.Update(ctx, tx, w))

		txn := domain.NewTransaction(w.MerchantID, w.ID, domain.TransactionTypeCollection, domain.CurrencyUSD, dec("100"), decimal.Zero)
		require.NoError(t, txns.Create(ctx, tx, txn))
		debit, credit := domain.DoubleEntry{
			TransactionID: txn.ID,
			Debit:         domain.EscrowAccount(domain.PaymentMethodMpesa, domain.CurrencyUSD),
			Credit:        domain.MerchantWalletAccount(domain.CurrencyUSD),
			Amount:        dec("100"),
			Currency:      domain.CurrencyUSD,
		}.Entries()
		require.NoError(t, ledger.Insert(ctx, tx, debit, credit))
		evt, _ := domain.NewTransactionEvent(domain.EventCollectionSettled, txn)
		require.NoError(t, outbox.Create(ctx, tx, evt))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := wallets.GetByMerchantID(ctx, w.MerchantID)
	require.NoError(t, err)
	assert.True(t, got.BalanceUSD.IsZero())
	assert.Empty(t, s.LedgerEntries())
	assert.Empty(t, outbox.Events())

	stats, err := txns.GetStats(ctx, w.MerchantID, nil)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestStore_TransactionsAreSerialized(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	wallets := NewWalletRepo(s)

	w := domain.NewWallet(uuid.New())
	created, err := wallets.Create(ctx, nil, w)
	require.NoError(t, err)
	require.True(t, created)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
				cur, err := wallets.GetByMerchantIDForUpdate(ctx, tx, w.MerchantID)
				if err != nil {
					return err
				}
				if err := cur.Credit(dec("1"), domain.CurrencyCDF); err != nil {
					return err
				}
				return wallets.Update(ctx, tx, cur)
			})
		}()
	}
	wg.Wait()

	got, _ := wallets.GetByMerchantID(ctx, w.MerchantID)
	assert.True(t, dec("50").Equal(got.BalanceCDF), got.BalanceCDF.String())
}

func TestStore_BeginHonorsContext(t *testing.T) {
	s := NewStore()
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Begin(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, tx.Commit(context.Background()))
	assert.ErrorIs(t, tx.Rollback(context.Background()), errTxDone)
}

func TestWalletRepo_CreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepo(NewStore())
	merchantID := uuid.New()

	created, err := repo.Create(ctx, nil, domain.NewWallet(merchantID))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, nil, domain.NewWallet(merchantID))
	require.NoError(t, err)
	assert.False(t, created)

	missing, err := repo.GetByMerchantID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWalletRepo_UpdateRejectsNegativeBalance(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepo(NewStore())
	w := domain.NewWallet(uuid.New())
	_, _ = repo.Create(ctx, nil, w)

	w.BalanceUSD = dec("-1")
	assert.Error(t, repo.Update(ctx, nil, w))
}

func TestWalletRepo_ListAboveThreshold(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepo(NewStore())

	over := domain.NewWallet(uuid.New())
	over.BalanceUSD = dec("30000.01")
	at := domain.NewWallet(uuid.New())
	at.BalanceUSD = dec("30000")
	frozen := domain.NewWallet(uuid.New())
	frozen.BalanceUSD = dec("40000")
	frozen.Freeze("review")
	for _, w := range []*domain.Wallet{over, at, frozen} {
		_, _ = repo.Create(ctx, nil, w)
	}

	ids, err := repo.ListAboveThreshold(ctx, domain.CurrencyUSD, dec("30000"))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{over.MerchantID}, ids)
}

func TestTransactionRepo_UniqueOrderAndRef(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepo(NewStore())
	merchantID := uuid.New()
	order := "ORD-1"

	first := domain.NewTransaction(merchantID, uuid.New(), domain.TransactionTypeCollection, domain.CurrencyUSD, dec("10"), decimal.Zero)
	first.OrderID = &order
	require.NoError(t, repo.Create(ctx, nil, first))

	dup := domain.NewTransaction(merchantID, uuid.New(), domain.TransactionTypeCollection, domain.CurrencyUSD, dec("10"), decimal.Zero)
	dup.OrderID = &order
	assert.ErrorIs(t, repo.Create(ctx, nil, dup), errDuplicateOrder)

	assert.Error(t, repo.Create(ctx, nil, first))

	got, err := repo.GetByOrderIDForUpdate(ctx, nil, merchantID, order)
	require.NoError(t, err)
	assert.Equal(t, first.Ref, got.Ref)
}

func TestTransactionRepo_MetadataIsCopied(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepo(NewStore())
	txn := domain.NewTransaction(uuid.New(), uuid.New(), domain.TransactionTypeWithdrawal, domain.CurrencyUSD, dec("60"), decimal.Zero)
	txn.SetMeta("note", "first")
	require.NoError(t, repo.Create(ctx, nil, txn))

	txn.SetMeta("note", "mutated")
	got, _ := repo.GetByRef(ctx, txn.Ref)
	assert.Equal(t, "first", got.Metadata["note"])
}

func TestTransactionRepo_PendingWithdrawalsOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepo(NewStore())
	merchantID := uuid.New()
	base := time.Now().UTC()

	var refs []string
	for i, ccy := range []domain.Currency{domain.CurrencyCDF, domain.CurrencyUSD, domain.CurrencyUSD} {
		txn := domain.NewTransaction(merchantID, uuid.New(), domain.TransactionTypeWithdrawal, ccy, dec("100"), decimal.Zero)
		txn.CreatedAt = base.Add(time.Duration(3-i) * time.Minute)
		require.NoError(t, repo.Create(ctx, nil, txn))
		refs = append(refs, txn.Ref)
	}

	all, err := repo.ListPendingWithdrawals(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{refs[2], refs[1], refs[0]}, []string{all[0].Ref, all[1].Ref, all[2].Ref})

	usd := domain.CurrencyUSD
	limited, err := repo.LockPendingWithdrawals(ctx, nil, &usd, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, refs[2], limited[0].Ref)
}

func TestTransactionRepo_LockExpiredCollections(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepo(NewStore())
	now := time.Now().UTC()

	stale := domain.NewTransaction(uuid.New(), uuid.New(), domain.TransactionTypeCollection, domain.CurrencyUSD, dec("5"), decimal.Zero)
	past := now.Add(-time.Minute)
	stale.ExpiresAt = &past
	fresh := domain.NewTransaction(uuid.New(), uuid.New(), domain.TransactionTypeCollection, domain.CurrencyUSD, dec("5"), decimal.Zero)
	future := now.Add(time.Minute)
	fresh.ExpiresAt = &future
	require.NoError(t, repo.Create(ctx, nil, stale))
	require.NoError(t, repo.Create(ctx, nil, fresh))

	expired, err := repo.LockExpiredCollections(ctx, nil, now, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.Ref, expired[0].Ref)
}

func TestTransactionRepo_ListPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepo(NewStore())
	merchantID := uuid.New()
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		txn := domain.NewTransaction(merchantID, uuid.New(), domain.TransactionTypeCollection, domain.CurrencyUSD, dec("1"), decimal.Zero)
		txn.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Create(ctx, nil, txn))
	}

	page, total, err := repo.List(ctx, ports.TransactionListParams{MerchantID: merchantID, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	beyond, total, err := repo.List(ctx, ports.TransactionListParams{MerchantID: merchantID, Page: 4, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, beyond)
}

func TestLedgerRepo_AccountBalance(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	txns := NewTransactionRepo(s)
	ledger := NewLedgerRepo(s)

	txn := domain.NewTransaction(uuid.New(), uuid.New(), domain.TransactionTypeCollection, domain.CurrencyCDF, dec("1000"), dec("28"))
	require.NoError(t, txns.Create(ctx, nil, txn))

	escrow := domain.EscrowAccount(domain.PaymentMethodOrangeMoney, domain.CurrencyCDF)
	wallet := domain.MerchantWalletAccount(domain.CurrencyCDF)
	d, c := domain.DoubleEntry{TransactionID: txn.ID, Debit: escrow, Credit: wallet, Amount: dec("972"), Currency: domain.CurrencyCDF}.Entries()
	require.NoError(t, ledger.Insert(ctx, nil, d, c))

	bal, err := ledger.AccountBalance(ctx, wallet, domain.CurrencyCDF)
	require.NoError(t, err)
	assert.True(t, dec("972").Equal(bal.Balance))

	bal, err = ledger.AccountBalance(ctx, escrow, domain.CurrencyCDF)
	require.NoError(t, err)
	assert.True(t, dec("-972").Equal(bal.Balance))

	entries, err := ledger.ListByTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	orphan, _ := domain.DoubleEntry{TransactionID: uuid.New(), Debit: escrow, Credit: wallet, Amount: dec("1"), Currency: domain.CurrencyCDF}.Entries()
	assert.Error(t, ledger.Insert(ctx, nil, orphan))
}

func TestBankAccountRepo_DefaultHandling(t *testing.T) {
	ctx := context.Background()
	repo := NewBankAccountRepo(NewStore())
	merchantID := uuid.New()
	now := time.Now().UTC()

	a := &domain.BankAccount{ID: uuid.New(), MerchantID: merchantID, Currency: domain.CurrencyUSD, IsDefault: true, IsVerified: true, CreatedAt: now}
	b := &domain.BankAccount{ID: uuid.New(), MerchantID: merchantID, Currency: domain.CurrencyUSD, IsDefault: false, CreatedAt: now.Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, nil, a))
	require.NoError(t, repo.Create(ctx, nil, b))

	list, err := repo.ListByMerchant(ctx, merchantID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)

	def, err := repo.GetDefault(ctx, merchantID, domain.CurrencyUSD)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, a.ID, def.ID)

	require.NoError(t, repo.ClearDefault(ctx, nil, merchantID, domain.CurrencyUSD))
	def, err = repo.GetDefault(ctx, merchantID, domain.CurrencyUSD)
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestOutboxRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepo(NewStore())
	now := time.Now().UTC()

	txn := domain.NewTransaction(uuid.New(), uuid.New(), domain.TransactionTypeWithdrawal, domain.CurrencyUSD, dec("60"), decimal.Zero)
	first, _ := domain.NewTransactionEvent(domain.EventWithdrawalInitiated, txn)
	second, _ := domain.NewTransactionEvent(domain.EventWithdrawalCompleted, txn)
	require.NoError(t, repo.Create(ctx, nil, first))
	require.NoError(t, repo.Create(ctx, nil, second))

	due, err := repo.FetchDue(ctx, now.Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, first.ID, due[0].ID)

	require.NoError(t, repo.MarkSent(ctx, first.ID))
	require.NoError(t, repo.MarkRetry(ctx, second.ID, 1, now.Add(time.Minute), "timeout"))

	due, _ = repo.FetchDue(ctx, now.Add(time.Second), 10)
	assert.Empty(t, due)

	require.NoError(t, repo.MarkFailed(ctx, second.ID, 6, "gave up"))
	events := repo.Events()
	assert.Equal(t, domain.OutboxStatusSent, events[0].Status)
	assert.Equal(t, domain.OutboxStatusFailed, events[1].Status)
	assert.Equal(t, 6, events[1].Attempts)

	assert.Error(t, repo.MarkSent(ctx, "missing"))
}

func TestOutboxRepo_RollbackKeepsRelayProgress(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewOutboxRepo(s)

	txn := domain.NewTransaction(uuid.New(), uuid.New(), domain.TransactionTypeCollection, domain.CurrencyUSD, dec("10"), decimal.Zero)
	sent, _ := domain.NewTransactionEvent(domain.EventCollectionSettled, txn)
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return repo.Create(ctx, tx, sent)
	}))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		discarded, _ := domain.NewTransactionEvent(domain.EventCollectionFailed, txn)
		require.NoError(t, repo.Create(ctx, tx, discarded))
		require.NoError(t, repo.MarkSent(ctx, sent.ID))
		return boom
	})
	require.ErrorIs(t, err, boom)

	events := repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, sent.ID, events[0].ID)
	assert.Equal(t, domain.OutboxStatusSent, events[0].Status)

	due, err := repo.FetchDue(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}
