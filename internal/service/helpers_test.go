package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"merchant-wallet-engine/internal/adapter/bankfile"
	"merchant-wallet-engine/internal/adapter/storage/memory"
	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testLimits keeps the USD numbers small enough to reason about in tests.
func testLimits() Limits {
	return Limits{
		domain.CurrencyUSD: {
			Ceiling:       dec("10000"),
			SweepTrigger:  dec("8000"),
			Floor:         dec("100"),
			MinWithdrawal: dec("10"),
		},
		domain.CurrencyCDF: {
			Ceiling:       dec("100000000"),
			SweepTrigger:  dec("60000000"),
			Floor:         dec("200000"),
			MinWithdrawal: dec("10000"),
		},
	}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeRateSource struct {
	mu   sync.Mutex
	rate decimal.Decimal
	err  error
}

func (f *fakeRateSource) FetchUSDCDF(ctx context.Context) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rate, f.err
}

func (f *fakeRateSource) set(rate decimal.Decimal, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rate, f.err = rate, err
}

type fakeGateway struct {
	mu    sync.Mutex
	err   error
	calls []ports.GatewayCollection
}

func (g *fakeGateway) RequestCollection(ctx context.Context, req ports.GatewayCollection) (*ports.GatewayAck, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	return &ports.GatewayAck{ExternalRef: "EXT-" + req.TransactionRef}, nil
}

type memorySink struct {
	mu    sync.Mutex
	err   error
	files map[string][]byte
}

func (s *memorySink) Save(ctx context.Context, name string, content []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if s.files == nil {
		s.files = map[string][]byte{}
	}
	s.files[name] = content
	return "mem://" + name, nil
}

// engine wires every service over one memory store.
type engine struct {
	store      *memory.Store
	outbox     *memory.OutboxRepo
	txRepo     *memory.TransactionRepo
	clock      *testClock
	rateSource *fakeRateSource
	gateway    *fakeGateway
	sink       *memorySink

	wallets     *WalletServiceImpl
	ledger      *LedgerServiceImpl
	rates       *ExchangeRateServiceImpl
	locks       *RateLockManager
	conversion  *ConversionServiceImpl
	banks       *BankAccountServiceImpl
	segregation *SegregationServiceImpl
	withdrawals *WithdrawalServiceImpl
	settlement  *SettlementServiceImpl
	reporting   ports.ReportingService

	merchantID uuid.UUID
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	log := newTestLogger()
	store := memory.NewStore()

	merchantRepo := memory.NewMerchantRepo(store)
	walletRepo := memory.NewWalletRepo(store)
	txRepo := memory.NewTransactionRepo(store)
	ledgerRepo := memory.NewLedgerRepo(store)
	bankRepo := memory.NewBankAccountRepo(store)
	outboxRepo := memory.NewOutboxRepo(store)

	e := &engine{
		store:      store,
		outbox:     outboxRepo,
		txRepo:     txRepo,
		clock:      newTestClock(),
		rateSource: &fakeRateSource{rate: dec("2800")},
		gateway:    &fakeGateway{},
		sink:       &memorySink{},
		merchantID: uuid.New(),
	}

	e.wallets = NewWalletService(merchantRepo, walletRepo, outboxRepo, store, log)
	e.ledger = NewLedgerService(ledgerRepo, txRepo, log)
	e.rates = NewExchangeRateService(e.rateSource, nil, FXSettings{SpreadPercent: dec("2.5"), FallbackRate: dec("2850")}, log)
	e.locks = NewRateLockManager(60*time.Second, e.clock.Now, log)
	e.conversion = NewConversionService(walletRepo, txRepo, outboxRepo, e.wallets, e.ledger, e.rates, e.locks, store, log)
	e.banks = NewBankAccountService(bankRepo, store, log)
	e.segregation = NewSegregationService(walletRepo, bankRepo, txRepo, outboxRepo, e.wallets, e.ledger, store, testLimits(), log)
	e.withdrawals = NewWithdrawalService(merchantRepo, walletRepo, bankRepo, txRepo, outboxRepo, e.wallets, e.ledger, store,
		e.sink, bankfile.Debtor{Name: "Wallet Engine SARL", IBAN: "FR7630006000011234567890189", BIC: "AGRIFRPP", Account: "00012345678"},
		testLimits(), log)
	e.withdrawals.now = e.clock.Now
	e.settlement = NewSettlementService(walletRepo, txRepo, outboxRepo, e.wallets, e.ledger, e.gateway, nil, store,
		CollectionSettings{CommissionPercent: dec("2.8"), Timeout: 5 * time.Minute}, log)
	e.reporting = NewReportingService(txRepo)

	store.SeedMerchant(domain.Merchant{
		ID:           e.merchantID,
		Email:        "shop@example.cd",
		BusinessName: "Kin Shop",
		Status:       domain.MerchantStatusActive,
	})
	_, err := e.wallets.OpenWallet(context.Background(), e.merchantID)
	require.NoError(t, err)
	return e
}

// addMerchant seeds a second merchant with an open wallet.
func (e *engine) addMerchant(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	e.store.SeedMerchant(domain.Merchant{ID: id, Email: id.String() + "@example.cd", Status: domain.MerchantStatusActive})
	_, err := e.wallets.OpenWallet(context.Background(), id)
	require.NoError(t, err)
	return id
}

// collect settles a collection of gross amount, so the wallet receives the
// net and the ledger records the movement.
func (e *engine) collect(t *testing.T, merchantID uuid.UUID, gross string, c domain.Currency) *domain.Transaction {
	t.Helper()
	ctx := context.Background()
	txn, err := e.settlement.InitiateCollection(ctx, ports.CollectionRequest{
		MerchantID:    merchantID,
		Amount:        dec(gross),
		Currency:      c,
		Method:        domain.PaymentMethodMpesa,
		OrderID:       uuid.NewString(),
		CustomerPhone: "0812345678",
	})
	require.NoError(t, err)

	out, err := e.settlement.HandlePaymentResult(ctx, ports.PaymentResult{
		TransactionRef: txn.Ref,
		Operator:       domain.PaymentMethodMpesa,
		Success:        true,
		Amount:         dec(gross),
		Currency:       c,
	})
	require.NoError(t, err)
	require.True(t, out.Applied)
	return out.Transaction
}

// fund credits the wallet directly, bypassing the ledger.
func (e *engine) fund(t *testing.T, merchantID uuid.UUID, amount string, c domain.Currency) {
	t.Helper()
	err := e.store.WithinTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		_, err := e.wallets.Credit(ctx, tx, merchantID, dec(amount), c)
		return err
	})
	require.NoError(t, err)
}

func (e *engine) balance(t *testing.T, merchantID uuid.UUID, c domain.Currency) decimal.Decimal {
	t.Helper()
	view, err := e.wallets.GetBalance(context.Background(), merchantID)
	require.NoError(t, err)
	if c == domain.CurrencyUSD {
		return view.USD.Available
	}
	return view.CDF.Available
}

// addAccount registers a verified bank account, optionally as the default.
func (e *engine) addAccount(t *testing.T, merchantID uuid.UUID, c domain.Currency, iban, swift string, makeDefault bool) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	req := ports.BankAccountRequest{
		MerchantID:    merchantID,
		BankName:      "Rawbank",
		AccountNumber: "0501234567890",
		AccountName:   "Kin Shop SARL",
		Currency:      c,
	}
	if iban != "" {
		req.IBAN = &iban
	}
	if swift != "" {
		req.SwiftCode = &swift
	}
	view, err := e.banks.Register(ctx, req)
	require.NoError(t, err)
	_, err = e.banks.Verify(ctx, view.ID, "admin-1")
	require.NoError(t, err)
	if makeDefault {
		_, err = e.banks.SetDefault(ctx, merchantID, view.ID)
		require.NoError(t, err)
	}
	return view.ID
}

// requireLedgerBalanced checks that every posting has a matching opposite
// posting: total debits equal total credits per currency.
func requireLedgerBalanced(t *testing.T, store *memory.Store) {
	t.Helper()
	debits := map[domain.Currency]decimal.Decimal{}
	credits := map[domain.Currency]decimal.Decimal{}
	for _, e := range store.LedgerEntries() {
		switch e.EntryType {
		case domain.EntryDebit:
			debits[e.Currency] = debits[e.Currency].Add(e.Amount)
		case domain.EntryCredit:
			credits[e.Currency] = credits[e.Currency].Add(e.Amount)
		}
	}
	for _, c := range domain.SupportedCurrencies {
		require.Truef(t, debits[c].Equal(credits[c]), "%s debits %s != credits %s", c, debits[c], credits[c])
	}
}

func eventTypes(events []domain.OutboxEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.EventType)
	}
	return out
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperror.HasCode(err, code), "want %s, got %v", code, err)
}
