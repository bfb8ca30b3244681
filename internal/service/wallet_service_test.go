package service

import (
	"context"
	"testing"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletService_OpenWalletIsIdempotent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.fund(t, e.merchantID, "25", domain.CurrencyUSD)

	w, err := e.wallets.OpenWallet(ctx, e.merchantID)
	require.NoError(t, err)
	assert.True(t, dec("25").Equal(w.BalanceUSD))
}

func TestWalletService_OpenWalletUnknownMerchant(t *testing.T) {
	e := newEngine(t)
	_, err := e.wallets.OpenWallet(context.Background(), uuid.New())
	requireCode(t, err, apperror.CodeNotFound)
}

func TestWalletService_OpenWalletSuspendedMerchant(t *testing.T) {
	e := newEngine(t)
	id := uuid.New()
	e.store.SeedMerchant(domain.Merchant{ID: id, Status: domain.MerchantStatusDeactivated})

	_, err := e.wallets.OpenWallet(context.Background(), id)
	requireCode(t, err, apperror.CodeMerchantSuspended)
}

func TestWalletService_DebitWholeBalanceThenOverdraw(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.fund(t, e.merchantID, "1000", domain.CurrencyUSD)

	err := e.store.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := e.wallets.Debit(ctx, tx, e.merchantID, dec("1000"), domain.CurrencyUSD)
		return err
	})
	require.NoError(t, err)
	assert.True(t, e.balance(t, e.merchantID, domain.CurrencyUSD).IsZero())

	err = e.store.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := e.wallets.Debit(ctx, tx, e.merchantID, dec("1"), domain.CurrencyUSD)
		return err
	})
	requireCode(t, err, apperror.CodeInsufficientBalance)
	assert.True(t, e.balance(t, e.merchantID, domain.CurrencyUSD).IsZero())
}

func TestWalletService_CreditRejectsNonPositive(t *testing.T) {
	e := newEngine(t)
	err := e.store.WithinTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		_, err := e.wallets.Credit(ctx, tx, e.merchantID, dec("0"), domain.CurrencyCDF)
		return err
	})
	requireCode(t, err, apperror.CodeValidation)
}

func TestWalletService_MissingWallet(t *testing.T) {
	e := newEngine(t)
	err := e.store.WithinTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		_, err := e.wallets.Credit(ctx, tx, uuid.New(), dec("1"), domain.CurrencyUSD)
		return err
	})
	requireCode(t, err, apperror.CodeNotFound)
}

func TestWalletService_FreezeBlocksMovements(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.fund(t, e.merchantID, "50", domain.CurrencyUSD)

	_, err := e.wallets.Freeze(ctx, e.merchantID, "")
	requireCode(t, err, apperror.CodeValidation)

	w, err := e.wallets.Freeze(ctx, e.merchantID, "chargeback review")
	require.NoError(t, err)
	assert.True(t, w.IsFrozen)

	err = e.store.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := e.wallets.Debit(ctx, tx, e.merchantID, dec("10"), domain.CurrencyUSD)
		return err
	})
	requireCode(t, err, apperror.CodeFrozenWallet)
	assert.Contains(t, err.Error(), "chargeback review")

	view, err := e.wallets.GetBalance(ctx, e.merchantID)
	require.NoError(t, err)
	assert.True(t, view.IsFrozen)
	require.NotNil(t, view.FrozenReason)
	assert.Equal(t, "chargeback review", *view.FrozenReason)

	_, err = e.wallets.Unfreeze(ctx, e.merchantID)
	require.NoError(t, err)
	_, err = e.wallets.Unfreeze(ctx, e.merchantID)
	requireCode(t, err, apperror.CodeValidation)

	assert.Equal(t,
		[]string{domain.EventWalletFrozen, domain.EventWalletUnfrozen},
		eventTypes(e.outbox.Events()))
}

func TestWalletService_GetBalance(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.fund(t, e.merchantID, "120.50", domain.CurrencyUSD)
	e.fund(t, e.merchantID, "300000", domain.CurrencyCDF)

	view, err := e.wallets.GetBalance(ctx, e.merchantID)
	require.NoError(t, err)
	assert.True(t, dec("120.50").Equal(view.USD.Available))
	assert.True(t, dec("120.50").Equal(view.USD.TotalReceived))
	assert.True(t, dec("300000").Equal(view.CDF.Available))
	assert.False(t, view.IsFrozen)
	assert.NotNil(t, view.LastTransactionAt)

	_, err = e.wallets.GetBalance(ctx, uuid.New())
	requireCode(t, err, apperror.CodeNotFound)
}
