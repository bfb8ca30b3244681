package service

import (
	"context"
	"errors"
	"testing"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegregationService_SweepToBank(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	account := e.addAccount(t, e.merchantID, domain.CurrencyUSD, "", "", false)
	e.fund(t, e.merchantID, "500", domain.CurrencyUSD)

	res, err := e.segregation.SweepToBank(ctx, ports.TransferRequest{
		MerchantID: e.merchantID, Amount: dec("300"), Currency: domain.CurrencyUSD, BankAccountID: account, Note: "month end",
	})
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(res.NewWalletBalance))
	assert.Equal(t, "Rawbank", res.BankName)
	assert.Equal(t, domain.TransactionStatusSuccess, res.Transaction.Status)
	assert.Equal(t, domain.TransactionTypeSweepToBank, res.Transaction.Type)

	bank, err := e.ledger.AccountBalance(ctx, domain.MerchantBankAccount(domain.CurrencyUSD), domain.CurrencyUSD)
	require.NoError(t, err)
	assert.True(t, dec("300").Equal(bank.Balance))

	status, err := e.segregation.Status(ctx, e.merchantID)
	require.NoError(t, err)
	usd := status.Currencies[domain.CurrencyUSD]
	assert.True(t, dec("200").Equal(usd.WalletBalance))
	assert.True(t, dec("300").Equal(usd.BankBalance))
	assert.True(t, dec("500").Equal(usd.TotalBalance))
	assert.True(t, dec("40").Equal(usd.UsagePercent))
	assert.True(t, dec("9800").Equal(usd.AvailableCapacity))
	assert.False(t, usd.RequiresSweep)
	assert.True(t, usd.CanAcceptFunding)
	assert.Contains(t, eventTypes(e.outbox.Events()), domain.EventSweepCompleted)
}

func TestSegregationService_SweepRules(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	other := e.addMerchant(t)
	usd := e.addAccount(t, e.merchantID, domain.CurrencyUSD, "", "", false)
	cdf := e.addAccount(t, e.merchantID, domain.CurrencyCDF, "", "", false)
	foreign := e.addAccount(t, other, domain.CurrencyUSD, "", "", false)
	e.fund(t, e.merchantID, "500", domain.CurrencyUSD)

	tests := []struct {
		name    string
		amount  string
		account uuid.UUID
		code    string
	}{
		{"zero amount", "0", usd, apperror.CodeValidation},
		{"currency mismatch", "10", cdf, apperror.CodeCurrencyMismatch},
		{"foreign account", "10", foreign, apperror.CodeNotFound},
		{"insufficient", "600", usd, apperror.CodeInsufficientBalance},
		{"below floor", "450", usd, apperror.CodeBelowMinimumThreshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.segregation.SweepToBank(ctx, ports.TransferRequest{
				MerchantID: e.merchantID, Amount: dec(tt.amount), Currency: domain.CurrencyUSD, BankAccountID: tt.account,
			})
			requireCode(t, err, tt.code)
		})
	}
	assert.True(t, dec("500").Equal(e.balance(t, e.merchantID, domain.CurrencyUSD)))
	assert.Empty(t, e.store.LedgerEntries())
}

func TestSegregationService_FundingLifecycle(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	account := e.addAccount(t, e.merchantID, domain.CurrencyUSD, "", "", false)
	e.fund(t, e.merchantID, "2000", domain.CurrencyUSD)
	_, err := e.segregation.SweepToBank(ctx, ports.TransferRequest{
		MerchantID: e.merchantID, Amount: dec("1500"), Currency: domain.CurrencyUSD, BankAccountID: account,
	})
	require.NoError(t, err)

	req, err := e.segregation.FundFromBank(ctx, ports.TransferRequest{
		MerchantID: e.merchantID, Amount: dec("1000"), Currency: domain.CurrencyUSD, BankAccountID: account,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, req.Transaction.Status)
	assert.True(t, dec("500").Equal(e.balance(t, e.merchantID, domain.CurrencyUSD)), "nothing moves before approval")

	approved, err := e.segregation.ApproveFunding(ctx, req.Transaction.Ref, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusSuccess, approved.Transaction.Status)
	assert.Equal(t, "admin-1", approved.Transaction.Metadata["approved_by"])
	assert.True(t, dec("1500").Equal(approved.NewWalletBalance))

	_, err = e.segregation.ApproveFunding(ctx, req.Transaction.Ref, "admin-1")
	requireCode(t, err, apperror.CodeNotFoundOrAlreadyProcessed)

	views, err := e.banks.List(ctx, e.merchantID)
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(views[0].Balance))

	bank, err := e.ledger.AccountBalance(ctx, domain.MerchantBankAccount(domain.CurrencyUSD), domain.CurrencyUSD)
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(bank.Balance))
	requireLedgerBalanced(t, e.store)
}

func TestSegregationService_FundingCeiling(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	account := e.addAccount(t, e.merchantID, domain.CurrencyUSD, "", "", false)
	e.fund(t, e.merchantID, "9500", domain.CurrencyUSD)

	_, err := e.segregation.FundFromBank(ctx, ports.TransferRequest{
		MerchantID: e.merchantID, Amount: dec("600"), Currency: domain.CurrencyUSD, BankAccountID: account,
	})
	requireCode(t, err, apperror.CodeCeilingExceeded)

	req, err := e.segregation.FundFromBank(ctx, ports.TransferRequest{
		MerchantID: e.merchantID, Amount: dec("500"), Currency: domain.CurrencyUSD, BankAccountID: account,
	})
	require.NoError(t, err)

	// balance grows between request and approval
	e.fund(t, e.merchantID, "1", domain.CurrencyUSD)
	_, err = e.segregation.ApproveFunding(ctx, req.Transaction.Ref, "admin-1")
	requireCode(t, err, apperror.CodeCeilingExceeded)

	rejected, err := e.segregation.RejectFunding(ctx, req.Transaction.Ref, "admin-1", "over ceiling")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, rejected.Transaction.Status)
	require.NotNil(t, rejected.Transaction.ErrorCode)
	assert.Equal(t, "FUNDING_REJECTED", *rejected.Transaction.ErrorCode)

	_, err = e.segregation.RejectFunding(ctx, req.Transaction.Ref, "admin-1", "again")
	requireCode(t, err, apperror.CodeNotFoundOrAlreadyProcessed)
	_, err = e.segregation.RejectFunding(ctx, "TXN-missing", "admin-1", "")
	requireCode(t, err, apperror.CodeValidation)
}

func TestSegregationService_AutoSweep(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.addAccount(t, e.merchantID, domain.CurrencyUSD, "", "", true)
	e.fund(t, e.merchantID, "9000", domain.CurrencyUSD)
	e.fund(t, e.merchantID, "70000000", domain.CurrencyCDF)

	quiet := e.addMerchant(t)
	e.fund(t, quiet, "7999", domain.CurrencyUSD)

	due, err := e.segregation.MerchantsRequiringSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{e.merchantID}, due)

	res, err := e.segregation.AutoSweep(ctx, e.merchantID)
	require.NoError(t, err)
	require.Len(t, res.Sweeps, 1)
	assert.True(t, dec("8900").Equal(res.Sweeps[0].Transaction.AmountNet))
	assert.True(t, dec("100").Equal(res.Sweeps[0].NewWalletBalance))
	assert.Equal(t, []string{"no verified default CDF bank account"}, res.Skipped)

	again, err := e.segregation.AutoSweep(ctx, e.merchantID)
	require.NoError(t, err)
	assert.Empty(t, again.Sweeps)
}

func TestSegregationService_AutoSweepSkipsFrozen(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.addAccount(t, e.merchantID, domain.CurrencyUSD, "", "", true)
	e.fund(t, e.merchantID, "9000", domain.CurrencyUSD)
	_, err := e.wallets.Freeze(ctx, e.merchantID, "audit")
	require.NoError(t, err)

	res, err := e.segregation.AutoSweep(ctx, e.merchantID)
	require.NoError(t, err)
	assert.Empty(t, res.Sweeps)
	assert.Equal(t, []string{"wallet is frozen"}, res.Skipped)
	assert.True(t, dec("9000").Equal(e.balance(t, e.merchantID, domain.CurrencyUSD)))
}

// flakyDefaults fails default-account lookups for one currency.
type flakyDefaults struct {
	ports.BankAccountRepository
	currency domain.Currency
}

func (r flakyDefaults) GetDefault(ctx context.Context, merchantID uuid.UUID, c domain.Currency) (*domain.BankAccount, error) {
	if c == r.currency {
		return nil, errors.New("connection reset")
	}
	return r.BankAccountRepository.GetDefault(ctx, merchantID, c)
}

func TestSegregationService_AutoSweepKeepsCommittedCurrency(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.addAccount(t, e.merchantID, domain.CurrencyUSD, "", "", true)
	e.addAccount(t, e.merchantID, domain.CurrencyCDF, "", "", true)
	e.fund(t, e.merchantID, "9000", domain.CurrencyUSD)
	e.fund(t, e.merchantID, "70000000", domain.CurrencyCDF)
	e.segregation.bankRepo = flakyDefaults{BankAccountRepository: e.segregation.bankRepo, currency: domain.CurrencyCDF}

	res, err := e.segregation.AutoSweep(ctx, e.merchantID)
	require.NoError(t, err)
	require.Len(t, res.Sweeps, 1)
	assert.Equal(t, domain.CurrencyUSD, res.Sweeps[0].Transaction.Currency)
	require.Len(t, res.Failed, 1)
	assert.Contains(t, res.Failed[0], "CDF")

	assert.True(t, dec("100").Equal(e.balance(t, e.merchantID, domain.CurrencyUSD)))
	assert.True(t, dec("70000000").Equal(e.balance(t, e.merchantID, domain.CurrencyCDF)))
	requireLedgerBalanced(t, e.store)
}

// staleWallets serves a fixed snapshot to unlocked reads.
type staleWallets struct {
	ports.WalletRepository
	snapshot domain.Wallet
}

func (r staleWallets) GetByMerchantID(ctx context.Context, merchantID uuid.UUID) (*domain.Wallet, error) {
	w := r.snapshot
	return &w, nil
}

func TestSegregationService_AutoSweepUsesLockedBalance(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.addAccount(t, e.merchantID, domain.CurrencyUSD, "", "", true)
	e.fund(t, e.merchantID, "9000", domain.CurrencyUSD)

	view, err := e.segregation.walletRepo.GetByMerchantID(ctx, e.merchantID)
	require.NoError(t, err)
	e.segregation.walletRepo = staleWallets{WalletRepository: e.segregation.walletRepo, snapshot: *view}

	// A withdrawal lands between the unlocked read and the sweep.
	err = e.store.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := e.wallets.Debit(ctx, tx, e.merchantID, dec("500"), domain.CurrencyUSD)
		return err
	})
	require.NoError(t, err)

	res, err := e.segregation.AutoSweep(ctx, e.merchantID)
	require.NoError(t, err)
	require.Len(t, res.Sweeps, 1)
	assert.True(t, dec("8400").Equal(res.Sweeps[0].Transaction.AmountNet))
	assert.True(t, dec("100").Equal(e.balance(t, e.merchantID, domain.CurrencyUSD)))
}

func TestSegregationService_AutoSweepSkipsWhenLockedBalanceDropped(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.addAccount(t, e.merchantID, domain.CurrencyUSD, "", "", true)
	e.fund(t, e.merchantID, "9000", domain.CurrencyUSD)

	view, err := e.segregation.walletRepo.GetByMerchantID(ctx, e.merchantID)
	require.NoError(t, err)
	e.segregation.walletRepo = staleWallets{WalletRepository: e.segregation.walletRepo, snapshot: *view}

	err = e.store.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := e.wallets.Debit(ctx, tx, e.merchantID, dec("2000"), domain.CurrencyUSD)
		return err
	})
	require.NoError(t, err)

	res, err := e.segregation.AutoSweep(ctx, e.merchantID)
	require.NoError(t, err)
	assert.Empty(t, res.Sweeps)
	assert.Empty(t, res.Failed)
	assert.Equal(t, []string{"USD balance no longer above trigger"}, res.Skipped)
	assert.True(t, dec("7000").Equal(e.balance(t, e.merchantID, domain.CurrencyUSD)))
}
