package postgres

import (
	"context"
	"testing"
	"time"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bankAccountColumnNames() []string {
	return []string{"id", "merchant_id", "bank_name", "account_number_enc", "account_name_enc", "iban_enc",
		"swift_code", "currency", "is_verified", "is_default", "tracked_balance",
		"verified_at", "last_sweep_at", "last_funding_at", "created_at", "updated_at"}
}

func newTestBankAccount() *domain.BankAccount {
	now := time.Now().UTC()
	return &domain.BankAccount{
		ID:             uuid.New(),
		MerchantID:     uuid.New(),
		BankName:       "Equity BCDC",
		AccountNumber:  "5550001234",
		AccountName:    "Kin Market SARL",
		SwiftCode:      strPtr("BCDCCDKI"),
		Currency:       domain.CurrencyUSD,
		TrackedBalance: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestBankAccountRepo_Create_EncryptsAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBankAccountRepo(mock, prefixCipher{})
	a := newTestBankAccount()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO merchant_bank_accounts").
		WithArgs(a.ID, a.MerchantID, "Equity BCDC", "enc:5550001234", "enc:Kin Market SARL", (*string)(nil),
			a.SwiftCode, domain.CurrencyUSD, false, false, a.TrackedBalance,
			a.VerifiedAt, a.LastSweepAt, a.LastFundingAt, a.CreatedAt, a.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), tx, a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBankAccountRepo_GetDefault(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBankAccountRepo(mock, prefixCipher{})
	a := newTestBankAccount()
	verifiedAt := time.Now().UTC()

	mock.ExpectQuery("WHERE merchant_id = \\$1 AND currency = \\$2 AND is_default AND is_verified").
		WithArgs(a.MerchantID, domain.CurrencyUSD).
		WillReturnRows(pgxmock.NewRows(bankAccountColumnNames()).AddRow(
			a.ID, a.MerchantID, a.BankName, "enc:5550001234", "enc:Kin Market SARL", strPtr("enc:CD5550001234"),
			a.SwiftCode, a.Currency, true, true, decimal.NewFromInt(12000),
			&verifiedAt, (*time.Time)(nil), (*time.Time)(nil), a.CreatedAt, a.UpdatedAt))

	got, err := repo.GetDefault(context.Background(), a.MerchantID, domain.CurrencyUSD)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "5550001234", got.AccountNumber)
	assert.Equal(t, "Kin Market SARL", got.AccountName)
	assert.Equal(t, "CD5550001234", *got.IBAN)
	assert.Equal(t, "******1234", got.MaskedAccountNumber())
	assert.True(t, got.IsDefault && got.IsVerified)
}

func TestBankAccountRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBankAccountRepo(mock, prefixCipher{})
	id := uuid.New()
	mock.ExpectQuery("FROM merchant_bank_accounts WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(bankAccountColumnNames()))

	got, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestBankAccountRepo_ClearDefaultAndUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBankAccountRepo(mock, prefixCipher{})
	a := newTestBankAccount()
	a.IsDefault = true

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE merchant_bank_accounts SET is_default = FALSE").
		WithArgs(a.MerchantID, domain.CurrencyUSD).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE merchant_bank_accounts SET").
		WithArgs(false, true, a.TrackedBalance, a.VerifiedAt, a.LastSweepAt, a.LastFundingAt, a.UpdatedAt, a.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, repo.ClearDefault(context.Background(), tx, a.MerchantID, domain.CurrencyUSD))
	require.NoError(t, repo.Update(context.Background(), tx, a))
	assert.NoError(t, mock.ExpectationsWereMet())
}
