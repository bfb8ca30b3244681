package service

import (
	"context"
	"strings"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BankAccountServiceImpl implements ports.BankAccountService.
type BankAccountServiceImpl struct {
	bankRepo   ports.BankAccountRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

func NewBankAccountService(bankRepo ports.BankAccountRepository, transactor ports.DBTransactor, log zerolog.Logger) *BankAccountServiceImpl {
	return &BankAccountServiceImpl{bankRepo: bankRepo, transactor: transactor, log: log}
}

// Register stores a new, unverified account.
func (s *BankAccountServiceImpl) Register(ctx context.Context, req ports.BankAccountRequest) (*ports.BankAccountView, error) {
	if strings.TrimSpace(req.BankName) == "" || strings.TrimSpace(req.AccountNumber) == "" || strings.TrimSpace(req.AccountName) == "" {
		return nil, apperror.Validation("bank name, account number and account name are required")
	}
	if err := validCurrency(req.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.BankAccount{
		ID:             uuid.New(),
		MerchantID:     req.MerchantID,
		BankName:       strings.TrimSpace(req.BankName),
		AccountNumber:  strings.TrimSpace(req.AccountNumber),
		AccountName:    strings.TrimSpace(req.AccountName),
		IBAN:           normalizeOptional(req.IBAN),
		SwiftCode:      normalizeOptional(req.SwiftCode),
		Currency:       req.Currency,
		TrackedBalance: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.bankRepo.Create(ctx, tx, account)
	})
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}

	s.log.Info().
		Str("merchant_id", req.MerchantID.String()).
		Str("bank_account_id", account.ID.String()).
		Str("currency", string(account.Currency)).
		Msg("bank account registered")
	return bankAccountView(account), nil
}

// Verify marks an account as verified. Verifying twice is harmless.
func (s *BankAccountServiceImpl) Verify(ctx context.Context, accountID uuid.UUID, adminID string) (*ports.BankAccountView, error) {
	var account *domain.BankAccount
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		a, err := s.bankRepo.GetByIDForUpdate(ctx, tx, accountID)
		if err != nil {
			return apperror.ErrDatabaseError(err)
		}
		if a == nil {
			return apperror.ErrNotFound("bank account")
		}
		if !a.IsVerified {
			now := time.Now().UTC()
			a.IsVerified = true
			a.VerifiedAt = &now
			a.UpdatedAt = now
			if err := s.bankRepo.Update(ctx, tx, a); err != nil {
				return apperror.ErrDatabaseError(err)
			}
		}
		account = a
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	s.log.Info().Str("bank_account_id", accountID.String()).Str("admin_id", adminID).Msg("bank account verified")
	return bankAccountView(account), nil
}

// SetDefault makes a verified account the default for its currency and
// clears the previous default in the same transaction.
func (s *BankAccountServiceImpl) SetDefault(ctx context.Context, merchantID, accountID uuid.UUID) (*ports.BankAccountView, error) {
	var account *domain.BankAccount
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		a, err := lockOwnedAccount(ctx, tx, s.bankRepo, merchantID, accountID)
		if err != nil {
			return err
		}
		if !a.IsVerified {
			return apperror.Validation("only a verified bank account can be the default")
		}
		if a.IsDefault {
			account = a
			return nil
		}
		if err := s.bankRepo.ClearDefault(ctx, tx, merchantID, a.Currency); err != nil {
			return apperror.ErrDatabaseError(err)
		}
		a.IsDefault = true
		a.UpdatedAt = time.Now().UTC()
		if err := s.bankRepo.Update(ctx, tx, a); err != nil {
			return apperror.ErrDatabaseError(err)
		}
		account = a
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return bankAccountView(account), nil
}

// List returns the merchant's accounts with masked numbers.
func (s *BankAccountServiceImpl) List(ctx context.Context, merchantID uuid.UUID) ([]ports.BankAccountView, error) {
	accounts, err := s.bankRepo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	views := make([]ports.BankAccountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, *bankAccountView(&accounts[i]))
	}
	return views, nil
}

// lockOwnedAccount row-locks an account and hides accounts owned by other merchants.
func lockOwnedAccount(ctx context.Context, tx pgx.Tx, repo ports.BankAccountRepository, merchantID, accountID uuid.UUID) (*domain.BankAccount, error) {
	a, err := repo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if a == nil || a.MerchantID != merchantID {
		return nil, apperror.ErrNotFound("bank account")
	}
	return a, nil
}

func bankAccountView(a *domain.BankAccount) *ports.BankAccountView {
	return &ports.BankAccountView{
		ID:            a.ID,
		BankName:      a.BankName,
		AccountName:   a.AccountName,
		AccountNumber: a.MaskedAccountNumber(),
		HasIBAN:       a.IBAN != nil && *a.IBAN != "",
		SwiftCode:     a.SwiftCode,
		Currency:      a.Currency,
		IsVerified:    a.IsVerified,
		IsDefault:     a.IsDefault,
		Balance:       a.TrackedBalance,
	}
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(*s), " ", ""))
	if v == "" {
		return nil
	}
	return &v
}
