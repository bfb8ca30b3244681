package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SegregationServiceImpl moves value between the merchant wallet and the
// merchant's bank accounts under the per-currency thresholds.
type SegregationServiceImpl struct {
	walletRepo ports.WalletRepository
	bankRepo   ports.BankAccountRepository
	txRepo     ports.TransactionRepository
	wallets    ports.WalletService
	ledger     ports.LedgerService
	transactor ports.DBTransactor
	limits     Limits
	rec        recorder
	log        zerolog.Logger
}

func NewSegregationService(
	walletRepo ports.WalletRepository,
	bankRepo ports.BankAccountRepository,
	txRepo ports.TransactionRepository,
	outboxRepo ports.OutboxRepository,
	wallets ports.WalletService,
	ledger ports.LedgerService,
	transactor ports.DBTransactor,
	limits Limits,
	log zerolog.Logger,
) *SegregationServiceImpl {
	return &SegregationServiceImpl{
		walletRepo: walletRepo,
		bankRepo:   bankRepo,
		txRepo:     txRepo,
		wallets:    wallets,
		ledger:     ledger,
		transactor: transactor,
		limits:     limits,
		rec:        recorder{txRepo: txRepo, outboxRepo: outboxRepo},
		log:        log,
	}
}

// SweepToBank moves funds from the wallet to a verified bank account,
// keeping at least the operational floor in the wallet.
func (s *SegregationServiceImpl) SweepToBank(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	limits, err := s.checkTransfer(req)
	if err != nil {
		return nil, err
	}
	return s.sweep(ctx, req, limits, func(decimal.Decimal) decimal.Decimal { return req.Amount })
}

// errNothingToSweep aborts an auto-sweep whose locked balance no longer
// exceeds the trigger.
var errNothingToSweep = errors.New("balance no longer above sweep trigger")

// sweep runs the sweep transaction. amountFor picks the amount from the
// balance read under the wallet row lock.
func (s *SegregationServiceImpl) sweep(
	ctx context.Context,
	req ports.TransferRequest,
	limits Thresholds,
	amountFor func(balance decimal.Decimal) decimal.Decimal,
) (*ports.TransferResult, error) {
	start := time.Now()
	var result *ports.TransferResult
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		account, err := s.lockTarget(ctx, tx, req)
		if err != nil {
			return err
		}
		wallet, err := s.walletRepo.GetByMerchantIDForUpdate(ctx, tx, req.MerchantID)
		if err != nil {
			return apperror.ErrDatabaseError(err)
		}
		if wallet == nil {
			return apperror.ErrNotFound("wallet")
		}
		if wallet.IsFrozen {
			return frozenError(wallet)
		}
		balance := wallet.Balance(req.Currency)
		req.Amount = amountFor(balance)
		if !req.Amount.IsPositive() {
			return errNothingToSweep
		}
		if balance.LessThan(req.Amount) {
			return apperror.ErrInsufficientBalance(string(req.Currency))
		}
		if balance.Sub(req.Amount).LessThan(limits.Floor) {
			return apperror.ErrBelowMinimumThreshold(fmt.Sprintf(
				"at least %s %s must remain in the wallet", limits.Floor.StringFixed(2), req.Currency))
		}

		wallet, err = s.wallets.Debit(ctx, tx, req.MerchantID, req.Amount, req.Currency)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		txn := domain.NewTransaction(req.MerchantID, wallet.ID, domain.TransactionTypeSweepToBank, req.Currency, req.Amount, decimal.Zero)
		txn.Beneficiary = account.Beneficiary()
		txn.BankAccountID = &account.ID
		txn.SetMeta("segregation", "sweep")
		if req.Note != "" {
			txn.SetMeta("note", req.Note)
		}
		if err := txn.Transition(domain.TransactionStatusSuccess, now); err != nil {
			return err
		}
		if err := s.rec.create(ctx, tx, txn, domain.EventSweepCompleted); err != nil {
			return err
		}

		account.TrackedBalance = account.TrackedBalance.Add(req.Amount)
		account.LastSweepAt = &now
		account.UpdatedAt = now
		if err := s.bankRepo.Update(ctx, tx, account); err != nil {
			return apperror.ErrDatabaseError(err)
		}

		err = s.ledger.RecordDoubleEntry(ctx, tx, domain.DoubleEntry{
			TransactionID: txn.ID,
			Debit:         domain.MerchantWalletAccount(req.Currency),
			Credit:        domain.MerchantBankAccount(req.Currency),
			Amount:        req.Amount,
			Currency:      req.Currency,
			Description:   "Sweep to bank - " + txn.Ref,
			Metadata:      map[string]any{"bank_account_id": account.ID.String(), "bank_name": account.BankName},
		})
		if err != nil {
			return err
		}

		result = transferResult(txn, account, wallet.Balance(req.Currency))
		return nil
	})
	operationDuration.WithLabelValues("sweep_to_bank").Observe(time.Since(start).Seconds())
	if errors.Is(err, errNothingToSweep) {
		return nil, err
	}
	if err != nil {
		return nil, asAppError(err)
	}

	segregationTransfers.WithLabelValues("sweep", string(req.Currency)).Inc()
	s.log.Info().
		Str("transaction_ref", result.Transaction.Ref).
		Str("merchant_id", req.MerchantID.String()).
		Str("amount", req.Amount.String()).
		Str("currency", string(req.Currency)).
		Msg("funds swept to bank")
	return result, nil
}

// FundFromBank records a pending request to move bank funds into the
// wallet. Nothing moves until an administrator approves it.
func (s *SegregationServiceImpl) FundFromBank(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	limits, err := s.checkTransfer(req)
	if err != nil {
		return nil, err
	}

	var result *ports.TransferResult
	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		account, err := s.lockTarget(ctx, tx, req)
		if err != nil {
			return err
		}
		wallet, err := s.walletRepo.GetByMerchantIDForUpdate(ctx, tx, req.MerchantID)
		if err != nil {
			return apperror.ErrDatabaseError(err)
		}
		if wallet == nil {
			return apperror.ErrNotFound("wallet")
		}
		if err := checkCeiling(wallet, req.Amount, req.Currency, limits); err != nil {
			return err
		}

		txn := domain.NewTransaction(req.MerchantID, wallet.ID, domain.TransactionTypeFundFromBank, req.Currency, req.Amount, decimal.Zero)
		txn.Beneficiary = account.Beneficiary()
		txn.BankAccountID = &account.ID
		txn.SetMeta("segregation", "funding")
		if req.Note != "" {
			txn.SetMeta("note", req.Note)
		}
		if err := s.rec.create(ctx, tx, txn, domain.EventFundingRequested); err != nil {
			return err
		}

		result = transferResult(txn, account, wallet.Balance(req.Currency))
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	s.log.Info().
		Str("transaction_ref", result.Transaction.Ref).
		Str("merchant_id", req.MerchantID.String()).
		Str("amount", req.Amount.String()).
		Str("currency", string(req.Currency)).
		Msg("funding request created")
	return result, nil
}

// ApproveFunding credits a pending funding request. The ceiling is checked
// again against the balance at approval time.
func (s *SegregationServiceImpl) ApproveFunding(ctx context.Context, ref string, adminID string) (*ports.TransferResult, error) {
	var result *ports.TransferResult
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		txn, err := s.lockPendingFunding(ctx, tx, ref)
		if err != nil {
			return err
		}
		limits, err := s.limits.For(txn.Currency)
		if err != nil {
			return err
		}
		wallet, err := s.walletRepo.GetByMerchantIDForUpdate(ctx, tx, txn.MerchantID)
		if err != nil {
			return apperror.ErrDatabaseError(err)
		}
		if wallet == nil {
			return apperror.ErrNotFound("wallet")
		}
		if err := checkCeiling(wallet, txn.AmountNet, txn.Currency, limits); err != nil {
			return err
		}

		wallet, err = s.wallets.Credit(ctx, tx, txn.MerchantID, txn.AmountNet, txn.Currency)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := txn.Transition(domain.TransactionStatusSuccess, now); err != nil {
			return err
		}
		txn.SetMeta("approved_by", adminID)
		txn.SetMeta("approved_at", now.Format(time.RFC3339))
		if err := s.rec.update(ctx, tx, txn, domain.EventFundingApproved); err != nil {
			return err
		}

		var account *domain.BankAccount
		if txn.BankAccountID != nil {
			account, err = s.bankRepo.GetByIDForUpdate(ctx, tx, *txn.BankAccountID)
			if err != nil {
				return apperror.ErrDatabaseError(err)
			}
		}
		if account != nil {
			account.TrackedBalance = decimal.Max(decimal.Zero, account.TrackedBalance.Sub(txn.AmountNet))
			account.LastFundingAt = &now
			account.UpdatedAt = now
			if err := s.bankRepo.Update(ctx, tx, account); err != nil {
				return apperror.ErrDatabaseError(err)
			}
		}

		err = s.ledger.RecordDoubleEntry(ctx, tx, domain.DoubleEntry{
			TransactionID: txn.ID,
			Debit:         domain.MerchantBankAccount(txn.Currency),
			Credit:        domain.MerchantWalletAccount(txn.Currency),
			Amount:        txn.AmountNet,
			Currency:      txn.Currency,
			Description:   "Funding from bank - " + txn.Ref,
			Metadata:      map[string]any{"approved_by": adminID},
		})
		if err != nil {
			return err
		}

		result = transferResult(txn, account, wallet.Balance(txn.Currency))
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	segregationTransfers.WithLabelValues("funding", string(result.Transaction.Currency)).Inc()
	s.log.Info().Str("transaction_ref", ref).Str("admin_id", adminID).Msg("funding approved")
	return result, nil
}

// RejectFunding closes a pending funding request without moving money.
func (s *SegregationServiceImpl) RejectFunding(ctx context.Context, ref string, adminID string, reason string) (*ports.TransferResult, error) {
	if reason == "" {
		return nil, apperror.Validation("rejection reason is required")
	}
	var result *ports.TransferResult
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		txn, err := s.lockPendingFunding(ctx, tx, ref)
		if err != nil {
			return err
		}
		if err := txn.Fail("FUNDING_REJECTED", reason, time.Now().UTC()); err != nil {
			return err
		}
		txn.SetMeta("rejected_by", adminID)
		if err := s.rec.update(ctx, tx, txn, domain.EventFundingRejected); err != nil {
			return err
		}
		result = transferResult(txn, nil, decimal.Zero)
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	s.log.Info().Str("transaction_ref", ref).Str("admin_id", adminID).Str("reason", reason).Msg("funding rejected")
	return result, nil
}

// AutoSweep sweeps balance minus floor, per currency, for every currency
// whose balance is above its trigger and which has a verified default
// account. Each sweep is its own transaction and computes the excess under
// the wallet row lock. A failed currency lands in Failed and does not undo
// sweeps already committed for another.
func (s *SegregationServiceImpl) AutoSweep(ctx context.Context, merchantID uuid.UUID) (*ports.AutoSweepResult, error) {
	wallet, err := s.walletRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	result := &ports.AutoSweepResult{MerchantID: merchantID, Sweeps: []ports.TransferResult{}}
	if wallet.IsFrozen {
		result.Skipped = append(result.Skipped, "wallet is frozen")
		return result, nil
	}

	for _, ccy := range domain.SupportedCurrencies {
		limits, err := s.limits.For(ccy)
		if err != nil {
			result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", ccy, err))
			continue
		}
		if !wallet.Balance(ccy).GreaterThan(limits.SweepTrigger) {
			continue
		}

		account, err := s.bankRepo.GetDefault(ctx, merchantID, ccy)
		if err != nil {
			result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", ccy, apperror.ErrDatabaseError(err)))
			continue
		}
		if account == nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("no verified default %s bank account", ccy))
			continue
		}

		req := ports.TransferRequest{
			MerchantID:    merchantID,
			Currency:      ccy,
			BankAccountID: account.ID,
			Note:          "auto-sweep",
		}
		sweep, err := s.sweep(ctx, req, limits, func(balance decimal.Decimal) decimal.Decimal {
			if !balance.GreaterThan(limits.SweepTrigger) {
				return decimal.Zero
			}
			return balance.Sub(limits.Floor).Truncate(domain.MoneyScale)
		})
		switch {
		case errors.Is(err, errNothingToSweep):
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s balance no longer above trigger", ccy))
		case err != nil:
			result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", ccy, err))
		default:
			result.Sweeps = append(result.Sweeps, *sweep)
		}
	}

	ev := s.log.Info()
	if len(result.Failed) > 0 {
		ev = s.log.Warn().Strs("failed", result.Failed)
	}
	ev.Str("merchant_id", merchantID.String()).
		Int("sweeps", len(result.Sweeps)).
		Strs("skipped", result.Skipped).
		Msg("auto-sweep finished")
	return result, nil
}

// MerchantsRequiringSweep lists merchants above the trigger in any currency.
func (s *SegregationServiceImpl) MerchantsRequiringSweep(ctx context.Context) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, ccy := range domain.SupportedCurrencies {
		limits, err := s.limits.For(ccy)
		if err != nil {
			return nil, err
		}
		ids, err := s.walletRepo.ListAboveThreshold(ctx, ccy, limits.SweepTrigger)
		if err != nil {
			return nil, apperror.ErrDatabaseError(err)
		}
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	slices.SortFunc(out, compareUUID)
	return out, nil
}

// Status reports wallet and bank positions against the thresholds.
func (s *SegregationServiceImpl) Status(ctx context.Context, merchantID uuid.UUID) (*ports.SegregationStatus, error) {
	wallet, err := s.walletRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	accounts, err := s.bankRepo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}

	status := &ports.SegregationStatus{
		MerchantID:   merchantID,
		Currencies:   make(map[domain.Currency]ports.CurrencySegregation, len(domain.SupportedCurrencies)),
		BankAccounts: []ports.BankAccountView{},
	}
	bankBalance := map[domain.Currency]decimal.Decimal{}
	for i := range accounts {
		a := &accounts[i]
		if !a.IsVerified {
			continue
		}
		bankBalance[a.Currency] = bankBalance[a.Currency].Add(a.TrackedBalance)
		status.BankAccounts = append(status.BankAccounts, *bankAccountView(a))
	}

	hundred := decimal.NewFromInt(100)
	for _, ccy := range domain.SupportedCurrencies {
		limits, err := s.limits.For(ccy)
		if err != nil {
			return nil, err
		}
		walletBal := wallet.Balance(ccy)
		total := walletBal.Add(bankBalance[ccy])
		usage := decimal.Zero
		if total.IsPositive() {
			usage = walletBal.Div(total).Mul(hundred).Round(2)
		}
		status.Currencies[ccy] = ports.CurrencySegregation{
			WalletBalance:     walletBal,
			BankBalance:       bankBalance[ccy],
			TotalBalance:      total,
			MaxWalletBalance:  limits.Ceiling,
			AvailableCapacity: decimal.Max(decimal.Zero, limits.Ceiling.Sub(walletBal)),
			AutoSweepAt:       limits.SweepTrigger,
			MinOperational:    limits.Floor,
			UsagePercent:      usage,
			RequiresSweep:     walletBal.GreaterThan(limits.SweepTrigger),
			CanAcceptFunding:  walletBal.LessThan(limits.Ceiling),
		}
	}
	return status, nil
}

func (s *SegregationServiceImpl) checkTransfer(req ports.TransferRequest) (Thresholds, error) {
	if err := validAmount(req.Amount); err != nil {
		return Thresholds{}, err
	}
	return s.limits.For(req.Currency)
}

// lockTarget loads the merchant's bank account and checks it can take part
// in a transfer in the requested currency.
func (s *SegregationServiceImpl) lockTarget(ctx context.Context, tx pgx.Tx, req ports.TransferRequest) (*domain.BankAccount, error) {
	account, err := lockOwnedAccount(ctx, tx, s.bankRepo, req.MerchantID, req.BankAccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsVerified {
		return nil, apperror.Validation("bank account is not verified")
	}
	if account.Currency != req.Currency {
		return nil, apperror.ErrCurrencyMismatch(fmt.Sprintf("bank account only accepts %s", account.Currency))
	}
	return account, nil
}

func (s *SegregationServiceImpl) lockPendingFunding(ctx context.Context, tx pgx.Tx, ref string) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByRefForUpdate(ctx, tx, ref)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if txn == nil || txn.Type != domain.TransactionTypeFundFromBank || txn.Status != domain.TransactionStatusPending {
		return nil, apperror.ErrNotFoundOrAlreadyProcessed(ref)
	}
	return txn, nil
}

func checkCeiling(w *domain.Wallet, amount decimal.Decimal, c domain.Currency, limits Thresholds) error {
	if w.Balance(c).Add(amount).GreaterThan(limits.Ceiling) {
		return apperror.ErrCeilingExceeded(fmt.Sprintf(
			"wallet balance cannot exceed %s %s", limits.Ceiling.StringFixed(2), c))
	}
	return nil
}

func transferResult(txn *domain.Transaction, account *domain.BankAccount, walletBalance decimal.Decimal) *ports.TransferResult {
	r := &ports.TransferResult{Transaction: txn, NewWalletBalance: walletBalance}
	switch {
	case account != nil:
		r.BankName, r.MaskedAccount = account.BankName, account.MaskedAccountNumber()
	case txn.Beneficiary != nil:
		r.BankName, r.MaskedAccount = txn.Beneficiary.BankName, txn.Beneficiary.MaskedAccountNumber()
	}
	return r
}

func compareUUID(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}
