package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"merchant-wallet-engine/internal/adapter/bankfile"
	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultPendingLimit = 100
	maxPendingLimit     = 1000
	batchSizeLimit      = 500
)

// WithdrawalServiceImpl runs bank payouts: reserve on initiate, batch into
// bank files, then complete or reverse.
type WithdrawalServiceImpl struct {
	merchantRepo ports.MerchantRepository
	walletRepo   ports.WalletRepository
	bankRepo     ports.BankAccountRepository
	txRepo       ports.TransactionRepository
	wallets      ports.WalletService
	ledger       ports.LedgerService
	transactor   ports.DBTransactor
	sink         ports.SettlementFileSink
	debtor       bankfile.Debtor
	limits       Limits
	rec          recorder
	now          func() time.Time
	log          zerolog.Logger
}

func NewWithdrawalService(
	merchantRepo ports.MerchantRepository,
	walletRepo ports.WalletRepository,
	bankRepo ports.BankAccountRepository,
	txRepo ports.TransactionRepository,
	outboxRepo ports.OutboxRepository,
	wallets ports.WalletService,
	ledger ports.LedgerService,
	transactor ports.DBTransactor,
	sink ports.SettlementFileSink,
	debtor bankfile.Debtor,
	limits Limits,
	log zerolog.Logger,
) *WithdrawalServiceImpl {
	return &WithdrawalServiceImpl{
		merchantRepo: merchantRepo,
		walletRepo:   walletRepo,
		bankRepo:     bankRepo,
		txRepo:       txRepo,
		wallets:      wallets,
		ledger:       ledger,
		transactor:   transactor,
		sink:         sink,
		debtor:       debtor,
		limits:       limits,
		rec:          recorder{txRepo: txRepo, outboxRepo: outboxRepo},
		now:          time.Now,
		log:          log,
	}
}

// Initiate reserves the funds immediately: the wallet is debited and the
// amount parked on the pending-withdrawal liability until the bank settles.
func (s *WithdrawalServiceImpl) Initiate(ctx context.Context, req ports.WithdrawalRequest) (*ports.TransferResult, error) {
	if err := validAmount(req.Amount); err != nil {
		return nil, err
	}
	limits, err := s.limits.For(req.Currency)
	if err != nil {
		return nil, err
	}
	if req.Amount.LessThan(limits.MinWithdrawal) {
		return nil, apperror.ErrBelowMinimumThreshold(fmt.Sprintf(
			"minimum withdrawal is %s %s", limits.MinWithdrawal.StringFixed(2), req.Currency))
	}
	merchant, err := s.merchantRepo.GetByID(ctx, req.MerchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	if !merchant.CanMoveFunds() {
		return nil, apperror.ErrMerchantSuspended()
	}

	start := time.Now()
	var result *ports.TransferResult
	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
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

		account, err := lockOwnedAccount(ctx, tx, s.bankRepo, req.MerchantID, req.BankAccountID)
		if err != nil {
			return err
		}
		if !account.IsVerified {
			return apperror.Validation("bank account is not verified")
		}
		if account.Currency != req.Currency {
			return apperror.ErrCurrencyMismatch(fmt.Sprintf("bank account only accepts %s", account.Currency))
		}

		balance := wallet.Balance(req.Currency)
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

		txn := domain.NewTransaction(req.MerchantID, wallet.ID, domain.TransactionTypeWithdrawal, req.Currency, req.Amount, decimal.Zero)
		txn.Beneficiary = account.Beneficiary()
		txn.BankAccountID = &account.ID
		if req.Description != "" {
			txn.SetMeta("description", req.Description)
		}
		if err := s.rec.create(ctx, tx, txn, domain.EventWithdrawalInitiated); err != nil {
			return err
		}

		err = s.ledger.RecordDoubleEntry(ctx, tx, domain.DoubleEntry{
			TransactionID: txn.ID,
			Debit:         domain.MerchantWalletAccount(req.Currency),
			Credit:        domain.AccountLiabilityPendingWithdrawal,
			Amount:        req.Amount,
			Currency:      req.Currency,
			Description:   "Withdrawal request - " + txn.Ref,
			Metadata:      map[string]any{"bank_account_id": account.ID.String(), "bank_name": account.BankName},
		})
		if err != nil {
			return err
		}

		result = transferResult(txn, account, wallet.Balance(req.Currency))
		return nil
	})
	operationDuration.WithLabelValues("withdrawal_initiate").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, asAppError(err)
	}

	withdrawalsTotal.WithLabelValues(string(req.Currency), "initiated").Inc()
	s.log.Info().
		Str("transaction_ref", result.Transaction.Ref).
		Str("merchant_id", req.MerchantID.String()).
		Str("amount", req.Amount.String()).
		Str("currency", string(req.Currency)).
		Msg("withdrawal initiated")
	return result, nil
}

// Pending lists pending withdrawals, oldest first.
func (s *WithdrawalServiceImpl) Pending(ctx context.Context, currency *domain.Currency, limit int) ([]domain.Transaction, error) {
	if currency != nil {
		if err := validCurrency(*currency); err != nil {
			return nil, err
		}
	}
	switch {
	case limit <= 0:
		limit = defaultPendingLimit
	case limit > maxPendingLimit:
		limit = maxPendingLimit
	}
	txns, err := s.txRepo.ListPendingWithdrawals(ctx, currency, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return txns, nil
}

// GenerateBatch moves pending withdrawals to processing under one batch id
// and writes the bank files. Files are stored after the commit; a storage
// failure leaves the batch processing and is reported with its id.
func (s *WithdrawalServiceImpl) GenerateBatch(ctx context.Context, currency *domain.Currency, format ports.BatchFormat) (*ports.BatchResult, error) {
	switch format {
	case "":
		format = ports.BatchFormatAuto
	case ports.BatchFormatAuto, ports.BatchFormatCSV, ports.BatchFormatSEPA, ports.BatchFormatSWIFT:
	default:
		return nil, apperror.Validation("format must be one of auto, csv, sepa, swift")
	}
	if currency != nil {
		if err := validCurrency(*currency); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	batchID, err := newBatchID(currency, now)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	result := &ports.BatchResult{BatchID: batchID, Files: []ports.BatchFile{}, Items: []ports.BatchItem{}}
	var files []renderedFile
	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		txns, err := s.txRepo.LockPendingWithdrawals(ctx, tx, currency, batchSizeLimit)
		if err != nil {
			return apperror.ErrDatabaseError(err)
		}
		if len(txns) == 0 {
			return nil
		}

		emails := map[uuid.UUID]string{}
		payments := make([]bankfile.Payment, 0, len(txns))
		for i := range txns {
			txn := &txns[i]
			if txn.Beneficiary == nil {
				return apperror.InternalError(fmt.Errorf("withdrawal %s has no beneficiary", txn.Ref))
			}
			txn.BatchID = &batchID
			if err := txn.Transition(domain.TransactionStatusProcessing, now); err != nil {
				return err
			}
			if err := s.rec.update(ctx, tx, txn, domain.EventWithdrawalBatched); err != nil {
				return err
			}

			email, err := s.merchantEmail(ctx, emails, txn.MerchantID)
			if err != nil {
				return err
			}
			payments = append(payments, bankfile.Payment{
				Ref:           txn.Ref,
				Beneficiary:   *txn.Beneficiary,
				Amount:        txn.AmountNet,
				Currency:      txn.Currency,
				CreatedAt:     txn.CreatedAt,
				MerchantEmail: email,
			})
		}

		files, err = s.render(batchID, now, format, payments)
		if err != nil {
			return err
		}
		result.Count = len(txns)
		for _, f := range files {
			for _, p := range f.batch.Payments {
				result.Items = append(result.Items, ports.BatchItem{
					Ref:         p.Ref,
					Amount:      p.Amount,
					Currency:    p.Currency,
					Beneficiary: p.Beneficiary.AccountName,
					Account:     p.Beneficiary.MaskedAccountNumber(),
					Format:      f.format,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	if result.Count == 0 {
		s.log.Info().Msg("no pending withdrawals to batch")
		return result, nil
	}

	for _, f := range files {
		location, err := s.sink.Save(ctx, f.name, f.content)
		if err != nil {
			s.log.Error().Err(err).Str("batch_id", batchID).Str("file", f.name).Msg("storing batch file failed")
			return nil, apperror.ErrExternalSettlement(fmt.Sprintf("batch %s committed but file %s could not be stored", batchID, f.name), err)
		}
		result.Files = append(result.Files, ports.BatchFile{
			Name:     f.name,
			Format:   f.format,
			Location: location,
			Currency: f.batch.Currency,
			Count:    len(f.batch.Payments),
			Total:    f.batch.Total(),
		})
		withdrawalsTotal.WithLabelValues(string(f.batch.Currency), "batched").Add(float64(len(f.batch.Payments)))
	}

	s.log.Info().
		Str("batch_id", batchID).
		Int("count", result.Count).
		Int("files", len(result.Files)).
		Msg("withdrawal batch generated")
	return result, nil
}

type renderedFile struct {
	name    string
	format  ports.BatchFormat
	batch   bankfile.Batch
	content []byte
}

// render produces one file per currency and format. In auto mode each
// payment goes to the richest format its beneficiary details allow.
func (s *WithdrawalServiceImpl) render(batchID string, createdAt time.Time, format ports.BatchFormat, payments []bankfile.Payment) ([]renderedFile, error) {
	var out []renderedFile
	for _, b := range bankfile.Split(batchID, createdAt, payments) {
		groups := map[ports.BatchFormat][]bankfile.Payment{}
		if format == ports.BatchFormatAuto {
			for _, p := range b.Payments {
				f := bankfile.FormatFor(p.Beneficiary)
				groups[f] = append(groups[f], p)
			}
		} else {
			groups[format] = b.Payments
		}

		for _, f := range []ports.BatchFormat{ports.BatchFormatSEPA, ports.BatchFormatSWIFT, ports.BatchFormatCSV} {
			ps, ok := groups[f]
			if !ok {
				continue
			}
			sub := bankfile.Batch{ID: b.ID, Currency: b.Currency, CreatedAt: b.CreatedAt, Payments: ps}
			name, content, err := bankfile.Render(f, sub, s.debtor)
			if err != nil {
				return nil, apperror.Validation(err.Error())
			}
			out = append(out, renderedFile{name: name, format: f, batch: sub, content: content})
		}
	}
	return out, nil
}

func (s *WithdrawalServiceImpl) merchantEmail(ctx context.Context, cache map[uuid.UUID]string, id uuid.UUID) (string, error) {
	if email, ok := cache[id]; ok {
		return email, nil
	}
	m, err := s.merchantRepo.GetByID(ctx, id)
	if err != nil {
		return "", apperror.ErrDatabaseError(err)
	}
	email := ""
	if m != nil {
		email = m.Email
	}
	cache[id] = email
	return email, nil
}

// Complete closes the liability once the bank confirms the payout.
func (s *WithdrawalServiceImpl) Complete(ctx context.Context, ref string, adminID string) (*ports.WithdrawalOutcome, error) {
	var outcome *ports.WithdrawalOutcome
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		txn, err := s.lockWithdrawal(ctx, tx, ref)
		if err != nil {
			return err
		}
		switch txn.Status {
		case domain.TransactionStatusSuccess:
			outcome = &ports.WithdrawalOutcome{Transaction: txn, AlreadyProcessed: true}
			return nil
		case domain.TransactionStatusPending:
			return apperror.Validation(fmt.Sprintf("withdrawal %s has not been batched yet", ref))
		case domain.TransactionStatusProcessing:
		default:
			return apperror.ErrNotFoundOrAlreadyProcessed(ref)
		}

		if err := txn.Transition(domain.TransactionStatusSuccess, time.Now().UTC()); err != nil {
			return err
		}
		txn.SetMeta("completed_by", adminID)
		if err := s.rec.update(ctx, tx, txn, domain.EventWithdrawalCompleted); err != nil {
			return err
		}
		err = s.ledger.RecordDoubleEntry(ctx, tx, domain.DoubleEntry{
			TransactionID: txn.ID,
			Debit:         domain.AccountLiabilityPendingWithdrawal,
			Credit:        domain.EscrowAccount(domain.PaymentMethodBankTransfer, txn.Currency),
			Amount:        txn.AmountNet,
			Currency:      txn.Currency,
			Description:   "Withdrawal completed - " + txn.Ref,
			Metadata:      batchMeta(txn),
		})
		if err != nil {
			return err
		}
		outcome = &ports.WithdrawalOutcome{Transaction: txn}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	if !outcome.AlreadyProcessed {
		withdrawalsTotal.WithLabelValues(string(outcome.Transaction.Currency), "completed").Inc()
	}
	s.log.Info().
		Str("transaction_ref", ref).
		Str("admin_id", adminID).
		Bool("already_processed", outcome.AlreadyProcessed).
		Msg("withdrawal completed")
	return outcome, nil
}

// Reject returns the reserved funds to the wallet. A pending withdrawal is
// cancelled before it reaches a batch; a processing one fails.
func (s *WithdrawalServiceImpl) Reject(ctx context.Context, ref string, adminID string, reason string) (*ports.WithdrawalOutcome, error) {
	if reason == "" {
		return nil, apperror.Validation("rejection reason is required")
	}

	var outcome *ports.WithdrawalOutcome
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		txn, err := s.lockWithdrawal(ctx, tx, ref)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		switch txn.Status {
		case domain.TransactionStatusFailed, domain.TransactionStatusCancelled:
			outcome = &ports.WithdrawalOutcome{Transaction: txn, AlreadyProcessed: true}
			return nil
		case domain.TransactionStatusPending:
			err = txn.Transition(domain.TransactionStatusCancelled, now)
			if err == nil {
				msg := reason
				txn.ErrorMessage = &msg
			}
		case domain.TransactionStatusProcessing:
			err = txn.Fail("BANK_REJECTED", reason, now)
		default:
			return apperror.ErrNotFoundOrAlreadyProcessed(ref)
		}
		if err != nil {
			return err
		}
		txn.SetMeta("rejected_by", adminID)

		if _, err := s.wallets.Credit(ctx, tx, txn.MerchantID, txn.AmountNet, txn.Currency); err != nil {
			return err
		}
		if err := s.rec.update(ctx, tx, txn, domain.EventWithdrawalRejected); err != nil {
			return err
		}
		meta := batchMeta(txn)
		meta["rejection_reason"] = reason
		err = s.ledger.RecordDoubleEntry(ctx, tx, domain.DoubleEntry{
			TransactionID: txn.ID,
			Debit:         domain.AccountLiabilityPendingWithdrawal,
			Credit:        domain.MerchantWalletAccount(txn.Currency),
			Amount:        txn.AmountNet,
			Currency:      txn.Currency,
			Description:   "Withdrawal rejected (refund) - " + txn.Ref,
			Metadata:      meta,
		})
		if err != nil {
			return err
		}
		outcome = &ports.WithdrawalOutcome{Transaction: txn}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	if !outcome.AlreadyProcessed {
		withdrawalsTotal.WithLabelValues(string(outcome.Transaction.Currency), "rejected").Inc()
	}
	s.log.Warn().
		Str("transaction_ref", ref).
		Str("admin_id", adminID).
		Str("reason", reason).
		Bool("already_processed", outcome.AlreadyProcessed).
		Msg("withdrawal rejected")
	return outcome, nil
}

func (s *WithdrawalServiceImpl) lockWithdrawal(ctx context.Context, tx pgx.Tx, ref string) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByRefForUpdate(ctx, tx, ref)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if txn == nil || txn.Type != domain.TransactionTypeWithdrawal {
		return nil, apperror.ErrNotFoundOrAlreadyProcessed(ref)
	}
	return txn, nil
}

func batchMeta(txn *domain.Transaction) map[string]any {
	meta := map[string]any{}
	if txn.BatchID != nil {
		meta["batch_id"] = *txn.BatchID
	}
	return meta
}

const batchIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newBatchID returns BATCH-<CCY|ALL>-YYYYMMDD-HHMMSS-XXXX.
func newBatchID(currency *domain.Currency, at time.Time) (string, error) {
	scope := "ALL"
	if currency != nil {
		scope = string(*currency)
	}
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("batch id entropy: %w", err)
	}
	for i, b := range buf {
		buf[i] = batchIDAlphabet[int(b)%len(batchIDAlphabet)]
	}
	return fmt.Sprintf("BATCH-%s-%s-%s", scope, at.Format("20060102-150405"), buf), nil
}
