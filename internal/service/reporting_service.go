package service

import (
	"context"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	txRepo ports.TransactionRepository
	now    func() time.Time
}

// NewReportingService creates a new reporting service.
func NewReportingService(txRepo ports.TransactionRepository) ports.ReportingService {
	return &reportingService{txRepo: txRepo, now: time.Now}
}

// ListTransactions returns a page of the merchant's history, newest first.
func (s *reportingService) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	switch {
	case params.PageSize <= 0:
		params.PageSize = defaultPageSize
	case params.PageSize > maxPageSize:
		params.PageSize = maxPageSize
	}
	if params.Currency != nil {
		if err := validCurrency(*params.Currency); err != nil {
			return nil, 0, err
		}
	}
	if params.Type != nil && !params.Type.Valid() {
		return nil, 0, apperror.Validation("invalid transaction type")
	}
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, 0, apperror.Validation("to must not be before from")
	}

	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return txns, total, nil
}

// Statistics aggregates the merchant's transactions by currency, type and
// status over the period, and summarizes each currency.
func (s *reportingService) Statistics(ctx context.Context, merchantID uuid.UUID, period string) (*ports.StatisticsReport, error) {
	var since *time.Time
	now := s.now().UTC()

	switch period {
	case "week":
		t := now.AddDate(0, 0, -7)
		since = &t
	case "month", "":
		period = "month"
		t := now.AddDate(0, -1, 0)
		since = &t
	case "year":
		t := now.AddDate(-1, 0, 0)
		since = &t
	case "all":
		// No time filter
	default:
		return nil, apperror.Validation("invalid period: must be week, month, year, or all")
	}

	buckets, err := s.txRepo.GetStats(ctx, merchantID, since)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if buckets == nil {
		buckets = []ports.TransactionStat{}
	}

	return &ports.StatisticsReport{
		Period:  period,
		Since:   since,
		Buckets: buckets,
		Summary: summarize(buckets),
	}, nil
}

func summarize(buckets []ports.TransactionStat) map[domain.Currency]ports.CurrencyStats {
	summary := make(map[domain.Currency]ports.CurrencyStats, len(domain.SupportedCurrencies))
	for _, c := range domain.SupportedCurrencies {
		summary[c] = ports.CurrencyStats{
			Collected:      decimal.Zero,
			Commission:     decimal.Zero,
			Withdrawn:      decimal.Zero,
			PendingPayouts: decimal.Zero,
		}
	}

	for _, b := range buckets {
		cs, ok := summary[b.Currency]
		if !ok {
			continue
		}
		switch b.Status {
		case domain.TransactionStatusSuccess:
			cs.SuccessCount += b.Count
			switch b.Type {
			case domain.TransactionTypeCollection:
				cs.Collected = cs.Collected.Add(b.Net)
				cs.Commission = cs.Commission.Add(b.Fee)
			case domain.TransactionTypeWithdrawal:
				cs.Withdrawn = cs.Withdrawn.Add(b.Net)
			}
		case domain.TransactionStatusFailed, domain.TransactionStatusExpired, domain.TransactionStatusCancelled:
			cs.FailedCount += b.Count
		case domain.TransactionStatusPending, domain.TransactionStatusProcessing:
			cs.PendingCount += b.Count
			if b.Type == domain.TransactionTypeWithdrawal {
				cs.PendingPayouts = cs.PendingPayouts.Add(b.Net)
			}
		}
		summary[b.Currency] = cs
	}
	return summary
}
