package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAutoSweepAll_ContinuesPastFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	seg := mocks.NewMockSegregationService(ctrl)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	seg.EXPECT().MerchantsRequiringSweep(gomock.Any()).Return([]uuid.UUID{a, b, c}, nil)
	seg.EXPECT().AutoSweep(gomock.Any(), a).Return(&ports.AutoSweepResult{MerchantID: a, Sweeps: []ports.TransferResult{{}}}, nil)
	seg.EXPECT().AutoSweep(gomock.Any(), b).Return(nil, errors.New("no verified default USD bank account"))
	seg.EXPECT().AutoSweep(gomock.Any(), c).Return(&ports.AutoSweepResult{MerchantID: c}, nil)

	err := AutoSweepAll(seg, newTestLogger())(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3")
}

func TestAutoSweepAll_CountsCurrencyFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	seg := mocks.NewMockSegregationService(ctrl)
	a := uuid.New()
	seg.EXPECT().MerchantsRequiringSweep(gomock.Any()).Return([]uuid.UUID{a}, nil)
	seg.EXPECT().AutoSweep(gomock.Any(), a).Return(&ports.AutoSweepResult{
		MerchantID: a,
		Sweeps:     []ports.TransferResult{{}},
		Failed:     []string{"CDF: connection reset"},
	}, nil)

	err := AutoSweepAll(seg, newTestLogger())(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1")
}

func TestAutoSweepAll_NothingToDo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	seg := mocks.NewMockSegregationService(ctrl)
	seg.EXPECT().MerchantsRequiringSweep(gomock.Any()).Return(nil, nil)

	require.NoError(t, AutoSweepAll(seg, newTestLogger())(context.Background()))
}

func TestDailyBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	withdrawals := mocks.NewMockWithdrawalService(ctrl)
	withdrawals.EXPECT().
		GenerateBatch(gomock.Any(), (*domain.Currency)(nil), ports.BatchFormatAuto).
		Return(&ports.BatchResult{BatchID: "BATCH-ALL-20250314-160000-AB12", Count: 2}, nil)

	require.NoError(t, DailyBatch(withdrawals, newTestLogger())(context.Background()))
}

func TestDailyBatch_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	withdrawals := mocks.NewMockWithdrawalService(ctrl)
	withdrawals.EXPECT().GenerateBatch(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("sink unavailable"))

	err := DailyBatch(withdrawals, newTestLogger())(context.Background())
	require.Error(t, err)
}

func TestExpireCollections_PassesClockAndLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2025, 3, 14, 9, 35, 0, 0, time.UTC)
	settlement := mocks.NewMockSettlementService(ctrl)
	settlement.EXPECT().ExpireStale(gomock.Any(), now, 50).Return(3, nil)

	fn := ExpireCollections(settlement, 50, func() time.Time { return now })
	require.NoError(t, fn(context.Background()))
}

func TestRefreshRates_FallbackIsNotAFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rates := mocks.NewMockExchangeRateService(ctrl)
	rates.EXPECT().Refresh(gomock.Any()).Return(errors.New("feed timeout"))
	rates.EXPECT().Rates().Return(domain.RateTable{Source: domain.RateSourceCached})

	require.NoError(t, RefreshRates(rates, newTestLogger())(context.Background()))
}

func TestSweepLocks(t *testing.T) {
	called := false
	fn := SweepLocks(func() int { called = true; return 2 })
	require.NoError(t, fn(context.Background()))
	assert.True(t, called)
}
