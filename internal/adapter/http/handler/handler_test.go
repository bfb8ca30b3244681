package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"merchant-wallet-engine/internal/adapter/http/middleware"
	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/internal/core/ports/mocks"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newContext builds a test context as the auth middleware would leave it.
// A nil merchant leaves the request unauthenticated.
func newContext(method, path, body string, merchant *uuid.UUID, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	c.Set(middleware.CtxRequestID, "req-test")
	if merchant != nil {
		c.Set(middleware.CtxMerchantID, *merchant)
		c.Set(middleware.CtxActorID, "user-1")
		c.Set(middleware.CtxRole, ports.RoleMerchant)
	} else {
		c.Set(middleware.CtxActorID, "admin-1")
		c.Set(middleware.CtxRole, ports.RoleAdmin)
	}
	c.Params = params
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	code, _ := decode(t, w)["error_code"].(string)
	return code
}

// --- Wallet ---

func TestGetBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	walletSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(walletSvc)

	mid := uuid.New()
	walletSvc.EXPECT().GetBalance(gomock.Any(), mid).Return(&ports.BalanceView{
		USD: ports.CurrencyBalance{Available: decimal.NewFromInt(250)},
	}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/wallet/balance", "", &mid)
	h.GetBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "req-test", resp["request_id"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "250", data["usd"].(map[string]interface{})["available"])
}

func TestGetBalance_NoMerchant(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewWalletHandler(mocks.NewMockWalletService(ctrl))

	c, w := newContext(http.MethodGet, "/api/v1/wallet/balance", "", nil)
	h.GetBalance(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFreeze_RequiresReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewWalletHandler(mocks.NewMockWalletService(ctrl))

	mid := uuid.New()
	c, w := newContext(http.MethodPost, "/", `{}`, nil, gin.Param{Key: "merchantId", Value: mid.String()})
	h.Freeze(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, errorCode(t, w))
}

func TestFreeze_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	walletSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(walletSvc)

	mid := uuid.New()
	wallet := domain.NewWallet(mid)
	wallet.Freeze("chargeback investigation")
	walletSvc.EXPECT().Freeze(gomock.Any(), mid, "chargeback investigation").Return(wallet, nil)

	c, w := newContext(http.MethodPost, "/", `{"reason":"chargeback investigation"}`, nil,
		gin.Param{Key: "merchantId", Value: mid.String()})
	h.Freeze(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOpen_InvalidMerchantID(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewWalletHandler(mocks.NewMockWalletService(ctrl))

	c, w := newContext(http.MethodPost, "/", "", nil, gin.Param{Key: "merchantId", Value: "nope"})
	h.Open(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- FX ---

func TestLockRate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	convSvc := mocks.NewMockConversionService(ctrl)
	h := NewFXHandler(mocks.NewMockExchangeRateService(ctrl), convSvc)

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	mid := uuid.New()
	convSvc.EXPECT().LockRate(gomock.Any(), mid, domain.CurrencyUSD, domain.CurrencyCDF).Return(&domain.RateLock{
		ID:         "lock-1",
		MerchantID: mid,
		From:       domain.CurrencyUSD,
		To:         domain.CurrencyCDF,
		Rate:       decimal.NewFromInt(2750),
		FromAmount: decimal.NewFromInt(100),
		ToAmount:   decimal.NewFromInt(275000),
		LockedAt:   now.Add(-10 * time.Second),
		ExpiresAt:  now.Add(20 * time.Second),
	}, nil)

	c, w := newContext(http.MethodPost, "/", `{"from_currency":"USD","to_currency":"CDF"}`, &mid)
	h.Lock(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "lock-1", data["lock_id"])
	assert.EqualValues(t, 20, data["expires_in"])
}

func TestLockRate_SameCurrencyRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewFXHandler(mocks.NewMockExchangeRateService(ctrl), mocks.NewMockConversionService(ctrl))

	mid := uuid.New()
	c, w := newContext(http.MethodPost, "/", `{"from_currency":"USD","to_currency":"USD"}`, &mid)
	h.Lock(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteLock_Expired(t *testing.T) {
	ctrl := gomock.NewController(t)
	convSvc := mocks.NewMockConversionService(ctrl)
	h := NewFXHandler(mocks.NewMockExchangeRateService(ctrl), convSvc)

	mid := uuid.New()
	convSvc.EXPECT().ExecuteLocked(gomock.Any(), mid, "lock-9").Return(nil, apperror.ErrLockExpiredOrNotFound())

	c, w := newContext(http.MethodPost, "/", "", &mid, gin.Param{Key: "lockId", Value: "lock-9"})
	h.ExecuteLock(c)

	assert.Equal(t, apperror.CodeLockExpiredOrNotFound, errorCode(t, w))
}

func TestRefreshRates_FailureStillReturnsTable(t *testing.T) {
	ctrl := gomock.NewController(t)
	rateSvc := mocks.NewMockExchangeRateService(ctrl)
	h := NewFXHandler(rateSvc, mocks.NewMockConversionService(ctrl))

	rateSvc.EXPECT().Refresh(gomock.Any()).Return(errors.New("feed unreachable"))
	rateSvc.EXPECT().Rates().Return(domain.RateTable{Source: domain.RateSourceCached})

	c, w := newContext(http.MethodPost, "/", "", nil)
	h.Refresh(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "feed unreachable", data["warning"])
}

// --- Segregation ---

func TestFund_Accepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	segSvc := mocks.NewMockSegregationService(ctrl)
	h := NewSegregationHandler(segSvc)

	mid, accountID := uuid.New(), uuid.New()
	segSvc.EXPECT().FundFromBank(gomock.Any(), ports.TransferRequest{
		MerchantID:    mid,
		Amount:        decimal.RequireFromString("500"),
		Currency:      domain.CurrencyUSD,
		BankAccountID: accountID,
		Note:          "top up",
	}).Return(&ports.TransferResult{Transaction: &domain.Transaction{Ref: "TXN-1"}}, nil)

	body := `{"amount":"500","currency":"USD","bank_account_id":"` + accountID.String() + `","note":"top up"}`
	c, w := newContext(http.MethodPost, "/", body, &mid)
	h.Fund(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestSweep_InvalidBankAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewSegregationHandler(mocks.NewMockSegregationService(ctrl))

	mid := uuid.New()
	c, w := newContext(http.MethodPost, "/", `{"amount":"10","currency":"USD","bank_account_id":"abc"}`, &mid)
	h.Sweep(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConvert_SubCentAmountRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewFXHandler(mocks.NewMockExchangeRateService(ctrl), mocks.NewMockConversionService(ctrl))

	mid := uuid.New()
	c, w := newContext(http.MethodPost, "/", `{"amount":"0.005","from_currency":"USD","to_currency":"CDF"}`, &mid)
	h.Convert(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAutoSweep_AllMerchantsReportsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	segSvc := mocks.NewMockSegregationService(ctrl)
	h := NewSegregationHandler(segSvc)

	ok, bad := uuid.New(), uuid.New()
	segSvc.EXPECT().MerchantsRequiringSweep(gomock.Any()).Return([]uuid.UUID{ok, bad}, nil)
	segSvc.EXPECT().AutoSweep(gomock.Any(), ok).Return(&ports.AutoSweepResult{
		MerchantID: ok,
		Sweeps:     []ports.TransferResult{{}, {}},
		Failed:     []string{"CDF: connection reset"},
	}, nil)
	segSvc.EXPECT().AutoSweep(gomock.Any(), bad).Return(nil, apperror.ErrNotFound("bank account"))

	c, w := newContext(http.MethodPost, "/", "", nil)
	h.AutoSweep(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["merchants"])
	assert.EqualValues(t, 2, data["sweeps"])
	assert.Len(t, data["failures"], 2)
}

func TestRejectFunding_PassesAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	segSvc := mocks.NewMockSegregationService(ctrl)
	h := NewSegregationHandler(segSvc)

	segSvc.EXPECT().RejectFunding(gomock.Any(), "TXN-7", "admin-1", "no matching deposit").
		Return(&ports.TransferResult{}, nil)

	c, w := newContext(http.MethodPost, "/", `{"reason":"no matching deposit"}`, nil, gin.Param{Key: "ref", Value: "TXN-7"})
	h.RejectFunding(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Bank accounts ---

func TestRegisterBankAccount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	bankSvc := mocks.NewMockBankAccountService(ctrl)
	h := NewBankAccountHandler(bankSvc)

	mid := uuid.New()
	bankSvc.EXPECT().Register(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req ports.BankAccountRequest) (*ports.BankAccountView, error) {
			assert.Equal(t, mid, req.MerchantID)
			assert.Equal(t, domain.CurrencyCDF, req.Currency)
			assert.Equal(t, "00012345678901", req.AccountNumber)
			require.NotNil(t, req.IBAN)
			assert.Equal(t, "FR7630006000011234567890189", *req.IBAN)
			return &ports.BankAccountView{ID: uuid.New(), AccountNumber: "**********8901"}, nil
		})

	body := `{"bank_name":"Rawbank","account_number":" 0001 2345 678901 ","account_name":"Kin Shop SARL",` +
		`"iban":"fr76 3000 6000 0112 3456 7890 189","currency":"CDF"}`
	c, w := newContext(http.MethodPost, "/", body, &mid)
	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestVerifyBankAccount_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	bankSvc := mocks.NewMockBankAccountService(ctrl)
	h := NewBankAccountHandler(bankSvc)

	id := uuid.New()
	bankSvc.EXPECT().Verify(gomock.Any(), id, "admin-1").Return(nil, apperror.ErrNotFound("bank account"))

	c, w := newContext(http.MethodPost, "/", "", nil, gin.Param{Key: "id", Value: id.String()})
	h.Verify(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Withdrawals ---

func TestPendingWithdrawals_Totals(t *testing.T) {
	ctrl := gomock.NewController(t)
	wdSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(wdSvc)

	usd := domain.CurrencyUSD
	wdSvc.EXPECT().Pending(gomock.Any(), &usd, 10).Return([]domain.Transaction{
		{Ref: "W1", Currency: domain.CurrencyUSD, AmountGross: decimal.RequireFromString("100.5")},
		{Ref: "W2", Currency: domain.CurrencyUSD, AmountGross: decimal.RequireFromString("20")},
	}, nil)

	c, w := newContext(http.MethodGet, "/pending?currency=usd&limit=10", "", nil)
	h.Pending(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["count"])
	assert.Equal(t, "120.50", data["total_amounts"].(map[string]interface{})["USD"])
}

func TestPendingWithdrawals_BadCurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewWithdrawalHandler(mocks.NewMockWithdrawalService(ctrl))

	c, w := newContext(http.MethodGet, "/pending?currency=EUR", "", nil)
	h.Pending(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateBatch_DefaultsToAuto(t *testing.T) {
	ctrl := gomock.NewController(t)
	wdSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(wdSvc)

	wdSvc.EXPECT().GenerateBatch(gomock.Any(), (*domain.Currency)(nil), ports.BatchFormatAuto).
		Return(&ports.BatchResult{BatchID: "BATCH-1"}, nil)

	c, w := newContext(http.MethodPost, "/batches", "", nil)
	h.GenerateBatch(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGenerateBatch_RejectsUnknownFormat(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewWithdrawalHandler(mocks.NewMockWithdrawalService(ctrl))

	c, w := newContext(http.MethodPost, "/batches", `{"format":"mt940"}`, nil)
	h.GenerateBatch(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompleteWithdrawal_AlreadyProcessed(t *testing.T) {
	ctrl := gomock.NewController(t)
	wdSvc := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(wdSvc)

	wdSvc.EXPECT().Complete(gomock.Any(), "W1", "admin-1").Return(&ports.WithdrawalOutcome{
		Transaction:      &domain.Transaction{Ref: "W1", Status: domain.TransactionStatusSuccess},
		AlreadyProcessed: true,
	}, nil)

	c, w := newContext(http.MethodPost, "/", "", nil, gin.Param{Key: "ref", Value: "W1"})
	h.Complete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["already_processed"])
}

// --- Collections and callbacks ---

func TestInitiateCollection_Accepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	settleSvc := mocks.NewMockSettlementService(ctrl)
	h := NewPaymentHandler(settleSvc, 100)

	mid := uuid.New()
	settleSvc.EXPECT().InitiateCollection(gomock.Any(), ports.CollectionRequest{
		MerchantID:    mid,
		Amount:        decimal.RequireFromString("15000"),
		Currency:      domain.CurrencyCDF,
		Method:        domain.PaymentMethodMpesa,
		OrderID:       "ORD-1",
		CustomerPhone: "+243810000000",
	}).Return(&domain.Transaction{Ref: "TXN-1", Status: domain.TransactionStatusPending}, nil)

	body := `{"amount":"15000","currency":"CDF","payment_method":"mpesa","order_id":"ORD-1","customer_phone":"+243810000000"}`
	c, w := newContext(http.MethodPost, "/", body, &mid)
	h.InitiateCollection(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestInitiateCollection_ManualMethodRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewPaymentHandler(mocks.NewMockSettlementService(ctrl), 100)

	mid := uuid.New()
	body := `{"amount":"10","currency":"USD","payment_method":"manual","order_id":"ORD-2","customer_phone":"1"}`
	c, w := newContext(http.MethodPost, "/", body, &mid)
	h.InitiateCollection(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallback_MapsOperatorAndStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	settleSvc := mocks.NewMockSettlementService(ctrl)
	h := NewPaymentHandler(settleSvc, 100)

	mid := uuid.New()
	settleSvc.EXPECT().HandlePaymentResult(gomock.Any(), ports.PaymentResult{
		MerchantID:  mid,
		OrderID:     "ORD-1",
		Operator:    domain.PaymentMethodOrangeMoney,
		ExternalRef: "OM-555",
		Success:     true,
		Amount:      decimal.RequireFromString("15000"),
		Currency:    domain.CurrencyCDF,
	}).Return(&ports.SettlementOutcome{Applied: true}, nil)

	body := `{"merchant_id":"` + mid.String() + `","order_id":"ORD-1","external_ref":"OM-555","status":"success","amount":"15000","currency":"CDF"}`
	c, w := newContext(http.MethodPost, "/", body, nil, gin.Param{Key: "operator", Value: "orange_money"})
	c.Set(middleware.CtxOperator, "orange_money")
	h.Callback(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCallback_RequiresIdentifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewPaymentHandler(mocks.NewMockSettlementService(ctrl), 100)

	c, w := newContext(http.MethodPost, "/", `{"status":"failed"}`, nil)
	c.Set(middleware.CtxOperator, "mpesa")
	h.Callback(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpireStale(t *testing.T) {
	ctrl := gomock.NewController(t)
	settleSvc := mocks.NewMockSettlementService(ctrl)
	h := NewPaymentHandler(settleSvc, 50)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	settleSvc.EXPECT().ExpireStale(gomock.Any(), now, 50).Return(3, nil)

	c, w := newContext(http.MethodPost, "/", "", nil)
	h.ExpireStale(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["expired"])
}

// --- Ledger ---

func TestLedgerAccountBalance_RequiresCurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewLedgerHandler(mocks.NewMockLedgerService(ctrl))

	c, w := newContext(http.MethodGet, "/", "", nil, gin.Param{Key: "account", Value: "merchant_wallet_usd"})
	h.AccountBalance(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLedgerEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledgerSvc := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(ledgerSvc)

	ledgerSvc.EXPECT().EntriesForTransaction(gomock.Any(), "TXN-1").Return([]domain.LedgerEntry{{}, {}}, nil)

	c, w := newContext(http.MethodGet, "/", "", nil, gin.Param{Key: "ref", Value: "TXN-1"})
	h.Entries(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 2)
}

// --- Router ---

func testRouter(t *testing.T, tokenSvc ports.TokenService, checkers ...ports.HealthChecker) *gin.Engine {
	t.Helper()
	ctrl := gomock.NewController(t)
	return SetupRouter(RouterDeps{
		WalletSvc:      mocks.NewMockWalletService(ctrl),
		LedgerSvc:      mocks.NewMockLedgerService(ctrl),
		RateSvc:        mocks.NewMockExchangeRateService(ctrl),
		ConversionSvc:  mocks.NewMockConversionService(ctrl),
		SegregationSvc: mocks.NewMockSegregationService(ctrl),
		BankAccountSvc: mocks.NewMockBankAccountService(ctrl),
		WithdrawalSvc:  mocks.NewMockWithdrawalService(ctrl),
		SettlementSvc:  mocks.NewMockSettlementService(ctrl),
		ReportingSvc:   mocks.NewMockReportingService(ctrl),
		TokenSvc:       tokenSvc,
		HealthCheckers: checkers,
		Logger:         zerolog.Nop(),
	})
}

func TestRouter_MerchantCannotReachAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("tok").Return(&ports.TokenClaims{
		Subject: "user-1", Role: ports.RoleMerchant, MerchantID: uuid.New(),
	}, nil)

	r := testRouter(t, tokenSvc)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/fx/refresh", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestRouter_UnauthenticatedMerchantRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := testRouter(t, mocks.NewMockTokenService(ctrl))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/wallet/balance", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_HealthDegraded(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockHealthChecker(ctrl)
	db.EXPECT().Name().Return("postgres").AnyTimes()
	db.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

	r := testRouter(t, mocks.NewMockTokenService(ctrl), db)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", decode(t, w)["status"])
}

func TestHealthCheck_AllHealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	var checkers []ports.HealthChecker
	for _, name := range []string{"postgres", "redis"} {
		hc := mocks.NewMockHealthChecker(ctrl)
		hc.EXPECT().Name().Return(name).AnyTimes()
		hc.EXPECT().Ping(gomock.Any()).Return(nil)
		checkers = append(checkers, hc)
	}

	c, w := newContext(http.MethodGet, "/health", "", nil)
	HealthCheck(checkers...)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status       string                      `json:"status"`
		Dependencies map[string]dependencyStatus `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Len(t, body.Dependencies, 2)
	assert.Equal(t, "healthy", body.Dependencies["redis"].Status)
}
