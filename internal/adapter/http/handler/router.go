package handler

import (
	"time"

	"merchant-wallet-engine/internal/adapter/http/middleware"
	"merchant-wallet-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	LedgerSvc      ports.LedgerService
	RateSvc        ports.ExchangeRateService
	ConversionSvc  ports.ConversionService
	SegregationSvc ports.SegregationService
	BankAccountSvc ports.BankAccountService
	WithdrawalSvc  ports.WithdrawalService
	SettlementSvc  ports.SettlementService
	ReportingSvc   ports.ReportingService

	TokenSvc        ports.TokenService
	SigSvc          ports.SignatureService
	NonceStore      ports.NonceStore
	CallbackSecrets map[string]string // operator -> shared HMAC secret
	MaxClockSkew    time.Duration
	ExpiryBatchSize int

	RateLimiter    middleware.RateCounter // nil = rate limiting disabled
	RateLimits     middleware.RateLimitRules
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rules := deps.RateLimits
	if rules == nil {
		rules = middleware.DefaultRateLimitRules()
	}
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimiter == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimiter, group, rule, deps.Logger)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	dashboardHandler := NewDashboardHandler(deps.ReportingSvc)
	bankHandler := NewBankAccountHandler(deps.BankAccountSvc)
	fxHandler := NewFXHandler(deps.RateSvc, deps.ConversionSvc)
	segregationHandler := NewSegregationHandler(deps.SegregationSvc)
	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalSvc)
	paymentHandler := NewPaymentHandler(deps.SettlementSvc, deps.ExpiryBatchSize)
	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)

	v1 := r.Group("/api/v1")
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	// --- Merchant API (JWT, merchant role) ---
	m := v1.Group("", jwtAuth, middleware.RequireRole(ports.RoleMerchant))
	{
		m.GET("/wallet/balance", rl("merchant_read"), walletHandler.GetBalance)
		m.GET("/transactions", rl("merchant_read"), dashboardHandler.ListTransactions)
		m.GET("/statistics", rl("merchant_read"), dashboardHandler.GetStats)

		m.POST("/bank-accounts", rl("merchant_write"), bankHandler.Register)
		m.GET("/bank-accounts", rl("merchant_read"), bankHandler.List)
		m.PUT("/bank-accounts/:id/default", rl("merchant_write"), bankHandler.SetDefault)

		m.GET("/fx/rates", rl("merchant_read"), fxHandler.Rates)
		m.POST("/fx/locks", rl("fx_lock"), fxHandler.Lock)
		m.POST("/fx/locks/:lockId/execute", rl("merchant_write"), fxHandler.ExecuteLock)
		m.POST("/fx/convert", rl("merchant_write"), fxHandler.Convert)

		m.POST("/segregation/sweep", rl("merchant_write"), segregationHandler.Sweep)
		m.POST("/segregation/fund", rl("merchant_write"), segregationHandler.Fund)
		m.GET("/segregation/status", rl("merchant_read"), segregationHandler.Status)

		m.POST("/withdrawals", rl("merchant_write"), withdrawalHandler.Initiate)
		m.POST("/collections", rl("merchant_write"), paymentHandler.InitiateCollection)
	}

	// --- Admin API (JWT, admin role, audited) ---
	adminMW := []gin.HandlerFunc{jwtAuth, middleware.RequireRole(ports.RoleAdmin), rl("admin")}
	if deps.AuditSvc != nil {
		adminMW = append(adminMW, middleware.AuditLog(deps.AuditSvc))
	}
	admin := v1.Group("/admin", adminMW...)
	{
		admin.POST("/wallets/:merchantId", walletHandler.Open)
		admin.POST("/wallets/:merchantId/freeze", walletHandler.Freeze)
		admin.POST("/wallets/:merchantId/unfreeze", walletHandler.Unfreeze)

		admin.POST("/bank-accounts/:id/verify", bankHandler.Verify)

		admin.POST("/fundings/:ref/approve", segregationHandler.ApproveFunding)
		admin.POST("/fundings/:ref/reject", segregationHandler.RejectFunding)
		admin.POST("/segregation/auto-sweep", segregationHandler.AutoSweep)

		admin.GET("/withdrawals/pending", withdrawalHandler.Pending)
		admin.POST("/withdrawals/batches", withdrawalHandler.GenerateBatch)
		admin.POST("/withdrawals/:ref/complete", withdrawalHandler.Complete)
		admin.POST("/withdrawals/:ref/reject", withdrawalHandler.Reject)

		admin.POST("/collections/expire", paymentHandler.ExpireStale)
		admin.POST("/fx/refresh", fxHandler.Refresh)

		admin.GET("/ledger/accounts/:account/balance", ledgerHandler.AccountBalance)
		admin.GET("/ledger/transactions/:ref/entries", ledgerHandler.Entries)
	}

	// --- Operator callbacks (HMAC per operator) ---
	callbackAuth := middleware.CallbackAuth(deps.CallbackSecrets, deps.SigSvc, deps.NonceStore, deps.MaxClockSkew, deps.Logger)
	v1.POST("/callbacks/:operator", rl("callbacks"), callbackAuth, paymentHandler.Callback)

	return r
}
