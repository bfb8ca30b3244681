// Package app assembles the engine from configuration: storage, services,
// the HTTP router and the background jobs.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"merchant-wallet-engine/config"
	"merchant-wallet-engine/internal/adapter/bankfile"
	"merchant-wallet-engine/internal/adapter/events"
	"merchant-wallet-engine/internal/adapter/gateway"
	httpHandler "merchant-wallet-engine/internal/adapter/http/handler"
	"merchant-wallet-engine/internal/adapter/http/middleware"
	"merchant-wallet-engine/internal/adapter/ratefeed"
	"merchant-wallet-engine/internal/adapter/storage/memory"
	pgStorage "merchant-wallet-engine/internal/adapter/storage/postgres"
	redisStorage "merchant-wallet-engine/internal/adapter/storage/redis"
	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/internal/service"
	"merchant-wallet-engine/internal/worker"
	"merchant-wallet-engine/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// App is the assembled engine.
type App struct {
	Router *gin.Engine
	Jobs   []worker.Job

	// Store is set when the memory driver is selected.
	Store *memory.Store

	Wallets  ports.WalletService
	Rates    *service.ExchangeRateServiceImpl
	Relay    *worker.OutboxRelay
	TokenSvc ports.TokenService
	SigSvc   ports.SignatureService

	scheduler bool
	closers   []func()
	log       zerolog.Logger
}

type repositories struct {
	merchants    ports.MerchantRepository
	wallets      ports.WalletRepository
	transactions ports.TransactionRepository
	ledger       ports.LedgerRepository
	bankAccounts ports.BankAccountRepository
	audit        ports.AuditRepository
	outbox       ports.OutboxRepository
	transactor   ports.DBTransactor
}

// New connects to the configured backends and wires every component.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{log: log, scheduler: cfg.Scheduler.Enabled}

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	checkers := []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)}

	var repos repositories
	switch cfg.Database.Driver {
	case "memory":
		store := memory.NewStore()
		a.Store = store
		repos = repositories{
			merchants:    memory.NewMerchantRepo(store),
			wallets:      memory.NewWalletRepo(store),
			transactions: memory.NewTransactionRepo(store),
			ledger:       memory.NewLedgerRepo(store),
			bankAccounts: memory.NewBankAccountRepo(store),
			audit:        memory.NewAuditRepo(store),
			outbox:       memory.NewOutboxRepo(store),
			transactor:   store,
		}
		log.Warn().Msg("using in-memory storage; data is lost on restart")
	case "postgres", "":
		encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("encryption service: %w", err)
		}
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		if cfg.Database.Migrate {
			if err := pgStorage.Migrate(ctx, pool, log); err != nil {
				a.Close()
				return nil, err
			}
		}
		repos = repositories{
			merchants:    pgStorage.NewMerchantRepo(pool),
			wallets:      pgStorage.NewWalletRepo(pool),
			transactions: pgStorage.NewTransactionRepo(pool, encSvc),
			ledger:       pgStorage.NewLedgerRepo(pool),
			bankAccounts: pgStorage.NewBankAccountRepo(pool, encSvc),
			audit:        pgStorage.NewAuditRepo(pool),
			outbox:       pgStorage.NewOutboxRepo(pool),
			transactor:   pgStorage.NewTransactor(pool),
		}
		checkers = append([]ports.HealthChecker{pgStorage.NewHealthCheck(pool)}, checkers...)
	default:
		a.Close()
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	sigSvc := service.NewHMACSignatureService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	a.SigSvc, a.TokenSvc = sigSvc, tokenSvc

	auditSvc := service.NewAuditService(repos.audit, logger.Component(log, "audit"))
	a.closers = append(a.closers, auditSvc.Close)

	limits := limitsFromConfig(cfg.Limits)

	rates := service.NewExchangeRateService(
		ratefeed.NewHTTPSource(cfg.FX.SourceURL, cfg.FX.Timeout),
		redisStorage.NewRateSnapshotStore(rdb),
		service.FXSettings{
			SpreadPercent: decimal.NewFromFloat(cfg.FX.SpreadPercent),
			FallbackRate:  decimal.NewFromFloat(cfg.FX.FallbackRate),
		},
		logger.Component(log, "fx"),
	)
	a.Rates = rates
	locks := service.NewRateLockManager(cfg.FX.LockTTL, nil, logger.Component(log, "fx"))

	ledgerSvc := service.NewLedgerService(repos.ledger, repos.transactions, logger.Component(log, "ledger"))
	walletSvc := service.NewWalletService(repos.merchants, repos.wallets, repos.outbox, repos.transactor, logger.Component(log, "wallet"))
	a.Wallets = walletSvc
	conversionSvc := service.NewConversionService(
		repos.wallets, repos.transactions, repos.outbox,
		walletSvc, ledgerSvc, rates, locks, repos.transactor, logger.Component(log, "conversion"),
	)
	segregationSvc := service.NewSegregationService(
		repos.wallets, repos.bankAccounts, repos.transactions, repos.outbox,
		walletSvc, ledgerSvc, repos.transactor, limits, logger.Component(log, "segregation"),
	)
	bankSvc := service.NewBankAccountService(repos.bankAccounts, repos.transactor, logger.Component(log, "bank_accounts"))
	withdrawalSvc := service.NewWithdrawalService(
		repos.merchants, repos.wallets, repos.bankAccounts, repos.transactions, repos.outbox,
		walletSvc, ledgerSvc, repos.transactor,
		bankfile.NewLocalSink(cfg.Withdrawal.ExportDir),
		bankfile.Debtor{
			Name:    cfg.Withdrawal.DebtorName,
			IBAN:    cfg.Withdrawal.DebtorIBAN,
			BIC:     cfg.Withdrawal.DebtorBIC,
			Account: cfg.Withdrawal.DebtorAccount,
		},
		limits, logger.Component(log, "withdrawals"),
	)
	settlementSvc := service.NewSettlementService(
		repos.wallets, repos.transactions, repos.outbox,
		walletSvc, ledgerSvc,
		gateway.NewSandbox(logger.Component(log, "gateway")),
		redisStorage.NewSettlementCache(rdb),
		repos.transactor,
		service.CollectionSettings{
			CommissionPercent: decimal.NewFromFloat(cfg.Fees.CollectionPercent),
			Timeout:           cfg.Payments.CollectionTimeout,
		},
		logger.Component(log, "settlement"),
	)
	reportingSvc := service.NewReportingService(repos.transactions)

	publisher := newPublisher(cfg.Events, sigSvc, logger.Component(log, "events"))
	a.closers = append(a.closers, func() { _ = publisher.Close() })
	a.Relay = worker.NewOutboxRelay(repos.outbox, publisher, cfg.Events.BatchSize, logger.Component(log, "outbox_relay"))

	deps := httpHandler.RouterDeps{
		WalletSvc:       walletSvc,
		LedgerSvc:       ledgerSvc,
		RateSvc:         rates,
		ConversionSvc:   conversionSvc,
		SegregationSvc:  segregationSvc,
		BankAccountSvc:  bankSvc,
		WithdrawalSvc:   withdrawalSvc,
		SettlementSvc:   settlementSvc,
		ReportingSvc:    reportingSvc,
		TokenSvc:        tokenSvc,
		SigSvc:          sigSvc,
		NonceStore:      redisStorage.NewNonceStore(rdb),
		CallbackSecrets: cfg.Gateways.CallbackSecrets,
		MaxClockSkew:    cfg.Gateways.MaxClockSkew,
		ExpiryBatchSize: cfg.Scheduler.ExpiryBatchSize,
		HealthCheckers:  checkers,
		AuditSvc:        auditSvc,
		Logger:          log,
	}
	if cfg.RateLimit.Enabled {
		deps.RateLimiter = redisStorage.NewRateLimitStore(rdb)
		deps.RateLimits = middleware.DefaultRateLimitRules().WithPerMinute(cfg.RateLimit.PerMinute)
	}
	a.Router = httpHandler.SetupRouter(deps)

	jobLog := logger.Component(log, "scheduler")
	a.Jobs = []worker.Job{
		worker.NewIntervalJob("fx_refresh", cfg.FX.RefreshInterval, worker.RefreshRates(rates, jobLog), jobLog),
		worker.NewIntervalJob("rate_lock_sweep", cfg.FX.SweepInterval, worker.SweepLocks(locks.Sweep), jobLog),
		worker.NewIntervalJob("collection_expiry", cfg.Scheduler.ExpiryInterval,
			worker.ExpireCollections(settlementSvc, cfg.Scheduler.ExpiryBatchSize, time.Now), jobLog),
		worker.NewIntervalJob("outbox_relay", cfg.Events.RelayInterval, a.Relay.Tick, jobLog).Immediately(),
		worker.NewDailyJob("auto_sweep", cfg.Scheduler.AutoSweepHour, time.UTC, worker.AutoSweepAll(segregationSvc, jobLog), jobLog),
	}
	if cfg.Scheduler.BatchEnabled {
		a.Jobs = append(a.Jobs, worker.NewDailyJob("withdrawal_batch", cfg.Withdrawal.CutoffHour, time.UTC,
			worker.DailyBatch(withdrawalSvc, jobLog), jobLog))
	}

	return a, nil
}

// Start warms the rate cache and launches the background jobs. The returned
// function blocks until every job has stopped after ctx is cancelled.
func (a *App) Start(ctx context.Context) (wait func()) {
	a.Rates.Warm(ctx)
	if !a.scheduler {
		a.log.Info().Msg("scheduler disabled")
		return func() {}
	}
	return worker.Start(ctx, a.Jobs...)
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func limitsFromConfig(l config.LimitsConfig) service.Limits {
	thresholds := func(c config.CurrencyLimits) service.Thresholds {
		return service.Thresholds{
			Ceiling:       decimal.NewFromFloat(c.MaxWalletBalance),
			SweepTrigger:  decimal.NewFromFloat(c.AutoSweepThreshold),
			Floor:         decimal.NewFromFloat(c.MinOperationalBalance),
			MinWithdrawal: decimal.NewFromFloat(c.MinWithdrawal),
		}
	}
	return service.Limits{
		domain.CurrencyUSD: thresholds(l.USD),
		domain.CurrencyCDF: thresholds(l.CDF),
	}
}

func newPublisher(cfg config.EventsConfig, sigSvc ports.SignatureService, log zerolog.Logger) ports.EventPublisher {
	switch cfg.Sink {
	case "kafka":
		return events.NewKafkaPublisher(cfg.Brokers, cfg.Topic, log)
	case "webhook":
		return events.NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookSecret, sigSvc, &http.Client{Timeout: 10 * time.Second}, log)
	default:
		return events.NewLogPublisher(log)
	}
}
