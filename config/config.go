package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	AES        AESConfig        `mapstructure:"aes"`
	Log        LogConfig        `mapstructure:"log"`
	FX         FXConfig         `mapstructure:"fx"`
	Limits     LimitsConfig     `mapstructure:"limits"`
	Fees       FeesConfig       `mapstructure:"fees"`
	Payments   PaymentsConfig   `mapstructure:"payments"`
	Withdrawal WithdrawalConfig `mapstructure:"withdrawal"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Events     EventsConfig     `mapstructure:"events"`
	Gateways   GatewaysConfig   `mapstructure:"gateways"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, memory
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded master key
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// FXConfig configures the USD/CDF rate cache and rate locks.
type FXConfig struct {
	SourceURL       string        `mapstructure:"source_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	SpreadPercent   float64       `mapstructure:"spread_percent"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	FallbackRate    float64       `mapstructure:"fallback_rate"` // CDF per USD
	LockTTL         time.Duration `mapstructure:"lock_ttl"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

// CurrencyLimits are the per-currency segregation thresholds.
type CurrencyLimits struct {
	MaxWalletBalance      float64 `mapstructure:"max_wallet_balance"`
	AutoSweepThreshold    float64 `mapstructure:"auto_sweep_threshold"`
	MinOperationalBalance float64 `mapstructure:"min_operational_balance"`
	MinWithdrawal         float64 `mapstructure:"min_withdrawal"`
}

type LimitsConfig struct {
	USD CurrencyLimits `mapstructure:"usd"`
	CDF CurrencyLimits `mapstructure:"cdf"`
}

// For returns the limits configured for a currency code.
func (l LimitsConfig) For(currency string) (CurrencyLimits, bool) {
	switch strings.ToUpper(currency) {
	case "USD":
		return l.USD, true
	case "CDF":
		return l.CDF, true
	}
	return CurrencyLimits{}, false
}

type FeesConfig struct {
	CollectionPercent float64 `mapstructure:"collection_percent"`
}

type PaymentsConfig struct {
	CollectionTimeout time.Duration `mapstructure:"collection_timeout"`
}

// WithdrawalConfig holds the batch export settings and the debtor identity
// printed on SEPA and SWIFT files.
type WithdrawalConfig struct {
	CutoffHour    int    `mapstructure:"cutoff_hour"`
	ExportDir     string `mapstructure:"export_dir"`
	DebtorName    string `mapstructure:"debtor_name"`
	DebtorIBAN    string `mapstructure:"debtor_iban"`
	DebtorBIC     string `mapstructure:"debtor_bic"`
	DebtorAccount string `mapstructure:"debtor_account"`
}

type SchedulerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	AutoSweepHour   int           `mapstructure:"auto_sweep_hour"`
	BatchEnabled    bool          `mapstructure:"batch_enabled"`
	ExpiryInterval  time.Duration `mapstructure:"expiry_interval"`
	ExpiryBatchSize int           `mapstructure:"expiry_batch_size"`
}

// EventsConfig selects where outbox events are published.
type EventsConfig struct {
	Sink          string        `mapstructure:"sink"` // log, kafka, webhook
	Brokers       []string      `mapstructure:"brokers"`
	Topic         string        `mapstructure:"topic"`
	WebhookURL    string        `mapstructure:"webhook_url"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	RelayInterval time.Duration `mapstructure:"relay_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
}

// GatewaysConfig maps operator codes (mpesa, orange_money, airtel_money, bank_transfer)
// to the shared secret used to sign their settlement callbacks.
type GatewaysConfig struct {
	CallbackSecrets map[string]string `mapstructure:"callback_secrets"`
	MaxClockSkew    time.Duration     `mapstructure:"max_clock_skew"`
}

// RateLimitConfig overrides the per-minute request limit of endpoint groups
// (merchant_read, merchant_write, fx_lock, admin, callbacks). Zero lifts the
// limit for a group.
type RateLimitConfig struct {
	Enabled   bool             `mapstructure:"enabled"`
	PerMinute map[string]int64 `mapstructure:"per_minute"`
}

// Load reads configuration from .env, file and environment variables.
// Environment variables override file values. Prefix: MWE_ (Merchant Wallet Engine).
// Nested keys use underscore: MWE_DATABASE_HOST, MWE_FX_SPREAD_PERCENT, etc.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("MWE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "merchant_wallet")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "merchant-wallet-engine")

	v.SetDefault("aes.key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("fx.source_url", "https://open.er-api.com/v6/latest/USD")
	v.SetDefault("fx.timeout", "10s")
	v.SetDefault("fx.spread_percent", 2.5)
	v.SetDefault("fx.refresh_interval", "1h")
	v.SetDefault("fx.fallback_rate", 2850)
	v.SetDefault("fx.lock_ttl", "60s")
	v.SetDefault("fx.sweep_interval", "10s")

	v.SetDefault("limits.usd.max_wallet_balance", 50000)
	v.SetDefault("limits.usd.auto_sweep_threshold", 30000)
	v.SetDefault("limits.usd.min_operational_balance", 1000)
	v.SetDefault("limits.usd.min_withdrawal", 50)
	v.SetDefault("limits.cdf.max_wallet_balance", 100000000)
	v.SetDefault("limits.cdf.auto_sweep_threshold", 60000000)
	v.SetDefault("limits.cdf.min_operational_balance", 2000000)
	v.SetDefault("limits.cdf.min_withdrawal", 142725)

	v.SetDefault("fees.collection_percent", 2.8)
	v.SetDefault("payments.collection_timeout", "5m")

	v.SetDefault("withdrawal.cutoff_hour", 16)
	v.SetDefault("withdrawal.export_dir", "./exports/withdrawals")
	v.SetDefault("withdrawal.debtor_name", "ALMA PAYMENT PLATFORM")
	v.SetDefault("withdrawal.debtor_iban", "PLACEHOLDER_IBAN")
	v.SetDefault("withdrawal.debtor_bic", "PLACEHOLDERXXX")
	v.SetDefault("withdrawal.debtor_account", "PLACEHOLDER_ACCOUNT")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.auto_sweep_hour", 2)
	v.SetDefault("scheduler.batch_enabled", false)
	v.SetDefault("scheduler.expiry_interval", "30s")
	v.SetDefault("scheduler.expiry_batch_size", 100)

	v.SetDefault("events.sink", "log")
	v.SetDefault("events.brokers", []string{"localhost:9092"})
	v.SetDefault("events.topic", "wallet.transactions")
	v.SetDefault("events.relay_interval", "2s")
	v.SetDefault("events.batch_size", 100)

	v.SetDefault("gateways.max_clock_skew", "60s")

	v.SetDefault("rate_limit.enabled", true)
}

// Validate checks invariants that cannot be expressed as defaults.
func (c *Config) Validate() error {
	if c.AES.Key != "" {
		key, err := hex.DecodeString(c.AES.Key)
		if err != nil || len(key) != 32 {
			return fmt.Errorf("aes.key must be 64 hex characters")
		}
	}

	for _, ccy := range []string{"USD", "CDF"} {
		l, _ := c.Limits.For(ccy)
		floor := decimal.NewFromFloat(l.MinOperationalBalance)
		trigger := decimal.NewFromFloat(l.AutoSweepThreshold)
		ceiling := decimal.NewFromFloat(l.MaxWalletBalance)
		if floor.IsNegative() || !floor.LessThan(trigger) || trigger.GreaterThan(ceiling) {
			return fmt.Errorf("limits.%s: require 0 <= min_operational_balance < auto_sweep_threshold <= max_wallet_balance", strings.ToLower(ccy))
		}
		if l.MinWithdrawal < 0 {
			return fmt.Errorf("limits.%s.min_withdrawal must not be negative", strings.ToLower(ccy))
		}
	}

	if c.FX.SpreadPercent < 0 || c.FX.SpreadPercent >= 100 {
		return fmt.Errorf("fx.spread_percent must be in [0, 100)")
	}
	if c.FX.FallbackRate <= 0 {
		return fmt.Errorf("fx.fallback_rate must be positive")
	}
	if c.Withdrawal.CutoffHour < 0 || c.Withdrawal.CutoffHour > 23 {
		return fmt.Errorf("withdrawal.cutoff_hour must be in [0, 23]")
	}

	switch c.Events.Sink {
	case "log", "kafka", "webhook":
	default:
		return fmt.Errorf("events.sink must be one of log, kafka, webhook")
	}

	return nil
}
