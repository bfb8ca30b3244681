package redis

import (
	"context"
	"fmt"
	"time"

	"merchant-wallet-engine/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Key namespaces. Every store prefixes its keys so one Redis database can
// serve all of them.
const (
	settlementPrefix = "settlement:"
	noncePrefix      = "nonce:"
	rateLimitPrefix  = "ratelimit:"
	rateSnapshotKey  = "fx:usd_cdf:last"
)

// Redis sits on the request path for nonces and rate limits, so calls fail
// fast and the callers fall back to their degraded behaviour.
const (
	dialTimeout = 2 * time.Second
	ioTimeout   = 500 * time.Millisecond
	clientName  = "merchant-wallet-engine"
)

// NewClient connects to Redis and fails unless the server answers a PING.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   clientName,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr(), err)
	}

	log.Info().Str("addr", cfg.Addr()).Int("db", cfg.DB).Msg("redis ready")
	return client, nil
}
