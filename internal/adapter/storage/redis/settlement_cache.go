package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SettlementCache implements ports.SettlementCache. It remembers settlement
// outcomes by transaction ref so replayed operator callbacks can be answered
// without touching the database. A miss is never authoritative.
type SettlementCache struct {
	client goredis.UniversalClient
}

func NewSettlementCache(client goredis.UniversalClient) *SettlementCache {
	return &SettlementCache{client: client}
}

// Get returns the cached outcome, or nil, nil if the key does not exist.
func (c *SettlementCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, settlementPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis settlement get: %w", err)
	}
	return val, nil
}

func (c *SettlementCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, settlementPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis settlement set: %w", err)
	}
	return nil
}
