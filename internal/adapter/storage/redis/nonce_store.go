package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// NonceStore remembers callback nonces per operator for the replay window.
type NonceStore struct {
	client goredis.UniversalClient
	now    func() time.Time
}

func NewNonceStore(client goredis.UniversalClient) *NonceStore {
	return &NonceStore{client: client, now: time.Now}
}

// CheckAndSet claims nonce for scope. The first caller gets true; every
// later caller within ttl gets false. The stored value is the claim time.
func (s *NonceStore) CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error) {
	fresh, err := s.client.SetNX(ctx, noncePrefix+scope+":"+nonce, s.now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim nonce %s/%s: %w", scope, nonce, err)
	}
	return fresh, nil
}
