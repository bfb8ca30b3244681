package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"merchant-wallet-engine/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// RateSnapshotStore implements ports.RateSnapshotStore. The snapshot has no
// TTL: an old real rate is still better than the hardcoded fallback.
type RateSnapshotStore struct {
	client goredis.UniversalClient
}

func NewRateSnapshotStore(client goredis.UniversalClient) *RateSnapshotStore {
	return &RateSnapshotStore{client: client}
}

func (s *RateSnapshotStore) Save(ctx context.Context, snapshot domain.RateSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal rate snapshot: %w", err)
	}
	if err := s.client.Set(ctx, rateSnapshotKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis rate snapshot set: %w", err)
	}
	return nil
}

// Load returns nil, nil when no snapshot was ever saved.
func (s *RateSnapshotStore) Load(ctx context.Context) (*domain.RateSnapshot, error) {
	raw, err := s.client.Get(ctx, rateSnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis rate snapshot get: %w", err)
	}

	var snap domain.RateSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode rate snapshot: %w", err)
	}
	if !snap.Base.IsPositive() {
		return nil, fmt.Errorf("decode rate snapshot: non-positive base %s", snap.Base)
	}
	return &snap, nil
}
