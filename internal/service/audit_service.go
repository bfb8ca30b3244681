package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuditServiceImpl writes audit rows in the background so an audit store
// outage never fails the audited request.
type AuditServiceImpl struct {
	repo ports.AuditRepository
	log  zerolog.Logger
	wg   sync.WaitGroup
}

// NewAuditService creates a new audit service.
// If repo is nil, audit logs are only written to the logger.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) *AuditServiceImpl {
	return &AuditServiceImpl{repo: repo, log: log}
}

// Log records an audit entry asynchronously (fire-and-forget).
func (s *AuditServiceImpl) Log(ctx context.Context, entry ports.AuditEntry) {
	row := &domain.AuditLog{
		ID:           uuid.New(),
		ActorID:      entry.ActorID,
		MerchantID:   entry.MerchantID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		IPAddress:    entry.IPAddress,
		CreatedAt:    time.Now().UTC(),
	}
	if len(entry.Details) > 0 {
		if b, err := json.Marshal(entry.Details); err == nil {
			row.Details = string(b)
		} else {
			s.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("audit details not serializable")
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.log.Info().
			Str("actor", row.ActorID).
			Str("action", string(row.Action)).
			Str("resource_type", row.ResourceType).
			Str("resource_id", row.ResourceID).
			Str("ip", row.IPAddress).
			Msg("audit")

		if s.repo == nil {
			return
		}
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.repo.Create(writeCtx, row); err != nil {
			s.log.Warn().Err(err).Str("action", string(row.Action)).Msg("failed to persist audit log")
		}
	}()
}

// Close waits for in-flight audit writes.
func (s *AuditServiceImpl) Close() {
	s.wg.Wait()
}
