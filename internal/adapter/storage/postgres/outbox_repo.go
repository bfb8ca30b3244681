package postgres

import (
	"context"
	"fmt"
	"time"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// OutboxRepo implements ports.OutboxRepository.
type OutboxRepo struct {
	pool Pool
}

// NewOutboxRepo creates a PostgreSQL-backed OutboxRepository.
func NewOutboxRepo(pool Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool}
}

// Create stores an event in the same transaction as the change it describes.
func (r *OutboxRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.OutboxEvent) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO outbox_events
		(id, aggregate_id, event_type, event_key, payload, status, attempts, next_attempt_at, last_error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.AggregateID, e.EventType, e.Key, e.Payload, string(e.Status),
		e.Attempts, e.NextAttemptAt, e.LastError, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// FetchDue returns pending events whose next attempt is due, oldest first.
func (r *OutboxRepo) FetchDue(ctx context.Context, now time.Time, limit int) ([]domain.OutboxEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, aggregate_id, event_type, event_key, payload, status, attempts,
		 next_attempt_at, last_error, created_at, updated_at
		 FROM outbox_events
		 WHERE status = 'PENDING' AND next_attempt_at <= $1
		 ORDER BY created_at ASC
		 LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch due outbox events: %w", err)
	}
	defer rows.Close()

	var events []domain.OutboxEvent
	for rows.Next() {
		var e domain.OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Key, &e.Payload, &e.Status, &e.Attempts,
			&e.NextAttemptAt, &e.LastError, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *OutboxRepo) MarkSent(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox_events SET status = 'SENT', attempts = attempts + 1, last_error = NULL, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event sent: %w", err)
	}
	return nil
}

func (r *OutboxRepo) MarkRetry(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox_events SET attempts = $1, next_attempt_at = $2, last_error = $3, updated_at = NOW() WHERE id = $4`,
		attempts, next, lastErr, id)
	if err != nil {
		return fmt.Errorf("mark outbox event retry: %w", err)
	}
	return nil
}

func (r *OutboxRepo) MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox_events SET status = 'FAILED', attempts = $1, last_error = $2, updated_at = NOW() WHERE id = $3`,
		attempts, lastErr, id)
	if err != nil {
		return fmt.Errorf("mark outbox event failed: %w", err)
	}
	return nil
}
