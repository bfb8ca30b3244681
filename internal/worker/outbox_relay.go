package worker

import (
	"context"
	"fmt"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// relayBackoff is the wait before each retry. An event that still fails
// after the last one is marked FAILED.
var relayBackoff = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

const defaultRelayBatch = 100

var relayedEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "outbox_events_relayed_total",
		Help: "Outbox events by delivery result",
	},
	[]string{"event_type", "result"},
)

// OutboxRelay publishes due outbox events and schedules retries.
type OutboxRelay struct {
	repo      ports.OutboxRepository
	publisher ports.EventPublisher
	batchSize int
	now       func() time.Time
	log       zerolog.Logger
}

func NewOutboxRelay(repo ports.OutboxRepository, publisher ports.EventPublisher, batchSize int, log zerolog.Logger) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = defaultRelayBatch
	}
	return &OutboxRelay{
		repo:      repo,
		publisher: publisher,
		batchSize: batchSize,
		now:       time.Now,
		log:       log,
	}
}

// RelayOnce publishes one batch of due events and returns how many were sent.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	now := r.now().UTC()
	events, err := r.repo.FetchDue(ctx, now, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetching due outbox events: %w", err)
	}

	sent := 0
	for _, event := range events {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if err := r.publisher.Publish(ctx, event); err != nil {
			r.reschedule(ctx, event, now, err)
			continue
		}
		if err := r.repo.MarkSent(ctx, event.ID); err != nil {
			// Published but not marked: the event goes out again on the next run.
			r.log.Error().Err(err).Str("event_id", event.ID).Msg("outbox: failed to mark event sent")
			continue
		}
		relayedEvents.WithLabelValues(event.EventType, "sent").Inc()
		sent++
	}

	if sent > 0 {
		r.log.Debug().Int("sent", sent).Int("due", len(events)).Msg("outbox: batch relayed")
	}
	return sent, nil
}

// Tick adapts RelayOnce to an IntervalJob iteration.
func (r *OutboxRelay) Tick(ctx context.Context) error {
	_, err := r.RelayOnce(ctx)
	return err
}

func (r *OutboxRelay) reschedule(ctx context.Context, event domain.OutboxEvent, now time.Time, pubErr error) {
	attempts := event.Attempts + 1
	log := r.log.With().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("key", event.Key).
		Int("attempt", attempts).
		Logger()

	if attempts > len(relayBackoff) {
		if err := r.repo.MarkFailed(ctx, event.ID, attempts, pubErr.Error()); err != nil {
			log.Error().Err(err).Msg("outbox: failed to mark event failed")
		}
		relayedEvents.WithLabelValues(event.EventType, "failed").Inc()
		log.Error().Err(pubErr).Msg("outbox: all retry attempts exhausted")
		return
	}

	next := now.Add(relayBackoff[attempts-1])
	if err := r.repo.MarkRetry(ctx, event.ID, attempts, next, pubErr.Error()); err != nil {
		log.Error().Err(err).Msg("outbox: failed to schedule retry")
	}
	relayedEvents.WithLabelValues(event.EventType, "retry").Inc()
	log.Warn().Err(pubErr).Time("next_attempt_at", next).Msg("outbox: delivery failed, retrying")
}
