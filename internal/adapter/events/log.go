package events

import (
	"context"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/rs/zerolog"
)

// LogPublisher writes events to the log. It is the default sink when no
// broker is configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.OutboxEvent) error {
	p.log.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("key", event.Key).
		RawJSON("payload", event.Payload).
		Msg("event published")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
