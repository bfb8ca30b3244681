package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookEnvelope is the JSON body POSTed to the subscriber.
type WebhookEnvelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Signature string          `json:"signature"`
}

// WebhookPublisher implements ports.EventPublisher by POSTing each event,
// signed with HMAC-SHA256 over the data, to one subscriber URL. Retries are
// the outbox relay's job.
type WebhookPublisher struct {
	url    string
	secret string
	sigSvc ports.SignatureService
	client HTTPClient
	log    zerolog.Logger
}

func NewWebhookPublisher(url, secret string, sigSvc ports.SignatureService, client HTTPClient, log zerolog.Logger) *WebhookPublisher {
	return &WebhookPublisher{url: url, secret: secret, sigSvc: sigSvc, client: client, log: log}
}

func (p *WebhookPublisher) Publish(ctx context.Context, event domain.OutboxEvent) error {
	ts := time.Now().Unix()
	envelope := WebhookEnvelope{
		EventID:   event.ID,
		EventType: event.EventType,
		Data:      event.Payload,
		Timestamp: ts,
		Signature: p.sigSvc.Sign(p.secret, string(event.Payload)),
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("webhook: marshal %s: %w", event.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Id", event.ID)
	req.Header.Set("X-Timestamp", strconv.FormatInt(ts, 10))
	req.Header.Set("X-Signature", envelope.Signature)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver %s: %w", event.ID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: %s answered %d", event.ID, resp.StatusCode)
	}

	p.log.Debug().Str("event_id", event.ID).Int("status", resp.StatusCode).Msg("webhook: delivered")
	return nil
}

func (p *WebhookPublisher) Close() error { return nil }
