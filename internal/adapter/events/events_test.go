package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testEvent() domain.OutboxEvent {
	return domain.OutboxEvent{
		ID:          "01HZX0000000000000000000",
		AggregateID: uuid.New(),
		EventType:   domain.EventWithdrawalCompleted,
		Key:         "TXN-01HZX",
		Payload:     []byte(`{"transaction_ref":"TXN-01HZX","status":"success"}`),
		Status:      domain.OutboxStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, log: zerolog.Nop()}
	evt := testEvent()

	require.NoError(t, p.Publish(context.Background(), evt))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, evt.Key, string(w.msgs[0].Key))
	assert.Equal(t, evt.Payload, w.msgs[0].Value)
	assert.Equal(t, "event_type", w.msgs[0].Headers[1].Key)
	assert.Equal(t, evt.EventType, string(w.msgs[0].Headers[1].Value))

	w.err = errors.New("leader not available")
	assert.ErrorContains(t, p.Publish(context.Background(), evt), "leader not available")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "wallet.transactions", zerolog.Nop())
	kw, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "wallet.transactions", kw.Topic)
	assert.False(t, kw.Async)
	require.NoError(t, p.Close())
}

func TestWebhookPublisher_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	sig := mocks.NewMockSignatureService(ctrl)
	evt := testEvent()
	sig.EXPECT().Sign("whsec", string(evt.Payload)).Return("abc123")

	var got WebhookEnvelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "abc123", r.Header.Get("X-Signature"))
		assert.Equal(t, evt.ID, r.Header.Get("X-Event-Id"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, "whsec", sig, srv.Client(), zerolog.Nop())
	require.NoError(t, p.Publish(context.Background(), evt))

	assert.Equal(t, evt.EventType, got.EventType)
	assert.JSONEq(t, string(evt.Payload), string(got.Data))
	assert.Equal(t, "abc123", got.Signature)
	assert.NoError(t, p.Close())
}

type stubClient struct {
	status int
	err    error
}

func (s stubClient) Do(req *http.Request) (*http.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{StatusCode: s.status, Body: io.NopCloser(bytes.NewReader(nil))}, nil
}

func TestWebhookPublisher_Failures(t *testing.T) {
	tests := []struct {
		name   string
		client HTTPClient
	}{
		{"non-2xx", stubClient{status: http.StatusInternalServerError}},
		{"transport", stubClient{err: errors.New("connection refused")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sig := mocks.NewMockSignatureService(ctrl)
			sig.EXPECT().Sign(gomock.Any(), gomock.Any()).Return("s")

			p := NewWebhookPublisher("http://subscriber.invalid/hook", "k", sig, tt.client, zerolog.Nop())
			assert.Error(t, p.Publish(context.Background(), testEvent()))
		})
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))
	evt := testEvent()

	require.NoError(t, p.Publish(context.Background(), evt))
	assert.Contains(t, buf.String(), `"event_type":"withdrawal.completed"`)
	assert.Contains(t, buf.String(), `"payload":{"transaction_ref":"TXN-01HZX"`)
	assert.NoError(t, p.Close())
}
