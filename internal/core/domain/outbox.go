package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutboxStatus represents the publication state of an event.
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
	OutboxStatusFailed  OutboxStatus = "FAILED"
)

// Event types published for downstream consumers (notifications, accounting).
const (
	EventCollectionInitiated = "collection.initiated"
	EventCollectionSettled   = "collection.settled"
	EventCollectionFailed    = "collection.failed"
	EventCollectionExpired   = "collection.expired"
	EventWithdrawalInitiated = "withdrawal.initiated"
	EventWithdrawalBatched   = "withdrawal.batched"
	EventWithdrawalCompleted = "withdrawal.completed"
	EventWithdrawalRejected  = "withdrawal.rejected"
	EventConversionExecuted  = "conversion.executed"
	EventSweepCompleted      = "segregation.swept"
	EventFundingRequested    = "segregation.funding_requested"
	EventFundingApproved     = "segregation.funding_approved"
	EventFundingRejected     = "segregation.funding_rejected"
	EventWalletFrozen        = "wallet.frozen"
	EventWalletUnfrozen      = "wallet.unfrozen"
)

// OutboxEvent is written in the same database transaction as the state
// change it describes and relayed to the event sink afterwards.
type OutboxEvent struct {
	ID            string       `json:"id"`
	AggregateID   uuid.UUID    `json:"aggregate_id"`
	EventType     string       `json:"event_type"`
	Key           string       `json:"key"`
	Payload       []byte       `json:"payload"`
	Status        OutboxStatus `json:"status"`
	Attempts      int          `json:"attempts"`
	NextAttemptAt time.Time    `json:"next_attempt_at"`
	LastError     *string      `json:"last_error,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TransactionEvent is the payload shape of every transaction event.
type TransactionEvent struct {
	EventType  string            `json:"event_type"`
	Ref        string            `json:"transaction_ref"`
	MerchantID uuid.UUID         `json:"merchant_id"`
	Type       TransactionType   `json:"type"`
	Status     TransactionStatus `json:"status"`
	Currency   Currency          `json:"currency"`
	Gross      decimal.Decimal   `json:"amount_gross"`
	Net        decimal.Decimal   `json:"amount_net"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewTransactionEvent builds a pending outbox event for a transaction.
func NewTransactionEvent(eventType string, t *Transaction) (*OutboxEvent, error) {
	now := time.Now().UTC()
	payload, err := json.Marshal(TransactionEvent{
		EventType:  eventType,
		Ref:        t.Ref,
		MerchantID: t.MerchantID,
		Type:       t.Type,
		Status:     t.Status,
		Currency:   t.Currency,
		Gross:      t.AmountGross,
		Net:        t.AmountNet,
		OccurredAt: now,
	})
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:            NewEventID(),
		AggregateID:   t.ID,
		EventType:     eventType,
		Key:           t.Ref,
		Payload:       payload,
		Status:        OutboxStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
