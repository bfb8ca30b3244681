package ports

//go:generate mockgen -source=infrastructure.go -destination=mocks/infrastructure.go -package=mocks

import (
	"context"
	"time"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EncryptionService handles AES-256-GCM encryption of sensitive columns.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// Roles carried in access tokens.
const (
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
)

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(subject string, role string, merchantID *uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject    string
	Role       string
	MerchantID uuid.UUID
}

// SettlementCache is the Redis fast path in front of the authoritative
// row-lock idempotency check for settlement callbacks.
type SettlementCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached value or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// NonceStore rejects replayed callbacks. CheckAndSet reports true only for
// the first use of a nonce within scope during ttl.
type NonceStore interface {
	CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error)
}

// RateSnapshotStore persists the last successful base rate across restarts.
type RateSnapshotStore interface {
	Save(ctx context.Context, snapshot domain.RateSnapshot) error
	Load(ctx context.Context) (*domain.RateSnapshot, error)
}

// RateSource fetches the market USD->CDF rate.
type RateSource interface {
	FetchUSDCDF(ctx context.Context) (decimal.Decimal, error)
}

// PaymentGateway asks an operator to collect funds from a customer. The
// outcome arrives later as a PaymentResult.
type PaymentGateway interface {
	RequestCollection(ctx context.Context, req GatewayCollection) (*GatewayAck, error)
}

type GatewayCollection struct {
	TransactionRef string
	Operator       domain.PaymentMethod
	Amount         decimal.Decimal
	Currency       domain.Currency
	CustomerPhone  string
	ExpiresAt      time.Time
}

type GatewayAck struct {
	ExternalRef string
}

// SettlementFileSink stores generated bank batch files.
type SettlementFileSink interface {
	Save(ctx context.Context, name string, content []byte) (string, error)
}

// EventPublisher delivers one outbox event to the event sink.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.OutboxEvent) error
	Close() error
}
