package domain

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

func newULID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy).String()
}

// NewTransactionRef returns a unique, time-sortable transaction reference.
func NewTransactionRef() string {
	return "TXN-" + newULID()
}

// NewRateLockID returns an opaque rate-lock identifier.
func NewRateLockID() string {
	return "LOCK-" + newULID()
}

// NewEventID returns an outbox event identifier.
func NewEventID() string {
	return newULID()
}
