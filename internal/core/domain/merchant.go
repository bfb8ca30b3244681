package domain

import (
	"time"

	"github.com/google/uuid"
)

type MerchantStatus string

const (
	MerchantStatusActive      MerchantStatus = "active"
	MerchantStatusSuspended   MerchantStatus = "suspended"
	MerchantStatusDeactivated MerchantStatus = "deactivated"
)

// Merchant is the onboarding directory's view of a business. The engine
// never writes it: it needs the contact email for bank files and the
// status to refuse money movement for suspended merchants.
type Merchant struct {
	ID           uuid.UUID
	Email        string
	BusinessName string
	Status       MerchantStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanMoveFunds is false for suspended and deactivated merchants.
func (m *Merchant) CanMoveFunds() bool {
	return m != nil && m.Status == MerchantStatusActive
}
