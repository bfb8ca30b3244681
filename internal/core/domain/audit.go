package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionOpenWallet        AuditAction = "OPEN_WALLET"
	AuditActionFreezeWallet      AuditAction = "FREEZE_WALLET"
	AuditActionUnfreezeWallet    AuditAction = "UNFREEZE_WALLET"
	AuditActionVerifyBankAccount AuditAction = "VERIFY_BANK_ACCOUNT"
	AuditActionApproveFunding    AuditAction = "APPROVE_FUNDING"
	AuditActionRejectFunding     AuditAction = "REJECT_FUNDING"
	AuditActionAutoSweep         AuditAction = "AUTO_SWEEP"
	AuditActionGenerateBatch     AuditAction = "GENERATE_BATCH"
	AuditActionCompleteWithdraw  AuditAction = "COMPLETE_WITHDRAWAL"
	AuditActionRejectWithdraw    AuditAction = "REJECT_WITHDRAWAL"
	AuditActionRefreshRates      AuditAction = "REFRESH_RATES"
)

// AuditLog records a single administrative action.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	ActorID      string      `json:"actor_id"`
	MerchantID   *uuid.UUID  `json:"merchant_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
