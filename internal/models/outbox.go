package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncActionType identifies what a sync outbox entry does to the catalog
type SyncActionType string

const (
	SyncActionInsert     SyncActionType = "insert"
	SyncActionUpdate     SyncActionType = "update"
	SyncActionDeactivate SyncActionType = "deactivate"
	SyncActionDelete     SyncActionType = "delete"
)

// SyncActionStatus is the replay state of an outbox entry
type SyncActionStatus string

const (
	SyncActionPending SyncActionStatus = "PENDING"
	SyncActionApplied SyncActionStatus = "APPLIED"
	SyncActionFailed  SyncActionStatus = "FAILED"
)

// SyncAction is one entry in the append-only sync outbox. Every catalog
// mutation made by a confirmed import sync (and every missing-product
// disposition) is journaled here before it is considered durable. The Key
// is unique, so replaying the same action is a no-op.
type SyncAction struct {
	ID         uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID   string           `json:"tenantId" gorm:"not null;index:idx_sync_actions_tenant"`
	Key        string           `json:"key" gorm:"not null;uniqueIndex:idx_sync_actions_key"`
	ActionType SyncActionType   `json:"actionType" gorm:"not null"`
	SKU        string           `json:"sku" gorm:"not null;index"`
	Payload    JSON             `json:"payload" gorm:"type:jsonb"`
	Status     SyncActionStatus `json:"status" gorm:"not null;default:'PENDING';index:idx_sync_actions_status"`
	Attempts   int              `json:"attempts" gorm:"not null;default:0"`
	LastError  *string          `json:"lastError,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	AppliedAt  *time.Time       `json:"appliedAt,omitempty"`
}

// TableName returns the table name for the SyncAction model
func (SyncAction) TableName() string {
	return "sync_actions"
}

// SyncActionKey builds the idempotent replay key for an outbox entry.
// batchChecksum identifies one import run, so re-confirming the same file
// produces the same keys and the unique index absorbs the duplicates.
func SyncActionKey(tenantID string, action SyncActionType, sku, batchChecksum string) string {
	return fmt.Sprintf("%s:%s:%s:%s", tenantID, action, sku, batchChecksum)
}
