package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusPosted  OutboxStatus = "posted"
	OutboxStatusFailed  OutboxStatus = "failed"
)

// OutboxRow is a durably queued posting request. Rows share the entry
// idempotency key so a retried enqueue collapses onto the existing row.
type OutboxRow struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	EntryType   EntryType      `gorm:"type:text;not null;uniqueIndex:ux_ledger_outbox_ref,priority:2" json:"entry_type"`
	ReferenceID string         `gorm:"type:text;not null;uniqueIndex:ux_ledger_outbox_ref,priority:1" json:"reference_id"`
	Payload     datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	Status      OutboxStatus   `gorm:"type:text;not null;default:'pending';index" json:"status"`
	Attempts    int            `gorm:"not null;default:0" json:"attempts"`
	LastError   string         `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	PostedAt    *time.Time     `json:"posted_at,omitempty"`
}

// TableName sets the database table name.
func (OutboxRow) TableName() string { return "ledger_outbox" }
