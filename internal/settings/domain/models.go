package domain

import (
	"context"
	"time"

	"github.com/Kiranppatil21/glass/internal/config"
	"gorm.io/datatypes"
)

const TypeAdvanceSettings = "advance_settings"

// Setting is a keyed configuration document stored alongside business data so
// operators can adjust policy without a redeploy.
type Setting struct {
	Type      string         `gorm:"primaryKey;type:text" json:"type"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Setting) TableName() string { return "settings" }

type Service interface {
	// AdvancePolicy returns the stored advance policy, falling back to the
	// file/config defaults when no row exists.
	AdvancePolicy(ctx context.Context) (config.AdvancePolicy, error)
}
