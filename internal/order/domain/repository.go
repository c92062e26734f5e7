package domain

import (
	"context"
	"time"

	"github.com/Kiranppatil21/glass/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	// FindByRef resolves by id or by order number.
	FindByRef(ctx context.Context, db *gorm.DB, ref string) (*Order, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, page pagination.Pagination) ([]Order, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error

	// ClaimPaymentLeg applies fields only while the leg is still unsettled
	// (no recorded gateway payment id and no paid-at stamp), reporting
	// whether this call won the claim. A lost claim means a concurrent or
	// repeated settlement already landed and must be treated as a no-op.
	ClaimPaymentLeg(ctx context.Context, db *gorm.DB, id snowflake.ID, leg Leg, fields map[string]any) (bool, error)

	// OutstandingAmount sums remaining_amount over the profile's orders whose
	// payment_status is not completed.
	OutstandingAmount(ctx context.Context, db *gorm.DB, profileID snowflake.ID) (decimal.Decimal, error)

	// NextOrderNumber atomically assigns the next zero-padded sequence for
	// the given day, e.g. LG2602270001. Safe under concurrent creation.
	NextOrderNumber(ctx context.Context, db *gorm.DB, prefix string, day time.Time) (string, error)

	RecordCashPayment(ctx context.Context, db *gorm.DB, payment *CashPayment) error
}
