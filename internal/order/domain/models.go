package domain

import (
	"time"

	customerdomain "github.com/Kiranppatil21/glass/internal/customer/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PaymentStatus only moves forward: pending -> partial -> completed, or
// straight to completed when the advance covers the full amount.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusCompleted PaymentStatus = "completed"
)

type FulfillmentStatus string

const (
	FulfillmentStatusPending    FulfillmentStatus = "pending"
	FulfillmentStatusProcessing FulfillmentStatus = "processing"
	FulfillmentStatusDispatched FulfillmentStatus = "dispatched"
	FulfillmentStatusDelivered  FulfillmentStatus = "delivered"
	FulfillmentStatusCancelled  FulfillmentStatus = "cancelled"
)

// Leg is one of the two payment collection phases of an order.
type Leg string

const (
	LegAdvance   Leg = "advance"
	LegRemaining Leg = "remaining"
)

type PaymentMethod string

const (
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodCash     PaymentMethod = "cash"
)

// GlassItem is a single made-to-order pane position. Dimensions are inches,
// thickness is millimetres.
type GlassItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Thickness   decimal.Decimal `json:"thickness"`
	Width       decimal.Decimal `json:"width"`
	Height      decimal.Decimal `json:"height"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Edging      string          `json:"edging,omitempty"`
	Tempering   bool            `json:"tempering"`
	Lamination  bool            `json:"lamination"`
	Notes       string          `json:"notes,omitempty"`
}

// Order is the central entity. Identity, line items and totals are immutable
// after creation; only payment-state transitions and fulfillment-stage
// updates mutate it, and it is never physically deleted.
type Order struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderNumber string       `gorm:"type:text;not null;uniqueIndex" json:"order_number"`

	UserID            snowflake.ID  `gorm:"not null;index" json:"user_id"`
	CustomerProfileID *snowflake.ID `gorm:"index" json:"customer_profile_id,omitempty"`

	CustomerName  string                     `gorm:"type:text;not null" json:"customer_name"`
	CustomerEmail string                     `gorm:"type:text" json:"customer_email,omitempty"`
	CustomerPhone string                     `gorm:"type:text;not null" json:"customer_phone"`
	CompanyName   string                     `gorm:"type:text" json:"company_name,omitempty"`
	GSTIN         string                     `gorm:"column:gstin;type:text" json:"gstin,omitempty"`
	InvoiceType   customerdomain.InvoiceType `gorm:"type:text;not null;default:'B2C'" json:"invoice_type"`
	PlaceOfSupply string                     `gorm:"type:text" json:"place_of_supply,omitempty"`

	BillingAddress  *customerdomain.Address `gorm:"serializer:json" json:"billing_address,omitempty"`
	DeliveryAddress *customerdomain.Address `gorm:"serializer:json" json:"delivery_address,omitempty"`
	DeliveryType    string                  `gorm:"type:text;not null;default:'standard'" json:"delivery_type"`

	GlassItems []GlassItem     `gorm:"serializer:json;not null" json:"glass_items"`
	TotalSqft  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_sqft"`
	Subtotal   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	TaxRate    decimal.Decimal `gorm:"type:numeric(5,4);not null" json:"tax_rate"`
	TaxAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"tax_amount"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_price"`

	AdvancePercent  int             `gorm:"not null" json:"advance_percent"`
	AdvanceAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"advance_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"remaining_amount"`

	IsCreditCustomer bool            `gorm:"not null;default:false" json:"is_credit_customer"`
	CreditLimit      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"credit_limit"`
	CreditDays       int             `gorm:"not null;default:0" json:"credit_days"`

	PaymentStatus     PaymentStatus     `gorm:"type:text;not null;default:'pending';index" json:"payment_status"`
	FulfillmentStatus FulfillmentStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	ProductionStage   string            `gorm:"type:text" json:"production_stage,omitempty"`

	// Gateway identifiers per leg. Payment ids are write-once: a recorded id
	// is never overwritten by a later verification call.
	RazorpayOrderID            string `gorm:"type:text" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID          string `gorm:"type:text" json:"razorpay_payment_id,omitempty"`
	RemainingRazorpayOrderID   string `gorm:"type:text" json:"remaining_razorpay_order_id,omitempty"`
	RemainingRazorpayPaymentID string `gorm:"type:text" json:"remaining_razorpay_payment_id,omitempty"`

	AdvancePaymentMethod   PaymentMethod `gorm:"type:text" json:"advance_payment_method,omitempty"`
	RemainingPaymentMethod PaymentMethod `gorm:"type:text" json:"remaining_payment_method,omitempty"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	AdvancePaidAt   *time.Time `json:"advance_paid_at,omitempty"`
	RemainingPaidAt *time.Time `json:"remaining_paid_at,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// AdvancePaid reports whether the advance leg has been settled.
func (o *Order) AdvancePaid() bool {
	return o.AdvancePaidAt != nil || o.RazorpayPaymentID != ""
}

// RemainingPaid reports whether the remaining leg has been settled.
func (o *Order) RemainingPaid() bool {
	return o.RemainingPaidAt != nil || o.RemainingRazorpayPaymentID != ""
}

// CashPayment is the audit record for an administratively recorded payment.
type CashPayment struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrderID     snowflake.ID    `gorm:"not null;index" json:"order_id"`
	OrderNumber string          `gorm:"type:text;not null" json:"order_number"`
	Leg         Leg             `gorm:"type:text;not null" json:"leg"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	ReceivedBy  string          `gorm:"type:text;not null" json:"received_by"`
	ReceivedAt  time.Time       `gorm:"not null" json:"received_at"`
}

// TableName sets the database table name.
func (CashPayment) TableName() string { return "cash_payments" }

// OrderCounter is the per-day sequence backing order numbers.
type OrderCounter struct {
	DayPrefix string `gorm:"primaryKey;type:text" json:"day_prefix"`
	Seq       int64  `gorm:"not null" json:"seq"`
}

// TableName sets the database table name.
func (OrderCounter) TableName() string { return "order_counters" }
