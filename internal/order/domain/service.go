package domain

import (
	"context"
	"errors"

	customerdomain "github.com/Kiranppatil21/glass/internal/customer/domain"
	"github.com/Kiranppatil21/glass/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound              = errors.New("order_not_found")
	ErrCustomerNameRequired  = errors.New("customer_name_required")
	ErrCustomerPhoneRequired = errors.New("customer_phone_required")
	ErrNothingToPay          = errors.New("nothing_to_pay")
	ErrDuplicateOrderNumber  = errors.New("duplicate_order_number")
	ErrForbidden             = errors.New("order_forbidden")
	ErrInvalidLeg            = errors.New("invalid_payment_leg")
)

type CreateOrderRequest struct {
	UserID snowflake.ID
	Role   string

	// CustomerProfileID links the order to the customer master; when set the
	// profile supplies identity, billing and credit fields.
	CustomerProfileID *snowflake.ID
	CustomerName      string
	CustomerEmail     string
	CustomerPhone     string
	CompanyName       string
	GSTIN             string
	PlaceOfSupply     string
	IsCreditCustomer  bool

	GlassItems []GlassItem

	BillingAddress    *customerdomain.Address
	DeliveryAddress   *customerdomain.Address
	ShippingAddressID string
	DeliveryType      string
	Notes             string

	AdvancePercent *int
}

type CreateOrderResponse struct {
	Order           *Order
	RazorpayOrderID string
	RazorpayKey     string
	// Warning is set when the gateway could not issue a payment link; the
	// order itself was still created.
	Warning string
}

type VerifyPaymentRequest struct {
	OrderID           snowflake.ID
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
}

type InitiateRemainingPaymentResponse struct {
	RazorpayOrderID string
	RazorpayKey     string
	Amount          decimal.Decimal
	OrderNumber     string
}

type MarkCashReceivedRequest struct {
	OrderID    snowflake.ID
	Leg        Leg
	Amount     decimal.Decimal
	Role       string
	ReceivedBy string
}

type ListOrdersRequest struct {
	UserID snowflake.ID
	Page   pagination.Pagination
}

// Service drives the order lifecycle: creation with pricing, advance policy
// and credit checks, and the payment state machine for both legs.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error)
	VerifyAdvancePayment(ctx context.Context, req VerifyPaymentRequest) (*Order, error)
	InitiateRemainingPayment(ctx context.Context, orderID snowflake.ID) (*InitiateRemainingPaymentResponse, error)
	VerifyRemainingPayment(ctx context.Context, req VerifyPaymentRequest) (*Order, error)
	MarkCashReceived(ctx context.Context, req MarkCashReceivedRequest) (*Order, error)
	ListByUser(ctx context.Context, req ListOrdersRequest) ([]Order, error)
	// Track resolves an order by id or order number for public tracking.
	Track(ctx context.Context, ref string) (*Order, error)
}
