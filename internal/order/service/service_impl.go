package service

import (
	"context"
	"strings"
	"time"

	"github.com/Kiranppatil21/glass/internal/advance"
	"github.com/Kiranppatil21/glass/internal/clock"
	"github.com/Kiranppatil21/glass/internal/config"
	"github.com/Kiranppatil21/glass/internal/credit"
	customerdomain "github.com/Kiranppatil21/glass/internal/customer/domain"
	"github.com/Kiranppatil21/glass/internal/gateway/razorpay"
	ledgerdomain "github.com/Kiranppatil21/glass/internal/ledger/domain"
	"github.com/Kiranppatil21/glass/internal/metrics"
	"github.com/Kiranppatil21/glass/internal/order/domain"
	"github.com/Kiranppatil21/glass/internal/pricing"
	settingsdomain "github.com/Kiranppatil21/glass/internal/settings/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cashRoles may record cash payments administratively.
var cashRoles = map[string]struct{}{
	"admin":       {},
	"super_admin": {},
	"owner":       {},
	"accountant":  {},
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Cfg         config.Config
	Repo        domain.Repository
	CustomerSvc customerdomain.Service
	SettingsSvc settingsdomain.Service
	Guard       *credit.Guard
	Gateway     razorpay.Client
	Ledger      ledgerdomain.Recorder
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	cfg         config.Config
	repo        domain.Repository
	customerSvc customerdomain.Service
	settingsSvc settingsdomain.Service
	guard       *credit.Guard
	gateway     razorpay.Client
	ledger      ledgerdomain.Recorder
	metrics     *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		cfg:         p.Cfg,
		repo:        p.Repo,
		customerSvc: p.CustomerSvc,
		settingsSvc: p.SettingsSvc,
		guard:       p.Guard,
		gateway:     p.Gateway,
		ledger:      p.Ledger,
		metrics:     p.Metrics,
	}
}

// customerSnapshot is the identity and credit view copied onto the order at
// creation time.
type customerSnapshot struct {
	profile *customerdomain.CustomerProfile

	name          string
	email         string
	phone         string
	companyName   string
	gstin         string
	placeOfSupply string
	invoiceType   customerdomain.InvoiceType

	billingAddress  *customerdomain.Address
	deliveryAddress *customerdomain.Address

	isCreditCustomer bool
	creditLimit      decimal.Decimal
	creditDays       int
}

// resolveCustomer builds the snapshot, preferring profile fields over the
// request when a profile is linked. Manual entry stays possible for walk-in
// orders without a profile.
func (s *Service) resolveCustomer(ctx context.Context, req domain.CreateOrderRequest) (*customerSnapshot, error) {
	snap := &customerSnapshot{
		name:            req.CustomerName,
		email:           req.CustomerEmail,
		phone:           req.CustomerPhone,
		companyName:     req.CompanyName,
		gstin:           req.GSTIN,
		placeOfSupply:   req.PlaceOfSupply,
		invoiceType:     customerdomain.InvoiceTypeB2C,
		billingAddress:  req.BillingAddress,
		deliveryAddress: req.DeliveryAddress,
	}
	if req.GSTIN != "" {
		snap.invoiceType = customerdomain.InvoiceTypeB2B
	}

	if req.CustomerProfileID == nil {
		// No profile means no outstanding to check against, but the flag
		// still selects the credit advance tiers.
		snap.isCreditCustomer = req.IsCreditCustomer
		return snap, nil
	}

	profile, err := s.customerSvc.GetActiveProfile(ctx, *req.CustomerProfileID)
	if err != nil {
		return nil, err
	}
	snap.profile = profile
	snap.name = firstNonEmpty(profile.DisplayName, req.CustomerName)
	snap.email = firstNonEmpty(profile.Email, req.CustomerEmail)
	snap.phone = firstNonEmpty(profile.Mobile, req.CustomerPhone)
	snap.companyName = firstNonEmpty(profile.CompanyName, req.CompanyName)
	snap.gstin = firstNonEmpty(profile.GSTIN, req.GSTIN)
	snap.placeOfSupply = firstNonEmpty(profile.PlaceOfSupply, req.PlaceOfSupply)
	snap.invoiceType = profile.InvoiceType
	snap.isCreditCustomer = profile.IsCreditCustomer()
	snap.creditLimit = profile.CreditLimit
	snap.creditDays = profile.CreditDays

	if profile.BillingAddress != nil {
		snap.billingAddress = profile.BillingAddress
	}
	if req.ShippingAddressID != "" {
		if site := profile.ShippingAddressByID(req.ShippingAddressID); site != nil {
			addr := site.Address
			snap.deliveryAddress = &addr
		}
	}
	if snap.deliveryAddress == nil {
		snap.deliveryAddress = snap.billingAddress
	}
	return snap, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (*domain.CreateOrderResponse, error) {
	snapshot, err := s.resolveCustomer(ctx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(snapshot.name) == "" {
		return nil, domain.ErrCustomerNameRequired
	}
	if strings.TrimSpace(snapshot.phone) == "" {
		return nil, domain.ErrCustomerPhoneRequired
	}

	quote, err := pricing.Price(toPricingLines(req.GlassItems))
	if err != nil {
		return nil, err
	}

	policy, err := s.settingsSvc.AdvancePolicy(ctx)
	if err != nil {
		return nil, err
	}
	percent, err := advance.Resolve(policy, advance.Request{
		RequestedPercent: req.AdvancePercent,
		IsCreditCustomer: snapshot.isCreditCustomer,
		Role:             req.Role,
	})
	if err != nil {
		return nil, err
	}

	// The credit check and the order insert must not interleave with another
	// order for the same customer.
	if snapshot.isCreditCustomer && snapshot.profile != nil {
		release := s.guard.Acquire(snapshot.profile.ID)
		defer release()
		if err := s.guard.Check(ctx, snapshot.profile.ID, quote.Total, snapshot.creditLimit); err != nil {
			return nil, err
		}
	}

	advanceAmount, remainingAmount := pricing.SplitAdvance(quote.Total, percent)

	now := s.clock.Now()
	order := &domain.Order{
		ID:     s.genID.Generate(),
		UserID: req.UserID,

		CustomerProfileID: req.CustomerProfileID,
		CustomerName:      snapshot.name,
		CustomerEmail:     snapshot.email,
		CustomerPhone:     snapshot.phone,
		CompanyName:       snapshot.companyName,
		GSTIN:             snapshot.gstin,
		InvoiceType:       snapshot.invoiceType,
		PlaceOfSupply:     snapshot.placeOfSupply,

		BillingAddress:  snapshot.billingAddress,
		DeliveryAddress: snapshot.deliveryAddress,
		DeliveryType:    deliveryTypeOrDefault(req.DeliveryType),

		GlassItems: req.GlassItems,
		TotalSqft:  quote.TotalSqft,
		Subtotal:   quote.Subtotal,
		TaxRate:    quote.TaxRate,
		TaxAmount:  quote.TaxAmount,
		TotalPrice: quote.Total,

		AdvancePercent:  percent,
		AdvanceAmount:   advanceAmount,
		RemainingAmount: remainingAmount,

		IsCreditCustomer: snapshot.isCreditCustomer,
		CreditLimit:      snapshot.creditLimit,
		CreditDays:       snapshot.creditDays,

		PaymentStatus:     domain.PaymentStatusPending,
		FulfillmentStatus: domain.FulfillmentStatusPending,

		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	number, err := s.repo.NextOrderNumber(ctx, s.db, s.cfg.OrderNumberPrefix, now)
	if err != nil {
		return nil, err
	}
	order.OrderNumber = number

	// A gateway outage degrades to "order created, no payment link"; it never
	// fails the order.
	warning := ""
	if advanceAmount.IsPositive() {
		gwOrder, err := s.gateway.CreateOrder(ctx, razorpay.CreateOrderRequest{
			AmountPaise: razorpay.Paise(advanceAmount),
			Currency:    s.cfg.Currency,
			Receipt:     number,
			Notes: map[string]string{
				"order_id": order.ID.String(),
				"type":     string(domain.LegAdvance),
			},
		})
		if err != nil {
			warning = "payment link unavailable, retry from the order page"
			s.log.Warn("gateway order creation failed during order create",
				zap.String("order_number", number),
				zap.Error(err),
			)
		} else {
			order.RazorpayOrderID = gwOrder.ID
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, order); err != nil {
			return err
		}
		return s.ledger.Enqueue(ctx, tx, ledgerdomain.PostingRequest{
			EntryType:       ledgerdomain.EntryTypeSalesInvoice,
			ReferenceID:     order.ID.String(),
			ReferenceNumber: order.OrderNumber,
			PartyID:         s.partyID(order),
			PartyName:       order.CustomerName,
			Amount:          order.Subtotal,
			TaxAmount:       order.TaxAmount,
			Narration:       "Sales Order " + order.OrderNumber,
			TransactionDate: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		class := "normal"
		if order.IsCreditCustomer {
			class = "credit"
		}
		s.metrics.OrdersCreated.WithLabelValues(class).Inc()
	}
	s.log.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalPrice.StringFixed(2)),
		zap.Int("advance_percent", order.AdvancePercent),
	)

	return &domain.CreateOrderResponse{
		Order:           order,
		RazorpayOrderID: order.RazorpayOrderID,
		RazorpayKey:     s.gateway.KeyID(),
		Warning:         warning,
	}, nil
}

func (s *Service) VerifyAdvancePayment(ctx context.Context, req domain.VerifyPaymentRequest) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, s.db, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	// Write-once guard: a leg with a recorded payment id is settled; a retry
	// of the same callback is a no-op success.
	if order.AdvancePaid() {
		return order, nil
	}

	if err := s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	fields := advancePaidFields(order, now, domain.PaymentMethodRazorpay)
	fields["razorpay_payment_id"] = req.RazorpayPaymentID

	if err := s.settleLeg(ctx, order, domain.LegAdvance, order.AdvanceAmount, fields, now); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.PaymentsVerified.WithLabelValues(string(domain.LegAdvance), string(domain.PaymentMethodRazorpay)).Inc()
	}
	return s.repo.FindByID(ctx, s.db, req.OrderID)
}

func (s *Service) InitiateRemainingPayment(ctx context.Context, orderID snowflake.ID) (*domain.InitiateRemainingPaymentResponse, error) {
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !order.RemainingAmount.IsPositive() {
		return nil, domain.ErrNothingToPay
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, razorpay.CreateOrderRequest{
		AmountPaise: razorpay.Paise(order.RemainingAmount),
		Currency:    s.cfg.Currency,
		Receipt:     order.OrderNumber + "-REM",
		Notes: map[string]string{
			"order_id": order.ID.String(),
			"type":     string(domain.LegRemaining),
		},
	})
	if err != nil {
		return nil, err
	}

	err = s.repo.UpdateFields(ctx, s.db, order.ID, map[string]any{
		"remaining_razorpay_order_id": gwOrder.ID,
	})
	if err != nil {
		return nil, err
	}

	return &domain.InitiateRemainingPaymentResponse{
		RazorpayOrderID: gwOrder.ID,
		RazorpayKey:     s.gateway.KeyID(),
		Amount:          order.RemainingAmount,
		OrderNumber:     order.OrderNumber,
	}, nil
}

func (s *Service) VerifyRemainingPayment(ctx context.Context, req domain.VerifyPaymentRequest) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, s.db, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.RemainingPaid() {
		return order, nil
	}

	if err := s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	paidAmount := order.RemainingAmount
	fields := remainingPaidFields(now, domain.PaymentMethodRazorpay)
	fields["remaining_razorpay_payment_id"] = req.RazorpayPaymentID

	if err := s.settleLeg(ctx, order, domain.LegRemaining, paidAmount, fields, now); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.PaymentsVerified.WithLabelValues(string(domain.LegRemaining), string(domain.PaymentMethodRazorpay)).Inc()
	}
	return s.repo.FindByID(ctx, s.db, req.OrderID)
}

func (s *Service) MarkCashReceived(ctx context.Context, req domain.MarkCashReceivedRequest) (*domain.Order, error) {
	if _, ok := cashRoles[req.Role]; !ok {
		return nil, domain.ErrForbidden
	}

	order, err := s.repo.FindByID(ctx, s.db, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	now := s.clock.Now()
	var fields map[string]any
	var legAmount = order.AdvanceAmount
	switch req.Leg {
	case domain.LegAdvance:
		if order.AdvancePaid() {
			return order, nil
		}
		fields = advancePaidFields(order, now, domain.PaymentMethodCash)
	case domain.LegRemaining:
		if order.RemainingPaid() {
			return order, nil
		}
		legAmount = order.RemainingAmount
		fields = remainingPaidFields(now, domain.PaymentMethodCash)
	default:
		return nil, domain.ErrInvalidLeg
	}

	received := req.Amount
	if received.IsZero() {
		received = legAmount
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := s.repo.ClaimPaymentLeg(ctx, tx, order.ID, req.Leg, fields)
		if err != nil {
			return err
		}
		if !claimed {
			return nil
		}
		if err := s.repo.RecordCashPayment(ctx, tx, &domain.CashPayment{
			ID:          s.genID.Generate(),
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Leg:         req.Leg,
			Amount:      received,
			ReceivedBy:  req.ReceivedBy,
			ReceivedAt:  now,
		}); err != nil {
			return err
		}
		return s.enqueuePaymentPosting(ctx, tx, order, req.Leg, legAmount, now)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PaymentsVerified.WithLabelValues(string(req.Leg), string(domain.PaymentMethodCash)).Inc()
	}
	return s.repo.FindByID(ctx, s.db, req.OrderID)
}

func (s *Service) ListByUser(ctx context.Context, req domain.ListOrdersRequest) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, s.db, req.UserID, req.Page)
}

func (s *Service) Track(ctx context.Context, ref string) (*domain.Order, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.ErrNotFound
	}
	order, err := s.repo.FindByRef(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// settleLeg applies the leg's state transition and queues the ledger posting
// in one transaction. Losing the claim means a concurrent settlement already
// landed; that is a success for the caller.
func (s *Service) settleLeg(ctx context.Context, order *domain.Order, leg domain.Leg, amount decimal.Decimal, fields map[string]any, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := s.repo.ClaimPaymentLeg(ctx, tx, order.ID, leg, fields)
		if err != nil {
			return err
		}
		if !claimed {
			return nil
		}
		return s.enqueuePaymentPosting(ctx, tx, order, leg, amount, now)
	})
}

func (s *Service) enqueuePaymentPosting(ctx context.Context, tx *gorm.DB, order *domain.Order, leg domain.Leg, amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return nil
	}
	suffix, narration := "-ADV", "Advance Payment for Order "
	if leg == domain.LegRemaining {
		suffix, narration = "-REM", "Remaining Payment for Order "
	}
	return s.ledger.Enqueue(ctx, tx, ledgerdomain.PostingRequest{
		EntryType:       ledgerdomain.EntryTypePaymentReceived,
		ReferenceID:     order.ID.String() + "-" + string(leg),
		ReferenceNumber: "RCP-" + order.OrderNumber + suffix,
		PartyID:         s.partyID(order),
		PartyName:       order.CustomerName,
		Amount:          amount,
		Narration:       narration + order.OrderNumber,
		TransactionDate: now,
	})
}

func (s *Service) partyID(order *domain.Order) string {
	if order.CustomerProfileID != nil {
		return order.CustomerProfileID.String()
	}
	return order.UserID.String()
}

func advancePaidFields(order *domain.Order, now time.Time, method domain.PaymentMethod) map[string]any {
	status := domain.PaymentStatusPartial
	if !order.RemainingAmount.IsPositive() {
		status = domain.PaymentStatusCompleted
	}
	return map[string]any{
		"payment_status":         string(status),
		"fulfillment_status":     string(domain.FulfillmentStatusProcessing),
		"advance_paid_at":        now,
		"advance_payment_method": string(method),
	}
}

func remainingPaidFields(now time.Time, method domain.PaymentMethod) map[string]any {
	return map[string]any{
		"remaining_amount":         decimal.Zero,
		"payment_status":           string(domain.PaymentStatusCompleted),
		"remaining_paid_at":        now,
		"remaining_payment_method": string(method),
	}
}

func deliveryTypeOrDefault(deliveryType string) string {
	if strings.TrimSpace(deliveryType) == "" {
		return "standard"
	}
	return deliveryType
}

func toPricingLines(items []domain.GlassItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.Line{
			Quantity:   item.Quantity,
			Width:      item.Width,
			Height:     item.Height,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	return lines
}
