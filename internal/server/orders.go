package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	customerdomain "github.com/Kiranppatil21/glass/internal/customer/domain"
	orderdomain "github.com/Kiranppatil21/glass/internal/order/domain"
	"github.com/Kiranppatil21/glass/pkg/db/pagination"
)

type createOrderRequest struct {
	CustomerProfileID string `json:"customer_profile_id,omitempty"`
	CustomerName      string `json:"customer_name"`
	CustomerEmail     string `json:"customer_email,omitempty"`
	CustomerPhone     string `json:"customer_phone"`
	CompanyName       string `json:"company_name,omitempty"`
	GSTIN             string `json:"gstin,omitempty"`
	PlaceOfSupply     string `json:"place_of_supply,omitempty"`
	IsCreditCustomer  bool   `json:"is_credit_customer,omitempty"`

	GlassItems []orderdomain.GlassItem `json:"glass_items"`

	BillingAddress    *customerdomain.Address `json:"billing_address,omitempty"`
	DeliveryAddress   *customerdomain.Address `json:"delivery_address,omitempty"`
	ShippingAddressID string                  `json:"shipping_address_id,omitempty"`
	DeliveryType      string                  `json:"delivery_type,omitempty"`
	Notes             string                  `json:"notes,omitempty"`

	AdvancePercent *int `json:"advance_percent,omitempty"`
}

type orderPaymentContext struct {
	Order           *orderdomain.Order `json:"order"`
	RazorpayOrderID string             `json:"razorpay_order_id,omitempty"`
	RazorpayKey     string             `json:"razorpay_key,omitempty"`
	Warning         string             `json:"warning,omitempty"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var profileID *snowflake.ID
	if raw := strings.TrimSpace(req.CustomerProfileID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("customer_profile_id", "invalid_customer_profile_id", "invalid customer profile id"))
			return
		}
		profileID = &id
	}

	ident := currentIdentity(c)
	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateOrderRequest{
		UserID:            ident.UserID,
		Role:              ident.Role,
		CustomerProfileID: profileID,
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerEmail:     strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:     strings.TrimSpace(req.CustomerPhone),
		CompanyName:       strings.TrimSpace(req.CompanyName),
		GSTIN:             strings.TrimSpace(req.GSTIN),
		PlaceOfSupply:     strings.TrimSpace(req.PlaceOfSupply),
		IsCreditCustomer:  req.IsCreditCustomer,
		GlassItems:        req.GlassItems,
		BillingAddress:    req.BillingAddress,
		DeliveryAddress:   req.DeliveryAddress,
		ShippingAddressID: strings.TrimSpace(req.ShippingAddressID),
		DeliveryType:      strings.TrimSpace(req.DeliveryType),
		Notes:             strings.TrimSpace(req.Notes),
		AdvancePercent:    req.AdvancePercent,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orderPaymentContext{
		Order:           resp.Order,
		RazorpayOrderID: resp.RazorpayOrderID,
		RazorpayKey:     resp.RazorpayKey,
		Warning:         resp.Warning,
	}})
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

func (s *Server) VerifyAdvancePayment(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.orderSvc.VerifyAdvancePayment(c.Request.Context(), orderdomain.VerifyPaymentRequest{
		OrderID:           orderID,
		RazorpayOrderID:   strings.TrimSpace(req.RazorpayOrderID),
		RazorpayPaymentID: strings.TrimSpace(req.RazorpayPaymentID),
		RazorpaySignature: strings.TrimSpace(req.RazorpaySignature),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) InitiateRemainingPayment(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	resp, err := s.orderSvc.InitiateRemainingPayment(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VerifyRemainingPayment(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.orderSvc.VerifyRemainingPayment(c.Request.Context(), orderdomain.VerifyPaymentRequest{
		OrderID:           orderID,
		RazorpayOrderID:   strings.TrimSpace(req.RazorpayOrderID),
		RazorpayPaymentID: strings.TrimSpace(req.RazorpayPaymentID),
		RazorpaySignature: strings.TrimSpace(req.RazorpaySignature),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

type markCashReceivedRequest struct {
	Leg    string `json:"leg"`
	Amount string `json:"amount"`
}

func (s *Server) MarkCashReceived(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req markCashReceivedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "invalid amount"))
		return
	}

	ident := currentIdentity(c)
	order, err := s.orderSvc.MarkCashReceived(c.Request.Context(), orderdomain.MarkCashReceivedRequest{
		OrderID:    orderID,
		Leg:        orderdomain.Leg(strings.TrimSpace(req.Leg)),
		Amount:     amount,
		Role:       ident.Role,
		ReceivedBy: ident.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) ListMyOrders(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ident := currentIdentity(c)
	orders, err := s.orderSvc.ListByUser(c.Request.Context(), orderdomain.ListOrdersRequest{
		UserID: ident.UserID,
		Page:   page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": orders,
		"page_info": pagination.PageInfo{
			Page:     page.Page,
			PageSize: page.Limit(),
			HasMore:  len(orders) == page.Limit(),
		},
	})
}

func (s *Server) TrackOrder(c *gin.Context) {
	order, err := s.orderSvc.Track(c.Request.Context(), c.Param("ref"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Tracking is public; the contact email stays private.
	tracked := *order
	tracked.CustomerEmail = ""
	c.JSON(http.StatusOK, gin.H{"data": tracked})
}

// parseAmount accepts a decimal string; an empty value lets the service fall
// back to the leg amount.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidRequest
	}
	return amount, nil
}

func orderIDParam(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_order_id", "invalid order id"))
		return 0, false
	}
	return id, true
}
