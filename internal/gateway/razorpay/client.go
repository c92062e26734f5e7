package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Kiranppatil21/glass/internal/config"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("razorpay_not_configured")
	ErrGateway       = errors.New("razorpay_request_failed")
)

// Client creates payment-collection orders and verifies callback signatures.
type Client interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) error
	KeyID() string
}

type CreateOrderRequest struct {
	AmountPaise int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Receipt     string            `json:"receipt"`
	Notes       map[string]string `json:"notes,omitempty"`
}

// Order is the gateway's collection order for one payment leg.
type Order struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

// Paise converts a rupee amount to the gateway's integer minor unit.
func Paise(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
}

type client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
	log       *zap.Logger
}

func NewClient(p Params) Client {
	return &client{
		keyID:     p.Cfg.RazorpayKeyID,
		keySecret: p.Cfg.RazorpayKeySecret,
		baseURL:   p.Cfg.RazorpayBaseURL,
		http:      &http.Client{Timeout: p.Cfg.RazorpayTimeout},
		log:       p.Log.Named("gateway.razorpay"),
	}
}

func (c *client) KeyID() string { return c.keyID }

func (c *client) configured() bool {
	return c.keyID != "" && c.keySecret != ""
}

func (c *client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if !c.configured() {
		return nil, ErrNotConfigured
	}
	if req.AmountPaise <= 0 {
		return nil, fmt.Errorf("%w: non-positive amount %d", ErrGateway, req.AmountPaise)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("gateway order creation failed",
			zap.Int("status", resp.StatusCode),
			zap.String("receipt", req.Receipt),
		)
		return nil, fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return &order, nil
}
