package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Kiranppatil21/glass/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) Client {
	return NewClient(Params{
		Cfg: config.Config{
			RazorpayKeyID:     "rzp_test_key",
			RazorpayKeySecret: "rzp_test_secret",
			RazorpayBaseURL:   baseURL,
			RazorpayTimeout:   2 * time.Second,
		},
		Log: zap.NewNop(),
	})
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(590000), req.AmountPaise)
		assert.Equal(t, "INR", req.Currency)

		json.NewEncoder(w).Encode(Order{
			ID:          "order_rzp123",
			AmountPaise: req.AmountPaise,
			Currency:    req.Currency,
			Receipt:     req.Receipt,
			Status:      "created",
		})
	}))
	defer srv.Close()

	order, err := newTestClient(srv.URL).CreateOrder(context.Background(), CreateOrderRequest{
		AmountPaise: 590000,
		Currency:    "INR",
		Receipt:     "LG2602270001",
		Notes:       map[string]string{"type": "advance"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_rzp123", order.ID)
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateOrder(context.Background(), CreateOrderRequest{
		AmountPaise: 100,
		Currency:    "INR",
		Receipt:     "r1",
	})
	assert.ErrorIs(t, err, ErrGateway)
}

func TestCreateOrderUnconfigured(t *testing.T) {
	c := NewClient(Params{Cfg: config.Config{}, Log: zap.NewNop()})
	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{AmountPaise: 100, Currency: "INR"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
