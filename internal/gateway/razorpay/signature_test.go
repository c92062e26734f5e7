package razorpay

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "test_secret"
	sig := Sign(secret, "order_abc", "pay_xyz")

	assert.NoError(t, verify(secret, "order_abc", "pay_xyz", sig))
	assert.ErrorIs(t, verify(secret, "order_abc", "pay_other", sig), ErrSignatureMismatch)
	assert.ErrorIs(t, verify(secret, "order_abc", "pay_xyz", "deadbeef"), ErrSignatureMismatch)
	assert.ErrorIs(t, verify("other_secret", "order_abc", "pay_xyz", sig), ErrSignatureMismatch)
}

func TestPaise(t *testing.T) {
	assert.Equal(t, int64(590000), Paise(decimal.NewFromFloat(5900)))
	assert.Equal(t, int64(10001), Paise(decimal.NewFromFloat(100.01)))
	assert.Equal(t, int64(0), Paise(decimal.Zero))
}
