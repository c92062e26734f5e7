package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrSignatureMismatch = errors.New("payment_verification_failed")

// Sign computes the callback signature the gateway attaches to a captured
// payment: HMAC-SHA256 over "<order_id>|<payment_id>" with the key secret.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the callback signature and compares it in
// constant time.
func (c *client) VerifySignature(orderID, paymentID, signature string) error {
	if !c.configured() {
		return ErrNotConfigured
	}
	return verify(c.keySecret, orderID, paymentID, signature)
}

func verify(secret, orderID, paymentID, signature string) error {
	expected := Sign(secret, orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
