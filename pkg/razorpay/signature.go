// Package razorpay verifies the signatures the payment gateway attaches to
// webhook deliveries and checkout callbacks. No gateway API calls are made.
package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// SignatureHeader carries the webhook body signature.
const SignatureHeader = "X-Razorpay-Signature"

var (
	ErrMissingSecret    = errors.New("razorpay: signing secret not configured")
	ErrMissingSignature = errors.New("razorpay: signature missing")
	ErrSignatureInvalid = errors.New("razorpay: signature mismatch")
)

// Sign returns the hex HMAC-SHA256 of payload keyed by secret.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook checks the signature of a raw webhook body.
func VerifyWebhook(secret string, body []byte, signature string) error {
	return verify(secret, body, signature)
}

// PaymentSignaturePayload is the string the gateway signs after checkout.
func PaymentSignaturePayload(orderID, paymentID string) []byte {
	return []byte(strings.TrimSpace(orderID) + "|" + strings.TrimSpace(paymentID))
}

// VerifyPayment checks the checkout signature for an order/payment pair.
func VerifyPayment(keySecret, orderID, paymentID, signature string) error {
	return verify(keySecret, PaymentSignaturePayload(orderID, paymentID), signature)
}

func verify(secret string, payload []byte, signature string) error {
	if secret == "" {
		return ErrMissingSecret
	}
	signature = strings.ToLower(strings.TrimSpace(signature))
	if signature == "" {
		return ErrMissingSignature
	}
	expected := Sign(secret, payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("%w", ErrSignatureInvalid)
	}
	return nil
}
