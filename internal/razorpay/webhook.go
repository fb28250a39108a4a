package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

const EventPaymentCaptured = "payment.captured"

// Sign returns the hex HMAC-SHA256 of body under secret, the value the
// provider sends in X-Razorpay-Signature.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time. An empty secret or signature
// never verifies.
func VerifySignature(body []byte, signature, secret string) bool {
	signature = strings.TrimSpace(signature)
	if secret == "" || signature == "" {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(Sign(body, secret))
	return hmac.Equal(got, want)
}

type WebhookEvent struct {
	Entity    string `json:"entity"`
	AccountID string `json:"account_id"`
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type PaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode webhook body: %w", err)
	}
	return &ev, nil
}

// OrderID is the order a payment event refers to, empty for other entities.
func (e *WebhookEvent) OrderID() string {
	return e.Payload.Payment.Entity.OrderID
}

// FallbackEventID identifies a delivery when the event-id header is absent.
// Redeliveries of the same body map to the same id.
func FallbackEventID(body []byte) string {
	sum := sha256.Sum256(body)
	return "sha256:" + hex.EncodeToString(sum[:])
}
