package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentRecordStatus string

const (
	PaymentRecordPending PaymentRecordStatus = "pending"
	PaymentRecordPaid    PaymentRecordStatus = "paid"
)

type Payment struct {
	ID              uuid.UUID           `json:"id"`
	AuctionID       uuid.UUID           `json:"auction_id"`
	WinnerID        uuid.UUID           `json:"winner_id"`
	Amount          decimal.Decimal     `json:"amount"`
	Currency        string              `json:"currency"`
	Status          PaymentRecordStatus `json:"status"`
	ProviderOrderID string              `json:"provider_order_id"`
	CreatedAt       time.Time           `json:"created_at"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
}

// PaymentOrder is handed to the client-side checkout widget.
type PaymentOrder struct {
	AuctionID   uuid.UUID `json:"auction_id"`
	OrderID     string    `json:"order_id"`
	KeyID       string    `json:"key_id"`
	AmountMinor int64     `json:"amount"`
	Currency    string    `json:"currency"`
}

// WebhookEvent is a delivery recorded in the deduplication ledger.
type WebhookEvent struct {
	ProviderEventID string          `json:"provider_event_id"`
	EventType       string          `json:"event_type"`
	OrderID         string          `json:"order_id"`
	Payload         json.RawMessage `json:"payload"`
	ReceivedAt      time.Time       `json:"received_at"`
}

// SettlementResult describes what a captured-payment event changed.
type SettlementResult struct {
	Payment *Payment
	// Changed is false when the payment was already paid (replayed delivery).
	Changed bool
}
