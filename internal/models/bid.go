package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid is an append-only offer. BidTime is assigned by the store.
type Bid struct {
	ID        uuid.UUID       `json:"id"`
	AuctionID uuid.UUID       `json:"auction_id"`
	BidderID  uuid.UUID       `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	BidTime   time.Time       `json:"bid_time"`
}

// BidAttempt is what the engine evaluates against the auction row at commit time.
type BidAttempt struct {
	ID        uuid.UUID
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
	At        time.Time
}
