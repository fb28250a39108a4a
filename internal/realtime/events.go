package realtime

import (
	"fmt"

	"auction-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventBidPlaced     = "bid_placed"
	EventSnapshot      = "snapshot"
	EventAuctionClosed = "auction_closed"
)

// Event is one message on an auction's channel. CurrentPrice is the price the
// auction had right after the event; consumers fold it with max.
type Event struct {
	Type         string               `json:"type"`
	AuctionID    uuid.UUID            `json:"auction_id"`
	CurrentPrice decimal.Decimal      `json:"current_price"`
	Bid          *models.Bid          `json:"bid,omitempty"`
	Status       models.AuctionStatus `json:"status,omitempty"`
	WinnerID     *uuid.UUID           `json:"winner_id,omitempty"`
}

// Channel names the per-auction topic.
func Channel(auctionID uuid.UUID) string {
	return fmt.Sprintf("auction:%s", auctionID.String())
}

func BidPlacedEvent(bid models.Bid) Event {
	b := bid
	return Event{
		Type:         EventBidPlaced,
		AuctionID:    bid.AuctionID,
		CurrentPrice: bid.Amount,
		Bid:          &b,
	}
}

// SnapshotEvent is sent first on a new stream so the client starts from the
// committed price.
func SnapshotEvent(a *models.Auction) Event {
	return Event{
		Type:         EventSnapshot,
		AuctionID:    a.ID,
		CurrentPrice: a.CurrentPrice,
		Status:       a.Status,
		WinnerID:     a.WinnerID,
	}
}

func AuctionClosedEvent(a *models.Auction) Event {
	return Event{
		Type:         EventAuctionClosed,
		AuctionID:    a.ID,
		CurrentPrice: a.CurrentPrice,
		Status:       a.Status,
		WinnerID:     a.WinnerID,
	}
}
