package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultShipmentStatus = "Shipped"

// Shipment is keyed by auction; at most one row exists per auction.
type Shipment struct {
	ID              uuid.UUID `json:"id"`
	AuctionID       uuid.UUID `json:"auction_id"`
	SellerID        uuid.UUID `json:"seller_id"`
	WinnerID        uuid.UUID `json:"winner_id"`
	ShippingAddress string    `json:"shipping_address"`
	Carrier         string    `json:"carrier"`
	TrackingNumber  string    `json:"tracking_number"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ShipmentSummary is the part of a shipment shown on dashboards.
type ShipmentSummary struct {
	Status         string `json:"status"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

func (s *Shipment) Summary() *ShipmentSummary {
	return &ShipmentSummary{Status: s.Status, Carrier: s.Carrier, TrackingNumber: s.TrackingNumber}
}
