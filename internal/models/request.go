package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateAuctionRequest struct {
	Title       string `json:"title" binding:"required" example:"Vintage camera"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	// StartingPrice accepts a JSON number or a decimal string, e.g. "1000.00".
	StartingPrice decimal.Decimal `json:"starting_price" swaggertype:"string" example:"1000.00"`
	// StartTime defaults to now when omitted.
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    time.Time  `json:"end_time" binding:"required"`
	CategoryID *uuid.UUID `json:"category_id,omitempty" swaggertype:"string"`
}

type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"1200"`
}

type RejectAuctionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type CreatePaymentOrderRequest struct {
	AuctionID string `json:"auction_id" binding:"required"`
}

type UpsertShipmentRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
	Carrier        string `json:"carrier" binding:"required"`
	// ShippingAddress defaults to the winner's profile address when empty.
	ShippingAddress string `json:"shipping_address,omitempty"`
	Status          string `json:"status,omitempty" example:"Shipped"`
}

type SignupProfile struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

type SignupRequest struct {
	Email       string        `json:"email" binding:"required"`
	Password    string        `json:"password" binding:"required"`
	RedirectURL string        `json:"redirect_url,omitempty"`
	Profile     SignupProfile `json:"profile"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}
