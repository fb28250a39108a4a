package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuctionStatus string

const (
	AuctionActive    AuctionStatus = "active"
	AuctionCompleted AuctionStatus = "completed"
	AuctionCancelled AuctionStatus = "cancelled"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Auction is a listing with a rising price. Price, winner and payment fields
// are only written by the bid engine, the closer and the payment webhook.
type Auction struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	ImageURL        string          `json:"image_url,omitempty"`
	StartingPrice   decimal.Decimal `json:"starting_price"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	Status          AuctionStatus   `json:"status"`
	ApprovalStatus  ApprovalStatus  `json:"approval_status"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ApprovedBy      *uuid.UUID      `json:"approved_by,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	SellerID        uuid.UUID       `json:"seller_id"`
	WinnerID        *uuid.UUID      `json:"winner_id,omitempty"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	LastBidAt       *time.Time      `json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsWinner reports whether userID holds the finalized winning bid.
func (a *Auction) IsWinner(userID uuid.UUID) bool {
	return a.WinnerID != nil && *a.WinnerID == userID
}

// AuctionListing is a row of the auctions_with_bid_count view.
type AuctionListing struct {
	Auction
	SellerName string `json:"seller_name"`
	BidCount   int    `json:"bid_count"`
}

type AuctionFilter struct {
	CategoryID *uuid.UUID
	Query      string
	Limit      int
	Offset     int
}

type AuditAction string

const (
	AuditApproved AuditAction = "approved"
	AuditRejected AuditAction = "rejected"
)

// AuditEntry is an append-only record of an admin approval decision.
type AuditEntry struct {
	ID        uuid.UUID   `json:"id"`
	AuctionID uuid.UUID   `json:"auction_id"`
	AdminID   uuid.UUID   `json:"admin_id"`
	Action    AuditAction `json:"action"`
	Details   string      `json:"details"`
	CreatedAt time.Time   `json:"created_at"`
}

type ApprovalDecision struct {
	AuctionID uuid.UUID
	AdminID   uuid.UUID
	Action    AuditAction
	Reason    string
	DecidedAt time.Time
}

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
