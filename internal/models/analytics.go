package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AnalyticsOverview struct {
	TotalUsers       int             `json:"total_users"`
	TotalAuctions    int             `json:"total_auctions"`
	ActiveAuctions   int             `json:"active_auctions"`
	PendingApprovals int             `json:"pending_approvals"`
	TotalBids        int             `json:"total_bids"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	AveragePrice     decimal.Decimal `json:"average_price"`
	// CompletionRate is the percentage of completed auctions that found a winner.
	CompletionRate float64 `json:"completion_rate"`
}

type TopAuction struct {
	AuctionID    uuid.UUID       `json:"auction_id"`
	Title        string          `json:"title"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	BidCount     int             `json:"bid_count"`
}

// ActiveUser ranks a bidder. TotalSpent sums the user's settled payments.
type ActiveUser struct {
	UserID     uuid.UUID       `json:"user_id"`
	FullName   string          `json:"full_name"`
	BidCount   int             `json:"bid_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

type MonthlyRevenue struct {
	Month    string          `json:"month"` // YYYY-MM
	Revenue  decimal.Decimal `json:"revenue"`
	Payments int             `json:"payments"`
}

type Analytics struct {
	Overview        AnalyticsOverview `json:"overview"`
	TopAuctions     []TopAuction      `json:"top_auctions"`
	MostActiveUsers []ActiveUser      `json:"most_active_users"`
	MonthlyRevenue  []MonthlyRevenue  `json:"monthly_revenue"`
}
