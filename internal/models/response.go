package models

import "github.com/google/uuid"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	// DroppedEvents counts realtime events discarded for slow stream clients
	// since startup.
	DroppedEvents uint64 `json:"dropped_events"`
}

type AuctionListResponse struct {
	Auctions []AuctionListing `json:"auctions"`
}

type AuctionsResponse struct {
	Auctions []Auction `json:"auctions"`
}

type BidListResponse struct {
	Bids []Bid `json:"bids"`
}

type AuditLogResponse struct {
	Entries []AuditEntry `json:"entries"`
}

// MyAuction is an auction on the caller's dashboard. Shipment is set only
// when the caller is the seller or the winner and a shipment exists.
type MyAuction struct {
	Auction
	Shipment *ShipmentSummary `json:"shipment,omitempty"`
}

type MyAuctionsResponse struct {
	Selling []MyAuction `json:"selling"`
	Bidding []MyAuction `json:"bidding"`
}

type WatchlistResponse struct {
	Entries []WatchlistEntry `json:"entries"`
}

type WatchStatusResponse struct {
	AuctionID uuid.UUID `json:"auction_id"`
	Watching  bool      `json:"watching"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
}

type SignupResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	RedirectURL string    `json:"redirect_url,omitempty"`
}

type WebhookAckResponse struct {
	Status string `json:"status"`
}
