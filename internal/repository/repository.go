package repository

import (
	"context"
	"errors"
	"time"

	"auction-backend/internal/models"

	"github.com/google/uuid"
)

// ErrPaymentExists is returned by CreatePayment when the auction already has a
// payment row.
var ErrPaymentExists = errors.New("auction already has a payment")

// AuctionStore persists auctions, approval decisions and the admin audit log.
// Buyer-facing reads (ListAuctions, ListBidderAuctions) return approved
// auctions only.
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction *models.Auction) error
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
	ListAuctions(ctx context.Context, filter models.AuctionFilter) ([]models.AuctionListing, error)
	ListPendingAuctions(ctx context.Context) ([]models.Auction, error)
	ListSellerAuctions(ctx context.Context, sellerID uuid.UUID) ([]models.Auction, error)
	ListBidderAuctions(ctx context.Context, bidderID uuid.UUID) ([]models.Auction, error)
	// DecideApproval applies the decision and appends the audit entry atomically.
	DecideApproval(ctx context.Context, decision models.ApprovalDecision) (*models.Auction, error)
	ListAuditLog(ctx context.Context, auctionID uuid.UUID) ([]models.AuditEntry, error)
	// CloseEndedAuctions completes every active auction whose end time has passed.
	CloseEndedAuctions(ctx context.Context, now time.Time) ([]models.Auction, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// BidStore records bids. PlaceBid must check amount > current_price and update
// current_price as one atomic unit.
type BidStore interface {
	PlaceBid(ctx context.Context, attempt models.BidAttempt) (*models.Bid, error)
	ListBids(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error)
}

type PaymentStore interface {
	GetPendingPayment(ctx context.Context, auctionID uuid.UUID) (*models.Payment, error)
	// CreatePayment stores a pending payment and flips the auction to
	// payment_status=pending. It fails with ErrPaymentExists when the auction
	// already has a payment.
	CreatePayment(ctx context.Context, payment *models.Payment) error
	// MarkPaymentPaid settles the payment for a provider order and the auction it
	// belongs to. Re-applying it to a paid payment changes nothing.
	MarkPaymentPaid(ctx context.Context, providerOrderID string, paidAt time.Time) (*models.SettlementResult, error)
	// RecordWebhookEvent returns false when the event id was already recorded.
	RecordWebhookEvent(ctx context.Context, event models.WebhookEvent) (bool, error)
}

type ShipmentStore interface {
	// UpsertShipment inserts or updates the single shipment row of an auction.
	UpsertShipment(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error)
	GetShipment(ctx context.Context, auctionID uuid.UUID) (*models.Shipment, error)
	// ListShipments returns the shipments that exist for auctionIDs, in no
	// particular order.
	ListShipments(ctx context.Context, auctionIDs []uuid.UUID) ([]models.Shipment, error)
}

type WatchlistStore interface {
	AddToWatchlist(ctx context.Context, userID, auctionID uuid.UUID) (*models.WatchlistEntry, error)
	RemoveFromWatchlist(ctx context.Context, userID, auctionID uuid.UUID) error
	ListWatchlist(ctx context.Context, userID uuid.UUID) ([]models.WatchlistEntry, error)
	IsWatching(ctx context.Context, userID, auctionID uuid.UUID) (bool, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type AnalyticsStore interface {
	AnalyticsOverview(ctx context.Context) (*models.AnalyticsOverview, error)
	TopAuctions(ctx context.Context, limit int) ([]models.TopAuction, error)
	// MostActiveUsers ranks bidders by bid count.
	MostActiveUsers(ctx context.Context, limit int) ([]models.ActiveUser, error)
	MonthlyRevenue(ctx context.Context, months int, now time.Time) ([]models.MonthlyRevenue, error)
}

// Store is the full persistence surface.
type Store interface {
	AuctionStore
	BidStore
	PaymentStore
	ShipmentStore
	WatchlistStore
	ProfileStore
	AnalyticsStore
	Close() error
}
