package handlers

import (
	"context"

	"auction-backend/internal/models"
	"auction-backend/internal/realtime"
	"auction-backend/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=mock_services_test.go -package=handlers . BiddingAPI,PaymentAPI

type AuctionAPI interface {
	CreateAuction(ctx context.Context, sellerID uuid.UUID, req models.CreateAuctionRequest) (*models.Auction, error)
	GetAuction(ctx context.Context, auctionID, callerID uuid.UUID) (*models.Auction, error)
	ListAuctions(ctx context.Context, filter models.AuctionFilter) ([]models.AuctionListing, error)
	ListPendingAuctions(ctx context.Context, adminID uuid.UUID) ([]models.Auction, error)
	Approve(ctx context.Context, auctionID, adminID uuid.UUID) (*models.Auction, error)
	Reject(ctx context.Context, auctionID, adminID uuid.UUID, reason string) (*models.Auction, error)
	ListAuditLog(ctx context.Context, auctionID, adminID uuid.UUID) ([]models.AuditEntry, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	MyAuctions(ctx context.Context, userID uuid.UUID) (*models.MyAuctionsResponse, error)
}

type BiddingAPI interface {
	PlaceBid(ctx context.Context, auctionID, bidderID uuid.UUID, amount decimal.Decimal) (*models.Bid, error)
	ListBids(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error)
	Subscribe(ctx context.Context, auctionID uuid.UUID) (*realtime.Subscription, realtime.Event, error)
}

type PaymentAPI interface {
	CreatePaymentOrder(ctx context.Context, auctionID, requesterID uuid.UUID) (*models.PaymentOrder, error)
	HandleWebhook(ctx context.Context, body []byte, signature, eventID string) (services.WebhookOutcome, error)
}

type ShipmentAPI interface {
	UpsertShipment(ctx context.Context, auctionID, sellerID uuid.UUID, req models.UpsertShipmentRequest) (*models.Shipment, error)
	GetShipment(ctx context.Context, auctionID, callerID uuid.UUID) (*models.Shipment, error)
}

type WatchlistAPI interface {
	Add(ctx context.Context, userID, auctionID uuid.UUID) (*models.WatchlistEntry, error)
	Remove(ctx context.Context, userID, auctionID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.WatchlistEntry, error)
	Contains(ctx context.Context, userID, auctionID uuid.UUID) (bool, error)
}

type SignupAPI interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error)
}

type ProfileAPI interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error)
}

type AnalyticsAPI interface {
	Dashboard(ctx context.Context, adminID uuid.UUID, topLimit, months int) (*models.Analytics, error)
}
