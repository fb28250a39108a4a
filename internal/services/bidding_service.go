package services

import (
	"context"
	"fmt"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/lifecycle"
	"auction-backend/internal/logger"
	"auction-backend/internal/models"
	"auction-backend/internal/realtime"
	"auction-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BiddingService struct {
	auctions  repository.AuctionStore
	bids      repository.BidStore
	hub       *realtime.Hub
	publisher realtime.Publisher
	now       Clock
}

// NewBiddingService publishes committed bids through publisher and serves
// subscriptions from hub. publisher may be the hub itself.
func NewBiddingService(auctions repository.AuctionStore, bids repository.BidStore, hub *realtime.Hub, publisher realtime.Publisher) *BiddingService {
	return &BiddingService{
		auctions:  auctions,
		bids:      bids,
		hub:       hub,
		publisher: publisher,
		now:       systemClock,
	}
}

func (s *BiddingService) WithClock(now Clock) *BiddingService {
	s.now = now
	return s
}

// PlaceBid records a bid strictly above the current price. The store decides
// acceptance atomically; the broadcast happens only after commit.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, bidderID uuid.UUID, amount decimal.Decimal) (*models.Bid, error) {
	if bidderID == uuid.Nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	if err := lifecycle.ValidateAmount(amount); err != nil {
		return nil, err
	}

	bid, err := s.bids.PlaceBid(ctx, models.BidAttempt{
		ID:        uuid.New(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		At:        s.now(),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("bid placed", map[string]any{
		"auction_id": auctionID.String(),
		"bidder_id":  bidderID.String(),
		"amount":     amount.String(),
	})

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, realtime.BidPlacedEvent(*bid)); err != nil {
			logger.Warn("failed to publish bid", map[string]any{
				"auction_id": auctionID.String(),
				"error":      err.Error(),
			})
		}
	}
	return bid, nil
}

// ListBids returns the bid history of an approved auction, newest first.
func (s *BiddingService) ListBids(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error) {
	if _, err := s.visibleAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	bids, err := s.bids.ListBids(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return bids, nil
}

// Subscribe opens a realtime subscription on an approved auction. The
// returned snapshot carries the committed price at subscription time; the
// caller must Close the subscription.
func (s *BiddingService) Subscribe(ctx context.Context, auctionID uuid.UUID) (*realtime.Subscription, realtime.Event, error) {
	if _, err := s.visibleAuction(ctx, auctionID); err != nil {
		return nil, realtime.Event{}, err
	}
	// Subscribe before reading the snapshot so no bid falls between the two.
	sub := s.hub.Subscribe(auctionID)
	a, err := s.auctions.GetAuction(ctx, auctionID)
	if err != nil {
		sub.Close()
		return nil, realtime.Event{}, err
	}
	logger.Debug("bid stream subscribed", map[string]any{
		"auction_id":  auctionID.String(),
		"subscribers": s.hub.SubscriberCount(auctionID),
	})
	return sub, realtime.SnapshotEvent(a), nil
}

func (s *BiddingService) visibleAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	a, err := s.auctions.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.IsVisible(a) {
		return nil, apperrors.NotFound("auction %s not found", auctionID)
	}
	return a, nil
}
