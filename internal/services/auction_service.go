package services

import (
	"context"
	"fmt"
	"strings"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/lifecycle"
	"auction-backend/internal/logger"
	"auction-backend/internal/models"
	"auction-backend/internal/realtime"
	"auction-backend/internal/repository"

	"github.com/google/uuid"
)

type AuctionService struct {
	auctions  repository.AuctionStore
	profiles  repository.ProfileStore
	shipments repository.ShipmentStore
	publisher realtime.Publisher
	now       Clock
}

func NewAuctionService(auctions repository.AuctionStore, profiles repository.ProfileStore, shipments repository.ShipmentStore, publisher realtime.Publisher) *AuctionService {
	return &AuctionService{
		auctions:  auctions,
		profiles:  profiles,
		shipments: shipments,
		publisher: publisher,
		now:       systemClock,
	}
}

// WithClock replaces the time source.
func (s *AuctionService) WithClock(now Clock) *AuctionService {
	s.now = now
	return s
}

// CreateAuction submits a listing for approval. It stays invisible to buyers
// until an admin approves it.
func (s *AuctionService) CreateAuction(ctx context.Context, sellerID uuid.UUID, req models.CreateAuctionRequest) (*models.Auction, error) {
	now := s.now()
	start := now
	if req.StartTime != nil {
		start = req.StartTime.UTC()
	}

	a := &models.Auction{
		ID:             uuid.New(),
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		ImageURL:       req.ImageURL,
		StartingPrice:  req.StartingPrice,
		CurrentPrice:   req.StartingPrice,
		StartTime:      start,
		EndTime:        req.EndTime.UTC(),
		Status:         models.AuctionActive,
		ApprovalStatus: models.ApprovalPending,
		SellerID:       sellerID,
		PaymentStatus:  models.PaymentUnpaid,
		CategoryID:     req.CategoryID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := lifecycle.ValidateNewAuction(a, now); err != nil {
		return nil, err
	}

	if err := s.auctions.CreateAuction(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	logger.Info("auction submitted for approval", map[string]any{
		"auction_id": a.ID.String(),
		"seller_id":  sellerID.String(),
	})
	return a, nil
}

// GetAuction hides unapproved auctions from everyone but their seller and admins.
func (s *AuctionService) GetAuction(ctx context.Context, auctionID, callerID uuid.UUID) (*models.Auction, error) {
	a, err := s.auctions.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if lifecycle.IsVisible(a) || (callerID != uuid.Nil && a.SellerID == callerID) {
		return a, nil
	}
	if callerID != uuid.Nil {
		admin, err := s.profiles.IsAdmin(ctx, callerID)
		if err != nil {
			return nil, fmt.Errorf("failed to check admin role: %w", err)
		}
		if admin {
			return a, nil
		}
	}
	return nil, apperrors.NotFound("auction %s not found", auctionID)
}

func (s *AuctionService) ListAuctions(ctx context.Context, filter models.AuctionFilter) ([]models.AuctionListing, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apperrors.Validation("limit and offset must not be negative")
	}
	return s.auctions.ListAuctions(ctx, filter)
}

func (s *AuctionService) ListPendingAuctions(ctx context.Context, adminID uuid.UUID) ([]models.Auction, error) {
	if err := requireAdmin(ctx, s.profiles, adminID); err != nil {
		return nil, err
	}
	return s.auctions.ListPendingAuctions(ctx)
}

func (s *AuctionService) Approve(ctx context.Context, auctionID, adminID uuid.UUID) (*models.Auction, error) {
	return s.decide(ctx, models.ApprovalDecision{
		AuctionID: auctionID,
		AdminID:   adminID,
		Action:    models.AuditApproved,
	})
}

func (s *AuctionService) Reject(ctx context.Context, auctionID, adminID uuid.UUID, reason string) (*models.Auction, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.Validation("rejection reason is required")
	}
	return s.decide(ctx, models.ApprovalDecision{
		AuctionID: auctionID,
		AdminID:   adminID,
		Action:    models.AuditRejected,
		Reason:    reason,
	})
}

func (s *AuctionService) decide(ctx context.Context, decision models.ApprovalDecision) (*models.Auction, error) {
	if err := requireAdmin(ctx, s.profiles, decision.AdminID); err != nil {
		return nil, err
	}
	decision.DecidedAt = s.now()

	a, err := s.auctions.DecideApproval(ctx, decision)
	if err != nil {
		return nil, err
	}

	logger.Info("auction approval decided", map[string]any{
		"auction_id": a.ID.String(),
		"admin_id":   decision.AdminID.String(),
		"action":     string(decision.Action),
	})
	return a, nil
}

func (s *AuctionService) ListAuditLog(ctx context.Context, auctionID, adminID uuid.UUID) ([]models.AuditEntry, error) {
	if err := requireAdmin(ctx, s.profiles, adminID); err != nil {
		return nil, err
	}
	if _, err := s.auctions.GetAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	return s.auctions.ListAuditLog(ctx, auctionID)
}

// CloseEndedAuctions completes every auction past its end time and announces
// the result on each auction's channel.
func (s *AuctionService) CloseEndedAuctions(ctx context.Context) ([]models.Auction, error) {
	closed, err := s.auctions.CloseEndedAuctions(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to close ended auctions: %w", err)
	}

	for i := range closed {
		a := &closed[i]
		fields := map[string]any{"auction_id": a.ID.String(), "final_price": a.CurrentPrice.String()}
		if a.WinnerID != nil {
			fields["winner_id"] = a.WinnerID.String()
		}
		logger.Info("auction closed", fields)

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, realtime.AuctionClosedEvent(a)); err != nil {
				logger.Warn("failed to publish auction closed event", map[string]any{
					"auction_id": a.ID.String(),
					"error":      err.Error(),
				})
			}
		}
	}
	return closed, nil
}

func (s *AuctionService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.auctions.ListCategories(ctx)
}

// MyAuctions returns what the user sells (all statuses) and the approved
// auctions they have bid on. Auctions the user sold or won carry their
// shipment summary.
func (s *AuctionService) MyAuctions(ctx context.Context, userID uuid.UUID) (*models.MyAuctionsResponse, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	selling, err := s.auctions.ListSellerAuctions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list selling auctions: %w", err)
	}
	bidding, err := s.auctions.ListBidderAuctions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bidding auctions: %w", err)
	}

	var ids []uuid.UUID
	for _, list := range [][]models.Auction{selling, bidding} {
		for i := range list {
			if list[i].SellerID == userID || list[i].IsWinner(userID) {
				ids = append(ids, list[i].ID)
			}
		}
	}
	shipments, err := s.shipments.ListShipments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}
	byAuction := make(map[uuid.UUID]*models.ShipmentSummary, len(shipments))
	for i := range shipments {
		byAuction[shipments[i].AuctionID] = shipments[i].Summary()
	}

	return &models.MyAuctionsResponse{
		Selling: withShipments(selling, userID, byAuction),
		Bidding: withShipments(bidding, userID, byAuction),
	}, nil
}

func withShipments(auctions []models.Auction, userID uuid.UUID, byAuction map[uuid.UUID]*models.ShipmentSummary) []models.MyAuction {
	out := make([]models.MyAuction, len(auctions))
	for i, a := range auctions {
		out[i] = models.MyAuction{Auction: a}
		if a.SellerID == userID || a.IsWinner(userID) {
			out[i].Shipment = byAuction[a.ID]
		}
	}
	return out
}
