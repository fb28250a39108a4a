package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/lifecycle"
	"auction-backend/internal/logger"
	"auction-backend/internal/models"
	"auction-backend/internal/repository"

	"github.com/google/uuid"
)

type ShipmentService struct {
	auctions  repository.AuctionStore
	shipments repository.ShipmentStore
	profiles  repository.ProfileStore
	now       Clock
}

func NewShipmentService(auctions repository.AuctionStore, shipments repository.ShipmentStore, profiles repository.ProfileStore) *ShipmentService {
	return &ShipmentService{
		auctions:  auctions,
		shipments: shipments,
		profiles:  profiles,
		now:       systemClock,
	}
}

func (s *ShipmentService) WithClock(now Clock) *ShipmentService {
	s.now = now
	return s
}

// UpsertShipment creates or updates the single shipment of a paid auction.
// Only the seller may write it. The store re-checks the payment gate while
// holding the auction row.
func (s *ShipmentService) UpsertShipment(ctx context.Context, auctionID, sellerID uuid.UUID, req models.UpsertShipmentRequest) (*models.Shipment, error) {
	if sellerID == uuid.Nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	req.TrackingNumber = strings.TrimSpace(req.TrackingNumber)
	req.Carrier = strings.TrimSpace(req.Carrier)
	if req.TrackingNumber == "" || req.Carrier == "" {
		return nil, apperrors.Validation("tracking_number and carrier are required")
	}

	a, err := s.auctions.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckShipmentWrite(a, sellerID); err != nil {
		return nil, err
	}

	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		address, err = s.winnerAddress(ctx, *a.WinnerID)
		if err != nil {
			return nil, err
		}
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.DefaultShipmentStatus
	}

	now := s.now()
	shipment, err := s.shipments.UpsertShipment(ctx, &models.Shipment{
		AuctionID:       a.ID,
		SellerID:        sellerID,
		WinnerID:        *a.WinnerID,
		ShippingAddress: address,
		Carrier:         req.Carrier,
		TrackingNumber:  req.TrackingNumber,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("shipment saved", map[string]any{
		"auction_id":      a.ID.String(),
		"tracking_number": shipment.TrackingNumber,
		"status":          shipment.Status,
	})
	return shipment, nil
}

// winnerAddress prefills the address from the winner's profile. A winner
// without a profile yields an empty address.
func (s *ShipmentService) winnerAddress(ctx context.Context, winnerID uuid.UUID) (string, error) {
	p, err := s.profiles.GetProfile(ctx, winnerID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load winner profile: %w", err)
	}
	return p.MailingAddress(), nil
}

func (s *ShipmentService) GetShipment(ctx context.Context, auctionID, callerID uuid.UUID) (*models.Shipment, error) {
	if callerID == uuid.Nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	a, err := s.auctions.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckShipmentRead(a, callerID); err != nil {
		return nil, err
	}
	return s.shipments.GetShipment(ctx, auctionID)
}
