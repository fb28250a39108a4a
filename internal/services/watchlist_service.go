package services

import (
	"context"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/models"
	"auction-backend/internal/repository"

	"github.com/google/uuid"
)

type WatchlistService struct {
	watchlist repository.WatchlistStore
}

func NewWatchlistService(watchlist repository.WatchlistStore) *WatchlistService {
	return &WatchlistService{watchlist: watchlist}
}

// Add is idempotent; adding an auction twice returns the existing entry.
func (s *WatchlistService) Add(ctx context.Context, userID, auctionID uuid.UUID) (*models.WatchlistEntry, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	return s.watchlist.AddToWatchlist(ctx, userID, auctionID)
}

func (s *WatchlistService) Remove(ctx context.Context, userID, auctionID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperrors.ErrAuthenticationRequired
	}
	return s.watchlist.RemoveFromWatchlist(ctx, userID, auctionID)
}

func (s *WatchlistService) List(ctx context.Context, userID uuid.UUID) ([]models.WatchlistEntry, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	return s.watchlist.ListWatchlist(ctx, userID)
}

func (s *WatchlistService) Contains(ctx context.Context, userID, auctionID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, apperrors.ErrAuthenticationRequired
	}
	return s.watchlist.IsWatching(ctx, userID, auctionID)
}
