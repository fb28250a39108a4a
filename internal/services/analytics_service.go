package services

import (
	"context"
	"fmt"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/models"
	"auction-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultTopAuctions    = 5
	DefaultRevenueMonths  = 6
	maxAnalyticsRowsLimit = 100
)

type AnalyticsService struct {
	analytics repository.AnalyticsStore
	profiles  repository.ProfileStore
	now       Clock
}

func NewAnalyticsService(analytics repository.AnalyticsStore, profiles repository.ProfileStore) *AnalyticsService {
	return &AnalyticsService{analytics: analytics, profiles: profiles, now: systemClock}
}

func (s *AnalyticsService) WithClock(now Clock) *AnalyticsService {
	s.now = now
	return s
}

// Dashboard assembles the admin analytics view. topLimit bounds both the top
// auctions and the most active users.
func (s *AnalyticsService) Dashboard(ctx context.Context, adminID uuid.UUID, topLimit, months int) (*models.Analytics, error) {
	if err := requireAdmin(ctx, s.profiles, adminID); err != nil {
		return nil, err
	}
	if topLimit <= 0 {
		topLimit = DefaultTopAuctions
	}
	if months <= 0 {
		months = DefaultRevenueMonths
	}
	if topLimit > maxAnalyticsRowsLimit || months > maxAnalyticsRowsLimit {
		return nil, apperrors.Validation("top and months must be at most %d", maxAnalyticsRowsLimit)
	}

	overview, err := s.analytics.AnalyticsOverview(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load overview: %w", err)
	}
	top, err := s.analytics.TopAuctions(ctx, topLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top auctions: %w", err)
	}
	users, err := s.analytics.MostActiveUsers(ctx, topLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load active users: %w", err)
	}
	revenue, err := s.analytics.MonthlyRevenue(ctx, months, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly revenue: %w", err)
	}

	return &models.Analytics{
		Overview:        *overview,
		TopAuctions:     top,
		MostActiveUsers: users,
		MonthlyRevenue:  revenue,
	}, nil
}
