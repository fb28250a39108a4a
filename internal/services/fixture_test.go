package services

import (
	"context"
	"testing"
	"time"

	"auction-backend/internal/models"
	"auction-backend/internal/realtime"
	"auction-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ctx      context.Context
	repo     *repository.MemoryRepo
	hub      *realtime.Hub
	now      time.Time
	admin    uuid.UUID
	seller   uuid.UUID
	auctions *AuctionService
	bidding  *BiddingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:    context.Background(),
		repo:   repository.NewMemoryRepo(),
		hub:    realtime.NewHub(64),
		now:    testNow,
		admin:  uuid.New(),
		seller: uuid.New(),
	}
	require.NoError(t, f.repo.CreateProfile(f.ctx, &models.Profile{
		UserID: f.admin, FullName: "Admin", Role: models.RoleAdmin, CreatedAt: testNow, UpdatedAt: testNow,
	}))
	require.NoError(t, f.repo.CreateProfile(f.ctx, &models.Profile{
		UserID: f.seller, FullName: "Seller", CreatedAt: testNow, UpdatedAt: testNow,
	}))
	f.auctions = NewAuctionService(f.repo, f.repo, f.repo, f.hub).WithClock(f.clock)
	f.bidding = NewBiddingService(f.repo, f.repo, f.hub, f.hub).WithClock(f.clock)
	return f
}

func (f *fixture) clock() time.Time {
	return f.now
}

func (f *fixture) submit(t *testing.T, startingPrice string) *models.Auction {
	t.Helper()
	a, err := f.auctions.CreateAuction(f.ctx, f.seller, models.CreateAuctionRequest{
		Title:         "Vintage camera",
		StartingPrice: decimal.RequireFromString(startingPrice),
		EndTime:       f.now.Add(time.Hour),
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) approvedAuction(t *testing.T, startingPrice string) *models.Auction {
	t.Helper()
	a := f.submit(t, startingPrice)
	approved, err := f.auctions.Approve(f.ctx, a.ID, f.admin)
	require.NoError(t, err)
	return approved
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
