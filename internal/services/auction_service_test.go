package services

import (
	"testing"
	"time"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/models"
	"auction-backend/internal/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuctionService_CreateAuction_Validation(t *testing.T) {
	f := newFixture(t)
	past := f.now.Add(-time.Hour)

	tests := []struct {
		name   string
		seller uuid.UUID
		req    models.CreateAuctionRequest
		want   apperrors.Kind
	}{
		{
			name:   "missing title",
			seller: f.seller,
			req:    models.CreateAuctionRequest{StartingPrice: amount("10"), EndTime: f.now.Add(time.Hour)},
			want:   apperrors.KindValidation,
		},
		{
			name:   "zero price",
			seller: f.seller,
			req:    models.CreateAuctionRequest{Title: "x", StartingPrice: amount("0"), EndTime: f.now.Add(time.Hour)},
			want:   apperrors.KindValidation,
		},
		{
			name:   "three decimal places",
			seller: f.seller,
			req:    models.CreateAuctionRequest{Title: "x", StartingPrice: amount("10.001"), EndTime: f.now.Add(time.Hour)},
			want:   apperrors.KindValidation,
		},
		{
			name:   "price above column precision",
			seller: f.seller,
			req:    models.CreateAuctionRequest{Title: "x", StartingPrice: amount("100000000000000000"), EndTime: f.now.Add(time.Hour)},
			want:   apperrors.KindValidation,
		},
		{
			name:   "end in the past",
			seller: f.seller,
			req:    models.CreateAuctionRequest{Title: "x", StartingPrice: amount("10"), StartTime: &past, EndTime: f.now.Add(-time.Minute)},
			want:   apperrors.KindValidation,
		},
		{
			name: "anonymous seller",
			req:  models.CreateAuctionRequest{Title: "x", StartingPrice: amount("10"), EndTime: f.now.Add(time.Hour)},
			want: apperrors.KindAuthenticationRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auctions.CreateAuction(f.ctx, tt.seller, tt.req)
			assert.Equal(t, tt.want, apperrors.KindOf(err))
		})
	}
}

func TestAuctionService_CreateAuction_StartsPending(t *testing.T) {
	f := newFixture(t)
	a := f.submit(t, "1000")

	assert.Equal(t, models.ApprovalPending, a.ApprovalStatus)
	assert.Equal(t, models.AuctionActive, a.Status)
	assert.Equal(t, models.PaymentUnpaid, a.PaymentStatus)
	assert.True(t, a.CurrentPrice.Equal(amount("1000")))
}

func TestAuctionService_ApprovalStateMachine(t *testing.T) {
	f := newFixture(t)
	a := f.submit(t, "1000")
	stranger := uuid.New()

	_, err := f.auctions.Approve(f.ctx, a.ID, stranger)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	_, err = f.auctions.Approve(f.ctx, uuid.New(), f.admin)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	approved, err := f.auctions.Approve(f.ctx, a.ID, f.admin)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approved.ApprovalStatus)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, f.admin, *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, f.now, *approved.ApprovedAt)

	_, err = f.auctions.Reject(f.ctx, a.ID, f.admin, "too late")
	assert.Equal(t, apperrors.KindAlreadyDecided, apperrors.KindOf(err))

	entries, err := f.auctions.ListAuditLog(f.ctx, a.ID, f.admin)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditApproved, entries[0].Action)
	assert.Equal(t, f.admin, entries[0].AdminID)
}

func TestAuctionService_Reject(t *testing.T) {
	f := newFixture(t)
	a := f.submit(t, "1000")

	_, err := f.auctions.Reject(f.ctx, a.ID, f.admin, "  ")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	rejected, err := f.auctions.Reject(f.ctx, a.ID, f.admin, "counterfeit")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, rejected.ApprovalStatus)
	assert.Equal(t, "counterfeit", rejected.RejectionReason)

	entries, err := f.auctions.ListAuditLog(f.ctx, a.ID, f.admin)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "counterfeit", entries[0].Details)
}

func TestAuctionService_UnapprovedAuctionsStayHidden(t *testing.T) {
	f := newFixture(t)
	pending := f.submit(t, "100")
	rejected := f.submit(t, "200")
	_, err := f.auctions.Reject(f.ctx, rejected.ID, f.admin, "no")
	require.NoError(t, err)
	approved := f.approvedAuction(t, "300")
	buyer := uuid.New()

	listings, err := f.auctions.ListAuctions(f.ctx, models.AuctionFilter{Query: "camera"})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, approved.ID, listings[0].ID)
	assert.Equal(t, "Seller", listings[0].SellerName)

	for _, id := range []uuid.UUID{pending.ID, rejected.ID} {
		_, err := f.auctions.GetAuction(f.ctx, id, buyer)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
		_, err = f.auctions.GetAuction(f.ctx, id, uuid.Nil)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

		got, err := f.auctions.GetAuction(f.ctx, id, f.seller)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		_, err = f.auctions.GetAuction(f.ctx, id, f.admin)
		assert.NoError(t, err)
	}

	_, err = f.auctions.ListAuctions(f.ctx, models.AuctionFilter{Limit: -1})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestAuctionService_ListPendingRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	f.submit(t, "100")

	_, err := f.auctions.ListPendingAuctions(f.ctx, f.seller)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	pending, err := f.auctions.ListPendingAuctions(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestAuctionService_CloseEndedAuctions(t *testing.T) {
	f := newFixture(t)
	withBids := f.approvedAuction(t, "1000")
	noBids := f.approvedAuction(t, "50")
	x, z := uuid.New(), uuid.New()

	_, err := f.bidding.PlaceBid(f.ctx, withBids.ID, x, amount("1200"))
	require.NoError(t, err)
	_, err = f.bidding.PlaceBid(f.ctx, withBids.ID, z, amount("1500"))
	require.NoError(t, err)

	sub := f.hub.Subscribe(withBids.ID)
	defer sub.Close()

	closed, err := f.auctions.CloseEndedAuctions(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, closed, "nothing has ended yet")

	f.now = withBids.EndTime
	closed, err = f.auctions.CloseEndedAuctions(f.ctx)
	require.NoError(t, err)
	assert.Len(t, closed, 2)

	a, err := f.repo.GetAuction(f.ctx, withBids.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionCompleted, a.Status)
	require.NotNil(t, a.WinnerID)
	assert.Equal(t, z, *a.WinnerID)

	empty, err := f.repo.GetAuction(f.ctx, noBids.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionCompleted, empty.Status)
	assert.Nil(t, empty.WinnerID)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, realtime.EventAuctionClosed, ev.Type)
		require.NotNil(t, ev.WinnerID)
		assert.Equal(t, z, *ev.WinnerID)
	case <-time.After(time.Second):
		t.Fatal("closed event not published")
	}
}

func TestAuctionService_MyAuctions(t *testing.T) {
	f := newFixture(t)
	a := f.approvedAuction(t, "10")
	f.submit(t, "20")
	bidder := uuid.New()
	_, err := f.bidding.PlaceBid(f.ctx, a.ID, bidder, amount("11"))
	require.NoError(t, err)

	mine, err := f.auctions.MyAuctions(f.ctx, f.seller)
	require.NoError(t, err)
	assert.Len(t, mine.Selling, 2)
	assert.Empty(t, mine.Bidding)

	theirs, err := f.auctions.MyAuctions(f.ctx, bidder)
	require.NoError(t, err)
	assert.Empty(t, theirs.Selling)
	require.Len(t, theirs.Bidding, 1)
	assert.Equal(t, a.ID, theirs.Bidding[0].ID)

	_, err = f.auctions.MyAuctions(f.ctx, uuid.Nil)
	assert.Equal(t, apperrors.KindAuthenticationRequired, apperrors.KindOf(err))
}
