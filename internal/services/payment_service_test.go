package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/models"
	"auction-backend/internal/razorpay"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

type paymentFixture struct {
	*fixture
	gateway   *MockPaymentGateway
	payments  *PaymentService
	shipments *ShipmentService
	auction   *models.Auction
	winner    uuid.UUID
	outbid    uuid.UUID
}

// newPaymentFixture closes an auction won by winner at 1500.00 after outbid
// bid 1200.00.
func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	gateway := NewMockPaymentGateway(ctrl)
	gateway.EXPECT().KeyID().Return("rzp_test_key").AnyTimes()

	p := &paymentFixture{
		fixture:   f,
		gateway:   gateway,
		payments:  NewPaymentService(f.repo, f.repo, gateway, "INR", testWebhookSecret).WithClock(f.clock),
		shipments: NewShipmentService(f.repo, f.repo, f.repo).WithClock(f.clock),
		winner:    uuid.New(),
		outbid:    uuid.New(),
	}

	a := f.approvedAuction(t, "1000")
	_, err := f.bidding.PlaceBid(f.ctx, a.ID, p.outbid, amount("1200"))
	require.NoError(t, err)
	_, err = f.bidding.PlaceBid(f.ctx, a.ID, p.winner, amount("1500"))
	require.NoError(t, err)
	f.now = a.EndTime
	_, err = f.auctions.CloseEndedAuctions(f.ctx)
	require.NoError(t, err)

	p.auction, err = f.repo.GetAuction(f.ctx, a.ID)
	require.NoError(t, err)
	return p
}

// passThroughRetry runs the retried function exactly once.
func (p *paymentFixture) passThroughRetry() {
	p.gateway.EXPECT().
		RetryWithBackoff(gomock.Any(), gomock.Any(), providerRetries).
		DoAndReturn(func(ctx context.Context, fn func() error, maxRetries int) error {
			return fn()
		})
}

func (p *paymentFixture) expectOrder(t *testing.T, orderID string) {
	t.Helper()
	p.passThroughRetry()
	p.gateway.EXPECT().
		CreateOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
			assert.Equal(t, int64(150000), req.Amount)
			assert.Equal(t, "INR", req.Currency)
			assert.LessOrEqual(t, len(req.Receipt), razorpay.MaxReceiptLength)
			assert.Equal(t, p.auction.ID.String(), req.Notes["auction_id"])
			return &razorpay.Order{ID: orderID, Amount: req.Amount, Currency: req.Currency, Status: "created"}, nil
		})
}

func capturedBody(t *testing.T, event, orderID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"entity": "event",
		"event":  event,
		"payload": map[string]any{
			"payment": map[string]any{
				"entity": map[string]any{
					"id":       "pay_" + orderID,
					"order_id": orderID,
					"amount":   150000,
					"currency": "INR",
					"status":   "captured",
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestPaymentService_Settlement_EndToEnd(t *testing.T) {
	p := newPaymentFixture(t)
	p.expectOrder(t, "order_1")

	order, err := p.payments.CreatePaymentOrder(p.ctx, p.auction.ID, p.winner)
	require.NoError(t, err)
	assert.Equal(t, "order_1", order.OrderID)
	assert.Equal(t, int64(150000), order.AmountMinor)
	assert.Equal(t, "rzp_test_key", order.KeyID)

	a, err := p.repo.GetAuction(p.ctx, p.auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, a.PaymentStatus)

	_, err = p.shipments.UpsertShipment(p.ctx, p.auction.ID, p.seller, models.UpsertShipmentRequest{
		TrackingNumber: "TRK1", Carrier: "BlueDart",
	})
	assert.Equal(t, apperrors.KindPaymentNotConfirmed, apperrors.KindOf(err), "pending payments do not unlock shipping")

	body := capturedBody(t, razorpay.EventPaymentCaptured, "order_1")
	outcome, err := p.payments.HandleWebhook(p.ctx, body, razorpay.Sign(body, testWebhookSecret), "evt_1")
	require.NoError(t, err)
	assert.Equal(t, WebhookSettled, outcome)

	a, err = p.repo.GetAuction(p.ctx, p.auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, a.PaymentStatus)

	outcome, err = p.payments.HandleWebhook(p.ctx, body, razorpay.Sign(body, testWebhookSecret), "evt_1")
	require.NoError(t, err)
	assert.Equal(t, WebhookDuplicate, outcome)

	// A new delivery id for the same capture changes nothing either.
	outcome, err = p.payments.HandleWebhook(p.ctx, body, razorpay.Sign(body, testWebhookSecret), "evt_2")
	require.NoError(t, err)
	assert.Equal(t, WebhookDuplicate, outcome)

	shipment, err := p.shipments.UpsertShipment(p.ctx, p.auction.ID, p.seller, models.UpsertShipmentRequest{
		TrackingNumber: "TRK1", Carrier: "BlueDart",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultShipmentStatus, shipment.Status)
	assert.Equal(t, p.winner, shipment.WinnerID)

	_, err = p.payments.CreatePaymentOrder(p.ctx, p.auction.ID, p.winner)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err), "paid auctions cannot be checked out again")
}

func TestPaymentService_CreatePaymentOrder_ReusesPending(t *testing.T) {
	p := newPaymentFixture(t)
	p.expectOrder(t, "order_1")

	first, err := p.payments.CreatePaymentOrder(p.ctx, p.auction.ID, p.winner)
	require.NoError(t, err)
	second, err := p.payments.CreatePaymentOrder(p.ctx, p.auction.ID, p.winner)
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)
}

func TestPaymentService_CreatePaymentOrder_ConcurrentCheckouts(t *testing.T) {
	p := newPaymentFixture(t)
	p.passThroughRetry()
	p.gateway.EXPECT().
		CreateOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
			time.Sleep(50 * time.Millisecond)
			return &razorpay.Order{ID: "order_1", Amount: req.Amount, Currency: req.Currency, Status: "created"}, nil
		}).
		Times(1)

	const callers = 8
	var wg sync.WaitGroup
	start := make(chan struct{})
	orders := make([]*models.PaymentOrder, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			orders[i], errs[i] = p.payments.CreatePaymentOrder(p.ctx, p.auction.ID, p.winner)
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "order_1", orders[i].OrderID)
	}
}

// A checkout on another server instance can store its payment between the
// pending lookup and the insert here.
func TestPaymentService_CreatePaymentOrder_LosesRaceToOtherInstance(t *testing.T) {
	otherPayment := func(p *paymentFixture) *models.Payment {
		return &models.Payment{
			ID: uuid.New(), AuctionID: p.auction.ID, WinnerID: p.winner, Amount: p.auction.CurrentPrice,
			Currency: "INR", Status: models.PaymentRecordPending, ProviderOrderID: "order_other", CreatedAt: p.now,
		}
	}

	t.Run("pending payment is reused", func(t *testing.T) {
		p := newPaymentFixture(t)
		p.passThroughRetry()
		p.gateway.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
				require.NoError(t, p.repo.CreatePayment(ctx, otherPayment(p)))
				return &razorpay.Order{ID: "order_mine", Amount: req.Amount, Currency: req.Currency}, nil
			})

		order, err := p.payments.CreatePaymentOrder(p.ctx, p.auction.ID, p.winner)
		require.NoError(t, err)
		assert.Equal(t, "order_other", order.OrderID)
		assert.Equal(t, int64(150000), order.AmountMinor)
	})

	t.Run("already settled payment is a validation error", func(t *testing.T) {
		p := newPaymentFixture(t)
		p.passThroughRetry()
		p.gateway.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
				require.NoError(t, p.repo.CreatePayment(ctx, otherPayment(p)))
				_, err := p.repo.MarkPaymentPaid(ctx, "order_other", p.now)
				require.NoError(t, err)
				return &razorpay.Order{ID: "order_mine", Amount: req.Amount, Currency: req.Currency}, nil
			})

		_, err := p.payments.CreatePaymentOrder(p.ctx, p.auction.ID, p.winner)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})
}

func TestPaymentService_CreatePaymentOrder_Rejections(t *testing.T) {
	p := newPaymentFixture(t)

	_, err := p.payments.CreatePaymentOrder(p.ctx, p.auction.ID, uuid.New())
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	_, err = p.payments.CreatePaymentOrder(p.ctx, p.auction.ID, uuid.Nil)
	assert.Equal(t, apperrors.KindAuthenticationRequired, apperrors.KindOf(err))

	_, err = p.payments.CreatePaymentOrder(p.ctx, uuid.New(), p.winner)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	open := p.approvedAuction(t, "10")
	_, err = p.payments.CreatePaymentOrder(p.ctx, open.ID, p.winner)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestPaymentService_CreatePaymentOrder_PriceOutOfRange(t *testing.T) {
	p := newPaymentFixture(t)
	huge := *p.auction
	huge.CurrentPrice = amount("100000000000000000")
	p.repo.PutAuction(huge)

	_, err := p.payments.CreatePaymentOrder(p.ctx, p.auction.ID, p.winner)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	_, err = p.repo.GetPendingPayment(p.ctx, p.auction.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPaymentService_CreatePaymentOrder_ProviderFailure(t *testing.T) {
	p := newPaymentFixture(t)
	p.passThroughRetry()
	p.gateway.EXPECT().
		CreateOrder(gomock.Any(), gomock.Any()).
		Return(nil, &razorpay.StatusError{StatusCode: 400, Code: "BAD_REQUEST_ERROR", Description: "bad amount"})

	_, err := p.payments.CreatePaymentOrder(p.ctx, p.auction.ID, p.winner)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamProvider, apperrors.KindOf(err))

	var statusErr *razorpay.StatusError
	assert.True(t, errors.As(err, &statusErr))

	a, err := p.repo.GetAuction(p.ctx, p.auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, a.PaymentStatus)
	_, err = p.repo.GetPendingPayment(p.ctx, p.auction.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPaymentService_HandleWebhook(t *testing.T) {
	p := newPaymentFixture(t)
	captured := capturedBody(t, razorpay.EventPaymentCaptured, "order_unknown")
	failed := capturedBody(t, "payment.failed", "order_unknown")

	t.Run("bad signature", func(t *testing.T) {
		_, err := p.payments.HandleWebhook(p.ctx, captured, razorpay.Sign(captured, "other"), "evt_bad")
		assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
	})

	t.Run("missing signature", func(t *testing.T) {
		_, err := p.payments.HandleWebhook(p.ctx, captured, "", "evt_bad")
		assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
	})

	t.Run("malformed body is acknowledged", func(t *testing.T) {
		body := []byte("{not json")
		outcome, err := p.payments.HandleWebhook(p.ctx, body, razorpay.Sign(body, testWebhookSecret), "evt_bad")
		require.NoError(t, err)
		assert.Equal(t, WebhookIgnored, outcome)

		// Not recorded, so a later well-formed delivery under the same id still applies.
		fresh, err := p.repo.RecordWebhookEvent(p.ctx, models.WebhookEvent{
			ProviderEventID: "evt_bad", EventType: "payment.failed", Payload: json.RawMessage(`{}`), ReceivedAt: p.now,
		})
		require.NoError(t, err)
		assert.True(t, fresh)
	})

	t.Run("unknown order", func(t *testing.T) {
		outcome, err := p.payments.HandleWebhook(p.ctx, captured, razorpay.Sign(captured, testWebhookSecret), "evt_unknown")
		require.NoError(t, err)
		assert.Equal(t, WebhookIgnored, outcome)
	})

	t.Run("other event type", func(t *testing.T) {
		outcome, err := p.payments.HandleWebhook(p.ctx, failed, razorpay.Sign(failed, testWebhookSecret), "")
		require.NoError(t, err)
		assert.Equal(t, WebhookIgnored, outcome)

		// Without an event id the body hash deduplicates.
		outcome, err = p.payments.HandleWebhook(p.ctx, failed, razorpay.Sign(failed, testWebhookSecret), "")
		require.NoError(t, err)
		assert.Equal(t, WebhookDuplicate, outcome)
	})
}

func TestReceipt_FitsProviderLimit(t *testing.T) {
	id := uuid.New()
	r := Receipt(id)
	assert.LessOrEqual(t, len(r), razorpay.MaxReceiptLength)
	assert.Equal(t, r, Receipt(id))
}
