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
	"auction-backend/internal/razorpay"
	"auction-backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const providerRetries = 3

type PaymentService struct {
	auctions      repository.AuctionStore
	payments      repository.PaymentStore
	gateway       PaymentGateway
	currency      string
	webhookSecret string
	now           Clock

	// checkouts collapses concurrent order creation for one auction.
	checkouts singleflight.Group
}

func NewPaymentService(auctions repository.AuctionStore, payments repository.PaymentStore, gateway PaymentGateway, currency, webhookSecret string) *PaymentService {
	return &PaymentService{
		auctions:      auctions,
		payments:      payments,
		gateway:       gateway,
		currency:      currency,
		webhookSecret: webhookSecret,
		now:           systemClock,
	}
}

func (s *PaymentService) WithClock(now Clock) *PaymentService {
	s.now = now
	return s
}

// Receipt is the provider receipt for an auction, kept within the
// provider's 40 character limit.
func Receipt(auctionID uuid.UUID) string {
	return "auction_" + strings.ReplaceAll(auctionID.String(), "-", "")
}

// CreatePaymentOrder opens a provider order for the winner of a completed
// auction. A pending order for the auction is reused, including one created
// concurrently by another request or server instance.
func (s *PaymentService) CreatePaymentOrder(ctx context.Context, auctionID, requesterID uuid.UUID) (*models.PaymentOrder, error) {
	a, err := s.auctions.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckCheckout(a, requesterID); err != nil {
		return nil, err
	}

	v, err, _ := s.checkouts.Do(auctionID.String(), func() (any, error) {
		return s.openOrder(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.PaymentOrder), nil
}

// openOrder reuses the auction's pending payment or creates a provider order
// and stores it. a must already have passed CheckCheckout.
func (s *PaymentService) openOrder(ctx context.Context, a *models.Auction) (*models.PaymentOrder, error) {
	auctionID := a.ID
	existing, err := s.payments.GetPendingPayment(ctx, auctionID)
	switch {
	case err == nil:
		return s.paymentOrder(existing)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("failed to look up pending payment: %w", err)
	}

	amountMinor, err := lifecycle.OrderAmountMinor(a.CurrentPrice)
	if err != nil {
		return nil, err
	}
	var order *razorpay.Order
	err = s.gateway.RetryWithBackoff(ctx, func() error {
		var createErr error
		order, createErr = s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
			Amount:   amountMinor,
			Currency: s.currency,
			Receipt:  Receipt(a.ID),
			Notes:    map[string]string{"auction_id": a.ID.String(), "auction_title": a.Title},
		})
		return createErr
	}, providerRetries)
	if err != nil {
		logger.Error("payment order creation failed", map[string]any{
			"auction_id": auctionID.String(),
			"error":      err.Error(),
		})
		return nil, apperrors.Wrap(apperrors.KindUpstreamProvider, err, "payment provider failed to create order")
	}

	payment := &models.Payment{
		ID:              uuid.New(),
		AuctionID:       a.ID,
		WinnerID:        *a.WinnerID,
		Amount:          a.CurrentPrice,
		Currency:        s.currency,
		Status:          models.PaymentRecordPending,
		ProviderOrderID: order.ID,
		CreatedAt:       s.now(),
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrPaymentExists) {
			return s.concurrentOrder(ctx, auctionID, order.ID)
		}
		return nil, fmt.Errorf("failed to store payment: %w", err)
	}

	logger.Info("payment order created", map[string]any{
		"auction_id": a.ID.String(),
		"order_id":   order.ID,
		"amount":     amountMinor,
		"currency":   s.currency,
	})
	return s.paymentOrder(payment)
}

// concurrentOrder resolves a lost race with another instance: the winning
// pending payment is returned and the provider order just created is left
// unused. Razorpay expires unpaid orders on its own.
func (s *PaymentService) concurrentOrder(ctx context.Context, auctionID uuid.UUID, unusedOrderID string) (*models.PaymentOrder, error) {
	logger.Warn("payment order superseded by a concurrent checkout", map[string]any{
		"auction_id":      auctionID.String(),
		"unused_order_id": unusedOrderID,
	})
	existing, err := s.payments.GetPendingPayment(ctx, auctionID)
	switch {
	case err == nil:
		return s.paymentOrder(existing)
	case errors.Is(err, apperrors.ErrNotFound):
		return nil, apperrors.Validation("auction %s is already paid", auctionID)
	default:
		return nil, fmt.Errorf("failed to look up pending payment: %w", err)
	}
}

func (s *PaymentService) paymentOrder(p *models.Payment) (*models.PaymentOrder, error) {
	amountMinor, err := lifecycle.OrderAmountMinor(p.Amount)
	if err != nil {
		return nil, err
	}
	return &models.PaymentOrder{
		AuctionID:   p.AuctionID,
		OrderID:     p.ProviderOrderID,
		KeyID:       s.gateway.KeyID(),
		AmountMinor: amountMinor,
		Currency:    p.Currency,
	}, nil
}

// WebhookOutcome says what a delivery did. Every outcome is acknowledged.
type WebhookOutcome string

const (
	WebhookSettled   WebhookOutcome = "settled"
	WebhookDuplicate WebhookOutcome = "duplicate"
	WebhookIgnored   WebhookOutcome = "ignored"
)

// HandleWebhook verifies and applies a provider delivery. eventID may be
// empty, in which case the body hash identifies the delivery. Settlement runs
// before the delivery is written to the ledger, so a delivery that failed
// half way is applied again when the provider retries it.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature, eventID string) (WebhookOutcome, error) {
	if !razorpay.VerifySignature(body, signature, s.webhookSecret) {
		logger.Warn("webhook signature mismatch", map[string]any{"event_id": eventID})
		return "", apperrors.ErrInvalidSignature
	}

	// A signed body that does not parse is acknowledged so the provider stops
	// retrying it. It is not recorded: the ledger stores payloads as JSON.
	ev, err := razorpay.ParseWebhookEvent(body)
	if err != nil {
		logger.Warn("ignoring malformed webhook body", map[string]any{
			"event_id": eventID,
			"error":    err.Error(),
		})
		return WebhookIgnored, nil
	}
	if eventID == "" {
		eventID = razorpay.FallbackEventID(body)
	}

	outcome := WebhookIgnored
	if ev.Event == razorpay.EventPaymentCaptured && ev.OrderID() != "" {
		outcome, err = s.settle(ctx, ev.OrderID())
		if err != nil {
			return "", err
		}
	} else {
		logger.Info("ignoring webhook event", map[string]any{"event": ev.Event, "event_id": eventID})
	}

	fresh, err := s.payments.RecordWebhookEvent(ctx, models.WebhookEvent{
		ProviderEventID: eventID,
		EventType:       ev.Event,
		OrderID:         ev.OrderID(),
		Payload:         body,
		ReceivedAt:      s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to record webhook event: %w", err)
	}
	if !fresh {
		logger.Info("duplicate webhook delivery", map[string]any{"event_id": eventID})
		if outcome == WebhookSettled {
			// This copy applied the change; a concurrent copy reached the ledger first.
			return WebhookSettled, nil
		}
		return WebhookDuplicate, nil
	}
	return outcome, nil
}

func (s *PaymentService) settle(ctx context.Context, orderID string) (WebhookOutcome, error) {
	res, err := s.payments.MarkPaymentPaid(ctx, orderID, s.now())
	if errors.Is(err, apperrors.ErrNotFound) {
		logger.Warn("captured payment for unknown order", map[string]any{"order_id": orderID})
		return WebhookIgnored, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to settle payment: %w", err)
	}

	logger.Info("payment captured", map[string]any{
		"order_id":   orderID,
		"auction_id": res.Payment.AuctionID.String(),
		"changed":    res.Changed,
	})
	if !res.Changed {
		return WebhookDuplicate, nil
	}
	return WebhookSettled, nil
}
