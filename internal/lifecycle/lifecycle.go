// Package lifecycle holds the auction, bid, payment and shipment transition
// rules. Stores call into it so the in-memory and Postgres implementations
// classify failures identically.
package lifecycle

import (
	"time"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxAmountScale is the number of decimal places accepted for prices and bids.
const MaxAmountScale = 2

// MaxAmount is the largest price or bid the NUMERIC(12,2) columns hold.
var MaxAmount = decimal.RequireFromString("9999999999.99")

var hundred = decimal.NewFromInt(100)

// ValidateAmount rejects non-positive amounts, amounts above MaxAmount and
// amounts finer than one minor currency unit.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.Validation("amount must be positive, got %s", amount.String())
	}
	if amount.GreaterThan(MaxAmount) {
		return apperrors.Validation("amount %s exceeds the maximum of %s", amount.String(), MaxAmount.String())
	}
	if !amount.Equal(amount.Truncate(MaxAmountScale)) {
		return apperrors.Validation("amount %s has more than %d decimal places", amount.String(), MaxAmountScale)
	}
	return nil
}

// ValidateNewAuction checks a listing before it is submitted for approval.
func ValidateNewAuction(a *models.Auction, now time.Time) error {
	if a.Title == "" {
		return apperrors.Validation("title is required")
	}
	if a.SellerID == uuid.Nil {
		return apperrors.ErrAuthenticationRequired
	}
	if err := ValidateAmount(a.StartingPrice); err != nil {
		return err
	}
	if !a.EndTime.After(a.StartTime) {
		return apperrors.Validation("end_time must be after start_time")
	}
	if !a.EndTime.After(now) {
		return apperrors.Validation("end_time must be in the future")
	}
	return nil
}

// IsVisible reports whether buyers may see the auction.
func IsVisible(a *models.Auction) bool {
	return a.ApprovalStatus == models.ApprovalApproved
}

// CheckBiddable verifies approval, status and the [start, end) window.
func CheckBiddable(a *models.Auction, now time.Time) error {
	switch {
	case a.ApprovalStatus != models.ApprovalApproved:
		return apperrors.New(apperrors.KindAuctionNotBiddable, "auction is %s approval", a.ApprovalStatus)
	case a.Status != models.AuctionActive:
		return apperrors.New(apperrors.KindAuctionNotBiddable, "auction is %s", a.Status)
	case now.Before(a.StartTime):
		return apperrors.New(apperrors.KindAuctionNotBiddable, "auction has not started")
	case !now.Before(a.EndTime):
		return apperrors.New(apperrors.KindAuctionNotBiddable, "auction has ended")
	}
	return nil
}

// CheckBid applies every precondition of a bid against the auction row as it
// is at commit time. The caller must hold the row (lock or mutex).
func CheckBid(a *models.Auction, attempt models.BidAttempt) error {
	if attempt.BidderID == uuid.Nil {
		return apperrors.ErrAuthenticationRequired
	}
	if err := ValidateAmount(attempt.Amount); err != nil {
		return err
	}
	if a.SellerID == attempt.BidderID {
		return apperrors.Forbidden("sellers cannot bid on their own auction")
	}
	if err := CheckBiddable(a, attempt.At); err != nil {
		return err
	}
	if !attempt.Amount.GreaterThan(a.CurrentPrice) {
		return apperrors.New(apperrors.KindBidTooLow, "bid must be greater than current price %s", a.CurrentPrice.StringFixed(MaxAmountScale))
	}
	return nil
}

// NextBidTime returns a bid timestamp strictly after the auction's previous bid.
func NextBidTime(last *time.Time, now time.Time) time.Time {
	if last != nil && !now.After(*last) {
		return last.Add(time.Microsecond)
	}
	return now
}

// CheckDecision guards the pending -> approved|rejected transition.
func CheckDecision(a *models.Auction) error {
	if a.ApprovalStatus != models.ApprovalPending {
		return apperrors.New(apperrors.KindAlreadyDecided, "auction already %s", a.ApprovalStatus)
	}
	return nil
}

// ApplyDecision mutates a pending auction according to the decision.
func ApplyDecision(a *models.Auction, d models.ApprovalDecision) {
	switch d.Action {
	case models.AuditApproved:
		a.ApprovalStatus = models.ApprovalApproved
		at := d.DecidedAt
		by := d.AdminID
		a.ApprovedAt = &at
		a.ApprovedBy = &by
	case models.AuditRejected:
		a.ApprovalStatus = models.ApprovalRejected
		a.RejectionReason = d.Reason
	}
	a.UpdatedAt = d.DecidedAt
}

// IsEnded reports whether the closer should complete the auction.
func IsEnded(a *models.Auction, now time.Time) bool {
	return a.Status == models.AuctionActive && !now.Before(a.EndTime)
}

// HighestBid picks the winning bid: highest amount, earliest bid time on ties.
func HighestBid(bids []models.Bid) *models.Bid {
	var best *models.Bid
	for i := range bids {
		b := &bids[i]
		if best == nil || b.Amount.GreaterThan(best.Amount) ||
			(b.Amount.Equal(best.Amount) && b.BidTime.Before(best.BidTime)) {
			best = b
		}
	}
	return best
}

// Close completes an ended auction and records the winner, if any.
func Close(a *models.Auction, highest *models.Bid, now time.Time) {
	a.Status = models.AuctionCompleted
	if highest != nil {
		winner := highest.BidderID
		a.WinnerID = &winner
	}
	a.UpdatedAt = now
}

// CheckCheckout guards payment order creation for requester.
func CheckCheckout(a *models.Auction, requester uuid.UUID) error {
	if requester == uuid.Nil {
		return apperrors.ErrAuthenticationRequired
	}
	if a.Status != models.AuctionCompleted || a.WinnerID == nil {
		return apperrors.Validation("auction has no winner to pay")
	}
	if !a.IsWinner(requester) {
		return apperrors.Forbidden("only the auction winner can pay for it")
	}
	if a.PaymentStatus == models.PaymentPaid {
		return apperrors.Validation("auction is already paid")
	}
	return nil
}

// OrderAmountMinor converts a price to minor currency units:
// floor(price * 100), never below 1. Prices above MaxAmount are rejected
// rather than converted.
func OrderAmountMinor(price decimal.Decimal) (int64, error) {
	if price.GreaterThan(MaxAmount) {
		return 0, apperrors.Validation("price %s exceeds the maximum of %s", price.String(), MaxAmount.String())
	}
	minor := price.Mul(hundred).Floor().IntPart()
	if minor < 1 {
		return 1, nil
	}
	return minor, nil
}

// CheckShipmentGate enforces winner_id != nil && payment_status == paid.
func CheckShipmentGate(a *models.Auction) error {
	if a.WinnerID == nil || a.PaymentStatus != models.PaymentPaid {
		return apperrors.New(apperrors.KindPaymentNotConfirmed, "shipment requires a confirmed payment")
	}
	return nil
}

// CheckShipmentWrite requires the caller to be the seller and payment to be confirmed.
func CheckShipmentWrite(a *models.Auction, caller uuid.UUID) error {
	if a.SellerID != caller {
		return apperrors.Forbidden("only the seller can update the shipment")
	}
	return CheckShipmentGate(a)
}

// CheckShipmentRead allows the seller and the winner only.
func CheckShipmentRead(a *models.Auction, caller uuid.UUID) error {
	if a.SellerID == caller || a.IsWinner(caller) {
		return nil
	}
	return apperrors.Forbidden("only the seller or winner can view the shipment")
}
