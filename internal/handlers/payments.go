package handlers

import (
	"io"
	"net/http"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/middleware"
	"auction-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxWebhookBody bounds a provider delivery.
const maxWebhookBody = 1 << 20

type PaymentsHandler struct {
	payments PaymentAPI
}

func NewPaymentsHandler(payments PaymentAPI) *PaymentsHandler {
	return &PaymentsHandler{payments: payments}
}

// CreateOrder godoc
// @Summary     Create a payment order
// @Description Opens a Razorpay order for the winner of a completed auction. Returns the order id and the public key for the checkout widget. An existing pending order is returned again.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreatePaymentOrderRequest true "Auction to pay for"
// @Success     200 {object} models.PaymentOrder
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /payments/orders [post]
func (h *PaymentsHandler) CreateOrder(c *gin.Context) {
	var req models.CreatePaymentOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	auctionID, err := uuid.Parse(req.AuctionID)
	if err != nil {
		respondError(c, apperrors.Validation("auction_id must be a uuid"))
		return
	}

	order, err := h.payments.CreatePaymentOrder(c.Request.Context(), auctionID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RazorpayWebhook godoc
// @Summary     Razorpay webhook
// @Description Verifies the HMAC-SHA256 signature of the raw body and settles captured payments. Redeliveries are acknowledged without effect.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       X-Razorpay-Signature header string false "Hex HMAC-SHA256 of the body"
// @Param       X-Signature          header string false "Alternative signature header"
// @Param       X-Razorpay-Event-Id  header string false "Delivery id used for deduplication"
// @Success     200 {object} models.WebhookAckResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /webhooks/razorpay [post]
func (h *PaymentsHandler) RazorpayWebhook(c *gin.Context) {
	// The signature covers the exact bytes received, so the body is read raw.
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, apperrors.Validation("failed to read request body"))
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if signature == "" {
		signature = c.GetHeader("X-Signature")
	}

	outcome, err := h.payments.HandleWebhook(c.Request.Context(), body, signature, c.GetHeader("X-Razorpay-Event-Id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.WebhookAckResponse{Status: string(outcome)})
}
