package handlers

import (
	"net/http"

	"auction-backend/internal/logger"
	"auction-backend/internal/middleware"
	"auction-backend/internal/models"
	"auction-backend/internal/realtime"

	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"
)

type BidsHandler struct {
	bidding        BiddingAPI
	streamOptions  realtime.StreamOptions
	allowedOrigins []string
}

// NewBidsHandler serves bids and the websocket stream. allowedOrigins lists
// host patterns accepted for cross-origin websocket upgrades.
func NewBidsHandler(bidding BiddingAPI, allowedOrigins []string) *BidsHandler {
	return &BidsHandler{bidding: bidding, allowedOrigins: allowedOrigins}
}

// PlaceBid godoc
// @Summary     Place a bid
// @Description Accepted only while the auction is approved and open, and only when the amount is strictly above the current price.
// @Tags        bids
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       auction_id path string                 true "Auction ID"
// @Param       request    body models.PlaceBidRequest true "Bid"
// @Success     201 {object} models.Bid
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /auctions/{auction_id}/bids [post]
func (h *BidsHandler) PlaceBid(c *gin.Context) {
	auctionID, ok := auctionIDParam(c)
	if !ok {
		return
	}
	var req models.PlaceBidRequest
	if !bindJSON(c, &req) {
		return
	}

	bid, err := h.bidding.PlaceBid(c.Request.Context(), auctionID, middleware.UserID(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bid)
}

// ListBids godoc
// @Summary     Bid history
// @Tags        bids
// @Produce     json
// @Param       auction_id path string true "Auction ID"
// @Success     200 {object} models.BidListResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /auctions/{auction_id}/bids [get]
func (h *BidsHandler) ListBids(c *gin.Context) {
	auctionID, ok := auctionIDParam(c)
	if !ok {
		return
	}

	bids, err := h.bidding.ListBids(c.Request.Context(), auctionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.BidListResponse{Bids: bids})
}

// Stream godoc
// @Summary     Live bid stream
// @Description Websocket. Sends a snapshot of the current price, then one JSON message per accepted bid and a final message when the auction closes.
// @Tags        bids
// @Param       auction_id path string true "Auction ID"
// @Success     101 {object} realtime.Event
// @Failure     404 {object} models.ErrorResponse
// @Router      /auctions/{auction_id}/stream [get]
func (h *BidsHandler) Stream(c *gin.Context) {
	auctionID, ok := auctionIDParam(c)
	if !ok {
		return
	}

	sub, snapshot, err := h.bidding.Subscribe(c.Request.Context(), auctionID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer sub.Close()

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: h.allowedOrigins,
	})
	if err != nil {
		// Accept has already written the HTTP error.
		logger.Warn("websocket upgrade failed", map[string]any{"auction_id": auctionID.String(), "error": err.Error()})
		return
	}
	defer conn.CloseNow()

	err = realtime.Stream(c.Request.Context(), conn, sub, &snapshot, h.streamOptions)
	if !realtime.IsNormalClose(err) {
		logger.Warn("bid stream ended", map[string]any{"auction_id": auctionID.String(), "error": err.Error()})
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}
