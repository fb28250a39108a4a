package handlers

import (
	"net/http"

	"auction-backend/internal/middleware"
	"auction-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type ShipmentsHandler struct {
	shipments ShipmentAPI
}

func NewShipmentsHandler(shipments ShipmentAPI) *ShipmentsHandler {
	return &ShipmentsHandler{shipments: shipments}
}

// UpsertShipment godoc
// @Summary     Create or update the shipment
// @Description Seller only, and only after the winner's payment is confirmed. The shipping address defaults to the winner's profile address.
// @Tags        shipments
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       auction_id path string                       true "Auction ID"
// @Param       request    body models.UpsertShipmentRequest true "Shipment"
// @Success     200 {object} models.Shipment
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /auctions/{auction_id}/shipment [put]
func (h *ShipmentsHandler) UpsertShipment(c *gin.Context) {
	auctionID, ok := auctionIDParam(c)
	if !ok {
		return
	}
	var req models.UpsertShipmentRequest
	if !bindJSON(c, &req) {
		return
	}

	shipment, err := h.shipments.UpsertShipment(c.Request.Context(), auctionID, middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

// GetShipment godoc
// @Summary     Get the shipment
// @Description Visible to the seller and the winner.
// @Tags        shipments
// @Produce     json
// @Security    Bearer
// @Param       auction_id path string true "Auction ID"
// @Success     200 {object} models.Shipment
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /auctions/{auction_id}/shipment [get]
func (h *ShipmentsHandler) GetShipment(c *gin.Context) {
	auctionID, ok := auctionIDParam(c)
	if !ok {
		return
	}

	shipment, err := h.shipments.GetShipment(c.Request.Context(), auctionID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}
