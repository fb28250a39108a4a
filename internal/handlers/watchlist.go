package handlers

import (
	"net/http"

	"auction-backend/internal/middleware"
	"auction-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type WatchlistHandler struct {
	watchlist WatchlistAPI
}

func NewWatchlistHandler(watchlist WatchlistAPI) *WatchlistHandler {
	return &WatchlistHandler{watchlist: watchlist}
}

// List godoc
// @Summary     List the watchlist
// @Tags        watchlist
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.WatchlistResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /watchlist [get]
func (h *WatchlistHandler) List(c *gin.Context) {
	entries, err := h.watchlist.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.WatchlistResponse{Entries: entries})
}

// Status godoc
// @Summary     Whether the caller watches an auction
// @Tags        watchlist
// @Produce     json
// @Security    Bearer
// @Param       auction_id path string true "Auction ID"
// @Success     200 {object} models.WatchStatusResponse
// @Router      /watchlist/{auction_id} [get]
func (h *WatchlistHandler) Status(c *gin.Context) {
	auctionID, ok := auctionIDParam(c)
	if !ok {
		return
	}

	watching, err := h.watchlist.Contains(c.Request.Context(), middleware.UserID(c), auctionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.WatchStatusResponse{AuctionID: auctionID, Watching: watching})
}

// Add godoc
// @Summary     Watch an auction
// @Tags        watchlist
// @Produce     json
// @Security    Bearer
// @Param       auction_id path string true "Auction ID"
// @Success     200 {object} models.WatchlistEntry
// @Failure     404 {object} models.ErrorResponse
// @Router      /watchlist/{auction_id} [post]
func (h *WatchlistHandler) Add(c *gin.Context) {
	auctionID, ok := auctionIDParam(c)
	if !ok {
		return
	}

	entry, err := h.watchlist.Add(c.Request.Context(), middleware.UserID(c), auctionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Remove godoc
// @Summary     Stop watching an auction
// @Tags        watchlist
// @Security    Bearer
// @Param       auction_id path string true "Auction ID"
// @Success     204
// @Router      /watchlist/{auction_id} [delete]
func (h *WatchlistHandler) Remove(c *gin.Context) {
	auctionID, ok := auctionIDParam(c)
	if !ok {
		return
	}

	if err := h.watchlist.Remove(c.Request.Context(), middleware.UserID(c), auctionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
