package handlers

import (
	"net/http"

	"auction-backend/internal/middleware"
	"auction-backend/internal/models"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the approval queue and analytics. Routes are mounted
// behind RequireAdmin; the services check the role again.
type AdminHandler struct {
	auctions  AuctionAPI
	analytics AnalyticsAPI
}

func NewAdminHandler(auctions AuctionAPI, analytics AnalyticsAPI) *AdminHandler {
	return &AdminHandler{auctions: auctions, analytics: analytics}
}

// ListPending godoc
// @Summary     Pending approvals
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.AuctionsResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /admin/auctions/pending [get]
func (h *AdminHandler) ListPending(c *gin.Context) {
	auctions, err := h.auctions.ListPendingAuctions(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AuctionsResponse{Auctions: auctions})
}

// Approve godoc
// @Summary     Approve an auction
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       auction_id path string true "Auction ID"
// @Success     200 {object} models.Auction
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /admin/auctions/{auction_id}/approve [post]
func (h *AdminHandler) Approve(c *gin.Context) {
	auctionID, ok := auctionIDParam(c)
	if !ok {
		return
	}

	auction, err := h.auctions.Approve(c.Request.Context(), auctionID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, auction)
}

// Reject godoc
// @Summary     Reject an auction
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       auction_id path string                      true "Auction ID"
// @Param       request    body models.RejectAuctionRequest true "Reason"
// @Success     200 {object} models.Auction
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /admin/auctions/{auction_id}/reject [post]
func (h *AdminHandler) Reject(c *gin.Context) {
	auctionID, ok := auctionIDParam(c)
	if !ok {
		return
	}
	var req models.RejectAuctionRequest
	if !bindJSON(c, &req) {
		return
	}

	auction, err := h.auctions.Reject(c.Request.Context(), auctionID, middleware.UserID(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, auction)
}

// AuditLog godoc
// @Summary     Approval audit log
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       auction_id path string true "Auction ID"
// @Success     200 {object} models.AuditLogResponse
// @Router      /admin/auctions/{auction_id}/audit [get]
func (h *AdminHandler) AuditLog(c *gin.Context) {
	auctionID, ok := auctionIDParam(c)
	if !ok {
		return
	}

	entries, err := h.auctions.ListAuditLog(c.Request.Context(), auctionID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AuditLogResponse{Entries: entries})
}

// Analytics godoc
// @Summary     Marketplace analytics
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       top    query int false "Number of top auctions (default 5)"
// @Param       months query int false "Months of revenue history (default 6)"
// @Success     200 {object} models.Analytics
// @Failure     400 {object} models.ErrorResponse
// @Router      /admin/analytics [get]
func (h *AdminHandler) Analytics(c *gin.Context) {
	top, ok := intQuery(c, "top")
	if !ok {
		return
	}
	months, ok := intQuery(c, "months")
	if !ok {
		return
	}

	dashboard, err := h.analytics.Dashboard(c.Request.Context(), middleware.UserID(c), top, months)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
