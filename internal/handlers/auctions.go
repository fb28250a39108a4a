package handlers

import (
	"net/http"
	"strconv"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/middleware"
	"auction-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuctionsHandler struct {
	auctions AuctionAPI
}

func NewAuctionsHandler(auctions AuctionAPI) *AuctionsHandler {
	return &AuctionsHandler{auctions: auctions}
}

// CreateAuction godoc
// @Summary     Submit an auction
// @Description Creates a listing owned by the caller. New auctions stay hidden until an admin approves them.
// @Tags        auctions
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateAuctionRequest true "Auction"
// @Success     201 {object} models.Auction
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /auctions [post]
func (h *AuctionsHandler) CreateAuction(c *gin.Context) {
	var req models.CreateAuctionRequest
	if !bindJSON(c, &req) {
		return
	}

	auction, err := h.auctions.CreateAuction(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, auction)
}

// ListAuctions godoc
// @Summary     List auctions
// @Description Public listing of approved auctions, newest first.
// @Tags        auctions
// @Produce     json
// @Param       category_id query string false "Category"
// @Param       q           query string false "Search title and description"
// @Param       limit       query int    false "Page size"
// @Param       offset      query int    false "Offset"
// @Success     200 {object} models.AuctionListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /auctions [get]
func (h *AuctionsHandler) ListAuctions(c *gin.Context) {
	filter := models.AuctionFilter{Query: c.Query("q")}

	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, apperrors.Validation("category_id must be a uuid"))
			return
		}
		filter.CategoryID = &id
	}
	var ok bool
	if filter.Limit, ok = intQuery(c, "limit"); !ok {
		return
	}
	if filter.Offset, ok = intQuery(c, "offset"); !ok {
		return
	}

	listings, err := h.auctions.ListAuctions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AuctionListResponse{Auctions: listings})
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, apperrors.Validation("%s must be an integer", name))
		return 0, false
	}
	return n, true
}

// GetAuction godoc
// @Summary     Get an auction
// @Description Approved auctions are public. Pending and rejected ones are visible to their seller and to admins only.
// @Tags        auctions
// @Produce     json
// @Param       auction_id path string true "Auction ID"
// @Success     200 {object} models.Auction
// @Failure     404 {object} models.ErrorResponse
// @Router      /auctions/{auction_id} [get]
func (h *AuctionsHandler) GetAuction(c *gin.Context) {
	auctionID, ok := auctionIDParam(c)
	if !ok {
		return
	}

	auction, err := h.auctions.GetAuction(c.Request.Context(), auctionID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, auction)
}

// ListCategories godoc
// @Summary     List categories
// @Tags        auctions
// @Produce     json
// @Success     200 {object} models.CategoryListResponse
// @Router      /categories [get]
func (h *AuctionsHandler) ListCategories(c *gin.Context) {
	categories, err := h.auctions.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CategoryListResponse{Categories: categories})
}

// MyAuctions godoc
// @Summary     My auctions
// @Description Auctions the caller sells and auctions the caller has bid on.
// @Tags        auctions
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.MyAuctionsResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /me/auctions [get]
func (h *AuctionsHandler) MyAuctions(c *gin.Context) {
	mine, err := h.auctions.MyAuctions(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mine)
}
