package handlers

import (
	"auction-backend/internal/config"
	"auction-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health    *HealthHandler
	Auctions  *AuctionsHandler
	Bids      *BidsHandler
	Payments  *PaymentsHandler
	Shipments *ShipmentsHandler
	Watchlist *WatchlistHandler
	Accounts  *AccountsHandler
	Admin     *AdminHandler
}

// NewRouter mounts every route on a new engine.
func NewRouter(cfg *config.Config, admins middleware.AdminChecker, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", h.Health.Health)

	api := router.Group("/api/v1")

	// Webhook (no auth, uses HMAC)
	api.POST("/webhooks/razorpay", h.Payments.RazorpayWebhook)
	api.POST("/signup", h.Accounts.Signup)

	// Public reads; a token, when sent, lets sellers and admins see unapproved auctions.
	public := api.Group("")
	public.Use(middleware.OptionalAuthMiddleware(cfg))
	public.GET("/categories", h.Auctions.ListCategories)
	public.GET("/auctions", h.Auctions.ListAuctions)
	public.GET("/auctions/:auction_id", h.Auctions.GetAuction)
	public.GET("/auctions/:auction_id/bids", h.Bids.ListBids)
	public.GET("/auctions/:auction_id/stream", h.Bids.Stream)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(cfg))
	authed.POST("/auctions", h.Auctions.CreateAuction)
	authed.POST("/auctions/:auction_id/bids", h.Bids.PlaceBid)
	authed.GET("/auctions/:auction_id/shipment", h.Shipments.GetShipment)
	authed.PUT("/auctions/:auction_id/shipment", h.Shipments.UpsertShipment)
	authed.POST("/payments/orders", h.Payments.CreateOrder)
	authed.GET("/watchlist", h.Watchlist.List)
	authed.GET("/watchlist/:auction_id", h.Watchlist.Status)
	authed.POST("/watchlist/:auction_id", h.Watchlist.Add)
	authed.DELETE("/watchlist/:auction_id", h.Watchlist.Remove)
	authed.GET("/profile", h.Accounts.GetProfile)
	authed.PUT("/profile", h.Accounts.UpdateProfile)
	authed.GET("/me/auctions", h.Auctions.MyAuctions)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireAdmin(admins))
	admin.GET("/auctions/pending", h.Admin.ListPending)
	admin.POST("/auctions/:auction_id/approve", h.Admin.Approve)
	admin.POST("/auctions/:auction_id/reject", h.Admin.Reject)
	admin.GET("/auctions/:auction_id/audit", h.Admin.AuditLog)
	admin.GET("/analytics", h.Admin.Analytics)

	return router
}
