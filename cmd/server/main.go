// @title           Auction Marketplace API
// @version         1.0.0
// @description     Backend API for an auction marketplace: admin-approved listings, atomic bidding with live updates over websockets, Razorpay checkout for winners and seller shipment tracking.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"auction-backend/docs"
	"auction-backend/internal/config"
	"auction-backend/internal/database"
	"auction-backend/internal/handlers"
	"auction-backend/internal/logger"
	"auction-backend/internal/models"
	"auction-backend/internal/razorpay"
	"auction-backend/internal/realtime"
	"auction-backend/internal/repository"
	"auction-backend/internal/scheduler"
	"auction-backend/internal/services"
	"auction-backend/internal/supabase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var devCategories = []string{"Electronics", "Fashion", "Home & Garden", "Collectibles", "Art", "Vehicles"}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, pinger := openStore(ctx, cfg)
	defer store.Close()

	// Realtime: local hub, optionally relayed through Redis across instances.
	hub := realtime.NewHub(0)
	var publisher realtime.Publisher = hub
	if cfg.RedisURL != "" {
		redisClient, err := realtime.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to configure redis", map[string]any{"error": err.Error()})
		}
		defer redisClient.Close()
		broadcaster := realtime.NewRedisBroadcaster(redisClient, hub)
		publisher = broadcaster
		go func() {
			if err := broadcaster.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("realtime relay stopped", map[string]any{"error": err.Error()})
			}
		}()
	} else {
		logger.Info("REDIS_URL not set, bid events stay on this instance", nil)
	}

	gateway := razorpay.NewClient(cfg.RazorpayAPIBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	auctionService := services.NewAuctionService(store, store, store, publisher)
	biddingService := services.NewBiddingService(store, store, hub, publisher)
	paymentService := services.NewPaymentService(store, store, gateway, cfg.PaymentCurrency, cfg.RazorpayWebhookSecret)
	shipmentService := services.NewShipmentService(store, store, store)
	watchlistService := services.NewWatchlistService(store)
	profileService := services.NewProfileService(store)
	analyticsService := services.NewAnalyticsService(store, store)

	var signupService handlers.SignupAPI
	if cfg.IdentityEnabled() {
		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			logger.Fatal("failed to initialize Supabase client", map[string]any{"error": err.Error()})
		}
		signupService = services.NewSignupService(supabaseClient.Identity(), store)
	} else {
		logger.Warn("SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY not set, signup is disabled", nil)
	}

	// Close ended auctions on a schedule.
	runner := scheduler.New(ctx)
	if _, err := runner.Add(cfg.AuctionCloseSchedule, scheduler.CloseAuctionsJob(auctionService)); err != nil {
		logger.Fatal("invalid AUCTION_CLOSE_SCHEDULE", map[string]any{"schedule": cfg.AuctionCloseSchedule, "error": err.Error()})
	}
	runner.Start()
	defer runner.Stop()

	router := handlers.NewRouter(cfg, store, handlers.Handlers{
		Health:    handlers.NewHealthHandler(pinger, hub),
		Auctions:  handlers.NewAuctionsHandler(auctionService),
		Bids:      handlers.NewBidsHandler(biddingService, cfg.WebsocketOrigins),
		Payments:  handlers.NewPaymentsHandler(paymentService),
		Shipments: handlers.NewShipmentsHandler(shipmentService),
		Watchlist: handlers.NewWatchlistHandler(watchlistService),
		Accounts:  handlers.NewAccountsHandler(signupService, profileService),
		Admin:     handlers.NewAdminHandler(auctionService, analyticsService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", map[string]any{"port": cfg.Port, "environment": cfg.Environment})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", map[string]any{"error": err.Error()})
	}
}

// openStore connects to Postgres and applies migrations when DATABASE_URL is
// set. Without it the server runs on the in-memory store.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, handlers.Pinger) {
	if cfg.DatabaseURL == "" {
		if cfg.Environment == "production" {
			logger.Fatal("DATABASE_URL is required in production", nil)
		}
		logger.Warn("DATABASE_URL not set, using the in-memory store; data is lost on restart", nil)
		mem := repository.NewMemoryRepo()
		for _, name := range devCategories {
			mem.AddCategory(models.Category{ID: uuid.New(), Name: name})
		}
		return mem, nil
	}

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to initialize database client", map[string]any{"error": err.Error()})
	}

	migrator := database.NewMigratorFromDB(dbClient.DB())
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("migration failed", map[string]any{"error": err.Error()})
	}
	logger.Info("migrations completed successfully", nil)

	return dbClient, dbClient.DB()
}
