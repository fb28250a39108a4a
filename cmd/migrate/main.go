// Command migrate applies pending schema migrations and exits. The server
// runs the same migrations on startup; this is for deploys that migrate
// ahead of rolling out new instances.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"auction-backend/internal/config"
	"auction-backend/internal/database"
	"auction-backend/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect for migrations", map[string]any{"error": err.Error()})
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("migrations failed", map[string]any{"error": err.Error()})
	}
	logger.Info("migrations complete", nil)
}
