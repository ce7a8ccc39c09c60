// cmd/worker/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"storefront-backend/internal/infrastructure/metrics"
	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/container"
	"storefront-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Init(
		utils.GetEnvVariable("APP_ENV", "development"),
		utils.GetEnvVariable("LOG_LEVEL", "info"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize container
	c, err := container.NewContainer(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("[Container] Failed to initialize")
	}
	defer c.Cleanup()

	metrics.MustRegister()

	// Initialize handlers
	handlers := initializeHandlers(c)

	// Setup Asynq server
	srv := setupAsynqServer(c, handlers)

	// Setup scheduler
	scheduler := setupScheduler(c)

	// Perform health checks and log startup
	if err := startServices(ctx, c); err != nil {
		log.Fatal().Err(err).Msg("[Startup] Health check failed")
	}

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info().Msg("[Shutdown] Gracefully stopping...")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Info().Msg("[Shutdown] ✓ Stopped")
}
