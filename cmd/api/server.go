package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"storefront-backend/internal/infrastructure/metrics"
	"storefront-backend/pkg/container"
)

func Serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================
	// 1. BUILD DI CONTAINER
	// ========================================
	appContainer, err := container.NewContainer(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize container")
	}
	defer appContainer.Cleanup()

	metrics.MustRegister()
	go appContainer.DB.MonitorPoolHealth(ctx, 30*time.Second)

	// ========================================
	// 2. SETUP ROUTER
	// ========================================
	router := SetupRouter(appContainer)

	// ========================================
	// 3. CONFIGURE HTTP SERVER
	// ========================================
	port := appContainer.Config.App.Port
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// ========================================
	// 4. START SERVER (NON-BLOCKING)
	// ========================================
	go func() {
		log.Info().
			Str("port", port).
			Str("health", fmt.Sprintf("http://localhost:%s/api/v1/health", port)).
			Msg("🚀 Server starting")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ Failed to start server")
		}
	}()

	// ========================================
	// 5. GRACEFUL SHUTDOWN
	// ========================================
	<-ctx.Done()
	log.Info().Msg("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("⚠️  Server forced to shutdown")
	}

	log.Info().Msg("✅ Server exited gracefully")
}
