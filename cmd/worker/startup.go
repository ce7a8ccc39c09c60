// cmd/worker/startup.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/container"
)

// startServices performs health checks and starts the probe endpoint
func startServices(ctx context.Context, c *container.Container) error {
	log.Info().Msg("🚀 Storefront Worker Starting...")

	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Redis Connection", c.Redis.HealthCheck},
		{"Database", c.DB.HealthCheck},
	}

	for _, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := check.fn(checkCtx)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("check", check.name).Msg("❌ Health check failed")
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("✓ OK")
	}

	go startHealthCheckServer(c)

	return nil
}

// startHealthCheckServer serves /health, /ready and /metrics
func startHealthCheckServer(c *container.Container) {
	addr := utils.GetEnvVariable("WORKER_HEALTH_ADDR", ":9999")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, `{"status":"UP","service":"storefront-worker"}`)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.Redis.HealthCheck(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, `{"status":"NOT_READY"}`)
			return
		}
		writeStatus(w, http.StatusOK, `{"status":"READY"}`)
	})

	// reconcile metrics chỉ có ở process worker
	mux.Handle("/metrics", promhttp.Handler())

	log.Info().Str("addr", addr).Msg("[Health] Starting health check server")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("[Health] Failed to start")
	}
}

func writeStatus(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}
