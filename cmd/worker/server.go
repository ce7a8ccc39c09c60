package main

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"storefront-backend/internal/shared"
	"storefront-backend/pkg/container"
)

// asynqServer wraps asynq.Server with additional functionality
type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer creates and configures the Asynq server
func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		c.AsynqRedisOpt(),
		asynq.Config{
			Queues: map[string]int{
				shared.QueueCritical: 6,
				shared.QueueDefault:  3,
				shared.QueueLow:      1,
			},
			Concurrency: c.Config.Job.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				log.Error().
					Err(err).
					Str("task", task.Type()).
					Int("retried", retried).
					Msg("[Asynq] ❌ Task failed")
			}),
		},
	)

	// Start server in goroutine
	go func() {
		log.Info().Msg("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("[Worker] Failed")
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown waits for in-flight tasks (asynq's ShutdownTimeout, 8s by default)
func (s *asynqServer) Shutdown() {
	log.Info().Msg("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Info().Msg("[Worker] ✓ Gracefully stopped")
}
