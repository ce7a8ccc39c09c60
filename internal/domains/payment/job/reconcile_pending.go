package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"storefront-backend/internal/domains/payment/service"
	"storefront-backend/internal/shared"
	"storefront-backend/internal/shared/utils"
)

const DefaultReconcileLimit = 100

type ReconcilePendingHandler struct {
	paymentService service.PaymentService
	timeout        time.Duration
	limit          int
}

// NewReconcilePendingHandler: timeout là thời gian một order VNPay được phép ở pending
func NewReconcilePendingHandler(paymentService service.PaymentService, timeout time.Duration, limit int) *ReconcilePendingHandler {
	if limit <= 0 {
		limit = DefaultReconcileLimit
	}
	return &ReconcilePendingHandler{
		paymentService: paymentService,
		timeout:        timeout,
		limit:          limit,
	}
}

func (h *ReconcilePendingHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ReconcilePendingPayload
	if err := utils.UnmarshalTask(task, &payload); err != nil {
		// Sai format payload, skip retry
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	limit := h.limit
	if payload.Limit > 0 {
		limit = payload.Limit
	}

	log.Info().
		Dur("timeout", h.timeout).
		Int("limit", limit).
		Msg("Starting reconcile of pending VNPay orders")

	summary, err := h.paymentService.ReconcilePending(ctx, h.timeout, limit)
	if err != nil {
		return fmt.Errorf("reconcile pending payments: %w", err)
	}

	log.Info().
		Int("checked", summary.Checked).
		Int("paid", summary.Paid).
		Int("cancelled", summary.Cancelled).
		Int("still_pending", summary.StillPending).
		Int("failed", summary.Failed).
		Msg("Finished reconcile of pending VNPay orders")

	return nil
}
