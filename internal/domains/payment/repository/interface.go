package repository

import (
	"context"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/payment/model"
)

// =====================================================
// CALLBACK LOG REPOSITORY INTERFACE
// =====================================================
type CallbackLogRepository interface {
	// Create is called for every callback, before and regardless of processing
	Create(ctx context.Context, log *model.CallbackLog) error

	// UpdateOutcome stores what processing did with the callback
	UpdateOutcome(ctx context.Context, id uuid.UUID, outcome model.CallbackOutcome, errMsg *string) error

	// ExistsProcessed reports whether a valid callback with the same
	// (order ref, transaction no, response code) already changed an order
	ExistsProcessed(ctx context.Context, orderRef, transactionNo, responseCode string) (bool, error)

	ListByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]model.CallbackLog, error)
}
