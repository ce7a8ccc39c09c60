package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/order/model"
)

// =====================================================
// ORDER REPOSITORY INTERFACE
// =====================================================
type OrderRepository interface {
	// Create inserts the order and its items in one transaction
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]model.Order, int, error)

	// RecordPaymentAttempt stores the vnp_CreateDate of the latest checkout attempt
	RecordPaymentAttempt(ctx context.Context, orderID uuid.UUID, at time.Time) error

	// MarkPaid moves a pending order to processing. The bool is false when the
	// order was no longer pending, i.e. another callback got there first.
	MarkPaid(ctx context.Context, orderID uuid.UUID, update model.PaymentUpdate) (bool, error)

	// MarkPaymentFailed flags the payment as failed; the order stays pending
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID, responseCode string) error

	// Cancel moves a pending order to cancelled. Same bool semantics as MarkPaid.
	Cancel(ctx context.Context, orderID uuid.UUID, reason string) (bool, error)

	// ListStalePending returns VNPay orders still pending whose last attempt is older than before
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]model.Order, error)

	GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error)
}
