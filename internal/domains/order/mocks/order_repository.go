package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"storefront-backend/internal/domains/order/model"
	"storefront-backend/internal/domains/order/repository"
)

// OrderRepository is a testify mock of repository.OrderRepository.
type OrderRepository struct {
	mock.Mock
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func (m *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]model.Order, int, error) {
	args := m.Called(ctx, userID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Order), args.Int(1), args.Error(2)
}

func (m *OrderRepository) RecordPaymentAttempt(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, orderID, at)
	return args.Error(0)
}

func (m *OrderRepository) MarkPaid(ctx context.Context, orderID uuid.UUID, update model.PaymentUpdate) (bool, error) {
	args := m.Called(ctx, orderID, update)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepository) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID, responseCode string) error {
	args := m.Called(ctx, orderID, responseCode)
	return args.Error(0)
}

func (m *OrderRepository) Cancel(ctx context.Context, orderID uuid.UUID, reason string) (bool, error) {
	args := m.Called(ctx, orderID, reason)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *OrderRepository) GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderStatusHistory), args.Error(1)
}
