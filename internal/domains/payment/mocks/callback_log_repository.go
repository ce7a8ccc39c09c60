package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"storefront-backend/internal/domains/payment/model"
	"storefront-backend/internal/domains/payment/repository"
)

// CallbackLogRepository is a testify mock of repository.CallbackLogRepository.
type CallbackLogRepository struct {
	mock.Mock
}

var _ repository.CallbackLogRepository = (*CallbackLogRepository)(nil)

func (m *CallbackLogRepository) Create(ctx context.Context, log *model.CallbackLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *CallbackLogRepository) UpdateOutcome(ctx context.Context, id uuid.UUID, outcome model.CallbackOutcome, errMsg *string) error {
	args := m.Called(ctx, id, outcome, errMsg)
	return args.Error(0)
}

func (m *CallbackLogRepository) ExistsProcessed(ctx context.Context, orderRef, transactionNo, responseCode string) (bool, error) {
	args := m.Called(ctx, orderRef, transactionNo, responseCode)
	return args.Bool(0), args.Error(1)
}

func (m *CallbackLogRepository) ListByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]model.CallbackLog, error) {
	args := m.Called(ctx, orderID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CallbackLog), args.Error(1)
}
