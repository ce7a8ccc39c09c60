package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storefront-backend/internal/domains/payment/gateway"
	"storefront-backend/internal/domains/payment/gateway/vnpay"
)

// =====================================================
// MOCK VNPAY GATEWAY FOR TESTING
// =====================================================

type MockVNPayGateway struct {
	mock.Mock
}

var _ gateway.VNPayGateway = (*MockVNPayGateway)(nil)

func (m *MockVNPayGateway) CreatePaymentURL(ctx context.Context, req vnpay.PaymentRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockVNPayGateway) VerifyCallback(params map[string]string) vnpay.VerificationResult {
	args := m.Called(params)
	return args.Get(0).(vnpay.VerificationResult)
}

func (m *MockVNPayGateway) QueryTransaction(ctx context.Context, req vnpay.QueryRequest) (*vnpay.QueryResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vnpay.QueryResult), args.Error(1)
}
