package gateway

import (
	"context"

	"storefront-backend/internal/domains/payment/gateway/vnpay"
)

// =====================================================
// GATEWAY INTERFACES
// =====================================================

// VNPayGateway is what the payment service needs from VNPay.
// *vnpay.Client satisfies it.
type VNPayGateway interface {
	// CreatePaymentURL signs a checkout attempt and returns the redirect URL
	CreatePaymentURL(ctx context.Context, req vnpay.PaymentRequest) (string, error)

	// VerifyCallback checks the signature of a return/IPN parameter set
	VerifyCallback(params map[string]string) vnpay.VerificationResult

	// QueryTransaction asks VNPay for the status of an attempt (querydr)
	QueryTransaction(ctx context.Context, req vnpay.QueryRequest) (*vnpay.QueryResult, error)
}

var _ VNPayGateway = (*vnpay.Client)(nil)
