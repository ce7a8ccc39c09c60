package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/payment/model"
)

// =====================================================
// PAYMENT SERVICE INTERFACE
// =====================================================
type PaymentService interface {
	// ============================================
	// USER ENDPOINTS
	// ============================================

	// CreateVNPayPayment signs a checkout URL for a pending VNPay order
	CreateVNPayPayment(ctx context.Context, userID uuid.UUID, req model.CreatePaymentRequest, clientIP string) (*model.CreatePaymentResponse, error)

	// GetPaymentStatus is polled by the client after the VNPay redirect
	GetPaymentStatus(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*model.PaymentStatusResponse, error)

	// ============================================
	// CALLBACKS
	// ============================================

	// HandleReturn processes the browser redirect from VNPay (vnp_ReturnUrl)
	HandleReturn(ctx context.Context, params map[string]string, clientIP string) (*model.CallbackResult, error)

	// HandleIPN processes the server-to-server notification.
	// The result is always non-nil; its Outcome maps to the RspCode.
	HandleIPN(ctx context.Context, params map[string]string, clientIP string) (*model.CallbackResult, error)

	// ============================================
	// BACKGROUND JOBS
	// ============================================

	// ReconcilePending queries VNPay for orders pending longer than olderThan
	ReconcilePending(ctx context.Context, olderThan time.Duration, limit int) (*model.ReconcileSummary, error)
}
