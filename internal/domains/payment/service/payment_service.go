package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	orderModel "storefront-backend/internal/domains/order/model"
	orderRepo "storefront-backend/internal/domains/order/repository"
	"storefront-backend/internal/domains/payment/gateway"
	"storefront-backend/internal/domains/payment/gateway/vnpay"
	"storefront-backend/internal/domains/payment/model"
	repo "storefront-backend/internal/domains/payment/repository"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/logger"
)

// =====================================================
// PAYMENT SERVICE IMPLEMENTATION
// =====================================================
type paymentService struct {
	orderRepo    orderRepo.OrderRepository
	callbackRepo repo.CallbackLogRepository
	cache        cache.Cache

	vnpayGateway gateway.VNPayGateway

	now func() time.Time
}

func NewPaymentService(
	orderRepo orderRepo.OrderRepository,
	callbackRepo repo.CallbackLogRepository,
	cache cache.Cache,
	vnpayGateway gateway.VNPayGateway,
) PaymentService {
	return &paymentService{
		orderRepo:    orderRepo,
		callbackRepo: callbackRepo,
		cache:        cache,
		vnpayGateway: vnpayGateway,
		now:          time.Now,
	}
}

// =====================================================
// CREATE PAYMENT
// =====================================================

// CreateVNPayPayment generates the VNPay redirect URL for an order
//
// Business Logic Flow:
// 1. Validate request
// 2. Get order and verify ownership
// 3. Order must be a VNPay order, pending and unpaid
// 4. Amount defaults to the order total; an explicit amount must match it
// 5. Sign the URL with CreateDate = now
// 6. Remember the CreateDate on the order (querydr needs it later)
func (s *paymentService) CreateVNPayPayment(
	ctx context.Context,
	userID uuid.UUID,
	req model.CreatePaymentRequest,
	clientIP string,
) (*model.CreatePaymentResponse, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewPaymentError(model.ErrCodeInvalidRequest, "Invalid request", err)
	}

	// Step 2: Get order and verify ownership
	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, orderModel.ErrOrderNotFound) {
			return nil, model.NewOrderNotFoundError(req.OrderID.String())
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if !order.IsOwnedBy(userID) {
		return nil, model.NewPaymentError(model.ErrCodeUnauthorized, "You do not own this order", model.ErrUnauthorized)
	}

	// Step 3: Validate order state
	if order.PaymentMethod != orderModel.PaymentMethodVNPay {
		return nil, model.NewPaymentError(
			model.ErrCodeInvalidGateway,
			fmt.Sprintf("Order payment method is %s", order.PaymentMethod),
			model.ErrInvalidGateway,
		)
	}
	if order.IsPaymentCompleted() {
		return nil, model.NewOrderAlreadyPaidError(order.ID.String())
	}
	if order.Status == orderModel.OrderStatusCancelled {
		return nil, model.NewPaymentError(model.ErrCodeOrderCancelled, "Order is cancelled", model.ErrOrderCancelled)
	}
	if order.Status != orderModel.OrderStatusPending {
		return nil, model.NewOrderNotPendingError(order.Status)
	}

	// Step 4: Amount
	amount := order.TotalAmount
	if req.Amount != nil {
		if !req.Amount.Equal(order.TotalAmount) {
			return nil, model.NewInvalidAmountError(req.Amount.String(), order.TotalAmount.String())
		}
		amount = *req.Amount
	}

	// Step 5: Sign
	createdAt := s.now()
	paymentURL, err := s.vnpayGateway.CreatePaymentURL(ctx, vnpay.PaymentRequest{
		OrderRef:  order.ID.String(),
		Amount:    amount,
		ClientIP:  clientIP,
		CreatedAt: createdAt,
		BankCode:  req.BankCode,
		Locale:    req.Locale,
	})
	if err != nil {
		if errors.Is(err, vnpay.ErrInvalidAmount) {
			return nil, model.NewPaymentError(model.ErrCodeInvalidAmount, "Order total cannot be paid via VNPay", err)
		}
		return nil, fmt.Errorf("failed to generate VNPay URL: %w", err)
	}

	// Step 6: Record attempt
	if err := s.orderRepo.RecordPaymentAttempt(ctx, order.ID, createdAt); err != nil {
		if errors.Is(err, orderModel.ErrInvalidStatus) {
			// order vừa bị cancel/paid bởi request khác
			return nil, model.NewOrderNotPendingError("changed")
		}
		return nil, fmt.Errorf("failed to record payment attempt: %w", err)
	}

	logger.Info("VNPay payment created", map[string]interface{}{
		"order_id": order.ID.String(),
		"user_id":  userID.String(),
		"amount":   amount.String(),
	})

	return &model.CreatePaymentResponse{
		PaymentURL: paymentURL,
		OrderID:    order.ID,
		Amount:     amount,
	}, nil
}

// =====================================================
// PAYMENT STATUS
// =====================================================

func (s *paymentService) GetPaymentStatus(
	ctx context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
) (*model.PaymentStatusResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderModel.ErrOrderNotFound) {
			return nil, model.NewOrderNotFoundError(orderID.String())
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if !order.IsOwnedBy(userID) {
		return nil, model.NewPaymentError(model.ErrCodeUnauthorized, "You do not own this order", model.ErrUnauthorized)
	}

	callbacks, err := s.callbackRepo.ListByOrder(ctx, orderID, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to list callbacks: %w", err)
	}

	return &model.PaymentStatusResponse{
		OrderID:       order.ID,
		OrderStatus:   order.Status,
		PaymentStatus: order.PaymentStatus,
		Amount:        order.TotalAmount,
		TransactionNo: order.TransactionNo,
		BankCode:      order.BankCode,
		PaidAt:        order.PaidAt,
		Callbacks:     callbacks,
	}, nil
}
