package service

import (
	"context"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/order/model"
)

// =====================================================
// ORDER SERVICE INTERFACE
// =====================================================
type OrderService interface {
	// Create new order; VNPay orders wait in pending until paid
	CreateOrder(ctx context.Context, userID uuid.UUID, req model.CreateOrderRequest) (*model.CreateOrderResponse, error)

	// Get order detail by ID (ownership checked)
	GetOrderDetail(ctx context.Context, orderID uuid.UUID, userID uuid.UUID) (*model.OrderDetailResponse, error)

	// List user's orders with pagination
	ListOrders(ctx context.Context, userID uuid.UUID, req model.ListOrdersRequest) (*model.ListOrdersResponse, error)

	// Cancel a pending order on behalf of its owner
	CancelOrder(ctx context.Context, orderID uuid.UUID, userID uuid.UUID) error
}
