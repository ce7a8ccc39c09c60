package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/order/model"
	"storefront-backend/internal/domains/order/repository"
	"storefront-backend/pkg/logger"
)

// =====================================================
// ORDER SERVICE IMPLEMENTATION
// =====================================================
type orderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidOrder, "Invalid order request", err)
	}

	order := &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   model.PaymentStatusUnpaid,
		Status:          model.InitialStatus(req.PaymentMethod),
		ShippingAddress: req.ShippingAddress,
	}

	order.Items = make([]model.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		order.Items = append(order.Items, model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	order.TotalAmount = model.CalculateTotal(order.Items)
	if !order.TotalAmount.IsPositive() {
		return nil, model.NewOrderError(model.ErrCodeInvalidOrder, "Order total must be positive", model.ErrInvalidTotal)
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id":       order.ID.String(),
		"user_id":        userID.String(),
		"payment_method": order.PaymentMethod,
		"total":          order.TotalAmount.String(),
	})

	return &model.CreateOrderResponse{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
	}, nil
}

func (s *orderService) GetOrderDetail(ctx context.Context, orderID uuid.UUID, userID uuid.UUID) (*model.OrderDetailResponse, error) {
	order, err := s.getOwnedOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.orderRepo.GetStatusHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get status history: %w", err)
	}

	resp := model.ToDetailResponse(order)
	resp.StatusHistory = history
	return &resp, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, req model.ListOrdersRequest) (*model.ListOrdersResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidStatus, "Invalid status filter", err)
	}

	orders, total, err := s.orderRepo.ListByUser(ctx, userID, req.Status, req.Limit, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	summaries := make([]model.OrderSummaryResponse, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, model.OrderSummaryResponse{
			ID:            o.ID,
			Status:        o.Status,
			PaymentMethod: o.PaymentMethod,
			PaymentStatus: o.PaymentStatus,
			TotalAmount:   o.TotalAmount,
			CreatedAt:     o.CreatedAt,
		})
	}

	return &model.ListOrdersResponse{
		Orders:     summaries,
		Pagination: model.NewPaginationMeta(req.Page, req.Limit, total),
	}, nil
}

func (s *orderService) CancelOrder(ctx context.Context, orderID uuid.UUID, userID uuid.UUID) error {
	order, err := s.getOwnedOrder(ctx, orderID, userID)
	if err != nil {
		return err
	}

	if order.Status != model.OrderStatusPending {
		return model.NewOrderError(model.ErrCodeOrderCannotCancel, "Only pending orders can be cancelled", model.ErrOrderCannotCancel)
	}

	cancelled, err := s.orderRepo.Cancel(ctx, orderID, model.CancelReasonUser)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	if !cancelled {
		// lost the race against a payment callback
		return model.NewOrderError(model.ErrCodeOrderCannotCancel, "Order is no longer pending", model.ErrOrderCannotCancel)
	}

	logger.Info("Order cancelled by user", map[string]interface{}{
		"order_id": orderID.String(),
		"user_id":  userID.String(),
	})
	return nil
}

func (s *orderService) getOwnedOrder(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			return nil, model.NewOrderError(model.ErrCodeOrderNotFound, "Order not found", err)
		}
		return nil, err
	}

	if !order.IsOwnedBy(userID) {
		return nil, model.NewOrderError(model.ErrCodeUnauthorized, "You do not have access to this order", model.ErrUnauthorized)
	}
	return order, nil
}
