package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-backend/internal/domains/order/model"
	"storefront-backend/internal/domains/order/service"
	"storefront-backend/internal/shared/middleware"
	"storefront-backend/internal/shared/response"
	"storefront-backend/pkg/logger"
)

// =====================================================
// ORDER HANDLER
// =====================================================
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// RegisterRoutes registers order routes on a group already guarded by AuthMiddleware
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.POST("", h.CreateOrder)             // POST /v1/orders
		orders.GET("", h.ListOrders)               // GET /v1/orders?page=1&limit=20&status=pending
		orders.GET("/:id", h.GetOrderDetail)       // GET /v1/orders/:id
		orders.PATCH("/:id/cancel", h.CancelOrder) // PATCH /v1/orders/:id/cancel
	}
}

// CreateOrder godoc
// @Summary Create new order
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body model.CreateOrderRequest true "Create order request"
// @Success 201 {object} response.Response{data=model.CreateOrderResponse}
// @Router /v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", map[string]string{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "Validation failed", map[string]string{"error": err.Error()})
		return
	}

	created, err := h.orderService.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Order created successfully", created)
}

// GetOrderDetail godoc
// @Summary Get order detail
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Success 200 {object} response.Response{data=model.OrderDetailResponse}
// @Router /v1/orders/{id} [get]
func (h *OrderHandler) GetOrderDetail(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	detail, err := h.orderService.GetOrderDetail(c.Request.Context(), orderID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order retrieved successfully", detail)
}

// ListOrders godoc
// @Summary List user's orders
// @Tags Orders
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response{data=model.ListOrdersResponse}
// @Router /v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var query model.ListOrdersRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", map[string]string{"error": err.Error()})
		return
	}

	page, err := h.orderService.ListOrders(c.Request.Context(), userID, query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Orders retrieved successfully", page)
}

// CancelOrder godoc
// @Summary Cancel a pending order
// @Tags Orders
// @Param id path string true "Order ID (UUID)"
// @Success 200 {object} response.Response
// @Router /v1/orders/{id}/cancel [patch]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := h.orderService.CancelOrder(c.Request.Context(), orderID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order cancelled successfully", nil)
}

// =====================================================
// HELPERS
// =====================================================

// currentUser đọc user_id do AuthMiddleware gắn vào; trả 401 nếu thiếu.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, err := userIDFromContext(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Unauthorized", map[string]string{"code": model.ErrCodeUnauthorized})
		return uuid.Nil, false
	}
	return userID, true
}

func orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid order ID", map[string]string{"code": model.ErrCodeInvalidOrder})
		return uuid.Nil, false
	}
	return id, true
}

func userIDFromContext(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextKeyUserID)
	if !exists {
		return uuid.Nil, errors.New("user_id not found in context")
	}

	switch v := raw.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	}
	return uuid.Nil, errors.New("invalid user_id type in context")
}

// handleServiceError maps service errors to HTTP responses
func (h *OrderHandler) handleServiceError(c *gin.Context, err error) {
	var orderErr *model.OrderError
	if errors.As(err, &orderErr) {
		response.Error(c, statusFromErrorCode(orderErr.Code), orderErr.Message, map[string]string{
			"code": orderErr.Code,
		})
		return
	}

	if errors.Is(err, model.ErrOrderNotFound) {
		response.Error(c, http.StatusNotFound, "Order not found", map[string]string{
			"code": model.ErrCodeOrderNotFound,
		})
		return
	}

	logger.Error("order handler: unexpected error", err)
	response.Error(c, http.StatusInternalServerError, "Internal server error", nil)
}

func statusFromErrorCode(code string) int {
	switch code {
	case model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized:
		return http.StatusForbidden
	case model.ErrCodeOrderCannotCancel:
		return http.StatusConflict
	case model.ErrCodeInvalidOrder, model.ErrCodeInvalidStatus:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
