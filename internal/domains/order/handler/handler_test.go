package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/domains/order/model"
	"storefront-backend/internal/shared/middleware"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CreateOrderResponse), args.Error(1)
}

func (m *mockOrderService) GetOrderDetail(ctx context.Context, orderID, userID uuid.UUID) (*model.OrderDetailResponse, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetailResponse), args.Error(1)
}

func (m *mockOrderService) ListOrders(ctx context.Context, userID uuid.UUID, req model.ListOrdersRequest) (*model.ListOrdersResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ListOrdersResponse), args.Error(1)
}

func (m *mockOrderService) CancelOrder(ctx context.Context, orderID, userID uuid.UUID) error {
	args := m.Called(ctx, orderID, userID)
	return args.Error(0)
}

func setupRouter(svc *mockOrderService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api/v1")
	if userID != uuid.Nil {
		group.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyUserID, userID)
			c.Next()
		})
	}
	NewOrderHandler(svc).RegisterRoutes(group)
	return r
}

func TestCreateOrder(t *testing.T) {
	userID := uuid.New()

	t.Run("created", func(t *testing.T) {
		svc := new(mockOrderService)
		orderID := uuid.New()
		svc.On("CreateOrder", mock.Anything, userID, mock.AnythingOfType("model.CreateOrderRequest")).
			Return(&model.CreateOrderResponse{OrderID: orderID, TotalAmount: decimal.NewFromInt(100000), Status: model.OrderStatusPending}, nil)

		body, _ := json.Marshal(map[string]any{
			"payment_method": "vnpay",
			"items": []map[string]any{
				{"product_id": uuid.NewString(), "quantity": 1, "price": "100000"},
			},
		})
		w := httptest.NewRecorder()
		setupRouter(svc, userID).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body)))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), orderID.String())
		svc.AssertExpectations(t)
	})

	t.Run("validation failure", func(t *testing.T) {
		svc := new(mockOrderService)
		body := []byte(`{"payment_method":"momo","items":[]}`)
		w := httptest.NewRecorder()
		setupRouter(svc, userID).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body)))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		svc.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no user in context", func(t *testing.T) {
		svc := new(mockOrderService)
		w := httptest.NewRecorder()
		setupRouter(svc, uuid.Nil).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader([]byte(`{}`))))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetOrderDetail(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("GetOrderDetail", mock.Anything, orderID, userID).Return(&model.OrderDetailResponse{ID: orderID}, nil)

		w := httptest.NewRecorder()
		setupRouter(svc, userID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not owner", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("GetOrderDetail", mock.Anything, orderID, userID).
			Return(nil, model.NewOrderError(model.ErrCodeUnauthorized, "You do not have access to this order", model.ErrUnauthorized))

		w := httptest.NewRecorder()
		setupRouter(svc, userID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil))
		assert.Equal(t, http.StatusForbidden, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, model.ErrCodeUnauthorized, resp["error"].(map[string]any)["code"])
	})

	t.Run("bad id", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupRouter(new(mockOrderService), userID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/xyz", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCancelOrder(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	svc := new(mockOrderService)
	svc.On("CancelOrder", mock.Anything, orderID, userID).
		Return(model.NewOrderError(model.ErrCodeOrderCannotCancel, "Only pending orders can be cancelled", model.ErrOrderCannotCancel))

	w := httptest.NewRecorder()
	setupRouter(svc, userID).ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/cancel", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}
