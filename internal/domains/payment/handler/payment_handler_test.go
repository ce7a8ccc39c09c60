package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/domains/payment/model"
	"storefront-backend/internal/shared/middleware"
)

type mockPaymentService struct {
	mock.Mock
}

func (m *mockPaymentService) CreateVNPayPayment(ctx context.Context, userID uuid.UUID, req model.CreatePaymentRequest, clientIP string) (*model.CreatePaymentResponse, error) {
	args := m.Called(ctx, userID, req, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CreatePaymentResponse), args.Error(1)
}

func (m *mockPaymentService) GetPaymentStatus(ctx context.Context, userID, orderID uuid.UUID) (*model.PaymentStatusResponse, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentStatusResponse), args.Error(1)
}

func (m *mockPaymentService) HandleReturn(ctx context.Context, params map[string]string, clientIP string) (*model.CallbackResult, error) {
	args := m.Called(ctx, params, clientIP)
	return args.Get(0).(*model.CallbackResult), args.Error(1)
}

func (m *mockPaymentService) HandleIPN(ctx context.Context, params map[string]string, clientIP string) (*model.CallbackResult, error) {
	args := m.Called(ctx, params, clientIP)
	return args.Get(0).(*model.CallbackResult), args.Error(1)
}

func (m *mockPaymentService) ReconcilePending(ctx context.Context, olderThan time.Duration, limit int) (*model.ReconcileSummary, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReconcileSummary), args.Error(1)
}

func setupRouter(svc *mockPaymentService, userID uuid.UUID, frontendURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	public := r.Group("/api/v1")
	authed := r.Group("/api/v1")
	if userID != uuid.Nil {
		authed.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyUserID, userID)
			c.Next()
		})
	}
	NewPaymentHandler(svc, frontendURL).RegisterRoutes(public, authed)
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateVNPayPayment(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("created", func(t *testing.T) {
		svc := new(mockPaymentService)
		svc.On("CreateVNPayPayment", mock.Anything, userID, model.CreatePaymentRequest{OrderID: orderID, BankCode: "NCB"}, mock.Anything).
			Return(&model.CreatePaymentResponse{
				PaymentURL: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?vnp_Amount=1",
				OrderID:    orderID,
				Amount:     decimal.NewFromInt(150000),
			}, nil)

		body := `{"order_id":"` + orderID.String() + `","bank_code":"NCB"}`
		w := httptest.NewRecorder()
		setupRouter(svc, userID, "").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments/vnpay", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "vpcpay.html")
		svc.AssertExpectations(t)
	})

	t.Run("amount mismatch is a bad request", func(t *testing.T) {
		svc := new(mockPaymentService)
		svc.On("CreateVNPayPayment", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(nil, model.NewInvalidAmountError("1000", "150000"))

		body, _ := json.Marshal(map[string]any{"order_id": orderID, "amount": "1000"})
		w := httptest.NewRecorder()
		setupRouter(svc, userID, "").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments/vnpay", bytes.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrCodeInvalidAmount)
	})

	t.Run("order not found", func(t *testing.T) {
		svc := new(mockPaymentService)
		svc.On("CreateVNPayPayment", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(nil, model.NewOrderNotFoundError(orderID.String()))

		body := `{"order_id":"` + orderID.String() + `"}`
		w := httptest.NewRecorder()
		setupRouter(svc, userID, "").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments/vnpay", strings.NewReader(body)))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("internal error hides details", func(t *testing.T) {
		svc := new(mockPaymentService)
		svc.On("CreateVNPayPayment", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(nil, errors.New("pq: connection reset"))

		body := `{"order_id":"` + orderID.String() + `"}`
		w := httptest.NewRecorder()
		setupRouter(svc, userID, "").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments/vnpay", strings.NewReader(body)))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := new(mockPaymentService)
		w := httptest.NewRecorder()
		setupRouter(svc, userID, "").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments/vnpay", strings.NewReader("{")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "CreateVNPayPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no user in context", func(t *testing.T) {
		svc := new(mockPaymentService)
		w := httptest.NewRecorder()
		setupRouter(svc, uuid.Nil, "").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments/vnpay", strings.NewReader("{}")))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetPaymentStatus(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	svc := new(mockPaymentService)
	svc.On("GetPaymentStatus", mock.Anything, userID, orderID).
		Return(&model.PaymentStatusResponse{OrderID: orderID, OrderStatus: "processing", PaymentStatus: "paid"}, nil)

	w := httptest.NewRecorder()
	setupRouter(svc, userID, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/orders/"+orderID.String(), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"payment_status":"paid"`)

	w = httptest.NewRecorder()
	setupRouter(svc, userID, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/orders/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func returnQuery() url.Values {
	q := url.Values{}
	q.Set("vnp_TxnRef", "3f0e2b1c-5d1a-4b7e-9a55-0c6b8e2a9f10")
	q.Set("vnp_OrderInfo", "Thanh toan don hang 3f0e2b1c")
	q.Set("vnp_ResponseCode", "00")
	q.Set("vnp_SecureHash", "abcdef")
	return q
}

func TestVNPayReturn(t *testing.T) {
	q := returnQuery()

	t.Run("paid", func(t *testing.T) {
		svc := new(mockPaymentService)
		svc.On("HandleReturn", mock.Anything, mock.MatchedBy(func(p map[string]string) bool {
			return p["vnp_OrderInfo"] == "Thanh toan don hang 3f0e2b1c" && p["vnp_SecureHash"] == "abcdef"
		}), mock.Anything).Return(&model.CallbackResult{
			Outcome:      model.OutcomePaid,
			OrderID:      q.Get("vnp_TxnRef"),
			ResponseCode: "00",
		}, nil)

		w := httptest.NewRecorder()
		setupRouter(svc, uuid.Nil, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/vnpay-return?"+q.Encode(), nil))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Thanh toán thành công", body["message"])
		svc.AssertExpectations(t)
	})

	t.Run("declined", func(t *testing.T) {
		svc := new(mockPaymentService)
		svc.On("HandleReturn", mock.Anything, mock.Anything, mock.Anything).
			Return(&model.CallbackResult{Outcome: model.OutcomeDeclined, ResponseCode: "24"}, nil)

		w := httptest.NewRecorder()
		setupRouter(svc, uuid.Nil, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/vnpay-return?"+q.Encode(), nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Thanh toán không thành công", decodeBody(t, w)["message"])
	})

	t.Run("invalid signature", func(t *testing.T) {
		svc := new(mockPaymentService)
		svc.On("HandleReturn", mock.Anything, mock.Anything, mock.Anything).
			Return(&model.CallbackResult{Outcome: model.OutcomeInvalidSignature, Message: "Invalid signature"}, model.NewInvalidSignatureError())

		w := httptest.NewRecorder()
		setupRouter(svc, uuid.Nil, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/vnpay-return?"+q.Encode(), nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrCodeInvalidSignature)
	})

	t.Run("redirects to frontend when configured", func(t *testing.T) {
		svc := new(mockPaymentService)
		svc.On("HandleReturn", mock.Anything, mock.Anything, mock.Anything).
			Return(&model.CallbackResult{Outcome: model.OutcomePaid, OrderID: "abc", ResponseCode: "00"}, nil)

		w := httptest.NewRecorder()
		setupRouter(svc, uuid.Nil, "http://localhost:3000/payment-result").
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/vnpay-return?"+q.Encode(), nil))

		assert.Equal(t, http.StatusFound, w.Code)
		location, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/payment-result", location.Path)
		assert.Equal(t, "success", location.Query().Get("status"))
		assert.Equal(t, "abc", location.Query().Get("order_id"))
	})
}

func TestVNPayIPN(t *testing.T) {
	q := returnQuery()

	tests := []struct {
		name    string
		outcome model.CallbackOutcome
		err     error
		rspCode string
	}{
		{"confirmed", model.OutcomePaid, nil, "00"},
		{"declined still confirmed", model.OutcomeDeclined, nil, "00"},
		{"already confirmed", model.OutcomeAlreadyProcessed, nil, "02"},
		{"order not found", model.OutcomeOrderNotFound, model.ErrOrderNotFound, "01"},
		{"invalid amount", model.OutcomeAmountMismatch, model.ErrInvalidAmount, "04"},
		{"invalid signature", model.OutcomeInvalidSignature, model.ErrInvalidSignature, "97"},
		{"unknown error", model.OutcomeError, errors.New("db down"), "99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockPaymentService)
			svc.On("HandleIPN", mock.Anything, mock.Anything, mock.Anything).
				Return(&model.CallbackResult{Outcome: tt.outcome}, tt.err)

			w := httptest.NewRecorder()
			setupRouter(svc, uuid.Nil, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/webhooks/vnpay?"+q.Encode(), nil))

			assert.Equal(t, http.StatusOK, w.Code)
			var resp model.IPNResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.rspCode, resp.RspCode)
			assert.NotEmpty(t, resp.Message)
		})
	}

	t.Run("form post", func(t *testing.T) {
		svc := new(mockPaymentService)
		svc.On("HandleIPN", mock.Anything, mock.MatchedBy(func(p map[string]string) bool {
			return p["vnp_TxnRef"] == q.Get("vnp_TxnRef") && p["vnp_OrderInfo"] == "Thanh toan don hang 3f0e2b1c"
		}), mock.Anything).Return(&model.CallbackResult{Outcome: model.OutcomePaid}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/vnpay", strings.NewReader(q.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		setupRouter(svc, uuid.Nil, "").ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"RspCode":"00","Message":"Confirm Success"}`, w.Body.String())
		svc.AssertExpectations(t)
	})
}
