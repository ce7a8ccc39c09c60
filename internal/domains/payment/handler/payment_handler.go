package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-backend/internal/domains/payment/model"
	"storefront-backend/internal/domains/payment/service"
	"storefront-backend/internal/shared/middleware"
	res "storefront-backend/internal/shared/response"
	"storefront-backend/pkg/logger"
)

type PaymentHandler struct {
	paymentService service.PaymentService

	// frontendReturnURL: nếu có, vnpay-return redirect về trang kết quả của frontend
	frontendReturnURL string
}

// NewPaymentHandler creates new payment handler
func NewPaymentHandler(paymentService service.PaymentService, frontendReturnURL string) *PaymentHandler {
	return &PaymentHandler{
		paymentService:    paymentService,
		frontendReturnURL: frontendReturnURL,
	}
}

// RegisterRoutes: authed phải đi qua AuthMiddleware, public thì không
// (VNPay gọi return/IPN không có token).
func (h *PaymentHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	payments := authed.Group("/payments")
	{
		payments.POST("/vnpay", h.CreateVNPayPayment)         // POST /v1/payments/vnpay
		payments.GET("/orders/:order_id", h.GetPaymentStatus) // GET /v1/payments/orders/:order_id
	}

	public.GET("/payments/vnpay-return", h.VNPayReturn)

	webhooks := public.Group("/webhooks")
	{
		webhooks.GET("/vnpay", h.VNPayIPN)
		webhooks.POST("/vnpay", h.VNPayIPN)
	}
}

// =====================================================
// USER PAYMENT ENDPOINTS
// =====================================================

// CreateVNPayPayment creates the VNPay redirect URL for an order
// POST /api/v1/payments/vnpay
func (h *PaymentHandler) CreateVNPayPayment(c *gin.Context) {
	// Step 1: Get user ID from context
	userID, err := getUserID(c)
	if err != nil {
		res.ErrorResponse(c, http.StatusUnauthorized, model.ErrCodeUnauthorized, "Unauthorized")
		return
	}

	// Step 2: Bind request body
	var req model.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	// Step 3: Call service
	response, err := h.paymentService.CreateVNPayPayment(c.Request.Context(), userID, req, clientIP(c))
	if err != nil {
		statusCode, errCode := mapPaymentError(err)
		if statusCode == http.StatusInternalServerError {
			logger.Error("create vnpay payment failed", err)
			res.ErrorResponse(c, statusCode, errCode, "Internal server error")
			return
		}
		res.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	// Step 4: Return response
	res.Success(c, http.StatusCreated, "Payment URL created", response)
}

// GetPaymentStatus gets payment status of an order (polling after redirect)
// GET /api/v1/payments/orders/:order_id
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		res.ErrorResponse(c, http.StatusUnauthorized, model.ErrCodeUnauthorized, "Unauthorized")
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		res.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid order ID")
		return
	}

	response, err := h.paymentService.GetPaymentStatus(c.Request.Context(), userID, orderID)
	if err != nil {
		statusCode, errCode := mapPaymentError(err)
		res.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	res.Success(c, http.StatusOK, "Success", response)
}

// =====================================================
// VNPAY CALLBACKS
// =====================================================

// VNPayReturn handles the browser redirect back from VNPay
// GET /api/v1/payments/vnpay-return
func (h *PaymentHandler) VNPayReturn(c *gin.Context) {
	result, err := h.paymentService.HandleReturn(c.Request.Context(), callbackParams(c), clientIP(c))

	if h.frontendReturnURL != "" && result != nil {
		c.Redirect(http.StatusFound, h.resultURL(result))
		return
	}

	if err != nil {
		statusCode, errCode := mapPaymentError(err)
		res.ErrorResponse(c, statusCode, errCode, result.Message)
		return
	}

	if result.Paid() {
		res.Success(c, http.StatusOK, "Thanh toán thành công", result)
		return
	}
	res.Success(c, http.StatusOK, "Thanh toán không thành công", result)
}

// VNPayIPN handles VNPay IPN callback
// GET/POST /api/v1/webhooks/vnpay
//
// Luôn trả HTTP 200; VNPay đọc RspCode để quyết định có retry hay không.
func (h *PaymentHandler) VNPayIPN(c *gin.Context) {
	result, _ := h.paymentService.HandleIPN(c.Request.Context(), callbackParams(c), clientIP(c))

	outcome := model.OutcomeError
	if result != nil {
		outcome = result.Outcome
	}
	c.JSON(http.StatusOK, model.NewIPNResponse(outcome))
}

func (h *PaymentHandler) resultURL(result *model.CallbackResult) string {
	status := "failed"
	if result.Paid() {
		status = "success"
	}

	q := url.Values{}
	q.Set("order_id", result.OrderID)
	q.Set("status", status)
	q.Set("code", result.ResponseCode)
	return h.frontendReturnURL + "?" + q.Encode()
}

// =====================================================
// ERROR MAPPING HELPER
// =====================================================

func mapPaymentError(err error) (statusCode int, errorCode string) {
	// Default
	statusCode = http.StatusInternalServerError
	errorCode = model.ErrCodeInternalError

	var paymentErr *model.PaymentError
	if !errors.As(err, &paymentErr) {
		return statusCode, errorCode
	}
	errorCode = paymentErr.Code

	// Map error codes to HTTP status codes
	switch paymentErr.Code {
	case model.ErrCodeOrderNotFound:
		statusCode = http.StatusNotFound
	case model.ErrCodeOrderAlreadyPaid, model.ErrCodeOrderCancelled:
		statusCode = http.StatusConflict
	case model.ErrCodeOrderNotPending, model.ErrCodeInvalidGateway,
		model.ErrCodeInvalidAmount, model.ErrCodeInvalidRequest, model.ErrCodeInvalidSignature:
		statusCode = http.StatusBadRequest
	case model.ErrCodeUnauthorized:
		statusCode = http.StatusForbidden
	}

	return statusCode, errorCode
}

// =====================================================
// HELPER FUNCTIONS
// =====================================================

// getUserID extracts user ID set by AuthMiddleware
func getUserID(c *gin.Context) (uuid.UUID, error) {
	value, exists := c.Get(middleware.ContextKeyUserID)
	if !exists {
		return uuid.Nil, errors.New("user_id not found in context")
	}

	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	default:
		return uuid.Nil, errors.New("invalid user_id type")
	}
}

func clientIP(c *gin.Context) string {
	if ip := middleware.GetClientIPFromContext(c.Request.Context()); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// callbackParams flattens query string and form body (already URL-decoded).
// VNPay never repeats a key, so the first value wins.
func callbackParams(c *gin.Context) map[string]string {
	values := c.Request.URL.Query()
	if c.Request.Method == http.MethodPost {
		if err := c.Request.ParseForm(); err == nil {
			values = c.Request.Form
		}
	}

	params := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}
