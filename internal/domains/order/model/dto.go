package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// CREATE ORDER REQUEST
// =====================================================
type CreateOrderRequest struct {
	PaymentMethod   string            `json:"payment_method"`
	ShippingAddress *string           `json:"shipping_address,omitempty"`
	Items           []CreateOrderItem `json:"items"`
}

type CreateOrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Validate validates CreateOrderRequest
func (req CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.PaymentMethod, validation.Required, validation.In(
			PaymentMethodCOD,
			PaymentMethodVNPay,
		)),
		validation.Field(&req.ShippingAddress, validation.NilOrNotEmpty, validation.Length(1, 500)),
		validation.Field(&req.Items, validation.Required, validation.Length(1, 100)),
	)
}

// Validate validates one line item
func (item CreateOrderItem) Validate() error {
	return validation.ValidateStruct(&item,
		validation.Field(&item.ProductID, validation.Required),
		validation.Field(&item.Quantity, validation.Required, validation.Min(1), validation.Max(999)),
		validation.Field(&item.Price, validation.By(positiveDecimal)),
	)
}

func positiveDecimal(value interface{}) error {
	d, _ := value.(decimal.Decimal)
	if !d.IsPositive() {
		return validation.NewError("validation_positive", "must be greater than zero")
	}
	return nil
}

// =====================================================
// CREATE ORDER RESPONSE
// =====================================================
type CreateOrderResponse struct {
	OrderID     uuid.UUID       `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
}

// =====================================================
// ORDER DETAIL RESPONSE
// =====================================================
type OrderDetailResponse struct {
	ID                 uuid.UUID           `json:"id"`
	Status             string              `json:"status"`
	PaymentMethod      string              `json:"payment_method"`
	PaymentStatus      string              `json:"payment_status"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	ShippingAddress    *string             `json:"shipping_address,omitempty"`
	TransactionNo      *string             `json:"transaction_no,omitempty"`
	BankCode           *string             `json:"bank_code,omitempty"`
	Items              []OrderItemResponse `json:"items"`
	CancellationReason *string             `json:"cancellation_reason,omitempty"`
	PaidAt             *time.Time          `json:"paid_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`

	StatusHistory []OrderStatusHistory `json:"status_history"`
}

type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ToDetailResponse maps an order entity to its API shape
func ToDetailResponse(o *Order) OrderDetailResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Subtotal(),
		})
	}

	return OrderDetailResponse{
		ID:                 o.ID,
		Status:             o.Status,
		PaymentMethod:      o.PaymentMethod,
		PaymentStatus:      o.PaymentStatus,
		TotalAmount:        o.TotalAmount,
		ShippingAddress:    o.ShippingAddress,
		TransactionNo:      o.TransactionNo,
		BankCode:           o.BankCode,
		Items:              items,
		CancellationReason: o.CancellationReason,
		PaidAt:             o.PaidAt,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
		CancelledAt:        o.CancelledAt,
	}
}

// =====================================================
// LIST ORDERS REQUEST
// =====================================================
type ListOrdersRequest struct {
	Status string `form:"status"` // Filter by status (optional)
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// Validate normalizes paging and checks the status filter
func (req *ListOrdersRequest) Validate() error {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20 // Default
	}

	if req.Status != "" {
		return validation.Validate(req.Status, validation.In(
			OrderStatusPending,
			OrderStatusProcessing,
			OrderStatusShipping,
			OrderStatusDelivered,
			OrderStatusCancelled,
		))
	}
	return nil
}

// Offset for SQL paging
func (req ListOrdersRequest) Offset() int {
	return (req.Page - 1) * req.Limit
}

// =====================================================
// LIST ORDERS RESPONSE
// =====================================================
type ListOrdersResponse struct {
	Orders     []OrderSummaryResponse `json:"orders"`
	Pagination PaginationMeta         `json:"pagination"`
}

type OrderSummaryResponse struct {
	ID            uuid.UUID       `json:"id"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta computes page counts
func NewPaginationMeta(page, limit, total int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PaginationMeta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
