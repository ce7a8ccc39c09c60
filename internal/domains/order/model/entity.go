package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ORDER STATUS CONSTANTS
// =====================================================
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipping   = "shipping"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// =====================================================
// PAYMENT METHOD CONSTANTS
// =====================================================
const (
	PaymentMethodCOD   = "cod"
	PaymentMethodVNPay = "vnpay"
)

// =====================================================
// PAYMENT STATUS CONSTANTS
// =====================================================
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
	PaymentStatusFailed = "failed"
)

// Cancellation reasons written by the system
const (
	CancelReasonPaymentTimeout = "payment_timeout"
	CancelReasonUser           = "cancelled_by_user"
)

// transitions lists the moves the order state machine allows.
var transitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipping, OrderStatusCancelled},
	OrderStatusShipping:   {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InitialStatus: VNPay orders wait for payment, everything else goes straight to processing.
func InitialStatus(paymentMethod string) string {
	if paymentMethod == PaymentMethodVNPay {
		return OrderStatusPending
	}
	return OrderStatusProcessing
}

// =====================================================
// ENTITY: Order
// =====================================================
type Order struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             uuid.UUID       `json:"user_id"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	PaymentMethod      string          `json:"payment_method"`
	PaymentStatus      string          `json:"payment_status"`
	Status             string          `json:"status"`
	ShippingAddress    *string         `json:"shipping_address,omitempty"`
	TransactionNo      *string         `json:"transaction_no,omitempty"`
	BankCode           *string         `json:"bank_code,omitempty"`
	PaymentAttemptAt   *time.Time      `json:"payment_attempt_at,omitempty"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	CancellationReason *string         `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`

	Items []OrderItem `json:"items,omitempty"`
}

// IsOwnedBy checks if the order belongs to userID
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// AwaitingPayment is true while a VNPay order can still be paid.
func (o *Order) AwaitingPayment() bool {
	return o.Status == OrderStatusPending && o.PaymentStatus != PaymentStatusPaid
}

// IsPaymentCompleted checks if payment is completed
func (o *Order) IsPaymentCompleted() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// =====================================================
// ENTITY: OrderItem
// =====================================================
type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// Subtotal = price * quantity
func (oi OrderItem) Subtotal() decimal.Decimal {
	return oi.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}

// CalculateTotal sums item subtotals.
func CalculateTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// =====================================================
// ENTITY: OrderStatusHistory
// =====================================================
type OrderStatusHistory struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Notes      *string   `json:"notes,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

// PaymentUpdate carries what a verified VNPay result tells us about an order.
type PaymentUpdate struct {
	TransactionNo string
	BankCode      string
	ResponseCode  string
	PaidAt        time.Time
}
