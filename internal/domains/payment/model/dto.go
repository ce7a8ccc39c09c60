package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// CREATE PAYMENT
// =====================================================

// CreatePaymentRequest starts a VNPay checkout for an existing order.
// Amount is optional; when set it must equal the order total.
type CreatePaymentRequest struct {
	OrderID  uuid.UUID        `json:"order_id"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	BankCode string           `json:"bank_code,omitempty"`
	Locale   string           `json:"locale,omitempty"`
}

// Validate validates CreatePaymentRequest
func (r CreatePaymentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OrderID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&r.Amount, validation.By(positiveAmount)),
		validation.Field(&r.BankCode, validation.Length(0, 20), is.Alphanumeric),
		validation.Field(&r.Locale, validation.In("vn", "en")),
	)
}

func notNilUUID(value interface{}) error {
	if id, ok := value.(uuid.UUID); ok && id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

func positiveAmount(value interface{}) error {
	amount, ok := value.(*decimal.Decimal)
	if !ok || amount == nil {
		return nil
	}
	if !amount.IsPositive() {
		return validation.NewError("validation_positive", "must be greater than zero")
	}
	return nil
}

type CreatePaymentResponse struct {
	PaymentURL string          `json:"payment_url"`
	OrderID    uuid.UUID       `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// =====================================================
// CALLBACKS
// =====================================================

// CallbackResult is what HandleReturn/HandleIPN report back to the handler.
type CallbackResult struct {
	Outcome       CallbackOutcome `json:"outcome"`
	OrderID       string          `json:"order_id"`
	TransactionNo string          `json:"transaction_no,omitempty"`
	ResponseCode  string          `json:"response_code"`
	Message       string          `json:"message"`
}

// Paid reports whether the callback confirmed a completed payment.
func (r CallbackResult) Paid() bool {
	switch r.Outcome {
	case OutcomePaid:
		return true
	case OutcomeAlreadyProcessed:
		return r.ResponseCode == "00"
	}
	return false
}

// IPNResponse is the JSON body VNPay expects from the IPN endpoint.
type IPNResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// NewIPNResponse builds the IPN acknowledgement for an outcome
func NewIPNResponse(outcome CallbackOutcome) IPNResponse {
	code := outcome.IPNCode()
	return IPNResponse{RspCode: code, Message: ipnMessages[code]}
}

// =====================================================
// PAYMENT STATUS (polling after redirect)
// =====================================================

type PaymentStatusResponse struct {
	OrderID       uuid.UUID       `json:"order_id"`
	OrderStatus   string          `json:"order_status"`
	PaymentStatus string          `json:"payment_status"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionNo *string         `json:"transaction_no,omitempty"`
	BankCode      *string         `json:"bank_code,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	Callbacks     []CallbackLog   `json:"callbacks"`
}

// =====================================================
// RECONCILE JOB
// =====================================================

// ReconcileSummary counts what one reconcile run did.
type ReconcileSummary struct {
	Checked      int `json:"checked"`
	Paid         int `json:"paid"`
	Cancelled    int `json:"cancelled"`
	StillPending int `json:"still_pending"`
	Failed       int `json:"failed"`
}
