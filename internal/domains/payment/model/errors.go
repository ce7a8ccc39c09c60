package model

import (
	"errors"
	"fmt"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderAlreadyPaid = errors.New("order already paid")
	ErrOrderNotPending  = errors.New("order is not in pending status")
	ErrOrderCancelled   = errors.New("order is already cancelled")
	ErrInvalidGateway   = errors.New("order is not payable through this gateway")
	ErrInvalidAmount    = errors.New("payment amount does not match order total")
	ErrInvalidSignature = errors.New("invalid callback signature")
	ErrUnauthorized     = errors.New("unauthorized access")
)

// =====================================================
// CUSTOM PAYMENT ERROR
// =====================================================

type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =====================================================
// ERROR CONSTRUCTORS
// =====================================================

func NewOrderNotFoundError(orderID string) *PaymentError {
	return NewPaymentError(
		ErrCodeOrderNotFound,
		fmt.Sprintf("Order not found: %s", orderID),
		ErrOrderNotFound,
	)
}

func NewOrderAlreadyPaidError(orderID string) *PaymentError {
	return NewPaymentError(
		ErrCodeOrderAlreadyPaid,
		fmt.Sprintf("Order %s is already paid", orderID),
		ErrOrderAlreadyPaid,
	)
}

func NewOrderNotPendingError(status string) *PaymentError {
	return NewPaymentError(
		ErrCodeOrderNotPending,
		fmt.Sprintf("Order status must be 'pending', current status: %s", status),
		ErrOrderNotPending,
	)
}

func NewInvalidAmountError(requested, total string) *PaymentError {
	return NewPaymentError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("Payment amount %s does not match order total %s", requested, total),
		ErrInvalidAmount,
	)
}

func NewInvalidSignatureError() *PaymentError {
	return NewPaymentError(
		ErrCodeInvalidSignature,
		"Invalid callback signature",
		ErrInvalidSignature,
	)
}
