package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeOrderNotFound     = "ORD001"
	ErrCodeOrderCannotCancel = "ORD002"
	ErrCodeUnauthorized      = "ORD014"
	ErrCodeInvalidStatus     = "ORD015"
	ErrCodeInvalidOrder      = "ORD017"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderCannotCancel = errors.New("order cannot be cancelled")
	ErrUnauthorized      = errors.New("unauthorized access")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTotal      = errors.New("order total must be positive")
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type OrderError struct {
	Code    string
	Message string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewOrderError creates a new OrderError
func NewOrderError(code, message string, err error) *OrderError {
	return &OrderError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
