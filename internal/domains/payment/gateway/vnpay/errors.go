package vnpay

import "errors"

var (
	// ErrInvalidAmount is returned when an amount does not convert to a positive
	// integer number of minor units.
	ErrInvalidAmount = errors.New("vnpay: amount must be a positive integer in minor units")

	ErrMissingOrderRef   = errors.New("vnpay: order reference is required")
	ErrMissingCreateDate = errors.New("vnpay: create date is required")

	// ErrGatewayUnavailable wraps transport failures reaching the merchant API.
	// Callers may retry these; nothing else from this package is retryable.
	ErrGatewayUnavailable = errors.New("vnpay: gateway unavailable")

	ErrInvalidResponseSignature = errors.New("vnpay: response signature mismatch")

	// Merchant setup faults, see MerchantConfig.Validate.
	ErrMissingTmnCode        = errors.New("vnpay: tmn code is required")
	ErrMissingHashSecret     = errors.New("vnpay: hash secret is required")
	ErrMissingReturnURL      = errors.New("vnpay: return url is required")
	ErrMissingPaymentURL     = errors.New("vnpay: payment url is required")
	ErrMissingProtocolFields = errors.New("vnpay: version, command, currency and locale must be set")
)
