package model

// =====================================================
// PAYMENT GATEWAYS
// =====================================================
const (
	GatewayVNPay = "vnpay"
)

// =====================================================
// CALLBACK SOURCES
// =====================================================
const (
	SourceReturn = "return" // browser redirect (vnp_ReturnUrl)
	SourceIPN    = "ipn"    // server-to-server notification
	SourceQuery  = "query"  // reconcile job (querydr)
)

// =====================================================
// CALLBACK OUTCOMES
// =====================================================
// CallbackOutcome is what processing a verified (or rejected) callback did.
type CallbackOutcome string

const (
	OutcomeReceived         CallbackOutcome = "received" // logged, not processed yet
	OutcomePaid             CallbackOutcome = "paid"
	OutcomeDeclined         CallbackOutcome = "declined"
	OutcomeAlreadyProcessed CallbackOutcome = "duplicate"
	OutcomeInvalidSignature CallbackOutcome = "invalid_signature"
	OutcomeAmountMismatch   CallbackOutcome = "amount_mismatch"
	OutcomeOrderNotFound    CallbackOutcome = "not_found"
	OutcomeError            CallbackOutcome = "error"
)

// =====================================================
// IPN RESPONSE CODES (what we answer VNPay with)
// =====================================================
const (
	IPNCodeConfirmed        = "00"
	IPNCodeOrderNotFound    = "01"
	IPNCodeAlreadyConfirmed = "02"
	IPNCodeInvalidAmount    = "04"
	IPNCodeInvalidSignature = "97"
	IPNCodeUnknownError     = "99"
)

var ipnMessages = map[string]string{
	IPNCodeConfirmed:        "Confirm Success",
	IPNCodeOrderNotFound:    "Order not found",
	IPNCodeAlreadyConfirmed: "Order already confirmed",
	IPNCodeInvalidAmount:    "Invalid amount",
	IPNCodeInvalidSignature: "Invalid signature",
	IPNCodeUnknownError:     "Unknown error",
}

// IPNCode maps a callback outcome to the RspCode VNPay expects.
// A declined payment is still a successfully received notification.
func (o CallbackOutcome) IPNCode() string {
	switch o {
	case OutcomePaid, OutcomeDeclined:
		return IPNCodeConfirmed
	case OutcomeAlreadyProcessed:
		return IPNCodeAlreadyConfirmed
	case OutcomeOrderNotFound:
		return IPNCodeOrderNotFound
	case OutcomeAmountMismatch:
		return IPNCodeInvalidAmount
	case OutcomeInvalidSignature:
		return IPNCodeInvalidSignature
	default:
		return IPNCodeUnknownError
	}
}

// =====================================================
// INTERNAL ERROR CODES
// =====================================================
const (
	ErrCodeOrderAlreadyPaid = "PAY002"
	ErrCodeOrderNotPending  = "PAY004"
	ErrCodeInvalidGateway   = "PAY005"
	ErrCodeInvalidSignature = "PAY012"
	ErrCodeUnauthorized     = "PAY021"
	ErrCodeOrderCancelled   = "PAY022"
	ErrCodeInternalError    = "PAY024"
	ErrCodeInvalidAmount    = "PAY025"
	ErrCodeOrderNotFound    = "PAY026"
	ErrCodeInvalidRequest   = "PAY027"
)

// =====================================================
// PAYMENT CONFIGURATION
// =====================================================
const (
	// Redis duplicate-callback guard lifetime
	CallbackGuardTTLMinutes = 10
)
