package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// =====================================================
// SIGNER
// =====================================================

// PaymentRequest is what the Signer needs to know about one checkout attempt.
type PaymentRequest struct {
	OrderRef  string
	Amount    decimal.Decimal // currency units, e.g. 100000 VND
	ClientIP  string
	CreatedAt time.Time

	// Optional
	OrderInfo string
	BankCode  string
	Locale    string // overrides MerchantConfig.Locale
	ExpireAt  time.Time
}

// SignedRequest is the immutable result of Sign.
type SignedRequest struct {
	Params     Canonical
	SecureHash string
	URL        string
}

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
)

// ToMinorUnits converts an amount to the integer the wire protocol expects
// (amount x 100, rounded).
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(hundred).Round(0)
	if !minor.IsPositive() || minor.GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}
	return minor.IntPart(), nil
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}

// DefaultOrderInfo is the description sent when the caller gives none.
func DefaultOrderInfo(orderRef string) string {
	return "Thanh toan don hang " + orderRef
}

// Sign builds the redirect URL for req. It has no side effects.
func Sign(cfg MerchantConfig, req PaymentRequest) (*SignedRequest, error) {
	if req.OrderRef == "" {
		return nil, ErrMissingOrderRef
	}
	if req.CreatedAt.IsZero() {
		return nil, ErrMissingCreateDate
	}

	minor, err := ToMinorUnits(req.Amount)
	if err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults()

	orderInfo := req.OrderInfo
	if orderInfo == "" {
		orderInfo = DefaultOrderInfo(req.OrderRef)
	}
	locale := cfg.Locale
	if req.Locale != "" {
		locale = req.Locale
	}

	params := map[string]any{
		FieldVersion:    cfg.Version,
		FieldCommand:    cfg.Command,
		FieldTmnCode:    cfg.TmnCode,
		FieldLocale:     locale,
		FieldCurrCode:   cfg.CurrCode,
		FieldTxnRef:     req.OrderRef,
		FieldOrderInfo:  orderInfo,
		FieldOrderType:  cfg.OrderType,
		FieldAmount:     minor,
		FieldReturnURL:  cfg.ReturnURL,
		FieldIPAddr:     req.ClientIP,
		FieldCreateDate: req.CreatedAt,
		FieldExpireDate: req.ExpireAt,
		FieldBankCode:   req.BankCode,
	}

	canonical := Canonicalize(params)
	query := canonical.String()
	hash := signHex(cfg.HashSecret, query)

	return &SignedRequest{
		Params:     canonical,
		SecureHash: hash,
		URL:        cfg.PaymentURL + "?" + query + "&" + FieldSecureHash + "=" + hash,
	}, nil
}

func computeMAC(secret, data string) []byte {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

// signHex returns HMAC-SHA512(data) as lowercase hex.
func signHex(secret, data string) string {
	return hex.EncodeToString(computeMAC(secret, data))
}
