package vnpay

import (
	"fmt"
	"net/url"
	"time"
)

// =====================================================
// MERCHANT CONFIGURATION
// =====================================================

const (
	DefaultVersion   = "2.1.0"
	DefaultCommand   = "pay"
	DefaultCurrCode  = "VND"
	DefaultLocale    = "vn"
	DefaultOrderType = "billpayment"

	// vnp_CreateDate / vnp_ExpireDate / vnp_TransactionDate layout
	DateLayout = "20060102150405"

	DefaultHTTPTimeout = 30 * time.Second
)

// MerchantConfig holds everything the Signer, Verifier and Client need to talk
// to VNPay on behalf of one merchant. It is passed explicitly on every call.
type MerchantConfig struct {
	TmnCode    string // Merchant code (provided by VNPay)
	HashSecret string // Secret key for HMAC-SHA512 signature
	PaymentURL string // vpcpay.html endpoint the browser is redirected to
	ReturnURL  string // Where VNPay sends the browser back
	APIURL     string // merchant_webapi endpoint used by querydr
	Version    string
	Command    string
	CurrCode   string
	Locale     string
	OrderType  string
}

// NewMerchantConfig creates a config with protocol defaults filled in.
func NewMerchantConfig(tmnCode, hashSecret, paymentURL, returnURL, apiURL string) MerchantConfig {
	return MerchantConfig{
		TmnCode:    tmnCode,
		HashSecret: hashSecret,
		PaymentURL: paymentURL,
		ReturnURL:  returnURL,
		APIURL:     apiURL,
		Version:    DefaultVersion,
		Command:    DefaultCommand,
		CurrCode:   DefaultCurrCode,
		Locale:     DefaultLocale,
		OrderType:  DefaultOrderType,
	}
}

// Validate reports setup faults. Call it once at startup.
func (c MerchantConfig) Validate() error {
	if c.TmnCode == "" {
		return ErrMissingTmnCode
	}
	if c.HashSecret == "" {
		return ErrMissingHashSecret
	}
	if c.ReturnURL == "" {
		return ErrMissingReturnURL
	}
	if c.PaymentURL == "" {
		return ErrMissingPaymentURL
	}
	if _, err := url.ParseRequestURI(c.PaymentURL); err != nil {
		return fmt.Errorf("vnpay: invalid payment url: %w", err)
	}
	if c.Version == "" || c.Command == "" || c.CurrCode == "" || c.Locale == "" {
		return ErrMissingProtocolFields
	}
	return nil
}

// withDefaults fills protocol fields left empty by the caller.
func (c MerchantConfig) withDefaults() MerchantConfig {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Command == "" {
		c.Command = DefaultCommand
	}
	if c.CurrCode == "" {
		c.CurrCode = DefaultCurrCode
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.OrderType == "" {
		c.OrderType = DefaultOrderType
	}
	return c
}

// =====================================================
// VNPAY RESPONSE CODES
// =====================================================

const (
	ResponseCodeSuccess               = "00"
	ResponseCodeSuspicious            = "07"
	ResponseCodeNotRegistered         = "09"
	ResponseCodeAuthFailed            = "10"
	ResponseCodeExpired               = "11"
	ResponseCodeCardLocked            = "12"
	ResponseCodeIncorrectOTP          = "13"
	ResponseCodeUserCancelled         = "24"
	ResponseCodeInsufficientBalance   = "51"
	ResponseCodeLimitExceeded         = "65"
	ResponseCodeBankMaintenance       = "75"
	ResponseCodeTooManyPasswordFails  = "79"
	ResponseCodeQueryNotFound         = "91"
	ResponseCodeQueryDuplicateRequest = "94"
	ResponseCodeQueryInvalidChecksum  = "97"
	ResponseCodeOther                 = "99"
)

var responseMessages = map[string]string{
	ResponseCodeSuccess:              "Giao dịch thành công",
	ResponseCodeSuspicious:           "Trừ tiền thành công, giao dịch bị nghi ngờ",
	ResponseCodeNotRegistered:        "Thẻ/Tài khoản chưa đăng ký InternetBanking",
	ResponseCodeAuthFailed:           "Xác thực thông tin thẻ/tài khoản không đúng quá 3 lần",
	ResponseCodeExpired:              "Đã hết hạn chờ thanh toán",
	ResponseCodeCardLocked:           "Thẻ/Tài khoản bị khóa",
	ResponseCodeIncorrectOTP:         "OTP không chính xác",
	ResponseCodeUserCancelled:        "Khách hàng hủy giao dịch",
	ResponseCodeInsufficientBalance:  "Tài khoản không đủ số dư",
	ResponseCodeLimitExceeded:        "Vượt quá hạn mức giao dịch trong ngày",
	ResponseCodeBankMaintenance:      "Ngân hàng thanh toán đang bảo trì",
	ResponseCodeTooManyPasswordFails: "Nhập sai mật khẩu thanh toán quá số lần quy định",
	ResponseCodeQueryNotFound:        "Không tìm thấy giao dịch yêu cầu",
	ResponseCodeQueryInvalidChecksum: "Chữ ký không hợp lệ",
}

// ResponseMessage returns the Vietnamese message VNPay documents for code.
func ResponseMessage(code string) string {
	if msg, ok := responseMessages[code]; ok {
		return msg
	}
	return "Lỗi không xác định"
}
