package vnpay

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "SECRET"

var hexHash = regexp.MustCompile(`^[0-9a-f]{128}$`)

func testConfig() MerchantConfig {
	return NewMerchantConfig(
		"TESTCODE",
		testSecret,
		"https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		"http://localhost:8080/api/v1/payments/vnpay-return",
		"https://sandbox.vnpayment.vn/merchant_webapi/api/transaction",
	)
}

func testRequest() PaymentRequest {
	return PaymentRequest{
		OrderRef:  "ORD001",
		Amount:    decimal.NewFromInt(100000),
		ClientIP:  "127.0.0.1",
		CreatedAt: time.Date(2024, 1, 15, 3, 4, 5, 0, time.UTC),
	}
}

// queryParams flattens a signed URL back into the map a callback handler would see.
func queryParams(t *testing.T, raw string) map[string]string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)

	out := make(map[string]string)
	for k, v := range u.Query() {
		out[k] = v[0]
	}
	return out
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{name: "whole amount", amount: "100000", want: 10000000},
		{name: "fractional amount", amount: "123.45", want: 12345},
		{name: "rounds half up", amount: "0.015", want: 2},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-5", wantErr: true},
		{name: "rounds to zero", amount: "0.004", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidAmount))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSign(t *testing.T) {
	t.Run("builds redirect url", func(t *testing.T) {
		signed, err := Sign(testConfig(), testRequest())
		require.NoError(t, err)

		assert.Regexp(t, hexHash, signed.SecureHash)
		assert.True(t, strings.HasPrefix(signed.URL, "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?"))
		assert.True(t, strings.HasSuffix(signed.URL, "&vnp_SecureHash="+signed.SecureHash))
		assert.Contains(t, signed.URL, "vnp_Amount=10000000")
		assert.Contains(t, signed.URL, "vnp_CreateDate=20240115100405")
		assert.Contains(t, signed.URL, "vnp_OrderInfo=Thanh+toan+don+hang+ORD001")
		assert.Contains(t, signed.URL, "vnp_TxnRef=ORD001")
		assert.NotContains(t, signed.URL, FieldExpireDate)
		assert.NotContains(t, signed.URL, FieldBankCode)
	})

	t.Run("hash covers the canonical string", func(t *testing.T) {
		signed, err := Sign(testConfig(), testRequest())
		require.NoError(t, err)
		assert.Equal(t, signHex(testSecret, signed.Params.String()), signed.SecureHash)
	})

	t.Run("is deterministic", func(t *testing.T) {
		first, err := Sign(testConfig(), testRequest())
		require.NoError(t, err)
		second, err := Sign(testConfig(), testRequest())
		require.NoError(t, err)
		assert.Equal(t, first.URL, second.URL)
	})

	t.Run("different secret gives different hash", func(t *testing.T) {
		cfg := testConfig()
		first, err := Sign(cfg, testRequest())
		require.NoError(t, err)

		cfg.HashSecret = "OTHER"
		second, err := Sign(cfg, testRequest())
		require.NoError(t, err)
		assert.NotEqual(t, first.SecureHash, second.SecureHash)
	})

	t.Run("optional fields are signed when set", func(t *testing.T) {
		req := testRequest()
		req.BankCode = "NCB"
		req.ExpireAt = req.CreatedAt.Add(15 * time.Minute)

		signed, err := Sign(testConfig(), req)
		require.NoError(t, err)
		assert.Contains(t, signed.URL, "vnp_BankCode=NCB")
		assert.Contains(t, signed.URL, "vnp_ExpireDate=20240115101905")
	})

	t.Run("request locale overrides merchant locale", func(t *testing.T) {
		signed, err := Sign(testConfig(), testRequest())
		require.NoError(t, err)
		assert.Contains(t, signed.URL, "vnp_Locale=vn")

		req := testRequest()
		req.Locale = "en"
		signed, err = Sign(testConfig(), req)
		require.NoError(t, err)
		assert.Contains(t, signed.URL, "vnp_Locale=en")
	})

	t.Run("rejects invalid amount", func(t *testing.T) {
		req := testRequest()
		req.Amount = decimal.Zero
		_, err := Sign(testConfig(), req)
		assert.True(t, errors.Is(err, ErrInvalidAmount))
	})

	t.Run("rejects missing order ref", func(t *testing.T) {
		req := testRequest()
		req.OrderRef = ""
		_, err := Sign(testConfig(), req)
		assert.Equal(t, ErrMissingOrderRef, err)
	})

	t.Run("rejects missing create date", func(t *testing.T) {
		req := testRequest()
		req.CreatedAt = time.Time{}
		_, err := Sign(testConfig(), req)
		assert.Equal(t, ErrMissingCreateDate, err)
	})
}

func TestMerchantConfigValidate(t *testing.T) {
	assert.NoError(t, testConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*MerchantConfig)
		want   error
	}{
		{"missing tmn code", func(c *MerchantConfig) { c.TmnCode = "" }, ErrMissingTmnCode},
		{"missing secret", func(c *MerchantConfig) { c.HashSecret = "" }, ErrMissingHashSecret},
		{"missing return url", func(c *MerchantConfig) { c.ReturnURL = "" }, ErrMissingReturnURL},
		{"missing payment url", func(c *MerchantConfig) { c.PaymentURL = "" }, ErrMissingPaymentURL},
		{"missing version", func(c *MerchantConfig) { c.Version = "" }, ErrMissingProtocolFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			assert.True(t, errors.Is(cfg.Validate(), tt.want))
		})
	}

	t.Run("malformed payment url", func(t *testing.T) {
		cfg := testConfig()
		cfg.PaymentURL = "not a url"
		assert.Error(t, cfg.Validate())
	})
}
