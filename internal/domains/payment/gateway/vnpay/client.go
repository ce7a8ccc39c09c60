package vnpay

import (
	"context"
	"net/http"
	"time"

	"storefront-backend/internal/infrastructure/metrics"
	"storefront-backend/pkg/logger"
)

// =====================================================
// VNPAY CLIENT
// =====================================================

// Client binds a MerchantConfig to the Signer, the Verifier and the querydr
// API. It is safe for concurrent use.
type Client struct {
	config     MerchantConfig
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the default client used for querydr.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient validates cfg and returns a ready client.
func NewClient(cfg MerchantConfig, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns a copy of the merchant configuration.
func (c *Client) Config() MerchantConfig {
	return c.config
}

// CreatePaymentURL signs req and returns the URL the browser must be sent to.
func (c *Client) CreatePaymentURL(ctx context.Context, req PaymentRequest) (string, error) {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = c.now()
	}
	req.ClientIP = normalizeIP(req.ClientIP)

	signed, err := Sign(c.config, req)
	if err != nil {
		metrics.IncSign(signResult(err))
		return "", err
	}
	metrics.IncSign("ok")

	logger.Debug("vnpay payment url signed", map[string]interface{}{
		"order_ref":   req.OrderRef,
		"amount":      req.Amount.String(),
		"create_date": FormatDate(req.CreatedAt),
	})
	return signed.URL, nil
}

// VerifyCallback checks a return or IPN parameter set against the merchant secret.
func (c *Client) VerifyCallback(params map[string]string) VerificationResult {
	return Verify(params, c.config.HashSecret)
}

func signResult(err error) string {
	if err == ErrMissingOrderRef || err == ErrMissingCreateDate {
		return "invalid_request"
	}
	return "invalid_amount"
}

// normalizeIP maps the IPv6 loopback to the IPv4 form VNPay expects.
func normalizeIP(ip string) string {
	switch ip {
	case "", "::1", "::ffff:127.0.0.1":
		return "127.0.0.1"
	}
	return ip
}
