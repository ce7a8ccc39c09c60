package vnpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/infrastructure/metrics"
	"storefront-backend/pkg/logger"
)

// =====================================================
// QUERYDR (TRANSACTION STATUS LOOKUP)
// =====================================================

const CommandQuery = "querydr"

// QueryRequest asks VNPay what happened to a payment attempt.
type QueryRequest struct {
	OrderRef        string
	TransactionDate time.Time // vnp_CreateDate of the original attempt
	ClientIP        string
	OrderInfo       string
}

// QueryResult is the verified answer to a QueryRequest.
type QueryResult struct {
	OrderRef          string
	ResponseCode      string
	Message           string
	TransactionNo     string
	TransactionStatus string
	Amount            int64 // minor units
	BankCode          string
	PayDate           string
}

// Found is false when VNPay has no record of the attempt (code 91).
func (r QueryResult) Found() bool {
	return r.ResponseCode != ResponseCodeQueryNotFound
}

// Paid reports a completed charge.
func (r QueryResult) Paid() bool {
	return r.ResponseCode == ResponseCodeSuccess && r.TransactionStatus == ResponseCodeSuccess
}

// checksumData builds the '|' joined string VNPay signs for a query request.
func (p queryPayload) checksumData() string {
	return strings.Join([]string{
		p.RequestID, p.Version, p.Command, p.TmnCode, p.TxnRef,
		p.TransactionDate, p.CreateDate, p.IPAddr, p.OrderInfo,
	}, "|")
}

func (r queryReply) checksumData() string {
	return strings.Join([]string{
		r.ResponseID, r.Command, r.ResponseCode, r.Message, r.TmnCode, r.TxnRef,
		r.Amount, r.BankCode, r.PayDate, r.TransactionNo, r.TransactionType,
		r.TransactionStatus, r.OrderInfo, r.PromotionCode, r.PromotionAmount,
	}, "|")
}

// QueryTransaction calls the querydr API. Network failures and 5xx answers
// wrap ErrGatewayUnavailable; a reply with a bad checksum returns
// ErrInvalidResponseSignature.
func (c *Client) QueryTransaction(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	started := time.Now()

	if req.OrderRef == "" {
		return nil, ErrMissingOrderRef
	}
	if req.TransactionDate.IsZero() {
		return nil, ErrMissingCreateDate
	}
	if c.config.APIURL == "" {
		return nil, fmt.Errorf("vnpay: api url is not configured")
	}

	orderInfo := req.OrderInfo
	if orderInfo == "" {
		orderInfo = "Truy van giao dich " + req.OrderRef
	}

	payload := queryPayload{
		RequestID:       strings.ReplaceAll(uuid.NewString(), "-", ""),
		Version:         c.config.Version,
		Command:         CommandQuery,
		TmnCode:         c.config.TmnCode,
		TxnRef:          req.OrderRef,
		OrderInfo:       orderInfo,
		TransactionDate: FormatDate(req.TransactionDate),
		CreateDate:      FormatDate(c.now()),
		IPAddr:          normalizeIP(req.ClientIP),
	}
	payload.SecureHash = signHex(c.config.HashSecret, payload.checksumData())

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("vnpay: marshal query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vnpay: build query request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.ObserveQuery("unavailable", started)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		metrics.ObserveQuery("unavailable", started)
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		metrics.ObserveQuery("error", started)
		return nil, fmt.Errorf("vnpay: query returned status %d: %s", resp.StatusCode, string(raw))
	}

	var reply queryReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		metrics.ObserveQuery("error", started)
		return nil, fmt.Errorf("vnpay: decode query response: %w", err)
	}

	if !c.verifyReply(reply) {
		metrics.ObserveQuery("invalid_signature", started)
		logger.Warn("vnpay query response signature mismatch", map[string]interface{}{
			"order_ref":     req.OrderRef,
			"response_code": reply.ResponseCode,
		})
		return nil, ErrInvalidResponseSignature
	}

	result := &QueryResult{
		OrderRef:          reply.TxnRef,
		ResponseCode:      reply.ResponseCode,
		Message:           reply.Message,
		TransactionNo:     reply.TransactionNo,
		TransactionStatus: reply.TransactionStatus,
		BankCode:          reply.BankCode,
		PayDate:           reply.PayDate,
	}
	if amount, err := strconv.ParseInt(reply.Amount, 10, 64); err == nil {
		result.Amount = amount
	}

	if result.Found() {
		metrics.ObserveQuery("found", started)
	} else {
		metrics.ObserveQuery("not_found", started)
	}
	return result, nil
}

// verifyReply checks the reply checksum. Unsigned replies are rejected,
// including bare error codes such as 91.
func (c *Client) verifyReply(r queryReply) bool {
	if r.SecureHash == "" {
		return false
	}
	got, err := hex.DecodeString(r.SecureHash)
	if err != nil {
		return false
	}
	return hmac.Equal(computeMAC(c.config.HashSecret, r.checksumData()), got)
}
