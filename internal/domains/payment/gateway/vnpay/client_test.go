package vnpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 15, 3, 4, 5, 0, time.UTC)

func newTestClient(t *testing.T, apiURL string) *Client {
	t.Helper()
	cfg := testConfig()
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	client, err := NewClient(cfg, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("fills protocol defaults", func(t *testing.T) {
		cfg := testConfig()
		cfg.Version = ""
		client, err := NewClient(cfg)
		require.NoError(t, err)
		assert.Equal(t, DefaultVersion, client.Config().Version)
	})

	t.Run("rejects missing secret", func(t *testing.T) {
		cfg := testConfig()
		cfg.HashSecret = ""
		_, err := NewClient(cfg)
		assert.Error(t, err)
	})
}

func TestClient_CreatePaymentURL(t *testing.T) {
	client := newTestClient(t, "")

	paymentURL, err := client.CreatePaymentURL(context.Background(), PaymentRequest{
		OrderRef: "ORD001",
		Amount:   decimal.NewFromInt(100000),
		ClientIP: "::1",
	})
	require.NoError(t, err)

	params := queryParams(t, paymentURL)
	assert.Equal(t, "127.0.0.1", params[FieldIPAddr])
	assert.Equal(t, "20240115100405", params[FieldCreateDate])
	assert.Equal(t, "TESTCODE", params[FieldTmnCode])

	result := client.VerifyCallback(params)
	assert.True(t, result.Valid)
}

func TestClient_CreatePaymentURL_InvalidAmount(t *testing.T) {
	client := newTestClient(t, "")

	_, err := client.CreatePaymentURL(context.Background(), PaymentRequest{
		OrderRef: "ORD001",
		Amount:   decimal.NewFromInt(-1),
	})
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

// fakeQueryServer answers querydr the way the sandbox does.
func fakeQueryServer(t *testing.T, reply func(req queryPayload) queryReply) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req queryPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		assert.Equal(t, CommandQuery, req.Command)
		assert.Len(t, req.RequestID, 32)
		assert.Equal(t, signHex(testSecret, req.checksumData()), req.SecureHash)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply(req))
	}))
}

func signedReply(r queryReply) queryReply {
	r.SecureHash = signHex(testSecret, r.checksumData())
	return r
}

func TestClient_QueryTransaction(t *testing.T) {
	query := QueryRequest{
		OrderRef:        "ORD001",
		TransactionDate: fixedNow,
		ClientIP:        "127.0.0.1",
	}

	t.Run("paid transaction", func(t *testing.T) {
		srv := fakeQueryServer(t, func(req queryPayload) queryReply {
			assert.Equal(t, "ORD001", req.TxnRef)
			assert.Equal(t, "20240115100405", req.TransactionDate)
			return signedReply(queryReply{
				ResponseID:        "r1",
				Command:           CommandQuery,
				ResponseCode:      "00",
				Message:           "QueryDR Success",
				TmnCode:           "TESTCODE",
				TxnRef:            "ORD001",
				Amount:            "10000000",
				BankCode:          "NCB",
				PayDate:           "20240115101500",
				TransactionNo:     "14226112",
				TransactionType:   "01",
				TransactionStatus: "00",
			})
		})
		defer srv.Close()

		result, err := newTestClient(t, srv.URL).QueryTransaction(context.Background(), query)
		require.NoError(t, err)
		assert.True(t, result.Found())
		assert.True(t, result.Paid())
		assert.Equal(t, int64(10000000), result.Amount)
		assert.Equal(t, "14226112", result.TransactionNo)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		srv := fakeQueryServer(t, func(req queryPayload) queryReply {
			return signedReply(queryReply{
				ResponseID:   "r2",
				Command:      CommandQuery,
				ResponseCode: ResponseCodeQueryNotFound,
				TmnCode:      "TESTCODE",
				TxnRef:       "ORD001",
			})
		})
		defer srv.Close()

		result, err := newTestClient(t, srv.URL).QueryTransaction(context.Background(), query)
		require.NoError(t, err)
		assert.False(t, result.Found())
		assert.False(t, result.Paid())
	})

	t.Run("forged reply", func(t *testing.T) {
		srv := fakeQueryServer(t, func(req queryPayload) queryReply {
			r := signedReply(queryReply{ResponseCode: "00", TxnRef: "ORD001", TransactionStatus: "00", Amount: "10000000"})
			r.Amount = "1"
			return r
		})
		defer srv.Close()

		_, err := newTestClient(t, srv.URL).QueryTransaction(context.Background(), query)
		assert.True(t, errors.Is(err, ErrInvalidResponseSignature))
	})

	t.Run("unsigned not-found reply is rejected", func(t *testing.T) {
		srv := fakeQueryServer(t, func(req queryPayload) queryReply {
			return queryReply{ResponseCode: ResponseCodeQueryNotFound, Message: "not found"}
		})
		defer srv.Close()

		result, err := newTestClient(t, srv.URL).QueryTransaction(context.Background(), query)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, ErrInvalidResponseSignature))
	})

	t.Run("server error is retryable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL).QueryTransaction(context.Background(), query)
		assert.True(t, errors.Is(err, ErrGatewayUnavailable))
	})

	t.Run("unreachable host", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := newTestClient(t, srv.URL).QueryTransaction(context.Background(), query)
		assert.True(t, errors.Is(err, ErrGatewayUnavailable))
	})

	t.Run("client error is not retryable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL).QueryTransaction(context.Background(), query)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrGatewayUnavailable))
	})

	t.Run("missing transaction date", func(t *testing.T) {
		_, err := newTestClient(t, "").QueryTransaction(context.Background(), QueryRequest{OrderRef: "ORD001"})
		assert.Equal(t, ErrMissingCreateDate, err)
	})
}
