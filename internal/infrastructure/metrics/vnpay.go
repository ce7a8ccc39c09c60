package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		vnpaySignTotal,
		vnpayCallbackTotal,
		vnpayQueryTotal,
		vnpayQueryDuration,
	)
}

var (
	// result: ok|invalid_amount|invalid_request
	vnpaySignTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vnpay_sign_total",
			Help: "Payment URLs signed for VNPay by result.",
		},
		[]string{"result"},
	)

	// source: return|ipn
	// outcome: paid|declined|invalid_signature|amount_mismatch|not_found|duplicate|error
	vnpayCallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vnpay_callback_total",
			Help: "VNPay callbacks handled by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	// result: found|not_found|invalid_signature|unavailable|error
	vnpayQueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vnpay_query_total",
			Help: "querydr calls made to the VNPay merchant API by result.",
		},
		[]string{"result"},
	)

	vnpayQueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vnpay_query_duration_seconds",
			Help:    "Latency of querydr calls in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
)

func IncSign(result string) {
	vnpaySignTotal.WithLabelValues(norm(result)).Inc()
}

func IncCallback(source, outcome string) {
	vnpayCallbackTotal.WithLabelValues(norm(source), norm(outcome)).Inc()
}

func ObserveQuery(result string, started time.Time) {
	vnpayQueryTotal.WithLabelValues(norm(result)).Inc()
	vnpayQueryDuration.Observe(time.Since(started).Seconds())
}
