package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNorm(t *testing.T) {
	assert.Equal(t, "ipn", norm("  IPN "))
	assert.Equal(t, "unknown", norm(""))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(vnpayCallbackTotal.WithLabelValues("ipn", "paid"))
	IncCallback("IPN", "Paid")
	assert.Equal(t, before+1, testutil.ToFloat64(vnpayCallbackTotal.WithLabelValues("ipn", "paid")))

	before = testutil.ToFloat64(vnpaySignTotal.WithLabelValues("ok"))
	IncSign("ok")
	assert.Equal(t, before+1, testutil.ToFloat64(vnpaySignTotal.WithLabelValues("ok")))

	before = testutil.ToFloat64(vnpayQueryTotal.WithLabelValues("found"))
	ObserveQuery("found", time.Now())
	assert.Equal(t, before+1, testutil.ToFloat64(vnpayQueryTotal.WithLabelValues("found")))
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		MustRegister()
		MustRegister()
	})
}
