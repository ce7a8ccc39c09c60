package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(reconcileOrdersTotal) }

var reconcileOrdersTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payment_reconcile_orders_total",
		Help: "Stale pending orders handled by the reconcile job, labeled by result.",
	},
	[]string{"result"}, // 'paid', 'cancelled', 'still_pending', 'error'
)

func IncReconcile(result string) {
	reconcileOrdersTotal.WithLabelValues(norm(result)).Inc()
}
