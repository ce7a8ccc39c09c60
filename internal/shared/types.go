package shared

// Asynq task types
const (
	TypeReconcilePendingPayments = "payment:reconcile_pending"
)

// Asynq queue names
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// ReconcilePendingPayload controls one reconcile run.
type ReconcilePendingPayload struct {
	Limit int `json:"limit"`
}
