package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// ENTITY: CallbackLog
// =====================================================
// CallbackLog is the audit row written for every VNPay callback, valid or not.
type CallbackLog struct {
	ID            uuid.UUID         `json:"id"`
	OrderID       *uuid.UUID        `json:"order_id,omitempty"`
	Gateway       string            `json:"gateway"`
	Source        string            `json:"source"`
	OrderRef      string            `json:"order_ref"`
	TransactionNo string            `json:"transaction_no"`
	ResponseCode  string            `json:"response_code"`
	Amount        int64             `json:"amount"`
	Params        map[string]string `json:"params"`
	IsValid       bool              `json:"is_valid"`
	Outcome       CallbackOutcome   `json:"outcome"`
	Error         *string           `json:"error,omitempty"`
	ClientIP      string            `json:"client_ip"`
	ReceivedAt    time.Time         `json:"received_at"`
}

// SetOutcome records the processing result
func (l *CallbackLog) SetOutcome(outcome CallbackOutcome, err error) {
	l.Outcome = outcome
	if err != nil {
		msg := err.Error()
		l.Error = &msg
	}
}
