package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/domains/payment/model"
)

// =====================================================
// CALLBACK LOG REPOSITORY IMPLEMENTATION
// =====================================================
type callbackLogRepository struct {
	pool *pgxpool.Pool
}

func NewCallbackLogRepository(pool *pgxpool.Pool) CallbackLogRepository {
	return &callbackLogRepository{pool: pool}
}

// Create lưu raw params (JSONB) để audit, kể cả khi chữ ký sai
func (r *callbackLogRepository) Create(ctx context.Context, log *model.CallbackLog) error {
	query := `
		INSERT INTO vnpay_callback_logs (
			id, order_id, gateway, source, order_ref, transaction_no, response_code,
			amount, params, is_valid, outcome, error, client_ip, received_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	paramsJSON, err := json.Marshal(log.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal callback params: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		log.ID,
		log.OrderID,
		log.Gateway,
		log.Source,
		log.OrderRef,
		log.TransactionNo,
		log.ResponseCode,
		log.Amount,
		paramsJSON,
		log.IsValid,
		string(log.Outcome),
		log.Error,
		log.ClientIP,
		log.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create callback log: %w", err)
	}

	return nil
}

func (r *callbackLogRepository) UpdateOutcome(
	ctx context.Context,
	id uuid.UUID,
	outcome model.CallbackOutcome,
	errMsg *string,
) error {
	query := `
		UPDATE vnpay_callback_logs
		SET outcome = $1, error = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, string(outcome), errMsg, id)
	if err != nil {
		return fmt.Errorf("failed to update callback outcome: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("callback log not found: %s", id)
	}

	return nil
}

// =====================================================
// IDEMPOTENCY CHECKING
// =====================================================

// ExistsProcessed: một callback được xác định duy nhất bởi
// (order_ref, transaction_no, response_code)
func (r *callbackLogRepository) ExistsProcessed(
	ctx context.Context,
	orderRef, transactionNo, responseCode string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM vnpay_callback_logs
			WHERE order_ref = $1
			AND transaction_no = $2
			AND response_code = $3
			AND is_valid = true
			AND outcome IN ($4, $5)
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query,
		orderRef, transactionNo, responseCode,
		string(model.OutcomePaid), string(model.OutcomeDeclined),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check callback idempotency: %w", err)
	}

	return exists, nil
}

// =====================================================
// QUERY METHODS
// =====================================================

func (r *callbackLogRepository) ListByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]model.CallbackLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, order_id, gateway, source, order_ref, transaction_no, response_code,
			amount, params, is_valid, outcome, error, client_ip, received_at
		FROM vnpay_callback_logs
		WHERE order_id = $1
		ORDER BY received_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, orderID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list callback logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.CallbackLog, 0)
	for rows.Next() {
		var (
			log        model.CallbackLog
			paramsJSON []byte
			outcome    string
		)
		if err := rows.Scan(
			&log.ID,
			&log.OrderID,
			&log.Gateway,
			&log.Source,
			&log.OrderRef,
			&log.TransactionNo,
			&log.ResponseCode,
			&log.Amount,
			&paramsJSON,
			&log.IsValid,
			&outcome,
			&log.Error,
			&log.ClientIP,
			&log.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan callback log: %w", err)
		}
		log.Outcome = model.CallbackOutcome(outcome)
		if len(paramsJSON) > 0 {
			if err := json.Unmarshal(paramsJSON, &log.Params); err != nil {
				return nil, fmt.Errorf("failed to unmarshal callback params: %w", err)
			}
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return logs, nil
}
