package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/domains/order/model"
	"storefront-backend/pkg/database"
	"storefront-backend/pkg/logger"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &postgresOrderRepository{
		pool: pool,
	}
}

const orderColumns = `
	id, user_id, total_amount, payment_method, payment_status, status,
	shipping_address, transaction_no, bank_code, payment_attempt_at, paid_at,
	cancellation_reason, created_at, updated_at, cancelled_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.TotalAmount,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.Status,
		&order.ShippingAddress,
		&order.TransactionNo,
		&order.BankCode,
		&order.PaymentAttemptAt,
		&order.PaidAt,
		&order.CancellationReason,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// =====================================================
// CREATE ORDER
// =====================================================

func (r *postgresOrderRepository) Create(ctx context.Context, order *model.Order) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO orders (
				id, user_id, total_amount, payment_method, payment_status, status, shipping_address
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at
		`
		err := tx.QueryRow(ctx, query,
			order.ID,
			order.UserID,
			order.TotalAmount,
			order.PaymentMethod,
			order.PaymentStatus,
			order.Status,
			order.ShippingAddress,
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		batch := &pgx.Batch{}
		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			batch.Queue(`
				INSERT INTO order_items (id, order_id, product_id, quantity, price)
				VALUES ($1, $2, $3, $4, $5)`,
				item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}

		return nil
	})
}

// =====================================================
// GET ORDER
// =====================================================

func (r *postgresOrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}

	items, err := r.getItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *postgresOrderRepository) getItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// =====================================================
// LIST ORDERS
// =====================================================

func (r *postgresOrderRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	status string,
	limit, offset int,
) ([]model.Order, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM orders WHERE user_id = $1 AND ($2 = '' OR status = $2)`
	if err := r.pool.QueryRow(ctx, countQuery, userID, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, userID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0, limit)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *postgresOrderRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1
		  AND payment_method = $2
		  AND payment_status <> $3
		  AND COALESCE(payment_attempt_at, created_at) < $4
		ORDER BY created_at
		LIMIT $5`

	rows, err := r.pool.Query(ctx, query,
		model.OrderStatusPending,
		model.PaymentMethodVNPay,
		model.PaymentStatusPaid,
		before,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// =====================================================
// PAYMENT STATE TRANSITIONS
// =====================================================

func (r *postgresOrderRepository) RecordPaymentAttempt(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	query := `
		UPDATE orders
		SET payment_attempt_at = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	result, err := r.pool.Exec(ctx, query, at, orderID, model.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("failed to record payment attempt: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrInvalidStatus
	}
	return nil
}

func (r *postgresOrderRepository) MarkPaid(ctx context.Context, orderID uuid.UUID, update model.PaymentUpdate) (bool, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (bool, error) {
		// Chỉ update khi order còn pending: callback trùng sẽ không ảnh hưởng
		query := `
			UPDATE orders
			SET status = $1,
				payment_status = $2,
				payment_method = $3,
				transaction_no = $4,
				bank_code = NULLIF($5, ''),
				paid_at = $6,
				updated_at = NOW()
			WHERE id = $7 AND status = $8
		`
		result, err := tx.Exec(ctx, query,
			model.OrderStatusProcessing,
			model.PaymentStatusPaid,
			model.PaymentMethodVNPay,
			update.TransactionNo,
			update.BankCode,
			update.PaidAt,
			orderID,
			model.OrderStatusPending,
		)
		if err != nil {
			return false, fmt.Errorf("failed to mark order paid: %w", err)
		}
		if result.RowsAffected() == 0 {
			return false, nil
		}

		note := fmt.Sprintf("vnpay transaction %s", update.TransactionNo)
		if err := insertHistory(ctx, tx, orderID, model.OrderStatusPending, model.OrderStatusProcessing, note); err != nil {
			return false, err
		}

		logger.Info("Order marked paid", map[string]interface{}{
			"order_id":       orderID.String(),
			"transaction_no": update.TransactionNo,
		})
		return true, nil
	})
}

func (r *postgresOrderRepository) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID, responseCode string) error {
	query := `
		UPDATE orders
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND payment_status <> $4
	`
	_, err := r.pool.Exec(ctx, query,
		model.PaymentStatusFailed,
		orderID,
		model.OrderStatusPending,
		model.PaymentStatusPaid,
	)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed (code %s): %w", responseCode, err)
	}
	return nil
}

func (r *postgresOrderRepository) Cancel(ctx context.Context, orderID uuid.UUID, reason string) (bool, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (bool, error) {
		query := `
			UPDATE orders
			SET status = $1, cancellation_reason = $2, cancelled_at = NOW(), updated_at = NOW()
			WHERE id = $3 AND status = $4
		`
		result, err := tx.Exec(ctx, query, model.OrderStatusCancelled, reason, orderID, model.OrderStatusPending)
		if err != nil {
			return false, fmt.Errorf("failed to cancel order: %w", err)
		}
		if result.RowsAffected() == 0 {
			return false, nil
		}

		if err := insertHistory(ctx, tx, orderID, model.OrderStatusPending, model.OrderStatusCancelled, reason); err != nil {
			return false, err
		}
		return true, nil
	})
}

// =====================================================
// ORDER STATUS HISTORY
// =====================================================

func insertHistory(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, from, to, note string) error {
	query := `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, notes)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, query, uuid.New(), orderID, from, to, note); err != nil {
		return fmt.Errorf("failed to create order status history: %w", err)
	}
	return nil
}

func (r *postgresOrderRepository) GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	query := `
		SELECT id, order_id, from_status, to_status, notes, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY changed_at
	`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order status history: %w", err)
	}
	defer rows.Close()

	var history []model.OrderStatusHistory
	for rows.Next() {
		var h model.OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.FromStatus, &h.ToStatus, &h.Notes, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order status history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
