package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx (savepoint).
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxFunc là function type được execute trong transaction
type TxFunc func(pgx.Tx) error

// WithTransaction chạy fn trong một transaction.
// Rollback khi fn trả về error hoặc panic, commit khi thành công.
func WithTransaction(ctx context.Context, db TxBeginner, fn TxFunc) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WithTransactionResult giống WithTransaction nhưng trả về giá trị của fn
func WithTransactionResult[T any](ctx context.Context, db TxBeginner, fn func(pgx.Tx) (T, error)) (T, error) {
	var result T

	err := WithTransaction(ctx, db, func(tx pgx.Tx) error {
		var fnErr error
		result, fnErr = fn(tx)
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
