package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	orderModel "storefront-backend/internal/domains/order/model"
	"storefront-backend/internal/domains/payment/gateway/vnpay"
	"storefront-backend/internal/domains/payment/model"
	"storefront-backend/internal/infrastructure/metrics"
	"storefront-backend/pkg/logger"
)

// =====================================================
// RECONCILE PENDING PAYMENTS (background job)
// =====================================================

const (
	reconcilePaid         = "paid"
	reconcileCancelled    = "cancelled"
	reconcileStillPending = "still_pending"
	reconcileError        = "error"

	reconcileClientIP = "127.0.0.1"
)

// ReconcilePending resolves VNPay orders that never received a usable callback.
//
// For each order pending longer than olderThan:
// - never redirected to VNPay → cancel (payment_timeout)
// - querydr says paid → MarkPaid
// - querydr says not found / declined → cancel (payment_timeout)
// - gateway unavailable or unsigned/forged reply → leave pending, next run retries
func (s *paymentService) ReconcilePending(ctx context.Context, olderThan time.Duration, limit int) (*model.ReconcileSummary, error) {
	before := s.now().Add(-olderThan)

	orders, err := s.orderRepo.ListStalePending(ctx, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending orders: %w", err)
	}

	summary := &model.ReconcileSummary{Checked: len(orders)}
	for i := range orders {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		result := s.reconcileOrder(ctx, &orders[i])
		metrics.IncReconcile(result)

		switch result {
		case reconcilePaid:
			summary.Paid++
		case reconcileCancelled:
			summary.Cancelled++
		case reconcileStillPending:
			summary.StillPending++
		default:
			summary.Failed++
		}
	}

	if summary.Checked > 0 {
		logger.Info("Reconciled pending VNPay orders", map[string]interface{}{
			"checked":       summary.Checked,
			"paid":          summary.Paid,
			"cancelled":     summary.Cancelled,
			"still_pending": summary.StillPending,
			"failed":        summary.Failed,
		})
	}
	return summary, nil
}

func (s *paymentService) reconcileOrder(ctx context.Context, order *orderModel.Order) string {
	fields := map[string]interface{}{"order_id": order.ID.String()}

	if order.PaymentAttemptAt == nil {
		return s.cancelStale(ctx, order, fields)
	}

	res, err := s.vnpayGateway.QueryTransaction(ctx, vnpay.QueryRequest{
		OrderRef:        order.ID.String(),
		TransactionDate: *order.PaymentAttemptAt,
		ClientIP:        reconcileClientIP,
	})
	if err != nil {
		if errors.Is(err, vnpay.ErrGatewayUnavailable) {
			logger.Warn("VNPay unavailable, order left pending", fields)
			return reconcileStillPending
		}
		if errors.Is(err, vnpay.ErrInvalidResponseSignature) {
			// không tin reply chưa xác thực, giữ order pending
			logger.Warn("VNPay query reply not authentic, order left pending", fields)
			return reconcileStillPending
		}
		logger.ErrorWithFields("VNPay query failed", err, fields)
		return reconcileError
	}

	fields["response_code"] = res.ResponseCode
	fields["transaction_status"] = res.TransactionStatus

	result := s.applyQueryResult(ctx, order, res, fields)
	s.logQueryResult(ctx, order, res, result)
	return result
}

func (s *paymentService) applyQueryResult(
	ctx context.Context,
	order *orderModel.Order,
	res *vnpay.QueryResult,
	fields map[string]interface{},
) string {
	switch {
	case !res.Found():
		return s.cancelStale(ctx, order, fields)

	case res.Paid():
		expected, err := vnpay.ToMinorUnits(order.TotalAmount)
		if err != nil || res.Amount != expected {
			fields["amount"] = res.Amount
			logger.ErrorWithFields("VNPay query amount mismatch", model.ErrInvalidAmount, fields)
			return reconcileError
		}
		changed, err := s.orderRepo.MarkPaid(ctx, order.ID, orderModel.PaymentUpdate{
			TransactionNo: res.TransactionNo,
			BankCode:      res.BankCode,
			ResponseCode:  res.ResponseCode,
			PaidAt:        payDate(res.PayDate, s.now()),
		})
		if err != nil {
			logger.ErrorWithFields("Failed to mark reconciled order paid", err, fields)
			return reconcileError
		}
		if !changed {
			return reconcileStillPending
		}
		return reconcilePaid

	case res.ResponseCode == vnpay.ResponseCodeSuccess:
		// query thành công, giao dịch không thành công
		return s.cancelStale(ctx, order, fields)

	default:
		logger.Warn("VNPay query rejected, order left pending", fields)
		return reconcileStillPending
	}
}

func (s *paymentService) cancelStale(ctx context.Context, order *orderModel.Order, fields map[string]interface{}) string {
	cancelled, err := s.orderRepo.Cancel(ctx, order.ID, orderModel.CancelReasonPaymentTimeout)
	if err != nil {
		logger.ErrorWithFields("Failed to cancel stale order", err, fields)
		return reconcileError
	}
	if !cancelled {
		// một callback vừa cập nhật order
		return reconcileStillPending
	}
	return reconcileCancelled
}

// logQueryResult keeps querydr answers in the same audit table as callbacks.
func (s *paymentService) logQueryResult(ctx context.Context, order *orderModel.Order, res *vnpay.QueryResult, result string) {
	outcome := model.OutcomeDeclined
	switch {
	case !res.Found():
		outcome = model.OutcomeOrderNotFound
	case res.ResponseCode != vnpay.ResponseCodeSuccess:
		outcome = model.OutcomeError
	case result == reconcilePaid:
		outcome = model.OutcomePaid
	case result == reconcileError:
		outcome = model.OutcomeError
	case result == reconcileStillPending && res.Paid():
		outcome = model.OutcomeAlreadyProcessed
	}

	orderID := order.ID
	entry := &model.CallbackLog{
		ID:            uuid.New(),
		OrderID:       &orderID,
		Gateway:       model.GatewayVNPay,
		Source:        model.SourceQuery,
		OrderRef:      res.OrderRef,
		TransactionNo: res.TransactionNo,
		ResponseCode:  res.ResponseCode,
		Amount:        res.Amount,
		Params: map[string]string{
			vnpay.FieldResponseCode:      res.ResponseCode,
			vnpay.FieldMessage:           res.Message,
			vnpay.FieldTransactionNo:     res.TransactionNo,
			vnpay.FieldTransactionStatus: res.TransactionStatus,
			vnpay.FieldBankCode:          res.BankCode,
			vnpay.FieldPayDate:           res.PayDate,
		},
		IsValid:    true,
		Outcome:    outcome,
		ClientIP:   reconcileClientIP,
		ReceivedAt: s.now(),
	}
	if err := s.callbackRepo.Create(ctx, entry); err != nil {
		logger.ErrorWithFields("Failed to write query log", err, map[string]interface{}{"order_id": order.ID.String()})
	}
}
