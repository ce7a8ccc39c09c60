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
	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/logger"
)

// =====================================================
// PROCESS VNPAY CALLBACKS (RETURN + IPN)
// =====================================================

func (s *paymentService) HandleReturn(ctx context.Context, params map[string]string, clientIP string) (*model.CallbackResult, error) {
	return s.processCallback(ctx, model.SourceReturn, params, clientIP)
}

func (s *paymentService) HandleIPN(ctx context.Context, params map[string]string, clientIP string) (*model.CallbackResult, error) {
	return s.processCallback(ctx, model.SourceIPN, params, clientIP)
}

// processCallback handles one VNPay callback
//
// Business Logic Flow:
// 1. Verify signature
// 2. Log callback to vnpay_callback_logs (valid or not)
// 3. Reject invalid signatures
// 4. Find order by vnp_TxnRef, cross-check vnp_Amount
// 5. Redis guard against concurrent duplicates
// 6. Apply: success → MarkPaid, otherwise → MarkPaymentFailed
// 7. Store outcome on the log row
//
// Idempotency:
// - MarkPaid only updates a pending order, so a replayed success callback
//   reports AlreadyProcessed and changes nothing
// - The Redis guard only short-circuits; it is never the source of truth
func (s *paymentService) processCallback(
	ctx context.Context,
	source string,
	params map[string]string,
	clientIP string,
) (*model.CallbackResult, error) {
	// Step 1: Verify signature
	verified := s.vnpayGateway.VerifyCallback(params)

	result := &model.CallbackResult{
		OrderID:       verified.OrderRef,
		TransactionNo: verified.TransactionNo,
		ResponseCode:  verified.ResponseCode,
	}
	fields := map[string]interface{}{
		"source":         source,
		"order_ref":      verified.OrderRef,
		"transaction_no": verified.TransactionNo,
		"response_code":  verified.ResponseCode,
	}

	// Step 2: Audit log
	entry := &model.CallbackLog{
		ID:            uuid.New(),
		Gateway:       model.GatewayVNPay,
		Source:        source,
		OrderRef:      verified.OrderRef,
		TransactionNo: verified.TransactionNo,
		ResponseCode:  verified.ResponseCode,
		Amount:        verified.Amount,
		Params:        params,
		IsValid:       verified.Valid,
		Outcome:       model.OutcomeReceived,
		ClientIP:      clientIP,
		ReceivedAt:    s.now(),
	}
	if orderID := utils.ParseStringToUUID(verified.OrderRef); orderID != uuid.Nil {
		entry.OrderID = &orderID
	}
	if !verified.Valid {
		entry.SetOutcome(model.OutcomeInvalidSignature, model.ErrInvalidSignature)
	}

	if err := s.callbackRepo.Create(ctx, entry); err != nil {
		logger.ErrorWithFields("Failed to write callback log", err, fields)
		if verified.Valid {
			// không có audit trail thì không xử lý, VNPay sẽ retry IPN
			return s.finish(source, result, model.OutcomeError, err, fields)
		}
	}

	// Step 3: Reject invalid signature
	if !verified.Valid {
		logger.Warn("VNPay callback with invalid signature", fields)
		return s.finish(source, result, model.OutcomeInvalidSignature, model.NewInvalidSignatureError(), fields)
	}

	// Step 4-6
	outcome, err := s.applyCallback(ctx, verified)

	// Step 7: Store outcome
	var errMsg *string
	if err != nil {
		msg := err.Error()
		errMsg = &msg
	}
	if uerr := s.callbackRepo.UpdateOutcome(ctx, entry.ID, outcome, errMsg); uerr != nil {
		logger.ErrorWithFields("Failed to update callback outcome", uerr, fields)
	}

	return s.finish(source, result, outcome, err, fields)
}

func (s *paymentService) applyCallback(ctx context.Context, v vnpay.VerificationResult) (model.CallbackOutcome, error) {
	orderID, err := uuid.Parse(v.OrderRef)
	if err != nil {
		return model.OutcomeOrderNotFound, model.NewOrderNotFoundError(v.OrderRef)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderModel.ErrOrderNotFound) {
			return model.OutcomeOrderNotFound, model.NewOrderNotFoundError(v.OrderRef)
		}
		return model.OutcomeError, fmt.Errorf("failed to get order: %w", err)
	}

	// vnp_Amount phải bằng total * 100
	expected, err := vnpay.ToMinorUnits(order.TotalAmount)
	if err != nil || v.Amount != expected {
		return model.OutcomeAmountMismatch, model.NewInvalidAmountError(
			vnpay.FromMinorUnits(v.Amount).String(),
			order.TotalAmount.String(),
		)
	}

	guardKey := callbackGuardKey(v)
	if !s.acquireGuard(ctx, guardKey) {
		return model.OutcomeAlreadyProcessed, nil
	}

	outcome, err := s.applyToOrder(ctx, order, v)
	if outcome == model.OutcomeError {
		s.releaseGuard(ctx, guardKey)
	}
	return outcome, err
}

func (s *paymentService) applyToOrder(
	ctx context.Context,
	order *orderModel.Order,
	v vnpay.VerificationResult,
) (model.CallbackOutcome, error) {
	if order.IsPaymentCompleted() {
		return model.OutcomeAlreadyProcessed, nil
	}

	if order.Status != orderModel.OrderStatusPending {
		if v.Succeeded() {
			// Tiền đã bị trừ nhưng order đã cancel: cần refund thủ công
			logger.Warn("VNPay payment succeeded for a non-pending order, manual refund needed", map[string]interface{}{
				"order_id":       order.ID.String(),
				"status":         order.Status,
				"transaction_no": v.TransactionNo,
			})
		}
		return model.OutcomeAlreadyProcessed, nil
	}

	processed, err := s.callbackRepo.ExistsProcessed(ctx, v.OrderRef, v.TransactionNo, v.ResponseCode)
	if err != nil {
		return model.OutcomeError, err
	}
	if processed {
		return model.OutcomeAlreadyProcessed, nil
	}

	if v.Succeeded() {
		changed, err := s.orderRepo.MarkPaid(ctx, order.ID, orderModel.PaymentUpdate{
			TransactionNo: v.TransactionNo,
			BankCode:      v.BankCode,
			ResponseCode:  v.ResponseCode,
			PaidAt:        payDate(v.PayDate, s.now()),
		})
		if err != nil {
			return model.OutcomeError, fmt.Errorf("failed to mark order paid: %w", err)
		}
		if !changed {
			return model.OutcomeAlreadyProcessed, nil
		}
		return model.OutcomePaid, nil
	}

	// Declined: order vẫn pending để user thanh toán lại
	if err := s.orderRepo.MarkPaymentFailed(ctx, order.ID, v.ResponseCode); err != nil {
		return model.OutcomeError, fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return model.OutcomeDeclined, nil
}

func (s *paymentService) finish(
	source string,
	result *model.CallbackResult,
	outcome model.CallbackOutcome,
	err error,
	fields map[string]interface{},
) (*model.CallbackResult, error) {
	result.Outcome = outcome
	switch outcome {
	case model.OutcomePaid, model.OutcomeDeclined, model.OutcomeAlreadyProcessed:
		result.Message = vnpay.ResponseMessage(result.ResponseCode)
	default:
		result.Message = model.NewIPNResponse(outcome).Message
	}

	metrics.IncCallback(source, string(outcome))

	fields["outcome"] = string(outcome)
	if outcome == model.OutcomeError {
		logger.ErrorWithFields("VNPay callback processing failed", err, fields)
	} else {
		logger.Info("VNPay callback processed", fields)
	}

	return result, err
}

// =====================================================
// DUPLICATE GUARD
// =====================================================

func callbackGuardKey(v vnpay.VerificationResult) string {
	return fmt.Sprintf("vnpay:callback:%s:%s:%s", v.OrderRef, v.TransactionNo, v.ResponseCode)
}

// acquireGuard returns false only when Redis confirms another worker holds the key.
// Redis errors fall through to the database check.
func (s *paymentService) acquireGuard(ctx context.Context, key string) bool {
	if s.cache == nil {
		return true
	}
	ok, err := s.cache.SetNX(ctx, key, s.now().Unix(), model.CallbackGuardTTLMinutes*time.Minute)
	if err != nil {
		logger.Warn("Callback guard unavailable", map[string]interface{}{"key": key, "error": err.Error()})
		return true
	}
	return ok
}

func (s *paymentService) releaseGuard(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Warn("Failed to release callback guard", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func payDate(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	t, err := vnpay.ParseDate(raw)
	if err != nil {
		return fallback
	}
	return t
}
