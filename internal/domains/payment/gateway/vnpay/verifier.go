package vnpay

import (
	"crypto/hmac"
	"encoding/hex"
	"strconv"
)

// =====================================================
// VERIFIER
// =====================================================

// VerificationResult is the outcome of checking one callback. OrderRef and
// TransactionNo are filled in even when Valid is false so failed attempts can
// be audited.
type VerificationResult struct {
	Valid             bool
	OrderRef          string
	TransactionNo     string
	ResponseCode      string
	TransactionStatus string
	Amount            int64 // minor units, 0 if absent or malformed
	BankCode          string
	PayDate           string
}

// Succeeded reports whether the callback is authentic and says the money moved.
func (r VerificationResult) Succeeded() bool {
	if !r.Valid || r.ResponseCode != ResponseCodeSuccess {
		return false
	}
	return r.TransactionStatus == "" || r.TransactionStatus == ResponseCodeSuccess
}

// Declined reports an authentic callback that carries a non-success code.
func (r VerificationResult) Declined() bool {
	return r.Valid && !r.Succeeded()
}

// Verify recomputes the signature over params (already URL-decoded by the
// transport) and compares it with vnp_SecureHash in constant time. It never
// fails: a missing or malformed hash yields Valid=false.
func Verify(params map[string]string, hashSecret string) VerificationResult {
	received := params[FieldSecureHash]

	fields := make(map[string]string, len(params))
	for k, v := range params {
		if k == FieldSecureHash || k == FieldSecureHashType {
			continue
		}
		fields[k] = v
	}

	result := VerificationResult{
		OrderRef:          fields[FieldTxnRef],
		TransactionNo:     fields[FieldTransactionNo],
		ResponseCode:      fields[FieldResponseCode],
		TransactionStatus: fields[FieldTransactionStatus],
		BankCode:          fields[FieldBankCode],
		PayDate:           fields[FieldPayDate],
	}
	if amount, err := strconv.ParseInt(fields[FieldAmount], 10, 64); err == nil {
		result.Amount = amount
	}

	if received == "" {
		return result
	}
	got, err := hex.DecodeString(received)
	if err != nil {
		return result
	}

	expected := computeMAC(hashSecret, Canonicalize(fields).String())
	result.Valid = hmac.Equal(expected, got)
	return result
}
