package vnpay

// =====================================================
// VNPAY FIELD NAMES
// =====================================================

const (
	FieldVersion           = "vnp_Version"
	FieldCommand           = "vnp_Command"
	FieldTmnCode           = "vnp_TmnCode"
	FieldAmount            = "vnp_Amount"
	FieldCurrCode          = "vnp_CurrCode"
	FieldTxnRef            = "vnp_TxnRef"
	FieldOrderInfo         = "vnp_OrderInfo"
	FieldOrderType         = "vnp_OrderType"
	FieldLocale            = "vnp_Locale"
	FieldReturnURL         = "vnp_ReturnUrl"
	FieldIPAddr            = "vnp_IpAddr"
	FieldCreateDate        = "vnp_CreateDate"
	FieldExpireDate        = "vnp_ExpireDate"
	FieldBankCode          = "vnp_BankCode"
	FieldBankTranNo        = "vnp_BankTranNo"
	FieldCardType          = "vnp_CardType"
	FieldPayDate           = "vnp_PayDate"
	FieldResponseCode      = "vnp_ResponseCode"
	FieldTransactionNo     = "vnp_TransactionNo"
	FieldTransactionStatus = "vnp_TransactionStatus"
	FieldSecureHash        = "vnp_SecureHash"
	FieldSecureHashType    = "vnp_SecureHashType"
	FieldMessage           = "vnp_Message"
)

// CallbackFields lists every parameter VNPay may put on a return or IPN request.
var CallbackFields = []string{
	FieldTmnCode,
	FieldAmount,
	FieldBankCode,
	FieldBankTranNo,
	FieldCardType,
	FieldOrderInfo,
	FieldPayDate,
	FieldResponseCode,
	FieldTransactionNo,
	FieldTransactionStatus,
	FieldTxnRef,
	FieldSecureHash,
	FieldSecureHashType,
}

// =====================================================
// QUERYDR WIRE TYPES
// =====================================================

// queryPayload is the JSON body of a querydr call.
type queryPayload struct {
	RequestID       string `json:"vnp_RequestId"`
	Version         string `json:"vnp_Version"`
	Command         string `json:"vnp_Command"`
	TmnCode         string `json:"vnp_TmnCode"`
	TxnRef          string `json:"vnp_TxnRef"`
	OrderInfo       string `json:"vnp_OrderInfo"`
	TransactionDate string `json:"vnp_TransactionDate"`
	CreateDate      string `json:"vnp_CreateDate"`
	IPAddr          string `json:"vnp_IpAddr"`
	SecureHash      string `json:"vnp_SecureHash"`
}

// queryReply is the JSON body VNPay answers a querydr call with.
type queryReply struct {
	ResponseID        string `json:"vnp_ResponseId"`
	Command           string `json:"vnp_Command"`
	ResponseCode      string `json:"vnp_ResponseCode"`
	Message           string `json:"vnp_Message"`
	TmnCode           string `json:"vnp_TmnCode"`
	TxnRef            string `json:"vnp_TxnRef"`
	Amount            string `json:"vnp_Amount"`
	BankCode          string `json:"vnp_BankCode"`
	PayDate           string `json:"vnp_PayDate"`
	TransactionNo     string `json:"vnp_TransactionNo"`
	TransactionType   string `json:"vnp_TransactionType"`
	TransactionStatus string `json:"vnp_TransactionStatus"`
	OrderInfo         string `json:"vnp_OrderInfo"`
	PromotionCode     string `json:"vnp_PromotionCode"`
	PromotionAmount   string `json:"vnp_PromotionAmount"`
	SecureHash        string `json:"vnp_SecureHash"`
}
