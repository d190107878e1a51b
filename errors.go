package x402bch

import "fmt"

// PaymentError represents a payment-specific error
type PaymentError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeMalformedRequestConfig = "malformed_request_config"
	ErrCodeNoRequirementsOffered  = "no_requirements_offered"
	ErrCodeNoMatchingRequirement  = "no_matching_requirement"
	ErrCodeInsufficientBalance    = "insufficient_balance"
	ErrCodeInsufficientFunds      = "insufficient_funds"
	ErrCodeUtxoRetrieval          = "utxo_retrieval_failed"
	ErrCodeUnsupportedNetwork     = "unsupported_network"
	ErrCodeUnsupportedScheme      = "unsupported_scheme"
)

// Sentinel errors for the failure modes callers are expected to branch on.
// All are comparable with errors.Is even when wrapped.
var (
	// ErrMalformedRequestConfig signals that the intercepted request carried
	// no usable configuration or header map.
	ErrMalformedRequestConfig = &PaymentError{
		Code:    ErrCodeMalformedRequestConfig,
		Message: "request config or header map missing",
	}

	// ErrNoRequirementsOffered signals a 402 challenge whose accepts list was
	// missing or empty.
	ErrNoRequirementsOffered = &PaymentError{
		Code:    ErrCodeNoRequirementsOffered,
		Message: "402 challenge offered no payment requirements",
	}

	// ErrNoMatchingRequirement signals that no offered requirement used the
	// UTXO scheme on a supported network.
	ErrNoMatchingRequirement = &PaymentError{
		Code:    ErrCodeNoMatchingRequirement,
		Message: "no payment requirement matches the utxo scheme on a supported network",
	}

	// ErrInsufficientBalance is the delegated funding path's terminal failure:
	// the wallet reported it cannot cover the payment, so retrying is pointless.
	ErrInsufficientBalance = &PaymentError{
		Code:    ErrCodeInsufficientBalance,
		Message: "wallet balance cannot cover the payment",
	}

	// ErrInsufficientFunds is the manual funding path's fee-aware failure:
	// the selected UTXO cannot cover amount plus fee.
	ErrInsufficientFunds = &PaymentError{
		Code:    ErrCodeInsufficientFunds,
		Message: "not enough funds to complete transaction",
	}
)

// UtxoRetrievalError wraps a failure to fetch unspent outputs from the
// configured provider. The upstream message is preserved.
type UtxoRetrievalError struct {
	Err error
}

func (e *UtxoRetrievalError) Error() string {
	return fmt.Sprintf("%s: %v", ErrCodeUtxoRetrieval, e.Err)
}

func (e *UtxoRetrievalError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, details map[string]interface{}) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
