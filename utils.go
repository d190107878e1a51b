package x402bch

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountToSats coerces a wire amount to an integer number of satoshis.
// Generation-2 servers may send amounts as numeric strings; decimal parsing
// keeps the coercion exact instead of routing through float64.
func AmountToSats(amount json.Number) (int64, error) {
	s := string(amount)
	if s == "" {
		return 0, fmt.Errorf("amount is missing")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q is negative", s)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("amount %q is not a whole number of sats", s)
	}
	return d.IntPart(), nil
}

// OwedSats resolves a requirement's owed amount to sats, applying the
// amount-then-minAmountRequired precedence.
func OwedSats(req PaymentRequirements) (int64, error) {
	return AmountToSats(req.OwedAmount())
}

// ValidatePaymentRequirements performs basic validation on payment requirements
func ValidatePaymentRequirements(r PaymentRequirements) error {
	if r.Scheme == "" {
		return fmt.Errorf("payment scheme is required")
	}
	if r.Network == "" {
		return fmt.Errorf("payment network is required")
	}
	if r.PayTo == "" {
		return fmt.Errorf("payment recipient is required")
	}
	if r.OwedAmount() == "" {
		return fmt.Errorf("payment amount is required")
	}
	return nil
}
