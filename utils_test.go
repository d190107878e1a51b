package x402bch

import (
	"encoding/json"
	"testing"
)

func TestAmountToSats(t *testing.T) {
	cases := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{"integer", "1500", 1500, false},
		{"zero", "0", 0, false},
		{"large", "2100000000000000", 2100000000000000, false},
		{"missing", "", 0, true},
		{"negative", "-5", 0, true},
		{"fractional", "1.5", 0, true},
		{"garbage", "lots", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AmountToSats(json.Number(tc.amount))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tc.amount)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("AmountToSats(%q) = %d, want %d", tc.amount, got, tc.want)
			}
		})
	}
}

func TestOwedSatsFallback(t *testing.T) {
	v2 := PaymentRequirements{Amount: "1500"}
	v1 := PaymentRequirements{MinAmountRequired: "1500"}
	both := PaymentRequirements{Amount: "1500", MinAmountRequired: "9999"}

	for _, req := range []PaymentRequirements{v2, v1, both} {
		owed, err := OwedSats(req)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if owed != 1500 {
			t.Fatalf("Expected 1500, got %d", owed)
		}
	}
}

func TestValidatePaymentRequirements(t *testing.T) {
	valid := PaymentRequirements{Scheme: SchemeUTXO, Network: NetworkMainnet, Amount: "100", PayTo: "qzpayee"}
	if err := ValidatePaymentRequirements(valid); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	missing := []PaymentRequirements{
		{Network: NetworkMainnet, Amount: "100", PayTo: "qzpayee"},
		{Scheme: SchemeUTXO, Amount: "100", PayTo: "qzpayee"},
		{Scheme: SchemeUTXO, Network: NetworkMainnet, Amount: "100"},
		{Scheme: SchemeUTXO, Network: NetworkMainnet, PayTo: "qzpayee"},
	}
	for i, req := range missing {
		if err := ValidatePaymentRequirements(req); err == nil {
			t.Fatalf("Expected validation error for case %d", i)
		}
	}
}
