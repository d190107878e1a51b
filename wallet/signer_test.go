package wallet

import (
	"encoding/base64"
	"testing"
)

// Well-known WIF for secp256k1 private key 1.
const testWIF = "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn"

func TestNewSignerValidatesConfig(t *testing.T) {
	if _, err := NewSigner(SignerConfig{PaymentAmountSats: 1000}); err == nil {
		t.Fatal("Expected missing WIF to fail validation")
	}
	if _, err := NewSigner(SignerConfig{WIF: testWIF}); err == nil {
		t.Fatal("Expected missing payment amount to fail validation")
	}
	if _, err := NewSigner(SignerConfig{WIF: "not-a-wif", PaymentAmountSats: 1000}); err == nil {
		t.Fatal("Expected malformed WIF to fail decoding")
	}
}

func TestSignerDerivesStableAddress(t *testing.T) {
	a, err := NewSigner(SignerConfig{WIF: testWIF, PaymentAmountSats: 1000})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := NewSigner(SignerConfig{WIF: testWIF, PaymentAmountSats: 2000})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if a.Address() == "" {
		t.Fatal("Expected a derived address")
	}
	if a.Address() != b.Address() {
		t.Fatal("Expected address derivation to be deterministic")
	}
	if a.PaymentAmountSats() != 1000 || b.PaymentAmountSats() != 2000 {
		t.Fatal("Expected configured payment amounts to be carried")
	}
}

func TestSignerSignMessage(t *testing.T) {
	signer, err := NewSigner(SignerConfig{WIF: testWIF, PaymentAmountSats: 1000})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sig, err := signer.SignMessage(`{"from":"qz","to":"qp","value":"1500"}`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		t.Fatalf("Signature is not base64: %v", err)
	}
	// Compact signatures are 65 bytes: recovery id plus r and s.
	if len(raw) != 65 {
		t.Fatalf("Expected 65-byte compact signature, got %d", len(raw))
	}

	// Same message, same key, same deterministic signature.
	again, err := signer.SignMessage(`{"from":"qz","to":"qp","value":"1500"}`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sig != again {
		t.Fatal("Expected deterministic signatures for identical messages")
	}
}
