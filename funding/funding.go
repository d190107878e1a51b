// Package funding turns a selected payment requirement into a spendable
// transaction output, either by delegating to the wallet's native send or by
// building a raw transaction against a UTXO provider.
package funding

import (
	"context"
	"strings"

	x402bch "github.com/x402-bch/x402-bch-go"
	"github.com/x402-bch/x402-bch-go/wallet"
)

// Result is one funding outcome: the broadcast transaction, the output index
// belonging to the payee, and the total amount that output carries.
type Result struct {
	Txid     string
	Vout     uint32
	SatsSent int64
}

// Mode selects the funding strategy.
type Mode string

const (
	// ModeDelegated hands the payment to the wallet's native send, wrapped in
	// a bounded retry queue.
	ModeDelegated Mode = "delegated"

	// ModeManual selects a UTXO, computes fee and change, and builds,
	// signs and broadcasts the transaction directly.
	ModeManual Mode = "manual"
)

// fullstackHost marks the provider whose endpoints imply manual mode.
const fullstackHost = "fullstack.cash"

// Config describes the server the funding engine talks to. Mode, when set,
// picks the strategy explicitly; when empty it is derived from the URL so
// callers configured by endpoint alone keep working.
type Config struct {
	APIType      string
	BchServerURL string
	Mode         Mode
}

// ResolveMode returns the effective strategy for this config.
func (c Config) ResolveMode() Mode {
	if c.Mode != "" {
		return c.Mode
	}
	return ModeFromURL(c.BchServerURL)
}

// ModeFromURL derives the funding strategy from a provider endpoint.
// A fullstack.cash endpoint exposes the raw REST interface and selects
// manual construction; anything else delegates to the wallet.
func ModeFromURL(serverURL string) Mode {
	if strings.Contains(serverURL, fullstackHost) {
		return ModeManual
	}
	return ModeDelegated
}

// Funder produces a spendable output satisfying a requirement.
type Funder interface {
	Fund(ctx context.Context, req x402bch.PaymentRequirements) (*Result, error)
}

// NewFunder builds the strategy selected by cfg, backed by the given signer
// and REST client.
func NewFunder(cfg Config, signer *wallet.Signer, client *wallet.BchAPIClient) Funder {
	if cfg.ResolveMode() == ModeManual {
		return NewManual(signer, client, client)
	}
	return NewDelegated(client, signer)
}

// amountToSend resolves how much to fund: the signer's configured default
// when present, otherwise exactly what the requirement asks for.
func amountToSend(signer x402bch.Signer, req x402bch.PaymentRequirements) (int64, error) {
	if amt := signer.PaymentAmountSats(); amt > 0 {
		return amt, nil
	}
	return x402bch.OwedSats(req)
}
