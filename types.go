package x402bch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Protocol versions supported side by side. Version 1 carries scheme and
// network at the top level of the payment payload; version 2 nests them
// under the accepted requirement.
const (
	ProtocolVersionV1 = 1
	ProtocolVersion   = 2
)

// SchemeUTXO is the only payment scheme this SDK can fulfill.
const SchemeUTXO = "utxo"

// Network identifiers for Bitcoin Cash across the two wire generations.
// Version 1 servers use the legacy short name; version 2 servers use the
// CAIP-2 style bip122 identifier derived from the genesis block hash.
const (
	NetworkLegacy   Network = "bch"
	NetworkMainnet  Network = "bip122:000000000019d6689c085ae165831e93"
	NamespacePrefix         = "bip122:"
)

// Network represents a blockchain network identifier, either a legacy short
// name ("bch") or a CAIP-2 namespaced identifier ("bip122:<genesis>").
type Network string

// Parse splits a namespaced network into namespace and reference components.
// Legacy short names do not parse.
func (n Network) Parse() (namespace, reference string, err error) {
	parts := strings.Split(string(n), ":")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid network format: %s", n)
	}
	return parts[0], parts[1], nil
}

// PaymentRequirements is one server-declared acceptable way to pay.
// Amounts are carried as json.Number so that a value arriving as a numeric
// string is preserved verbatim through hashing and signing.
type PaymentRequirements struct {
	Scheme            string                 `json:"scheme"`
	Network           Network                `json:"network"`
	Asset             string                 `json:"asset,omitempty"`
	Amount            json.Number            `json:"amount,omitempty"`            // v2 field
	MinAmountRequired json.Number            `json:"minAmountRequired,omitempty"` // v1 compatibility field
	PayTo             string                 `json:"payTo"`
	MaxTimeoutSeconds int                    `json:"maxTimeoutSeconds,omitempty"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
}

// OwedAmount returns the amount this requirement asks for, preferring the v2
// field and falling back to the v1 field. The value is returned exactly as
// the server provided it; callers coerce to sats when they need to compare.
func (r PaymentRequirements) OwedAmount() json.Number {
	if r.Amount != "" {
		return r.Amount
	}
	return r.MinAmountRequired
}

// ResourceInfo describes the resource being accessed.
type ResourceInfo struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// PaymentRequired is the machine-readable 402 challenge. Both generations
// unmarshal into it; the per-requirement amount fields disambiguate.
type PaymentRequired struct {
	X402Version int                    `json:"x402Version"`
	Error       string                 `json:"error,omitempty"`
	Resource    *ResourceInfo          `json:"resource,omitempty"`
	Accepts     []PaymentRequirements  `json:"accepts"`
	Extensions  map[string]interface{} `json:"extensions,omitempty"`
}

// Authorization is the message a signer commits to when paying a challenge.
// Value is the amount owed, carried verbatim from the requirement; Amount is
// the total the signer funded, which may exceed what is owed.
type Authorization struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Value  json.Number `json:"value"`
	Txid   string      `json:"txid"`
	Vout   uint32      `json:"vout"`
	Amount int64       `json:"amount"`
}

// Signer is the capability bundle used to authorize payments. Implementations
// own the key material; this package never sees it.
type Signer interface {
	// Address returns the signer's derived payment address.
	Address() string

	// PaymentAmountSats returns the signer's default payment amount in the
	// smallest currency unit, or 0 when the requirement amount should be used.
	PaymentAmountSats() int64

	// SignMessage signs an arbitrary text message and returns the signature.
	SignMessage(message string) (string, error)
}
