package wallet

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/gcash/bchd/bchec"
	"github.com/gcash/bchd/chaincfg"
	"github.com/gcash/bchd/chaincfg/chainhash"
	"github.com/gcash/bchd/wire"
	"github.com/gcash/bchutil"
	"github.com/go-playground/validator/v10"

	x402bch "github.com/x402-bch/x402-bch-go"
)

var validate = validator.New()

// messageMagic prefixes every signed message, matching the convention BCH
// wallets inherited from bitcoind.
const messageMagic = "Bitcoin Signed Message:\n"

// SignerConfig is the caller-supplied material a Signer is built from.
type SignerConfig struct {
	// WIF is the serialized private key the payment address derives from.
	WIF string `validate:"required"`

	// PaymentAmountSats is the default amount funded per payment, in sats.
	PaymentAmountSats int64 `validate:"required,gt=0"`
}

// Signer derives a P2PKH payment address from a WIF and signs messages with
// the underlying key. Create one per client session and share it by
// reference; it is never mutated after construction.
type Signer struct {
	wif     *bchutil.WIF
	address bchutil.Address
	amount  int64
	params  *chaincfg.Params
}

var _ x402bch.Signer = (*Signer)(nil)

// NewSigner builds a mainnet signer from config.
func NewSigner(cfg SignerConfig) (*Signer, error) {
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid signer config: %w", err)
	}

	wif, err := bchutil.DecodeWIF(cfg.WIF)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wif: %w", err)
	}

	params := &chaincfg.MainNetParams
	addr, err := bchutil.NewAddressPubKeyHash(bchutil.Hash160(wif.SerializePubKey()), params)
	if err != nil {
		return nil, fmt.Errorf("failed to derive payment address: %w", err)
	}

	return &Signer{
		wif:     wif,
		address: addr,
		amount:  cfg.PaymentAmountSats,
		params:  params,
	}, nil
}

// Address returns the signer's cashaddr payment address.
func (s *Signer) Address() string {
	return s.address.EncodeAddress()
}

// PaymentAmountSats returns the default funding amount in sats.
func (s *Signer) PaymentAmountSats() int64 {
	return s.amount
}

// PayAddress returns the decoded form of the payment address for script
// construction.
func (s *Signer) PayAddress() bchutil.Address {
	return s.address
}

// PrivKey exposes the signing key to transaction construction within this
// package and the funding engine. It never crosses the SDK boundary.
func (s *Signer) PrivKey() *bchec.PrivateKey {
	return s.wif.PrivKey
}

// ChainParams returns the network parameters addresses decode against.
func (s *Signer) ChainParams() *chaincfg.Params {
	return s.params
}

// SignMessage signs text under the Bitcoin Signed Message convention and
// returns the compact signature base64-encoded.
func (s *Signer) SignMessage(message string) (string, error) {
	var buf bytes.Buffer
	if err := wire.WriteVarString(&buf, 0, messageMagic); err != nil {
		return "", fmt.Errorf("failed to write message magic: %w", err)
	}
	if err := wire.WriteVarString(&buf, 0, message); err != nil {
		return "", fmt.Errorf("failed to write message: %w", err)
	}

	hash := chainhash.DoubleHashB(buf.Bytes())
	sig, err := bchec.SignCompact(bchec.S256(), s.wif.PrivKey, hash, s.wif.CompressPubKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	return base64.StdEncoding.EncodeToString(sig), nil
}
