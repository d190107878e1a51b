package funding

import (
	"context"
	"math"

	x402bch "github.com/x402-bch/x402-bch-go"
	"github.com/x402-bch/x402-bch-go/logger"
	"github.com/x402-bch/x402-bch-go/wallet"
)

// Size heuristic for a one-input P2PKH transaction, in bytes. The fee is the
// estimated size times a fixed 1.2 multiplier at 1 sat/byte.
const (
	txOverheadBytes = 10
	txInSizeBytes   = 148
	txOutSizeBytes  = 34
	feeMultiplier   = 1.2
)

// Manual funds payments by selecting a UTXO, computing fee and change, and
// building, signing and broadcasting the transaction itself.
type Manual struct {
	signer      *wallet.Signer
	utxos       wallet.UTXOSource
	broadcaster wallet.Broadcaster
	log         logger.Logger
}

// ManualOption configures the manual funder.
type ManualOption func(*Manual)

// WithManualLogger sets the logger.
func WithManualLogger(log logger.Logger) ManualOption {
	return func(m *Manual) { m.log = log }
}

// NewManual creates a manual funder.
func NewManual(signer *wallet.Signer, utxos wallet.UTXOSource, broadcaster wallet.Broadcaster, opts ...ManualOption) *Manual {
	m := &Manual{
		signer:      signer,
		utxos:       utxos,
		broadcaster: broadcaster,
		log:         logger.NoopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EstimateFeeSats returns the fee for a transaction of the given shape.
func EstimateFeeSats(numInputs, numOutputs int) int64 {
	size := txOverheadBytes + numInputs*txInSizeBytes + numOutputs*txOutSizeBytes
	return int64(math.Ceil(float64(size) * feeMultiplier))
}

// Fund selects the first UTXO large enough to cover the amount, verifies it
// also covers the fee, and pays the requirement directly. The payment output
// is always constructed first, so Vout is 0. The remainder check runs before
// any transaction is built; a negative remainder is a hard funding failure
// and is never retried. Build, signing and broadcast errors propagate
// unmodified.
func (m *Manual) Fund(ctx context.Context, req x402bch.PaymentRequirements) (*Result, error) {
	amount, err := amountToSend(m.signer, req)
	if err != nil {
		return nil, err
	}

	utxos, err := m.utxos.ListUTXOs(ctx, m.signer.Address())
	if err != nil {
		return nil, &x402bch.UtxoRetrievalError{Err: err}
	}

	// First-fit only: take the first output that covers the amount. No
	// coin-selection optimization.
	var selected *wallet.UTXO
	for i := range utxos {
		if utxos[i].Value >= amount {
			selected = &utxos[i]
			break
		}
	}
	if selected == nil {
		return nil, x402bch.ErrInsufficientFunds
	}

	fee := EstimateFeeSats(1, 2)
	remainder := selected.Value - amount - fee
	if remainder < 0 {
		return nil, x402bch.ErrInsufficientFunds
	}

	rawHex, err := wallet.BuildSignedTx(m.signer, *selected, req.PayTo, amount, remainder)
	if err != nil {
		return nil, err
	}

	txid, err := m.broadcaster.BroadcastTx(ctx, rawHex)
	if err != nil {
		return nil, err
	}

	m.log.Info("funded payment via raw transaction", map[string]any{
		"txid":      txid,
		"amount":    amount,
		"fee":       fee,
		"remainder": remainder,
	})

	return &Result{Txid: txid, Vout: 0, SatsSent: amount}, nil
}
