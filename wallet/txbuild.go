package wallet

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/gcash/bchd/chaincfg/chainhash"
	"github.com/gcash/bchd/txscript"
	"github.com/gcash/bchd/wire"
	"github.com/gcash/bchutil"
)

// BuildSignedTx constructs, signs, and serializes a one-input payment
// transaction spending the given UTXO. The payment output is always built
// first, so the payee's output index is 0 by construction. A change output
// back to the signer is appended only when changeSat is positive; the
// difference between input value and outputs is left to the miner as fee.
// Signing uses the BCH full-commitment policy (SIGHASH_ALL | SIGHASH_FORKID).
func BuildSignedTx(signer *Signer, utxo UTXO, payTo string, amountSat, changeSat int64) (string, error) {
	params := signer.ChainParams()

	payAddr, err := bchutil.DecodeAddress(payTo, params)
	if err != nil {
		return "", fmt.Errorf("invalid payee address %q: %w", payTo, err)
	}
	payScript, err := txscript.PayToAddrScript(payAddr)
	if err != nil {
		return "", fmt.Errorf("failed to build payment script: %w", err)
	}

	// The spent UTXO belongs to the signer, so the previous output script is
	// the signer's own P2PKH script.
	prevScript, err := txscript.PayToAddrScript(signer.PayAddress())
	if err != nil {
		return "", fmt.Errorf("failed to build input script: %w", err)
	}

	txHash, err := chainhash.NewHashFromStr(utxo.TxHash)
	if err != nil {
		return "", fmt.Errorf("invalid utxo txid %q: %w", utxo.TxHash, err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(txHash, utxo.TxPos), nil))
	tx.AddTxOut(wire.NewTxOut(amountSat, payScript))
	if changeSat > 0 {
		tx.AddTxOut(wire.NewTxOut(changeSat, prevScript))
	}

	sigScript, err := txscript.SignatureScript(tx, 0, utxo.Value, prevScript,
		txscript.SigHashAll|txscript.SigHashForkID, signer.PrivKey(), true)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	tx.TxIn[0].SignatureScript = sigScript

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}
