package funding

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/gcash/bchd/wire"

	x402bch "github.com/x402-bch/x402-bch-go"
	"github.com/x402-bch/x402-bch-go/wallet"
)

// Well-known WIF for secp256k1 private key 1; fine for offline signing tests.
const testWIF = "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn"

const testTxHash = "aa00000000000000000000000000000000000000000000000000000000000001"

func newTestSigner(t *testing.T, amount int64) *wallet.Signer {
	t.Helper()
	signer, err := wallet.NewSigner(wallet.SignerConfig{WIF: testWIF, PaymentAmountSats: amount})
	if err != nil {
		t.Fatalf("Failed to build signer: %v", err)
	}
	return signer
}

type mockUTXOSource struct {
	utxos     []wallet.UTXO
	err       error
	requested string
}

func (m *mockUTXOSource) ListUTXOs(_ context.Context, address string) ([]wallet.UTXO, error) {
	m.requested = address
	if m.err != nil {
		return nil, m.err
	}
	return m.utxos, nil
}

type mockBroadcaster struct {
	rawHex string
	txid   string
	err    error
	calls  int
}

func (m *mockBroadcaster) BroadcastTx(_ context.Context, rawHex string) (string, error) {
	m.calls++
	m.rawHex = rawHex
	if m.err != nil {
		return "", m.err
	}
	return m.txid, nil
}

func decodeTx(t *testing.T, rawHex string) *wire.MsgTx {
	t.Helper()
	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		t.Fatalf("Broadcast hex is invalid: %v", err)
	}
	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		t.Fatalf("Broadcast transaction does not deserialize: %v", err)
	}
	return &tx
}

func TestManualFundUTXORetrievalErrorWrapped(t *testing.T) {
	signer := newTestSigner(t, 1000)
	upstream := errors.New("electrumx timed out")
	funder := NewManual(signer, &mockUTXOSource{err: upstream}, &mockBroadcaster{txid: "x"})

	req := x402bch.PaymentRequirements{Scheme: x402bch.SchemeUTXO, Amount: "1000", PayTo: signer.Address()}
	_, err := funder.Fund(context.Background(), req)

	var retrievalErr *x402bch.UtxoRetrievalError
	if !errors.As(err, &retrievalErr) {
		t.Fatalf("Expected UtxoRetrievalError, got %v", err)
	}
	if !errors.Is(err, upstream) {
		t.Fatal("Expected upstream error to be preserved")
	}
}

func TestManualFundNoQualifyingUTXO(t *testing.T) {
	signer := newTestSigner(t, 10000)
	source := &mockUTXOSource{utxos: []wallet.UTXO{
		{TxHash: testTxHash, TxPos: 0, Value: 500},
		{TxHash: testTxHash, TxPos: 1, Value: 9999},
	}}
	broadcaster := &mockBroadcaster{txid: "x"}
	funder := NewManual(signer, source, broadcaster)

	req := x402bch.PaymentRequirements{Scheme: x402bch.SchemeUTXO, Amount: "10000", PayTo: signer.Address()}
	_, err := funder.Fund(context.Background(), req)
	if !errors.Is(err, x402bch.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}
	if broadcaster.calls != 0 {
		t.Fatal("Expected no broadcast attempt")
	}
}

func TestManualFundNegativeRemainderFailsBeforeBuild(t *testing.T) {
	signer := newTestSigner(t, 10000)
	fee := EstimateFeeSats(1, 2)
	// Covers the amount but not amount plus fee.
	source := &mockUTXOSource{utxos: []wallet.UTXO{
		{TxHash: testTxHash, TxPos: 0, Value: 10000 + fee - 100},
	}}
	broadcaster := &mockBroadcaster{txid: "x"}
	funder := NewManual(signer, source, broadcaster)

	req := x402bch.PaymentRequirements{Scheme: x402bch.SchemeUTXO, Amount: "10000", PayTo: signer.Address()}
	_, err := funder.Fund(context.Background(), req)
	if !errors.Is(err, x402bch.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}
	if broadcaster.calls != 0 {
		t.Fatal("Expected the remainder check to fail before any broadcast")
	}
}

func TestManualFundPositiveRemainderBuildsChangeOutput(t *testing.T) {
	signer := newTestSigner(t, 2000)
	source := &mockUTXOSource{utxos: []wallet.UTXO{
		{TxHash: testTxHash, TxPos: 3, Value: 5000},
	}}
	broadcaster := &mockBroadcaster{txid: "txid-manual"}
	funder := NewManual(signer, source, broadcaster)

	req := x402bch.PaymentRequirements{Scheme: x402bch.SchemeUTXO, Amount: "2000", PayTo: signer.Address()}
	result, err := funder.Fund(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Txid != "txid-manual" || result.Vout != 0 || result.SatsSent != 2000 {
		t.Fatalf("Unexpected result: %+v", result)
	}
	if source.requested != signer.Address() {
		t.Fatalf("Expected UTXOs fetched for the signer's address, got %q", source.requested)
	}

	tx := decodeTx(t, broadcaster.rawHex)
	if len(tx.TxIn) != 1 {
		t.Fatalf("Expected one input, got %d", len(tx.TxIn))
	}
	if len(tx.TxOut) != 2 {
		t.Fatalf("Expected payment plus change outputs, got %d", len(tx.TxOut))
	}
	// Payment output is always first.
	if tx.TxOut[0].Value != 2000 {
		t.Fatalf("Expected payment output of 2000, got %d", tx.TxOut[0].Value)
	}
	wantChange := 5000 - 2000 - EstimateFeeSats(1, 2)
	if tx.TxOut[1].Value != wantChange {
		t.Fatalf("Expected change output of %d, got %d", wantChange, tx.TxOut[1].Value)
	}
	if len(tx.TxIn[0].SignatureScript) == 0 {
		t.Fatal("Expected input to be signed")
	}
}

func TestManualFundZeroRemainderOmitsChangeOutput(t *testing.T) {
	signer := newTestSigner(t, 2000)
	fee := EstimateFeeSats(1, 2)
	source := &mockUTXOSource{utxos: []wallet.UTXO{
		{TxHash: testTxHash, TxPos: 0, Value: 2000 + fee},
	}}
	broadcaster := &mockBroadcaster{txid: "txid-exact"}
	funder := NewManual(signer, source, broadcaster)

	req := x402bch.PaymentRequirements{Scheme: x402bch.SchemeUTXO, Amount: "2000", PayTo: signer.Address()}
	if _, err := funder.Fund(context.Background(), req); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tx := decodeTx(t, broadcaster.rawHex)
	if len(tx.TxOut) != 1 {
		t.Fatalf("Expected only the payment output, got %d", len(tx.TxOut))
	}
}

func TestManualFundFirstFitSelection(t *testing.T) {
	signer := newTestSigner(t, 2000)
	source := &mockUTXOSource{utxos: []wallet.UTXO{
		{TxHash: testTxHash, TxPos: 0, Value: 100},
		{TxHash: testTxHash, TxPos: 1, Value: 7000},
		{TxHash: testTxHash, TxPos: 2, Value: 90000},
	}}
	broadcaster := &mockBroadcaster{txid: "x"}
	funder := NewManual(signer, source, broadcaster)

	req := x402bch.PaymentRequirements{Scheme: x402bch.SchemeUTXO, Amount: "2000", PayTo: signer.Address()}
	if _, err := funder.Fund(context.Background(), req); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tx := decodeTx(t, broadcaster.rawHex)
	if tx.TxIn[0].PreviousOutPoint.Index != 1 {
		t.Fatalf("Expected first qualifying UTXO (vout 1), got %d", tx.TxIn[0].PreviousOutPoint.Index)
	}
}

func TestManualFundBroadcastErrorPropagates(t *testing.T) {
	signer := newTestSigner(t, 2000)
	source := &mockUTXOSource{utxos: []wallet.UTXO{{TxHash: testTxHash, TxPos: 0, Value: 5000}}}
	boom := errors.New("tx-rejected: mempool conflict")
	funder := NewManual(signer, source, &mockBroadcaster{err: boom})

	req := x402bch.PaymentRequirements{Scheme: x402bch.SchemeUTXO, Amount: "2000", PayTo: signer.Address()}
	_, err := funder.Fund(context.Background(), req)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected broadcast error to pass through unmodified, got %v", err)
	}
}
