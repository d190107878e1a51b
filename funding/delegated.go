package funding

import (
	"context"
	"fmt"
	"strings"
	"time"

	x402bch "github.com/x402-bch/x402-bch-go"
	"github.com/x402-bch/x402-bch-go/logger"
	"github.com/x402-bch/x402-bch-go/wallet"
)

// Delegated funds payments through the wallet's native single-receiver send.
// The send runs inside a bounded retry queue so transient provider failures
// are retried with backoff; a wallet-reported insufficient balance is
// terminal and short-circuits the queue.
type Delegated struct {
	wallet wallet.WalletClient
	signer x402bch.Signer
	log    logger.Logger

	retryAttempts int
	retryDelay    time.Duration
}

// DelegatedOption configures the delegated funder.
type DelegatedOption func(*Delegated)

// WithDelegatedLogger sets the logger.
func WithDelegatedLogger(log logger.Logger) DelegatedOption {
	return func(d *Delegated) { d.log = log }
}

// WithRetryPolicy overrides the retry queue bounds used per funding call.
func WithRetryPolicy(attempts int, baseDelay time.Duration) DelegatedOption {
	return func(d *Delegated) {
		d.retryAttempts = attempts
		d.retryDelay = baseDelay
	}
}

// NewDelegated creates a delegated funder.
func NewDelegated(client wallet.WalletClient, signer x402bch.Signer, opts ...DelegatedOption) *Delegated {
	d := &Delegated{
		wallet: client,
		signer: signer,
		log:    logger.NoopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type sendOutcome struct {
	txid string
}

// Fund sends the payment through the wallet. The result's Vout is always 0:
// the delegated send pays a single receiver, so exactly one output belongs
// to the payee and it is built first.
func (d *Delegated) Fund(ctx context.Context, req x402bch.PaymentRequirements) (*Result, error) {
	amount, err := amountToSend(d.signer, req)
	if err != nil {
		return nil, err
	}

	if err := d.wallet.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("wallet initialization failed: %w", err)
	}

	// A fresh queue per funding call; queues own their backoff state and are
	// never shared across calls.
	queue := wallet.NewRetryQueue(d.retryAttempts, d.retryDelay)

	outcome, err := wallet.Do(ctx, queue, func(ctx context.Context) (*sendOutcome, error) {
		txid, sendErr := d.wallet.Send(ctx, []wallet.Receiver{{
			Address:   req.PayTo,
			AmountSat: amount,
		}})
		if sendErr != nil {
			// A confirmed insufficient balance is not transient; surface the
			// no-result sentinel so the queue stops instead of backing off
			// into a payment that can never fund.
			if strings.Contains(sendErr.Error(), wallet.ErrTextInsufficientBalance) {
				d.log.Warn("wallet reported insufficient balance", map[string]any{
					"payTo":  req.PayTo,
					"amount": amount,
				})
				return nil, nil
			}
			return nil, sendErr
		}
		return &sendOutcome{txid: txid}, nil
	})
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return nil, x402bch.ErrInsufficientBalance
	}

	d.log.Info("funded payment via wallet send", map[string]any{
		"txid":   outcome.txid,
		"amount": amount,
	})

	return &Result{Txid: outcome.txid, Vout: 0, SatsSent: amount}, nil
}
