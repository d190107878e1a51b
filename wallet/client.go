package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Receiver is one output of a delegated send.
type Receiver struct {
	Address   string
	AmountSat int64
}

// WalletClient is the wallet capability the delegated funding path drives.
// Initialize may perform network calls and must be invoked before Send.
type WalletClient interface {
	Initialize(ctx context.Context) error
	Send(ctx context.Context, receivers []Receiver) (string, error)
}

// UTXO is one unspent output as reported by a bch-api compatible provider.
type UTXO struct {
	TxHash string `json:"tx_hash"`
	TxPos  uint32 `json:"tx_pos"`
	Value  int64  `json:"value"`
	Height int64  `json:"height"`
}

// UTXOSource lists spendable outputs for an address.
type UTXOSource interface {
	ListUTXOs(ctx context.Context, address string) ([]UTXO, error)
}

// Broadcaster submits a serialized raw transaction to the network.
type Broadcaster interface {
	BroadcastTx(ctx context.Context, rawHex string) (string, error)
}

// BchAPIConfig configures the REST client.
type BchAPIConfig struct {
	// BaseURL is the bch-api compatible endpoint, without trailing slash.
	BaseURL string `validate:"required,url"`

	// APIType selects the provider's interface flavor ("consumer-api" or
	// "rest-api"). Informational for now; both flavors share these routes.
	APIType string

	// HTTPClient overrides the transport (optional).
	HTTPClient *http.Client

	// Timeout for requests (optional, defaults to 30s).
	Timeout time.Duration
}

// BchAPIClient talks to a bch-api compatible REST provider. It implements
// UTXOSource and Broadcaster directly, and WalletClient by composing them
// with a Signer for the single-receiver send.
type BchAPIClient struct {
	baseURL    string
	apiType    string
	httpClient *http.Client
	signer     *Signer
}

var (
	_ UTXOSource   = (*BchAPIClient)(nil)
	_ Broadcaster  = (*BchAPIClient)(nil)
	_ WalletClient = (*BchAPIClient)(nil)
)

// NewBchAPIClient creates a REST wallet client bound to a signer's key.
func NewBchAPIClient(cfg BchAPIConfig, signer *Signer) (*BchAPIClient, error) {
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid bch-api config: %w", err)
	}
	if signer == nil {
		return nil, fmt.Errorf("signer is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &BchAPIClient{
		baseURL:    cfg.BaseURL,
		apiType:    cfg.APIType,
		httpClient: httpClient,
		signer:     signer,
	}, nil
}

// Initialize verifies the provider is reachable. A failure here is fatal for
// the funding attempt and propagates to the caller.
func (c *BchAPIClient) Initialize(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/control/getNetworkInfo", nil)
	if err != nil {
		return fmt.Errorf("failed to create initialize request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wallet initialization failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("wallet initialization failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// ListUTXOs fetches unspent outputs for an address.
func (c *BchAPIClient) ListUTXOs(ctx context.Context, address string) ([]UTXO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/electrumx/utxos/"+address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create utxo request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("utxo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read utxo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("utxo request failed (%d): %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Success bool   `json:"success"`
		UTXOs   []UTXO `json:"utxos"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode utxo response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("utxo request rejected by provider")
	}
	return parsed.UTXOs, nil
}

// BroadcastTx submits a raw transaction and returns its txid.
func (c *BchAPIClient) BroadcastTx(ctx context.Context, rawHex string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{"hexes": []string{rawHex}})
	if err != nil {
		return "", fmt.Errorf("failed to marshal broadcast request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rawtransactions/sendRawTransaction", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create broadcast request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("broadcast request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read broadcast response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("broadcast failed (%d): %s", resp.StatusCode, string(body))
	}

	var txids []string
	if err := json.Unmarshal(body, &txids); err != nil {
		return "", fmt.Errorf("failed to decode broadcast response: %w", err)
	}
	if len(txids) == 0 {
		return "", fmt.Errorf("broadcast returned no txid")
	}
	return txids[0], nil
}

// walletSendFee is the flat fee the native send budgets for its one-input,
// two-output payment shape.
const walletSendFee = 500

// ErrTextInsufficientBalance is the exact text the wallet reports when its
// balance cannot cover a send. The delegated funding path matches on it
// case-sensitively to stop retrying structurally unfundable payments.
const ErrTextInsufficientBalance = "Insufficient balance"

// Send is the wallet's native single-receiver payment: first-fit UTXO
// selection against amount plus a flat fee budget, one payment output at
// index 0, change back to the signer when any remains.
func (c *BchAPIClient) Send(ctx context.Context, receivers []Receiver) (string, error) {
	if len(receivers) != 1 {
		return "", fmt.Errorf("send supports exactly one receiver, got %d", len(receivers))
	}
	recv := receivers[0]

	utxos, err := c.ListUTXOs(ctx, c.signer.Address())
	if err != nil {
		return "", err
	}

	need := recv.AmountSat + walletSendFee
	var selected *UTXO
	for i := range utxos {
		if utxos[i].Value >= need {
			selected = &utxos[i]
			break
		}
	}
	if selected == nil {
		return "", fmt.Errorf("%s: wallet cannot cover %d sats", ErrTextInsufficientBalance, need)
	}

	change := selected.Value - need
	rawHex, err := BuildSignedTx(c.signer, *selected, recv.Address, recv.AmountSat, change)
	if err != nil {
		return "", err
	}

	return c.BroadcastTx(ctx, rawHex)
}
