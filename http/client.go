// Package http wires the payment-funding machinery into net/http: a
// RoundTripper that answers 402 challenges and convenience clients built on
// top of it.
package http

import (
	"context"
	"io"
	"net/http"

	x402bch "github.com/x402-bch/x402-bch-go"
	"github.com/x402-bch/x402-bch-go/funding"
)

// Client performs HTTP requests with transparent x402 payment handling.
type Client struct {
	transport *PaymentRoundTripper
	client    *http.Client
}

// NewClient creates a payment-aware HTTP client.
func NewClient(signer x402bch.Signer, funder funding.Funder, opts ...Option) *Client {
	transport := NewPaymentRoundTripper(signer, funder, opts...)
	return &Client{
		transport: transport,
		client:    &http.Client{Transport: transport},
	}
}

// Session returns the funding session shared by this client's requests.
func (c *Client) Session() *funding.Session {
	return c.transport.Session()
}

// DoWithPayment performs a request with automatic payment handling.
func (c *Client) DoWithPayment(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(ctx))
}

// GetWithPayment performs a GET request with automatic payment handling.
func (c *Client) GetWithPayment(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// PostWithPayment performs a POST request with automatic payment handling.
func (c *Client) PostWithPayment(ctx context.Context, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// WrapHTTPClientWithPayment wraps a standard HTTP client so its requests get
// transparent payment handling. The client's existing transport keeps doing
// the actual round trips.
func WrapHTTPClientWithPayment(client *http.Client, signer x402bch.Signer, funder funding.Funder, opts ...Option) *http.Client {
	if client == nil {
		client = http.DefaultClient
	}

	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	merged := append([]Option{WithTransport(base)}, opts...)
	client.Transport = NewPaymentRoundTripper(signer, funder, merged...)
	return client
}
