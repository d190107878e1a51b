package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	x402bch "github.com/x402-bch/x402-bch-go"
	"github.com/x402-bch/x402-bch-go/funding"
	"github.com/x402-bch/x402-bch-go/logger"
)

// Header names across the two wire generations.
const (
	// HeaderPaymentRequired carries the base64 challenge on v2 responses.
	HeaderPaymentRequired = "Payment-Required"

	// HeaderPaymentSignature carries the v2 payment payload on the retry.
	HeaderPaymentSignature = "PAYMENT-SIGNATURE"

	// HeaderPaymentResponse is the v2 settlement header the server exposes.
	HeaderPaymentResponse = "PAYMENT-RESPONSE"

	// HeaderPaymentV1 carries the v1 payment payload on the retry.
	HeaderPaymentV1 = "X-PAYMENT"

	// HeaderPaymentResponseV1 is the v1 settlement header the server exposes.
	HeaderPaymentResponseV1 = "X-PAYMENT-RESPONSE"

	headerExposeHeaders = "Access-Control-Expose-Headers"
)

// retryMarkerKey marks a request as the funded replay of a 402 challenge.
// At most one funded replay happens per original request; a marked request
// that draws another 402 keeps that outcome.
type retryMarkerKey struct{}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryMarkerKey{}, true)
}

func isRetried(req *http.Request) bool {
	marked, _ := req.Context().Value(retryMarkerKey{}).(bool)
	return marked
}

// PaymentRoundTripper implements http.RoundTripper with x402 payment
// handling: it detects 402 challenges, funds them through the session and
// funder, attaches the signed payment header, and replays the request
// exactly once.
type PaymentRoundTripper struct {
	Transport http.RoundTripper

	signer  x402bch.Signer
	funder  funding.Funder
	session *funding.Session
	log     logger.Logger
}

// Option configures the round tripper.
type Option func(*PaymentRoundTripper)

// WithTransport sets the underlying transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(t *PaymentRoundTripper) { t.Transport = rt }
}

// WithSession shares a caller-owned funding session across transports.
func WithSession(session *funding.Session) Option {
	return func(t *PaymentRoundTripper) { t.session = session }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(t *PaymentRoundTripper) { t.log = log }
}

// NewPaymentRoundTripper creates a payment-handling transport.
func NewPaymentRoundTripper(signer x402bch.Signer, funder funding.Funder, opts ...Option) *PaymentRoundTripper {
	t := &PaymentRoundTripper{
		Transport: http.DefaultTransport,
		signer:    signer,
		funder:    funder,
		session:   funding.NewSession(),
		log:       logger.NoopLogger{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Session returns the funding session this transport settles against.
func (t *PaymentRoundTripper) Session() *funding.Session {
	return t.session
}

// RoundTrip implements http.RoundTripper.
func (t *PaymentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Anything but a 402 is not this transport's business.
	if resp.StatusCode != http.StatusPaymentRequired {
		return resp, nil
	}

	if req.Header == nil {
		drainBody(resp)
		return nil, x402bch.ErrMalformedRequestConfig
	}

	// The guard: a request already marked as a funded replay keeps its 402
	// outcome. No second funding, no second replay.
	if isRetried(req) {
		return resp, nil
	}

	flowID := uuid.NewString()
	t.log.Debug("intercepted 402 challenge", map[string]any{
		"flow": flowID,
		"url":  req.URL.String(),
	})

	required, err := extractPaymentRequired(resp)
	if err != nil {
		return nil, err
	}
	if len(required.Accepts) == 0 {
		return nil, x402bch.ErrNoRequirementsOffered
	}

	selected, err := x402bch.SelectPaymentRequirement(required.Accepts)
	if err != nil {
		return nil, err
	}

	owed, err := x402bch.OwedSats(selected)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve owed amount: %w", err)
	}

	txid, vout, err := t.session.SettleOrReuse(req.Context(), owed, func(ctx context.Context) (*funding.Result, error) {
		return t.funder.Fund(ctx, selected)
	})
	if err != nil {
		t.log.Error("funding failed", map[string]any{
			"flow":  flowID,
			"error": err.Error(),
		})
		return nil, err
	}

	version := required.X402Version
	if version == 0 {
		version = x402bch.ProtocolVersion
	}

	payload, err := x402bch.BuildPaymentHeader(t.signer, selected, version, txid, vout, required.Resource, required.Extensions)
	if err != nil {
		return nil, err
	}

	replay, err := cloneForReplay(req)
	if err != nil {
		return nil, err
	}
	attachPaymentHeaders(replay, version, payload)

	t.log.Info("replaying request with payment", map[string]any{
		"flow":    flowID,
		"txid":    txid,
		"vout":    vout,
		"owed":    owed,
		"version": version,
	})

	// Replay exactly once; whatever comes back, success or failure, is the
	// caller's outcome.
	return t.Transport.RoundTrip(replay)
}

// cloneForReplay clones the request with the retry marker set and the body
// rewound where the request knows how to reproduce it.
func cloneForReplay(req *http.Request) (*http.Request, error) {
	replay := req.Clone(markRetried(req.Context()))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body for replay: %w", err)
		}
		replay.Body = body
	}
	return replay, nil
}

// attachPaymentHeaders sets the generation-appropriate payment header and the
// CORS exposure of the matching response header.
func attachPaymentHeaders(req *http.Request, version int, payload string) {
	encoded := EncodePaymentSignatureHeader(payload)
	if version == x402bch.ProtocolVersionV1 {
		req.Header.Set(HeaderPaymentV1, encoded)
		req.Header.Set(headerExposeHeaders, HeaderPaymentResponseV1)
		return
	}
	req.Header.Set(HeaderPaymentSignature, encoded)
	req.Header.Set(headerExposeHeaders, HeaderPaymentResponse)
}

// EncodePaymentSignatureHeader encodes a serialized payment payload for
// transport in a header value.
func EncodePaymentSignatureHeader(payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// extractPaymentRequired pulls the challenge out of a 402 response. The v2
// transport carries it base64-encoded in a dedicated header; on absence or
// decode/parse failure the JSON body is used, which works for both
// generations. The response body is consumed either way.
func extractPaymentRequired(resp *http.Response) (*x402bch.PaymentRequired, error) {
	defer drainBody(resp)

	if header := resp.Header.Get(HeaderPaymentRequired); header != "" {
		if data, err := base64.StdEncoding.DecodeString(header); err == nil {
			var required x402bch.PaymentRequired
			if err := json.Unmarshal(data, &required); err == nil {
				return &required, nil
			}
		}
		// Malformed header: fall through to the body.
	}

	if resp.Body == nil {
		return nil, x402bch.ErrNoRequirementsOffered
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read 402 response body: %w", err)
	}

	var required x402bch.PaymentRequired
	if err := json.Unmarshal(body, &required); err != nil {
		return nil, x402bch.ErrNoRequirementsOffered
	}
	return &required, nil
}

func drainBody(resp *http.Response) {
	if resp.Body != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
