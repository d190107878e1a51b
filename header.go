package x402bch

import (
	"encoding/json"
	"fmt"

	"github.com/x402-bch/x402-bch-go/types"
)

// BuildAuthorization constructs the message a signer commits to for one
// challenge. Value is the owed amount exactly as the server provided it;
// Amount is always the signer's total funded amount, which is what the
// payee can actually claim against.
func BuildAuthorization(signer Signer, req PaymentRequirements, txid string, vout uint32) Authorization {
	return Authorization{
		From:   signer.Address(),
		To:     req.PayTo,
		Value:  req.OwedAmount(),
		Txid:   txid,
		Vout:   vout,
		Amount: signer.PaymentAmountSats(),
	}
}

// BuildPaymentHeader serializes the authorization deterministically, signs
// it, and emits the generation selected by version. The two generations
// default the network literal differently: v1 falls back to the legacy short
// name, v2 to the namespaced mainnet identifier. Getting that wrong silently
// mis-tags the payment under the other naming scheme, so the defaults are
// applied here and nowhere else.
func BuildPaymentHeader(signer Signer, req PaymentRequirements, version int, txid string, vout uint32, resource *ResourceInfo, extensions map[string]interface{}) (string, error) {
	auth := BuildAuthorization(signer, req, txid, vout)

	message, err := json.Marshal(auth)
	if err != nil {
		return "", fmt.Errorf("failed to serialize authorization: %w", err)
	}

	signature, err := signer.SignMessage(string(message))
	if err != nil {
		return "", fmt.Errorf("failed to sign authorization: %w", err)
	}

	payload := map[string]interface{}{
		"signature":     signature,
		"authorization": auth,
	}

	if version == ProtocolVersionV1 {
		scheme := req.Scheme
		if scheme == "" {
			scheme = SchemeUTXO
		}
		network := req.Network
		if network == "" {
			network = NetworkLegacy
		}
		out, err := json.Marshal(types.PaymentPayloadV1{
			X402Version: ProtocolVersionV1,
			Scheme:      scheme,
			Network:     string(network),
			Payload:     payload,
		})
		if err != nil {
			return "", fmt.Errorf("failed to serialize v1 payment payload: %w", err)
		}
		return string(out), nil
	}

	network := req.Network
	if network == "" {
		network = NetworkMainnet
	}
	var res *types.ResourceInfoV2
	if resource != nil {
		res = &types.ResourceInfoV2{
			URL:         resource.URL,
			Description: resource.Description,
			MimeType:    resource.MimeType,
		}
	}
	out, err := json.Marshal(types.PaymentPayloadV2{
		X402Version: version,
		Resource:    res,
		Accepted: types.AcceptedRequirementV2{
			Scheme:            SchemeUTXO,
			Network:           string(network),
			Amount:            req.OwedAmount(),
			Asset:             req.Asset,
			PayTo:             req.PayTo,
			MaxTimeoutSeconds: req.MaxTimeoutSeconds,
			Extra:             req.Extra,
		},
		Payload:    payload,
		Extensions: extensions,
	})
	if err != nil {
		return "", fmt.Errorf("failed to serialize v2 payment payload: %w", err)
	}
	return string(out), nil
}
