package types

import "encoding/json"

// PaymentPayloadV2 represents a v2 payment payload structure
// V2 nests scheme/network inside the accepted requirement
type PaymentPayloadV2 struct {
	X402Version int                    `json:"x402Version"`
	Resource    *ResourceInfoV2        `json:"resource,omitempty"`
	Accepted    AcceptedRequirementV2  `json:"accepted"`
	Payload     map[string]interface{} `json:"payload"`
	Extensions  map[string]interface{} `json:"extensions,omitempty"`
}

// AcceptedRequirementV2 is the requirement the payer chose to fulfill,
// echoed back inside the payment payload
type AcceptedRequirementV2 struct {
	Scheme            string                 `json:"scheme"`
	Network           string                 `json:"network"`
	Amount            json.Number            `json:"amount"`
	Asset             string                 `json:"asset,omitempty"`
	PayTo             string                 `json:"payTo"`
	MaxTimeoutSeconds int                    `json:"maxTimeoutSeconds,omitempty"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
}

// PaymentRequiredV2 represents a v2 402 response structure
type PaymentRequiredV2 struct {
	X402Version int                     `json:"x402Version"`
	Error       string                  `json:"error,omitempty"`
	Resource    *ResourceInfoV2         `json:"resource,omitempty"`
	Accepts     []AcceptedRequirementV2 `json:"accepts"`
	Extensions  map[string]interface{}  `json:"extensions,omitempty"`
}

// ResourceInfoV2 describes the resource being accessed
type ResourceInfoV2 struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// Unmarshal helpers

// ToPaymentPayloadV2 unmarshals bytes to v2 payment payload
func ToPaymentPayloadV2(data []byte) (*PaymentPayloadV2, error) {
	var payload PaymentPayloadV2
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ToPaymentRequiredV2 unmarshals bytes to v2 payment required response
func ToPaymentRequiredV2(data []byte) (*PaymentRequiredV2, error) {
	var required PaymentRequiredV2
	if err := json.Unmarshal(data, &required); err != nil {
		return nil, err
	}
	return &required, nil
}
