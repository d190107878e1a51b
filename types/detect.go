package types

import (
	"encoding/json"
	"fmt"
)

// DetectVersion reads the x402Version discriminator out of raw payload or
// challenge bytes. Version is always declared explicitly on the wire; shape
// sniffing is never used.
func DetectVersion(data []byte) (int, error) {
	var probe struct {
		X402Version int `json:"x402Version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse x402 payload: %w", err)
	}
	if probe.X402Version == 0 {
		return 0, fmt.Errorf("x402Version missing from payload")
	}
	return probe.X402Version, nil
}
