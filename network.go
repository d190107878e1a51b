package x402bch

import "strings"

// IsSupportedNetwork reports whether a network identifier names Bitcoin Cash
// under either wire generation. The legacy short name and the namespaced
// mainnet identifier are accepted exactly; beyond that, any identifier under
// the bip122 namespace is accepted as a coarse family match. That breadth is
// intentional: servers in the wild tag BCH with several bip122 references and
// the scheme filter in SelectPaymentRequirement does the real narrowing.
func IsSupportedNetwork(network Network) bool {
	if network == NetworkLegacy || network == NetworkMainnet {
		return true
	}
	return strings.HasPrefix(string(network), NamespacePrefix)
}

// SelectPaymentRequirement filters a challenge's accepted requirements to
// those this SDK can fulfill and returns the first survivor in input order.
// A nil or empty list is treated as an empty list, which fails with
// ErrNoMatchingRequirement like any other list with no qualifying entry.
func SelectPaymentRequirement(requirements []PaymentRequirements) (PaymentRequirements, error) {
	for _, req := range requirements {
		if req.Scheme != SchemeUTXO {
			continue
		}
		if !IsSupportedNetwork(req.Network) {
			continue
		}
		return req, nil
	}
	return PaymentRequirements{}, ErrNoMatchingRequirement
}
