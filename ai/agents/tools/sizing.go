package tools

import "strings"

// Size advice messages.
const (
	AdviceBetweenML  = "You’re between M/L—go with L for a relaxed fit; choose M for a closer fit."
	AdvicePreferL    = "You prefer L—this style runs true to size."
	AdvicePreferM    = "You prefer M—this style runs true to size."
	AdviceTrueToSize = "This style is typically true to size."
)

// RecommendSize turns a size hint into advice.
// The hint is checked for the letters m and l anywhere, so a free-form note
// such as "small" reads as a preference for L.
func RecommendSize(hint string) string {
	lower := strings.ToLower(hint)
	hasM := strings.Contains(lower, "m")
	hasL := strings.Contains(lower, "l")

	switch {
	case hasM && hasL:
		return AdviceBetweenML
	case hasL:
		return AdvicePreferL
	case hasM:
		return AdvicePreferM
	default:
		return AdviceTrueToSize
	}
}

// EstimateDelivery returns the delivery window for an optional postal code.
func EstimateDelivery(postalCode *string) string {
	if postalCode != nil && *postalCode != "" {
		return "2–5 business days"
	}
	return "3–7 business days"
}
