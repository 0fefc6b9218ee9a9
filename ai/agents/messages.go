package agent

import (
	"fmt"
	"strings"
)

// Customer-facing replies.
const (
	msgProductHeader   = "Here are a couple of options:\n- "
	msgProductNone     = "I couldn’t find options under your criteria. Try widening the price or tags."
	msgOrderNotFound   = "I couldn't find an order with that information. Please double-check the order ID and email."
	msgGuardrailRefuse = "I can’t provide a discount code that doesn’t exist. You can often find first-order perks by signing up for our newsletter."

	// GuardrailReason is the policy reason recorded for out-of-scope requests.
	GuardrailReason = "out_of_policy_request"
)

// maxProductOptions is how many search results are offered.
const maxProductOptions = 2

func productLine(e ProductEvidence) string {
	return fmt.Sprintf("‘%s’ ($%d) — sizes: %s. Recommendation: %s ETA to your area: %s.",
		e.Title, e.Price, strings.Join(e.Sizes, ", "), e.SizeRec, e.ETA)
}

func productMessage(options []ProductEvidence) string {
	if len(options) == 0 {
		return msgProductNone
	}
	lines := make([]string, len(options))
	for i, o := range options {
		lines[i] = productLine(o)
	}
	return msgProductHeader + strings.Join(lines, "\n- ")
}

func cancelSuccessMessage(orderID, email string) string {
	return fmt.Sprintf("Success — order %s (%s) is canceled.", orderID, email)
}

func cancelBlockedMessage(orderID string, windowMinutes int) string {
	return fmt.Sprintf("Sorry — order %s can’t be canceled. "+
		"Our policy allows cancellations only within %d minutes of placing the order. "+
		"Options: we can try a shipping address edit, offer store credit once delivered, or hand you off to support.",
		orderID, windowMinutes)
}
