// Package slots pulls structured parameters out of a customer utterance.
//
// Every extractor is a pure, total function of the text: a missing slot is
// reported as nil (or "" for the size hint), never as an error.
package slots

import (
	"strconv"
	"strings"

	"github.com/hrygo/shopdesk/ai/internal/strutil"
	"github.com/hrygo/shopdesk/ai/vocabulary"
)

// SizeBetweenML is the hint reported for shoppers between medium and large.
const SizeBetweenML = "M/L"

// emailTrailing is stripped from the end of an email token.
const emailTrailing = ".,;:!?)("

// ProductSlots are the parameters of a product_assist request.
type ProductSlots struct {
	PriceCeiling *int
	Tags         []string
	SizeHint     string
	PostalCode   *string
}

// OrderSlots are the parameters of an order_help request.
type OrderSlots struct {
	OrderID *string
	Email   *string
}

// ExtractProduct runs every product extractor over text.
func ExtractProduct(text string, vocab vocabulary.Vocabulary) ProductSlots {
	return ProductSlots{
		PriceCeiling: PriceCeiling(text),
		Tags:         Tags(text, vocab.Tags),
		SizeHint:     SizeHint(text),
		PostalCode:   PostalCode(text),
	}
}

// ExtractOrder runs every order extractor over text.
func ExtractOrder(text string) OrderSlots {
	return OrderSlots{
		OrderID: OrderID(text),
		Email:   Email(text),
	}
}

// PriceCeiling returns the N of the first "under $N". A number too large for
// an int counts as absent.
func PriceCeiling(text string) *int {
	m := priceCeilingPattern().FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// Tags returns the vocabulary tags that appear as whole words, in vocabulary order.
func Tags(text string, vocab []string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, tag := range vocab {
		if tag == "" {
			continue
		}
		if tagPattern(strings.ToLower(tag)).MatchString(lower) {
			found = append(found, tag)
		}
	}
	return found
}

// SizeHint returns "M/L", "M", "L" or "".
func SizeHint(text string) string {
	lower := strings.ToLower(text)
	// "m/l" covers "between m/l"; both are listed to keep the rule readable.
	if strings.Contains(lower, "between m/l") ||
		strings.Contains(lower, "between m and l") ||
		strings.Contains(lower, "m/l") {
		return SizeBetweenML
	}
	if m := sizeHintPattern().FindStringSubmatch(lower); m != nil {
		return strings.ToUpper(m[2])
	}
	return ""
}

// PostalCode returns the 5 or 6 digit code following "eta to".
func PostalCode(text string) *string {
	m := postalCodePattern().FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return nil
	}
	return &m[1]
}

// OrderID returns the upper-cased id following "cancel order".
// Dash look-alikes are folded to '-' first so "A1—003" style ids survive.
func OrderID(text string) *string {
	normalized := strings.ToLower(strutil.NormalizeDashes(text))
	m := orderIDPattern().FindStringSubmatch(normalized)
	if m == nil {
		return nil
	}
	id := strings.ToUpper(m[1])
	return &id
}

// Email returns the lower-cased token following "email", minus trailing punctuation.
func Email(text string) *string {
	m := emailPattern().FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return nil
	}
	email := strings.TrimRight(m[1], emailTrailing)
	if email == "" {
		return nil
	}
	return &email
}
