package routing

import (
	"context"
	"strings"

	"github.com/hrygo/shopdesk/ai/vocabulary"
)

const (
	keywordConfidence  float32 = 1.0
	fallbackConfidence float32 = 0.5
)

// RuleMatcher is the fixed keyword oracle.
// Rules, in order:
//  1. any order keyword ("cancel", "order") → order_help
//  2. any product keyword → product_assist
//  3. otherwise → other
//
// Keywords are plain case-insensitive substrings, so rule 1 wins even when both
// sets match ("cancel my dress order").
type RuleMatcher struct {
	orderKeywords   []string
	productKeywords []string
}

// NewRuleMatcher creates a rule matcher over the vocabulary's keyword sets.
func NewRuleMatcher(v vocabulary.Vocabulary) *RuleMatcher {
	return &RuleMatcher{
		orderKeywords:   lowerAll(v.OrderKeywords),
		productKeywords: lowerAll(v.ProductKeywords),
	}
}

// Match classifies input. It never fails.
func (m *RuleMatcher) Match(input string) *MatchResult {
	lower := strings.ToLower(input)

	if kw, ok := firstContained(lower, m.orderKeywords); ok {
		return &MatchResult{Intent: IntentOrderHelp, Keyword: kw, Confidence: keywordConfidence, Matched: true}
	}
	if kw, ok := firstContained(lower, m.productKeywords); ok {
		return &MatchResult{Intent: IntentProductAssist, Keyword: kw, Confidence: keywordConfidence, Matched: true}
	}
	return &MatchResult{Intent: IntentOther, Confidence: fallbackConfidence}
}

// ClassifyIntent implements IntentClassifier.
func (m *RuleMatcher) ClassifyIntent(_ context.Context, input string) (Intent, float32, error) {
	result := m.Match(input)
	return result.Intent, result.Confidence, nil
}

var _ IntentClassifier = (*RuleMatcher)(nil)
