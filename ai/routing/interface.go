// Package routing classifies a customer utterance into one of the engine's intents.
package routing

import (
	"context"
)

// IntentClassifier maps raw text to an intent.
// The dispatcher depends only on this interface, so a model-backed classifier can
// replace the keyword oracle without touching any flow.
type IntentClassifier interface {
	// ClassifyIntent returns the intent and a confidence in [0, 1].
	// Implementations should be total; the dispatcher treats an error as IntentOther.
	ClassifyIntent(ctx context.Context, input string) (Intent, float32, error)
}

// Intent represents the type of user intent.
type Intent string

const (
	IntentProductAssist Intent = "product_assist"
	IntentOrderHelp     Intent = "order_help"
	IntentOther         Intent = "other"
)

// Intents lists every intent in routing precedence order.
func Intents() []Intent {
	return []Intent{IntentOrderHelp, IntentProductAssist, IntentOther}
}

// Valid reports whether i is one of the known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentProductAssist, IntentOrderHelp, IntentOther:
		return true
	}
	return false
}

// MatchResult contains the result of keyword matching.
type MatchResult struct {
	Intent     Intent
	Keyword    string  // first keyword that fired, empty for the fallback
	Confidence float32 // 1.0 on a keyword hit, fallbackConfidence otherwise
	Matched    bool    // false when no keyword fired and the fallback intent was used
}

// CacheObserver receives routing cache statistics.
type CacheObserver interface {
	RecordCacheHit(cacheType string)
	RecordCacheMiss(cacheType string)
}
