package routing

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/shopdesk/ai/vocabulary"
)

// Service routes through cache -> classifier.
// It is itself an IntentClassifier, so the dispatcher never knows whether a
// result came from the cache.
type Service struct {
	classifier IntentClassifier
	source     string
	cache      *RouterCache
}

// Config contains the configuration for the router service.
type Config struct {
	Vocabulary vocabulary.Vocabulary
	// Classifier overrides the keyword oracle when set.
	Classifier  IntentClassifier
	EnableCache bool
	Cache       CacheConfig
}

// DefaultConfig returns a Config with the built-in vocabulary and caching on.
func DefaultConfig() Config {
	return Config{
		Vocabulary:  vocabulary.Default(),
		EnableCache: true,
	}
}

// NewService creates a new router service.
func NewService(cfg Config) *Service {
	svc := &Service{
		classifier: cfg.Classifier,
		source:     "custom",
	}
	if svc.classifier == nil {
		svc.classifier = NewRuleMatcher(cfg.Vocabulary)
		svc.source = "rule"
	}
	if cfg.EnableCache {
		svc.cache = NewRouterCache(cfg.Cache)
	}
	return svc
}

// ClassifyIntent implements IntentClassifier.
// Classifier errors are not cached; the caller decides how to degrade.
func (s *Service) ClassifyIntent(ctx context.Context, input string) (Intent, float32, error) {
	start := time.Now()

	if s.cache != nil {
		if entry, found := s.cache.Get(input); found {
			return entry.Intent, entry.Confidence, nil
		}
	}

	intent, confidence, err := s.classifier.ClassifyIntent(ctx, input)
	if err != nil {
		return IntentOther, 0, err
	}

	if s.cache != nil {
		s.cache.Set(input, CacheEntry{Intent: intent, Confidence: confidence, Source: s.source})
	}
	slog.Debug("intent classified",
		"input", truncate(input, 50),
		"intent", intent,
		"confidence", confidence,
		"source", s.source,
		"latency_ms", time.Since(start).Milliseconds())
	return intent, confidence, nil
}

// CacheStats returns the routing cache counters; ok is false when caching is off.
func (s *Service) CacheStats() (stats Stats, ok bool) {
	if s.cache == nil {
		return Stats{}, false
	}
	return s.cache.GetStats(), true
}

var _ IntentClassifier = (*Service)(nil)
