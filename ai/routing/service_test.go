package routing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	calls  atomic.Int32
	intent Intent
	err    error
}

func (s *stubClassifier) ClassifyIntent(context.Context, string) (Intent, float32, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", 0, s.err
	}
	return s.intent, 0.9, nil
}

func TestService_DefaultsToRuleMatcher(t *testing.T) {
	svc := NewService(DefaultConfig())
	ctx := context.Background()

	intent, confidence, err := svc.ClassifyIntent(ctx, "Cancel order A1003")
	require.NoError(t, err)
	assert.Equal(t, IntentOrderHelp, intent)
	assert.Equal(t, float32(1.0), confidence)

	intent, confidence, err = svc.ClassifyIntent(ctx, "discount code please")
	require.NoError(t, err)
	assert.Equal(t, IntentOther, intent)
	assert.Equal(t, float32(0.5), confidence)
}

func TestService_CachesResults(t *testing.T) {
	stub := &stubClassifier{intent: IntentProductAssist}
	svc := NewService(Config{Classifier: stub, EnableCache: true})
	ctx := context.Background()

	for range 3 {
		intent, _, err := svc.ClassifyIntent(ctx, "same text")
		require.NoError(t, err)
		assert.Equal(t, IntentProductAssist, intent)
	}
	assert.Equal(t, int32(1), stub.calls.Load())

	stats, ok := svc.CacheStats()
	require.True(t, ok)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestService_NoCache(t *testing.T) {
	stub := &stubClassifier{intent: IntentOther}
	svc := NewService(Config{Classifier: stub})

	for range 2 {
		_, _, err := svc.ClassifyIntent(context.Background(), "x")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), stub.calls.Load())

	_, ok := svc.CacheStats()
	assert.False(t, ok)
}

func TestService_ErrorsAreNotCached(t *testing.T) {
	stub := &stubClassifier{err: errors.New("model offline")}
	svc := NewService(Config{Classifier: stub, EnableCache: true})
	ctx := context.Background()

	intent, _, err := svc.ClassifyIntent(ctx, "x")
	require.Error(t, err)
	assert.Equal(t, IntentOther, intent)

	stub.err = nil
	stub.intent = IntentOrderHelp
	intent, _, err = svc.ClassifyIntent(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, IntentOrderHelp, intent)
	assert.Equal(t, int32(2), stub.calls.Load())
}
