package routing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/shopdesk/ai/vocabulary"
)

func TestRuleMatcher_Match(t *testing.T) {
	m := NewRuleMatcher(vocabulary.Default())

	tests := []struct {
		name    string
		input   string
		intent  Intent
		keyword string
	}{
		{"product request", "Wedding guest, midi, under $120 — I'm between M/L. ETA to 560001?", IntentProductAssist, "wedding"},
		{"cancel request", "Cancel order A1003 — email mira@example.com.", IntentOrderHelp, "cancel"},
		{"order wins over product", "cancel my dress order", IntentOrderHelp, "cancel"},
		{"order keyword alone", "Where is my ORDER?", IntentOrderHelp, "order"},
		{"eta is a product signal", "What's the eta?", IntentProductAssist, "eta"},
		{"price marker", "anything under $50", IntentProductAssist, "under $"},
		{"discount probe", "Can you give me a discount code that doesn't exist?", IntentOther, ""},
		{"empty input", "", IntentOther, ""},
		{"whitespace only", "   ", IntentOther, ""},
		{"uppercase", "MIDI PLEASE", IntentProductAssist, "midi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := m.Match(tt.input)
			assert.Equal(t, tt.intent, result.Intent)
			if tt.keyword == "" {
				assert.False(t, result.Matched)
				assert.Equal(t, fallbackConfidence, result.Confidence)
				return
			}
			assert.True(t, result.Matched)
			assert.Equal(t, keywordConfidence, result.Confidence)
			assert.Equal(t, tt.keyword, result.Keyword)
		})
	}
}

func TestRuleMatcher_SubstringQuirk(t *testing.T) {
	m := NewRuleMatcher(vocabulary.Default())

	// "metadata" contains "eta"; keywords are substrings, not words.
	assert.Equal(t, IntentProductAssist, m.Match("show me the metadata").Intent)
	// "border" contains "order".
	assert.Equal(t, IntentOrderHelp, m.Match("lace border").Intent)
}

func TestRuleMatcher_CustomVocabulary(t *testing.T) {
	v := vocabulary.Default()
	v.OrderKeywords = []string{"refund"}
	m := NewRuleMatcher(v)

	assert.Equal(t, IntentOrderHelp, m.Match("I want a REFUND").Intent)
	assert.Equal(t, IntentOther, m.Match("cancel it").Intent)
}

func TestRuleMatcher_ClassifyIntent(t *testing.T) {
	m := NewRuleMatcher(vocabulary.Default())

	intent, confidence, err := m.ClassifyIntent(context.Background(), "cancel order A1")
	require.NoError(t, err)
	assert.Equal(t, IntentOrderHelp, intent)
	assert.Equal(t, float32(1.0), confidence)
}

func TestIntentValid(t *testing.T) {
	for _, i := range Intents() {
		assert.True(t, i.Valid(), i)
	}
	assert.False(t, Intent("unknown").Valid())
	assert.False(t, Intent("").Valid())
}
