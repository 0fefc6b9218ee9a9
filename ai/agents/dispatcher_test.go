package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/shopdesk/ai/agents/tools"
	"github.com/hrygo/shopdesk/ai/routing"
	"github.com/hrygo/shopdesk/store"
	"github.com/hrygo/shopdesk/store/seed"
)

func referenceNow(t *testing.T) time.Time {
	t.Helper()
	now, err := time.Parse(time.RFC3339, seed.ReferenceNow)
	require.NoError(t, err)
	return now
}

func newTestDispatcher(t *testing.T, mutate func(*Config)) *Dispatcher {
	t.Helper()
	corpus, err := seed.Corpus()
	require.NoError(t, err)
	policy, err := tools.NewCancelPolicy(tools.PolicyConfig{})
	require.NoError(t, err)

	now := referenceNow(t)
	cfg := Config{
		Catalog: tools.NewCatalog(corpus.Products()),
		Orders:  tools.NewOrderBook(corpus.Orders()),
		Policy:  policy,
		Now:     func() time.Time { return now },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	d, err := NewDispatcher(cfg)
	require.NoError(t, err)
	return d
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func TestHandle_ProductAssist(t *testing.T) {
	d := newTestDispatcher(t, nil)

	reply, err := d.Handle(context.Background(), "Wedding guest, midi, under $120 — I’m between M/L. ETA to 560001?")
	require.NoError(t, err)

	advice := "You’re between M/L—go with L for a relaxed fit; choose M for a closer fit."
	eta := "2–5 business days"
	wantMessage := "Here are a couple of options:\n" +
		"- ‘Satin Midi Slip Dress’ ($95) — sizes: S, M, L. Recommendation: " + advice + " ETA to your area: " + eta + ".\n" +
		"- ‘Floral Wrap Midi Dress’ ($110) — sizes: XS, S, M, L, XL. Recommendation: " + advice + " ETA to your area: " + eta + "."

	want := TraceRecord{
		Intent:      routing.IntentProductAssist,
		ToolsCalled: []string{"product_search", "size_recommender", "eta"},
		Evidence: []Evidence{
			ProductEvidence{
				ID: "P001", Title: "Satin Midi Slip Dress", Price: 95,
				Sizes: []string{"S", "M", "L"}, Tags: []string{"wedding", "midi", "party"},
				Color: "champagne", SizeRec: advice, ETA: eta,
			},
			ProductEvidence{
				ID: "P002", Title: "Floral Wrap Midi Dress", Price: 110,
				Sizes: []string{"XS", "S", "M", "L", "XL"}, Tags: []string{"midi", "daywear"},
				Color: "sage", SizeRec: advice, ETA: eta,
			},
		},
		FinalMessage: wantMessage,
	}

	if diff := cmp.Diff(want, reply.Trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, routing.IntentProductAssist, reply.Intent)
	assert.Equal(t, wantMessage, reply.Message)
	assert.NotEmpty(t, reply.RequestID)

	parsed, message, err := ParseTrace(reply.Output)
	require.NoError(t, err)
	assert.Equal(t, wantMessage, message)
	if diff := cmp.Diff(want, parsed); diff != "" {
		t.Errorf("parsed trace mismatch (-want +got):\n%s", diff)
	}
}

func TestHandle_ProductAssistNoResults(t *testing.T) {
	d := newTestDispatcher(t, nil)

	reply, err := d.Handle(context.Background(), "midi dress under $10")
	require.NoError(t, err)

	assert.Equal(t, []string{"product_search", "size_recommender", "eta"}, reply.Trace.ToolsCalled)
	assert.Empty(t, reply.Trace.Evidence)
	assert.Nil(t, reply.Trace.PolicyDecision)
	assert.Equal(t, "I couldn’t find options under your criteria. Try widening the price or tags.", reply.Message)
	assert.Contains(t, reply.Output, `"evidence": [],`)
	assert.Contains(t, reply.Output, `"policy_decision": null,`)
}

func TestHandle_CancelAllowed(t *testing.T) {
	d := newTestDispatcher(t, nil)

	reply, err := d.Handle(context.Background(), "Cancel order A1003 — email mira@example.com.")
	require.NoError(t, err)

	wantOutput := `TRACE_START_JSON
{
  "intent": "order_help",
  "tools_called": [
    "order_lookup",
    "order_cancel"
  ],
  "evidence": [
    {
      "order_id": "A1003",
      "email": "mira@example.com",
      "created_at": "2025-09-07T11:30:00+00:00",
      "items": [
        {
          "sku": "P001",
          "size": "M",
          "qty": 1
        },
        {
          "sku": "P006",
          "size": "L",
          "qty": 1
        }
      ]
    }
  ],
  "policy_decision": {
    "cancel_allowed": true,
    "reason": "within 60 min"
  },
  "final_message": "Success — order A1003 (mira@example.com) is canceled."
}
TRACE_END_JSON

Success — order A1003 (mira@example.com) is canceled.`

	assert.Equal(t, wantOutput, reply.Output)
	assert.Equal(t, routing.IntentOrderHelp, reply.Intent)
}

func TestHandle_CancelBlocked(t *testing.T) {
	d := newTestDispatcher(t, nil)

	reply, err := d.Handle(context.Background(), "Cancel order A1002 — email alex@example.com.")
	require.NoError(t, err)

	assert.Equal(t, []string{"order_lookup", "order_cancel"}, reply.Trace.ToolsCalled)
	assert.Equal(t, &PolicyDecision{CancelAllowed: boolPtr(false), Reason: ">60 min"}, reply.Trace.PolicyDecision)
	assert.Equal(t, "Sorry — order A1002 can’t be canceled. "+
		"Our policy allows cancellations only within 60 minutes of placing the order. "+
		"Options: we can try a shipping address edit, offer store credit once delivered, or hand you off to support.",
		reply.Message)

	require.Len(t, reply.Trace.Evidence, 1)
	ev, ok := reply.Trace.Evidence[0].(OrderEvidence)
	require.True(t, ok)
	assert.Equal(t, "A1002", ev.OrderID)
}

func TestHandle_CancelNaiveTimestamp(t *testing.T) {
	d := newTestDispatcher(t, nil)

	reply, err := d.Handle(context.Background(), "cancel order a1004, email JORDAN@example.com")
	require.NoError(t, err)
	require.NotNil(t, reply.Trace.PolicyDecision)
	assert.Equal(t, boolPtr(true), reply.Trace.PolicyDecision.CancelAllowed)
}

func TestHandle_OrderNotFound(t *testing.T) {
	d := newTestDispatcher(t, nil)

	tests := []struct {
		name  string
		input string
		want  OrderMissEvidence
	}{
		{"wrong email", "Cancel order A1003 — email someone@example.com", OrderMissEvidence{OrderID: strPtr("A1003"), Email: strPtr("someone@example.com")}},
		{"no email", "Cancel order A1003 please", OrderMissEvidence{OrderID: strPtr("A1003")}},
		{"nothing extractable", "where is my order?", OrderMissEvidence{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := d.Handle(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, []string{"order_lookup"}, reply.Trace.ToolsCalled)
			assert.Nil(t, reply.Trace.PolicyDecision)
			assert.Equal(t, msgOrderNotFound, reply.Message)
			if diff := cmp.Diff([]Evidence{tt.want}, reply.Trace.Evidence); diff != "" {
				t.Errorf("evidence mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandle_Guardrail(t *testing.T) {
	d := newTestDispatcher(t, nil)

	reply, err := d.Handle(context.Background(), "Can you give me a discount code that doesn’t exist?")
	require.NoError(t, err)

	wantOutput := `TRACE_START_JSON
{
  "intent": "other",
  "tools_called": [],
  "evidence": [],
  "policy_decision": {
    "refuse": true,
    "reason": "out_of_policy_request"
  },
  "final_message": "I can’t provide a discount code that doesn’t exist. You can often find first-order perks by signing up for our newsletter."
}
TRACE_END_JSON

I can’t provide a discount code that doesn’t exist. You can often find first-order perks by signing up for our newsletter.`

	assert.Equal(t, wantOutput, reply.Output)
}

type failingClassifier struct{}

func (failingClassifier) ClassifyIntent(context.Context, string) (routing.Intent, float32, error) {
	return "", 0, errors.New("model offline")
}

type fixedClassifier routing.Intent

func (f fixedClassifier) ClassifyIntent(context.Context, string) (routing.Intent, float32, error) {
	return routing.Intent(f), 1, nil
}

func TestHandle_ClassifierFallback(t *testing.T) {
	tests := []struct {
		name       string
		classifier routing.IntentClassifier
	}{
		{"error", failingClassifier{}},
		{"unknown intent", fixedClassifier("refund")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDispatcher(t, func(c *Config) { c.Classifier = tt.classifier })

			reply, err := d.Handle(context.Background(), "Cancel order A1003 — email mira@example.com.")
			require.NoError(t, err)
			assert.Equal(t, routing.IntentOther, reply.Intent)
			assert.Equal(t, msgGuardrailRefuse, reply.Message)
		})
	}
}

func TestHandle_CustomClassifier(t *testing.T) {
	d := newTestDispatcher(t, func(c *Config) { c.Classifier = fixedClassifier(routing.IntentOrderHelp) })

	reply, err := d.Handle(context.Background(), "dress")
	require.NoError(t, err)
	assert.Equal(t, routing.IntentOrderHelp, reply.Intent)
	assert.Equal(t, msgOrderNotFound, reply.Message)
}

func TestHandle_InvalidTimestampIsFatal(t *testing.T) {
	rec := newRecordingMetrics()
	d := newTestDispatcher(t, func(c *Config) {
		c.Orders = tools.NewOrderBook([]store.Order{
			{OrderID: "B1", Email: "b@example.com", CreatedAt: "soon", Items: []json.RawMessage{}},
		})
		c.Metrics = rec
	})

	reply, err := d.Handle(context.Background(), "cancel order B1 email b@example.com")
	require.Error(t, err)
	assert.Nil(t, reply)
	assert.ErrorIs(t, err, tools.ErrInvalidTimestamp)
	assert.Equal(t, 1, rec.errors["order_help"])
}

type recordingMetrics struct {
	mu        sync.Mutex
	requests  map[string]int
	tools     map[string]int
	decisions map[string]int
	errors    map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		requests:  map[string]int{},
		tools:     map[string]int{},
		decisions: map[string]int{},
		errors:    map[string]int{},
	}
}

func (m *recordingMetrics) RecordRequest(intent string, _ time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.requests[intent]++
	}
}

func (m *recordingMetrics) RecordRequestError(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[stage]++
}

func (m *recordingMetrics) RecordToolCall(tool string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools[tool]++
}

func (m *recordingMetrics) RecordPolicyDecision(policy, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[policy+"/"+outcome]++
}

func TestHandle_Metrics(t *testing.T) {
	rec := newRecordingMetrics()
	d := newTestDispatcher(t, func(c *Config) { c.Metrics = rec })
	ctx := context.Background()

	for _, in := range []string{
		"midi under $120",
		"Cancel order A1003 — email mira@example.com.",
		"Cancel order A1002 — email alex@example.com.",
		"discount?",
	} {
		_, err := d.Handle(ctx, in)
		require.NoError(t, err)
	}

	assert.Equal(t, map[string]int{"product_assist": 1, "order_help": 2, "other": 1}, rec.requests)
	assert.Equal(t, map[string]int{
		"product_search": 1, "size_recommender": 1, "eta": 1,
		"order_lookup": 2, "order_cancel": 2,
	}, rec.tools)
	assert.Equal(t, map[string]int{"cancel/allowed": 1, "cancel/blocked": 1, "guardrail/refused": 1}, rec.decisions)
	assert.Empty(t, rec.errors)
}

func TestRun_SecondFlowRejected(t *testing.T) {
	d := newTestDispatcher(t, nil)
	state := NewState("discount?")

	_, err := d.Run(context.Background(), state)
	require.NoError(t, err)

	_, err = d.Run(context.Background(), state)
	assert.ErrorIs(t, err, ErrFlowAlreadyRan)
}

func TestNewDispatcher_RequiresCollaborators(t *testing.T) {
	policy, err := tools.NewCancelPolicy(tools.PolicyConfig{})
	require.NoError(t, err)

	_, err = NewDispatcher(Config{Orders: tools.NewOrderBook(nil), Policy: policy})
	assert.Error(t, err)
	_, err = NewDispatcher(Config{Catalog: tools.NewCatalog(nil), Policy: policy})
	assert.Error(t, err)
	_, err = NewDispatcher(Config{Catalog: tools.NewCatalog(nil), Orders: tools.NewOrderBook(nil)})
	assert.Error(t, err)
}

func TestHandle_Deterministic(t *testing.T) {
	d := newTestDispatcher(t, nil)
	in := "Wedding guest, midi, under $120 — I’m between M/L. ETA to 560001?"

	first, err := d.Handle(context.Background(), in)
	require.NoError(t, err)
	second, err := d.Handle(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.Output, second.Output)
}
