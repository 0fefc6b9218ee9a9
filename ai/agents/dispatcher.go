package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/shopdesk/ai/agents/tools"
	"github.com/hrygo/shopdesk/ai/filter"
	"github.com/hrygo/shopdesk/ai/internal/strutil"
	"github.com/hrygo/shopdesk/ai/observability/logging"
	"github.com/hrygo/shopdesk/ai/routing"
	"github.com/hrygo/shopdesk/ai/vocabulary"
)

// MetricsRecorder receives per-request measurements.
type MetricsRecorder interface {
	RecordRequest(intent string, latency time.Duration, success bool)
	RecordRequestError(stage string)
	RecordToolCall(tool string)
	RecordPolicyDecision(policy, outcome string)
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(string, time.Duration, bool) {}
func (noopMetrics) RecordRequestError(string)                 {}
func (noopMetrics) RecordToolCall(string)                     {}
func (noopMetrics) RecordPolicyDecision(string, string)       {}

// Config wires the dispatcher's collaborators.
type Config struct {
	// Classifier defaults to the keyword oracle over Vocabulary.
	Classifier routing.IntentClassifier
	Catalog    *tools.Catalog
	Orders     *tools.OrderBook
	Policy     *tools.CancelPolicy
	// Vocabulary defaults to vocabulary.Default().
	Vocabulary *vocabulary.Vocabulary
	// Now is the clock handed to the cancellation policy. Defaults to time.Now.
	Now     func() time.Time
	Metrics MetricsRecorder
}

// Dispatcher routes an utterance to exactly one flow and assembles the trace.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	classifier routing.IntentClassifier
	catalog    *tools.Catalog
	orders     *tools.OrderBook
	policy     *tools.CancelPolicy
	vocab      vocabulary.Vocabulary
	now        func() time.Time
	metrics    MetricsRecorder
}

// NewDispatcher validates cfg and fills in defaults.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if cfg.Orders == nil {
		return nil, errors.New("order book is required")
	}
	if cfg.Policy == nil {
		return nil, errors.New("cancel policy is required")
	}

	d := &Dispatcher{
		classifier: cfg.Classifier,
		catalog:    cfg.Catalog,
		orders:     cfg.Orders,
		policy:     cfg.Policy,
		vocab:      vocabulary.Default(),
		now:        cfg.Now,
		metrics:    cfg.Metrics,
	}
	if cfg.Vocabulary != nil {
		d.vocab = *cfg.Vocabulary
	}
	if d.classifier == nil {
		d.classifier = routing.NewRuleMatcher(d.vocab)
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.metrics == nil {
		d.metrics = noopMetrics{}
	}
	return d, nil
}

// Reply is the result of handling one utterance.
type Reply struct {
	RequestID string
	Intent    routing.Intent
	// Output is the traced text: trace block, blank line, message.
	Output string
	// Message is the customer-facing part of Output.
	Message string
	Trace   TraceRecord
	Latency time.Duration
}

// Handle runs text through classify -> flow -> trace.
func (d *Dispatcher) Handle(ctx context.Context, text string) (*Reply, error) {
	start := time.Now()
	requestID := shortuuid.New()
	ctx = logging.With(ctx, "request_id", requestID)

	state := NewState(text)
	record, err := d.Run(ctx, state)
	latency := time.Since(start)
	if err != nil {
		d.metrics.RecordRequest(string(state.Intent()), latency, false)
		return nil, err
	}
	d.metrics.RecordRequest(string(state.Intent()), latency, true)

	logging.FromContext(ctx).Debug("request handled",
		"input", strutil.Truncate(filter.Redact(text), 50),
		"intent", state.Intent(),
		"tools", len(record.ToolsCalled),
		"latency_ms", latency.Milliseconds())

	return &Reply{
		RequestID: requestID,
		Intent:    state.Intent(),
		Output:    state.FinalMessage(),
		Message:   record.FinalMessage,
		Trace:     record,
		Latency:   latency,
	}, nil
}

// Run drives a fresh state through one flow and the trace step, leaving the
// traced output in state.FinalMessage.
func (d *Dispatcher) Run(ctx context.Context, state *State) (TraceRecord, error) {
	intent := d.classify(ctx, state.Input())
	if err := state.beginFlow(intent); err != nil {
		return TraceRecord{}, err
	}

	var err error
	switch intent {
	case routing.IntentProductAssist:
		err = d.productAssistFlow(ctx, state)
	case routing.IntentOrderHelp:
		err = d.orderHelpFlow(ctx, state)
	default:
		err = d.guardrailFlow(ctx, state)
	}
	if err != nil {
		d.metrics.RecordRequestError(string(intent))
		return TraceRecord{}, fmt.Errorf("%s flow: %w", intent, err)
	}

	record, err := finalize(state)
	if err != nil {
		d.metrics.RecordRequestError("trace")
		return TraceRecord{}, err
	}
	return record, nil
}

// classify never fails: classifier errors and unknown intents fall back to the guardrail.
func (d *Dispatcher) classify(ctx context.Context, input string) routing.Intent {
	intent, confidence, err := d.classifier.ClassifyIntent(ctx, input)
	if err != nil {
		logging.FromContext(ctx).Warn("intent classification failed, using guardrail",
			"input", strutil.Truncate(filter.Redact(input), 50),
			"error", err)
		return routing.IntentOther
	}
	if !intent.Valid() {
		logging.FromContext(ctx).Warn("classifier returned unknown intent, using guardrail",
			slog.String("intent", string(intent)))
		return routing.IntentOther
	}
	logging.FromContext(ctx).Debug("intent classified",
		"intent", intent,
		"confidence", confidence)
	return intent
}
