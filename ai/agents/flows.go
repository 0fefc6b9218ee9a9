package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hrygo/shopdesk/ai/agents/tools"
	"github.com/hrygo/shopdesk/ai/observability/logging"
	"github.com/hrygo/shopdesk/ai/slots"
)

// Policy names used in metrics.
const (
	policyCancel    = "cancel"
	policyGuardrail = "guardrail"
)

// productAssistFlow searches the catalog and attaches size and delivery advice
// to the cheapest matches. All three tools run even when nothing matches.
func (d *Dispatcher) productAssistFlow(ctx context.Context, state *State) error {
	s := slots.ExtractProduct(state.Input(), d.vocab)

	results := d.catalog.Search(state.Input(), s.PriceCeiling, s.Tags)
	sizeRec := tools.RecommendSize(s.SizeHint)
	eta := tools.EstimateDelivery(s.PostalCode)
	d.callTools(state, tools.ToolProductSearch, tools.ToolSizeRecommender, tools.ToolETA)

	logging.FromContext(ctx).Debug("product search",
		"price_ceiling", deref(s.PriceCeiling),
		"tags", s.Tags,
		"size_hint", s.SizeHint,
		"results", len(results))

	options := make([]ProductEvidence, 0, maxProductOptions)
	for _, p := range results[:min(maxProductOptions, len(results))] {
		e := ProductEvidence{
			ID:      p.ID,
			Title:   p.Title,
			Price:   p.Price,
			Sizes:   p.Sizes,
			Tags:    p.Tags,
			Color:   p.Color,
			SizeRec: sizeRec,
			ETA:     eta,
		}
		options = append(options, e)
		state.addEvidence(e)
	}
	return state.setMessage(productMessage(options))
}

// orderHelpFlow looks the order up by id and email and, if found, applies the
// cancellation policy.
func (d *Dispatcher) orderHelpFlow(ctx context.Context, state *State) error {
	s := slots.ExtractOrder(state.Input())

	d.callTools(state, tools.ToolOrderLookup)
	order, found := d.orders.Lookup(s.OrderID, s.Email)
	if !found {
		logging.FromContext(ctx).Debug("order not found", "order_id", deref(s.OrderID), "email", deref(s.Email))
		state.addEvidence(OrderMissEvidence{OrderID: s.OrderID, Email: s.Email})
		return state.setMessage(msgOrderNotFound)
	}

	state.addEvidence(OrderEvidence{
		OrderID:   order.OrderID,
		Email:     order.Email,
		CreatedAt: order.CreatedAt,
		Items:     order.Items,
	})

	d.callTools(state, tools.ToolOrderCancel)
	decision, err := d.policy.Evaluate(order.OrderID, order.CreatedAt, d.now())
	if err != nil {
		return fmt.Errorf("cancel policy: %w", err)
	}

	allowed := decision.Allowed
	state.setPolicy(PolicyDecision{CancelAllowed: &allowed, Reason: decision.Reason})
	logging.FromContext(ctx).Debug("cancel policy",
		"order_id", order.OrderID,
		"allowed", allowed,
		"elapsed", decision.Elapsed)

	if allowed {
		d.metrics.RecordPolicyDecision(policyCancel, "allowed")
		return state.setMessage(cancelSuccessMessage(order.OrderID, order.Email))
	}
	d.metrics.RecordPolicyDecision(policyCancel, "blocked")
	return state.setMessage(cancelBlockedMessage(order.OrderID, int(d.policy.Window()/time.Minute)))
}

// guardrailFlow refuses anything outside product and order help. No tools run.
func (d *Dispatcher) guardrailFlow(_ context.Context, state *State) error {
	state.setPolicy(PolicyDecision{Refuse: true, Reason: GuardrailReason})
	d.metrics.RecordPolicyDecision(policyGuardrail, "refused")
	return state.setMessage(msgGuardrailRefuse)
}

func (d *Dispatcher) callTools(state *State, names ...string) {
	for _, name := range names {
		state.logTool(name)
		d.metrics.RecordToolCall(name)
	}
}

// deref makes optional slots log as their value or null rather than an address.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
