// Package agent runs one customer utterance through classification, a single
// intent flow and trace assembly.
package agent

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/hrygo/shopdesk/ai/routing"
)

var (
	// ErrMessageStage is returned when the final message is set out of order:
	// twice by a flow, or traced before a flow produced it.
	ErrMessageStage = errors.New("final message set out of order")
	// ErrFlowAlreadyRan is returned when a second flow is started on a state.
	ErrFlowAlreadyRan = errors.New("flow already ran for this state")
)

type messageStage int

const (
	messageUnset messageStage = iota
	messageIntent
	messageTraced
)

// Evidence is one fact a flow relied on. The concrete types are
// ProductEvidence, OrderEvidence and OrderMissEvidence.
type Evidence interface {
	cloneEvidence() Evidence
}

// ProductEvidence is a product shown to the customer along with the advice given.
type ProductEvidence struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Price   int      `json:"price"`
	Sizes   []string `json:"sizes"`
	Tags    []string `json:"tags"`
	Color   string   `json:"color"`
	SizeRec string   `json:"size_rec"`
	ETA     string   `json:"eta"`
}

func (e ProductEvidence) cloneEvidence() Evidence {
	e.Sizes = slices.Clone(e.Sizes)
	e.Tags = slices.Clone(e.Tags)
	return e
}

// OrderEvidence is the order a cancellation was evaluated against.
type OrderEvidence struct {
	OrderID   string            `json:"order_id"`
	Email     string            `json:"email"`
	CreatedAt string            `json:"created_at"`
	Items     []json.RawMessage `json:"items"`
}

func (e OrderEvidence) cloneEvidence() Evidence {
	items := make([]json.RawMessage, len(e.Items))
	for i, item := range e.Items {
		items[i] = slices.Clone(item)
	}
	e.Items = items
	return e
}

// OrderMissEvidence records what the customer supplied when no order matched.
type OrderMissEvidence struct {
	OrderID *string `json:"order_id"`
	Email   *string `json:"email"`
}

func (e OrderMissEvidence) cloneEvidence() Evidence {
	if e.OrderID != nil {
		id := *e.OrderID
		e.OrderID = &id
	}
	if e.Email != nil {
		email := *e.Email
		e.Email = &email
	}
	return e
}

// PolicyDecision is the outcome of a business rule: the cancellation window
// sets CancelAllowed, the guardrail sets Refuse.
type PolicyDecision struct {
	CancelAllowed *bool  `json:"cancel_allowed,omitempty"`
	Refuse        bool   `json:"refuse,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

func (p PolicyDecision) clone() *PolicyDecision {
	if p.CancelAllowed != nil {
		v := *p.CancelAllowed
		p.CancelAllowed = &v
	}
	return &p
}

// State is the per-request conversation record. It is owned by one goroutine.
type State struct {
	input    string
	intent   routing.Intent
	toolLog  []string
	evidence []Evidence
	policy   *PolicyDecision
	message  string
	stage    messageStage
	flowRan  bool
}

// NewState creates the state for one utterance.
func NewState(input string) *State {
	return &State{input: input}
}

// Input returns the utterance this state was created for.
func (s *State) Input() string {
	return s.input
}

// Intent returns the classified intent, or "" before classification.
func (s *State) Intent() routing.Intent {
	return s.intent
}

// ToolLog returns the names of the tools called so far, in call order.
func (s *State) ToolLog() []string {
	return slices.Clone(s.toolLog)
}

// Evidence returns copies of the recorded evidence.
func (s *State) Evidence() []Evidence {
	out := make([]Evidence, len(s.evidence))
	for i, e := range s.evidence {
		out[i] = e.cloneEvidence()
	}
	return out
}

// PolicyDecision returns a copy of the decision, or nil if no policy ran.
func (s *State) PolicyDecision() *PolicyDecision {
	if s.policy == nil {
		return nil
	}
	return s.policy.clone()
}

// FinalMessage returns the current message: empty, then the flow's message,
// then the traced output.
func (s *State) FinalMessage() string {
	return s.message
}

// beginFlow marks the state as routed to intent.
func (s *State) beginFlow(intent routing.Intent) error {
	if s.flowRan {
		return ErrFlowAlreadyRan
	}
	s.flowRan = true
	s.intent = intent
	return nil
}

func (s *State) logTool(name string) {
	s.toolLog = append(s.toolLog, name)
}

func (s *State) addEvidence(e Evidence) {
	s.evidence = append(s.evidence, e.cloneEvidence())
}

func (s *State) setPolicy(p PolicyDecision) {
	s.policy = p.clone()
}

func (s *State) setMessage(msg string) error {
	if s.stage != messageUnset {
		return ErrMessageStage
	}
	s.message = msg
	s.stage = messageIntent
	return nil
}

func (s *State) setTracedMessage(msg string) error {
	if s.stage != messageIntent {
		return ErrMessageStage
	}
	s.message = msg
	s.stage = messageTraced
	return nil
}
