package tools

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/cel-go/cel"
)

const (
	// DefaultCancelWindow is how long after placing an order it may still be canceled.
	DefaultCancelWindow = 60 * time.Minute
	// DefaultCancelRule allows cancellation strictly inside the window.
	DefaultCancelRule = "elapsed < window"
)

// Decision is the outcome of the cancellation policy.
type Decision struct {
	Allowed bool
	Reason  string
	Elapsed time.Duration
}

// PolicyConfig configures a CancelPolicy.
type PolicyConfig struct {
	// Window defaults to DefaultCancelWindow.
	Window time.Duration
	// Rule is a CEL expression over elapsed (duration), window (duration) and
	// order_id (string) that must evaluate to a bool. Defaults to DefaultCancelRule.
	Rule string
	// Now is the clock used when Evaluate gets a zero time. Defaults to time.Now.
	Now func() time.Time
}

// CancelPolicy decides whether an order may still be canceled.
// It is safe for concurrent use.
type CancelPolicy struct {
	window  time.Duration
	rule    string
	program cel.Program
	now     func() time.Time
}

// NewCancelPolicy compiles the policy rule.
func NewCancelPolicy(cfg PolicyConfig) (*CancelPolicy, error) {
	if cfg.Window <= 0 {
		cfg.Window = DefaultCancelWindow
	}
	if cfg.Rule == "" {
		cfg.Rule = DefaultCancelRule
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	env, err := cel.NewEnv(
		cel.Variable("elapsed", cel.DurationType),
		cel.Variable("window", cel.DurationType),
		cel.Variable("order_id", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(cfg.Rule)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid cancel rule %q: %w", cfg.Rule, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("cancel rule %q must return bool, got %s", cfg.Rule, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build cancel rule program: %w", err)
	}

	return &CancelPolicy{
		window:  cfg.Window,
		rule:    cfg.Rule,
		program: program,
		now:     cfg.Now,
	}, nil
}

// Name returns the name of the tool.
func (p *CancelPolicy) Name() string {
	return ToolOrderCancel
}

// Window returns the configured cancellation window.
func (p *CancelPolicy) Window() time.Duration {
	return p.window
}

// Evaluate applies the rule to an order placed at createdAt.
// A zero now uses the policy clock. An unparseable createdAt is an error
// wrapping ErrInvalidTimestamp.
func (p *CancelPolicy) Evaluate(orderID, createdAt string, now time.Time) (Decision, error) {
	created, err := ParseTimestamp(createdAt)
	if err != nil {
		return Decision{}, fmt.Errorf("order %s: %w", orderID, err)
	}
	if now.IsZero() {
		now = p.now()
	}
	elapsed := now.UTC().Sub(created)

	out, _, err := p.program.Eval(map[string]any{
		"elapsed":  elapsed,
		"window":   p.window,
		"order_id": orderID,
	})
	if err != nil {
		return Decision{}, fmt.Errorf("evaluate cancel rule for order %s: %w", orderID, err)
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return Decision{}, fmt.Errorf("cancel rule returned %T, want bool", out.Value())
	}

	minutes := int(p.window / time.Minute)
	decision := Decision{Allowed: allowed, Elapsed: elapsed}
	if allowed {
		decision.Reason = fmt.Sprintf("within %d min", minutes)
	} else {
		decision.Reason = fmt.Sprintf(">%d min", minutes)
	}

	slog.Debug("cancel policy evaluated",
		"order_id", orderID,
		"elapsed", elapsed,
		"allowed", allowed)
	return decision, nil
}
