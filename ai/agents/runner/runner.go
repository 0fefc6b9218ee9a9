// Package runner handles many utterances concurrently, each in its own request.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	agentpkg "github.com/hrygo/shopdesk/ai/agents"
	"github.com/hrygo/shopdesk/ai/filter"
	"github.com/hrygo/shopdesk/ai/internal/strutil"
)

// Handler handles a single utterance. *agent.Dispatcher implements it.
type Handler interface {
	Handle(ctx context.Context, text string) (*agentpkg.Reply, error)
}

// InFlightRecorder tracks how many utterances are being handled.
type InFlightRecorder interface {
	AddInFlight(delta int)
}

// Config configures a Batch.
type Config struct {
	// Workers bounds concurrency (default: 1).
	Workers int
	// RPS caps the rate at which utterances start; 0 means unlimited.
	RPS float64
	// InFlight is optional.
	InFlight InFlightRecorder
}

// Result is the outcome for one input line. Exactly one of Reply and Err is set.
type Result struct {
	Index int
	Input string
	Reply *agentpkg.Reply
	Err   error
}

// Report is the outcome of a run, with Results in input order.
type Report struct {
	RunID   string
	Results []Result
	Stats   *BatchStats
}

// Batch runs a Handler over a list of inputs.
type Batch struct {
	handler  Handler
	workers  int
	limiter  *rate.Limiter
	inFlight InFlightRecorder
}

// New creates a batch runner.
func New(handler Handler, cfg Config) *Batch {
	b := &Batch{
		handler:  handler,
		workers:  max(cfg.Workers, 1),
		inFlight: cfg.InFlight,
	}
	if cfg.RPS > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}
	return b
}

// Run handles every input. A failing utterance is reported in its Result and
// does not stop the others; only context cancellation aborts the run, in which
// case the partial report is returned with the context error.
func (b *Batch) Run(ctx context.Context, inputs []string) (*Report, error) {
	runID := uuid.NewString()
	stats := NewBatchStats(runID)
	results := make([]Result, len(inputs))
	for i, input := range inputs {
		results[i] = Result{Index: i, Input: input}
	}

	logger := slog.Default().With("run_id", runID)
	logger.Debug("batch started", "inputs", len(inputs), "workers", b.workers)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, input := range inputs {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if b.limiter != nil {
				if err := b.limiter.Wait(gCtx); err != nil {
					return err
				}
			}
			results[i] = b.handleOne(gCtx, i, input, stats)
			return nil
		})
	}

	err := g.Wait()
	stats.Finalize()
	report := &Report{RunID: runID, Results: results, Stats: stats}

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		for i := range results {
			if results[i].Reply == nil && results[i].Err == nil {
				results[i].Err = err
			}
		}
		return report, fmt.Errorf("batch %s interrupted: %w", runID, err)
	}

	logger.Debug("batch finished", "duration_ms", stats.TotalDurationMs)
	return report, nil
}

func (b *Batch) handleOne(ctx context.Context, i int, input string, stats *BatchStats) Result {
	if b.inFlight != nil {
		b.inFlight.AddInFlight(1)
		defer b.inFlight.AddInFlight(-1)
	}

	start := time.Now()
	reply, err := b.handler.Handle(ctx, input)
	if err != nil {
		stats.RecordFailure()
		slog.Warn("utterance failed",
			"index", i,
			"input", strutil.Truncate(filter.Redact(input), 50),
			"error", err,
			"elapsed", time.Since(start))
		return Result{Index: i, Input: input, Err: err}
	}
	stats.RecordReply(reply)
	return Result{Index: i, Input: input, Reply: reply}
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins every per-utterance error, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("line %d: %w", res.Index+1, res.Err))
	}
	return errors.Join(errs...)
}
