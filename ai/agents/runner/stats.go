package runner

import (
	"sort"
	"sync"
	"time"

	agentpkg "github.com/hrygo/shopdesk/ai/agents"
)

// BatchStats collects run-level statistics for a batch.
type BatchStats struct {
	mu              sync.Mutex
	RunID           string
	StartTime       time.Time
	TotalDurationMs int64
	Requests        int32
	Failures        int32
	ToolCallCount   int32
	Intents         map[string]int32
	ToolsUsed       map[string]bool
	PolicyOutcomes  map[string]int32
	latencyTotal    time.Duration
}

// NewBatchStats starts statistics for run runID.
func NewBatchStats(runID string) *BatchStats {
	return &BatchStats{
		RunID:          runID,
		StartTime:      time.Now(),
		Intents:        make(map[string]int32),
		ToolsUsed:      make(map[string]bool),
		PolicyOutcomes: make(map[string]int32),
	}
}

// RecordReply records a successfully handled utterance.
func (s *BatchStats) RecordReply(reply *agentpkg.Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests++
	s.Intents[string(reply.Intent)]++
	s.latencyTotal += reply.Latency
	for _, tool := range reply.Trace.ToolsCalled {
		s.ToolCallCount++
		s.ToolsUsed[tool] = true
	}
	if p := reply.Trace.PolicyDecision; p != nil {
		switch {
		case p.Refuse:
			s.PolicyOutcomes["refused"]++
		case p.CancelAllowed != nil && *p.CancelAllowed:
			s.PolicyOutcomes["cancel_allowed"]++
		case p.CancelAllowed != nil:
			s.PolicyOutcomes["cancel_blocked"]++
		}
	}
}

// RecordFailure records an utterance that returned an error.
func (s *BatchStats) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests++
	s.Failures++
}

// ToSummary converts stats to a summary map for JSON serialization.
func (s *BatchStats) ToSummary() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	tools := make([]string, 0, len(s.ToolsUsed))
	for tool := range s.ToolsUsed {
		tools = append(tools, tool)
	}
	sort.Strings(tools)

	intents := make(map[string]int32, len(s.Intents))
	for k, v := range s.Intents {
		intents[k] = v
	}
	outcomes := make(map[string]int32, len(s.PolicyOutcomes))
	for k, v := range s.PolicyOutcomes {
		outcomes[k] = v
	}

	var avgLatencyUs int64
	if handled := s.Requests - s.Failures; handled > 0 {
		avgLatencyUs = (s.latencyTotal / time.Duration(handled)).Microseconds()
	}

	status := "success"
	if s.Failures > 0 {
		status = "partial"
	}

	return map[string]any{
		"run_id":            s.RunID,
		"total_duration_ms": s.TotalDurationMs,
		"requests":          s.Requests,
		"failures":          s.Failures,
		"intents":           intents,
		"tool_call_count":   s.ToolCallCount,
		"tools_used":        tools,
		"policy_outcomes":   outcomes,
		"avg_latency_us":    avgLatencyUs,
		"status":            status,
	}
}

// Finalize stamps the total duration.
func (s *BatchStats) Finalize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalDurationMs = time.Since(s.StartTime).Milliseconds()
}
