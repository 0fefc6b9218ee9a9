package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hrygo/shopdesk/ai/routing"
)

// Trace block sentinels.
const (
	TraceStart = "TRACE_START_JSON"
	TraceEnd   = "TRACE_END_JSON"
)

// ErrNoTrace is returned by ParseTrace when the output has no trace block.
var ErrNoTrace = errors.New("output has no trace block")

// TraceRecord is the machine-readable account of one request.
type TraceRecord struct {
	Intent         routing.Intent  `json:"intent"`
	ToolsCalled    []string        `json:"tools_called"`
	Evidence       []Evidence      `json:"evidence"`
	PolicyDecision *PolicyDecision `json:"policy_decision"`
	FinalMessage   string          `json:"final_message"`
}

// UnmarshalJSON restores evidence entries to their concrete types by shape:
// product evidence has an id, order evidence a created_at.
func (r *TraceRecord) UnmarshalJSON(data []byte) error {
	type plain TraceRecord
	var raw struct {
		plain
		Evidence []json.RawMessage `json:"evidence"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = TraceRecord(raw.plain)

	r.Evidence = make([]Evidence, 0, len(raw.Evidence))
	for i, item := range raw.Evidence {
		e, err := decodeEvidence(item)
		if err != nil {
			return fmt.Errorf("evidence #%d: %w", i, err)
		}
		r.Evidence = append(r.Evidence, e)
	}
	return nil
}

func decodeEvidence(data json.RawMessage) (Evidence, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, err
	}

	switch {
	case keys["id"] != nil:
		var e ProductEvidence
		err := json.Unmarshal(data, &e)
		return e, err
	case keys["created_at"] != nil:
		var e OrderEvidence
		err := json.Unmarshal(data, &e)
		return e, err
	default:
		var e OrderMissEvidence
		err := json.Unmarshal(data, &e)
		return e, err
	}
}

// snapshot copies the state into a record. Empty lists stay non-nil so they
// encode as [] rather than null.
func snapshot(state *State) TraceRecord {
	record := TraceRecord{
		Intent:         state.Intent(),
		ToolsCalled:    state.ToolLog(),
		Evidence:       state.Evidence(),
		PolicyDecision: state.PolicyDecision(),
		FinalMessage:   state.FinalMessage(),
	}
	if record.ToolsCalled == nil {
		record.ToolsCalled = []string{}
	}
	return record
}

// EncodeTrace renders the record as 2-space indented JSON without HTML escaping.
func EncodeTrace(record TraceRecord) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return "", fmt.Errorf("encode trace: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// FormatOutput joins a trace block and a message.
func FormatOutput(traceJSON, message string) string {
	return TraceStart + "\n" + traceJSON + "\n" + TraceEnd + "\n\n" + message
}

// finalize wraps the flow's message in the trace block. It runs after every flow.
func finalize(state *State) (TraceRecord, error) {
	if state.stage != messageIntent {
		return TraceRecord{}, ErrMessageStage
	}
	record := snapshot(state)
	traceJSON, err := EncodeTrace(record)
	if err != nil {
		return TraceRecord{}, err
	}
	if err := state.setTracedMessage(FormatOutput(traceJSON, record.FinalMessage)); err != nil {
		return TraceRecord{}, err
	}
	return record, nil
}

// ParseTrace splits traced output back into its record and customer message.
func ParseTrace(output string) (TraceRecord, string, error) {
	if !strings.HasPrefix(output, TraceStart+"\n") {
		return TraceRecord{}, "", ErrNoTrace
	}
	body := strings.TrimPrefix(output, TraceStart+"\n")

	sep := "\n" + TraceEnd + "\n\n"
	traceJSON, message, ok := strings.Cut(body, sep)
	if !ok {
		return TraceRecord{}, "", ErrNoTrace
	}

	var record TraceRecord
	if err := json.Unmarshal([]byte(traceJSON), &record); err != nil {
		return TraceRecord{}, "", fmt.Errorf("decode trace: %w", err)
	}
	return record, message, nil
}
