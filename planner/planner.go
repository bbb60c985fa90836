// Package planner turns raw LLM decision payloads into typed actions.
//
// The planner is a pure parsing boundary: text goes in, a tagged action comes
// out, and nothing unparsed escapes into the loop's decision logic. Argument
// validation against tool schemas happens later, at dispatch.
package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonutil "github.com/rabbitlabs/rabbit/internal/json"
)

// ErrUnparsableDecision is returned when a payload cannot be mapped to either
// a tool call or a final answer. Retryable: model output is non-deterministic.
var ErrUnparsableDecision = errors.New("unparsable decision")

// ActionKind tags the two possible planned actions.
type ActionKind int

const (
	// ActionToolCall proposes invoking a registered tool.
	ActionToolCall ActionKind = iota
	// ActionFinalAnswer terminates the run with an answer.
	ActionFinalAnswer
)

// Action is a validated, typed next-action.
type Action struct {
	Kind    ActionKind
	Thought string
	// Tool and Input are set for ActionToolCall.
	Tool  string
	Input json.RawMessage
	// Answer is set for ActionFinalAnswer.
	Answer string
}

// decision mirrors the JSON shapes the model is prompted to produce. Both the
// flat form ({"tool": ..., "input": ...}) and the nested form
// ({"action": {"tool": ..., "input": ...}}) are accepted.
type decision struct {
	Thought     string          `json:"thought"`
	Tool        string          `json:"tool"`
	Input       json.RawMessage `json:"input"`
	Action      *nestedAction   `json:"action"`
	IsFinal     bool            `json:"is_final"`
	FinalAnswer *string         `json:"final_answer"`
}

type nestedAction struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}

// UnmarshalJSON accepts either a string or any JSON value for final_answer.
// Non-string answers are pretty-printed back into a string.
func (d *decision) UnmarshalJSON(data []byte) error {
	type decisionAlias decision
	aux := &struct {
		FinalAnswer json.RawMessage `json:"final_answer"`
		*decisionAlias
	}{
		decisionAlias: (*decisionAlias)(d),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if len(aux.FinalAnswer) > 0 && string(aux.FinalAnswer) != "null" {
		var s string
		if err := json.Unmarshal(aux.FinalAnswer, &s); err == nil {
			d.FinalAnswer = &s
			return nil
		}

		var v interface{}
		if err := json.Unmarshal(aux.FinalAnswer, &v); err == nil {
			if pretty, err := json.MarshalIndent(v, "", "  "); err == nil {
				s := string(pretty)
				d.FinalAnswer = &s
			}
		}
	}

	return nil
}

// Plan parses a raw decision payload into a typed Action. The payload may
// carry markdown fences or surrounding prose; the embedded JSON object is
// what counts.
func Plan(raw string) (Action, error) {
	extracted, err := jsonutil.Extract(raw)
	if err != nil {
		return Action{}, fmt.Errorf("%w: no JSON object in payload: %s", ErrUnparsableDecision, snippet(raw))
	}

	var d decision
	if err := json.Unmarshal([]byte(extracted), &d); err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrUnparsableDecision, err)
	}

	if d.FinalAnswer != nil || d.IsFinal {
		answer := d.Thought
		if d.FinalAnswer != nil {
			answer = *d.FinalAnswer
		}
		return Action{
			Kind:    ActionFinalAnswer,
			Thought: d.Thought,
			Answer:  answer,
		}, nil
	}

	tool := d.Tool
	input := d.Input
	if tool == "" && d.Action != nil {
		tool = d.Action.Tool
		input = d.Action.Input
	}
	if tool == "" {
		return Action{}, fmt.Errorf("%w: neither tool call nor final answer: %s", ErrUnparsableDecision, snippet(extracted))
	}
	if len(input) == 0 || string(input) == "null" {
		input = json.RawMessage("{}")
	}

	return Action{
		Kind:    ActionToolCall,
		Thought: d.Thought,
		Tool:    tool,
		Input:   input,
	}, nil
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
