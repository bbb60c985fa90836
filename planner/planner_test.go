package planner

import (
	"errors"
	"strings"
	"testing"
)

func TestPlanToolCall(t *testing.T) {
	action, err := Plan(`{"thought": "open the page", "tool": "navigate", "input": {"url": "https://example.com"}}`)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if action.Kind != ActionToolCall {
		t.Fatalf("expected tool call, got %v", action.Kind)
	}
	if action.Tool != "navigate" {
		t.Errorf("unexpected tool: %s", action.Tool)
	}
	if !strings.Contains(string(action.Input), "example.com") {
		t.Errorf("unexpected input: %s", action.Input)
	}
	if action.Thought != "open the page" {
		t.Errorf("unexpected thought: %s", action.Thought)
	}
}

func TestPlanNestedActionForm(t *testing.T) {
	action, err := Plan(`{"thought": "click it", "action": {"tool": "click", "input": {"selector": "#go"}}, "is_final": false}`)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if action.Kind != ActionToolCall || action.Tool != "click" {
		t.Errorf("unexpected action: %+v", action)
	}
}

func TestPlanFinalAnswer(t *testing.T) {
	action, err := Plan(`{"thought": "done", "final_answer": "Example Domain"}`)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if action.Kind != ActionFinalAnswer {
		t.Fatalf("expected final answer, got %v", action.Kind)
	}
	if action.Answer != "Example Domain" {
		t.Errorf("unexpected answer: %s", action.Answer)
	}
}

func TestPlanFinalAnswerAsObject(t *testing.T) {
	action, err := Plan(`{"thought": "done", "final_answer": {"title": "Example Domain", "items": 3}}`)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if action.Kind != ActionFinalAnswer {
		t.Fatalf("expected final answer, got %v", action.Kind)
	}
	if !strings.Contains(action.Answer, `"title": "Example Domain"`) {
		t.Errorf("expected pretty-printed object, got %q", action.Answer)
	}
}

func TestPlanIsFinalWithoutAnswerUsesThought(t *testing.T) {
	action, err := Plan(`{"thought": "the page title is Example Domain", "is_final": true}`)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if action.Kind != ActionFinalAnswer {
		t.Fatalf("expected final answer, got %v", action.Kind)
	}
	if action.Answer != "the page title is Example Domain" {
		t.Errorf("unexpected answer: %s", action.Answer)
	}
}

func TestPlanFencedPayload(t *testing.T) {
	raw := "Here is my decision:\n```json\n{\"thought\": \"go\", \"tool\": \"navigate\", \"input\": {\"url\": \"https://example.com\"}}\n```\nLet me know."
	action, err := Plan(raw)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if action.Tool != "navigate" {
		t.Errorf("unexpected tool: %s", action.Tool)
	}
}

func TestPlanMissingInputDefaultsToEmpty(t *testing.T) {
	action, err := Plan(`{"thought": "check", "tool": "current_url"}`)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if string(action.Input) != "{}" {
		t.Errorf("expected empty object input, got %s", action.Input)
	}
}

func TestPlanNeitherShape(t *testing.T) {
	_, err := Plan(`{"thought": "hmm, not sure what to do"}`)
	if !errors.Is(err, ErrUnparsableDecision) {
		t.Fatalf("expected ErrUnparsableDecision, got %v", err)
	}
}

func TestPlanNoJSON(t *testing.T) {
	_, err := Plan("I think we should probably navigate somewhere.")
	if !errors.Is(err, ErrUnparsableDecision) {
		t.Fatalf("expected ErrUnparsableDecision, got %v", err)
	}
}
