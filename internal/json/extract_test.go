package json

import "testing"

func TestExtractPureJSON(t *testing.T) {
	raw, err := Extract(`{"thought": "done", "is_final": true}`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if raw != `{"thought": "done", "is_final": true}` {
		t.Errorf("unexpected extraction: %s", raw)
	}
}

func TestExtractMarkdownFenced(t *testing.T) {
	response := "```json\n{\"tool\": \"navigate\"}\n```"
	raw, err := Extract(response)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if raw != `{"tool": "navigate"}` {
		t.Errorf("unexpected extraction: %s", raw)
	}
}

func TestExtractEmbeddedInProse(t *testing.T) {
	response := `Sure, here is my decision: {"is_final": false} hope that helps`
	raw, err := Extract(response)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if raw != `{"is_final": false}` {
		t.Errorf("unexpected extraction: %s", raw)
	}
}

func TestExtractNoJSON(t *testing.T) {
	if _, err := Extract("I could not decide on an action."); err == nil {
		t.Fatal("expected error for response without JSON")
	}
}

func TestExtractUnbalancedBraces(t *testing.T) {
	if _, err := Extract(`{"tool": "navigate"`); err == nil {
		t.Fatal("expected error for unbalanced JSON")
	}
}

func TestUnmarshal(t *testing.T) {
	var decision struct {
		Tool string `json:"tool"`
	}
	err := Unmarshal("some text ```json\n{\"tool\": \"click\"}\n``` more text", &decision)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decision.Tool != "click" {
		t.Errorf("expected 'click', got %q", decision.Tool)
	}
}
