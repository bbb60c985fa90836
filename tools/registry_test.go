package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// echoTool is a minimal tool for registry tests.
type echoTool struct {
	name   string
	params []ToolParameter
}

func (t *echoTool) Metadata() ToolMetadata {
	return ToolMetadata{Name: t.name, Description: "echoes input", Parameters: t.params}
}

func (t *echoTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	return SuccessResult(string(args)), nil
}

func TestRegisterDuplicateFails(t *testing.T) {
	registry := NewRegistry()

	first := &echoTool{name: "echo"}
	if err := registry.Register(first); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err := registry.Register(&echoTool{name: "echo"})
	if !errors.Is(err, ErrDuplicateTool) {
		t.Fatalf("expected ErrDuplicateTool, got %v", err)
	}

	// First registration stays active.
	got, err := registry.Lookup("echo")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != Tool(first) {
		t.Error("expected original registration to remain active")
	}
}

func TestLookupUnknownTool(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Lookup("missing")
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestValidateUnknownTool(t *testing.T) {
	registry := NewRegistry()

	err := registry.Validate("missing", json.RawMessage(`{}`))
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestValidateMissingRequired(t *testing.T) {
	registry := NewRegistry()
	tool := &echoTool{
		name: "navigate",
		params: []ToolParameter{
			{Name: "url", Type: ParamString, Required: true},
		},
	}
	if err := registry.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err := registry.Validate("navigate", json.RawMessage(`{}`))
	if !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestValidateTypeMismatch(t *testing.T) {
	registry := NewRegistry()
	tool := &echoTool{
		name: "scroll",
		params: []ToolParameter{
			{Name: "pixels", Type: ParamNumber, Required: true},
		},
	}
	if err := registry.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := registry.Validate("scroll", json.RawMessage(`{"pixels": "lots"}`)); !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
	if err := registry.Validate("scroll", json.RawMessage(`{"pixels": 500}`)); err != nil {
		t.Fatalf("expected valid arguments, got %v", err)
	}
}

func TestValidateDeclarationOrder(t *testing.T) {
	registry := NewRegistry()
	tool := &echoTool{
		name: "fill_form",
		params: []ToolParameter{
			{Name: "selector", Type: ParamString, Required: true},
			{Name: "value", Type: ParamString, Required: true},
		},
	}
	if err := registry.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Both violations present: the earlier-declared parameter is reported.
	err := registry.Validate("fill_form", json.RawMessage(`{"value": 42}`))
	if !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
	if want := `missing required parameter "selector"`; err != nil && !strings.Contains(err.Error(), want) {
		t.Errorf("expected first violation to name selector, got %v", err)
	}
}

func TestValidateOptionalAbsent(t *testing.T) {
	registry := NewRegistry()
	tool := &echoTool{
		name: "extract_text",
		params: []ToolParameter{
			{Name: "selector", Type: ParamString, Required: false},
		},
	}
	if err := registry.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := registry.Validate("extract_text", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("expected optional parameter to be skippable, got %v", err)
	}
	if err := registry.Validate("extract_text", nil); err != nil {
		t.Fatalf("expected nil arguments to validate, got %v", err)
	}
}

func TestNamesSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := registry.Register(&echoTool{name: name}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	names := registry.Names()
	if len(names) != 3 || names[0] != "alpha" || names[1] != "mid" || names[2] != "zeta" {
		t.Errorf("expected sorted names, got %v", names)
	}
}
