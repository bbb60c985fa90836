package browser

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/rabbitlabs/rabbit/tools"
)

func TestWithBrowserToolsRegistersAll(t *testing.T) {
	registry := tools.NewRegistry()
	controller := NewController()

	if err := WithBrowserTools(registry, controller); err != nil {
		t.Fatalf("WithBrowserTools failed: %v", err)
	}

	expected := []string{
		"navigate", "extract_text", "click", "fill_form", "page_title",
		"current_url", "scroll", "wait_for_element", "screenshot", "execute_js",
	}
	for _, name := range expected {
		if !registry.Has(name) {
			t.Errorf("expected %s to be registered", name)
		}
	}
}

func TestBrowserToolSchemas(t *testing.T) {
	registry := tools.NewRegistry()
	if err := WithBrowserTools(registry, NewController()); err != nil {
		t.Fatalf("WithBrowserTools failed: %v", err)
	}

	// Required parameters are enforced by the registry.
	if err := registry.Validate("navigate", json.RawMessage(`{}`)); err == nil {
		t.Error("expected missing url to fail validation")
	}
	if err := registry.Validate("navigate", json.RawMessage(`{"url": "https://example.com"}`)); err != nil {
		t.Errorf("valid navigate arguments rejected: %v", err)
	}
	if err := registry.Validate("fill_form", json.RawMessage(`{"selector": "#q", "value": "go", "submit": "yes"}`)); err == nil {
		t.Error("expected wrong submit type to fail validation")
	}
	if err := registry.Validate("scroll", json.RawMessage(`{"pixels": 300}`)); err != nil {
		t.Errorf("valid scroll arguments rejected: %v", err)
	}
}

func TestToolsFailWhenSessionNotStarted(t *testing.T) {
	controller := NewController()
	tool := &NavigateTool{controller: controller}

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"url": "https://example.com"}`))
	if err != nil {
		t.Fatalf("Execute returned hard error: %v", err)
	}
	if result.Success() {
		t.Error("expected failure result before Start")
	}
}

// TestLiveBrowserSession exercises a real Chrome session. It runs only when
// BROWSER_TESTS=1 is set and Chrome is installed.
func TestLiveBrowserSession(t *testing.T) {
	if testing.Short() || os.Getenv("BROWSER_TESTS") != "1" {
		t.Skip("set BROWSER_TESTS=1 to run live browser tests")
	}

	controller := NewController().Headless(true)
	if err := controller.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer controller.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := controller.Navigate(ctx, "https://example.com"); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	title, err := controller.Title(ctx)
	if err != nil {
		t.Fatalf("Title failed: %v", err)
	}
	if title == "" {
		t.Error("expected non-empty title")
	}

	text, err := controller.ExtractText(ctx, "h1")
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text == "" {
		t.Error("expected h1 text")
	}
}
