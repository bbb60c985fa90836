package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseURLTool(t *testing.T) {
	tool := NewParseURLTool()
	ctx := context.Background()

	result, err := tool.Execute(ctx, json.RawMessage(`{"url": "https://example.com/path?q=go#frag"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got %v", result.Error)
	}

	var parts map[string]string
	if err := json.Unmarshal([]byte(result.Output), &parts); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if parts["host"] != "example.com" || parts["path"] != "/path" || parts["query"] != "q=go" {
		t.Errorf("unexpected parts: %v", parts)
	}
}

func TestURLEncodeRoundTrip(t *testing.T) {
	tool := NewURLEncodeTool()
	ctx := context.Background()

	encoded, err := tool.Execute(ctx, json.RawMessage(`{"text": "top go agents"}`))
	if err != nil || !encoded.Success() {
		t.Fatalf("encode failed: %v %v", err, encoded.Error)
	}
	if encoded.Output != "top+go+agents" {
		t.Errorf("unexpected encoding: %s", encoded.Output)
	}

	args, _ := json.Marshal(map[string]interface{}{"text": encoded.Output, "decode": true})
	decoded, err := tool.Execute(ctx, args)
	if err != nil || !decoded.Success() {
		t.Fatalf("decode failed: %v %v", err, decoded.Error)
	}
	if decoded.Output != "top go agents" {
		t.Errorf("unexpected decoding: %s", decoded.Output)
	}
}

func TestRegexMatchTool(t *testing.T) {
	tool := NewRegexMatchTool()
	ctx := context.Background()

	result, err := tool.Execute(ctx, json.RawMessage(`{"pattern": "[a-z]+@example.com", "text": "mail alice@example.com or bob@example.com"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	lines := strings.Split(result.Output, "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 matches, got %v", lines)
	}
}

func TestRegexMatchInvalidPattern(t *testing.T) {
	tool := NewRegexMatchTool()

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"pattern": "[", "text": "x"}`))
	if err != nil {
		t.Fatalf("Execute returned hard error: %v", err)
	}
	if result.Success() {
		t.Error("expected failure result for invalid pattern")
	}
}

func TestBase64RoundTrip(t *testing.T) {
	tool := NewBase64Tool()
	ctx := context.Background()

	encoded, err := tool.Execute(ctx, json.RawMessage(`{"text": "rabbit"}`))
	if err != nil || !encoded.Success() {
		t.Fatalf("encode failed: %v %v", err, encoded.Error)
	}

	args, _ := json.Marshal(map[string]interface{}{"text": encoded.Output, "decode": true})
	decoded, err := tool.Execute(ctx, args)
	if err != nil || !decoded.Success() {
		t.Fatalf("decode failed: %v %v", err, decoded.Error)
	}
	if decoded.Output != "rabbit" {
		t.Errorf("round trip mismatch: %s", decoded.Output)
	}
}

func TestHashToolDeterministic(t *testing.T) {
	tool := NewHashTool()
	ctx := context.Background()

	first, _ := tool.Execute(ctx, json.RawMessage(`{"text": "rabbit"}`))
	second, _ := tool.Execute(ctx, json.RawMessage(`{"text": "rabbit"}`))
	if first.Output != second.Output {
		t.Error("expected deterministic hash")
	}
	if len(first.Output) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first.Output))
	}
}

func TestWriteAndReadFile(t *testing.T) {
	dir := t.TempDir()
	write := NewWriteFileTool(DefaultMaxFileSize)
	read := NewReadFileTool(DefaultMaxFileSize)
	ctx := context.Background()

	path := dir + "/notes.txt"
	args, _ := json.Marshal(map[string]interface{}{"path": path, "content": "visited example.com"})
	result, err := write.Execute(ctx, args)
	if err != nil || !result.Success() {
		t.Fatalf("write failed: %v %v", err, result.Error)
	}

	args, _ = json.Marshal(map[string]interface{}{"path": path})
	result, err = read.Execute(ctx, args)
	if err != nil || !result.Success() {
		t.Fatalf("read failed: %v %v", err, result.Error)
	}
	if result.Output != "visited example.com" {
		t.Errorf("unexpected content: %s", result.Output)
	}
}

func TestReadFileOutsideAllowedPaths(t *testing.T) {
	dir := t.TempDir()
	read := NewReadFileTool(DefaultMaxFileSize).WithAllowedPaths([]string{dir})

	result, err := read.Execute(context.Background(), json.RawMessage(`{"path": "/etc/hosts"}`))
	if err != nil {
		t.Fatalf("Execute returned hard error: %v", err)
	}
	if result.Success() {
		t.Error("expected failure for path outside allowlist")
	}
}

func TestWithUtilitiesRegistersAll(t *testing.T) {
	registry := NewRegistry()
	if err := WithUtilities(registry); err != nil {
		t.Fatalf("WithUtilities failed: %v", err)
	}

	for _, name := range []string{"current_time", "parse_url", "url_encode", "regex_match", "base64", "sha256", "http_fetch", "read_file", "write_file"} {
		if !registry.Has(name) {
			t.Errorf("expected %s to be registered", name)
		}
	}
}
