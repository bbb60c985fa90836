// Utility tools: time, URL handling, regex, encodings.
//
// These cover the small deterministic capabilities the agent reaches for
// between browser steps.

package tools

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// CurrentTimeTool reports the current time.
type CurrentTimeTool struct{}

// NewCurrentTimeTool creates a new current-time tool.
func NewCurrentTimeTool() *CurrentTimeTool {
	return &CurrentTimeTool{}
}

// Metadata returns the tool metadata.
func (t *CurrentTimeTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "current_time",
		Description: "Get the current date and time",
		Parameters: []ToolParameter{
			{Name: "format", Type: ParamString, Description: "Go time layout (default 2006-01-02 15:04:05)", Required: false},
		},
	}
}

// Execute formats the current time.
func (t *CurrentTimeTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a struct {
		Format string `json:"format"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
	}
	layout := a.Format
	if layout == "" {
		layout = "2006-01-02 15:04:05"
	}
	return SuccessResult(time.Now().Format(layout)), nil
}

// ParseURLTool decomposes a URL into its parts.
type ParseURLTool struct{}

// NewParseURLTool creates a new URL parsing tool.
func NewParseURLTool() *ParseURLTool {
	return &ParseURLTool{}
}

// Metadata returns the tool metadata.
func (t *ParseURLTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "parse_url",
		Description: "Parse a URL into scheme, host, path, query and fragment",
		Parameters: []ToolParameter{
			{Name: "url", Type: ParamString, Description: "The URL to parse", Required: true},
		},
	}
}

// Execute parses the URL.
func (t *ParseURLTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	u, err := url.Parse(a.URL)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to parse URL: %w", err)), nil
	}
	parts := map[string]string{
		"scheme":   u.Scheme,
		"host":     u.Host,
		"path":     u.Path,
		"query":    u.RawQuery,
		"fragment": u.Fragment,
	}
	out, err := json.Marshal(parts)
	if err != nil {
		return FailureResult(err), nil
	}
	return SuccessResult(string(out)), nil
}

// URLEncodeTool percent-encodes or decodes text for use in URLs.
type URLEncodeTool struct{}

// NewURLEncodeTool creates a new URL encoding tool.
func NewURLEncodeTool() *URLEncodeTool {
	return &URLEncodeTool{}
}

// Metadata returns the tool metadata.
func (t *URLEncodeTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "url_encode",
		Description: "Percent-encode text for a URL query, or decode it back",
		Parameters: []ToolParameter{
			{Name: "text", Type: ParamString, Description: "Text to encode or decode", Required: true},
			{Name: "decode", Type: ParamBoolean, Description: "Decode instead of encode", Required: false},
		},
	}
}

// Execute encodes or decodes the text.
func (t *URLEncodeTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a struct {
		Text   string `json:"text"`
		Decode bool   `json:"decode"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.Decode {
		decoded, err := url.QueryUnescape(a.Text)
		if err != nil {
			return FailureResult(fmt.Errorf("failed to decode: %w", err)), nil
		}
		return SuccessResult(decoded), nil
	}
	return SuccessResult(url.QueryEscape(a.Text)), nil
}

// RegexMatchTool finds all matches of a pattern in text.
type RegexMatchTool struct{}

// NewRegexMatchTool creates a new regex matching tool.
func NewRegexMatchTool() *RegexMatchTool {
	return &RegexMatchTool{}
}

// Metadata returns the tool metadata.
func (t *RegexMatchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "regex_match",
		Description: "Find all matches of a regular expression in text",
		Parameters: []ToolParameter{
			{Name: "pattern", Type: ParamString, Description: "Go regular expression", Required: true},
			{Name: "text", Type: ParamString, Description: "Text to search", Required: true},
		},
	}
}

// Execute runs the pattern over the text.
func (t *RegexMatchTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a struct {
		Pattern string `json:"pattern"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	re, err := regexp.Compile(a.Pattern)
	if err != nil {
		return FailureResult(fmt.Errorf("invalid pattern: %w", err)), nil
	}
	matches := re.FindAllString(a.Text, -1)
	if len(matches) == 0 {
		return SuccessResult("no matches"), nil
	}
	return SuccessResult(strings.Join(matches, "\n")), nil
}

// Base64Tool encodes or decodes base64 data.
type Base64Tool struct{}

// NewBase64Tool creates a new base64 tool.
func NewBase64Tool() *Base64Tool {
	return &Base64Tool{}
}

// Metadata returns the tool metadata.
func (t *Base64Tool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "base64",
		Description: "Base64 encode or decode text",
		Parameters: []ToolParameter{
			{Name: "text", Type: ParamString, Description: "Text to encode or decode", Required: true},
			{Name: "decode", Type: ParamBoolean, Description: "Decode instead of encode", Required: false},
		},
	}
}

// Execute encodes or decodes the text.
func (t *Base64Tool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a struct {
		Text   string `json:"text"`
		Decode bool   `json:"decode"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.Decode {
		decoded, err := base64.StdEncoding.DecodeString(a.Text)
		if err != nil {
			return FailureResult(fmt.Errorf("failed to decode: %w", err)), nil
		}
		return SuccessResult(string(decoded)), nil
	}
	return SuccessResult(base64.StdEncoding.EncodeToString([]byte(a.Text))), nil
}

// HashTool computes a SHA-256 digest.
type HashTool struct{}

// NewHashTool creates a new hashing tool.
func NewHashTool() *HashTool {
	return &HashTool{}
}

// Metadata returns the tool metadata.
func (t *HashTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "sha256",
		Description: "Compute the SHA-256 hash of text",
		Parameters: []ToolParameter{
			{Name: "text", Type: ParamString, Description: "Text to hash", Required: true},
		},
	}
}

// Execute hashes the text.
func (t *HashTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	sum := sha256.Sum256([]byte(a.Text))
	return SuccessResult(hex.EncodeToString(sum[:])), nil
}
