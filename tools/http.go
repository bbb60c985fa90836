// HTTP fetch tool.
//
// Information Hiding:
// - HTTP client configuration hidden
// - Response handling and domain allow-listing abstracted

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPTool fetches raw content from URLs outside the browser session.
type HTTPTool struct {
	client         *http.Client
	timeoutSecs    uint64
	allowedDomains []string
}

// NewHTTPTool creates a new HTTP tool with the given timeout in seconds.
func NewHTTPTool(timeoutSecs uint64) *HTTPTool {
	return &HTTPTool{
		client: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		timeoutSecs: timeoutSecs,
	}
}

// WithAllowedDomains restricts requests to the given domains (and subdomains).
func (t *HTTPTool) WithAllowedDomains(domains []string) *HTTPTool {
	t.allowedDomains = domains
	return t
}

// Metadata returns the tool metadata.
func (t *HTTPTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "http_fetch",
		Description: "Fetch the raw content of a URL with a plain HTTP GET (no browser involved)",
		Parameters: []ToolParameter{
			{Name: "url", Type: ParamString, Description: "The URL to fetch", Required: true},
		},
	}
}

type httpArgs struct {
	URL string `json:"url"`
}

// Execute performs the GET request.
func (t *HTTPTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a httpArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.URL == "" {
		return FailureResultf("url cannot be empty"), nil
	}
	if !t.isDomainAllowed(a.URL) {
		return FailureResultf("access to domain in %q is not allowed", a.URL), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to create request: %w", err)), nil
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return FailureResultf("request timed out after %d seconds", t.timeoutSecs), nil
		}
		return FailureResult(fmt.Errorf("request failed: %w", err)), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read response body: %w", err)), nil
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return SuccessResult(fmt.Sprintf("Status: %s\n\n%s", resp.Status, string(body))), nil
	}
	return FailureResultf("HTTP error: %s\n\n%s", resp.Status, string(body)), nil
}

// isDomainAllowed checks the URL's host against the allowlist.
func (t *HTTPTool) isDomainAllowed(urlStr string) bool {
	if len(t.allowedDomains) == 0 {
		return true
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	host := u.Hostname()
	for _, domain := range t.allowedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
