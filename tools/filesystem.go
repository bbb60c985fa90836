// Filesystem tools: read, write, append.
//
// Information Hiding:
// - File I/O and size limits hidden
// - Path allow-listing hidden behind builder options

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize bounds file reads and writes.
const DefaultMaxFileSize = 1024 * 1024 // 1MB

// pathAllowed checks if a path is within the allowed prefixes.
// An empty allowlist permits everything.
func pathAllowed(path string, allowedPaths []string) bool {
	if len(allowedPaths) == 0 {
		return true
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, allowed := range allowedPaths {
		allowedAbs, err := filepath.Abs(allowed)
		if err != nil {
			continue
		}
		if strings.HasPrefix(absPath, allowedAbs) {
			return true
		}
	}
	return false
}

// ReadFileTool reads file contents.
type ReadFileTool struct {
	allowedPaths []string
	maxSizeBytes int64
}

// NewReadFileTool creates a new read-file tool.
func NewReadFileTool(maxSizeBytes int64) *ReadFileTool {
	return &ReadFileTool{maxSizeBytes: maxSizeBytes}
}

// WithAllowedPaths restricts reads to the given path prefixes.
func (t *ReadFileTool) WithAllowedPaths(paths []string) *ReadFileTool {
	t.allowedPaths = paths
	return t
}

// Metadata returns the tool metadata.
func (t *ReadFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "read_file",
		Description: "Read the contents of a file from the filesystem",
		Parameters: []ToolParameter{
			{Name: "path", Type: ParamString, Description: "Path to the file to read", Required: true},
		},
	}
}

// Execute reads the file.
func (t *ReadFileTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.Path == "" {
		return FailureResultf("path cannot be empty"), nil
	}
	if !pathAllowed(a.Path, t.allowedPaths) {
		return FailureResultf("access to path %q is not allowed", a.Path), nil
	}

	info, err := os.Stat(a.Path)
	if os.IsNotExist(err) {
		return FailureResultf("file does not exist: %s", a.Path), nil
	}
	if err != nil {
		return FailureResult(fmt.Errorf("failed to stat file: %w", err)), nil
	}
	if info.Size() > t.maxSizeBytes {
		return FailureResultf("file too large: %d bytes (max: %d bytes)", info.Size(), t.maxSizeBytes), nil
	}

	content, err := os.ReadFile(a.Path)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read file: %w", err)), nil
	}
	return SuccessResult(string(content)), nil
}

// WriteFileTool writes or appends file contents.
type WriteFileTool struct {
	allowedPaths []string
	maxSizeBytes int64
}

// NewWriteFileTool creates a new write-file tool.
func NewWriteFileTool(maxSizeBytes int64) *WriteFileTool {
	return &WriteFileTool{maxSizeBytes: maxSizeBytes}
}

// WithAllowedPaths restricts writes to the given path prefixes.
func (t *WriteFileTool) WithAllowedPaths(paths []string) *WriteFileTool {
	t.allowedPaths = paths
	return t
}

// Metadata returns the tool metadata.
func (t *WriteFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "write_file",
		Description: "Write text content to a file, creating or overwriting it (set append to add to the end)",
		Parameters: []ToolParameter{
			{Name: "path", Type: ParamString, Description: "Path to the file to write", Required: true},
			{Name: "content", Type: ParamString, Description: "Content to write", Required: true},
			{Name: "append", Type: ParamBoolean, Description: "Append instead of overwrite", Required: false},
		},
	}
}

// Execute writes the file.
func (t *WriteFileTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a struct {
		Path    string `json:"path"`
		Content string `json:"content"`
		Append  bool   `json:"append"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.Path == "" {
		return FailureResultf("path cannot be empty"), nil
	}
	if int64(len(a.Content)) > t.maxSizeBytes {
		return FailureResultf("content too large: %d bytes (max: %d bytes)", len(a.Content), t.maxSizeBytes), nil
	}
	if !pathAllowed(filepath.Dir(a.Path), t.allowedPaths) {
		return FailureResultf("access to path %q is not allowed", a.Path), nil
	}

	if dir := filepath.Dir(a.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return FailureResult(fmt.Errorf("failed to create directory: %w", err)), nil
		}
	}

	if a.Append {
		f, err := os.OpenFile(a.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return FailureResult(fmt.Errorf("failed to open file: %w", err)), nil
		}
		defer f.Close()
		if _, err := f.WriteString(a.Content); err != nil {
			return FailureResult(fmt.Errorf("failed to append: %w", err)), nil
		}
		return SuccessResult(fmt.Sprintf("appended %d bytes to %s", len(a.Content), a.Path)), nil
	}

	if err := os.WriteFile(a.Path, []byte(a.Content), 0644); err != nil {
		return FailureResult(fmt.Errorf("failed to write file: %w", err)), nil
	}
	return SuccessResult(fmt.Sprintf("wrote %d bytes to %s", len(a.Content), a.Path)), nil
}

// WithUtilities registers the utility and filesystem toolset on a registry.
func WithUtilities(registry *Registry) error {
	toolset := []Tool{
		NewCurrentTimeTool(),
		NewParseURLTool(),
		NewURLEncodeTool(),
		NewRegexMatchTool(),
		NewBase64Tool(),
		NewHashTool(),
		NewHTTPTool(30),
		NewReadFileTool(DefaultMaxFileSize),
		NewWriteFileTool(DefaultMaxFileSize),
	}
	for _, t := range toolset {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("failed to register utility tools: %w", err)
		}
	}
	return nil
}
