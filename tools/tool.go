// Package tools provides the tool system for the agent loop.
//
// Information Hiding:
// - Tool execution details hidden behind interface
// - Parameter schemas declared per tool, validated by the registry
// - Error handling internalized per tool
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// ParamType is the declared type of a tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// ToolParameter defines one named parameter in a tool's input schema.
// Declaration order matters: validation reports the first violation in the
// order parameters are declared.
type ToolParameter struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"param_type"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
}

// ToolMetadata describes what a tool does and how to call it.
type ToolMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// String returns a short one-line representation of the metadata.
func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// ToolResult is the outcome of a tool execution.
// Success is determined by whether Error is nil.
type ToolResult struct {
	Output string `json:"output"`
	Error  error  `json:"-"`
}

// MarshalJSON serializes the result with an explicit success flag.
func (t ToolResult) MarshalJSON() ([]byte, error) {
	if t.Error != nil {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Output  string `json:"output"`
			Error   string `json:"error"`
		}{false, t.Output, t.Error.Error()})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Output  string `json:"output"`
	}{true, t.Output})
}

// Success reports whether the execution succeeded.
func (t ToolResult) Success() bool {
	return t.Error == nil
}

// SuccessResult creates a successful tool result.
func SuccessResult(output string) ToolResult {
	return ToolResult{Output: output}
}

// FailureResult creates a failed tool result.
func FailureResult(err error) ToolResult {
	return ToolResult{Error: err}
}

// FailureResultf creates a failed tool result with a formatted message.
func FailureResultf(format string, args ...interface{}) ToolResult {
	return ToolResult{Error: fmt.Errorf(format, args...)}
}

// Tool is the interface all capabilities implement. Execute is expected to
// be a single bounded operation: any retrying belongs inside the tool's own
// backend (the browser controller retries, the loop never does).
type Tool interface {
	// Metadata returns the tool's name, description and parameter schema.
	Metadata() ToolMetadata

	// Execute runs the tool with schema-validated arguments.
	Execute(ctx context.Context, args json.RawMessage) (ToolResult, error)
}
