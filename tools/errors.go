package tools

import "errors"

// Sentinel errors for the registry contract. Callers classify failures with
// errors.Is; wrapped messages carry the tool and parameter names.
var (
	// ErrDuplicateTool is returned when registering a name that already exists.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrUnknownTool is returned when looking up or validating an
	// unregistered tool name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned when arguments do not satisfy the
	// tool's declared parameter schema.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)
