// LLM Manager - the stateless planning boundary.
//
// One Decide call is one round trip: goal + serialized memory context +
// available tools in, raw decision payload out. The manager holds no state
// between calls; everything the model needs travels in the prompt.

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rabbitlabs/rabbit/tools"
)

var (
	// ErrBackendUnavailable indicates a transient backend failure; the caller
	// may retry the same call.
	ErrBackendUnavailable = errors.New("llm backend unavailable")
	// ErrMalformedResponse indicates the backend returned something unusable.
	// Also retryable: model output is non-deterministic.
	ErrMalformedResponse = errors.New("malformed llm response")
)

const decisionInstructions = `You are an autonomous agent that completes tasks by calling tools.

On each turn, decide the single next action. Respond with exactly one JSON object, nothing else.

To call a tool:
{"thought": "<why this action>", "tool": "<tool name>", "input": {<tool arguments>}}

When the task is complete (or cannot be completed), give your final answer:
{"thought": "<why you are done>", "final_answer": "<the answer>"}

Rules:
- Use only the tools listed below, with their declared parameters.
- One action per response. Never invent tool names or parameters.
- If a previous step failed, adjust your approach instead of repeating it.`

// Manager is the stateless request/response boundary to a reasoning backend.
type Manager struct {
	provider Provider
	timeout  time.Duration
}

// NewManager creates a manager over the given provider.
func NewManager(provider Provider) *Manager {
	return &Manager{provider: provider}
}

// WithTimeout bounds each Decide round trip. Zero means no bound beyond the
// caller's context.
func (m *Manager) WithTimeout(timeout time.Duration) *Manager {
	m.timeout = timeout
	return m
}

// Provider returns the underlying provider.
func (m *Manager) Provider() Provider {
	return m.provider
}

// Decide performs one blocking planning round trip and returns the raw
// decision payload. The payload is unparsed: turning it into a typed action
// is the planner's job.
func (m *Manager) Decide(ctx context.Context, goal, memoryContext string, available []tools.ToolMetadata) (string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	messages := []ChatMessage{
		SystemMessage(decisionInstructions + "\n\nAvailable tools:\n" + renderToolCatalog(available)),
		UserMessage(fmt.Sprintf("Task: %s\n\nProgress so far:\n%s\n\nDecide the next action.", goal, memoryContext)),
	}

	response, err := m.provider.ChatWithFormat(ctx, messages, NewJSONObjectFormat())
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, m.provider.Name(), err)
	}
	if strings.TrimSpace(response.Content) == "" {
		return "", fmt.Errorf("%w: empty decision from %s", ErrMalformedResponse, m.provider.Name())
	}
	return response.Content, nil
}

// renderToolCatalog formats tool metadata for the planning prompt.
func renderToolCatalog(available []tools.ToolMetadata) string {
	if len(available) == 0 {
		return "(none)"
	}

	var b strings.Builder
	for _, meta := range available {
		fmt.Fprintf(&b, "- %s: %s\n", meta.Name, meta.Description)
		for _, param := range meta.Parameters {
			requirement := "optional"
			if param.Required {
				requirement = "required"
			}
			fmt.Fprintf(&b, "    %s (%s, %s): %s\n", param.Name, param.Type, requirement, param.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
