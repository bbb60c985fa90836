// LLM-backed memory compression.

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rabbitlabs/rabbit/memory"
)

const summaryInstructions = `You compress an agent's step history into a short running summary.

Keep: what has been tried, what succeeded, key facts discovered, what failed and why.
Drop: raw page content, repeated detail, anything the agent no longer needs.
Respond with the updated summary as plain text, at most one short paragraph.`

// defaultSummarizeThreshold matches the default context window: shorter logs
// fit in the prompt as-is and are not worth a backend call.
const defaultSummarizeThreshold = 10

// Summarizer compresses older steps into a running summary using the LLM.
// It implements the memory store's summarizer hook.
type Summarizer struct {
	manager   *Manager
	threshold int
}

// NewSummarizer creates an LLM-backed summarizer.
func NewSummarizer(manager *Manager) *Summarizer {
	return &Summarizer{manager: manager, threshold: defaultSummarizeThreshold}
}

// WithThreshold sets the minimum log length that triggers compression.
func (s *Summarizer) WithThreshold(steps int) *Summarizer {
	s.threshold = steps
	return s
}

// Summarize folds the full step log and the previous summary into an updated
// one. Logs below the threshold pass the summary through untouched. On
// backend failure the error surfaces; callers decide whether a stale summary
// is acceptable.
func (s *Summarizer) Summarize(ctx context.Context, summary string, steps []memory.Step) (string, error) {
	if len(steps) < s.threshold {
		return summary, nil
	}

	var b strings.Builder
	if summary != "" {
		b.WriteString("Previous summary:\n")
		b.WriteString(summary)
		b.WriteString("\n\n")
	}
	b.WriteString("Steps:\n")
	for _, step := range steps {
		b.WriteString(renderStep(step))
		b.WriteString("\n")
	}

	messages := []ChatMessage{
		SystemMessage(summaryInstructions),
		UserMessage(b.String()),
	}

	response, err := s.manager.Provider().Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: summarize: %v", ErrBackendUnavailable, err)
	}
	return strings.TrimSpace(response.Content), nil
}

func renderStep(step memory.Step) string {
	switch {
	case step.Final:
		return fmt.Sprintf("%d. final answer: %s", step.Seq, step.Answer)
	case step.Failed():
		return fmt.Sprintf("%d. %s(%s) failed: %s", step.Seq, step.Tool, step.Input, step.Err)
	default:
		return fmt.Sprintf("%d. %s(%s) -> %s", step.Seq, step.Tool, step.Input, step.Observation)
	}
}

// Verify Summarizer implements the memory hook
var _ memory.Summarizer = (*Summarizer)(nil)
