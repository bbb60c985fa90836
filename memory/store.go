// Package memory provides the agent's append-only step log.
//
// The log is the authoritative record of a run: every planned action and its
// outcome is appended exactly once and never mutated. Prompt context is a
// bounded projection over the log (recent window plus a running summary),
// recomputed on demand and never persisted as source of truth.
//
// Information Hiding:
// - Slice storage and locking hidden behind the Store API
// - Copy-on-read keeps callers from mutating recorded steps
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrOutOfOrderStep is returned when an appended step's sequence number is
// not exactly one past the last recorded step.
var ErrOutOfOrderStep = errors.New("step sequence out of order")

// Step is one recorded iteration: the proposed action and its outcome.
// Steps are immutable once appended.
type Step struct {
	// Seq is the step's position in the log, contiguous from 0.
	Seq int `json:"seq"`
	// Thought is the model's stated reasoning for the action.
	Thought string `json:"thought,omitempty"`
	// Tool names the invoked tool; empty for a final answer.
	Tool string `json:"tool,omitempty"`
	// Input holds the tool call arguments.
	Input json.RawMessage `json:"input,omitempty"`
	// Final marks the terminating answer step.
	Final bool `json:"final,omitempty"`
	// Answer is the final answer content when Final is set.
	Answer string `json:"answer,omitempty"`
	// Observation is the successful result of the action.
	Observation string `json:"observation,omitempty"`
	// Err is the failure description when the action failed.
	Err string `json:"error,omitempty"`
	// At is when the step was recorded.
	At time.Time `json:"at"`
}

// Failed reports whether the step's action failed.
func (s Step) Failed() bool {
	return s.Err != ""
}

// describe renders a step as one prompt-context line.
func (s Step) describe() string {
	switch {
	case s.Final:
		return fmt.Sprintf("step %d: final answer: %s", s.Seq, truncate(s.Answer, 500))
	case s.Failed():
		return fmt.Sprintf("step %d: %s(%s) failed: %s", s.Seq, s.Tool, compactInput(s.Input), truncate(s.Err, 500))
	default:
		return fmt.Sprintf("step %d: %s(%s) -> %s", s.Seq, s.Tool, compactInput(s.Input), truncate(s.Observation, 500))
	}
}

// Summarizer compresses older steps into a running summary. The default is a
// no-op: implementations decide when compression is worthwhile.
type Summarizer interface {
	Summarize(ctx context.Context, summary string, steps []Step) (string, error)
}

// SummarizerFunc adapts a function to the Summarizer interface.
type SummarizerFunc func(ctx context.Context, summary string, steps []Step) (string, error)

// Summarize calls the function.
func (f SummarizerFunc) Summarize(ctx context.Context, summary string, steps []Step) (string, error) {
	return f(ctx, summary, steps)
}

// NoopSummarizer keeps the summary unchanged.
func NoopSummarizer() Summarizer {
	return SummarizerFunc(func(_ context.Context, summary string, _ []Step) (string, error) {
		return summary, nil
	})
}

// Persister is an optional durable backend. When configured, Append writes
// through to it; absence means memory is process-lifetime only.
type Persister interface {
	PersistStep(ctx context.Context, sessionID string, step Step) error
}

// Store is the append-only step log for one agent run.
type Store struct {
	mu         sync.RWMutex
	sessionID  string
	steps      []Step
	summary    string
	summarizer Summarizer
	persister  Persister
}

// NewStore creates an empty step log. An empty sessionID gets a generated one.
func NewStore(sessionID string) *Store {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	return &Store{
		sessionID:  sessionID,
		summarizer: NoopSummarizer(),
	}
}

// WithSummarizer sets the compression hook.
func (s *Store) WithSummarizer(summarizer Summarizer) *Store {
	s.summarizer = summarizer
	return s
}

// WithPersister enables durable write-through storage.
func (s *Store) WithPersister(persister Persister) *Store {
	s.persister = persister
	return s
}

// WithSteps seeds the log with previously recorded steps so a resumed session
// continues its sequence instead of colliding with persisted rows. Steps must
// be in order and contiguous from 0, as LoadSteps returns them; they are not
// written through again. Must be called before any Append.
func (s *Store) WithSteps(steps []Step) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = make([]Step, len(steps))
	copy(s.steps, steps)
	return s
}

// SessionID returns the log's session identifier.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Append records a step. The step's sequence number must be exactly one past
// the last recorded step (the first is 0), otherwise ErrOutOfOrderStep.
// With a persister configured the step is also written through; a persistence
// failure leaves the in-memory log intact and is returned to the caller.
func (s *Store) Append(ctx context.Context, step Step) error {
	s.mu.Lock()
	if step.Seq != len(s.steps) {
		seq := step.Seq
		want := len(s.steps)
		s.mu.Unlock()
		return fmt.Errorf("%w: got %d, want %d", ErrOutOfOrderStep, seq, want)
	}
	if step.At.IsZero() {
		step.At = time.Now()
	}
	s.steps = append(s.steps, step)
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.PersistStep(ctx, s.sessionID, step); err != nil {
			return fmt.Errorf("persist step %d: %w", step.Seq, err)
		}
	}
	return nil
}

// Len returns the number of recorded steps.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.steps)
}

// NextSeq returns the sequence number the next appended step must carry.
func (s *Store) NextSeq() int {
	return s.Len()
}

// Steps returns a copy of the full log in chronological order.
func (s *Store) Steps() []Step {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]Step, len(s.steps))
	copy(copied, s.steps)
	return copied
}

// Context returns a lazy, restartable sequence of the most recent maxSteps
// steps in chronological order (oldest first). If fewer steps exist, all are
// yielded. The sequence iterates over a snapshot: appends after the call do
// not affect it.
func (s *Store) Context(maxSteps int) iter.Seq[Step] {
	s.mu.RLock()
	start := 0
	if maxSteps >= 0 && len(s.steps) > maxSteps {
		start = len(s.steps) - maxSteps
	}
	window := make([]Step, len(s.steps)-start)
	copy(window, s.steps[start:])
	s.mu.RUnlock()

	return func(yield func(Step) bool) {
		for _, step := range window {
			if !yield(step) {
				return
			}
		}
	}
}

// Summary returns the current running summary.
func (s *Store) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// Summarize runs the configured hook over the full log and stores the
// resulting running summary.
func (s *Store) Summarize(ctx context.Context) error {
	steps := s.Steps()

	s.mu.RLock()
	current := s.summary
	s.mu.RUnlock()

	updated, err := s.summarizer.Summarize(ctx, current, steps)
	if err != nil {
		return fmt.Errorf("summarize memory: %w", err)
	}

	s.mu.Lock()
	s.summary = updated
	s.mu.Unlock()
	return nil
}

// ContextString renders the bounded prompt context: the running summary (if
// any) followed by the recent step window.
func (s *Store) ContextString(maxSteps int) string {
	var b strings.Builder

	if summary := s.Summary(); summary != "" {
		b.WriteString("Summary of earlier steps:\n")
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	wrote := false
	for step := range s.Context(maxSteps) {
		if !wrote {
			b.WriteString("Recent steps:\n")
			wrote = true
		}
		b.WriteString(step.describe())
		b.WriteString("\n")
	}
	if !wrote && b.Len() == 0 {
		return "No steps taken yet."
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func compactInput(input json.RawMessage) string {
	if len(input) == 0 {
		return ""
	}
	return truncate(string(input), 200)
}
