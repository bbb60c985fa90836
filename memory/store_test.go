package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppendContiguousSequence(t *testing.T) {
	store := NewStore("test-session")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		step := Step{Seq: i, Tool: "navigate", Observation: fmt.Sprintf("ok %d", i)}
		if err := store.Append(ctx, step); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}
	if store.Len() != 3 {
		t.Errorf("expected 3 steps, got %d", store.Len())
	}
}

func TestAppendOutOfOrder(t *testing.T) {
	store := NewStore("test-session")
	ctx := context.Background()

	if err := store.Append(ctx, Step{Seq: 1}); !errors.Is(err, ErrOutOfOrderStep) {
		t.Fatalf("expected ErrOutOfOrderStep for gap, got %v", err)
	}
	if err := store.Append(ctx, Step{Seq: 0}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(ctx, Step{Seq: 0}); !errors.Is(err, ErrOutOfOrderStep) {
		t.Fatalf("expected ErrOutOfOrderStep for duplicate, got %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("rejected appends must not grow the log, got %d steps", store.Len())
	}
}

func TestContextWindow(t *testing.T) {
	store := NewStore("test-session")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, Step{Seq: i, Tool: "extract_text", Observation: fmt.Sprintf("obs-%d", i)}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	var got []int
	for step := range store.Context(2) {
		got = append(got, step.Seq)
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("expected most recent steps [3 4] oldest first, got %v", got)
	}

	// Fewer steps than requested yields everything.
	got = nil
	for step := range store.Context(100) {
		got = append(got, step.Seq)
	}
	if len(got) != 5 {
		t.Errorf("expected all 5 steps, got %v", got)
	}
}

func TestContextIdempotent(t *testing.T) {
	store := NewStore("test-session")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := store.Append(ctx, Step{Seq: i, Tool: "click", Observation: "done"}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	collect := func() []Step {
		var steps []Step
		for step := range store.Context(3) {
			steps = append(steps, step)
		}
		return steps
	}

	first := collect()
	second := collect()
	if len(first) != len(second) {
		t.Fatalf("length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Seq != second[i].Seq || first[i].Observation != second[i].Observation {
			t.Errorf("step %d differs between iterations", i)
		}
	}
}

func TestContextRestartable(t *testing.T) {
	store := NewStore("test-session")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Append(ctx, Step{Seq: i}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	seq := store.Context(3)

	// Partial first pass, then a full second pass over the same sequence.
	for range seq {
		break
	}
	count := 0
	for range seq {
		count++
	}
	if count != 3 {
		t.Errorf("expected restartable sequence to yield 3 steps, got %d", count)
	}
}

func TestContextSnapshotUnaffectedByAppends(t *testing.T) {
	store := NewStore("test-session")
	ctx := context.Background()

	if err := store.Append(ctx, Step{Seq: 0}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	seq := store.Context(10)
	if err := store.Append(ctx, Step{Seq: 1}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	count := 0
	for range seq {
		count++
	}
	if count != 1 {
		t.Errorf("snapshot should not see later appends, got %d steps", count)
	}
}

func TestSummarizeHook(t *testing.T) {
	called := 0
	summarizer := SummarizerFunc(func(_ context.Context, summary string, steps []Step) (string, error) {
		called++
		return fmt.Sprintf("%d steps so far", len(steps)), nil
	})

	store := NewStore("test-session").WithSummarizer(summarizer)
	ctx := context.Background()

	if err := store.Append(ctx, Step{Seq: 0, Tool: "navigate", Observation: "ok"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Summarize(ctx); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if called != 1 {
		t.Errorf("expected summarizer to be called once, got %d", called)
	}
	if store.Summary() != "1 steps so far" {
		t.Errorf("unexpected summary: %q", store.Summary())
	}
}

func TestNoopSummarizerDefault(t *testing.T) {
	store := NewStore("test-session")
	ctx := context.Background()

	if err := store.Append(ctx, Step{Seq: 0}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Summarize(ctx); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if store.Summary() != "" {
		t.Errorf("expected empty summary from no-op hook, got %q", store.Summary())
	}
}

func TestContextStringIncludesSummaryAndWindow(t *testing.T) {
	store := NewStore("test-session").WithSummarizer(
		SummarizerFunc(func(_ context.Context, _ string, _ []Step) (string, error) {
			return "visited one page", nil
		}))
	ctx := context.Background()

	if store.ContextString(5) != "No steps taken yet." {
		t.Errorf("unexpected empty context: %q", store.ContextString(5))
	}

	if err := store.Append(ctx, Step{Seq: 0, Tool: "navigate", Observation: "loaded example.com"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Summarize(ctx); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	rendered := store.ContextString(5)
	if !strings.Contains(rendered, "visited one page") {
		t.Errorf("expected summary in context: %q", rendered)
	}
	if !strings.Contains(rendered, "navigate") || !strings.Contains(rendered, "loaded example.com") {
		t.Errorf("expected step window in context: %q", rendered)
	}
}

func TestGeneratedSessionID(t *testing.T) {
	store := NewStore("")
	if store.SessionID() == "" {
		t.Error("expected generated session ID")
	}
}

type failingPersister struct{}

func (failingPersister) PersistStep(context.Context, string, Step) error {
	return errors.New("disk full")
}

// countingPersister records how many steps were written through.
type countingPersister struct {
	writes int
}

func (p *countingPersister) PersistStep(context.Context, string, Step) error {
	p.writes++
	return nil
}

func TestWithStepsContinuesSequence(t *testing.T) {
	persister := &countingPersister{}
	prior := []Step{
		{Seq: 0, Tool: "navigate", Observation: "loaded"},
		{Seq: 1, Tool: "extract_text", Observation: "Example Domain"},
	}
	store := NewStore("resume-session").WithPersister(persister).WithSteps(prior)

	// Seeding does not write through; only new appends do.
	if persister.writes != 0 {
		t.Errorf("expected no write-through for seeded steps, got %d", persister.writes)
	}
	if store.NextSeq() != 2 {
		t.Fatalf("expected next seq 2 after seeding, got %d", store.NextSeq())
	}

	if err := store.Append(context.Background(), Step{Seq: 2, Tool: "navigate"}); err != nil {
		t.Fatalf("Append after seeding failed: %v", err)
	}
	if persister.writes != 1 {
		t.Errorf("expected 1 write-through for the new step, got %d", persister.writes)
	}
	if err := store.Append(context.Background(), Step{Seq: 0}); !errors.Is(err, ErrOutOfOrderStep) {
		t.Errorf("expected ErrOutOfOrderStep for stale seq, got %v", err)
	}
}

func TestAppendReportsPersistFailure(t *testing.T) {
	store := NewStore("test-session").WithPersister(failingPersister{})

	err := store.Append(context.Background(), Step{Seq: 0})
	if err == nil {
		t.Fatal("expected persist failure to surface")
	}
	// The in-memory log keeps the step: the log is authoritative.
	if store.Len() != 1 {
		t.Errorf("expected in-memory append to survive persist failure, got %d", store.Len())
	}
}
