// The agent control loop.
//
// This is THE canonical loop: plan, execute, record, repeat until a final
// answer or a terminal error. All agent execution goes through this module.
//
// Information Hiding:
// - Phase transitions hidden
// - Planning retry policy hidden
// - Tool dispatch and validation hidden

package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitlabs/rabbit/llm"
	"github.com/rabbitlabs/rabbit/memory"
	"github.com/rabbitlabs/rabbit/planner"
	"github.com/rabbitlabs/rabbit/tools"
)

// Agent executes one task against a tool registry, driven by an LLM.
type Agent struct {
	config   Config
	manager  *llm.Manager
	registry *tools.Registry
	store    *memory.Store
	guard    repeatGuard
	verbose  bool
}

// New creates an agent. The store carries the run's step log; passing a store
// with a persister enables durable history.
func New(config Config, manager *llm.Manager, registry *tools.Registry, store *memory.Store) *Agent {
	return &Agent{
		config:   config.withDefaults(),
		manager:  manager,
		registry: registry,
		store:    store,
	}
}

// Verbose enables progress output (thoughts and observations).
func (a *Agent) Verbose(enabled bool) *Agent {
	a.verbose = enabled
	return a
}

// Store returns the run's step log.
func (a *Agent) Store() *memory.Store {
	return a.store
}

// Run executes the task to completion. It returns a success response with the
// final answer, or a failure response whose Err is one of ErrPlanningExhausted,
// ErrMaxIterations, ErrCancelled, ErrRepeatedFailure, or a memory
// persistence error.
func (a *Agent) Run(ctx context.Context, task string) Response {
	start := time.Now()
	llmCalls := 0

	for iteration := 0; iteration < a.config.MaxIterations; iteration++ {
		// Cancellation is honored at phase boundaries: a cancelled context
		// never starts another planning round or tool call.
		if ctx.Err() != nil {
			return a.failure(ctx, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err()), start, llmCalls, iteration)
		}

		// Planning
		action, calls, err := a.plan(ctx, task)
		llmCalls += calls
		if err != nil {
			return a.failure(ctx, err, start, llmCalls, iteration)
		}
		if a.verbose && action.Thought != "" {
			fmt.Printf("[%s] %s\n", a.config.Name, action.Thought)
		}

		// A final answer is itself a recorded step: a run with N tool calls
		// terminates with N+1 steps.
		if action.Kind == planner.ActionFinalAnswer {
			step := memory.Step{
				Seq:     a.store.NextSeq(),
				Thought: action.Thought,
				Final:   true,
				Answer:  action.Answer,
			}
			if err := a.store.Append(ctx, step); err != nil {
				return a.failure(ctx, err, start, llmCalls, iteration)
			}
			a.summarize(ctx)
			return NewSuccessResponse(action.Answer, a.store.Steps(), a.metadata(start, llmCalls, iteration+1))
		}

		if ctx.Err() != nil {
			return a.failure(ctx, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err()), start, llmCalls, iteration)
		}

		// Executing
		step := a.dispatch(ctx, action)
		if a.verbose {
			if step.Failed() {
				fmt.Printf("[%s] %s failed: %s\n", a.config.Name, step.Tool, step.Err)
			} else {
				fmt.Printf("[%s] %s -> %s\n", a.config.Name, step.Tool, preview(step.Observation))
			}
		}

		// Recording
		if err := a.store.Append(ctx, step); err != nil {
			return a.failure(ctx, err, start, llmCalls, iteration)
		}
		a.guard.observe(step.Tool, step.Input, step.Failed())
		a.summarize(ctx)
	}

	return a.failure(ctx,
		fmt.Errorf("%w: no final answer after %d iterations", ErrMaxIterations, a.config.MaxIterations),
		start, llmCalls, a.config.MaxIterations,
	)
}

// plan runs the planning phase: up to PlanningRetries LLM round trips, each
// followed by a parse attempt. Backend failures, malformed responses and
// unparsable decisions all count against the same ceiling.
func (a *Agent) plan(ctx context.Context, task string) (planner.Action, int, error) {
	// The guard wraps planning, not the state machine: once the same action
	// has kept failing despite the steering hint, the run ends here.
	if a.guard.exceeded() {
		return planner.Action{}, 0, fmt.Errorf("%w: same action failed %d times in a row", ErrRepeatedFailure, a.guard.failures)
	}

	memoryContext := a.store.ContextString(a.config.ContextSteps)
	if hint := a.guard.hint(); hint != "" {
		memoryContext += "\n\n" + hint
	}

	var lastErr error
	calls := 0
	for attempt := 0; attempt < a.config.PlanningRetries; attempt++ {
		if ctx.Err() != nil {
			return planner.Action{}, calls, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}

		raw, err := a.manager.Decide(ctx, task, memoryContext, a.registry.List())
		calls++
		if err != nil {
			lastErr = err
			continue
		}

		action, err := planner.Plan(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return action, calls, nil
	}

	return planner.Action{}, calls, fmt.Errorf("%w after %d attempts: %v", ErrPlanningExhausted, a.config.PlanningRetries, lastErr)
}

// dispatch validates and executes one tool call. Every failure mode becomes a
// failed step, never a loop error: the next planning round sees it as context.
func (a *Agent) dispatch(ctx context.Context, action planner.Action) memory.Step {
	step := memory.Step{
		Seq:     a.store.NextSeq(),
		Thought: action.Thought,
		Tool:    action.Tool,
		Input:   action.Input,
	}

	// Unknown tool and schema violations surface here, at dispatch.
	if err := a.registry.Validate(action.Tool, action.Input); err != nil {
		step.Err = err.Error()
		return step
	}
	tool, err := a.registry.Lookup(action.Tool)
	if err != nil {
		step.Err = err.Error()
		return step
	}

	execCtx := ctx
	if a.config.ToolTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, a.config.ToolTimeout)
		defer cancel()
	}

	result, err := tool.Execute(execCtx, action.Input)
	switch {
	case err != nil:
		step.Err = err.Error()
	case result.Success():
		step.Observation = result.Output
	default:
		step.Err = result.Error.Error()
	}
	return step
}

// summarize runs the memory compression hook. A failed summarize leaves the
// previous summary in place; the step log itself is unaffected.
func (a *Agent) summarize(ctx context.Context) {
	if err := a.store.Summarize(ctx); err != nil && a.verbose {
		fmt.Printf("[%s] summarize failed: %v\n", a.config.Name, err)
	}
}

// failure builds the terminal failure response. A cancelled run records a
// closing step noting the cancellation; the run context is already dead, so
// the append must not inherit its deadline.
func (a *Agent) failure(ctx context.Context, err error, start time.Time, llmCalls, iterations int) Response {
	if errors.Is(err, ErrCancelled) {
		step := memory.Step{Seq: a.store.NextSeq(), Err: err.Error()}
		if appendErr := a.store.Append(context.WithoutCancel(ctx), step); appendErr != nil && a.verbose {
			fmt.Printf("[%s] failed to record cancellation: %v\n", a.config.Name, appendErr)
		}
	}
	return NewFailureResponse(err, a.store.Steps(), a.metadata(start, llmCalls, iterations))
}

func (a *Agent) metadata(start time.Time, llmCalls, iterations int) Metadata {
	return Metadata{
		ExecutionTimeMs: uint64(time.Since(start).Milliseconds()),
		LLMCalls:        llmCalls,
		Iterations:      iterations,
		SessionID:       a.store.SessionID(),
	}
}

func preview(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
