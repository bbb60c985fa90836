// Loop-control and planning error kinds.
//
// Tool failures are not here: they are recorded into memory as failed steps
// and fed back to the next planning round instead of stopping the loop.

package agent

import "errors"

var (
	// ErrPlanningExhausted is returned when the planning retry ceiling is hit
	// without producing a usable action.
	ErrPlanningExhausted = errors.New("planning retries exhausted")

	// ErrMaxIterations is returned when the iteration ceiling is reached
	// without a final answer.
	ErrMaxIterations = errors.New("max iterations reached")

	// ErrCancelled is returned when the run's context is cancelled.
	ErrCancelled = errors.New("execution cancelled")

	// ErrRepeatedFailure is returned when the guard ends the run after too
	// many identical consecutive failed actions.
	ErrRepeatedFailure = errors.New("repeated identical failure")
)
