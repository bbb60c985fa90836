// Agent configuration types.
//
// Information Hiding:
// - Default values hidden behind withDefaults

package agent

import "time"

// Config holds the loop's operating limits.
type Config struct {
	// Name identifies the agent in output.
	Name string

	// MaxIterations bounds the number of planning/execution rounds.
	MaxIterations int

	// PlanningRetries bounds how many LLM round trips one planning phase may
	// consume before the run fails with ErrPlanningExhausted.
	PlanningRetries int

	// ContextSteps bounds the recent-step window handed to the LLM.
	ContextSteps int

	// ToolTimeout bounds a single tool execution. Zero disables the bound.
	ToolTimeout time.Duration
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		Name:            "rabbit",
		MaxIterations:   10,
		PlanningRetries: 3,
		ContextSteps:    10,
		ToolTimeout:     30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Name == "" {
		c.Name = defaults.Name
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = defaults.MaxIterations
	}
	if c.PlanningRetries <= 0 {
		c.PlanningRetries = defaults.PlanningRetries
	}
	if c.ContextSteps <= 0 {
		c.ContextSteps = defaults.ContextSteps
	}
	return c
}
