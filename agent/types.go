// Response types for agent execution.

package agent

import (
	"github.com/rabbitlabs/rabbit/memory"
)

// Metadata contains metadata about agent execution.
type Metadata struct {
	ExecutionTimeMs uint64
	LLMCalls        int
	Iterations      int
	SessionID       string
}

// ResponseType indicates the type of agent response.
type ResponseType int

const (
	ResponseSuccess ResponseType = iota
	ResponseFailure
)

// Response represents the outcome of an agent run: the full step log plus
// either the final answer or the terminal error.
type Response struct {
	Type     ResponseType
	Result   string // For Success
	Err      error  // For Failure
	Steps    []memory.Step
	Metadata Metadata
}

// NewSuccessResponse creates a successful response.
func NewSuccessResponse(result string, steps []memory.Step, meta Metadata) Response {
	return Response{
		Type:     ResponseSuccess,
		Result:   result,
		Steps:    steps,
		Metadata: meta,
	}
}

// NewFailureResponse creates a failure response.
func NewFailureResponse(err error, steps []memory.Step, meta Metadata) Response {
	return Response{
		Type:     ResponseFailure,
		Err:      err,
		Steps:    steps,
		Metadata: meta,
	}
}

// IsSuccess checks if the run terminated with a final answer.
func (r Response) IsSuccess() bool {
	return r.Type == ResponseSuccess
}

// ResultText returns the result (for success) or the error text (for failure).
func (r Response) ResultText() string {
	if r.Type == ResponseSuccess {
		return r.Result
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return ""
}
