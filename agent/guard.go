// Repeat-failure guard.
//
// The loop never retries a tool call itself, but a model stuck on a failing
// action will happily propose it forever. The guard notices identical
// back-to-back failures and injects a steering hint into the next planning
// context.

package agent

import (
	"encoding/json"
	"fmt"
)

// repeatFailureLimit ends the run once the same action has failed this many
// times in a row. The hint below fires one failure earlier.
const repeatFailureLimit = 3

type repeatGuard struct {
	signature string
	failures  int
}

func actionSignature(tool string, input json.RawMessage) string {
	return tool + "|" + string(input)
}

// observe updates the guard with the latest recorded step.
func (g *repeatGuard) observe(tool string, input json.RawMessage, failed bool) {
	if !failed {
		g.signature = ""
		g.failures = 0
		return
	}
	sig := actionSignature(tool, input)
	if sig == g.signature {
		g.failures++
	} else {
		g.signature = sig
		g.failures = 1
	}
}

// exceeded reports whether the run should terminate.
func (g *repeatGuard) exceeded() bool {
	return g.failures >= repeatFailureLimit
}

// hint returns a steering message once the same action has failed twice in a
// row, empty otherwise.
func (g *repeatGuard) hint() string {
	if g.failures < 2 {
		return ""
	}
	return fmt.Sprintf("Note: the last action has failed %d times in a row with the same input. Do not repeat it; try a different tool or different arguments.", g.failures)
}
