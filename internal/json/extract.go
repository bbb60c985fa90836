// Package json extracts JSON payloads from LLM responses.
//
// Models rarely return clean JSON: the object is often wrapped in markdown
// fences or surrounded by commentary. This package digs the object out so
// callers can unmarshal it into typed decisions.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Extract returns the JSON object portion of an LLM response.
// It tries, in order: the whole response, the response with markdown code
// fences stripped, and finally the substring between the first '{' and the
// last '}'. Only objects are handled, not top-level arrays.
func Extract(response string) (string, error) {
	candidate := stripFences(response)

	var parsed interface{}
	if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
		return candidate, nil
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start != -1 && end > start {
		inner := candidate[start : end+1]
		if err := json.Unmarshal([]byte(inner), &parsed); err == nil {
			return inner, nil
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("no valid JSON object in response: %q", preview)
}

// Unmarshal extracts the JSON portion of a response and unmarshals it into v.
func Unmarshal(response string, v interface{}) error {
	raw, err := Extract(response)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("unmarshal extracted JSON: %w", err)
	}
	return nil
}

// stripFences removes surrounding ```json / ``` markers, if present.
func stripFences(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```json"))
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	}
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}
	return trimmed
}
