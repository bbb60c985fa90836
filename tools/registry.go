// Tool registry: name -> capability mapping with schema validation.
//
// Information Hiding:
// - Tool storage and lookup implementation hidden
// - Validation walks the declared schema, callers only see typed errors

package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry manages available tools. Registration is effectively append-only
// within a run: names are never replaced or removed.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool. The first registration of a name wins; a second
// returns ErrDuplicateTool and leaves the original active.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Metadata().Name
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, name)
	}
	r.tools[name] = tool
	return nil
}

// Lookup returns the tool registered under name, or ErrUnknownTool.
func (r *Registry) Lookup(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return tool, nil
}

// Has checks whether a tool name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}

// Validate checks arguments against the named tool's declared schema.
// It reports the first violation in schema declaration order: missing
// required parameters first for each declared parameter, then type
// mismatches. Undeclared extra arguments are ignored.
func (r *Registry) Validate(name string, args json.RawMessage) error {
	tool, err := r.Lookup(name)
	if err != nil {
		return err
	}

	supplied := map[string]json.RawMessage{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &supplied); err != nil {
			return fmt.Errorf("%w: tool %q: arguments are not a JSON object: %v", ErrInvalidArguments, name, err)
		}
	}

	for _, param := range tool.Metadata().Parameters {
		raw, present := supplied[param.Name]
		if !present {
			if param.Required {
				return fmt.Errorf("%w: tool %q: missing required parameter %q", ErrInvalidArguments, name, param.Name)
			}
			continue
		}
		if err := checkType(param, raw); err != nil {
			return fmt.Errorf("%w: tool %q: %v", ErrInvalidArguments, name, err)
		}
	}
	return nil
}

// checkType verifies a supplied value against the declared parameter type.
func checkType(param ToolParameter, raw json.RawMessage) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("parameter %q: malformed value", param.Name)
	}

	ok := false
	switch param.Type {
	case ParamString:
		_, ok = v.(string)
	case ParamNumber:
		_, ok = v.(float64)
	case ParamBoolean:
		_, ok = v.(bool)
	default:
		// Unconstrained declared type accepts anything.
		ok = true
	}
	if !ok {
		return fmt.Errorf("parameter %q: expected %s, got %s", param.Name, param.Type, jsonKind(v))
	}
	return nil
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	case []interface{}:
		return "array"
	default:
		return "object"
	}
}

// Names returns all registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns metadata for all registered tools, sorted by name.
func (r *Registry) List() []ToolMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metadata := make([]ToolMetadata, 0, len(r.tools))
	for _, tool := range r.tools {
		metadata = append(metadata, tool.Metadata())
	}
	sort.Slice(metadata, func(i, j int) bool { return metadata[i].Name < metadata[j].Name })
	return metadata
}

// Description returns a formatted description of all tools for LLM prompts.
func (r *Registry) Description() string {
	var descriptions []string
	for _, meta := range r.List() {
		var params []string
		for _, p := range meta.Parameters {
			required := "optional"
			if p.Required {
				required = "required"
			}
			params = append(params, fmt.Sprintf("  - %s (%s): %s [%s]",
				p.Name, p.Type, p.Description, required))
		}

		descriptions = append(descriptions, fmt.Sprintf(
			"Tool: %s\nDescription: %s\nParameters:\n%s",
			meta.Name, meta.Description, strings.Join(params, "\n")))
	}
	return strings.Join(descriptions, "\n\n")
}
