package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"HealthBuddy/internal/backend"
	"HealthBuddy/internal/session"
)

// Dispatch failure sentinels. Both are recoverable: the orchestrator folds
// them into tool-result content so the model can react.
var (
	ErrUnknownCapability  = errors.New("unknown capability")
	ErrMalformedArguments = errors.New("malformed arguments")
)

// Handler executes a capability against already-decoded arguments and returns
// a JSON-serializable result.
type Handler func(args map[string]interface{}) (interface{}, error)

// Capability describes a callable function advertised to the model.
type Capability struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON Schema for the arguments
	Required    []string               // Required argument keys
	Handler     Handler
}

// Registry maps capability names to their declarations and handlers. It is a
// pure query dispatcher: dispatch never mutates registry or session state.
type Registry struct {
	capabilities map[string]Capability
	order        []string
	mu           sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		capabilities: make(map[string]Capability),
	}
}

// Register adds a capability to the registry. Re-registering a name replaces
// the earlier entry.
func (r *Registry) Register(cap Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.capabilities[cap.Name]; !ok {
		r.order = append(r.order, cap.Name)
	}
	r.capabilities[cap.Name] = cap
}

// Declarations returns the capability declarations in registration order, in
// the wire format advertised to the model on the first pass of each cycle.
func (r *Registry) Declarations() []backend.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]backend.Tool, 0, len(r.order))
	for _, name := range r.order {
		cap := r.capabilities[name]
		fn := backend.ToolFunction{
			Name:        cap.Name,
			Description: cap.Description,
			Parameters:  cap.Parameters,
		}
		tools = append(tools, backend.Tool{Type: "function", Function: fn})
	}
	return tools
}

// Dispatch resolves a tool call to its handler and returns the result
// JSON-encoded. Unknown names fail with ErrUnknownCapability; undecodable
// arguments or missing required keys fail with ErrMalformedArguments.
func (r *Registry) Dispatch(call session.ToolCall) (string, error) {
	r.mu.RLock()
	cap, ok := r.capabilities[call.Name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCapability, call.Name)
	}

	args := map[string]interface{}{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedArguments, err)
		}
	}

	for _, key := range cap.Required {
		if _, ok := args[key]; !ok {
			return "", fmt.Errorf("%w: missing required argument %q", ErrMalformedArguments, key)
		}
	}

	result, err := cap.Handler(args)
	if err != nil {
		return "", err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}
	return string(encoded), nil
}

// Count returns the number of registered capabilities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.capabilities)
}
