package tool

import (
	"encoding/json"
	"fmt"
	"sync"

	"mediops/internal/domain"
)

// Registry holds tool declarations and their compiled argument validators.
// Tools here are offered to the generation backend, not executed locally.
type Registry struct {
	mu         sync.RWMutex
	tools      map[string]domain.ToolSchema
	validators map[string]*Validator
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:      make(map[string]domain.ToolSchema),
		validators: make(map[string]*Validator),
	}
}

// Register adds a tool declaration and compiles its argument schema.
// Returns error if the name is already registered or the schema is invalid.
func (r *Registry) Register(t domain.ToolSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool %q already registered", t.Name)
	}

	validator, err := NewValidator(t)
	if err != nil {
		return err
	}

	r.tools[t.Name] = t
	r.validators[t.Name] = validator
	return nil
}

// Get retrieves a tool declaration by name.
func (r *Registry) Get(name string) (domain.ToolSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// ValidateArgs checks a tool call's arguments against the registered schema.
// Unknown tool names are an error.
func (r *Registry) ValidateArgs(name string, args json.RawMessage) error {
	r.mu.RLock()
	validator, ok := r.validators[name]
	r.mu.RUnlock()

	if !ok {
		return domain.NewDomainError("Registry.ValidateArgs", domain.ErrInvalidInput, "unknown tool: "+name)
	}
	return validator.Validate(args)
}
