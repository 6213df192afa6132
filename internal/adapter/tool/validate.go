package tool

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonschema"

	"mediops/internal/domain"
)

// Validator checks tool-call arguments against a compiled JSON Schema
// before the executor accepts them.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the parameter schema of a tool declaration.
func NewValidator(t domain.ToolSchema) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile([]byte(t.Parameters))
	if err != nil {
		return nil, fmt.Errorf("compile schema for %q: %w", t.Name, err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks raw arguments against the schema.
func (v *Validator) Validate(raw json.RawMessage) error {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.NewDomainError("Validator.Validate", domain.ErrDecodeFailed, err.Error())
	}
	result := v.schema.Validate(data)
	if !result.IsValid() {
		return domain.NewDomainError("Validator.Validate", domain.ErrInvalidInput, fmt.Sprintf("%s", result.Error()))
	}
	return nil
}
