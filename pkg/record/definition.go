package record

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Definition describes one resource collection served by the API. Definitions
// are passed explicitly to the store and server at startup; there is no
// global registry.
type Definition struct {
	// Name is the resource name, used as the path segment under /api/.
	Name string `json:"name" yaml:"name"`

	// Timestamps enables the write-once createdAt field, assigned by the
	// store at insert time.
	Timestamps bool `json:"timestamps,omitempty" yaml:"timestamps,omitempty"`

	// Schema is an optional JSON Schema that Create and Upsert bodies must
	// satisfy. Nil means any JSON object is accepted.
	Schema map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Validate checks the definition itself.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("resource definition missing name")
	}
	return nil
}

// CompileSchema compiles the definition's JSON Schema, or returns (nil, nil)
// when no schema is configured.
func (d Definition) CompileSchema() (*jsonschema.Schema, error) {
	if d.Schema == nil {
		return nil, nil
	}
	raw, err := json.Marshal(d.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %q: %w", d.Name, err)
	}
	schema, err := jsonschema.CompileString(d.Name+".schema.json", string(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema for %q: %w", d.Name, err)
	}
	return schema, nil
}
