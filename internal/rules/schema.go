package rules

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildConfigJSONSchema returns the JSON-Schema that a rules file must satisfy.
// Unknown top-level keys are tolerated so that one file can carry other settings.
func BuildConfigJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field_extractors": map[string]any{
				"type":          "object",
				"minProperties": 1,
				"propertyNames": map[string]any{"minLength": 1},
				"additionalProperties": map[string]any{
					"type":      "string",
					"minLength": 1,
				},
			},
			"required_field": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"field_extractors"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}
	return nil
}
