package resolved

import (
	"fmt"

	"github.com/invopop/jsonschema"
	sigsyaml "sigs.k8s.io/yaml"
)

// MarshalYAML renders s to YAML, round-tripping through encoding/json (via
// sigs.k8s.io/yaml) so the `json:` struct tags above are the single source
// of truth for both JSON and YAML field names.
func (s *Schema) MarshalYAML() ([]byte, error) {
	data, err := sigsyaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling resolved schema to yaml: %w", err)
	}
	return data, nil
}

// UnmarshalSchema parses a Resolved Schema previously produced by
// MarshalYAML, for round-tripping.
func UnmarshalSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := sigsyaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshaling resolved schema: %w", err)
	}
	return &s, nil
}

// JSONSchema generates a JSON Schema document describing the Resolved
// Schema output shape, for downstream tooling that wants to validate a
// serialized schema without depending on this module's Go types.
func JSONSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: false,
	}
	return reflector.Reflect(&Schema{})
}
