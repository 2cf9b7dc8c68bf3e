// Package yamlutil holds the YAML decode plumbing shared by the
// semantic-convention parser and the telemetry-schema parser: position
// tracking for diagnostics provenance and a structural pre-validation
// pass using a JSON Schema.
package yamlutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/f5/otel-weaver/diag"
)

// ParseDocument parses data into its root YAML node. Callers walk the
// returned node (rather than decoding straight into a Go struct) so that
// they can capture Line/Column provenance per sub-document before handing
// individual mapping nodes off to Node.Decode.
func ParseDocument(data []byte) (*yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode}, nil
	}
	return root.Content[0], nil
}

// Location converts a yaml.Node's position into a diag.Location rooted at
// source.
func Location(source string, node *yaml.Node) diag.Location {
	if node == nil {
		return diag.Location{Source: source}
	}
	return diag.Location{Source: source, Line: node.Line, Column: node.Column}
}

// Field looks up key in a mapping node, returning the value node and
// whether it was present. Mapping nodes store alternating key/value
// entries in Content, which this walks directly rather than decoding into
// a map (decoding into a map loses each entry's own Line/Column).
func Field(mapping *yaml.Node, key string) (*yaml.Node, bool) {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1], true
		}
	}
	return nil, false
}

// Keys returns every key present in a mapping node, in declaration order.
func Keys(mapping *yaml.Node) []string {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keys = append(keys, mapping.Content[i].Value)
	}
	return keys
}

// RejectUnknownFields returns a ParseError if mapping contains any key not
// present in allowed, unless strict is false.
func RejectUnknownFields(source string, mapping *yaml.Node, allowed map[string]bool, strict bool) *diag.ParseError {
	if !strict || mapping == nil {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		if !allowed[key] {
			return diag.NewParseError(Location(source, mapping.Content[i]), fmt.Sprintf("unknown field %q", key))
		}
	}
	return nil
}

// Validate compiles schemaJSON as a JSON Schema and validates node against
// it, after round-tripping node through encoding/json (jsonschema/v6
// operates on decoded JSON values, not YAML nodes directly). It catches
// gross shape errors (e.g. "groups" not a list) before the caller attempts
// a typed decode.
func Validate(source, schemaJSON string, node *yaml.Node) error {
	var asAny any
	if err := node.Decode(&asAny); err != nil {
		return fmt.Errorf("decoding document for schema validation: %w", err)
	}
	raw, err := json.Marshal(asAny)
	if err != nil {
		return fmt.Errorf("marshaling document for schema validation: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(schemaJSON)))
	if err != nil {
		return fmt.Errorf("parsing structural schema: %w", err)
	}
	const resourceName = "telemetry-schema-resolver://structural.json"
	if err := compiler.AddResource(resourceName, schemaDoc); err != nil {
		return fmt.Errorf("loading structural schema: %w", err)
	}
	schema, err := compiler.Compile(resourceName)
	if err != nil {
		return fmt.Errorf("compiling structural schema: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decoding document JSON for validation: %w", err)
	}
	if err := schema.Validate(decoded); err != nil {
		return diag.NewParseError(Location(source, node), err.Error())
	}
	return nil
}
