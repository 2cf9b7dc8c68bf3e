// Package semconv implements the Semantic-Convention Parser (component B):
// decoding a single semantic-convention registry document into typed
// Groups and Attributes, with position-tracked diagnostics for malformed
// input.
package semconv

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/f5/otel-weaver/diag"
	"github.com/f5/otel-weaver/internal/yamlutil"
	"github.com/f5/otel-weaver/weaverconfig"
)

// structuralSchema is a coarse JSON Schema used to reject gross shape
// errors (e.g. `groups` not a list, a group missing `id`) before the
// finer-grained typed decode runs.
const structuralSchema = `{
  "type": "object",
  "required": ["groups"],
  "properties": {
    "groups": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type"],
        "properties": {
          "id": {"type": "string"},
          "type": {"type": "string"}
        }
      }
    }
  }
}`

var groupAllowedFields = map[string]bool{
	"id": true, "type": true, "brief": true, "note": true, "prefix": true,
	"extends": true, "stability": true, "deprecated": true, "attributes": true,
	"metric_name": true, "instrument": true, "unit": true, "name": true,
	"span_kind": true, "events": true,
}

var attributeAllowedFields = map[string]bool{
	"id": true, "type": true,
	"ref": true, "attribute_group_ref": true, "resource_ref": true,
	"span_ref": true, "event_ref": true,
	"brief": true, "note": true, "examples": true, "requirement_level": true,
	"tag": true, "tags": true, "stability": true, "deprecated": true,
	"sampling_relevant": true, "value": true,
}

// Parse decodes a semantic-convention registry document read from source,
// enforcing the structural schema, per-group/per-attribute field
// allowlists (honoring cfg.StrictUnknownFields), and the id/ref exclusivity
// rule on every attribute declaration.
//
// Parse returns the best-effort Registry it could build along with a
// diag.Set; callers decide whether to proceed when the set contains only
// recoverable diagnostics.
func Parse(source string, data []byte, cfg weaverconfig.Config) (*Registry, *diag.Set) {
	diags := diag.NewSet()

	root, err := yamlutil.ParseDocument(data)
	if err != nil {
		diags.Add(diag.NewParseError(diag.Location{Source: source}, err.Error()))
		return nil, diags
	}

	if cfg.StrictUnknownFields {
		if err := yamlutil.Validate(source, structuralSchema, root); err != nil {
			diags.Add(toParseError(source, root, err))
			return nil, diags
		}
	}

	groupsNode, ok := yamlutil.Field(root, "groups")
	if !ok || groupsNode.Kind != yaml.SequenceNode {
		diags.Add(diag.NewParseError(yamlutil.Location(source, root), "document has no groups list"))
		return nil, diags
	}

	reg := &Registry{Source: source}
	seenIDs := make(map[string]diag.Location, len(groupsNode.Content))

	for _, groupNode := range groupsNode.Content {
		if pe := yamlutil.RejectUnknownFields(source, groupNode, groupAllowedFields, cfg.StrictUnknownFields); pe != nil {
			diags.Add(pe)
			continue
		}

		var g Group
		if err := groupNode.Decode(&g); err != nil {
			diags.Add(toParseError(source, groupNode, err))
			continue
		}
		g.Location = yamlutil.Location(source, groupNode)

		if !validGroupKinds[g.Kind] {
			diags.Add(diag.NewParseError(g.Location, fmt.Sprintf("group %q has unknown type %q", g.ID, g.Kind)))
			continue
		}
		if prior, dup := seenIDs[g.ID]; dup {
			diags.Add(diag.NewDuplicateGroupID(g.Location, g.ID))
			_ = prior
			continue
		}
		seenIDs[g.ID] = g.Location

		if g.Stability != "" && !validStabilities[g.Stability] {
			diags.Add(diag.NewInvalidStability(g.Location, fmt.Sprintf("group %q has unknown stability %q", g.ID, g.Stability)))
			continue
		}
		if g.Deprecated != "" && g.Stability != "" && g.Stability != StabilityDeprecated {
			diags.Add(diag.NewParseError(g.Location, fmt.Sprintf("group %q is deprecated but stability is %q, not deprecated", g.ID, g.Stability)))
			continue
		}
		if g.Kind == KindMetric && !validInstruments[g.Instrument] {
			diags.Add(diag.NewInvalidInstrument(g.Location, fmt.Sprintf("metric group %q has unknown instrument %q", g.ID, g.Instrument)))
			continue
		}

		attrsNode, _ := yamlutil.Field(groupNode, "attributes")
		if ok := validateAttributes(source, attrsNode, g.Attributes, cfg, diags); !ok {
			continue
		}

		reg.Groups = append(reg.Groups, g)
	}

	return reg, diags
}

func validateAttributes(source string, attrsNode *yaml.Node, attrs []Attribute, cfg weaverconfig.Config, diags *diag.Set) bool {
	ok := true
	for i, a := range attrs {
		loc := diag.Location{Source: source}
		if attrsNode != nil && i < len(attrsNode.Content) {
			node := attrsNode.Content[i]
			loc = yamlutil.Location(source, node)
			if pe := yamlutil.RejectUnknownFields(source, node, attributeAllowedFields, cfg.StrictUnknownFields); pe != nil {
				diags.Add(pe)
				ok = false
				continue
			}
		}
		if err := a.Validate(); err != nil {
			diags.Add(diag.NewParseError(loc, err.Error()))
			ok = false
			continue
		}
		if a.Type != nil {
			if err := a.Type.Validate(); err != nil {
				diags.Add(diag.NewInvalidEnum(loc, err.Error()))
				ok = false
				continue
			}
		}
		if a.RequirementLevel != nil {
			if err := a.RequirementLevel.Validate(); err != nil {
				diags.Add(diag.NewInvalidRequirementLevel(loc, err.Error()))
				ok = false
				continue
			}
		}
		if a.Stability != "" && !validStabilities[a.Stability] {
			diags.Add(diag.NewInvalidStability(loc, fmt.Sprintf("attribute %q has unknown stability %q", a.ID, a.Stability)))
			ok = false
			continue
		}
		if a.Deprecated != "" && a.Stability != "" && a.Stability != StabilityDeprecated {
			diags.Add(diag.NewParseError(loc, fmt.Sprintf("attribute %q is deprecated but stability is %q, not deprecated", a.ID, a.Stability)))
			ok = false
		}
	}
	return ok
}

func toParseError(source string, node *yaml.Node, err error) *diag.ParseError {
	return diag.NewParseError(yamlutil.Location(source, node), err.Error())
}
