package telemetryschema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/f5/otel-weaver/diag"
	"github.com/f5/otel-weaver/internal/yamlutil"
	"github.com/f5/otel-weaver/weaverconfig"
)

const structuralSchema = `{
  "type": "object",
  "required": ["file_format"],
  "properties": {
    "file_format": {"type": "string"}
  }
}`

// Parse decodes an application schema document read from source,
// normalizing the historical field spellings (`metrics_group` ->
// `metric_groups`, `span_name`/`event_name` -> `id`) with a
// diag.Normalization warning recorded for each rewrite.
func Parse(source string, data []byte, cfg weaverconfig.Config) (*Schema, *diag.Set) {
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

	normalize(source, root, diags)

	var s Schema
	if err := root.Decode(&s); err != nil {
		diags.Add(toParseError(source, root, err))
		return nil, diags
	}
	s.Source = source

	return &s, diags
}

func toParseError(source string, node *yaml.Node, err error) *diag.ParseError {
	return diag.NewParseError(yamlutil.Location(source, node), err.Error())
}

// normalize rewrites historical field spellings in place on the node tree
// before the typed decode runs, recording a diag.Normalization for each
// rewrite performed.
func normalize(source string, root *yaml.Node, diags *diag.Set) {
	schemaNode, ok := yamlutil.Field(root, "schema")
	if !ok {
		return
	}

	if metricsNode, ok := yamlutil.Field(schemaNode, "resource_metrics"); ok {
		renameKey(source, metricsNode, "metrics_group", "metric_groups", diags)
	}

	if eventsNode, ok := yamlutil.Field(schemaNode, "resource_events"); ok {
		if listNode, ok := yamlutil.Field(eventsNode, "events"); ok && listNode.Kind == yaml.SequenceNode {
			for _, eventNode := range listNode.Content {
				renameKey(source, eventNode, "event_name", "id", diags)
			}
		}
	}

	if spansNode, ok := yamlutil.Field(schemaNode, "resource_spans"); ok {
		if listNode, ok := yamlutil.Field(spansNode, "spans"); ok && listNode.Kind == yaml.SequenceNode {
			for _, spanNode := range listNode.Content {
				renameKey(source, spanNode, "span_name", "id", diags)
				if nestedEvents, ok := yamlutil.Field(spanNode, "events"); ok && nestedEvents.Kind == yaml.SequenceNode {
					for _, eventNode := range nestedEvents.Content {
						renameKey(source, eventNode, "event_name", "id", diags)
					}
				}
			}
		}
	}
}

// renameKey rewrites a mapping key in place from -> to, provided to is not
// already present (canonical spelling wins if both appear). Reports a
// diag.Normalization when a rewrite happens.
func renameKey(source string, mapping *yaml.Node, from, to string, diags *diag.Set) {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return
	}
	if _, hasCanonical := yamlutil.Field(mapping, to); hasCanonical {
		return
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == from {
			loc := yamlutil.Location(source, mapping.Content[i])
			mapping.Content[i].Value = to
			diags.Add(diag.NewNormalization(loc, fmt.Sprintf("normalized field %q to %q", from, to)))
			return
		}
	}
}
