// Package telemetryschema implements the Telemetry-Schema Parser
// (component C): decoding an application schema document into a typed,
// in-memory tree isomorphic to the wire format, leaving absent fields
// unset so that parent-schema inheritance can fill them later.
package telemetryschema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/f5/otel-weaver/diag"
	"github.com/f5/otel-weaver/semconv"
)

// AttributeRef is one entry of an attribute list anywhere in the schema:
// resource attributes, a metric's attributes, a span's attributes, an
// event's attributes, etc. It reuses semconv.Attribute's tagged-union
// shape since the reference spellings and override fields are identical.
type AttributeRef = semconv.Attribute

// SemanticConventionImport is one entry of the top-level
// `semantic_conventions` list.
type SemanticConventionImport struct {
	URL string `yaml:"url"`
}

// Metric is one entry of `resource_metrics.metrics`.
type Metric struct {
	Ref        string               `yaml:"ref,omitempty"`
	Name       string               `yaml:"name,omitempty"`
	Brief      string               `yaml:"brief,omitempty"`
	Note       string               `yaml:"note,omitempty"`
	Instrument semconv.Instrument   `yaml:"instrument,omitempty"`
	Unit       string               `yaml:"unit,omitempty"`
	Attributes []AttributeRef       `yaml:"attributes,omitempty"`
	Location   diag.Location        `yaml:"-"`
}

// MetricGroup is one entry of `resource_metrics.metric_groups` (accepting
// the historical `metrics_group` spelling at parse time, normalized here).
type MetricGroup struct {
	ID         string         `yaml:"id,omitempty"`
	Name       string         `yaml:"name,omitempty"`
	Metrics    []string       `yaml:"metrics,omitempty"`
	Attributes []AttributeRef `yaml:"attributes,omitempty"`
	Location   diag.Location  `yaml:"-"`
}

// ResourceMetrics is the `resource_metrics` section.
type ResourceMetrics struct {
	Attributes   []AttributeRef `yaml:"attributes,omitempty"`
	Metrics      []Metric       `yaml:"metrics,omitempty"`
	MetricGroups []MetricGroup  `yaml:"metric_groups,omitempty"`
}

// Event is one entry of `resource_events.events`, and also used for a
// span's nested events (accepting the historical `event_name` spelling in
// place of `id`, normalized here).
type Event struct {
	ID         string         `yaml:"id,omitempty"`
	Name       string         `yaml:"name,omitempty"`
	Brief      string         `yaml:"brief,omitempty"`
	Attributes []AttributeRef `yaml:"attributes,omitempty"`
	Location   diag.Location  `yaml:"-"`
}

// ResourceEvents is the `resource_events` section.
type ResourceEvents struct {
	Events []Event `yaml:"events,omitempty"`
}

// Link is one entry of a span's `links`.
type Link struct {
	Brief      string         `yaml:"brief,omitempty"`
	Attributes []AttributeRef `yaml:"attributes,omitempty"`
}

// Span is one entry of `resource_spans.spans` (accepting the historical
// `span_name` spelling in place of `id`, normalized here).
type Span struct {
	ID         string         `yaml:"id,omitempty"`
	Name       string         `yaml:"name,omitempty"`
	SpanKind   semconv.SpanKind `yaml:"span_kind,omitempty"`
	Brief      string         `yaml:"brief,omitempty"`
	Attributes []AttributeRef `yaml:"attributes,omitempty"`
	Events     []Event        `yaml:"events,omitempty"`
	Links      []Link         `yaml:"links,omitempty"`
	Location   diag.Location  `yaml:"-"`
}

// ResourceSpans is the `resource_spans` section.
type ResourceSpans struct {
	Spans []Span `yaml:"spans,omitempty"`
}

// InstrumentationLibrary is the `instrumentation_library` section.
type InstrumentationLibrary struct {
	Name    string `yaml:"name,omitempty"`
	Version string `yaml:"version,omitempty"`
}

// Resource is the `resource` section.
type Resource struct {
	Attributes []AttributeRef `yaml:"attributes,omitempty"`
}

// VersionChangeKind is the tag of a single versions-map change descriptor.
type VersionChangeKind string

const (
	ChangeRenameAttributes VersionChangeKind = "rename_attributes"
	ChangeRenameMetrics    VersionChangeKind = "rename_metrics"
)

// VersionChange is one change descriptor within a version entry's change
// list: a single-key mapping, the key naming the change kind and the value
// holding that kind's fields (`{rename_attributes: {attribute_map: {...}}}`
// or `{rename_metrics: {apply_to_metrics: [...]}}`).
type VersionChange struct {
	Kind           VersionChangeKind `yaml:"-" json:"-"`
	AttributeMap   map[string]string `yaml:"attribute_map,omitempty" json:"attribute_map,omitempty"`
	ApplyToMetrics []string          `yaml:"apply_to_metrics,omitempty" json:"apply_to_metrics,omitempty"`
}

type versionChangeBody struct {
	AttributeMap   map[string]string `yaml:"attribute_map,omitempty" json:"attribute_map,omitempty"`
	ApplyToMetrics []string          `yaml:"apply_to_metrics,omitempty" json:"apply_to_metrics,omitempty"`
}

// UnmarshalYAML decodes the single-key tagged-union mapping into Kind plus
// that kind's fields.
func (c *VersionChange) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: version change must be a single-key mapping", node.Line)
	}
	key := node.Content[0].Value
	var body versionChangeBody
	if err := node.Content[1].Decode(&body); err != nil {
		return err
	}
	switch VersionChangeKind(key) {
	case ChangeRenameAttributes, ChangeRenameMetrics:
		*c = VersionChange{Kind: VersionChangeKind(key), AttributeMap: body.AttributeMap, ApplyToMetrics: body.ApplyToMetrics}
		return nil
	default:
		return fmt.Errorf("line %d: unknown version change kind %q", node.Line, key)
	}
}

// MarshalYAML re-wraps Kind and its fields as the single-key mapping
// UnmarshalYAML expects.
func (c VersionChange) MarshalYAML() (any, error) {
	body := versionChangeBody{AttributeMap: c.AttributeMap, ApplyToMetrics: c.ApplyToMetrics}
	return map[VersionChangeKind]versionChangeBody{c.Kind: body}, nil
}

// MarshalJSON is MarshalYAML's JSON counterpart.
func (c VersionChange) MarshalJSON() ([]byte, error) {
	body := versionChangeBody{AttributeMap: c.AttributeMap, ApplyToMetrics: c.ApplyToMetrics}
	return json.Marshal(map[VersionChangeKind]versionChangeBody{c.Kind: body})
}

// UnmarshalJSON is UnmarshalYAML's JSON counterpart, for round-tripping a
// previously marshaled Resolved Schema.
func (c *VersionChange) UnmarshalJSON(data []byte) error {
	var raw map[string]versionChangeBody
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("version change object must have exactly one key")
	}
	for key, body := range raw {
		switch VersionChangeKind(key) {
		case ChangeRenameAttributes, ChangeRenameMetrics:
			*c = VersionChange{Kind: VersionChangeKind(key), AttributeMap: body.AttributeMap, ApplyToMetrics: body.ApplyToMetrics}
		default:
			return fmt.Errorf("unknown version change kind %q", key)
		}
	}
	return nil
}

// VersionChangeSet wraps a category's ordered change list under the
// `changes` key, the shape the wire format actually uses:
//
//	versions:
//	  1.1.0:
//	    metrics:
//	      changes:
//	        - rename_metrics: {...}
type VersionChangeSet struct {
	Changes []VersionChange `yaml:"changes,omitempty" json:"changes,omitempty"`
}

// VersionEntry is the value of one key in the top-level `versions` map:
// ordered change lists scoped to metrics/logs/spans/resources, each
// wrapped in a VersionChangeSet.
type VersionEntry struct {
	Metrics   *VersionChangeSet `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	Logs      *VersionChangeSet `yaml:"logs,omitempty" json:"logs,omitempty"`
	Spans     *VersionChangeSet `yaml:"spans,omitempty" json:"spans,omitempty"`
	Resources *VersionChangeSet `yaml:"resources,omitempty" json:"resources,omitempty"`
}

// SchemaBlock is the `schema` top-level section.
type SchemaBlock struct {
	Resource               *Resource               `yaml:"resource,omitempty"`
	InstrumentationLibrary *InstrumentationLibrary `yaml:"instrumentation_library,omitempty"`
	ResourceMetrics        *ResourceMetrics        `yaml:"resource_metrics,omitempty"`
	ResourceEvents         *ResourceEvents         `yaml:"resource_events,omitempty"`
	ResourceSpans          *ResourceSpans          `yaml:"resource_spans,omitempty"`
}

// Schema is a parsed application schema document.
type Schema struct {
	FileFormat          string                     `yaml:"file_format"`
	ParentSchemaURL      string                     `yaml:"parent_schema_url,omitempty"`
	SchemaURL            string                     `yaml:"schema_url,omitempty"`
	SemanticConventions  []SemanticConventionImport `yaml:"semantic_conventions,omitempty"`
	Schema               *SchemaBlock               `yaml:"schema,omitempty"`
	Versions             map[string]VersionEntry    `yaml:"versions,omitempty"`

	// Source is the absolute location this document was fetched from.
	Source string `yaml:"-"`
}
