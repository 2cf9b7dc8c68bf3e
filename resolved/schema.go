// Package resolved defines the Resolved Schema output data model: the
// single, self-contained, canonical representation produced by a
// resolution run, read-only to the template engine and serializable to
// JSON/YAML.
package resolved

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/f5/otel-weaver/catalog"
	"github.com/f5/otel-weaver/semconv"
	"github.com/f5/otel-weaver/telemetryschema"
)

// AttributeUse is a catalog reference plus any per-use overrides: an
// index into the resolved catalog paired with optional field overrides
// for this particular use site.
type AttributeUse struct {
	Index     int        `json:"index"`
	Overrides *Overrides `json:"overrides,omitempty"`
}

// Overrides carries the per-use override fields that are layered onto a
// catalog attribute's definition, without becoming part of the canonical
// record itself.
type Overrides struct {
	Brief            string                    `json:"brief,omitempty"`
	Note             string                    `json:"note,omitempty"`
	Examples         any                       `json:"examples,omitempty"`
	RequirementLevel *semconv.RequirementLevel `json:"requirement_level,omitempty"`
	Tag              string                    `json:"tag,omitempty"`
	Tags             map[string]string         `json:"tags,omitempty"`
	Value            any                       `json:"value,omitempty"`
}

// Group is one semantic-convention group in the `registries` section,
// its attribute list expressed as catalog indices.
type Group struct {
	ID         string           `json:"id"`
	Kind       semconv.GroupKind `json:"kind"`
	Attributes []AttributeUse   `json:"attributes"`
}

// Registry is one input registry's groups, in declaration order.
type Registry struct {
	URL    string  `json:"url"`
	Groups []Group `json:"groups"`
}

// Resource is the application's resource attribute list.
type Resource struct {
	Attributes []AttributeUse `json:"attributes"`
}

// InstrumentationLibrary is the `instrumentation_library` section.
type InstrumentationLibrary struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// Metric is a fully-resolved metric entry.
type Metric struct {
	Index      int            `json:"index"`
	Attributes []AttributeUse `json:"attributes"`
}

// MetricGroup is a fully-resolved metric-group entry.
type MetricGroup struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Metrics    []string       `json:"metrics,omitempty"`
	Attributes []AttributeUse `json:"attributes"`
}

// ResourceMetrics is the `resource_metrics` output section.
type ResourceMetrics struct {
	Metrics      []Metric      `json:"metrics"`
	MetricGroups []MetricGroup `json:"metric_groups"`
}

// Event is a fully-resolved event entry, used both at top level and nested
// under a span.
type Event struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Brief      string         `json:"brief,omitempty"`
	Attributes []AttributeUse `json:"attributes"`
}

// ResourceEvents is the `resource_events` output section.
type ResourceEvents struct {
	Events []Event `json:"events"`
}

// Link is a fully-resolved span link.
type Link struct {
	Brief      string         `json:"brief,omitempty"`
	Attributes []AttributeUse `json:"attributes"`
}

// Span is a fully-resolved span entry.
type Span struct {
	ID         string           `json:"id"`
	Name       string           `json:"name,omitempty"`
	SpanKind   semconv.SpanKind `json:"span_kind,omitempty"`
	Brief      string           `json:"brief,omitempty"`
	Attributes []AttributeUse   `json:"attributes"`
	Events     []Event          `json:"events"`
	Links      []Link           `json:"links"`
}

// ResourceSpans is the `resource_spans` output section.
type ResourceSpans struct {
	Spans []Span `json:"spans"`
}

// Catalog is the two deduplicated record sets, in first-insertion order.
type Catalog struct {
	Attributes []catalog.AttributeRecord `json:"attributes"`
	Metrics    []catalog.MetricRecord    `json:"metrics"`
}

// Versions is the `versions` section, keyed by semantic-version string.
// Its MarshalJSON always emits keys in ascending semantic-version order,
// since map iteration order is otherwise undefined and ordinary
// encoding/json serialization of a map falls back to lexicographic order.
type Versions map[string]telemetryschema.VersionEntry

// MarshalJSON writes v as a JSON object with keys in ascending semantic
// version order. Keys that fail to parse as a semantic version sort after
// all valid ones, in lexicographic order among themselves.
func (v Versions) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		vi, erri := semver.NewVersion(keys[i])
		vj, errj := semver.NewVersion(keys[j])
		switch {
		case erri != nil && errj != nil:
			return keys[i] < keys[j]
		case erri != nil:
			return false
		case errj != nil:
			return true
		default:
			return vi.LessThan(vj)
		}
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(v[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a `versions` object into v. Key order in the input
// is not preserved; MarshalJSON re-derives ascending semver order on
// output regardless of how v was constructed.
func (v *Versions) UnmarshalJSON(data []byte) error {
	m := make(map[string]telemetryschema.VersionEntry)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*v = m
	return nil
}

// Schema is the Resolved Schema: the single owned output value of a
// resolution run.
type Schema struct {
	FileFormat string `json:"file_format"`
	SchemaURL  string `json:"schema_url,omitempty"`

	Catalog                Catalog                            `json:"catalog"`
	Registries             []Registry                         `json:"registries"`
	Resource               Resource                           `json:"resource"`
	InstrumentationLibrary InstrumentationLibrary              `json:"instrumentation_library"`
	ResourceMetrics        ResourceMetrics                     `json:"resource_metrics"`
	ResourceEvents         ResourceEvents                      `json:"resource_events"`
	ResourceSpans          ResourceSpans                       `json:"resource_spans"`
	Versions               Versions                           `json:"versions,omitempty"`
}
