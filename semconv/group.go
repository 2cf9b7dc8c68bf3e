package semconv

import "github.com/f5/otel-weaver/diag"

// GroupKind is the type tag of a semantic-convention group declaration.
type GroupKind string

const (
	KindAttributeGroup GroupKind = "attribute_group"
	KindMetric         GroupKind = "metric"
	KindMetricGroup    GroupKind = "metric_group"
	KindEvent          GroupKind = "event"
	KindSpan           GroupKind = "span"
	KindResource       GroupKind = "resource"
	KindScope          GroupKind = "scope"
)

// SpanKind mirrors the OpenTelemetry span kind vocabulary.
type SpanKind string

const (
	SpanKindClient      SpanKind = "client"
	SpanKindServer      SpanKind = "server"
	SpanKindProducer    SpanKind = "producer"
	SpanKindConsumer    SpanKind = "consumer"
	SpanKindInternal    SpanKind = "internal"
)

// Instrument is the OpenTelemetry metric instrument kind.
type Instrument string

const (
	InstrumentCounter          Instrument = "counter"
	InstrumentUpDownCounter    Instrument = "updowncounter"
	InstrumentHistogram        Instrument = "histogram"
	InstrumentGauge            Instrument = "gauge"
)

// Group is one semantic-convention group, as decoded from a registry's
// `groups` list.
type Group struct {
	ID         string      `yaml:"id"`
	Kind       GroupKind   `yaml:"type"`
	Brief      string      `yaml:"brief"`
	Note       string      `yaml:"note,omitempty"`
	Prefix     string      `yaml:"prefix,omitempty"`
	Extends    string      `yaml:"extends,omitempty"`
	Stability  Stability   `yaml:"stability,omitempty"`
	Deprecated string      `yaml:"deprecated,omitempty"`
	Attributes []Attribute `yaml:"attributes,omitempty"`

	// Metric-specific fields (Kind == KindMetric).
	MetricName string     `yaml:"metric_name,omitempty"`
	Instrument Instrument `yaml:"instrument,omitempty"`
	Unit       string     `yaml:"unit,omitempty"`

	// Event-specific fields (Kind == KindEvent).
	Name string `yaml:"name,omitempty"`

	// Span-specific fields (Kind == KindSpan).
	SpanKind SpanKind `yaml:"span_kind,omitempty"`
	Events   []string `yaml:"events,omitempty"`

	// Location is populated by the parser from the group mapping node's
	// position, for diagnostics provenance. Not part of the YAML shape.
	Location diag.Location `yaml:"-"`
}

// Registry is a parsed semantic-convention registry document: an ordered
// list of groups, plus the location it was loaded from.
type Registry struct {
	Groups []Group `yaml:"groups"`
	Source string  `yaml:"-"`
}

var validGroupKinds = map[GroupKind]bool{
	KindAttributeGroup: true, KindMetric: true, KindMetricGroup: true,
	KindEvent: true, KindSpan: true, KindResource: true, KindScope: true,
}

var validStabilities = map[Stability]bool{
	StabilityExperimental: true, StabilityStable: true, StabilityDeprecated: true,
}

var validInstruments = map[Instrument]bool{
	InstrumentCounter: true, InstrumentUpDownCounter: true,
	InstrumentHistogram: true, InstrumentGauge: true,
}
