// Package catalog implements the Catalog Builder (component F):
// deduplicating attribute and metric records encountered during
// resolution into two stable, first-insertion-ordered indices.
package catalog

import (
	"github.com/f5/otel-weaver/semconv"
)

// AttributeRecord is the canonical, catalog-deduplicated form of an
// attribute. Per-use overrides are not part of it — they live on the
// use-site entry, not here.
type AttributeRecord struct {
	ID               string                   `json:"id"`
	Type             semconv.AttributeType    `json:"type"`
	Brief            string                   `json:"brief,omitempty"`
	Note             string                   `json:"note,omitempty"`
	Examples         any                      `json:"examples,omitempty"`
	RequirementLevel semconv.RequirementLevel `json:"requirement_level"`
	Tag              string                   `json:"tag,omitempty"`
	Tags             map[string]string        `json:"tags,omitempty"`
	Stability        semconv.Stability        `json:"stability,omitempty"`
	Deprecated       string                   `json:"deprecated,omitempty"`
	SamplingRelevant *bool                    `json:"sampling_relevant,omitempty"`
	Value            any                      `json:"value,omitempty"`
}

// MetricRecord is the canonical, catalog-deduplicated form of a metric
// (or metric group member) definition, excluding its use-site attribute
// attachments.
type MetricRecord struct {
	Name       string             `json:"name"`
	Brief      string             `json:"brief,omitempty"`
	Note       string             `json:"note,omitempty"`
	Instrument semconv.Instrument `json:"instrument,omitempty"`
	Unit       string             `json:"unit,omitempty"`
}
