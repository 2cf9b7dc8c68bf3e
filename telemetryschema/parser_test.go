package telemetryschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/otel-weaver/telemetryschema"
	"github.com/f5/otel-weaver/weaverconfig"
)

const basicSchema = `
file_format: "1.1.0"
schema_url: https://example.com/schemas/app/1.0.0
semantic_conventions:
  - url: https://example.com/registry/http.yaml
schema:
  resource:
    attributes:
      - ref: service.name
  resource_spans:
    spans:
      - span_name: http.server.request
        span_kind: server
        attributes:
          - ref: http.method
        events:
          - event_name: exception
`

func TestParseNormalizesHistoricalSpellings(t *testing.T) {
	s, diags := telemetryschema.Parse("app.yaml", []byte(basicSchema), weaverconfig.Default())
	require.False(t, diags.Fatal(), diags.Error())
	require.NotEmpty(t, diags.All(), "span_name/event_name normalization should be recorded")

	require.Len(t, s.Schema.ResourceSpans.Spans, 1)
	span := s.Schema.ResourceSpans.Spans[0]
	assert.Equal(t, "http.server.request", span.ID)
	require.Len(t, span.Events, 1)
	assert.Equal(t, "exception", span.Events[0].ID)
}

func TestParseLeavesAbsentFieldsUnset(t *testing.T) {
	doc := `
file_format: "1.1.0"
`
	s, diags := telemetryschema.Parse("app.yaml", []byte(doc), weaverconfig.Default())
	require.False(t, diags.Fatal())
	assert.Nil(t, s.Schema)
	assert.Empty(t, s.ParentSchemaURL)
}

func TestParseMetricsGroupAlias(t *testing.T) {
	doc := `
file_format: "1.1.0"
schema:
  resource_metrics:
    metrics_group:
      - id: http.client
        metrics: [http.client.duration]
`
	s, diags := telemetryschema.Parse("app.yaml", []byte(doc), weaverconfig.Default())
	require.False(t, diags.Fatal(), diags.Error())
	require.Len(t, s.Schema.ResourceMetrics.MetricGroups, 1)
	assert.Equal(t, "http.client", s.Schema.ResourceMetrics.MetricGroups[0].ID)
}
