package catalog_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/otel-weaver/catalog"
	"github.com/f5/otel-weaver/semconv"
)

func stringAttr(id string) catalog.AttributeRecord {
	return catalog.AttributeRecord{
		ID:               id,
		Type:             semconv.AttributeType{Primitive: semconv.TypeString},
		Brief:            "brief",
		RequirementLevel: semconv.RequirementLevel{Kind: semconv.RequirementRequired},
	}
}

func TestInsertAttributeIsIdempotent(t *testing.T) {
	b := catalog.New()
	idx1, err := b.InsertAttribute(stringAttr("http.method"))
	require.NoError(t, err)
	idx2, err := b.InsertAttribute(stringAttr("http.method"))
	require.NoError(t, err)
	assert.Equal(t, idx1, idx2)
	assert.Len(t, b.Attributes(), 1)
}

func TestInsertAttributeDistinguishesDifferentRecords(t *testing.T) {
	b := catalog.New()
	idx1, err := b.InsertAttribute(stringAttr("http.method"))
	require.NoError(t, err)
	idx2, err := b.InsertAttribute(stringAttr("http.route"))
	require.NoError(t, err)
	assert.NotEqual(t, idx1, idx2)
	assert.Len(t, b.Attributes(), 2)
}

func TestInsertAttributeAssignsFirstInsertionOrder(t *testing.T) {
	b := catalog.New()
	idxB, err := b.InsertAttribute(stringAttr("b"))
	require.NoError(t, err)
	idxA, err := b.InsertAttribute(stringAttr("a"))
	require.NoError(t, err)
	assert.Equal(t, 0, idxB)
	assert.Equal(t, 1, idxA)
}

func TestAttributeRecordJSONShapePrimitive(t *testing.T) {
	raw, err := json.Marshal(stringAttr("http.method"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "string", decoded["type"])
	assert.Equal(t, "required", decoded["requirement_level"])
}

func TestAttributeRecordJSONShapeEnum(t *testing.T) {
	rec := catalog.AttributeRecord{
		ID: "os.type",
		Type: semconv.AttributeType{Enum: &semconv.EnumType{
			AllowCustomValues: false,
			Members: []semconv.EnumMember{
				{ID: "linux", Value: "linux"},
				{ID: "windows", Value: "windows"},
			},
		}},
		RequirementLevel: semconv.RequirementLevel{Kind: semconv.RequirementConditionallyRequired, Text: "when known"},
	}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	typeObj, ok := decoded["type"].(map[string]any)
	require.True(t, ok, "type must serialize as an object for the enum variant, got: %s", raw)
	assert.Equal(t, false, typeObj["allow_custom_values"])
	members, ok := typeObj["members"].([]any)
	require.True(t, ok)
	assert.Len(t, members, 2)

	reqLevel, ok := decoded["requirement_level"].(map[string]any)
	require.True(t, ok, "requirement_level must serialize as an object when explanatory text is set, got: %s", raw)
	assert.Equal(t, "when known", reqLevel["conditionally_required"])

	var roundtripped catalog.AttributeRecord
	require.NoError(t, json.Unmarshal(raw, &roundtripped))
	assert.Equal(t, rec, roundtripped)
}

func TestInsertMetric(t *testing.T) {
	b := catalog.New()
	rec := catalog.MetricRecord{Name: "http.server.duration", Instrument: semconv.InstrumentHistogram, Unit: "ms"}
	idx1, err := b.InsertMetric(rec)
	require.NoError(t, err)
	idx2, err := b.InsertMetric(rec)
	require.NoError(t, err)
	assert.Equal(t, idx1, idx2)
	assert.Len(t, b.Metrics(), 1)
}
