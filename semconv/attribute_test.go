package semconv_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/otel-weaver/semconv"
)

func TestAttributeTypeJSONRoundTripPrimitive(t *testing.T) {
	in := semconv.AttributeType{Primitive: semconv.TypeString}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `"string"`, string(raw))

	var out semconv.AttributeType
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestAttributeTypeJSONRoundTripTemplate(t *testing.T) {
	in := semconv.AttributeType{Primitive: semconv.TypeString, Template: true}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `"template[string]"`, string(raw))

	var out semconv.AttributeType
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestAttributeTypeJSONRoundTripEnum(t *testing.T) {
	in := semconv.AttributeType{Enum: &semconv.EnumType{
		AllowCustomValues: true,
		Members: []semconv.EnumMember{
			{ID: "a", Value: "a"},
			{ID: "b", Value: "b"},
		},
	}}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out semconv.AttributeType
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestRequirementLevelJSONRoundTrip(t *testing.T) {
	cases := []semconv.RequirementLevel{
		{Kind: semconv.RequirementRequired},
		{Kind: semconv.RequirementOptIn},
		{Kind: semconv.RequirementRecommended},
		{Kind: semconv.RequirementRecommended, Text: "if available"},
		{Kind: semconv.RequirementConditionallyRequired, Text: "when known"},
	}
	for _, in := range cases {
		raw, err := json.Marshal(in)
		require.NoError(t, err)

		var out semconv.RequirementLevel
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, in, out)
	}
}

func TestAttributeValidateRejectsTypeOnReference(t *testing.T) {
	a := semconv.Attribute{
		Ref:  "os.type",
		Type: &semconv.AttributeType{Primitive: semconv.TypeString},
	}
	require.Error(t, a.Validate())
}

func TestAttributeValidateRequiresTypeOnDefinition(t *testing.T) {
	a := semconv.Attribute{ID: "os.type"}
	require.Error(t, a.Validate())
}
