package semconv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/otel-weaver/semconv"
	"github.com/f5/otel-weaver/weaverconfig"
)

const basicRegistry = `
groups:
  - id: registry.http
    type: attribute_group
    brief: HTTP attributes
    prefix: http
    attributes:
      - id: method
        type: string
        brief: HTTP method
        requirement_level: required
      - id: status_code
        type: int
        brief: HTTP status code
        requirement_level:
          conditionally_required: when the response completed
      - id: flavor
        type:
          members:
            - id: http_1_1
              value: "1.1"
            - id: http_2
              value: "2"
        brief: HTTP flavor
        requirement_level: recommended
`

func TestParseBasicRegistry(t *testing.T) {
	reg, diags := semconv.Parse("registry.yaml", []byte(basicRegistry), weaverconfig.Default())
	require.False(t, diags.Fatal(), diags.Error())
	require.Len(t, reg.Groups, 1)

	g := reg.Groups[0]
	assert.Equal(t, semconv.KindAttributeGroup, g.Kind)
	assert.Equal(t, "http", g.Prefix)
	require.Len(t, g.Attributes, 3)

	method := g.Attributes[0]
	assert.True(t, method.IsDefinition())
	assert.Equal(t, semconv.TypeString, method.Type.Primitive)
	assert.Equal(t, semconv.RequirementRequired, method.RequirementLevel.Kind)

	status := g.Attributes[1]
	assert.Equal(t, semconv.RequirementConditionallyRequired, status.RequirementLevel.Kind)
	assert.NotEmpty(t, status.RequirementLevel.Text)
	assert.True(t, status.RequirementLevel.Valid())

	flavor := g.Attributes[2]
	require.NotNil(t, flavor.Type.Enum)
	assert.Len(t, flavor.Type.Enum.Members, 2)
	assert.True(t, flavor.Type.Enum.AllowCustomValues)
}

func TestParseRejectsIDAndRefTogether(t *testing.T) {
	doc := `
groups:
  - id: bad.group
    type: attribute_group
    brief: bad
    attributes:
      - id: method
        ref: http.method
        type: string
`
	_, diags := semconv.Parse("bad.yaml", []byte(doc), weaverconfig.Default())
	require.True(t, diags.Fatal())
}

func TestParseRejectsUnknownFieldWhenStrict(t *testing.T) {
	doc := `
groups:
  - id: bad.group
    type: attribute_group
    brief: bad
    unexpected_field: oops
`
	cfg := weaverconfig.Default()
	cfg.StrictUnknownFields = true
	_, diags := semconv.Parse("bad.yaml", []byte(doc), cfg)
	require.True(t, diags.Fatal())
}

func TestParseAllowsUnknownFieldWhenNotStrict(t *testing.T) {
	doc := `
groups:
  - id: ok.group
    type: attribute_group
    brief: ok
    unexpected_field: oops
`
	cfg := weaverconfig.Default()
	cfg.StrictUnknownFields = false
	reg, diags := semconv.Parse("ok.yaml", []byte(doc), cfg)
	require.False(t, diags.Fatal())
	require.Len(t, reg.Groups, 1)
}

func TestParseReferenceAttribute(t *testing.T) {
	doc := `
groups:
  - id: registry.server
    type: attribute_group
    brief: server attrs
    attributes:
      - ref: http.method
        requirement_level: required
`
	reg, diags := semconv.Parse("registry.yaml", []byte(doc), weaverconfig.Default())
	require.False(t, diags.Fatal(), diags.Error())
	a := reg.Groups[0].Attributes[0]
	kind, id := a.Reference()
	assert.Equal(t, semconv.ReferenceAttribute, kind)
	assert.Equal(t, "http.method", id)
	assert.False(t, a.IsDefinition())
}

func TestParseDuplicateGroupID(t *testing.T) {
	doc := `
groups:
  - id: dup
    type: attribute_group
    brief: one
  - id: dup
    type: attribute_group
    brief: two
`
	reg, diags := semconv.Parse("dup.yaml", []byte(doc), weaverconfig.Default())
	require.False(t, diags.Empty())
	require.Len(t, reg.Groups, 1, "the second occurrence of a duplicate id is dropped")
}
