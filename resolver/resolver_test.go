package resolver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/otel-weaver/catalog"
	"github.com/f5/otel-weaver/diag"
	"github.com/f5/otel-weaver/resolver"
	"github.com/f5/otel-weaver/semconv"
	"github.com/f5/otel-weaver/sourcecache"
	"github.com/f5/otel-weaver/weaverconfig"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const serverRegistry = `
groups:
  - id: registry.server
    type: attribute_group
    brief: server attrs
    attributes:
      - id: server.address
        type: string
        brief: server address
        requirement_level: required
      - id: server.port
        type: int
        brief: server port
        requirement_level: recommended
`

const appSchema = `
file_format: "1.1.0"
schema_url: https://example.com/schemas/app/1.0.0
semantic_conventions:
  - url: ./server.yaml
schema:
  resource_spans:
    spans:
      - id: http.server.request
        span_kind: server
        attributes:
          - attribute_group_ref: registry.server
`

func TestResolveSchemaS1BasicInheritance(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "server.yaml", serverRegistry)
	schemaPath := writeFile(t, dir, "app.yaml", appSchema)

	cache := sourcecache.New(weaverconfig.Default())
	out, diags := resolver.ResolveSchema(context.Background(), schemaPath, cache, weaverconfig.Default())
	require.False(t, diags.Fatal(), diags.Error())
	require.NotNil(t, out)

	require.Len(t, out.ResourceSpans.Spans, 1)
	span := out.ResourceSpans.Spans[0]
	assert.Equal(t, "http.server.request", span.ID)
	require.Len(t, span.Attributes, 2)

	ids := make([]string, len(span.Attributes))
	for i, use := range span.Attributes {
		ids[i] = out.Catalog.Attributes[use.Index].ID
	}
	assert.ElementsMatch(t, []string{"server.address", "server.port"}, ids)
}

const extendsRegistry = `
groups:
  - id: registry.base
    type: attribute_group
    brief: base
    attributes:
      - id: base.field
        type: string
        brief: base field
        requirement_level: required
  - id: registry.child
    type: attribute_group
    brief: child
    extends: registry.base
    attributes:
      - id: child.field
        type: string
        brief: child field
        requirement_level: recommended
`

func TestResolveRegistriesExtends(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "extends.yaml", extendsRegistry)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg := weaverconfig.Default()
	reg, pdiags := semconv.Parse(path, data, cfg)
	require.False(t, pdiags.Fatal())

	regSet, diags := resolver.ResolveRegistries(context.Background(), []*semconv.Registry{reg}, cfg)
	require.False(t, diags.Fatal(), diags.Error())

	child := regSet.Groups["registry.child"]
	require.NotNil(t, child)
	ids := make([]string, len(child.Effective))
	for i, a := range child.Effective {
		ids[i] = a.ID
	}
	assert.Contains(t, ids, "base.field")
	assert.Contains(t, ids, "child.field")
}

const cyclicRegistry = `
groups:
  - id: a
    type: attribute_group
    brief: a
    extends: b
  - id: b
    type: attribute_group
    brief: b
    extends: a
`

const urlSchemeRegistry = `
groups:
  - id: registry.url
    type: attribute_group
    brief: url attrs
    attributes:
      - id: url.scheme
        type: string
        brief: url scheme
        requirement_level: recommended
`

const overrideSchema = `
file_format: "1.1.0"
schema_url: https://example.com/schemas/app/1.0.0
semantic_conventions:
  - url: ./url.yaml
schema:
  resource_spans:
    spans:
      - id: http.client.request
        span_kind: client
        attributes:
          - ref: url.scheme
            requirement_level: required
`

func TestResolveSchemaS2OverridePrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "url.yaml", urlSchemeRegistry)
	schemaPath := writeFile(t, dir, "app.yaml", overrideSchema)

	cache := sourcecache.New(weaverconfig.Default())
	out, diags := resolver.ResolveSchema(context.Background(), schemaPath, cache, weaverconfig.Default())
	require.False(t, diags.Fatal(), diags.Error())
	require.NotNil(t, out)

	require.Len(t, out.ResourceSpans.Spans, 1)
	require.Len(t, out.ResourceSpans.Spans[0].Attributes, 1)
	use := out.ResourceSpans.Spans[0].Attributes[0]

	catalogEntry := out.Catalog.Attributes[use.Index]
	assert.Equal(t, "url.scheme", catalogEntry.ID)
	assert.Equal(t, semconv.RequirementRecommended, catalogEntry.RequirementLevel.Kind)

	require.NotNil(t, use.Overrides)
	require.NotNil(t, use.Overrides.RequirementLevel)
	assert.Equal(t, semconv.RequirementRequired, use.Overrides.RequirementLevel.Kind)
}

const osTypeRegistry = `
groups:
  - id: registry.os
    type: attribute_group
    brief: os attrs
    attributes:
      - id: os.type
        type:
          allow_custom_values: false
          members:
            - id: windows
              value: windows
            - id: linux
              value: linux
            - id: darwin
              value: darwin
        brief: os type
        requirement_level: required
`

const closedEnumSchema = `
file_format: "1.1.0"
schema_url: https://example.com/schemas/app/1.0.0
semantic_conventions:
  - url: ./os.yaml
schema:
  resource_spans:
    spans:
      - id: process.start
        span_kind: internal
        attributes:
          - attribute_group_ref: registry.os
`

const typeOverrideSchema = `
file_format: "1.1.0"
schema_url: https://example.com/schemas/app/1.0.0
semantic_conventions:
  - url: ./os.yaml
schema:
  resource_spans:
    spans:
      - id: process.start
        span_kind: internal
        attributes:
          - ref: os.type
            type: string
`

func TestResolveSchemaS3EnumClosed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "os.yaml", osTypeRegistry)
	schemaPath := writeFile(t, dir, "app.yaml", closedEnumSchema)

	cache := sourcecache.New(weaverconfig.Default())
	out, diags := resolver.ResolveSchema(context.Background(), schemaPath, cache, weaverconfig.Default())
	require.False(t, diags.Fatal(), diags.Error())
	require.NotNil(t, out)

	var osType *catalog.AttributeRecord
	for i := range out.Catalog.Attributes {
		if out.Catalog.Attributes[i].ID == "os.type" {
			osType = &out.Catalog.Attributes[i]
		}
	}
	require.NotNil(t, osType)
	require.NotNil(t, osType.Type.Enum)
	assert.False(t, osType.Type.Enum.AllowCustomValues)

	ids := make([]string, len(osType.Type.Enum.Members))
	for i, m := range osType.Type.Enum.Members {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"windows", "linux", "darwin"}, ids)
}

func TestResolveSchemaS3TypeOverrideIsParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "os.yaml", osTypeRegistry)
	schemaPath := writeFile(t, dir, "app.yaml", typeOverrideSchema)

	cache := sourcecache.New(weaverconfig.Default())
	_, diags := resolver.ResolveSchema(context.Background(), schemaPath, cache, weaverconfig.Default())
	require.True(t, diags.Fatal())

	var found bool
	for _, d := range diags.All() {
		if d.Kind() == diag.KindParseError {
			found = true
		}
	}
	assert.True(t, found, "expected a ParseError diagnostic, got: %s", diags.Error())
}

const parentResourceSchema = `
file_format: "1.1.0"
schema_url: https://example.com/schemas/parent/1.0.0
schema:
  resource:
    attributes:
      - id: service.name
        type: string
        brief: service name
        requirement_level: required
        value: my-service
`

const childResourceSchema = `
file_format: "1.1.0"
parent_schema_url: ./parent.yaml
schema_url: https://example.com/schemas/app/1.1.0
schema:
  resource:
    attributes:
      - id: service.version
        type: string
        brief: service version
        requirement_level: required
        value: 1.1.1
`

func TestResolveSchemaS4ParentSchemaInheritance(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "parent.yaml", parentResourceSchema)
	schemaPath := writeFile(t, dir, "child.yaml", childResourceSchema)

	cache := sourcecache.New(weaverconfig.Default())
	out, diags := resolver.ResolveSchema(context.Background(), schemaPath, cache, weaverconfig.Default())
	require.False(t, diags.Fatal(), diags.Error())
	require.NotNil(t, out)

	ids := make([]string, len(out.Resource.Attributes))
	for i, use := range out.Resource.Attributes {
		ids[i] = out.Catalog.Attributes[use.Index].ID
	}
	assert.Contains(t, ids, "service.name")
	assert.Contains(t, ids, "service.version")
}

const ambiguousRegistryA = `
groups:
  - id: registry.a
    type: attribute_group
    brief: registry a
    attributes:
      - id: environment
        type: string
        brief: environment (a)
        requirement_level: required
`

const ambiguousRegistryB = `
groups:
  - id: registry.b
    type: attribute_group
    brief: registry b
    attributes:
      - id: environment
        type: string
        brief: environment (b)
        requirement_level: required
`

const ambiguousSchema = `
file_format: "1.1.0"
schema_url: https://example.com/schemas/app/1.0.0
semantic_conventions:
  - url: ./a.yaml
  - url: ./b.yaml
schema:
  resource:
    attributes:
      - ref: environment
`

func TestResolveSchemaS5AmbiguousAttribute(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", ambiguousRegistryA)
	writeFile(t, dir, "b.yaml", ambiguousRegistryB)
	schemaPath := writeFile(t, dir, "app.yaml", ambiguousSchema)

	cache := sourcecache.New(weaverconfig.Default())
	_, diags := resolver.ResolveSchema(context.Background(), schemaPath, cache, weaverconfig.Default())

	var found *diag.AmbiguousAttribute
	for _, d := range diags.All() {
		if amb, ok := d.(*diag.AmbiguousAttribute); ok {
			found = amb
		}
	}
	require.NotNil(t, found, "expected an AmbiguousAttribute diagnostic, got: %s", diags.Error())
	assert.Equal(t, "environment", found.ID)
	assert.ElementsMatch(t, []string{"environment", "environment"}, found.Candidates)
}

const crossRegistryA = `
groups:
  - id: registry.shared
    type: attribute_group
    brief: shared (a)
    attributes:
      - id: shared.field
        type: string
        brief: shared field (a)
        requirement_level: required
`

const crossRegistryB = `
groups:
  - id: registry.shared
    type: attribute_group
    brief: shared (b)
    attributes:
      - id: shared.field
        type: string
        brief: shared field (b)
        requirement_level: recommended
`

func TestResolveRegistriesCrossRegistryGroupIDCollisionIsFatalByDefault(t *testing.T) {
	dir := t.TempDir()
	pathA := writeFile(t, dir, "a.yaml", crossRegistryA)
	pathB := writeFile(t, dir, "b.yaml", crossRegistryB)

	cfg := weaverconfig.Default()
	dataA, err := os.ReadFile(pathA)
	require.NoError(t, err)
	regA, pdiags := semconv.Parse(pathA, dataA, cfg)
	require.False(t, pdiags.Fatal())
	dataB, err := os.ReadFile(pathB)
	require.NoError(t, err)
	regB, pdiags := semconv.Parse(pathB, dataB, cfg)
	require.False(t, pdiags.Fatal())

	_, diags := resolver.ResolveRegistries(context.Background(), []*semconv.Registry{regA, regB}, cfg)
	require.True(t, diags.Fatal())

	var found bool
	for _, d := range diags.All() {
		if d.Kind() == diag.KindParseError {
			found = true
		}
	}
	assert.True(t, found, "expected a ParseError diagnostic, got: %s", diags.Error())
}

func TestResolveRegistriesCrossRegistryGroupIDCollisionAllowedWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	pathA := writeFile(t, dir, "a.yaml", crossRegistryA)
	pathB := writeFile(t, dir, "b.yaml", crossRegistryB)

	cfg := weaverconfig.Default()
	cfg.AllowCrossRegistryGroupIDMerge = true

	dataA, err := os.ReadFile(pathA)
	require.NoError(t, err)
	regA, pdiags := semconv.Parse(pathA, dataA, cfg)
	require.False(t, pdiags.Fatal())
	dataB, err := os.ReadFile(pathB)
	require.NoError(t, err)
	regB, pdiags := semconv.Parse(pathB, dataB, cfg)
	require.False(t, pdiags.Fatal())

	regSet, diags := resolver.ResolveRegistries(context.Background(), []*semconv.Registry{regA, regB}, cfg)
	require.False(t, diags.Fatal(), diags.Error())
	require.NotNil(t, regSet.Groups["registry.shared"])
}

func TestResolveRegistriesExtendsCycle(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cycle.yaml", cyclicRegistry)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	cfg := weaverconfig.Default()
	reg, pdiags := semconv.Parse(path, data, cfg)
	require.False(t, pdiags.Fatal())

	_, diags := resolver.ResolveRegistries(context.Background(), []*semconv.Registry{reg}, cfg)
	require.True(t, diags.Fatal())
}
