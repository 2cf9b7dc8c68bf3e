package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/f5/otel-weaver/catalog"
	"github.com/f5/otel-weaver/diag"
	"github.com/f5/otel-weaver/internal/depgraph"
	"github.com/f5/otel-weaver/internal/logging"
	"github.com/f5/otel-weaver/resolved"
	"github.com/f5/otel-weaver/semconv"
	"github.com/f5/otel-weaver/sourcecache"
	"github.com/f5/otel-weaver/telemetryschema"
	"github.com/f5/otel-weaver/weaverconfig"
)

// ResolveSchema loads and fully resolves the application schema at
// location, including parent-schema inheritance and every imported
// semantic-convention registry, producing the Resolved Schema.
func ResolveSchema(ctx context.Context, location string, cache *sourcecache.Cache, cfg weaverconfig.Config) (*resolved.Schema, *diag.Set) {
	log := logging.From(ctx)
	log.Info("resolving schema", "location", location)

	builder := catalog.New()
	diags := diag.NewSet()
	graph := depgraph.New()
	s := resolveSchemaChain(ctx, location, location, graph, cache, builder, cfg, diags)
	for _, d := range diags.All() {
		log.V(1).Info("diagnostic", "kind", string(d.Kind()), "message", d.Error())
	}
	if s == nil {
		log.Error(fmt.Errorf("resolution aborted"), "schema resolution failed", "location", location)
		return nil, diags
	}
	s.Catalog = resolved.Catalog{Attributes: builder.Attributes(), Metrics: builder.Metrics()}
	log.Info("resolved schema", "location", location,
		"attributes", len(s.Catalog.Attributes), "metrics", len(s.Catalog.Metrics))
	return s, diags
}

// resolveSchemaChain resolves one schema document, first recursing into
// its parent (if any) sequentially, then layering this document's
// sections onto the parent's. graph accumulates one edge per
// parent_schema_url hop across the whole recursion, using the same
// cycle-detecting helper the registry resolver uses for `extends` chains,
// parameterized over schema locations instead of group ids. root is the
// location the chain started from, so the depth check covers every hop.
func resolveSchemaChain(ctx context.Context, location, root string, graph *depgraph.Graph, cache *sourcecache.Cache, builder *catalog.Builder, cfg weaverconfig.Config, diags *diag.Set) *resolved.Schema {
	loc := diag.Location{Source: location}

	doc, err := cache.Fetch(ctx, location)
	if err != nil {
		diags.Add(diag.NewParentFetchFailed(loc, location, err))
		return nil
	}

	schema, pdiags := telemetryschema.Parse(location, doc.Data, cfg)
	diags.Merge(pdiags)
	if schema == nil || pdiags.Fatal() {
		return nil
	}

	var parent *resolved.Schema
	if schema.ParentSchemaURL != "" {
		parentLoc := sourcecache.Resolve(schema.ParentSchemaURL, sourcecache.Dir(location))
		cycle, ok := graph.AddEdge(location, parentLoc)
		if !ok {
			diags.Add(diag.NewParentSchemaCycle(loc, cycle))
			return nil
		}
		if depth := len(graph.Chain(root)); depth > cfg.MaxInheritanceDepth {
			diags.Add(diag.NewParentSchemaTooDeep(loc, depth, cfg.MaxInheritanceDepth))
			return nil
		}
		parent = resolveSchemaChain(ctx, parentLoc, root, graph, cache, builder, cfg, diags)
	}

	regSet, err := loadRegistries(ctx, location, schema.SemanticConventions, cache, cfg, diags)
	if err != nil {
		diags.Add(diag.NewIoError(loc, err))
		return nil
	}
	idx := buildAttributeIndex(regSet)

	out := &resolved.Schema{
		FileFormat: schema.FileFormat,
		SchemaURL:  schema.SchemaURL,
	}

	out.Registries = resolveRegistriesSection(regSet, idx, builder, diags, loc)
	out.Resource = resolveResource(schema, parent, regSet, idx, builder, diags, loc)
	out.InstrumentationLibrary = resolveInstrumentationLibrary(schema, parent)
	out.ResourceMetrics = resolveResourceMetrics(schema, parent, regSet, idx, builder, diags, loc)
	out.ResourceEvents = resolveResourceEvents(schema, parent, regSet, idx, builder, diags, loc)
	out.ResourceSpans = resolveResourceSpans(schema, parent, regSet, idx, builder, diags, loc)
	out.Versions = resolveVersions(schema, parent, diags, loc)

	return out
}

func loadRegistries(ctx context.Context, schemaLoc string, imports []telemetryschema.SemanticConventionImport, cache *sourcecache.Cache, cfg weaverconfig.Config, diags *diag.Set) (*RegistrySet, error) {
	base := sourcecache.Dir(schemaLoc)
	registries := make([]*semconv.Registry, 0, len(imports))
	for _, imp := range imports {
		loc := sourcecache.Resolve(imp.URL, base)
		doc, err := cache.Fetch(ctx, loc)
		if err != nil {
			diags.Add(diag.NewParentFetchFailed(diag.Location{Source: loc}, loc, err))
			continue
		}
		reg, rdiags := semconv.Parse(loc, doc.Data, cfg)
		diags.Merge(rdiags)
		if reg != nil {
			registries = append(registries, reg)
		}
	}
	regSet, rdiags := ResolveRegistries(ctx, registries, cfg)
	diags.Merge(rdiags)
	return regSet, nil
}

// resolveResource layers this schema's resource attributes onto the
// parent's, the same additive merge the other resource_* sections use:
// an attribute the child redeclares overrides the parent's entry in
// place, everything else the parent declared is kept.
func resolveResource(schema *telemetryschema.Schema, parent *resolved.Schema, regSet *RegistrySet, idx attributeIndex, builder *catalog.Builder, diags *diag.Set, loc diag.Location) resolved.Resource {
	out := resolved.Resource{}
	if parent != nil {
		out.Attributes = append(out.Attributes, parent.Resource.Attributes...)
	}
	if schema.Schema == nil || schema.Schema.Resource == nil {
		return out
	}
	childAttrs := expandAttributeList(schema.Schema.Resource.Attributes, regSet, idx, builder, diags, loc)
	records := builder.Attributes()
	posByID := make(map[string]int, len(out.Attributes))
	for i, u := range out.Attributes {
		posByID[records[u.Index].ID] = i
	}
	for _, u := range childAttrs {
		id := records[u.Index].ID
		if pos, exists := posByID[id]; exists {
			out.Attributes[pos] = u
			continue
		}
		posByID[id] = len(out.Attributes)
		out.Attributes = append(out.Attributes, u)
	}
	return out
}

// resolveRegistriesSection reproduces the `registries` output section in
// registry load order, each group's attribute list expanded to catalog
// uses the same way a schema section's attribute list is: bare `ref:`
// entries have already been replaced by ResolveRegistries, while group-kind
// references (attribute_group_ref etc.) are spliced in here by
// expandAttributeList before every attribute is inserted into the catalog
// and the list is deduplicated.
func resolveRegistriesSection(regSet *RegistrySet, idx attributeIndex, builder *catalog.Builder, diags *diag.Set, loc diag.Location) []resolved.Registry {
	out := make([]resolved.Registry, 0, len(regSet.RegistryURLs))
	for _, url := range regSet.RegistryURLs {
		reg := resolved.Registry{URL: url}
		for _, gid := range regSet.ByRegistry[url] {
			mg, ok := regSet.Groups[gid]
			if !ok {
				continue
			}
			reg.Groups = append(reg.Groups, resolved.Group{
				ID:         mg.ID,
				Kind:       mg.Kind,
				Attributes: expandAttributeList(mg.Effective, regSet, idx, builder, diags, loc),
			})
		}
		out = append(out, reg)
	}
	return out
}

func resolveInstrumentationLibrary(schema *telemetryschema.Schema, parent *resolved.Schema) resolved.InstrumentationLibrary {
	if schema.Schema == nil || schema.Schema.InstrumentationLibrary == nil {
		if parent != nil {
			return parent.InstrumentationLibrary
		}
		return resolved.InstrumentationLibrary{}
	}
	return resolved.InstrumentationLibrary{
		Name:    schema.Schema.InstrumentationLibrary.Name,
		Version: schema.Schema.InstrumentationLibrary.Version,
	}
}

func findMetricGroupDef(name string, regSet *RegistrySet) (*MaterializedGroup, bool) {
	for _, mg := range regSet.Groups {
		if mg.Kind == semconv.KindMetric && mg.MetricName == name {
			return mg, true
		}
	}
	return nil, false
}

func resolveResourceMetrics(schema *telemetryschema.Schema, parent *resolved.Schema, regSet *RegistrySet, idx attributeIndex, builder *catalog.Builder, diags *diag.Set, loc diag.Location) resolved.ResourceMetrics {
	out := resolved.ResourceMetrics{}
	if parent != nil {
		out.Metrics = append(out.Metrics, parent.ResourceMetrics.Metrics...)
		out.MetricGroups = append(out.MetricGroups, parent.ResourceMetrics.MetricGroups...)
	}
	if schema.Schema == nil || schema.Schema.ResourceMetrics == nil {
		return out
	}

	byName := make(map[string]int)
	metricNames := make([]string, 0, len(schema.Schema.ResourceMetrics.Metrics))

	for _, m := range schema.Schema.ResourceMetrics.Metrics {
		name := m.Ref
		if name == "" {
			name = m.Name
		}
		var rm resolved.Metric
		if m.Ref != "" {
			def, ok := findMetricGroupDef(m.Ref, regSet)
			if !ok {
				diags.Add(diag.NewUnknownGroupRef(loc, "metric", m.Ref))
				continue
			}
			combined := append(append([]semconv.Attribute{}, m.Attributes...), def.Effective...)
			rec := catalog.MetricRecord{Name: def.MetricName, Brief: def.Brief, Note: def.Note, Instrument: def.Instrument, Unit: def.Unit}
			i, _ := builder.InsertMetric(rec)
			rm = resolved.Metric{Index: i, Attributes: expandAttributeList(combined, regSet, idx, builder, diags, loc)}
		} else {
			rec := catalog.MetricRecord{Name: m.Name, Brief: m.Brief, Note: m.Note, Instrument: m.Instrument, Unit: m.Unit}
			i, _ := builder.InsertMetric(rec)
			rm = resolved.Metric{Index: i, Attributes: expandAttributeList(m.Attributes, regSet, idx, builder, diags, loc)}
		}

		if existingPos, exists := findMetricByName(out.Metrics, builder, name); exists {
			out.Metrics[existingPos] = rm
		} else {
			byName[name] = len(out.Metrics)
			metricNames = append(metricNames, name)
			out.Metrics = append(out.Metrics, rm)
		}
	}

	for _, mg := range schema.Schema.ResourceMetrics.MetricGroups {
		groupAttrs := expandAttributeList(mg.Attributes, regSet, idx, builder, diags, loc)
		rmg := resolved.MetricGroup{ID: mg.ID, Name: mg.Name, Metrics: mg.Metrics, Attributes: groupAttrs}

		var replaced bool
		for i, existing := range out.MetricGroups {
			if existing.ID == mg.ID {
				out.MetricGroups[i] = rmg
				replaced = true
				break
			}
		}
		if !replaced {
			out.MetricGroups = append(out.MetricGroups, rmg)
		}

		for _, memberName := range mg.Metrics {
			if pos, ok := byName[memberName]; ok {
				out.Metrics[pos].Attributes = dedupeUses(builder, out.Metrics[pos].Attributes, groupAttrs)
			}
		}
	}

	return out
}

// findMetricByName reports whether out already holds a metric whose
// catalog record name matches name, since resolved.Metric itself only
// carries a catalog index.
func findMetricByName(out []resolved.Metric, builder *catalog.Builder, name string) (int, bool) {
	records := builder.Metrics()
	for i, m := range out {
		if m.Index < len(records) && records[m.Index].Name == name {
			return i, true
		}
	}
	return 0, false
}

func resolveResourceEvents(schema *telemetryschema.Schema, parent *resolved.Schema, regSet *RegistrySet, idx attributeIndex, builder *catalog.Builder, diags *diag.Set, loc diag.Location) resolved.ResourceEvents {
	out := resolved.ResourceEvents{}
	if parent != nil {
		out.Events = append(out.Events, parent.ResourceEvents.Events...)
	}
	if schema.Schema == nil || schema.Schema.ResourceEvents == nil {
		return out
	}
	for _, e := range schema.Schema.ResourceEvents.Events {
		re := resolveEvent(e, regSet, idx, builder, diags, loc)
		replaceOrAppendEvent(&out.Events, re)
	}
	return out
}

func resolveEvent(e telemetryschema.Event, regSet *RegistrySet, idx attributeIndex, builder *catalog.Builder, diags *diag.Set, loc diag.Location) resolved.Event {
	return resolved.Event{
		ID:         e.ID,
		Name:       e.Name,
		Brief:      e.Brief,
		Attributes: expandAttributeList(e.Attributes, regSet, idx, builder, diags, loc),
	}
}

func replaceOrAppendEvent(events *[]resolved.Event, e resolved.Event) {
	for i, existing := range *events {
		if existing.ID == e.ID {
			(*events)[i] = e
			return
		}
	}
	*events = append(*events, e)
}

func resolveResourceSpans(schema *telemetryschema.Schema, parent *resolved.Schema, regSet *RegistrySet, idx attributeIndex, builder *catalog.Builder, diags *diag.Set, loc diag.Location) resolved.ResourceSpans {
	out := resolved.ResourceSpans{}
	if parent != nil {
		out.Spans = append(out.Spans, parent.ResourceSpans.Spans...)
	}
	if schema.Schema == nil || schema.Schema.ResourceSpans == nil {
		return out
	}
	for _, sp := range schema.Schema.ResourceSpans.Spans {
		rs := resolved.Span{
			ID:         sp.ID,
			Name:       sp.Name,
			SpanKind:   sp.SpanKind,
			Brief:      sp.Brief,
			Attributes: expandAttributeList(sp.Attributes, regSet, idx, builder, diags, loc),
		}
		for _, e := range sp.Events {
			rs.Events = append(rs.Events, resolveEvent(e, regSet, idx, builder, diags, loc))
		}
		for _, l := range sp.Links {
			rs.Links = append(rs.Links, resolved.Link{
				Brief:      l.Brief,
				Attributes: expandAttributeList(l.Attributes, regSet, idx, builder, diags, loc),
			})
		}

		var replaced bool
		for i, existing := range out.Spans {
			if existing.ID == rs.ID {
				out.Spans[i] = rs
				replaced = true
				break
			}
		}
		if !replaced {
			out.Spans = append(out.Spans, rs)
		}
	}
	return out
}

// resolveVersions validates structural well-formedness of the versions map.
// Key order is not settled here: resolved.Versions.MarshalJSON derives
// ascending semantic-version order at output time regardless of map
// iteration order. The resolver does not apply the renames described by a
// version entry to the current schema.
func resolveVersions(schema *telemetryschema.Schema, parent *resolved.Schema, diags *diag.Set, loc diag.Location) resolved.Versions {
	versions := schema.Versions
	if len(versions) == 0 {
		if parent != nil {
			return parent.Versions
		}
		return nil
	}

	for key, entry := range versions {
		if _, err := semver.NewVersion(key); err != nil {
			diags.Add(diag.NewVersionFormatError(loc, key, err))
			continue
		}
		validateVersionChanges(key, entry.Metrics, diags, loc)
		validateVersionChanges(key, entry.Logs, diags, loc)
		validateVersionChanges(key, entry.Spans, diags, loc)
		validateVersionChanges(key, entry.Resources, diags, loc)
	}

	return resolved.Versions(versions)
}

func validateVersionChanges(key string, set *telemetryschema.VersionChangeSet, diags *diag.Set, loc diag.Location) {
	if set == nil {
		return
	}
	for _, c := range set.Changes {
		switch c.Kind {
		case telemetryschema.ChangeRenameAttributes, telemetryschema.ChangeRenameMetrics:
		default:
			diags.Add(diag.NewParseError(loc, fmt.Sprintf("version %q: unknown change kind %q", key, c.Kind)))
		}
		for k, v := range c.AttributeMap {
			if k == "" || v == "" {
				diags.Add(diag.NewParseError(loc, fmt.Sprintf("version %q: attribute_map entries must be non-empty", key)))
			}
		}
		for _, m := range c.ApplyToMetrics {
			if m == "" {
				diags.Add(diag.NewParseError(loc, fmt.Sprintf("version %q: apply_to_metrics names must be non-empty", key)))
			}
		}
	}
}

// SortedVersionKeys returns the keys of versions in ascending semantic
// version order, for callers (CLI summaries, diagnostics) that need to
// print a deterministic sequence without marshaling the whole schema.
func SortedVersionKeys(versions map[string]telemetryschema.VersionEntry) []string {
	keys := make([]string, 0, len(versions))
	for k := range versions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		vi, erri := semver.NewVersion(keys[i])
		vj, errj := semver.NewVersion(keys[j])
		if erri != nil || errj != nil {
			return keys[i] < keys[j]
		}
		return vi.LessThan(vj)
	})
	return keys
}
