package resolver

import (
	"github.com/f5/otel-weaver/catalog"
	"github.com/f5/otel-weaver/diag"
	"github.com/f5/otel-weaver/resolved"
	"github.com/f5/otel-weaver/semconv"
)

// attributeIndex maps an attribute id to every attribute_group-kind
// definition across all loaded registries that declares it, for schema-
// level `ref:` resolution.
type attributeIndex map[string][]semconv.Attribute

func buildAttributeIndex(regSet *RegistrySet) attributeIndex {
	idx := make(attributeIndex)
	for _, mg := range regSet.Groups {
		if mg.Kind != semconv.KindAttributeGroup {
			continue
		}
		for _, a := range mg.Effective {
			if a.IsDefinition() {
				idx[a.ID] = append(idx[a.ID], a)
			}
		}
	}
	return idx
}

// useEntry threads an attribute's merge identity alongside its resolved
// catalog use, so expandAttributeList can dedupe by id without a reverse
// catalog lookup.
type useEntry struct {
	id  string
	use resolved.AttributeUse
}

func buildCatalogRecord(a semconv.Attribute) catalog.AttributeRecord {
	rec := catalog.AttributeRecord{
		ID:               a.ID,
		Brief:            a.Brief,
		Note:             a.Note,
		Examples:         a.Examples,
		Tag:              a.Tag,
		Tags:             a.Tags,
		Stability:        a.Stability,
		Deprecated:       a.Deprecated,
		SamplingRelevant: a.SamplingRelevant,
		Value:            a.Value,
	}
	if a.Type != nil {
		rec.Type = *a.Type
	}
	if a.RequirementLevel != nil {
		rec.RequirementLevel = *a.RequirementLevel
	}
	return rec
}

func overridesFrom(a semconv.Attribute) *resolved.Overrides {
	ov := &resolved.Overrides{
		Brief:            a.Brief,
		Note:             a.Note,
		Examples:         a.Examples,
		RequirementLevel: a.RequirementLevel,
		Tag:              a.Tag,
		Tags:             a.Tags,
		Value:            a.Value,
	}
	if ov.Brief == "" && ov.Note == "" && ov.Examples == nil && ov.RequirementLevel == nil &&
		ov.Tag == "" && ov.Tags == nil && ov.Value == nil {
		return nil
	}
	return ov
}

// mergeOverrides layers b onto a, b winning field-by-field where it is
// non-zero, matching "child overrides win on conflict".
func mergeOverrides(a, b *resolved.Overrides) *resolved.Overrides {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := *a
	if b.Brief != "" {
		out.Brief = b.Brief
	}
	if b.Note != "" {
		out.Note = b.Note
	}
	if b.Examples != nil {
		out.Examples = b.Examples
	}
	if b.RequirementLevel != nil {
		out.RequirementLevel = b.RequirementLevel
	}
	if b.Tag != "" {
		out.Tag = b.Tag
	}
	if b.Tags != nil {
		out.Tags = b.Tags
	}
	if b.Value != nil {
		out.Value = b.Value
	}
	return &out
}

// resolveAttributeUse expands one attribute-list entry into zero or more
// catalog-backed uses: one for a definition or bare `ref:`, or one per
// spliced attribute for a group-kind reference.
func resolveAttributeUse(a semconv.Attribute, regSet *RegistrySet, idx attributeIndex, builder *catalog.Builder, diags *diag.Set, loc diag.Location) []useEntry {
	if err := a.Validate(); err != nil {
		diags.Add(diag.NewParseError(loc, err.Error()))
		return nil
	}

	kind, target := a.Reference()

	switch kind {
	case semconv.ReferenceNone:
		i, _ := builder.InsertAttribute(buildCatalogRecord(a))
		return []useEntry{{id: a.ID, use: resolved.AttributeUse{Index: i}}}

	case semconv.ReferenceAttribute:
		candidates := idx[target]
		switch len(candidates) {
		case 0:
			diags.Add(diag.NewUnknownAttribute(loc, target))
			return nil
		case 1:
			i, _ := builder.InsertAttribute(buildCatalogRecord(candidates[0]))
			return []useEntry{{id: candidates[0].ID, use: resolved.AttributeUse{Index: i, Overrides: overridesFrom(a)}}}
		default:
			names := make([]string, len(candidates))
			for j, c := range candidates {
				names[j] = c.ID
			}
			diags.Add(diag.NewAmbiguousAttribute(loc, target, names))
			return nil
		}

	case semconv.ReferenceAttributeGroup, semconv.ReferenceResource, semconv.ReferenceSpan, semconv.ReferenceEvent:
		expected := referenceGroupKind(kind)
		group, ok := lookupGroup(regSet, target, expected, diags, loc)
		if !ok {
			return nil
		}
		entries := make([]useEntry, 0, len(group.Effective))
		for _, ga := range group.Effective {
			i, _ := builder.InsertAttribute(buildCatalogRecord(ga))
			entries = append(entries, useEntry{id: ga.ID, use: resolved.AttributeUse{Index: i}})
		}
		return entries

	default:
		return nil
	}
}

func referenceGroupKind(k semconv.ReferenceKind) semconv.GroupKind {
	switch k {
	case semconv.ReferenceAttributeGroup:
		return semconv.KindAttributeGroup
	case semconv.ReferenceResource:
		return semconv.KindResource
	case semconv.ReferenceSpan:
		return semconv.KindSpan
	case semconv.ReferenceEvent:
		return semconv.KindEvent
	default:
		return ""
	}
}

func lookupGroup(regSet *RegistrySet, gid string, expected semconv.GroupKind, diags *diag.Set, loc diag.Location) (*MaterializedGroup, bool) {
	mg, ok := regSet.Groups[gid]
	if !ok {
		diags.Add(diag.NewUnknownGroupRef(loc, string(expected), gid))
		return nil, false
	}
	if mg.Kind != expected {
		diags.Add(diag.NewWrongGroupKind(loc, gid, string(expected), string(mg.Kind)))
		return nil, false
	}
	return mg, true
}

// expandAttributeList expands every entry of attrs (in order) and
// deduplicates the result by merge identity: second and later occurrences
// of an id are dropped, with their overrides merged onto the first
// occurrence.
func expandAttributeList(attrs []semconv.Attribute, regSet *RegistrySet, idx attributeIndex, builder *catalog.Builder, diags *diag.Set, loc diag.Location) []resolved.AttributeUse {
	var entries []useEntry
	for _, a := range attrs {
		entries = append(entries, resolveAttributeUse(a, regSet, idx, builder, diags, loc)...)
	}
	return dedupeEntries(entries)
}

func dedupeEntries(entries []useEntry) []resolved.AttributeUse {
	out := make([]resolved.AttributeUse, 0, len(entries))
	posByID := make(map[string]int, len(entries))
	for _, e := range entries {
		if pos, exists := posByID[e.id]; exists {
			out[pos].Overrides = mergeOverrides(out[pos].Overrides, e.use.Overrides)
			continue
		}
		posByID[e.id] = len(out)
		out = append(out, e.use)
	}
	return out
}

// dedupeUses re-applies the same dedup rule to an already-resolved use
// list plus an appended tail, used when a metric group's attributes are
// appended to a metric's own list.
func dedupeUses(builder *catalog.Builder, head, tail []resolved.AttributeUse) []resolved.AttributeUse {
	records := builder.Attributes()
	toEntry := func(u resolved.AttributeUse) useEntry {
		id := ""
		if u.Index >= 0 && u.Index < len(records) {
			id = records[u.Index].ID
		}
		return useEntry{id: id, use: u}
	}
	entries := make([]useEntry, 0, len(head)+len(tail))
	for _, u := range head {
		entries = append(entries, toEntry(u))
	}
	for _, u := range tail {
		entries = append(entries, toEntry(u))
	}
	return dedupeEntries(entries)
}
