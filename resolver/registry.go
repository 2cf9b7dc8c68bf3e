// Package resolver implements the Registry Resolver (component D,
// ResolveRegistries) and the Schema Resolver (component E, ResolveSchema):
// the two stages that turn parsed semconv.Registry/telemetryschema.Schema
// trees into a fully materialized, reference-free model ready for catalog
// deduplication.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/f5/otel-weaver/diag"
	"github.com/f5/otel-weaver/internal/depgraph"
	"github.com/f5/otel-weaver/internal/logging"
	"github.com/f5/otel-weaver/semconv"
	"github.com/f5/otel-weaver/weaverconfig"
)

// MaterializedGroup is a semconv.Group whose `extends` chain has been
// flattened and whose attribute list is fully resolved: prefixes applied,
// parent attributes concatenated, and inline `ref:` attributes replaced by
// their definitions.
type MaterializedGroup struct {
	semconv.Group
	Effective []semconv.Attribute
}

// RegistrySet is the output of ResolveRegistries: every loaded group,
// materialized, keyed by id, plus the per-registry group listing needed to
// reproduce the Resolved Schema's `registries` section in declaration
// order.
type RegistrySet struct {
	Groups       map[string]*MaterializedGroup
	ByRegistry   map[string][]string // registry source -> ordered group ids
	RegistryURLs []string            // registry sources in load order
}

// ResolveRegistries flattens `extends` chains and materializes every
// group's attribute list across all loaded registries.
func ResolveRegistries(ctx context.Context, registries []*semconv.Registry, cfg weaverconfig.Config) (*RegistrySet, *diag.Set) {
	log := logging.From(ctx)
	log.V(1).Info("resolving registries", "registries", len(registries))

	diags := diag.NewSet()

	global := make(map[string]*semconv.Group)
	groupSource := make(map[string]string)
	var order []string
	out := &RegistrySet{
		Groups:     make(map[string]*MaterializedGroup),
		ByRegistry: make(map[string][]string),
	}

	for _, reg := range registries {
		out.RegistryURLs = append(out.RegistryURLs, reg.Source)
		seenInRegistry := make(map[string]bool, len(reg.Groups))
		for i := range reg.Groups {
			g := &reg.Groups[i]
			switch {
			case seenInRegistry[g.ID]:
				// Same registry, same id twice: non-fatal, last one wins.
				diags.Add(diag.NewDuplicateGroupID(g.Location, g.ID))
			case groupSource[g.ID] != "" && groupSource[g.ID] != reg.Source:
				// Cross-registry collision is fatal unless explicitly
				// allowed, per Config.AllowCrossRegistryGroupIDMerge.
				if cfg.AllowCrossRegistryGroupIDMerge {
					diags.Add(diag.NewDuplicateGroupID(g.Location, g.ID))
				} else {
					diags.Add(diag.NewParseError(g.Location, fmt.Sprintf("group id %q already declared by registry %q", g.ID, groupSource[g.ID])))
					continue
				}
			default:
				order = append(order, g.ID)
			}
			seenInRegistry[g.ID] = true
			groupSource[g.ID] = reg.Source
			global[g.ID] = g
			out.ByRegistry[reg.Source] = append(out.ByRegistry[reg.Source], g.ID)
		}
	}

	graph := depgraph.New()
	validParent := make(map[string]bool, len(global))
	for gid, g := range global {
		if g.Extends == "" {
			continue
		}
		if _, ok := global[g.Extends]; !ok {
			diags.Add(diag.NewUnknownExtends(g.Location, g.Extends))
			continue
		}
		if chain, ok := graph.AddEdge(gid, g.Extends); !ok {
			diags.Add(diag.NewExtendsCycle(g.Location, chain))
			continue
		}
		validParent[gid] = true
	}

	materialized, err := materializeLayered(ctx, global, order, validParent, diags)
	if err != nil {
		log.Error(err, "failed to materialize groups")
		diags.Add(diag.NewParseError(diag.Location{}, err.Error()))
		return out, diags
	}
	out.Groups = materialized

	resolveGroupRefs(out.Groups, diags)

	log.V(1).Info("registries resolved", "groups", len(out.Groups))
	return out, diags
}

// materializeLayered processes groups in dependency order (parents before
// children), running each generation's independent groups concurrently via
// errgroup, one worker pool generation per dependency layer.
func materializeLayered(ctx context.Context, global map[string]*semconv.Group, order []string, validParent map[string]bool, diags *diag.Set) (map[string]*MaterializedGroup, error) {
	log := logging.From(ctx)

	out := make(map[string]*MaterializedGroup, len(global))
	done := make(map[string]bool, len(global))
	remaining := make(map[string]*semconv.Group, len(global))
	for gid, g := range global {
		remaining[gid] = g
	}

	for len(remaining) > 0 {
		var layer []string
		for gid, g := range remaining {
			if g.Extends == "" || !validParent[gid] || done[g.Extends] {
				layer = append(layer, gid)
			}
		}
		if len(layer) == 0 {
			// Every remaining group has an unresolved (cyclic/unknown)
			// parent; materialize them as roots rather than deadlocking.
			for gid := range remaining {
				layer = append(layer, gid)
			}
		}
		sort.Strings(layer)
		log.V(1).Info("materializing dependency layer", "groups", layer)

		results := make([]*MaterializedGroup, len(layer))
		g, gctx := errgroup.WithContext(ctx)
		for i, gid := range layer {
			i, gid := i, gid
			group := remaining[gid]
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				var parentEffective []semconv.Attribute
				if group.Extends != "" && validParent[gid] && done[group.Extends] {
					parentEffective = out[group.Extends].Effective
				}
				results[i] = &MaterializedGroup{
					Group:     *group,
					Effective: mergeAttributeLists(parentEffective, applyPrefix(group)),
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("materializing groups: %w", err)
		}

		for i, gid := range layer {
			out[gid] = results[i]
			done[gid] = true
			delete(remaining, gid)
		}
	}

	return out, nil
}

// applyPrefix prepends a group's prefix to its inline-declared attribute
// ids (definition form only), leaving referenced attributes untouched.
func applyPrefix(g *semconv.Group) []semconv.Attribute {
	if g.Prefix == "" {
		out := make([]semconv.Attribute, len(g.Attributes))
		copy(out, g.Attributes)
		return out
	}
	out := make([]semconv.Attribute, len(g.Attributes))
	for i, a := range g.Attributes {
		if a.IsDefinition() && a.ID != "" && !strings.HasPrefix(a.ID, g.Prefix+".") {
			a.ID = g.Prefix + "." + a.ID
		}
		out[i] = a
	}
	return out
}

// identityKey returns the attribute's merge identity: its own id for a
// definition, or the referenced id for a bare `ref:`. Group-kind
// references (attribute_group_ref etc.) have no scalar identity at this
// stage and are never merged in place, only appended.
func identityKey(a semconv.Attribute) (string, bool) {
	if a.ID != "" {
		return a.ID, true
	}
	if a.Ref != "" {
		return a.Ref, true
	}
	return "", false
}

// mergeAttributeLists concatenates parent then child, replacing a parent
// entry in place when the child redeclares the same identity, and
// appending the child's new entries after.
func mergeAttributeLists(parent, child []semconv.Attribute) []semconv.Attribute {
	result := make([]semconv.Attribute, len(parent), len(parent)+len(child))
	copy(result, parent)

	posByKey := make(map[string]int, len(result))
	for i, a := range result {
		if k, ok := identityKey(a); ok {
			posByKey[k] = i
		}
	}

	for _, a := range child {
		if k, ok := identityKey(a); ok {
			if pos, exists := posByKey[k]; exists {
				result[pos] = a
				continue
			}
			posByKey[k] = len(result)
		}
		result = append(result, a)
	}
	return result
}

// resolveGroupRefs resolves every bare `ref: <attr-id>` attribute found in
// a materialized group's effective list to its definition, searching all
// `attribute_group` kind groups. Matches are replaced in place; overrides
// on the reference carry onto the spliced definition.
func resolveGroupRefs(groups map[string]*MaterializedGroup, diags *diag.Set) {
	index := make(map[string][]semconv.Attribute)
	for _, mg := range groups {
		if mg.Kind != semconv.KindAttributeGroup {
			continue
		}
		for _, a := range mg.Effective {
			if a.IsDefinition() {
				index[a.ID] = append(index[a.ID], a)
			}
		}
	}

	for _, mg := range groups {
		for i, a := range mg.Effective {
			if a.Ref == "" {
				continue
			}
			candidates := index[a.Ref]
			switch len(candidates) {
			case 0:
				diags.Add(diag.NewUnknownAttribute(mg.Location, a.Ref))
			case 1:
				mg.Effective[i] = applyOverrides(candidates[0], a)
			default:
				names := make([]string, len(candidates))
				for j, c := range candidates {
					names[j] = c.ID
				}
				diags.Add(diag.NewAmbiguousAttribute(mg.Location, a.Ref, names))
			}
		}
	}
}

// applyOverrides layers the non-zero override fields of ref onto def,
// returning a new Attribute whose unlisted fields keep def's values.
func applyOverrides(def, ref semconv.Attribute) semconv.Attribute {
	out := def
	if ref.Brief != "" {
		out.Brief = ref.Brief
	}
	if ref.Note != "" {
		out.Note = ref.Note
	}
	if ref.Examples != nil {
		out.Examples = ref.Examples
	}
	if ref.RequirementLevel != nil {
		out.RequirementLevel = ref.RequirementLevel
	}
	if ref.Tag != "" {
		out.Tag = ref.Tag
	}
	if ref.Tags != nil {
		out.Tags = ref.Tags
	}
	if ref.Value != nil {
		out.Value = ref.Value
	}
	return out
}
