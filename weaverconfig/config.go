// Package weaverconfig defines the explicit configuration object threaded
// through resolution: options are passed as a value, never read from
// globals.
package weaverconfig

import "time"

// Config holds the resolver's tunable behavior.
type Config struct {
	// FollowRemote allows the source cache to perform http(s) fetches.
	// When false, any non-file location fails with diag.NotFound rather
	// than reaching the network.
	FollowRemote bool

	// MaxInheritanceDepth bounds parent_schema_url chains.
	MaxInheritanceDepth int

	// StrictUnknownFields rejects unrecognized YAML keys at parse time.
	// When false, unknown keys are ignored rather than raising a
	// ParseError.
	StrictUnknownFields bool

	// BestEffort records whether the caller accepts a Resolved Schema
	// from a run that produced diagnostics. resolver.ResolveSchema does
	// not read it: it returns whatever schema it built together with the
	// full diagnostic set, and leaves the decision to the caller.
	BestEffort bool

	// FetchTimeout bounds a single HTTP GET issued by the source cache.
	FetchTimeout time.Duration

	// AllowCrossRegistryGroupIDMerge opts into last-load-wins merge
	// behavior when two loaded registries declare the same group id.
	// When false (the default), a cross-registry collision is a fatal
	// diag.ParseError rather than a silent merge.
	AllowCrossRegistryGroupIDMerge bool
}

// Default returns the resolver's default configuration:
// follow_remote=true, max_inheritance_depth=8, strict_unknown_fields=true,
// best_effort=false, allow_cross_registry_group_id_merge=false.
func Default() Config {
	return Config{
		FollowRemote:                   true,
		MaxInheritanceDepth:            8,
		StrictUnknownFields:            true,
		BestEffort:                     false,
		FetchTimeout:                   10 * time.Second,
		AllowCrossRegistryGroupIDMerge: false,
	}
}
