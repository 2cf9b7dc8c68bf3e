// Package template defines the contract an external template engine
// consumes when rendering a Resolved Schema into language bindings. The
// resolver owns this contract, not the engine: no rendering logic lives
// here, only the predicate/filter/helper function signatures the engine
// is given access to.
package template

import "github.com/f5/otel-weaver/resolved"

// Predicate filters a single resolved attribute use.
type Predicate func(resolved.AttributeUse) bool

// Filter narrows a list of resolved attribute uses to those matching some
// criterion. The engine's built-in filters (`required`, `not_required`,
// `with_value`, `without_value`, `with_enum`, `without_enum`) all share
// this shape; the resolver does not implement them, only the shape its
// catalog types must support.
type Filter func([]resolved.AttributeUse) []resolved.AttributeUse

// UniqueAttributes is the `unique_attributes(recursive: bool)` helper: it
// returns the attribute uses in uses with duplicate ids removed. When
// recursive is true, nested attribute lists (e.g. a span's events) are
// also deduplicated against the outer list.
type UniqueAttributes func(uses []resolved.AttributeUse, recursive bool) []resolved.AttributeUse

// NameCasing is the signature shared by the five name-casing helpers
// (`struct_name`, `field_name`, `function_name`, `arg_name`, `file_name`):
// each takes a raw identifier (typically a dotted attribute or signal id)
// and returns it cased for one generated-code position.
type NameCasing func(id string) string

// TypeMapping is the `type_mapping(enum: <name>?)` helper: given the
// optional name of an enum type, it returns the target language's type
// name for that attribute type. An empty enum name requests the mapping
// table for non-enum primitive types.
type TypeMapping func(enum string) string
