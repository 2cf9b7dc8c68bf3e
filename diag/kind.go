package diag

// Kind identifies the variant of a Diagnostic. Kept as a string enum
// (rather than an int) so diagnostics serialize legibly without a lookup
// table.
type Kind string

const (
	KindParseError              Kind = "parse_error"
	KindUnknownExtends          Kind = "unknown_extends"
	KindExtendsCycle            Kind = "extends_cycle"
	KindDuplicateGroupID        Kind = "duplicate_group_id"
	KindUnknownAttribute        Kind = "unknown_attribute"
	KindAmbiguousAttribute      Kind = "ambiguous_attribute"
	KindUnknownGroupRef         Kind = "unknown_group_ref"
	KindWrongGroupKind          Kind = "wrong_group_kind"
	KindParentSchemaCycle       Kind = "parent_schema_cycle"
	KindParentSchemaTooDeep     Kind = "parent_schema_too_deep"
	KindParentFetchFailed       Kind = "parent_fetch_failed"
	KindInvalidEnum             Kind = "invalid_enum"
	KindInvalidRequirementLevel Kind = "invalid_requirement_level"
	KindInvalidStability        Kind = "invalid_stability"
	KindInvalidInstrument       Kind = "invalid_instrument"
	KindVersionFormatError      Kind = "version_format_error"
	KindTransportError          Kind = "transport_error"
	KindIoError                 Kind = "io_error"
	KindNotFound                Kind = "not_found"
	KindNormalization           Kind = "normalization"
)

// fatalKinds abort the file/run they occur in rather than being collected
// alongside other diagnostics and surfaced at the end.
var fatalKinds = map[Kind]bool{
	KindParseError:        true,
	KindParentSchemaCycle: true,
	KindExtendsCycle:      true,
}

// IsFatal reports whether a diagnostic of this kind aborts resolution of
// the file/schema it was raised in.
func (k Kind) IsFatal() bool {
	return fatalKinds[k]
}
