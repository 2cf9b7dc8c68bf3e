package diag

import "fmt"

// Diagnostic is a single structured, located error or warning produced by
// the resolver. Every diagnostic kind in this package implements it.
type Diagnostic interface {
	error
	Kind() Kind
	Location() Location
	// Hint is a remediation suggestion, or empty if none applies.
	Hint() string
}

// base is embedded by every concrete diagnostic to avoid repeating the
// Location/Hint plumbing.
type base struct {
	loc  Location
	hint string
}

func (b base) Location() Location { return b.loc }
func (b base) Hint() string       { return b.hint }

// ParseError reports malformed YAML or unknown/conflicting fields at parse
// time. Fatal per file.
type ParseError struct {
	base
	Reason string
}

func NewParseError(loc Location, reason string) *ParseError {
	return &ParseError{base: base{loc: loc}, Reason: reason}
}
func (e *ParseError) Kind() Kind    { return KindParseError }
func (e *ParseError) Error() string { return fmt.Sprintf("%s: parse error: %s", e.loc, e.Reason) }

// UnknownExtends reports an `extends` reference to a group id that does
// not exist in any loaded registry.
type UnknownExtends struct {
	base
	GID string
}

func NewUnknownExtends(loc Location, gid string) *UnknownExtends {
	return &UnknownExtends{base: base{loc: loc}, GID: gid}
}
func (e *UnknownExtends) Kind() Kind { return KindUnknownExtends }
func (e *UnknownExtends) Error() string {
	return fmt.Sprintf("%s: group extends unknown id %q", e.loc, e.GID)
}

// ExtendsCycle reports a cycle in the `extends` chain. Fatal.
type ExtendsCycle struct {
	base
	Chain []string
}

func NewExtendsCycle(loc Location, chain []string) *ExtendsCycle {
	return &ExtendsCycle{base: base{loc: loc}, Chain: chain}
}
func (e *ExtendsCycle) Kind() Kind { return KindExtendsCycle }
func (e *ExtendsCycle) Error() string {
	return fmt.Sprintf("%s: extends cycle detected: %v", e.loc, e.Chain)
}

// DuplicateGroupID reports a group id declared twice within the same
// registry.
type DuplicateGroupID struct {
	base
	GID string
}

func NewDuplicateGroupID(loc Location, gid string) *DuplicateGroupID {
	return &DuplicateGroupID{base: base{loc: loc}, GID: gid}
}
func (e *DuplicateGroupID) Kind() Kind { return KindDuplicateGroupID }
func (e *DuplicateGroupID) Error() string {
	return fmt.Sprintf("%s: duplicate group id %q", e.loc, e.GID)
}

// UnknownAttribute reports a `ref` that matched no attribute definition in
// any loaded registry or parent schema.
type UnknownAttribute struct {
	base
	ID string
}

func NewUnknownAttribute(loc Location, id string) *UnknownAttribute {
	return &UnknownAttribute{base: base{loc: loc}, ID: id}
}
func (e *UnknownAttribute) Kind() Kind { return KindUnknownAttribute }
func (e *UnknownAttribute) Error() string {
	return fmt.Sprintf("%s: unknown attribute %q", e.loc, e.ID)
}

// AmbiguousAttribute reports a `ref` that matched more than one attribute
// definition candidate.
type AmbiguousAttribute struct {
	base
	ID         string
	Candidates []string
}

func NewAmbiguousAttribute(loc Location, id string, candidates []string) *AmbiguousAttribute {
	return &AmbiguousAttribute{base: base{loc: loc}, ID: id, Candidates: candidates}
}
func (e *AmbiguousAttribute) Kind() Kind { return KindAmbiguousAttribute }
func (e *AmbiguousAttribute) Error() string {
	return fmt.Sprintf("%s: ambiguous attribute %q, candidates: %v", e.loc, e.ID, e.Candidates)
}

// UnknownGroupRef reports an `attribute_group_ref`/`resource_ref`/
// `span_ref`/`event_ref` pointing at a group id that does not exist.
type UnknownGroupRef struct {
	base
	ExpectedKind string
	GID          string
}

func NewUnknownGroupRef(loc Location, expectedKind, gid string) *UnknownGroupRef {
	return &UnknownGroupRef{base: base{loc: loc}, ExpectedKind: expectedKind, GID: gid}
}
func (e *UnknownGroupRef) Kind() Kind { return KindUnknownGroupRef }
func (e *UnknownGroupRef) Error() string {
	return fmt.Sprintf("%s: unknown %s group ref %q", e.loc, e.ExpectedKind, e.GID)
}

// WrongGroupKind reports that a reference resolved to a group, but the
// group's kind did not match the reference's expected kind (e.g.
// `span_ref` pointing at an `event` group).
type WrongGroupKind struct {
	base
	Expected string
	Got      string
	GID      string
}

func NewWrongGroupKind(loc Location, gid, expected, got string) *WrongGroupKind {
	return &WrongGroupKind{base: base{loc: loc}, GID: gid, Expected: expected, Got: got}
}
func (e *WrongGroupKind) Kind() Kind { return KindWrongGroupKind }
func (e *WrongGroupKind) Error() string {
	return fmt.Sprintf("%s: group %q has kind %s, expected %s", e.loc, e.GID, e.Got, e.Expected)
}

// ParentSchemaCycle reports a cycle in the `parent_schema_url` chain.
// Fatal.
type ParentSchemaCycle struct {
	base
	Chain []string
}

func NewParentSchemaCycle(loc Location, chain []string) *ParentSchemaCycle {
	return &ParentSchemaCycle{base: base{loc: loc}, Chain: chain}
}
func (e *ParentSchemaCycle) Kind() Kind { return KindParentSchemaCycle }
func (e *ParentSchemaCycle) Error() string {
	return fmt.Sprintf("%s: parent schema cycle detected: %v", e.loc, e.Chain)
}

// ParentSchemaTooDeep reports a `parent_schema_url` chain exceeding
// Config.MaxInheritanceDepth.
type ParentSchemaTooDeep struct {
	base
	Depth int
	Limit int
}

func NewParentSchemaTooDeep(loc Location, depth, limit int) *ParentSchemaTooDeep {
	return &ParentSchemaTooDeep{base: base{loc: loc}, Depth: depth, Limit: limit}
}
func (e *ParentSchemaTooDeep) Kind() Kind { return KindParentSchemaTooDeep }
func (e *ParentSchemaTooDeep) Error() string {
	return fmt.Sprintf("%s: parent schema chain depth %d exceeds limit %d", e.loc, e.Depth, e.Limit)
}

// ParentFetchFailed reports that fetching or parsing a parent schema
// failed.
type ParentFetchFailed struct {
	base
	SourceRef string
	Cause     error
}

func NewParentFetchFailed(loc Location, sourceRef string, cause error) *ParentFetchFailed {
	return &ParentFetchFailed{base: base{loc: loc}, SourceRef: sourceRef, Cause: cause}
}
func (e *ParentFetchFailed) Kind() Kind { return KindParentFetchFailed }
func (e *ParentFetchFailed) Error() string {
	return fmt.Sprintf("%s: failed to fetch parent schema %q: %v", e.loc, e.SourceRef, e.Cause)
}
func (e *ParentFetchFailed) Unwrap() error { return e.Cause }

// InvalidEnum reports a malformed enum type declaration (duplicate member
// ids/values, or no members).
type InvalidEnum struct {
	base
	Reason string
}

func NewInvalidEnum(loc Location, reason string) *InvalidEnum {
	return &InvalidEnum{base: base{loc: loc}, Reason: reason}
}
func (e *InvalidEnum) Kind() Kind    { return KindInvalidEnum }
func (e *InvalidEnum) Error() string { return fmt.Sprintf("%s: invalid enum: %s", e.loc, e.Reason) }

// InvalidRequirementLevel reports a requirement level whose text field is
// missing or present when the variant disallows it.
type InvalidRequirementLevel struct {
	base
	Reason string
}

func NewInvalidRequirementLevel(loc Location, reason string) *InvalidRequirementLevel {
	return &InvalidRequirementLevel{base: base{loc: loc}, Reason: reason}
}
func (e *InvalidRequirementLevel) Kind() Kind { return KindInvalidRequirementLevel }
func (e *InvalidRequirementLevel) Error() string {
	return fmt.Sprintf("%s: invalid requirement level: %s", e.loc, e.Reason)
}

// InvalidStability reports a `stability` value that is not one of
// experimental/stable/deprecated. A group or attribute that sets
// `deprecated` with a non-deprecated stability is a ParseError instead.
type InvalidStability struct {
	base
	Reason string
}

func NewInvalidStability(loc Location, reason string) *InvalidStability {
	return &InvalidStability{base: base{loc: loc}, Reason: reason}
}
func (e *InvalidStability) Kind() Kind { return KindInvalidStability }
func (e *InvalidStability) Error() string {
	return fmt.Sprintf("%s: invalid stability: %s", e.loc, e.Reason)
}

// InvalidInstrument reports a metric group with a missing or unknown
// instrument type.
type InvalidInstrument struct {
	base
	Reason string
}

func NewInvalidInstrument(loc Location, reason string) *InvalidInstrument {
	return &InvalidInstrument{base: base{loc: loc}, Reason: reason}
}
func (e *InvalidInstrument) Kind() Kind { return KindInvalidInstrument }
func (e *InvalidInstrument) Error() string {
	return fmt.Sprintf("%s: invalid instrument: %s", e.loc, e.Reason)
}

// VersionFormatError reports a `versions` map key that is not a valid
// semantic version.
type VersionFormatError struct {
	base
	VersionKey string
	Cause      error
}

func NewVersionFormatError(loc Location, key string, cause error) *VersionFormatError {
	return &VersionFormatError{base: base{loc: loc}, VersionKey: key, Cause: cause}
}
func (e *VersionFormatError) Kind() Kind { return KindVersionFormatError }
func (e *VersionFormatError) Error() string {
	return fmt.Sprintf("%s: invalid version key %q: %v", e.loc, e.VersionKey, e.Cause)
}
func (e *VersionFormatError) Unwrap() error { return e.Cause }

// TransportError reports an HTTP fetch that failed, either with a non-2xx
// status or a network-level failure.
type TransportError struct {
	base
	Status int
	Cause  error
}

func NewTransportError(loc Location, status int, cause error) *TransportError {
	return &TransportError{base: base{loc: loc}, Status: status, Cause: cause}
}
func (e *TransportError) Kind() Kind { return KindTransportError }
func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: transport error: %v", e.loc, e.Cause)
	}
	return fmt.Sprintf("%s: transport error: status %d", e.loc, e.Status)
}
func (e *TransportError) Unwrap() error { return e.Cause }

// IoError reports a local filesystem failure reading a source document.
type IoError struct {
	base
	Cause error
}

func NewIoError(loc Location, cause error) *IoError {
	return &IoError{base: base{loc: loc}, Cause: cause}
}
func (e *IoError) Kind() Kind    { return KindIoError }
func (e *IoError) Error() string { return fmt.Sprintf("%s: io error: %v", e.loc, e.Cause) }
func (e *IoError) Unwrap() error { return e.Cause }

// NotFound reports that a location resolved to nothing (no such file, or
// a 404-equivalent).
type NotFound struct {
	base
	Location_ string
}

func NewNotFound(loc Location, location string) *NotFound {
	return &NotFound{base: base{loc: loc}, Location_: location}
}
func (e *NotFound) Kind() Kind    { return KindNotFound }
func (e *NotFound) Error() string { return fmt.Sprintf("%s: not found: %s", e.loc, e.Location_) }

// Normalization is a non-error warning emitted when the parser
// canonicalizes a historical field spelling.
type Normalization struct {
	base
	Message string
}

func NewNormalization(loc Location, message string) *Normalization {
	return &Normalization{base: base{loc: loc}, Message: message}
}
func (e *Normalization) Kind() Kind    { return KindNormalization }
func (e *Normalization) Error() string { return fmt.Sprintf("%s: %s", e.loc, e.Message) }
