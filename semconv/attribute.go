package semconv

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stability is the maturity level carried by groups and attributes.
type Stability string

const (
	StabilityExperimental Stability = "experimental"
	StabilityStable       Stability = "stable"
	StabilityDeprecated   Stability = "deprecated"
)

// PrimitiveType enumerates the non-enum attribute types.
type PrimitiveType string

const (
	TypeString   PrimitiveType = "string"
	TypeInt      PrimitiveType = "int"
	TypeDouble   PrimitiveType = "double"
	TypeBoolean  PrimitiveType = "boolean"
	TypeStrings  PrimitiveType = "string[]"
	TypeInts     PrimitiveType = "int[]"
	TypeDoubles  PrimitiveType = "double[]"
	TypeBooleans PrimitiveType = "boolean[]"
)

var primitiveTypes = map[PrimitiveType]bool{
	TypeString: true, TypeInt: true, TypeDouble: true, TypeBoolean: true,
	TypeStrings: true, TypeInts: true, TypeDoubles: true, TypeBooleans: true,
}

// EnumMember is one ordered member of an enum attribute type.
type EnumMember struct {
	ID    string `yaml:"id" json:"id"`
	Value any    `yaml:"value" json:"value"`
	Brief string `yaml:"brief,omitempty" json:"brief,omitempty"`
	Note  string `yaml:"note,omitempty" json:"note,omitempty"`
}

// EnumType is the enum variant of AttributeType.
type EnumType struct {
	AllowCustomValues bool         `yaml:"allow_custom_values" json:"allow_custom_values"`
	Members           []EnumMember `yaml:"members" json:"members"`
}

// AttributeType is the tagged union of primitive/template/enum attribute
// types. Exactly one of Primitive or Enum is set.
type AttributeType struct {
	Primitive PrimitiveType
	Template  bool
	Enum      *EnumType
}

// IsEnum reports whether this is the enum variant.
func (t AttributeType) IsEnum() bool { return t.Enum != nil }

// MarshalJSON mirrors UnmarshalYAML's tagged-union shape: a bare string for
// the primitive/template variants, or a mapping with `members` for enum.
func (t AttributeType) MarshalJSON() ([]byte, error) {
	if t.Enum != nil {
		return json.Marshal(struct {
			AllowCustomValues bool         `json:"allow_custom_values"`
			Members           []EnumMember `json:"members"`
		}{AllowCustomValues: t.Enum.AllowCustomValues, Members: t.Enum.Members})
	}
	if t.Template {
		return json.Marshal("template[" + string(t.Primitive) + "]")
	}
	return json.Marshal(string(t.Primitive))
}

// UnmarshalJSON is JSON's counterpart to UnmarshalYAML, for round-tripping
// a previously marshaled Resolved Schema.
func (t *AttributeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if strings.HasPrefix(s, "template[") && strings.HasSuffix(s, "]") {
			inner := PrimitiveType(strings.TrimSuffix(strings.TrimPrefix(s, "template["), "]"))
			if !primitiveTypes[inner] {
				return fmt.Errorf("unknown template attribute type %q", s)
			}
			*t = AttributeType{Primitive: inner, Template: true}
			return nil
		}
		p := PrimitiveType(s)
		if !primitiveTypes[p] {
			return fmt.Errorf("unknown attribute type %q", s)
		}
		*t = AttributeType{Primitive: p}
		return nil
	}

	var raw struct {
		AllowCustomValues *bool        `json:"allow_custom_values"`
		Members           []EnumMember `json:"members"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("attribute type must be a string or object: %w", err)
	}
	allowCustom := true
	if raw.AllowCustomValues != nil {
		allowCustom = *raw.AllowCustomValues
	}
	*t = AttributeType{Enum: &EnumType{AllowCustomValues: allowCustom, Members: raw.Members}}
	return nil
}

func (t AttributeType) String() string {
	if t.Enum != nil {
		return "enum"
	}
	if t.Template {
		return "template[" + string(t.Primitive) + "]"
	}
	return string(t.Primitive)
}

// UnmarshalYAML implements the scalar-or-mapping polymorphism of
// AttributeType: a bare string for primitive/template types, or a mapping
// with `members` for an enum.
func (t *AttributeType) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if strings.HasPrefix(s, "template[") && strings.HasSuffix(s, "]") {
			inner := PrimitiveType(strings.TrimSuffix(strings.TrimPrefix(s, "template["), "]"))
			if !primitiveTypes[inner] {
				return fmt.Errorf("line %d: unknown template attribute type %q", node.Line, s)
			}
			*t = AttributeType{Primitive: inner, Template: true}
			return nil
		}
		p := PrimitiveType(s)
		if !primitiveTypes[p] {
			return fmt.Errorf("line %d: unknown attribute type %q", node.Line, s)
		}
		*t = AttributeType{Primitive: p}
		return nil
	case yaml.MappingNode:
		var raw struct {
			AllowCustomValues *bool        `yaml:"allow_custom_values"`
			Members           []EnumMember `yaml:"members"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		allowCustom := true
		if raw.AllowCustomValues != nil {
			allowCustom = *raw.AllowCustomValues
		}
		*t = AttributeType{Enum: &EnumType{AllowCustomValues: allowCustom, Members: raw.Members}}
		return nil
	default:
		return fmt.Errorf("line %d: attribute type must be a string or mapping", node.Line)
	}
}

// Validate checks the enum variant's semantic well-formedness (at least one
// member, no duplicate member ids or values). The primitive/template
// variants have nothing left to check once decoded.
func (t AttributeType) Validate() error {
	if t.Enum == nil {
		return nil
	}
	if len(t.Enum.Members) == 0 {
		return fmt.Errorf("enum type must declare at least one member")
	}
	seenIDs := make(map[string]bool, len(t.Enum.Members))
	seenValues := make(map[any]bool, len(t.Enum.Members))
	for _, m := range t.Enum.Members {
		if seenIDs[m.ID] {
			return fmt.Errorf("duplicate enum member id %q", m.ID)
		}
		seenIDs[m.ID] = true
		if seenValues[m.Value] {
			return fmt.Errorf("duplicate enum member value %v", m.Value)
		}
		seenValues[m.Value] = true
	}
	return nil
}

// RequirementLevelKind is the tag of the RequirementLevel union.
type RequirementLevelKind string

const (
	RequirementRequired              RequirementLevelKind = "required"
	RequirementRecommended           RequirementLevelKind = "recommended"
	RequirementOptIn                 RequirementLevelKind = "opt_in"
	RequirementConditionallyRequired RequirementLevelKind = "conditionally_required"
)

// RequirementLevel is a tagged union: a bare token, or a single-key
// mapping carrying explanatory text.
type RequirementLevel struct {
	Kind RequirementLevelKind
	// Text is set for ConditionallyRequired (always) and optionally for
	// Recommended (`{recommended: text}` form); empty otherwise.
	Text string
}

// Valid reports whether the text field is present exactly when the
// variant requires it.
func (r RequirementLevel) Valid() bool {
	if r.Kind == RequirementConditionallyRequired {
		return r.Text != ""
	}
	if r.Kind != RequirementRecommended && r.Text != "" {
		return false
	}
	return true
}

// Validate reports the same condition as Valid, as an error suitable for
// a diagnostic message.
func (r RequirementLevel) Validate() error {
	if r.Valid() {
		return nil
	}
	if r.Kind == RequirementConditionallyRequired {
		return fmt.Errorf("conditionally_required requires explanatory text")
	}
	return fmt.Errorf("requirement level %q must not carry explanatory text", r.Kind)
}

// MarshalJSON mirrors UnmarshalYAML's tagged-union shape: a bare token for
// Required/Recommended (without text)/OptIn, or a single-key mapping
// carrying explanatory text for ConditionallyRequired and annotated
// Recommended.
func (r RequirementLevel) MarshalJSON() ([]byte, error) {
	if r.Kind == RequirementConditionallyRequired {
		return json.Marshal(map[string]string{"conditionally_required": r.Text})
	}
	if r.Kind == RequirementRecommended && r.Text != "" {
		return json.Marshal(map[string]string{"recommended": r.Text})
	}
	return json.Marshal(string(r.Kind))
}

// UnmarshalJSON is JSON's counterpart to UnmarshalYAML, for round-tripping
// a previously marshaled Resolved Schema.
func (r *RequirementLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch RequirementLevelKind(s) {
		case RequirementRequired, RequirementRecommended, RequirementOptIn:
			*r = RequirementLevel{Kind: RequirementLevelKind(s)}
			return nil
		default:
			return fmt.Errorf("unknown requirement level %q", s)
		}
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("requirement level must be a string or single-key object: %w", err)
	}
	if len(raw) != 1 {
		return fmt.Errorf("requirement level object must have exactly one key")
	}
	for key, text := range raw {
		switch key {
		case "conditionally_required":
			*r = RequirementLevel{Kind: RequirementConditionallyRequired, Text: text}
		case "recommended":
			*r = RequirementLevel{Kind: RequirementRecommended, Text: text}
		default:
			return fmt.Errorf("unknown requirement level key %q", key)
		}
	}
	return nil
}

func (r *RequirementLevel) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		switch RequirementLevelKind(s) {
		case RequirementRequired, RequirementRecommended, RequirementOptIn:
			*r = RequirementLevel{Kind: RequirementLevelKind(s)}
			return nil
		default:
			return fmt.Errorf("line %d: unknown requirement level %q", node.Line, s)
		}
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: requirement level mapping must have exactly one key", node.Line)
		}
		key := node.Content[0].Value
		var text string
		if err := node.Content[1].Decode(&text); err != nil {
			return err
		}
		switch key {
		case "conditionally_required":
			*r = RequirementLevel{Kind: RequirementConditionallyRequired, Text: text}
		case "recommended":
			*r = RequirementLevel{Kind: RequirementRecommended, Text: text}
		default:
			return fmt.Errorf("line %d: unknown requirement level key %q", node.Line, key)
		}
		return nil
	default:
		return fmt.Errorf("line %d: requirement level must be a string or mapping", node.Line)
	}
}

// Attribute is an attribute declaration, in either definition form (id +
// type) or one of the five reference forms (ref, attribute_group_ref,
// resource_ref, span_ref, event_ref).
//
// Only one of ID or the Ref* fields is populated; Validate enforces this.
type Attribute struct {
	// Definition form.
	ID   string         `yaml:"id,omitempty"`
	Type *AttributeType `yaml:"type,omitempty"`

	// Reference forms (mutually exclusive with ID and each other).
	Ref               string `yaml:"ref,omitempty"`
	AttributeGroupRef string `yaml:"attribute_group_ref,omitempty"`
	ResourceRef       string `yaml:"resource_ref,omitempty"`
	SpanRef           string `yaml:"span_ref,omitempty"`
	EventRef          string `yaml:"event_ref,omitempty"`

	// Shared / override fields. On a reference form, any of these that is
	// non-nil/non-zero overrides the corresponding field of the resolved
	// definition.
	Brief             string             `yaml:"brief,omitempty"`
	Note              string             `yaml:"note,omitempty"`
	Examples          any                `yaml:"examples,omitempty"`
	RequirementLevel  *RequirementLevel  `yaml:"requirement_level,omitempty"`
	Tag               string             `yaml:"tag,omitempty"`
	Tags              map[string]string  `yaml:"tags,omitempty"`
	Stability         Stability          `yaml:"stability,omitempty"`
	Deprecated        string             `yaml:"deprecated,omitempty"`
	SamplingRelevant  *bool              `yaml:"sampling_relevant,omitempty"`
	Value             any                `yaml:"value,omitempty"`
}

// ReferenceKind identifies which of the five reference spellings (if any)
// an Attribute uses.
type ReferenceKind string

const (
	ReferenceNone              ReferenceKind = ""
	ReferenceAttribute         ReferenceKind = "ref"
	ReferenceAttributeGroup    ReferenceKind = "attribute_group_ref"
	ReferenceResource          ReferenceKind = "resource_ref"
	ReferenceSpan              ReferenceKind = "span_ref"
	ReferenceEvent             ReferenceKind = "event_ref"
)

// Reference reports which reference form this attribute uses, and the
// referenced id. ReferenceNone means this is a definition form.
func (a Attribute) Reference() (ReferenceKind, string) {
	switch {
	case a.Ref != "":
		return ReferenceAttribute, a.Ref
	case a.AttributeGroupRef != "":
		return ReferenceAttributeGroup, a.AttributeGroupRef
	case a.ResourceRef != "":
		return ReferenceResource, a.ResourceRef
	case a.SpanRef != "":
		return ReferenceSpan, a.SpanRef
	case a.EventRef != "":
		return ReferenceEvent, a.EventRef
	default:
		return ReferenceNone, ""
	}
}

// IsDefinition reports whether this attribute is a definition form (id +
// type) rather than a reference.
func (a Attribute) IsDefinition() bool {
	kind, _ := a.Reference()
	return kind == ReferenceNone
}

// referenceFieldCount counts how many of the mutually-exclusive reference
// fields (and id) are set, for validation.
func (a Attribute) referenceFieldCount() int {
	n := 0
	if a.ID != "" {
		n++
	}
	if a.Ref != "" {
		n++
	}
	if a.AttributeGroupRef != "" {
		n++
	}
	if a.ResourceRef != "" {
		n++
	}
	if a.SpanRef != "" {
		n++
	}
	if a.EventRef != "" {
		n++
	}
	return n
}

// Validate enforces id/ref mutual exclusivity, that a definition form
// declares a type, and that a reference form does not attempt to
// override the type at use time.
func (a Attribute) Validate() error {
	n := a.referenceFieldCount()
	if n == 0 {
		return fmt.Errorf("attribute declaration has neither id nor a reference form")
	}
	if n > 1 {
		return fmt.Errorf("attribute declaration mixes id/ref/attribute_group_ref/resource_ref/span_ref/event_ref")
	}
	if a.IsDefinition() && a.Type == nil {
		return fmt.Errorf("attribute %q is missing required field type", a.ID)
	}
	if !a.IsDefinition() && a.Type != nil {
		_, target := a.Reference()
		return fmt.Errorf("attribute reference %q must not set type, only a definition may declare one", target)
	}
	return nil
}
