package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the load pipeline the error occurred.
type Phase string

const (
	PhaseEnvelope Phase = "envelope" // magic/version/layer check
	PhaseSection  Phase = "section"  // section split and dispatch
	PhaseDecode   Phase = "decode"   // primitive and flat section decoding
	PhaseType     Phase = "type"     // recursive valtype/deftype decoding
	PhaseLoader   Phase = "loader"   // external core-module collaborator
)

// Kind categorizes the error. Values match the taxonomy a component loader
// reports to its caller; a Kind is never derived, only assigned at the
// point a check fails.
type Kind string

const (
	KindBadMagic                Kind = "bad_magic"
	KindBadVersion              Kind = "bad_version"
	KindBadLayer                Kind = "bad_layer"
	KindTruncatedInput          Kind = "truncated_input"
	KindBadLeb                  Kind = "bad_leb"
	KindSectionSizeMismatch     Kind = "section_size_mismatch"
	KindDuplicateSection        Kind = "duplicate_section"
	KindUnknownValType          Kind = "unknown_valtype"
	KindUnknownAliasTarget      Kind = "unknown_alias_target"
	KindUnknownInstanceKind     Kind = "unknown_instance_kind"
	KindUnknownCanonicalOption  Kind = "unknown_canonical_option"
	KindUnsupportedStartCount   Kind = "unsupported_start_count"
	KindNonPrimitiveResourceRep Kind = "non_primitive_resource_rep"
	KindRecursionTooDeep        Kind = "recursion_too_deep"
	KindAllocFailed             Kind = "alloc_failed"
	KindCoreLoaderError         Kind = "core_loader_error"
)

// Error is the structured error type returned by a failed Load.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Value  any
}

// Error implements the error interface, rendering
// "WASM component load failed: <reason>".
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("WASM component load failed: ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error's Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder for the given phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

// Path sets the field path breadcrumb (section, entity, field).
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value, retained for callers that want it.
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the decode-time error kinds.

// BadMagic reports an envelope magic mismatch.
func BadMagic(got []byte) *Error {
	return New(PhaseEnvelope, KindBadMagic).Detail("unexpected magic bytes %x", got).Build()
}

// BadVersion reports an envelope version mismatch.
func BadVersion(got uint16) *Error {
	return New(PhaseEnvelope, KindBadVersion).Detail("unsupported version %d", got).Build()
}

// BadLayer reports an envelope layer mismatch.
func BadLayer(got uint16) *Error {
	return New(PhaseEnvelope, KindBadLayer).Detail("unsupported layer %d, expected component layer", got).Build()
}

// TruncatedInput reports a bounds check failure on any read.
func TruncatedInput(path []string, need, have int) *Error {
	return New(PhaseDecode, KindTruncatedInput).Path(path...).
		Detail("need %d bytes, have %d", need, have).Build()
}

// BadLeb reports an over-long or unterminated LEB128/SLEB128 encoding.
func BadLeb(path []string) *Error {
	return New(PhaseDecode, KindBadLeb).Path(path...).Detail("malformed LEB128 encoding").Build()
}

// SectionSizeMismatch reports a section body that did not consume exactly
// its declared size.
func SectionSizeMismatch(sectionID byte, declared, consumed int) *Error {
	return New(PhaseSection, KindSectionSizeMismatch).
		Path(fmt.Sprintf("section[%d]", sectionID)).
		Detail("declared size %d, consumed %d", declared, consumed).Build()
}

// DuplicateSection reports a section id whose single-occurrence vector was
// already populated.
func DuplicateSection(sectionID byte) *Error {
	return New(PhaseSection, KindDuplicateSection).
		Path(fmt.Sprintf("section[%d]", sectionID)).Build()
}

// UnknownValType reports an unrecognized valtype tag byte.
func UnknownValType(tag byte, path []string) *Error {
	return New(PhaseType, KindUnknownValType).Path(path...).
		Detail("unrecognized valtype tag 0x%02x", tag).Build()
}

// UnknownAliasTarget reports an unrecognized alias target_kind byte.
func UnknownAliasTarget(targetKind byte) *Error {
	return New(PhaseDecode, KindUnknownAliasTarget).
		Detail("unrecognized alias target kind 0x%02x", targetKind).Build()
}

// UnknownInstanceKind reports a core-instance kind outside {0x00, 0x01}.
func UnknownInstanceKind(kind byte) *Error {
	return New(PhaseDecode, KindUnknownInstanceKind).
		Detail("core instance kind 0x%02x not in {0x00, 0x01}", kind).Build()
}

// UnknownCanonicalOption reports a canonical option kind outside the
// defined set.
func UnknownCanonicalOption(kind byte) *Error {
	return New(PhaseDecode, KindUnknownCanonicalOption).
		Detail("unrecognized canonical option kind 0x%02x", kind).Build()
}

// UnsupportedStartCount reports a start section count greater than one.
func UnsupportedStartCount(count uint32) *Error {
	return New(PhaseDecode, KindUnsupportedStartCount).
		Detail("start count %d exceeds 1", count).Build()
}

// NonPrimitiveResourceRep reports a resource type whose representation is
// not a primitive valtype — a documented current limitation.
func NonPrimitiveResourceRep() *Error {
	return New(PhaseType, KindNonPrimitiveResourceRep).
		Detail("resource representation must be a primitive valtype").Build()
}

// RecursionTooDeep reports a valtype/deftype nesting deeper than the
// configured limit, protecting against stack exhaustion from a
// maliciously nested type tree.
func RecursionTooDeep(depth, max int) *Error {
	return New(PhaseType, KindRecursionTooDeep).
		Detail("type nesting depth %d exceeds limit %d", depth, max).Build()
}

// AllocFailed reports an allocation failure while materializing the tree.
func AllocFailed(detail string) *Error {
	return New(PhaseDecode, KindAllocFailed).Detail("%s", detail).Build()
}

// CoreLoaderError wraps a failure reported by the external core-module
// loader collaborator, passing its message through unchanged.
func CoreLoaderError(cause error) *Error {
	return New(PhaseLoader, KindCoreLoaderError).Cause(cause).
		Detail("core module loader rejected module").Build()
}
