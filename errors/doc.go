// Package errors provides the structured error type returned by a failed
// component load.
//
// Errors are categorized by Phase (where in the pipeline the failure
// happened) and Kind (the taxonomy a caller switches on). The Error type
// carries a field path breadcrumb and an optional wrapped cause.
//
// Use the Builder for ad-hoc construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTruncatedInput).
//		Path("section[7]", "type[3]").
//		Detail("need 4 bytes, have 1").
//		Build()
//
// Or use the convenience constructors, one per Kind:
//
//	err := errors.BadMagic(got)
//	err := errors.SectionSizeMismatch(7, declared, consumed)
//
// All errors implement the standard error interface and support
// errors.Is/As via Unwrap.
package errors
