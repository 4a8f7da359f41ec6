package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseType,
				Kind:   KindUnknownValType,
				Path:   []string{"section[7]", "type[3]"},
				Detail: "unrecognized valtype tag 0x99",
			},
			contains: []string{"WASM component load failed", "unknown_valtype", "section[7].type[3]", "0x99"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindTruncatedInput,
			},
			contains: []string{"WASM component load failed", "truncated_input"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoader,
				Kind:   KindCoreLoaderError,
				Detail: "core module loader rejected module",
				Cause:  errors.New("invalid core wasm magic"),
			},
			contains: []string{"core_loader_error", "core module loader rejected module", "caused by", "invalid core wasm magic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindBadLeb,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{Phase: PhaseDecode, Kind: KindBadLeb, Path: []string{"foo"}}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindBadLeb}) {
		t.Error("Is should match same kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindTruncatedInput}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Kind: KindBadLeb}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseType, KindUnknownValType).
		Path("section[7]", "type[1]").
		Value(byte(0x99)).
		Cause(cause).
		Detail("unrecognized tag 0x%02x", 0x99).
		Build()

	if err.Phase != PhaseType {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseType)
	}
	if err.Kind != KindUnknownValType {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownValType)
	}
	if len(err.Path) != 2 || err.Path[0] != "section[7]" || err.Path[1] != "type[1]" {
		t.Errorf("Path = %v, want [section[7] type[1]]", err.Path)
	}
	if err.Value != byte(0x99) {
		t.Errorf("Value = %v, want 0x99", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "unrecognized tag 0x99" {
		t.Errorf("Detail = %v, want 'unrecognized tag 0x99'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("BadMagic", func(t *testing.T) {
		err := BadMagic([]byte{0x01, 0x02, 0x03, 0x04})
		if err.Kind != KindBadMagic {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBadMagic)
		}
	})

	t.Run("BadVersion", func(t *testing.T) {
		err := BadVersion(0x02)
		if err.Kind != KindBadVersion {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBadVersion)
		}
	})

	t.Run("BadLayer", func(t *testing.T) {
		err := BadLayer(0x02)
		if err.Kind != KindBadLayer {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBadLayer)
		}
	})

	t.Run("TruncatedInput", func(t *testing.T) {
		err := TruncatedInput([]string{"section[1]"}, 4, 1)
		if err.Kind != KindTruncatedInput {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTruncatedInput)
		}
		if !containsSubstring(err.Detail, "need 4") {
			t.Errorf("Detail = %v, should mention needed bytes", err.Detail)
		}
	})

	t.Run("BadLeb", func(t *testing.T) {
		err := BadLeb([]string{"type[0]"})
		if err.Kind != KindBadLeb {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBadLeb)
		}
	})

	t.Run("SectionSizeMismatch", func(t *testing.T) {
		err := SectionSizeMismatch(7, 10, 8)
		if err.Kind != KindSectionSizeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindSectionSizeMismatch)
		}
		if !containsSubstring(err.Detail, "declared size 10") {
			t.Errorf("Detail = %v, should mention sizes", err.Detail)
		}
	})

	t.Run("DuplicateSection", func(t *testing.T) {
		err := DuplicateSection(10)
		if err.Kind != KindDuplicateSection {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDuplicateSection)
		}
	})

	t.Run("UnknownValType", func(t *testing.T) {
		err := UnknownValType(0x99, []string{"type[2]"})
		if err.Kind != KindUnknownValType {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownValType)
		}
	})

	t.Run("UnknownAliasTarget", func(t *testing.T) {
		err := UnknownAliasTarget(0x09)
		if err.Kind != KindUnknownAliasTarget {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownAliasTarget)
		}
	})

	t.Run("UnknownInstanceKind", func(t *testing.T) {
		err := UnknownInstanceKind(0x02)
		if err.Kind != KindUnknownInstanceKind {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownInstanceKind)
		}
	})

	t.Run("UnknownCanonicalOption", func(t *testing.T) {
		err := UnknownCanonicalOption(0xff)
		if err.Kind != KindUnknownCanonicalOption {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownCanonicalOption)
		}
	})

	t.Run("UnsupportedStartCount", func(t *testing.T) {
		err := UnsupportedStartCount(2)
		if err.Kind != KindUnsupportedStartCount {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupportedStartCount)
		}
	})

	t.Run("NonPrimitiveResourceRep", func(t *testing.T) {
		err := NonPrimitiveResourceRep()
		if err.Kind != KindNonPrimitiveResourceRep {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNonPrimitiveResourceRep)
		}
	})

	t.Run("AllocFailed", func(t *testing.T) {
		err := AllocFailed("out of memory")
		if err.Kind != KindAllocFailed {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocFailed)
		}
	})

	t.Run("CoreLoaderError", func(t *testing.T) {
		cause := errors.New("compile failed")
		err := CoreLoaderError(cause)
		if err.Kind != KindCoreLoaderError {
			t.Errorf("Kind = %v, want %v", err.Kind, KindCoreLoaderError)
		}
		if !errors.Is(err.Cause, cause) {
			t.Errorf("Cause = %v, want %v", err.Cause, cause)
		}
	})
}

func containsSubstring(s, substr string) bool {
	if len(substr) == 0 {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
