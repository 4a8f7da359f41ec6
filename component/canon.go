package component

import (
	"fmt"
	"io"

	"github.com/kestrelwasm/component/errors"
)

// Canon kinds per Component Model binary format section 8. The async
// variants (task.cancel, subtask.cancel, resource.drop-async) are not in
// spec.md's own table but are part of the wire format this loader actually
// has to parse; see SPEC_FULL.md §4 ("supplemented features").
const (
	CanonLift              byte = 0x00 // Followed by 0x00 discriminant
	CanonLower             byte = 0x01 // Followed by 0x00 discriminant
	CanonResourceNew       byte = 0x02
	CanonResourceDrop      byte = 0x03
	CanonResourceRep       byte = 0x04
	CanonTaskCancel        byte = 0x05
	CanonSubtaskCancel     byte = 0x06
	CanonResourceDropAsync byte = 0x07
)

// CanonOption kinds per Component Model binary format
const (
	CanonOptUTF8         byte = 0x00
	CanonOptUTF16        byte = 0x01
	CanonOptCompactUTF16 byte = 0x02
	CanonOptMemory       byte = 0x03
	CanonOptRealloc      byte = 0x04
	CanonOptPostReturn   byte = 0x05
	CanonOptAsync        byte = 0x06
	CanonOptCallback     byte = 0x07
	CanonOptCoreType     byte = 0x08
	CanonOptGc           byte = 0x09
)

// encodingByOptionKind maps the subset of CanonOption kinds that name a
// string encoding to the Encoding value CanonDef.GetStringEncoding reports.
var encodingByOptionKind = map[byte]byte{
	CanonOptUTF8:         0,
	CanonOptUTF16:        1,
	CanonOptCompactUTF16: 2,
}

// indexCarryingOptionKinds is the set of CanonOption kinds whose payload is
// a single LEB128 index (into the memory, func, or core-type index space,
// depending on kind) rather than no payload at all.
var indexCarryingOptionKinds = map[byte]bool{
	CanonOptMemory:     true,
	CanonOptRealloc:    true,
	CanonOptPostReturn: true,
	CanonOptCallback:   true,
	CanonOptCoreType:   true,
}

// resourceOpKinds is the set of canon kinds whose entire payload is a
// single resource-type index: resource.new, resource.drop, resource.rep,
// and the async resource.drop-async variant.
var resourceOpKinds = map[byte]bool{
	CanonResourceNew:       true,
	CanonResourceDrop:      true,
	CanonResourceRep:       true,
	CanonResourceDropAsync: true,
}

// CanonDef holds parsed canonical ABI operation data
type CanonDef struct {
	Options      []CanonOption
	RawData      []byte
	FuncIndex    uint32
	TypeIndex    uint32
	ResourceType uint32
	Kind         byte
}

// CanonOption holds a single option from canon lift/lower
type CanonOption struct {
	Index    uint32
	Kind     byte
	Encoding byte
}

// ParseCanonSection decodes a Canon section (section 8) into a single
// CanonDef. The section's outer vec-count must be exactly 1: the
// component-model-async revision of the binary format reuses the vec
// encoding from the core Canon proposal but never populates it with more
// than one entry, so a count other than 1 is rejected rather than looped
// over.
func ParseCanonSection(data []byte) (*CanonDef, error) {
	r := getReader(data)
	defer putReader(r)

	count, err := readLEB128(r)
	if err != nil {
		return nil, fmt.Errorf("read canon vec count: %w", err)
	}
	if count != 1 {
		return nil, fmt.Errorf("expected 1 canon in section, got %d", count)
	}

	kind, err := readByte(r)
	if err != nil {
		return nil, fmt.Errorf("read canon kind: %w", err)
	}

	def := &CanonDef{Kind: kind, RawData: data}

	switch {
	case kind == CanonLift:
		if err := decodeCanonLift(r, def); err != nil {
			return nil, err
		}
	case kind == CanonLower:
		if err := decodeCanonLower(r, def); err != nil {
			return nil, err
		}
	case resourceOpKinds[kind]:
		if err := decodeCanonResourceOp(r, def); err != nil {
			return nil, err
		}
	case kind == CanonTaskCancel || kind == CanonSubtaskCancel:
		// task.cancel and subtask.cancel carry no payload beyond the kind
		// byte already consumed above.
	default:
		return nil, errors.UnknownCanonicalOption(kind)
	}

	if r.Len() != 0 {
		return nil, errors.SectionSizeMismatch(8, len(data), len(data)-r.Len())
	}

	return def, nil
}

// decodeCanonLift reads the body of a canon lift entry:
// 0x00 0x00 core_func:u32 opts:vec(canonopt) type:u32. The second byte is a
// discriminant reserved for a future lift variant; only 0x00 is defined
// today.
func decodeCanonLift(r io.Reader, def *CanonDef) error {
	if err := expectCanonSubKind(r, "lift"); err != nil {
		return err
	}

	funcIdx, err := readLEB128(r)
	if err != nil {
		return fmt.Errorf("read core func index: %w", err)
	}
	def.FuncIndex = funcIdx

	opts, err := readCanonOptions(r)
	if err != nil {
		return fmt.Errorf("read lift options: %w", err)
	}
	def.Options = opts

	typeIdx, err := readLEB128(r)
	if err != nil {
		return fmt.Errorf("read lift type index: %w", err)
	}
	def.TypeIndex = typeIdx
	return nil
}

// decodeCanonLower reads the body of a canon lower entry:
// 0x01 0x00 func:u32 opts:vec(canonopt).
func decodeCanonLower(r io.Reader, def *CanonDef) error {
	if err := expectCanonSubKind(r, "lower"); err != nil {
		return err
	}

	funcIdx, err := readLEB128(r)
	if err != nil {
		return fmt.Errorf("read component func index: %w", err)
	}
	def.FuncIndex = funcIdx

	opts, err := readCanonOptions(r)
	if err != nil {
		return fmt.Errorf("read lower options: %w", err)
	}
	def.Options = opts
	return nil
}

// expectCanonSubKind reads the reserved discriminant byte lift/lower both
// carry immediately after the top-level canon kind and rejects anything
// but the one value currently defined for it.
func expectCanonSubKind(r io.Reader, op string) error {
	subKind, err := readByte(r)
	if err != nil {
		return fmt.Errorf("read %s sub-kind: %w", op, err)
	}
	if subKind != 0x00 {
		return fmt.Errorf("unknown %s sub-kind: 0x%02x", op, subKind)
	}
	return nil
}

// decodeCanonResourceOp reads the single-field body shared by
// resource.new, resource.drop, resource.rep, and resource.drop-async: a
// resource-type index and nothing else.
func decodeCanonResourceOp(r io.Reader, def *CanonDef) error {
	resourceType, err := readLEB128(r)
	if err != nil {
		return fmt.Errorf("read resource type index: %w", err)
	}
	def.ResourceType = resourceType
	return nil
}

func readCanonOptions(r io.Reader) ([]CanonOption, error) {
	count, err := readLEB128(r)
	if err != nil {
		return nil, fmt.Errorf("read option count: %w", err)
	}

	opts := make([]CanonOption, 0, count)
	for i := uint32(0); i < count; i++ {
		opt, err := readCanonOption(r)
		if err != nil {
			return nil, fmt.Errorf("read option %d: %w", i, err)
		}
		opts = append(opts, opt)
	}

	return opts, nil
}

// readCanonOption reads one canonopt entry: a kind byte, followed by a
// LEB128 index for the kinds in indexCarryingOptionKinds, or nothing at
// all for the rest (the three encoding tags, async, gc).
func readCanonOption(r io.Reader) (CanonOption, error) {
	kind, err := readByte(r)
	if err != nil {
		return CanonOption{}, fmt.Errorf("read option kind: %w", err)
	}

	opt := CanonOption{Kind: kind}

	if enc, isEncoding := encodingByOptionKind[kind]; isEncoding {
		opt.Encoding = enc
		return opt, nil
	}

	if indexCarryingOptionKinds[kind] {
		idx, err := readLEB128(r)
		if err != nil {
			return CanonOption{}, fmt.Errorf("read option index: %w", err)
		}
		opt.Index = idx
		return opt, nil
	}

	switch kind {
	case CanonOptAsync, CanonOptGc:
		return opt, nil
	default:
		return CanonOption{}, errors.UnknownCanonicalOption(kind)
	}
}

// GetMemoryIndex returns the memory index, defaulting to 0
func (c *CanonDef) GetMemoryIndex() uint32 {
	for _, opt := range c.Options {
		if opt.Kind == CanonOptMemory {
			return opt.Index
		}
	}
	return 0
}

// GetReallocIndex returns the realloc function index, or -1 if unspecified
func (c *CanonDef) GetReallocIndex() int32 {
	for _, opt := range c.Options {
		if opt.Kind == CanonOptRealloc {
			return int32(opt.Index)
		}
	}
	return -1
}

// GetStringEncoding returns 0=UTF8, 1=UTF16, 2=CompactUTF16. Defaults to UTF8.
func (c *CanonDef) GetStringEncoding() byte {
	for _, opt := range c.Options {
		if enc, ok := encodingByOptionKind[opt.Kind]; ok {
			return enc
		}
	}
	return 0
}
