package component

import (
	"fmt"

	"go.bytecodealliance.org/wit"
)

// valResolver converts a single ValType to wit.Type. Record/list/tuple/option/
// result/variant all recurse through one of these rather than back through
// Resolve directly, so the same field-building logic serves both the global
// type space (Resolve, resolveTypeIndex) and an instance's internal type
// space (resolveInternalType) without duplicating the wit.TypeDef assembly
// in two places.
type valResolver func(ValType) (wit.Type, error)

// TypeResolver converts component binary types to wit.Type
type TypeResolver struct {
	types         []Type
	instanceTypes []uint32 // Maps instance index to type index
}

// NewTypeResolverWithInstances creates a resolver with instance type mappings
func NewTypeResolverWithInstances(types []Type, instanceTypes []uint32) *TypeResolver {
	return &TypeResolver{types: types, instanceTypes: instanceTypes}
}

// Resolve converts a ValType to wit.Type
func (r *TypeResolver) Resolve(cvt ValType) (wit.Type, error) {
	switch t := cvt.(type) {
	case PrimValType:
		return r.resolvePrimitive(t.Type)
	case TypeIndexRef:
		return r.resolveTypeIndex(t.Index)
	case typeAlias:
		return r.resolveTypeAlias(t)
	case RecordType:
		return buildRecord(t, r.Resolve)
	case ListType:
		return buildList(t, r.Resolve)
	case TupleType:
		return buildTuple(t, r.Resolve)
	case FlagsType:
		return buildFlags(t), nil
	case EnumType:
		return buildEnum(t), nil
	case OptionType:
		return buildOption(t, r.Resolve)
	case ResultType:
		return buildResult(t, r.Resolve)
	case VariantType:
		return buildVariant(t, r.Resolve)
	case BorrowType, OwnType:
		// Resource handles (own<T>/borrow<T>) are u32 at the Canonical ABI
		// level regardless of the resource they reference.
		return wit.U32{}, nil
	default:
		return nil, fmt.Errorf("unsupported component val type: %T", cvt)
	}
}

func (r *TypeResolver) resolvePrimitive(p PrimType) (wit.Type, error) {
	switch p {
	case PrimBool:
		return wit.Bool{}, nil
	case PrimS8:
		return wit.S8{}, nil
	case PrimU8:
		return wit.U8{}, nil
	case PrimS16:
		return wit.S16{}, nil
	case PrimU16:
		return wit.U16{}, nil
	case PrimS32:
		return wit.S32{}, nil
	case PrimU32:
		return wit.U32{}, nil
	case PrimS64:
		return wit.S64{}, nil
	case PrimU64:
		return wit.U64{}, nil
	case PrimF32:
		return wit.F32{}, nil
	case PrimF64:
		return wit.F64{}, nil
	case PrimChar:
		return wit.Char{}, nil
	case PrimString:
		return wit.String{}, nil
	default:
		return nil, fmt.Errorf("unknown primitive type: 0x%02x", p)
	}
}

// resolveTypeIndex resolves a reference into the global type space (the
// TypeIndexSpace built by decoding the binary's Type sections), as opposed
// to resolveInternalType's instance-local space.
func (r *TypeResolver) resolveTypeIndex(idx uint32) (wit.Type, error) {
	if int(idx) >= len(r.types) {
		return nil, fmt.Errorf("type index out of range: %d >= %d", idx, len(r.types))
	}

	ct := r.types[idx]

	switch t := ct.(type) {
	case PrimValType:
		return r.resolvePrimitive(t.Type)
	case RecordType:
		return buildRecord(t, r.Resolve)
	case ListType:
		return buildList(t, r.Resolve)
	case TupleType:
		return buildTuple(t, r.Resolve)
	case FlagsType:
		return buildFlags(t), nil
	case EnumType:
		return buildEnum(t), nil
	case OptionType:
		return buildOption(t, r.Resolve)
	case ResultType:
		return buildResult(t, r.Resolve)
	case VariantType:
		return buildVariant(t, r.Resolve)
	case *FuncType:
		return nil, fmt.Errorf("cannot convert function type to wit.Type")
	case *InstanceType:
		// An InstanceType referenced from parameter/result position denotes a
		// resource handle, same Canonical-ABI u32 representation as own/borrow.
		return wit.U32{}, nil
	case OwnType, BorrowType:
		return wit.U32{}, nil
	case resourceType:
		// A resource type's own handle is a u32 at the Canonical ABI level,
		// same as own<T>/borrow<T> referencing it.
		return wit.U32{}, nil
	case *componentTypeDecl:
		return nil, fmt.Errorf("cannot convert component type decl to wit.Type")
	case TypeIndexRef:
		return r.resolveTypeIndex(t.Index)
	case typeAlias:
		return r.resolveTypeAlias(t)
	default:
		return nil, fmt.Errorf("unsupported type at index %d: %T", idx, ct)
	}
}

// buildRecord assembles a wit.Record from a component RecordType, resolving
// each field's ValType via the supplied resolver.
func buildRecord(rec RecordType, resolve valResolver) (wit.Type, error) {
	fields := make([]wit.Field, len(rec.Fields))
	for i, f := range rec.Fields {
		fieldType, err := resolve(f.Type)
		if err != nil {
			return nil, fmt.Errorf("record field %q: %w", f.Name, err)
		}
		fields[i] = wit.Field{Name: f.Name, Type: fieldType}
	}
	return &wit.TypeDef{Kind: &wit.Record{Fields: fields}}, nil
}

func buildList(l ListType, resolve valResolver) (wit.Type, error) {
	elemType, err := resolve(l.ElemType)
	if err != nil {
		return nil, fmt.Errorf("list element: %w", err)
	}
	return &wit.TypeDef{Kind: &wit.List{Type: elemType}}, nil
}

func buildTuple(tt TupleType, resolve valResolver) (wit.Type, error) {
	types := make([]wit.Type, len(tt.Types))
	for i, elem := range tt.Types {
		elemType, err := resolve(elem)
		if err != nil {
			return nil, fmt.Errorf("tuple element %d: %w", i, err)
		}
		types[i] = elemType
	}
	return &wit.TypeDef{Kind: &wit.Tuple{Types: types}}, nil
}

// buildFlags and buildEnum take no resolver: flag/enum cases are plain names,
// never nested ValTypes.
func buildFlags(f FlagsType) wit.Type {
	flags := make([]wit.Flag, len(f.Names))
	for i, name := range f.Names {
		flags[i] = wit.Flag{Name: name}
	}
	return &wit.TypeDef{Kind: &wit.Flags{Flags: flags}}
}

func buildEnum(e EnumType) wit.Type {
	cases := make([]wit.EnumCase, len(e.Cases))
	for i, name := range e.Cases {
		cases[i] = wit.EnumCase{Name: name}
	}
	return &wit.TypeDef{Kind: &wit.Enum{Cases: cases}}
}

func buildOption(o OptionType, resolve valResolver) (wit.Type, error) {
	innerType, err := resolve(o.Type)
	if err != nil {
		return nil, fmt.Errorf("option type: %w", err)
	}
	return &wit.TypeDef{Kind: &wit.Option{Type: innerType}}, nil
}

func buildResult(res ResultType, resolve valResolver) (wit.Type, error) {
	var okType, errType wit.Type
	var err error

	if res.OK != nil {
		okType, err = resolve(*res.OK)
		if err != nil {
			return nil, fmt.Errorf("result ok: %w", err)
		}
	}
	if res.Err != nil {
		errType, err = resolve(*res.Err)
		if err != nil {
			return nil, fmt.Errorf("result err: %w", err)
		}
	}
	return &wit.TypeDef{Kind: &wit.Result{OK: okType, Err: errType}}, nil
}

func buildVariant(v VariantType, resolve valResolver) (wit.Type, error) {
	cases := make([]wit.Case, len(v.Cases))
	for i, c := range v.Cases {
		var caseType wit.Type
		if c.Type != nil {
			var err error
			caseType, err = resolve(*c.Type)
			if err != nil {
				return nil, fmt.Errorf("variant case %q: %w", c.Name, err)
			}
		}
		cases[i] = wit.Case{Name: c.Name, Type: caseType}
	}
	return &wit.TypeDef{Kind: &wit.Variant{Cases: cases}}, nil
}

// resolveInternalType resolves a type that's internal to an InstanceType.
// TypeIndexRef indices are resolved against internalTypes (the instance's
// own declaration-order type space) rather than the resolver's global types,
// falling back to global resolution only when an index isn't found locally.
func (r *TypeResolver) resolveInternalType(cvt ValType, internalTypes map[uint32]Type) (wit.Type, error) {
	self := func(vt ValType) (wit.Type, error) {
		return r.resolveInternalType(vt, internalTypes)
	}

	switch t := cvt.(type) {
	case TypeIndexRef:
		return r.resolveInternalIndex(t.Index, internalTypes)
	case RecordType:
		return buildRecord(t, self)
	case ListType:
		return buildList(t, self)
	case TupleType:
		return buildTuple(t, self)
	case OptionType:
		return buildOption(t, self)
	case ResultType:
		return buildResult(t, self)
	case VariantType:
		return buildVariant(t, self)
	default:
		// PrimValType, FlagsType, EnumType, typeAlias don't nest other
		// ValTypes that need instance-local lookup, so normal resolution
		// already does the right thing.
		return r.Resolve(cvt)
	}
}

// resolveInternalIndex looks up a TypeIndexRef's target within an instance's
// internal type map, chasing at most one further internal indirection before
// falling back to the resolver's global type space.
func (r *TypeResolver) resolveInternalIndex(idx uint32, internalTypes map[uint32]Type) (wit.Type, error) {
	internalType, found := internalTypes[idx]
	if !found {
		return r.resolveTypeIndex(idx)
	}

	if ref, isRef := internalType.(TypeIndexRef); isRef {
		if ref.Index != idx {
			if inner, found := internalTypes[ref.Index]; found {
				if innerValType, ok := inner.(ValType); ok {
					return r.resolveInternalType(innerValType, internalTypes)
				}
			}
		}
		return r.resolveTypeIndex(ref.Index)
	}

	valType, ok := internalType.(ValType)
	if !ok {
		return nil, fmt.Errorf("internal type index %d is not a value type: %T", idx, internalType)
	}
	return r.resolveInternalType(valType, internalTypes)
}

// resolveTypeAlias resolves a type alias from an instance export
func (r *TypeResolver) resolveTypeAlias(alias typeAlias) (wit.Type, error) {
	// Get the instance's type index
	if int(alias.InstanceIdx) >= len(r.instanceTypes) {
		return nil, fmt.Errorf("instance index %d out of range", alias.InstanceIdx)
	}
	typeIdx := r.instanceTypes[alias.InstanceIdx]

	// Get the instance type
	if int(typeIdx) >= len(r.types) {
		return nil, fmt.Errorf("instance type index %d out of range", typeIdx)
	}

	instType, ok := r.types[typeIdx].(*InstanceType)
	if !ok {
		return nil, fmt.Errorf("type at index %d is not an instance type: %T", typeIdx, r.types[typeIdx])
	}

	// Build the internal type index space for this instance type.
	// Type indices within an instance type are assigned by their position
	// in the declaration stream. Each declaration gets an index, but only
	// type declarations (kind=0x01) define actual types.
	internalTypes := make(map[uint32]Type)
	for i, decl := range instType.Decls {
		if d, ok := decl.DeclType.(InstanceDeclType); ok {
			internalTypes[uint32(i)] = d.Type
		}
	}

	// Find the export by name and get its type
	for _, decl := range instType.Decls {
		export, ok := decl.DeclType.(InstanceDeclExport)
		if !ok || (decl.Name != alias.ExportName && export.Export.Name != alias.ExportName) {
			continue
		}
		// Type exports have kind 0x03
		if export.Export.externDesc.Kind != 0x03 {
			continue
		}
		internalIdx := export.Export.externDesc.TypeIndex
		internalType, found := internalTypes[internalIdx]
		if !found {
			return nil, fmt.Errorf("internal type index %d not found in instance type", internalIdx)
		}
		return r.resolveInternalType(internalType.(ValType), internalTypes)
	}

	return nil, fmt.Errorf("type export %q not found in instance %d", alias.ExportName, alias.InstanceIdx)
}

// ResolveFunc resolves a component function type to wit types
func (r *TypeResolver) ResolveFunc(f *FuncType) (params []wit.Type, result wit.Type, err error) {
	return resolveFuncParams(f, r.Resolve)
}

// ResolveFuncWithInternalTypes resolves a function type using instance-internal type context
func (r *TypeResolver) ResolveFuncWithInternalTypes(f *FuncType, internalTypes map[uint32]Type) (params []wit.Type, result wit.Type, err error) {
	return resolveFuncParams(f, func(vt ValType) (wit.Type, error) {
		return r.resolveInternalType(vt, internalTypes)
	})
}

// resolveFuncParams resolves every parameter and the optional result of a
// FuncType through the given resolver, shared by ResolveFunc and
// ResolveFuncWithInternalTypes since they differ only in which resolver they
// pass.
func resolveFuncParams(f *FuncType, resolve valResolver) (params []wit.Type, result wit.Type, err error) {
	params = make([]wit.Type, len(f.Params))
	for i, p := range f.Params {
		params[i], err = resolve(p.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("param %q: %w", p.Name, err)
		}
	}

	if f.Result != nil {
		result, err = resolve(*f.Result)
		if err != nil {
			return nil, nil, fmt.Errorf("result: %w", err)
		}
	}

	return params, result, nil
}

// ResolveFuncType finds and resolves a function type by index
func (r *TypeResolver) ResolveFuncType(typeIdx uint32) (*FuncType, error) {
	if int(typeIdx) >= len(r.types) {
		return nil, fmt.Errorf("type index out of range: %d >= %d", typeIdx, len(r.types))
	}

	ft, ok := r.types[typeIdx].(*FuncType)
	if !ok {
		return nil, fmt.Errorf("type at index %d is not a function type: %T", typeIdx, r.types[typeIdx])
	}

	return ft, nil
}
