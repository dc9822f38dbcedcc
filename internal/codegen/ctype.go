package codegen

import (
	"fmt"

	"github.com/evanlang2/evanlang2c/internal/types"
)

// cBaseName spells a primitive monotype in C, per the fixed prelude's
// <stdint.h>/<stdbool.h> availability.
func cBaseName(k types.BaseKind) string {
	switch k {
	case types.KUnit:
		return "void"
	case types.KI64:
		return "int64_t"
	case types.KCInt:
		return "int"
	case types.KF64:
		return "double"
	case types.KBool:
		return "bool"
	case types.KChar:
		return "char"
	default:
		return "void"
	}
}

// ctype returns the C spelling of a ground monotype, emitting any struct
// or typedef it needs into the type buffers the first time it is seen.
// Callers in value position must special-case Unit themselves: ctype
// returns "void" for it, which is only meaningful in a return/pointer
// position, never as a variable's own storage type.
func (e *Emitter) ctype(m types.Mono) string {
	switch t := types.InnerMono(m).(type) {
	case *types.TBase:
		return cBaseName(t.Kind)
	case *types.TPointer:
		if isUnit(t.Elem) {
			return "void *"
		}
		return e.ctype(t.Elem) + " *"
	case *types.TTuple:
		return "struct " + e.tupleType(t)
	case *types.TFunction:
		return e.funcPtrType(t)
	case *types.TOpaque:
		return "void *"
	case *types.TUser:
		return "struct " + e.userType(t.Inst)
	default:
		// Var/Indir: only reachable if a caller asks for the C type of a
		// monotype that was never fully ground by monomorphization.
		return "void"
	}
}

// tupleType returns (emitting on first use) the struct name backing a
// tuple monotype, fields named _0, _1, ... in position order.
func (e *Emitter) tupleType(t *types.TTuple) string {
	key := mangle(t)
	if name, ok := e.tupleNames[key]; ok {
		return name
	}
	name := "tup_" + key
	e.tupleNames[key] = name

	fmt.Fprintf(&e.typeFwd, "struct %s;\n", name)
	fmt.Fprintf(&e.typeDefs, "struct %s {\n", name)
	for i, elem := range t.Elems {
		fmt.Fprintf(&e.typeDefs, "\t%s _%d;\n", e.ctype(elem), i)
	}
	fmt.Fprintf(&e.typeDefs, "};\n\n")
	return name
}

// funcPtrType returns (emitting on first use) the typedef name backing a
// function monotype, lowered to a plain C function pointer: raw pointers,
// not closures, per the language's C-interop story.
func (e *Emitter) funcPtrType(t *types.TFunction) string {
	key := mangle(t)
	if name, ok := e.funcPtrNames[key]; ok {
		return name
	}
	name := "fnp_" + key
	e.funcPtrNames[key] = name

	retC := "void"
	if !isUnit(t.Result) {
		retC = e.ctype(t.Result)
	}
	params := flattenArgs(t.Arg)
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if isUnit(p) {
			continue
		}
		parts = append(parts, e.ctype(p))
	}
	fmt.Fprintf(&e.typeDefs, "typedef %s (*%s)(%s);\n\n", retC, name, joinOrVoid(parts))
	return name
}

// userType returns (emitting on first use) the struct name backing an
// instantiated user type, dispatching on its declared kind.
func (e *Emitter) userType(inst *types.InstUser) string {
	key := inst.Def.ReprName + "\x00" + mangleArgs(inst.Args)
	if name, ok := e.userNames[key]; ok {
		return name
	}
	name := mangleUser(inst)
	e.userNames[key] = name

	switch inst.Def.Info.Kind {
	case types.InfoAlias:
		// An alias has no storage of its own; route through its expansion
		// and remember the alias name as a synonym so repeated references
		// don't re-walk the chain.
		aliased := e.ctype(inst.Monify())
		e.userNames[key] = aliased
		return aliased
	case types.InfoStruct:
		e.emitStructBody(inst, name)
	case types.InfoEnum:
		e.emitEnumBody(inst, name)
	}
	return name
}

func (e *Emitter) emitStructBody(inst *types.InstUser, name string) {
	fmt.Fprintf(&e.typeFwd, "struct %s;\n", name)
	fmt.Fprintf(&e.typeDefs, "struct %s {\n", name)
	for _, fd := range inst.SortedFields() {
		fty, _ := inst.FieldMono(fd.Name)
		fmt.Fprintf(&e.typeDefs, "\t%s %s;\n", e.ctype(fty), fd.Name)
	}
	fmt.Fprintf(&e.typeDefs, "};\n\n")
}

func (e *Emitter) emitEnumBody(inst *types.InstUser, name string) {
	fmt.Fprintf(&e.typeFwd, "struct %s;\n", name)
	fmt.Fprintf(&e.typeDefs, "enum %s_tag {\n", name)
	for _, vd := range inst.Def.Info.Variants {
		fmt.Fprintf(&e.typeDefs, "\t%s,\n", tagName(name, vd.Name))
	}
	fmt.Fprintf(&e.typeDefs, "};\n\n")

	fmt.Fprintf(&e.typeDefs, "struct %s {\n\tenum %s_tag tag;\n", name, name)
	hasPayload := false
	for _, vd := range inst.Def.Info.Variants {
		if vd.Type == nil {
			continue
		}
		hasPayload = true
	}
	if hasPayload {
		fmt.Fprintf(&e.typeDefs, "\tunion {\n")
		for _, vd := range inst.Def.Info.Variants {
			payload, has, _ := inst.VariantMono(vd.Name)
			if !has {
				continue
			}
			fmt.Fprintf(&e.typeDefs, "\t\t%s %s;\n", e.ctype(payload), vd.Name)
		}
		fmt.Fprintf(&e.typeDefs, "\t} data;\n")
	}
	fmt.Fprintf(&e.typeDefs, "};\n\n")
}

// tagName is the enumerator spelling for one variant of an emitted enum.
func tagName(enumName, variant string) string {
	return enumName + "_" + variant + "_TAG"
}

// flattenArgs expands a TFunction's Arg into its positional parameter
// list: Unit is zero params, any other non-tuple mono is one param, a
// tuple's elements are the params (matching the skeleton-construction
// rule §4.3 uses to build multi-argument function types).
func flattenArgs(arg types.Mono) []types.Mono {
	if isUnit(arg) {
		return nil
	}
	inner := types.InnerMono(arg)
	if tup, ok := inner.(*types.TTuple); ok {
		return tup.Elems
	}
	return []types.Mono{arg}
}

func mangleArgs(args []types.Mono) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += "_"
		}
		s += mangle(a)
	}
	return s
}

func joinOrVoid(parts []string) string {
	if len(parts) == 0 {
		return "void"
	}
	s := parts[0]
	for _, p := range parts[1:] {
		s += ", " + p
	}
	return s
}
