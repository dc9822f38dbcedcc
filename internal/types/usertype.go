package types

import "strings"

// InfoKind tags what a user type's declared body resolves to.
type InfoKind int

const (
	InfoAlias InfoKind = iota
	InfoStruct
	InfoEnum
)

// FieldDef is one field of a struct-kind user type.
type FieldDef struct {
	Name string
	Type Mono
}

// VariantDef is one variant of an enum-kind user type; Type is nil for a
// payload-less variant.
type VariantDef struct {
	Name string
	Type Mono
}

// UserInfo is the mutable, once-set resolution of a user type's
// declaration body. It starts empty (set=false) so that a declaration can
// reference itself cyclically through a pointer or option before its own
// body has finished elaborating, so mutually recursive type definitions resolve.
type UserInfo struct {
	set      bool
	Kind     InfoKind
	Alias    Mono
	Fields   []FieldDef
	Variants []VariantDef
}

// IsSet reports whether the info has been resolved yet.
func (u *UserInfo) IsSet() bool { return u.set }

// SetAlias resolves the info to an alias body. Resolving twice is a bug in
// the caller (elaboration runs each declaration's body exactly once).
func (u *UserInfo) SetAlias(m Mono) {
	u.set, u.Kind, u.Alias = true, InfoAlias, m
}

// SetStruct resolves the info to a struct body.
func (u *UserInfo) SetStruct(fields []FieldDef) {
	u.set, u.Kind, u.Fields = true, InfoStruct, fields
}

// SetEnum resolves the info to an enum body.
func (u *UserInfo) SetEnum(variants []VariantDef) {
	u.set, u.Kind, u.Variants = true, InfoEnum, variants
}

// UserType is one `type` declaration.
type UserType struct {
	Name     string // as written in source
	ReprName string // module-unique C-safe name
	TyVars   []string
	Info     *UserInfo
}

// NewUserType allocates a user type with an empty (not-yet-set) info cell,
// ready to be referenced before its body is elaborated.
func NewUserType(name, reprName string, tyVars []string) *UserType {
	return &UserType{Name: name, ReprName: reprName, TyVars: tyVars, Info: &UserInfo{}}
}

// InstUser is a user type applied to a vector of type arguments, the same
// length as Def.TyVars.
type InstUser struct {
	Def  *UserType
	Args []Mono

	// aliasMonoCache memoizes the expansion of an alias-kind user type, so
	// repeated unification attempts don't re-substitute the body.
	aliasMonoCache Mono
	aliasCached    bool
}

func (u *InstUser) String() string {
	if len(u.Args) == 0 {
		return u.Def.Name
	}
	parts := make([]string, len(u.Args))
	for i, a := range u.Args {
		parts[i] = a.String()
	}
	return u.Def.Name + "(" + strings.Join(parts, ", ") + ")"
}

// substitution builds the TyVars -> Args map used to instantiate a
// declared body at this InstUser's argument vector.
func (u *InstUser) substitution() map[string]Mono {
	sub := make(map[string]Mono, len(u.Def.TyVars))
	for i, v := range u.Def.TyVars {
		if i < len(u.Args) {
			sub[v] = u.Args[i]
		}
	}
	return sub
}

// Monify expands this instantiation's declared body (substituting Args for
// TyVars). For an alias this is the aliased monotype; for a struct/enum it
// is the instantiation wrapped back up as a TUser (the struct/enum body is
// reached through FieldMono/VariantMono instead, since those bodies are
// not single monotypes).
func (u *InstUser) Monify() Mono {
	if u.Def.Info.Kind != InfoAlias {
		return &TUser{Inst: u}
	}
	if u.aliasCached {
		return u.aliasMonoCache
	}
	m := Substitute(u.Def.Info.Alias, u.substitution())
	u.aliasMonoCache, u.aliasCached = m, true
	return m
}

// FieldMono returns the instantiated type of a struct field.
func (u *InstUser) FieldMono(field string) (Mono, bool) {
	if u.Def.Info.Kind != InfoStruct {
		return nil, false
	}
	sub := u.substitution()
	for _, f := range u.Def.Info.Fields {
		if f.Name == field {
			return Substitute(f.Type, sub), true
		}
	}
	return nil, false
}

// SortedFields returns the struct's fields sorted by name, the order
// requires struct-literal fields to be matched in.
func (u *InstUser) SortedFields() []FieldDef {
	if u.Def.Info.Kind != InfoStruct {
		return nil
	}
	out := append([]FieldDef(nil), u.Def.Info.Fields...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Name > out[j].Name; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// VariantMono returns the instantiated payload type of an enum variant,
// and whether the variant carries a payload at all.
func (u *InstUser) VariantMono(variant string) (Mono, bool, bool) {
	if u.Def.Info.Kind != InfoEnum {
		return nil, false, false
	}
	sub := u.substitution()
	for _, v := range u.Def.Info.Variants {
		if v.Name == variant {
			if v.Type == nil {
				return nil, false, true
			}
			return Substitute(v.Type, sub), true, true
		}
	}
	return nil, false, false
}

// Substitute replaces every TVar whose Name is a key of sub with its
// mapped Mono, leaving everything else (including TIndir) untouched. It is
// used only to instantiate declared-type bodies at concrete arguments, not
// for unification (unification never substitutes — it mutates cells).
func Substitute(m Mono, sub map[string]Mono) Mono {
	switch t := m.(type) {
	case *TBase:
		return t
	case *TPointer:
		return &TPointer{Elem: Substitute(t.Elem, sub)}
	case *TTuple:
		elems := make([]Mono, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = Substitute(e, sub)
		}
		return &TTuple{Elems: elems}
	case *TFunction:
		return &TFunction{Arg: Substitute(t.Arg, sub), Result: Substitute(t.Result, sub)}
	case *TOpaque:
		return &TOpaque{Elem: Substitute(t.Elem, sub)}
	case *TUser:
		args := make([]Mono, len(t.Inst.Args))
		for i, a := range t.Inst.Args {
			args[i] = Substitute(a, sub)
		}
		return (&InstUser{Def: t.Inst.Def, Args: args}).Monify()
	case *TVar:
		if r, ok := sub[t.Name]; ok {
			return r
		}
		return t
	case *TIndir:
		if t.Cell.State == Bound {
			return Substitute(InnerMono(t), sub)
		}
		return t
	default:
		return m
	}
}
