// Package types implements evanlang2c's type representation: monotypes,
// polytypes, user-defined types, and the union-find mechanism unification
// mutates. It has no dependency on inference, desugaring, or modules —
// every later component builds on this one.
package types

import (
	"fmt"
	"strings"
)

// Mono is a monomorphic type: a concrete shape, a bound/unbound variable,
// or a bound/unbound fresh unknown introduced during inference.
type Mono interface {
	String() string
	mono()
}

// BaseKind enumerates evanlang2's primitive, non-composite base types.
type BaseKind int

const (
	KUnit BaseKind = iota
	KI64
	KCInt
	KF64
	KBool
	KChar
)

func (k BaseKind) String() string {
	switch k {
	case KUnit:
		return "unit"
	case KI64:
		return "i64"
	case KCInt:
		return "c_int"
	case KF64:
		return "f64"
	case KBool:
		return "bool"
	case KChar:
		return "char"
	default:
		return "?base"
	}
}

// TBase is a concrete primitive type.
type TBase struct{ Kind BaseKind }

func (t *TBase) mono()          {}
func (t *TBase) String() string { return t.Kind.String() }

var (
	Unit  = &TBase{Kind: KUnit}
	I64   = &TBase{Kind: KI64}
	CInt  = &TBase{Kind: KCInt}
	F64   = &TBase{Kind: KF64}
	Bool  = &TBase{Kind: KBool}
	Char  = &TBase{Kind: KChar}
)

// TPointer is `&M`, a raw pointer to M.
type TPointer struct{ Elem Mono }

func (t *TPointer) mono()          {}
func (t *TPointer) String() string { return "&" + t.Elem.String() }

// TTuple is an n-ary product type (n >= 2 in well-formed programs, but the
// representation does not itself forbid n <= 1).
type TTuple struct{ Elems []Mono }

func (t *TTuple) mono() {}
func (t *TTuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// TFunction is `Arg -> Result`; a multi-argument surface function has Arg
// be a TTuple, per the skeleton-construction rule for generalized bindings.
type TFunction struct {
	Arg    Mono
	Result Mono
}

func (t *TFunction) mono()          {}
func (t *TFunction) String() string { return t.Arg.String() + " -> " + t.Result.String() }

// TOpaque is a type with no visible structure; it only unifies with a
// structurally identical TOpaque.
type TOpaque struct{ Elem Mono }

func (t *TOpaque) mono()          {}
func (t *TOpaque) String() string { return "opaque(" + t.Elem.String() + ")" }

// TUser is an instantiation of a user-declared type: the declaration plus
// one monotype per declared type variable.
type TUser struct{ Inst *InstUser }

func (t *TUser) mono()          {}
func (t *TUser) String() string { return t.Inst.String() }

// TVar is a bound type variable, introduced by a ForAll quantifier and
// never rebound once the cell is set (it is set exactly once, at
// instantiation, by Inst).
type TVar struct {
	Name string
	Cell *Cell
}

func (t *TVar) mono() {}
func (t *TVar) String() string {
	if t.Cell.State == Bound {
		return InnerMono(t).String()
	}
	return "'" + t.Name
}

// TIndir is a fresh unknown introduced during inference; its Cell is the
// subject of unification and may be rebound repeatedly as unification
// learns more about it.
type TIndir struct {
	ID   int
	Cell *Cell
}

func (t *TIndir) mono() {}
func (t *TIndir) String() string {
	if t.Cell.State == Bound {
		return InnerMono(t).String()
	}
	return fmt.Sprintf("_%d", t.ID)
}

// indirCounter generates globally unique Indir ids.
var indirCounter int

// NewIndir returns a fresh, Unbound indirection.
func NewIndir() *TIndir {
	indirCounter++
	return &TIndir{ID: indirCounter, Cell: NewCell()}
}

// InnerMono follows a chain of bound Var/Indir cells to the terminal
// representative, rewriting every cell along the way to point directly at
// it (path compression). It is idempotent and allocates nothing once the
// chain is already compressed.
func InnerMono(m Mono) Mono {
	var chain []*Cell
	cur := m
	for {
		switch t := cur.(type) {
		case *TVar:
			if t.Cell.State != Bound {
				return settle(cur, chain)
			}
			chain = append(chain, t.Cell)
			cur = t.Cell.Mono
		case *TIndir:
			if t.Cell.State != Bound {
				return settle(cur, chain)
			}
			chain = append(chain, t.Cell)
			cur = t.Cell.Mono
		default:
			return settle(cur, chain)
		}
	}
}

// settle rewrites every cell collected on the chain to point directly at
// rep, then returns rep.
func settle(rep Mono, chain []*Cell) Mono {
	for _, c := range chain {
		c.Mono = rep
	}
	return rep
}
