package types

import "fmt"

// UnifyError reports a unification conflict. A and B are the pair being
// unified at this level; Cause, when set, is the conflict found while
// recursing into a compound type, so following Cause from the outermost
// error reaches the innermost failing pair.
type UnifyError struct {
	A, B  Mono
	Cause *UnifyError
}

func (e *UnifyError) Error() string {
	inner := e
	for inner.Cause != nil {
		inner = inner.Cause
	}
	if inner == e {
		return fmt.Sprintf("cannot unify %s with %s", e.A.String(), e.B.String())
	}
	return fmt.Sprintf("cannot unify %s with %s (conflict: %s vs %s)",
		e.A.String(), e.B.String(), inner.A.String(), inner.B.String())
}

// wrap attaches an outer (A, B) pair to an inner conflict, keeping the
// innermost cause intact.
func wrap(a, b Mono, inner error) *UnifyError {
	ue, ok := inner.(*UnifyError)
	if !ok {
		return &UnifyError{A: a, B: b}
	}
	return &UnifyError{A: a, B: b, Cause: ue}
}

// Unify computes the most general unifier of a and b, destructively
// updating Var/Indir cells in place, and returns the resolved
// representative.
func Unify(a, b Mono) (Mono, error) {
	ra, rb := InnerMono(a), InnerMono(b)

	if ra == rb {
		return ra, nil
	}

	// A Var or Indir on either side binds (or recurses through an already
	// bound chain, which InnerMono has already collapsed, so here the
	// cell is always Unbound).
	if v, ok := ra.(*TVar); ok {
		return bindVar(v.Cell, ra, rb)
	}
	if v, ok := rb.(*TVar); ok {
		return bindVar(v.Cell, rb, ra)
	}
	if v, ok := ra.(*TIndir); ok {
		return bindVar(v.Cell, ra, rb)
	}
	if v, ok := rb.(*TIndir); ok {
		return bindVar(v.Cell, rb, ra)
	}

	switch x := ra.(type) {
	case *TBase:
		y, ok := rb.(*TBase)
		if !ok || y.Kind != x.Kind {
			return nil, &UnifyError{A: ra, B: rb}
		}
		return ra, nil

	case *TPointer:
		y, ok := rb.(*TPointer)
		if !ok {
			return nil, &UnifyError{A: ra, B: rb}
		}
		inner, err := Unify(x.Elem, y.Elem)
		if err != nil {
			return nil, wrap(ra, rb, err)
		}
		return &TPointer{Elem: inner}, nil

	case *TTuple:
		y, ok := rb.(*TTuple)
		if !ok || len(x.Elems) != len(y.Elems) {
			return nil, &UnifyError{A: ra, B: rb}
		}
		elems := make([]Mono, len(x.Elems))
		for i := range x.Elems {
			r, err := Unify(x.Elems[i], y.Elems[i])
			if err != nil {
				return nil, wrap(ra, rb, err)
			}
			elems[i] = r
		}
		return &TTuple{Elems: elems}, nil

	case *TFunction:
		y, ok := rb.(*TFunction)
		if !ok {
			return nil, &UnifyError{A: ra, B: rb}
		}
		arg, err := Unify(x.Arg, y.Arg)
		if err != nil {
			return nil, wrap(ra, rb, err)
		}
		res, err := Unify(x.Result, y.Result)
		if err != nil {
			return nil, wrap(ra, rb, err)
		}
		return &TFunction{Arg: arg, Result: res}, nil

	case *TOpaque:
		y, ok := rb.(*TOpaque)
		if !ok {
			return nil, &UnifyError{A: ra, B: rb}
		}
		if x.Elem.String() != y.Elem.String() {
			return nil, &UnifyError{A: ra, B: rb}
		}
		return ra, nil

	case *TUser:
		return unifyUser(x, ra, rb)
	}

	// rb may be the one carrying the interesting shape (e.g. a TUser alias
	// meeting a concrete type on the left).
	if y, ok := rb.(*TUser); ok {
		return unifyUser(y, rb, ra)
	}

	return nil, &UnifyError{A: ra, B: rb}
}

// bindVar binds an unbound cell to o and returns o, or — if the cell is
// somehow already bound (can only happen if callers hold a stale
// reference) — recurses and rewrites the cell to the resolved result.
func bindVar(cell *Cell, self, o Mono) (Mono, error) {
	if cell.State != Bound {
		cell.Bind(o)
		return o, nil
	}
	resolved, err := Unify(cell.Mono, o)
	if err != nil {
		return nil, wrap(self, o, err)
	}
	cell.Mono = resolved
	return resolved, nil
}

// unifyUser implements the TUser rule: equal repr_name unifies the
// argument vectors pointwise; otherwise, if either side is an alias,
// expand it (user_type_monify) and retry. Two distinct aliases of the same
// structural type do not unify unless their repr_name matches (an open
// question — this behavior is retained as-is).
func unifyUser(x *TUser, ra, rb Mono) (Mono, error) {
	if y, ok := rb.(*TUser); ok {
		if x.Inst.Def.ReprName == y.Inst.Def.ReprName {
			if len(x.Inst.Args) != len(y.Inst.Args) {
				return nil, &UnifyError{A: ra, B: rb}
			}
			args := make([]Mono, len(x.Inst.Args))
			for i := range x.Inst.Args {
				r, err := Unify(x.Inst.Args[i], y.Inst.Args[i])
				if err != nil {
					return nil, wrap(ra, rb, err)
				}
				args[i] = r
			}
			return &TUser{Inst: &InstUser{Def: x.Inst.Def, Args: args}}, nil
		}
		if x.Inst.Def.Info.Kind == InfoAlias {
			return unifyAndWrap(ra, rb, x.Inst.Monify(), rb)
		}
		if y.Inst.Def.Info.Kind == InfoAlias {
			return unifyAndWrap(ra, rb, ra, y.Inst.Monify())
		}
		return nil, &UnifyError{A: ra, B: rb}
	}

	if x.Inst.Def.Info.Kind == InfoAlias {
		return unifyAndWrap(ra, rb, x.Inst.Monify(), rb)
	}
	return nil, &UnifyError{A: ra, B: rb}
}

func unifyAndWrap(origA, origB, a, b Mono) (Mono, error) {
	r, err := Unify(a, b)
	if err != nil {
		return nil, wrap(origA, origB, err)
	}
	return r, nil
}
