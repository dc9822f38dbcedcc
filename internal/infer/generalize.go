package infer

import "github.com/evanlang2/evanlang2c/internal/types"

// nameGen allocates quantifier names a, b, ..., z, aa, ab, ... in the
// order their Indirs are first encountered, matching alphabetic
// generalization order.
type nameGen struct{ next int }

func (g *nameGen) allocate() string {
	n := g.next
	g.next++
	var s []byte
	for {
		s = append([]byte{byte('a' + n%26)}, s...)
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return string(s)
}

// freeIndirs walks m (through InnerMono) and returns every still-unbound
// TIndir reachable from it, each exactly once, in first-encountered order.
func freeIndirs(m types.Mono, seen map[*types.TIndir]bool, order *[]*types.TIndir) {
	m = types.InnerMono(m)
	switch t := m.(type) {
	case *types.TIndir:
		if !seen[t] {
			seen[t] = true
			*order = append(*order, t)
		}
	case *types.TPointer:
		freeIndirs(t.Elem, seen, order)
	case *types.TTuple:
		for _, e := range t.Elems {
			freeIndirs(e, seen, order)
		}
	case *types.TFunction:
		freeIndirs(t.Arg, seen, order)
		freeIndirs(t.Result, seen, order)
	case *types.TOpaque:
		freeIndirs(t.Elem, seen, order)
	case *types.TUser:
		for _, a := range t.Inst.Args {
			freeIndirs(a, seen, order)
		}
	}
}

// generalize quantifies every free Indir reachable from m, binding each
// Indir's cell directly to a fresh named TVar. Because binding mutates the
// shared cell, every other reference to the same Indir — including ones
// buried inside the already-built typed expression tree — resolves to the
// same quantifier the next time InnerMono walks it.
func generalize(m types.Mono) types.Poly {
	var order []*types.TIndir
	freeIndirs(m, map[*types.TIndir]bool{}, &order)

	gen := &nameGen{}
	names := make([]string, len(order))
	for i, ind := range order {
		name := gen.allocate()
		names[i] = name
		ind.Cell.Bind(&types.TVar{Name: name, Cell: types.NewCell()})
	}

	var poly types.Poly = &types.PMono{Mono: types.InnerMono(m)}
	for i := len(names) - 1; i >= 0; i-- {
		poly = &types.PForAll{Name: names[i], Inner: poly}
	}
	return poly
}

// weaken implements the value-restriction analogue for non-function
// bindings: free Indirs are left exactly as-is (still free, still not
// quantified), and any bound-variable name that leaked in through a
// polymorphic sub-expression is replaced by a fresh Indir, so the result
// carries no quantifiers at all.
func weaken(m types.Mono) types.Poly {
	return &types.PMono{Mono: weakenMono(types.InnerMono(m), map[string]*types.TIndir{})}
}

func weakenMono(m types.Mono, fresh map[string]*types.TIndir) types.Mono {
	m = types.InnerMono(m)
	switch t := m.(type) {
	case *types.TVar:
		if ind, ok := fresh[t.Name]; ok {
			return ind
		}
		ind := types.NewIndir()
		fresh[t.Name] = ind
		return ind
	case *types.TPointer:
		return &types.TPointer{Elem: weakenMono(t.Elem, fresh)}
	case *types.TTuple:
		elems := make([]types.Mono, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = weakenMono(e, fresh)
		}
		return &types.TTuple{Elems: elems}
	case *types.TFunction:
		return &types.TFunction{Arg: weakenMono(t.Arg, fresh), Result: weakenMono(t.Result, fresh)}
	case *types.TOpaque:
		return &types.TOpaque{Elem: weakenMono(t.Elem, fresh)}
	case *types.TUser:
		args := make([]types.Mono, len(t.Inst.Args))
		for i, a := range t.Inst.Args {
			args[i] = weakenMono(a, fresh)
		}
		return (&types.InstUser{Def: t.Inst.Def, Args: args}).Monify()
	default:
		return m
	}
}

// inst strips every ForAll from poly, substituting a fresh Indir for each
// quantified name, and returns the instantiated monotype plus the
// substitution the emitter needs to monomorphize this use site.
func inst(poly types.Poly) (types.Mono, map[string]types.Mono) {
	names := types.Quantifiers(poly)
	if len(names) == 0 {
		return types.Body(poly), nil
	}
	sub := make(map[string]types.Mono, len(names))
	for _, n := range names {
		sub[n] = types.NewIndir()
	}
	return types.Substitute(types.Body(poly), sub), sub
}
