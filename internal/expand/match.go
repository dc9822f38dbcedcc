package expand

import "github.com/evanlang2/evanlang2c/internal/ast"

// expandMatch lowers a surface match into an expanded Match whose arms
// carry a compiled boolean guard (nil for irrefutable arms) plus the flat
// bindings the arm's pattern introduces. The Match node itself is
// retained, not flattened to an If-chain, so later stages can still see
// match structure; the emitter is what lowers it to nested
// if/else with a trailing Assert(false).
func (d *Desugarer) expandMatch(n *ast.Match) (Expr, error) {
	scrutinee, err := d.Expand(n.Scrutinee)
	if err != nil {
		return nil, err
	}

	// Bind the scrutinee once so every arm's guard and bindings reference
	// the same value instead of re-evaluating it.
	scrutVar := fresh()
	scrutRef := &Var{Pos: n.Pos, Name: scrutVar}

	arms := make([]MatchArm, len(n.Arms))
	for i, a := range n.Arms {
		cond, binds, err := d.compileArmPattern(a.Pattern, scrutRef)
		if err != nil {
			return nil, err
		}
		if a.Guard != nil {
			userGuard, err := d.Expand(a.Guard)
			if err != nil {
				return nil, err
			}
			cond = and(cond, userGuard)
		}
		body, err := d.Expand(a.Body)
		if err != nil {
			return nil, err
		}
		arms[i] = MatchArm{Cond: cond, Binds: binds, Body: body}
	}

	match := &Match{Pos: n.Pos, Scrutinee: scrutRef, Arms: arms}
	return &Let{Pos: n.Pos, Name: scrutVar, Value: scrutinee, Body: match}, nil
}

// and combines two guards with short-circuiting conjunction; a nil operand
// means "always true" and is dropped.
func and(a, b Expr) Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &Apply{Pos: a.Position(), Func: &Var{Pos: a.Position(), Name: "&&"}, Args: []Expr{a, b}}
}

// compileArmPattern compiles one match-arm pattern against rhs, returning
// a boolean guard (nil if the arm is irrefutable) and the bindings it
// introduces, in evaluation order.
func (d *Desugarer) compileArmPattern(pat ast.Pattern, rhs Expr) (Expr, []Bind, error) {
	pos := pat.Position()
	switch p := pat.(type) {
	case *ast.PVar:
		return nil, []Bind{{Name: p.Name, Value: rhs}}, nil

	case *ast.PWildcard:
		return nil, nil, nil

	case *ast.PUnit:
		v := fresh()
		return nil, []Bind{{Name: v, Value: &TypeAssert{Pos: pos, Expr: rhs, Type: &ast.TEName{Name: ast.BaseUnit}}}}, nil

	case *ast.PLit:
		lit, err := d.Expand(p.Lit)
		if err != nil {
			return nil, nil, err
		}
		cond := &Apply{Pos: pos, Func: &Var{Pos: pos, Name: "=="}, Args: []Expr{rhs, lit}}
		return cond, nil, nil

	case *ast.PTuple:
		v := fresh()
		binds := []Bind{{Name: v, Value: rhs}}
		ref := &Var{Pos: pos, Name: v}
		var cond Expr
		for i, sub := range p.Elems {
			subCond, subBinds, err := d.compileArmPattern(sub, &TupleAccess{Pos: pos, Recv: ref, Index: i})
			if err != nil {
				return nil, nil, err
			}
			cond = and(cond, subCond)
			binds = append(binds, subBinds...)
		}
		return cond, binds, nil

	case *ast.PRef:
		v := fresh()
		binds := []Bind{{Name: v, Value: rhs}}
		ref := &Var{Pos: pos, Name: v}
		cond, subBinds, err := d.compileArmPattern(p.Pattern, &Deref{Pos: pos, Expr: ref})
		if err != nil {
			return nil, nil, err
		}
		return cond, append(binds, subBinds...), nil

	case *ast.PStruct:
		v := fresh()
		binds := []Bind{{Name: v, Value: &AssertStruct{Pos: pos, Type: p.Type, Expr: rhs}}}
		ref := &Var{Pos: pos, Name: v}
		var cond Expr
		for _, f := range p.Fields {
			sub := f.Sub
			if sub == nil {
				sub = &ast.PVar{Pos: pos, Name: f.Name}
			}
			subCond, subBinds, err := d.compileArmPattern(sub, &FieldAccess{Pos: pos, Recv: ref, Field: f.Name})
			if err != nil {
				return nil, nil, err
			}
			cond = and(cond, subCond)
			binds = append(binds, subBinds...)
		}
		return cond, binds, nil

	case *ast.PTyped:
		v := fresh()
		binds := []Bind{{Name: v, Value: &TypeAssert{Pos: pos, Expr: rhs, Type: p.Type}}}
		cond, subBinds, err := d.compileArmPattern(p.Pattern, &Var{Pos: pos, Name: v})
		if err != nil {
			return nil, nil, err
		}
		return cond, append(binds, subBinds...), nil

	case *ast.PEnum:
		check := &CheckVariant{Pos: pos, Variant: p.Variant, Expr: rhs}
		if p.Sub == nil {
			return check, nil, nil
		}
		v := fresh()
		binds := []Bind{{Name: v, Value: &AccessEnumField{Pos: pos, Variant: p.Variant, Expr: rhs}}}
		subCond, subBinds, err := d.compileArmPattern(p.Sub, &Var{Pos: pos, Name: v})
		if err != nil {
			return nil, nil, err
		}
		return and(check, subCond), append(binds, subBinds...), nil

	default:
		return nil, nil, nil
	}
}
