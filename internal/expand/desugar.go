package expand

import (
	"fmt"
	"sync/atomic"

	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/errdefs"
)

// freshCounter generates the unique names `breakup_patterns` introduces
// for each intermediate pattern-matched value.
var freshCounter uint64

// fresh returns a new name guaranteed unique across the whole compilation.
func fresh() string {
	n := atomic.AddUint64(&freshCounter, 1)
	return fmt.Sprintf("$pat%d", n)
}

// Desugarer walks surface expressions and patterns into expanded form.
// It carries no state beyond the fresh-name counter (package-global, since
// uniqueness must hold across every module desugared in one compilation).
type Desugarer struct{}

// New returns a ready Desugarer.
func New() *Desugarer { return &Desugarer{} }

// Expand lowers a surface expression into its expanded form.
func (d *Desugarer) Expand(e ast.Expr) (Expr, error) {
	switch n := e.(type) {
	case *ast.Lit:
		return &Lit{Pos: n.Pos, Kind: n.Kind, I64: n.I64, F64: n.F64, Bool: n.Bool, Char: n.Char, Str: n.Str}, nil

	case *ast.Var:
		return &Var{Pos: n.Pos, Path: n.Path, Name: n.Name}, nil

	case *ast.TupleExpr:
		elems, err := d.expandAll(n.Elems)
		if err != nil {
			return nil, err
		}
		return &Tuple{Pos: n.Pos, Elems: elems}, nil

	case *ast.Apply:
		f, err := d.Expand(n.Func)
		if err != nil {
			return nil, err
		}
		args, err := d.expandAll(n.Args)
		if err != nil {
			return nil, err
		}
		return &Apply{Pos: n.Pos, Func: f, Args: args}, nil

	case *ast.Lambda:
		body, err := d.Expand(n.Body)
		if err != nil {
			return nil, err
		}
		return &Lambda{Pos: n.Pos, Params: n.Params, Body: body}, nil

	case *ast.LetExpr:
		return d.expandLet(n)

	case *ast.If:
		cond, err := d.Expand(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.Expand(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := d.Expand(n.Else)
		if err != nil {
			return nil, err
		}
		return &If{Pos: n.Pos, Cond: cond, Then: then, Else: els}, nil

	case *ast.Match:
		return d.expandMatch(n)

	case *ast.Assign:
		target, err := d.Expand(n.Target)
		if err != nil {
			return nil, err
		}
		value, err := d.Expand(n.Value)
		if err != nil {
			return nil, err
		}
		return &Assign{Pos: n.Pos, Target: target, Value: value}, nil

	case *ast.StructLit:
		fields := make([]FieldInit, len(n.Fields))
		for i, f := range n.Fields {
			v, err := d.Expand(f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = FieldInit{Name: f.Name, Value: v}
		}
		return &StructLit{Pos: n.Pos, Type: n.Type, Fields: fields}, nil

	case *ast.FieldAccess:
		recv, err := d.Expand(n.Recv)
		if err != nil {
			return nil, err
		}
		return &FieldAccess{Pos: n.Pos, Recv: recv, Field: n.Field}, nil

	case *ast.TupleAccess:
		recv, err := d.Expand(n.Recv)
		if err != nil {
			return nil, err
		}
		return &TupleAccess{Pos: n.Pos, Recv: recv, Index: n.Index}, nil

	case *ast.EnumLit:
		var payload Expr
		if n.Payload != nil {
			p, err := d.Expand(n.Payload)
			if err != nil {
				return nil, err
			}
			payload = p
		}
		return &EnumLit{Pos: n.Pos, Type: n.Type, Variant: n.Variant, Payload: payload}, nil

	case *ast.Ref:
		inner, err := d.Expand(n.Expr)
		if err != nil {
			return nil, err
		}
		return &Ref{Pos: n.Pos, Expr: inner}, nil

	case *ast.Deref:
		inner, err := d.Expand(n.Expr)
		if err != nil {
			return nil, err
		}
		return &Deref{Pos: n.Pos, Expr: inner}, nil

	case *ast.SizeOf:
		return &SizeOf{Pos: n.Pos, Type: n.Type}, nil

	case *ast.Loop:
		body, err := d.Expand(n.Body)
		if err != nil {
			return nil, err
		}
		return &Loop{Pos: n.Pos, Body: body}, nil

	case *ast.Break:
		v, err := d.Expand(n.Value)
		if err != nil {
			return nil, err
		}
		return &Break{Pos: n.Pos, Value: v}, nil

	case *ast.Return:
		v, err := d.Expand(n.Value)
		if err != nil {
			return nil, err
		}
		return &Return{Pos: n.Pos, Value: v}, nil

	case *ast.Seq:
		exprs, err := d.expandAll(n.Exprs)
		if err != nil {
			return nil, err
		}
		return &Seq{Pos: n.Pos, Exprs: exprs}, nil

	case *ast.Typed:
		inner, err := d.Expand(n.Expr)
		if err != nil {
			return nil, err
		}
		return &TypeAssert{Pos: n.Pos, Expr: inner, Type: n.Type}, nil

	default:
		return nil, errdefs.New(errdefs.PAT001, e.Position(), "unsupported expression form %T", e)
	}
}

func (d *Desugarer) expandAll(es []ast.Expr) ([]Expr, error) {
	out := make([]Expr, len(es))
	for i, e := range es {
		x, err := d.Expand(e)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

// expandLet lowers `let pattern = value in body` via breakup_patterns: the
// pattern's bindings are nested, innermost-last, around the expanded body.
func (d *Desugarer) expandLet(n *ast.LetExpr) (Expr, error) {
	value, err := d.Expand(n.Value)
	if err != nil {
		return nil, err
	}
	body, err := d.Expand(n.Body)
	if err != nil {
		return nil, err
	}
	binds, err := d.BreakupPattern(n.Pattern, value)
	if err != nil {
		return nil, err
	}
	return WrapBinds(binds, body), nil
}

// WrapBinds nests a sequence of single-variable bindings (in the order
// breakup_patterns produced them) around body.
func WrapBinds(binds []Bind, body Expr) Expr {
	result := body
	for i := len(binds) - 1; i >= 0; i-- {
		b := binds[i]
		result = &Let{Pos: body.Position(), Name: b.Name, Value: b.Value, Body: result}
	}
	return result
}

// BreakupPattern implements breakup_patterns: it walks pattern
// left-to-right against the (already expanded) rhs expr, pushing a stack
// of (name, expanded_expr) bindings whose order makes earlier bindings
// available to later projections.
func (d *Desugarer) BreakupPattern(pat ast.Pattern, rhs Expr) ([]Bind, error) {
	var binds []Bind
	if err := d.breakup(pat, rhs, &binds); err != nil {
		return nil, err
	}
	return binds, nil
}

func (d *Desugarer) breakup(pat ast.Pattern, rhs Expr, binds *[]Bind) error {
	pos := pat.Position()
	switch p := pat.(type) {
	case *ast.PVar:
		*binds = append(*binds, Bind{Name: p.Name, Value: rhs})
		return nil

	case *ast.PWildcard:
		v := fresh()
		*binds = append(*binds, Bind{Name: v, Value: rhs})
		return nil

	case *ast.PUnit:
		v := fresh()
		*binds = append(*binds, Bind{Name: v, Value: &TypeAssert{Pos: pos, Expr: rhs, Type: &ast.TEName{Name: ast.BaseUnit}}})
		return nil

	case *ast.PLit:
		return errdefs.New(errdefs.PAT001, pos, "refutable literal pattern in irrefutable position")

	case *ast.PTuple:
		v := fresh()
		*binds = append(*binds, Bind{Name: v, Value: rhs})
		ref := &Var{Pos: pos, Name: v}
		for i, sub := range p.Elems {
			if err := d.breakup(sub, &TupleAccess{Pos: pos, Recv: ref, Index: i}, binds); err != nil {
				return err
			}
		}
		return nil

	case *ast.PRef:
		v := fresh()
		*binds = append(*binds, Bind{Name: v, Value: rhs})
		ref := &Var{Pos: pos, Name: v}
		return d.breakup(p.Pattern, &Deref{Pos: pos, Expr: ref}, binds)

	case *ast.PStruct:
		v := fresh()
		*binds = append(*binds, Bind{Name: v, Value: &AssertStruct{Pos: pos, Type: p.Type, Expr: rhs}})
		ref := &Var{Pos: pos, Name: v}
		for _, f := range p.Fields {
			sub := f.Sub
			if sub == nil {
				sub = &ast.PVar{Pos: pos, Name: f.Name}
			}
			if err := d.breakup(sub, &FieldAccess{Pos: pos, Recv: ref, Field: f.Name}, binds); err != nil {
				return err
			}
		}
		return nil

	case *ast.PTyped:
		v := fresh()
		*binds = append(*binds, Bind{Name: v, Value: &TypeAssert{Pos: pos, Expr: rhs, Type: p.Type}})
		return d.breakup(p.Pattern, &Var{Pos: pos, Name: v}, binds)

	case *ast.PEnum:
		if p.Sub != nil {
			v := fresh()
			*binds = append(*binds, Bind{Name: v, Value: &AccessEnumField{Pos: pos, Variant: p.Variant, Expr: rhs}})
			return d.breakup(p.Sub, &Var{Pos: pos, Name: v}, binds)
		}
		v := fresh()
		*binds = append(*binds, Bind{Name: v, Value: &AssertEmptyEnumField{Pos: pos, Variant: p.Variant, Expr: rhs}})
		return nil

	default:
		return errdefs.New(errdefs.PAT001, pos, "unsupported pattern form %T", pat)
	}
}
