package codegen

import (
	"github.com/evanlang2/evanlang2c/internal/typedast"
	"github.com/evanlang2/evanlang2c/internal/types"
)

// substExpr clones expr, replacing every node's type with its
// substitution under instMap; this is monomorphization's sole job once
// infer has already solved every Indir (§4.6). A nested GlobVar's own
// InstMap is composed with the outer one, since infer's generalize names
// each binding's quantifiers from a fresh a, b, ... sequence, so the
// inner map's values may mention the enclosing binding's quantifiers.
func substExpr(expr typedast.Expr, instMap map[string]types.Mono) typedast.Expr {
	if expr == nil {
		return nil
	}
	sub := func(m types.Mono) types.Mono { return types.Substitute(m, instMap) }

	switch n := expr.(type) {
	case *typedast.Lit:
		cp := *n
		cp.Ty = sub(n.Ty)
		return &cp
	case *typedast.LocalVar:
		cp := *n
		cp.Ty = sub(n.Ty)
		return &cp
	case *typedast.GlobVar:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.InstMap = composeInstMap(n.InstMap, instMap)
		return &cp
	case *typedast.Tuple:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Elems = substSlice(n.Elems, instMap)
		return &cp
	case *typedast.Apply:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Func = substExpr(n.Func, instMap)
		cp.Args = substSlice(n.Args, instMap)
		return &cp
	case *typedast.Lambda:
		cp := *n
		cp.Ty = sub(n.Ty)
		pts := make([]types.Mono, len(n.ParamTypes))
		for i, p := range n.ParamTypes {
			pts[i] = sub(p)
		}
		cp.ParamTypes = pts
		cp.Body = substExpr(n.Body, instMap)
		return &cp
	case *typedast.Let:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Value = substExpr(n.Value, instMap)
		cp.Body = substExpr(n.Body, instMap)
		return &cp
	case *typedast.If:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Cond = substExpr(n.Cond, instMap)
		cp.Then = substExpr(n.Then, instMap)
		cp.Else = substExpr(n.Else, instMap)
		return &cp
	case *typedast.Match:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Scrutinee = substExpr(n.Scrutinee, instMap)
		arms := make([]typedast.MatchArm, len(n.Arms))
		for i, arm := range n.Arms {
			na := typedast.MatchArm{
				Cond: substExpr(arm.Cond, instMap),
				Body: substExpr(arm.Body, instMap),
			}
			for _, b := range arm.Binds {
				na.Binds = append(na.Binds, struct {
					Name  string
					Value typedast.Expr
				}{b.Name, substExpr(b.Value, instMap)})
			}
			arms[i] = na
		}
		cp.Arms = arms
		return &cp
	case *typedast.Assign:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Target = substExpr(n.Target, instMap)
		cp.Value = substExpr(n.Value, instMap)
		return &cp
	case *typedast.StructLit:
		cp := *n
		cp.Ty = sub(n.Ty)
		fields := make([]typedast.FieldInit, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = typedast.FieldInit{Name: f.Name, Value: substExpr(f.Value, instMap)}
		}
		cp.Fields = fields
		return &cp
	case *typedast.FieldAccess:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Recv = substExpr(n.Recv, instMap)
		return &cp
	case *typedast.TupleAccess:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Recv = substExpr(n.Recv, instMap)
		return &cp
	case *typedast.Enum:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Payload = substExpr(n.Payload, instMap)
		return &cp
	case *typedast.CheckVariant:
		cp := *n
		cp.Expr = substExpr(n.Expr, instMap)
		return &cp
	case *typedast.Ref:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Expr = substExpr(n.Expr, instMap)
		return &cp
	case *typedast.Deref:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Expr = substExpr(n.Expr, instMap)
		return &cp
	case *typedast.SizeOf:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Of = sub(n.Of)
		return &cp
	case *typedast.Loop:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Body = substExpr(n.Body, instMap)
		return &cp
	case *typedast.Break:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Value = substExpr(n.Value, instMap)
		return &cp
	case *typedast.Return:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Value = substExpr(n.Value, instMap)
		return &cp
	case *typedast.Seq:
		cp := *n
		cp.Ty = sub(n.Ty)
		cp.Exprs = substSlice(n.Exprs, instMap)
		return &cp
	default:
		return n
	}
}

func substSlice(exprs []typedast.Expr, instMap map[string]types.Mono) []typedast.Expr {
	if exprs == nil {
		return nil
	}
	out := make([]typedast.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = substExpr(e, instMap)
	}
	return out
}

// composeInstMap substitutes outer through every entry of inner, then
// layers in any outer entry whose name inner doesn't mention; this keeps
// a nested GlobVar's own instantiation correct after its enclosing
// binding has itself been further monomorphized.
func composeInstMap(inner, outer map[string]types.Mono) map[string]types.Mono {
	if len(inner) == 0 && len(outer) == 0 {
		return nil
	}
	out := make(map[string]types.Mono, len(inner)+len(outer))
	for k, v := range inner {
		out[k] = types.Substitute(v, outer)
	}
	for k, v := range outer {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}
