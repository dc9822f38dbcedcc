package infer

import (
	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/errdefs"
	"github.com/evanlang2/evanlang2c/internal/expand"
	"github.com/evanlang2/evanlang2c/internal/typedast"
	"github.com/evanlang2/evanlang2c/internal/types"
)

// infer assigns a monotype to every node of e, following standard HM
// rules, threading resType (the enclosing function's declared result) and
// breakType (the enclosing Loop's break type) through for Return/Break.
func (c *Checker) infer(sc *scope, env *env, e expand.Expr, resType, breakType types.Mono) (typedast.Expr, error) {
	pos := e.Position()
	switch n := e.(type) {
	case *expand.Lit:
		return &typedast.Lit{Pos: pos, Ty: literalType(n.Kind), Kind: n.Kind, I64: n.I64, F64: n.F64, Bool: n.Bool, Char: n.Char, Str: n.Str}, nil

	case *expand.Var:
		return c.inferVar(sc, env, n)

	case *expand.Tuple:
		elems := make([]typedast.Expr, len(n.Elems))
		tys := make([]types.Mono, len(n.Elems))
		for i, el := range n.Elems {
			te, err := c.infer(sc, env, el, resType, breakType)
			if err != nil {
				return nil, err
			}
			elems[i], tys[i] = te, te.Type()
		}
		return &typedast.Tuple{Pos: pos, Ty: &types.TTuple{Elems: tys}, Elems: elems}, nil

	case *expand.Apply:
		f, err := c.infer(sc, env, n.Func, resType, breakType)
		if err != nil {
			return nil, err
		}
		args := make([]typedast.Expr, len(n.Args))
		argTys := make([]types.Mono, len(n.Args))
		for i, a := range n.Args {
			te, err := c.infer(sc, env, a, resType, breakType)
			if err != nil {
				return nil, err
			}
			args[i], argTys[i] = te, te.Type()
		}
		var argMono types.Mono
		switch len(argTys) {
		case 0:
			argMono = types.Unit
		case 1:
			argMono = argTys[0]
		default:
			argMono = &types.TTuple{Elems: argTys}
		}
		resultTy := types.NewIndir()
		if _, err := types.Unify(f.Type(), &types.TFunction{Arg: argMono, Result: resultTy}); err != nil {
			return nil, errdefs.Wrap(errdefs.UNI002, pos, err, "cannot apply a value of type %s", f.Type())
		}
		return &typedast.Apply{Pos: pos, Ty: resultTy, Func: f, Args: args}, nil

	case *expand.Lambda:
		inner := env.child()
		paramTys := make([]types.Mono, len(n.Params))
		for i, p := range n.Params {
			t := types.NewIndir()
			paramTys[i] = t
			inner.set(p, t)
		}
		lamRes := types.NewIndir()
		body, err := c.infer(sc, inner, n.Body, lamRes, nil)
		if err != nil {
			return nil, err
		}
		if _, err := types.Unify(lamRes, body.Type()); err != nil {
			return nil, errdefs.Wrap(errdefs.UNI001, pos, err, "lambda body does not match its result type")
		}
		var argMono types.Mono
		switch len(paramTys) {
		case 0:
			argMono = types.Unit
		case 1:
			argMono = paramTys[0]
		default:
			argMono = &types.TTuple{Elems: paramTys}
		}
		return &typedast.Lambda{
			Pos: pos, Ty: &types.TFunction{Arg: argMono, Result: body.Type()},
			Params: n.Params, ParamTypes: paramTys, Body: body,
		}, nil

	case *expand.Let:
		value, err := c.infer(sc, env, n.Value, resType, breakType)
		if err != nil {
			return nil, err
		}
		inner := env.child()
		inner.set(n.Name, value.Type())
		body, err := c.infer(sc, inner, n.Body, resType, breakType)
		if err != nil {
			return nil, err
		}
		return &typedast.Let{Pos: pos, Ty: body.Type(), Name: n.Name, Value: value, Body: body}, nil

	case *expand.If:
		cond, err := c.infer(sc, env, n.Cond, resType, breakType)
		if err != nil {
			return nil, err
		}
		if _, err := types.Unify(cond.Type(), types.Bool); err != nil {
			return nil, errdefs.Wrap(errdefs.UNI001, pos, err, "if condition must be bool")
		}
		then, err := c.infer(sc, env, n.Then, resType, breakType)
		if err != nil {
			return nil, err
		}
		els, err := c.infer(sc, env, n.Else, resType, breakType)
		if err != nil {
			return nil, err
		}
		result, err := types.Unify(then.Type(), els.Type())
		if err != nil {
			return nil, errdefs.Wrap(errdefs.UNI001, pos, err, "if branches must agree in type")
		}
		return &typedast.If{Pos: pos, Ty: result, Cond: cond, Then: then, Else: els}, nil

	case *expand.Match:
		return c.inferMatch(sc, env, n, resType, breakType)

	case *expand.Assign:
		target, err := c.infer(sc, env, n.Target, resType, breakType)
		if err != nil {
			return nil, err
		}
		value, err := c.infer(sc, env, n.Value, resType, breakType)
		if err != nil {
			return nil, err
		}
		if _, err := types.Unify(target.Type(), &types.TPointer{Elem: value.Type()}); err != nil {
			return nil, errdefs.Wrap(errdefs.UNI001, pos, err, "assignment target is not a pointer to the value's type")
		}
		return &typedast.Assign{Pos: pos, Ty: types.Unit, Target: target, Value: value}, nil

	case *expand.StructLit:
		return c.inferStructLit(sc, env, n, resType, breakType)

	case *expand.FieldAccess:
		recv, err := c.infer(sc, env, n.Recv, resType, breakType)
		if err != nil {
			return nil, err
		}
		user, ok := types.InnerMono(recv.Type()).(*types.TUser)
		if !ok {
			return nil, errdefs.New(errdefs.NAM002, pos, "field access on a non-struct type %s", recv.Type())
		}
		fieldTy, ok := user.Inst.FieldMono(n.Field)
		if !ok {
			return nil, errdefs.New(errdefs.PAT002, pos, "unknown field %q", n.Field)
		}
		return &typedast.FieldAccess{Pos: pos, Ty: fieldTy, Recv: recv, Field: n.Field}, nil

	case *expand.TupleAccess:
		recv, err := c.infer(sc, env, n.Recv, resType, breakType)
		if err != nil {
			return nil, err
		}
		tup, ok := types.InnerMono(recv.Type()).(*types.TTuple)
		if !ok || n.Index < 0 || n.Index >= len(tup.Elems) {
			return nil, errdefs.New(errdefs.PAT003, pos, "tuple index %d out of bounds", n.Index)
		}
		return &typedast.TupleAccess{Pos: pos, Ty: tup.Elems[n.Index], Recv: recv, Index: n.Index}, nil

	case *expand.EnumLit:
		return c.inferEnumLit(sc, env, n, resType, breakType)

	case *expand.CheckVariant:
		expr, err := c.infer(sc, env, n.Expr, resType, breakType)
		if err != nil {
			return nil, err
		}
		if _, ok := types.InnerMono(expr.Type()).(*types.TUser); !ok {
			return nil, errdefs.New(errdefs.NAM002, pos, "variant check on a non-enum type %s", expr.Type())
		}
		return &typedast.CheckVariant{Pos: pos, Variant: n.Variant, Expr: expr}, nil

	case *expand.Ref:
		inner, err := c.infer(sc, env, n.Expr, resType, breakType)
		if err != nil {
			return nil, err
		}
		return &typedast.Ref{Pos: pos, Ty: &types.TPointer{Elem: inner.Type()}, Expr: inner}, nil

	case *expand.Deref:
		inner, err := c.infer(sc, env, n.Expr, resType, breakType)
		if err != nil {
			return nil, err
		}
		elem := types.NewIndir()
		if _, err := types.Unify(inner.Type(), &types.TPointer{Elem: elem}); err != nil {
			return nil, errdefs.Wrap(errdefs.UNI001, pos, err, "dereference of a non-pointer")
		}
		return &typedast.Deref{Pos: pos, Ty: elem, Expr: inner}, nil

	case *expand.SizeOf:
		of, err := c.resolveTypeExpr(sc.mod, nil, n.Type)
		if err != nil {
			return nil, err
		}
		return &typedast.SizeOf{Pos: pos, Ty: types.CInt, Of: of}, nil

	case *expand.Loop:
		brk := types.NewIndir()
		body, err := c.infer(sc, env, n.Body, resType, brk)
		if err != nil {
			return nil, err
		}
		if _, err := types.Unify(body.Type(), types.Unit); err != nil {
			return nil, errdefs.Wrap(errdefs.UNI001, pos, err, "loop body must be unit-typed")
		}
		return &typedast.Loop{Pos: pos, Ty: brk, Body: body}, nil

	case *expand.Break:
		if breakType == nil {
			return nil, errdefs.New(errdefs.NAM001, pos, "break outside a loop")
		}
		value, err := c.infer(sc, env, n.Value, resType, breakType)
		if err != nil {
			return nil, err
		}
		if _, err := types.Unify(breakType, value.Type()); err != nil {
			return nil, errdefs.Wrap(errdefs.UNI001, pos, err, "break value does not match the loop's type")
		}
		return &typedast.Break{Pos: pos, Value: value}, nil

	case *expand.Return:
		if resType == nil {
			return nil, errdefs.New(errdefs.NAM001, pos, "return outside a function")
		}
		value, err := c.infer(sc, env, n.Value, resType, breakType)
		if err != nil {
			return nil, err
		}
		if _, err := types.Unify(resType, value.Type()); err != nil {
			return nil, errdefs.Wrap(errdefs.UNI001, pos, err, "return value does not match the function's result type")
		}
		return &typedast.Return{Pos: pos, Value: value}, nil

	case *expand.Seq:
		exprs := make([]typedast.Expr, len(n.Exprs))
		var last types.Mono = types.Unit
		for i, sub := range n.Exprs {
			te, err := c.infer(sc, env, sub, resType, breakType)
			if err != nil {
				return nil, err
			}
			exprs[i] = te
			last = te.Type()
		}
		return &typedast.Seq{Pos: pos, Ty: last, Exprs: exprs}, nil

	case *expand.TypeAssert:
		inner, err := c.infer(sc, env, n.Expr, resType, breakType)
		if err != nil {
			return nil, err
		}
		declared, err := c.resolveTypeExpr(sc.mod, nil, n.Type)
		if err != nil {
			return nil, err
		}
		result, err := types.Unify(inner.Type(), declared)
		if err != nil {
			return nil, errdefs.Wrap(errdefs.UNI001, pos, err, "type ascription does not match inferred type")
		}
		return reWrap(inner, result), nil

	case *expand.AssertStruct:
		inner, err := c.infer(sc, env, n.Expr, resType, breakType)
		if err != nil {
			return nil, err
		}
		entry, _, err := c.lookupType(sc.mod, nil, n.Type)
		if err != nil {
			return nil, err
		}
		args := make([]types.Mono, len(entry.Def.TyVars))
		for i := range args {
			args[i] = types.NewIndir()
		}
		want := (&types.InstUser{Def: entry.Def, Args: args}).Monify()
		result, err := types.Unify(inner.Type(), want)
		if err != nil {
			return nil, errdefs.Wrap(errdefs.UNI003, pos, err, "value is not a %s", n.Type)
		}
		return reWrap(inner, result), nil

	case *expand.AccessEnumField:
		inner, err := c.infer(sc, env, n.Expr, resType, breakType)
		if err != nil {
			return nil, err
		}
		user, ok := types.InnerMono(inner.Type()).(*types.TUser)
		if !ok {
			return nil, errdefs.New(errdefs.NAM002, pos, "enum field access on a non-enum type %s", inner.Type())
		}
		payload, has, known := user.Inst.VariantMono(n.Variant)
		if !known || !has {
			return nil, errdefs.New(errdefs.PAT002, pos, "variant %q has no payload", n.Variant)
		}
		return &typedast.FieldAccess{Pos: pos, Ty: payload, Recv: inner, Field: n.Variant}, nil

	case *expand.AssertEmptyEnumField:
		inner, err := c.infer(sc, env, n.Expr, resType, breakType)
		if err != nil {
			return nil, err
		}
		user, ok := types.InnerMono(inner.Type()).(*types.TUser)
		if !ok {
			return nil, errdefs.New(errdefs.NAM002, pos, "enum field access on a non-enum type %s", inner.Type())
		}
		_, has, known := user.Inst.VariantMono(n.Variant)
		if !known || has {
			return nil, errdefs.New(errdefs.PAT002, pos, "variant %q carries a payload", n.Variant)
		}
		return &typedast.Lit{Pos: pos, Ty: types.Unit, Kind: ast.LitUnit}, nil

	default:
		return nil, errdefs.New(errdefs.PAT001, pos, "unsupported expanded expression form %T", e)
	}
}

// reWrap rebinds a typed node's reported type to result without
// rebuilding the node (every *typedast node stores its type in Ty, except
// the few whose Type() is fixed; those never flow through TypeAssert).
func reWrap(e typedast.Expr, result types.Mono) typedast.Expr {
	switch n := e.(type) {
	case *typedast.Lit:
		n.Ty = result
	case *typedast.LocalVar:
		n.Ty = result
	case *typedast.GlobVar:
		n.Ty = result
	case *typedast.Tuple:
		n.Ty = result
	case *typedast.Apply:
		n.Ty = result
	case *typedast.Let:
		n.Ty = result
	case *typedast.If:
		n.Ty = result
	case *typedast.StructLit:
		n.Ty = result
	case *typedast.FieldAccess:
		n.Ty = result
	case *typedast.TupleAccess:
		n.Ty = result
	case *typedast.Enum:
		n.Ty = result
	case *typedast.Ref:
		n.Ty = result
	case *typedast.Deref:
		n.Ty = result
	}
	return e
}
