package infer

import (
	"github.com/evanlang2/evanlang2c/internal/errdefs"
	"github.com/evanlang2/evanlang2c/internal/expand"
	"github.com/evanlang2/evanlang2c/internal/module"
	"github.com/evanlang2/evanlang2c/internal/typedast"
	"github.com/evanlang2/evanlang2c/internal/types"
)

// inferVar resolves a variable reference in order: the local lexical
// environment, the current SCC's sibling skeletons (mutual recursion,
// used at its raw unquantified type), then a module-qualified lookup
// through the resolver (which itself also finds unqualified names in
// opened sub-modules).
func (c *Checker) inferVar(sc *scope, env *env, n *expand.Var) (typedast.Expr, error) {
	if len(n.Path) == 0 {
		if t, ok := env.lookup(n.Name); ok {
			return &typedast.LocalVar{Pos: n.Pos, Ty: t, Name: n.Name}, nil
		}
		if t, ok := sc.component[n.Name]; ok {
			tv := sc.mod.GlobVars[n.Name]
			return &typedast.GlobVar{Pos: n.Pos, Ty: t, Name: tv.UniqueName}, nil
		}
	}
	_, tv, err := c.resolver.Resolve(sc.mod, n.Path, n.Name)
	if err != nil {
		return nil, err
	}
	if tv.Kind == module.KindEl {
		mono, instMap := inst(tv.Poly)
		return &typedast.GlobVar{Pos: n.Pos, Ty: mono, Name: tv.UniqueName, InstMap: instMap}, nil
	}
	return &typedast.GlobVar{Pos: n.Pos, Ty: tv.Ty, Name: tv.UniqueName}, nil
}

// inferMatch infers the scrutinee once, then each arm: a pattern's Binds
// are added to the arm's environment before Cond is inferred, since a
// nested pattern's guard may reference a name an earlier bind introduced.
func (c *Checker) inferMatch(sc *scope, env *env, n *expand.Match, resType, breakType types.Mono) (typedast.Expr, error) {
	scrut, err := c.infer(sc, env, n.Scrutinee, resType, breakType)
	if err != nil {
		return nil, err
	}
	result := types.NewIndir()
	arms := make([]typedast.MatchArm, len(n.Arms))
	for i, arm := range n.Arms {
		armEnv := env.child()
		binds := make([]struct {
			Name  string
			Value typedast.Expr
		}, len(arm.Binds))
		for j, b := range arm.Binds {
			val, err := c.infer(sc, armEnv, b.Value, resType, breakType)
			if err != nil {
				return nil, err
			}
			armEnv.set(b.Name, val.Type())
			binds[j] = struct {
				Name  string
				Value typedast.Expr
			}{Name: b.Name, Value: val}
		}

		var cond typedast.Expr
		if arm.Cond != nil {
			cond, err = c.infer(sc, armEnv, arm.Cond, resType, breakType)
			if err != nil {
				return nil, err
			}
			if _, err := types.Unify(cond.Type(), types.Bool); err != nil {
				return nil, errdefs.Wrap(errdefs.UNI001, n.Pos, err, "match guard must be bool")
			}
		}

		body, err := c.infer(sc, armEnv, arm.Body, resType, breakType)
		if err != nil {
			return nil, err
		}
		if _, err := types.Unify(result, body.Type()); err != nil {
			return nil, errdefs.Wrap(errdefs.UNI001, n.Pos, err, "match arms must agree in type")
		}
		arms[i] = typedast.MatchArm{Cond: cond, Binds: binds, Body: body}
	}
	return &typedast.Match{Pos: n.Pos, Ty: result, Scrutinee: scrut, Arms: arms}, nil
}

// inferStructLit resolves the named struct type, then matches the
// literal's fields against the declaration's sorted field order
// regardless of the order they were written in.
func (c *Checker) inferStructLit(sc *scope, env *env, n *expand.StructLit, resType, breakType types.Mono) (typedast.Expr, error) {
	entry, _, err := c.lookupType(sc.mod, nil, n.Type)
	if err != nil {
		return nil, err
	}
	args := make([]types.Mono, len(entry.Def.TyVars))
	for i := range args {
		args[i] = types.NewIndir()
	}
	inst := &types.InstUser{Def: entry.Def, Args: args}
	sorted := inst.SortedFields()

	byName := make(map[string]expand.FieldInit, len(n.Fields))
	for _, f := range n.Fields {
		if _, dup := byName[f.Name]; dup {
			return nil, errdefs.New(errdefs.PAT002, n.Pos, "struct %q: duplicate field %q", n.Type, f.Name)
		}
		byName[f.Name] = f
	}
	if len(byName) != len(sorted) {
		return nil, errdefs.New(errdefs.PAT002, n.Pos, "struct %q expects %d field(s), got %d", n.Type, len(sorted), len(byName))
	}

	fields := make([]typedast.FieldInit, len(sorted))
	for i, fd := range sorted {
		f, ok := byName[fd.Name]
		if !ok {
			return nil, errdefs.New(errdefs.PAT002, n.Pos, "struct %q missing field %q", n.Type, fd.Name)
		}
		val, err := c.infer(sc, env, f.Value, resType, breakType)
		if err != nil {
			return nil, err
		}
		if _, err := types.Unify(val.Type(), fd.Type); err != nil {
			return nil, errdefs.Wrap(errdefs.UNI001, n.Pos, err, "field %q type mismatch", fd.Name)
		}
		fields[i] = typedast.FieldInit{Name: fd.Name, Value: val}
	}
	return &typedast.StructLit{Pos: n.Pos, Ty: inst.Monify(), TypeName: n.Type, Fields: fields}, nil
}

// inferEnumLit resolves the named enum type and checks the constructed
// variant's payload arity against its declaration.
func (c *Checker) inferEnumLit(sc *scope, env *env, n *expand.EnumLit, resType, breakType types.Mono) (typedast.Expr, error) {
	entry, _, err := c.lookupType(sc.mod, nil, n.Type)
	if err != nil {
		return nil, err
	}
	args := make([]types.Mono, len(entry.Def.TyVars))
	for i := range args {
		args[i] = types.NewIndir()
	}
	inst := &types.InstUser{Def: entry.Def, Args: args}
	payloadTy, has, known := inst.VariantMono(n.Variant)
	if !known {
		return nil, errdefs.New(errdefs.PAT002, n.Pos, "unknown variant %q of %q", n.Variant, n.Type)
	}

	var payload typedast.Expr
	switch {
	case has && n.Payload != nil:
		payload, err = c.infer(sc, env, n.Payload, resType, breakType)
		if err != nil {
			return nil, err
		}
		if _, err := types.Unify(payload.Type(), payloadTy); err != nil {
			return nil, errdefs.Wrap(errdefs.UNI001, n.Pos, err, "variant %q payload type mismatch", n.Variant)
		}
	case has && n.Payload == nil:
		return nil, errdefs.New(errdefs.PAT002, n.Pos, "variant %q requires a payload", n.Variant)
	case !has && n.Payload != nil:
		return nil, errdefs.New(errdefs.PAT002, n.Pos, "variant %q carries no payload", n.Variant)
	}
	return &typedast.Enum{Pos: n.Pos, Ty: inst.Monify(), TypeName: n.Type, Variant: n.Variant, Payload: payload}, nil
}
