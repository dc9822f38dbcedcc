package infer

import (
	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/errdefs"
	"github.com/evanlang2/evanlang2c/internal/module"
	"github.com/evanlang2/evanlang2c/internal/types"
)

// baseTypes maps a surface base-type name to its singleton Mono.
var baseTypes = map[string]types.Mono{
	ast.BaseUnit: types.Unit,
	ast.BaseI64:  types.I64,
	ast.BaseCInt: types.CInt,
	ast.BaseF64:  types.F64,
	ast.BaseBool: types.Bool,
	ast.BaseChar: types.Char,
}

// resolveTypeExpr translates a surface type annotation into a monotype,
// looking up user types in mod (or, for a qualified name, in mod's
// submodule tree) and binding free type-variable names against tyVars.
func (c *Checker) resolveTypeExpr(mod *module.Module, tyVars map[string]*types.TVar, te ast.TypeExpr) (types.Mono, error) {
	switch t := te.(type) {
	case *ast.TEName:
		if len(t.Path) == 0 {
			if b, ok := baseTypes[t.Name]; ok && len(t.Args) == 0 {
				return b, nil
			}
			if tv, ok := tyVars[t.Name]; ok && len(t.Args) == 0 {
				return tv, nil
			}
			entry, owner, err := c.lookupType(mod, nil, t.Name)
			if err != nil {
				return nil, err
			}
			return c.instantiateUserType(owner, entry, tyVars, t.Args)
		}
		entry, _, err := c.lookupType(mod, t.Path, t.Name)
		if err != nil {
			return nil, err
		}
		return c.instantiateUserType(mod, entry, tyVars, t.Args)

	case *ast.TEVar:
		if tv, ok := tyVars[t.Name]; ok {
			return tv, nil
		}
		return nil, errdefs.New(errdefs.NAM001, ast.Pos{}, "unbound type variable '%s", t.Name)

	case *ast.TEPointer:
		inner, err := c.resolveTypeExpr(mod, tyVars, t.Inner)
		if err != nil {
			return nil, err
		}
		return &types.TPointer{Elem: inner}, nil

	case *ast.TETuple:
		elems := make([]types.Mono, len(t.Elems))
		for i, e := range t.Elems {
			m, err := c.resolveTypeExpr(mod, tyVars, e)
			if err != nil {
				return nil, err
			}
			elems[i] = m
		}
		return &types.TTuple{Elems: elems}, nil

	case *ast.TEFunction:
		arg, err := argMono(func(e ast.TypeExpr) (types.Mono, error) { return c.resolveTypeExpr(mod, tyVars, e) }, t.Args)
		if err != nil {
			return nil, err
		}
		ret, err := c.resolveTypeExpr(mod, tyVars, t.Ret)
		if err != nil {
			return nil, err
		}
		return &types.TFunction{Arg: arg, Result: ret}, nil

	default:
		return nil, errdefs.New(errdefs.NAM002, ast.Pos{}, "unsupported type expression form %T", te)
	}
}

// argMono folds a surface argument-type list into the single Mono a
// TFunction's Arg slot holds: Unit for none, the lone type for one, a
// TTuple otherwise.
func argMono(resolve func(ast.TypeExpr) (types.Mono, error), args []ast.TypeExpr) (types.Mono, error) {
	switch len(args) {
	case 0:
		return types.Unit, nil
	case 1:
		return resolve(args[0])
	default:
		elems := make([]types.Mono, len(args))
		for i, a := range args {
			m, err := resolve(a)
			if err != nil {
				return nil, err
			}
			elems[i] = m
		}
		return &types.TTuple{Elems: elems}, nil
	}
}

// lookupType resolves a (possibly qualified) type name to its registered
// entry and the module that owns it.
func (c *Checker) lookupType(mod *module.Module, path []string, name string) (*module.TypeEntry, *module.Module, error) {
	scope := mod
	for _, part := range path {
		sub, ok := scope.SubModules[part]
		if !ok {
			return nil, nil, errdefs.New(errdefs.NAM002, ast.Pos{}, "unknown module %q", part)
		}
		scope = sub
	}
	if entry, ok := scope.Types[name]; ok {
		return entry, scope, nil
	}
	return nil, nil, errdefs.New(errdefs.NAM002, ast.Pos{}, "unknown type %q", name)
}

// instantiateUserType builds a TUser for a resolved type entry applied to
// argExprs (resolved in the caller's scope, not the declaration's).
func (c *Checker) instantiateUserType(scope *module.Module, entry *module.TypeEntry, tyVars map[string]*types.TVar, argExprs []ast.TypeExpr) (types.Mono, error) {
	if entry.Def == nil {
		return nil, errdefs.New(errdefs.NAM002, ast.Pos{}, "type not yet elaborated")
	}
	args := make([]types.Mono, len(argExprs))
	for i, a := range argExprs {
		m, err := c.resolveTypeExpr(scope, tyVars, a)
		if err != nil {
			return nil, err
		}
		args[i] = m
	}
	if len(args) != len(entry.Def.TyVars) {
		return nil, errdefs.New(errdefs.ARI001, ast.Pos{},
			"type %q expects %d argument(s), got %d", entry.Def.Name, len(entry.Def.TyVars), len(args))
	}
	return (&types.InstUser{Def: entry.Def, Args: args}).Monify(), nil
}
