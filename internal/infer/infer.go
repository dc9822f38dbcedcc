// Package infer implements Algorithm W over the expanded IR: per-module
// elaboration of type declarations, SCC-ordered checking of top-level
// bindings, let-generalization (and value-restriction-style weakening for
// non-function bindings), and instantiation of polymorphic references.
package infer

import (
	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/errdefs"
	"github.com/evanlang2/evanlang2c/internal/expand"
	"github.com/evanlang2/evanlang2c/internal/module"
	"github.com/evanlang2/evanlang2c/internal/types"
)

// Checker drives inference over one module tree, reachable through the
// resolver already having loaded it.
type Checker struct {
	resolver *module.Resolver
	desugar  *expand.Desugarer
}

// New returns a Checker using resolver for cross-module lookups.
func New(resolver *module.Resolver) *Checker {
	return &Checker{resolver: resolver, desugar: expand.New()}
}

// CheckModule elaborates mod's type declarations, then type-checks every
// top-level binding in SCC dependency order.
func (c *Checker) CheckModule(mod *module.Module) error {
	if err := c.elaborateTypes(mod); err != nil {
		return err
	}
	if err := c.elaborateExterns(mod); err != nil {
		return err
	}
	for _, sub := range mod.SubModules {
		if sub.Parent == mod {
			if err := c.CheckModule(sub); err != nil {
				return err
			}
		}
	}

	graph := mod.CallGraph()
	for _, comp := range graph.SCCs() {
		if err := c.checkComponent(mod, comp); err != nil {
			return err
		}
	}
	return nil
}

// elaborateExterns resolves the declared type of every Extern and
// ImplicitExtern binding; unlike El bindings these have no body to infer
// from, so their Mono comes straight from the annotation.
func (c *Checker) elaborateExterns(mod *module.Module) error {
	for _, tv := range mod.GlobVars {
		if tv.Kind == module.KindEl || tv.Ty != nil {
			continue
		}
		ty, err := c.resolveTypeExpr(mod, nil, tv.DeclType)
		if err != nil {
			return err
		}
		tv.Ty = ty
	}
	return nil
}

// elaborateTypes resolves every LetType declaration's body into the
// module's type table. Declarations may reference each other and
// themselves (through Pointer or a struct/enum field), which is why
// UserType.Info starts unset: a self-reference sees the declaration
// object before its own body is filled in.
func (c *Checker) elaborateTypes(mod *module.Module) error {
	// First pass: allocate every UserType so mutually referencing bodies
	// can see each other regardless of declaration order.
	type pending struct {
		entry *module.TypeEntry
		decl  *ast.LetType
	}
	var work []pending
	for name, entry := range mod.Types {
		if entry.Def != nil {
			continue // already elaborated (re-entrant sub-module walk)
		}
		decl, ok := mod.TypeDecls[name]
		if !ok {
			continue
		}
		entry.Def = types.NewUserType(decl.Name, mod.Name+"_"+decl.Name, decl.TyVars)
		work = append(work, pending{entry, decl})
	}

	for _, p := range work {
		tyVars := make(map[string]*types.TVar, len(p.decl.TyVars))
		for _, v := range p.decl.TyVars {
			tyVars[v] = &types.TVar{Name: v, Cell: types.NewCell()}
		}
		switch p.decl.Kind {
		case ast.TypeAlias:
			m, err := c.resolveTypeExpr(mod, tyVars, p.decl.Alias)
			if err != nil {
				return err
			}
			p.entry.Def.Info.SetAlias(m)

		case ast.TypeStruct:
			fields := make([]types.FieldDef, len(p.decl.Fields))
			for i, f := range p.decl.Fields {
				m, err := c.resolveTypeExpr(mod, tyVars, f.Type)
				if err != nil {
					return err
				}
				fields[i] = types.FieldDef{Name: f.Name, Type: m}
			}
			p.entry.Def.Info.SetStruct(fields)

		case ast.TypeEnum:
			variants := make([]types.VariantDef, len(p.decl.Variants))
			for i, v := range p.decl.Variants {
				var m types.Mono
				if v.Type != nil {
					var err error
					m, err = c.resolveTypeExpr(mod, tyVars, v.Type)
					if err != nil {
						return err
					}
				}
				variants[i] = types.VariantDef{Name: v.Name, Type: m}
			}
			p.entry.Def.Info.SetEnum(variants)
		}
	}
	return nil
}

// checkComponent assigns skeleton types to every member of an SCC, infers
// each body under those skeletons, then generalizes (function bindings) or
// weakens (non-function bindings) the result.
func (c *Checker) checkComponent(mod *module.Module, names []string) error {
	comp := &module.Component{Vars: append([]string(nil), names...), State: module.InChecking}
	skeletons := make(map[string]types.Mono, len(names))

	for _, name := range names {
		tv := mod.GlobVars[name]
		tv.SCC = comp
		if tv.Args.IsFunc {
			argTypes := make([]types.Mono, len(tv.Args.Params))
			for i := range tv.Args.Params {
				argTypes[i] = types.NewIndir()
				tv.Args.Params[i].Ty = argTypes[i]
			}
			result := types.NewIndir()
			var argMono types.Mono
			switch len(argTypes) {
			case 0:
				argMono = types.Unit
			case 1:
				argMono = argTypes[0]
			default:
				argMono = &types.TTuple{Elems: argTypes}
			}
			skeletons[name] = &types.TFunction{Arg: argMono, Result: result}
		} else {
			skeletons[name] = types.NewIndir()
		}
	}

	for _, name := range names {
		tv := mod.GlobVars[name]
		expanded, err := c.desugar.Expand(tv.Expr)
		if err != nil {
			return err
		}

		local := newEnv(nil)
		var resType types.Mono
		if tv.Args.IsFunc {
			for _, p := range tv.Args.Params {
				local.set(p.Name, p.Ty)
			}
			resType = skeletons[name].(*types.TFunction).Result
		}

		scope := &scope{mod: mod, component: skeletons}
		typed, err := c.infer(scope, local, expanded, resType, nil)
		if err != nil {
			return err
		}

		var skelResult types.Mono = skeletons[name]
		if tv.Args.IsFunc {
			skelResult = skeletons[name].(*types.TFunction).Result
		}
		if _, err := types.Unify(skelResult, typed.Type()); err != nil {
			return errdefs.Wrap(errdefs.UNI001, tv.Expr.Position(), err, "binding %q does not match its inferred type", name)
		}

		tv.TypedExpr = typed
	}

	for _, name := range names {
		tv := mod.GlobVars[name]
		if tv.Args.IsFunc {
			tv.Poly = generalize(skeletons[name])
		} else {
			tv.Poly = weaken(skeletons[name])
		}
	}
	comp.State = module.Done
	return nil
}

// scope bundles the lookups infer needs beyond the local lambda/let
// environment: the owning module (for globals/types) and, during
// per-component checking, the skeleton types of sibling bindings still
// InChecking (mutual recursion).
type scope struct {
	mod       *module.Module
	component map[string]types.Mono
}

// literalType returns the fixed monotype of a literal kind.
func literalType(k ast.LitKind) types.Mono {
	switch k {
	case ast.LitUnit:
		return types.Unit
	case ast.LitI64:
		return types.I64
	case ast.LitCInt:
		return types.CInt
	case ast.LitF64:
		return types.F64
	case ast.LitBool:
		return types.Bool
	case ast.LitChar:
		return types.Char
	default:
		return types.Unit
	}
}
