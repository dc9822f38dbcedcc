// Package codegen lowers type-checked top-level bindings to portable C,
// monomorphizing every polymorphic reference on demand. It walks
// reachable definitions starting from the monomorphic top-levels and
// externs, caching each (binding, inst_map) pair so a given instantiation
// is declared and defined at most once.
package codegen

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/errdefs"
	"github.com/evanlang2/evanlang2c/internal/module"
	"github.com/evanlang2/evanlang2c/internal/typedast"
	"github.com/evanlang2/evanlang2c/internal/types"
)

// noPos is used for errors synthesized during emission that have no
// single source location to blame (e.g. a cross-binding name collision).
var noPos ast.Pos

// prelude is the fixed set of headers every emitted translation unit
// needs; the language has no module system at the C level; everything
// lands in one file.
const prelude = `#include <stdint.h>
#include <stdbool.h>
#include <stdlib.h>
#include <string.h>
#include <assert.h>
#include <stdio.h>

`

// Emitter accumulates C text across four ordered buffers (type forward
// decls, type definitions, value/function declarations, value/function
// definitions) and the on-demand emission caches that keep every entity
// declared and defined exactly once.
type Emitter struct {
	bindings map[string]*module.TopVar // unique_name -> declaration, across every loaded module

	typeFwd    bytes.Buffer
	typeDefs   bytes.Buffer
	valueDecls bytes.Buffer
	valueDefs  bytes.Buffer

	tupleNames   map[string]string // mangled tuple monotype -> struct name
	funcPtrNames map[string]string // mangled function monotype -> typedef name
	userNames    map[string]string // repr_name\x00args -> struct name

	bindingCache map[string]string // unique_name + "\x00" + inst_map key -> C identifier
	cNames       map[string]bool   // every C identifier handed out, to catch DUP003 collisions

	lambdaLift int // counter for synthesized names of nested (non-toplevel) lambdas
}

// NewEmitter returns an Emitter over every binding reachable from the
// module tree rooted at root (root plus every transitively opened
// sub-module), keyed by unique_name for cross-module GlobVar resolution.
func NewEmitter(root *module.Module) *Emitter {
	e := &Emitter{
		bindings:     make(map[string]*module.TopVar),
		tupleNames:   make(map[string]string),
		funcPtrNames: make(map[string]string),
		userNames:    make(map[string]string),
		bindingCache: make(map[string]string),
		cNames:       make(map[string]bool),
	}
	e.collectBindings(root, make(map[*module.Module]bool))
	return e
}

func (e *Emitter) collectBindings(mod *module.Module, seen map[*module.Module]bool) {
	if seen[mod] {
		return
	}
	seen[mod] = true
	for _, tv := range mod.GlobVars {
		e.bindings[tv.UniqueName] = tv
	}
	for _, sub := range mod.SubModules {
		e.collectBindings(sub, seen)
	}
}

// EmitModule emits every monomorphic top-level binding and every extern
// declaration reachable from root, in deterministic (unique_name-sorted)
// order so two runs over the same program produce byte-identical output.
func (e *Emitter) EmitModule(root *module.Module) error {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tv := e.bindings[name]
		switch tv.Kind {
		case module.KindExtern:
			if err := e.emitExternDecl(tv); err != nil {
				return err
			}
		case module.KindImplicitExtern:
			// No declaration: the host C compiler supplies it (§6).
		case module.KindEl:
			if len(types.Quantifiers(tv.Poly)) == 0 {
				if _, err := e.emitBinding(tv, nil); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// WriteTo flushes the four buffers to w in the fixed output order:
// prelude, type forward-declarations, type definitions, value/function
// declarations, value/function definitions. Nothing is written until the
// caller has confirmed emission completed without error, so a failed
// compilation never produces partial C output.
func (e *Emitter) WriteTo(w io.Writer) error {
	for _, chunk := range []string{prelude, e.typeFwd.String(), e.typeDefs.String(), e.valueDecls.String(), e.valueDefs.String()} {
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
	}
	return nil
}

// emitExternDecl writes a verbatim C extern declaration for an Extern
// binding (§6): its external name, at the type its declaration resolved
// to during elaboration.
func (e *Emitter) emitExternDecl(tv *module.TopVar) error {
	if err := e.reserveName(tv.External, tv.Name); err != nil {
		return err
	}
	fn, ok := types.InnerMono(tv.Ty).(*types.TFunction)
	if !ok {
		retC := e.ctype(tv.Ty)
		fmt.Fprintf(&e.valueDecls, "extern %s %s;\n", retC, tv.External)
		return nil
	}
	retC := "void"
	if !isUnit(fn.Result) {
		retC = e.ctype(fn.Result)
	}
	params := flattenArgs(fn.Arg)
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if isUnit(p) {
			continue
		}
		parts = append(parts, e.ctype(p))
	}
	fmt.Fprintf(&e.valueDecls, "extern %s %s(%s);\n", retC, tv.External, joinOrVoid(parts))
	return nil
}

// emitBinding is the core monomorphization step: compute the deterministic
// identifier for (tv, instMap), return it immediately on a cache hit, else
// substitute instMap through tv's typed expression and emit either a
// function or a value definition under that identifier.
func (e *Emitter) emitBinding(tv *module.TopVar, instMap map[string]types.Mono) (string, error) {
	cacheKey := tv.UniqueName + "\x00" + instMapKey(instMap)
	if name, ok := e.bindingCache[cacheKey]; ok {
		return name, nil
	}
	cName := bindingName(tv.UniqueName, instMap)
	if err := e.reserveName(cName, tv.UniqueName); err != nil {
		return "", err
	}
	// Reserve before recursing so a self- or mutually-recursive binding
	// sees its own (still-being-emitted) identifier on re-entry.
	e.bindingCache[cacheKey] = cName

	params, body, retTy, isFunc := functionShape(tv)
	if isFunc {
		if err := e.emitFunction(cName, params, instMap, body, retTy); err != nil {
			return "", err
		}
		return cName, nil
	}

	groundTy := types.Substitute(tv.TypedExpr.Type(), instMap)
	body2 := substExpr(tv.TypedExpr, instMap)
	if isUnit(groundTy) {
		// A Unit-typed top-level value has nothing to store; its statements
		// go into a generated no-argument void function of that name, which
		// the emitter itself never calls.
		fmt.Fprintf(&e.valueDecls, "void %s(void);\n", cName)
		fb := newFuncBuilder(e)
		fb.stmtExpr(body2)
		fmt.Fprintf(&e.valueDefs, "void %s(void) {\n%s}\n\n", cName, fb.buf.String())
		return cName, nil
	}
	ctyp := e.ctype(groundTy)
	fb := newFuncBuilder(e)
	val := fb.lower(body2)
	fmt.Fprintf(&e.valueDecls, "extern %s %s;\n", ctyp, cName)
	// A C static initializer can't carry statements; a non-function
	// top-level binding whose value needs them beyond the final expression
	// is out of scope here, unlike the Unit-typed branch above, which puts
	// its statements in a function.
	fmt.Fprintf(&e.valueDefs, "%s %s = %s;\n\n", ctyp, cName, val)
	return cName, nil
}

// emitFunction emits a declaration and a definition for a Func binding:
// Unit-typed parameters are dropped entirely from the C signature, and a
// Unit-typed result lowers to void.
func (e *Emitter) emitFunction(cName string, params []module.Param, instMap map[string]types.Mono, body typedast.Expr, retTy types.Mono) error {
	groundRet := types.Substitute(retTy, instMap)
	retC := "void"
	if !isUnit(groundRet) {
		retC = e.ctype(groundRet)
	}

	fb := newFuncBuilder(e)
	sigParts := make([]string, 0, len(params))
	for _, p := range params {
		pty := types.Substitute(p.Ty, instMap)
		if isUnit(pty) {
			continue
		}
		cname := fb.bindLocal(p.Name)
		sigParts = append(sigParts, fmt.Sprintf("%s %s", e.ctype(pty), cname))
	}

	groundBody := substExpr(body, instMap)
	val := fb.lower(groundBody)

	fmt.Fprintf(&e.valueDecls, "%s %s(%s);\n", retC, cName, joinOrVoid(sigParts))
	fmt.Fprintf(&e.valueDefs, "%s %s(%s) {\n", retC, cName, joinOrVoid(sigParts))
	fb.buf.WriteTo(&e.valueDefs)
	if retC != "void" {
		fmt.Fprintf(&e.valueDefs, "\treturn %s;\n", val)
	}
	fmt.Fprintf(&e.valueDefs, "}\n\n")
	return nil
}

// functionShape normalizes the two surface forms that produce a callable
// top-level binding: a LetFn (Args.IsFunc, body is TypedExpr directly) and
// a NonFunc Let whose value happens to be a Lambda (e.g. `let f = fun x ->
// ...`), which module.populate registers as a plain value binding.
func functionShape(tv *module.TopVar) (params []module.Param, body typedast.Expr, retTy types.Mono, isFunc bool) {
	if tv.Args.IsFunc {
		return tv.Args.Params, tv.TypedExpr, tv.TypedExpr.Type(), true
	}
	if lam, ok := tv.TypedExpr.(*typedast.Lambda); ok {
		ps := make([]module.Param, len(lam.Params))
		for i, name := range lam.Params {
			ps[i] = module.Param{Name: name, Ty: lam.ParamTypes[i]}
		}
		return ps, lam.Body, lam.Body.Type(), true
	}
	return nil, tv.TypedExpr, tv.TypedExpr.Type(), false
}

// reserveName records that cName is now in use, attributing a collision
// to DUP003: two distinct bindings or instantiations would otherwise
// shadow the same C identifier.
func (e *Emitter) reserveName(cName, owner string) error {
	if e.cNames[cName] {
		return errdefs.New(errdefs.DUP003, noPos, "duplicate emitted identifier %q (from %q)", cName, owner)
	}
	e.cNames[cName] = true
	return nil
}

func isUnit(m types.Mono) bool {
	b, ok := types.InnerMono(m).(*types.TBase)
	return ok && b.Kind == types.KUnit
}
