package module

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/errdefs"
)

// filenamePattern is the required shape of a loadable module file, per
// the filename-derived naming rule: leading lowercase letter, then
// lowercase letters/digits/underscore, `.el2` extension.
var filenamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*\.el2$`)

// FileLoader is supplied by the driver: given a directory and a module's
// file name (its lowercased name plus `.el2`), it returns that file's
// path and parsed toplevels. Parsing and
// lexing are external collaborators; the resolver only orchestrates when
// and in what order they run.
type FileLoader func(dir, name string) (file string, toplevels []ast.Toplevel, err error)

// Resolver resolves qualified names against a module tree, loading files
// lazily and only once, and detects reentrant cycles via each Module's
// InEval flag.
type Resolver struct {
	load FileLoader
	dir  string

	root  *Module
	byKey map[string]*Module // filepath.Join(dir, file name) -> loaded module

	// loadStack names the modules currently being processed, used only to
	// build a readable cycle trace; InEval is the actual detection flag.
	loadStack []string
}

// NewResolver returns a resolver rooted at dir, using load to parse files
// on demand.
func NewResolver(dir string, load FileLoader) *Resolver {
	return &Resolver{
		load:  load,
		dir:   dir,
		byKey: make(map[string]*Module),
	}
}

// ModuleNameFromFilename derives a module name by stripping the `.el2`
// extension and uppercasing the leading character.
func ModuleNameFromFilename(filename string) (string, error) {
	base := filepath.Base(filename)
	if !filenamePattern.MatchString(base) {
		return "", fmt.Errorf("module filename %q must match [a-z][a-z0-9_]*.el2", base)
	}
	stem := strings.TrimSuffix(base, ".el2")
	runes := []rune(stem)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes), nil
}

// Root loads the root module from rootFile and returns it.
func (r *Resolver) Root(rootFile string) (*Module, error) {
	mod, err := r.loadFile(filepath.Dir(rootFile), filepath.Base(rootFile), nil)
	if err != nil {
		return nil, err
	}
	r.root = mod
	return mod, nil
}

// loadFile loads (or returns the cached) module for dir/filename, with
// parent as its lexical parent for qualified lookups.
func (r *Resolver) loadFile(dir, filename string, parent *Module) (*Module, error) {
	abs := filepath.Join(dir, filename)
	if cached, ok := r.byKey[abs]; ok {
		if cached.InEval {
			return nil, errdefs.New(errdefs.MOD002, ast.Pos{File: abs},
				"module cycle: %s -> %s", strings.Join(r.loadStack, " -> "), abs)
		}
		return cached, nil
	}

	name, err := ModuleNameFromFilename(filename)
	if err != nil {
		return nil, errdefs.New(errdefs.MOD003, ast.Pos{File: abs}, "%v", err)
	}

	mod := NewModule(name, abs, parent)
	r.byKey[abs] = mod
	mod.InEval = true
	r.loadStack = append(r.loadStack, abs)
	defer func() {
		mod.InEval = false
		r.loadStack = r.loadStack[:len(r.loadStack)-1]
	}()

	_, toplevels, err := r.load(dir, filename)
	if err != nil {
		return nil, err
	}
	if err := r.populate(mod, dir, toplevels); err != nil {
		return nil, err
	}
	return mod, nil
}

// populate walks a module's toplevels, registering globs/types and
// recursively loading any `open` targets as sub-modules.
func (r *Resolver) populate(mod *Module, dir string, toplevels []ast.Toplevel) error {
	for _, t := range toplevels {
		switch n := t.(type) {
		case *ast.Open:
			cur := mod
			for _, part := range n.Path {
				sub, ok := cur.SubModules[part]
				if !ok {
					loaded, err := r.loadFile(dir, strings.ToLower(part)+".el2", cur)
					if err != nil {
						return errdefs.New(errdefs.NAM002, n.Pos, "unknown module %q: %v", part, err)
					}
					cur.OpenSub(loaded.Name, loaded)
					sub = loaded
				}
				cur = sub
			}
			mod.OpenSub(cur.Name, cur)

		case *ast.OpenFile:
			sub, err := r.loadFile(dir, filepath.Base(n.Path), mod)
			if err != nil {
				return err
			}
			mod.OpenSub(sub.Name, sub)

		case *ast.LetFn:
			if _, dup := mod.GlobVars[n.Name]; dup {
				return errdefs.New(errdefs.DUP001, n.Pos, "duplicate top-level binding %q", n.Name)
			}
			args := make([]Param, len(n.Args))
			for i, p := range n.Args {
				args[i] = Param{Name: p.Name}
			}
			mod.GlobVars[n.Name] = &TopVar{
				Kind: KindEl, Name: n.Name, UniqueName: uniqueName(mod, n.Name),
				Args: Args{IsFunc: true, Params: args}, Expr: n.Body, UsedGlobals: map[string]bool{},
			}

		case *ast.Let:
			pv, ok := n.Pattern.(*ast.PVar)
			if !ok {
				return errdefs.New(errdefs.PAT001, n.Pos, "top-level let must bind a single name (got %T)", n.Pattern)
			}
			if _, dup := mod.GlobVars[pv.Name]; dup {
				return errdefs.New(errdefs.DUP001, n.Pos, "duplicate top-level binding %q", pv.Name)
			}
			mod.GlobVars[pv.Name] = &TopVar{
				Kind: KindEl, Name: pv.Name, UniqueName: uniqueName(mod, pv.Name),
				Args: Args{IsFunc: false}, Expr: n.Body, UsedGlobals: map[string]bool{},
			}

		case *ast.Extern:
			if _, dup := mod.GlobVars[n.Name]; dup {
				return errdefs.New(errdefs.DUP001, n.Pos, "duplicate top-level binding %q", n.Name)
			}
			mod.GlobVars[n.Name] = &TopVar{
				Kind: KindExtern, Name: n.Name, UniqueName: uniqueName(mod, n.Name),
				External: n.External, DeclType: n.Type,
			}

		case *ast.ImplicitExtern:
			if _, dup := mod.GlobVars[n.Name]; dup {
				return errdefs.New(errdefs.DUP001, n.Pos, "duplicate top-level binding %q", n.Name)
			}
			mod.GlobVars[n.Name] = &TopVar{
				Kind: KindImplicitExtern, Name: n.Name, UniqueName: uniqueName(mod, n.Name),
				External: n.External, DeclType: n.Type,
			}

		case *ast.LetType:
			if _, dup := mod.Types[n.Name]; dup {
				return errdefs.New(errdefs.DUP002, n.Pos, "duplicate type declaration %q", n.Name)
			}
			mod.Types[n.Name] = &TypeEntry{}
			mod.TypeDecls[n.Name] = n
			for _, v := range n.Variants {
				mod.VariantToType[v.Name] = n.Name
			}
			for _, f := range n.Fields {
				mod.FieldToType[f.Name] = n.Name
			}
		}
	}
	return nil
}

// uniqueName produces a module-qualified name, guaranteeing injectivity
// across the whole compilation under the assumption that module names
// themselves are injective (enforced by the one-file-per-name rule).
func uniqueName(mod *Module, name string) string {
	return mod.Name + "." + name
}

// Resolve looks up a (possibly qualified) path starting from scope,
// searching scope itself, then each of its opened sub-modules, then (if
// the leading component names no known sub-module) attempting to load
// `<dir>/<m1_lowercased>.el2` on demand.
func (r *Resolver) Resolve(scope *Module, path []string, name string) (*Module, *TopVar, error) {
	if len(path) == 0 {
		if tv, ok := scope.GlobVars[name]; ok {
			return scope, tv, nil
		}
		// Most-recently-opened-first (§4.4): OpenOrder records insertion
		// order into SubModules, so walking it backwards gives the last
		// `open` statement priority on an unqualified name collision,
		// instead of a Go map's randomized iteration order.
		for i := len(scope.OpenOrder) - 1; i >= 0; i-- {
			sub, ok := scope.SubModules[scope.OpenOrder[i]]
			if !ok {
				continue
			}
			if tv, ok := sub.GlobVars[name]; ok {
				return sub, tv, nil
			}
		}
		return nil, nil, errdefs.New(errdefs.NAM001, ast.Pos{}, "undefined name %q", name)
	}

	head := path[0]
	sub, ok := scope.SubModules[head]
	if !ok {
		dir := filepath.Dir(scope.Filename)
		loaded, err := r.loadFile(dir, strings.ToLower(head)+".el2", scope)
		if err != nil {
			return nil, nil, errdefs.New(errdefs.NAM002, ast.Pos{}, "unknown module %q: %v", head, err)
		}
		scope.OpenSub(loaded.Name, loaded)
		sub = loaded
	}
	return r.Resolve(sub, path[1:], name)
}
