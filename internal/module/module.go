// Package module implements module resolution: lazy per-file loading,
// qualified-name lookup through an ordered scope, and cycle detection via
// an in_eval flag on each module entry.
package module

import (
	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/scc"
	"github.com/evanlang2/evanlang2c/internal/typedast"
	"github.com/evanlang2/evanlang2c/internal/types"
)

// Args distinguishes a non-function binding from a function binding's
// named, typed argument list.
type Args struct {
	IsFunc bool
	Params []Param
}

// Param is one function-binding argument name paired with its skeleton
// monotype, assigned before the body is inferred.
type Param struct {
	Name string
	Ty   types.Mono
}

// SCCState tracks a top-var's progress through per-component checking.
type SCCState int

const (
	Untouched SCCState = iota
	InChecking
	Done
)

// Component wraps one strongly connected set of top-vars with shared
// generalization state: checking any member first checks every member of
// its component together.
type Component struct {
	Vars  []string
	State SCCState
}

// TopVar is one top-level binding. Exactly one of El/Extern/ImplicitExtern
// fields is meaningful per Kind.
type TopVarKind int

const (
	KindEl TopVarKind = iota
	KindExtern
	KindImplicitExtern
)

// TopVar is a module-level declaration: a defined binding (El), a
// declared-but-externally-defined binding (Extern), or a declared extern
// whose C symbol the host compiler already sees, so that no declaration
// is emitted for it (ImplicitExtern).
type TopVar struct {
	Kind TopVarKind

	Name       string
	UniqueName string

	// El fields.
	Args        Args
	Expr        ast.Expr
	Poly        types.Poly
	TypedExpr   typedast.Expr // set once this binding's SCC reaches Done
	UsedGlobals map[string]bool
	SCC         *Component
	Data        interface{} // emitter scratch (monomorphization cache key state)

	// Extern / ImplicitExtern fields.
	External    string
	DeclType    ast.TypeExpr // as written; resolved into Ty during elaboration
	Ty          types.Mono
}

// TypeEntry is one type declaration registered in a module's type table.
type TypeEntry struct {
	Def *types.UserType
}

// Module mirrors one loaded .el2 file plus its position in the module
// tree; sub-modules are populated lazily as qualified names are resolved
// against it.
type Module struct {
	Name     string
	Filename string
	Parent   *Module

	SubModules map[string]*Module
	OpenOrder  []string // SubModules keys in first-opened order; unqualified lookup walks this reversed
	GlobVars   map[string]*TopVar
	Types      map[string]*TypeEntry
	TypeDecls  map[string]*ast.LetType // raw declarations, consumed once by elaboration

	VariantToType map[string]string
	FieldToType   map[string]string

	// InEval is true while this module is being processed; re-entry
	// signals a cycle.
	InEval bool
}

// NewModule returns an empty module ready for population by a resolver.
func NewModule(name, filename string, parent *Module) *Module {
	return &Module{
		Name:          name,
		Filename:      filename,
		Parent:        parent,
		SubModules:    make(map[string]*Module),
		GlobVars:      make(map[string]*TopVar),
		Types:         make(map[string]*TypeEntry),
		TypeDecls:     make(map[string]*ast.LetType),
		VariantToType: make(map[string]string),
		FieldToType:   make(map[string]string),
	}
}

// OpenSub registers sub under name in m.SubModules, recording the open
// order the first time name is seen so unqualified lookup can prefer the
// most-recently-opened module on a name collision (§4.4). Re-opening an
// already-present name (e.g. the same qualified path referenced twice)
// does not change its position in the order.
func (m *Module) OpenSub(name string, sub *Module) {
	if _, dup := m.SubModules[name]; !dup {
		m.OpenOrder = append(m.OpenOrder, name)
	}
	m.SubModules[name] = sub
}

// CallGraph builds the used_globals call graph for this module's El
// bindings, ready for scc.Graph.SCCs to partition into generalization
// components.
func (m *Module) CallGraph() *scc.Graph {
	g := scc.NewGraph()
	for name, tv := range m.GlobVars {
		if tv.Kind != KindEl {
			continue
		}
		g.AddNode(name)
		for used := range tv.UsedGlobals {
			if other, ok := m.GlobVars[used]; ok && other.Kind == KindEl {
				g.AddEdge(name, used)
			}
		}
	}
	return g
}
