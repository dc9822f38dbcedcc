package infer

import "github.com/evanlang2/evanlang2c/internal/types"

// env is the local (lambda-parameter and let-bound) name scope; it never
// holds a generalized polytype; every local is monomorphic for the
// duration of its scope.
type env struct {
	parent *env
	vars   map[string]types.Mono
}

func newEnv(parent *env) *env {
	return &env{parent: parent, vars: make(map[string]types.Mono)}
}

func (e *env) child() *env { return newEnv(e) }

func (e *env) set(name string, t types.Mono) { e.vars[name] = t }

func (e *env) lookup(name string) (types.Mono, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}
