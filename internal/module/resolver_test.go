package module

import (
	"testing"

	"github.com/evanlang2/evanlang2c/internal/ast"
)

func fakeLoader(files map[string][]ast.Toplevel) FileLoader {
	return func(dir, name string) (string, []ast.Toplevel, error) {
		tl, ok := files[name]
		if !ok {
			return "", nil, New404(name)
		}
		return name, tl, nil
	}
}

// New404 is a tiny stand-in for the file-not-found error a real parser
// driver would raise; kept local to the test since the resolver only
// needs FileLoader's error to be non-nil.
func New404(name string) error { return &notFound{name} }

type notFound struct{ name string }

func (e *notFound) Error() string { return "not found: " + e.name }

func TestRootLoadsGlobVars(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.LetFn{Name: "f", Args: []ast.Param{{Name: "x"}}, Body: &ast.Var{Name: "x"}},
		},
	}
	r := NewResolver(".", fakeLoader(files))
	mod, err := r.Root("main.el2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod.Name != "Main" {
		t.Fatalf("expected module name Main, got %s", mod.Name)
	}
	if _, ok := mod.GlobVars["f"]; !ok {
		t.Fatalf("expected glob var f registered")
	}
}

func TestDuplicateTopLevelBindingErrors(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.LetFn{Name: "f", Body: &ast.Lit{Kind: ast.LitI64, I64: 1}},
			&ast.LetFn{Name: "f", Body: &ast.Lit{Kind: ast.LitI64, I64: 2}},
		},
	}
	r := NewResolver(".", fakeLoader(files))
	if _, err := r.Root("main.el2"); err == nil {
		t.Fatalf("expected duplicate binding error")
	}
}

func TestOpenLoadsSubModule(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.Open{Path: []string{"List"}},
		},
		"list.el2": {
			&ast.LetFn{Name: "map", Body: &ast.Lit{Kind: ast.LitI64, I64: 0}},
		},
	}
	r := NewResolver(".", fakeLoader(files))
	mod, err := r.Root("main.el2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sub, ok := mod.SubModules["List"]
	if !ok {
		t.Fatalf("expected List sub-module loaded")
	}
	if _, ok := sub.GlobVars["map"]; !ok {
		t.Fatalf("expected map registered in List")
	}
}

func TestResolveFindsNameInOpenedSubModule(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.Open{Path: []string{"List"}},
		},
		"list.el2": {
			&ast.LetFn{Name: "map", Body: &ast.Lit{Kind: ast.LitI64, I64: 0}},
		},
	}
	r := NewResolver(".", fakeLoader(files))
	mod, err := r.Root("main.el2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	owner, tv, err := r.Resolve(mod, nil, "map")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if owner.Name != "List" || tv.Name != "map" {
		t.Fatalf("expected map resolved in List, got %s/%s", owner.Name, tv.Name)
	}
}

func TestResolveUnqualifiedPrefersMostRecentlyOpened(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.Open{Path: []string{"Listone"}},
			&ast.Open{Path: []string{"Listtwo"}},
		},
		"listone.el2": {
			&ast.LetFn{Name: "map", Body: &ast.Lit{Kind: ast.LitI64, I64: 1}},
		},
		"listtwo.el2": {
			&ast.LetFn{Name: "map", Body: &ast.Lit{Kind: ast.LitI64, I64: 2}},
		},
	}
	// Run many times: a plain map-iteration bug would flip winners from
	// run to run instead of failing consistently.
	for i := 0; i < 20; i++ {
		r := NewResolver(".", fakeLoader(files))
		mod, err := r.Root("main.el2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		owner, _, err := r.Resolve(mod, nil, "map")
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if owner.Name != "Listtwo" {
			t.Fatalf("expected most-recently-opened Listtwo to win, got %s", owner.Name)
		}
	}
}

func TestModuleCycleDetected(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"a.el2": {&ast.Open{Path: []string{"B"}}},
		"b.el2": {&ast.Open{Path: []string{"A"}}},
	}
	r := NewResolver(".", fakeLoader(files))
	if _, err := r.Root("a.el2"); err == nil {
		t.Fatalf("expected module cycle error")
	}
}

func TestModuleNameFromFilenameRejectsBadShape(t *testing.T) {
	if _, err := ModuleNameFromFilename("Main.el2"); err == nil {
		t.Fatalf("expected rejection of uppercase-leading filename")
	}
	name, err := ModuleNameFromFilename("list_utils.el2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "List_utils" {
		t.Fatalf("expected List_utils, got %s", name)
	}
}
