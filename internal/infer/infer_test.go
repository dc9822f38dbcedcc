package infer

import (
	"testing"

	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/module"
	"github.com/evanlang2/evanlang2c/internal/types"
)

func fakeLoader(files map[string][]ast.Toplevel) module.FileLoader {
	return func(dir, name string) (string, []ast.Toplevel, error) {
		tl, ok := files[name]
		if !ok {
			return "", nil, &notFoundErr{name}
		}
		return name, tl, nil
	}
}

type notFoundErr struct{ name string }

func (e *notFoundErr) Error() string { return "not found: " + e.name }

func checkFile(t *testing.T, files map[string][]ast.Toplevel, root string) *module.Module {
	t.Helper()
	r := module.NewResolver(".", fakeLoader(files))
	mod, err := r.Root(root)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	c := New(r)
	if err := c.CheckModule(mod); err != nil {
		t.Fatalf("check error: %v", err)
	}
	return mod
}

func TestInferIdentityFunctionGeneralizes(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.LetFn{Name: "id", Args: []ast.Param{{Name: "x"}}, Body: &ast.Var{Name: "x"}},
		},
	}
	mod := checkFile(t, files, "main.el2")
	tv := mod.GlobVars["id"]
	if len(types.Quantifiers(tv.Poly)) != 1 {
		t.Fatalf("expected id to generalize over exactly one type variable, got %v", types.Quantifiers(tv.Poly))
	}
}

func TestInferLiteralAndIf(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.LetFn{
				Name: "pick",
				Body: &ast.If{
					Cond: &ast.Lit{Kind: ast.LitBool, Bool: true},
					Then: &ast.Lit{Kind: ast.LitI64, I64: 1},
					Else: &ast.Lit{Kind: ast.LitI64, I64: 2},
				},
			},
		},
	}
	mod := checkFile(t, files, "main.el2")
	tv := mod.GlobVars["pick"]
	body := types.Body(tv.Poly)
	fn, ok := body.(*types.TFunction)
	if !ok {
		t.Fatalf("expected pick to be a function, got %s", body)
	}
	if types.InnerMono(fn.Result).String() != "i64" {
		t.Fatalf("expected pick's result to be i64, got %s", fn.Result)
	}
}

func TestInferMutualRecursionSharesComponent(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.LetFn{
				Name: "is_even", Args: []ast.Param{{Name: "n"}},
				Body: &ast.If{
					Cond: &ast.Lit{Kind: ast.LitBool, Bool: true},
					Then: &ast.Lit{Kind: ast.LitBool, Bool: true},
					Else: &ast.Apply{Func: &ast.Var{Name: "is_odd"}, Args: []ast.Expr{&ast.Var{Name: "n"}}},
				},
			},
			&ast.LetFn{
				Name: "is_odd", Args: []ast.Param{{Name: "n"}},
				Body: &ast.If{
					Cond: &ast.Lit{Kind: ast.LitBool, Bool: false},
					Then: &ast.Lit{Kind: ast.LitBool, Bool: false},
					Else: &ast.Apply{Func: &ast.Var{Name: "is_even"}, Args: []ast.Expr{&ast.Var{Name: "n"}}},
				},
			},
		},
	}
	mod := checkFile(t, files, "main.el2")
	even, odd := mod.GlobVars["is_even"], mod.GlobVars["is_odd"]
	if even.SCC != odd.SCC {
		t.Fatalf("expected is_even and is_odd to share one SCC component")
	}
}

func TestInferStructLiteralFieldOrderIndependent(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.LetType{
				Name: "Point", Kind: ast.TypeStruct,
				Fields: []ast.FieldDecl{
					{Name: "x", Type: &ast.TEName{Name: "i64"}},
					{Name: "y", Type: &ast.TEName{Name: "i64"}},
				},
			},
			&ast.LetFn{
				Name: "origin",
				Body: &ast.StructLit{
					Type: "Point",
					Fields: []ast.FieldInit{
						{Name: "y", Value: &ast.Lit{Kind: ast.LitI64, I64: 0}},
						{Name: "x", Value: &ast.Lit{Kind: ast.LitI64, I64: 0}},
					},
				},
			},
		},
	}
	mod := checkFile(t, files, "main.el2")
	tv := mod.GlobVars["origin"]
	fn := types.Body(tv.Poly).(*types.TFunction)
	if _, ok := types.InnerMono(fn.Result).(*types.TUser); !ok {
		t.Fatalf("expected origin to return the Point struct type, got %s", fn.Result)
	}
}

func TestInferEnumMissingPayloadErrors(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.LetType{
				Name: "Option", Kind: ast.TypeEnum,
				TyVars: []string{"a"},
				Variants: []ast.VariantDecl{
					{Name: "Some", Type: &ast.TEVar{Name: "a"}},
					{Name: "None"},
				},
			},
			&ast.LetFn{
				Name: "bad",
				Body: &ast.EnumLit{Type: "Option", Variant: "Some"},
			},
		},
	}
	r := module.NewResolver(".", fakeLoader(files))
	mod, err := r.Root("main.el2")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	c := New(r)
	if err := c.CheckModule(mod); err == nil {
		t.Fatalf("expected an error for a payload-carrying variant with no payload expression")
	}
}
