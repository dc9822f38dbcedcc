package codegen

import (
	"regexp"
	"strings"
	"testing"

	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/infer"
	"github.com/evanlang2/evanlang2c/internal/module"
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

func checkAndEmit(t *testing.T, files map[string][]ast.Toplevel, root string) string {
	t.Helper()
	r := module.NewResolver(".", fakeLoader(files))
	mod, err := r.Root(root)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	c := infer.New(r)
	if err := c.CheckModule(mod); err != nil {
		t.Fatalf("check error: %v", err)
	}
	e := NewEmitter(mod)
	if err := e.EmitModule(mod); err != nil {
		t.Fatalf("emit error: %v", err)
	}
	var buf strings.Builder
	if err := e.WriteTo(&buf); err != nil {
		t.Fatalf("write error: %v", err)
	}
	return buf.String()
}

// TestGenericIdentityMonomorphizesPerCallSite exercises §4.6's
// generalize-then-monomorphize contract: `id` is used at two distinct
// monotypes, so codegen must emit two distinct C functions, one per
// instantiation, and each call site must reference its own.
func TestGenericIdentityMonomorphizesPerCallSite(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.LetFn{Name: "id", Args: []ast.Param{{Name: "x"}}, Body: &ast.Var{Name: "x"}},
			&ast.LetFn{Name: "use_int", Body: &ast.Apply{
				Func: &ast.Var{Name: "id"},
				Args: []ast.Expr{&ast.Lit{Kind: ast.LitI64, I64: 1}},
			}},
			&ast.LetFn{Name: "use_bool", Body: &ast.Apply{
				Func: &ast.Var{Name: "id"},
				Args: []ast.Expr{&ast.Lit{Kind: ast.LitBool, Bool: true}},
			}},
		},
	}
	out := checkAndEmit(t, files, "main.el2")

	if strings.Count(out, "int64_t Main_id_inst_") == 0 {
		t.Fatalf("expected an i64 instantiation of id, got:\n%s", out)
	}
	if strings.Count(out, "bool Main_id_inst_") == 0 {
		t.Fatalf("expected a bool instantiation of id, got:\n%s", out)
	}
	// Two distinct instantiations, two distinct function definitions.
	if n := strings.Count(out, "Main_id_inst_"); n < 4 { // decl + def, twice
		t.Fatalf("expected id to be monomorphized into two distinct bindings, got %d occurrences:\n%s", n, out)
	}
}

// TestEnumLowersToTaggedUnion exercises §4.6's Enum lowering: a
// payload-carrying variant becomes a tagged union, and Check_variant
// lowers to a tag comparison.
func TestEnumLowersToTaggedUnion(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.LetType{
				Name: "Option", Kind: ast.TypeEnum,
				Variants: []ast.VariantDecl{
					{Name: "Some", Type: &ast.TEName{Name: "i64"}},
					{Name: "None"},
				},
			},
			&ast.LetFn{
				Name: "make_some",
				Body: &ast.EnumLit{
					Type: "Option", Variant: "Some",
					Payload: &ast.Lit{Kind: ast.LitI64, I64: 42},
				},
			},
		},
	}
	out := checkAndEmit(t, files, "main.el2")

	if !strings.Contains(out, "enum ") || !strings.Contains(out, "_tag {") {
		t.Fatalf("expected a tagged-union enum definition, got:\n%s", out)
	}
	if !strings.Contains(out, "Some_TAG") {
		t.Fatalf("expected a Some tag enumerator, got:\n%s", out)
	}
	if !strings.Contains(out, "union {") {
		t.Fatalf("expected a payload union, got:\n%s", out)
	}
}

// TestMutualRecursionEmitsBothFunctions exercises an SCC of two mutually
// recursive monomorphic bindings: both must be emitted, each calling the
// other by its emitted C name.
func TestMutualRecursionEmitsBothFunctions(t *testing.T) {
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
	out := checkAndEmit(t, files, "main.el2")

	if !strings.Contains(out, "Main_is_even") || !strings.Contains(out, "Main_is_odd") {
		t.Fatalf("expected both is_even and is_odd to be emitted, got:\n%s", out)
	}
}

// declLine matches a C local declaration of the form `<type> <name> = <expr>;`.
var declLine = regexp.MustCompile(`^(\t*)\S.* ([A-Za-z_][A-Za-z0-9_]*) = .*;$`)

// TestMatchArmGuardSeesItsOwnPatternBinds exercises a nested refutable
// sub-pattern (`Some(0)`), whose guard condition references the very
// local its own pattern bind introduces (the payload extracted from the
// enum). Every bind the arm declares must be in scope, and already
// declared in the emitted C, by the time its guard's `if (...)` is
// tested — not only inside that `if`'s own body.
func TestMatchArmGuardSeesItsOwnPatternBinds(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.Extern{
				Name: "==", External: "eq_i64",
				Type: &ast.TEFunction{
					Args: []ast.TypeExpr{&ast.TEName{Name: "i64"}, &ast.TEName{Name: "i64"}},
					Ret:  &ast.TEName{Name: "bool"},
				},
			},
			&ast.Extern{
				Name: "&&", External: "and_bool",
				Type: &ast.TEFunction{
					Args: []ast.TypeExpr{&ast.TEName{Name: "bool"}, &ast.TEName{Name: "bool"}},
					Ret:  &ast.TEName{Name: "bool"},
				},
			},
			&ast.LetType{
				Name: "Option", Kind: ast.TypeEnum,
				Variants: []ast.VariantDecl{
					{Name: "Some", Type: &ast.TEName{Name: "i64"}},
					{Name: "None"},
				},
			},
			&ast.LetFn{
				Name: "check", Args: []ast.Param{{Name: "opt"}},
				Body: &ast.Match{
					Scrutinee: &ast.Var{Name: "opt"},
					Arms: []ast.MatchArm{
						{
							Pattern: &ast.PEnum{
								Type: "Option", Variant: "Some",
								Sub: &ast.PLit{Lit: &ast.Lit{Kind: ast.LitI64, I64: 0}},
							},
							Body: &ast.Lit{Kind: ast.LitI64, I64: 1},
						},
						{
							Pattern: &ast.PWildcard{},
							Body:    &ast.Lit{Kind: ast.LitI64, I64: 0},
						},
					},
				},
			},
		},
	}
	out := checkAndEmit(t, files, "main.el2")

	lines := strings.Split(out, "\n")
	ifIdx := -1
	for i, l := range lines {
		if strings.Contains(l, "if (") {
			ifIdx = i
			break
		}
	}
	if ifIdx == -1 {
		t.Fatalf("expected an if-guarded match arm, got:\n%s", out)
	}
	ifIndent := len(lines[ifIdx]) - len(strings.TrimLeft(lines[ifIdx], "\t"))
	cond := lines[ifIdx]

	// Every declaration that appears only after the if, or only inside a
	// deeper block than the if itself, cannot be the one referenced by
	// the guard — find at least one bind declared at or above the if's
	// own indentation, strictly before it, whose name the guard mentions.
	found := false
	for i := 0; i < ifIdx; i++ {
		m := declLine.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		indent, name := len(m[1]), m[2]
		if indent <= ifIndent && strings.Contains(cond, name) {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected the guard's pattern bind to be declared before and at or above the if's indentation, got:\n%s", out)
	}
}

// TestExternDeclarationEmittedVerbatim exercises §6: an Extern binding
// produces a plain `extern` C declaration at its external name, never a
// mangled one.
func TestExternDeclarationEmittedVerbatim(t *testing.T) {
	files := map[string][]ast.Toplevel{
		"main.el2": {
			&ast.Extern{
				Name: "c_malloc", External: "malloc",
				Type: &ast.TEFunction{
					Args: []ast.TypeExpr{&ast.TEName{Name: "i64"}},
					Ret:  &ast.TEPointer{Inner: &ast.TEName{Name: "i64"}},
				},
			},
		},
	}
	out := checkAndEmit(t, files, "main.el2")

	if !strings.Contains(out, "extern") || !strings.Contains(out, "malloc(") {
		t.Fatalf("expected a verbatim extern declaration for malloc, got:\n%s", out)
	}
}
