package parser

import (
	"testing"

	"github.com/evanlang2/evanlang2c/internal/ast"
)

func checkParserErrors(t *testing.T, errs []error) {
	t.Helper()
	if len(errs) == 0 {
		return
	}
	for _, err := range errs {
		t.Errorf("parser error: %v", err)
	}
	t.FailNow()
}

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New("test.el2", []byte(src))
	prog, errs := p.ParseProgram()
	checkParserErrors(t, errs)
	return prog
}

func TestParseSimpleLetFn(t *testing.T) {
	prog := parseProgram(t, `let id x = x`)
	if len(prog.Toplevels) != 1 {
		t.Fatalf("expected 1 toplevel, got %d", len(prog.Toplevels))
	}
	fn, ok := prog.Toplevels[0].(*ast.LetFn)
	if !ok {
		t.Fatalf("expected *ast.LetFn, got %T", prog.Toplevels[0])
	}
	if fn.Name != "id" || len(fn.Args) != 1 || fn.Args[0].Name != "x" {
		t.Fatalf("unexpected LetFn shape: %+v", fn)
	}
	if _, ok := fn.Body.(*ast.Var); !ok {
		t.Fatalf("expected body to be a Var, got %T", fn.Body)
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	prog := parseProgram(t, `let result = 1 + 2 * 3`)
	fn := prog.Toplevels[0].(*ast.LetFn)
	apply, ok := fn.Body.(*ast.Apply)
	if !ok {
		t.Fatalf("expected top-level Apply, got %T", fn.Body)
	}
	fv := apply.Func.(*ast.Var)
	if fv.Name != "+" {
		t.Fatalf("expected top-level operator '+', got %q", fv.Name)
	}
	rhs, ok := apply.Args[1].(*ast.Apply)
	if !ok {
		t.Fatalf("expected right operand to be the '*' application, got %T", apply.Args[1])
	}
	if rhs.Func.(*ast.Var).Name != "*" {
		t.Fatalf("expected nested operator '*', got %q", rhs.Func.(*ast.Var).Name)
	}
}

func TestParseIfThenElse(t *testing.T) {
	prog := parseProgram(t, `let pick = if true then 1 else 2`)
	fn := prog.Toplevels[0].(*ast.LetFn)
	ifExpr, ok := fn.Body.(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", fn.Body)
	}
	if _, ok := ifExpr.Cond.(*ast.Lit); !ok {
		t.Fatalf("expected literal condition, got %T", ifExpr.Cond)
	}
}

func TestParseMatchWithEnumPatterns(t *testing.T) {
	src := `
type Option = Some(i64) | None

let unwrap_or = fun o d -> match o with
  | Option.Some(x) -> x
  | Option.None -> d
`
	prog := parseProgram(t, src)
	if len(prog.Toplevels) != 2 {
		t.Fatalf("expected 2 toplevels, got %d", len(prog.Toplevels))
	}
	letTy := prog.Toplevels[0].(*ast.LetType)
	if letTy.Kind != ast.TypeEnum || len(letTy.Variants) != 2 {
		t.Fatalf("unexpected LetType shape: %+v", letTy)
	}

	fn := prog.Toplevels[1].(*ast.LetFn)
	lambda, ok := fn.Body.(*ast.Lambda)
	if !ok {
		t.Fatalf("expected *ast.Lambda, got %T", fn.Body)
	}
	match, ok := lambda.Body.(*ast.Match)
	if !ok {
		t.Fatalf("expected *ast.Match, got %T", lambda.Body)
	}
	if len(match.Arms) != 2 {
		t.Fatalf("expected 2 match arms, got %d", len(match.Arms))
	}
	some, ok := match.Arms[0].Pattern.(*ast.PEnum)
	if !ok || some.Type != "Option" || some.Variant != "Some" || some.Sub == nil {
		t.Fatalf("unexpected first arm pattern: %+v", match.Arms[0].Pattern)
	}
	none, ok := match.Arms[1].Pattern.(*ast.PEnum)
	if !ok || none.Type != "Option" || none.Variant != "None" || none.Sub != nil {
		t.Fatalf("unexpected second arm pattern: %+v", match.Arms[1].Pattern)
	}
}

func TestParseStructLiteralAndFieldAccess(t *testing.T) {
	prog := parseProgram(t, `let origin = Point { x: 0, y: 0 }.x`)
	fn := prog.Toplevels[0].(*ast.LetFn)
	access, ok := fn.Body.(*ast.FieldAccess)
	if !ok {
		t.Fatalf("expected *ast.FieldAccess, got %T", fn.Body)
	}
	if access.Field != "x" {
		t.Fatalf("expected field access on 'x', got %q", access.Field)
	}
	lit, ok := access.Recv.(*ast.StructLit)
	if !ok {
		t.Fatalf("expected struct literal receiver, got %T", access.Recv)
	}
	if lit.Type != "Point" || len(lit.Fields) != 2 {
		t.Fatalf("unexpected struct literal shape: %+v", lit)
	}
}

func TestParseExternDeclaration(t *testing.T) {
	prog := parseProgram(t, `extern c_malloc : (i64) -> &i64 = "malloc"`)
	ext, ok := prog.Toplevels[0].(*ast.Extern)
	if !ok {
		t.Fatalf("expected *ast.Extern, got %T", prog.Toplevels[0])
	}
	if ext.Name != "c_malloc" || ext.External != "malloc" {
		t.Fatalf("unexpected Extern shape: %+v", ext)
	}
	fnTy, ok := ext.Type.(*ast.TEFunction)
	if !ok || len(fnTy.Args) != 1 {
		t.Fatalf("expected a one-argument function type, got %+v", ext.Type)
	}
	if _, ok := fnTy.Ret.(*ast.TEPointer); !ok {
		t.Fatalf("expected pointer return type, got %T", fnTy.Ret)
	}
}

func TestParseLoopBreakAndAssign(t *testing.T) {
	src := `
let spin = fun p ->
  loop (
    *p <- 1;
    break 0
  )
`
	prog := parseProgram(t, src)
	fn := prog.Toplevels[0].(*ast.LetFn)
	lambda := fn.Body.(*ast.Lambda)
	loopExpr, ok := lambda.Body.(*ast.Loop)
	if !ok {
		t.Fatalf("expected *ast.Loop, got %T", lambda.Body)
	}
	seq, ok := loopExpr.Body.(*ast.Seq)
	if !ok {
		t.Fatalf("expected *ast.Seq inside loop body, got %T", loopExpr.Body)
	}
	if len(seq.Exprs) != 2 {
		t.Fatalf("expected 2 sequenced expressions, got %d", len(seq.Exprs))
	}
	assign, ok := seq.Exprs[0].(*ast.Assign)
	if !ok {
		t.Fatalf("expected *ast.Assign, got %T", seq.Exprs[0])
	}
	if _, ok := assign.Target.(*ast.Deref); !ok {
		t.Fatalf("expected assignment target to be a Deref, got %T", assign.Target)
	}
	if _, ok := seq.Exprs[1].(*ast.Break); !ok {
		t.Fatalf("expected second statement to be a Break, got %T", seq.Exprs[1])
	}
}
