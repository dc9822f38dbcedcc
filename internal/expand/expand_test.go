package expand

import (
	"testing"

	"github.com/evanlang2/evanlang2c/internal/ast"
)

func TestExpandLetVarPattern(t *testing.T) {
	d := New()
	n := &ast.LetExpr{
		Pattern: &ast.PVar{Name: "x"},
		Value:   &ast.Lit{Kind: ast.LitI64, I64: 1},
		Body:    &ast.Var{Name: "x"},
	}
	e, err := d.Expand(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	let, ok := e.(*Let)
	if !ok {
		t.Fatalf("expected *Let, got %T", e)
	}
	if let.Name != "x" {
		t.Fatalf("expected binding name x, got %s", let.Name)
	}
}

func TestExpandLetTuplePattern(t *testing.T) {
	d := New()
	n := &ast.LetExpr{
		Pattern: &ast.PTuple{Elems: []ast.Pattern{&ast.PVar{Name: "a"}, &ast.PVar{Name: "b"}}},
		Value:   &ast.TupleExpr{Elems: []ast.Expr{&ast.Var{Name: "p"}, &ast.Var{Name: "q"}}},
		Body:    &ast.Var{Name: "a"},
	}
	e, err := d.Expand(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outer, ok := e.(*Let)
	if !ok {
		t.Fatalf("expected outer *Let, got %T", e)
	}
	if _, ok := outer.Value.(*Tuple); !ok {
		t.Fatalf("expected tuple value bound first, got %T", outer.Value)
	}
	inner1, ok := outer.Body.(*Let)
	if !ok {
		t.Fatalf("expected nested let for element a, got %T", outer.Body)
	}
	if inner1.Name != "a" {
		t.Fatalf("expected first nested bind to be a, got %s", inner1.Name)
	}
	if _, ok := inner1.Value.(*TupleAccess); !ok {
		t.Fatalf("expected tuple_access as value, got %T", inner1.Value)
	}
	inner2, ok := inner1.Body.(*Let)
	if !ok {
		t.Fatalf("expected nested let for element b, got %T", inner1.Body)
	}
	if inner2.Name != "b" {
		t.Fatalf("expected second nested bind to be b, got %s", inner2.Name)
	}
}

func TestExpandLetRejectsLiteralPattern(t *testing.T) {
	d := New()
	n := &ast.LetExpr{
		Pattern: &ast.PLit{Lit: &ast.Lit{Kind: ast.LitI64, I64: 0}},
		Value:   &ast.Lit{Kind: ast.LitI64, I64: 1},
		Body:    &ast.Lit{Kind: ast.LitI64, I64: 2},
	}
	if _, err := d.Expand(n); err == nil {
		t.Fatalf("expected error rejecting refutable literal pattern in let position")
	}
}

func TestExpandMatchLiteralArmProducesGuard(t *testing.T) {
	d := New()
	n := &ast.Match{
		Scrutinee: &ast.Var{Name: "x"},
		Arms: []ast.MatchArm{
			{Pattern: &ast.PLit{Lit: &ast.Lit{Kind: ast.LitI64, I64: 0}}, Body: &ast.Lit{Kind: ast.LitBool, Bool: true}},
			{Pattern: &ast.PWildcard{}, Body: &ast.Lit{Kind: ast.LitBool, Bool: false}},
		},
	}
	e, err := d.Expand(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outer, ok := e.(*Let)
	if !ok {
		t.Fatalf("expected outer scrutinee let, got %T", e)
	}
	match, ok := outer.Body.(*Match)
	if !ok {
		t.Fatalf("expected *Match, got %T", outer.Body)
	}
	if len(match.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(match.Arms))
	}
	if match.Arms[0].Cond == nil {
		t.Fatalf("expected literal arm to carry a guard")
	}
	if _, ok := match.Arms[0].Cond.(*Apply); !ok {
		t.Fatalf("expected guard to be an == application, got %T", match.Arms[0].Cond)
	}
	if match.Arms[1].Cond != nil {
		t.Fatalf("expected wildcard arm to be unconditional, got %v", match.Arms[1].Cond)
	}
}

func TestExpandMatchEnumArmBindsPayload(t *testing.T) {
	d := New()
	n := &ast.Match{
		Scrutinee: &ast.Var{Name: "opt"},
		Arms: []ast.MatchArm{
			{
				Pattern: &ast.PEnum{Variant: "Some", Sub: &ast.PVar{Name: "v"}},
				Body:    &ast.Var{Name: "v"},
			},
			{Pattern: &ast.PEnum{Variant: "None"}, Body: &ast.Lit{Kind: ast.LitI64, I64: 0}},
		},
	}
	e, err := d.Expand(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outer := e.(*Let)
	match := outer.Body.(*Match)

	someArm := match.Arms[0]
	if _, ok := someArm.Cond.(*CheckVariant); !ok {
		t.Fatalf("expected Some arm guard to be CheckVariant, got %T", someArm.Cond)
	}
	if len(someArm.Binds) != 2 {
		t.Fatalf("expected two binds for payload (fresh AccessEnumField, then v), got %d", len(someArm.Binds))
	}
	if _, ok := someArm.Binds[0].Value.(*AccessEnumField); !ok {
		t.Fatalf("expected payload bind value to be AccessEnumField, got %T", someArm.Binds[0].Value)
	}

	noneArm := match.Arms[1]
	if _, ok := noneArm.Cond.(*CheckVariant); !ok {
		t.Fatalf("expected None arm guard to be CheckVariant, got %T", noneArm.Cond)
	}
	if len(noneArm.Binds) != 0 {
		t.Fatalf("expected no binds for payload-less variant, got %d", len(noneArm.Binds))
	}
}

func TestExpandMatchGuardCombinesWithPatternCond(t *testing.T) {
	d := New()
	n := &ast.Match{
		Scrutinee: &ast.Var{Name: "x"},
		Arms: []ast.MatchArm{
			{
				Pattern: &ast.PEnum{Variant: "Some", Sub: &ast.PVar{Name: "v"}},
				Guard:   &ast.Var{Name: "cond"},
				Body:    &ast.Var{Name: "v"},
			},
		},
	}
	e, err := d.Expand(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	match := e.(*Let).Body.(*Match)
	apply, ok := match.Arms[0].Cond.(*Apply)
	if !ok {
		t.Fatalf("expected combined guard to be an && application, got %T", match.Arms[0].Cond)
	}
	fv, ok := apply.Func.(*Var)
	if !ok || fv.Name != "&&" {
		t.Fatalf("expected combinator to be &&, got %v", apply.Func)
	}
}
