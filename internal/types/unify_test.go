package types

import "testing"

func TestUnifyBaseTypes(t *testing.T) {
	r, err := Unify(I64, I64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != I64 {
		t.Fatalf("expected I64, got %v", r)
	}

	if _, err := Unify(I64, Bool); err == nil {
		t.Fatalf("expected conflict between i64 and bool")
	}
}

func TestUnifyBindsIndir(t *testing.T) {
	v := NewIndir()
	r, err := Unify(v, I64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != I64 {
		t.Fatalf("expected I64, got %v", r)
	}
	if InnerMono(v) != I64 {
		t.Fatalf("expected v to resolve to I64, got %v", InnerMono(v))
	}
}

func TestUnifyIdempotent(t *testing.T) {
	a := &TTuple{Elems: []Mono{I64, Bool}}
	r1, err := Unify(a, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := Unify(r1, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.String() != r2.String() {
		t.Fatalf("unify not idempotent: %v vs %v", r1, r2)
	}
}

func TestUnifyPointerMismatchNestedConflict(t *testing.T) {
	a := &TPointer{Elem: Char}
	b := &TPointer{Elem: I64}
	_, err := Unify(a, b)
	if err == nil {
		t.Fatalf("expected a unification error")
	}
	ue, ok := err.(*UnifyError)
	if !ok {
		t.Fatalf("expected *UnifyError, got %T", err)
	}
	inner := ue
	for inner.Cause != nil {
		inner = inner.Cause
	}
	if inner.A != Char || inner.B != I64 {
		t.Fatalf("expected innermost conflict char vs i64, got %v vs %v", inner.A, inner.B)
	}
}

func TestUnifyTupleArityMismatch(t *testing.T) {
	a := &TTuple{Elems: []Mono{I64, I64}}
	b := &TTuple{Elems: []Mono{I64}}
	if _, err := Unify(a, b); err == nil {
		t.Fatalf("expected arity mismatch error")
	}
}

func TestUnifyFunctionPointwise(t *testing.T) {
	v1, v2 := NewIndir(), NewIndir()
	f1 := &TFunction{Arg: v1, Result: Bool}
	f2 := &TFunction{Arg: I64, Result: v2}
	r, err := Unify(f1, f2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tf := r.(*TFunction)
	if InnerMono(tf.Arg) != I64 {
		t.Fatalf("expected arg i64, got %v", tf.Arg)
	}
	if InnerMono(tf.Result) != Bool {
		t.Fatalf("expected result bool, got %v", tf.Result)
	}
}

func TestUnifyUserAliasExpansion(t *testing.T) {
	// type cstring := &char
	def := NewUserType("cstring", "cstring", nil)
	def.Info.SetAlias(&TPointer{Elem: Char})
	aliasTy := &TUser{Inst: &InstUser{Def: def}}

	r, err := Unify(aliasTy, &TPointer{Elem: Char})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.(*TPointer); !ok {
		t.Fatalf("expected alias to expand to pointer, got %v", r)
	}
}

func TestUnifyOpaqueOnlyMatchesIdentical(t *testing.T) {
	a := &TOpaque{Elem: I64}
	b := &TOpaque{Elem: I64}
	if _, err := Unify(a, b); err != nil {
		t.Fatalf("expected identical opaque types to unify: %v", err)
	}
	c := &TOpaque{Elem: Bool}
	if _, err := Unify(a, c); err == nil {
		t.Fatalf("expected distinct opaque types to fail")
	}
}
