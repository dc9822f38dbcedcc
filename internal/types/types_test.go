package types

import "testing"

func TestInnerMonoPathCompression(t *testing.T) {
	a := NewIndir()
	b := NewIndir()
	c := NewIndir()

	a.Cell.Bind(b)
	b.Cell.Bind(c)
	c.Cell.Bind(I64)

	if InnerMono(a) != I64 {
		t.Fatalf("expected chain to resolve to I64")
	}
	// Path compression: a and b should now point directly at I64.
	if a.Cell.Mono != I64 {
		t.Fatalf("expected a's cell rewritten to I64 directly, got %v", a.Cell.Mono)
	}
	if b.Cell.Mono != I64 {
		t.Fatalf("expected b's cell rewritten to I64 directly, got %v", b.Cell.Mono)
	}
}

func TestInnerMonoUnboundIsIdempotent(t *testing.T) {
	v := NewIndir()
	if InnerMono(v) != v {
		t.Fatalf("expected unbound indir to resolve to itself")
	}
}

func TestSubstituteLeavesIndirUntouched(t *testing.T) {
	v := NewIndir()
	sub := map[string]Mono{"a": I64}
	if Substitute(v, sub) != v {
		t.Fatalf("Substitute must not touch TIndir")
	}
}

func TestSubstituteReplacesVar(t *testing.T) {
	v := &TVar{Name: "a", Cell: NewCell()}
	sub := map[string]Mono{"a": Bool}
	r := Substitute(v, sub)
	if r != Bool {
		t.Fatalf("expected substitution to replace var, got %v", r)
	}
}
