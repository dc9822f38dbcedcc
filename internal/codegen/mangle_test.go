package codegen

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/evanlang2/evanlang2c/internal/types"
)

// TestBindingNameDeterministic exercises §4.6's naming rule: the bare
// unique_name when inst_map is empty, else the name suffixed with every
// quantifier's resolved monotype in sorted-by-name order, regardless of
// the map's iteration order.
func TestBindingNameDeterministic(t *testing.T) {
	instMap := map[string]types.Mono{
		"b": types.Bool,
		"a": types.I64,
	}
	got := bindingName("Main.id", instMap)
	want := "Main_id_inst_i64_bool"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bindingName mismatch (-want +got):\n%s", diff)
	}

	// Same map, reconstructed in the opposite insertion order, must still
	// produce byte-identical output.
	reordered := map[string]types.Mono{
		"a": types.I64,
		"b": types.Bool,
	}
	if got2 := bindingName("Main.id", reordered); got2 != got {
		t.Fatalf("bindingName is not insertion-order independent: %q vs %q", got, got2)
	}
}

func TestBindingNameEmptyInstMap(t *testing.T) {
	got := bindingName("Main.origin", nil)
	if diff := cmp.Diff("Main_origin", got); diff != "" {
		t.Fatalf("bindingName mismatch (-want +got):\n%s", diff)
	}
}

func TestMangleTupleAndFunction(t *testing.T) {
	tup := &types.TTuple{Elems: []types.Mono{types.I64, types.Bool}}
	if diff := cmp.Diff("tup_i64_bool", mangle(tup)); diff != "" {
		t.Fatalf("mangle(tuple) mismatch (-want +got):\n%s", diff)
	}

	fn := &types.TFunction{Arg: types.I64, Result: types.Bool}
	if diff := cmp.Diff("fn_i64_to_bool", mangle(fn)); diff != "" {
		t.Fatalf("mangle(function) mismatch (-want +got):\n%s", diff)
	}
}

func TestComposeInstMapLayersOuterOverInner(t *testing.T) {
	inner := map[string]types.Mono{"a": &types.TVar{Name: "a", Cell: types.NewCell()}}
	outer := map[string]types.Mono{"a": types.I64, "b": types.Bool}

	composed := composeInstMap(inner, outer)
	got := make(map[string]string, len(composed))
	for k, v := range composed {
		got[k] = mangle(v)
	}
	want := map[string]string{"a": "i64", "b": "bool"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("composeInstMap mismatch (-want +got):\n%s", diff)
	}
}
