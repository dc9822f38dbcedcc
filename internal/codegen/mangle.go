package codegen

import (
	"sort"
	"strings"

	"github.com/evanlang2/evanlang2c/internal/types"
)

// cSanitize replaces every byte a C identifier cannot contain with an
// underscore. unique_name is module-qualified with dots (`Main.id`);
// external names are assumed already C-safe.
func cSanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// mangle renders a ground monotype as a C-identifier-safe fragment, used
// both for monomorphized binding names and for on-demand type names. The
// Var/Indir cases below are only reached for a genuinely unbound
// variable, meaning the caller asked for a name before monomorphization
// fully resolved it; that should never happen on a well-typed program,
// so the fallback is a stable placeholder rather than a panic.
func mangle(m types.Mono) string {
	switch t := types.InnerMono(m).(type) {
	case *types.TBase:
		return t.Kind.String()
	case *types.TPointer:
		return "ptr_" + mangle(t.Elem)
	case *types.TTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = mangle(e)
		}
		return "tup_" + strings.Join(parts, "_")
	case *types.TFunction:
		return "fn_" + mangle(t.Arg) + "_to_" + mangle(t.Result)
	case *types.TOpaque:
		return "opq_" + mangle(t.Elem)
	case *types.TUser:
		return mangleUser(t.Inst)
	case *types.TVar:
		return "var_" + cSanitize(t.Name)
	case *types.TIndir:
		return "ind_unresolved"
	default:
		return "unknown"
	}
}

func mangleUser(inst *types.InstUser) string {
	if len(inst.Args) == 0 {
		return inst.Def.ReprName
	}
	parts := make([]string, len(inst.Args))
	for i, a := range inst.Args {
		parts[i] = mangle(a)
	}
	return inst.Def.ReprName + "_" + strings.Join(parts, "_")
}

// instMapKey renders an inst_map into a deterministic cache key, sorting
// by quantifier name so two equivalent substitutions always agree on one
// key regardless of map iteration order.
func instMapKey(instMap map[string]types.Mono) string {
	if len(instMap) == 0 {
		return ""
	}
	names := make([]string, 0, len(instMap))
	for n := range instMap {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + "=" + mangle(instMap[n])
	}
	return strings.Join(parts, ",")
}

// bindingName computes the deterministic C identifier for (unique_name,
// inst_map): the bare sanitized unique_name when inst_map is empty, else
// suffixed with every quantifier's resolved monotype in sorted order.
func bindingName(uniqueName string, instMap map[string]types.Mono) string {
	base := cSanitize(uniqueName)
	if len(instMap) == 0 {
		return base
	}
	names := make([]string, 0, len(instMap))
	for n := range instMap {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = mangle(instMap[n])
	}
	return base + "_inst_" + strings.Join(parts, "_")
}
