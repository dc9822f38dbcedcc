// Package errdefs provides centralized error code definitions for
// evanlang2c.
package errdefs

// Error code constants, grouped by phase. Every fatal error raised by the
// compiler carries one of these codes so tooling can key off them without
// parsing message text.
const (
	// Unification errors
	UNI001 = "UNI001" // base type conflict
	UNI002 = "UNI002" // shape conflict: tuple/pointer/function arity
	UNI003 = "UNI003" // user type repr mismatch, not aliasable

	// Module errors
	MOD001 = "MOD001" // module file not found
	MOD002 = "MOD002" // import cycle
	MOD003 = "MOD003" // module filename does not match [a-z][a-z0-9_]*.el2

	// Name errors
	NAM001 = "NAM001" // unknown variable
	NAM002 = "NAM002" // unknown type / field / variant / module

	// Duplicate errors
	DUP001 = "DUP001" // duplicate top-level binding
	DUP002 = "DUP002" // duplicate type/field/variant declaration
	DUP003 = "DUP003" // duplicate unique_name at emission

	// Pattern errors
	PAT001 = "PAT001" // refutable pattern in irrefutable position
	PAT002 = "PAT002" // wrong field name/arity in struct or enum pattern
	PAT003 = "PAT003" // tuple-access index out of bounds

	// Arity errors
	ARI001 = "ARI001" // type constructor wrong argument count
)

// Info describes one error code for diagnostic registries and tests.
type Info struct {
	Code        string
	Phase       string
	Description string
}

// Registry maps every code above to its descriptive metadata.
var Registry = map[string]Info{
	UNI001: {UNI001, "unify", "base type conflict"},
	UNI002: {UNI002, "unify", "shape conflict (tuple/pointer/function)"},
	UNI003: {UNI003, "unify", "user type conflict"},
	MOD001: {MOD001, "module", "module file not found"},
	MOD002: {MOD002, "module", "import cycle"},
	MOD003: {MOD003, "module", "invalid module filename"},
	NAM001: {NAM001, "name", "unknown variable"},
	NAM002: {NAM002, "name", "unknown type/field/variant/module"},
	DUP001: {DUP001, "duplicate", "duplicate top-level binding"},
	DUP002: {DUP002, "duplicate", "duplicate type/field/variant"},
	DUP003: {DUP003, "duplicate", "duplicate unique_name"},
	PAT001: {PAT001, "pattern", "refutable pattern in let"},
	PAT002: {PAT002, "pattern", "wrong field name/arity"},
	PAT003: {PAT003, "pattern", "tuple index out of bounds"},
	ARI001: {ARI001, "arity", "wrong type constructor arity"},
}

// Lookup returns the registered metadata for a code, if any.
func Lookup(code string) (Info, bool) {
	info, ok := Registry[code]
	return info, ok
}
