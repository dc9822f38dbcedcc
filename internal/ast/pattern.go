package ast

// Pattern is a surface pattern, as matched in `let`, function parameters,
// or `match` arms. Desugaring rewrites every form below into a stack of
// single-variable let-bindings plus projections.
type Pattern interface {
	patternNode()
	Position() Pos
}

// PVar binds the whole matched value to a name.
type PVar struct {
	Pos  Pos
	Name string
}

// PWildcard discards the matched value.
type PWildcard struct {
	Pos Pos
}

// PUnit asserts the matched value has type unit.
type PUnit struct {
	Pos Pos
}

// PLit matches a literal value; refutable everywhere, rejected at the top
// of a `let`.
type PLit struct {
	Pos Pos
	Lit *Lit
}

// PTuple destructures a tuple positionally.
type PTuple struct {
	Pos   Pos
	Elems []Pattern
}

// PRef destructures through a pointer, `&p`.
type PRef struct {
	Pos     Pos
	Pattern Pattern
}

// FieldPattern is one field of a struct pattern; Sub is nil when the field
// is matched by a pattern variable of the same name (`{ x }` shorthand).
type FieldPattern struct {
	Name string
	Sub  Pattern
}

// PStruct destructures a named struct by field.
type PStruct struct {
	Pos    Pos
	Type   string
	Fields []FieldPattern
}

// PTyped ascribes a type to a sub-pattern.
type PTyped struct {
	Pos     Pos
	Pattern Pattern
	Type    TypeExpr
}

// PEnum matches an enum variant, destructuring its payload if Sub is set.
type PEnum struct {
	Pos     Pos
	Type    string
	Variant string
	Sub     Pattern // nil for a payload-less variant
}

func (*PVar) patternNode()      {}
func (*PWildcard) patternNode() {}
func (*PUnit) patternNode()     {}
func (*PLit) patternNode()      {}
func (*PTuple) patternNode()    {}
func (*PRef) patternNode()      {}
func (*PStruct) patternNode()   {}
func (*PTyped) patternNode()    {}
func (*PEnum) patternNode()     {}

func (n *PVar) Position() Pos      { return n.Pos }
func (n *PWildcard) Position() Pos { return n.Pos }
func (n *PUnit) Position() Pos     { return n.Pos }
func (n *PLit) Position() Pos      { return n.Pos }
func (n *PTuple) Position() Pos    { return n.Pos }
func (n *PRef) Position() Pos      { return n.Pos }
func (n *PStruct) Position() Pos   { return n.Pos }
func (n *PTyped) Position() Pos    { return n.Pos }
func (n *PEnum) Position() Pos     { return n.Pos }
