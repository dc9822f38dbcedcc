// Package expand implements the pattern desugarer: it rewrites
// nested surface patterns into a sequence of single-variable let-bindings
// plus boolean guard expressions over primitive projections, producing the
// "expanded expression" form that the inference engine consumes.
package expand

import "github.com/evanlang2/evanlang2c/internal/ast"

// Expr is an expanded expression node. Unlike the surface ast.Expr, every
// Let here binds exactly one variable, and Match arms carry an explicit
// boolean guard plus a flat list of bindings instead of a pattern.
type Expr interface {
	exprNode()
	Position() ast.Pos
}

// Lit mirrors ast.Lit; expansion does not alter literals.
type Lit struct {
	Pos  ast.Pos
	Kind ast.LitKind
	I64  int64
	F64  float64
	Bool bool
	Char rune
	Str  string
}

// Var is a (possibly qualified) variable reference.
type Var struct {
	Pos  ast.Pos
	Path []string
	Name string
}

// Tuple constructs a tuple value.
type Tuple struct {
	Pos   ast.Pos
	Elems []Expr
}

// Apply is function application.
type Apply struct {
	Pos  ast.Pos
	Func Expr
	Args []Expr
}

// Lambda is an anonymous function literal; Params are already plain names
// since lambda parameters are not patterns in evanlang2.
type Lambda struct {
	Pos    ast.Pos
	Params []string
	Body   Expr
}

// Let binds exactly one name — the sole form patterns desugar into.
type Let struct {
	Pos   ast.Pos
	Name  string
	Value Expr
	Body  Expr
}

// If is a conditional expression.
type If struct {
	Pos  ast.Pos
	Cond Expr
	Then Expr
	Else Expr
}

// MatchArm is one compiled arm: Cond is nil for an irrefutable arm (always
// matches), otherwise a boolean expression combining Check_variant and
// equality tests with short-circuiting And. Binds introduces, in order,
// every name the original pattern bound.
type MatchArm struct {
	Cond  Expr // nil means unconditional
	Binds []Bind
	Body  Expr
}

// Bind is one single-variable binding produced while compiling a pattern.
type Bind struct {
	Name  string
	Value Expr
}

// Match is retained (not flattened to nested If) so that typed rebuilding
// still sees match structure; the emitter lowers it to an if/else chain
// whose final fallback is Assert(false).
type Match struct {
	Pos       ast.Pos
	Scrutinee Expr
	Arms      []MatchArm
}

// Assign is pointer mutation, `target <- value`.
type Assign struct {
	Pos    ast.Pos
	Target Expr
	Value  Expr
}

// FieldInit is one field of a struct literal.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructLit constructs a named struct value.
type StructLit struct {
	Pos    ast.Pos
	Type   string
	Fields []FieldInit
}

// FieldAccess projects a struct field, `field_access`.
type FieldAccess struct {
	Pos   ast.Pos
	Recv  Expr
	Field string
}

// TupleAccess projects a tuple component, `tuple_access`.
type TupleAccess struct {
	Pos   ast.Pos
	Recv  Expr
	Index int
}

// EnumLit constructs an enum value.
type EnumLit struct {
	Pos     ast.Pos
	Type    string
	Variant string
	Payload Expr // nil for payload-less variants
}

// Ref takes a pointer to a value.
type Ref struct {
	Pos  ast.Pos
	Expr Expr
}

// Deref dereferences a pointer.
type Deref struct {
	Pos  ast.Pos
	Expr Expr
}

// SizeOf computes sizeof(T).
type SizeOf struct {
	Pos  ast.Pos
	Type ast.TypeExpr
}

// Loop runs Body forever until a Break inside it fires.
type Loop struct {
	Pos  ast.Pos
	Body Expr
}

// Break exits the nearest enclosing Loop with Value.
type Break struct {
	Pos   ast.Pos
	Value Expr
}

// Return exits the nearest enclosing function with Value.
type Return struct {
	Pos   ast.Pos
	Value Expr
}

// Seq sequences expressions, discarding every value but the last.
type Seq struct {
	Pos   ast.Pos
	Exprs []Expr
}

// TypeAssert ascribes a surface type, asserted by unification (the
// `Typed(p, T)` and `Typed(expr, T)` rule).
type TypeAssert struct {
	Pos  ast.Pos
	Expr Expr
	Type ast.TypeExpr
}

// AssertStruct is a desugaring-only helper asserting the matched value has
// the named struct type, used by struct-pattern compilation.
type AssertStruct struct {
	Pos  ast.Pos
	Type string
	Expr Expr
}

// AccessEnumField is a desugaring-only helper projecting a (known-present)
// enum payload, used by `Enum(name, Some p)` pattern compilation.
type AccessEnumField struct {
	Pos     ast.Pos
	Variant string
	Expr    Expr
}

// CheckVariant is a boolean primitive testing whether Expr currently holds
// the named enum variant; match-arm guards compile to chains of these.
type CheckVariant struct {
	Pos     ast.Pos
	Variant string
	Expr    Expr
}

// AssertEmptyEnumField is a desugaring-only helper asserting a
// payload-less enum variant was matched, used by `Enum(name, None)`
// pattern compilation.
type AssertEmptyEnumField struct {
	Pos     ast.Pos
	Variant string
	Expr    Expr
}

func (*Lit) exprNode()                  {}
func (*Var) exprNode()                  {}
func (*Tuple) exprNode()                {}
func (*Apply) exprNode()                {}
func (*Lambda) exprNode()               {}
func (*Let) exprNode()                  {}
func (*If) exprNode()                   {}
func (*Match) exprNode()                {}
func (*Assign) exprNode()               {}
func (*StructLit) exprNode()            {}
func (*FieldAccess) exprNode()          {}
func (*TupleAccess) exprNode()          {}
func (*EnumLit) exprNode()              {}
func (*CheckVariant) exprNode()         {}
func (*Ref) exprNode()                  {}
func (*Deref) exprNode()                {}
func (*SizeOf) exprNode()               {}
func (*Loop) exprNode()                 {}
func (*Break) exprNode()                {}
func (*Return) exprNode()               {}
func (*Seq) exprNode()                  {}
func (*TypeAssert) exprNode()           {}
func (*AssertStruct) exprNode()         {}
func (*AccessEnumField) exprNode()      {}
func (*AssertEmptyEnumField) exprNode() {}

func (n *Lit) Position() ast.Pos                  { return n.Pos }
func (n *Var) Position() ast.Pos                  { return n.Pos }
func (n *Tuple) Position() ast.Pos                { return n.Pos }
func (n *Apply) Position() ast.Pos                { return n.Pos }
func (n *Lambda) Position() ast.Pos               { return n.Pos }
func (n *Let) Position() ast.Pos                  { return n.Pos }
func (n *If) Position() ast.Pos                   { return n.Pos }
func (n *Match) Position() ast.Pos                { return n.Pos }
func (n *Assign) Position() ast.Pos               { return n.Pos }
func (n *StructLit) Position() ast.Pos            { return n.Pos }
func (n *FieldAccess) Position() ast.Pos          { return n.Pos }
func (n *TupleAccess) Position() ast.Pos          { return n.Pos }
func (n *EnumLit) Position() ast.Pos              { return n.Pos }
func (n *CheckVariant) Position() ast.Pos         { return n.Pos }
func (n *Ref) Position() ast.Pos                  { return n.Pos }
func (n *Deref) Position() ast.Pos                { return n.Pos }
func (n *SizeOf) Position() ast.Pos               { return n.Pos }
func (n *Loop) Position() ast.Pos                 { return n.Pos }
func (n *Break) Position() ast.Pos                { return n.Pos }
func (n *Return) Position() ast.Pos               { return n.Pos }
func (n *Seq) Position() ast.Pos                  { return n.Pos }
func (n *TypeAssert) Position() ast.Pos           { return n.Pos }
func (n *AssertStruct) Position() ast.Pos         { return n.Pos }
func (n *AccessEnumField) Position() ast.Pos      { return n.Pos }
func (n *AssertEmptyEnumField) Position() ast.Pos { return n.Pos }
