// Package typedast is the output of inference: every node of the expanded
// IR annotated with its resolved monotype, plus the forms inference
// introduces directly (Enum, Check_variant, Glob_var, Local_var).
package typedast

import (
	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/types"
)

// Expr is a typed expression node; every node carries the monotype
// inference resolved it to, accessed through Type().
type Expr interface {
	exprNode()
	Position() ast.Pos
	Type() types.Mono
}

// Lit is a typed literal.
type Lit struct {
	Pos  ast.Pos
	Ty   types.Mono
	Kind ast.LitKind
	I64  int64
	F64  float64
	Bool bool
	Char rune
	Str  string
}

// LocalVar is a reference to a lambda parameter or let-bound local name;
// locals are never generalized so carry no instantiation map.
type LocalVar struct {
	Pos  ast.Pos
	Ty   types.Mono
	Name string
}

// GlobVar is a reference to a top-level binding. InstMap maps each of the
// binding's quantified names to the monotype solved for this use site; it
// is nil when the binding is monomorphic or the reference uses it at its
// declared (unweakened) type directly.
type GlobVar struct {
	Pos     ast.Pos
	Ty      types.Mono
	Name    string
	InstMap map[string]types.Mono
}

// Tuple is a typed tuple construction.
type Tuple struct {
	Pos   ast.Pos
	Ty    types.Mono
	Elems []Expr
}

// Apply is typed function application.
type Apply struct {
	Pos  ast.Pos
	Ty   types.Mono
	Func Expr
	Args []Expr
}

// Lambda is a typed anonymous function; ParamTypes is positional with
// Params.
type Lambda struct {
	Pos        ast.Pos
	Ty         types.Mono
	Params     []string
	ParamTypes []types.Mono
	Body       Expr
}

// Let is a typed single-variable binding; local lets are never
// generalized, so Name's type is simply Value.Type().
type Let struct {
	Pos   ast.Pos
	Ty    types.Mono
	Name  string
	Value Expr
	Body  Expr
}

// If is a typed conditional.
type If struct {
	Pos  ast.Pos
	Ty   types.Mono
	Cond Expr
	Then Expr
	Else Expr
}

// MatchArm is one typed match arm.
type MatchArm struct {
	Cond  Expr // nil for an unconditional arm
	Binds []struct {
		Name  string
		Value Expr
	}
	Body Expr
}

// Match is retained rather than flattened so the emitter can lower its
// arms to an if/else chain with a trapping default.
type Match struct {
	Pos       ast.Pos
	Ty        types.Mono
	Scrutinee Expr
	Arms      []MatchArm
}

// Assign is typed pointer mutation.
type Assign struct {
	Pos    ast.Pos
	Ty     types.Mono
	Target Expr
	Value  Expr
}

// FieldInit is one field of a typed struct literal.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructLit constructs a typed struct value, fields in declared sorted
// order.
type StructLit struct {
	Pos      ast.Pos
	Ty       types.Mono
	TypeName string
	Fields   []FieldInit
}

// FieldAccess projects a struct field.
type FieldAccess struct {
	Pos   ast.Pos
	Ty    types.Mono
	Recv  Expr
	Field string
}

// TupleAccess projects a tuple component.
type TupleAccess struct {
	Pos   ast.Pos
	Ty    types.Mono
	Recv  Expr
	Index int
}

// Enum constructs an enum value.
type Enum struct {
	Pos      ast.Pos
	Ty       types.Mono
	TypeName string
	Variant  string
	Payload  Expr // nil for a payload-less variant
}

// CheckVariant tests whether Expr currently holds Variant; always Bool.
type CheckVariant struct {
	Pos     ast.Pos
	Variant string
	Expr    Expr
}

// Ref takes a typed pointer.
type Ref struct {
	Pos  ast.Pos
	Ty   types.Mono
	Expr Expr
}

// Deref dereferences a typed pointer.
type Deref struct {
	Pos  ast.Pos
	Ty   types.Mono
	Expr Expr
}

// SizeOf computes sizeof(T); always CInt.
type SizeOf struct {
	Pos ast.Pos
	Ty  types.Mono
	Of  types.Mono
}

// Loop runs Body, typed at its enclosing Break values.
type Loop struct {
	Pos  ast.Pos
	Ty   types.Mono
	Body Expr
}

// Break exits the nearest enclosing Loop; always Unit at the break site,
// the Loop's own Ty carries Value's type.
type Break struct {
	Pos   ast.Pos
	Ty    types.Mono
	Value Expr
}

// Return exits the enclosing function with Value.
type Return struct {
	Pos   ast.Pos
	Ty    types.Mono
	Value Expr
}

// Seq sequences expressions; Ty is the last expression's type (Unit if
// empty).
type Seq struct {
	Pos   ast.Pos
	Ty    types.Mono
	Exprs []Expr
}

func (*Lit) exprNode()          {}
func (*LocalVar) exprNode()     {}
func (*GlobVar) exprNode()      {}
func (*Tuple) exprNode()        {}
func (*Apply) exprNode()        {}
func (*Lambda) exprNode()       {}
func (*Let) exprNode()          {}
func (*If) exprNode()           {}
func (*Match) exprNode()        {}
func (*Assign) exprNode()       {}
func (*StructLit) exprNode()    {}
func (*FieldAccess) exprNode()  {}
func (*TupleAccess) exprNode()  {}
func (*Enum) exprNode()         {}
func (*CheckVariant) exprNode() {}
func (*Ref) exprNode()          {}
func (*Deref) exprNode()        {}
func (*SizeOf) exprNode()       {}
func (*Loop) exprNode()         {}
func (*Break) exprNode()        {}
func (*Return) exprNode()       {}
func (*Seq) exprNode()          {}

func (n *Lit) Position() ast.Pos          { return n.Pos }
func (n *LocalVar) Position() ast.Pos     { return n.Pos }
func (n *GlobVar) Position() ast.Pos      { return n.Pos }
func (n *Tuple) Position() ast.Pos        { return n.Pos }
func (n *Apply) Position() ast.Pos        { return n.Pos }
func (n *Lambda) Position() ast.Pos       { return n.Pos }
func (n *Let) Position() ast.Pos          { return n.Pos }
func (n *If) Position() ast.Pos           { return n.Pos }
func (n *Match) Position() ast.Pos        { return n.Pos }
func (n *Assign) Position() ast.Pos       { return n.Pos }
func (n *StructLit) Position() ast.Pos    { return n.Pos }
func (n *FieldAccess) Position() ast.Pos  { return n.Pos }
func (n *TupleAccess) Position() ast.Pos  { return n.Pos }
func (n *Enum) Position() ast.Pos         { return n.Pos }
func (n *CheckVariant) Position() ast.Pos { return n.Pos }
func (n *Ref) Position() ast.Pos          { return n.Pos }
func (n *Deref) Position() ast.Pos        { return n.Pos }
func (n *SizeOf) Position() ast.Pos       { return n.Pos }
func (n *Loop) Position() ast.Pos         { return n.Pos }
func (n *Break) Position() ast.Pos        { return n.Pos }
func (n *Return) Position() ast.Pos       { return n.Pos }
func (n *Seq) Position() ast.Pos          { return n.Pos }

func (n *Lit) Type() types.Mono          { return n.Ty }
func (n *LocalVar) Type() types.Mono     { return n.Ty }
func (n *GlobVar) Type() types.Mono      { return n.Ty }
func (n *Tuple) Type() types.Mono        { return n.Ty }
func (n *Apply) Type() types.Mono        { return n.Ty }
func (n *Lambda) Type() types.Mono       { return n.Ty }
func (n *Let) Type() types.Mono          { return n.Ty }
func (n *If) Type() types.Mono           { return n.Ty }
func (n *Match) Type() types.Mono        { return n.Ty }
func (n *Assign) Type() types.Mono       { return n.Ty }
func (n *StructLit) Type() types.Mono    { return n.Ty }
func (n *FieldAccess) Type() types.Mono  { return n.Ty }
func (n *TupleAccess) Type() types.Mono  { return n.Ty }
func (n *Enum) Type() types.Mono         { return n.Ty }
func (n *CheckVariant) Type() types.Mono { return types.Bool }
func (n *Ref) Type() types.Mono          { return n.Ty }
func (n *Deref) Type() types.Mono        { return n.Ty }
func (n *SizeOf) Type() types.Mono       { return n.Ty }
func (n *Loop) Type() types.Mono         { return n.Ty }
func (n *Break) Type() types.Mono        { return types.Unit }
func (n *Return) Type() types.Mono       { return types.Unit }
func (n *Seq) Type() types.Mono          { return n.Ty }
