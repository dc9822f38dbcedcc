// Package ast defines the surface syntax tree that the parser (an external
// collaborator) is expected to produce. evanlang2c's own
// packages never construct source text; they only consume these node
// shapes.
package ast

import "fmt"

// Pos is a source location carried on every surface node so diagnostics
// downstream (desugaring, inference, emission) can still cite where a
// construct came from.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Toplevel is one declaration at module scope.
type Toplevel interface {
	toplevel()
	Position() Pos
}

// OpenFile names a source file that introduces a fresh module when loaded.
type OpenFile struct {
	Pos  Pos
	Path string
}

// Open brings a module's bindings into unqualified scope.
type Open struct {
	Pos  Pos
	Path []string
}

// TypeKind distinguishes the three declared-type bodies.
type TypeKind int

const (
	TypeAlias TypeKind = iota
	TypeStruct
	TypeEnum
)

// FieldDecl is one struct field in a type declaration.
type FieldDecl struct {
	Name string
	Type TypeExpr
}

// VariantDecl is one enum variant in a type declaration; Type is nil for a
// payload-less variant.
type VariantDecl struct {
	Name string
	Type TypeExpr
}

// LetType declares a user type, optionally parametric over TyVars.
type LetType struct {
	Pos      Pos
	Name     string
	TyVars   []string
	Kind     TypeKind
	Alias    TypeExpr      // set when Kind == TypeAlias
	Fields   []FieldDecl   // set when Kind == TypeStruct
	Variants []VariantDecl // set when Kind == TypeEnum
}

// Param is a top-level function argument: a plain name plus an optional
// declared type (unannotated params get a fresh unknown during inference).
type Param struct {
	Name string
	Type TypeExpr // nil if unannotated
}

// LetFn declares a top-level function binding (syntactically a Func
// binding: it carries a parameter list, however empty).
type LetFn struct {
	Pos    Pos
	Name   string
	Args   []Param
	RetTy  TypeExpr // nil if unannotated
	Body   Expr
}

// Let declares a top-level non-function binding through a pattern (usually
// just a variable, but struct/tuple patterns are permitted since the
// right-hand side is a single expression evaluated once at init time).
type Let struct {
	Pos     Pos
	Pattern Pattern
	Body    Expr
}

// Extern declares a name bound to a C symbol whose declaration the emitter
// must also print.
type Extern struct {
	Pos      Pos
	Name     string
	Type     TypeExpr
	External string
}

// ImplicitExtern declares a name bound to an external C symbol that is
// assumed already visible to the host C compiler (e.g. libc); no
// declaration is emitted for it.
type ImplicitExtern struct {
	Pos      Pos
	Name     string
	Type     TypeExpr
	External string
}

func (*OpenFile) toplevel()       {}
func (*Open) toplevel()           {}
func (*LetType) toplevel()        {}
func (*LetFn) toplevel()          {}
func (*Let) toplevel()            {}
func (*Extern) toplevel()         {}
func (*ImplicitExtern) toplevel() {}

func (n *OpenFile) Position() Pos       { return n.Pos }
func (n *Open) Position() Pos           { return n.Pos }
func (n *LetType) Position() Pos        { return n.Pos }
func (n *LetFn) Position() Pos          { return n.Pos }
func (n *Let) Position() Pos            { return n.Pos }
func (n *Extern) Position() Pos         { return n.Pos }
func (n *ImplicitExtern) Position() Pos { return n.Pos }

// Program is everything the parser produces for one source file.
type Program struct {
	Toplevels []Toplevel
}
