package ast

// TypeExpr is a surface type annotation, as written in `extern` decls,
// parameter annotations, and type declarations.
type TypeExpr interface {
	typeExprNode()
}

// TEName refers to a base, user, or variable type by name. Args is
// non-empty for a parametric user type instantiation, e.g. `option(i64)`.
type TEName struct {
	Path []string
	Name string
	Args []TypeExpr
}

// TEVar refers to a type variable in scope, e.g. `'a`.
type TEVar struct {
	Name string
}

// TEPointer is `&T`.
type TEPointer struct {
	Inner TypeExpr
}

// TETuple is `(T1, T2, ...)`.
type TETuple struct {
	Elems []TypeExpr
}

// TEFunction is `(T1, ...) -> R`.
type TEFunction struct {
	Args []TypeExpr
	Ret  TypeExpr
}

func (*TEName) typeExprNode()     {}
func (*TEVar) typeExprNode()      {}
func (*TEPointer) typeExprNode()  {}
func (*TETuple) typeExprNode()    {}
func (*TEFunction) typeExprNode() {}

// Well-known base type names, matched case-insensitively nowhere — the
// parser always emits exactly these spellings for base types.
const (
	BaseUnit  = "unit"
	BaseI64   = "i64"
	BaseCInt  = "c_int"
	BaseF64   = "f64"
	BaseBool  = "bool"
	BaseChar  = "char"
)
