// Package parser implements a Pratt expression parser over the lexer's
// token stream, producing the ast.Program the rest of the compiler
// consumes. Binary operators desugar directly to ast.Apply of an
// ast.Var named after the operator (e.g. `a + b` parses to
// `Apply(Var("+"), [a, b])`), so the type checker sees operators as
// ordinary (pre-declared extern) function bindings rather than a
// dedicated AST form.
package parser

import (
	"fmt"
	"strconv"

	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/lexer"
)

// precedence levels, lowest to highest.
const (
	lowest int = iota
	orPrec
	andPrec
	cmpPrec
	addPrec
	mulPrec
	prefixPrec
	callPrec
	dotPrec
)

var precedences = map[lexer.TokenType]int{
	lexer.OROR:    orPrec,
	lexer.ANDAND:  andPrec,
	lexer.EQ:      cmpPrec,
	lexer.NEQ:     cmpPrec,
	lexer.LT:      cmpPrec,
	lexer.GT:      cmpPrec,
	lexer.LTE:     cmpPrec,
	lexer.GTE:     cmpPrec,
	lexer.PLUS:    addPrec,
	lexer.MINUS:   addPrec,
	lexer.STAR:    mulPrec,
	lexer.SLASH:   mulPrec,
	lexer.PERCENT: mulPrec,
	lexer.DOT:     dotPrec,
}

var binOpName = map[lexer.TokenType]string{
	lexer.OROR: "||", lexer.ANDAND: "&&",
	lexer.EQ: "==", lexer.NEQ: "!=", lexer.LT: "<", lexer.GT: ">", lexer.LTE: "<=", lexer.GTE: ">=",
	lexer.PLUS: "+", lexer.MINUS: "-", lexer.STAR: "*", lexer.SLASH: "/", lexer.PERCENT: "%",
}

// Error is a structured parse error; every syntax failure raised by the
// parser carries one of these.
type Error struct {
	Pos     ast.Pos
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Message) }

// Parser turns one file's token stream into ast.Toplevels.
type Parser struct {
	l    *lexer.Lexer
	file string

	cur, peek lexer.Token
	errs      []error
}

// New returns a parser over src, reporting positions against file.
func New(file string, src []byte) *Parser {
	p := &Parser{l: lexer.New(src), file: file}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.Next()
}

func (p *Parser) pos(lp lexer.Pos) ast.Pos { return ast.Pos{File: p.file, Line: lp.Line, Col: lp.Col} }

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errs = append(p.errs, &Error{Pos: p.pos(p.cur.Pos), Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	tok := p.cur
	if tok.Type != t {
		p.errorf("expected %s, got %s", t, tok.Type)
	}
	p.next()
	return tok
}

// ParseProgram parses every toplevel declaration until EOF, returning
// whatever was parsed alongside any errors (so a caller can still inspect
// partial results for diagnostics).
func (p *Parser) ParseProgram() (*ast.Program, []error) {
	prog := &ast.Program{}
	for p.cur.Type != lexer.EOF {
		if t := p.parseToplevel(); t != nil {
			prog.Toplevels = append(prog.Toplevels, t)
		} else {
			p.next()
		}
	}
	return prog, p.errs
}

func (p *Parser) parseToplevel() ast.Toplevel {
	switch p.cur.Type {
	case lexer.OPEN:
		return p.parseOpen()
	case lexer.TYPE:
		return p.parseLetType()
	case lexer.EXTERN:
		return p.parseExtern(false)
	case lexer.IMPLICIT:
		return p.parseExtern(true)
	case lexer.LET:
		return p.parseLet()
	default:
		p.errorf("unexpected token %s at top level", p.cur.Type)
		return nil
	}
}

// parseOpen parses `open A.B.C` (in-tree module) or `open "file.el2"` (a
// named source file loaded directly, not through the module-name rule).
func (p *Parser) parseOpen() ast.Toplevel {
	pos := p.pos(p.cur.Pos)
	p.next()
	if p.cur.Type == lexer.STRING {
		path := p.cur.Literal
		p.next()
		return &ast.OpenFile{Pos: pos, Path: path}
	}
	var path []string
	path = append(path, p.expect(lexer.IDENT).Literal)
	for p.cur.Type == lexer.DOT {
		p.next()
		path = append(path, p.expect(lexer.IDENT).Literal)
	}
	return &ast.Open{Pos: pos, Path: path}
}

func (p *Parser) parseLetType() ast.Toplevel {
	pos := p.pos(p.cur.Pos)
	p.next()
	name := p.expect(lexer.IDENT).Literal

	var tyVars []string
	for p.cur.Type == lexer.QUOTE {
		tyVars = append(tyVars, p.cur.Literal)
		p.next()
	}
	p.expect(lexer.ASSIGN)

	decl := &ast.LetType{Pos: pos, Name: name, TyVars: tyVars}
	switch {
	case p.cur.Type == lexer.LBRACE:
		decl.Kind = ast.TypeStruct
		decl.Fields = p.parseFieldDecls()
	case p.cur.Type == lexer.PIPE || (p.cur.Type == lexer.IDENT && p.peek.Type != lexer.ASSIGN && p.isVariantStart()):
		decl.Kind = ast.TypeEnum
		decl.Variants = p.parseVariantDecls()
	default:
		decl.Kind = ast.TypeAlias
		decl.Alias = p.parseTypeExpr()
	}
	return decl
}

// isVariantStart treats any identifier beginning with an uppercase ASCII
// letter as the first variant of an enum body, so `type T = Foo(i64) | Bar`
// and `type T = Foo` both declare enums; an alias to a capitalized type
// name is written with parentheses, `type T = (Foo)`. This choice is also
// recorded in the accompanying design notes.
func (p *Parser) isVariantStart() bool {
	return p.cur.Type == lexer.IDENT && len(p.cur.Literal) > 0 && p.cur.Literal[0] >= 'A' && p.cur.Literal[0] <= 'Z'
}

func (p *Parser) parseFieldDecls() []ast.FieldDecl {
	p.expect(lexer.LBRACE)
	var fields []ast.FieldDecl
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		name := p.expect(lexer.IDENT).Literal
		p.expect(lexer.COLON)
		ty := p.parseTypeExpr()
		fields = append(fields, ast.FieldDecl{Name: name, Type: ty})
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return fields
}

func (p *Parser) parseVariantDecls() []ast.VariantDecl {
	var variants []ast.VariantDecl
	if p.cur.Type == lexer.PIPE {
		p.next()
	}
	for {
		name := p.expect(lexer.IDENT).Literal
		v := ast.VariantDecl{Name: name}
		if p.cur.Type == lexer.LPAREN {
			p.next()
			v.Type = p.parseTypeExpr()
			p.expect(lexer.RPAREN)
		}
		variants = append(variants, v)
		if p.cur.Type != lexer.PIPE {
			break
		}
		p.next()
	}
	return variants
}

func (p *Parser) parseExtern(implicit bool) ast.Toplevel {
	pos := p.pos(p.cur.Pos)
	p.next()
	name := p.expect(lexer.IDENT).Literal
	p.expect(lexer.COLON)
	ty := p.parseTypeExpr()
	external := name
	if p.cur.Type == lexer.ASSIGN {
		p.next()
		external = p.expect(lexer.STRING).Literal
	}
	if implicit {
		return &ast.ImplicitExtern{Pos: pos, Name: name, Type: ty, External: external}
	}
	return &ast.Extern{Pos: pos, Name: name, Type: ty, External: external}
}

// parseLet parses both a `Func` binding (`let name arg1 arg2 = body`) and a
// plain pattern binding (`let pattern = body`): the former is recognized by
// a bare identifier immediately followed by further identifiers before `=`.
func (p *Parser) parseLet() ast.Toplevel {
	pos := p.pos(p.cur.Pos)
	p.next()

	if p.cur.Type == lexer.IDENT && p.peek.Type == lexer.IDENT {
		name := p.cur.Literal
		p.next()
		var args []ast.Param
		for p.cur.Type == lexer.IDENT {
			args = append(args, ast.Param{Name: p.cur.Literal})
			p.next()
		}
		var retTy ast.TypeExpr
		if p.cur.Type == lexer.COLON {
			p.next()
			retTy = p.parseTypeExpr()
		}
		p.expect(lexer.ASSIGN)
		body := p.parseBlock()
		return &ast.LetFn{Pos: pos, Name: name, Args: args, RetTy: retTy, Body: body}
	}

	if p.cur.Type == lexer.IDENT && p.peek.Type == lexer.ASSIGN {
		name := p.cur.Literal
		p.next()
		p.expect(lexer.ASSIGN)
		body := p.parseBlock()
		return &ast.LetFn{Pos: pos, Name: name, Body: body}
	}

	pat := p.parsePattern()
	p.expect(lexer.ASSIGN)
	body := p.parseBlock()
	return &ast.Let{Pos: pos, Pattern: pat, Body: body}
}

// --- Expressions ---

// parseBlock parses one expression, then folds any `;`-separated
// continuations into a Seq; a body with no semicolon returns that single
// expression untouched so the common case allocates nothing extra.
func (p *Parser) parseBlock() ast.Expr {
	first := p.parseExpr(lowest)
	if p.cur.Type != lexer.SEMI {
		return first
	}
	exprs := []ast.Expr{first}
	for p.cur.Type == lexer.SEMI {
		p.next()
		exprs = append(exprs, p.parseExpr(lowest))
	}
	return &ast.Seq{Pos: first.Position(), Exprs: exprs}
}

func (p *Parser) parseExpr(min int) ast.Expr {
	left := p.parsePrefix()
	for {
		if p.cur.Type == lexer.DOT {
			left = p.parseDotSuffix(left)
			continue
		}
		if p.cur.Type == lexer.LARROW && min == lowest {
			pos := p.pos(p.cur.Pos)
			p.next()
			value := p.parseExpr(lowest)
			return &ast.Assign{Pos: pos, Target: left, Value: value}
		}
		prec, ok := precedences[p.cur.Type]
		if !ok || prec <= min {
			break
		}
		left = p.parseInfix(left, prec)
	}
	return left
}

func (p *Parser) parseDotSuffix(left ast.Expr) ast.Expr {
	pos := p.pos(p.cur.Pos)
	p.next()
	if p.cur.Type == lexer.INT {
		idx, _ := strconv.Atoi(p.cur.Literal)
		p.next()
		return &ast.TupleAccess{Pos: pos, Recv: left, Index: idx}
	}
	field := p.expect(lexer.IDENT).Literal
	return &ast.FieldAccess{Pos: pos, Recv: left, Field: field}
}

func (p *Parser) parseInfix(left ast.Expr, prec int) ast.Expr {
	pos := p.pos(p.cur.Pos)
	op := p.cur.Type
	p.next()
	right := p.parseExpr(prec)
	name, ok := binOpName[op]
	if !ok {
		p.errorf("unexpected infix operator %s", op)
		return left
	}
	return &ast.Apply{Pos: pos, Func: &ast.Var{Pos: pos, Name: name}, Args: []ast.Expr{left, right}}
}

func (p *Parser) parsePrefix() ast.Expr {
	pos := p.pos(p.cur.Pos)
	switch p.cur.Type {
	case lexer.INT:
		v, _ := strconv.ParseInt(p.cur.Literal, 10, 64)
		p.next()
		return p.maybeCall(&ast.Lit{Pos: pos, Kind: ast.LitI64, I64: v})
	case lexer.FLOAT:
		v, _ := strconv.ParseFloat(p.cur.Literal, 64)
		p.next()
		return &ast.Lit{Pos: pos, Kind: ast.LitF64, F64: v}
	case lexer.TRUE:
		p.next()
		return &ast.Lit{Pos: pos, Kind: ast.LitBool, Bool: true}
	case lexer.FALSE:
		p.next()
		return &ast.Lit{Pos: pos, Kind: ast.LitBool, Bool: false}
	case lexer.CHAR:
		r := []rune(p.cur.Literal)
		p.next()
		var ch rune
		if len(r) > 0 {
			ch = r[0]
		}
		return &ast.Lit{Pos: pos, Kind: ast.LitChar, Char: ch}
	case lexer.NOT:
		p.next()
		inner := p.parseExpr(prefixPrec)
		return &ast.Apply{Pos: pos, Func: &ast.Var{Pos: pos, Name: "not"}, Args: []ast.Expr{inner}}
	case lexer.MINUS:
		p.next()
		inner := p.parseExpr(prefixPrec)
		return &ast.Apply{Pos: pos, Func: &ast.Var{Pos: pos, Name: "neg"}, Args: []ast.Expr{inner}}
	case lexer.AMP:
		p.next()
		return &ast.Ref{Pos: pos, Expr: p.parseExpr(prefixPrec)}
	case lexer.STAR:
		p.next()
		return &ast.Deref{Pos: pos, Expr: p.parseExpr(prefixPrec)}
	case lexer.SIZEOF:
		p.next()
		p.expect(lexer.LPAREN)
		ty := p.parseTypeExpr()
		p.expect(lexer.RPAREN)
		return &ast.SizeOf{Pos: pos, Type: ty}
	case lexer.LPAREN:
		return p.parseParenOrTuple()
	case lexer.LET:
		return p.parseLetExpr()
	case lexer.IF:
		return p.parseIf()
	case lexer.MATCH:
		return p.parseMatch()
	case lexer.LOOP:
		p.next()
		return &ast.Loop{Pos: pos, Body: p.parseExpr(lowest)}
	case lexer.BREAK:
		p.next()
		return &ast.Break{Pos: pos, Value: p.parseExpr(lowest)}
	case lexer.RETURN:
		p.next()
		return &ast.Return{Pos: pos, Value: p.parseExpr(lowest)}
	case lexer.FUN:
		return p.parseLambda()
	case lexer.IDENT:
		return p.parseIdentAtom()
	default:
		p.errorf("unexpected token %s in expression", p.cur.Type)
		p.next()
		return &ast.Lit{Pos: pos, Kind: ast.LitUnit}
	}
}

// parseIdentAtom consumes either: a `TypeName { ... }` struct literal, a
// `TypeName.Variant(...)` enum literal (both segments Capitalized), or a
// dot-separated path of Capitalized module segments followed by one
// lowercase-leading name, producing a qualified Var; a single lowercase
// identifier is just a local reference. A plain Var may be followed by a
// target assignment (`name <- value`) or bare juxtaposed arguments
// (function application).
func (p *Parser) parseIdentAtom() ast.Expr {
	pos := p.pos(p.cur.Pos)
	first := p.cur.Literal
	p.next()

	if isUpper(first) && p.cur.Type == lexer.LBRACE {
		return p.parseStructLit(pos, first)
	}
	if isUpper(first) && p.cur.Type == lexer.DOT && p.peek.Type == lexer.IDENT && isUpper(p.peek.Literal) {
		p.next() // consume '.'
		variant := p.cur.Literal
		p.next()
		return p.parseEnumLit(pos, first, variant)
	}

	var path []string
	name := first
	for p.cur.Type == lexer.DOT && p.peek.Type == lexer.IDENT {
		path = append(path, name)
		p.next()
		name = p.cur.Literal
		p.next()
	}

	v := ast.Expr(&ast.Var{Pos: pos, Path: path, Name: name})
	return p.maybeCall(v)
}

func isUpper(s string) bool { return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' }

// maybeCall consumes a run of juxtaposed argument atoms after fn, the
// whitespace-application convention (`f x y`), stopping before anything
// that starts an infix operator, a closing delimiter, or another statement.
func (p *Parser) maybeCall(fn ast.Expr) ast.Expr {
	var args []ast.Expr
	for p.startsAtom() {
		args = append(args, p.parseAtomOnly())
	}
	if len(args) == 0 {
		return fn
	}
	return &ast.Apply{Pos: fn.Position(), Func: fn, Args: args}
}

func (p *Parser) startsAtom() bool {
	switch p.cur.Type {
	case lexer.IDENT, lexer.INT, lexer.FLOAT, lexer.TRUE, lexer.FALSE, lexer.CHAR, lexer.LPAREN:
		return true
	default:
		return false
	}
}

// parseAtomOnly parses one argument atom without consuming a further
// juxtaposed call or infix chain, so `f x y` parses as Apply(f, [x, y])
// rather than Apply(f, [Apply(x, [y])]).
func (p *Parser) parseAtomOnly() ast.Expr {
	pos := p.pos(p.cur.Pos)
	switch p.cur.Type {
	case lexer.INT:
		v, _ := strconv.ParseInt(p.cur.Literal, 10, 64)
		p.next()
		return &ast.Lit{Pos: pos, Kind: ast.LitI64, I64: v}
	case lexer.FLOAT:
		v, _ := strconv.ParseFloat(p.cur.Literal, 64)
		p.next()
		return &ast.Lit{Pos: pos, Kind: ast.LitF64, F64: v}
	case lexer.TRUE:
		p.next()
		return &ast.Lit{Pos: pos, Kind: ast.LitBool, Bool: true}
	case lexer.FALSE:
		p.next()
		return &ast.Lit{Pos: pos, Kind: ast.LitBool, Bool: false}
	case lexer.CHAR:
		r := []rune(p.cur.Literal)
		p.next()
		var ch rune
		if len(r) > 0 {
			ch = r[0]
		}
		return &ast.Lit{Pos: pos, Kind: ast.LitChar, Char: ch}
	case lexer.LPAREN:
		return p.parseParenOrTuple()
	case lexer.IDENT:
		name := p.cur.Literal
		p.next()
		return &ast.Var{Pos: pos, Name: name}
	default:
		p.errorf("unexpected token %s in argument position", p.cur.Type)
		p.next()
		return &ast.Lit{Pos: pos, Kind: ast.LitUnit}
	}
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	pos := p.pos(p.cur.Pos)
	p.next()
	if p.cur.Type == lexer.RPAREN {
		p.next()
		return &ast.Lit{Pos: pos, Kind: ast.LitUnit}
	}
	first := p.parseExpr(lowest)
	if p.cur.Type == lexer.COMMA {
		elems := []ast.Expr{first}
		for p.cur.Type == lexer.COMMA {
			p.next()
			elems = append(elems, p.parseExpr(lowest))
		}
		p.expect(lexer.RPAREN)
		return &ast.TupleExpr{Pos: pos, Elems: elems}
	}
	if p.cur.Type == lexer.SEMI {
		exprs := []ast.Expr{first}
		for p.cur.Type == lexer.SEMI {
			p.next()
			exprs = append(exprs, p.parseExpr(lowest))
		}
		p.expect(lexer.RPAREN)
		return &ast.Seq{Pos: pos, Exprs: exprs}
	}
	p.expect(lexer.RPAREN)
	return first
}

func (p *Parser) parseStructLit(pos ast.Pos, typeName string) ast.Expr {
	p.expect(lexer.LBRACE)
	var fields []ast.FieldInit
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		name := p.expect(lexer.IDENT).Literal
		p.expect(lexer.COLON)
		val := p.parseExpr(lowest)
		fields = append(fields, ast.FieldInit{Name: name, Value: val})
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.StructLit{Pos: pos, Type: typeName, Fields: fields}
}

func (p *Parser) parseEnumLit(pos ast.Pos, typeName, variant string) ast.Expr {
	var payload ast.Expr
	if p.cur.Type == lexer.LPAREN {
		p.next()
		if p.cur.Type != lexer.RPAREN {
			payload = p.parseExpr(lowest)
		}
		p.expect(lexer.RPAREN)
	}
	return &ast.EnumLit{Pos: pos, Type: typeName, Variant: variant, Payload: payload}
}

func (p *Parser) parseLetExpr() ast.Expr {
	pos := p.pos(p.cur.Pos)
	p.next()
	pat := p.parsePattern()
	p.expect(lexer.ASSIGN)
	value := p.parseExpr(lowest)
	p.expect(lexer.IN)
	body := p.parseExpr(lowest)
	return &ast.LetExpr{Pos: pos, Pattern: pat, Value: value, Body: body}
}

func (p *Parser) parseIf() ast.Expr {
	pos := p.pos(p.cur.Pos)
	p.next()
	cond := p.parseExpr(lowest)
	p.expect(lexer.THEN)
	then := p.parseExpr(lowest)
	p.expect(lexer.ELSE)
	els := p.parseExpr(lowest)
	return &ast.If{Pos: pos, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseMatch() ast.Expr {
	pos := p.pos(p.cur.Pos)
	p.next()
	scrut := p.parseExpr(lowest)
	p.expect(lexer.WITH)
	if p.cur.Type == lexer.PIPE {
		p.next()
	}
	var arms []ast.MatchArm
	for {
		pat := p.parsePattern()
		var guard ast.Expr
		if p.cur.Type == lexer.IF {
			p.next()
			guard = p.parseExpr(lowest)
		}
		p.expect(lexer.ARROW)
		body := p.parseExpr(lowest)
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
		if p.cur.Type != lexer.PIPE {
			break
		}
		p.next()
	}
	return &ast.Match{Pos: pos, Scrutinee: scrut, Arms: arms}
}

func (p *Parser) parseLambda() ast.Expr {
	pos := p.pos(p.cur.Pos)
	p.next()
	var params []string
	for p.cur.Type == lexer.IDENT {
		params = append(params, p.cur.Literal)
		p.next()
	}
	p.expect(lexer.ARROW)
	body := p.parseExpr(lowest)
	return &ast.Lambda{Pos: pos, Params: params, Body: body}
}

// --- Patterns ---

func (p *Parser) parsePattern() ast.Pattern {
	pos := p.pos(p.cur.Pos)
	switch p.cur.Type {
	case lexer.IDENT:
		name := p.cur.Literal
		if name == "_" {
			p.next()
			return &ast.PWildcard{Pos: pos}
		}
		if isUpper(name) {
			return p.parseConstructorPattern(pos, name)
		}
		p.next()
		pat := ast.Pattern(&ast.PVar{Pos: pos, Name: name})
		return p.maybeTypedPattern(pat)
	case lexer.INT:
		v, _ := strconv.ParseInt(p.cur.Literal, 10, 64)
		p.next()
		return &ast.PLit{Pos: pos, Lit: &ast.Lit{Pos: pos, Kind: ast.LitI64, I64: v}}
	case lexer.TRUE:
		p.next()
		return &ast.PLit{Pos: pos, Lit: &ast.Lit{Pos: pos, Kind: ast.LitBool, Bool: true}}
	case lexer.FALSE:
		p.next()
		return &ast.PLit{Pos: pos, Lit: &ast.Lit{Pos: pos, Kind: ast.LitBool, Bool: false}}
	case lexer.AMP:
		p.next()
		return &ast.PRef{Pos: pos, Pattern: p.parsePattern()}
	case lexer.LPAREN:
		p.next()
		if p.cur.Type == lexer.RPAREN {
			p.next()
			return &ast.PUnit{Pos: pos}
		}
		first := p.parsePattern()
		if p.cur.Type == lexer.COMMA {
			elems := []ast.Pattern{first}
			for p.cur.Type == lexer.COMMA {
				p.next()
				elems = append(elems, p.parsePattern())
			}
			p.expect(lexer.RPAREN)
			return &ast.PTuple{Pos: pos, Elems: elems}
		}
		p.expect(lexer.RPAREN)
		return first
	default:
		p.errorf("unexpected token %s in pattern", p.cur.Type)
		p.next()
		return &ast.PWildcard{Pos: pos}
	}
}

func (p *Parser) maybeTypedPattern(pat ast.Pattern) ast.Pattern {
	if p.cur.Type != lexer.COLON {
		return pat
	}
	p.next()
	ty := p.parseTypeExpr()
	return &ast.PTyped{Pos: pat.Position(), Pattern: pat, Type: ty}
}

// parseConstructorPattern handles `TypeName { field, ... }` struct patterns
// and `TypeName.Variant(sub)` / `TypeName.Variant` enum patterns.
func (p *Parser) parseConstructorPattern(pos ast.Pos, name string) ast.Pattern {
	p.next()
	if p.cur.Type == lexer.LBRACE {
		p.next()
		var fields []ast.FieldPattern
		for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
			fname := p.expect(lexer.IDENT).Literal
			var sub ast.Pattern
			if p.cur.Type == lexer.COLON {
				p.next()
				sub = p.parsePattern()
			}
			fields = append(fields, ast.FieldPattern{Name: fname, Sub: sub})
			if p.cur.Type == lexer.COMMA {
				p.next()
			}
		}
		p.expect(lexer.RBRACE)
		return &ast.PStruct{Pos: pos, Type: name, Fields: fields}
	}

	p.expect(lexer.DOT)
	variant := p.expect(lexer.IDENT).Literal
	if p.cur.Type == lexer.LPAREN {
		p.next()
		var sub ast.Pattern
		if p.cur.Type != lexer.RPAREN {
			sub = p.parsePattern()
		}
		p.expect(lexer.RPAREN)
		return &ast.PEnum{Pos: pos, Type: name, Variant: variant, Sub: sub}
	}
	return &ast.PEnum{Pos: pos, Type: name, Variant: variant}
}

// --- Type expressions ---

func (p *Parser) parseTypeExpr() ast.TypeExpr {
	base := p.parseTypeAtom()
	if p.cur.Type == lexer.ARROW {
		p.next()
		ret := p.parseTypeExpr()
		var args []ast.TypeExpr
		if tup, ok := base.(*ast.TETuple); ok {
			args = tup.Elems
		} else {
			args = []ast.TypeExpr{base}
		}
		return &ast.TEFunction{Args: args, Ret: ret}
	}
	return base
}

func (p *Parser) parseTypeAtom() ast.TypeExpr {
	switch p.cur.Type {
	case lexer.QUOTE:
		name := p.cur.Literal
		p.next()
		return &ast.TEVar{Name: name}
	case lexer.AMP:
		p.next()
		return &ast.TEPointer{Inner: p.parseTypeAtom()}
	case lexer.LPAREN:
		p.next()
		if p.cur.Type == lexer.RPAREN {
			p.next()
			return &ast.TEName{Name: ast.BaseUnit}
		}
		first := p.parseTypeExpr()
		if p.cur.Type == lexer.COMMA {
			elems := []ast.TypeExpr{first}
			for p.cur.Type == lexer.COMMA {
				p.next()
				elems = append(elems, p.parseTypeExpr())
			}
			p.expect(lexer.RPAREN)
			return &ast.TETuple{Elems: elems}
		}
		p.expect(lexer.RPAREN)
		return first
	case lexer.IDENT:
		name := p.cur.Literal
		p.next()
		var path []string
		for p.cur.Type == lexer.DOT {
			p.next()
			path = append(path, name)
			name = p.expect(lexer.IDENT).Literal
		}
		var args []ast.TypeExpr
		if p.cur.Type == lexer.LPAREN {
			p.next()
			for p.cur.Type != lexer.RPAREN && p.cur.Type != lexer.EOF {
				args = append(args, p.parseTypeExpr())
				if p.cur.Type == lexer.COMMA {
					p.next()
				}
			}
			p.expect(lexer.RPAREN)
		}
		return &ast.TEName{Path: path, Name: name, Args: args}
	default:
		p.errorf("unexpected token %s in type", p.cur.Type)
		p.next()
		return &ast.TEName{Name: ast.BaseUnit}
	}
}
