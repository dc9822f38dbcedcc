package codegen

import (
	"bytes"
	"fmt"

	"github.com/evanlang2/evanlang2c/internal/module"
	"github.com/evanlang2/evanlang2c/internal/typedast"
	"github.com/evanlang2/evanlang2c/internal/types"
)

// loopFrame tracks one enclosing Loop's break target: its C label and,
// when the loop is value-producing, the local it assigns before breaking.
type loopFrame struct {
	breakLabel string
	resultVar  string // empty when the loop is Unit-typed
}

// funcBuilder accumulates the statement-level C text for one function or
// value-initializer body, plus the naming state (locals, temporaries,
// loop stack) needed while lowering it. One funcBuilder exists per
// emitted C function.
type funcBuilder struct {
	e   *Emitter
	buf bytes.Buffer

	locals    map[string]string // source local name -> current C name
	tempCount int
	loops     []loopFrame
	indent    string
}

func newFuncBuilder(e *Emitter) *funcBuilder {
	return &funcBuilder{e: e, locals: make(map[string]string), indent: "\t"}
}

// bindLocal introduces a fresh C name for a source-level local (parameter
// or let-binding), shadowing any earlier binding of the same source name.
func (fb *funcBuilder) bindLocal(srcName string) string {
	cname := cSanitize(srcName)
	if cname == "" || isCKeyword(cname) {
		cname = "v_" + cname
	}
	// Disambiguate shadowed/re-used source names within one function so a
	// later `let x = ...` never collides with an earlier C `x`.
	for i := 0; ; i++ {
		candidate := cname
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d", cname, i)
		}
		if !fb.inUse(candidate) {
			cname = candidate
			break
		}
	}
	fb.locals[srcName] = cname
	return cname
}

func (fb *funcBuilder) inUse(cname string) bool {
	for _, v := range fb.locals {
		if v == cname {
			return true
		}
	}
	return false
}

func (fb *funcBuilder) freshTemp(prefix string) string {
	fb.tempCount++
	return fmt.Sprintf("%s%d", prefix, fb.tempCount)
}

func (fb *funcBuilder) emit(format string, args ...interface{}) {
	fmt.Fprintf(&fb.buf, fb.indent+format+"\n", args...)
}

func (fb *funcBuilder) emitRaw(s string) {
	fb.buf.WriteString(s)
}

// declareLocal emits a C local declaration initialized to val, returning
// its C name; used for every let-binding, temp materialization, and match
// bind.
func (fb *funcBuilder) declareLocal(srcName, ctype, val string) string {
	cname := fb.bindLocal(srcName)
	fb.emit("%s %s = %s;", ctype, cname, val)
	return cname
}

// lower lowers expr to a single C expression string, emitting whatever
// statements its evaluation needs into fb.buf first. Every typedast node
// reachable after substExpr is handled here; the few cases that cannot be
// expressed as a bare C expression (If with a result, Match) declare a
// temp and return its name.
func (fb *funcBuilder) lower(expr typedast.Expr) string {
	switch n := expr.(type) {
	case *typedast.Lit:
		return fb.lowerLit(n)
	case *typedast.LocalVar:
		if cname, ok := fb.locals[n.Name]; ok {
			return cname
		}
		return cSanitize(n.Name)
	case *typedast.GlobVar:
		tv, ok := fb.e.bindings[n.Name]
		if !ok {
			// An ImplicitExtern (or Extern) reference: call through its
			// external name directly, no emitted declaration needed.
			return n.Name
		}
		if tv.Kind != module.KindEl {
			return tv.External
		}
		cname, err := fb.e.emitBinding(tv, n.InstMap)
		if err != nil {
			// Lowering has no error channel; a binding that fails to emit
			// (e.g. a name collision) is a compiler bug at this point since
			// inference already validated the program, so surface it as a
			// clearly-broken identifier rather than panicking mid-output.
			return "/* error: " + err.Error() + " */"
		}
		return cname
	case *typedast.Tuple:
		return fb.lowerTuple(n)
	case *typedast.Apply:
		return fb.lowerApply(n)
	case *typedast.Lambda:
		return fb.lowerLambdaLift(n)
	case *typedast.Let:
		val := fb.lower(n.Value)
		ctyp := fb.e.ctype(n.Value.Type())
		if isUnit(n.Value.Type()) {
			fb.stmtExpr(n.Value)
		} else {
			fb.declareLocal(n.Name, ctyp, val)
		}
		return fb.lower(n.Body)
	case *typedast.If:
		return fb.lowerIf(n)
	case *typedast.Match:
		return fb.lowerMatch(n)
	case *typedast.Assign:
		target := fb.lower(n.Target)
		val := fb.lower(n.Value)
		fb.emit("*(%s) = %s;", target, val)
		return "((void)0)"
	case *typedast.StructLit:
		return fb.lowerStructLit(n)
	case *typedast.FieldAccess:
		return fb.lowerFieldAccess(n)
	case *typedast.TupleAccess:
		recv := fb.lower(n.Recv)
		return fmt.Sprintf("(%s)._%d", recv, n.Index)
	case *typedast.Enum:
		return fb.lowerEnum(n)
	case *typedast.CheckVariant:
		recv := fb.lower(n.Expr)
		enumTy, ok := types.InnerMono(n.Expr.Type()).(*types.TUser)
		if !ok {
			return "false"
		}
		name := fb.e.userType(enumTy.Inst)
		return fmt.Sprintf("(%s).tag == %s", recv, tagName(name, n.Variant))
	case *typedast.Ref:
		return fb.lowerRef(n)
	case *typedast.Deref:
		inner := fb.lower(n.Expr)
		return fmt.Sprintf("(*(%s))", inner)
	case *typedast.SizeOf:
		return fmt.Sprintf("((int)sizeof(%s))", fb.e.ctype(n.Of))
	case *typedast.Loop:
		return fb.lowerLoop(n)
	case *typedast.Break:
		fb.lowerBreak(n)
		return "((void)0)"
	case *typedast.Return:
		if n.Value == nil || isUnit(n.Value.Type()) {
			if n.Value != nil {
				fb.stmtExpr(n.Value)
			}
			fb.emit("return;")
		} else {
			val := fb.lower(n.Value)
			fb.emit("return %s;", val)
		}
		return "((void)0)"
	case *typedast.Seq:
		return fb.lowerSeq(n)
	default:
		return "/* unhandled node */"
	}
}

// stmtExpr lowers expr purely for its side effects, discarding its value;
// used for Unit-typed sequence elements and for Let bindings of a
// Unit-typed value, where introducing a `void x = ...;` local would be
// invalid C.
func (fb *funcBuilder) stmtExpr(expr typedast.Expr) {
	if expr == nil {
		return
	}
	val := fb.lower(expr)
	if val != "((void)0)" {
		fb.emit("%s;", val)
	}
}

func (fb *funcBuilder) lowerLit(n *typedast.Lit) string {
	if isUnit(n.Ty) {
		return "((void)0)"
	}
	return lowerLitValue(n)
}

func (fb *funcBuilder) lowerTuple(n *typedast.Tuple) string {
	name := fb.e.tupleType(types.InnerMono(n.Ty).(*types.TTuple))
	parts := make([]string, len(n.Elems))
	for i, el := range n.Elems {
		parts[i] = fmt.Sprintf("._%d = %s", i, fb.lower(el))
	}
	return fmt.Sprintf("(struct %s){ %s }", name, joinComma(parts))
}

func (fb *funcBuilder) lowerApply(n *typedast.Apply) string {
	fn := fb.lower(n.Func)
	var parts []string
	for _, a := range n.Args {
		if isUnit(a.Type()) {
			fb.stmtExpr(a)
			continue
		}
		parts = append(parts, fb.lower(a))
	}
	return fmt.Sprintf("%s(%s)", fn, joinComma(parts))
}

// lowerLambdaLift lambda-lifts a nested, non-toplevel Lambda into a
// synthesized top-level C function and returns its name as a bare
// function pointer value. Free variables are not captured: a lifted
// lambda may only reference its own parameters and other top-level
// bindings, matching the language's raw-pointer, no-closures C-interop
// story.
func (fb *funcBuilder) lowerLambdaLift(n *typedast.Lambda) string {
	fb.e.lambdaLift++
	cName := fmt.Sprintf("lambda_%d", fb.e.lambdaLift)
	if err := fb.e.reserveName(cName, cName); err != nil {
		return "/* error: " + err.Error() + " */"
	}
	pvs := make([]module.Param, len(n.Params))
	for i, p := range n.Params {
		pvs[i] = module.Param{Name: p, Ty: n.ParamTypes[i]}
	}
	if err := fb.e.emitFunction(cName, pvs, nil, n.Body, n.Body.Type()); err != nil {
		return "/* error: " + err.Error() + " */"
	}
	return cName
}

func (fb *funcBuilder) lowerIf(n *typedast.If) string {
	cond := fb.lower(n.Cond)
	if isUnit(n.Ty) {
		fb.emit("if (%s) {", cond)
		fb.withIndent(func() { fb.stmtExpr(n.Then) })
		fb.emit("} else {")
		fb.withIndent(func() { fb.stmtExpr(n.Else) })
		fb.emit("}")
		return "((void)0)"
	}
	ctyp := fb.e.ctype(n.Ty)
	tmp := fb.freshTemp("t")
	fb.emit("%s %s;", ctyp, tmp)
	fb.emit("if (%s) {", cond)
	fb.withIndent(func() {
		thenVal := fb.lower(n.Then)
		fb.emit("%s = %s;", tmp, thenVal)
	})
	fb.emit("} else {")
	fb.withIndent(func() {
		elseVal := fb.lower(n.Else)
		fb.emit("%s = %s;", tmp, elseVal)
	})
	fb.emit("}")
	return tmp
}

// lowerMatch lowers a desugared Match to a chain of if/else blocks, each
// arm's Binds declared (in order) before its Cond is tested per arm
// semantics. An arm with no Cond ends the chain, so no trap follows it;
// when the last arm has a Cond (as every enum-variant arm does), its else
// branch is a synthesized assert(0).
func (fb *funcBuilder) lowerMatch(n *typedast.Match) string {
	// The desugarer already binds the scrutinee once via an enclosing Let
	// (expand.expandMatch), so n.Scrutinee is just a reference to that
	// local; lowering it here needs no fresh temp of its own.
	fb.lower(n.Scrutinee)

	var resultVar string
	if !isUnit(n.Ty) {
		resultVar = fb.freshTemp("m")
		fb.emit("%s %s;", fb.e.ctype(n.Ty), resultVar)
	}

	fb.lowerMatchArms(n.Arms, resultVar)
	if resultVar == "" {
		return "((void)0)"
	}
	return resultVar
}

func (fb *funcBuilder) lowerMatchArms(arms []typedast.MatchArm, resultVar string) {
	if len(arms) == 0 {
		fb.emit("assert(0);")
		return
	}
	arm := arms[0]
	rest := arms[1:]

	// arm.Cond (built by expand.expandMatch's compileArmPattern) can itself
	// reference a bind this same arm introduces (e.g. a PEnum sub-pattern's
	// cond testing the payload bound by AccessEnumField) — infer/var_match.go
	// adds binds to the arm environment before inferring Cond, so codegen
	// must declare them before lowering Cond too, not just before the body.
	for _, b := range arm.Binds {
		if isUnit(b.Value.Type()) {
			fb.stmtExpr(b.Value)
			continue
		}
		val := fb.lower(b.Value)
		fb.declareLocal(b.Name, fb.e.ctype(b.Value.Type()), val)
	}

	emitBody := func() {
		if resultVar == "" {
			fb.stmtExpr(arm.Body)
		} else {
			val := fb.lower(arm.Body)
			fb.emit("%s = %s;", resultVar, val)
		}
	}

	if arm.Cond == nil {
		emitBody()
		return
	}
	cond := fb.lower(arm.Cond)
	fb.emit("if (%s) {", cond)
	fb.withIndent(emitBody)
	if len(rest) == 0 {
		fb.emit("} else {")
		fb.withIndent(func() { fb.emit("assert(0);") })
		fb.emit("}")
		return
	}
	fb.emit("} else {")
	fb.withIndent(func() { fb.lowerMatchArms(rest, resultVar) })
	fb.emit("}")
}

func (fb *funcBuilder) lowerStructLit(n *typedast.StructLit) string {
	ty, ok := types.InnerMono(n.Ty).(*types.TUser)
	if !ok {
		return "/* error: struct literal at non-user type */"
	}
	name := fb.e.userType(ty.Inst)
	parts := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		parts[i] = fmt.Sprintf(".%s = %s", f.Name, fb.lower(f.Value))
	}
	return fmt.Sprintf("(struct %s){ %s }", name, joinComma(parts))
}

// lowerFieldAccess disambiguates the two shapes FieldAccess is built for:
// a genuine struct field when the receiver's user type is struct-kind,
// and an enum payload projection (synthesized by AccessEnumField) when it
// is enum-kind, which reaches into the tagged union's data member.
func (fb *funcBuilder) lowerFieldAccess(n *typedast.FieldAccess) string {
	recv := fb.lower(n.Recv)
	ty, ok := types.InnerMono(n.Recv.Type()).(*types.TUser)
	if !ok {
		return fmt.Sprintf("(%s).%s", recv, n.Field)
	}
	if ty.Inst.Def.Info.Kind == types.InfoEnum {
		return fmt.Sprintf("(%s).data.%s", recv, n.Field)
	}
	return fmt.Sprintf("(%s).%s", recv, n.Field)
}

func (fb *funcBuilder) lowerEnum(n *typedast.Enum) string {
	ty, ok := types.InnerMono(n.Ty).(*types.TUser)
	if !ok {
		return "/* error: enum literal at non-user type */"
	}
	name := fb.e.userType(ty.Inst)
	parts := []string{".tag = " + tagName(name, n.Variant)}
	if n.Payload != nil {
		parts = append(parts, fmt.Sprintf(".data = { .%s = %s }", n.Variant, fb.lower(n.Payload)))
	}
	return fmt.Sprintf("(struct %s){ %s }", name, joinComma(parts))
}

// lowerRef materializes Expr into a fresh addressable local (C does not
// allow taking the address of an arbitrary expression) and returns a
// pointer to it.
func (fb *funcBuilder) lowerRef(n *typedast.Ref) string {
	val := fb.lower(n.Expr)
	ctyp := fb.e.ctype(n.Expr.Type())
	tmp := fb.freshTemp("r")
	fb.emit("%s %s = %s;", ctyp, tmp, val)
	return fmt.Sprintf("(&%s)", tmp)
}

func (fb *funcBuilder) lowerLoop(n *typedast.Loop) string {
	label := fb.freshTemp("Lbreak")
	var resultVar string
	if !isUnit(n.Ty) {
		resultVar = fb.freshTemp("l")
		fb.emit("%s %s;", fb.e.ctype(n.Ty), resultVar)
	}
	fb.loops = append(fb.loops, loopFrame{breakLabel: label, resultVar: resultVar})

	fb.emit("while (1) {")
	fb.withIndent(func() { fb.stmtExpr(n.Body) })
	fb.emit("}")
	fb.emit("%s: ;", label)

	fb.loops = fb.loops[:len(fb.loops)-1]
	if resultVar == "" {
		return "((void)0)"
	}
	return resultVar
}

func (fb *funcBuilder) lowerBreak(n *typedast.Break) {
	if len(fb.loops) == 0 {
		fb.emit("/* break outside loop */")
		return
	}
	frame := fb.loops[len(fb.loops)-1]
	if n.Value != nil && !isUnit(n.Value.Type()) && frame.resultVar != "" {
		val := fb.lower(n.Value)
		fb.emit("%s = %s;", frame.resultVar, val)
	} else if n.Value != nil {
		fb.stmtExpr(n.Value)
	}
	fb.emit("goto %s;", frame.breakLabel)
}

func (fb *funcBuilder) lowerSeq(n *typedast.Seq) string {
	if len(n.Exprs) == 0 {
		return "((void)0)"
	}
	for _, e := range n.Exprs[:len(n.Exprs)-1] {
		fb.stmtExpr(e)
	}
	return fb.lower(n.Exprs[len(n.Exprs)-1])
}

func (fb *funcBuilder) withIndent(f func()) {
	saved := fb.indent
	fb.indent = saved + "\t"
	f()
	fb.indent = saved
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func isCKeyword(s string) bool {
	switch s {
	case "auto", "break", "case", "char", "const", "continue", "default", "do",
		"double", "else", "enum", "extern", "float", "for", "goto", "if",
		"int", "long", "register", "return", "short", "signed", "sizeof",
		"static", "struct", "switch", "typedef", "union", "unsigned", "void",
		"volatile", "while", "inline", "restrict", "bool", "true", "false":
		return true
	}
	return false
}
