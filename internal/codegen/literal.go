package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/typedast"
)

// lowerLitValue spells a non-Unit typed literal as a C expression.
// LitString is handled defensively even though literalType() does not yet
// assign it a type anywhere reachable from the surface grammar: should a
// future literal form reach here, escaping it properly closes one of the
// two questions left open about literal safety, in favor of never
// emitting an attacker/author-controlled byte unescaped into generated C.
func lowerLitValue(n *typedast.Lit) string {
	switch n.Kind {
	case ast.LitI64, ast.LitCInt:
		return strconv.FormatInt(n.I64, 10)
	case ast.LitF64:
		s := strconv.FormatFloat(n.F64, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case ast.LitBool:
		if n.Bool {
			return "true"
		}
		return "false"
	case ast.LitChar:
		return "'" + escapeCChar(n.Char) + "'"
	case ast.LitString:
		return `"` + escapeCString(n.Str) + `"`
	default:
		return "0"
	}
}

func escapeCChar(r rune) string {
	switch r {
	case '\\':
		return `\\`
	case '\'':
		return `\'`
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	}
	if r < 0x20 || r > 0x7e {
		// Octal, not \x: a hex escape in C consumes every following hex
		// digit, so \xNN followed by another hex-looking character would
		// silently swallow it. \ooo is fixed-width and has no such hazard.
		// Char is a one-byte C char, so mask to a byte before formatting.
		return fmt.Sprintf(`\%03o`, byte(r))
	}
	return string(r)
}

// escapeCString escapes byte-by-byte (not rune-by-rune): the source text
// is UTF-8, and splitting a multi-byte rune into one \ooo escape per byte
// is exactly how C reconstructs it in a plain `char *`, whereas escaping
// per-rune would mangle anything outside ASCII.
func escapeCString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c > 0x7e {
				fmt.Fprintf(&b, `\%03o`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}
