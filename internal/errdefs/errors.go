package errdefs

import (
	"fmt"

	"github.com/evanlang2/evanlang2c/internal/ast"
)

// CompileError is the single structured error type raised by every phase of
// evanlang2c. All such errors are fatal: the first one raised
// aborts compilation and is reported on stderr, and no partial C output is
// written.
type CompileError struct {
	Code    string
	Pos     ast.Pos
	Message string
	Cause   error // wrapped inner error, e.g. the innermost unification conflict
}

func (e *CompileError) Error() string {
	if e.Pos.Line != 0 {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Cause }

// New constructs a CompileError with no wrapped cause.
func New(code string, pos ast.Pos, format string, args ...interface{}) *CompileError {
	return &CompileError{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs a CompileError chained to an inner cause, preserving the
// innermost conflict, mirroring how failed unifications chain causes.
func Wrap(code string, pos ast.Pos, cause error, format string, args ...interface{}) *CompileError {
	return &CompileError{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...), Cause: cause}
}
