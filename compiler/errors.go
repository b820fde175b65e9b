package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Compilation faults
// ---------------------------------------------------------------------------

// Error is a user-visible compilation fault with a source location.
// It formats in the path:line:col style editors can jump to.
type Error struct {
	Path string
	Pos  Position
	Msg  string
}

func (e *Error) Error() string {
	path := e.Path
	if path == "" {
		path = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: error: %s", path, e.Pos.Line, e.Pos.Column, e.Msg)
}

// errAt builds a compilation fault at the given position. The path is filled
// in by the caller that knows which file is being compiled.
func errAt(pos Position, format string, args ...interface{}) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// internalErr reports an internal-consistency fault: a defect in the
// compiler itself (an unhandled AST variant reaching the lowering engine),
// never a user error.
func internalErr(format string, args ...interface{}) error {
	return fmt.Errorf("internal: "+format, args...)
}
