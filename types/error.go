package types

import (
	"fmt"

	"github.com/verve-lang/verve/lexer"
)

// Error is the single type-error kind. The first one raised unwinds to
// the driver and aborts compilation.
type Error struct {
	Span lexer.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func errf(span lexer.Span, format string, args ...any) *Error {
	return &Error{Span: span, Msg: fmt.Sprintf(format, args...)}
}
