package syntax

import "fmt"

// Error is a lex or parse error anchored to a source span.
type Error struct {
	Span Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Span.Start, e.Msg)
}

func newErrorf(span Span, format string, args ...any) *Error {
	return &Error{Span: span, Msg: fmt.Sprintf(format, args...)}
}
