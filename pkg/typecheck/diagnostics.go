package typecheck

import (
	"fmt"

	"github.com/vito/lark/pkg/lower"
	"github.com/vito/lark/pkg/syntax"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is a user-visible type error anchored to a source range.
type Diagnostic struct {
	File     lower.FileID
	Span     syntax.Span
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Span.Start, d.Message)
}
