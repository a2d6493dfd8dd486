package syntax

import "fmt"

// Pos is a 1-based line/column position in a source file.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p comes before q in the file.
func (p Pos) Before(q Pos) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Column < q.Column)
}

// Span is a half-open [Start, End) source range.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Contains reports whether pos falls within the span.
func (s Span) Contains(pos Pos) bool {
	if pos.Line < s.Start.Line || pos.Line > s.End.Line {
		return false
	}
	if pos.Line == s.Start.Line && pos.Column < s.Start.Column {
		return false
	}
	if pos.Line == s.End.Line && pos.Column >= s.End.Column {
		return false
	}
	return true
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenNewline
	TokenName
	TokenInt
	TokenFloat
	TokenString
	TokenBytes

	// keywords
	TokenNone
	TokenTrue
	TokenFalse
	TokenNot
	TokenAnd
	TokenOr
	TokenIn
	TokenFor
	TokenIf
	TokenElse

	// punctuation and operators
	TokenPlus      // +
	TokenMinus     // -
	TokenStar      // *
	TokenSlash     // /
	TokenSlashSlash
	TokenPercent   // %
	TokenTilde     // ~
	TokenPipe      // |
	TokenAmp       // &
	TokenCaret     // ^
	TokenLtLt      // <<
	TokenGtGt      // >>
	TokenLt        // <
	TokenGt        // >
	TokenLe        // <=
	TokenGe        // >=
	TokenEqEq      // ==
	TokenNe        // !=
	TokenEq        // =
	TokenDot       // .
	TokenComma     // ,
	TokenColon     // :
	TokenSemi      // ;
	TokenLParen    // (
	TokenRParen    // )
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenLBrace    // {
	TokenRBrace    // }
)

var tokenNames = map[TokenKind]string{
	TokenEOF:        "end of file",
	TokenNewline:    "newline",
	TokenName:       "identifier",
	TokenInt:        "int literal",
	TokenFloat:      "float literal",
	TokenString:     "string literal",
	TokenBytes:      "bytes literal",
	TokenNone:       "None",
	TokenTrue:       "True",
	TokenFalse:      "False",
	TokenNot:        "not",
	TokenAnd:        "and",
	TokenOr:         "or",
	TokenIn:         "in",
	TokenFor:        "for",
	TokenIf:         "if",
	TokenElse:       "else",
	TokenPlus:       "+",
	TokenMinus:      "-",
	TokenStar:       "*",
	TokenSlash:      "/",
	TokenSlashSlash: "//",
	TokenPercent:    "%",
	TokenTilde:      "~",
	TokenPipe:       "|",
	TokenAmp:        "&",
	TokenCaret:      "^",
	TokenLtLt:       "<<",
	TokenGtGt:       ">>",
	TokenLt:         "<",
	TokenGt:         ">",
	TokenLe:         "<=",
	TokenGe:         ">=",
	TokenEqEq:       "==",
	TokenNe:         "!=",
	TokenEq:         "=",
	TokenDot:        ".",
	TokenComma:      ",",
	TokenColon:      ":",
	TokenSemi:       ";",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBracket:   "[",
	TokenRBracket:   "]",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(k))
}

var keywords = map[string]TokenKind{
	"None":  TokenNone,
	"True":  TokenTrue,
	"False": TokenFalse,
	"not":   TokenNot,
	"and":   TokenAnd,
	"or":    TokenOr,
	"in":    TokenIn,
	"for":   TokenFor,
	"if":    TokenIf,
	"else":  TokenElse,
}

// Token is a single lexeme with its source span.
type Token struct {
	Kind TokenKind
	Text string
	Span Span
}
