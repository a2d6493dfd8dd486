package syntax

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer splits Lark source into tokens. Lines are statement separators;
// newlines inside brackets are ignored, matching the usual Python rule.
type Lexer struct {
	src   string
	pos   int
	line  int
	col   int
	depth int // bracket nesting

	errs []*Error
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Errors returns the lexical errors encountered so far.
func (l *Lexer) Errors() []*Error {
	return l.errs
}

func (l *Lexer) errorf(pos Pos, format string, args ...any) {
	l.errs = append(l.errs, newErrorf(Span{Start: pos, End: l.here()}, format, args...))
}

func (l *Lexer) here() Pos {
	return Pos{Line: l.line, Column: l.col}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

func (l *Lexer) peek2() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.src[l.pos:])
	if l.pos+size >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos+size:])
	return r
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// Next returns the next token, or a TokenEOF token at end of input.
func (l *Lexer) Next() Token {
	for {
		r := l.peek()
		switch {
		case r == 0:
			return Token{Kind: TokenEOF, Span: Span{Start: l.here(), End: l.here()}}
		case r == '#':
			for l.peek() != 0 && l.peek() != '\n' {
				l.advance()
			}
			continue
		case r == '\n':
			start := l.here()
			l.advance()
			if l.depth > 0 {
				continue
			}
			return Token{Kind: TokenNewline, Text: "\n", Span: Span{Start: start, End: l.here()}}
		case r == '\\' && l.peek2() == '\n':
			l.advance()
			l.advance()
			continue
		case r == ' ' || r == '\t' || r == '\r':
			l.advance()
			continue
		}
		break
	}

	start := l.here()
	r := l.peek()

	switch {
	case isNameStart(r):
		return l.lexNameOrKeyword(start)
	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peek2())):
		return l.lexNumber(start)
	case r == '"' || r == '\'':
		return l.lexString(start, false)
	}

	l.advance()
	kind, text := l.lexOperator(r)
	if kind == TokenEOF {
		l.errorf(start, "unexpected character %q", r)
		return l.Next()
	}
	switch kind {
	case TokenLParen, TokenLBracket, TokenLBrace:
		l.depth++
	case TokenRParen, TokenRBracket, TokenRBrace:
		if l.depth > 0 {
			l.depth--
		}
	}
	return Token{Kind: kind, Text: text, Span: Span{Start: start, End: l.here()}}
}

func (l *Lexer) lexNameOrKeyword(start Pos) Token {
	var sb strings.Builder
	for isNameContinue(l.peek()) {
		sb.WriteRune(l.advance())
	}
	text := sb.String()

	// b"..." is a bytes literal
	if text == "b" && (l.peek() == '"' || l.peek() == '\'') {
		return l.lexString(start, true)
	}

	if kind, ok := keywords[text]; ok {
		return Token{Kind: kind, Text: text, Span: Span{Start: start, End: l.here()}}
	}
	return Token{Kind: TokenName, Text: text, Span: Span{Start: start, End: l.here()}}
}

func (l *Lexer) lexNumber(start Pos) Token {
	var sb strings.Builder
	kind := TokenInt

	if l.peek() == '0' && (l.peek2() == 'x' || l.peek2() == 'X') {
		sb.WriteRune(l.advance())
		sb.WriteRune(l.advance())
		for isHexDigit(l.peek()) {
			sb.WriteRune(l.advance())
		}
		return Token{Kind: TokenInt, Text: sb.String(), Span: Span{Start: start, End: l.here()}}
	}

	for unicode.IsDigit(l.peek()) {
		sb.WriteRune(l.advance())
	}
	if l.peek() == '.' && !isNameStart(l.peek2()) {
		kind = TokenFloat
		sb.WriteRune(l.advance())
		for unicode.IsDigit(l.peek()) {
			sb.WriteRune(l.advance())
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		kind = TokenFloat
		sb.WriteRune(l.advance())
		if l.peek() == '+' || l.peek() == '-' {
			sb.WriteRune(l.advance())
		}
		for unicode.IsDigit(l.peek()) {
			sb.WriteRune(l.advance())
		}
	}
	return Token{Kind: kind, Text: sb.String(), Span: Span{Start: start, End: l.here()}}
}

func (l *Lexer) lexString(start Pos, bytes bool) Token {
	quote := l.advance()
	var sb strings.Builder
	for {
		r := l.peek()
		if r == 0 || r == '\n' {
			l.errorf(start, "unterminated string literal")
			break
		}
		l.advance()
		if r == quote {
			break
		}
		if r == '\\' {
			esc := l.peek()
			if esc == 0 {
				l.errorf(start, "unterminated string literal")
				break
			}
			l.advance()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\', '"', '\'':
				sb.WriteRune(esc)
			default:
				sb.WriteRune('\\')
				sb.WriteRune(esc)
			}
			continue
		}
		sb.WriteRune(r)
	}
	kind := TokenString
	if bytes {
		kind = TokenBytes
	}
	return Token{Kind: kind, Text: sb.String(), Span: Span{Start: start, End: l.here()}}
}

func (l *Lexer) lexOperator(r rune) (TokenKind, string) {
	two := func(next rune, twoKind TokenKind, oneKind TokenKind) (TokenKind, string) {
		if l.peek() == next {
			l.advance()
			return twoKind, string(r) + string(next)
		}
		return oneKind, string(r)
	}

	switch r {
	case '+':
		return TokenPlus, "+"
	case '-':
		return TokenMinus, "-"
	case '*':
		return TokenStar, "*"
	case '/':
		return two('/', TokenSlashSlash, TokenSlash)
	case '%':
		return TokenPercent, "%"
	case '~':
		return TokenTilde, "~"
	case '|':
		return TokenPipe, "|"
	case '&':
		return TokenAmp, "&"
	case '^':
		return TokenCaret, "^"
	case '<':
		if l.peek() == '<' {
			l.advance()
			return TokenLtLt, "<<"
		}
		return two('=', TokenLe, TokenLt)
	case '>':
		if l.peek() == '>' {
			l.advance()
			return TokenGtGt, ">>"
		}
		return two('=', TokenGe, TokenGt)
	case '=':
		return two('=', TokenEqEq, TokenEq)
	case '!':
		if l.peek() == '=' {
			l.advance()
			return TokenNe, "!="
		}
		return TokenEOF, ""
	case '.':
		return TokenDot, "."
	case ',':
		return TokenComma, ","
	case ':':
		return TokenColon, ":"
	case ';':
		return TokenSemi, ";"
	case '(':
		return TokenLParen, "("
	case ')':
		return TokenRParen, ")"
	case '[':
		return TokenLBracket, "["
	case ']':
		return TokenRBracket, "]"
	case '{':
		return TokenLBrace, "{"
	case '}':
		return TokenRBrace, "}"
	}
	return TokenEOF, ""
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameContinue(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r)
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
