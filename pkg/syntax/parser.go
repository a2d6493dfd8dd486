package syntax

import "fmt"

// Parse parses a Lark source file. The returned File always covers whatever
// parsed successfully; parse errors are collected in File.Errors so callers
// can run analysis over partial input.
func Parse(filename string, src []byte) *File {
	lex := NewLexer(string(src))
	p := &parser{lex: lex}
	p.next()

	file := &File{Filename: filename}
	for p.tok.Kind != TokenEOF {
		if p.tok.Kind == TokenNewline || p.tok.Kind == TokenSemi {
			p.next()
			continue
		}
		stmt := p.parseStmt()
		if stmt != nil {
			file.Stmts = append(file.Stmts, stmt)
		}
		if p.failed {
			p.recoverToLineEnd()
		}
	}

	file.Errors = append(file.Errors, lex.Errors()...)
	file.Errors = append(file.Errors, p.errs...)
	return file
}

type parser struct {
	lex    *Lexer
	tok    Token
	errs   []*Error
	failed bool // current statement already reported an error
}

func (p *parser) next() {
	p.tok = p.lex.Next()
}

func (p *parser) errorf(span Span, format string, args ...any) {
	if !p.failed {
		p.errs = append(p.errs, newErrorf(span, format, args...))
		p.failed = true
	}
}

func (p *parser) expect(kind TokenKind) Token {
	tok := p.tok
	if tok.Kind != kind {
		p.errorf(tok.Span, "expected %s, found %s", kind, describe(tok))
		return tok
	}
	p.next()
	return tok
}

func describe(tok Token) string {
	switch tok.Kind {
	case TokenEOF, TokenNewline:
		return tok.Kind.String()
	case TokenName, TokenInt, TokenFloat:
		return fmt.Sprintf("%q", tok.Text)
	case TokenString, TokenBytes:
		return tok.Kind.String()
	default:
		return fmt.Sprintf("%q", tok.Text)
	}
}

func (p *parser) recoverToLineEnd() {
	for p.tok.Kind != TokenNewline && p.tok.Kind != TokenEOF {
		p.next()
	}
	p.failed = false
}

func (p *parser) parseStmt() Stmt {
	if p.tok.Kind == TokenFor {
		return p.parseForStmt()
	}
	return p.parseSimpleStmt()
}

// parseSimpleStmt parses an assignment or a bare expression statement. A
// parse failure keeps whatever prefix parsed; editors ask about incomplete
// lines (`xs.`) all the time.
func (p *parser) parseSimpleStmt() Stmt {
	lhs := p.parseExprList()
	if p.failed {
		return &ExprStmt{X: lhs}
	}
	if p.tok.Kind == TokenEq {
		p.next()
		rhs := p.parseExpr()
		return &AssignStmt{Lhs: lhs, Rhs: rhs}
	}
	return &ExprStmt{X: lhs}
}

// parseForStmt parses `for targets in expr: simple (; simple)*`. Lark only
// allows a same-line suite of simple statements.
func (p *parser) parseForStmt() Stmt {
	forPos := p.tok.Span.Start
	p.next()

	var targets []Expr
	targets = append(targets, p.parsePrimaryTarget())
	for p.tok.Kind == TokenComma {
		p.next()
		targets = append(targets, p.parsePrimaryTarget())
	}
	if p.failed {
		return nil
	}

	p.expect(TokenIn)
	iterable := p.parseExpr()
	p.expect(TokenColon)
	if p.failed {
		return nil
	}

	var body []Stmt
	for p.tok.Kind != TokenNewline && p.tok.Kind != TokenEOF {
		stmt := p.parseSimpleStmt()
		if p.failed {
			return nil
		}
		body = append(body, stmt)
		if p.tok.Kind == TokenSemi {
			p.next()
			continue
		}
		break
	}

	end := iterable.Span().End
	if len(body) > 0 {
		end = body[len(body)-1].Span().End
	}
	return &ForStmt{ForPos: forPos, Targets: targets, Iterable: iterable, Body: body, EndPos: end}
}

// parsePrimaryTarget parses a single loop target: a name or a parenthesized
// or bracketed destructuring pattern.
func (p *parser) parsePrimaryTarget() Expr {
	return p.parseUnary()
}

// parseExprList parses a comma-separated expression list, folding multiple
// entries into an unparenthesized TupleExpr (`a, b = ...`).
func (p *parser) parseExprList() Expr {
	first := p.parseExpr()
	if p.tok.Kind != TokenComma {
		return first
	}
	elems := []Expr{first}
	for p.tok.Kind == TokenComma {
		p.next()
		if !p.startsExpr() {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	span := Span{Start: elems[0].Span().Start, End: elems[len(elems)-1].Span().End}
	return &TupleExpr{Elems: elems, span: span}
}

func (p *parser) startsExpr() bool {
	switch p.tok.Kind {
	case TokenName, TokenInt, TokenFloat, TokenString, TokenBytes,
		TokenNone, TokenTrue, TokenFalse, TokenNot,
		TokenPlus, TokenMinus, TokenTilde,
		TokenLParen, TokenLBracket, TokenLBrace:
		return true
	}
	return false
}

func (p *parser) parseExpr() Expr {
	return p.parseOr()
}

func (p *parser) parseOr() Expr {
	x := p.parseAnd()
	for p.tok.Kind == TokenOr {
		p.next()
		y := p.parseAnd()
		x = &BinaryExpr{Op: BinOr, X: x, Y: y, span: join(x, y)}
	}
	return x
}

func (p *parser) parseAnd() Expr {
	x := p.parseNot()
	for p.tok.Kind == TokenAnd {
		p.next()
		y := p.parseNot()
		x = &BinaryExpr{Op: BinAnd, X: x, Y: y, span: join(x, y)}
	}
	return x
}

func (p *parser) parseNot() Expr {
	if p.tok.Kind == TokenNot {
		start := p.tok.Span.Start
		p.next()
		x := p.parseNot()
		return &UnaryExpr{Op: UnaryNot, X: x, span: Span{Start: start, End: x.Span().End}}
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() Expr {
	x := p.parseBitOr()
	for {
		var op BinaryOp
		switch p.tok.Kind {
		case TokenEqEq:
			op = BinEq
		case TokenNe:
			op = BinNe
		case TokenLt:
			op = BinLt
		case TokenGt:
			op = BinGt
		case TokenLe:
			op = BinLe
		case TokenGe:
			op = BinGe
		case TokenIn:
			op = BinIn
		case TokenNot:
			// `not in`
			p.next()
			if p.tok.Kind != TokenIn {
				p.errorf(p.tok.Span, "expected \"in\" after \"not\" in comparison")
				return x
			}
			op = BinNotIn
		default:
			return x
		}
		p.next()
		y := p.parseBitOr()
		x = &BinaryExpr{Op: op, X: x, Y: y, span: join(x, y)}
	}
}

func (p *parser) parseBitOr() Expr {
	x := p.parseBitXor()
	for p.tok.Kind == TokenPipe {
		p.next()
		y := p.parseBitXor()
		x = &BinaryExpr{Op: BinBitOr, X: x, Y: y, span: join(x, y)}
	}
	return x
}

func (p *parser) parseBitXor() Expr {
	x := p.parseBitAnd()
	for p.tok.Kind == TokenCaret {
		p.next()
		y := p.parseBitAnd()
		x = &BinaryExpr{Op: BinBitXor, X: x, Y: y, span: join(x, y)}
	}
	return x
}

func (p *parser) parseBitAnd() Expr {
	x := p.parseShift()
	for p.tok.Kind == TokenAmp {
		p.next()
		y := p.parseShift()
		x = &BinaryExpr{Op: BinBitAnd, X: x, Y: y, span: join(x, y)}
	}
	return x
}

func (p *parser) parseShift() Expr {
	x := p.parseAdd()
	for p.tok.Kind == TokenLtLt || p.tok.Kind == TokenGtGt {
		op := BinShiftLeft
		if p.tok.Kind == TokenGtGt {
			op = BinShiftRight
		}
		p.next()
		y := p.parseAdd()
		x = &BinaryExpr{Op: op, X: x, Y: y, span: join(x, y)}
	}
	return x
}

func (p *parser) parseAdd() Expr {
	x := p.parseMul()
	for p.tok.Kind == TokenPlus || p.tok.Kind == TokenMinus {
		op := BinAdd
		if p.tok.Kind == TokenMinus {
			op = BinSub
		}
		p.next()
		y := p.parseMul()
		x = &BinaryExpr{Op: op, X: x, Y: y, span: join(x, y)}
	}
	return x
}

func (p *parser) parseMul() Expr {
	x := p.parseUnary()
	for {
		var op BinaryOp
		switch p.tok.Kind {
		case TokenStar:
			op = BinMul
		case TokenSlash:
			op = BinDiv
		case TokenSlashSlash:
			op = BinFloorDiv
		case TokenPercent:
			op = BinMod
		default:
			return x
		}
		p.next()
		y := p.parseUnary()
		x = &BinaryExpr{Op: op, X: x, Y: y, span: join(x, y)}
	}
}

func (p *parser) parseUnary() Expr {
	var op UnaryOp
	switch p.tok.Kind {
	case TokenPlus:
		op = UnaryPlus
	case TokenMinus:
		op = UnaryMinus
	case TokenTilde:
		op = UnaryInvert
	default:
		return p.parsePostfix()
	}
	start := p.tok.Span.Start
	p.next()
	x := p.parseUnary()
	return &UnaryExpr{Op: op, X: x, span: Span{Start: start, End: x.Span().End}}
}

func (p *parser) parsePostfix() Expr {
	x := p.parsePrimary()
	for {
		switch p.tok.Kind {
		case TokenDot:
			p.next()
			name := p.expect(TokenName)
			text := name.Text
			if name.Kind != TokenName {
				// incomplete access, as in `xs.` at the cursor
				text = ""
			}
			x = &DotExpr{
				X:        x,
				Name:     text,
				NameSpan: name.Span,
				span:     Span{Start: x.Span().Start, End: name.Span.End},
			}
		case TokenLBracket:
			p.next()
			index := p.parseExpr()
			end := p.expect(TokenRBracket)
			x = &IndexExpr{X: x, Index: index, span: Span{Start: x.Span().Start, End: end.Span.End}}
		case TokenLParen:
			p.next()
			var args []Expr
			for p.tok.Kind != TokenRParen && p.tok.Kind != TokenEOF {
				// tolerate kwarg syntax by parsing `name = expr` as the value
				args = append(args, p.parseCallArg())
				if p.tok.Kind != TokenComma {
					break
				}
				p.next()
			}
			end := p.expect(TokenRParen)
			x = &CallExpr{Fn: x, Args: args, span: Span{Start: x.Span().Start, End: end.Span.End}}
		default:
			return x
		}
		if p.failed {
			return x
		}
	}
}

func (p *parser) parseCallArg() Expr {
	arg := p.parseExpr()
	if p.tok.Kind == TokenEq {
		p.next()
		return p.parseExpr()
	}
	return arg
}

func (p *parser) parsePrimary() Expr {
	tok := p.tok
	switch tok.Kind {
	case TokenName:
		p.next()
		return &NameExpr{Name: tok.Text, span: tok.Span}
	case TokenInt:
		p.next()
		return &LiteralExpr{Kind: LiteralInt, Text: tok.Text, span: tok.Span}
	case TokenFloat:
		p.next()
		return &LiteralExpr{Kind: LiteralFloat, Text: tok.Text, span: tok.Span}
	case TokenString:
		p.next()
		return &LiteralExpr{Kind: LiteralString, Text: tok.Text, span: tok.Span}
	case TokenBytes:
		p.next()
		return &LiteralExpr{Kind: LiteralBytes, Text: tok.Text, span: tok.Span}
	case TokenNone:
		p.next()
		return &LiteralExpr{Kind: LiteralNone, Text: tok.Text, span: tok.Span}
	case TokenTrue, TokenFalse:
		p.next()
		return &LiteralExpr{Kind: LiteralBool, Text: tok.Text, span: tok.Span}
	case TokenLParen:
		return p.parseParenOrTuple()
	case TokenLBracket:
		return p.parseListOrComp()
	case TokenLBrace:
		return p.parseDictOrComp()
	}
	p.errorf(tok.Span, "expected expression, found %s", describe(tok))
	p.next()
	return &LiteralExpr{Kind: LiteralNone, Text: "None", span: tok.Span}
}

func (p *parser) parseParenOrTuple() Expr {
	start := p.tok.Span.Start
	p.next()
	if p.tok.Kind == TokenRParen {
		end := p.tok.Span.End
		p.next()
		return &TupleExpr{span: Span{Start: start, End: end}}
	}

	first := p.parseExpr()
	if p.tok.Kind != TokenComma {
		end := p.expect(TokenRParen)
		return &ParenExpr{X: first, span: Span{Start: start, End: end.Span.End}}
	}

	elems := []Expr{first}
	for p.tok.Kind == TokenComma {
		p.next()
		if p.tok.Kind == TokenRParen {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	end := p.expect(TokenRParen)
	return &TupleExpr{Elems: elems, span: Span{Start: start, End: end.Span.End}}
}

func (p *parser) parseListOrComp() Expr {
	start := p.tok.Span.Start
	p.next()
	if p.tok.Kind == TokenRBracket {
		end := p.tok.Span.End
		p.next()
		return &ListExpr{span: Span{Start: start, End: end}}
	}

	first := p.parseExpr()
	if p.tok.Kind == TokenFor {
		clauses := p.parseCompClauses()
		end := p.expect(TokenRBracket)
		return &ListCompExpr{Body: first, Clauses: clauses, span: Span{Start: start, End: end.Span.End}}
	}

	elems := []Expr{first}
	for p.tok.Kind == TokenComma {
		p.next()
		if p.tok.Kind == TokenRBracket {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	end := p.expect(TokenRBracket)
	return &ListExpr{Elems: elems, span: Span{Start: start, End: end.Span.End}}
}

func (p *parser) parseDictOrComp() Expr {
	start := p.tok.Span.Start
	p.next()
	if p.tok.Kind == TokenRBrace {
		end := p.tok.Span.End
		p.next()
		return &DictExpr{span: Span{Start: start, End: end}}
	}

	key := p.parseExpr()
	p.expect(TokenColon)
	value := p.parseExpr()

	if p.tok.Kind == TokenFor {
		clauses := p.parseCompClauses()
		end := p.expect(TokenRBrace)
		return &DictCompExpr{Key: key, Value: value, Clauses: clauses, span: Span{Start: start, End: end.Span.End}}
	}

	entries := []*DictEntry{{Key: key, Value: value}}
	for p.tok.Kind == TokenComma {
		p.next()
		if p.tok.Kind == TokenRBrace {
			break
		}
		k := p.parseExpr()
		p.expect(TokenColon)
		v := p.parseExpr()
		entries = append(entries, &DictEntry{Key: k, Value: v})
	}
	end := p.expect(TokenRBrace)
	return &DictExpr{Entries: entries, span: Span{Start: start, End: end.Span.End}}
}

func (p *parser) parseCompClauses() []*CompClause {
	var clauses []*CompClause
	for {
		switch p.tok.Kind {
		case TokenFor:
			start := p.tok.Span.Start
			p.next()
			var targets []Expr
			targets = append(targets, p.parsePrimaryTarget())
			for p.tok.Kind == TokenComma {
				p.next()
				targets = append(targets, p.parsePrimaryTarget())
			}
			p.expect(TokenIn)
			iterable := p.parseOr()
			clauses = append(clauses, &CompClause{
				Targets:  targets,
				Iterable: iterable,
				span:     Span{Start: start, End: iterable.Span().End},
			})
		case TokenIf:
			start := p.tok.Span.Start
			p.next()
			cond := p.parseOr()
			clauses = append(clauses, &CompClause{
				Cond: cond,
				span: Span{Start: start, End: cond.Span().End},
			})
		default:
			return clauses
		}
		if p.failed {
			return clauses
		}
	}
}

func join(x, y Expr) Span {
	return Span{Start: x.Span().Start, End: y.Span().End}
}
