package syntax

// Node is any syntax tree node.
type Node interface {
	Span() Span
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

// File is a parsed source file. Errors holds the parse and lex errors
// encountered; the statement list covers whatever parsed successfully, so
// analysis can proceed on malformed input.
type File struct {
	Filename string
	Stmts    []Stmt
	Errors   []*Error
}

// AssignStmt is `lhs = rhs`. The left side may be a name or a list/tuple
// destructuring pattern.
type AssignStmt struct {
	Lhs Expr
	Rhs Expr
}

// ForStmt is `for targets in iterable: body`, with the body restricted to
// simple statements on the same line.
type ForStmt struct {
	ForPos   Pos
	Targets  []Expr
	Iterable Expr
	Body     []Stmt
	EndPos   Pos
}

// ExprStmt is a bare expression at statement level.
type ExprStmt struct {
	X Expr
}

func (s *AssignStmt) stmtNode() {}
func (s *ForStmt) stmtNode()    {}
func (s *ExprStmt) stmtNode()   {}

func (s *AssignStmt) Span() Span {
	return Span{Start: s.Lhs.Span().Start, End: s.Rhs.Span().End}
}

func (s *ForStmt) Span() Span {
	return Span{Start: s.ForPos, End: s.EndPos}
}

func (s *ExprStmt) Span() Span {
	return s.X.Span()
}

type LiteralKind int

const (
	LiteralNone LiteralKind = iota
	LiteralBool
	LiteralInt
	LiteralFloat
	LiteralString
	LiteralBytes
)

// LiteralExpr is a scalar literal. Text is the cooked value for strings and
// bytes and the raw lexeme otherwise.
type LiteralExpr struct {
	Kind LiteralKind
	Text string
	span Span
}

// NameExpr is an identifier occurrence.
type NameExpr struct {
	Name string
	span Span
}

// ListExpr is `[a, b, c]`.
type ListExpr struct {
	Elems []Expr
	span  Span
}

// TupleExpr is `(a, b)` or a bare comma list such as an assignment target.
type TupleExpr struct {
	Elems []Expr
	span  Span
}

// DictEntry is a single `key: value` pair in a dict literal.
type DictEntry struct {
	Key   Expr
	Value Expr
}

// DictExpr is `{k: v, ...}`.
type DictExpr struct {
	Entries []*DictEntry
	span    Span
}

// CompClause is one `for targets in iterable` clause of a comprehension.
// An `if cond` clause has nil Targets and Iterable and a non-nil Cond.
type CompClause struct {
	Targets  []Expr
	Iterable Expr
	Cond     Expr
	span     Span
}

func (c *CompClause) Span() Span { return c.span }

// ListCompExpr is `[body for x in xs ...]`.
type ListCompExpr struct {
	Body    Expr
	Clauses []*CompClause
	span    Span
}

// DictCompExpr is `{k: v for x in xs ...}`.
type DictCompExpr struct {
	Key     Expr
	Value   Expr
	Clauses []*CompClause
	span    Span
}

type UnaryOp int

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
	UnaryInvert // ~
	UnaryNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryPlus:
		return "+"
	case UnaryMinus:
		return "-"
	case UnaryInvert:
		return "~"
	case UnaryNot:
		return "not"
	}
	return "?"
}

// IsArith reports whether the operator is arithmetic negation or plus.
func (op UnaryOp) IsArith() bool {
	return op == UnaryPlus || op == UnaryMinus
}

type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinFloorDiv
	BinMod
	BinBitOr
	BinBitAnd
	BinBitXor
	BinShiftLeft
	BinShiftRight
	BinEq
	BinNe
	BinLt
	BinGt
	BinLe
	BinGe
	BinIn
	BinNotIn
	BinAnd
	BinOr
)

var binOpNames = [...]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinFloorDiv: "//",
	BinMod: "%", BinBitOr: "|", BinBitAnd: "&", BinBitXor: "^",
	BinShiftLeft: "<<", BinShiftRight: ">>", BinEq: "==", BinNe: "!=",
	BinLt: "<", BinGt: ">", BinLe: "<=", BinGe: ">=", BinIn: "in",
	BinNotIn: "not in", BinAnd: "and", BinOr: "or",
}

func (op BinaryOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return "?"
}

// IsArith reports whether the operator is in the arithmetic category.
func (op BinaryOp) IsArith() bool {
	switch op {
	case BinAdd, BinSub, BinMul, BinDiv, BinFloorDiv, BinMod:
		return true
	}
	return false
}

// IsBitwise reports whether the operator is in the bitwise category.
func (op BinaryOp) IsBitwise() bool {
	switch op {
	case BinBitOr, BinBitAnd, BinBitXor, BinShiftLeft, BinShiftRight:
		return true
	}
	return false
}

// UnaryExpr is `op x`.
type UnaryExpr struct {
	Op   UnaryOp
	X    Expr
	span Span
}

// BinaryExpr is `x op y`.
type BinaryExpr struct {
	Op   BinaryOp
	X    Expr
	Y    Expr
	span Span
}

// DotExpr is `x.field`.
type DotExpr struct {
	X        Expr
	Name     string
	NameSpan Span
	span     Span
}

// IndexExpr is `x[index]`.
type IndexExpr struct {
	X     Expr
	Index Expr
	span  Span
}

// CallExpr is `fn(args...)`. Keyword arguments are carried as plain
// expressions; the engine types a call solely from its callee.
type CallExpr struct {
	Fn   Expr
	Args []Expr
	span Span
}

// ParenExpr is `(x)`.
type ParenExpr struct {
	X    Expr
	span Span
}

func (e *LiteralExpr) exprNode()  {}
func (e *NameExpr) exprNode()     {}
func (e *ListExpr) exprNode()     {}
func (e *TupleExpr) exprNode()    {}
func (e *DictExpr) exprNode()     {}
func (e *ListCompExpr) exprNode() {}
func (e *DictCompExpr) exprNode() {}
func (e *UnaryExpr) exprNode()    {}
func (e *BinaryExpr) exprNode()   {}
func (e *DotExpr) exprNode()      {}
func (e *IndexExpr) exprNode()    {}
func (e *CallExpr) exprNode()     {}
func (e *ParenExpr) exprNode()    {}

func (e *LiteralExpr) Span() Span  { return e.span }
func (e *NameExpr) Span() Span     { return e.span }
func (e *ListExpr) Span() Span     { return e.span }
func (e *TupleExpr) Span() Span    { return e.span }
func (e *DictExpr) Span() Span     { return e.span }
func (e *ListCompExpr) Span() Span { return e.span }
func (e *DictCompExpr) Span() Span { return e.span }
func (e *UnaryExpr) Span() Span    { return e.span }
func (e *BinaryExpr) Span() Span   { return e.span }
func (e *DotExpr) Span() Span      { return e.span }
func (e *IndexExpr) Span() Span    { return e.span }
func (e *CallExpr) Span() Span     { return e.span }
func (e *ParenExpr) Span() Span    { return e.span }
