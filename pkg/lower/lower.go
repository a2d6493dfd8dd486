// Package lower flattens a parsed file into an index-addressed expression
// graph: the inference engine recurses over ExprIDs rather than syntax
// nodes, and a bidirectional source map links the two for diagnostics and
// position lookups.
package lower

import (
	"github.com/vito/lark/pkg/syntax"
)

// FileID identifies a source file within an analysis session.
type FileID int32

// ExprID addresses one lowered expression within its file.
type ExprID int32

// NoExpr marks an absent expression reference.
const NoExpr ExprID = -1

// Expr is a lowered expression node. Children are ExprIDs into the same
// Info.
type Expr interface {
	exprNode()
}

type Name struct {
	Name string
}

type Literal struct {
	Kind syntax.LiteralKind
}

type List struct {
	Elems []ExprID
}

type Tuple struct {
	Elems []ExprID
}

type Paren struct {
	X ExprID
}

type DictEntry struct {
	Key   ExprID
	Value ExprID
}

type Dict struct {
	Entries []DictEntry
}

type CompClause struct {
	Targets  []ExprID
	Iterable ExprID
	Cond     ExprID // NoExpr unless this is an `if` clause
}

type ListComp struct {
	Body    ExprID
	Clauses []CompClause
}

type DictComp struct {
	Key     ExprID
	Value   ExprID
	Clauses []CompClause
}

type Unary struct {
	Op syntax.UnaryOp
	X  ExprID
}

type Binary struct {
	Op syntax.BinaryOp
	X  ExprID
	Y  ExprID
}

type Dot struct {
	X     ExprID
	Field string
}

type Index struct {
	X     ExprID
	Index ExprID
}

type Call struct {
	Fn   ExprID
	Args []ExprID
}

func (*Name) exprNode()     {}
func (*Literal) exprNode()  {}
func (*List) exprNode()     {}
func (*Tuple) exprNode()    {}
func (*Paren) exprNode()    {}
func (*Dict) exprNode()     {}
func (*ListComp) exprNode() {}
func (*DictComp) exprNode() {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Dot) exprNode()      {}
func (*Index) exprNode()    {}
func (*Call) exprNode()     {}

// BindingKind distinguishes the syntactic parents that bind names to a
// source expression.
type BindingKind int

const (
	BindAssign BindingKind = iota
	BindFor
	BindComp
)

// Binding records one binding occurrence: the target expression(s) and the
// right-hand/iterable source they draw their types from.
type Binding struct {
	Kind    BindingKind
	Targets []ExprID
	Source  ExprID
}

type DeclKind int

const (
	DeclVariable DeclKind = iota
	DeclFunction
	DeclParameter
	DeclLoadItem
)

// Declaration is one reaching definition of a name.
type Declaration struct {
	Kind DeclKind
	Name string
	// Expr is the name occurrence at the binding site.
	Expr ExprID
	// Source is the bound source expression, or NoExpr for declaration
	// kinds that carry none.
	Source ExprID
}

type scope struct {
	parent int // -1 for the module scope
	decls  map[string][]Declaration
}

// Info is the lowered form of one file.
type Info struct {
	File FileID

	exprs     []Expr
	spans     []syntax.Span
	exprScope []int

	scopes    []scope
	bindings  []Binding
	bindingOf map[ExprID]int // source expr -> binding index
}

// Lower builds the expression graph for a parsed file.
func Lower(file FileID, f *syntax.File) *Info {
	lw := &lowerer{
		info: &Info{
			File:      file,
			bindingOf: make(map[ExprID]int),
		},
	}
	lw.info.scopes = []scope{{parent: -1, decls: make(map[string][]Declaration)}}
	for _, stmt := range f.Stmts {
		lw.lowerStmt(stmt)
	}
	return lw.info
}

// Expr returns the lowered expression for id.
func (info *Info) Expr(id ExprID) Expr {
	return info.exprs[id]
}

// NumExprs returns the number of lowered expressions; valid ExprIDs are
// 0..NumExprs-1.
func (info *Info) NumExprs() int {
	return len(info.exprs)
}

// Span maps an expression back to its source range.
func (info *Info) Span(id ExprID) (syntax.Span, bool) {
	if int(id) >= len(info.spans) {
		return syntax.Span{}, false
	}
	return info.spans[id], true
}

// ExprAt returns the innermost expression whose span contains pos, or
// NoExpr.
func (info *Info) ExprAt(pos syntax.Pos) ExprID {
	best := NoExpr
	for id, span := range info.spans {
		if !span.Contains(pos) {
			continue
		}
		if best == NoExpr || narrower(span, info.spans[best]) {
			best = ExprID(id)
		}
	}
	return best
}

// narrower reports whether span a is contained within span b.
func narrower(a, b syntax.Span) bool {
	startsAfter := b.Start.Before(a.Start) || a.Start == b.Start
	endsBefore := a.End.Before(b.End) || a.End == b.End
	return startsAfter && endsBefore
}

// Binding returns the binding whose source expression is id, if any. This
// is the lowered equivalent of walking to an assignment's syntactic parent.
func (info *Info) Binding(source ExprID) (Binding, bool) {
	i, ok := info.bindingOf[source]
	if !ok {
		return Binding{}, false
	}
	return info.bindings[i], true
}

// ResolveName resolves name as seen from the expression at, walking lexical
// scopes inside-out. The returned declarations are in source order; the
// last one is the most recent reaching definition.
func (info *Info) ResolveName(at ExprID, name string) []Declaration {
	sc := 0
	if int(at) < len(info.exprScope) {
		sc = info.exprScope[at]
	}
	for sc >= 0 {
		if decls := info.scopes[sc].decls[name]; len(decls) > 0 {
			return decls
		}
		sc = info.scopes[sc].parent
	}
	return nil
}

// EachChild invokes f for every direct child of the expression.
func (info *Info) EachChild(id ExprID, f func(ExprID)) {
	switch e := info.exprs[id].(type) {
	case *List:
		for _, elem := range e.Elems {
			f(elem)
		}
	case *Tuple:
		for _, elem := range e.Elems {
			f(elem)
		}
	case *Paren:
		f(e.X)
	case *Dict:
		for _, entry := range e.Entries {
			f(entry.Key)
			f(entry.Value)
		}
	case *ListComp:
		f(e.Body)
		eachClauseChild(e.Clauses, f)
	case *DictComp:
		f(e.Key)
		f(e.Value)
		eachClauseChild(e.Clauses, f)
	case *Unary:
		f(e.X)
	case *Binary:
		f(e.X)
		f(e.Y)
	case *Dot:
		f(e.X)
	case *Index:
		f(e.X)
		f(e.Index)
	case *Call:
		f(e.Fn)
		for _, arg := range e.Args {
			f(arg)
		}
	}
}

func eachClauseChild(clauses []CompClause, f func(ExprID)) {
	for _, cl := range clauses {
		for _, target := range cl.Targets {
			f(target)
		}
		if cl.Iterable != NoExpr {
			f(cl.Iterable)
		}
		if cl.Cond != NoExpr {
			f(cl.Cond)
		}
	}
}
