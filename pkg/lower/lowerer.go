package lower

import (
	"github.com/vito/lark/pkg/syntax"
)

type lowerer struct {
	info  *Info
	scope int
}

func (lw *lowerer) alloc(e Expr, span syntax.Span) ExprID {
	id := ExprID(len(lw.info.exprs))
	lw.info.exprs = append(lw.info.exprs, e)
	lw.info.spans = append(lw.info.spans, span)
	lw.info.exprScope = append(lw.info.exprScope, lw.scope)
	return id
}

func (lw *lowerer) pushScope() int {
	prev := lw.scope
	lw.info.scopes = append(lw.info.scopes, scope{
		parent: prev,
		decls:  make(map[string][]Declaration),
	})
	lw.scope = len(lw.info.scopes) - 1
	return prev
}

func (lw *lowerer) popScope(prev int) {
	lw.scope = prev
}

func (lw *lowerer) declare(decl Declaration) {
	sc := &lw.info.scopes[lw.scope]
	sc.decls[decl.Name] = append(sc.decls[decl.Name], decl)
}

func (lw *lowerer) bind(kind BindingKind, targets []ExprID, source ExprID) {
	lw.info.bindings = append(lw.info.bindings, Binding{
		Kind:    kind,
		Targets: targets,
		Source:  source,
	})
	lw.info.bindingOf[source] = len(lw.info.bindings) - 1
}

func (lw *lowerer) lowerStmt(stmt syntax.Stmt) {
	switch s := stmt.(type) {
	case *syntax.AssignStmt:
		lhs := lw.lowerExpr(s.Lhs)
		rhs := lw.lowerExpr(s.Rhs)
		lw.bind(BindAssign, []ExprID{lhs}, rhs)
		lw.declareTargets(lhs, rhs)
	case *syntax.ForStmt:
		targets := make([]ExprID, len(s.Targets))
		for i, target := range s.Targets {
			targets[i] = lw.lowerExpr(target)
		}
		iterable := lw.lowerExpr(s.Iterable)
		lw.bind(BindFor, targets, iterable)
		for _, target := range targets {
			lw.declareTargets(target, iterable)
		}
		for _, body := range s.Body {
			lw.lowerStmt(body)
		}
	case *syntax.ExprStmt:
		lw.lowerExpr(s.X)
	}
}

// declareTargets declares every name inside a (possibly destructuring)
// assignment target, all bound to the same source expression.
func (lw *lowerer) declareTargets(target ExprID, source ExprID) {
	switch e := lw.info.exprs[target].(type) {
	case *Name:
		lw.declare(Declaration{
			Kind:   DeclVariable,
			Name:   e.Name,
			Expr:   target,
			Source: source,
		})
	case *List:
		for _, elem := range e.Elems {
			lw.declareTargets(elem, source)
		}
	case *Tuple:
		for _, elem := range e.Elems {
			lw.declareTargets(elem, source)
		}
	case *Paren:
		lw.declareTargets(e.X, source)
	}
}

func (lw *lowerer) lowerExpr(expr syntax.Expr) ExprID {
	switch e := expr.(type) {
	case *syntax.NameExpr:
		return lw.alloc(&Name{Name: e.Name}, e.Span())
	case *syntax.LiteralExpr:
		return lw.alloc(&Literal{Kind: e.Kind}, e.Span())
	case *syntax.ListExpr:
		elems := lw.lowerExprs(e.Elems)
		return lw.alloc(&List{Elems: elems}, e.Span())
	case *syntax.TupleExpr:
		elems := lw.lowerExprs(e.Elems)
		return lw.alloc(&Tuple{Elems: elems}, e.Span())
	case *syntax.ParenExpr:
		x := lw.lowerExpr(e.X)
		return lw.alloc(&Paren{X: x}, e.Span())
	case *syntax.DictExpr:
		entries := make([]DictEntry, len(e.Entries))
		for i, entry := range e.Entries {
			entries[i] = DictEntry{
				Key:   lw.lowerExpr(entry.Key),
				Value: lw.lowerExpr(entry.Value),
			}
		}
		return lw.alloc(&Dict{Entries: entries}, e.Span())
	case *syntax.ListCompExpr:
		prev := lw.pushScope()
		clauses := lw.lowerClauses(e.Clauses)
		body := lw.lowerExpr(e.Body)
		lw.popScope(prev)
		return lw.alloc(&ListComp{Body: body, Clauses: clauses}, e.Span())
	case *syntax.DictCompExpr:
		prev := lw.pushScope()
		clauses := lw.lowerClauses(e.Clauses)
		key := lw.lowerExpr(e.Key)
		value := lw.lowerExpr(e.Value)
		lw.popScope(prev)
		return lw.alloc(&DictComp{Key: key, Value: value, Clauses: clauses}, e.Span())
	case *syntax.UnaryExpr:
		x := lw.lowerExpr(e.X)
		return lw.alloc(&Unary{Op: e.Op, X: x}, e.Span())
	case *syntax.BinaryExpr:
		x := lw.lowerExpr(e.X)
		y := lw.lowerExpr(e.Y)
		return lw.alloc(&Binary{Op: e.Op, X: x, Y: y}, e.Span())
	case *syntax.DotExpr:
		x := lw.lowerExpr(e.X)
		return lw.alloc(&Dot{X: x, Field: e.Name}, e.Span())
	case *syntax.IndexExpr:
		x := lw.lowerExpr(e.X)
		index := lw.lowerExpr(e.Index)
		return lw.alloc(&Index{X: x, Index: index}, e.Span())
	case *syntax.CallExpr:
		fn := lw.lowerExpr(e.Fn)
		args := lw.lowerExprs(e.Args)
		return lw.alloc(&Call{Fn: fn, Args: args}, e.Span())
	default:
		// unreachable with the current parser; widen rather than fail
		return lw.alloc(&Literal{Kind: syntax.LiteralNone}, expr.Span())
	}
}

func (lw *lowerer) lowerExprs(exprs []syntax.Expr) []ExprID {
	if len(exprs) == 0 {
		return nil
	}
	out := make([]ExprID, len(exprs))
	for i, e := range exprs {
		out[i] = lw.lowerExpr(e)
	}
	return out
}

func (lw *lowerer) lowerClauses(clauses []*syntax.CompClause) []CompClause {
	out := make([]CompClause, 0, len(clauses))
	for _, cl := range clauses {
		if cl.Cond != nil {
			out = append(out, CompClause{
				Targets:  nil,
				Iterable: NoExpr,
				Cond:     lw.lowerExpr(cl.Cond),
			})
			continue
		}
		iterable := lw.lowerExpr(cl.Iterable)
		targets := make([]ExprID, len(cl.Targets))
		for i, target := range cl.Targets {
			targets[i] = lw.lowerExpr(target)
		}
		lw.bind(BindComp, targets, iterable)
		for _, target := range targets {
			lw.declareTargets(target, iterable)
		}
		out = append(out, CompClause{Targets: targets, Iterable: iterable, Cond: NoExpr})
	}
	return out
}
