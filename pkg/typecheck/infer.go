package typecheck

import (
	"fmt"

	"github.com/vito/lark/pkg/catalog"
	"github.com/vito/lark/pkg/lower"
	"github.com/vito/lark/pkg/syntax"
	"github.com/vito/lark/pkg/ty"
)

// Checker is one inference session over the shared state. It is only ever
// constructed by Global.With, which serializes sessions.
type Checker struct {
	db     Database
	store  *ty.Store
	cat    *catalog.Catalog
	global *Global
	state  *inferenceState
}

// InferAllExprs eagerly infers every expression in the file, populating
// diagnostics as a side effect.
func (c *Checker) InferAllExprs(file lower.FileID) {
	info := c.db.Lower(file)
	for id := 0; id < info.NumExprs(); id++ {
		c.InferExpr(file, lower.ExprID(id))
	}
}

// DiagnosticsForFile returns the diagnostics accumulated for file so far.
func (c *Checker) DiagnosticsForFile(file lower.FileID) []Diagnostic {
	var out []Diagnostic
	for _, diag := range c.state.diagnostics {
		if diag.File == file {
			out = append(out, diag)
		}
	}
	return out
}

// InferExpr computes the type of one expression, memoized per FileExprID.
// Memoized results are returned even under a pending cancellation; only
// the entry cost of new work observes the flag and unwinds.
func (c *Checker) InferExpr(file lower.FileID, expr lower.ExprID) *ty.Ty {
	if t, ok := c.state.typeOfExpr[FileExprID{File: file, Expr: expr}]; ok {
		return t
	}

	if c.global.cancelled.Load() {
		ThrowCancelled()
	}

	info := c.db.Lower(file)
	var t *ty.Ty
	switch e := info.Expr(expr).(type) {
	case *lower.Name:
		return c.inferName(info, file, expr, e.Name)
	case *lower.List:
		// If every element has the same type T the list is list[T];
		// otherwise list[Unknown].
		elem := c.commonType(file, e.Elems, c.store.Unknown())
		t = c.store.List(elem)
	case *lower.ListComp:
		// Element flow through comprehensions is not modeled.
		t = c.store.List(c.store.Any())
	case *lower.Dict:
		keys := make([]lower.ExprID, len(e.Entries))
		values := make([]lower.ExprID, len(e.Entries))
		for i, entry := range e.Entries {
			keys[i] = entry.Key
			values[i] = entry.Value
		}
		keyTy := c.commonType(file, keys, c.store.Any())
		valueTy := c.commonType(file, values, c.store.Unknown())
		t = c.store.Dict(keyTy, valueTy)
	case *lower.DictComp:
		t = c.store.Dict(c.store.Any(), c.store.Any())
	case *lower.Literal:
		t = c.literalType(e.Kind)
	case *lower.Unary:
		t = c.inferUnaryExpr(file, expr, e)
	case *lower.Binary:
		t = c.inferBinaryExpr(file, expr, e)
	case *lower.Dot:
		t = c.inferDotExpr(file, expr, e)
	case *lower.Index:
		t = c.inferIndexExpr(file, e)
	case *lower.Call:
		t = c.inferCallExpr(file, expr, e)
	default:
		// every other shape widens rather than fails
		t = c.store.Any()
	}
	return c.setExprType(file, expr, t)
}

func (c *Checker) inferName(info *lower.Info, file lower.FileID, expr lower.ExprID, name string) *ty.Ty {
	decls := info.ResolveName(expr, name)
	if len(decls) == 0 {
		if fn, ok := c.cat.Global(name); ok {
			subst := ty.Identity(c.store, fn.NumVars())
			return c.setExprType(file, expr, c.store.Function(fn, subst))
		}
		return c.setExprType(file, expr, c.store.Unbound())
	}

	// shadowing policy: the last reaching definition wins
	decl := decls[len(decls)-1]
	switch decl.Kind {
	case lower.DeclVariable:
		if decl.Source != lower.NoExpr {
			c.inferSourceExprAssign(file, decl.Source)
			if t, ok := c.state.typeOfExpr[FileExprID{File: file, Expr: decl.Expr}]; ok {
				return t
			}
		}
		return c.store.Unknown()
	case lower.DeclFunction, lower.DeclParameter, lower.DeclLoadItem:
		return c.setExprType(file, expr, c.store.Any())
	default:
		return c.store.Unbound()
	}
}

func (c *Checker) literalType(kind syntax.LiteralKind) *ty.Ty {
	switch kind {
	case syntax.LiteralInt:
		return c.store.Int()
	case syntax.LiteralFloat:
		return c.store.Float()
	case syntax.LiteralString:
		return c.store.String()
	case syntax.LiteralBytes:
		return c.store.Bytes()
	case syntax.LiteralBool:
		return c.store.Bool()
	default:
		return c.store.None()
	}
}

func (c *Checker) inferUnaryExpr(file lower.FileID, parent lower.ExprID, e *lower.Unary) *ty.Ty {
	operand := c.InferExpr(file, e.X)
	if operand.IsAny() {
		return c.store.Any()
	}

	unsupported := func() *ty.Ty {
		return c.addDiagnostic(file, parent, fmt.Sprintf(
			"Operator %q is not supported for type %q", e.Op, operand))
	}

	switch {
	case e.Op.IsArith():
		switch operand {
		case c.store.Int():
			return c.store.Int()
		case c.store.Float():
			return c.store.Float()
		}
		return unsupported()
	case e.Op == syntax.UnaryInvert:
		if operand == c.store.Int() {
			return c.store.Int()
		}
		return unsupported()
	default: // not
		return c.store.Bool()
	}
}

func (c *Checker) inferBinaryExpr(file lower.FileID, parent lower.ExprID, e *lower.Binary) *ty.Ty {
	lhs := c.InferExpr(file, e.X)
	rhs := c.InferExpr(file, e.Y)
	if lhs.IsAny() || rhs.IsAny() {
		return c.store.Any()
	}

	unsupported := func() *ty.Ty {
		return c.addDiagnostic(file, parent, fmt.Sprintf(
			"Operator %q not supported for types %q and %q", e.Op, lhs, rhs))
	}

	intTy, floatTy := c.store.Int(), c.store.Float()
	switch {
	case e.Op.IsArith():
		switch {
		case lhs == intTy && rhs == intTy:
			return intTy
		case (lhs == intTy || lhs == floatTy) && (rhs == intTy || rhs == floatTy):
			return floatTy
		}
		return unsupported()
	case e.Op.IsBitwise():
		if lhs == intTy && rhs == intTy {
			return intTy
		}
		return unsupported()
	default:
		// comparisons, membership and boolean combinators are always bool;
		// operand checking for them is an intentional simplification
		return c.store.Bool()
	}
}

func (c *Checker) inferDotExpr(file lower.FileID, parent lower.ExprID, e *lower.Dot) *ty.Ty {
	receiver := c.InferExpr(file, e.X)
	for _, field := range c.FieldsOf(receiver) {
		if field.Name == e.Field {
			return field.Ty
		}
	}
	if k, ok := receiver.Kind().(ty.Primitive); ok && (k == ty.Unknown || k == ty.Any) {
		return c.store.Unknown()
	}
	if e.Field == "" {
		// incomplete access; the parser already reported it
		return c.store.Unknown()
	}
	return c.addDiagnostic(file, parent, fmt.Sprintf(
		"Cannot access field %q for type %q", e.Field, receiver))
}

// Field is a class field with the receiver's structural arguments
// substituted in.
type Field struct {
	Name string
	Ty   *ty.Ty
}

// FieldsOf returns the receiver's field table, instantiating each field
// template against a substitution built from the receiver's own structural
// arguments.
func (c *Checker) FieldsOf(receiver *ty.Ty) []Field {
	class := c.cat.ClassFor(receiver.Kind())
	if class == nil {
		return nil
	}

	var subst *ty.Substitution
	switch k := receiver.Kind().(type) {
	case *ty.List:
		subst = ty.NewSubstitution(k.Elem)
	case *ty.Dict:
		subst = ty.NewSubstitution(k.Key, k.Value)
	default:
		subst = ty.NewSubstitution()
	}

	fields := class.Fields()
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = Field{
			Name: field.Name,
			Ty:   field.Ty.Substitute(c.store, subst),
		}
	}
	return out
}

func (c *Checker) inferIndexExpr(file lower.FileID, e *lower.Index) *ty.Ty {
	lhs := c.InferExpr(file, e.X)
	index := c.InferExpr(file, e.Index)

	switch k := lhs.Kind().(type) {
	case *ty.List:
		if index == c.store.Int() {
			return k.Elem
		}
		return c.addDiagnostic(file, e.X, fmt.Sprintf(
			"Cannot index list with type %q", index))
	case *ty.Dict:
		if index == k.Key {
			return k.Value
		}
		return c.addDiagnostic(file, e.X, fmt.Sprintf(
			"Cannot index dict with type %q", index))
	case ty.Primitive:
		if k == ty.Unknown || k == ty.Any {
			return c.store.Unknown()
		}
	}
	return c.addDiagnostic(file, e.X, fmt.Sprintf(
		"Type %q is not indexable", lhs))
}

func (c *Checker) inferCallExpr(file lower.FileID, parent lower.ExprID, e *lower.Call) *ty.Ty {
	callee := c.InferExpr(file, e.Fn)
	switch k := callee.Kind().(type) {
	case *ty.BuiltinFunction:
		return k.Fn.Ret().Substitute(c.store, k.Subst)
	case ty.Primitive:
		if k == ty.Unknown || k == ty.Any {
			return c.store.Unknown()
		}
	}
	return c.addDiagnostic(file, parent, fmt.Sprintf(
		"Type %q is not callable", callee))
}

// inferSourceExprAssign propagates the type of a binding's source
// expression into every binding target, locating the binding by its source
// expression id.
func (c *Checker) inferSourceExprAssign(file lower.FileID, source lower.ExprID) {
	info := c.db.Lower(file)
	binding, ok := info.Binding(source)
	if !ok {
		return
	}
	sourceTy := c.InferExpr(file, source)

	switch binding.Kind {
	case lower.BindAssign:
		for _, target := range binding.Targets {
			c.assignExprSourceTy(info, file, target, target, sourceTy)
		}
	case lower.BindFor, lower.BindComp:
		c.assignExprsSourceTy(info, file, source, binding.Targets, sourceTy)
	}
}

// assignExprSourceTy assigns sourceTy to a target expression, recursively
// destructuring list and tuple patterns.
func (c *Checker) assignExprSourceTy(info *lower.Info, file lower.FileID, root, expr lower.ExprID, sourceTy *ty.Ty) {
	switch e := info.Expr(expr).(type) {
	case *lower.Name:
		c.setExprType(file, expr, sourceTy)
	case *lower.List:
		c.assignExprsSourceTy(info, file, root, e.Elems, sourceTy)
	case *lower.Tuple:
		c.assignExprsSourceTy(info, file, root, e.Elems, sourceTy)
	case *lower.Paren:
		c.assignExprSourceTy(info, file, root, e.X, sourceTy)
	}
}

// assignExprsSourceTy distributes one element of sourceTy to each target.
// A list source supplies its element type to every target; tuple and Any
// sources supply Any; anything else is not iterable and every nested
// target is force-assigned Unknown so the cache never has a missing entry
// for a visited id.
func (c *Checker) assignExprsSourceTy(info *lower.Info, file lower.FileID, root lower.ExprID, targets []lower.ExprID, sourceTy *ty.Ty) {
	var subTy *ty.Ty
	switch k := sourceTy.Kind().(type) {
	case *ty.List:
		subTy = k.Elem
	case *ty.Tuple:
		subTy = c.store.Any()
	case ty.Primitive:
		if k == ty.Any {
			subTy = c.store.Any()
		}
	}
	if subTy == nil {
		c.addDiagnostic(file, root, fmt.Sprintf(
			"Type %q is not iterable", sourceTy))
		for _, target := range targets {
			c.assignExprUnknownRec(info, file, target)
		}
		return
	}

	for _, target := range targets {
		c.assignExprSourceTy(info, file, root, target, subTy)
	}
}

func (c *Checker) assignExprUnknownRec(info *lower.Info, file lower.FileID, expr lower.ExprID) {
	c.setExprType(file, expr, c.store.Unknown())
	info.EachChild(expr, func(child lower.ExprID) {
		c.assignExprUnknownRec(info, file, child)
	})
}

func (c *Checker) setExprType(file lower.FileID, expr lower.ExprID, t *ty.Ty) *ty.Ty {
	c.state.typeOfExpr[FileExprID{File: file, Expr: expr}] = t
	return t
}

// commonType infers every expression and returns their shared type if they
// all agree, else the default. Interning makes the agreement check pointer
// equality.
func (c *Checker) commonType(file lower.FileID, exprs []lower.ExprID, def *ty.Ty) *ty.Ty {
	if len(exprs) == 0 {
		return def
	}
	first := c.InferExpr(file, exprs[0])
	for _, expr := range exprs[1:] {
		if c.InferExpr(file, expr) != first {
			return def
		}
	}
	return first
}

// addDiagnostic records a diagnostic anchored at expr and returns Unknown.
// If the expression has no source range the diagnostic is dropped and
// Unknown is still returned.
func (c *Checker) addDiagnostic(file lower.FileID, expr lower.ExprID, message string) *ty.Ty {
	info := c.db.Lower(file)
	span, ok := info.Span(expr)
	if !ok {
		return c.store.Unknown()
	}
	c.state.diagnostics = append(c.state.diagnostics, Diagnostic{
		File:     file,
		Span:     span,
		Severity: SeverityError,
		Message:  message,
	})
	return c.store.Unknown()
}
