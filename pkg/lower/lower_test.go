package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/lark/pkg/syntax"
)

func lowerSrc(t *testing.T, src string) *Info {
	t.Helper()
	file := syntax.Parse("test.lark", []byte(src))
	require.Empty(t, file.Errors)
	return Lower(0, file)
}

// findName returns the ExprID of the idx'th occurrence of name.
func findName(t *testing.T, info *Info, name string, idx int) ExprID {
	t.Helper()
	seen := 0
	for i := 0; i < info.NumExprs(); i++ {
		if n, ok := info.Expr(ExprID(i)).(*Name); ok && n.Name == name {
			if seen == idx {
				return ExprID(i)
			}
			seen++
		}
	}
	t.Fatalf("name %q occurrence %d not found", name, idx)
	return NoExpr
}

func TestLowerShapes(t *testing.T) {
	info := lowerSrc(t, "x = [1, 2]")

	var list *List
	for i := 0; i < info.NumExprs(); i++ {
		if l, ok := info.Expr(ExprID(i)).(*List); ok {
			list = l
		}
	}
	require.NotNil(t, list)
	require.Len(t, list.Elems, 2)

	lit, ok := info.Expr(list.Elems[0]).(*Literal)
	require.True(t, ok)
	assert.Equal(t, syntax.LiteralInt, lit.Kind)
}

func TestLowerSpans(t *testing.T) {
	info := lowerSrc(t, "foo = bar")

	id := findName(t, info, "bar", 0)
	span, ok := info.Span(id)
	require.True(t, ok)
	assert.Equal(t, syntax.Pos{Line: 1, Column: 7}, span.Start)
	assert.Equal(t, syntax.Pos{Line: 1, Column: 10}, span.End)
}

func TestExprAt(t *testing.T) {
	info := lowerSrc(t, "x = [inner]")

	t.Run("innermost wins", func(t *testing.T) {
		id := info.ExprAt(syntax.Pos{Line: 1, Column: 6})
		require.NotEqual(t, NoExpr, id)
		name, ok := info.Expr(id).(*Name)
		require.True(t, ok)
		assert.Equal(t, "inner", name.Name)
	})

	t.Run("outer expression outside the element", func(t *testing.T) {
		id := info.ExprAt(syntax.Pos{Line: 1, Column: 5})
		require.NotEqual(t, NoExpr, id)
		_, ok := info.Expr(id).(*List)
		assert.True(t, ok)
	})

	t.Run("nothing at blank position", func(t *testing.T) {
		assert.Equal(t, NoExpr, info.ExprAt(syntax.Pos{Line: 2, Column: 1}))
	})
}

func TestBindings(t *testing.T) {
	t.Run("assignment", func(t *testing.T) {
		info := lowerSrc(t, "x = 1")
		src := ExprID(-1)
		for i := 0; i < info.NumExprs(); i++ {
			if _, ok := info.Expr(ExprID(i)).(*Literal); ok {
				src = ExprID(i)
			}
		}
		require.NotEqual(t, NoExpr, src)

		b, ok := info.Binding(src)
		require.True(t, ok)
		assert.Equal(t, BindAssign, b.Kind)
		require.Len(t, b.Targets, 1)
	})

	t.Run("for loop", func(t *testing.T) {
		info := lowerSrc(t, "for x in xs: x")
		iterable := findName(t, info, "xs", 0)

		b, ok := info.Binding(iterable)
		require.True(t, ok)
		assert.Equal(t, BindFor, b.Kind)
	})

	t.Run("non-source expr has no binding", func(t *testing.T) {
		info := lowerSrc(t, "x = 1\nx")
		use := findName(t, info, "x", 1)
		_, ok := info.Binding(use)
		assert.False(t, ok)
	})
}

func TestResolveName(t *testing.T) {
	t.Run("assignment reaches later use", func(t *testing.T) {
		info := lowerSrc(t, "x = 1\nx")
		use := findName(t, info, "x", 1)

		decls := info.ResolveName(use, "x")
		require.Len(t, decls, 1)
		assert.Equal(t, DeclVariable, decls[0].Kind)
		require.NotEqual(t, NoExpr, decls[0].Source)
	})

	t.Run("unresolved name", func(t *testing.T) {
		info := lowerSrc(t, "y")
		use := findName(t, info, "y", 0)
		assert.Empty(t, info.ResolveName(use, "y"))
	})

	t.Run("multiple assignments in source order", func(t *testing.T) {
		info := lowerSrc(t, "x = 1\nx = \"a\"\nx")
		use := findName(t, info, "x", 2)

		decls := info.ResolveName(use, "x")
		require.Len(t, decls, 2)
	})

	t.Run("for target visible in body", func(t *testing.T) {
		info := lowerSrc(t, "for x in xs: x")
		use := findName(t, info, "x", 1)

		decls := info.ResolveName(use, "x")
		require.Len(t, decls, 1)
		assert.Equal(t, DeclVariable, decls[0].Kind)
	})

	t.Run("comprehension variable scoped to the comprehension", func(t *testing.T) {
		info := lowerSrc(t, "ys = [x for x in xs]\nx")
		inside := findName(t, info, "x", 1) // the body occurrence
		outside := findName(t, info, "x", 2)

		assert.NotEmpty(t, info.ResolveName(inside, "x"))
		assert.Empty(t, info.ResolveName(outside, "x"))
	})

	t.Run("destructuring targets each declare", func(t *testing.T) {
		info := lowerSrc(t, "a, b = (1, 2)\na\nb")
		useA := findName(t, info, "a", 1)
		useB := findName(t, info, "b", 1)

		assert.NotEmpty(t, info.ResolveName(useA, "a"))
		assert.NotEmpty(t, info.ResolveName(useB, "b"))
	})
}

func TestEachChild(t *testing.T) {
	info := lowerSrc(t, "f(a, b)")

	var call ExprID = NoExpr
	for i := 0; i < info.NumExprs(); i++ {
		if _, ok := info.Expr(ExprID(i)).(*Call); ok {
			call = ExprID(i)
		}
	}
	require.NotEqual(t, NoExpr, call)

	var children int
	info.EachChild(call, func(ExprID) { children++ })
	assert.Equal(t, 3, children) // callee + two args
}
