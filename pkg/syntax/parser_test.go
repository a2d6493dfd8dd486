package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, src string) Stmt {
	t.Helper()
	file := Parse("test.lark", []byte(src))
	require.Empty(t, file.Errors)
	require.Len(t, file.Stmts, 1)
	return file.Stmts[0]
}

func parseExpr(t *testing.T, src string) Expr {
	t.Helper()
	stmt, ok := parseOne(t, src).(*ExprStmt)
	require.True(t, ok, "expected expression statement, got %T", stmt)
	return stmt.X
}

func TestParseAssign(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		stmt, ok := parseOne(t, "x = 1").(*AssignStmt)
		require.True(t, ok)
		name, ok := stmt.Lhs.(*NameExpr)
		require.True(t, ok)
		assert.Equal(t, "x", name.Name)
		lit, ok := stmt.Rhs.(*LiteralExpr)
		require.True(t, ok)
		assert.Equal(t, LiteralInt, lit.Kind)
	})

	t.Run("tuple destructuring", func(t *testing.T) {
		stmt, ok := parseOne(t, "a, b = (1, 2)").(*AssignStmt)
		require.True(t, ok)
		lhs, ok := stmt.Lhs.(*TupleExpr)
		require.True(t, ok)
		require.Len(t, lhs.Elems, 2)
	})
}

func TestParseFor(t *testing.T) {
	stmt, ok := parseOne(t, "for x in xs: x").(*ForStmt)
	require.True(t, ok)
	require.Len(t, stmt.Targets, 1)
	require.Len(t, stmt.Body, 1)

	t.Run("multiple targets", func(t *testing.T) {
		stmt, ok := parseOne(t, "for k, v in items: k").(*ForStmt)
		require.True(t, ok)
		require.Len(t, stmt.Targets, 2)
	})

	t.Run("multiple body statements", func(t *testing.T) {
		stmt, ok := parseOne(t, "for x in xs: a = x; a").(*ForStmt)
		require.True(t, ok)
		require.Len(t, stmt.Body, 2)
	})
}

func TestParsePrecedence(t *testing.T) {
	t.Run("mul binds tighter than add", func(t *testing.T) {
		bin, ok := parseExpr(t, "1 + 2 * 3").(*BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, BinAdd, bin.Op)
		rhs, ok := bin.Y.(*BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, BinMul, rhs.Op)
	})

	t.Run("comparison above bool ops", func(t *testing.T) {
		bin, ok := parseExpr(t, "a < b and c").(*BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, BinAnd, bin.Op)
		lhs, ok := bin.X.(*BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, BinLt, lhs.Op)
	})

	t.Run("unary minus", func(t *testing.T) {
		un, ok := parseExpr(t, "-x + y").(*BinaryExpr)
		require.True(t, ok)
		_, ok = un.X.(*UnaryExpr)
		require.True(t, ok)
	})

	t.Run("parens override", func(t *testing.T) {
		bin, ok := parseExpr(t, "(1 + 2) * 3").(*BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, BinMul, bin.Op)
		_, ok = bin.X.(*ParenExpr)
		require.True(t, ok)
	})
}

func TestParseCollections(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		list, ok := parseExpr(t, "[1, 2, 3]").(*ListExpr)
		require.True(t, ok)
		require.Len(t, list.Elems, 3)
	})

	t.Run("dict", func(t *testing.T) {
		dict, ok := parseExpr(t, `{"a": 1, "b": 2}`).(*DictExpr)
		require.True(t, ok)
		require.Len(t, dict.Entries, 2)
	})

	t.Run("empty dict", func(t *testing.T) {
		dict, ok := parseExpr(t, "{}").(*DictExpr)
		require.True(t, ok)
		assert.Empty(t, dict.Entries)
	})

	t.Run("tuple", func(t *testing.T) {
		tup, ok := parseExpr(t, "(1, 2)").(*TupleExpr)
		require.True(t, ok)
		require.Len(t, tup.Elems, 2)
	})

	t.Run("parenthesized expr is not a tuple", func(t *testing.T) {
		_, ok := parseExpr(t, "(1)").(*ParenExpr)
		require.True(t, ok)
	})
}

func TestParseComprehensions(t *testing.T) {
	t.Run("list comp", func(t *testing.T) {
		comp, ok := parseExpr(t, "[x * 2 for x in xs]").(*ListCompExpr)
		require.True(t, ok)
		require.Len(t, comp.Clauses, 1)
	})

	t.Run("dict comp with condition", func(t *testing.T) {
		comp, ok := parseExpr(t, "{k: v for k, v in items if v}").(*DictCompExpr)
		require.True(t, ok)
		require.Len(t, comp.Clauses, 2)
		assert.NotNil(t, comp.Clauses[1].Cond)
	})
}

func TestParsePostfix(t *testing.T) {
	t.Run("dot", func(t *testing.T) {
		dot, ok := parseExpr(t, "xs.append").(*DotExpr)
		require.True(t, ok)
		assert.Equal(t, "append", dot.Name)
	})

	t.Run("index", func(t *testing.T) {
		idx, ok := parseExpr(t, "xs[0]").(*IndexExpr)
		require.True(t, ok)
		_, ok = idx.Index.(*LiteralExpr)
		require.True(t, ok)
	})

	t.Run("call", func(t *testing.T) {
		call, ok := parseExpr(t, "f(1, 2)").(*CallExpr)
		require.True(t, ok)
		require.Len(t, call.Args, 2)
	})

	t.Run("chained", func(t *testing.T) {
		call, ok := parseExpr(t, "xs.append(1)").(*CallExpr)
		require.True(t, ok)
		_, ok = call.Fn.(*DotExpr)
		require.True(t, ok)
	})
}

func TestParseErrors(t *testing.T) {
	t.Run("recovers to next line", func(t *testing.T) {
		file := Parse("test.lark", []byte("x = = 1\ny = 2"))
		require.NotEmpty(t, file.Errors)

		// The second statement still parses.
		var sawAssign bool
		for _, stmt := range file.Stmts {
			if a, ok := stmt.(*AssignStmt); ok {
				if name, ok := a.Lhs.(*NameExpr); ok && name.Name == "y" {
					sawAssign = true
				}
			}
		}
		assert.True(t, sawAssign)
	})

	t.Run("errors carry positions", func(t *testing.T) {
		file := Parse("test.lark", []byte("x = ]"))
		require.NotEmpty(t, file.Errors)
		assert.Equal(t, 1, file.Errors[0].Span.Start.Line)
	})

	t.Run("keeps the partial statement", func(t *testing.T) {
		// `xs.` is what the file looks like mid-keystroke; the receiver
		// must survive so completion has something to resolve.
		file := Parse("test.lark", []byte("xs = [1]\nxs."))
		require.NotEmpty(t, file.Errors)
		require.Len(t, file.Stmts, 2)

		stmt, ok := file.Stmts[1].(*ExprStmt)
		require.True(t, ok)
		dot, ok := stmt.X.(*DotExpr)
		require.True(t, ok)
		assert.Equal(t, "", dot.Name)
		name, ok := dot.X.(*NameExpr)
		require.True(t, ok)
		assert.Equal(t, "xs", name.Name)
	})

	t.Run("empty input", func(t *testing.T) {
		file := Parse("test.lark", nil)
		assert.Empty(t, file.Stmts)
		assert.Empty(t, file.Errors)
	})
}

func TestSpans(t *testing.T) {
	expr := parseExpr(t, "foo + bar")
	span := expr.Span()
	assert.Equal(t, Pos{Line: 1, Column: 1}, span.Start)
	assert.Equal(t, Pos{Line: 1, Column: 10}, span.End)
}
