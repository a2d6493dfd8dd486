package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/lark/pkg/ty"
)

func TestClassFor(t *testing.T) {
	s := ty.NewStore()
	cat := Default(s)

	t.Run("structural kinds have classes", func(t *testing.T) {
		require.NotNil(t, cat.ClassFor(s.String().Kind()))
		require.NotNil(t, cat.ClassFor(s.Bytes().Kind()))
		require.NotNil(t, cat.ClassFor(s.List(s.Int()).Kind()))
		require.NotNil(t, cat.ClassFor(s.Dict(s.String(), s.Int()).Kind()))
	})

	t.Run("scalars have none", func(t *testing.T) {
		assert.Nil(t, cat.ClassFor(s.Int().Kind()))
		assert.Nil(t, cat.ClassFor(s.None().Kind()))
		assert.Nil(t, cat.ClassFor(s.Tuple(s.Int()).Kind()))
	})

	t.Run("list class is generic over its element", func(t *testing.T) {
		class := cat.ClassFor(s.List(s.Int()).Kind())
		assert.Equal(t, 1, class.NumVars)
		assert.NotEmpty(t, class.Fields())
	})

	t.Run("dict class has two vars", func(t *testing.T) {
		class := cat.ClassFor(s.Dict(s.String(), s.Int()).Kind())
		assert.Equal(t, 2, class.NumVars)
	})
}

func TestGlobals(t *testing.T) {
	s := ty.NewStore()
	cat := Default(s)

	t.Run("lookup", func(t *testing.T) {
		fn, ok := cat.Global("len")
		require.True(t, ok)
		assert.Equal(t, "len", fn.FuncName())

		_, ok = cat.Global("nope")
		assert.False(t, ok)
	})

	t.Run("sorted listing", func(t *testing.T) {
		globals := cat.Globals()
		require.NotEmpty(t, globals)
		for i := 1; i < len(globals); i++ {
			assert.Less(t, globals[i-1].FuncName(), globals[i].FuncName())
		}
	})

	t.Run("generic return template", func(t *testing.T) {
		fn, ok := cat.Global("sorted")
		require.True(t, ok)
		require.Equal(t, 1, fn.NumVars())

		got := fn.Ret().Substitute(s, ty.NewSubstitution(s.Int()))
		require.Same(t, s.List(s.Int()), got)
	})
}

func TestSignatureRendering(t *testing.T) {
	s := ty.NewStore()
	cat := Default(s)

	fn, ok := cat.Global("len")
	require.True(t, ok)
	assert.Contains(t, fn.Signature(), "len(")
	assert.Contains(t, fn.Signature(), "-> int")
}

func TestNewFunctionValidation(t *testing.T) {
	s := ty.NewStore()

	t.Run("accepts in-range bound vars", func(t *testing.T) {
		_, err := newFunction("head", 1,
			[]Param{{Kind: ParamPositional, Name: "xs", Ty: s.List(s.BoundVar(0))}},
			s.BoundVar(0), "")
		require.NoError(t, err)
	})

	t.Run("rejects out-of-range index in return", func(t *testing.T) {
		_, err := newFunction("bad", 1, nil, s.BoundVar(1), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("rejects out-of-range index in params", func(t *testing.T) {
		_, err := newFunction("bad", 0,
			[]Param{{Kind: ParamPositional, Name: "x", Ty: s.List(s.BoundVar(0))}},
			s.None(), "")
		require.Error(t, err)
	})
}

func TestParseTypeExpr(t *testing.T) {
	s := ty.NewStore()

	for _, tc := range []struct {
		src    string
		expect *ty.Ty
	}{
		{"int", s.Int()},
		{"string", s.String()},
		{"None", s.None()},
		{"none", s.None()},
		{"Any", s.Any()},
		{"Unknown", s.Unknown()},
		{"Unbound", s.Unbound()},
		{"List[Int]", s.List(s.Int())},
		{"list[int]", s.List(s.Int())},
		{"dict[string, int]", s.Dict(s.String(), s.Int())},
		{"tuple[int, int, int]", s.Tuple(s.Int(), s.Int(), s.Int())},
		{"list[dict[string, list[int]]]", s.List(s.Dict(s.String(), s.List(s.Int())))},
		{"'0", s.BoundVar(0)},
		{"list['1]", s.List(s.BoundVar(1))},
	} {
		got, err := parseTypeExpr(s, tc.src)
		require.NoError(t, err, "source %q", tc.src)
		require.Same(t, tc.expect, got, "source %q", tc.src)
	}

	t.Run("rejects junk", func(t *testing.T) {
		for _, src := range []string{"", "list[", "list[int", "wat", "list[int] extra"} {
			_, err := parseTypeExpr(s, src)
			require.Error(t, err, "source %q", src)
		}
	})
}

func TestLoadExtensions(t *testing.T) {
	s := ty.NewStore()
	cat := Default(s)

	t.Run("adds globals without touching the receiver", func(t *testing.T) {
		ext, err := cat.loadExtensions([]byte(`
[functions.parse_version]
doc = "parses a semver string"
params = ["string"]
ret = "tuple[int, int, int]"
`))
		require.NoError(t, err)

		fn, ok := ext.Global("parse_version")
		require.True(t, ok)
		assert.Equal(t, "parses a semver string", fn.Doc())
		require.Same(t, s.Tuple(s.Int(), s.Int(), s.Int()), fn.Ret().Ty())

		_, ok = cat.Global("parse_version")
		assert.False(t, ok, "original catalog must be unchanged")

		// Existing builtins carry over.
		_, ok = ext.Global("len")
		assert.True(t, ok)
	})

	t.Run("generic extension", func(t *testing.T) {
		ext, err := cat.loadExtensions([]byte(`
[functions.head]
vars = 1
params = ["list['0]"]
ret = "'0"
`))
		require.NoError(t, err)

		fn, ok := ext.Global("head")
		require.True(t, ok)
		require.Equal(t, 1, fn.NumVars())
		require.Same(t, s.String(), fn.Ret().Substitute(s, ty.NewSubstitution(s.String())))
	})

	t.Run("rejects malformed bound vars", func(t *testing.T) {
		_, err := cat.loadExtensions([]byte(`
[functions.broken]
ret = "'0"
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("rejects bad TOML", func(t *testing.T) {
		_, err := cat.loadExtensions([]byte(`not toml at all ===`))
		require.Error(t, err)
	})
}

func TestMethodInstantiation(t *testing.T) {
	s := ty.NewStore()
	cat := Default(s)

	// list[int].pop's field template, instantiated with the receiver's
	// element type, returns a function whose return type is int.
	class := cat.ClassFor(s.List(s.Int()).Kind())
	var pop *Field
	for i, field := range class.Fields() {
		if field.Name == "pop" {
			pop = &class.Fields()[i]
		}
	}
	require.NotNil(t, pop)

	inst := pop.Ty.Substitute(s, ty.NewSubstitution(s.Int()))
	fn, ok := inst.Kind().(*ty.BuiltinFunction)
	require.True(t, ok)

	ret := fn.Fn.Ret().Substitute(s, fn.Subst)
	require.Same(t, s.Int(), ret)
}
