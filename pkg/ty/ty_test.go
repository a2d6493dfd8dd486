package ty

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterning(t *testing.T) {
	s := NewStore()

	t.Run("primitives are canonical", func(t *testing.T) {
		require.Same(t, s.Int(), s.Int())
		require.Same(t, s.Int(), s.Primitive(Int))
		require.NotSame(t, s.Int(), s.Float())
	})

	t.Run("structural kinds collapse to one pointer", func(t *testing.T) {
		require.Same(t, s.List(s.Int()), s.List(s.Int()))
		require.Same(t, s.Dict(s.String(), s.Int()), s.Dict(s.String(), s.Int()))
		require.Same(t, s.Tuple(s.Int(), s.String()), s.Tuple(s.Int(), s.String()))
		require.NotSame(t, s.List(s.Int()), s.List(s.Float()))
		require.NotSame(t, s.Dict(s.String(), s.Int()), s.Dict(s.Int(), s.String()))
	})

	t.Run("nesting shares interior nodes", func(t *testing.T) {
		a := s.List(s.Dict(s.String(), s.List(s.Int())))
		b := s.List(s.Dict(s.String(), s.List(s.Int())))
		require.Same(t, a, b)
	})

	t.Run("separate stores do not share", func(t *testing.T) {
		other := NewStore()
		assert.NotSame(t, s.List(s.Int()), other.List(other.Int()))
	})
}

func TestInterningConcurrent(t *testing.T) {
	s := NewStore()

	const n = 32
	results := make([]*Ty, n)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.List(s.Dict(s.String(), s.Int()))
		}(i)
	}
	wg.Wait()

	for _, r := range results[1:] {
		require.Same(t, results[0], r)
	}
}

func TestString(t *testing.T) {
	s := NewStore()

	for _, tc := range []struct {
		ty     *Ty
		expect string
	}{
		{s.Int(), "int"},
		{s.Unknown(), "Unknown"},
		{s.Unbound(), "Unbound"},
		{s.List(s.Int()), "list[int]"},
		{s.Dict(s.String(), s.List(s.Bool())), "dict[string, list[bool]]"},
		{s.Tuple(s.Int(), s.String()), "tuple[int, string]"},
		{s.Tuple(), "tuple[]"},
		{s.BoundVar(0), "'0"},
	} {
		assert.Equal(t, tc.expect, tc.ty.String())
	}
}

func TestSubstitute(t *testing.T) {
	s := NewStore()

	t.Run("ground types pass through", func(t *testing.T) {
		args := []*Ty{s.String()}
		require.Same(t, s.Int(), s.Substitute(s.Int(), args))
		require.Same(t, s.List(s.Int()), s.Substitute(s.List(s.Int()), args))
	})

	t.Run("bound var replaced by argument", func(t *testing.T) {
		require.Same(t, s.String(), s.Substitute(s.BoundVar(0), []*Ty{s.String()}))
	})

	t.Run("recursion through collections", func(t *testing.T) {
		tmpl := s.Dict(s.BoundVar(0), s.List(s.BoundVar(1)))
		got := s.Substitute(tmpl, []*Ty{s.String(), s.Int()})
		require.Same(t, s.Dict(s.String(), s.List(s.Int())), got)
	})

	t.Run("out-of-range index panics", func(t *testing.T) {
		require.Panics(t, func() {
			s.Substitute(s.BoundVar(2), []*Ty{s.Int()})
		})
	})
}

func TestIdentitySubstitution(t *testing.T) {
	s := NewStore()

	// Substituting a template against the identity yields the template
	// itself: each bound variable maps back to its own index.
	tmpl := s.List(s.BoundVar(0))
	id := Identity(s, 1)
	require.Same(t, tmpl, s.Substitute(tmpl, id.Args()))

	// Composing the identity with a concrete substitution is the concrete
	// substitution.
	concrete := id.Substitute(s, []*Ty{s.Int()})
	require.Equal(t, []*Ty{s.Int()}, concrete.Args())
}

func TestBinders(t *testing.T) {
	s := NewStore()

	b := NewBinders(1, s.List(s.BoundVar(0)))
	require.Equal(t, 1, b.NumVars())

	got := b.Substitute(s, NewSubstitution(s.Int()))
	require.Same(t, s.List(s.Int()), got)
}
