package ty

import "sync"

// Store is a hash-consing arena for type nodes. Interning is keyed on
// structure, so equal kinds share one canonical *Ty and structural equality
// collapses to pointer equality. Entries live for the life of the store;
// nothing is ever evicted.
type Store struct {
	prims [numPrimitives]*Ty

	mu    sync.Mutex
	table map[string]*Ty
}

func NewStore() *Store {
	s := &Store{table: make(map[string]*Ty)}
	for i := range s.prims {
		s.prims[i] = &Ty{kind: Primitive(i)}
	}
	return s
}

// Intern returns the canonical Ty for kind, creating it on first use. Safe
// for concurrent use; the first insertion wins and later structurally equal
// kinds observe the same pointer.
func (s *Store) Intern(kind Kind) *Ty {
	if p, ok := kind.(Primitive); ok {
		return s.prims[p]
	}

	key := kind.internKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.table[key]; ok {
		return t
	}
	t := &Ty{kind: kind}
	s.table[key] = t
	return t
}

func (s *Store) Primitive(p Primitive) *Ty { return s.prims[p] }

func (s *Store) Unbound() *Ty { return s.prims[Unbound] }
func (s *Store) Unknown() *Ty { return s.prims[Unknown] }
func (s *Store) Any() *Ty     { return s.prims[Any] }
func (s *Store) None() *Ty    { return s.prims[None] }
func (s *Store) Bool() *Ty    { return s.prims[Bool] }
func (s *Store) Int() *Ty     { return s.prims[Int] }
func (s *Store) Float() *Ty   { return s.prims[Float] }
func (s *Store) String() *Ty  { return s.prims[String] }
func (s *Store) Bytes() *Ty   { return s.prims[Bytes] }
func (s *Store) Range() *Ty   { return s.prims[Range] }

func (s *Store) List(elem *Ty) *Ty {
	return s.Intern(&List{Elem: elem})
}

func (s *Store) Tuple(elems ...*Ty) *Ty {
	return s.Intern(&Tuple{Elems: elems})
}

func (s *Store) Dict(key, value *Ty) *Ty {
	return s.Intern(&Dict{Key: key, Value: value})
}

func (s *Store) BoundVar(index int) *Ty {
	return s.Intern(&BoundVar{Index: index})
}

func (s *Store) Function(fn FuncSpec, subst *Substitution) *Ty {
	return s.Intern(&BuiltinFunction{Fn: fn, Subst: subst})
}

// Substitute rewrites t, replacing each BoundVar(i) with args[i] and
// recursing into collection and function kinds. Ground kinds pass through
// unchanged. An index past the end of args is a malformed signature and
// panics; catalog construction validates indices so well-formed data never
// reaches that path.
func (s *Store) Substitute(t *Ty, args []*Ty) *Ty {
	switch k := t.Kind().(type) {
	case *List:
		return s.List(s.Substitute(k.Elem, args))
	case *Tuple:
		elems := make([]*Ty, len(k.Elems))
		for i, elem := range k.Elems {
			elems[i] = s.Substitute(elem, args)
		}
		return s.Tuple(elems...)
	case *Dict:
		return s.Dict(s.Substitute(k.Key, args), s.Substitute(k.Value, args))
	case *BuiltinFunction:
		return s.Function(k.Fn, k.Subst.Substitute(s, args))
	case *BoundVar:
		return args[k.Index]
	default:
		return t
	}
}
