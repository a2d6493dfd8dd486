package ty

import (
	"fmt"
	"strings"
)

// Binders is a type template parameterized by NumVars bound variables,
// holding a builtin signature's generic shape exactly once.
type Binders struct {
	numVars int
	ty      *Ty
}

func NewBinders(numVars int, t *Ty) Binders {
	return Binders{numVars: numVars, ty: t}
}

func (b Binders) NumVars() int {
	return b.numVars
}

func (b Binders) Ty() *Ty {
	return b.ty
}

// Substitute instantiates the template against the substitution's
// arguments.
func (b Binders) Substitute(s *Store, subst *Substitution) *Ty {
	return s.Substitute(b.ty, subst.args)
}

// Substitution is an ordered list of concrete types, one per bound-variable
// index, instantiating a Binders at a use site.
type Substitution struct {
	args []*Ty
}

func NewSubstitution(args ...*Ty) *Substitution {
	return &Substitution{args: args}
}

// Identity builds the identity substitution of size n: each index maps to
// its own bound variable. Used when a generic signature is referenced
// before anything narrows it.
func Identity(s *Store, n int) *Substitution {
	args := make([]*Ty, n)
	for i := range args {
		args[i] = s.BoundVar(i)
	}
	return &Substitution{args: args}
}

func (sub *Substitution) Args() []*Ty {
	return sub.args
}

// Substitute rewrites every argument of the substitution against args.
func (sub *Substitution) Substitute(s *Store, args []*Ty) *Substitution {
	out := make([]*Ty, len(sub.args))
	for i, t := range sub.args {
		out[i] = s.Substitute(t, args)
	}
	return &Substitution{args: out}
}

func (sub *Substitution) internKey() string {
	var sb strings.Builder
	for _, t := range sub.args {
		fmt.Fprintf(&sb, "%p,", t)
	}
	return sb.String()
}
