// Package catalog holds the builtin classes and functions the inference
// engine consults: nominal field tables for the structural kinds, and
// global function signatures. The catalog is immutable once constructed.
package catalog

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/vito/lark/pkg/ty"
)

// Catalog is the read-only builtin signature database.
type Catalog struct {
	store *ty.Store

	stringClass *Class
	bytesClass  *Class
	listClass   *Class
	dictClass   *Class

	globals map[string]*Function
}

// Class is a nominal record of fields attached to a structural kind.
type Class struct {
	Name    string
	NumVars int
	fields  []Field
}

// Field is one (name, type template) entry in a class's field table.
type Field struct {
	Name string
	Ty   ty.Binders
}

// Fields returns the ordered field table.
func (c *Class) Fields() []Field {
	return c.fields
}

type ParamKind int

const (
	ParamPositional ParamKind = iota
	ParamKeyword
	ParamVarArgs
	ParamKwArgs
)

// Param is one parameter of a builtin function signature.
type Param struct {
	Kind     ParamKind
	Name     string
	Ty       *ty.Ty
	Optional bool
}

// Function is a builtin function signature: an ordered parameter list and a
// generic return-type template. It implements ty.FuncSpec.
type Function struct {
	name    string
	numVars int
	params  []Param
	ret     ty.Binders
	doc     string
}

func (f *Function) FuncName() string {
	return f.name
}

func (f *Function) NumVars() int {
	return f.numVars
}

func (f *Function) Params() []Param {
	return f.params
}

func (f *Function) Ret() ty.Binders {
	return f.ret
}

func (f *Function) Doc() string {
	return f.doc
}

// Signature renders the function for hover text.
func (f *Function) Signature() string {
	out := f.name + "("
	for i, p := range f.params {
		if i > 0 {
			out += ", "
		}
		switch p.Kind {
		case ParamPositional:
			out += fmt.Sprintf("%s: %s", p.Name, p.Ty)
			if p.Optional {
				out += " = None"
			}
		case ParamKeyword:
			out += fmt.Sprintf("%s: %s = None", p.Name, p.Ty)
		case ParamVarArgs:
			out += fmt.Sprintf("*args: %s", p.Ty)
		case ParamKwArgs:
			out += "**kwargs"
		}
	}
	return fmt.Sprintf("%s) -> %s", out, f.ret.Ty())
}

// ClassFor maps a structural kind to its builtin class, or nil if the kind
// has no nominal fields.
func (c *Catalog) ClassFor(kind ty.Kind) *Class {
	switch k := kind.(type) {
	case ty.Primitive:
		switch k {
		case ty.String:
			return c.stringClass
		case ty.Bytes:
			return c.bytesClass
		}
	case *ty.List:
		return c.listClass
	case *ty.Dict:
		return c.dictClass
	}
	return nil
}

// Global looks up a builtin global function by name.
func (c *Catalog) Global(name string) (*Function, bool) {
	fn, ok := c.globals[name]
	return fn, ok
}

// Globals returns every builtin global function, sorted by name.
func (c *Catalog) Globals() []*Function {
	out := make([]*Function, 0, len(c.globals))
	for _, fn := range c.globals {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Store returns the type store the catalog's templates are interned in.
func (c *Catalog) Store() *ty.Store {
	return c.store
}

// newFunction validates every bound-variable index in the signature against
// numVars. Malformed signatures are rejected at construction so the
// substitution hot path never has to bounds-check.
func newFunction(name string, numVars int, params []Param, ret *ty.Ty, doc string) (*Function, error) {
	for _, p := range params {
		if p.Ty == nil {
			continue
		}
		if err := validateTemplate(p.Ty, numVars); err != nil {
			return nil, errors.Wrapf(err, "builtin %q parameter %q", name, p.Name)
		}
	}
	if err := validateTemplate(ret, numVars); err != nil {
		return nil, errors.Wrapf(err, "builtin %q return type", name)
	}
	return &Function{
		name:    name,
		numVars: numVars,
		params:  params,
		ret:     ty.NewBinders(numVars, ret),
		doc:     doc,
	}, nil
}

func validateTemplate(t *ty.Ty, numVars int) error {
	switch k := t.Kind().(type) {
	case *ty.BoundVar:
		if k.Index >= numVars {
			return errors.Errorf("bound variable '%d out of range (have %d)", k.Index, numVars)
		}
	case *ty.List:
		return validateTemplate(k.Elem, numVars)
	case *ty.Tuple:
		for _, elem := range k.Elems {
			if err := validateTemplate(elem, numVars); err != nil {
				return err
			}
		}
	case *ty.Dict:
		if err := validateTemplate(k.Key, numVars); err != nil {
			return err
		}
		return validateTemplate(k.Value, numVars)
	case *ty.BuiltinFunction:
		for _, arg := range k.Subst.Args() {
			if err := validateTemplate(arg, numVars); err != nil {
				return err
			}
		}
	}
	return nil
}
