// Package ty defines Lark's interned type representation: canonical type
// nodes, generic binders, and bound-variable substitution.
package ty

import (
	"fmt"
	"strings"
)

// Ty is an interned type node. Tys are produced only by a Store; two Tys
// are structurally equal iff they are the same pointer.
type Ty struct {
	kind Kind
}

func (t *Ty) Kind() Kind {
	return t.kind
}

func (t *Ty) String() string {
	return t.kind.String()
}

// IsAny reports whether the type is the deliberately-untyped Any.
func (t *Ty) IsAny() bool {
	p, ok := t.kind.(Primitive)
	return ok && p == Any
}

// Kind is the closed variant set of type constructors.
type Kind interface {
	fmt.Stringer
	internKey() string
}

// Primitive is a ground scalar kind with no structure.
type Primitive int

const (
	Unbound Primitive = iota // name never assigned
	Unknown                  // inference gave up
	Any                      // deliberately untyped
	None
	Bool
	Int
	Float
	String
	StringElems
	Bytes
	BytesElems
	Range

	numPrimitives
)

var primitiveNames = [...]string{
	Unbound:     "Unbound",
	Unknown:     "Unknown",
	Any:         "Any",
	None:        "None",
	Bool:        "bool",
	Int:         "int",
	Float:       "float",
	String:      "string",
	StringElems: "string.elems",
	Bytes:       "bytes",
	BytesElems:  "bytes.elems",
	Range:       "range",
}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return fmt.Sprintf("primitive(%d)", int(p))
}

func (p Primitive) internKey() string {
	return fmt.Sprintf("p%d", int(p))
}

// List is `list[Elem]`.
type List struct {
	Elem *Ty
}

func (k *List) String() string {
	return fmt.Sprintf("list[%s]", k.Elem)
}

func (k *List) internKey() string {
	return fmt.Sprintf("l%p", k.Elem)
}

// Tuple is `tuple[Elems...]`.
type Tuple struct {
	Elems []*Ty
}

func (k *Tuple) String() string {
	var sb strings.Builder
	sb.WriteString("tuple[")
	for i, elem := range k.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(elem.String())
	}
	sb.WriteString("]")
	return sb.String()
}

func (k *Tuple) internKey() string {
	var sb strings.Builder
	sb.WriteString("t")
	for _, elem := range k.Elems {
		fmt.Fprintf(&sb, "%p;", elem)
	}
	return sb.String()
}

// Dict is `dict[Key, Value]`.
type Dict struct {
	Key   *Ty
	Value *Ty
}

func (k *Dict) String() string {
	return fmt.Sprintf("dict[%s, %s]", k.Key, k.Value)
}

func (k *Dict) internKey() string {
	return fmt.Sprintf("d%p;%p", k.Key, k.Value)
}

// BoundVar is a placeholder index into a Substitution. It appears only
// inside generic templates.
type BoundVar struct {
	Index int
}

func (k *BoundVar) String() string {
	return fmt.Sprintf("'%d", k.Index)
}

func (k *BoundVar) internKey() string {
	return fmt.Sprintf("v%d", k.Index)
}

// FuncSpec identifies a builtin function signature. The catalog implements
// it; the type layer needs identity, a name, and the generic return
// template so calls can instantiate it.
type FuncSpec interface {
	FuncName() string
	NumVars() int
	Ret() Binders
}

// BuiltinFunction is a reference to a builtin function signature together
// with the substitution accumulated for its bound variables.
type BuiltinFunction struct {
	Fn    FuncSpec
	Subst *Substitution
}

func (k *BuiltinFunction) String() string {
	return "builtin_function_or_method"
}

func (k *BuiltinFunction) internKey() string {
	return fmt.Sprintf("f%p;%s", k.Fn, k.Subst.internKey())
}
