package catalog

import "github.com/vito/lark/pkg/ty"

// Default builds the stock catalog: the base classes for string, bytes,
// list and dict, and the global builtin functions.
func Default(s *ty.Store) *Catalog {
	b := &builder{s: s}

	c := &Catalog{
		store:   s,
		globals: make(map[string]*Function),
	}

	c.stringClass = b.stringClass()
	c.bytesClass = b.bytesClass()
	c.listClass = b.listClass()
	c.dictClass = b.dictClass()

	for _, fn := range b.globalFunctions() {
		c.globals[fn.name] = fn
	}

	if b.err != nil {
		// Default signatures are code-defined; a malformed one is a bug,
		// not an input error.
		panic(b.err)
	}
	return c
}

type builder struct {
	s   *ty.Store
	err error
}

func (b *builder) fn(name string, numVars int, params []Param, ret *ty.Ty, doc string) *Function {
	fn, err := newFunction(name, numVars, params, ret, doc)
	if err != nil && b.err == nil {
		b.err = err
	}
	return fn
}

// method interns a field template holding a builtin method: a function type
// under the class's identity substitution, so the receiver's structural
// arguments flow into the method's return type.
func (b *builder) method(classVars int, fn *Function) *ty.Ty {
	return b.s.Function(fn, ty.Identity(b.s, classVars))
}

func (b *builder) pos(name string, t *ty.Ty) Param {
	return Param{Kind: ParamPositional, Name: name, Ty: t}
}

func (b *builder) opt(name string, t *ty.Ty) Param {
	return Param{Kind: ParamPositional, Name: name, Ty: t, Optional: true}
}

func (b *builder) stringClass() *Class {
	s := b.s
	str := s.String()
	field := func(name string, fn *Function) Field {
		return Field{Name: name, Ty: ty.NewBinders(0, b.method(0, fn))}
	}
	return &Class{
		Name:    "string",
		NumVars: 0,
		fields: []Field{
			field("elems", b.fn("elems", 0, nil, s.Primitive(ty.StringElems), "an iterable of the string's elements")),
			field("upper", b.fn("upper", 0, nil, str, "the string in upper case")),
			field("lower", b.fn("lower", 0, nil, str, "the string in lower case")),
			field("strip", b.fn("strip", 0, []Param{b.opt("chars", str)}, str, "the string with surrounding whitespace removed")),
			field("split", b.fn("split", 0, []Param{b.opt("sep", str)}, s.List(str), "the list of substrings split by sep")),
			field("join", b.fn("join", 0, []Param{b.pos("elements", s.List(str))}, str, "the strings joined by this separator")),
			field("startswith", b.fn("startswith", 0, []Param{b.pos("prefix", str)}, s.Bool(), "")),
			field("endswith", b.fn("endswith", 0, []Param{b.pos("suffix", str)}, s.Bool(), "")),
			field("find", b.fn("find", 0, []Param{b.pos("sub", str)}, s.Int(), "")),
			field("replace", b.fn("replace", 0, []Param{b.pos("old", str), b.pos("new", str)}, str, "")),
		},
	}
}

func (b *builder) bytesClass() *Class {
	s := b.s
	field := func(name string, fn *Function) Field {
		return Field{Name: name, Ty: ty.NewBinders(0, b.method(0, fn))}
	}
	return &Class{
		Name:    "bytes",
		NumVars: 0,
		fields: []Field{
			field("elems", b.fn("elems", 0, nil, s.Primitive(ty.BytesElems), "an iterable of the bytes' elements")),
		},
	}
}

func (b *builder) listClass() *Class {
	s := b.s
	elem := s.BoundVar(0)
	field := func(name string, fn *Function) Field {
		return Field{Name: name, Ty: ty.NewBinders(1, b.method(1, fn))}
	}
	return &Class{
		Name:    "list",
		NumVars: 1,
		fields: []Field{
			field("append", b.fn("append", 1, []Param{b.pos("x", elem)}, s.None(), "adds x to the end of the list")),
			field("extend", b.fn("extend", 1, []Param{b.pos("other", s.List(elem))}, s.None(), "")),
			field("insert", b.fn("insert", 1, []Param{b.pos("at", s.Int()), b.pos("x", elem)}, s.None(), "")),
			field("index", b.fn("index", 1, []Param{b.pos("x", elem)}, s.Int(), "")),
			field("pop", b.fn("pop", 1, []Param{b.opt("i", s.Int())}, elem, "removes and returns the element at i")),
			field("remove", b.fn("remove", 1, []Param{b.pos("x", elem)}, s.None(), "")),
			field("clear", b.fn("clear", 1, nil, s.None(), "")),
		},
	}
}

func (b *builder) dictClass() *Class {
	s := b.s
	key, value := s.BoundVar(0), s.BoundVar(1)
	field := func(name string, fn *Function) Field {
		return Field{Name: name, Ty: ty.NewBinders(2, b.method(2, fn))}
	}
	return &Class{
		Name:    "dict",
		NumVars: 2,
		fields: []Field{
			field("get", b.fn("get", 2, []Param{b.pos("key", key)}, value, "the value for key, or None")),
			field("keys", b.fn("keys", 2, nil, s.List(key), "a list of the dict's keys")),
			field("values", b.fn("values", 2, nil, s.List(value), "a list of the dict's values")),
			field("items", b.fn("items", 2, nil, s.List(s.Tuple(key, value)), "a list of (key, value) pairs")),
			field("pop", b.fn("pop", 2, []Param{b.pos("key", key)}, value, "")),
			field("setdefault", b.fn("setdefault", 2, []Param{b.pos("key", key), b.opt("default", value)}, value, "")),
			field("update", b.fn("update", 2, []Param{b.pos("pairs", s.Dict(key, value))}, s.None(), "")),
			field("clear", b.fn("clear", 2, nil, s.None(), "")),
		},
	}
}

func (b *builder) globalFunctions() []*Function {
	s := b.s
	anyTy := s.Any()
	return []*Function{
		b.fn("len", 0, []Param{b.pos("x", anyTy)}, s.Int(), "the number of elements in x"),
		b.fn("range", 0, []Param{b.pos("start", s.Int()), b.opt("stop", s.Int()), b.opt("step", s.Int())}, s.Range(), "a range of integers"),
		b.fn("bool", 0, []Param{b.opt("x", anyTy)}, s.Bool(), "the truth value of x"),
		b.fn("int", 0, []Param{b.opt("x", anyTy)}, s.Int(), "x converted to an int"),
		b.fn("float", 0, []Param{b.opt("x", anyTy)}, s.Float(), "x converted to a float"),
		b.fn("str", 0, []Param{b.opt("x", anyTy)}, s.String(), "the string form of x"),
		b.fn("repr", 0, []Param{b.pos("x", anyTy)}, s.String(), "a source-like rendering of x"),
		b.fn("print", 0, []Param{{Kind: ParamVarArgs, Name: "args", Ty: anyTy}}, s.None(), "prints its arguments"),
		b.fn("reversed", 1, []Param{b.pos("x", s.List(s.BoundVar(0)))}, s.List(s.BoundVar(0)), "a reversed copy of the list"),
		b.fn("sorted", 1, []Param{b.pos("x", s.List(s.BoundVar(0)))}, s.List(s.BoundVar(0)), "a sorted copy of the list"),
	}
}
