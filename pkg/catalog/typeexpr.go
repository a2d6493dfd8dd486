package catalog

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/vito/lark/pkg/ty"
)

// parseTypeExpr parses the compact type syntax used by catalog extension
// files: scalar names (`int`, `string`, `None`, ...), `list[T]`,
// `dict[K, V]`, `tuple[T, ...]`, and bound variables written `'0`, `'1`.
// Type names are matched case-insensitively, so the canonical renderings
// (`None`, `Any`, `Unknown`) parse as written.
func parseTypeExpr(s *ty.Store, src string) (*ty.Ty, error) {
	p := &typeExprParser{s: s, src: src}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, errors.Errorf("trailing input %q in type %q", p.src[p.pos:], src)
	}
	return t, nil
}

type typeExprParser struct {
	s   *ty.Store
	src string
	pos int
}

// Keys are lowercase; lookups case-fold so the canonical renderings
// (`None`, `Any`, `Unknown`, `Unbound`) round-trip through the parser.
var scalarTypes = map[string]ty.Primitive{
	"unbound": ty.Unbound,
	"unknown": ty.Unknown,
	"any":     ty.Any,
	"none":    ty.None,
	"bool":    ty.Bool,
	"int":     ty.Int,
	"float":   ty.Float,
	"string":  ty.String,
	"bytes":   ty.Bytes,
	"range":   ty.Range,
}

func (p *typeExprParser) parse() (*ty.Ty, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, errors.New("empty type expression")
	}

	if p.src[p.pos] == '\'' {
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && unicode.IsDigit(rune(p.src[p.pos])) {
			p.pos++
		}
		if start == p.pos {
			return nil, errors.New("expected index after ' in type expression")
		}
		index, err := strconv.Atoi(p.src[start:p.pos])
		if err != nil {
			return nil, err
		}
		return p.s.BoundVar(index), nil
	}

	name := p.ident()
	if name == "" {
		return nil, errors.Errorf("unexpected character %q in type expression", p.src[p.pos])
	}

	switch strings.ToLower(name) {
	case "list":
		elems, err := p.args(1)
		if err != nil {
			return nil, err
		}
		return p.s.List(elems[0]), nil
	case "dict":
		elems, err := p.args(2)
		if err != nil {
			return nil, err
		}
		return p.s.Dict(elems[0], elems[1]), nil
	case "tuple":
		elems, err := p.args(-1)
		if err != nil {
			return nil, err
		}
		return p.s.Tuple(elems...), nil
	}

	if prim, ok := scalarTypes[strings.ToLower(name)]; ok {
		return p.s.Primitive(prim), nil
	}
	return nil, errors.Errorf("unknown type %q", name)
}

func (p *typeExprParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if !unicode.IsLetter(r) && r != '_' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// args parses `[T, T, ...]`; want < 0 accepts any count.
func (p *typeExprParser) args(want int) ([]*ty.Ty, error) {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '[' {
		return nil, errors.New("expected [ after generic type name")
	}
	p.pos++

	var elems []*ty.Ty
	for {
		t, err := p.parse()
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		break
	}

	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != ']' {
		return nil, errors.New("expected ] in type expression")
	}
	p.pos++

	if want >= 0 && len(elems) != want {
		return nil, errors.Errorf("expected %d type argument(s), got %d", want, len(elems))
	}
	return elems, nil
}

func (p *typeExprParser) skipSpace() {
	p.pos += len(p.src[p.pos:]) - len(strings.TrimLeft(p.src[p.pos:], " \t"))
}
