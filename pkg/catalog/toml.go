package catalog

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// extensionsFile mirrors the lark.toml catalog extension format:
//
//	[functions.parse_version]
//	doc = "parses a semver string"
//	params = ["string"]
//	ret = "tuple[int, int, int]"
//
//	[functions.head]
//	vars = 1
//	params = ["list['0]"]
//	ret = "'0"
type extensionsFile struct {
	Functions map[string]extensionFunction `toml:"functions"`
}

type extensionFunction struct {
	Doc    string   `toml:"doc,omitempty"`
	Vars   int      `toml:"vars,omitempty"`
	Params []string `toml:"params,omitempty"`
	Ret    string   `toml:"ret"`
}

// LoadExtensions returns a copy of the catalog extended with the global
// function signatures described in the TOML file at path. The receiver is
// left untouched; callers swap the returned catalog in atomically.
func (c *Catalog) LoadExtensions(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog extensions")
	}
	return c.loadExtensions(data)
}

func (c *Catalog) loadExtensions(data []byte) (*Catalog, error) {
	var file extensionsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse catalog extensions")
	}

	out := &Catalog{
		store:       c.store,
		stringClass: c.stringClass,
		bytesClass:  c.bytesClass,
		listClass:   c.listClass,
		dictClass:   c.dictClass,
		globals:     make(map[string]*Function, len(c.globals)+len(file.Functions)),
	}
	for name, fn := range c.globals {
		out.globals[name] = fn
	}

	for name, ext := range file.Functions {
		params := make([]Param, 0, len(ext.Params))
		for i, src := range ext.Params {
			t, err := parseTypeExpr(c.store, src)
			if err != nil {
				return nil, errors.Wrapf(err, "function %q param %d", name, i)
			}
			params = append(params, Param{Kind: ParamPositional, Name: paramName(i), Ty: t})
		}
		ret, err := parseTypeExpr(c.store, ext.Ret)
		if err != nil {
			return nil, errors.Wrapf(err, "function %q return type", name)
		}
		fn, err := newFunction(name, ext.Vars, params, ret, ext.Doc)
		if err != nil {
			return nil, err
		}
		out.globals[name] = fn
	}
	return out, nil
}

func paramName(i int) string {
	return string(rune('a' + i%26))
}
