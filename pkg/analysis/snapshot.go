package analysis

import (
	"github.com/vito/lark/pkg/catalog"
	"github.com/vito/lark/pkg/lower"
	"github.com/vito/lark/pkg/syntax"
	"github.com/vito/lark/pkg/ty"
	"github.com/vito/lark/pkg/typecheck"
)

// Snapshot is an immutable view of all inputs, used to serve exactly one
// request. It implements typecheck.Database; every accessor raises the
// cancellation signal if the underlying analysis has been mutated since
// the snapshot was taken.
type Snapshot struct {
	analysis *Analysis
	revision int64
	cat      *catalog.Catalog
	files    map[lower.FileID]*fileState
	byPath   map[string]lower.FileID
}

type parsedFile struct {
	syntax *syntax.File
	info   *lower.Info
}

func (s *Snapshot) checkStale() {
	if s.analysis.revision.Load() != s.revision {
		typecheck.ThrowCancelled()
	}
}

// Lower implements typecheck.Database.
func (s *Snapshot) Lower(file lower.FileID) *lower.Info {
	return s.parsed(file).info
}

// Store implements typecheck.Database.
func (s *Snapshot) Store() *ty.Store {
	return s.analysis.store
}

// Catalog implements typecheck.Database.
func (s *Snapshot) Catalog() *catalog.Catalog {
	return s.cat
}

func (s *Snapshot) parsed(file lower.FileID) *parsedFile {
	s.checkStale()

	f, ok := s.files[file]
	if !ok {
		// inference never hands out ids the snapshot doesn't know
		return &parsedFile{
			syntax: &syntax.File{},
			info:   lower.Lower(file, &syntax.File{}),
		}
	}

	key := parseKey{file: file, rev: f.contentRev}
	if cached, ok := s.analysis.parses.Get(key); ok {
		return cached
	}

	parsed := syntax.Parse(f.path, []byte(f.text))
	result := &parsedFile{
		syntax: parsed,
		info:   lower.Lower(file, parsed),
	}
	s.analysis.parses.Add(key, result)
	return result
}

// Diagnostics runs the eager inference pass over the file and returns its
// parse and type diagnostics. A stale snapshot yields
// typecheck.ErrCancelled; the caller retries against a fresh one.
func (s *Snapshot) Diagnostics(path string) ([]typecheck.Diagnostic, error) {
	id, ok := s.byPath[path]
	if !ok {
		return nil, errUnknownFile
	}

	var out []typecheck.Diagnostic
	err := typecheck.Catch(func() {
		for _, perr := range s.parsed(id).syntax.Errors {
			out = append(out, typecheck.Diagnostic{
				File:     id,
				Span:     perr.Span,
				Severity: typecheck.SeverityError,
				Message:  perr.Msg,
			})
		}
		s.analysis.global.With(s, func(c *typecheck.Checker) {
			c.InferAllExprs(id)
			out = append(out, c.DiagnosticsForFile(id)...)
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TypeInfo is the inferred type at a source position, rendered for hover.
type TypeInfo struct {
	Type string
	Doc  string
}

// TypeAt resolves the innermost expression at pos and infers its type.
// Returns nil with no error when nothing is at the position.
func (s *Snapshot) TypeAt(path string, pos syntax.Pos) (*TypeInfo, error) {
	id, ok := s.byPath[path]
	if !ok {
		return nil, errUnknownFile
	}

	var result *TypeInfo
	err := typecheck.Catch(func() {
		info := s.parsed(id).info
		expr := info.ExprAt(pos)
		if expr == lower.NoExpr {
			return
		}
		s.analysis.global.With(s, func(c *typecheck.Checker) {
			t := c.InferExpr(id, expr)
			result = describeType(t)
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func describeType(t *ty.Ty) *TypeInfo {
	if fn, ok := t.Kind().(*ty.BuiltinFunction); ok {
		if spec, ok := fn.Fn.(*catalog.Function); ok {
			return &TypeInfo{Type: spec.Signature(), Doc: spec.Doc()}
		}
	}
	return &TypeInfo{Type: t.String()}
}

// CompletionItem is one candidate offered at a completion site.
type CompletionItem struct {
	Label  string
	Detail string
	Doc    string
}

// FieldCompletions lists the fields available on the type of the
// expression at pos, for `expr.<cursor>` completion.
func (s *Snapshot) FieldCompletions(path string, pos syntax.Pos) ([]CompletionItem, error) {
	id, ok := s.byPath[path]
	if !ok {
		return nil, errUnknownFile
	}

	var items []CompletionItem
	err := typecheck.Catch(func() {
		info := s.parsed(id).info
		expr := info.ExprAt(pos)
		if expr == lower.NoExpr {
			return
		}
		s.analysis.global.With(s, func(c *typecheck.Checker) {
			receiver := c.InferExpr(id, expr)
			for _, field := range c.FieldsOf(receiver) {
				items = append(items, CompletionItem{
					Label:  field.Name,
					Detail: describeType(field.Ty).Type,
				})
			}
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GlobalCompletions lists every builtin global function.
func (s *Snapshot) GlobalCompletions() []CompletionItem {
	var items []CompletionItem
	for _, fn := range s.cat.Globals() {
		items = append(items, CompletionItem{
			Label:  fn.FuncName(),
			Detail: fn.Signature(),
			Doc:    fn.Doc(),
		})
	}
	return items
}
