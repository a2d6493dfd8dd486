// Package analysis owns the mutable inputs of a language-analysis session:
// file contents and the builtin catalog. Work is only ever performed
// against immutable snapshots; mutating an input cancels in-flight
// inference and invalidates the shared cache.
package analysis

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/vito/lark/pkg/catalog"
	"github.com/vito/lark/pkg/lower"
	"github.com/vito/lark/pkg/ty"
	"github.com/vito/lark/pkg/typecheck"
)

// parseCacheSize bounds the lowered-file cache. Entries are keyed by
// content revision, so edits naturally age old parses out.
const parseCacheSize = 128

type Analysis struct {
	store  *ty.Store
	global *typecheck.Global

	// revision counts input mutations; snapshots observing a different
	// revision are stale.
	revision atomic.Int64

	mu       sync.Mutex
	cat      *catalog.Catalog
	files    map[lower.FileID]*fileState
	byPath   map[string]lower.FileID
	nextFile lower.FileID

	parses *lru.Cache[parseKey, *parsedFile]
}

// fileState is immutable once stored; edits replace the whole entry.
type fileState struct {
	path       string
	text       string
	contentRev int64
}

type parseKey struct {
	file lower.FileID
	rev  int64
}

func New() *Analysis {
	store := ty.NewStore()
	parses, err := lru.New[parseKey, *parsedFile](parseCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size
	}
	return &Analysis{
		store:  store,
		global: typecheck.NewGlobal(),
		cat:    catalog.Default(store),
		files:  make(map[lower.FileID]*fileState),
		byPath: make(map[string]lower.FileID),
		parses: parses,
	}
}

// Store returns the process-wide type store.
func (a *Analysis) Store() *ty.Store {
	return a.store
}

// SetFileContents creates or updates a file. The edit is applied under a
// cancel guard: in-flight inference unwinds, and releasing the guard
// resets the shared inference cache.
func (a *Analysis) SetFileContents(path, text string) lower.FileID {
	guard := a.global.Cancel()
	defer guard.Release()

	a.mu.Lock()
	defer a.mu.Unlock()

	id, ok := a.byPath[path]
	if !ok {
		id = a.nextFile
		a.nextFile++
		a.byPath[path] = id
	}
	var rev int64
	if prev, ok := a.files[id]; ok {
		rev = prev.contentRev + 1
	}
	a.files[id] = &fileState{path: path, text: text, contentRev: rev}
	a.revision.Add(1)
	return id
}

// RemoveFile drops a file from the session.
func (a *Analysis) RemoveFile(path string) {
	guard := a.global.Cancel()
	defer guard.Release()

	a.mu.Lock()
	defer a.mu.Unlock()

	if id, ok := a.byPath[path]; ok {
		delete(a.files, id)
		delete(a.byPath, path)
		a.revision.Add(1)
	}
}

// SetCatalog swaps the builtin catalog, cancelling in-flight inference the
// same way an edit does.
func (a *Analysis) SetCatalog(cat *catalog.Catalog) {
	guard := a.global.Cancel()
	defer guard.Release()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.cat = cat
	a.revision.Add(1)
}

// Catalog returns the current builtin catalog.
func (a *Analysis) Catalog() *catalog.Catalog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cat
}

// FileID resolves a path previously given to SetFileContents.
func (a *Analysis) FileID(path string) (lower.FileID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.byPath[path]
	return id, ok
}

// Snapshot captures a point-in-time view of every input. The snapshot
// itself never blocks writers; reads from it raise the cancellation signal
// once any input has moved on.
func (a *Analysis) Snapshot() *Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	files := make(map[lower.FileID]*fileState, len(a.files))
	for id, f := range a.files {
		files[id] = f
	}
	byPath := make(map[string]lower.FileID, len(a.byPath))
	for path, id := range a.byPath {
		byPath[path] = id
	}
	return &Snapshot{
		analysis: a,
		revision: a.revision.Load(),
		cat:      a.cat,
		files:    files,
		byPath:   byPath,
	}
}

var errUnknownFile = errors.New("file not tracked by this snapshot")
