// Package typecheck implements Lark's type inference engine and the
// cancellation protocol that lets in-flight inference be interrupted and
// retried when its inputs change.
package typecheck

import (
	"sync"
	"sync/atomic"

	"github.com/vito/lark/pkg/catalog"
	"github.com/vito/lark/pkg/lower"
	"github.com/vito/lark/pkg/ty"
)

// Database is the read side the engine depends on. Implementations serve a
// point-in-time snapshot of all inputs and must raise the cancellation
// signal (ThrowCancelled) from any accessor whose inputs changed after the
// snapshot was taken.
type Database interface {
	// Lower returns the lowered expression graph for file.
	Lower(file lower.FileID) *lower.Info
	// Store is the type store all types are interned in.
	Store() *ty.Store
	// Catalog is the builtin signature database.
	Catalog() *catalog.Catalog
}

// FileExprID addresses one inferred type: an expression within a file.
type FileExprID struct {
	File lower.FileID
	Expr lower.ExprID
}

// inferenceState is the single mutable record shared by all inference
// sessions: the memo map and the accumulated diagnostics. It is guarded by
// Global.mu and replaced wholesale when a cancel guard is released.
type inferenceState struct {
	typeOfExpr  map[FileExprID]*ty.Ty
	diagnostics []Diagnostic
}

func newInferenceState() *inferenceState {
	return &inferenceState{typeOfExpr: make(map[FileExprID]*ty.Ty)}
}

// Global owns the shared inference state. Exactly one session may hold the
// lock at a time; the cancellation flag is observed lock-free so an
// in-flight session can be told to unwind without waiting for it.
type Global struct {
	cancelled atomic.Bool

	mu    sync.Mutex
	state *inferenceState
}

func NewGlobal() *Global {
	return &Global{state: newInferenceState()}
}

// Cancel sets the cancellation flag and returns a guard. In-flight
// inference observes the flag and unwinds; new sessions halt at entry to
// every uncached InferExpr. The caller releases the guard once the edit
// that triggered cancellation has been applied.
func (g *Global) Cancel() *CancelGuard {
	g.cancelled.Store(true)
	return &CancelGuard{g: g}
}

// With runs one inference session. The closure is serialized against every
// other session and against guard release; the engine is handed the state
// that was current when the lock was acquired.
func (g *Global) With(db Database, f func(*Checker)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f(&Checker{
		db:     db,
		store:  db.Store(),
		cat:    db.Catalog(),
		global: g,
		state:  g.state,
	})
}

// CancelGuard pins the cancellation flag high until released.
type CancelGuard struct {
	g    *Global
	once sync.Once
}

// Release clears the flag and discards the entire shared state, memo map
// and diagnostics both. Cancellation invalidates all prior work
// unconditionally; recomputation is cheaper than partial-cache staleness
// bugs.
func (cg *CancelGuard) Release() {
	cg.once.Do(func() {
		cg.g.mu.Lock()
		defer cg.g.mu.Unlock()
		cg.g.cancelled.Store(false)
		cg.g.state = newInferenceState()
	})
}
