package lsp

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/vito/lark/pkg/analysis"
	"github.com/vito/lark/pkg/typecheck"
)

// maxConcurrentQueries bounds how many snapshot queries run at once.
const maxConcurrentQueries = 4

type queryPool struct {
	sem *semaphore.Weighted
}

func newQueryPool(n int64) *queryPool {
	return &queryPool{sem: semaphore.NewWeighted(n)}
}

// run executes query against successive snapshots until one completes
// without observing cancellation. A query is cancelled when an edit lands
// mid-flight; the retry runs against a fresh snapshot and sees the new
// state, so no request is ever dropped on the floor.
func (p *queryPool) run(ctx context.Context, a *analysis.Analysis, query func(*analysis.Snapshot) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := query(a.Snapshot())
		if errors.Is(err, typecheck.ErrCancelled) {
			slog.DebugContext(ctx, "query raced by an edit, retrying")
			continue
		}
		return err
	}
}

// publishDiagnostics type-checks the document and pushes the results to the
// client. Runs in its own goroutine so document sync notifications return
// immediately.
func (h *Handler) publishDiagnostics(ctx context.Context, uri DocumentURI, path string, version int) {
	if h.server == nil {
		return
	}

	// The request context dies as soon as the sync notification returns.
	ctx = context.WithoutCancel(ctx)

	go func() {
		var diags []Diagnostic
		err := h.queries.run(ctx, h.analysis, func(snap *analysis.Snapshot) error {
			found, err := snap.Diagnostics(path)
			if err != nil {
				return err
			}
			diags = diags[:0]
			for _, d := range found {
				diags = append(diags, Diagnostic{
					Range:    toRange(d.Span),
					Severity: toSeverity(d.Severity),
					Source:   "lark",
					Message:  d.Message,
				})
			}
			return nil
		})
		if err != nil {
			slog.ErrorContext(ctx, "diagnostics failed", "uri", uri, "error", err)
			return
		}

		if diags == nil {
			diags = []Diagnostic{}
		}
		err = h.server.Notify(ctx, "textDocument/publishDiagnostics", &PublishDiagnosticsParams{
			URI:         uri,
			Version:     version,
			Diagnostics: diags,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to publish diagnostics", "uri", uri, "error", err)
		}
	}()
}

func toSeverity(sev typecheck.Severity) DiagnosticSeverity {
	if sev == typecheck.SeverityWarning {
		return SeverityWarning
	}
	return SeverityError
}
