package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/vito/lark/pkg/analysis"
)

// runCheck type-checks each file and prints its diagnostics, one per line.
// Exits nonzero if any file has errors.
func runCheck(ctx context.Context, cfg Config, paths []string) error {
	setupCheckLogging(cfg)

	a := analysis.New()

	if cfg.Extensions != "" {
		cat, err := a.Catalog().LoadExtensions(cfg.Extensions)
		if err != nil {
			return errors.Wrap(err, "load extensions")
		}
		a.SetCatalog(cat)
	}

	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		a.SetFileContents(path, string(src))
	}

	snap := a.Snapshot()

	failed := 0
	for _, path := range paths {
		diags, err := snap.Diagnostics(path)
		if err != nil {
			// Nothing mutates the session during a batch run, so a
			// cancellation here is a bug rather than a race.
			return errors.Wrapf(err, "check %s", path)
		}
		for _, d := range diags {
			fmt.Printf("%s:%s: %s\n", path, d.Span.Start, d.Message)
		}
		if len(diags) > 0 {
			failed++
		}
		slog.DebugContext(ctx, "checked file", "path", path, "diagnostics", len(diags))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files had errors", failed, len(paths))
	}
	return nil
}
