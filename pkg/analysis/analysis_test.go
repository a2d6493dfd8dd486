package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/lark/pkg/syntax"
	"github.com/vito/lark/pkg/typecheck"
)

func TestDiagnostics(t *testing.T) {
	t.Run("clean file", func(t *testing.T) {
		a := New()
		a.SetFileContents("clean.lark", "x = 1\ny = x + 2")

		diags, err := a.Snapshot().Diagnostics("clean.lark")
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("type error", func(t *testing.T) {
		a := New()
		a.SetFileContents("bad.lark", `x = "a" + 1`)

		diags, err := a.Snapshot().Diagnostics("bad.lark")
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Message, "not supported")
	})

	t.Run("parse error", func(t *testing.T) {
		a := New()
		a.SetFileContents("broken.lark", "x = = 1")

		diags, err := a.Snapshot().Diagnostics("broken.lark")
		require.NoError(t, err)
		require.NotEmpty(t, diags)
	})

	t.Run("unknown file", func(t *testing.T) {
		a := New()
		_, err := a.Snapshot().Diagnostics("nope.lark")
		require.Error(t, err)
	})
}

func TestSnapshotStaleness(t *testing.T) {
	a := New()
	a.SetFileContents("f.lark", "x = 1")
	snap := a.Snapshot()

	// Any mutation invalidates outstanding snapshots.
	a.SetFileContents("f.lark", "x = 2")

	_, err := snap.Diagnostics("f.lark")
	require.ErrorIs(t, err, typecheck.ErrCancelled)

	// A fresh snapshot serves the new contents.
	diags, err := a.Snapshot().Diagnostics("f.lark")
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestSnapshotStalenessOnRemove(t *testing.T) {
	a := New()
	a.SetFileContents("f.lark", "x = 1")
	snap := a.Snapshot()

	a.RemoveFile("f.lark")

	_, err := snap.Diagnostics("f.lark")
	require.ErrorIs(t, err, typecheck.ErrCancelled)

	_, ok := a.FileID("f.lark")
	assert.False(t, ok)
}

func TestTypeAt(t *testing.T) {
	a := New()
	a.SetFileContents("f.lark", "xs = [1, 2]\nxs")

	t.Run("expression type", func(t *testing.T) {
		info, err := a.Snapshot().TypeAt("f.lark", syntax.Pos{Line: 2, Column: 1})
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, "list[int]", info.Type)
	})

	t.Run("builtin renders signature and doc", func(t *testing.T) {
		a := New()
		a.SetFileContents("g.lark", "len")

		info, err := a.Snapshot().TypeAt("g.lark", syntax.Pos{Line: 1, Column: 1})
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Contains(t, info.Type, "len(")
		assert.NotEmpty(t, info.Doc)
	})

	t.Run("nothing at position", func(t *testing.T) {
		info, err := a.Snapshot().TypeAt("f.lark", syntax.Pos{Line: 9, Column: 1})
		require.NoError(t, err)
		assert.Nil(t, info)
	})
}

func TestCompletions(t *testing.T) {
	t.Run("fields of a list", func(t *testing.T) {
		a := New()
		a.SetFileContents("f.lark", "xs = [1, 2]\nxs")

		items, err := a.Snapshot().FieldCompletions("f.lark", syntax.Pos{Line: 2, Column: 1})
		require.NoError(t, err)

		labels := make(map[string]string)
		for _, item := range items {
			labels[item.Label] = item.Detail
		}
		require.Contains(t, labels, "append")
		require.Contains(t, labels, "pop")
	})

	t.Run("globals", func(t *testing.T) {
		a := New()
		items := a.Snapshot().GlobalCompletions()

		var sawLen bool
		for _, item := range items {
			if item.Label == "len" {
				sawLen = true
				assert.Contains(t, item.Detail, "len(")
			}
		}
		assert.True(t, sawLen)
	})
}

func TestSetCatalog(t *testing.T) {
	a := New()
	a.SetFileContents("f.lark", "shout()")

	diags, err := a.Snapshot().Diagnostics("f.lark")
	require.NoError(t, err)
	require.Len(t, diags, 1, "unknown global is not callable")

	path := filepath.Join(t.TempDir(), "ext.toml")
	require.NoError(t, os.WriteFile(path, []byte("[functions.shout]\nret = \"string\"\n"), 0o644))

	cat, err := a.Catalog().LoadExtensions(path)
	require.NoError(t, err)
	a.SetCatalog(cat)

	diags, err = a.Snapshot().Diagnostics("f.lark")
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestWatchExtensions(t *testing.T) {
	a := New()
	a.SetFileContents("f.lark", "shout()")

	path := filepath.Join(t.TempDir(), "ext.toml")
	require.NoError(t, os.WriteFile(path, []byte("[functions.noop]\nret = \"None\"\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.WatchExtensions(ctx, path) }()

	require.NoError(t, os.WriteFile(path, []byte("[functions.shout]\nret = \"string\"\n"), 0o644))

	require.Eventually(t, func() bool {
		diags, err := a.Snapshot().Diagnostics("f.lark")
		return err == nil && len(diags) == 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
