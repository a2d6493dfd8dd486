package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"unicode"

	"github.com/creachadair/jrpc2"

	"github.com/vito/lark/pkg/analysis"
	"github.com/vito/lark/pkg/syntax"
)

// NewHandler creates the JSON-RPC assigner for the language server. Every
// request runs against a point-in-time snapshot of the analysis state;
// requests raced by an edit are retried against a fresh snapshot.
func NewHandler(ctx context.Context) *Handler {
	return &Handler{
		analysis: analysis.New(),
		queries:  newQueryPool(maxConcurrentQueries),
	}
}

type Handler struct {
	analysis *analysis.Analysis
	server   *jrpc2.Server

	rootPath string

	queries *queryPool
}

// SetServer stores the server handle used for pushing notifications back to
// the client. Must be called before the server starts.
func (h *Handler) SetServer(srv *jrpc2.Server) {
	h.server = srv
}

// Analysis exposes the underlying session, for wiring in catalog reloads.
func (h *Handler) Analysis() *analysis.Analysis {
	return h.analysis
}

// Assign implements jrpc2.Assigner. Unknown methods return nil and the
// server answers with a method-not-found error.
func (h *Handler) Assign(ctx context.Context, method string) jrpc2.Handler {
	slog.DebugContext(ctx, "assign", "method", method)

	switch method {
	case "initialize":
		return h.handleInitialize
	case "initialized":
		return func(context.Context, *jrpc2.Request) (any, error) { return nil, nil }
	case "shutdown":
		return h.handleShutdown
	case "exit":
		return func(context.Context, *jrpc2.Request) (any, error) { return nil, nil }
	case "textDocument/didOpen":
		return h.handleTextDocumentDidOpen
	case "textDocument/didChange":
		return h.handleTextDocumentDidChange
	case "textDocument/didClose":
		return h.handleTextDocumentDidClose
	case "textDocument/hover":
		return h.handleTextDocumentHover
	case "textDocument/completion":
		return h.handleTextDocumentCompletion
	}
	return nil
}

func isWindowsDrivePath(path string) bool {
	if len(path) < 4 {
		return false
	}
	return unicode.IsLetter(rune(path[0])) && path[1] == ':'
}

func isWindowsDriveURI(uri string) bool {
	if len(uri) < 4 {
		return false
	}
	return uri[0] == '/' && unicode.IsLetter(rune(uri[1])) && uri[2] == ':'
}

func fromURI(uri DocumentURI) (string, error) {
	u, err := url.ParseRequestURI(string(uri))
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("only file URIs are supported, got %v", u.Scheme)
	}
	if isWindowsDriveURI(u.Path) {
		u.Path = u.Path[1:]
	}
	return u.Path, nil
}

func toURI(path string) DocumentURI {
	if isWindowsDrivePath(path) {
		path = "/" + path
	}
	return DocumentURI((&url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(path),
	}).String())
}

// fromPosition converts a 0-based protocol position to a 1-based source
// position.
func fromPosition(pos Position) syntax.Pos {
	return syntax.Pos{Line: pos.Line + 1, Column: pos.Character + 1}
}

func toRange(span syntax.Span) Range {
	return Range{
		Start: Position{Line: span.Start.Line - 1, Character: span.Start.Column - 1},
		End:   Position{Line: span.End.Line - 1, Character: span.End.Column - 1},
	}
}

func (h *Handler) logMessage(ctx context.Context, typ MessageType, message string) {
	if h.server == nil {
		return
	}
	if err := h.server.Notify(ctx, "window/logMessage", &LogMessageParams{
		Type:    typ,
		Message: message,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send log message", "error", err)
	}
}
