package lsp

import (
	"context"
	"log/slog"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleTextDocumentDidOpen(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DidOpenTextDocumentParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	path, err := fromURI(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "document opened", "path", path)

	h.analysis.SetFileContents(path, params.TextDocument.Text)
	h.publishDiagnostics(ctx, params.TextDocument.URI, path, params.TextDocument.Version)
	return nil, nil
}
