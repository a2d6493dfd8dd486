package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/pkg/errors"

	"github.com/vito/lark/pkg/analysis"
)

func (h *Handler) handleTextDocumentCompletion(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params CompletionParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	path, err := fromURI(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	if params.Context != nil && params.Context.TriggerCharacter == "." {
		return h.fieldCompletions(ctx, path, params.Position)
	}

	var items []analysis.CompletionItem
	err = h.queries.run(ctx, h.analysis, func(snap *analysis.Snapshot) error {
		items = snap.GlobalCompletions()
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "completion")
	}
	return toCompletionItems(items, FunctionCompletion), nil
}

// fieldCompletions completes `expr.<cursor>`: the receiver expression ends
// just before the trigger dot.
func (h *Handler) fieldCompletions(ctx context.Context, path string, pos Position) (any, error) {
	receiver := fromPosition(pos)
	receiver.Column -= 2
	if receiver.Column < 1 {
		return nil, nil
	}

	var items []analysis.CompletionItem
	err := h.queries.run(ctx, h.analysis, func(snap *analysis.Snapshot) error {
		var err error
		items, err = snap.FieldCompletions(path, receiver)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "field completion")
	}
	return toCompletionItems(items, FieldCompletion), nil
}

func toCompletionItems(items []analysis.CompletionItem, kind CompletionItemKind) []CompletionItem {
	out := make([]CompletionItem, len(items))
	for i, item := range items {
		out[i] = CompletionItem{
			Label:         item.Label,
			Kind:          kind,
			Detail:        item.Detail,
			Documentation: item.Doc,
		}
	}
	return out
}
