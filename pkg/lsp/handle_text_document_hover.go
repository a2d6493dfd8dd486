package lsp

import (
	"context"
	"fmt"

	"github.com/creachadair/jrpc2"
	"github.com/pkg/errors"

	"github.com/vito/lark/pkg/analysis"
)

func (h *Handler) handleTextDocumentHover(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params HoverParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	path, err := fromURI(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	var info *analysis.TypeInfo
	err = h.queries.run(ctx, h.analysis, func(snap *analysis.Snapshot) error {
		var err error
		info, err = snap.TypeAt(path, fromPosition(params.Position))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "hover")
	}
	if info == nil {
		return nil, nil
	}

	content := fmt.Sprintf("```lark\n%s\n```", info.Type)
	if info.Doc != "" {
		content = info.Doc + "\n\n" + content
	}

	return &Hover{
		Contents: MarkupContent{
			Kind:  Markdown,
			Value: content,
		},
	}, nil
}
