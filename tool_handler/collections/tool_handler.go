package collections

import (
	"context"
	"errors"

	"github.com/docqa/docqa/store"
	toolhandler "github.com/docqa/docqa/tool_handler"
)

type collectionsTool struct {
	store store.Store
}

func (t *collectionsTool) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        "list_collections",
		Description: "List collections with their record count and embedding dimension",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"collections": map[string]any{
					"type":        "array",
					"description": "Collection names to describe; all collections when omitted",
					"items":       map[string]any{"type": "string"},
				},
			},
		},
	}
}

func (t *collectionsTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	names, err := t.collectionNames(ctx, args)
	if err != nil {
		return nil, err
	}

	infos := make([]store.CollectionInfo, 0, len(names))

	for _, name := range names {
		info, err := t.store.DescribeCollection(ctx, name)
		if errors.Is(err, store.ErrCollectionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		infos = append(infos, info)
	}

	return infos, nil
}

func (t *collectionsTool) collectionNames(ctx context.Context, args map[string]any) ([]string, error) {
	raw, ok := args["collections"].([]any)
	if !ok || len(raw) == 0 {
		return t.store.ListCollections(ctx)
	}

	names := make([]string, 0, len(raw))
	for _, item := range raw {
		name, ok := item.(string)
		if !ok || len(name) == 0 {
			continue
		}
		names = append(names, name)
	}

	return names, nil
}

func NewToolHandler(s store.Store) toolhandler.ToolHandler {
	return &collectionsTool{
		store: s,
	}
}
