package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docqa/docqa/config"
	"github.com/docqa/docqa/retrieval"
	toolhandler "github.com/docqa/docqa/tool_handler"
	getsafe "github.com/docqa/docqa/util/getsafe"
)

const maxLimit = 50

type searchTool struct {
	engine *retrieval.Engine
	cfg    config.Config
}

func (t *searchTool) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        "search_documents",
		Description: "Search for relevant document chunks using vector similarity",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query text",
				},
				"collection_name": map[string]any{
					"type":        "string",
					"description": "Collection to search in",
					"default":     t.cfg.DefaultCollection,
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of results",
					"default":     t.cfg.SearchLimit,
					"minimum":     1,
					"maximum":     maxLimit,
				},
				"similarity_threshold": map[string]any{
					"type":        "number",
					"description": "Minimum similarity score (0.0 to 1.0)",
					"default":     t.cfg.SimilarityThreshold,
					"minimum":     0.0,
					"maximum":     1.0,
				},
			},
			"required": []string{"query"},
		},
	}
}

func (t *searchTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	query := strings.TrimSpace(getsafe.String(args, "query"))
	if len(query) == 0 {
		return nil, errors.New("query is required")
	}

	collection := getsafe.String(args, "collection_name")
	if len(collection) == 0 {
		collection = t.cfg.DefaultCollection
	}

	limit := getsafe.Int(args, "limit", t.cfg.SearchLimit)
	if limit < 1 || limit > maxLimit {
		return nil, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}

	threshold := getsafe.Float(args, "similarity_threshold", t.cfg.SimilarityThreshold)
	if threshold < 0.0 || threshold > 1.0 {
		return nil, errors.New("similarity threshold must be between 0.0 and 1.0")
	}

	results, err := t.engine.Search(ctx, query, collection, limit, threshold)
	if err != nil {
		return nil, err
	}

	if results == nil {
		results = []retrieval.Result{}
	}

	return map[string]any{
		"results": results,
	}, nil
}

func NewToolHandler(engine *retrieval.Engine, cfg config.Config) toolhandler.ToolHandler {
	return &searchTool{
		engine: engine,
		cfg:    cfg,
	}
}
