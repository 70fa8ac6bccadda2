package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docqa/docqa/config"
	"github.com/docqa/docqa/retrieval"
	"github.com/docqa/docqa/synthesizer"
	toolhandler "github.com/docqa/docqa/tool_handler"
	getsafe "github.com/docqa/docqa/util/getsafe"
)

const maxLimit = 10

type queryTool struct {
	engine      *retrieval.Engine
	synthesizer *synthesizer.Synthesizer
	cfg         config.Config
}

func (t *queryTool) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        "query_contract",
		Description: "Ask a question about indexed documents and get an answer grounded in their content",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "Question about the indexed document content",
				},
				"collection_name": map[string]any{
					"type":        "string",
					"description": "Collection to search in",
					"default":     t.cfg.DefaultCollection,
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of chunks to consider",
					"default":     3,
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
			"required": []string{"question"},
		},
	}
}

func (t *queryTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	question := strings.TrimSpace(getsafe.String(args, "question"))
	if len(question) == 0 {
		return nil, errors.New("question is required")
	}

	collection := getsafe.String(args, "collection_name")
	if len(collection) == 0 {
		collection = t.cfg.DefaultCollection
	}

	limit := getsafe.Int(args, "limit", 3)
	if limit < 1 || limit > maxLimit {
		return nil, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}

	threshold := getsafe.Float(args, "similarity_threshold", t.cfg.SimilarityThreshold)
	if threshold < 0.0 || threshold > 1.0 {
		return nil, errors.New("similarity threshold must be between 0.0 and 1.0")
	}

	results, err := t.engine.Search(ctx, question, collection, limit, threshold)
	if err != nil {
		return nil, err
	}

	return t.synthesizer.Answer(ctx, question, results)
}

func NewToolHandler(engine *retrieval.Engine, s *synthesizer.Synthesizer, cfg config.Config) toolhandler.ToolHandler {
	return &queryTool{
		engine:      engine,
		synthesizer: s,
		cfg:         cfg,
	}
}
