package ingest

import (
	"context"
	"errors"
	"strings"

	"github.com/docqa/docqa/config"
	"github.com/docqa/docqa/pipeline"
	toolhandler "github.com/docqa/docqa/tool_handler"
	getsafe "github.com/docqa/docqa/util/getsafe"
)

type ingestTool struct {
	pipeline *pipeline.Pipeline
	cfg      config.Config
}

func (t *ingestTool) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        "ingest_document",
		Description: "Process and ingest a document into a vector collection for retrieval",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"document_url": map[string]any{
					"type":        "string",
					"description": "URL or local path to the document",
				},
				"collection_name": map[string]any{
					"type":        "string",
					"description": "Collection to store the document in",
					"default":     t.cfg.DefaultCollection,
				},
				"max_chunk_size": map[string]any{
					"type":        "integer",
					"description": "Maximum chunk size in characters",
					"default":     t.cfg.MaxChunkSize,
				},
				"chunk_overlap": map[string]any{
					"type":        "integer",
					"description": "Overlap between chunks in characters",
					"default":     t.cfg.ChunkOverlap,
				},
				"metadata_fields": map[string]any{
					"type":        "object",
					"description": "Additional metadata to attach to every chunk",
				},
			},
			"required": []string{"document_url"},
		},
	}
}

func (t *ingestTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	reference := strings.TrimSpace(getsafe.String(args, "document_url"))
	if len(reference) == 0 {
		return nil, errors.New("document_url is required")
	}

	collection := getsafe.String(args, "collection_name")
	if len(collection) == 0 {
		collection = t.cfg.DefaultCollection
	}

	return t.pipeline.Ingest(ctx, pipeline.Request{
		Reference:    reference,
		Collection:   collection,
		MaxChunkSize: getsafe.Int(args, "max_chunk_size", t.cfg.MaxChunkSize),
		ChunkOverlap: getsafe.Int(args, "chunk_overlap", t.cfg.ChunkOverlap),
		Metadata:     getsafe.Metadata(args, "metadata_fields"),
	})
}

func NewToolHandler(p *pipeline.Pipeline, cfg config.Config) toolhandler.ToolHandler {
	return &ingestTool{
		pipeline: p,
		cfg:      cfg,
	}
}
