package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docqa/docqa/chunker"
	"github.com/docqa/docqa/store"
	"github.com/docqa/docqa/util/retry"
)

// Stage names for failure attribution.
const (
	StageFetch   = "fetch"
	StageExtract = "extract"
	StageChunk   = "chunk"
	StageEmbed   = "embed"
	StageStore   = "store"
)

// StageError wraps a failure with the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("ingestion failed at %s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type Request struct {
	Reference    string
	Collection   string
	MaxChunkSize int
	ChunkOverlap int
	Metadata     map[string]any
}

type Result struct {
	ChunksStored int    `json:"chunks_stored"`
	Collection   string `json:"collection"`
}

// Pipeline ingests one document: fetch, extract, chunk, embed, store. Chunks
// are embedded in full before anything is written, so a failure at any stage
// leaves the collection untouched.
type Pipeline struct {
	options Options
}

func (p *Pipeline) Ingest(ctx context.Context, req Request) (Result, error) {
	if len(strings.TrimSpace(req.Reference)) == 0 {
		return Result{}, errors.New("document reference is required")
	}

	if len(strings.TrimSpace(req.Collection)) == 0 {
		return Result{}, errors.New("collection name is required")
	}

	if err := chunker.Validate(req.MaxChunkSize, req.ChunkOverlap); err != nil {
		return Result{}, err
	}

	raw, err := p.options.Fetcher.Fetch(ctx, req.Reference)
	if err != nil {
		return Result{}, &StageError{Stage: StageFetch, Err: err}
	}

	text := extract(raw)
	if len(text) == 0 {
		slog.InfoContext(ctx, "no content extracted from document", "reference", req.Reference)
		return Result{Collection: req.Collection}, nil
	}

	split, err := chunker.Split(text, req.MaxChunkSize, req.ChunkOverlap)
	if err != nil {
		return Result{}, &StageError{Stage: StageChunk, Err: err}
	}

	// whitespace runs inside a document can produce blank chunks; they carry
	// nothing worth embedding
	segments := make([]string, 0, len(split))
	for _, segment := range split {
		if len(strings.TrimSpace(segment)) == 0 {
			continue
		}
		segments = append(segments, segment)
	}

	if len(segments) == 0 {
		slog.InfoContext(ctx, "no content extracted from document", "reference", req.Reference)
		return Result{Collection: req.Collection}, nil
	}

	var vectors [][]float32
	if err := retry.Do(ctx, p.options.Retry, func(ctx context.Context) error {
		var embedErr error
		vectors, embedErr = p.options.Embedder.Embed(ctx, segments)
		return embedErr
	}); err != nil {
		return Result{}, &StageError{Stage: StageEmbed, Err: err}
	}

	if len(vectors) != len(segments) {
		return Result{}, &StageError{
			Stage: StageEmbed,
			Err:   fmt.Errorf("embedding count mismatch: %d vs %d", len(vectors), len(segments)),
		}
	}

	records := make([]store.Record, 0, len(segments))
	for i, segment := range segments {
		metadata := map[string]any{
			"source":       req.Reference,
			"chunk_index":  i,
			"total_chunks": len(segments),
		}
		for k, v := range req.Metadata {
			if len(strings.TrimSpace(k)) == 0 {
				continue
			}
			metadata[k] = v
		}

		records = append(records, store.Record{
			Text:      segment,
			Metadata:  metadata,
			Embedding: vectors[i],
		})
	}

	if err := retry.Do(ctx, p.options.Retry, func(ctx context.Context) error {
		return p.options.Store.UpsertMany(ctx, req.Collection, records)
	}); err != nil {
		return Result{}, &StageError{Stage: StageStore, Err: err}
	}

	slog.InfoContext(
		ctx,
		"document ingested",
		"reference", req.Reference,
		"collection", req.Collection,
		"chunks", len(records),
	)

	return Result{
		ChunksStored: len(records),
		Collection:   req.Collection,
	}, nil
}

// extract normalizes raw document bytes into plain text. Structured formats
// are out of scope; line endings are normalized and surrounding whitespace
// trimmed.
func extract(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.TrimSpace(text)
}

func NewPipeline(opts ...Option) *Pipeline {
	options := NewOptions(opts...)

	if options.Embedder == nil || options.Store == nil {
		panic("pipeline requires an embedder and a store")
	}

	if options.Fetcher == nil {
		options.Fetcher = newDefaultFetcher(options.FetchTimeout)
	}

	return &Pipeline{
		options: options,
	}
}
