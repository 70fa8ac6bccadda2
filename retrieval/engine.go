package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docqa/docqa/store"
	"github.com/docqa/docqa/util/retry"
)

var (
	ErrEmptyQuery   = errors.New("query cannot be empty")
	ErrInvalidLimit = errors.New("limit must be greater than 0")
)

// Result pairs a stored chunk with its similarity to the query.
type Result struct {
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// Engine answers free-text queries with the most similar stored chunks:
// embed the query, search the collection, filter by threshold. A collection
// that has never been written yields an empty result, not an error.
type Engine struct {
	options Options
}

func (e *Engine) Search(ctx context.Context, query string, collection string, limit int, minScore float64) ([]Result, error) {
	if len(strings.TrimSpace(query)) == 0 {
		return nil, ErrEmptyQuery
	}

	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	if minScore < -1 || minScore > 1 {
		return nil, fmt.Errorf("similarity threshold %v is outside [-1, 1]", minScore)
	}

	var vectors [][]float32
	if err := retry.Do(ctx, e.options.Retry, func(ctx context.Context) error {
		var embedErr error
		vectors, embedErr = e.options.Embedder.Embed(ctx, []string{strings.TrimSpace(query)})
		return embedErr
	}); err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if len(vectors) != 1 {
		return nil, errors.New("failed to generate embedding for query")
	}

	records, err := e.options.Store.VectorSearch(ctx, collection, vectors[0], limit, minScore)
	if errors.Is(err, store.ErrCollectionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]Result, 0, len(records))
	for _, rec := range records {
		results = append(results, Result{
			Text:     rec.Text,
			Score:    rec.Score,
			Metadata: rec.Metadata,
		})
	}

	return results, nil
}

func NewEngine(opts ...Option) *Engine {
	options := NewOptions(opts...)

	if options.Embedder == nil || options.Store == nil {
		panic("retrieval engine requires an embedder and a store")
	}

	return &Engine{
		options: options,
	}
}
