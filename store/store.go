package store

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrCollectionNotFound = errors.New("collection not found")

// DimensionError reports a write whose embedding length disagrees with the
// collection's established dimension.
type DimensionError struct {
	Collection string
	Want       int
	Got        int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("collection %s expects %d-dimensional embeddings, got %d", e.Collection, e.Want, e.Got)
}

type CollectionInfo struct {
	Collection  string `json:"collection"`
	RecordCount int    `json:"record_count"`
	Dimension   int    `json:"dimension"`
}

// Store persists chunk records in named collections and searches them by
// vector similarity. A collection comes into existence on first write; every
// record in it must carry an embedding of the same length.
type Store interface {
	// UpsertMany appends records to the collection, creating it if needed.
	UpsertMany(ctx context.Context, collection string, records []Record) error

	// VectorSearch returns up to limit records ranked by descending cosine
	// similarity to vector, excluding scores below minScore. Ties keep
	// insertion order. Searching a collection that has never been written
	// fails with ErrCollectionNotFound.
	VectorSearch(ctx context.Context, collection string, vector []float32, limit int, minScore float64) ([]Record, error)

	// DescribeCollection reports record count and embedding dimension.
	DescribeCollection(ctx context.Context, collection string) (CollectionInfo, error)

	// ListCollections returns the names of every collection in the store.
	ListCollections(ctx context.Context) ([]string, error)
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
