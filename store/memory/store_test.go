package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docqa/docqa/store"
)

func TestUpsertManyEnforcesDimension(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.UpsertMany(ctx, "docs", []store.Record{
		{Text: "a", Embedding: []float32{1, 0, 0}},
	})
	require.NoError(t, err)

	err = s.UpsertMany(ctx, "docs", []store.Record{
		{Text: "b", Embedding: []float32{1, 0}},
	})

	var dimErr *store.DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 3, dimErr.Want)
	assert.Equal(t, 2, dimErr.Got)

	info, err := s.DescribeCollection(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 1, info.RecordCount)
	assert.Equal(t, 3, info.Dimension)
}

func TestListCollections(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	names, err := s.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.UpsertMany(ctx, "manuals", []store.Record{
		{Text: "a", Embedding: []float32{1, 0}},
	}))
	require.NoError(t, s.UpsertMany(ctx, "contracts", []store.Record{
		{Text: "b", Embedding: []float32{0, 1}},
	}))

	names, err = s.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"contracts", "manuals"}, names)
}

func TestUpsertManyRejectsMixedBatch(t *testing.T) {
	s := NewStore()

	err := s.UpsertMany(context.Background(), "docs", []store.Record{
		{Text: "a", Embedding: []float32{1, 0}},
		{Text: "b", Embedding: []float32{1, 0, 0}},
	})

	var dimErr *store.DimensionError
	require.ErrorAs(t, err, &dimErr)
}

func TestVectorSearchUnknownCollection(t *testing.T) {
	s := NewStore()

	_, err := s.VectorSearch(context.Background(), "never-written", []float32{1, 0}, 5, 0)
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)

	_, err = s.DescribeCollection(context.Background(), "never-written")
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)
}

func TestVectorSearchRankingAndThreshold(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.UpsertMany(ctx, "docs", []store.Record{
		{Text: "orthogonal", Embedding: []float32{0, 1}},
		{Text: "exact", Embedding: []float32{1, 0}},
		{Text: "close", Embedding: []float32{1, 0.2}},
	})
	require.NoError(t, err)

	results, err := s.VectorSearch(ctx, "docs", []float32{1, 0}, 10, 0.7)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "exact", results[0].Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "close", results[1].Text)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestVectorSearchBelowThresholdIsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.UpsertMany(ctx, "docs", []store.Record{
		{Text: "far away", Embedding: []float32{0.42, 0.9}},
	})
	require.NoError(t, err)

	results, err := s.VectorSearch(ctx, "docs", []float32{1, 0}, 3, 0.7)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorSearchTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	// identical embeddings score identically; earlier insert wins
	err := s.UpsertMany(ctx, "docs", []store.Record{
		{Text: "first", Embedding: []float32{1, 1}},
		{Text: "second", Embedding: []float32{1, 1}},
		{Text: "third", Embedding: []float32{1, 1}},
	})
	require.NoError(t, err)

	results, err := s.VectorSearch(ctx, "docs", []float32{1, 1}, 2, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Text)
	assert.Equal(t, "second", results[1].Text)
}

func TestCosineSimilarityProperties(t *testing.T) {
	a := []float32{0.3, -0.7, 0.1, 0.9}
	b := []float32{-0.2, 0.5, 0.8, 0.4}

	assert.InDelta(t, 1.0, store.CosineSimilarity(a, a), 1e-9)
	assert.InDelta(t, store.CosineSimilarity(a, b), store.CosineSimilarity(b, a), 1e-12)
	assert.Equal(t, 0.0, store.CosineSimilarity(a, []float32{1, 2}))
	assert.Equal(t, 0.0, store.CosineSimilarity(a, []float32{0, 0, 0, 0}))
}
