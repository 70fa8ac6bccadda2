package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docqa/docqa/store"
)

// fakeQdrant serves just enough of the points API for the store to run
// against.
type fakeQdrant struct {
	exists        bool
	createBody    map[string]any
	searchResults string
}

func (f *fakeQdrant) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections":
			w.Write([]byte(`{"status": "ok", "result": {"collections": [{"name": "docs"}, {"name": "manuals"}]}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/collections/docs":
			if !f.exists {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"status": {"error": "Not found"}}`))
				return
			}
			w.Write([]byte(`{"status": "ok", "result": {"config": {"params": {"vectors": {"size": 2}}}}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
			json.NewDecoder(r.Body).Decode(&f.createBody)
			f.exists = true
			w.Write([]byte(`{"status": "ok", "result": true}`))
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs/points":
			w.Write([]byte(`{"status": "ok", "result": {}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/collections/docs/points/search":
			w.Write([]byte(f.searchResults))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status": {"error": "Not found"}}`))
		}
	}
}

func newTestStore(t *testing.T, fake *fakeQdrant, opts ...store.Option) store.Store {
	t.Helper()

	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	return NewStore(append([]store.Option{store.WithLocation(server.URL)}, opts...)...)
}

func TestUpsertManyProvisionsAtConfiguredSize(t *testing.T) {
	fake := &fakeQdrant{}
	s := newTestStore(t, fake, store.WithVectorSize(3))

	err := s.UpsertMany(context.Background(), "docs", []store.Record{
		{Text: "a", Embedding: []float32{1, 0, 0}},
	})
	require.NoError(t, err)

	require.NotNil(t, fake.createBody)
	vectors := fake.createBody["vectors"].(map[string]any)
	assert.Equal(t, float64(3), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestUpsertManyRejectsMismatchWithConfiguredSize(t *testing.T) {
	fake := &fakeQdrant{}
	s := newTestStore(t, fake, store.WithVectorSize(3))

	err := s.UpsertMany(context.Background(), "docs", []store.Record{
		{Text: "a", Embedding: []float32{1, 0}},
	})

	var dimErr *store.DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 3, dimErr.Want)
	assert.Equal(t, 2, dimErr.Got)
	assert.Nil(t, fake.createBody)
}

func TestUpsertManySizesFromFirstRecordWhenUnconfigured(t *testing.T) {
	fake := &fakeQdrant{}
	s := newTestStore(t, fake)

	err := s.UpsertMany(context.Background(), "docs", []store.Record{
		{Text: "a", Embedding: []float32{1, 0}},
	})
	require.NoError(t, err)

	require.NotNil(t, fake.createBody)
	vectors := fake.createBody["vectors"].(map[string]any)
	assert.Equal(t, float64(2), vectors["size"])
}

func TestVectorSearchBreaksScoreTiesInInsertionOrder(t *testing.T) {
	fake := &fakeQdrant{
		exists: true,
		searchResults: `{"status": "ok", "result": [
			{"id": "b", "score": 0.9, "vector": [1, 0], "payload": {"content": "second", "seq": 1700000000000002, "metadata": {}}},
			{"id": "a", "score": 0.9, "vector": [1, 0], "payload": {"content": "first", "seq": 1700000000000001, "metadata": {}}},
			{"id": "c", "score": 0.95, "vector": [1, 0], "payload": {"content": "best", "seq": 1700000000000003, "metadata": {}}}
		]}`,
	}
	s := newTestStore(t, fake)

	results, err := s.VectorSearch(context.Background(), "docs", []float32{1, 0}, 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "best", results[0].Text)
	assert.Equal(t, "first", results[1].Text)
	assert.Equal(t, "second", results[2].Text)
}

func TestVectorSearchAppliesThreshold(t *testing.T) {
	fake := &fakeQdrant{
		exists: true,
		searchResults: `{"status": "ok", "result": [
			{"id": "a", "score": 0.95, "vector": [1, 0], "payload": {"content": "kept", "seq": 1, "metadata": {}}},
			{"id": "b", "score": 0.4, "vector": [1, 0], "payload": {"content": "dropped", "seq": 2, "metadata": {}}}
		]}`,
	}
	s := newTestStore(t, fake)

	results, err := s.VectorSearch(context.Background(), "docs", []float32{1, 0}, 10, 0.7)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kept", results[0].Text)
}

func TestVectorSearchMissingCollection(t *testing.T) {
	fake := &fakeQdrant{}
	s := newTestStore(t, fake)

	_, err := s.VectorSearch(context.Background(), "docs", []float32{1, 0}, 10, 0)
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)
}

func TestListCollections(t *testing.T) {
	fake := &fakeQdrant{}
	s := newTestStore(t, fake)

	names, err := s.ListCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"docs", "manuals"}, names)
}
