package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docqa/docqa/store"
)

type memoryStore struct {
	options     store.Options
	collections map[string][]store.Record
	mtx         sync.RWMutex
}

func (s *memoryStore) UpsertMany(ctx context.Context, collection string, records []store.Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, exists := s.collections[collection]

	dimension := 0
	if exists && len(existing) > 0 {
		dimension = len(existing[0].Embedding)
	} else {
		dimension = len(records[0].Embedding)
	}

	for _, rec := range records {
		if len(rec.Embedding) != dimension {
			return &store.DimensionError{
				Collection: collection,
				Want:       dimension,
				Got:        len(rec.Embedding),
			}
		}
	}

	now := time.Now().UTC()

	for _, rec := range records {
		cpy := make([]float32, len(rec.Embedding))
		copy(cpy, rec.Embedding)

		stored := store.Record{
			Id:        uuid.New().String(),
			Text:      rec.Text,
			Metadata:  rec.Metadata,
			Embedding: cpy,
			CreatedAt: now,
		}

		s.collections[collection] = append(s.collections[collection], stored)
	}

	return nil
}

func (s *memoryStore) VectorSearch(ctx context.Context, collection string, vector []float32, limit int, minScore float64) ([]store.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	records, exists := s.collections[collection]
	if !exists {
		return nil, store.ErrCollectionNotFound
	}

	candidates := make([]store.Record, 0, len(records))

	for _, rec := range records {
		score := store.CosineSimilarity(vector, rec.Embedding)
		if score < minScore {
			continue
		}
		rec.Score = score
		candidates = append(candidates, rec)
	}

	// stable sort keeps insertion order for equal scores
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

func (s *memoryStore) DescribeCollection(ctx context.Context, collection string) (store.CollectionInfo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	records, exists := s.collections[collection]
	if !exists {
		return store.CollectionInfo{}, store.ErrCollectionNotFound
	}

	info := store.CollectionInfo{
		Collection:  collection,
		RecordCount: len(records),
	}

	if len(records) > 0 {
		info.Dimension = len(records[0].Embedding)
	}

	return info, nil
}

func (s *memoryStore) ListCollections(ctx context.Context) ([]string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}

	sort.Strings(names)

	return names, nil
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	s := &memoryStore{
		options:     options,
		collections: map[string][]store.Record{},
		mtx:         sync.RWMutex{},
	}

	return s
}
