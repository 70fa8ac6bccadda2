package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docqa/docqa/store"
	getsafe "github.com/docqa/docqa/util/getsafe"
)

type qdrantStore struct {
	options store.Options
	client  *http.Client
}

func (s *qdrantStore) UpsertMany(ctx context.Context, collection string, records []store.Record) error {
	if len(records) == 0 {
		return nil
	}

	dimension, exists, err := s.collectionDimension(ctx, collection)
	if err != nil {
		return err
	}

	if !exists {
		// provision at the configured size when one is set, otherwise let
		// the first record decide
		dimension = len(records[0].Embedding)
		if s.options.VectorSize > 0 {
			dimension = s.options.VectorSize
		}
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

	if !exists {
		if err := s.createCollection(ctx, collection, dimension); err != nil {
			return err
		}
	}

	points := make([]map[string]any, 0, len(records))
	now := time.Now().UTC()

	// seq breaks score ties in insertion order at search time. Microsecond
	// resolution keeps it exact through the JSON float64 round trip.
	baseSeq := now.UnixMicro()

	for i, rec := range records {
		payload := map[string]any{
			"content":    rec.Text,
			"metadata":   rec.Metadata,
			"seq":        baseSeq + int64(i),
			"created_at": now.Format(time.RFC3339Nano),
		}

		points = append(points, map[string]any{
			"id":      uuid.New().String(),
			"vector":  rec.Embedding,
			"payload": payload,
		})
	}

	req := map[string]any{
		"points": points,
	}

	var rsp qdrantEnvelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(collection))

	if err := s.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

func (s *qdrantStore) VectorSearch(ctx context.Context, collection string, vector []float32, limit int, minScore float64) ([]store.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	if _, exists, err := s.collectionDimension(ctx, collection); err != nil {
		return nil, err
	} else if !exists {
		return nil, store.ErrCollectionNotFound
	}

	req := map[string]any{
		"vector":          vector,
		"limit":           limit,
		"score_threshold": minScore,
		"with_vector":     true,
		"with_payload":    true,
	}

	var rsp qdrantEnvelope[[]qdrantPointResult]

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(collection))

	if err := s.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, err
	}

	type ranked struct {
		rec store.Record
		seq float64
	}

	candidates := make([]ranked, 0, len(rsp.Result))

	for _, point := range rsp.Result {
		payload := point.Payload

		if point.Score < minScore {
			continue
		}

		createdAt, _ := time.Parse(time.RFC3339Nano, getsafe.String(payload, "created_at"))

		candidates = append(candidates, ranked{
			rec: store.Record{
				Id:        point.Id,
				Text:      getsafe.String(payload, "content"),
				Metadata:  getsafe.Metadata(payload, "metadata"),
				Embedding: point.Vector,
				Score:     point.Score,
				CreatedAt: createdAt,
			},
			seq: getsafe.Float(payload, "seq", 0),
		})
	}

	// the engine gives no secondary ordering for equal scores; seq restores
	// insertion order
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].rec.Score != candidates[j].rec.Score {
			return candidates[i].rec.Score > candidates[j].rec.Score
		}
		return candidates[i].seq < candidates[j].seq
	})

	results := make([]store.Record, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, candidate.rec)
	}

	return results, nil
}

func (s *qdrantStore) DescribeCollection(ctx context.Context, collection string) (store.CollectionInfo, error) {
	dimension, exists, err := s.collectionDimension(ctx, collection)
	if err != nil {
		return store.CollectionInfo{}, err
	}
	if !exists {
		return store.CollectionInfo{}, store.ErrCollectionNotFound
	}

	path := fmt.Sprintf("/collections/%s/points/count", url.PathEscape(collection))

	var rsp qdrantEnvelope[qdrantCountResult]

	if err := s.do(ctx, http.MethodPost, path, map[string]any{"exact": true}, &rsp); err != nil {
		return store.CollectionInfo{}, err
	}

	return store.CollectionInfo{
		Collection:  collection,
		RecordCount: rsp.Result.Count,
		Dimension:   dimension,
	}, nil
}

func (s *qdrantStore) ListCollections(ctx context.Context) ([]string, error) {
	var rsp qdrantEnvelope[qdrantCollectionsResult]

	if err := s.do(ctx, http.MethodGet, "/collections", nil, &rsp); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rsp.Result.Collections))
	for _, collection := range rsp.Result.Collections {
		names = append(names, collection.Name)
	}

	return names, nil
}

func (s *qdrantStore) collectionDimension(ctx context.Context, collection string) (int, bool, error) {
	path := fmt.Sprintf("/collections/%s", url.PathEscape(collection))

	var rsp qdrantEnvelope[qdrantCollectionResult]

	err := s.do(ctx, http.MethodGet, path, nil, &rsp)
	if err != nil {
		if strings.Contains(err.Error(), "404") {
			return 0, false, nil
		}
		return 0, false, err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") {
		return 0, false, nil
	}

	return rsp.Result.Config.Params.Vectors.Size, true, nil
}

func (s *qdrantStore) createCollection(ctx context.Context, collection string, dimension int) error {
	req := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}

	path := fmt.Sprintf("/collections/%s", url.PathEscape(collection))

	var rsp qdrantEnvelope[json.RawMessage]

	if err := s.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

func (s *qdrantStore) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := s.options.Location + path
	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")

	if len(s.options.ApiKey) > 0 {
		request.Header.Set("api-key", s.options.ApiKey)
		request.Header.Set("Authorization", "Bearer "+s.options.ApiKey)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("qdrant http %d: %s", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	if len(options.Location) == 0 {
		panic("missing location for qdrant store")
	}

	client := &http.Client{
		Timeout: 15 * time.Second,
	}

	s := &qdrantStore{
		options: options,
		client:  client,
	}

	return s
}
