package mongo

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docqa/docqa/store"
)

// vectorIndexName must match the Atlas Search index created on each
// collection's embedding path.
const vectorIndexName = "vector_index"

type mongoStore struct {
	options store.Options
	client  *mongo.Client
	db      *mongo.Database
}

type chunkDocument struct {
	Id        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	Metadata  map[string]any     `bson:"metadata"`
	Embedding []float32          `bson:"embedding"`
	Score     float64            `bson:"similarity_score,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (s *mongoStore) UpsertMany(ctx context.Context, collection string, records []store.Record) error {
	if len(records) == 0 {
		return nil
	}

	dimension, _, err := s.collectionDimension(ctx, collection)
	if err != nil {
		return err
	}
	if dimension == 0 {
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

	// ids are generated client-side so a failed ordered InsertMany can be
	// rolled back; otherwise a retry of the batch would duplicate the
	// documents that made it in before the failure.
	ids := make([]primitive.ObjectID, 0, len(records))
	docs := make([]any, 0, len(records))
	for _, rec := range records {
		id := primitive.NewObjectID()
		ids = append(ids, id)
		docs = append(docs, chunkDocument{
			Id:        id,
			Content:   rec.Text,
			Metadata:  rec.Metadata,
			Embedding: rec.Embedding,
			CreatedAt: now,
		})
	}

	if _, err := s.db.Collection(collection).InsertMany(ctx, docs); err != nil {
		if _, cleanupErr := s.db.Collection(collection).DeleteMany(
			ctx,
			bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}},
		); cleanupErr != nil {
			slog.ErrorContext(ctx, "failed to roll back partial insert", "collection", collection, "error", cleanupErr)
		}
		return err
	}

	return nil
}

func (s *mongoStore) VectorSearch(ctx context.Context, collection string, vector []float32, limit int, minScore float64) ([]store.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	if _, exists, err := s.collectionDimension(ctx, collection); err != nil {
		return nil, err
	} else if !exists {
		return nil, store.ErrCollectionNotFound
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: vectorIndexName},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: vector},
			{Key: "numCandidates", Value: limit * 10},
			{Key: "limit", Value: limit},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "similarity_score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
		{{Key: "$match", Value: bson.D{
			{Key: "similarity_score", Value: bson.D{{Key: "$gte", Value: minScore}}},
		}}},
	}

	cursor, err := s.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []store.Record

	for cursor.Next(ctx) {
		var doc chunkDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}

		records = append(records, store.Record{
			Id:        doc.Id.Hex(),
			Text:      doc.Content,
			Metadata:  doc.Metadata,
			Embedding: doc.Embedding,
			Score:     doc.Score,
			CreatedAt: doc.CreatedAt,
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *mongoStore) DescribeCollection(ctx context.Context, collection string) (store.CollectionInfo, error) {
	dimension, exists, err := s.collectionDimension(ctx, collection)
	if err != nil {
		return store.CollectionInfo{}, err
	}
	if !exists {
		return store.CollectionInfo{}, store.ErrCollectionNotFound
	}

	count, err := s.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return store.CollectionInfo{}, err
	}

	return store.CollectionInfo{
		Collection:  collection,
		RecordCount: int(count),
		Dimension:   dimension,
	}, nil
}

func (s *mongoStore) ListCollections(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (s *mongoStore) collectionDimension(ctx context.Context, collection string) (int, bool, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: collection}})
	if err != nil {
		return 0, false, err
	}
	if len(names) == 0 {
		return 0, false, nil
	}

	var doc chunkDocument
	err = s.db.Collection(collection).FindOne(
		ctx,
		bson.D{},
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}}),
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, err
	}

	return len(doc.Embedding), true, nil
}

func NewStore(opts ...store.Option) store.Store {
	storeOptions := store.NewOptions(opts...)

	client, err := mongo.Connect(
		context.Background(),
		options.Client().ApplyURI(storeOptions.Location),
	)
	if err != nil {
		detail := "failed to connect with mongo store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	if err := client.Ping(context.Background(), nil); err != nil {
		detail := "failed to ping with mongo store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	s := &mongoStore{
		options: storeOptions,
		client:  client,
		db:      client.Database(storeOptions.Database),
	}

	return s
}
