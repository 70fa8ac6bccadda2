package config

// Config captures every process-wide setting once at startup. Components
// receive the values they need at construction and never read the
// environment themselves.
type Config struct {
	// Embedding provider
	EmbeddingAPIKey     string
	EmbeddingModel      string
	EmbeddingDimensions int

	// Completion provider
	CompletionAPIKey string
	CompletionModel  string

	// Store
	StoreBackend  string
	StoreLocation string
	StoreDatabase string

	// Chunking defaults
	MaxChunkSize int
	ChunkOverlap int

	// Search defaults
	DefaultCollection   string
	SimilarityThreshold float64
	SearchLimit         int

	// Answer synthesis
	MaxContextSize int
}

func Default() Config {
	return Config{
		EmbeddingModel:      "text-embedding-ada-002",
		EmbeddingDimensions: 1536,
		CompletionModel:     "gpt-4o-mini",
		StoreBackend:        "memory",
		MaxChunkSize:        1000,
		ChunkOverlap:        200,
		DefaultCollection:   "documents",
		SimilarityThreshold: 0.7,
		SearchLimit:         5,
		MaxContextSize:      8000,
	}
}
