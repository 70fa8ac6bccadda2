package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/docqa/docqa/config"
	"github.com/docqa/docqa/embedder"
	googleembedder "github.com/docqa/docqa/embedder/google"
	openaiembedder "github.com/docqa/docqa/embedder/openai"
	"github.com/docqa/docqa/generator"
	anthropicgenerator "github.com/docqa/docqa/generator/anthropic"
	openaigenerator "github.com/docqa/docqa/generator/openai"
	"github.com/docqa/docqa/pipeline"
	"github.com/docqa/docqa/retrieval"
	httpserver "github.com/docqa/docqa/server/http"
	"github.com/docqa/docqa/store"
	memorystore "github.com/docqa/docqa/store/memory"
	mongostore "github.com/docqa/docqa/store/mongo"
	postgresstore "github.com/docqa/docqa/store/postgres"
	qdrantstore "github.com/docqa/docqa/store/qdrant"
	"github.com/docqa/docqa/synthesizer"
	toolhandler "github.com/docqa/docqa/tool_handler"
	"github.com/docqa/docqa/tool_handler/collections"
	"github.com/docqa/docqa/tool_handler/ingest"
	"github.com/docqa/docqa/tool_handler/query"
	"github.com/docqa/docqa/tool_handler/search"
)

var cfg struct {
	Address string `help:"Address to serve on" default:":8080"`

	EmbedderProvider    string `help:"Embedding provider (openai or google)" default:"openai"`
	EmbedderKey         string `help:"API key for the embedding provider" env:"EMBEDDING_API_KEY" default:""`
	EmbedderModel       string `help:"Model identifier for embeddings" default:"text-embedding-ada-002"`
	EmbeddingDimensions int    `help:"Embedding vector dimensionality" default:"1536"`

	GeneratorProvider string `help:"Completion provider (openai or anthropic)" default:"openai"`
	GeneratorKey      string `help:"API key for the completion provider" env:"COMPLETION_API_KEY" default:""`
	GeneratorModel    string `help:"Model identifier for completions" default:"gpt-4o-mini"`

	StoreBackend  string `help:"Store backend (memory, postgres, qdrant, or mongo)" default:"memory"`
	StoreLocation string `help:"Store connection string or URL" env:"STORE_LOCATION" default:""`
	StoreKey      string `help:"API key for the store, if any" env:"STORE_API_KEY" default:""`
	StoreDatabase string `help:"Database name for backends that need one" default:"vector_rag"`

	MaxChunkSize        int     `help:"Default maximum chunk size in characters" default:"1000"`
	ChunkOverlap        int     `help:"Default overlap between chunks in characters" default:"200"`
	DefaultCollection   string  `help:"Default collection name" default:"documents"`
	SimilarityThreshold float64 `help:"Default minimum similarity score" default:"0.7"`
	SearchLimit         int     `help:"Default number of search results" default:"5"`
	MaxContextSize      int     `help:"Maximum grounding context size in characters" default:"8000"`
}

func main() {
	_ = godotenv.Load()
	_ = kong.Parse(&cfg)

	conf := config.Config{
		EmbeddingAPIKey:     cfg.EmbedderKey,
		EmbeddingModel:      cfg.EmbedderModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		CompletionAPIKey:    cfg.GeneratorKey,
		CompletionModel:     cfg.GeneratorModel,
		StoreBackend:        cfg.StoreBackend,
		StoreLocation:       cfg.StoreLocation,
		StoreDatabase:       cfg.StoreDatabase,
		MaxChunkSize:        cfg.MaxChunkSize,
		ChunkOverlap:        cfg.ChunkOverlap,
		DefaultCollection:   cfg.DefaultCollection,
		SimilarityThreshold: cfg.SimilarityThreshold,
		SearchLimit:         cfg.SearchLimit,
		MaxContextSize:      cfg.MaxContextSize,
	}

	emb := newEmbedder(conf)
	gen := newGenerator(conf)
	st := newStore(conf)

	pipe := pipeline.NewPipeline(
		pipeline.WithEmbedder(emb),
		pipeline.WithStore(st),
	)

	engine := retrieval.NewEngine(
		retrieval.WithEmbedder(emb),
		retrieval.WithStore(st),
	)

	synth := synthesizer.NewSynthesizer(
		synthesizer.WithGenerator(gen),
		synthesizer.WithMaxContextSize(conf.MaxContextSize),
	)

	registry := toolhandler.NewRegistry(
		ingest.NewToolHandler(pipe, conf),
		search.NewToolHandler(engine, conf),
		query.NewToolHandler(engine, synth, conf),
		collections.NewToolHandler(st),
	)

	server := httpserver.NewServer(registry)

	slog.Info(
		"serving document question answering tools",
		"address", cfg.Address,
		"store", conf.StoreBackend,
		"embedder", cfg.EmbedderProvider,
		"generator", cfg.GeneratorProvider,
	)

	if err := http.ListenAndServe(cfg.Address, server.Handler()); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newEmbedder(conf config.Config) embedder.Embedder {
	opts := []embedder.Option{
		embedder.WithApiKey(conf.EmbeddingAPIKey),
		embedder.WithModel(conf.EmbeddingModel),
	}

	switch cfg.EmbedderProvider {
	case "google":
		return googleembedder.NewEmbedder(opts...)
	default:
		return openaiembedder.NewEmbedder(opts...)
	}
}

func newGenerator(conf config.Config) generator.Generator {
	opts := []generator.Option{
		generator.WithApiKey(conf.CompletionAPIKey),
		generator.WithModel(conf.CompletionModel),
		generator.WithSystemPrompt(synthesizer.SystemPrompt),
	}

	switch cfg.GeneratorProvider {
	case "anthropic":
		return anthropicgenerator.NewGenerator(opts...)
	default:
		return openaigenerator.NewGenerator(opts...)
	}
}

func newStore(conf config.Config) store.Store {
	opts := []store.Option{
		store.WithLocation(conf.StoreLocation),
		store.WithApiKey(cfg.StoreKey),
		store.WithDatabase(conf.StoreDatabase),
		store.WithVectorSize(conf.EmbeddingDimensions),
	}

	switch conf.StoreBackend {
	case "postgres":
		return postgresstore.NewStore(opts...)
	case "qdrant":
		return qdrantstore.NewStore(opts...)
	case "mongo":
		return mongostore.NewStore(opts...)
	default:
		return memorystore.NewStore(opts...)
	}
}
