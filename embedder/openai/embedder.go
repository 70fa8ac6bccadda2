package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/docqa/docqa/embedder"
)

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

func (e *openAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	cleaned := make([]string, 0, len(texts))
	for _, text := range texts {
		trimmed := strings.TrimSpace(text)
		if len(trimmed) == 0 {
			return nil, embedder.ErrEmptyInput
		}
		if runes := []rune(trimmed); len(runes) > e.options.MaxChars {
			trimmed = string(runes[:e.options.MaxChars])
		}
		cleaned = append(cleaned, trimmed)
	}

	vectors := make([][]float32, 0, len(cleaned))

	for start := 0; start < len(cleaned); start += e.options.BatchSize {
		end := start + e.options.BatchSize
		if end > len(cleaned) {
			end = len(cleaned)
		}

		rsp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: cleaned[start:end],
			Model: openai.EmbeddingModel(e.options.Model),
		})
		if err != nil {
			return nil, err
		}

		if len(rsp.Data) != end-start {
			return nil, errors.New("embedding count mismatch from OpenAI")
		}

		// response order is not guaranteed; Index maps each embedding back
		// to its input
		batch := make([][]float32, end-start)
		for _, data := range rsp.Data {
			if data.Index < 0 || data.Index >= len(batch) || batch[data.Index] != nil {
				return nil, errors.New("unexpected embedding index from OpenAI")
			}
			batch[data.Index] = data.Embedding
		}

		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	e := &openAIEmbedder{
		options: options,
	}

	client := openai.NewClient(options.ApiKey)

	e.client = client

	return e
}
