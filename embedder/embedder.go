package embedder

import (
	"context"
	"errors"
)

var ErrEmptyInput = errors.New("cannot embed empty text")

// Embedder turns texts into fixed-length vectors, one per input, in input
// order. Implementations do not retry; callers own the retry policy.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
