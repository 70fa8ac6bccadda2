package generator

import "context"

// Generator produces one completion for one prompt. Implementations do not
// retry; callers own the retry policy.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
