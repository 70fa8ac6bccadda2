package synthesizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docqa/docqa/retrieval"
)

type fakeGenerator struct {
	calls   int
	prompt  string
	answer  string
	failErr error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.failErr != nil {
		return "", f.failErr
	}
	return f.answer, nil
}

func TestAnswerNoResultsShortCircuits(t *testing.T) {
	g := &fakeGenerator{answer: "should never be used"}
	s := NewSynthesizer(WithGenerator(g))

	answer, err := s.Answer(context.Background(), "what is the termination clause?", nil)
	require.NoError(t, err)

	assert.Equal(t, NoInformationAnswer, answer.Answer)
	assert.Empty(t, answer.Sources)
	assert.Zero(t, g.calls, "completion provider must not be called without grounding")
}

func TestAnswerGroundsPromptInResults(t *testing.T) {
	g := &fakeGenerator{answer: "Termination requires 30 days written notice [Excerpt 1]."}
	s := NewSynthesizer(WithGenerator(g))

	results := []retrieval.Result{
		{
			Text:  "termination requires 30 days notice",
			Score: 0.91,
			Metadata: map[string]any{
				"source":      "contracts/msa.txt",
				"page_number": 4,
			},
		},
		{
			Text:  "either party may terminate for breach",
			Score: 0.84,
		},
	}

	answer, err := s.Answer(context.Background(), "what is the termination clause?", results)
	require.NoError(t, err)

	assert.Equal(t, g.answer, answer.Answer)
	assert.Equal(t, 1, g.calls)

	assert.Contains(t, g.prompt, "Question: what is the termination clause?")
	assert.Contains(t, g.prompt, "[Excerpt 1, similarity: 0.910 (from contracts/msa.txt, page 4)]")
	assert.Contains(t, g.prompt, "termination requires 30 days notice")
	assert.Contains(t, g.prompt, "[Excerpt 2, similarity: 0.840]")

	require.Len(t, answer.Sources, 2)
	assert.Equal(t, 0.91, answer.Sources[0].Score)
	assert.GreaterOrEqual(t, answer.Sources[0].Score, answer.Sources[1].Score)
}

func TestAnswerBoundsContextSize(t *testing.T) {
	g := &fakeGenerator{answer: "ok"}
	s := NewSynthesizer(WithGenerator(g), WithMaxContextSize(600))

	results := []retrieval.Result{
		{Text: strings.Repeat("a", 400), Score: 0.95},
		{Text: strings.Repeat("b", 400), Score: 0.90},
		{Text: strings.Repeat("c", 400), Score: 0.85},
	}

	answer, err := s.Answer(context.Background(), "question?", results)
	require.NoError(t, err)

	// the second and third excerpts exceed the budget
	assert.Len(t, answer.Sources, 1)
	assert.NotContains(t, g.prompt, "bbb")
	assert.NotContains(t, g.prompt, "ccc")
}

func TestAnswerAlwaysIncludesTopResult(t *testing.T) {
	g := &fakeGenerator{answer: "ok"}
	s := NewSynthesizer(WithGenerator(g), WithMaxContextSize(10))

	results := []retrieval.Result{
		{Text: strings.Repeat("a", 400), Score: 0.95},
	}

	answer, err := s.Answer(context.Background(), "question?", results)
	require.NoError(t, err)
	assert.Len(t, answer.Sources, 1)
	assert.Contains(t, g.prompt, "aaa")
}

func TestAnswerPropagatesProviderError(t *testing.T) {
	g := &fakeGenerator{failErr: errors.New("rate limited")}
	s := NewSynthesizer(WithGenerator(g))

	_, err := s.Answer(context.Background(), "question?", []retrieval.Result{
		{Text: "chunk", Score: 0.9},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestAnswerTruncatesSourceSnippets(t *testing.T) {
	g := &fakeGenerator{answer: "ok"}
	s := NewSynthesizer(WithGenerator(g))

	long := strings.Repeat("x", 900)
	answer, err := s.Answer(context.Background(), "question?", []retrieval.Result{
		{Text: long, Score: 0.9},
	})
	require.NoError(t, err)

	require.Len(t, answer.Sources, 1)
	assert.Len(t, answer.Sources[0].Text, 503)
	assert.True(t, strings.HasSuffix(answer.Sources[0].Text, "..."))
}
