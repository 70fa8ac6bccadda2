package synthesizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docqa/docqa/retrieval"
	getsafe "github.com/docqa/docqa/util/getsafe"
)

// NoInformationAnswer is returned when retrieval surfaces nothing above the
// similarity threshold; the completion provider is never called in that case.
const NoInformationAnswer = "I couldn't find any relevant information in the indexed documents to answer this question. Try rephrasing the question or lowering the similarity threshold."

// SystemPrompt constrains the model to the retrieved excerpts.
const SystemPrompt = `You are an AI assistant that answers questions about indexed documents. You will be given relevant excerpts retrieved for a user's question.

Your task is to:
1. Analyze the provided excerpts carefully
2. Answer the question based ONLY on the information in the excerpts
3. Cite the excerpts you relied on
4. If the excerpts don't contain enough information to answer fully, say so clearly

Always base your response on the provided content and be honest about the limitations of the available information.`

type Source struct {
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Synthesizer turns a question plus ranked retrieval results into a grounded
// answer with source attributions.
type Synthesizer struct {
	options Options
}

func (s *Synthesizer) Answer(ctx context.Context, question string, results []retrieval.Result) (Answer, error) {
	if len(strings.TrimSpace(question)) == 0 {
		return Answer{}, errors.New("question cannot be empty")
	}

	if len(results) == 0 {
		return Answer{
			Answer:  NoInformationAnswer,
			Sources: []Source{},
		}, nil
	}

	grounding, sources := s.buildContext(results)

	prompt := fmt.Sprintf("Question: %s\n\nRelevant excerpts:\n%s\nPlease provide a comprehensive answer to the question based on the excerpts above.", question, grounding)

	completion, err := s.options.Generator.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("completion: %w", err)
	}

	return Answer{
		Answer:  completion,
		Sources: sources,
	}, nil
}

// buildContext tags each excerpt with its rank, score, and source, stopping
// once the configured context budget is spent. At least one excerpt is
// always included.
func (s *Synthesizer) buildContext(results []retrieval.Result) (string, []Source) {
	var sb strings.Builder
	sources := make([]Source, 0, len(results))

	for i, result := range results {
		excerpt := fmt.Sprintf("[Excerpt %d, similarity: %.3f%s]\n%s\n\n", i+1, result.Score, sourceInfo(result.Metadata), result.Text)

		if i > 0 && sb.Len()+len(excerpt) > s.options.MaxContextSize {
			break
		}

		sb.WriteString(excerpt)
		sources = append(sources, Source{
			Text:     snippet(result.Text, 500),
			Score:    result.Score,
			Metadata: result.Metadata,
		})
	}

	return sb.String(), sources
}

func sourceInfo(metadata map[string]any) string {
	if metadata == nil {
		return ""
	}

	source := getsafe.String(metadata, "source")
	if len(source) == 0 {
		return ""
	}

	info := fmt.Sprintf(" (from %s", source)
	if page := getsafe.Int(metadata, "page_number", 0); page > 0 {
		info += fmt.Sprintf(", page %d", page)
	}
	return info + ")"
}

func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func NewSynthesizer(opts ...Option) *Synthesizer {
	options := NewOptions(opts...)

	if options.Generator == nil {
		panic("synthesizer requires a generator")
	}

	return &Synthesizer{
		options: options,
	}
}
