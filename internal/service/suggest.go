package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
)

const (
	defaultMaxSuggestions  = 3
	suggestionSampleChars  = 4000
	suggestionSystemPrompt = "You generate starter questions for a question answering assistant. " +
		"Given an excerpt of a document, propose questions that the excerpt itself can answer. " +
		"Reply with a numbered list only, one question per line."
)

// GenerationClient defines the chat completion calls the services need.
type GenerationClient interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	GenerateStream(ctx context.Context, system, prompt string) (TokenStream, error)
}

// TokenStream yields generated text incrementally. Recv returns io.EOF when
// the model is done.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// Suggester derives starter questions from the opening chunks of a source.
type Suggester struct {
	client GenerationClient
	max    int
}

// NewSuggester creates a Suggester producing at most max questions.
func NewSuggester(client GenerationClient, max int) *Suggester {
	if max <= 0 {
		max = defaultMaxSuggestions
	}
	return &Suggester{client: client, max: max}
}

var numberedLine = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*(.+?)\s*$`)

// Suggest samples the leading chunks and asks the model for a numbered list
// of questions the sample can answer.
func (s *Suggester) Suggest(ctx context.Context, chunks []domain.Chunk) ([]string, error) {
	sample := sampleChunks(chunks, suggestionSampleChars)
	if sample == "" {
		return nil, domain.ErrEmptyContext
	}

	prompt := fmt.Sprintf("Propose up to %d questions this excerpt can answer.\n\nEXCERPT:\n%s", s.max, sample)
	reply, err := s.client.Generate(ctx, suggestionSystemPrompt, prompt)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeGenerationService, "question generation failed", err)
	}

	questions := parseNumberedList(reply, s.max)
	if len(questions) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeGenerationService, "model returned no questions")
	}
	return questions, nil
}

// sampleChunks concatenates chunk texts from the start of the source until
// the budget, measured in runes, is reached. Chunks are taken whole so
// questions stay coherent; only an oversized first chunk is cut.
func sampleChunks(chunks []domain.Chunk, budget int) string {
	var b strings.Builder
	used := 0
	for _, chunk := range chunks {
		size := utf8.RuneCountInString(chunk.Text)
		if used == 0 {
			if size > budget {
				return strings.TrimSpace(string([]rune(chunk.Text)[:budget]))
			}
			b.WriteString(chunk.Text)
			used = size
			continue
		}
		if used+size+1 > budget {
			break
		}
		b.WriteString("\n")
		b.WriteString(chunk.Text)
		used += size + 1
	}
	return strings.TrimSpace(b.String())
}

func parseNumberedList(reply string, max int) []string {
	matches := numberedLine.FindAllStringSubmatch(reply, -1)
	questions := make([]string, 0, max)
	for _, m := range matches {
		q := strings.TrimSpace(m[1])
		if q == "" {
			continue
		}
		questions = append(questions, q)
		if len(questions) == max {
			break
		}
	}
	return questions
}
