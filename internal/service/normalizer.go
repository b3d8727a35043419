package service

import (
	"context"
	"strings"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/extract"
)

// Normalizer turns a source descriptor into normalized raw text by
// dispatching to the extractor registered for the source kind. It makes no
// caching decisions and has no side effects beyond the returned text.
type Normalizer struct {
	registry *extract.Registry
}

// NewNormalizer creates a Normalizer over an extractor registry.
func NewNormalizer(registry *extract.Registry) *Normalizer {
	return &Normalizer{registry: registry}
}

// Normalize validates the descriptor, extracts its text and normalizes line
// endings. An extraction that yields only whitespace is an extraction
// failure, never an empty knowledge base.
func (n *Normalizer) Normalize(ctx context.Context, src domain.Source) (string, error) {
	if err := src.Validate(); err != nil {
		return "", err
	}

	extractor, ok := n.registry.Lookup(src.Kind)
	if !ok {
		return "", domain.ErrUnsupportedSourceKind
	}

	text, err := extractor.Extract(ctx, src)
	if err != nil {
		return "", err
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return "", domain.NewDomainError(domain.ErrCodeExtractionFailed, "source yielded no text")
	}
	return text, nil
}
