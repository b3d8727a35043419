package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/extract"
)

func TestNormalizer_Normalize_DispatchesByKind(t *testing.T) {
	registry := extract.NewRegistry()
	registry.Register(domain.SourceKindWebpage, &stubExtractor{text: "page text"})

	normalizer := NewNormalizer(registry)
	text, err := normalizer.Normalize(context.Background(), webSource("https://example.com"))
	require.NoError(t, err)
	assert.Equal(t, "page text", text)
}

func TestNormalizer_Normalize_UnsupportedKind(t *testing.T) {
	normalizer := NewNormalizer(extract.NewRegistry())

	_, err := normalizer.Normalize(context.Background(), domain.Source{Kind: "podcast", URL: "https://x"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedSourceKind)
}

func TestNormalizer_Normalize_UnregisteredKind(t *testing.T) {
	// The kind is valid but no extractor is installed for it.
	registry := extract.NewRegistry()
	registry.Register(domain.SourceKindWebpage, &stubExtractor{text: "x"})

	normalizer := NewNormalizer(registry)
	_, err := normalizer.Normalize(context.Background(), domain.Source{Kind: domain.SourceKindVideo, URL: "https://youtu.be/abc"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedSourceKind)
}

func TestNormalizer_Normalize_MissingLocator(t *testing.T) {
	registry := extract.NewRegistry()
	registry.Register(domain.SourceKindWebpage, &stubExtractor{text: "x"})

	normalizer := NewNormalizer(registry)
	_, err := normalizer.Normalize(context.Background(), domain.Source{Kind: domain.SourceKindWebpage})
	assert.ErrorIs(t, err, domain.ErrMissingLocator)
}

func TestNormalizer_Normalize_NormalizesLineEndings(t *testing.T) {
	registry := extract.NewRegistry()
	registry.Register(domain.SourceKindWebpage, &stubExtractor{text: "line one\r\nline two\r\n"})

	normalizer := NewNormalizer(registry)
	text, err := normalizer.Normalize(context.Background(), webSource("https://example.com"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", text)
}

func TestNormalizer_Normalize_WhitespaceOnlyIsFailure(t *testing.T) {
	registry := extract.NewRegistry()
	registry.Register(domain.SourceKindWebpage, &stubExtractor{text: "  \n\t  "})

	normalizer := NewNormalizer(registry)
	_, err := normalizer.Normalize(context.Background(), webSource("https://example.com"))
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeExtractionFailed, domainErr.Code)
}
