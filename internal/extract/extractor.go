// Package extract holds the text-extraction collaborators consumed by the
// ingestion pipeline. Each source kind gets an Extractor; the pipeline only
// depends on the contract, so callers can swap any of the defaults for an
// external service.
package extract

import (
	"context"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
)

// Extractor turns a source descriptor into raw text. Implementations report
// FetchFailed when the locator is unreachable and ExtractionFailed when it is
// reachable but yields no usable text.
type Extractor interface {
	Extract(ctx context.Context, src domain.Source) (string, error)
}

// Registry maps source kinds to extractors.
type Registry struct {
	extractors map[domain.SourceKind]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[domain.SourceKind]Extractor)}
}

// DefaultRegistry wires the built-in extractors for every supported kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(domain.SourceKindWebpage, NewWebpageExtractor())
	r.Register(domain.SourceKindVideo, NewVideoTranscriptExtractor())
	r.Register(domain.SourceKindDocument, NewDocumentExtractor())
	return r
}

// Register installs an extractor for a source kind, replacing any previous one.
func (r *Registry) Register(kind domain.SourceKind, e Extractor) {
	r.extractors[kind] = e
}

// Lookup returns the extractor for a source kind.
func (r *Registry) Lookup(kind domain.SourceKind) (Extractor, bool) {
	e, ok := r.extractors[kind]
	return e, ok
}
