package service

import (
	"context"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/index"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Indexer embeds chunks and assembles the per-source vector index.
type Indexer struct {
	client EmbeddingClient
}

// NewIndexer creates a new Indexer instance
func NewIndexer(client EmbeddingClient) *Indexer {
	return &Indexer{client: client}
}

// Build embeds each chunk in order and constructs an immutable index. The
// i-th embedding corresponds to the i-th chunk; any service failure or
// malformed vector aborts the whole build.
func (ix *Indexer) Build(ctx context.Context, chunks []domain.Chunk) (*index.Index, error) {
	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := ix.client.GenerateEmbedding(ctx, chunk.Text)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbeddingService, "chunk embedding failed", err)
		}
		vectors = append(vectors, vec)
	}

	built, err := index.New(chunks, vectors)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbeddingService, "embedding output malformed", err)
	}
	return built, nil
}
