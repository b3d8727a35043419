package service

import (
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
)

// ChunkConfig controls how normalized source text is split into retrieval
// units. MaxChars and Overlap are measured in runes.
type ChunkConfig struct {
	MaxChars int
	Overlap  int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChars: 1000,
		Overlap:  200,
	}
}

// SplitText cuts text into a deterministic sequence of chunks. Windows are
// MaxChars wide and advance by MaxChars-Overlap, so every rune of the input
// is covered and a span cut at a window boundary is still whole inside the
// neighboring chunk. No chunk exceeds MaxChars. The same input and config
// always produce the same chunks; cache keys and citations depend on that.
func SplitText(text, fingerprint string, cfg ChunkConfig) []domain.Chunk {
	if text == "" {
		return nil
	}
	if cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.MaxChars {
		cfg.Overlap = cfg.MaxChars - 1
	}

	runes := []rune(text)
	step := cfg.MaxChars - cfg.Overlap

	chunks := make([]domain.Chunk, 0, (len(runes)+step-1)/step)
	for start := 0; ; start += step {
		end := start + cfg.MaxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, domain.Chunk{
			Index:             len(chunks),
			Text:              string(runes[start:end]),
			Start:             start,
			End:               end,
			SourceFingerprint: fingerprint,
		})
		if end >= len(runes) {
			break
		}
	}
	return chunks
}
