package service

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/index"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/telemetry"
)

// CacheEntry is the fully materialized knowledge base for one source. All
// fields are written once during the build and never mutated afterwards, so
// entries may be read concurrently without locking.
type CacheEntry struct {
	Fingerprint string
	Kind        domain.SourceKind
	SourceName  string
	Chunks      []domain.Chunk
	Index       *index.Index
	Suggestions []string
	CreatedAt   time.Time
}

// SuggestionGenerator produces starter questions from a source's chunks.
type SuggestionGenerator interface {
	Suggest(ctx context.Context, chunks []domain.Chunk) ([]string, error)
}

// Library owns the fingerprint-keyed cache of built sources. The expensive
// normalize/chunk/embed pipeline runs at most once per fingerprint even under
// concurrent requests; a failed build leaves no trace, so the next request
// for the same fingerprint retries from scratch.
type Library struct {
	normalizer *Normalizer
	indexer    *Indexer
	suggester  SuggestionGenerator
	chunkCfg   ChunkConfig

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]*CacheEntry
}

// NewLibrary creates a Library. The suggester may be nil; suggestions are
// best effort and never fail an ingestion.
func NewLibrary(normalizer *Normalizer, indexer *Indexer, suggester SuggestionGenerator, chunkCfg ChunkConfig) *Library {
	if chunkCfg.MaxChars <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	return &Library{
		normalizer: normalizer,
		indexer:    indexer,
		suggester:  suggester,
		chunkCfg:   chunkCfg,
		entries:    make(map[string]*CacheEntry),
	}
}

// Get returns the cached entry for a fingerprint, or nil when the source has
// not been built.
func (l *Library) Get(fingerprint string) *CacheEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entries[fingerprint]
}

// List returns all cached entries ordered by build time, oldest first.
func (l *Library) List() []*CacheEntry {
	l.mu.RLock()
	entries := make([]*CacheEntry, 0, len(l.entries))
	for _, e := range l.entries {
		entries = append(entries, e)
	}
	l.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].Fingerprint < entries[j].Fingerprint
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries
}

// GetOrBuild returns the entry for the source, building it on a cache miss.
// Concurrent calls for the same fingerprint share one build; callers for
// other fingerprints proceed independently. The cached flag reports whether
// this caller was served an entry it did not build itself, including callers
// that joined a build already in flight.
func (l *Library) GetOrBuild(ctx context.Context, src domain.Source) (*CacheEntry, bool, error) {
	fingerprint := src.Fingerprint()

	if entry := l.Get(fingerprint); entry != nil {
		return entry, true, nil
	}

	// built flips only when this caller's closure runs the pipeline; joiners
	// sharing the flight never execute theirs.
	built := false
	v, err, _ := l.group.Do(fingerprint, func() (interface{}, error) {
		// A racing build may have finished while we queued.
		if entry := l.Get(fingerprint); entry != nil {
			return entry, nil
		}

		entry, err := l.build(ctx, src, fingerprint)
		if err != nil {
			return nil, err
		}
		built = true

		l.mu.Lock()
		l.entries[fingerprint] = entry
		l.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*CacheEntry), !built, nil
}

func (l *Library) build(ctx context.Context, src domain.Source, fingerprint string) (*CacheEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "Library.Build", telemetry.SpanAttributes{
		Fingerprint: fingerprint,
		SourceKind:  string(src.Kind),
		Operation:   "build",
	})
	defer span.End()

	text, err := l.normalizer.Normalize(ctx, src)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	chunks := SplitText(text, fingerprint, l.chunkCfg)

	idx, err := l.indexer.Build(ctx, chunks)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	entry := &CacheEntry{
		Fingerprint: fingerprint,
		Kind:        src.Kind,
		SourceName:  src.DisplayName(),
		Chunks:      chunks,
		Index:       idx,
		CreatedAt:   time.Now().UTC(),
	}

	if l.suggester != nil {
		suggestions, err := l.suggester.Suggest(ctx, chunks)
		if err != nil {
			log.Printf("library: suggested questions unavailable for %s: %v", src.DisplayName(), err)
		} else {
			entry.Suggestions = suggestions
		}
	}

	return entry, nil
}
