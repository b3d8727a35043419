package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/extract"
)

type stubExtractor struct {
	text  string
	err   error
	delay time.Duration
	calls int32
}

func (s *stubExtractor) Extract(ctx context.Context, src domain.Source) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type countingEmbedder struct {
	dim      int
	calls    int32
	failures int32
}

func (e *countingEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	atomic.AddInt32(&e.calls, 1)
	if atomic.LoadInt32(&e.failures) > 0 {
		atomic.AddInt32(&e.failures, -1)
		return nil, errors.New("rate limited")
	}
	vec := make([]float32, e.dim)
	for i, r := range text {
		vec[i%e.dim] += float32(r)
	}
	return vec, nil
}

type stubSuggester struct {
	questions []string
	err       error
}

func (s *stubSuggester) Suggest(ctx context.Context, chunks []domain.Chunk) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.questions, nil
}

func newTestLibrary(extractor extract.Extractor, embedder EmbeddingClient, suggester SuggestionGenerator) *Library {
	registry := extract.NewRegistry()
	registry.Register(domain.SourceKindWebpage, extractor)
	return NewLibrary(NewNormalizer(registry), NewIndexer(embedder), suggester, ChunkConfig{MaxChars: 100, Overlap: 20})
}

func webSource(url string) domain.Source {
	return domain.Source{Kind: domain.SourceKindWebpage, URL: url}
}

func TestLibrary_GetOrBuild_BuildsOncePerFingerprint(t *testing.T) {
	extractor := &stubExtractor{text: strings.Repeat("knowledge ", 50)}
	embedder := &countingEmbedder{dim: 8}
	lib := newTestLibrary(extractor, embedder, nil)

	src := webSource("https://example.com/article")

	first, cached, err := lib.GetOrBuild(context.Background(), src)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.False(t, cached)
	assert.Equal(t, src.Fingerprint(), first.Fingerprint)
	assert.Equal(t, "https://example.com/article", first.SourceName)
	assert.Equal(t, len(first.Chunks), first.Index.Len())

	callsAfterFirst := atomic.LoadInt32(&embedder.calls)

	second, cached, err := lib.GetOrBuild(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&extractor.calls))
	assert.Equal(t, callsAfterFirst, atomic.LoadInt32(&embedder.calls))
}

func TestLibrary_GetOrBuild_ConcurrentRequestsShareOneBuild(t *testing.T) {
	extractor := &stubExtractor{text: strings.Repeat("shared build ", 40), delay: 30 * time.Millisecond}
	embedder := &countingEmbedder{dim: 8}
	lib := newTestLibrary(extractor, embedder, nil)

	src := webSource("https://example.com/popular")

	const workers = 8
	entries := make([]*CacheEntry, workers)
	cached := make([]bool, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entries[i], cached[i], errs[i] = lib.GetOrBuild(context.Background(), src)
		}(i)
	}
	wg.Wait()

	builders := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, entries[0], entries[i])
		if !cached[i] {
			builders++
		}
	}
	// Exactly one caller ran the pipeline; everyone else was served its entry.
	assert.Equal(t, 1, builders)
	assert.Equal(t, int32(1), atomic.LoadInt32(&extractor.calls))
}

func TestLibrary_GetOrBuild_FailureLeavesNoEntry(t *testing.T) {
	extractor := &stubExtractor{text: strings.Repeat("flaky ", 60)}
	embedder := &countingEmbedder{dim: 8, failures: 1}
	lib := newTestLibrary(extractor, embedder, nil)

	src := webSource("https://example.com/flaky")

	_, _, err := lib.GetOrBuild(context.Background(), src)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeEmbeddingService, domainErr.Code)
	assert.Nil(t, lib.Get(src.Fingerprint()))

	// The embedding service recovered, so the same source builds cleanly.
	entry, cached, err := lib.GetOrBuild(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.NotNil(t, lib.Get(src.Fingerprint()))
	assert.Equal(t, src.Fingerprint(), entry.Fingerprint)
}

func TestLibrary_GetOrBuild_ExtractionFailurePropagates(t *testing.T) {
	extractor := &stubExtractor{err: domain.NewDomainError(domain.ErrCodeExtractionFailed, "no transcript")}
	lib := newTestLibrary(extractor, &countingEmbedder{dim: 8}, nil)

	src := webSource("https://example.com/empty")

	_, _, err := lib.GetOrBuild(context.Background(), src)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeExtractionFailed, domainErr.Code)
	assert.Nil(t, lib.Get(src.Fingerprint()))
}

func TestLibrary_GetOrBuild_SuggestionFailureDoesNotFailBuild(t *testing.T) {
	extractor := &stubExtractor{text: strings.Repeat("resilient ", 30)}
	suggester := &stubSuggester{err: errors.New("model unavailable")}
	lib := newTestLibrary(extractor, &countingEmbedder{dim: 8}, suggester)

	entry, _, err := lib.GetOrBuild(context.Background(), webSource("https://example.com/sugg"))
	require.NoError(t, err)
	assert.Empty(t, entry.Suggestions)
}

func TestLibrary_GetOrBuild_StoresSuggestions(t *testing.T) {
	extractor := &stubExtractor{text: strings.Repeat("curious ", 30)}
	suggester := &stubSuggester{questions: []string{"What is this about?", "Who wrote it?"}}
	lib := newTestLibrary(extractor, &countingEmbedder{dim: 8}, suggester)

	entry, _, err := lib.GetOrBuild(context.Background(), webSource("https://example.com/sugg2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"What is this about?", "Who wrote it?"}, entry.Suggestions)
}

func TestLibrary_List_OrderedByBuildTime(t *testing.T) {
	extractor := &stubExtractor{text: strings.Repeat("listed ", 30)}
	lib := newTestLibrary(extractor, &countingEmbedder{dim: 8}, nil)

	ctx := context.Background()
	first, _, err := lib.GetOrBuild(ctx, webSource("https://example.com/one"))
	require.NoError(t, err)
	second, _, err := lib.GetOrBuild(ctx, webSource("https://example.com/two"))
	require.NoError(t, err)

	entries := lib.List()
	require.Len(t, entries, 2)
	assert.Contains(t, []*CacheEntry{first, second}, entries[0])
	assert.Contains(t, []*CacheEntry{first, second}, entries[1])
	assert.NotEqual(t, entries[0].Fingerprint, entries[1].Fingerprint)
}

func TestLibrary_Get_MissReturnsNil(t *testing.T) {
	lib := newTestLibrary(&stubExtractor{text: "x"}, &countingEmbedder{dim: 8}, nil)
	assert.Nil(t, lib.Get("unknown-fingerprint"))
}
