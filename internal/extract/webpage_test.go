package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Go Concurrency Patterns</title></head>
<body>
  <nav><a href="/">Home</a><a href="/about">About</a></nav>
  <article>
    <h1>Go Concurrency Patterns</h1>
    <p>Goroutines are lightweight threads managed by the Go runtime. They make
    it practical to structure a program as a set of independently executing
    activities that communicate over channels.</p>
    <p>Channels carry values between goroutines and synchronize them at the
    same time. Unbuffered channels combine communication with synchronization,
    which keeps many programs free of explicit locks.</p>
  </article>
  <footer>Copyright notice</footer>
</body>
</html>`

func webpageSource(url string) domain.Source {
	return domain.Source{Kind: domain.SourceKindWebpage, URL: url}
}

func TestWebpageExtractor_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	extractor := NewWebpageExtractorWithClient(server.Client())
	text, err := extractor.Extract(context.Background(), webpageSource(server.URL))

	require.NoError(t, err)
	assert.Contains(t, text, "Goroutines are lightweight threads")
	assert.Contains(t, text, "Channels carry values between goroutines")
}

func TestWebpageExtractor_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	extractor := NewWebpageExtractorWithClient(server.Client())
	_, err := extractor.Extract(context.Background(), webpageSource(server.URL))

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeFetchFailed, domainErr.Code)
}

func TestWebpageExtractor_UnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	extractor := NewWebpageExtractor()
	_, err := extractor.Extract(context.Background(), webpageSource(url))

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeFetchFailed, domainErr.Code)
}
