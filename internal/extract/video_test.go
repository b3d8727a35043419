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

func TestVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "watch URL", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "short URL", url: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "embed URL", url: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "shorts URL", url: "https://youtube.com/shorts/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "mobile watch URL", url: "https://m.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "watch URL without ID", url: "https://www.youtube.com/watch", wantErr: true},
		{name: "short URL without ID", url: "https://youtu.be/", wantErr: true},
		{name: "unrelated host", url: "https://vimeo.com/12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VideoID(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func videoSource(url string) domain.Source {
	return domain.Source{Kind: domain.SourceKindVideo, URL: url}
}

func TestVideoTranscriptExtractor_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		assert.Equal(t, "abc123", r.URL.Query().Get("v"))
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.0" dur="2.5">Hello everyone</text>
  <text start="2.5" dur="3.0">welcome to the &amp;quot;show&amp;quot;</text>
  <text start="5.5" dur="1.0">  </text>
</transcript>`))
	}))
	defer server.Close()

	extractor := NewVideoTranscriptExtractorWithEndpoint(server.Client(), server.URL, "en")
	text, err := extractor.Extract(context.Background(), videoSource("https://youtu.be/abc123"))

	require.NoError(t, err)
	assert.Contains(t, text, "Hello everyone welcome to the")
}

func TestVideoTranscriptExtractor_NoCaptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?><transcript></transcript>`))
	}))
	defer server.Close()

	extractor := NewVideoTranscriptExtractorWithEndpoint(server.Client(), server.URL, "en")
	_, err := extractor.Extract(context.Background(), videoSource("https://youtu.be/abc123"))

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeExtractionFailed, domainErr.Code)
}

func TestVideoTranscriptExtractor_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	extractor := NewVideoTranscriptExtractorWithEndpoint(server.Client(), server.URL, "en")
	_, err := extractor.Extract(context.Background(), videoSource("https://youtu.be/abc123"))

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeFetchFailed, domainErr.Code)
}

func TestVideoTranscriptExtractor_InvalidURL(t *testing.T) {
	extractor := NewVideoTranscriptExtractor()
	_, err := extractor.Extract(context.Background(), videoSource("https://vimeo.com/999"))

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeFetchFailed, domainErr.Code)
}
