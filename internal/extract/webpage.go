package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
)

const defaultFetchTimeout = 30 * time.Second

// WebpageExtractor fetches a URL and extracts the readable article text,
// discarding navigation, scripts and boilerplate.
type WebpageExtractor struct {
	client *http.Client
}

// NewWebpageExtractor creates a webpage extractor with a default HTTP client.
func NewWebpageExtractor() *WebpageExtractor {
	return &WebpageExtractor{client: &http.Client{Timeout: defaultFetchTimeout}}
}

// NewWebpageExtractorWithClient creates a webpage extractor with a custom client.
func NewWebpageExtractorWithClient(client *http.Client) *WebpageExtractor {
	return &WebpageExtractor{client: client}
}

// Extract downloads the page and returns its readable text content.
func (e *WebpageExtractor) Extract(ctx context.Context, src domain.Source) (string, error) {
	pageURL, err := url.Parse(src.URL)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeFetchFailed, "invalid webpage URL", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeFetchFailed, "could not build request", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeFetchFailed, "webpage fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeFetchFailed,
			fmt.Sprintf("webpage fetch returned status %d", resp.StatusCode), nil)
	}

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtractionFailed, "could not parse webpage", err)
	}
	if article.TextContent == "" {
		return "", domain.NewDomainError(domain.ErrCodeExtractionFailed, "webpage contains no readable text")
	}
	return article.TextContent, nil
}
