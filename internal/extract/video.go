package extract

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
)

const defaultTranscriptBaseURL = "https://video.google.com/timedtext"

// VideoTranscriptExtractor retrieves the published caption track for a
// YouTube video. Audio transcription of caption-less videos is an external
// collaborator; here a missing track is an extraction failure.
type VideoTranscriptExtractor struct {
	client   *http.Client
	baseURL  string
	language string
}

// NewVideoTranscriptExtractor creates an extractor against the public
// timedtext endpoint, requesting English captions.
func NewVideoTranscriptExtractor() *VideoTranscriptExtractor {
	return &VideoTranscriptExtractor{
		client:   &http.Client{Timeout: defaultFetchTimeout},
		baseURL:  defaultTranscriptBaseURL,
		language: "en",
	}
}

// NewVideoTranscriptExtractorWithEndpoint overrides the transcript endpoint,
// mainly for tests and caption proxies.
func NewVideoTranscriptExtractorWithEndpoint(client *http.Client, baseURL, language string) *VideoTranscriptExtractor {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	if language == "" {
		language = "en"
	}
	return &VideoTranscriptExtractor{client: client, baseURL: baseURL, language: language}
}

type timedTextDocument struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start string `xml:"start,attr"`
	Text  string `xml:",chardata"`
}

// Extract resolves the video ID from the watch URL and joins the caption
// lines into one transcript.
func (e *VideoTranscriptExtractor) Extract(ctx context.Context, src domain.Source) (string, error) {
	videoID, err := VideoID(src.URL)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeFetchFailed, "invalid video URL", err)
	}

	endpoint := fmt.Sprintf("%s?lang=%s&v=%s", e.baseURL, url.QueryEscape(e.language), url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeFetchFailed, "could not build transcript request", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeFetchFailed, "transcript fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeFetchFailed,
			fmt.Sprintf("transcript fetch returned status %d", resp.StatusCode), nil)
	}

	var doc timedTextDocument
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtractionFailed, "could not parse transcript", err)
	}

	lines := make([]string, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		if text != "" {
			lines = append(lines, text)
		}
	}
	if len(lines) == 0 {
		return "", domain.NewDomainError(domain.ErrCodeExtractionFailed, "video has no transcript")
	}
	return strings.Join(lines, " "), nil
}

// VideoID parses the video identifier out of a YouTube watch or share URL.
func VideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if id == "" {
			return "", fmt.Errorf("short URL %q carries no video ID", rawURL)
		}
		return id, nil
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
		// Embed and shorts URLs keep the ID as the final path element.
		if parts := strings.Split(strings.Trim(u.Path, "/"), "/"); len(parts) == 2 &&
			(parts[0] == "embed" || parts[0] == "shorts") && parts[1] != "" {
			return parts[1], nil
		}
		return "", fmt.Errorf("URL %q carries no video ID", rawURL)
	default:
		return "", fmt.Errorf("host %q is not a recognized video host", u.Hostname())
	}
}
