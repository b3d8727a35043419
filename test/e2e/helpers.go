//go:build e2e

package e2e

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/api/handlers"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/extract"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/server"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/service"
)

// stubExtractor serves canned text keyed by source URL so ingestion runs
// without network access.
type stubExtractor struct {
	pages map[string]string
}

func (e *stubExtractor) Extract(_ context.Context, src domain.Source) (string, error) {
	text, ok := e.pages[src.URL]
	if !ok {
		return "", domain.NewDomainError(domain.ErrCodeFetchFailed, "no such page")
	}
	return text, nil
}

// hashEmbedder produces deterministic vectors by hashing words into buckets.
// Texts sharing vocabulary land near each other, which is enough structure
// for retrieval to be meaningful in tests.
type hashEmbedder struct {
	dim int
}

func (e *hashEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[int(h.Sum32())%e.dim]++
	}
	return vec, nil
}

type scriptedStream struct {
	tokens []string
	pos    int
}

func (s *scriptedStream) Recv() (string, error) {
	if s.pos < len(s.tokens) {
		token := s.tokens[s.pos]
		s.pos++
		return token, nil
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error { return nil }

// scriptedGenerator replies with fixed content for both suggestion prompts
// and answer streams.
type scriptedGenerator struct {
	suggestionReply string
	answerTokens    []string
}

func (g *scriptedGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return g.suggestionReply, nil
}

func (g *scriptedGenerator) GenerateStream(_ context.Context, _, _ string) (service.TokenStream, error) {
	return &scriptedStream{tokens: g.answerTokens}, nil
}

// E2ETestEnv runs the full HTTP stack over in-memory service stubs.
type E2ETestEnv struct {
	T         *testing.T
	Server    *httptest.Server
	Extractor *stubExtractor
	Generator *scriptedGenerator
}

// APIResponse mirrors the envelope every endpoint replies with.
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

// SSEEvent is one parsed server-sent event.
type SSEEvent struct {
	Event string
	Data  json.RawMessage
}

func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	t.Helper()

	extractor := &stubExtractor{pages: map[string]string{}}
	generator := &scriptedGenerator{
		suggestionReply: "1. What is the article about?\n2. Who is it for?",
		answerTokens:    []string{"The ", "answer ", "is ", "42."},
	}
	embedder := &hashEmbedder{dim: 16}

	registry := extract.NewRegistry()
	registry.Register(domain.SourceKindWebpage, extractor)

	normalizer := service.NewNormalizer(registry)
	indexer := service.NewIndexer(embedder)
	suggester := service.NewSuggester(generator, 3)
	library := service.NewLibrary(normalizer, indexer, suggester, service.ChunkConfig{MaxChars: 200, Overlap: 40})
	sessions := service.NewSessions()
	chat := service.NewChat(library, sessions, embedder, generator, 4)

	router := server.NewRouter(server.RouterConfig{
		SourceHandler:  handlers.NewSourceHandler(library),
		SessionHandler: handlers.NewSessionHandler(sessions, library),
		AskHandler:     handlers.NewAskHandler(chat),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &E2ETestEnv{T: t, Server: srv, Extractor: extractor, Generator: generator}
}

func (env *E2ETestEnv) do(method, path string, body interface{}) (*APIResponse, int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.Server.Client().Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	var out APIResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("unmarshal response %q: %w", raw, err)
		}
	}
	return &out, resp.StatusCode, nil
}

func (env *E2ETestEnv) Get(path string) (*APIResponse, int, error) {
	return env.do(http.MethodGet, path, nil)
}

func (env *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, int, error) {
	return env.do(http.MethodPost, path, body)
}

func (env *E2ETestEnv) Put(path string, body interface{}) (*APIResponse, int, error) {
	return env.do(http.MethodPut, path, body)
}

// Ask posts a question and parses the whole SSE reply.
func (env *E2ETestEnv) Ask(sessionID, question string) ([]SSEEvent, error) {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, err
	}

	resp, err := env.Server.Client().Post(
		env.Server.URL+"/sessions/"+sessionID+"/ask",
		"application/json",
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("expected event stream, got status %d body %q", resp.StatusCode, raw)
	}

	var events []SSEEvent
	var current SSEEvent
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.Event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.Data = json.RawMessage(strings.TrimPrefix(line, "data: "))
		case line == "":
			if current.Event != "" {
				events = append(events, current)
				current = SSEEvent{}
			}
		}
	}
	return events, scanner.Err()
}
