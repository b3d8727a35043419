package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/index"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/telemetry"
)

const answerSystemPrompt = "You are an expert assistant. Answer the question using ONLY the provided context. " +
	"If the context does not contain the answer, say \"I don't know based on the provided source.\" " +
	"Never invent facts. Be concise."

// Chat answers questions over a session's active source by retrieving the
// most relevant chunks and streaming a grounded completion.
type Chat struct {
	library   *Library
	sessions  *Sessions
	embedder  EmbeddingClient
	generator GenerationClient
	topK      int
}

// NewChat creates the retrieval orchestrator.
func NewChat(library *Library, sessions *Sessions, embedder EmbeddingClient, generator GenerationClient, topK int) *Chat {
	if topK <= 0 {
		topK = 4
	}
	return &Chat{
		library:   library,
		sessions:  sessions,
		embedder:  embedder,
		generator: generator,
		topK:      topK,
	}
}

// AnswerStream carries one in-flight answer. Citations are fixed before the
// first token; Tokens yields generated text until the channel closes, after
// which Err reports how the stream ended.
type AnswerStream struct {
	SessionID string
	Query     string
	Citations []index.Result

	tokens chan string
	done   chan struct{}
	err    error
}

// Tokens returns the channel of generated text fragments. It is closed when
// generation finishes, fails, or is canceled.
func (s *AnswerStream) Tokens() <-chan string {
	return s.tokens
}

// Err reports the terminal state once Tokens is closed. It blocks until the
// stream has ended.
func (s *AnswerStream) Err() error {
	<-s.done
	return s.err
}

// Answer retrieves context for the query and starts a streaming completion.
// Synchronous failures (no active source, retrieval errors) return before
// any stream exists; generation failures surface through AnswerStream.Err.
// The exchange joins the session history only if the stream completes.
func (c *Chat) Answer(ctx context.Context, sessionID, query string) (*AnswerStream, error) {
	ctx, span := telemetry.StartSpan(ctx, "Chat.Answer", telemetry.SpanAttributes{
		SessionID: sessionID,
		Operation: "answer",
	})
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	fingerprint, err := c.sessions.ActiveSource(sessionID)
	if err != nil {
		return nil, err
	}
	if fingerprint == "" {
		return nil, domain.ErrNoActiveSource
	}

	entry := c.library.Get(fingerprint)
	if entry == nil {
		return nil, domain.NewDomainError(domain.ErrCodeNoActiveSource, "active source is not in the cache")
	}
	if entry.Index.Len() == 0 {
		return nil, domain.ErrEmptyContext
	}

	queryVec, err := c.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		err = domain.NewDomainErrorWithCause(domain.ErrCodeEmbeddingService, "query embedding failed", err)
		c.recordFailure(sessionID, err)
		span.SetError(err)
		return nil, err
	}

	citations, err := entry.Index.Search(queryVec, c.topK)
	if err != nil {
		err = domain.NewDomainErrorWithCause(domain.ErrCodeEmbeddingService, "retrieval failed", err)
		c.recordFailure(sessionID, err)
		span.SetError(err)
		return nil, err
	}

	stream, err := c.generator.GenerateStream(ctx, answerSystemPrompt, buildAnswerPrompt(citations, query))
	if err != nil {
		err = domain.NewDomainErrorWithCause(domain.ErrCodeGenerationService, "generation failed to start", err)
		c.recordFailure(sessionID, err)
		span.SetError(err)
		return nil, err
	}

	answer := &AnswerStream{
		SessionID: sessionID,
		Query:     query,
		Citations: citations,
		tokens:    make(chan string),
		done:      make(chan struct{}),
	}
	go c.pump(ctx, stream, answer)
	return answer, nil
}

// pump forwards tokens from the model stream to the answer stream and
// settles the session transcript when the model finishes.
func (c *Chat) pump(ctx context.Context, stream TokenStream, answer *AnswerStream) {
	defer close(answer.done)
	defer close(answer.tokens)
	defer stream.Close()

	var full strings.Builder
	for {
		token, err := stream.Recv()
		if err == io.EOF {
			if appendErr := c.sessions.AppendExchange(answer.SessionID, answer.Query, full.String()); appendErr != nil {
				answer.err = appendErr
			}
			return
		}
		if err != nil {
			answer.err = domain.NewDomainErrorWithCause(domain.ErrCodeGenerationService, "generation stream failed", err)
			c.recordFailure(answer.SessionID, answer.err)
			return
		}

		select {
		case answer.tokens <- token:
			full.WriteString(token)
		case <-ctx.Done():
			answer.err = ctx.Err()
			c.recordFailure(answer.SessionID, answer.err)
			return
		}
	}
}

func (c *Chat) recordFailure(sessionID string, err error) {
	if recErr := c.sessions.RecordFailure(sessionID, err.Error()); recErr != nil {
		telemetry.CaptureError(context.Background(), recErr)
	}
}

// buildAnswerPrompt lays retrieved chunks out as a numbered context block
// followed by the question, mirroring the citation numbering returned to
// clients.
func buildAnswerPrompt(citations []index.Result, query string) string {
	var b strings.Builder
	b.WriteString("CONTEXT:\n")
	for i, citation := range citations {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, citation.Chunk.Text)
	}
	b.WriteString("\nQUESTION:\n")
	b.WriteString(query)
	return b.String()
}
