package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/api"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/service"
)

type AskService interface {
	Answer(ctx context.Context, sessionID, query string) (*service.AnswerStream, error)
}

type AskHandler struct {
	svc AskService
}

func NewAskHandler(svc AskService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskRequest struct {
	Question string `json:"question"`
}

// SSECitation is one retrieved chunk sent ahead of the generated answer. The
// reference number matches the [n] markers the model is prompted with.
type SSECitation struct {
	Reference  int     `json:"reference"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
}

type SSEChunkData struct {
	Text string `json:"text"`
}

type SSEDoneData struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type SSEErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Ask answers a question over the session's active source. The response is a
// server-sent event stream: one sources event with the citations, chunk
// events as the answer is generated, then done or error.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		api.Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.svc.Answer(r.Context(), sessionID, req.Question)
	if err != nil {
		// Nothing has been streamed yet, so a plain JSON error is still
		// possible here.
		api.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	citations := make([]SSECitation, 0, len(answer.Citations))
	for i, c := range answer.Citations {
		citations = append(citations, SSECitation{
			Reference:  i + 1,
			ChunkIndex: c.Chunk.Index,
			Text:       c.Chunk.Text,
			Score:      c.Score,
		})
	}
	writeSSE(w, flusher, "sources", citations)

	var full strings.Builder
	for token := range answer.Tokens() {
		full.WriteString(token)
		writeSSE(w, flusher, "chunk", SSEChunkData{Text: token})
	}

	if err := answer.Err(); err != nil {
		code := domain.ErrCodeGenerationService
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			code = domainErr.Code
		}
		writeSSE(w, flusher, "error", SSEErrorData{Code: code, Message: err.Error()})
		return
	}

	writeSSE(w, flusher, "done", SSEDoneData{Response: full.String(), SessionID: sessionID})
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, payload interface{}) {
	data, _ := json.Marshal(payload)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
