package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/api"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/service"
)

type SourceService interface {
	GetOrBuild(ctx context.Context, src domain.Source) (*service.CacheEntry, bool, error)
	Get(fingerprint string) *service.CacheEntry
	List() []*service.CacheEntry
}

type SourceHandler struct {
	svc SourceService
}

func NewSourceHandler(svc SourceService) *SourceHandler {
	return &SourceHandler{svc: svc}
}

// IngestSourceRequest describes a source to ingest. Content carries an
// uploaded document payload, base64-encoded in JSON.
type IngestSourceRequest struct {
	Kind    string `json:"kind"`
	URL     string `json:"url,omitempty"`
	Name    string `json:"name,omitempty"`
	Content []byte `json:"content,omitempty"`
}

type SourceResponse struct {
	Fingerprint string   `json:"fingerprint"`
	Kind        string   `json:"kind"`
	Name        string   `json:"name"`
	ChunkCount  int      `json:"chunk_count"`
	Suggestions []string `json:"suggestions,omitempty"`
	CreatedAt   string   `json:"created_at"`
	Cached      bool     `json:"cached"`
}

func sourceToResponse(entry *service.CacheEntry, cached bool) *SourceResponse {
	return &SourceResponse{
		Fingerprint: entry.Fingerprint,
		Kind:        string(entry.Kind),
		Name:        entry.SourceName,
		ChunkCount:  len(entry.Chunks),
		Suggestions: entry.Suggestions,
		CreatedAt:   entry.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Cached:      cached,
	}
}

// Ingest builds (or re-serves from cache) the knowledge base for a source.
func (h *SourceHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Kind == "" {
		api.Error(w, http.StatusBadRequest, "kind is required")
		return
	}

	src := domain.Source{
		Kind:    domain.SourceKind(req.Kind),
		URL:     req.URL,
		Name:    req.Name,
		Content: req.Content,
	}
	if err := src.Validate(); err != nil {
		api.HandleError(w, err)
		return
	}

	entry, cached, err := h.svc.GetOrBuild(r.Context(), src)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	status := http.StatusCreated
	if cached {
		status = http.StatusOK
	}
	api.Success(w, status, sourceToResponse(entry, cached))
}

// List returns every cached source, oldest first.
func (h *SourceHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.List()
	out := make([]*SourceResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, sourceToResponse(entry, true))
	}
	api.Success(w, http.StatusOK, out)
}

// Get returns one cached source by fingerprint.
func (h *SourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	fingerprint := chi.URLParam(r, "fingerprint")
	if fingerprint == "" {
		api.Error(w, http.StatusBadRequest, "fingerprint is required")
		return
	}

	entry := h.svc.Get(fingerprint)
	if entry == nil {
		api.HandleError(w, domain.ErrSourceNotFound)
		return
	}
	api.Success(w, http.StatusOK, sourceToResponse(entry, true))
}
