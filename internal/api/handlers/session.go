package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/api"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/service"
)

type SessionService interface {
	Create() string
	SetActiveSource(id, fingerprint string) error
	ActiveSource(id string) (string, error)
	History(id string) ([]domain.Turn, error)
	LastFailure(id string) (string, error)
}

type SessionLibrary interface {
	Get(fingerprint string) *service.CacheEntry
}

type SessionHandler struct {
	svc     SessionService
	library SessionLibrary
}

func NewSessionHandler(svc SessionService, library SessionLibrary) *SessionHandler {
	return &SessionHandler{svc: svc, library: library}
}

type SessionResponse struct {
	SessionID   string   `json:"session_id"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	SourceName  string   `json:"source_name,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type SelectSourceRequest struct {
	Fingerprint string `json:"fingerprint"`
}

type TurnResponse struct {
	Role string `json:"role"`
	Text string `json:"text"`
	At   string `json:"at"`
}

type HistoryResponse struct {
	SessionID   string         `json:"session_id"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Turns       []TurnResponse `json:"turns"`
	LastFailure string         `json:"last_failure,omitempty"`
}

// Create opens a new conversation session.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := h.svc.Create()
	api.Success(w, http.StatusCreated, SessionResponse{SessionID: id})
}

// SelectSource points the session at an already ingested source. Selecting a
// different source clears the session history.
func (h *SessionHandler) SelectSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req SelectSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Fingerprint == "" {
		api.Error(w, http.StatusBadRequest, "fingerprint is required")
		return
	}

	entry := h.library.Get(req.Fingerprint)
	if entry == nil {
		api.HandleError(w, domain.ErrSourceNotFound)
		return
	}

	if err := h.svc.SetActiveSource(id, req.Fingerprint); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SessionResponse{
		SessionID:   id,
		Fingerprint: entry.Fingerprint,
		SourceName:  entry.SourceName,
		Suggestions: entry.Suggestions,
	})
}

// History returns the session transcript in order.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	turns, err := h.svc.History(id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	fingerprint, err := h.svc.ActiveSource(id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	lastFailure, err := h.svc.LastFailure(id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := HistoryResponse{
		SessionID:   id,
		Fingerprint: fingerprint,
		Turns:       make([]TurnResponse, 0, len(turns)),
		LastFailure: lastFailure,
	}
	for _, turn := range turns {
		out.Turns = append(out.Turns, TurnResponse{
			Role: string(turn.Role),
			Text: turn.Text,
			At:   turn.At.Format("2006-01-02T15:04:05Z"),
		})
	}
	api.Success(w, http.StatusOK, out)
}
