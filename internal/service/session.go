package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
)

// sessionState is one conversation. The transcript only ever holds completed
// exchanges; a failed generation is kept aside in lastFailure instead.
type sessionState struct {
	fingerprint string
	turns       []domain.Turn
	lastFailure string
	createdAt   time.Time
}

// Sessions tracks independent conversation sessions. Each session points at
// one active source at a time; switching sources starts the conversation
// over.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

// NewSessions creates an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*sessionState)}
}

// Create opens a new session with no active source and returns its ID.
func (s *Sessions) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &sessionState{createdAt: time.Now().UTC()}
	s.mu.Unlock()
	return id
}

// SetActiveSource points the session at a source fingerprint. Re-selecting
// the current source is a no-op; selecting a different one clears the
// transcript so answers never mix sources.
func (s *Sessions) SetActiveSource(id, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if state.fingerprint == fingerprint {
		return nil
	}
	state.fingerprint = fingerprint
	state.turns = nil
	state.lastFailure = ""
	return nil
}

// ActiveSource returns the session's current source fingerprint, which is
// empty until a source has been selected.
func (s *Sessions) ActiveSource(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[id]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return state.fingerprint, nil
}

// AppendExchange records one completed question and answer pair and clears
// any remembered failure.
func (s *Sessions) AppendExchange(id, query, answer string) error {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	state.turns = append(state.turns,
		domain.Turn{Role: domain.RoleUser, Text: query, At: now},
		domain.Turn{Role: domain.RoleAssistant, Text: answer, At: now},
	)
	state.lastFailure = ""
	return nil
}

// History returns a copy of the session transcript in order.
func (s *Sessions) History(id string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	turns := make([]domain.Turn, len(state.turns))
	copy(turns, state.turns)
	return turns, nil
}

// RecordFailure notes why the latest ask failed without touching the
// transcript.
func (s *Sessions) RecordFailure(id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	state.lastFailure = reason
	return nil
}

// LastFailure returns the reason the latest ask failed, or an empty string
// when the last exchange completed.
func (s *Sessions) LastFailure(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[id]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return state.lastFailure, nil
}

// Exists reports whether a session ID is known.
func (s *Sessions) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}
