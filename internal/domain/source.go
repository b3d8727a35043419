package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SourceKind identifies the family of an ingestible source.
type SourceKind string

const (
	SourceKindVideo    SourceKind = "video"
	SourceKindWebpage  SourceKind = "webpage"
	SourceKindDocument SourceKind = "document"
)

// IsValidSourceKind checks whether a SourceKind is one of the known kinds.
func IsValidSourceKind(k SourceKind) bool {
	switch k {
	case SourceKindVideo, SourceKindWebpage, SourceKindDocument:
		return true
	}
	return false
}

// Source describes one ingestible unit of content. URL is the locator for
// video and webpage sources; documents carry their uploaded payload in
// Content with Name preserving the original filename (the extension selects
// the extractor).
type Source struct {
	Kind    SourceKind
	URL     string
	Name    string
	Content []byte
}

// Validate checks that the descriptor is well-formed for its kind.
func (s Source) Validate() error {
	if !IsValidSourceKind(s.Kind) {
		return ErrUnsupportedSourceKind
	}
	switch s.Kind {
	case SourceKindDocument:
		if s.Name == "" || len(s.Content) == 0 {
			return ErrMissingLocator
		}
	default:
		if s.URL == "" {
			return ErrMissingLocator
		}
	}
	return nil
}

// DisplayName returns the human-readable identity of the source.
func (s Source) DisplayName() string {
	if s.Kind == SourceKindDocument {
		return s.Name
	}
	return s.URL
}

// Fingerprint derives the stable cache identity of the source: a SHA-256
// over the kind, the locator and, for uploads, the raw payload bytes.
// Extraction nondeterminism never changes the fingerprint.
func (s Source) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00", s.Kind, s.URL, s.Name)
	h.Write(s.Content)
	return hex.EncodeToString(h.Sum(nil))
}
