package domain

import "fmt"

// DomainError represents a pipeline-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes, grouped by recovery strategy: ingestion errors are recoverable
// by retrying or supplying a different source, service errors by retrying the
// same call, pipeline-state errors indicate caller misuse or an ingestion
// anomaly.
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnsupportedSource = "UNSUPPORTED_SOURCE_KIND"
	ErrCodeFetchFailed       = "FETCH_FAILED"
	ErrCodeExtractionFailed  = "EXTRACTION_FAILED"
	ErrCodeEmbeddingService  = "EMBEDDING_SERVICE_ERROR"
	ErrCodeGenerationService = "GENERATION_SERVICE_ERROR"
	ErrCodeEmptyContext      = "EMPTY_CONTEXT"
	ErrCodeNoActiveSource    = "NO_ACTIVE_SOURCE"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Ingestion errors
var (
	ErrUnsupportedSourceKind = NewDomainError(ErrCodeUnsupportedSource, "source kind is not supported")
	ErrFetchFailed           = NewDomainError(ErrCodeFetchFailed, "could not reach the source locator")
	ErrExtractionFailed      = NewDomainError(ErrCodeExtractionFailed, "source was reachable but yielded no usable text")
)

// Service errors
var (
	ErrEmbeddingService  = NewDomainError(ErrCodeEmbeddingService, "embedding service call failed")
	ErrGenerationService = NewDomainError(ErrCodeGenerationService, "language model call failed")
)

// Pipeline-state errors
var (
	ErrEmptyContext    = NewDomainError(ErrCodeEmptyContext, "index contains no chunks")
	ErrNoActiveSource  = NewDomainError(ErrCodeNoActiveSource, "session has no active source")
	ErrSessionNotFound = NewDomainError(ErrCodeNotFound, "session not found")
	ErrSourceNotFound  = NewDomainError(ErrCodeNotFound, "source is not in the cache")
)

// Validation errors
var (
	ErrMissingLocator = NewDomainError(ErrCodeValidation, "source is missing a locator")
	ErrEmptyQuery     = NewDomainError(ErrCodeValidation, "query must not be empty")
)
