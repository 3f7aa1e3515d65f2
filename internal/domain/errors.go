package domain

import "fmt"

// DomainError represents a domain-specific error
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

// Is reports whether target is a DomainError with the same code. Sentinel
// errors below are wrapped with per-call causes, so comparison is by code
// rather than pointer identity.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
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

// Common domain error codes
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeInferenceUnavailable = "INFERENCE_UNAVAILABLE"
	ErrCodeInferenceTimeout     = "INFERENCE_TIMEOUT"
	ErrCodeMalformedOutput      = "MALFORMED_OUTPUT"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingContent  = NewDomainError(ErrCodeValidation, "content is required")
	ErrMissingNoteData = NewDomainError(ErrCodeValidation, "noteData is required")
	ErrMissingQuery    = NewDomainError(ErrCodeValidation, `query parameter "q" is required`)
	ErrInvalidItemType = NewDomainError(ErrCodeValidation, "invalid entry item type")
	ErrMissingMessage  = NewDomainError(ErrCodeValidation, "message content is required")
	ErrEmptyText       = NewDomainError(ErrCodeValidation, "text cannot be empty")
	ErrWrongDimensions = NewDomainError(ErrCodeValidation, "embedding has wrong dimensions")
)

// Not found errors
var (
	ErrNoteNotFound       = NewDomainError(ErrCodeNotFound, "note not found")
	ErrMediaAssetNotFound = NewDomainError(ErrCodeNotFound, "media asset not found")
	ErrUploadNotFound     = NewDomainError(ErrCodeNotFound, "uploaded file not found")
)

// Inference errors
var (
	// ErrInferenceUnavailable covers unreachable capabilities and transport
	// failures. Per-item media transcoding degrades to an empty fragment on
	// this error; the narrative generation call propagates it instead.
	ErrInferenceUnavailable = NewDomainError(ErrCodeInferenceUnavailable, "inference capability unavailable")
	ErrInferenceTimeout     = NewDomainError(ErrCodeInferenceTimeout, "inference call timed out")
	// ErrMalformedGenerationOutput means the generation response was missing
	// the title or summary tag pair. Never silently defaulted.
	ErrMalformedGenerationOutput = NewDomainError(ErrCodeMalformedOutput, "generation output missing title or summary tags")
)

// Auth errors
var (
	ErrInvalidAPIToken = NewDomainError(ErrCodeUnauthorized, "invalid api token")
)
