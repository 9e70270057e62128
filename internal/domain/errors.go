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
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeLoadFailed      = "LOAD_FAILED"
	ErrCodeEmbeddingFailed = "EMBEDDING_FAILED"
	ErrCodeLLMFailed       = "LLM_FAILED"
	ErrCodeStorage         = "STORAGE_ERROR"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrUnsupportedFormat = NewDomainError(ErrCodeValidation, "unsupported document format, only .pdf and .docx are allowed")
	ErrInvalidFilename   = NewDomainError(ErrCodeValidation, "invalid filename")
	ErrEmptyQuestion     = NewDomainError(ErrCodeValidation, "question cannot be empty")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// LoadError wraps a document parsing failure.
func LoadError(filename string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeLoadFailed, fmt.Sprintf("failed to load document %q", filename), err)
}

// EmbeddingError wraps a failed call to the embedding provider.
func EmbeddingError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbeddingFailed, "embedding request failed", err)
}

// LLMError wraps a failed call to the chat completion provider.
func LLMError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeLLMFailed, "chat completion request failed", err)
}

// StorageError wraps a failed operation against the document store or chat log.
func StorageError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeStorage, message, err)
}
