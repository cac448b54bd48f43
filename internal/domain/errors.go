package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeNotFound   ErrorCode = "NOT_FOUND"

	// Pipeline specific errors
	CodeFetchFailed      ErrorCode = "FETCH_FAILED"
	CodeParseFailed      ErrorCode = "PARSE_FAILED"
	CodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	CodeStoreFailed      ErrorCode = "STORE_FAILED"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewValidationError(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}

func NewFetchError(message string, err error) *DomainError {
	return NewError(CodeFetchFailed, message, err)
}

func NewParseError(message string) *DomainError {
	return NewError(CodeParseFailed, message, nil)
}

func NewGenerationError(message string, err error) *DomainError {
	return NewError(CodeGenerationFailed, message, err)
}

func NewStoreError(message string, err error) *DomainError {
	return NewError(CodeStoreFailed, message, err)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewQuizNotFoundError(id int64) *DomainError {
	return NewError(CodeNotFound, fmt.Sprintf("Quiz not found with ID: %d", id), nil)
}

// WrapError prefixes an error with user-facing context while preserving its
// code, so the HTTP status mapping survives the wrapping. Non-domain errors
// fall back to the given code.
func WrapError(err error, prefix string, fallback ErrorCode) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return NewError(de.Code, fmt.Sprintf("%s: %s", prefix, de.Message), de)
	}
	return NewError(fallback, fmt.Sprintf("%s: %v", prefix, err), err)
}
