// Package errors provides standardized error handling for the planning pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeProviderNotConfigured ErrorCode = "PROVIDER_NOT_CONFIGURED"
	ErrCodeProviderTimeout       ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderFailure       ErrorCode = "PROVIDER_FAILURE"

	ErrCodeGenerationTimeout ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
	ErrCodeBadResponseShape  ErrorCode = "BAD_RESPONSE_SHAPE"

	ErrCodePatchRejected    ErrorCode = "PATCH_REJECTED"
	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"

	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable request validation error. This is
// the only error kind that reaches API callers as a failure.
func NewValidationError(message string) *StandardError {
	return newError(ErrCodeValidationFailed, message, false)
}

// NewProviderNotConfigured signals that a provider category has no credentials
// and the call was short-circuited to fallback data.
func NewProviderNotConfigured(category string) *StandardError {
	e := newError(ErrCodeProviderNotConfigured, fmt.Sprintf("provider %s not configured", category), false)
	e.Metadata = map[string]interface{}{"category": category}
	return e
}

// NewProviderFailure wraps a failed live provider call. Recovered locally via
// fallback substitution, never surfaced to callers.
func NewProviderFailure(category string, cause error) *StandardError {
	e := newError(ErrCodeProviderFailure, fmt.Sprintf("provider %s call failed", category), true)
	e.Metadata = map[string]interface{}{"category": category}
	e.cause = cause
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewGenerationFailure wraps an LLM call failure or a response that failed the
// shape check. Recovered locally via a full-fallback itinerary.
func NewGenerationFailure(message string, cause error) *StandardError {
	e := newError(ErrCodeGenerationFailed, message, true)
	e.cause = cause
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewBadResponseShape reports a structurally invalid generator response.
func NewBadResponseShape(details string) *StandardError {
	e := newError(ErrCodeBadResponseShape, "generator response failed shape validation", false)
	e.Details = details
	return e
}

// NewPatchRejected reports a chat-proposed itinerary edit that failed shape
// validation. Surfaced conversationally, not as an error code.
func NewPatchRejected(details string) *StandardError {
	e := newError(ErrCodePatchRejected, "itinerary patch failed shape validation", false)
	e.Details = details
	return e
}

// NewStorageFailure wraps a persistence error from the preference or
// conversation stores.
func NewStorageFailure(op string, cause error) *StandardError {
	e := newError(ErrCodeStorageFailure, fmt.Sprintf("storage operation %s failed", op), true)
	e.cause = cause
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// CodeOf extracts the ErrorCode from err, or empty when err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidationFailed
}

// IsPatchRejected reports whether err is a rejected itinerary patch.
func IsPatchRejected(err error) bool {
	return CodeOf(err) == ErrCodePatchRejected
}
