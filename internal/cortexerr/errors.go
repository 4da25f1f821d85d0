// ABOUTME: Error taxonomy shared across retrieval, confidence, and validation
// ABOUTME: Every failure carries a stable machine-readable code plus a user-safe message
package cortexerr

import (
	"errors"
	"fmt"
)

// Code identifies a failure kind without exposing internal detail.
// Callers branch on codes; free-text messages are never parsed.
type Code string

const (
	// Authentication
	CodeAuthFailed   Code = "AUTH_FAILED"
	CodeInvalidToken Code = "INVALID_TOKEN"

	// Policy retrieval
	CodeInvalidEmbeddingShape Code = "INVALID_EMBEDDING_SHAPE"
	CodeNoPolicyFound         Code = "NO_POLICY_FOUND"
	CodeRetrievalFailed       Code = "RETRIEVAL_FAILED"
	CodeLowConfidence         Code = "LOW_CONFIDENCE"

	// Reasoning and validation
	CodeReasoningFailed  Code = "REASONING_FAILED"
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeInvalidRequest   Code = "INVALID_REQUEST"

	// System
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeTimeout       Code = "TIMEOUT"
)

// userMessages maps codes to messages safe to show an end user.
// Internal causes (query text, connection details) never appear here.
var userMessages = map[Code]string{
	CodeAuthFailed:            "Authentication failed. Please sign in again.",
	CodeInvalidToken:          "Your session has expired. Please sign in again.",
	CodeInvalidEmbeddingShape: "Your request could not be processed. Please try again.",
	CodeNoPolicyFound:         "No travel policy found for your request. Please contact the travel team.",
	CodeRetrievalFailed:       "Unable to retrieve travel policies. Please try again.",
	CodeLowConfidence:         "Travel policy match is uncertain. Strictest defaults will be applied.",
	CodeReasoningFailed:       "Unable to process your booking request. Please try again.",
	CodeValidationFailed:      "Unable to generate a valid booking plan. Please rephrase your request.",
	CodeInvalidRequest:        "Invalid request format. Please try again.",
	CodeInternalError:         "An unexpected error occurred. Please try again.",
	CodeTimeout:               "The request timed out. Please try again.",
}

// Error is a failure with a stable code, an internal message, and an
// optional wrapped cause. The cause is preserved for diagnostics but never
// included in user-facing output.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New creates an Error with the given code and internal message
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error that preserves an underlying cause
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Error returns the internal message for logs and diagnostics
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As
func (e *Error) Unwrap() error {
	return e.cause
}

// UserMessage returns the user-safe message for this error's code
func (e *Error) UserMessage() string {
	if msg, ok := userMessages[e.Code]; ok {
		return msg
	}
	return userMessages[CodeInternalError]
}

// CodeOf extracts the taxonomy code from err, walking the wrap chain.
// Returns CodeInternalError for errors outside the taxonomy.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternalError
}

// HasCode reports whether err carries the given code anywhere in its chain
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
