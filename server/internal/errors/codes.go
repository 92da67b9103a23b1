// Package errors defines the structured error codes surfaced by the chat API.
package errors

import (
	"fmt"
)

// ErrorCode classifies a chat pipeline failure.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeRateLimitExceeded indicates the persona's send rate was exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeStorageRead indicates a failed read from the memory store.
	ErrCodeStorageRead ErrorCode = "STORAGE_READ_FAILED"
	// ErrCodeStorageWrite indicates a failed write to the memory store.
	ErrCodeStorageWrite ErrorCode = "STORAGE_WRITE_FAILED"
	// ErrCodeCompletionUnavailable indicates the completion provider failed.
	ErrCodeCompletionUnavailable ErrorCode = "COMPLETION_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// ChatError is a structured error carrying an ErrorCode for API mapping.
type ChatError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

// New creates a ChatError.
func New(code ErrorCode, message string, cause error) *ChatError {
	return &ChatError{Code: code, Message: message, Cause: cause}
}
