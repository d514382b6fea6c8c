package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a command-level error with a structured error code.
// Codes follow the format KV-<AREA>-<NNNN>, where the number mirrors the
// closest HTTP status.
type DomainError struct {
	Code    string // Error code (e.g., "KV-CMD-4000")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ReplyText renders the error as the text of a wire error frame.
func (e *DomainError) ReplyText() string {
	if e.Details != "" {
		return fmt.Sprintf("ERR %s %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("ERR %s %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ReplyText renders any error as wire error text. Errors that are not a
// DomainError are reported as internal errors without leaking their text.
func ReplyText(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.ReplyText()
	}
	return ErrInternal.ReplyText()
}

// ============================================================================
// Command Errors (CMD)
// Recoverable: reported to the requesting connection, which stays open.
// ============================================================================

var (
	// ErrSyntax indicates wrong arity or malformed command arguments.
	ErrSyntax = NewDomainError("KV-CMD-4000", "syntax error")

	// ErrIncorrectRequest indicates a request that is not an array of bulk strings.
	ErrIncorrectRequest = NewDomainError("KV-CMD-4001", "incorrect request")

	// ErrCommandNotAvailable indicates an unknown command name.
	ErrCommandNotAvailable = NewDomainError("KV-CMD-4040", "command not available")
)

// ============================================================================
// Server Errors (SRV)
// ============================================================================

var (
	// ErrInternal indicates an unexpected failure while serving a command.
	ErrInternal = NewDomainError("KV-SRV-5000", "internal error")

	// ErrStorageNotInitialized indicates the dispatcher has no store attached.
	ErrStorageNotInitialized = NewDomainError("KV-SRV-5030", "storage not initialized")
)

// ============================================================================
// Protocol Errors (PROTO)
// Fatal to the connection: the frame cannot be trusted.
// ============================================================================

var (
	// ErrProtocol indicates a frame that failed to decode.
	ErrProtocol = NewDomainError("KV-PROTO-4000", "protocol error")

	// ErrFrameTooLarge indicates a frame exceeding the configured size limit.
	ErrFrameTooLarge = NewDomainError("KV-PROTO-4130", "frame too large")
)
