// Package common defines shared constants and the error taxonomy used across
// the server and client layers of trophyshop. Callers should use errors.Is
// to match these values; typed errors below satisfy errors.Is against their
// sentinel.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	// Input errors.
	ErrValidation      = errors.New("validation error")
	ErrPayloadTooLarge = errors.New("payload too large")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Storage and network errors.
	ErrTransport = errors.New("transport error")
	ErrCleanup   = errors.New("cleanup error")
)

// ValidationError reports bad input shape, type or identifier.
type ValidationError struct {
	Field string
	Msg   string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// PayloadTooLargeError reports an upload exceeding the configured maximum.
// Msg is preformatted by the producer so both sizes share one unit scale.
type PayloadTooLargeError struct {
	Size int64
	Max  int64
	Msg  string
}

func (e *PayloadTooLargeError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("file size %d B exceeds the maximum allowed size of %d B", e.Size, e.Max)
}

func (e *PayloadTooLargeError) Is(target error) bool { return target == ErrPayloadTooLarge }

// TransportError wraps a network or storage I/O failure of operation Op.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// CleanupError is a non-fatal condition: some temporary objects could not be
// listed or removed. Keys holds whatever was left behind, if known.
type CleanupError struct {
	Keys []string
	Err  error
}

func (e *CleanupError) Error() string {
	if len(e.Keys) == 0 {
		return fmt.Sprintf("cleanup failed: %v", e.Err)
	}
	return fmt.Sprintf("cleanup failed for %s: %v", strings.Join(e.Keys, ", "), e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }

func (e *CleanupError) Is(target error) bool { return target == ErrCleanup }
