package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/trophyshop/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx answer from the server. Message is the server's
// "error" field when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is maps status codes onto the client sentinels and the shared error
// taxonomy.
func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusBadRequest:
		return target == common.ErrValidation
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusForbidden:
		return target == ErrForbidden
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusRequestEntityTooLarge:
		return target == common.ErrPayloadTooLarge
	case http.StatusBadGateway:
		return target == common.ErrTransport
	}
	return e.Status >= 500 && target == ErrUnavailable
}
