package client

import (
	"errors"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrNotLoggedIn  = errors.New("not logged in")
)

// APIError is a failed gateway call. Message is the gateway's own text.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.kind.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// NewAPIError classifies an HTTP status into one of the sentinel kinds.
func NewAPIError(status int, msg string) *APIError {
	var kind error
	switch {
	case status == http.StatusUnauthorized:
		kind = ErrUnauthorized
	case status == http.StatusForbidden:
		kind = ErrForbidden
	case status == http.StatusNotFound:
		kind = ErrNotFound
	case status == http.StatusConflict:
		kind = ErrConflict
	case status >= 500:
		kind = ErrUnavailable
	default:
		kind = ErrBadRequest
	}
	return &APIError{Status: status, Message: msg, kind: kind}
}
