package api

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorClass int

const (
	// ErrorClassValidation covers 4xx rejections of the request payload.
	ErrorClassValidation ErrorClass = iota
	// ErrorClassAuth covers 401/403 responses.
	ErrorClassAuth
	// ErrorClassTransport covers network failures and 5xx responses.
	ErrorClassTransport
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Error is a non-2xx response from the backend, carrying the HTTP status
// and the detail message from the response body when one was present.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %s (status %d)", e.Detail, e.Status)
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

func ClassifyError(err error) ErrorClass {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
			return ErrorClassAuth
		case apiErr.Status >= 400 && apiErr.Status < 500:
			return ErrorClassValidation
		}
		return ErrorClassTransport
	}
	return ErrorClassTransport
}
