// Package apperr defines the error kinds surfaced by the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for translation into a transport status code.
type Kind int

const (
	// KindInternal is an unexpected failure; the default for unclassified errors.
	KindInternal Kind = iota
	// KindClientInput is a malformed request, such as a bad id or body.
	KindClientInput
	// KindUnauthorized is a missing or wrong admin token.
	KindUnauthorized
	// KindNotFound is a request for a mapping or route that does not exist.
	KindNotFound
	// KindStorage is a failure in the mapping store.
	KindStorage
)

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindClientInput:
		return "client_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindClientInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error with a kind, a client-facing message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the message and the cause joined by ": ", whichever are set.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		if e.Err != nil {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int { return e.Kind.Status() }

// New creates an error of the given kind.
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ClientInput creates a KindClientInput error.
func ClientInput(message string, err error) *Error {
	return New(KindClientInput, message, err)
}

// Unauthorized creates a KindUnauthorized error without a cause.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message, nil)
}

// NotFound creates a KindNotFound error.
func NotFound(message string, err error) *Error {
	return New(KindNotFound, message, err)
}

// Storage creates a KindStorage error.
func Storage(message string, err error) *Error {
	return New(KindStorage, message, err)
}

// Internal creates a KindInternal error.
func Internal(message string, err error) *Error {
	return New(KindInternal, message, err)
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
