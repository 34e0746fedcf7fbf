// Package apperrors defines the errors surfaced to API callers.
package apperrors

import (
	"errors"
	"net/http"
)

// HTTPError is a deliberate, user-facing failure with its response status and code
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	ErrBadRequest = &HTTPError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: "invalid request",
	}

	ErrNicknameDuplicate = &HTTPError{
		Status:  http.StatusConflict,
		Code:    "NICKNAME_DUPLICATE",
		Message: "nickname is already taken today",
	}

	ErrNicknameNotRegistered = &HTTPError{
		Status:  http.StatusNotFound,
		Code:    "NICKNAME_NOT_REGISTERED",
		Message: "nickname has not been registered today",
	}

	ErrInternal = &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "Internal Server Error",
	}
)

// From returns the HTTPError carried by err, or ErrInternal for anything else
func From(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return ErrInternal
}

// IsInternal reports whether err maps to the generic internal error
func IsInternal(err error) bool {
	return From(err) == ErrInternal
}
