package service

import (
	"errors"
	"net/http"
)

type ErrorKind int

const (
	KindBadRequest ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidValue
	KindConflict
)

// Error is a typed domain failure. Handlers translate Kind to a HTTP status.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func badRequest(message string) error {
	return &Error{Kind: KindBadRequest, Message: message}
}

func forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

func notFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func invalidValue(message string) error {
	return &Error{Kind: KindInvalidValue, Message: message}
}

func conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// KindOf returns the kind of a domain error, or 0 for any other error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// HTTPStatus maps a domain error to the status code clients depend on
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidValue:
		return http.StatusNotAcceptable
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
