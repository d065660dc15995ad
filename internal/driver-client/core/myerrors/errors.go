package myerrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch without inspecting
// message text.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindPermissionDenied  Kind = "permission_denied"
	KindNetwork           Kind = "network_error"
	KindAuth              Kind = "auth_error"
	KindServer            Kind = "server_error"
	KindMalformedResponse Kind = "malformed_response"
)

type Error struct {
	Kind    Kind
	Message string
	// Status holds the HTTP status code for server-originated failures, 0 otherwise.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind carried by err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// StatusOf reports the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
