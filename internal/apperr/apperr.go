// Package apperr carries the error taxonomy shared by stores and handlers.
// Domain packages declare their sentinels as *Error values so handlers can map
// any error chain onto a status code with a single errors.As.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUpstream Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimited
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	default:
		return "upstream"
	}
}

// Status is the HTTP status code a handler should answer with.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets a wrapped copy produced by With match its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// With returns a copy of e wrapping cause.
func (e *Error) With(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// Withf returns a copy of e whose message carries extra detail.
func (e *Error) Withf(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf("%s: %s", e.Message, fmt.Sprintf(format, args...))
	return &cp
}

func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func Unauthenticated(message string) *Error {
	return New(KindAuthentication, "unauthenticated", message)
}

func Forbidden(message string) *Error {
	return New(KindAuthorization, "forbidden", message)
}

// Upstream wraps a failure of the database, media host or another collaborator.
func Upstream(err error) *Error {
	return &Error{Kind: KindUpstream, Code: "upstream_error", Message: "the server encountered a problem", Err: err}
}

var ErrTimeout = New(KindTimeout, "request_timeout", "the request took too long to complete")

// From resolves err to an *Error. Deadline errors become ErrTimeout and
// anything unclassified is treated as an upstream failure.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout.With(err)
	}
	return Upstream(err)
}

func KindOf(err error) Kind {
	return From(err).Kind
}
