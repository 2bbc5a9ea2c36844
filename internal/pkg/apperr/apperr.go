// Package apperr classifies storefront failures so callers can decide how to
// surface them: validation problems are warnings raised before any network
// call, authorization problems ask the admin to log in again, transport
// problems carry the backend's message when there is one.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure class
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindTransport     Kind = "transport"
	KindNotFound      Kind = "not_found"
)

// Error is a classified failure
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Status  int  // backend HTTP status, 0 when no response was received
	Timeout bool // the call hit its deadline
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports input rejected before any network call
func Validation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// Authorization reports a missing, expired or rejected admin token
func Authorization(op, message string) *Error {
	return &Error{Kind: KindAuthorization, Op: op, Message: message}
}

// Transport wraps a network, status or payload failure
func Transport(op, message string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Message: message, Err: err}
}

// Timeout reports a call that exceeded its deadline
func Timeout(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Message: "request timed out", Timeout: true, Err: err}
}

// NotFound reports a missing resource
func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

// KindOf returns the kind of err, or KindTransport for unclassified errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindTransport
}

// Is reports whether err is classified as kind
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsTimeout reports whether err is a deadline failure
func IsTimeout(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Timeout
}

// MessageOf returns the user-facing message of err
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// HTTPStatus maps err to the status the storefront answers with
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindTransport:
		if appErr.Timeout {
			return http.StatusGatewayTimeout
		}
		// the backend refused the request itself, pass its answer on
		if appErr.Status >= 400 && appErr.Status < 500 {
			return appErr.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
