package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// RequestError is returned by an APIClient whenever a call does not succeed.
// StatusCode is 0 when the request never got a response (network failure, timeout, cancellation).
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Err        error
}

func (err *RequestError) Error() string {
	if err.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", err.Method, err.Path, err.Err)
	}
	msg := fmt.Sprintf("%s %s: %d %s", err.Method, err.Path, err.StatusCode, http.StatusText(err.StatusCode))
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *RequestError) Unwrap() error { return err.Err }

// IsTransport reports whether err is a RequestError that never got a response.
func IsTransport(err error) bool {
	reqErr, ok := errors.Cause(err).(*RequestError)
	return ok && reqErr.StatusCode == 0
}

// StatusCode returns the HTTP status carried by err, 0 if there is none.
func StatusCode(err error) int {
	if reqErr, ok := errors.Cause(err).(*RequestError); ok {
		return reqErr.StatusCode
	}
	return 0
}
