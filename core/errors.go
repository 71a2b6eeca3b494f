package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthenticated is returned when no usable auth token is available, or when the portal rejects it.
	// Callers are expected to send the user back to the login screen.
	ErrUnauthenticated = errors.New("not authenticated")

	ErrForbidden = errors.New("permission denied")
	ErrNotFound  = errors.New("not found")

	// ErrUnreachable is returned when the portal could not be reached at all.
	ErrUnreachable = errors.New("portal unreachable")
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
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// APIError is a non-2xx response of the portal API.
type APIError struct {
	Status  int
	Message string
}

func (err *APIError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("portal: %d %s", err.Status, http.StatusText(err.Status))
	}
	return fmt.Sprintf("portal: %d %s", err.Status, err.Message)
}

// IsAPIStatus reports whether err was caused by a portal response with the given status code.
func IsAPIStatus(err error, status int) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.Status == status
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
