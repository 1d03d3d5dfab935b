package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/optica/admin/internal/domain/shared"
)

// Error is a failed remote call: a transport failure, a non-2xx status or
// an envelope with status false. Every Error matches
// shared.ErrNetworkFailure; 401 and 404 also match ErrUnauthorized and
// ErrNotFound.
type Error struct {
	Method     string
	Path       string
	StatusCode int // 0 for transport failures
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the domain sentinels
func (e *Error) Is(target error) bool {
	switch target {
	case shared.ErrNetworkFailure:
		return true
	case shared.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case shared.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// UserMessage returns the server's failure message, empty when it sent none
func (e *Error) UserMessage() string {
	return e.Message
}

// ServerMessage returns the message the server sent with a failure, if any.
// Screens prefer it over their generic failure text.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
