package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotLoggedIn is returned by calls that need a token when none is held.
var ErrNotLoggedIn = errors.New("not logged in")

// Error is a non-2xx answer from the server. Message is the server's
// {"error": ...} text, or the status text when the body had none.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// StatusOf reports the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsUnauthorized reports whether the server rejected the token.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized || errors.Is(err, ErrNotLoggedIn)
}
