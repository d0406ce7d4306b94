package common

import "errors"

// Error kinds. Callers should match them with errors.Is; concrete failures are
// *Error values that unwrap to one of these.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNotFound           = errors.New("not found")
	ErrInternal           = errors.New("internal error")

	// Token lifecycle errors, returned by the token service.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Error is a classified failure with a message that is safe to show to API
// callers.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError returns an *Error of the given kind.
func NewError(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Predefined failures shared between layers.
var (
	ErrEmailExists    = NewError(ErrConflict, "Email already exists")
	ErrUsernameExists = NewError(ErrConflict, "Username already exists")
	ErrBadCredentials = NewError(ErrInvalidCredentials, "Invalid credentials")
	ErrBookNotFound   = NewError(ErrNotFound, "Book not found")
	ErrUserNotFound   = NewError(ErrNotFound, "User not found")
)

// Message returns the caller-facing message of err, or fallback when err is
// not classified.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
