package errors

import (
	"errors"
	"fmt"
)

// Common error types for the identity dashboard
var (
	// Authentication errors
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidRegistrationData = errors.New("invalid registration data")
	ErrUserExists              = errors.New("user already exists")
	ErrUserNotFound            = errors.New("user not found")
	ErrLoginInProgress         = errors.New("a sign-in is already in progress")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Client errors
	ErrInvalidClient = errors.New("invalid client")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Kind classifies a failure for the caller that has to present it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is malformed or insufficient input, handled at the form boundary.
	KindValidation
	// KindAuth is a credential rejection or any non-2xx auth response.
	KindAuth
	// KindTransport is a network error, timeout or unreadable response.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindTransport:
		return "transport"
	}
	return "unknown"
}

// Error is a classified failure. Message is safe to show to a user as-is.
type Error struct {
	Kind    Kind
	Message string
	Status  int   // HTTP status when the failure came from a response, 0 otherwise
	Err     error // underlying cause, may be nil
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a KindValidation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// AuthFailure returns a KindAuth error.
func AuthFailure(message string, status int, cause error) *Error {
	return &Error{Kind: KindAuth, Message: message, Status: status, Err: cause}
}

// Transport returns a KindTransport error.
func Transport(message string, status int, cause error) *Error {
	return &Error{Kind: KindTransport, Message: message, Status: status, Err: cause}
}

// KindOf reports the Kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
