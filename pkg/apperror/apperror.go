// Package apperror defines the application error taxonomy and its mapping to
// HTTP status codes. Services return *AppError; handlers only translate it.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind enumerates the categories of application errors.
type Kind int

const (
	Internal Kind = iota
	Validation
	DuplicateEmail
	InvalidCredentials
	Unauthorized
	TokenMissing
	TokenExpired
	TokenInvalid
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case DuplicateEmail:
		return "duplicate_email"
	case InvalidCredentials:
		return "invalid_credentials"
	case Unauthorized:
		return "unauthorized"
	case TokenMissing:
		return "token_missing"
	case TokenExpired:
		return "token_expired"
	case TokenInvalid:
		return "token_invalid"
	case NotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// AppError carries a client-safe Message and an optional underlying cause.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error kind
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case Validation, DuplicateEmail:
		return http.StatusBadRequest
	case InvalidCredentials, Unauthorized, TokenMissing, TokenExpired, TokenInvalid:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NewValidation(message string) *AppError { return New(Validation, message, nil) }
func NewNotFound(message string) *AppError   { return New(NotFound, message, nil) }

// NewInternal wraps an unexpected fault. The cause is kept for logging only.
func NewInternal(err error) *AppError {
	return New(Internal, "Internal server error", err)
}

// From extracts the *AppError from err's chain, wrapping anything else as Internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return NewInternal(err)
}

// Is reports whether err carries an *AppError of the given kind.
func Is(err error, kind Kind) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Kind == kind
}
