// Package common defines shared constants and sentinel errors used across
// the repository, service and transport layers. Callers should use errors.Is
// to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Unique constraint violations on users, both match ErrorConflict.
	ErrUsernameTaken = fmt.Errorf("username already registered: %w", ErrorConflict)
	ErrEmailTaken    = fmt.Errorf("email already registered: %w", ErrorConflict)

	// Service-level errors.
	ErrorInternal        = errors.New("internal error")
	ErrorUnauthenticated = errors.New("unauthenticated")
	ErrorInactive        = errors.New("inactive user")
	ErrorForbidden       = errors.New("forbidden")
	ErrorValidation      = errors.New("validation error")

	// ErrorInconsistent signals a broken parent reference in stored data.
	ErrorInconsistent = errors.New("inconsistent data")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenPurpose = errors.New("token purpose mismatch")
)

// DetailedError pairs a sentinel kind with a message meant for API clients.
type DetailedError struct {
	Kind   error
	Detail string
}

func (e *DetailedError) Error() string { return e.Detail }

func (e *DetailedError) Unwrap() error { return e.Kind }

// WithDetail returns an error that matches kind via errors.Is and carries
// detail as its client-facing message.
func WithDetail(kind error, detail string) error {
	return &DetailedError{Kind: kind, Detail: detail}
}

// Detail extracts the client-facing message from err, falling back to def.
func Detail(err error, def string) string {
	var de *DetailedError
	if errors.As(err, &de) && de.Detail != "" {
		return de.Detail
	}
	return def
}
