package errors

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Common error types for the dashboard
var (
	// Session errors
	ErrSessionExpired     = errors.New("session expired")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrMissingAccessToken = errors.New("missing access token")
	ErrInvalidUserRecord  = errors.New("invalid user record")

	// Token errors
	ErrRefreshFailed       = errors.New("token refresh failed")
	ErrMissingRefreshToken = errors.New("missing refresh token")

	// Store errors
	ErrKeyNotFound    = errors.New("key not found")
	ErrSealedValue    = errors.New("sealed value could not be opened")
	ErrInvalidSealKey = errors.New("invalid seal key")

	// Form errors
	ErrValidation = errors.New("validation failed")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf annotates err with a message and a stack trace. It returns nil when err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return pkgerrors.Wrapf(err, format, args...)
}

// Cause returns the innermost error of a Wrapf chain
func Cause(err error) error {
	return pkgerrors.Cause(err)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers only import one errors package
func New(text string) error {
	return errors.New(text)
}
