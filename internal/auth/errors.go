package auth

import "errors"

var (
	// ErrUserNotFound indicates no user account matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists indicates the email is already registered.
	ErrEmailExists = errors.New("email already registered")

	// ErrTokenInvalid indicates a token failed signature, expiry, or
	// claim validation.
	ErrTokenInvalid = errors.New("invalid token")
)
