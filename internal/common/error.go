// Package common defines sentinel errors and small helpers shared by the
// identity, roles and session layers of rolekeeper. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Session-level errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// Configuration errors.
	ErrorUnknownBackend = errors.New("unknown backend")

	// Malformed ID token.
	ErrInvalidToken = errors.New("invalid token")
)
