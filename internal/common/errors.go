// Package common defines the constants and sentinel errors shared by the
// gate server and the reader client. Callers match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Request errors.
	ErrorInvalidRequest = errors.New("invalid request")

	// Gate errors.
	ErrorNotGated          = errors.New("resource is not password protected")
	ErrorConfigUnavailable = errors.New("resource configuration unavailable")

	// Token errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")
)
