// Package common defines shared constants and sentinel errors used across
// the client and server layers of Billfold. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Remote store errors.
	ErrUnavailable   = errors.New("server unavailable")
	ErrBatchRejected = errors.New("batch rejected")

	// Auth errors.
	ErrInvalidToken         = errors.New("invalid token")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrInvalidLoginPassword = errors.New("invalid login/password")

	// Sync engine errors.
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrUnknownTable   = errors.New("unknown table")
)
