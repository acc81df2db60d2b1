// Package domain provides shared domain error values.
package domain

import "errors"

// Domain errors.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a validation error.
	ErrValidation = errors.New("validation error")

	// ErrConflict indicates a conflict with an operation already in progress.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable indicates the service cannot serve yet, e.g. no
	// snapshot has been published. Transient; clients should retry.
	ErrUnavailable = errors.New("unavailable")

	// ErrUnauthorized indicates a missing or invalid admin token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the caller exceeded its request budget.
	ErrRateLimited = errors.New("rate limited")
)
