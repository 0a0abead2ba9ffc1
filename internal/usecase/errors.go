package usecase

import "errors"

// Sentinel errors shared by every service in this package. Callers match
// with errors.Is and map the category to an exit code or response.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
