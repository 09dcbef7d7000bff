// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across store/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotSignedIn indicates an operation that requires a session was
	// invoked without one.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")
)

// LimitReachedError reports a freemium limit refusal. It is returned by the
// save path before any write happens, so a caller seeing it can assume the
// stores are untouched.
type LimitReachedError struct {
	Resource string // e.g. "events", "priority todos"
	Limit    int
}

func (e *LimitReachedError) Error() string {
	return fmt.Sprintf("%s limit reached (max %d), upgrade to premium for more", e.Resource, e.Limit)
}

// IsLimitReached reports whether err is (or wraps) a LimitReachedError.
func IsLimitReached(err error) bool {
	var le *LimitReachedError
	return errors.As(err, &le)
}
