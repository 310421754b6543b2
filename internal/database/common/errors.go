package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrForbidden    = errors.New("access denied")
	ErrNotConnected = errors.New("database not connected")
)

// ForbiddenError marks a storage authorization failure. It matches
// ErrForbidden under errors.Is and keeps the driver error reachable.
type ForbiddenError struct {
	Op  string
	Err error
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrForbidden, e.Err)
}

func (e *ForbiddenError) Unwrap() error { return e.Err }

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// RateLimitError is returned when the document store throttles a request.
// RetryAfter is the server-suggested wait, zero when none was given.
// Written counts the leading records of an insert that were stored before
// the throttle; they must not be sent again.
type RateLimitError struct {
	RetryAfter time.Duration
	Written    int
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

func Forbidden(op string, err error) error {
	return &ForbiddenError{Op: op, Err: err}
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// RetryAfter returns the server-suggested delay carried by err, if any.
func RetryAfter(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}

// Written returns how many leading records of a throttled insert were
// already stored, zero for any other error.
func Written(err error) int {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Written
	}
	return 0
}
