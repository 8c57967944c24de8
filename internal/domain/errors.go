package domain

import (
	"errors"
	"fmt"
)

// RetriableError marks errors that may succeed on a later tick.
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks whether err (or anything it wraps) is retriable.
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// FetchError represents a failed pool status fetch. One failing endpoint
// fails the whole batch, so Pool names the endpoint that broke it.
type FetchError struct {
	Pool string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Pool, e.Err)
}

func (e *FetchError) IsRetriable() bool { return true }

func (e *FetchError) Unwrap() error { return e.Err }

// DispatchError represents a failed message delivery to a single chat.
// Delivery to the remaining recipients continues.
type DispatchError struct {
	ChatID int64
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch to chat %d: %v", e.ChatID, e.Err)
}

func (e *DispatchError) IsRetriable() bool { return true }

func (e *DispatchError) Unwrap() error { return e.Err }

// ConfigError represents a startup configuration error (never retriable,
// always fatal).
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool { return false }

func (e *ConfigError) Unwrap() error { return e.Err }

var (
	// ErrMissingField is returned when a pool response lacks an expected field.
	ErrMissingField = errors.New("missing field in pool response")

	// ErrNotEnoughPools is returned by the compare view for fewer than two snapshots.
	ErrNotEnoughPools = errors.New("not enough pools to compare")

	// ErrInvalidInterval is returned for an auto-compare period outside the allowed set.
	ErrInvalidInterval = errors.New("interval not allowed")
)
