package services

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidUser is returned for malformed user identifiers. Not retryable.
	ErrInvalidUser = errors.New("invalid user id")
	// ErrInactiveGame means there is no active game configuration ("gamification disabled").
	ErrInactiveGame = errors.New("gamification disabled: no active game")
	// ErrStoreUnavailable wraps transient persistence failures. The caller may retry.
	ErrStoreUnavailable = errors.New("progress store unavailable")
	// ErrConcurrentModification is an optimistic-lock conflict on a progress record.
	ErrConcurrentModification = errors.New("progress record modified concurrently")
	// ErrInvalidGame is returned when a game configuration fails validation.
	ErrInvalidGame = errors.New("invalid game configuration")
	// ErrInvalidAction is returned for malformed action events.
	ErrInvalidAction = errors.New("invalid action event")
	// ErrNotFound is returned by stores for missing records.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating a record whose unique key is taken.
	ErrAlreadyExists = errors.New("already exists")
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

// ValidateUserID accepts UUIDs, document ids and other opaque ids made of
// letters, digits, '-' and '_' (at most 64 characters).
func ValidateUserID(userID string) error {
	if !userIDPattern.MatchString(userID) {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	return nil
}

// Unavailable wraps a driver error as ErrStoreUnavailable.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
