package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidRequest marks caller input the service cannot act on.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrLeadersUnavailable means no leader category could be loaded. The
	// caller may retry.
	ErrLeadersUnavailable = errors.New("stat leaders unavailable")
	// ErrPlayerNotFound means the provider id is not in the resolved set.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrUserNotFound means the platform username does not exist.
	ErrUserNotFound = errors.New("user not found")
)
