package sleeper

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUserNotFound   = errors.New("sleeper user not found")
	ErrLeagueNotFound = errors.New("sleeper league not found")
)
