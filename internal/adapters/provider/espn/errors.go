package espn

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrCategoryMissing is returned when a leaders response lacks the
	// requested category.
	ErrCategoryMissing = errors.New("leader category missing")
	// ErrInvalidAthlete is returned for a profile with no id or name.
	ErrInvalidAthlete = errors.New("invalid athlete profile")
)
