package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrNoState is returned when there is no saved state to load.
	ErrNoState = errors.New("no saved state")
	// ErrInvalidState is returned when saved state cannot be parsed at all.
	ErrInvalidState = errors.New("invalid saved state")
	// ErrInvalidValue is returned by setters given an out-of-domain value.
	ErrInvalidValue = errors.New("invalid value")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))
}
