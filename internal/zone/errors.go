package zone

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidZone is returned when a polygon has fewer than 3 points.
	ErrInvalidZone = errors.New("zone needs at least 3 points")
	// ErrZoneNotFound is returned for an out-of-range zone index.
	ErrZoneNotFound = errors.New("zone not found")
)

// ParseError reports a zones file that exists but cannot be used.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse zones file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError reports a failure reading or writing the zones file.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s zones file %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
