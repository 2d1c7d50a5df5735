package errors

import "errors"

var (
	// ErrNotFound marks a logically absent result: no confident venue match, no embedding yet.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument marks missing or invalid required input. Nothing was done.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnavailable marks an upstream (embedding, catalog, social graph) failure or timeout.
	ErrUnavailable = errors.New("upstream unavailable")
)

func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }
func IsUnavailable(err error) bool     { return errors.Is(err, ErrUnavailable) }
