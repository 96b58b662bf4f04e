package store

import "errors"

var (
	// ErrCorrupt is returned when stored data violates its format.
	ErrCorrupt = errors.New("store: corrupt data")

	// ErrClosed is returned when a closed snapshot is used.
	ErrClosed = errors.New("store: snapshot closed")
)
