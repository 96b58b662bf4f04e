package quarry

import (
	"errors"
	"fmt"

	"github.com/hupe1980/quarry/match"
	"github.com/hupe1980/quarry/store"
)

var (
	// ErrNilSource is returned by Open without a snapshot source.
	ErrNilSource = errors.New("quarry: nil source")

	// ErrSearcherClosed is returned when a closed searcher is used.
	ErrSearcherClosed = errors.New("quarry: searcher closed")

	// ErrCorruptData is returned when stored data cannot be decoded.
	ErrCorruptData = errors.New("quarry: corrupt data")

	// ErrUnsupportedQuery is returned for comparers and score functions that
	// do not fit the query they are applied to.
	ErrUnsupportedQuery = errors.New("quarry: unsupported query")

	// ErrMemoryLimitExceeded is returned when sorting exceeds the configured
	// memory limit.
	ErrMemoryLimitExceeded = match.ErrMemoryLimitExceeded
)

// ErrInvalidThreshold indicates a range query whose threshold values do not
// fit the predicate.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrInvalidThreshold struct {
	Field      string
	Comparison match.Comparison
	cause      error
}

func (e *ErrInvalidThreshold) Error() string {
	return fmt.Sprintf("invalid threshold for %s on field %q: %v", e.Comparison, e.Field, e.cause)
}

func (e *ErrInvalidThreshold) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrCorrupt) {
		return fmt.Errorf("%w: %w", ErrCorruptData, err)
	}
	if errors.Is(err, store.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrSearcherClosed, err)
	}
	if errors.Is(err, match.ErrUnsupportedComparer) || errors.Is(err, match.ErrUnsupportedScoreFunction) {
		return fmt.Errorf("%w: %w", ErrUnsupportedQuery, err)
	}

	return err
}
