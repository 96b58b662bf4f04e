package match

import (
	"errors"

	"github.com/hupe1980/quarry/internal/resource"
)

var (
	// ErrUnsupportedComparer is returned for comparers that cannot order
	// values of the requested domain.
	ErrUnsupportedComparer = errors.New("match: unsupported comparer")

	// ErrUnsupportedScoreFunction is returned for score functions that
	// cannot be applied to the boosted match.
	ErrUnsupportedScoreFunction = errors.New("match: unsupported score function")

	// ErrDomainMismatch is returned when a threshold value does not fit the
	// predicate.
	ErrDomainMismatch = errors.New("match: value domain mismatch")

	// ErrMemoryLimitExceeded is returned when a materializing stage exceeds
	// its memory budget.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)
