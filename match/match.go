package match

import (
	"github.com/hupe1980/quarry/internal/simd"
	"github.com/hupe1980/quarry/model"
	"github.com/hupe1980/quarry/store"
)

// TakeAll disables the result limit of unary and sorting matches.
const TakeAll = -1

// DefaultInTermThreshold is the largest In list evaluated as a tree of OR
// matches. Longer lists use a MultiTermMatch.
const DefaultInTermThreshold = 16

// windowSize is the number of ids a match buffers per refill.
const windowSize = 256

// Kind identifies the variant of a match.
type Kind uint8

const (
	// KindGeneric is reported by matches defined outside this package.
	KindGeneric Kind = iota
	KindTerm
	KindBinary
	KindUnary
	KindMultiTerm
	KindBoosting
	KindSorting
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindTerm:
		return "term"
	case KindBinary:
		return "binary"
	case KindUnary:
		return "unary"
	case KindMultiTerm:
		return "multi-term"
	case KindBoosting:
		return "boosting"
	case KindSorting:
		return "sorting"
	default:
		return "generic"
	}
}

// Producer emits batches of results.
type Producer interface {
	// Fill writes the next batch of ids to ids and returns how many were
	// written. When scores is non-nil it is parallel to ids and receives the
	// score of every written id. A return of 0 with a nil error means the
	// stream is exhausted.
	Fill(ids []model.EntryID, scores []float32) (int, error)
}

// Match is a lazy stream of strictly ascending, duplicate-free entry ids.
type Match interface {
	Producer

	// Count estimates the number of ids the match produces.
	Count() int64

	// Confidence tells how far Count can be trusted.
	Confidence() model.Confidence

	// Kind identifies the variant.
	Kind() Kind

	// AndWith compacts ids in place to the ids that are members of this
	// match and returns the new length. Successive calls must pass ascending,
	// non-overlapping batches. When scores is non-nil it is compacted in
	// parallel and the score contribution of this match is added.
	AndWith(ids []model.EntryID, scores []float32) (int, error)
}

// Budget reserves memory for materializing stages.
type Budget interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Env is the evaluation context shared by every match of one searcher.
type Env struct {
	snap        store.Snapshot
	reader      store.EntryReader
	mode        simd.Mode
	specialize  bool
	budget      Budget
	held        int64
	inThreshold int
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithScalarKernels forces the scalar kernels.
func WithScalarKernels() EnvOption {
	return func(e *Env) {
		e.mode = simd.Scalar
	}
}

// WithoutSpecialization makes binary matches use the generic merge for
// every operand pair.
func WithoutSpecialization() EnvOption {
	return func(e *Env) {
		e.specialize = false
	}
}

// WithBudget charges materialized buffers to b.
func WithBudget(b Budget) EnvOption {
	return func(e *Env) {
		e.budget = b
	}
}

// WithInTermThreshold sets the largest In list evaluated as an OR tree.
func WithInTermThreshold(n int) EnvOption {
	return func(e *Env) {
		if n > 0 {
			e.inThreshold = n
		}
	}
}

// NewEnv returns the evaluation context for snap.
func NewEnv(snap store.Snapshot, optFns ...EnvOption) *Env {
	e := &Env{
		snap:        snap,
		reader:      snap.Entries(),
		mode:        simd.SelectMode(false),
		specialize:  true,
		inThreshold: DefaultInTermThreshold,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(e)
		}
	}
	return e
}

// Snapshot returns the snapshot matches read from.
func (e *Env) Snapshot() store.Snapshot { return e.snap }

// Accelerated reports whether the accelerated kernels are used.
func (e *Env) Accelerated() bool { return e.mode == simd.Accelerated }

// Specialized reports whether binary matches use type-specialized merges.
func (e *Env) Specialized() bool { return e.specialize }

// InTermThreshold returns the largest In list evaluated as an OR tree.
func (e *Env) InTermThreshold() int { return e.inThreshold }

func (e *Env) acquire(bytes int64) error {
	if e.budget == nil || bytes <= 0 {
		return nil
	}
	if err := e.budget.AcquireMemory(bytes); err != nil {
		return err
	}
	e.held += bytes
	return nil
}

func (e *Env) release(bytes int64) {
	if e.budget == nil || bytes <= 0 {
		return
	}
	bytes = min(bytes, e.held)
	e.held -= bytes
	e.budget.ReleaseMemory(bytes)
}

// MemoryHeld returns the budget currently charged by matches of this Env.
func (e *Env) MemoryHeld() int64 { return e.held }

// ReleaseAll returns every outstanding charge to the budget. Matches that
// were abandoned mid-stream keep their charge until then.
func (e *Env) ReleaseAll() {
	e.release(e.held)
}
